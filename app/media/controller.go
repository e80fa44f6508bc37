package media

import (
	"errors"
	"net/http"
	"strconv"

	"gorm.io/gorm"

	"plinth/app/models"
	"plinth/core/router"
	"plinth/core/types"
)

type MediaController struct {
	Service *MediaService
}

func NewMediaController(service *MediaService) *MediaController {
	return &MediaController{Service: service}
}

func (c *MediaController) Routes(router *router.RouterGroup) {
	router.GET("/media", c.List)
	router.POST("/media", c.Upload)
	router.GET("/media/:id", c.Get)
	router.DELETE("/media/:id", c.Delete)
}

func (c *MediaController) Upload(ctx *router.Context) error {
	file, err := ctx.FormFile("file")
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Missing file upload"})
	}

	var userId uint
	if userIdStr := ctx.Query("user_id"); userIdStr != "" {
		if parsed, err := strconv.ParseUint(userIdStr, 10, 32); err == nil {
			userId = uint(parsed)
		}
	}

	item, err := c.Service.Upload(userId, ctx.Query("name"), file)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to upload file: " + err.Error()})
	}

	return ctx.JSON(http.StatusCreated, item.ToResponse())
}

func (c *MediaController) Get(ctx *router.Context) error {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid id format"})
	}

	item, err := c.Service.GetById(uint(id))
	if err != nil {
		return ctx.JSON(http.StatusNotFound, types.ErrorResponse{Error: "Item not found"})
	}

	return ctx.JSON(http.StatusOK, item.ToResponse())
}

func (c *MediaController) List(ctx *router.Context) error {
	limit := 0
	if limitStr := ctx.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	items, err := c.Service.List(limit)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to fetch media: " + err.Error()})
	}

	responses := make([]*models.MediaResponse, len(items))
	for i, item := range items {
		responses[i] = item.ToResponse()
	}

	return ctx.JSON(http.StatusOK, responses)
}

func (c *MediaController) Delete(ctx *router.Context) error {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid id format"})
	}

	if err := c.Service.Delete(uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.JSON(http.StatusNotFound, types.ErrorResponse{Error: "Item not found"})
		}
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to delete item: " + err.Error()})
	}

	return ctx.NoContent(http.StatusNoContent)
}
