package posts

import (
	"net/http"
	"strconv"
	"strings"

	"plinth/app/models"
	"plinth/core/dispatcher"
	"plinth/core/router"
	"plinth/core/types"
)

type PostController struct {
	Service    *PostService
	Dispatcher *dispatcher.Dispatcher
}

func NewPostController(service *PostService, disp *dispatcher.Dispatcher) *PostController {
	return &PostController{
		Service:    service,
		Dispatcher: disp,
	}
}

func (c *PostController) Routes(router *router.RouterGroup) {
	// Specific routes before parameterized ones.
	router.GET("/posts", c.List)
	router.POST("/posts", c.Create)
	router.GET("/posts/slug/:slug", c.GetBySlug)
	router.GET("/posts/:id", c.Get)
	router.PUT("/posts/:id", c.Update)
	router.DELETE("/posts/:id", c.Delete)

	router.PUT("/posts/:id/featured-image", c.UploadFeaturedImage)
	router.DELETE("/posts/:id/featured-image", c.RemoveFeaturedImage)
}

func (c *PostController) Create(ctx *router.Context) error {
	var req models.CreatePostRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
	}

	cmd := &Create{Req: &req}
	if err := c.Dispatcher.Dispatch(ctx.Request.Context(), cmd); err != nil {
		if strings.Contains(err.Error(), "not found") {
			return ctx.JSON(http.StatusUnprocessableEntity, types.ErrorResponse{Error: err.Error()})
		}
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to create item: " + err.Error()})
	}

	return ctx.JSON(http.StatusCreated, cmd.Result)
}

func (c *PostController) Get(ctx *router.Context) error {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid id format"})
	}

	result, err := c.Dispatcher.Ask(ctx.Request.Context(), &Get{Id: uint(id)})
	if err != nil {
		return ctx.JSON(http.StatusNotFound, types.ErrorResponse{Error: "Item not found"})
	}

	return ctx.JSON(http.StatusOK, result)
}

func (c *PostController) GetBySlug(ctx *router.Context) error {
	item, err := c.Service.GetBySlug(ctx.Param("slug"))
	if err != nil {
		return ctx.JSON(http.StatusNotFound, types.ErrorResponse{Error: "Item not found"})
	}

	return ctx.JSON(http.StatusOK, item.ToResponse())
}

func (c *PostController) List(ctx *router.Context) error {
	var page, limit *int
	var sortBy, sortOrder *string

	if pageStr := ctx.Query("page"); pageStr != "" {
		if pageNum, err := strconv.Atoi(pageStr); err == nil && pageNum > 0 {
			page = &pageNum
		} else {
			return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid page number"})
		}
	}

	if limitStr := ctx.Query("limit"); limitStr != "" {
		if limitNum, err := strconv.Atoi(limitStr); err == nil && limitNum > 0 {
			limit = &limitNum
		} else {
			return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid limit number"})
		}
	}

	if sortStr := ctx.Query("sort"); sortStr != "" {
		sortBy = &sortStr
	}

	if orderStr := ctx.Query("order"); orderStr != "" {
		if orderStr == "asc" || orderStr == "desc" {
			sortOrder = &orderStr
		} else {
			return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid sort order. Use 'asc' or 'desc'"})
		}
	}

	result, err := c.Dispatcher.Ask(ctx.Request.Context(), &List{
		Page:      page,
		Limit:     limit,
		SortBy:    sortBy,
		SortOrder: sortOrder,
	})
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to fetch items: " + err.Error()})
	}

	return ctx.JSON(http.StatusOK, result)
}

func (c *PostController) Update(ctx *router.Context) error {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid id format"})
	}

	var req models.UpdatePostRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
	}

	cmd := &Update{Id: uint(id), Req: &req}
	if err := c.Dispatcher.Dispatch(ctx.Request.Context(), cmd); err != nil {
		if strings.Contains(err.Error(), "record not found") {
			return ctx.JSON(http.StatusNotFound, types.ErrorResponse{Error: "Item not found"})
		}
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to update item: " + err.Error()})
	}

	return ctx.JSON(http.StatusOK, cmd.Result)
}

func (c *PostController) Delete(ctx *router.Context) error {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid id format"})
	}

	if err := c.Dispatcher.Dispatch(ctx.Request.Context(), &Delete{Id: uint(id)}); err != nil {
		if strings.Contains(err.Error(), "record not found") {
			return ctx.JSON(http.StatusNotFound, types.ErrorResponse{Error: "Item not found"})
		}
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to delete item: " + err.Error()})
	}

	return ctx.NoContent(http.StatusNoContent)
}

func (c *PostController) UploadFeaturedImage(ctx *router.Context) error {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid id format"})
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Missing file upload"})
	}

	item, err := c.Service.UploadFeaturedImage(uint(id), file)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to upload featured image: " + err.Error()})
	}

	return ctx.JSON(http.StatusOK, item.ToResponse())
}

func (c *PostController) RemoveFeaturedImage(ctx *router.Context) error {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid id format"})
	}

	item, err := c.Service.RemoveFeaturedImage(uint(id))
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to remove featured image: " + err.Error()})
	}

	return ctx.JSON(http.StatusOK, item.ToResponse())
}
