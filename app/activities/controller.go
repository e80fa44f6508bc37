package activities

import (
	"net/http"
	"strconv"

	"plinth/app/models"
	"plinth/core/router"
	"plinth/core/types"
)

type ActivityController struct {
	Service *ActivityService
}

func NewActivityController(service *ActivityService) *ActivityController {
	return &ActivityController{Service: service}
}

func (c *ActivityController) Routes(router *router.RouterGroup) {
	router.GET("/activities/recent", c.GetRecent)
	router.GET("/activities/:entity_type/:entity_id", c.GetByEntity)
}

func (c *ActivityController) GetRecent(ctx *router.Context) error {
	limit := 10
	if limitStr := ctx.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	activities, err := c.Service.GetRecent(limit)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to get recent activities: " + err.Error()})
	}

	responses := make([]*models.ActivityResponse, len(activities))
	for i, activity := range activities {
		responses[i] = activity.ToResponse()
	}

	return ctx.JSON(http.StatusOK, responses)
}

func (c *ActivityController) GetByEntity(ctx *router.Context) error {
	entityId, err := strconv.ParseUint(ctx.Param("entity_id"), 10, 32)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid entity id format"})
	}

	activities, err := c.Service.GetByEntity(ctx.Param("entity_type"), uint(entityId))
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to get activities: " + err.Error()})
	}

	responses := make([]*models.ActivityResponse, len(activities))
	for i, activity := range activities {
		responses[i] = activity.ToResponse()
	}

	return ctx.JSON(http.StatusOK, responses)
}
