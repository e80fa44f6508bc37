package notifications

import (
	"errors"
	"net/http"
	"strconv"

	"gorm.io/gorm"

	"plinth/app/models"
	"plinth/core/dispatcher"
	"plinth/core/router"
	"plinth/core/types"
)

type NotificationController struct {
	Service    *NotificationService
	Dispatcher *dispatcher.Dispatcher
}

func NewNotificationController(service *NotificationService, disp *dispatcher.Dispatcher) *NotificationController {
	return &NotificationController{
		Service:    service,
		Dispatcher: disp,
	}
}

func (c *NotificationController) Routes(router *router.RouterGroup) {
	router.GET("/notifications", c.List)
	router.PUT("/notifications/:id/read", c.MarkRead)
}

func (c *NotificationController) List(ctx *router.Context) error {
	userId, err := strconv.ParseUint(ctx.Query("user_id"), 10, 32)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Missing or invalid user_id"})
	}

	limit := 0
	if limitStr := ctx.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	result, err := c.Dispatcher.Ask(ctx.Request.Context(), &List{
		UserId:     uint(userId),
		UnreadOnly: ctx.Query("unread") == "true",
		Limit:      limit,
	})
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to fetch notifications: " + err.Error()})
	}

	return ctx.JSON(http.StatusOK, result)
}

func (c *NotificationController) MarkRead(ctx *router.Context) error {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid id format"})
	}

	if err := c.Service.MarkRead(uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.JSON(http.StatusNotFound, types.ErrorResponse{Error: "Notification not found"})
		}
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to mark as read: " + err.Error()})
	}

	return ctx.JSON(http.StatusOK, types.SuccessResponse{Message: "Notification marked as read"})
}

// responses converts models to API responses.
func responses(items []*models.Notification) []*models.NotificationResponse {
	out := make([]*models.NotificationResponse, len(items))
	for i, item := range items {
		out[i] = item.ToResponse()
	}
	return out
}
