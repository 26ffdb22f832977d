package controller

import (
	"vocaman_backend/internal/service"
	"vocaman_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type NotificationController struct {
	NotificationService *service.NotificationService
}

func NewNotificationController(notificationService *service.NotificationService) *NotificationController {
	return &NotificationController{NotificationService: notificationService}
}

// List godoc
// @Summary Notifications of the current user with the unread count
// @Tags Notifications
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response{data=service.NotificationList}
// @Router /api/v2/notifications [get]
func (c *NotificationController) List(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}

	list, err := c.NotificationService.List(ctx.Request.Context(), claims.UserID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// MarkRead godoc
// @Summary Mark a notification as read
// @Tags Notifications
// @Security BearerAuth
// @Produce json
// @Param notificationId path string true "notification id"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/v2/notifications/{notificationId}/read [post]
func (c *NotificationController) MarkRead(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	notificationID, ok := pathID(ctx, "notificationId")
	if !ok {
		return
	}

	if err := c.NotificationService.MarkRead(ctx.Request.Context(), claims.UserID, notificationID); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
