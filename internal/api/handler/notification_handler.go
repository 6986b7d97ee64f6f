package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/infoamous-source/kiosk-sub001/internal/dto"
	"github.com/infoamous-source/kiosk-sub001/internal/service"
	"github.com/infoamous-source/kiosk-sub001/pkg/response"
)

// NotificationHandler serves instructor announcements.
type NotificationHandler struct {
	authSvc         service.AuthService
	notificationSvc service.NotificationService
}

// NewNotificationHandler creates a NotificationHandler.
func NewNotificationHandler(authSvc service.AuthService, notificationSvc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{authSvc: authSvc, notificationSvc: notificationSvc}
}

// Create POST /api/v1/instructor/notifications
func (h *NotificationHandler) Create(c *gin.Context) {
	var req dto.CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c)
		return
	}
	instructor, ok := mustCurrentUser(c, h.authSvc)
	if !ok {
		return
	}

	n, err := h.notificationSvc.Create(c.Request.Context(), instructor, &req)
	if err != nil {
		if errors.Is(err, service.ErrNoTargetStudents) {
			response.BadRequest(c, 16001, "specific notifications need at least one student")
			return
		}
		handleBackendError(c, err)
		return
	}
	response.Created(c, n)
}

// History GET /api/v1/instructor/notifications
func (h *NotificationHandler) History(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	list := h.notificationSvc.History(c.Request.Context(), userID)
	response.List(c, list, len(list))
}

// Inbox GET /api/v1/notifications
func (h *NotificationHandler) Inbox(c *gin.Context) {
	student, ok := mustCurrentUser(c, h.authSvc)
	if !ok {
		return
	}
	list := h.notificationSvc.Inbox(c.Request.Context(), student)
	response.List(c, list, len(list))
}
