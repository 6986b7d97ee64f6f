package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/infoamous-source/kiosk-sub001/internal/dto"
	"github.com/infoamous-source/kiosk-sub001/internal/service"
	"github.com/infoamous-source/kiosk-sub001/pkg/response"
)

// ProgressHandler serves module progress and the activity log.
type ProgressHandler struct {
	progressSvc service.ProgressService
	activitySvc service.ActivityService
}

// NewProgressHandler creates a ProgressHandler.
func NewProgressHandler(progressSvc service.ProgressService, activitySvc service.ActivityService) *ProgressHandler {
	return &ProgressHandler{progressSvc: progressSvc, activitySvc: activitySvc}
}

// Digital GET /api/v1/progress/digital
func (h *ProgressHandler) Digital(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	list := h.progressSvc.Digital(c.Request.Context(), userID)
	response.List(c, list, len(list))
}

// SaveDigital PUT /api/v1/progress/digital
func (h *ProgressHandler) SaveDigital(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.SaveDigitalProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c)
		return
	}

	p, err := h.progressSvc.SaveDigital(c.Request.Context(), userID, &req)
	if err != nil {
		handleBackendError(c, err)
		return
	}
	response.OK(c, p)
}

// Marketing GET /api/v1/progress/marketing
func (h *ProgressHandler) Marketing(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	list := h.progressSvc.Marketing(c.Request.Context(), userID)
	response.List(c, list, len(list))
}

// RecordMarketing POST /api/v1/progress/marketing
func (h *ProgressHandler) RecordMarketing(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.MarketingProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c)
		return
	}

	p, err := h.progressSvc.RecordMarketing(c.Request.Context(), userID, &req)
	if err != nil {
		handleBackendError(c, err)
		return
	}
	response.OK(c, p)
}

// LogActivity POST /api/v1/activity
func (h *ProgressHandler) LogActivity(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.CreateActivityLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c)
		return
	}

	entry, err := h.activitySvc.Log(c.Request.Context(), userID, &req)
	if err != nil {
		handleBackendError(c, err)
		return
	}
	response.Created(c, entry)
}

// Activity GET /api/v1/activity?track_id=&limit=
func (h *ProgressHandler) Activity(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.ActivityLogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c)
		return
	}
	list := h.activitySvc.List(c.Request.Context(), userID, req.TrackID, req.Limit)
	response.List(c, list, len(list))
}
