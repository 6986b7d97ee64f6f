package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/infoamous-source/kiosk-sub001/internal/dto"
	"github.com/infoamous-source/kiosk-sub001/internal/model"
	"github.com/infoamous-source/kiosk-sub001/internal/service"
	"github.com/infoamous-source/kiosk-sub001/pkg/response"
)

// SchoolHandler serves the stamp board of a school.
type SchoolHandler struct {
	schoolSvc service.SchoolProgressService
}

// NewSchoolHandler creates a SchoolHandler.
func NewSchoolHandler(schoolSvc service.SchoolProgressService) *SchoolHandler {
	return &SchoolHandler{schoolSvc: schoolSvc}
}

// target extracts the caller and the :school_id path parameter.
func (h *SchoolHandler) target(c *gin.Context) (string, model.SchoolID, bool) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return "", "", false
	}
	schoolID := model.SchoolID(c.Param("school_id"))
	if !model.IsValidSchool(schoolID) {
		response.BadRequest(c, response.CodeBadParams, "unknown school")
		return "", "", false
	}
	return userID, schoolID, true
}

// Progress GET /api/v1/schools/:school_id/progress
func (h *SchoolHandler) Progress(c *gin.Context) {
	userID, schoolID, ok := h.target(c)
	if !ok {
		return
	}
	res, err := h.schoolSvc.Get(c.Request.Context(), userID, schoolID)
	if err != nil {
		h.handleSchoolError(c, err)
		return
	}
	response.OK(c, res)
}

// EarnStamp POST /api/v1/schools/:school_id/stamps
func (h *SchoolHandler) EarnStamp(c *gin.Context) {
	userID, schoolID, ok := h.target(c)
	if !ok {
		return
	}
	var req dto.EarnStampRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c)
		return
	}

	res, err := h.schoolSvc.EarnStamp(c.Request.Context(), userID, schoolID, req.PeriodID)
	if err != nil {
		h.handleSchoolError(c, err)
		return
	}
	response.OK(c, res)
}

// SaveResult PUT /api/v1/schools/:school_id/results
func (h *SchoolHandler) SaveResult(c *gin.Context) {
	userID, schoolID, ok := h.target(c)
	if !ok {
		return
	}
	var req dto.SchoolResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c)
		return
	}

	res, err := h.schoolSvc.SaveResult(c.Request.Context(), userID, schoolID, req.Kind, req.Data)
	if err != nil {
		h.handleSchoolError(c, err)
		return
	}
	response.OK(c, res)
}

// Graduate POST /api/v1/schools/:school_id/graduate
func (h *SchoolHandler) Graduate(c *gin.Context) {
	userID, schoolID, ok := h.target(c)
	if !ok {
		return
	}
	var req dto.GraduateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c)
		return
	}

	res, err := h.schoolSvc.Graduate(c.Request.Context(), userID, schoolID, req.Review)
	if err != nil {
		h.handleSchoolError(c, err)
		return
	}
	response.OK(c, res)
}

// Reset POST /api/v1/schools/:school_id/reset
func (h *SchoolHandler) Reset(c *gin.Context) {
	userID, schoolID, ok := h.target(c)
	if !ok {
		return
	}
	res, err := h.schoolSvc.Reset(c.Request.Context(), userID, schoolID)
	if err != nil {
		h.handleSchoolError(c, err)
		return
	}
	response.OK(c, res)
}

// Calendar GET /api/v1/schools/:school_id/calendar.ics
func (h *SchoolHandler) Calendar(c *gin.Context) {
	userID, schoolID, ok := h.target(c)
	if !ok {
		return
	}
	body, filename, err := h.schoolSvc.Calendar(c.Request.Context(), userID, schoolID)
	if err != nil {
		h.handleSchoolError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", body)
}

func (h *SchoolHandler) handleSchoolError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSchoolNotStarted):
		response.Forbidden(c, 19001, "school has no active enrollment")
	case errors.Is(err, service.ErrUnknownPeriod):
		response.BadRequest(c, 19002, "unknown curriculum period")
	case errors.Is(err, service.ErrUnknownResult):
		response.BadRequest(c, 19003, "unknown result kind")
	case errors.Is(err, service.ErrCannotGraduate):
		response.Conflict(c, 19004, "graduation requirements not met")
	default:
		handleBackendError(c, err)
	}
}
