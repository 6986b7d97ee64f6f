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

const contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// EnrollmentHandler serves the student's school connections and the
// instructor's enrollment dashboard.
type EnrollmentHandler struct {
	enrollmentSvc service.EnrollmentService
}

// NewEnrollmentHandler creates an EnrollmentHandler.
func NewEnrollmentHandler(enrollmentSvc service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollmentSvc: enrollmentSvc}
}

func snapshotResponse(s *service.Snapshot) *dto.EnrollmentsResponse {
	list := []model.Enrollment{}
	if s != nil {
		list = append(list, s.Enrollments...)
	}
	return &dto.EnrollmentsResponse{
		Enrollments: list,
		Active:      s.Active(),
		Pending:     s.Pending(),
	}
}

// Mine GET /api/v1/enrollments
func (h *EnrollmentHandler) Mine(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	response.OK(c, snapshotResponse(h.enrollmentSvc.Fetch(c.Request.Context(), userID)))
}

// Status GET /api/v1/enrollments/status/:school_id
func (h *EnrollmentHandler) Status(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	schoolID := model.SchoolID(c.Param("school_id"))
	if !model.IsValidSchool(schoolID) {
		response.BadRequest(c, response.CodeBadParams, "unknown school")
		return
	}

	snap := h.enrollmentSvc.Fetch(c.Request.Context(), userID)
	response.OK(c, &dto.EnrollmentStatusResponse{
		SchoolID:   schoolID,
		Enrolled:   snap.IsEnrolledIn(schoolID),
		HasPending: snap.HasPendingFor(schoolID),
	})
}

// Create POST /api/v1/enrollments
// A student joining a school starts in pending_info.
func (h *EnrollmentHandler) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.CreateEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c)
		return
	}

	e, err := h.enrollmentSvc.Create(c.Request.Context(), userID, req.SchoolID, nil, false)
	if err != nil {
		h.handleEnrollmentError(c, err)
		return
	}
	response.Created(c, e)
}

// SubmitInfo POST /api/v1/enrollments/:id/info
func (h *EnrollmentHandler) SubmitInfo(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.SubmitInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c)
		return
	}

	snap, err := h.enrollmentSvc.SubmitInfo(c.Request.Context(), userID, c.Param("id"), req.SchoolID, req.Data)
	if err != nil {
		h.handleEnrollmentError(c, err)
		return
	}
	response.OK(c, snapshotResponse(snap))
}

// Connect POST /api/v1/instructor/enrollments
// The instructor connects a student directly; the row is active at once.
func (h *EnrollmentHandler) Connect(c *gin.Context) {
	instructorID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.ConnectStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c)
		return
	}

	e, err := h.enrollmentSvc.Create(c.Request.Context(), req.StudentID, req.SchoolID, &instructorID, true)
	if err != nil {
		h.handleEnrollmentError(c, err)
		return
	}
	response.Created(c, e)
}

// UpdateStatus PUT /api/v1/instructor/enrollments/:id/status
func (h *EnrollmentHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateEnrollmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c)
		return
	}

	e, err := h.enrollmentSvc.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		h.handleEnrollmentError(c, err)
		return
	}
	response.OK(c, e)
}

// List GET /api/v1/instructor/enrollments?school_id=
func (h *EnrollmentHandler) List(c *gin.Context) {
	var req dto.EnrollmentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c)
		return
	}

	var list []model.Enrollment
	if req.SchoolID == "" {
		list = h.enrollmentSvc.ListAll(c.Request.Context())
	} else {
		list = h.enrollmentSvc.ListBySchool(c.Request.Context(), req.SchoolID)
	}
	response.List(c, list, len(list))
}

// SchoolProfile GET /api/v1/instructor/enrollments/:id/profile
func (h *EnrollmentHandler) SchoolProfile(c *gin.Context) {
	p, err := h.enrollmentSvc.GetSchoolProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleEnrollmentError(c, err)
		return
	}
	response.OK(c, p)
}

// Export GET /api/v1/instructor/enrollments/export?school_id=
func (h *EnrollmentHandler) Export(c *gin.Context) {
	var req dto.EnrollmentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c)
		return
	}

	buf, filename, err := h.enrollmentSvc.ExportRoster(c.Request.Context(), req.SchoolID)
	if err != nil {
		h.handleEnrollmentError(c, err)
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, contentTypeXLSX, buf.Bytes())
}

func (h *EnrollmentHandler) handleEnrollmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEnrollmentNotFound):
		response.NotFound(c, 12001, "enrollment not found")
	case errors.Is(err, service.ErrEnrollmentNotPending):
		response.Conflict(c, 12002, "enrollment is not waiting for info")
	case errors.Is(err, service.ErrInvalidTransition):
		response.Conflict(c, 12003, "status transition not allowed")
	case errors.Is(err, service.ErrUnknownSchool):
		response.BadRequest(c, 12004, "unknown school")
	case errors.Is(err, service.ErrExportEmpty):
		response.NotFound(c, 12005, "no enrollments to export")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		handleBackendError(c, err)
	}
}
