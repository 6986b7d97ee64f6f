package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/infoamous-source/kiosk-sub001/internal/dto"
	"github.com/infoamous-source/kiosk-sub001/internal/service"
	"github.com/infoamous-source/kiosk-sub001/pkg/response"
)

// ProfileHandler serves profile reads and edits, the student API key and
// the instructor's student lookup.
type ProfileHandler struct {
	authSvc    service.AuthService
	profileSvc service.ProfileService
}

// NewProfileHandler creates a ProfileHandler.
func NewProfileHandler(authSvc service.AuthService, profileSvc service.ProfileService) *ProfileHandler {
	return &ProfileHandler{authSvc: authSvc, profileSvc: profileSvc}
}

// Me GET /api/v1/profile
func (h *ProfileHandler) Me(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	p, err := h.profileSvc.Get(c.Request.Context(), userID)
	if err != nil {
		h.handleProfileError(c, err)
		return
	}
	response.OK(c, p)
}

// Update PUT /api/v1/profile
func (h *ProfileHandler) Update(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c)
		return
	}

	p, err := h.profileSvc.Update(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleProfileError(c, err)
		return
	}
	// cached AppUser carries profile fields
	h.authSvc.Forget(userID)
	response.OK(c, p)
}

// GetAPIKey GET /api/v1/profile/api-key
func (h *ProfileHandler) GetAPIKey(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	key, err := h.profileSvc.GetAPIKey(c.Request.Context(), userID)
	if err != nil {
		h.handleProfileError(c, err)
		return
	}
	response.OK(c, &dto.APIKeyResponse{APIKey: key, HasAPIKey: key != ""})
}

// SaveAPIKey PUT /api/v1/profile/api-key
func (h *ProfileHandler) SaveAPIKey(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.SaveAPIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c)
		return
	}

	if err := h.profileSvc.SaveAPIKey(c.Request.Context(), userID, req.APIKey); err != nil {
		h.handleProfileError(c, err)
		return
	}
	h.authSvc.Forget(userID)
	response.OK(c, &dto.APIKeyResponse{HasAPIKey: req.APIKey != ""})
}

// Search GET /api/v1/instructor/students/search?q=
func (h *ProfileHandler) Search(c *gin.Context) {
	var req dto.SearchStudentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c)
		return
	}
	list := h.profileSvc.SearchStudents(c.Request.Context(), req.Query)
	response.List(c, list, len(list))
}

// Students GET /api/v1/instructor/students?all=true
// Without all, only students carrying the caller's instructor code.
func (h *ProfileHandler) Students(c *gin.Context) {
	if c.Query("all") == "true" {
		list := h.profileSvc.ListStudents(c.Request.Context())
		response.List(c, list, len(list))
		return
	}
	instructor, ok := mustCurrentUser(c, h.authSvc)
	if !ok {
		return
	}
	if instructor.InstructorCode == "" {
		response.BadRequest(c, 14003, "instructor has no instructor code")
		return
	}
	list := h.profileSvc.ListByInstructorCode(c.Request.Context(), instructor.InstructorCode)
	response.List(c, list, len(list))
}

// Assign POST /api/v1/instructor/students/assign
func (h *ProfileHandler) Assign(c *gin.Context) {
	var req dto.AssignInstructorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c)
		return
	}
	instructor, ok := mustCurrentUser(c, h.authSvc)
	if !ok {
		return
	}

	p, err := h.profileSvc.AssignToInstructor(c.Request.Context(), instructor, req.StudentID)
	if err != nil {
		h.handleProfileError(c, err)
		return
	}
	h.authSvc.Forget(req.StudentID)
	response.OK(c, p)
}

func (h *ProfileHandler) handleProfileError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProfileNotFound):
		response.NotFound(c, 14001, "profile not found")
	case errors.Is(err, service.ErrNotStudent):
		response.BadRequest(c, 14002, "target is not a student")
	case errors.Is(err, service.ErrNoInstructorCode):
		response.BadRequest(c, 14003, "instructor has no instructor code")
	default:
		handleBackendError(c, err)
	}
}
