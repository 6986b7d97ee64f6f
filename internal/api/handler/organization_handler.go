package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/infoamous-source/kiosk-sub001/internal/dto"
	"github.com/infoamous-source/kiosk-sub001/internal/service"
	"github.com/infoamous-source/kiosk-sub001/pkg/response"
)

// OrganizationHandler serves institutions and their join codes.
type OrganizationHandler struct {
	authSvc service.AuthService
	orgSvc  service.OrganizationService
}

// NewOrganizationHandler creates an OrganizationHandler.
func NewOrganizationHandler(authSvc service.AuthService, orgSvc service.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{authSvc: authSvc, orgSvc: orgSvc}
}

// Create POST /api/v1/instructor/organizations
func (h *OrganizationHandler) Create(c *gin.Context) {
	var req dto.CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c)
		return
	}
	instructor, ok := mustCurrentUser(c, h.authSvc)
	if !ok {
		return
	}

	org, err := h.orgSvc.Create(c.Request.Context(), instructor, &req)
	if err != nil {
		h.handleOrgError(c, err)
		return
	}
	response.Created(c, org)
}

// List GET /api/v1/instructor/organizations
func (h *OrganizationHandler) List(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	list := h.orgSvc.List(c.Request.Context(), userID)
	response.List(c, list, len(list))
}

// Get GET /api/v1/instructor/organizations/:id
func (h *OrganizationHandler) Get(c *gin.Context) {
	org, err := h.orgSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleOrgError(c, err)
		return
	}
	response.OK(c, org)
}

// Delete DELETE /api/v1/instructor/organizations/:id
func (h *OrganizationHandler) Delete(c *gin.Context) {
	instructor, ok := mustCurrentUser(c, h.authSvc)
	if !ok {
		return
	}
	if err := h.orgSvc.Delete(c.Request.Context(), instructor, c.Param("id")); err != nil {
		h.handleOrgError(c, err)
		return
	}
	response.OK(c, nil)
}

// Students GET /api/v1/instructor/organizations/:id/students
func (h *OrganizationHandler) Students(c *gin.Context) {
	instructor, ok := mustCurrentUser(c, h.authSvc)
	if !ok {
		return
	}
	list, err := h.orgSvc.Students(c.Request.Context(), instructor, c.Param("id"))
	if err != nil {
		h.handleOrgError(c, err)
		return
	}
	response.List(c, list, len(list))
}

// Validate GET /api/v1/organizations/validate/:code
// Public: used by the registration form.
func (h *OrganizationHandler) Validate(c *gin.Context) {
	response.OK(c, h.orgSvc.ValidateCode(c.Request.Context(), c.Param("code")))
}

func (h *OrganizationHandler) handleOrgError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrOrganizationNotFound):
		response.NotFound(c, 15001, "organization not found")
	case errors.Is(err, service.ErrNotOrganizationOwner):
		response.Forbidden(c, 15002, "organization belongs to another instructor")
	case errors.Is(err, service.ErrOrgCodeExhausted):
		response.Conflict(c, 15003, "could not allocate an organization code, try again")
	default:
		handleBackendError(c, err)
	}
}
