package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/infoamous-source/kiosk-sub001/internal/dto"
	"github.com/infoamous-source/kiosk-sub001/internal/model"
	"github.com/infoamous-source/kiosk-sub001/internal/service"
	"github.com/infoamous-source/kiosk-sub001/pkg/response"
)

// VisibilityHandler serves the instructor-controlled visibility document.
type VisibilityHandler struct {
	authSvc       service.AuthService
	visibilitySvc service.VisibilityService
}

// NewVisibilityHandler creates a VisibilityHandler.
func NewVisibilityHandler(authSvc service.AuthService, visibilitySvc service.VisibilityService) *VisibilityHandler {
	return &VisibilityHandler{authSvc: authSvc, visibilitySvc: visibilitySvc}
}

// settingsCode picks the explicit code, else the code on the caller's
// profile. Instructors editing their settings get the document their writes
// land in. A caller whose profile cannot be loaded reads no document.
func (h *VisibilityHandler) settingsCode(c *gin.Context, explicit string, editing bool) string {
	if explicit != "" {
		return explicit
	}
	user, err := h.authSvc.CurrentUser(c.Request.Context(), c.GetString(CtxUserID))
	if err != nil {
		return ""
	}
	if editing && user.IsInstructor() {
		return service.WriteCode(user)
	}
	return service.ReadCode(user)
}

// Settings GET /api/v1/visibility?code=
// A missing document reads as every track visible.
func (h *VisibilityHandler) Settings(c *gin.Context) {
	code := h.settingsCode(c, c.Query("code"), true)
	doc := h.visibilitySvc.Get(c.Request.Context(), code)
	if doc == nil {
		doc = model.NewDefaultSettings(code, time.Now().UTC())
	}
	response.OK(c, doc)
}

// Check GET /api/v1/visibility/check?track_id=&module_id=&tool_id=
func (h *VisibilityHandler) Check(c *gin.Context) {
	var q dto.VisibilityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c)
		return
	}
	ctx := c.Request.Context()
	code := h.settingsCode(c, q.Code, false)

	var visible bool
	switch {
	case q.ToolID != "":
		visible = h.visibilitySvc.IsToolVisible(ctx, code, q.TrackID, q.ToolID)
	case q.ModuleID != "":
		visible = h.visibilitySvc.IsModuleVisible(ctx, code, q.TrackID, q.ModuleID)
	default:
		visible = h.visibilitySvc.IsTrackVisible(ctx, code, q.TrackID)
	}
	response.OK(c, &dto.VisibilityResponse{Visible: visible})
}

// SetTrack PUT /api/v1/instructor/visibility/track
func (h *VisibilityHandler) SetTrack(c *gin.Context) {
	var req dto.SetTrackVisibleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c)
		return
	}
	actor, ok := mustCurrentUser(c, h.authSvc)
	if !ok {
		return
	}

	doc, err := h.visibilitySvc.SetTrackVisible(c.Request.Context(), actor, req.TrackID, *req.Visible)
	if err != nil {
		handleBackendError(c, err)
		return
	}
	response.OK(c, doc)
}

// SetModule PUT /api/v1/instructor/visibility/module
func (h *VisibilityHandler) SetModule(c *gin.Context) {
	var req dto.SetModuleVisibleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c)
		return
	}
	actor, ok := mustCurrentUser(c, h.authSvc)
	if !ok {
		return
	}

	doc, err := h.visibilitySvc.SetModuleVisible(c.Request.Context(), actor, req.TrackID, req.ModuleID, *req.Visible)
	if err != nil {
		handleBackendError(c, err)
		return
	}
	response.OK(c, doc)
}

// SetTool PUT /api/v1/instructor/visibility/tool
func (h *VisibilityHandler) SetTool(c *gin.Context) {
	var req dto.SetToolVisibleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c)
		return
	}
	actor, ok := mustCurrentUser(c, h.authSvc)
	if !ok {
		return
	}

	doc, err := h.visibilitySvc.SetToolVisible(c.Request.Context(), actor, req.TrackID, req.ToolID, *req.Visible)
	if err != nil {
		handleBackendError(c, err)
		return
	}
	response.OK(c, doc)
}
