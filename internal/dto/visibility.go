package dto

import "github.com/infoamous-source/kiosk-sub001/internal/model"

// ── visibility ──

// SetTrackVisibleRequest toggles a whole track.
type SetTrackVisibleRequest struct {
	TrackID model.TrackID `json:"track_id" binding:"required,track_id"`
	Visible *bool         `json:"visible"  binding:"required"`
}

// SetModuleVisibleRequest toggles one module of a track.
type SetModuleVisibleRequest struct {
	TrackID  model.TrackID `json:"track_id"  binding:"required,track_id"`
	ModuleID string        `json:"module_id" binding:"required,max=100"`
	Visible  *bool         `json:"visible"   binding:"required"`
}

// SetToolVisibleRequest toggles one tool of a track.
type SetToolVisibleRequest struct {
	TrackID model.TrackID `json:"track_id" binding:"required,track_id"`
	ToolID  string        `json:"tool_id"  binding:"required,max=100"`
	Visible *bool         `json:"visible"  binding:"required"`
}

// VisibilityQuery asks about a track, or a module or tool inside it.
type VisibilityQuery struct {
	Code     string        `form:"code"      binding:"omitempty,max=50"`
	TrackID  model.TrackID `form:"track_id"  binding:"required,track_id"`
	ModuleID string        `form:"module_id" binding:"omitempty,max=100"`
	ToolID   string        `form:"tool_id"   binding:"omitempty,max=100"`
}

// VisibilityResponse answer of a predicate.
type VisibilityResponse struct {
	Visible bool `json:"visible"`
}
