package dto

import "github.com/infoamous-source/kiosk-sub001/internal/model"

// ── classrooms and teams ──

// CreateClassroomRequest instructor opens a classroom for one track.
type CreateClassroomRequest struct {
	Track         model.TrackID `json:"track"          binding:"required,track_id"`
	ClassroomName string        `json:"classroom_name" binding:"required,min=1,max=100"`
	OrgCode       string        `json:"org_code"       binding:"omitempty,max=10"`
}

// AddClassroomMemberRequest places a student in a classroom.
type AddClassroomMemberRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
}

// CreateTeamRequest opens a team inside a classroom.
type CreateTeamRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// AddTeamMemberRequest places a classroom member in a team.
type AddTeamMemberRequest struct {
	UserID       string `json:"user_id"       binding:"required,uuid"`
	AptitudeType string `json:"aptitude_type" binding:"omitempty,max=50"`
	AnimalIcon   string `json:"animal_icon"   binding:"omitempty,max=50"`
}

// CreateTeamIdeaRequest shares an idea into the caller's team idea box.
type CreateTeamIdeaRequest struct {
	ToolID  string `json:"tool_id" binding:"required,max=100"`
	Title   string `json:"title"   binding:"required,max=200"`
	Content string `json:"content" binding:"required,max=20000"`
}

// TrackAssignmentResponse answer of the track assignment predicate.
type TrackAssignmentResponse struct {
	Track    model.TrackID `json:"track"`
	Assigned bool          `json:"assigned"`
}
