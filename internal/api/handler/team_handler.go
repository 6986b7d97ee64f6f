package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/infoamous-source/kiosk-sub001/internal/dto"
	"github.com/infoamous-source/kiosk-sub001/internal/model"
	"github.com/infoamous-source/kiosk-sub001/internal/service"
	"github.com/infoamous-source/kiosk-sub001/pkg/response"
)

// TeamHandler serves classrooms, teams and the team idea box.
type TeamHandler struct {
	authSvc service.AuthService
	teamSvc service.TeamService
}

// NewTeamHandler creates a TeamHandler.
func NewTeamHandler(authSvc service.AuthService, teamSvc service.TeamService) *TeamHandler {
	return &TeamHandler{authSvc: authSvc, teamSvc: teamSvc}
}

// ── instructor: classrooms ──

// CreateClassroom POST /api/v1/instructor/classrooms
func (h *TeamHandler) CreateClassroom(c *gin.Context) {
	var req dto.CreateClassroomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c)
		return
	}
	instructor, ok := mustCurrentUser(c, h.authSvc)
	if !ok {
		return
	}
	room, err := h.teamSvc.CreateClassroom(c.Request.Context(), instructor, &req)
	if err != nil {
		h.handleTeamError(c, err)
		return
	}
	response.Created(c, room)
}

// Classrooms GET /api/v1/instructor/classrooms
func (h *TeamHandler) Classrooms(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	list := h.teamSvc.ListClassrooms(c.Request.Context(), userID)
	response.List(c, list, len(list))
}

// DeleteClassroom DELETE /api/v1/instructor/classrooms/:id
func (h *TeamHandler) DeleteClassroom(c *gin.Context) {
	instructor, ok := mustCurrentUser(c, h.authSvc)
	if !ok {
		return
	}
	if err := h.teamSvc.DeleteClassroom(c.Request.Context(), instructor, c.Param("id")); err != nil {
		h.handleTeamError(c, err)
		return
	}
	response.OK(c, nil)
}

// ClassroomMembers GET /api/v1/instructor/classrooms/:id/members
func (h *TeamHandler) ClassroomMembers(c *gin.Context) {
	instructor, ok := mustCurrentUser(c, h.authSvc)
	if !ok {
		return
	}
	list, err := h.teamSvc.ClassroomMembers(c.Request.Context(), instructor, c.Param("id"))
	if err != nil {
		h.handleTeamError(c, err)
		return
	}
	response.List(c, list, len(list))
}

// AddClassroomMember POST /api/v1/instructor/classrooms/:id/members
func (h *TeamHandler) AddClassroomMember(c *gin.Context) {
	var req dto.AddClassroomMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c)
		return
	}
	instructor, ok := mustCurrentUser(c, h.authSvc)
	if !ok {
		return
	}
	m, err := h.teamSvc.AddClassroomMember(c.Request.Context(), instructor, c.Param("id"), &req)
	if err != nil {
		h.handleTeamError(c, err)
		return
	}
	response.Created(c, m)
}

// RemoveClassroomMember DELETE /api/v1/instructor/classroom-members/:id
func (h *TeamHandler) RemoveClassroomMember(c *gin.Context) {
	instructor, ok := mustCurrentUser(c, h.authSvc)
	if !ok {
		return
	}
	if err := h.teamSvc.RemoveClassroomMember(c.Request.Context(), instructor, c.Param("id")); err != nil {
		h.handleTeamError(c, err)
		return
	}
	response.OK(c, nil)
}

// ── instructor: teams ──

// Teams GET /api/v1/instructor/classrooms/:id/teams
func (h *TeamHandler) Teams(c *gin.Context) {
	instructor, ok := mustCurrentUser(c, h.authSvc)
	if !ok {
		return
	}
	list, err := h.teamSvc.Teams(c.Request.Context(), instructor, c.Param("id"))
	if err != nil {
		h.handleTeamError(c, err)
		return
	}
	response.List(c, list, len(list))
}

// CreateTeam POST /api/v1/instructor/classrooms/:id/teams
func (h *TeamHandler) CreateTeam(c *gin.Context) {
	var req dto.CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c)
		return
	}
	instructor, ok := mustCurrentUser(c, h.authSvc)
	if !ok {
		return
	}
	team, err := h.teamSvc.CreateTeam(c.Request.Context(), instructor, c.Param("id"), &req)
	if err != nil {
		h.handleTeamError(c, err)
		return
	}
	response.Created(c, team)
}

// DeleteTeam DELETE /api/v1/instructor/teams/:id
func (h *TeamHandler) DeleteTeam(c *gin.Context) {
	instructor, ok := mustCurrentUser(c, h.authSvc)
	if !ok {
		return
	}
	if err := h.teamSvc.DeleteTeam(c.Request.Context(), instructor, c.Param("id")); err != nil {
		h.handleTeamError(c, err)
		return
	}
	response.OK(c, nil)
}

// TeamMembers GET /api/v1/instructor/teams/:id/members
func (h *TeamHandler) TeamMembers(c *gin.Context) {
	instructor, ok := mustCurrentUser(c, h.authSvc)
	if !ok {
		return
	}
	list, err := h.teamSvc.TeamMembers(c.Request.Context(), instructor, c.Param("id"))
	if err != nil {
		h.handleTeamError(c, err)
		return
	}
	response.List(c, list, len(list))
}

// AddTeamMember POST /api/v1/instructor/teams/:id/members
func (h *TeamHandler) AddTeamMember(c *gin.Context) {
	var req dto.AddTeamMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c)
		return
	}
	instructor, ok := mustCurrentUser(c, h.authSvc)
	if !ok {
		return
	}
	m, err := h.teamSvc.AddTeamMember(c.Request.Context(), instructor, c.Param("id"), &req)
	if err != nil {
		h.handleTeamError(c, err)
		return
	}
	response.Created(c, m)
}

// RemoveTeamMember DELETE /api/v1/instructor/team-members/:id
func (h *TeamHandler) RemoveTeamMember(c *gin.Context) {
	instructor, ok := mustCurrentUser(c, h.authSvc)
	if !ok {
		return
	}
	if err := h.teamSvc.RemoveTeamMember(c.Request.Context(), instructor, c.Param("id")); err != nil {
		h.handleTeamError(c, err)
		return
	}
	response.OK(c, nil)
}

// ── students ──

// MyTeam GET /api/v1/team
// data is null when the caller has no team.
func (h *TeamHandler) MyTeam(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	response.OK(c, h.teamSvc.MyTeam(c.Request.Context(), userID))
}

// Ideas GET /api/v1/team/ideas
func (h *TeamHandler) Ideas(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	list := h.teamSvc.Ideas(c.Request.Context(), userID)
	response.List(c, list, len(list))
}

// AddIdea POST /api/v1/team/ideas
func (h *TeamHandler) AddIdea(c *gin.Context) {
	var req dto.CreateTeamIdeaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c)
		return
	}
	user, ok := mustCurrentUser(c, h.authSvc)
	if !ok {
		return
	}
	idea, err := h.teamSvc.AddIdea(c.Request.Context(), user, &req)
	if err != nil {
		h.handleTeamError(c, err)
		return
	}
	response.Created(c, idea)
}

// RemoveIdea DELETE /api/v1/team/ideas/:id
func (h *TeamHandler) RemoveIdea(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	if err := h.teamSvc.DeleteIdea(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.handleTeamError(c, err)
		return
	}
	response.OK(c, nil)
}

// Assignments GET /api/v1/assignments
func (h *TeamHandler) Assignments(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	list := h.teamSvc.Assignments(c.Request.Context(), userID)
	response.List(c, list, len(list))
}

// TrackAssignment GET /api/v1/assignments/:track
func (h *TeamHandler) TrackAssignment(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	track := model.TrackID(c.Param("track"))
	if !model.IsValidSchool(track) {
		bindFailed(c)
		return
	}
	response.OK(c, dto.TrackAssignmentResponse{
		Track:    track,
		Assigned: h.teamSvc.IsAssignedToTrack(c.Request.Context(), userID, track),
	})
}

func (h *TeamHandler) handleTeamError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrClassroomNotFound):
		response.NotFound(c, 18001, "classroom not found")
	case errors.Is(err, service.ErrNotClassroomOwner):
		response.Forbidden(c, 18002, "classroom belongs to another instructor")
	case errors.Is(err, service.ErrTeamNotFound):
		response.NotFound(c, 18003, "team not found")
	case errors.Is(err, service.ErrMemberNotFound):
		response.NotFound(c, 18004, "member not found")
	case errors.Is(err, service.ErrAlreadyMember):
		response.Conflict(c, 18005, "student is already a member")
	case errors.Is(err, service.ErrNotClassroomMember):
		response.BadRequest(c, 18006, "student is not in the team's classroom")
	case errors.Is(err, service.ErrNoTeam):
		response.BadRequest(c, 18007, "you are not on a team")
	case errors.Is(err, service.ErrTeamIdeaNotFound):
		response.NotFound(c, 18008, "team idea not found")
	case errors.Is(err, service.ErrProfileNotFound):
		response.NotFound(c, 14001, "profile not found")
	case errors.Is(err, service.ErrNotStudent):
		response.BadRequest(c, 14002, "target is not a student")
	default:
		handleBackendError(c, err)
	}
}
