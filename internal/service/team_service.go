package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/infoamous-source/kiosk-sub001/internal/backend"
	"github.com/infoamous-source/kiosk-sub001/internal/dto"
	"github.com/infoamous-source/kiosk-sub001/internal/model"
	"github.com/infoamous-source/kiosk-sub001/pkg/metrics"
)

var (
	ErrClassroomNotFound  = errors.New("classroom not found")
	ErrNotClassroomOwner  = errors.New("classroom belongs to another instructor")
	ErrTeamNotFound       = errors.New("team not found")
	ErrMemberNotFound     = errors.New("member not found")
	ErrAlreadyMember      = errors.New("student is already a member")
	ErrNotClassroomMember = errors.New("student is not in the team's classroom")
	ErrNoTeam             = errors.New("student has no team")
	ErrTeamIdeaNotFound   = errors.New("team idea not found")
)

// TeamService manages classrooms, their teams and the team idea boxes.
// Instructor operations act only on classrooms the instructor owns.
type TeamService interface {
	CreateClassroom(ctx context.Context, instructor *model.AppUser, req *dto.CreateClassroomRequest) (*model.ClassroomGroup, error)
	ListClassrooms(ctx context.Context, instructorID string) []model.ClassroomGroup
	DeleteClassroom(ctx context.Context, instructor *model.AppUser, id string) error
	AddClassroomMember(ctx context.Context, instructor *model.AppUser, classroomID string, req *dto.AddClassroomMemberRequest) (*model.ClassroomMember, error)
	ClassroomMembers(ctx context.Context, instructor *model.AppUser, classroomID string) ([]model.ClassroomMember, error)
	RemoveClassroomMember(ctx context.Context, instructor *model.AppUser, memberID string) error

	CreateTeam(ctx context.Context, instructor *model.AppUser, classroomID string, req *dto.CreateTeamRequest) (*model.TeamGroup, error)
	Teams(ctx context.Context, instructor *model.AppUser, classroomID string) ([]model.TeamGroup, error)
	DeleteTeam(ctx context.Context, instructor *model.AppUser, teamID string) error
	AddTeamMember(ctx context.Context, instructor *model.AppUser, teamID string, req *dto.AddTeamMemberRequest) (*model.TeamMember, error)
	TeamMembers(ctx context.Context, instructor *model.AppUser, teamID string) ([]model.TeamMember, error)
	RemoveTeamMember(ctx context.Context, instructor *model.AppUser, memberID string) error

	// MyTeam is nil when the student has no team or a read fails.
	MyTeam(ctx context.Context, userID string) *model.MyTeam
	AddIdea(ctx context.Context, user *model.AppUser, req *dto.CreateTeamIdeaRequest) (*model.TeamIdea, error)
	Ideas(ctx context.Context, userID string) []model.TeamIdea
	// DeleteIdea removes one of the caller's own ideas.
	DeleteIdea(ctx context.Context, userID, ideaID string) error

	// IsAssignedToTrack is false on read errors.
	IsAssignedToTrack(ctx context.Context, userID string, track model.TrackID) bool
	Assignments(ctx context.Context, userID string) []model.StudentAssignment
}

type teamService struct {
	client  *backend.Client
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewTeamService creates a TeamService.
func NewTeamService(client *backend.Client, m *metrics.Metrics, logger *zap.Logger) TeamService {
	return &teamService{client: client, metrics: m, logger: logger}
}

// ── classrooms ──

func (s *teamService) CreateClassroom(ctx context.Context, instructor *model.AppUser, req *dto.CreateClassroomRequest) (*model.ClassroomGroup, error) {
	if err := s.client.Guard("classroom.create"); err != nil {
		return nil, err
	}
	if !instructor.IsInstructor() {
		return nil, ErrNotInstructor
	}
	g := &model.ClassroomGroup{
		OrgCode:       model.NormalizeOrgCode(req.OrgCode),
		Track:         req.Track,
		ClassroomName: strings.TrimSpace(req.ClassroomName),
		InstructorID:  instructor.ID,
	}
	if err := s.client.Tables.Classroom.Create(ctx, g); err != nil {
		return nil, backend.Classify("classroom.create", err)
	}
	s.logger.Info("classroom created", zap.String("id", g.ID), zap.String("track", string(g.Track)))
	return g, nil
}

func (s *teamService) ListClassrooms(ctx context.Context, instructorID string) []model.ClassroomGroup {
	out := []model.ClassroomGroup{}
	if s.client.Guard("classroom.list") != nil {
		return out
	}
	list, err := s.client.Tables.Classroom.ListByInstructor(ctx, instructorID)
	if err != nil {
		readFailed(s.logger, s.metrics, "classroom_groups", err)
		return out
	}
	return append(out, list...)
}

func (s *teamService) ownedClassroom(ctx context.Context, instructor *model.AppUser, id string) (*model.ClassroomGroup, error) {
	if err := s.client.Guard("classroom.owned"); err != nil {
		return nil, err
	}
	g, err := s.client.Tables.Classroom.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassroomNotFound
		}
		return nil, backend.Classify("classroom.get", err)
	}
	if g.InstructorID != instructor.ID {
		return nil, ErrNotClassroomOwner
	}
	return g, nil
}

func (s *teamService) DeleteClassroom(ctx context.Context, instructor *model.AppUser, id string) error {
	g, err := s.ownedClassroom(ctx, instructor, id)
	if err != nil {
		return err
	}
	if err := s.client.Tables.Classroom.Delete(ctx, g.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClassroomNotFound
		}
		return backend.Classify("classroom.delete", err)
	}
	s.logger.Info("classroom deleted", zap.String("id", g.ID))
	return nil
}

// student loads the profile that a membership row copies its name from.
func (s *teamService) student(ctx context.Context, userID string) (*model.Profile, error) {
	p, err := s.client.Tables.Profile.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, backend.Classify("profile.get", err)
	}
	if p.Role != model.RoleStudent {
		return nil, ErrNotStudent
	}
	return p, nil
}

func (s *teamService) AddClassroomMember(ctx context.Context, instructor *model.AppUser, classroomID string, req *dto.AddClassroomMemberRequest) (*model.ClassroomMember, error) {
	g, err := s.ownedClassroom(ctx, instructor, classroomID)
	if err != nil {
		return nil, err
	}
	p, err := s.student(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	m := &model.ClassroomMember{GroupID: g.ID, UserID: p.ID, UserName: p.Name, Status: model.MemberActive}
	if err := s.client.Tables.Classroom.AddMember(ctx, m); err != nil {
		if backend.IsUniqueViolation(err) {
			return nil, ErrAlreadyMember
		}
		return nil, backend.Classify("classroom.add_member", err)
	}
	s.logger.Info("student added to classroom", zap.String("classroom_id", g.ID), zap.String("user_id", p.ID))
	return m, nil
}

func (s *teamService) ClassroomMembers(ctx context.Context, instructor *model.AppUser, classroomID string) ([]model.ClassroomMember, error) {
	g, err := s.ownedClassroom(ctx, instructor, classroomID)
	if err != nil {
		return nil, err
	}
	out := []model.ClassroomMember{}
	list, err := s.client.Tables.Classroom.ListMembers(ctx, g.ID)
	if err != nil {
		readFailed(s.logger, s.metrics, "classroom_members", err, zap.String("classroom_id", g.ID))
		return out, nil
	}
	return append(out, list...), nil
}

func (s *teamService) RemoveClassroomMember(ctx context.Context, instructor *model.AppUser, memberID string) error {
	if err := s.client.Guard("classroom.remove_member"); err != nil {
		return err
	}
	m, err := s.client.Tables.Classroom.GetMember(ctx, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}
		return backend.Classify("classroom.get_member", err)
	}
	if _, err := s.ownedClassroom(ctx, instructor, m.GroupID); err != nil {
		return err
	}
	if err := s.client.Tables.Classroom.RemoveMember(ctx, m.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}
		return backend.Classify("classroom.remove_member", err)
	}
	return nil
}

// ── teams ──

func (s *teamService) CreateTeam(ctx context.Context, instructor *model.AppUser, classroomID string, req *dto.CreateTeamRequest) (*model.TeamGroup, error) {
	g, err := s.ownedClassroom(ctx, instructor, classroomID)
	if err != nil {
		return nil, err
	}
	t := &model.TeamGroup{ClassroomGroupID: g.ID, Name: strings.TrimSpace(req.Name), CreatedBy: instructor.ID}
	if err := s.client.Tables.Team.Create(ctx, t); err != nil {
		return nil, backend.Classify("team.create", err)
	}
	s.logger.Info("team created", zap.String("id", t.ID), zap.String("classroom_id", g.ID))
	return t, nil
}

func (s *teamService) Teams(ctx context.Context, instructor *model.AppUser, classroomID string) ([]model.TeamGroup, error) {
	g, err := s.ownedClassroom(ctx, instructor, classroomID)
	if err != nil {
		return nil, err
	}
	out := []model.TeamGroup{}
	list, err := s.client.Tables.Team.ListByClassroom(ctx, g.ID)
	if err != nil {
		readFailed(s.logger, s.metrics, "team_groups", err, zap.String("classroom_id", g.ID))
		return out, nil
	}
	return append(out, list...), nil
}

// ownedTeam resolves a team and checks the caller owns its classroom.
func (s *teamService) ownedTeam(ctx context.Context, instructor *model.AppUser, teamID string) (*model.TeamGroup, error) {
	if err := s.client.Guard("team.owned"); err != nil {
		return nil, err
	}
	t, err := s.client.Tables.Team.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, backend.Classify("team.get", err)
	}
	if _, err := s.ownedClassroom(ctx, instructor, t.ClassroomGroupID); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *teamService) DeleteTeam(ctx context.Context, instructor *model.AppUser, teamID string) error {
	t, err := s.ownedTeam(ctx, instructor, teamID)
	if err != nil {
		return err
	}
	if err := s.client.Tables.Team.Delete(ctx, t.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTeamNotFound
		}
		return backend.Classify("team.delete", err)
	}
	s.logger.Info("team deleted", zap.String("id", t.ID))
	return nil
}

func (s *teamService) AddTeamMember(ctx context.Context, instructor *model.AppUser, teamID string, req *dto.AddTeamMemberRequest) (*model.TeamMember, error) {
	t, err := s.ownedTeam(ctx, instructor, teamID)
	if err != nil {
		return nil, err
	}
	p, err := s.student(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	inClass, err := s.client.Tables.Classroom.IsMember(ctx, t.ClassroomGroupID, p.ID)
	if err != nil {
		return nil, backend.Classify("classroom.is_member", err)
	}
	if !inClass {
		return nil, ErrNotClassroomMember
	}

	m := &model.TeamMember{
		TeamID:       t.ID,
		UserID:       p.ID,
		UserName:     p.Name,
		AptitudeType: optional(req.AptitudeType),
		AnimalIcon:   optional(req.AnimalIcon),
	}
	if err := s.client.Tables.Team.AddMember(ctx, m); err != nil {
		if backend.IsUniqueViolation(err) {
			return nil, ErrAlreadyMember
		}
		return nil, backend.Classify("team.add_member", err)
	}
	s.logger.Info("student added to team", zap.String("team_id", t.ID), zap.String("user_id", p.ID))
	return m, nil
}

func (s *teamService) TeamMembers(ctx context.Context, instructor *model.AppUser, teamID string) ([]model.TeamMember, error) {
	t, err := s.ownedTeam(ctx, instructor, teamID)
	if err != nil {
		return nil, err
	}
	return s.members(ctx, t.ID), nil
}

func (s *teamService) members(ctx context.Context, teamID string) []model.TeamMember {
	out := []model.TeamMember{}
	list, err := s.client.Tables.Team.ListMembers(ctx, teamID)
	if err != nil {
		readFailed(s.logger, s.metrics, "team_members", err, zap.String("team_id", teamID))
		return out
	}
	return append(out, list...)
}

func (s *teamService) RemoveTeamMember(ctx context.Context, instructor *model.AppUser, memberID string) error {
	if err := s.client.Guard("team.remove_member"); err != nil {
		return err
	}
	m, err := s.client.Tables.Team.GetMember(ctx, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}
		return backend.Classify("team.get_member", err)
	}
	if _, err := s.ownedTeam(ctx, instructor, m.TeamID); err != nil {
		return err
	}
	if err := s.client.Tables.Team.RemoveMember(ctx, m.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}
		return backend.Classify("team.remove_member", err)
	}
	return nil
}

// ── student side ──

// membership is the caller's team membership, nil when there is none.
func (s *teamService) membership(ctx context.Context, userID string) (*model.TeamMember, error) {
	m, err := s.client.Tables.Team.FindMembership(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

func (s *teamService) MyTeam(ctx context.Context, userID string) *model.MyTeam {
	if s.client.Guard("team.mine") != nil {
		return nil
	}
	m, err := s.membership(ctx, userID)
	if err != nil {
		readFailed(s.logger, s.metrics, "team_members", err, zap.String("user_id", userID))
		return nil
	}
	if m == nil {
		return nil
	}
	t, err := s.client.Tables.Team.GetByID(ctx, m.TeamID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			readFailed(s.logger, s.metrics, "team_groups", err, zap.String("team_id", m.TeamID))
		}
		return nil
	}
	g, err := s.client.Tables.Classroom.GetByID(ctx, t.ClassroomGroupID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			readFailed(s.logger, s.metrics, "classroom_groups", err, zap.String("classroom_id", t.ClassroomGroupID))
		}
		return nil
	}
	return &model.MyTeam{Team: *t, Classroom: *g, Members: s.members(ctx, t.ID)}
}

func (s *teamService) AddIdea(ctx context.Context, user *model.AppUser, req *dto.CreateTeamIdeaRequest) (*model.TeamIdea, error) {
	if err := s.client.Guard("team.add_idea"); err != nil {
		return nil, err
	}
	m, err := s.membership(ctx, user.ID)
	if err != nil {
		return nil, backend.Classify("team.add_idea", err)
	}
	if m == nil {
		return nil, ErrNoTeam
	}
	idea := &model.TeamIdea{
		TeamID:     m.TeamID,
		UserID:     user.ID,
		UserName:   m.UserName,
		AnimalIcon: m.AnimalIcon,
		ToolID:     req.ToolID,
		Title:      strings.TrimSpace(req.Title),
		Content:    req.Content,
	}
	if user.Name != "" {
		idea.UserName = user.Name
	}
	if err := s.client.Tables.Team.AddIdea(ctx, idea); err != nil {
		return nil, backend.Classify("team.add_idea", err)
	}
	return idea, nil
}

func (s *teamService) Ideas(ctx context.Context, userID string) []model.TeamIdea {
	out := []model.TeamIdea{}
	if s.client.Guard("team.ideas") != nil {
		return out
	}
	m, err := s.membership(ctx, userID)
	if err != nil {
		readFailed(s.logger, s.metrics, "team_members", err, zap.String("user_id", userID))
		return out
	}
	if m == nil {
		return out
	}
	list, err := s.client.Tables.Team.ListIdeas(ctx, m.TeamID)
	if err != nil {
		readFailed(s.logger, s.metrics, "team_ideas", err, zap.String("team_id", m.TeamID))
		return out
	}
	return append(out, list...)
}

func (s *teamService) DeleteIdea(ctx context.Context, userID, ideaID string) error {
	if err := s.client.Guard("team.delete_idea"); err != nil {
		return err
	}
	err := s.client.Tables.Team.DeleteIdea(ctx, userID, ideaID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrTeamIdeaNotFound
	}
	return backend.Classify("team.delete_idea", err)
}

// ── assignments ──

func (s *teamService) IsAssignedToTrack(ctx context.Context, userID string, track model.TrackID) bool {
	if s.client.Guard("classroom.assigned") != nil {
		return false
	}
	ok, err := s.client.Tables.Classroom.HasTrackMembership(ctx, userID, track)
	if err != nil {
		readFailed(s.logger, s.metrics, "classroom_members", err, zap.String("user_id", userID))
		return false
	}
	return ok
}

func (s *teamService) Assignments(ctx context.Context, userID string) []model.StudentAssignment {
	out := []model.StudentAssignment{}
	if s.client.Guard("classroom.assignments") != nil {
		return out
	}
	list, err := s.client.Tables.Classroom.ListActiveAssignments(ctx, userID)
	if err != nil {
		readFailed(s.logger, s.metrics, "classroom_members", err, zap.String("user_id", userID))
		return out
	}
	return append(out, list...)
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
