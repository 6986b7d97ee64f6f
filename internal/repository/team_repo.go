package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/infoamous-source/kiosk-sub001/internal/model"
)

// ClassroomRepository accesses classroom_groups and classroom_members.
type ClassroomRepository interface {
	Create(ctx context.Context, g *model.ClassroomGroup) error
	GetByID(ctx context.Context, id string) (*model.ClassroomGroup, error)
	// ListByInstructor returns newest first.
	ListByInstructor(ctx context.Context, instructorID string) ([]model.ClassroomGroup, error)
	Delete(ctx context.Context, id string) error

	AddMember(ctx context.Context, m *model.ClassroomMember) error
	GetMember(ctx context.Context, id string) (*model.ClassroomMember, error)
	// ListMembers returns oldest first.
	ListMembers(ctx context.Context, groupID string) ([]model.ClassroomMember, error)
	IsMember(ctx context.Context, groupID, userID string) (bool, error)
	RemoveMember(ctx context.Context, id string) error

	// HasTrackMembership reports whether userID sits in any classroom of track.
	HasTrackMembership(ctx context.Context, userID string, track model.TrackID) (bool, error)
	// ListActiveAssignments joins the user's active memberships to their classrooms.
	ListActiveAssignments(ctx context.Context, userID string) ([]model.StudentAssignment, error)
}

type classroomRepo struct {
	db *gorm.DB
}

// NewClassroomRepo creates a ClassroomRepository.
func NewClassroomRepo(db *gorm.DB) ClassroomRepository {
	return &classroomRepo{db: db}
}

func (r *classroomRepo) Create(ctx context.Context, g *model.ClassroomGroup) error {
	return r.db.WithContext(ctx).Create(g).Error
}

func (r *classroomRepo) GetByID(ctx context.Context, id string) (*model.ClassroomGroup, error) {
	var g model.ClassroomGroup
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&g).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *classroomRepo) ListByInstructor(ctx context.Context, instructorID string) ([]model.ClassroomGroup, error) {
	var list []model.ClassroomGroup
	err := r.db.WithContext(ctx).
		Where("instructor_id = ?", instructorID).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

func (r *classroomRepo) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, &model.ClassroomGroup{}, id)
}

func (r *classroomRepo) AddMember(ctx context.Context, m *model.ClassroomMember) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *classroomRepo) GetMember(ctx context.Context, id string) (*model.ClassroomMember, error) {
	var m model.ClassroomMember
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *classroomRepo) ListMembers(ctx context.Context, groupID string) ([]model.ClassroomMember, error) {
	var list []model.ClassroomMember
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}

func (r *classroomRepo) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.ClassroomMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&n).Error
	return n > 0, err
}

func (r *classroomRepo) RemoveMember(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, &model.ClassroomMember{}, id)
}

func (r *classroomRepo) HasTrackMembership(ctx context.Context, userID string, track model.TrackID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.ClassroomMember{}).
		Joins("JOIN classroom_groups g ON g.id = classroom_members.group_id").
		Where("classroom_members.user_id = ? AND g.track = ?", userID, track).
		Limit(1).
		Count(&n).Error
	return n > 0, err
}

func (r *classroomRepo) ListActiveAssignments(ctx context.Context, userID string) ([]model.StudentAssignment, error) {
	var list []model.StudentAssignment
	err := r.db.WithContext(ctx).Model(&model.ClassroomMember{}).
		Select("g.track AS track, g.classroom_name AS classroom_name, g.id AS group_id").
		Joins("JOIN classroom_groups g ON g.id = classroom_members.group_id").
		Where("classroom_members.user_id = ? AND classroom_members.status = ?", userID, model.MemberActive).
		Order("classroom_members.created_at ASC").
		Scan(&list).Error
	return list, err
}

// TeamRepository accesses team_groups, team_members and team_ideas.
type TeamRepository interface {
	Create(ctx context.Context, t *model.TeamGroup) error
	GetByID(ctx context.Context, id string) (*model.TeamGroup, error)
	// ListByClassroom returns oldest first.
	ListByClassroom(ctx context.Context, classroomID string) ([]model.TeamGroup, error)
	Delete(ctx context.Context, id string) error

	AddMember(ctx context.Context, m *model.TeamMember) error
	GetMember(ctx context.Context, id string) (*model.TeamMember, error)
	// ListMembers returns in join order.
	ListMembers(ctx context.Context, teamID string) ([]model.TeamMember, error)
	// FindMembership returns the user's earliest team membership.
	FindMembership(ctx context.Context, userID string) (*model.TeamMember, error)
	RemoveMember(ctx context.Context, id string) error

	AddIdea(ctx context.Context, idea *model.TeamIdea) error
	// ListIdeas returns newest first.
	ListIdeas(ctx context.Context, teamID string) ([]model.TeamIdea, error)
	// DeleteIdea removes the idea only when it belongs to userID.
	DeleteIdea(ctx context.Context, userID, id string) error
}

type teamRepo struct {
	db *gorm.DB
}

// NewTeamRepo creates a TeamRepository.
func NewTeamRepo(db *gorm.DB) TeamRepository {
	return &teamRepo{db: db}
}

func (r *teamRepo) Create(ctx context.Context, t *model.TeamGroup) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *teamRepo) GetByID(ctx context.Context, id string) (*model.TeamGroup, error) {
	var t model.TeamGroup
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *teamRepo) ListByClassroom(ctx context.Context, classroomID string) ([]model.TeamGroup, error) {
	var list []model.TeamGroup
	err := r.db.WithContext(ctx).
		Where("classroom_group_id = ?", classroomID).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}

func (r *teamRepo) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, &model.TeamGroup{}, id)
}

func (r *teamRepo) AddMember(ctx context.Context, m *model.TeamMember) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *teamRepo) GetMember(ctx context.Context, id string) (*model.TeamMember, error) {
	var m model.TeamMember
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *teamRepo) ListMembers(ctx context.Context, teamID string) ([]model.TeamMember, error) {
	var list []model.TeamMember
	err := r.db.WithContext(ctx).
		Where("team_id = ?", teamID).
		Order("joined_at ASC").
		Find(&list).Error
	return list, err
}

func (r *teamRepo) FindMembership(ctx context.Context, userID string) (*model.TeamMember, error) {
	var m model.TeamMember
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("joined_at ASC").
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *teamRepo) RemoveMember(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, &model.TeamMember{}, id)
}

func (r *teamRepo) AddIdea(ctx context.Context, idea *model.TeamIdea) error {
	return r.db.WithContext(ctx).Create(idea).Error
}

func (r *teamRepo) ListIdeas(ctx context.Context, teamID string) ([]model.TeamIdea, error) {
	var list []model.TeamIdea
	err := r.db.WithContext(ctx).
		Where("team_id = ?", teamID).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

func (r *teamRepo) DeleteIdea(ctx context.Context, userID, id string) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&model.TeamIdea{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// deleteByID maps a no-op delete to gorm.ErrRecordNotFound.
func deleteByID(ctx context.Context, db *gorm.DB, row interface{}, id string) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(row)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
