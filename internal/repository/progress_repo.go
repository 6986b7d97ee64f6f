package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/infoamous-source/kiosk-sub001/internal/model"
)

var userModuleConflict = []clause.Column{{Name: "user_id"}, {Name: "module_id"}}

// DigitalProgressRepository accesses digital_progress.
type DigitalProgressRepository interface {
	ListByUser(ctx context.Context, userID string) ([]model.DigitalProgress, error)
	// Upsert inserts or replaces the row of (user_id, module_id).
	Upsert(ctx context.Context, p *model.DigitalProgress) error
}

type digitalProgressRepo struct {
	db *gorm.DB
}

// NewDigitalProgressRepo creates a DigitalProgressRepository.
func NewDigitalProgressRepo(db *gorm.DB) DigitalProgressRepository {
	return &digitalProgressRepo{db: db}
}

func (r *digitalProgressRepo) ListByUser(ctx context.Context, userID string) ([]model.DigitalProgress, error) {
	var list []model.DigitalProgress
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("module_id ASC").Find(&list).Error
	return list, err
}

func (r *digitalProgressRepo) Upsert(ctx context.Context, p *model.DigitalProgress) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   userModuleConflict,
			DoUpdates: clause.AssignmentColumns([]string{"completed_steps", "completed_practices", "completed_at", "updated_at"}),
		}).
		Create(p).Error
}

// MarketingProgressRepository accesses marketing_progress.
type MarketingProgressRepository interface {
	ListByUser(ctx context.Context, userID string) ([]model.MarketingProgress, error)
	// Upsert writes only the named columns on conflict, leaving the rest intact.
	Upsert(ctx context.Context, p *model.MarketingProgress, columns []string) error
}

type marketingProgressRepo struct {
	db *gorm.DB
}

// NewMarketingProgressRepo creates a MarketingProgressRepository.
func NewMarketingProgressRepo(db *gorm.DB) MarketingProgressRepository {
	return &marketingProgressRepo{db: db}
}

func (r *marketingProgressRepo) ListByUser(ctx context.Context, userID string) ([]model.MarketingProgress, error) {
	var list []model.MarketingProgress
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("module_id ASC").Find(&list).Error
	return list, err
}

func (r *marketingProgressRepo) Upsert(ctx context.Context, p *model.MarketingProgress, columns []string) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   userModuleConflict,
			DoUpdates: clause.AssignmentColumns(append(columns, "updated_at")),
		}).
		Create(p).Error
}

// ActivityLogRepository accesses activity_logs.
type ActivityLogRepository interface {
	Create(ctx context.Context, l *model.ActivityLog) error
	// ListByUser returns newest first; limit <= 0 means no limit; trackID filters when non-empty.
	ListByUser(ctx context.Context, userID string, trackID model.TrackID, limit int) ([]model.ActivityLog, error)
	// TrimUser keeps the newest keep rows of the user.
	TrimUser(ctx context.Context, userID string, keep int) (int64, error)
	// TrimAll keeps the newest keep rows of every user.
	TrimAll(ctx context.Context, keep int) (int64, error)
}

type activityLogRepo struct {
	db *gorm.DB
}

// NewActivityLogRepo creates an ActivityLogRepository.
func NewActivityLogRepo(db *gorm.DB) ActivityLogRepository {
	return &activityLogRepo{db: db}
}

func (r *activityLogRepo) Create(ctx context.Context, l *model.ActivityLog) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *activityLogRepo) ListByUser(ctx context.Context, userID string, trackID model.TrackID, limit int) ([]model.ActivityLog, error) {
	var list []model.ActivityLog
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if trackID != "" {
		q = q.Where("track_id = ?", trackID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *activityLogRepo) TrimUser(ctx context.Context, userID string, keep int) (int64, error) {
	res := r.db.WithContext(ctx).Exec(`
		DELETE FROM activity_logs
		WHERE user_id = ? AND id NOT IN (
			SELECT id FROM activity_logs WHERE user_id = ? ORDER BY created_at DESC LIMIT ?
		)`, userID, userID, keep)
	return res.RowsAffected, res.Error
}

func (r *activityLogRepo) TrimAll(ctx context.Context, keep int) (int64, error) {
	res := r.db.WithContext(ctx).Exec(`
		DELETE FROM activity_logs a
		USING (
			SELECT id, ROW_NUMBER() OVER (PARTITION BY user_id ORDER BY created_at DESC) AS rn
			FROM activity_logs
		) ranked
		WHERE a.id = ranked.id AND ranked.rn > ?`, keep)
	return res.RowsAffected, res.Error
}

// SchoolProgressRepository accesses school_progress.
type SchoolProgressRepository interface {
	GetByEnrollment(ctx context.Context, enrollmentID string) (*model.SchoolProgress, error)
	// Upsert replaces the board of p.EnrollmentID.
	Upsert(ctx context.Context, p *model.SchoolProgress) error
	DeleteByEnrollment(ctx context.Context, enrollmentID string) error
}

type schoolProgressRepo struct {
	db *gorm.DB
}

// NewSchoolProgressRepo creates a SchoolProgressRepository.
func NewSchoolProgressRepo(db *gorm.DB) SchoolProgressRepository {
	return &schoolProgressRepo{db: db}
}

func (r *schoolProgressRepo) GetByEnrollment(ctx context.Context, enrollmentID string) (*model.SchoolProgress, error) {
	var p model.SchoolProgress
	if err := r.db.WithContext(ctx).Where("enrollment_id = ?", enrollmentID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *schoolProgressRepo) Upsert(ctx context.Context, p *model.SchoolProgress) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "enrollment_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"stamps", "graduation", "aptitude_result", "simulation_result",
				"market_compass_data", "updated_at",
			}),
		}).
		Create(p).Error
}

func (r *schoolProgressRepo) DeleteByEnrollment(ctx context.Context, enrollmentID string) error {
	return r.db.WithContext(ctx).Where("enrollment_id = ?", enrollmentID).Delete(&model.SchoolProgress{}).Error
}
