package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/infoamous-source/kiosk-sub001/internal/model"
)

// EnrollmentRepository accesses enrollments.
type EnrollmentRepository interface {
	Create(ctx context.Context, e *model.Enrollment) error
	GetByID(ctx context.Context, id string) (*model.Enrollment, error)
	// ListByStudent orders by enrolled_at ascending.
	ListByStudent(ctx context.Context, studentID string) ([]model.Enrollment, error)
	// ListAll orders by enrolled_at descending.
	ListAll(ctx context.Context) ([]model.Enrollment, error)
	ListBySchool(ctx context.Context, schoolID model.SchoolID) ([]model.Enrollment, error)
	// Save writes status and every lifecycle timestamp of e.
	Save(ctx context.Context, e *model.Enrollment) error
}

type enrollmentRepo struct {
	db *gorm.DB
}

// NewEnrollmentRepo creates an EnrollmentRepository.
func NewEnrollmentRepo(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepo{db: db}
}

func (r *enrollmentRepo) Create(ctx context.Context, e *model.Enrollment) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *enrollmentRepo) GetByID(ctx context.Context, id string) (*model.Enrollment, error) {
	var e model.Enrollment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *enrollmentRepo) ListByStudent(ctx context.Context, studentID string) ([]model.Enrollment, error) {
	var list []model.Enrollment
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("enrolled_at ASC").
		Find(&list).Error
	return list, err
}

func (r *enrollmentRepo) ListAll(ctx context.Context) ([]model.Enrollment, error) {
	var list []model.Enrollment
	err := r.db.WithContext(ctx).Order("enrolled_at DESC").Find(&list).Error
	return list, err
}

func (r *enrollmentRepo) ListBySchool(ctx context.Context, schoolID model.SchoolID) ([]model.Enrollment, error) {
	var list []model.Enrollment
	err := r.db.WithContext(ctx).
		Where("school_id = ?", schoolID).
		Order("enrolled_at DESC").
		Find(&list).Error
	return list, err
}

func (r *enrollmentRepo) Save(ctx context.Context, e *model.Enrollment) error {
	res := r.db.WithContext(ctx).
		Model(&model.Enrollment{}).
		Where("id = ?", e.ID).
		Updates(map[string]interface{}{
			"status":        e.Status,
			"instructor_id": e.InstructorID,
			"activated_at":  e.ActivatedAt,
			"suspended_at":  e.SuspendedAt,
			"completed_at":  e.CompletedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SchoolProfileRepository accesses school_profiles.
type SchoolProfileRepository interface {
	Create(ctx context.Context, p *model.SchoolProfile) error
	GetByEnrollment(ctx context.Context, enrollmentID string) (*model.SchoolProfile, error)
}

type schoolProfileRepo struct {
	db *gorm.DB
}

// NewSchoolProfileRepo creates a SchoolProfileRepository.
func NewSchoolProfileRepo(db *gorm.DB) SchoolProfileRepository {
	return &schoolProfileRepo{db: db}
}

func (r *schoolProfileRepo) Create(ctx context.Context, p *model.SchoolProfile) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *schoolProfileRepo) GetByEnrollment(ctx context.Context, enrollmentID string) (*model.SchoolProfile, error) {
	var p model.SchoolProfile
	if err := r.db.WithContext(ctx).Where("enrollment_id = ?", enrollmentID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}
