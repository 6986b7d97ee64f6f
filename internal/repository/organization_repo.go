package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/infoamous-source/kiosk-sub001/internal/model"
)

// OrganizationRepository accesses organizations.
type OrganizationRepository interface {
	Create(ctx context.Context, org *model.Organization) error
	GetByID(ctx context.Context, id string) (*model.Organization, error)
	GetByCode(ctx context.Context, code string) (*model.Organization, error)
	ListByInstructor(ctx context.Context, instructorID string) ([]model.Organization, error)
	Delete(ctx context.Context, id string) error
}

type organizationRepo struct {
	db *gorm.DB
}

// NewOrganizationRepo creates an OrganizationRepository.
func NewOrganizationRepo(db *gorm.DB) OrganizationRepository {
	return &organizationRepo{db: db}
}

func (r *organizationRepo) Create(ctx context.Context, org *model.Organization) error {
	return r.db.WithContext(ctx).Create(org).Error
}

func (r *organizationRepo) GetByID(ctx context.Context, id string) (*model.Organization, error) {
	var org model.Organization
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *organizationRepo) GetByCode(ctx context.Context, code string) (*model.Organization, error) {
	var org model.Organization
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *organizationRepo) ListByInstructor(ctx context.Context, instructorID string) ([]model.Organization, error) {
	var list []model.Organization
	err := r.db.WithContext(ctx).
		Where("instructor_id = ?", instructorID).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

func (r *organizationRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Organization{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
