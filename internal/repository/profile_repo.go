package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/infoamous-source/kiosk-sub001/internal/model"
)

// AuthUserRepository accesses auth_users.
type AuthUserRepository interface {
	Create(ctx context.Context, u *model.AuthUser) error
	GetByID(ctx context.Context, id string) (*model.AuthUser, error)
	GetByEmail(ctx context.Context, email string) (*model.AuthUser, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	TouchSignIn(ctx context.Context, id string, at time.Time) error
}

type authUserRepo struct {
	db *gorm.DB
}

// NewAuthUserRepo creates an AuthUserRepository.
func NewAuthUserRepo(db *gorm.DB) AuthUserRepository {
	return &authUserRepo{db: db}
}

func (r *authUserRepo) Create(ctx context.Context, u *model.AuthUser) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *authUserRepo) GetByID(ctx context.Context, id string) (*model.AuthUser, error) {
	var u model.AuthUser
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *authUserRepo) GetByEmail(ctx context.Context, email string) (*model.AuthUser, error) {
	var u model.AuthUser
	if err := r.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *authUserRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	res := r.db.WithContext(ctx).
		Model(&model.AuthUser{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"password_hash": passwordHash, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *authUserRepo) TouchSignIn(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.AuthUser{}).
		Where("id = ?", id).
		Update("last_sign_in_at", at).Error
}

// ProfileRepository accesses profiles.
type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*model.Profile, error)
	// Update writes only the given columns.
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	ListStudents(ctx context.Context) ([]model.Profile, error)
	ListByInstructorCode(ctx context.Context, code string) ([]model.Profile, error)
	SearchStudents(ctx context.Context, query string, limit int) ([]model.Profile, error)
	// FindInstructorByCode returns the instructor owning code.
	FindInstructorByCode(ctx context.Context, code string) (*model.Profile, error)
	ListByOrgCode(ctx context.Context, code string) ([]model.Profile, error)
	CountByOrgCode(ctx context.Context, code string) (int64, error)
}

type profileRepo struct {
	db *gorm.DB
}

// NewProfileRepo creates a ProfileRepository.
func NewProfileRepo(db *gorm.DB) ProfileRepository {
	return &profileRepo{db: db}
}

func (r *profileRepo) GetByID(ctx context.Context, id string) (*model.Profile, error) {
	var p model.Profile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *profileRepo) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now()
	res := r.db.WithContext(ctx).Model(&model.Profile{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *profileRepo) ListStudents(ctx context.Context) ([]model.Profile, error) {
	var list []model.Profile
	err := r.db.WithContext(ctx).
		Where("role = ?", model.RoleStudent).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

func (r *profileRepo) ListByInstructorCode(ctx context.Context, code string) ([]model.Profile, error) {
	var list []model.Profile
	err := r.db.WithContext(ctx).
		Where("role = ? AND instructor_code = ?", model.RoleStudent, code).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

func (r *profileRepo) SearchStudents(ctx context.Context, query string, limit int) ([]model.Profile, error) {
	var list []model.Profile
	pattern := "%" + query + "%"
	err := r.db.WithContext(ctx).
		Where("role = ?", model.RoleStudent).
		Where("name ILIKE ? OR email ILIKE ?", pattern, pattern).
		Order("name ASC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

func (r *profileRepo) FindInstructorByCode(ctx context.Context, code string) (*model.Profile, error) {
	var p model.Profile
	err := r.db.WithContext(ctx).
		Where("role = ? AND instructor_code = ?", model.RoleInstructor, code).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *profileRepo) ListByOrgCode(ctx context.Context, code string) ([]model.Profile, error) {
	var list []model.Profile
	err := r.db.WithContext(ctx).
		Where("role = ? AND org_code = ?", model.RoleStudent, code).
		Order("name ASC").
		Find(&list).Error
	return list, err
}

func (r *profileRepo) CountByOrgCode(ctx context.Context, code string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Profile{}).
		Where("role = ? AND org_code = ?", model.RoleStudent, code).
		Count(&n).Error
	return n, err
}
