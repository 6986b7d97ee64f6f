package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/infoamous-source/kiosk-sub001/internal/model"
)

// InstructorSettingsRepository accesses instructor_settings.
type InstructorSettingsRepository interface {
	Get(ctx context.Context, code string) (*model.InstructorSettingsRow, error)
	// Upsert replaces the whole document of row.InstructorCode.
	Upsert(ctx context.Context, row *model.InstructorSettingsRow) error
}

type instructorSettingsRepo struct {
	db *gorm.DB
}

// NewInstructorSettingsRepo creates an InstructorSettingsRepository.
func NewInstructorSettingsRepo(db *gorm.DB) InstructorSettingsRepository {
	return &instructorSettingsRepo{db: db}
}

func (r *instructorSettingsRepo) Get(ctx context.Context, code string) (*model.InstructorSettingsRow, error) {
	var row model.InstructorSettingsRow
	if err := r.db.WithContext(ctx).Where("instructor_code = ?", code).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *instructorSettingsRepo) Upsert(ctx context.Context, row *model.InstructorSettingsRow) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "instructor_code"}},
			DoUpdates: clause.AssignmentColumns([]string{"settings", "updated_at"}),
		}).
		Create(row).Error
}
