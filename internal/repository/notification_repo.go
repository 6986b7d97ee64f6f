package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/infoamous-source/kiosk-sub001/internal/model"
)

// NotificationRepository accesses notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	ListByInstructor(ctx context.Context, instructorID string, limit int) ([]model.Notification, error)
	// ListForStudent returns notifications addressed to the student, newest first.
	ListForStudent(ctx context.Context, studentID string, hasAPIKey bool, limit int) ([]model.Notification, error)
}

type notificationRepo struct {
	db *gorm.DB
}

// NewNotificationRepo creates a NotificationRepository.
func NewNotificationRepo(db *gorm.DB) NotificationRepository {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) Create(ctx context.Context, n *model.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *notificationRepo) ListByInstructor(ctx context.Context, instructorID string, limit int) ([]model.Notification, error) {
	var list []model.Notification
	err := r.db.WithContext(ctx).
		Where("instructor_id = ?", instructorID).
		Order("created_at DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

func (r *notificationRepo) ListForStudent(ctx context.Context, studentID string, hasAPIKey bool, limit int) ([]model.Notification, error) {
	var list []model.Notification
	err := r.db.WithContext(ctx).
		Where("target_type = ?", model.TargetAll).
		Or("target_type = ? AND ? = ANY(target_student_ids)", model.TargetSpecific, studentID).
		Or("target_type = ? AND ?", model.TargetNoAPIKey, !hasAPIKey).
		Order("created_at DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}
