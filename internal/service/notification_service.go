package service

import (
	"context"
	"errors"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/infoamous-source/kiosk-sub001/internal/backend"
	"github.com/infoamous-source/kiosk-sub001/internal/dto"
	"github.com/infoamous-source/kiosk-sub001/internal/model"
	"github.com/infoamous-source/kiosk-sub001/pkg/metrics"
)

const (
	notificationHistoryLimit = 50
	notificationInboxLimit   = 20
)

var ErrNoTargetStudents = errors.New("specific notifications need at least one student")

// NotificationService sends instructor announcements and builds inboxes.
type NotificationService interface {
	Create(ctx context.Context, instructor *model.AppUser, req *dto.CreateNotificationRequest) (*model.Notification, error)
	History(ctx context.Context, instructorID string) []model.Notification
	Inbox(ctx context.Context, student *model.AppUser) []model.Notification
}

type notificationService struct {
	client  *backend.Client
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewNotificationService creates a NotificationService.
func NewNotificationService(client *backend.Client, m *metrics.Metrics, logger *zap.Logger) NotificationService {
	return &notificationService{client: client, metrics: m, logger: logger}
}

func (s *notificationService) Create(ctx context.Context, instructor *model.AppUser, req *dto.CreateNotificationRequest) (*model.Notification, error) {
	if err := s.client.Guard("notification.create"); err != nil {
		return nil, err
	}
	if !instructor.IsInstructor() {
		return nil, ErrNotInstructor
	}

	targets := pq.StringArray{}
	if req.TargetType == model.TargetSpecific {
		if len(req.TargetStudentIDs) == 0 {
			return nil, ErrNoTargetStudents
		}
		targets = append(targets, req.TargetStudentIDs...)
	}

	n := &model.Notification{
		InstructorID:     instructor.ID,
		TargetType:       req.TargetType,
		TargetStudentIDs: targets,
		Title:            req.Title,
		Message:          req.Message,
		ActionURL:        req.ActionURL,
	}
	if err := s.client.Tables.Notification.Create(ctx, n); err != nil {
		return nil, backend.Classify("notification.create", err)
	}
	s.logger.Info("notification sent",
		zap.String("id", n.ID),
		zap.String("target_type", n.TargetType),
		zap.Int("targets", len(targets)),
	)
	return n, nil
}

func (s *notificationService) History(ctx context.Context, instructorID string) []model.Notification {
	if s.client.Guard("notification.history") != nil {
		return []model.Notification{}
	}
	list, err := s.client.Tables.Notification.ListByInstructor(ctx, instructorID, notificationHistoryLimit)
	if err != nil {
		readFailed(s.logger, s.metrics, "notifications", err)
		return []model.Notification{}
	}
	return list
}

func (s *notificationService) Inbox(ctx context.Context, student *model.AppUser) []model.Notification {
	if s.client.Guard("notification.inbox") != nil {
		return []model.Notification{}
	}
	list, err := s.client.Tables.Notification.ListForStudent(ctx, student.ID, student.HasAPIKey, notificationInboxLimit)
	if err != nil {
		readFailed(s.logger, s.metrics, "notifications", err, zap.String("student_id", student.ID))
		return []model.Notification{}
	}
	return list
}
