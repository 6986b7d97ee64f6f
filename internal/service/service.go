package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/infoamous-source/kiosk-sub001/config"
	"github.com/infoamous-source/kiosk-sub001/internal/backend"
	"github.com/infoamous-source/kiosk-sub001/pkg/metrics"
)

// KeyValueStore is the durable key-value store holding visibility documents.
// pkg/redis.Client implements it.
type KeyValueStore interface {
	GetString(ctx context.Context, key string) (string, error)
	SetString(ctx context.Context, key, value string) error
}

// Service aggregates the application state holders.
type Service struct {
	Auth           AuthService
	Enrollment     EnrollmentService
	Visibility     VisibilityService
	Profile        ProfileService
	Organization   OrganizationService
	Notification   NotificationService
	Portfolio      PortfolioService
	IdeaBox        IdeaBoxService
	Progress       ProgressService
	Activity       ActivityService
	SchoolProgress SchoolProgressService
	Team           TeamService
}

// NewService wires every holder to the backend. kv and m may be nil.
func NewService(
	cfg *config.Config,
	client *backend.Client,
	kv KeyValueStore,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Service {
	enrollment := NewEnrollmentService(client, m, logger)
	return &Service{
		Auth:           NewAuthService(&cfg.Auth, client, enrollment, m, logger),
		Enrollment:     enrollment,
		Visibility:     NewVisibilityService(client, kv, logger),
		Profile:        NewProfileService(client, m, logger),
		Organization:   NewOrganizationService(client, m, logger),
		Notification:   NewNotificationService(client, m, logger),
		Portfolio:      NewPortfolioService(client, m, logger),
		IdeaBox:        NewIdeaBoxService(client, m, logger),
		Progress:       NewProgressService(client, m, logger),
		Activity:       NewActivityService(client, cfg.Jobs.ActivityLogCap, m, logger),
		SchoolProgress: NewSchoolProgressService(client, enrollment, m, logger),
		Team:           NewTeamService(client, m, logger),
	}
}

// Close detaches the auth subscription.
func (s *Service) Close() {
	if s.Auth != nil {
		s.Auth.Close()
	}
}

// readFailed logs a swallowed read error. Reads never fail upward: callers
// get an empty result and cannot tell "not found" from "transient".
func readFailed(logger *zap.Logger, m *metrics.Metrics, table string, err error, fields ...zap.Field) {
	logger.Error("backend read failed", append(fields, zap.String("table", table), zap.Error(err))...)
	if m != nil {
		m.BackendReadErrors.WithLabelValues(table).Inc()
	}
}

func nowUTC() time.Time { return time.Now().UTC() }
