package service

import (
	"context"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/infoamous-source/kiosk-sub001/internal/backend"
	"github.com/infoamous-source/kiosk-sub001/internal/dto"
	"github.com/infoamous-source/kiosk-sub001/internal/model"
	"github.com/infoamous-source/kiosk-sub001/pkg/metrics"
)

// ProgressService tracks per-module learning progress. Rows are unique per
// (user, module) and written by upsert.
type ProgressService interface {
	Digital(ctx context.Context, userID string) []model.DigitalProgress
	SaveDigital(ctx context.Context, userID string, req *dto.SaveDigitalProgressRequest) (*model.DigitalProgress, error)
	Marketing(ctx context.Context, userID string) []model.MarketingProgress
	// RecordMarketing applies one event as a partial upsert.
	RecordMarketing(ctx context.Context, userID string, req *dto.MarketingProgressRequest) (*model.MarketingProgress, error)
}

type progressService struct {
	client  *backend.Client
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewProgressService creates a ProgressService.
func NewProgressService(client *backend.Client, m *metrics.Metrics, logger *zap.Logger) ProgressService {
	return &progressService{client: client, metrics: m, logger: logger, now: nowUTC}
}

func (s *progressService) Digital(ctx context.Context, userID string) []model.DigitalProgress {
	if s.client.Guard("progress.digital") != nil {
		return []model.DigitalProgress{}
	}
	list, err := s.client.Tables.DigitalProgress.ListByUser(ctx, userID)
	if err != nil {
		readFailed(s.logger, s.metrics, "digital_progress", err, zap.String("user_id", userID))
		return []model.DigitalProgress{}
	}
	return list
}

func (s *progressService) SaveDigital(ctx context.Context, userID string, req *dto.SaveDigitalProgressRequest) (*model.DigitalProgress, error) {
	if err := s.client.Guard("progress.save_digital"); err != nil {
		return nil, err
	}
	now := s.now()
	p := &model.DigitalProgress{
		UserID:             userID,
		ModuleID:           req.ModuleID,
		CompletedSteps:     append(pq.StringArray{}, req.CompletedSteps...),
		CompletedPractices: append(pq.StringArray{}, req.CompletedPractices...),
		UpdatedAt:          now,
	}
	if req.Completed {
		p.CompletedAt = &now
	}
	if err := s.client.Tables.DigitalProgress.Upsert(ctx, p); err != nil {
		return nil, backend.Classify("progress.save_digital", err)
	}
	return p, nil
}

func (s *progressService) Marketing(ctx context.Context, userID string) []model.MarketingProgress {
	if s.client.Guard("progress.marketing") != nil {
		return []model.MarketingProgress{}
	}
	list, err := s.client.Tables.MarketingProgress.ListByUser(ctx, userID)
	if err != nil {
		readFailed(s.logger, s.metrics, "marketing_progress", err, zap.String("user_id", userID))
		return []model.MarketingProgress{}
	}
	return list
}

func (s *progressService) RecordMarketing(ctx context.Context, userID string, req *dto.MarketingProgressRequest) (*model.MarketingProgress, error) {
	if err := s.client.Guard("progress.record_marketing"); err != nil {
		return nil, err
	}
	now := s.now()

	current := &model.MarketingProgress{UserID: userID, ModuleID: req.ModuleID}
	for _, p := range s.Marketing(ctx, userID) {
		if p.ModuleID == req.ModuleID {
			p := p
			current = &p
			break
		}
	}
	current.UpdatedAt = now

	var columns []string
	switch req.Event {
	case dto.MarketingEventView:
		if current.ViewedAt == nil {
			current.ViewedAt = &now
		}
		columns = []string{"viewed_at"}
	case dto.MarketingEventToolUse:
		current.ToolUsedAt = &now
		current.ToolOutputCount++
		columns = []string{"tool_used_at", "tool_output_count"}
	case dto.MarketingEventComplete:
		current.CompletedAt = &now
		columns = []string{"completed_at"}
	}

	if err := s.client.Tables.MarketingProgress.Upsert(ctx, current, columns); err != nil {
		return nil, backend.Classify("progress.record_marketing", err)
	}
	return current, nil
}

// ActivityService is the per-user learning event log, capped to the newest
// rows.
type ActivityService interface {
	Log(ctx context.Context, userID string, req *dto.CreateActivityLogRequest) (*model.ActivityLog, error)
	List(ctx context.Context, userID string, trackID model.TrackID, limit int) []model.ActivityLog
	// TrimAll enforces the cap for every user.
	TrimAll(ctx context.Context) (int64, error)
}

type activityService struct {
	client  *backend.Client
	cap     int
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewActivityService creates an ActivityService keeping cap rows per user.
func NewActivityService(client *backend.Client, cap int, m *metrics.Metrics, logger *zap.Logger) ActivityService {
	if cap <= 0 {
		cap = 1000
	}
	return &activityService{client: client, cap: cap, metrics: m, logger: logger}
}

func (s *activityService) Log(ctx context.Context, userID string, req *dto.CreateActivityLogRequest) (*model.ActivityLog, error) {
	if err := s.client.Guard("activity.log"); err != nil {
		return nil, err
	}
	l := &model.ActivityLog{
		UserID:   userID,
		TrackID:  req.TrackID,
		ModuleID: req.ModuleID,
		Action:   req.Action,
		Metadata: jsonMap(req.Metadata),
	}
	if err := s.client.Tables.ActivityLog.Create(ctx, l); err != nil {
		return nil, backend.Classify("activity.log", err)
	}
	if _, err := s.client.Tables.ActivityLog.TrimUser(ctx, userID, s.cap); err != nil {
		s.logger.Warn("trim activity log failed", zap.String("user_id", userID), zap.Error(err))
	}
	return l, nil
}

func (s *activityService) List(ctx context.Context, userID string, trackID model.TrackID, limit int) []model.ActivityLog {
	if s.client.Guard("activity.list") != nil {
		return []model.ActivityLog{}
	}
	list, err := s.client.Tables.ActivityLog.ListByUser(ctx, userID, trackID, limit)
	if err != nil {
		readFailed(s.logger, s.metrics, "activity_logs", err, zap.String("user_id", userID))
		return []model.ActivityLog{}
	}
	return list
}

func (s *activityService) TrimAll(ctx context.Context) (int64, error) {
	if err := s.client.Guard("activity.trim_all"); err != nil {
		return 0, err
	}
	n, err := s.client.Tables.ActivityLog.TrimAll(ctx, s.cap)
	if err != nil {
		return 0, backend.Classify("activity.trim_all", err)
	}
	return n, nil
}
