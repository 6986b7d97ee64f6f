package job

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/infoamous-source/kiosk-sub001/config"
)

// runTimeout bounds a single run of a maintenance job.
const runTimeout = 4 * time.Minute

// ActivityTrimmer enforces the per-user activity log cap.
// service.ActivityService implements it.
type ActivityTrimmer interface {
	TrimAll(ctx context.Context) (int64, error)
}

// Scheduler runs periodic maintenance on cron.
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger
}

// NewScheduler registers every job. Overlapping runs of a job are skipped.
func NewScheduler(cfg *config.JobsConfig, activity ActivityTrimmer, logger *zap.Logger) (*Scheduler, error) {
	cronLogger := cron.PrintfLogger(zap.NewStdLog(logger.Named("cron")))
	c := cron.New(cron.WithChain(
		cron.Recover(cronLogger),
		cron.SkipIfStillRunning(cronLogger),
	))
	s := &Scheduler{cron: c, logger: logger}

	if _, err := c.AddFunc(cfg.ActivityTrimSchedule, func() { s.trimActivity(activity) }); err != nil {
		return nil, fmt.Errorf("schedule activity trim %q: %w", cfg.ActivityTrimSchedule, err)
	}
	return s, nil
}

func (s *Scheduler) trimActivity(activity ActivityTrimmer) {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	start := time.Now()
	n, err := activity.TrimAll(ctx)
	if err != nil {
		s.logger.Error("activity trim failed", zap.Error(err))
		return
	}
	s.logger.Info("activity trim finished",
		zap.Int64("removed", n),
		zap.Duration("took", time.Since(start)),
	)
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", zap.Int("jobs", len(s.cron.Entries())))
}

// Stop waits for running jobs or ctx, whichever ends first.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out")
	}
}
