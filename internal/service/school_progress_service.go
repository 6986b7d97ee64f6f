package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/infoamous-source/kiosk-sub001/internal/backend"
	"github.com/infoamous-source/kiosk-sub001/internal/dto"
	"github.com/infoamous-source/kiosk-sub001/internal/model"
	"github.com/infoamous-source/kiosk-sub001/pkg/metrics"
)

// Result kinds accepted by SaveResult.
const (
	ResultAptitude      = "aptitude"
	ResultSimulation    = "simulation"
	ResultMarketCompass = "market_compass"
)

var (
	ErrSchoolNotStarted = errors.New("school has no active enrollment")
	ErrUnknownPeriod    = errors.New("unknown curriculum period")
	ErrUnknownResult    = errors.New("unknown result kind")
	ErrCannotGraduate   = errors.New("graduation requirements not met")
)

// SchoolProgressService manages the stamp board of an enrollment.
type SchoolProgressService interface {
	// Get returns the board, creating an empty one on first access.
	Get(ctx context.Context, studentID string, schoolID model.SchoolID) (*dto.SchoolProgressResponse, error)
	// EarnStamp is idempotent: a stamped period keeps its first time.
	EarnStamp(ctx context.Context, studentID string, schoolID model.SchoolID, period model.PeriodID) (*dto.SchoolProgressResponse, error)
	SaveResult(ctx context.Context, studentID string, schoolID model.SchoolID, kind string, data map[string]interface{}) (*dto.SchoolProgressResponse, error)
	Graduate(ctx context.Context, studentID string, schoolID model.SchoolID, review string) (*dto.SchoolProgressResponse, error)
	Reset(ctx context.Context, studentID string, schoolID model.SchoolID) (*dto.SchoolProgressResponse, error)
	// Calendar renders the board as an iCalendar file.
	Calendar(ctx context.Context, studentID string, schoolID model.SchoolID) ([]byte, string, error)
}

type schoolProgressService struct {
	client     *backend.Client
	enrollment EnrollmentService
	metrics    *metrics.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// NewSchoolProgressService creates a SchoolProgressService.
func NewSchoolProgressService(client *backend.Client, enrollment EnrollmentService, m *metrics.Metrics, logger *zap.Logger) SchoolProgressService {
	return &schoolProgressService{
		client:     client,
		enrollment: enrollment,
		metrics:    m,
		logger:     logger,
		now:        nowUTC,
	}
}

// enrollmentFor returns the student's latest row of the school. Only active
// and completed rows have a board.
func (s *schoolProgressService) enrollmentFor(ctx context.Context, studentID string, schoolID model.SchoolID) (*model.Enrollment, error) {
	if err := s.client.Guard("school_progress.enrollment"); err != nil {
		return nil, err
	}
	if !model.IsValidSchool(schoolID) {
		return nil, ErrUnknownSchool
	}
	e := s.enrollment.Fetch(ctx, studentID).Get(schoolID)
	if e == nil || (e.Status != model.StatusActive && e.Status != model.StatusCompleted) {
		return nil, ErrSchoolNotStarted
	}
	return e, nil
}

func (s *schoolProgressService) board(ctx context.Context, studentID string, schoolID model.SchoolID) (*model.Enrollment, *model.SchoolProgress, error) {
	e, err := s.enrollmentFor(ctx, studentID, schoolID)
	if err != nil {
		return nil, nil, err
	}
	p, err := s.client.Tables.SchoolProgress.GetByEnrollment(ctx, e.ID)
	if err == nil {
		return e, p, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, backend.Classify("school_progress.get", err)
	}

	p = model.NewSchoolProgress(e, s.now())
	if err := s.client.Tables.SchoolProgress.Upsert(ctx, p); err != nil {
		return nil, nil, backend.Classify("school_progress.create", err)
	}
	s.logger.Info("stamp board created", zap.String("enrollment_id", e.ID))
	return e, p, nil
}

func (s *schoolProgressService) respond(p *model.SchoolProgress) *dto.SchoolProgressResponse {
	return &dto.SchoolProgressResponse{
		Progress:         p,
		CompletedStamps:  p.CompletedStamps(),
		TotalStamps:      len(model.Curriculum),
		CanGraduate:      p.CanGraduate(),
		ProRemainingDays: p.ProRemainingDays(s.now()),
	}
}

func (s *schoolProgressService) save(ctx context.Context, op string, p *model.SchoolProgress) (*dto.SchoolProgressResponse, error) {
	p.UpdatedAt = s.now()
	if err := s.client.Tables.SchoolProgress.Upsert(ctx, p); err != nil {
		return nil, backend.Classify(op, err)
	}
	return s.respond(p), nil
}

func (s *schoolProgressService) Get(ctx context.Context, studentID string, schoolID model.SchoolID) (*dto.SchoolProgressResponse, error) {
	_, p, err := s.board(ctx, studentID, schoolID)
	if err != nil {
		return nil, err
	}
	return s.respond(p), nil
}

func (s *schoolProgressService) EarnStamp(ctx context.Context, studentID string, schoolID model.SchoolID, period model.PeriodID) (*dto.SchoolProgressResponse, error) {
	if !model.IsValidPeriod(period) {
		return nil, ErrUnknownPeriod
	}
	_, p, err := s.board(ctx, studentID, schoolID)
	if err != nil {
		return nil, err
	}
	if !p.EarnStamp(period, s.now()) {
		return s.respond(p), nil
	}
	s.logger.Info("stamp earned",
		zap.String("student_id", studentID),
		zap.String("period", string(period)),
		zap.Int("completed", p.CompletedStamps()),
	)
	return s.save(ctx, "school_progress.earn_stamp", p)
}

func (s *schoolProgressService) SaveResult(ctx context.Context, studentID string, schoolID model.SchoolID, kind string, data map[string]interface{}) (*dto.SchoolProgressResponse, error) {
	raw, err := json.Marshal(jsonMap(data))
	if err != nil {
		return nil, err
	}
	_, p, err := s.board(ctx, studentID, schoolID)
	if err != nil {
		return nil, err
	}
	switch kind {
	case ResultAptitude:
		p.AptitudeResult = datatypes.JSON(raw)
	case ResultSimulation:
		p.SimulationResult = datatypes.JSON(raw)
	case ResultMarketCompass:
		p.MarketCompassData = datatypes.JSON(raw)
	default:
		return nil, ErrUnknownResult
	}
	return s.save(ctx, "school_progress.save_result", p)
}

func (s *schoolProgressService) Graduate(ctx context.Context, studentID string, schoolID model.SchoolID, review string) (*dto.SchoolProgressResponse, error) {
	e, p, err := s.board(ctx, studentID, schoolID)
	if err != nil {
		return nil, err
	}
	if !p.CanGraduate() {
		return nil, ErrCannotGraduate
	}
	p.Graduate(review, s.now())
	resp, err := s.save(ctx, "school_progress.graduate", p)
	if err != nil {
		return nil, err
	}

	if e.Status == model.StatusActive {
		if _, err := s.enrollment.UpdateStatus(ctx, e.ID, model.StatusCompleted); err != nil {
			s.logger.Warn("complete enrollment after graduation failed",
				zap.String("enrollment_id", e.ID), zap.Error(err))
		}
	}
	s.logger.Info("student graduated", zap.String("student_id", studentID), zap.String("school_id", string(schoolID)))
	return resp, nil
}

// Reset wipes the board back to an empty one. Graduation is kept only on
// the enrollment row.
func (s *schoolProgressService) Reset(ctx context.Context, studentID string, schoolID model.SchoolID) (*dto.SchoolProgressResponse, error) {
	e, err := s.enrollmentFor(ctx, studentID, schoolID)
	if err != nil {
		return nil, err
	}
	if err := s.client.Tables.SchoolProgress.DeleteByEnrollment(ctx, e.ID); err != nil {
		return nil, backend.Classify("school_progress.reset", err)
	}
	p := model.NewSchoolProgress(e, s.now())
	return s.save(ctx, "school_progress.reset", p)
}

func (s *schoolProgressService) Calendar(ctx context.Context, studentID string, schoolID model.SchoolID) ([]byte, string, error) {
	e, p, err := s.board(ctx, studentID, schoolID)
	if err != nil {
		return nil, "", err
	}
	body := renderCalendar(e, p, s.now())
	return []byte(body), calendarFilename(schoolID, s.now()), nil
}
