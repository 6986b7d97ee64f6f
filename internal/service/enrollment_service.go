package service

import (
	"bytes"
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/infoamous-source/kiosk-sub001/internal/backend"
	"github.com/infoamous-source/kiosk-sub001/internal/model"
	"github.com/infoamous-source/kiosk-sub001/pkg/metrics"
)

var (
	ErrEnrollmentNotFound   = errors.New("enrollment not found")
	ErrEnrollmentNotPending = errors.New("enrollment is not waiting for info")
	ErrInvalidTransition    = errors.New("enrollment status transition not allowed")
	ErrUnknownSchool        = errors.New("unknown school")
)

// Snapshot is the set of a student's enrollment rows, oldest first.
type Snapshot struct {
	Enrollments []model.Enrollment
}

func (s *Snapshot) filter(status model.EnrollmentStatus) []model.Enrollment {
	out := []model.Enrollment{}
	if s == nil {
		return out
	}
	for _, e := range s.Enrollments {
		if e.Status == status {
			out = append(out, e)
		}
	}
	return out
}

// Active returns rows whose status is exactly active.
func (s *Snapshot) Active() []model.Enrollment { return s.filter(model.StatusActive) }

// Pending returns rows waiting for info.
func (s *Snapshot) Pending() []model.Enrollment { return s.filter(model.StatusPendingInfo) }

// Get returns the latest row of the school, or nil.
func (s *Snapshot) Get(schoolID model.SchoolID) *model.Enrollment {
	if s == nil {
		return nil
	}
	for i := len(s.Enrollments) - 1; i >= 0; i-- {
		if s.Enrollments[i].SchoolID == schoolID {
			e := s.Enrollments[i]
			return &e
		}
	}
	return nil
}

func (s *Snapshot) has(schoolID model.SchoolID, status model.EnrollmentStatus) bool {
	if s == nil {
		return false
	}
	for _, e := range s.Enrollments {
		if e.SchoolID == schoolID && e.Status == status {
			return true
		}
	}
	return false
}

// IsEnrolledIn is true iff a row of the school is exactly active. Suspended
// and completed rows do not count.
func (s *Snapshot) IsEnrolledIn(schoolID model.SchoolID) bool {
	return s.has(schoolID, model.StatusActive)
}

// HasPendingFor is true iff a row of the school is exactly pending_info.
func (s *Snapshot) HasPendingFor(schoolID model.SchoolID) bool {
	return s.has(schoolID, model.StatusPendingInfo)
}

// EnrollmentService tracks which schools a student is connected to.
type EnrollmentService interface {
	// Fetch never fails: read errors yield an empty snapshot.
	Fetch(ctx context.Context, studentID string) *Snapshot
	IsEnrolledIn(ctx context.Context, studentID string, schoolID model.SchoolID) bool
	HasPendingFor(ctx context.Context, studentID string, schoolID model.SchoolID) bool
	// SubmitInfo stores the info blob, activates the row and re-fetches.
	SubmitInfo(ctx context.Context, studentID, enrollmentID string, schoolID model.SchoolID, data map[string]interface{}) (*Snapshot, error)
	// Create returns the student's open row of the school when one exists.
	// With autoActivate a suspended row is reactivated and a new row starts active.
	Create(ctx context.Context, studentID string, schoolID model.SchoolID, instructorID *string, autoActivate bool) (*model.Enrollment, error)
	UpdateStatus(ctx context.Context, enrollmentID string, status model.EnrollmentStatus) (*model.Enrollment, error)
	ListAll(ctx context.Context) []model.Enrollment
	ListBySchool(ctx context.Context, schoolID model.SchoolID) []model.Enrollment
	GetSchoolProfile(ctx context.Context, enrollmentID string) (*model.SchoolProfile, error)
	ExportRoster(ctx context.Context, schoolID model.SchoolID) (*bytes.Buffer, string, error)
}

type enrollmentService struct {
	client  *backend.Client
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewEnrollmentService creates an EnrollmentService.
func NewEnrollmentService(client *backend.Client, m *metrics.Metrics, logger *zap.Logger) EnrollmentService {
	return &enrollmentService{client: client, metrics: m, logger: logger, now: nowUTC}
}

func (s *enrollmentService) Fetch(ctx context.Context, studentID string) *Snapshot {
	if s.client.Guard("enrollment.fetch") != nil {
		return &Snapshot{}
	}
	list, err := s.client.Tables.Enrollment.ListByStudent(ctx, studentID)
	if err != nil {
		readFailed(s.logger, s.metrics, "enrollments", err, zap.String("student_id", studentID))
		return &Snapshot{}
	}
	return &Snapshot{Enrollments: list}
}

func (s *enrollmentService) IsEnrolledIn(ctx context.Context, studentID string, schoolID model.SchoolID) bool {
	return s.Fetch(ctx, studentID).IsEnrolledIn(schoolID)
}

func (s *enrollmentService) HasPendingFor(ctx context.Context, studentID string, schoolID model.SchoolID) bool {
	return s.Fetch(ctx, studentID).HasPendingFor(schoolID)
}

func (s *enrollmentService) SubmitInfo(
	ctx context.Context,
	studentID, enrollmentID string,
	schoolID model.SchoolID,
	data map[string]interface{},
) (*Snapshot, error) {
	if err := s.client.Guard("enrollment.submit_info"); err != nil {
		return nil, err
	}
	tables := s.client.Tables

	e, err := tables.Enrollment.GetByID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEnrollmentNotFound
		}
		s.logger.Error("load enrollment failed", zap.String("enrollment_id", enrollmentID), zap.Error(err))
		return nil, backend.Classify("enrollment.submit_info", err)
	}
	if e.StudentID != studentID || e.SchoolID != schoolID {
		return nil, ErrEnrollmentNotFound
	}
	if e.Status != model.StatusPendingInfo {
		return nil, ErrEnrollmentNotPending
	}

	if data == nil {
		data = map[string]interface{}{}
	}
	profile := &model.SchoolProfile{
		EnrollmentID: e.ID,
		StudentID:    studentID,
		SchoolID:     schoolID,
		Data:         datatypes.JSONMap(data),
	}
	if err := tables.SchoolProfile.Create(ctx, profile); err != nil {
		s.logger.Error("insert school profile failed", zap.String("enrollment_id", e.ID), zap.Error(err))
		return nil, backend.Classify("enrollment.submit_info", err)
	}

	e.Stamp(model.StatusActive, s.now())
	if err := tables.Enrollment.Save(ctx, e); err != nil {
		s.logger.Error("activate enrollment failed", zap.String("enrollment_id", e.ID), zap.Error(err))
		return nil, backend.Classify("enrollment.submit_info", err)
	}

	s.logger.Info("enrollment activated", zap.String("enrollment_id", e.ID), zap.String("school_id", string(schoolID)))
	return s.Fetch(ctx, studentID), nil
}

func (s *enrollmentService) Create(
	ctx context.Context,
	studentID string,
	schoolID model.SchoolID,
	instructorID *string,
	autoActivate bool,
) (*model.Enrollment, error) {
	if err := s.client.Guard("enrollment.create"); err != nil {
		return nil, err
	}
	if !model.IsValidSchool(schoolID) {
		return nil, ErrUnknownSchool
	}
	tables := s.client.Tables

	existing, err := tables.Enrollment.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, backend.Classify("enrollment.create", err)
	}
	for i := len(existing) - 1; i >= 0; i-- {
		e := existing[i]
		if e.SchoolID != schoolID || e.Status == model.StatusCompleted {
			continue
		}
		if autoActivate && e.Status == model.StatusSuspended {
			e.Stamp(model.StatusActive, s.now())
			if instructorID != nil {
				e.InstructorID = instructorID
			}
			if err := tables.Enrollment.Save(ctx, &e); err != nil {
				return nil, backend.Classify("enrollment.create", err)
			}
			s.logger.Info("enrollment reactivated", zap.String("enrollment_id", e.ID))
		}
		return &e, nil
	}

	now := s.now()
	e := &model.Enrollment{
		StudentID:    studentID,
		SchoolID:     schoolID,
		InstructorID: instructorID,
		Status:       model.StatusPendingInfo,
		EnrolledAt:   now,
	}
	if autoActivate {
		e.Stamp(model.StatusActive, now)
	}
	if err := tables.Enrollment.Create(ctx, e); err != nil {
		s.logger.Error("create enrollment failed", zap.String("student_id", studentID), zap.Error(err))
		return nil, backend.Classify("enrollment.create", err)
	}
	s.logger.Info("enrollment created",
		zap.String("enrollment_id", e.ID),
		zap.String("school_id", string(schoolID)),
		zap.String("status", string(e.Status)),
	)
	return e, nil
}

func (s *enrollmentService) UpdateStatus(ctx context.Context, enrollmentID string, status model.EnrollmentStatus) (*model.Enrollment, error) {
	if err := s.client.Guard("enrollment.update_status"); err != nil {
		return nil, err
	}
	tables := s.client.Tables

	e, err := tables.Enrollment.GetByID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, backend.Classify("enrollment.update_status", err)
	}
	if !model.CanTransition(e.Status, status) {
		return nil, ErrInvalidTransition
	}

	from := e.Status
	e.Stamp(status, s.now())
	if err := tables.Enrollment.Save(ctx, e); err != nil {
		return nil, backend.Classify("enrollment.update_status", err)
	}
	s.logger.Info("enrollment status changed",
		zap.String("enrollment_id", e.ID),
		zap.String("from", string(from)),
		zap.String("to", string(status)),
	)
	return e, nil
}

func (s *enrollmentService) ListAll(ctx context.Context) []model.Enrollment {
	if s.client.Guard("enrollment.list_all") != nil {
		return []model.Enrollment{}
	}
	list, err := s.client.Tables.Enrollment.ListAll(ctx)
	if err != nil {
		readFailed(s.logger, s.metrics, "enrollments", err)
		return []model.Enrollment{}
	}
	return list
}

func (s *enrollmentService) ListBySchool(ctx context.Context, schoolID model.SchoolID) []model.Enrollment {
	if s.client.Guard("enrollment.list_by_school") != nil {
		return []model.Enrollment{}
	}
	list, err := s.client.Tables.Enrollment.ListBySchool(ctx, schoolID)
	if err != nil {
		readFailed(s.logger, s.metrics, "enrollments", err, zap.String("school_id", string(schoolID)))
		return []model.Enrollment{}
	}
	return list
}

func (s *enrollmentService) GetSchoolProfile(ctx context.Context, enrollmentID string) (*model.SchoolProfile, error) {
	if err := s.client.Guard("enrollment.school_profile"); err != nil {
		return nil, err
	}
	p, err := s.client.Tables.SchoolProfile.GetByEnrollment(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, backend.Classify("enrollment.school_profile", err)
	}
	return p, nil
}
