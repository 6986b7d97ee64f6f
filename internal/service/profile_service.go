package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/infoamous-source/kiosk-sub001/internal/backend"
	"github.com/infoamous-source/kiosk-sub001/internal/dto"
	"github.com/infoamous-source/kiosk-sub001/internal/model"
	"github.com/infoamous-source/kiosk-sub001/pkg/metrics"
)

const studentSearchLimit = 50

var (
	ErrProfileNotFound  = errors.New("profile not found")
	ErrNotStudent       = errors.New("target is not a student")
	ErrNoInstructorCode = errors.New("instructor has no instructor code")
)

// ProfileService reads and edits profile rows.
type ProfileService interface {
	Get(ctx context.Context, userID string) (*model.Profile, error)
	Update(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*model.Profile, error)
	SearchStudents(ctx context.Context, query string) []model.Profile
	ListByInstructorCode(ctx context.Context, code string) []model.Profile
	ListStudents(ctx context.Context) []model.Profile
	// AssignToInstructor writes the instructor's code onto the student.
	AssignToInstructor(ctx context.Context, instructor *model.AppUser, studentID string) (*model.Profile, error)
	SaveAPIKey(ctx context.Context, userID, apiKey string) error
	GetAPIKey(ctx context.Context, userID string) (string, error)
}

type profileService struct {
	client  *backend.Client
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewProfileService creates a ProfileService.
func NewProfileService(client *backend.Client, m *metrics.Metrics, logger *zap.Logger) ProfileService {
	return &profileService{client: client, metrics: m, logger: logger, now: nowUTC}
}

func (s *profileService) Get(ctx context.Context, userID string) (*model.Profile, error) {
	if err := s.client.Guard("profile.get"); err != nil {
		return nil, err
	}
	p, err := s.client.Tables.Profile.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, backend.Classify("profile.get", err)
	}
	return p, nil
}

func (s *profileService) Update(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*model.Profile, error) {
	if err := s.client.Guard("profile.update"); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Country != nil {
		fields["country"] = *req.Country
	}
	if req.Gender != nil {
		fields["gender"] = *req.Gender
	}
	if req.BirthYear != nil {
		if age := model.AgeFromBirthYear(*req.BirthYear, s.now()); age != nil {
			fields["age"] = *age
		}
	}
	if req.Organization != nil {
		fields["organization"] = *req.Organization
	}
	if req.LearningPurpose != nil {
		fields["learning_purpose"] = *req.LearningPurpose
	}

	if len(fields) > 0 {
		if err := s.client.Tables.Profile.Update(ctx, userID, fields); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrProfileNotFound
			}
			return nil, backend.Classify("profile.update", err)
		}
	}
	return s.Get(ctx, userID)
}

func (s *profileService) SearchStudents(ctx context.Context, query string) []model.Profile {
	if s.client.Guard("profile.search") != nil {
		return []model.Profile{}
	}
	list, err := s.client.Tables.Profile.SearchStudents(ctx, strings.TrimSpace(query), studentSearchLimit)
	if err != nil {
		readFailed(s.logger, s.metrics, "profiles", err)
		return []model.Profile{}
	}
	return list
}

func (s *profileService) ListByInstructorCode(ctx context.Context, code string) []model.Profile {
	if code == "" || s.client.Guard("profile.list_by_instructor") != nil {
		return []model.Profile{}
	}
	list, err := s.client.Tables.Profile.ListByInstructorCode(ctx, code)
	if err != nil {
		readFailed(s.logger, s.metrics, "profiles", err, zap.String("instructor_code", code))
		return []model.Profile{}
	}
	return list
}

func (s *profileService) ListStudents(ctx context.Context) []model.Profile {
	if s.client.Guard("profile.list_students") != nil {
		return []model.Profile{}
	}
	list, err := s.client.Tables.Profile.ListStudents(ctx)
	if err != nil {
		readFailed(s.logger, s.metrics, "profiles", err)
		return []model.Profile{}
	}
	return list
}

func (s *profileService) AssignToInstructor(ctx context.Context, instructor *model.AppUser, studentID string) (*model.Profile, error) {
	if !instructor.IsInstructor() {
		return nil, ErrNotInstructor
	}
	if instructor.InstructorCode == "" {
		return nil, ErrNoInstructorCode
	}
	student, err := s.Get(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if student.Role != model.RoleStudent {
		return nil, ErrNotStudent
	}

	if err := s.client.Tables.Profile.Update(ctx, studentID, map[string]interface{}{
		"instructor_code": instructor.InstructorCode,
	}); err != nil {
		return nil, backend.Classify("profile.assign", err)
	}
	s.logger.Info("student assigned to instructor",
		zap.String("student_id", studentID),
		zap.String("instructor_code", instructor.InstructorCode),
	)
	return s.Get(ctx, studentID)
}

func (s *profileService) SaveAPIKey(ctx context.Context, userID, apiKey string) error {
	if err := s.client.Guard("profile.save_api_key"); err != nil {
		return err
	}
	err := s.client.Tables.Profile.Update(ctx, userID, map[string]interface{}{
		"gemini_api_key": strings.TrimSpace(apiKey),
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrProfileNotFound
	}
	return backend.Classify("profile.save_api_key", err)
}

func (s *profileService) GetAPIKey(ctx context.Context, userID string) (string, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	return p.GeminiAPIKey, nil
}
