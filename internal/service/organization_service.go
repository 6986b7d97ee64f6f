package service

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/infoamous-source/kiosk-sub001/internal/backend"
	"github.com/infoamous-source/kiosk-sub001/internal/dto"
	"github.com/infoamous-source/kiosk-sub001/internal/model"
	"github.com/infoamous-source/kiosk-sub001/pkg/metrics"
)

const (
	orgCodeLetters  = "ABCDEFGHJKMNPQRSTUVWXYZ"
	orgCodeDigits   = "23456789"
	orgCodeAttempts = 3
)

var (
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrNotOrganizationOwner = errors.New("organization belongs to another instructor")
	ErrOrgCodeExhausted     = errors.New("could not allocate a unique organization code")
)

// OrganizationService manages institutions and their join codes.
type OrganizationService interface {
	Create(ctx context.Context, instructor *model.AppUser, req *dto.CreateOrganizationRequest) (*dto.OrganizationResponse, error)
	List(ctx context.Context, instructorID string) []dto.OrganizationResponse
	Get(ctx context.Context, id string) (*dto.OrganizationResponse, error)
	Delete(ctx context.Context, instructor *model.AppUser, id string) error
	// ValidateCode looks a code up case-insensitively. Read errors read as invalid.
	ValidateCode(ctx context.Context, code string) *dto.ValidateOrgCodeResponse
	Students(ctx context.Context, instructor *model.AppUser, id string) ([]model.Profile, error)
}

type organizationService struct {
	client  *backend.Client
	metrics *metrics.Metrics
	logger  *zap.Logger
	backoff time.Duration
	newCode func() (string, error)
}

// NewOrganizationService creates an OrganizationService.
func NewOrganizationService(client *backend.Client, m *metrics.Metrics, logger *zap.Logger) OrganizationService {
	return &organizationService{
		client:  client,
		metrics: m,
		logger:  logger,
		backoff: 50 * time.Millisecond,
		newCode: generateOrgCode,
	}
}

// generateOrgCode returns three letters followed by three digits, skipping
// look-alike characters.
func generateOrgCode() (string, error) {
	var b strings.Builder
	for i := 0; i < 6; i++ {
		alphabet := orgCodeLetters
		if i >= 3 {
			alphabet = orgCodeDigits
		}
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		if err != nil {
			return "", err
		}
		b.WriteByte(alphabet[n.Int64()])
	}
	return b.String(), nil
}

func (s *organizationService) Create(ctx context.Context, instructor *model.AppUser, req *dto.CreateOrganizationRequest) (*dto.OrganizationResponse, error) {
	if err := s.client.Guard("organization.create"); err != nil {
		return nil, err
	}
	if !instructor.IsInstructor() {
		return nil, ErrNotInstructor
	}

	var org *model.Organization
	b := retry.WithMaxRetries(orgCodeAttempts-1, retry.NewExponential(s.backoff))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		code, err := s.newCode()
		if err != nil {
			return err
		}
		candidate := &model.Organization{
			Name:         strings.TrimSpace(req.Name),
			Code:         code,
			InstructorID: instructor.ID,
		}
		if err := s.client.Tables.Organization.Create(ctx, candidate); err != nil {
			if backend.IsUniqueViolation(err) {
				s.logger.Warn("organization code collision", zap.String("code", code))
				return retry.RetryableError(ErrOrgCodeExhausted)
			}
			return backend.Classify("organization.create", err)
		}
		org = candidate
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("organization created", zap.String("id", org.ID), zap.String("code", org.Code))
	return &dto.OrganizationResponse{Organization: *org}, nil
}

func (s *organizationService) List(ctx context.Context, instructorID string) []dto.OrganizationResponse {
	out := []dto.OrganizationResponse{}
	if s.client.Guard("organization.list") != nil {
		return out
	}
	list, err := s.client.Tables.Organization.ListByInstructor(ctx, instructorID)
	if err != nil {
		readFailed(s.logger, s.metrics, "organizations", err)
		return out
	}
	for _, org := range list {
		out = append(out, dto.OrganizationResponse{
			Organization: org,
			StudentCount: s.countStudents(ctx, org.Code),
		})
	}
	return out
}

func (s *organizationService) countStudents(ctx context.Context, code string) int64 {
	n, err := s.client.Tables.Profile.CountByOrgCode(ctx, code)
	if err != nil {
		readFailed(s.logger, s.metrics, "profiles", err, zap.String("org_code", code))
		return 0
	}
	return n
}

func (s *organizationService) Get(ctx context.Context, id string) (*dto.OrganizationResponse, error) {
	if err := s.client.Guard("organization.get"); err != nil {
		return nil, err
	}
	org, err := s.client.Tables.Organization.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, backend.Classify("organization.get", err)
	}
	return &dto.OrganizationResponse{Organization: *org, StudentCount: s.countStudents(ctx, org.Code)}, nil
}

func (s *organizationService) owned(ctx context.Context, instructor *model.AppUser, id string) (*model.Organization, error) {
	if err := s.client.Guard("organization.owned"); err != nil {
		return nil, err
	}
	org, err := s.client.Tables.Organization.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, backend.Classify("organization.get", err)
	}
	if org.InstructorID != instructor.ID {
		return nil, ErrNotOrganizationOwner
	}
	return org, nil
}

func (s *organizationService) Delete(ctx context.Context, instructor *model.AppUser, id string) error {
	org, err := s.owned(ctx, instructor, id)
	if err != nil {
		return err
	}
	if err := s.client.Tables.Organization.Delete(ctx, org.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrganizationNotFound
		}
		return backend.Classify("organization.delete", err)
	}
	s.logger.Info("organization deleted", zap.String("id", org.ID))
	return nil
}

func (s *organizationService) ValidateCode(ctx context.Context, code string) *dto.ValidateOrgCodeResponse {
	code = model.NormalizeOrgCode(code)
	if code == "" || s.client.Guard("organization.validate") != nil {
		return &dto.ValidateOrgCodeResponse{}
	}
	org, err := s.client.Tables.Organization.GetByCode(ctx, code)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			readFailed(s.logger, s.metrics, "organizations", err)
		}
		return &dto.ValidateOrgCodeResponse{}
	}
	return &dto.ValidateOrgCodeResponse{Valid: true, Name: org.Name}
}

// Students lists the students who joined with the organization's code.
func (s *organizationService) Students(ctx context.Context, instructor *model.AppUser, id string) ([]model.Profile, error) {
	org, err := s.owned(ctx, instructor, id)
	if err != nil {
		return nil, err
	}
	list, err := s.client.Tables.Profile.ListByOrgCode(ctx, org.Code)
	if err != nil {
		readFailed(s.logger, s.metrics, "profiles", err, zap.String("org_code", org.Code))
		return []model.Profile{}, nil
	}
	return list, nil
}
