package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/infoamous-source/kiosk-sub001/config"
	"github.com/infoamous-source/kiosk-sub001/internal/backend"
	"github.com/infoamous-source/kiosk-sub001/internal/dto"
	"github.com/infoamous-source/kiosk-sub001/internal/model"
	"github.com/infoamous-source/kiosk-sub001/pkg/metrics"
)

// AuthService bridges the auth event stream into request/response
// login, logout and registration, and owns the current-user map.
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	Logout(ctx context.Context, accessToken, userID string) error
	// Register runs the fixed five-step sequence. A failure after the
	// account exists leaves it partially registered and is returned as is.
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	CurrentUser(ctx context.Context, userID string) (*model.AppUser, error)
	// Forget drops the cached user so the next read reloads the profile.
	Forget(userID string)
	Close()
}

type authService struct {
	cfg        *config.AuthConfig
	client     *backend.Client
	enrollment EnrollmentService
	sessions   *sessionStore
	waiters    *loginWaiters
	sub        *backend.Subscription
	metrics    *metrics.Metrics
	logger     *zap.Logger
	now        func() time.Time
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewAuthService subscribes to the auth stream when the backend is configured.
func NewAuthService(
	cfg *config.AuthConfig,
	client *backend.Client,
	enrollment EnrollmentService,
	m *metrics.Metrics,
	logger *zap.Logger,
) AuthService {
	s := &authService{
		cfg:        cfg,
		client:     client,
		enrollment: enrollment,
		sessions:   newSessionStore(cfg.SessionCacheSize, cfg.AccessTokenTTL),
		waiters:    newLoginWaiters(),
		metrics:    m,
		logger:     logger,
		now:        time.Now,
		sleep:      sleepCtx,
	}
	if client.Configured() && client.Auth != nil {
		s.sub = client.Auth.OnAuthStateChange(s.onAuthStateChange)
	}
	return s
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *authService) Close() {
	s.sub.Unsubscribe()
}

// onAuthStateChange maps a session into the current user and settles any
// login waiting for it.
func (s *authService) onAuthStateChange(ctx context.Context, change backend.AuthChange) {
	if s.metrics != nil {
		s.metrics.AuthEvents.WithLabelValues(string(change.Event)).Inc()
	}

	switch change.Event {
	case backend.EventSignedIn, backend.EventTokenRefreshed:
		if change.Session == nil || change.Session.User == nil {
			return
		}
		user := s.loadUser(ctx, change.Session.User)
		s.sessions.put(user)
		if change.Event == backend.EventSignedIn {
			s.waiters.resolve(change.Session.User.Email, user)
		}
	case backend.EventSignedOut:
		s.sessions.remove(change.UserID)
	}
}

// loadUser never fails: a missing profile falls back to account metadata.
func (s *authService) loadUser(ctx context.Context, account *model.AuthUser) *model.AppUser {
	profile, err := s.client.Tables.Profile.GetByID(ctx, account.ID)
	if err != nil {
		readFailed(s.logger, s.metrics, "profiles", err, zap.String("user_id", account.ID))
		return model.NewAppUser(account, nil)
	}
	return model.NewAppUser(account, profile)
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	if err := s.client.Guard("auth.login"); err != nil {
		return nil, err
	}

	pending, release := s.waiters.register(req.Email)
	defer release()

	sess, err := s.client.Auth.SignInWithPassword(ctx, req.Email, req.Password, req.RememberMe)
	if err != nil {
		return nil, err
	}

	user, outcome := pending.wait(ctx, s.cfg.LoginResolveTimeout)
	if s.metrics != nil {
		s.metrics.LoginResolutions.WithLabelValues(string(outcome)).Inc()
	}

	resp := &dto.LoginResponse{
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		ExpiresIn:    sess.ExpiresIn,
		User:         user,
	}
	switch outcome {
	case outcomeCanceled:
		return nil, ctx.Err()
	case outcomeTimeout:
		// The session is valid; the profile arrives with the late event.
		s.logger.Warn("login resolved by timeout", zap.String("user_id", sess.User.ID))
		resp.User = model.NewAppUser(sess.User, nil)
		resp.ProfilePending = true
	}
	return resp, nil
}

func (s *authService) Logout(ctx context.Context, accessToken, userID string) error {
	if err := s.client.Guard("auth.logout"); err != nil {
		return err
	}
	s.sessions.remove(userID)
	return s.client.Auth.SignOut(ctx, accessToken)
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.LoginResponse, error) {
	if err := s.client.Guard("auth.register"); err != nil {
		return nil, err
	}
	tables := s.client.Tables

	var instructor *model.Profile
	if req.InstructorCode != "" {
		p, err := tables.Profile.FindInstructorByCode(ctx, req.InstructorCode)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, backend.NewError(backend.KindInvalidInstructorCode, "auth.register", nil)
			}
			return nil, backend.Classify("auth.register", err)
		}
		instructor = p
	}

	orgCode := model.NormalizeOrgCode(req.OrgCode)
	organization := req.Organization
	if orgCode != "" {
		org, err := tables.Organization.GetByCode(ctx, orgCode)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, backend.NewError(backend.KindInvalidOrgCode, "auth.register", nil)
			}
			return nil, backend.Classify("auth.register", err)
		}
		if organization == "" {
			organization = org.Name
		}
	}

	// 1. account with minimal metadata
	account, err := s.client.Auth.SignUp(ctx, req.Email, req.Password, map[string]interface{}{
		"name": req.Name,
		"role": model.RoleStudent,
	})
	if err != nil {
		return nil, err
	}

	// 2. the profile row is created by a database trigger
	if err := s.sleep(ctx, s.cfg.ProfileTriggerDelay); err != nil {
		return nil, err
	}

	// 3. explicit sign-in
	resp, err := s.Login(ctx, &dto.LoginRequest{Email: req.Email, Password: req.Password})
	if err != nil {
		return nil, err
	}

	// 4. extended profile fields
	fields := map[string]interface{}{
		"country":          req.Country,
		"gender":           req.Gender,
		"organization":     organization,
		"instructor_code":  req.InstructorCode,
		"org_code":         orgCode,
		"learning_purpose": req.LearningPurpose,
	}
	if age := model.AgeFromBirthYear(req.BirthYear, s.now()); age != nil {
		fields["age"] = *age
	}
	if err := tables.Profile.Update(ctx, account.ID, fields); err != nil {
		s.logger.Error("registration left partial: profile update failed",
			zap.String("user_id", account.ID), zap.Error(err))
		return nil, backend.Classify("auth.register.profile", err)
	}

	// 5. default school, already active
	var instructorID *string
	if instructor != nil {
		instructorID = &instructor.ID
	}
	if _, err := s.enrollment.Create(ctx, account.ID, model.DefaultSchool, instructorID, true); err != nil {
		s.logger.Error("registration left partial: default enrollment failed",
			zap.String("user_id", account.ID), zap.Error(err))
		return nil, err
	}

	s.sessions.remove(account.ID)
	user, err := s.CurrentUser(ctx, account.ID)
	if err == nil {
		resp.User = user
		resp.ProfilePending = false
	}

	s.logger.Info("student registered", zap.String("user_id", account.ID))
	return resp, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	if err := s.client.Guard("auth.refresh"); err != nil {
		return nil, err
	}
	sess, err := s.client.Auth.Refresh(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	user, err := s.CurrentUser(ctx, sess.User.ID)
	if err != nil {
		user = model.NewAppUser(sess.User, nil)
	}
	return &dto.LoginResponse{
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		ExpiresIn:    sess.ExpiresIn,
		User:         user,
	}, nil
}

func (s *authService) CurrentUser(ctx context.Context, userID string) (*model.AppUser, error) {
	if err := s.client.Guard("auth.current_user"); err != nil {
		return nil, err
	}
	if u, ok := s.sessions.get(userID); ok {
		return u, nil
	}

	account, err := s.client.Tables.AuthUser.GetByID(ctx, userID)
	if err != nil {
		return nil, backend.Classify("auth.current_user", err)
	}
	user := s.loadUser(ctx, account)
	s.sessions.put(user)
	return user, nil
}

func (s *authService) Forget(userID string) {
	s.sessions.remove(userID)
}
