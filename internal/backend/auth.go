package backend

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/infoamous-source/kiosk-sub001/internal/model"
	"github.com/infoamous-source/kiosk-sub001/internal/repository"
	"github.com/infoamous-source/kiosk-sub001/pkg/jwt"
)

const eventBuffer = 256

// TokenBlacklist revokes tokens before they expire. pkg/redis.Client implements it.
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// Session is an authenticated session of an account.
type Session struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	ExpiresIn    int             `json:"expires_in"`
	User         *model.AuthUser `json:"user"`
}

// AuthProvider is the auth sub-service: password accounts, JWT sessions and an
// auth-state event stream.
type AuthProvider struct {
	users       repository.AuthUserRepository
	tokens      *jwt.Manager
	blacklist   TokenBlacklist
	minPassword int
	hub         *eventHub
	logger      *zap.Logger
	now         func() time.Time
}

// NewAuthProvider creates an AuthProvider. blacklist may be nil, in which case
// sign-out only emits the event.
func NewAuthProvider(
	users repository.AuthUserRepository,
	tokens *jwt.Manager,
	blacklist TokenBlacklist,
	minPassword int,
	logger *zap.Logger,
) *AuthProvider {
	return &AuthProvider{
		users:       users,
		tokens:      tokens,
		blacklist:   blacklist,
		minPassword: minPassword,
		hub:         newEventHub(eventBuffer, logger),
		logger:      logger,
		now:         time.Now,
	}
}

// Close stops event delivery.
func (p *AuthProvider) Close() { p.hub.close() }

// OnAuthStateChange subscribes l to every later auth change.
func (p *AuthProvider) OnAuthStateChange(l Listener) *Subscription {
	return p.hub.subscribe(l)
}

// SignUp creates an account carrying meta. A profile row is materialized by
// the database afterwards; SignUp does not sign in.
func (p *AuthProvider) SignUp(ctx context.Context, email, password string, meta map[string]interface{}) (*model.AuthUser, error) {
	const op = "auth.sign_up"
	if len(password) < p.minPassword {
		return nil, NewError(KindWeakPassword, op, nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, NewError(KindUnknown, op, err)
	}

	if meta == nil {
		meta = map[string]interface{}{}
	}
	u := &model.AuthUser{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: string(hash),
		RawMeta:      datatypes.JSONMap(meta),
	}
	if err := p.users.Create(ctx, u); err != nil {
		if IsUniqueViolation(err) {
			return nil, NewError(KindEmailTaken, op, err)
		}
		return nil, Classify(op, err)
	}
	return u, nil
}

// SignInWithPassword verifies credentials, mints a session and emits
// EventSignedIn asynchronously.
func (p *AuthProvider) SignInWithPassword(ctx context.Context, email, password string, rememberMe bool) (*Session, error) {
	const op = "auth.sign_in"
	u, err := p.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewError(KindInvalidCredentials, op, nil)
		}
		return nil, Classify(op, err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, NewError(KindInvalidCredentials, op, nil)
	}

	sess, err := p.mint(u, rememberMe)
	if err != nil {
		return nil, NewError(KindUnknown, op, err)
	}

	if err := p.users.TouchSignIn(ctx, u.ID, p.now()); err != nil {
		p.logger.Warn("record sign-in time failed", zap.String("user_id", u.ID), zap.Error(err))
	}

	p.hub.emit(ctx, AuthChange{Event: EventSignedIn, UserID: u.ID, Session: sess})
	return sess, nil
}

// SignOut revokes the access token and emits EventSignedOut.
func (p *AuthProvider) SignOut(ctx context.Context, accessToken string) error {
	const op = "auth.sign_out"
	claims, err := p.tokens.ParseToken(accessToken)
	if err != nil {
		return NewError(KindUnauthorized, op, err)
	}
	p.revoke(ctx, claims)
	p.hub.emit(ctx, AuthChange{Event: EventSignedOut, UserID: claims.UserID})
	return nil
}

// GetSession resolves an access token to its current session.
func (p *AuthProvider) GetSession(ctx context.Context, accessToken string) (*Session, error) {
	const op = "auth.get_session"
	claims, err := p.verify(ctx, accessToken, jwt.TypeAccess)
	if err != nil {
		return nil, NewError(KindUnauthorized, op, err)
	}
	u, err := p.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewError(KindUnauthorized, op, err)
		}
		return nil, Classify(op, err)
	}
	return &Session{
		AccessToken: accessToken,
		ExpiresIn:   int(claims.Remaining().Seconds()),
		User:        u,
	}, nil
}

// Refresh rotates a refresh token into a new session and emits
// EventTokenRefreshed.
func (p *AuthProvider) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	const op = "auth.refresh"
	claims, err := p.verify(ctx, refreshToken, jwt.TypeRefresh)
	if err != nil {
		return nil, NewError(KindUnauthorized, op, err)
	}
	u, err := p.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewError(KindUnauthorized, op, err)
		}
		return nil, Classify(op, err)
	}

	sess, err := p.mint(u, claims.RememberMe)
	if err != nil {
		return nil, NewError(KindUnknown, op, err)
	}
	p.revoke(ctx, claims)
	p.hub.emit(ctx, AuthChange{Event: EventTokenRefreshed, UserID: u.ID, Session: sess})
	return sess, nil
}

// SetPassword replaces the password of an account.
func (p *AuthProvider) SetPassword(ctx context.Context, userID, password string) error {
	const op = "auth.set_password"
	if len(password) < p.minPassword {
		return NewError(KindWeakPassword, op, nil)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return NewError(KindUnknown, op, err)
	}
	return Classify(op, p.users.UpdatePassword(ctx, userID, string(hash)))
}

func (p *AuthProvider) mint(u *model.AuthUser, rememberMe bool) (*Session, error) {
	sub := jwt.Subject{
		UserID: u.ID,
		Email:  u.Email,
		Role:   u.MetaString("role"),
	}
	if !model.IsValidRole(sub.Role) {
		sub.Role = model.RoleStudent
	}

	access, err := p.tokens.GenerateAccessToken(sub)
	if err != nil {
		return nil, err
	}
	refresh, err := p.tokens.GenerateRefreshToken(sub, rememberMe)
	if err != nil {
		return nil, err
	}
	return &Session{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int(p.tokens.AccessTokenTTL().Seconds()),
		User:         u,
	}, nil
}

func (p *AuthProvider) verify(ctx context.Context, token, tokenType string) (*jwt.Claims, error) {
	claims, err := p.tokens.ParseToken(token)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != tokenType {
		return nil, jwt.ErrTokenInvalid
	}
	if p.blacklist != nil {
		revoked, err := p.blacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			p.logger.Warn("blacklist lookup failed", zap.Error(err))
		} else if revoked {
			return nil, jwt.ErrTokenInvalid
		}
	}
	return claims, nil
}

func (p *AuthProvider) revoke(ctx context.Context, claims *jwt.Claims) {
	if p.blacklist == nil {
		return
	}
	ttl := claims.Remaining()
	if ttl <= 0 {
		return
	}
	if err := p.blacklist.BlacklistToken(ctx, claims.ID, ttl); err != nil {
		p.logger.Warn("revoke token failed", zap.String("user_id", claims.UserID), zap.Error(err))
	}
}
