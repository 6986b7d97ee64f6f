package dto

import "github.com/infoamous-source/kiosk-sub001/internal/model"

// ── auth ──

// LoginRequest password sign-in.
type LoginRequest struct {
	Email      string `json:"email"       binding:"required,email"`
	Password   string `json:"password"    binding:"required"`
	RememberMe bool   `json:"remember_me"`
}

// RegisterRequest student self-registration. Codes are optional but, when
// given, must exist.
type RegisterRequest struct {
	Email           string `json:"email"            binding:"required,email,max=255"`
	Password        string `json:"password"         binding:"required,max=72"`
	Name            string `json:"name"             binding:"required,min=1,max=100"`
	Country         string `json:"country"          binding:"omitempty,max=100"`
	Gender          string `json:"gender"           binding:"omitempty,oneof=male female other"`
	BirthYear       int    `json:"birth_year"       binding:"omitempty,min=1900,max=2100"`
	Organization    string `json:"organization"     binding:"omitempty,max=200"`
	InstructorCode  string `json:"instructor_code"  binding:"omitempty,max=50"`
	OrgCode         string `json:"org_code"         binding:"omitempty,max=10"`
	LearningPurpose string `json:"learning_purpose" binding:"omitempty,max=200"`
}

// RefreshTokenRequest rotates a refresh token.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LoginResponse session plus the mapped current user. ProfilePending is set
// when the login resolved by timeout before the profile was loaded.
type LoginResponse struct {
	AccessToken    string         `json:"access_token"`
	RefreshToken   string         `json:"refresh_token"`
	ExpiresIn      int            `json:"expires_in"`
	User           *model.AppUser `json:"user"`
	ProfilePending bool           `json:"profile_pending"`
}

// AuthErrorMessage is the bilingual user-facing explanation of an auth failure.
type AuthErrorMessage struct {
	Title    LocalizedText `json:"title"`
	Reason   LocalizedText `json:"reason"`
	Solution LocalizedText `json:"solution"`
}

// LocalizedText carries Korean and English variants.
type LocalizedText struct {
	KO string `json:"ko"`
	EN string `json:"en"`
}
