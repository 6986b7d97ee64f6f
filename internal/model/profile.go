package model

import (
	"time"

	"gorm.io/datatypes"
)

// Roles.
const (
	RoleStudent    = "student"
	RoleInstructor = "instructor"
)

// IsValidRole reports whether role is known.
func IsValidRole(role string) bool {
	return role == RoleStudent || role == RoleInstructor
}

// AuthUser is an account of the auth sub-service, table auth_users.
// A profile row is materialized for every insert by a database trigger.
type AuthUser struct {
	ID           string            `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Email        string            `gorm:"type:varchar(255);uniqueIndex;not null"         json:"email"`
	PasswordHash string            `gorm:"type:varchar(255);not null"                     json:"-"`
	RawMeta      datatypes.JSONMap `gorm:"type:jsonb"                                     json:"raw_meta"`
	LastSignInAt *time.Time        `                                                      json:"last_sign_in_at,omitempty"`
	TimestampModel
}

// TableName table name.
func (AuthUser) TableName() string { return "auth_users" }

// MetaString reads a string value from the account metadata.
func (u *AuthUser) MetaString(key string) string {
	if u == nil || u.RawMeta == nil {
		return ""
	}
	s, _ := u.RawMeta[key].(string)
	return s
}

// Profile is the identity record, table profiles.
type Profile struct {
	ID              string `gorm:"type:uuid;primaryKey"             json:"id"`
	Name            string `gorm:"type:varchar(100);not null"       json:"name"`
	Email           string `gorm:"type:varchar(255);not null"       json:"email"`
	Role            string `gorm:"type:varchar(20);not null"        json:"role"`
	Organization    string `gorm:"type:varchar(200);not null"       json:"organization"`
	InstructorCode  string `gorm:"type:varchar(50);not null;index"  json:"instructor_code"`
	OrgCode         string `gorm:"type:varchar(10);not null;index"  json:"org_code"`
	Country         string `gorm:"type:varchar(100);not null"       json:"country"`
	Gender          string `gorm:"type:varchar(20);not null"        json:"gender"`
	Age             *int   `                                        json:"age,omitempty"`
	LearningPurpose string `gorm:"type:varchar(200);not null"       json:"learning_purpose"`
	GeminiAPIKey    string `gorm:"type:text;not null"               json:"-"`
	TimestampModel
}

// TableName table name.
func (Profile) TableName() string { return "profiles" }

// HasAPIKey reports whether the user stored a Gemini key.
func (p *Profile) HasAPIKey() bool { return p != nil && p.GeminiAPIKey != "" }

// AgeFromBirthYear computes age as currentYear - birthYear.
func AgeFromBirthYear(birthYear int, now time.Time) *int {
	if birthYear <= 0 {
		return nil
	}
	age := now.Year() - birthYear
	return &age
}

// AppUser is the application-level current user built from a session and
// its profile row.
type AppUser struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Role            string    `json:"role"`
	Organization    string    `json:"organization"`
	InstructorCode  string    `json:"instructor_code"`
	OrgCode         string    `json:"org_code"`
	LearningPurpose string    `json:"learning_purpose"`
	Country         string    `json:"country,omitempty"`
	Gender          string    `json:"gender,omitempty"`
	Age             *int      `json:"age,omitempty"`
	HasAPIKey       bool      `json:"has_api_key"`
	CreatedAt       time.Time `json:"created_at"`
}

// IsInstructor reports whether the user acts as an instructor.
func (u *AppUser) IsInstructor() bool { return u != nil && u.Role == RoleInstructor }

// NewAppUser maps an account and its profile. A missing profile falls back to
// the account metadata so a session is never left without a user.
func NewAppUser(account *AuthUser, profile *Profile) *AppUser {
	if profile == nil {
		role := account.MetaString("role")
		if !IsValidRole(role) {
			role = RoleStudent
		}
		return &AppUser{
			ID:        account.ID,
			Name:      account.MetaString("name"),
			Email:     account.Email,
			Role:      role,
			CreatedAt: account.CreatedAt,
		}
	}
	return &AppUser{
		ID:              profile.ID,
		Name:            profile.Name,
		Email:           profile.Email,
		Role:            profile.Role,
		Organization:    profile.Organization,
		InstructorCode:  profile.InstructorCode,
		OrgCode:         profile.OrgCode,
		LearningPurpose: profile.LearningPurpose,
		Country:         profile.Country,
		Gender:          profile.Gender,
		Age:             profile.Age,
		HasAPIKey:       profile.HasAPIKey(),
		CreatedAt:       profile.CreatedAt,
	}
}
