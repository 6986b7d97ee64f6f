package model

import "strings"

// Organization groups students under an institution code, table organizations.
type Organization struct {
	ID           string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name         string `gorm:"type:varchar(200);not null"                     json:"name"`
	Code         string `gorm:"type:varchar(6);uniqueIndex;not null"           json:"code"`
	InstructorID string `gorm:"type:uuid;not null;index"                       json:"instructor_id"`
	CreatedModel
}

// TableName table name.
func (Organization) TableName() string { return "organizations" }

// NormalizeOrgCode trims and uppercases a user-typed code.
func NormalizeOrgCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
