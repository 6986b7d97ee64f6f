package model

import (
	"github.com/lib/pq"
)

// Notification targets.
const (
	TargetAll      = "all"
	TargetNoAPIKey = "no_api_key"
	TargetSpecific = "specific"
)

// IsValidTarget reports whether t is a known target type.
func IsValidTarget(t string) bool {
	return t == TargetAll || t == TargetNoAPIKey || t == TargetSpecific
}

// Notification is an instructor announcement, table notifications.
type Notification struct {
	ID               string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	InstructorID     string         `gorm:"type:uuid;not null;index"                       json:"instructor_id"`
	TargetType       string         `gorm:"type:varchar(20);not null"                      json:"target_type"`
	TargetStudentIDs pq.StringArray `gorm:"type:text[];not null"                           json:"target_student_ids"`
	Title            string         `gorm:"type:varchar(200);not null"                     json:"title"`
	Message          string         `gorm:"type:text;not null"                             json:"message"`
	ActionURL        *string        `gorm:"type:varchar(500)"                              json:"action_url"`
	CreatedModel
}

// TableName table name.
func (Notification) TableName() string { return "notifications" }

// Targets reports whether the notification is addressed to the student.
func (n *Notification) Targets(studentID string, hasAPIKey bool) bool {
	switch n.TargetType {
	case TargetAll:
		return true
	case TargetNoAPIKey:
		return !hasAPIKey
	case TargetSpecific:
		for _, id := range n.TargetStudentIDs {
			if id == studentID {
				return true
			}
		}
	}
	return false
}
