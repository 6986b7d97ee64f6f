package model

import (
	"time"

	"gorm.io/datatypes"
)

// SchoolID identifies one of the fixed school programs.
type SchoolID string

const (
	SchoolDigitalBasics SchoolID = "digital-basics"
	SchoolMarketing     SchoolID = "marketing"
	SchoolCareer        SchoolID = "career"
)

// SchoolIDs lists every school in display order.
var SchoolIDs = []SchoolID{SchoolDigitalBasics, SchoolMarketing, SchoolCareer}

// DefaultSchool is granted, already active, at registration.
const DefaultSchool = SchoolMarketing

// IsValidSchool reports whether id names a known school.
func IsValidSchool(id SchoolID) bool {
	for _, s := range SchoolIDs {
		if s == id {
			return true
		}
	}
	return false
}

// EnrollmentStatus is the lifecycle state of an enrollment row.
type EnrollmentStatus string

const (
	StatusPendingInfo EnrollmentStatus = "pending_info"
	StatusActive      EnrollmentStatus = "active"
	StatusSuspended   EnrollmentStatus = "suspended"
	StatusCompleted   EnrollmentStatus = "completed"
)

// IsValid reports whether s is a known status.
func (s EnrollmentStatus) IsValid() bool {
	switch s {
	case StatusPendingInfo, StatusActive, StatusSuspended, StatusCompleted:
		return true
	}
	return false
}

// enrollmentTransitions: pending_info → active → suspended ⇄ active, active → completed.
var enrollmentTransitions = map[EnrollmentStatus][]EnrollmentStatus{
	StatusPendingInfo: {StatusActive},
	StatusActive:      {StatusSuspended, StatusCompleted},
	StatusSuspended:   {StatusActive},
}

// CanTransition reports whether from → to is a legal lifecycle step.
func CanTransition(from, to EnrollmentStatus) bool {
	for _, next := range enrollmentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Enrollment links a student to a school, table enrollments.
// (student_id, school_id) is not unique.
type Enrollment struct {
	ID           string           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	StudentID    string           `gorm:"type:uuid;not null;index"                       json:"student_id"`
	SchoolID     SchoolID         `gorm:"type:varchar(30);not null"                      json:"school_id"`
	InstructorID *string          `gorm:"type:uuid"                                      json:"instructor_id"`
	Status       EnrollmentStatus `gorm:"type:varchar(20);not null"                      json:"status"`
	EnrolledAt   time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"enrolled_at"`
	ActivatedAt  *time.Time       `                                                      json:"activated_at,omitempty"`
	SuspendedAt  *time.Time       `                                                      json:"suspended_at,omitempty"`
	CompletedAt  *time.Time       `                                                      json:"completed_at,omitempty"`
}

// TableName table name.
func (Enrollment) TableName() string { return "enrollments" }

// Stamp sets the timestamp that belongs to status.
func (e *Enrollment) Stamp(status EnrollmentStatus, now time.Time) {
	e.Status = status
	switch status {
	case StatusActive:
		e.ActivatedAt = TimePtr(now)
	case StatusSuspended:
		e.SuspendedAt = TimePtr(now)
	case StatusCompleted:
		e.CompletedAt = TimePtr(now)
	}
}

// SchoolProfile holds the enrollment-time answers, one per enrollment,
// table school_profiles.
type SchoolProfile struct {
	ID           string            `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	EnrollmentID string            `gorm:"type:uuid;not null;uniqueIndex"                 json:"enrollment_id"`
	StudentID    string            `gorm:"type:uuid;not null"                             json:"student_id"`
	SchoolID     SchoolID          `gorm:"type:varchar(30);not null"                      json:"school_id"`
	Data         datatypes.JSONMap `gorm:"type:jsonb;not null"                            json:"data"`
	CreatedModel
}

// TableName table name.
func (SchoolProfile) TableName() string { return "school_profiles" }
