package dto

import "github.com/infoamous-source/kiosk-sub001/internal/model"

// ── enrollment ──

// CreateEnrollmentRequest student clicks into a school.
type CreateEnrollmentRequest struct {
	SchoolID model.SchoolID `json:"school_id" binding:"required,school_id"`
}

// ConnectStudentRequest instructor connects a student; the row is created or
// reactivated as active.
type ConnectStudentRequest struct {
	StudentID string         `json:"student_id" binding:"required,uuid"`
	SchoolID  model.SchoolID `json:"school_id"  binding:"required,school_id"`
}

// SubmitInfoRequest completes a pending enrollment.
type SubmitInfoRequest struct {
	SchoolID model.SchoolID         `json:"school_id" binding:"required,school_id"`
	Data     map[string]interface{} `json:"data"      binding:"required"`
}

// UpdateEnrollmentStatusRequest instructor lifecycle transition.
type UpdateEnrollmentStatusRequest struct {
	Status model.EnrollmentStatus `json:"status" binding:"required,oneof=active suspended completed"`
}

// EnrollmentListRequest instructor dashboard filter.
type EnrollmentListRequest struct {
	SchoolID model.SchoolID `form:"school_id" binding:"omitempty,school_id"`
}

// EnrollmentsResponse the student's rows with derived subsets.
type EnrollmentsResponse struct {
	Enrollments []model.Enrollment `json:"enrollments"`
	Active      []model.Enrollment `json:"active"`
	Pending     []model.Enrollment `json:"pending"`
}

// EnrollmentStatusResponse status checks for one school.
type EnrollmentStatusResponse struct {
	SchoolID   model.SchoolID `json:"school_id"`
	Enrolled   bool           `json:"enrolled"`
	HasPending bool           `json:"has_pending"`
}
