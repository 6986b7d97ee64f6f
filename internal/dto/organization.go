package dto

import "github.com/infoamous-source/kiosk-sub001/internal/model"

// ── organization ──

// CreateOrganizationRequest instructor creates an institution.
type CreateOrganizationRequest struct {
	Name string `json:"name" binding:"required,min=1,max=200"`
}

// OrganizationResponse organization with its student head count.
type OrganizationResponse struct {
	model.Organization
	StudentCount int64 `json:"student_count"`
}

// ValidateOrgCodeResponse result of a code lookup.
type ValidateOrgCodeResponse struct {
	Valid bool   `json:"valid"`
	Name  string `json:"name,omitempty"`
}

// ── notification ──

// CreateNotificationRequest instructor announcement.
type CreateNotificationRequest struct {
	TargetType       string   `json:"target_type"        binding:"required,oneof=all no_api_key specific"`
	TargetStudentIDs []string `json:"target_student_ids" binding:"required_if=TargetType specific,dive,uuid"`
	Title            string   `json:"title"              binding:"required,max=200"`
	Message          string   `json:"message"            binding:"required,max=5000"`
	ActionURL        *string  `json:"action_url"         binding:"omitempty,max=500"`
}
