package dto

// ── profile ──

// UpdateProfileRequest partial profile edit; nil fields are left unchanged.
type UpdateProfileRequest struct {
	Name            *string `json:"name"             binding:"omitempty,min=1,max=100"`
	Country         *string `json:"country"          binding:"omitempty,max=100"`
	Gender          *string `json:"gender"           binding:"omitempty,oneof=male female other"`
	BirthYear       *int    `json:"birth_year"       binding:"omitempty,min=1900,max=2100"`
	Organization    *string `json:"organization"     binding:"omitempty,max=200"`
	LearningPurpose *string `json:"learning_purpose" binding:"omitempty,max=200"`
}

// SaveAPIKeyRequest stores the user's Gemini key. An empty key clears it.
type SaveAPIKeyRequest struct {
	APIKey string `json:"api_key" binding:"max=200"`
}

// APIKeyResponse returns the stored key to its owner only.
type APIKeyResponse struct {
	APIKey    string `json:"api_key"`
	HasAPIKey bool   `json:"has_api_key"`
}

// SearchStudentsRequest name/email search.
type SearchStudentsRequest struct {
	Query string `form:"q" binding:"required,min=1,max=50"`
}

// AssignInstructorRequest links a student to the caller's instructor code.
type AssignInstructorRequest struct {
	StudentID string `json:"student_id" binding:"required,uuid"`
}
