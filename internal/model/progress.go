package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// DigitalProgress is one row per (user, module), table digital_progress.
type DigitalProgress struct {
	ID                 string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID             string         `gorm:"type:uuid;not null;uniqueIndex:uq_digital_user_module"         json:"user_id"`
	ModuleID           string         `gorm:"type:varchar(100);not null;uniqueIndex:uq_digital_user_module" json:"module_id"`
	CompletedSteps     pq.StringArray `gorm:"type:text[];not null"                           json:"completed_steps"`
	CompletedPractices pq.StringArray `gorm:"type:text[];not null"                           json:"completed_practices"`
	CompletedAt        *time.Time     `                                                      json:"completed_at,omitempty"`
	UpdatedAt          time.Time      `gorm:"not null"                                       json:"updated_at"`
}

// TableName table name.
func (DigitalProgress) TableName() string { return "digital_progress" }

// MarketingProgress is one row per (user, module), table marketing_progress.
type MarketingProgress struct {
	ID              string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID          string     `gorm:"type:uuid;not null;uniqueIndex:uq_marketing_user_module"         json:"user_id"`
	ModuleID        string     `gorm:"type:varchar(100);not null;uniqueIndex:uq_marketing_user_module" json:"module_id"`
	ViewedAt        *time.Time `                                                      json:"viewed_at,omitempty"`
	ToolUsedAt      *time.Time `                                                      json:"tool_used_at,omitempty"`
	ToolOutputCount int        `gorm:"not null;default:0"                             json:"tool_output_count"`
	CompletedAt     *time.Time `                                                      json:"completed_at,omitempty"`
	UpdatedAt       time.Time  `gorm:"not null"                                       json:"updated_at"`
}

// TableName table name.
func (MarketingProgress) TableName() string { return "marketing_progress" }

// Activity actions.
const (
	ActionView       = "view"
	ActionClick      = "click"
	ActionStart      = "start"
	ActionComplete   = "complete"
	ActionToolUse    = "tool_use"
	ActionAIGenerate = "ai_generate"
	ActionCopyOutput = "copy_output"
	ActionExport     = "export"
)

var activityActions = map[string]bool{
	ActionView: true, ActionClick: true, ActionStart: true, ActionComplete: true,
	ActionToolUse: true, ActionAIGenerate: true, ActionCopyOutput: true, ActionExport: true,
}

// IsValidAction reports whether a is a known activity action.
func IsValidAction(a string) bool { return activityActions[a] }

// ActivityLog is one learning event, table activity_logs. Rows per user are
// kept as a ring buffer.
type ActivityLog struct {
	ID       string            `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID   string            `gorm:"type:uuid;not null;index"                       json:"user_id"`
	TrackID  TrackID           `gorm:"type:varchar(30);not null"                      json:"track_id"`
	ModuleID string            `gorm:"type:varchar(100);not null"                     json:"module_id"`
	Action   string            `gorm:"type:varchar(20);not null"                      json:"action"`
	Metadata datatypes.JSONMap `gorm:"type:jsonb;not null"                            json:"metadata"`
	CreatedModel
}

// TableName table name.
func (ActivityLog) TableName() string { return "activity_logs" }
