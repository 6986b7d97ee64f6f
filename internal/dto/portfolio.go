package dto

import (
	"time"

	"github.com/infoamous-source/kiosk-sub001/internal/model"
)

// ── portfolio ──

// CreatePortfolioEntryRequest records a tool run.
type CreatePortfolioEntryRequest struct {
	ToolID     string                 `json:"tool_id"      binding:"required,max=100"`
	ModuleID   string                 `json:"module_id"    binding:"required,max=100"`
	ToolName   string                 `json:"tool_name"    binding:"required,max=200"`
	Input      map[string]interface{} `json:"input"`
	Output     map[string]interface{} `json:"output"`
	IsMockData bool                   `json:"is_mock_data"`
}

// PortfolioListRequest optional tool filter.
type PortfolioListRequest struct {
	ToolID string `form:"tool_id" binding:"omitempty,max=100"`
}

// PortfolioStats summary of a user's tool runs.
type PortfolioStats struct {
	TotalEntries  int            `json:"total_entries"`
	ToolUsage     map[string]int `json:"tool_usage"`
	AIGenerations int            `json:"ai_generations"`
	MockEntries   int            `json:"mock_entries"`
	LastActivity  *time.Time     `json:"last_activity"`
}

// ── idea box ──

// CreateIdeaRequest saves a tool output into the idea box.
type CreateIdeaRequest struct {
	Type    string   `json:"type"    binding:"required,oneof=persona usp copy hashtag color roi ad other"`
	Title   string   `json:"title"   binding:"required,max=200"`
	Content string   `json:"content" binding:"required"`
	Preview string   `json:"preview" binding:"omitempty,max=500"`
	ToolID  string   `json:"tool_id" binding:"omitempty,max=100"`
	Tags    []string `json:"tags"    binding:"omitempty,max=20,dive,max=50"`
}

// ── progress ──

// SaveDigitalProgressRequest replaces the progress of one digital module.
type SaveDigitalProgressRequest struct {
	ModuleID           string   `json:"module_id"           binding:"required,max=100"`
	CompletedSteps     []string `json:"completed_steps"`
	CompletedPractices []string `json:"completed_practices"`
	Completed          bool     `json:"completed"`
}

// Marketing progress events.
const (
	MarketingEventView     = "view"
	MarketingEventToolUse  = "tool_use"
	MarketingEventComplete = "complete"
)

// MarketingProgressRequest records one marketing module event.
type MarketingProgressRequest struct {
	ModuleID string `json:"module_id" binding:"required,max=100"`
	Event    string `json:"event"     binding:"required,oneof=view tool_use complete"`
}

// CreateActivityLogRequest one learning event.
type CreateActivityLogRequest struct {
	TrackID  model.TrackID          `json:"track_id"  binding:"required,track_id"`
	ModuleID string                 `json:"module_id" binding:"omitempty,max=100"`
	Action   string                 `json:"action"    binding:"required,oneof=view click start complete tool_use ai_generate copy_output export"`
	Metadata map[string]interface{} `json:"metadata"`
}

// ActivityLogListRequest optional filters.
type ActivityLogListRequest struct {
	TrackID model.TrackID `form:"track_id" binding:"omitempty,track_id"`
	Limit   int           `form:"limit"    binding:"omitempty,min=1,max=1000"`
}

// ── school progress ──

// EarnStampRequest marks a period complete.
type EarnStampRequest struct {
	PeriodID model.PeriodID `json:"period_id" binding:"required"`
}

// SchoolResultRequest stores a free-form result document.
type SchoolResultRequest struct {
	Kind string                 `json:"kind" binding:"required,oneof=aptitude simulation market_compass"`
	Data map[string]interface{} `json:"data" binding:"required"`
}

// GraduateRequest finishes the school.
type GraduateRequest struct {
	Review string `json:"review" binding:"omitempty,max=2000"`
}

// SchoolProgressResponse board plus derived values.
type SchoolProgressResponse struct {
	Progress         *model.SchoolProgress `json:"progress"`
	CompletedStamps  int                   `json:"completed_stamps"`
	TotalStamps      int                   `json:"total_stamps"`
	CanGraduate      bool                  `json:"can_graduate"`
	ProRemainingDays int                   `json:"pro_remaining_days"`
}
