package model

import (
	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// PortfolioEntry records one tool run, table portfolio_entries.
type PortfolioEntry struct {
	ID         string            `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID     string            `gorm:"type:uuid;not null;index"                       json:"user_id"`
	ToolID     string            `gorm:"type:varchar(100);not null"                     json:"tool_id"`
	ModuleID   string            `gorm:"type:varchar(100);not null"                     json:"module_id"`
	ToolName   string            `gorm:"type:varchar(200);not null"                     json:"tool_name"`
	Input      datatypes.JSONMap `gorm:"type:jsonb;not null"                            json:"input"`
	Output     datatypes.JSONMap `gorm:"type:jsonb;not null"                            json:"output"`
	IsMockData bool              `gorm:"not null;default:false"                         json:"is_mock_data"`
	CreatedModel
}

// TableName table name.
func (PortfolioEntry) TableName() string { return "portfolio_entries" }

// AIGenerationTools are the tools whose non-mock runs count as AI generations.
var AIGenerationTools = map[string]bool{
	"k-copywriter": true,
	"sns-ad-maker": true,
}

// IsAIGeneration reports whether the entry is a real AI generation.
func (e *PortfolioEntry) IsAIGeneration() bool {
	return !e.IsMockData && AIGenerationTools[e.ToolID]
}

// Idea box item types.
const (
	IdeaPersona = "persona"
	IdeaUSP     = "usp"
	IdeaCopy    = "copy"
	IdeaHashtag = "hashtag"
	IdeaColor   = "color"
	IdeaROI     = "roi"
	IdeaAd      = "ad"
	IdeaOther   = "other"
)

var ideaTypes = map[string]bool{
	IdeaPersona: true, IdeaUSP: true, IdeaCopy: true, IdeaHashtag: true,
	IdeaColor: true, IdeaROI: true, IdeaAd: true, IdeaOther: true,
}

// IsValidIdeaType reports whether t is a known idea box type.
func IsValidIdeaType(t string) bool { return ideaTypes[t] }

// IdeaBoxItem is a saved tool output, table idea_box_items.
type IdeaBoxItem struct {
	ID      string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID  string         `gorm:"type:uuid;not null;index"                       json:"user_id"`
	Type    string         `gorm:"type:varchar(20);not null"                      json:"type"`
	Title   string         `gorm:"type:varchar(200);not null"                     json:"title"`
	Content string         `gorm:"type:text;not null"                             json:"content"`
	Preview string         `gorm:"type:varchar(500);not null"                     json:"preview,omitempty"`
	ToolID  string         `gorm:"type:varchar(100);not null"                     json:"tool_id,omitempty"`
	Tags    pq.StringArray `gorm:"type:text[];not null"                           json:"tags"`
	CreatedModel
}

// TableName table name.
func (IdeaBoxItem) TableName() string { return "idea_box_items" }
