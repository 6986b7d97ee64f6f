package model

import "time"

// CreatedModel is embedded by append-only rows.
type CreatedModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TimestampModel is embedded by rows that are updated in place.
type TimestampModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TrackID identifies a learning track. Tracks and schools share ids.
type TrackID = SchoolID

// TimePtr returns a pointer to t.
func TimePtr(t time.Time) *time.Time { return &t }
