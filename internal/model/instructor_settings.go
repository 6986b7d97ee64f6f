package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// DefaultSettingsCode is used when the acting instructor has no code.
const DefaultSettingsCode = "DEFAULT"

// SettingsKey is the key-value store key of an instructor's document.
func SettingsKey(code string) string {
	return "kiosk-instructor-settings-" + code
}

// VisibilityItem is the on/off flag of a module or tool.
type VisibilityItem struct {
	Visible bool `json:"visible"`
}

// TrackVisibility is the per-track section of the document.
type TrackVisibility struct {
	Visible bool                      `json:"visible"`
	Modules map[string]VisibilityItem `json:"modules"`
	Tools   map[string]VisibilityItem `json:"tools"`
}

// InstructorSettings is the visibility document of one instructor code.
// A nil document, a missing track, module or tool all read as visible.
type InstructorSettings struct {
	RefCode   string                       `json:"refCode"`
	UpdatedAt time.Time                    `json:"updatedAt"`
	Tracks    map[TrackID]*TrackVisibility `json:"tracks"`
}

func newTrack(visible bool) *TrackVisibility {
	return &TrackVisibility{
		Visible: visible,
		Modules: map[string]VisibilityItem{},
		Tools:   map[string]VisibilityItem{},
	}
}

// NewDefaultSettings returns a document with every track visible.
func NewDefaultSettings(code string, now time.Time) *InstructorSettings {
	s := &InstructorSettings{
		RefCode:   code,
		UpdatedAt: now,
		Tracks:    make(map[TrackID]*TrackVisibility, len(SchoolIDs)),
	}
	for _, id := range SchoolIDs {
		s.Tracks[id] = newTrack(true)
	}
	return s
}

// ParseInstructorSettings decodes a stored document. Any decode failure
// yields nil, which reads as "no document".
func ParseInstructorSettings(raw []byte) *InstructorSettings {
	if len(raw) == 0 {
		return nil
	}
	var s InstructorSettings
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	if s.Tracks == nil {
		s.Tracks = map[TrackID]*TrackVisibility{}
	}
	for _, t := range s.Tracks {
		if t == nil {
			continue
		}
		if t.Modules == nil {
			t.Modules = map[string]VisibilityItem{}
		}
		if t.Tools == nil {
			t.Tools = map[string]VisibilityItem{}
		}
	}
	return &s
}

// Clone deep-copies the document.
func (s *InstructorSettings) Clone() *InstructorSettings {
	if s == nil {
		return nil
	}
	out := &InstructorSettings{
		RefCode:   s.RefCode,
		UpdatedAt: s.UpdatedAt,
		Tracks:    make(map[TrackID]*TrackVisibility, len(s.Tracks)),
	}
	for id, t := range s.Tracks {
		if t == nil {
			continue
		}
		c := newTrack(t.Visible)
		for k, v := range t.Modules {
			c.Modules[k] = v
		}
		for k, v := range t.Tools {
			c.Tools[k] = v
		}
		out.Tracks[id] = c
	}
	return out
}

func (s *InstructorSettings) track(id TrackID) *TrackVisibility {
	if s == nil {
		return nil
	}
	return s.Tracks[id]
}

// IsTrackVisible applies the default-allow rule to a track.
func (s *InstructorSettings) IsTrackVisible(trackID TrackID) bool {
	t := s.track(trackID)
	if t == nil {
		return true
	}
	return t.Visible
}

// IsModuleVisible is false when the track is off, regardless of the module flag.
func (s *InstructorSettings) IsModuleVisible(trackID TrackID, moduleID string) bool {
	t := s.track(trackID)
	if t == nil {
		return true
	}
	if !t.Visible {
		return false
	}
	m, ok := t.Modules[moduleID]
	if !ok {
		return true
	}
	return m.Visible
}

// IsToolVisible is false when the track is off, regardless of the tool flag.
func (s *InstructorSettings) IsToolVisible(trackID TrackID, toolID string) bool {
	t := s.track(trackID)
	if t == nil {
		return true
	}
	if !t.Visible {
		return false
	}
	tool, ok := t.Tools[toolID]
	if !ok {
		return true
	}
	return tool.Visible
}

// SetTrackVisible sets the track flag, creating the track if needed.
func (s *InstructorSettings) SetTrackVisible(trackID TrackID, visible bool, now time.Time) {
	if t := s.Tracks[trackID]; t != nil {
		t.Visible = visible
	} else {
		s.Tracks[trackID] = newTrack(visible)
	}
	s.UpdatedAt = now
}

// SetModuleVisible sets one module flag. A missing track is created visible.
func (s *InstructorSettings) SetModuleVisible(trackID TrackID, moduleID string, visible bool, now time.Time) {
	s.ensureTrack(trackID).Modules[moduleID] = VisibilityItem{Visible: visible}
	s.UpdatedAt = now
}

// SetToolVisible sets one tool flag. A missing track is created visible.
func (s *InstructorSettings) SetToolVisible(trackID TrackID, toolID string, visible bool, now time.Time) {
	s.ensureTrack(trackID).Tools[toolID] = VisibilityItem{Visible: visible}
	s.UpdatedAt = now
}

func (s *InstructorSettings) ensureTrack(trackID TrackID) *TrackVisibility {
	if s.Tracks == nil {
		s.Tracks = map[TrackID]*TrackVisibility{}
	}
	t := s.Tracks[trackID]
	if t == nil {
		t = newTrack(true)
		s.Tracks[trackID] = t
	}
	return t
}

// InstructorSettingsRow is the backend mirror of the document,
// table instructor_settings.
type InstructorSettingsRow struct {
	InstructorCode string         `gorm:"type:varchar(50);primaryKey" json:"instructor_code"`
	Settings       datatypes.JSON `gorm:"type:jsonb;not null"         json:"settings"`
	UpdatedAt      time.Time      `gorm:"not null"                    json:"updated_at"`
}

// TableName table name.
func (InstructorSettingsRow) TableName() string { return "instructor_settings" }
