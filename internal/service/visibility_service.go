package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/infoamous-source/kiosk-sub001/internal/backend"
	"github.com/infoamous-source/kiosk-sub001/internal/model"
	"github.com/infoamous-source/kiosk-sub001/pkg/redis"
)

var ErrNotInstructor = errors.New("only instructors can change visibility")

// VisibilityService answers default-allow visibility questions for an
// instructor code and lets instructors toggle tracks, modules and tools.
//
// Documents live in the key-value store under model.SettingsKey and are
// mirrored to instructor_settings; a key-value miss falls back to the table.
// Writes replace the whole document, last writer wins.
type VisibilityService interface {
	// Get returns the stored document or nil. An empty code has no document.
	Get(ctx context.Context, code string) *model.InstructorSettings
	IsTrackVisible(ctx context.Context, code string, trackID model.TrackID) bool
	IsModuleVisible(ctx context.Context, code string, trackID model.TrackID, moduleID string) bool
	IsToolVisible(ctx context.Context, code string, trackID model.TrackID, toolID string) bool
	SetTrackVisible(ctx context.Context, actor *model.AppUser, trackID model.TrackID, visible bool) (*model.InstructorSettings, error)
	SetModuleVisible(ctx context.Context, actor *model.AppUser, trackID model.TrackID, moduleID string, visible bool) (*model.InstructorSettings, error)
	SetToolVisible(ctx context.Context, actor *model.AppUser, trackID model.TrackID, toolID string, visible bool) (*model.InstructorSettings, error)
}

type visibilityService struct {
	client *backend.Client
	kv     KeyValueStore
	logger *zap.Logger
	now    func() time.Time
}

// NewVisibilityService creates a VisibilityService. kv may be nil.
func NewVisibilityService(client *backend.Client, kv KeyValueStore, logger *zap.Logger) VisibilityService {
	return &visibilityService{client: client, kv: kv, logger: logger, now: nowUTC}
}

// ReadCode is the document that gates what u sees: the code on their
// profile. Users without one read no document, so nothing is hidden.
func ReadCode(u *model.AppUser) string {
	if u == nil {
		return ""
	}
	return u.InstructorCode
}

// WriteCode is the document an instructor's toggles land in. Instructors
// without a code share model.DefaultSettingsCode, which no reader resolves to.
func WriteCode(u *model.AppUser) string {
	if u == nil || u.InstructorCode == "" {
		return model.DefaultSettingsCode
	}
	return u.InstructorCode
}

func (s *visibilityService) Get(ctx context.Context, code string) *model.InstructorSettings {
	if code == "" {
		return nil
	}

	if s.kv != nil {
		raw, err := s.kv.GetString(ctx, model.SettingsKey(code))
		switch {
		case err == nil:
			return model.ParseInstructorSettings([]byte(raw))
		case errors.Is(err, redis.ErrKeyNotFound):
		default:
			s.logger.Warn("read visibility from key-value store failed", zap.String("code", code), zap.Error(err))
		}
	}

	if !s.client.Configured() {
		return nil
	}
	row, err := s.client.Tables.InstructorSettings.Get(ctx, code)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("read instructor_settings failed", zap.String("code", code), zap.Error(err))
		}
		return nil
	}
	return model.ParseInstructorSettings(row.Settings)
}

func (s *visibilityService) IsTrackVisible(ctx context.Context, code string, trackID model.TrackID) bool {
	return s.Get(ctx, code).IsTrackVisible(trackID)
}

func (s *visibilityService) IsModuleVisible(ctx context.Context, code string, trackID model.TrackID, moduleID string) bool {
	return s.Get(ctx, code).IsModuleVisible(trackID, moduleID)
}

func (s *visibilityService) IsToolVisible(ctx context.Context, code string, trackID model.TrackID, toolID string) bool {
	return s.Get(ctx, code).IsToolVisible(trackID, toolID)
}

func (s *visibilityService) SetTrackVisible(ctx context.Context, actor *model.AppUser, trackID model.TrackID, visible bool) (*model.InstructorSettings, error) {
	return s.update(ctx, actor, func(doc *model.InstructorSettings, now time.Time) {
		doc.SetTrackVisible(trackID, visible, now)
	})
}

func (s *visibilityService) SetModuleVisible(ctx context.Context, actor *model.AppUser, trackID model.TrackID, moduleID string, visible bool) (*model.InstructorSettings, error) {
	return s.update(ctx, actor, func(doc *model.InstructorSettings, now time.Time) {
		doc.SetModuleVisible(trackID, moduleID, visible, now)
	})
}

func (s *visibilityService) SetToolVisible(ctx context.Context, actor *model.AppUser, trackID model.TrackID, toolID string, visible bool) (*model.InstructorSettings, error) {
	return s.update(ctx, actor, func(doc *model.InstructorSettings, now time.Time) {
		doc.SetToolVisible(trackID, toolID, visible, now)
	})
}

// update reads or creates the full document, applies one mutation and
// persists the whole document back.
func (s *visibilityService) update(
	ctx context.Context,
	actor *model.AppUser,
	mutate func(doc *model.InstructorSettings, now time.Time),
) (*model.InstructorSettings, error) {
	if !actor.IsInstructor() {
		return nil, ErrNotInstructor
	}
	code := WriteCode(actor)
	now := s.now()

	doc := s.Get(ctx, code)
	if doc == nil {
		doc = model.NewDefaultSettings(code, now)
	} else {
		doc = doc.Clone()
	}
	mutate(doc, now)

	if err := s.save(ctx, code, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *visibilityService) save(ctx context.Context, code string, doc *model.InstructorSettings) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	stored := false
	var lastErr error
	if s.kv != nil {
		if err := s.kv.SetString(ctx, model.SettingsKey(code), string(raw)); err != nil {
			s.logger.Error("write visibility to key-value store failed", zap.String("code", code), zap.Error(err))
			lastErr = err
		} else {
			stored = true
		}
	}

	if s.client.Configured() {
		row := &model.InstructorSettingsRow{
			InstructorCode: code,
			Settings:       datatypes.JSON(raw),
			UpdatedAt:      doc.UpdatedAt,
		}
		if err := s.client.Tables.InstructorSettings.Upsert(ctx, row); err != nil {
			s.logger.Error("mirror instructor_settings failed", zap.String("code", code), zap.Error(err))
			lastErr = backend.Classify("visibility.save", err)
		} else {
			stored = true
		}
	}

	if stored {
		return nil
	}
	if lastErr == nil {
		return s.client.Guard("visibility.save")
	}
	return lastErr
}
