package service

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/infoamous-source/kiosk-sub001/internal/backend"
	"github.com/infoamous-source/kiosk-sub001/internal/dto"
	"github.com/infoamous-source/kiosk-sub001/internal/model"
	"github.com/infoamous-source/kiosk-sub001/pkg/metrics"
)

var ErrIdeaNotFound = errors.New("idea box item not found")

// PortfolioService records tool runs.
type PortfolioService interface {
	Create(ctx context.Context, userID string, req *dto.CreatePortfolioEntryRequest) (*model.PortfolioEntry, error)
	List(ctx context.Context, userID, toolID string) []model.PortfolioEntry
	Stats(ctx context.Context, userID string) *dto.PortfolioStats
}

type portfolioService struct {
	client  *backend.Client
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewPortfolioService creates a PortfolioService.
func NewPortfolioService(client *backend.Client, m *metrics.Metrics, logger *zap.Logger) PortfolioService {
	return &portfolioService{client: client, metrics: m, logger: logger}
}

func jsonMap(m map[string]interface{}) datatypes.JSONMap {
	if m == nil {
		return datatypes.JSONMap{}
	}
	return datatypes.JSONMap(m)
}

func (s *portfolioService) Create(ctx context.Context, userID string, req *dto.CreatePortfolioEntryRequest) (*model.PortfolioEntry, error) {
	if err := s.client.Guard("portfolio.create"); err != nil {
		return nil, err
	}
	e := &model.PortfolioEntry{
		UserID:     userID,
		ToolID:     req.ToolID,
		ModuleID:   req.ModuleID,
		ToolName:   req.ToolName,
		Input:      jsonMap(req.Input),
		Output:     jsonMap(req.Output),
		IsMockData: req.IsMockData,
	}
	if err := s.client.Tables.Portfolio.Create(ctx, e); err != nil {
		return nil, backend.Classify("portfolio.create", err)
	}
	return e, nil
}

func (s *portfolioService) List(ctx context.Context, userID, toolID string) []model.PortfolioEntry {
	if s.client.Guard("portfolio.list") != nil {
		return []model.PortfolioEntry{}
	}
	list, err := s.client.Tables.Portfolio.ListByUser(ctx, userID, toolID)
	if err != nil {
		readFailed(s.logger, s.metrics, "portfolio_entries", err, zap.String("user_id", userID))
		return []model.PortfolioEntry{}
	}
	return list
}

// Stats derives totals from the user's entries. AI generations count only
// real runs of the copywriting tools.
func (s *portfolioService) Stats(ctx context.Context, userID string) *dto.PortfolioStats {
	entries := s.List(ctx, userID, "")
	stats := &dto.PortfolioStats{ToolUsage: map[string]int{}}
	var last time.Time
	for i := range entries {
		e := &entries[i]
		stats.TotalEntries++
		stats.ToolUsage[e.ToolID]++
		if e.IsMockData {
			stats.MockEntries++
		}
		if e.IsAIGeneration() {
			stats.AIGenerations++
		}
		if e.CreatedAt.After(last) {
			last = e.CreatedAt
		}
	}
	if !last.IsZero() {
		stats.LastActivity = &last
	}
	return stats
}

// IdeaBoxService is the per-user scrapbook of saved outputs.
type IdeaBoxService interface {
	List(ctx context.Context, userID string) []model.IdeaBoxItem
	Add(ctx context.Context, userID string, req *dto.CreateIdeaRequest) (*model.IdeaBoxItem, error)
	// Remove deletes the item only when userID owns it.
	Remove(ctx context.Context, userID, id string) error
}

type ideaBoxService struct {
	client  *backend.Client
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewIdeaBoxService creates an IdeaBoxService.
func NewIdeaBoxService(client *backend.Client, m *metrics.Metrics, logger *zap.Logger) IdeaBoxService {
	return &ideaBoxService{client: client, metrics: m, logger: logger}
}

func (s *ideaBoxService) List(ctx context.Context, userID string) []model.IdeaBoxItem {
	if s.client.Guard("idea_box.list") != nil {
		return []model.IdeaBoxItem{}
	}
	list, err := s.client.Tables.IdeaBox.ListByUser(ctx, userID)
	if err != nil {
		readFailed(s.logger, s.metrics, "idea_box_items", err, zap.String("user_id", userID))
		return []model.IdeaBoxItem{}
	}
	return list
}

const previewRunes = 100

func (s *ideaBoxService) Add(ctx context.Context, userID string, req *dto.CreateIdeaRequest) (*model.IdeaBoxItem, error) {
	if err := s.client.Guard("idea_box.add"); err != nil {
		return nil, err
	}
	preview := req.Preview
	if preview == "" {
		preview = truncateRunes(req.Content, previewRunes)
	}
	tags := pq.StringArray{}
	tags = append(tags, req.Tags...)

	item := &model.IdeaBoxItem{
		UserID:  userID,
		Type:    req.Type,
		Title:   req.Title,
		Content: req.Content,
		Preview: preview,
		ToolID:  req.ToolID,
		Tags:    tags,
	}
	if err := s.client.Tables.IdeaBox.Create(ctx, item); err != nil {
		return nil, backend.Classify("idea_box.add", err)
	}
	return item, nil
}

func (s *ideaBoxService) Remove(ctx context.Context, userID, id string) error {
	if err := s.client.Guard("idea_box.remove"); err != nil {
		return err
	}
	if err := s.client.Tables.IdeaBox.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrIdeaNotFound
		}
		return backend.Classify("idea_box.remove", err)
	}
	return nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
