package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/infoamous-source/kiosk-sub001/internal/model"
)

// PortfolioRepository accesses portfolio_entries.
type PortfolioRepository interface {
	Create(ctx context.Context, e *model.PortfolioEntry) error
	// ListByUser returns newest first; toolID filters when non-empty.
	ListByUser(ctx context.Context, userID, toolID string) ([]model.PortfolioEntry, error)
}

type portfolioRepo struct {
	db *gorm.DB
}

// NewPortfolioRepo creates a PortfolioRepository.
func NewPortfolioRepo(db *gorm.DB) PortfolioRepository {
	return &portfolioRepo{db: db}
}

func (r *portfolioRepo) Create(ctx context.Context, e *model.PortfolioEntry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *portfolioRepo) ListByUser(ctx context.Context, userID, toolID string) ([]model.PortfolioEntry, error) {
	var list []model.PortfolioEntry
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if toolID != "" {
		q = q.Where("tool_id = ?", toolID)
	}
	err := q.Order("created_at DESC").Find(&list).Error
	return list, err
}

// IdeaBoxRepository accesses idea_box_items.
type IdeaBoxRepository interface {
	Create(ctx context.Context, item *model.IdeaBoxItem) error
	ListByUser(ctx context.Context, userID string) ([]model.IdeaBoxItem, error)
	// Delete removes the item only when it belongs to userID.
	Delete(ctx context.Context, userID, id string) error
}

type ideaBoxRepo struct {
	db *gorm.DB
}

// NewIdeaBoxRepo creates an IdeaBoxRepository.
func NewIdeaBoxRepo(db *gorm.DB) IdeaBoxRepository {
	return &ideaBoxRepo{db: db}
}

func (r *ideaBoxRepo) Create(ctx context.Context, item *model.IdeaBoxItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *ideaBoxRepo) ListByUser(ctx context.Context, userID string) ([]model.IdeaBoxItem, error) {
	var list []model.IdeaBoxItem
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

func (r *ideaBoxRepo) Delete(ctx context.Context, userID, id string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.IdeaBoxItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
