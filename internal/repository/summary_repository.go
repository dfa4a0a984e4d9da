package repository

import (
	"context"

	"chatonline-world/backend/internal/models"

	"gorm.io/gorm"
)

type SummaryRepository interface {
	Create(ctx context.Context, summary *models.Summary) error
	ListRecent(ctx context.Context) ([]models.Summary, error)
	Count(ctx context.Context) (int64, error)
}

type GormSummaryRepository struct {
	db *gorm.DB
}

func NewGormSummaryRepository(db *gorm.DB) *GormSummaryRepository {
	return &GormSummaryRepository{db: db}
}

func (r *GormSummaryRepository) Create(ctx context.Context, summary *models.Summary) error {
	return r.db.WithContext(ctx).Create(summary).Error
}

func (r *GormSummaryRepository) ListRecent(ctx context.Context) ([]models.Summary, error) {
	summaries := []models.Summary{}
	err := r.db.WithContext(ctx).
		Order("posted_at DESC").
		Order("id DESC").
		Find(&summaries).Error
	return summaries, err
}

func (r *GormSummaryRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Summary{}).Count(&count).Error
	return count, err
}
