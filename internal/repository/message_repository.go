package repository

import (
	"context"
	"time"

	"chatonline-world/backend/internal/models"

	"gorm.io/gorm"
)

// MessageFilter narrows a message query. Nil fields are unconstrained.
type MessageFilter struct {
	Start  *time.Time
	End    *time.Time
	LatMin *float64
	LatMax *float64
	LngMin *float64
	LngMax *float64
}

type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	Find(ctx context.Context, filter MessageFilter) ([]models.Message, error)
	Count(ctx context.Context) (int64, error)
}

type GormMessageRepository struct {
	db *gorm.DB
}

func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: db}
}

func (r *GormMessageRepository) Create(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *GormMessageRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("posted_at < ?", cutoff.UTC()).
		Delete(&models.Message{})
	return result.RowsAffected, result.Error
}

// Find returns matching messages, most recent first
func (r *GormMessageRepository) Find(ctx context.Context, filter MessageFilter) ([]models.Message, error) {
	query := r.db.WithContext(ctx).Model(&models.Message{})

	if filter.Start != nil {
		query = query.Where("posted_at >= ?", filter.Start.UTC())
	}
	if filter.End != nil {
		query = query.Where("posted_at <= ?", filter.End.UTC())
	}
	if filter.LatMin != nil {
		query = query.Where("lat >= ?", *filter.LatMin)
	}
	if filter.LatMax != nil {
		query = query.Where("lat <= ?", *filter.LatMax)
	}
	if filter.LngMin != nil {
		query = query.Where("lng >= ?", *filter.LngMin)
	}
	if filter.LngMax != nil {
		query = query.Where("lng <= ?", *filter.LngMax)
	}

	messages := []models.Message{}
	err := query.Order("posted_at DESC").Order("id DESC").Find(&messages).Error
	return messages, err
}

func (r *GormMessageRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Message{}).Count(&count).Error
	return count, err
}
