package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aquastaff/pool-reservation/internal/model"
)

type SubscriptionLogRepository interface {
	// История изменений баланса клиента, новые сверху.
	ListByClient(ctx context.Context, clientID uuid.UUID, limit int) ([]model.SubscriptionLog, error)
}

type GormSubscriptionLogRepository struct {
	db *gorm.DB
}

func NewGormSubscriptionLogRepository(db *gorm.DB) *GormSubscriptionLogRepository {
	return &GormSubscriptionLogRepository{db: db}
}

func (r *GormSubscriptionLogRepository) ListByClient(ctx context.Context, clientID uuid.UUID, limit int) ([]model.SubscriptionLog, error) {
	var logs []model.SubscriptionLog
	q := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at DESC")

	if limit > 0 {
		q = q.Limit(limit)
	}

	if err := q.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
