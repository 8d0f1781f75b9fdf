package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aquastaff/pool-reservation/internal/model"
)

type VisitRepository interface {
	// Посещения клиента, новые сверху.
	ListByClient(ctx context.Context, clientID uuid.UUID, limit int) ([]model.Visit, error)
}

type GormVisitRepository struct {
	db *gorm.DB
}

func NewGormVisitRepository(db *gorm.DB) *GormVisitRepository {
	return &GormVisitRepository{db: db}
}

func (r *GormVisitRepository) ListByClient(ctx context.Context, clientID uuid.UUID, limit int) ([]model.Visit, error) {
	var visits []model.Visit
	q := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("visited_at DESC")

	if limit > 0 {
		q = q.Limit(limit)
	}

	if err := q.Find(&visits).Error; err != nil {
		return nil, err
	}
	return visits, nil
}
