package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/aquastaff/pool-reservation/internal/model"
)

type ClientRepository interface {
	Create(ctx context.Context, client *model.Client) error
	GetByID(ctx context.Context, id string) (*model.Client, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*model.Client, error)
	GetByPhone(ctx context.Context, phone string) (*model.Client, error)
	// Все клиенты по дате регистрации.
	List(ctx context.Context) ([]model.Client, error)
}

type GormClientRepository struct {
	db *gorm.DB
}

func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

func (r *GormClientRepository) Create(ctx context.Context, client *model.Client) error {
	return r.db.WithContext(ctx).Create(client).Error
}

func (r *GormClientRepository) GetByID(ctx context.Context, id string) (*model.Client, error) {
	var c model.Client
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *GormClientRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*model.Client, error) {
	var c model.Client
	if err := r.db.WithContext(ctx).First(&c, "telegram_id = ?", telegramID).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *GormClientRepository) GetByPhone(ctx context.Context, phone string) (*model.Client, error) {
	var c model.Client
	if err := r.db.WithContext(ctx).First(&c, "phone = ?", phone).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *GormClientRepository) List(ctx context.Context) ([]model.Client, error) {
	var clients []model.Client
	if err := r.db.WithContext(ctx).Order("registered_at ASC").Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}
