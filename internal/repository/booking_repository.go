package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aquastaff/pool-reservation/internal/model"
)

type BookingRepository interface {
	// Найти бронирование по ID вместе с клиентом и слотом.
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	// Активные бронирования (reserved/confirmed), новые сверху.
	ListActive(ctx context.Context) ([]model.Booking, error)
	// Бронирования клиента, новые сверху.
	ListByClient(ctx context.Context, clientID uuid.UUID, limit int) ([]model.Booking, error)
	// Количество активных бронирований на слот.
	CountActiveBySlot(ctx context.Context, slotID uuid.UUID) (int64, error)
}

type GormBookingRepository struct {
	db *gorm.DB
}

func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

func (r *GormBookingRepository) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	var b model.Booking
	if err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Slot").
		First(&b, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (r *GormBookingRepository) ListActive(ctx context.Context) ([]model.Booking, error) {
	var bookings []model.Booking
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Slot").
		Where("status IN ?", []model.BookingStatus{model.BookingStatusReserved, model.BookingStatusConfirmed}).
		Order("created_at DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *GormBookingRepository) ListByClient(ctx context.Context, clientID uuid.UUID, limit int) ([]model.Booking, error) {
	var bookings []model.Booking
	q := r.db.WithContext(ctx).
		Preload("Slot").
		Where("client_id = ?", clientID).
		Order("created_at DESC")

	if limit > 0 {
		q = q.Limit(limit)
	}

	if err := q.Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *GormBookingRepository) CountActiveBySlot(ctx context.Context, slotID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("slot_id = ?", slotID).
		Where("status IN ?", []model.BookingStatus{model.BookingStatusReserved, model.BookingStatusConfirmed}).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
