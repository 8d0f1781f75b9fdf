package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/aquastaff/pool-reservation/internal/model"
)

type SlotRepository interface {
	// Создать день посещений.
	Create(ctx context.Context, slot *model.DailySlot) error
	// Найти слот по ID.
	GetByID(ctx context.Context, id string) (*model.DailySlot, error)
	// Найти слот по календарной дате.
	GetByDate(ctx context.Context, date time.Time) (*model.DailySlot, error)
	// Все слоты по дате по возрастанию.
	List(ctx context.Context) ([]model.DailySlot, error)
	// Открытые слоты со свободными местами начиная с даты.
	ListOpenFrom(ctx context.Context, from time.Time, limit int) ([]model.DailySlot, error)
	// Удалить слот.
	Delete(ctx context.Context, id string) error
}

type GormSlotRepository struct {
	db *gorm.DB
}

func NewGormSlotRepository(db *gorm.DB) *GormSlotRepository {
	return &GormSlotRepository{db: db}
}

func (r *GormSlotRepository) Create(ctx context.Context, slot *model.DailySlot) error {
	return r.db.WithContext(ctx).Create(slot).Error
}

func (r *GormSlotRepository) GetByID(ctx context.Context, id string) (*model.DailySlot, error) {
	var slot model.DailySlot
	if err := r.db.WithContext(ctx).First(&slot, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &slot, nil
}

func (r *GormSlotRepository) GetByDate(ctx context.Context, date time.Time) (*model.DailySlot, error) {
	// Полуинтервал [день, день+1) вместо сравнения строк: формат хранения
	// даты различается между Postgres и sqlite в тестах.
	day := truncateToDay(date)
	var slot model.DailySlot
	if err := r.db.WithContext(ctx).
		First(&slot, "date >= ? AND date < ?", day, day.AddDate(0, 0, 1)).Error; err != nil {
		return nil, translate(err)
	}
	return &slot, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (r *GormSlotRepository) List(ctx context.Context) ([]model.DailySlot, error) {
	var slots []model.DailySlot
	if err := r.db.WithContext(ctx).Order("date ASC").Find(&slots).Error; err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *GormSlotRepository) ListOpenFrom(ctx context.Context, from time.Time, limit int) ([]model.DailySlot, error) {
	var slots []model.DailySlot
	q := r.db.WithContext(ctx).
		Model(&model.DailySlot{}).
		Where("date >= ?", truncateToDay(from)).
		Where("status = ?", model.SlotStatusOpen).
		Where("available_slots > 0").
		Order("date ASC")

	if limit > 0 {
		q = q.Limit(limit)
	}

	if err := q.Find(&slots).Error; err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *GormSlotRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&model.DailySlot{}, "id = ?", id).Error
}
