package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/aquastaff/pool-reservation/internal/model"
	"github.com/aquastaff/pool-reservation/internal/repository"
)

// SlotService управляет днями посещений.
type SlotService struct {
	db          *gorm.DB
	slotRepo    repository.SlotRepository
	bookingRepo repository.BookingRepository
}

func NewSlotService(db *gorm.DB, slotRepo repository.SlotRepository, bookingRepo repository.BookingRepository) *SlotService {
	return &SlotService{db: db, slotRepo: slotRepo, bookingRepo: bookingRepo}
}

// Create создаёт день посещений. На одну дату допускается один слот.
func (s *SlotService) Create(ctx context.Context, staff *model.StaffUser, date time.Time, capacity int) (*model.DailySlot, error) {
	if err := requireCapability(staff, CapManageSlots); err != nil {
		return nil, err
	}
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity must be positive", ErrValidation)
	}

	if _, err := s.slotRepo.GetByDate(ctx, date); err == nil {
		return nil, fmt.Errorf("%w: slot for %s already exists", ErrValidation, date.Format("2006-01-02"))
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	slot := model.DailySlot{
		ID:             uuid.New(),
		Date:           datatypes.Date(date),
		TotalSlots:     capacity,
		AvailableSlots: capacity,
		Status:         model.SlotStatusOpen,
	}
	if err := s.slotRepo.Create(ctx, &slot); err != nil {
		return nil, err
	}
	return &slot, nil
}

// Close закрывает день: статус closed, свободных мест нет.
// День с активными бронированиями закрыть нельзя.
func (s *SlotService) Close(ctx context.Context, staff *model.StaffUser, slotID, reason string) error {
	if err := requireCapability(staff, CapManageSlots); err != nil {
		return err
	}

	slot, err := s.getSlot(ctx, slotID)
	if err != nil {
		return err
	}

	active, err := s.bookingRepo.CountActiveBySlot(ctx, slot.ID)
	if err != nil {
		return err
	}
	if active > 0 {
		return fmt.Errorf("%w: slot has %d active bookings", ErrStateConflict, active)
	}

	return s.db.WithContext(ctx).
		Model(&model.DailySlot{}).
		Where("id = ?", slot.ID).
		Updates(map[string]any{
			"status":          model.SlotStatusClosed,
			"reason":          reason,
			"available_slots": 0,
		}).Error
}

// Delete удаляет день без активных бронирований.
func (s *SlotService) Delete(ctx context.Context, staff *model.StaffUser, slotID string) error {
	if err := requireCapability(staff, CapManageSlots); err != nil {
		return err
	}

	slot, err := s.getSlot(ctx, slotID)
	if err != nil {
		return err
	}

	active, err := s.bookingRepo.CountActiveBySlot(ctx, slot.ID)
	if err != nil {
		return err
	}
	if active > 0 {
		return fmt.Errorf("%w: slot has %d active bookings", ErrStateConflict, active)
	}

	return s.slotRepo.Delete(ctx, slotID)
}

// List возвращает все дни по возрастанию даты.
func (s *SlotService) List(ctx context.Context) ([]model.DailySlot, error) {
	return s.slotRepo.List(ctx)
}

// ListAvailable возвращает открытые дни со свободными местами начиная с from.
func (s *SlotService) ListAvailable(ctx context.Context, from time.Time, limit int) ([]model.DailySlot, error) {
	return s.slotRepo.ListOpenFrom(ctx, from, limit)
}

// Get возвращает день по ID.
func (s *SlotService) Get(ctx context.Context, slotID string) (*model.DailySlot, error) {
	return s.getSlot(ctx, slotID)
}

// EnsureUpcomingSlots — bootstrap: досоздаёт открытые дни на days дней вперёд.
// Существующие даты не трогаются. Возвращает количество созданных слотов.
func (s *SlotService) EnsureUpcomingSlots(ctx context.Context, days, capacity int) (int, error) {
	if days <= 0 || capacity <= 0 {
		return 0, fmt.Errorf("%w: days and capacity must be positive", ErrValidation)
	}

	created := 0
	today := time.Now().UTC().Truncate(24 * time.Hour)
	for i := 0; i < days; i++ {
		day := today.AddDate(0, 0, i)
		_, err := s.slotRepo.GetByDate(ctx, day)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return created, err
		}

		slot := model.DailySlot{
			ID:             uuid.New(),
			Date:           datatypes.Date(day),
			TotalSlots:     capacity,
			AvailableSlots: capacity,
			Status:         model.SlotStatusOpen,
		}
		if err := s.slotRepo.Create(ctx, &slot); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

func (s *SlotService) getSlot(ctx context.Context, slotID string) (*model.DailySlot, error) {
	slot, err := s.slotRepo.GetByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: slot %s", ErrNotFound, slotID)
		}
		return nil, err
	}
	return slot, nil
}
