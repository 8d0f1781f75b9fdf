package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aquastaff/pool-reservation/internal/model"
	"github.com/aquastaff/pool-reservation/internal/repository"
)

// BookingService реализует жизненный цикл бронирования:
//
//	reserved -> confirmed -> visited
//	reserved/confirmed -> cancelled, visited -> cancelled (отмена посещения)
//
// Посещение списывается с абонемента один раз — при создании бронирования.
// Все переходы, затрагивающие несколько строк, выполняются в одной транзакции;
// счётчики мест и баланса изменяются условными UPDATE, так что гонка за
// последнее место завершается конфликтом, а не потерянным обновлением.
type BookingService struct {
	db          *gorm.DB
	bookingRepo repository.BookingRepository
	slotRepo    repository.SlotRepository
	clientRepo  repository.ClientRepository
	visitRepo   repository.VisitRepository
}

func NewBookingService(
	db *gorm.DB,
	bookingRepo repository.BookingRepository,
	slotRepo repository.SlotRepository,
	clientRepo repository.ClientRepository,
	visitRepo repository.VisitRepository,
) *BookingService {
	return &BookingService{
		db:          db,
		bookingRepo: bookingRepo,
		slotRepo:    slotRepo,
		clientRepo:  clientRepo,
		visitRepo:   visitRepo,
	}
}

// Create бронирует место в слоте для клиента.
// Требования: слот открыт, есть свободные места, баланс клиента положителен.
func (s *BookingService) Create(ctx context.Context, clientID, slotID uuid.UUID) (*model.Booking, error) {
	booking := model.Booking{
		ID:       uuid.New(),
		ClientID: clientID,
		SlotID:   slotID,
		Status:   model.BookingStatusReserved,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var slot model.DailySlot
		if err := tx.First(&slot, "id = ?", slotID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: slot %s", ErrNotFound, slotID)
			}
			return err
		}

		var client model.Client
		if err := tx.First(&client, "id = ?", clientID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: client %s", ErrNotFound, clientID)
			}
			return err
		}

		// Захват места: условие в WHERE отсекает закрытый или заполненный слот.
		res := tx.Model(&model.DailySlot{}).
			Where("id = ? AND status = ? AND available_slots > 0", slotID, model.SlotStatusOpen).
			UpdateColumn("available_slots", gorm.Expr("available_slots - 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: slot has no available places or is closed", ErrStateConflict)
		}

		// Списание с абонемента с защитой от ухода в минус.
		res = tx.Model(&model.Client{}).
			Where("id = ? AND subscription_balance > 0", clientID).
			UpdateColumn("subscription_balance", gorm.Expr("subscription_balance - 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: subscription balance is empty", ErrStateConflict)
		}

		if err := tx.Create(&booking).Error; err != nil {
			return err
		}

		entry := model.SubscriptionLog{
			ID:       uuid.New(),
			ClientID: clientID,
			Action:   model.SubscriptionActionBooking,
			Amount:   -1,
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// Confirm переводит бронирование reserved -> confirmed.
// Требует права подтверждения посещений.
func (s *BookingService) Confirm(ctx context.Context, staff *model.StaffUser, bookingID string) error {
	if err := requireCapability(staff, CapConfirmVisits); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, err := getBookingTx(tx, bookingID)
		if err != nil {
			return err
		}
		if booking.Status != model.BookingStatusReserved {
			return fmt.Errorf("%w: booking is %s, only reserved bookings can be confirmed",
				ErrStateConflict, booking.Status)
		}

		return tx.Model(&model.Booking{}).
			Where("id = ? AND status = ?", booking.ID, model.BookingStatusReserved).
			Updates(map[string]any{
				"status":          model.BookingStatusConfirmed,
				"confirmed_by_id": staff.ID,
			}).Error
	})
}

// CancelByClient отменяет собственное бронирование клиента.
func (s *BookingService) CancelByClient(ctx context.Context, clientID uuid.UUID, bookingID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, err := getBookingTx(tx, bookingID)
		if err != nil {
			return err
		}
		if booking.ClientID != clientID {
			return fmt.Errorf("%w: booking belongs to another client", ErrPermissionDenied)
		}
		return cancelTx(tx, booking, nil)
	})
}

// CancelByStaff отменяет бронирование со стороны персонала.
// Проверки владельца нет, нужны права подтверждения посещений.
func (s *BookingService) CancelByStaff(ctx context.Context, staff *model.StaffUser, bookingID string) error {
	if err := requireCapability(staff, CapConfirmVisits); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, err := getBookingTx(tx, bookingID)
		if err != nil {
			return err
		}
		return cancelTx(tx, booking, &staff.ID)
	})
}

// CompleteVisit фиксирует посещение: confirmed -> visited плюс строка Visit.
// Баланс не меняется — посещение было списано при бронировании.
func (s *BookingService) CompleteVisit(ctx context.Context, staff *model.StaffUser, bookingID string) (*model.Visit, error) {
	if err := requireCapability(staff, CapConfirmVisits); err != nil {
		return nil, err
	}

	var visit model.Visit
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, err := getBookingTx(tx, bookingID)
		if err != nil {
			return err
		}
		if booking.Status != model.BookingStatusConfirmed {
			return fmt.Errorf("%w: booking is %s, only confirmed bookings can be completed",
				ErrStateConflict, booking.Status)
		}

		res := tx.Model(&model.Booking{}).
			Where("id = ? AND status = ?", booking.ID, model.BookingStatusConfirmed).
			Updates(map[string]any{
				"status":          model.BookingStatusVisited,
				"confirmed_by_id": staff.ID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: booking state changed concurrently", ErrStateConflict)
		}

		bookingID := booking.ID
		visit = model.Visit{
			ID:            uuid.New(),
			ClientID:      booking.ClientID,
			BookingID:     &bookingID,
			ConfirmedByID: &staff.ID,
			VisitedAt:     time.Now().UTC(),
		}
		return tx.Create(&visit).Error
	})
	if err != nil {
		return nil, err
	}
	return &visit, nil
}

// CancelVisit отменяет засчитанное посещение: visited -> cancelled,
// место и посещение возвращаются, строка Visit удаляется.
func (s *BookingService) CancelVisit(ctx context.Context, staff *model.StaffUser, bookingID string) error {
	if err := requireCapability(staff, CapConfirmVisits); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, err := getBookingTx(tx, bookingID)
		if err != nil {
			return err
		}
		if booking.Status != model.BookingStatusVisited {
			return fmt.Errorf("%w: booking is %s, only visited bookings can be reversed",
				ErrStateConflict, booking.Status)
		}

		res := tx.Model(&model.Booking{}).
			Where("id = ? AND status = ?", booking.ID, model.BookingStatusVisited).
			Updates(map[string]any{
				"status":          model.BookingStatusCancelled,
				"confirmed_by_id": staff.ID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: booking state changed concurrently", ErrStateConflict)
		}

		if err := restoreCountersTx(tx, booking); err != nil {
			return err
		}

		if err := tx.Delete(&model.Visit{}, "booking_id = ?", booking.ID).Error; err != nil {
			return err
		}

		entry := model.SubscriptionLog{
			ID:       uuid.New(),
			ClientID: booking.ClientID,
			Action:   model.SubscriptionActionVisitRefund,
			Amount:   1,
			StaffID:  &staff.ID,
		}
		return tx.Create(&entry).Error
	})
}

// ListActive возвращает активные бронирования для персонала.
func (s *BookingService) ListActive(ctx context.Context, staff *model.StaffUser) ([]model.Booking, error) {
	if err := requireCapability(staff, CapConfirmVisits); err != nil {
		return nil, err
	}
	return s.bookingRepo.ListActive(ctx)
}

// ListForClient возвращает бронирования клиента.
func (s *BookingService) ListForClient(ctx context.Context, clientID uuid.UUID, limit int) ([]model.Booking, error) {
	return s.bookingRepo.ListByClient(ctx, clientID, limit)
}

// ListVisits возвращает засчитанные посещения клиента.
func (s *BookingService) ListVisits(ctx context.Context, staff *model.StaffUser, clientID uuid.UUID, limit int) ([]model.Visit, error) {
	if err := requireCapability(staff, CapConfirmVisits); err != nil {
		return nil, err
	}
	return s.visitRepo.ListByClient(ctx, clientID, limit)
}

// Get возвращает бронирование по ID.
func (s *BookingService) Get(ctx context.Context, bookingID string) (*model.Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: booking %s", ErrNotFound, bookingID)
		}
		return nil, err
	}
	return b, nil
}

func getBookingTx(tx *gorm.DB, bookingID string) (*model.Booking, error) {
	var b model.Booking
	if err := tx.First(&b, "id = ?", bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: booking %s", ErrNotFound, bookingID)
		}
		return nil, err
	}
	return &b, nil
}

// cancelTx выполняет переход reserved/confirmed -> cancelled и возвращает
// место в слот и посещение на абонемент.
func cancelTx(tx *gorm.DB, booking *model.Booking, staffID *uuid.UUID) error {
	if booking.Status != model.BookingStatusReserved && booking.Status != model.BookingStatusConfirmed {
		return fmt.Errorf("%w: booking is %s and cannot be cancelled", ErrStateConflict, booking.Status)
	}

	res := tx.Model(&model.Booking{}).
		Where("id = ? AND status IN ?", booking.ID,
			[]model.BookingStatus{model.BookingStatusReserved, model.BookingStatusConfirmed}).
		Updates(map[string]any{
			"status":          model.BookingStatusCancelled,
			"confirmed_by_id": staffID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: booking state changed concurrently", ErrStateConflict)
	}

	if err := restoreCountersTx(tx, booking); err != nil {
		return err
	}

	entry := model.SubscriptionLog{
		ID:       uuid.New(),
		ClientID: booking.ClientID,
		Action:   model.SubscriptionActionRefund,
		Amount:   1,
		StaffID:  staffID,
	}
	return tx.Create(&entry).Error
}

// restoreCountersTx возвращает одно место в слот и одно посещение клиенту.
// Ограничение available_slots < total_slots сохраняет инвариант квоты.
func restoreCountersTx(tx *gorm.DB, booking *model.Booking) error {
	res := tx.Model(&model.DailySlot{}).
		Where("id = ? AND available_slots < total_slots", booking.SlotID).
		UpdateColumn("available_slots", gorm.Expr("available_slots + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("slot %s counters are inconsistent", booking.SlotID)
	}

	return tx.Model(&model.Client{}).
		Where("id = ?", booking.ClientID).
		UpdateColumn("subscription_balance", gorm.Expr("subscription_balance + 1")).
		Error
}
