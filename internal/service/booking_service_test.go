package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aquastaff/pool-reservation/internal/model"
)

func TestBookingCreateDeductsSeatAndBalance(t *testing.T) {
	db, bookings, _, _, _ := newServices(t)
	ctx := context.Background()

	client := createClient(t, db, "Анна", 5)
	slot := createSlot(t, db, day(2026, time.September, 1), 10, 10, model.SlotStatusOpen)

	booking, err := bookings.Create(ctx, client.ID, slot.ID)
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	if booking.Status != model.BookingStatusReserved {
		t.Fatalf("status = %s, want reserved", booking.Status)
	}

	if got := reloadSlot(t, db, slot.ID).AvailableSlots; got != 9 {
		t.Errorf("available slots = %d, want 9", got)
	}
	if got := reloadClient(t, db, client.ID).SubscriptionBalance; got != 4 {
		t.Errorf("balance = %d, want 4", got)
	}

	var logs []model.SubscriptionLog
	if err := db.Find(&logs, "client_id = ?", client.ID).Error; err != nil {
		t.Fatalf("load logs: %v", err)
	}
	if len(logs) != 1 || logs[0].Action != model.SubscriptionActionBooking || logs[0].Amount != -1 {
		t.Errorf("unexpected log entries: %+v", logs)
	}
}

func TestBookingCreateFullSlot(t *testing.T) {
	db, bookings, _, _, _ := newServices(t)
	ctx := context.Background()

	client := createClient(t, db, "Борис", 3)
	slot := createSlot(t, db, day(2026, time.September, 2), 1, 0, model.SlotStatusOpen)

	if _, err := bookings.Create(ctx, client.ID, slot.ID); !errors.Is(err, ErrStateConflict) {
		t.Fatalf("err = %v, want ErrStateConflict", err)
	}
	// Неуспешное бронирование не трогает баланс.
	if got := reloadClient(t, db, client.ID).SubscriptionBalance; got != 3 {
		t.Errorf("balance = %d, want 3", got)
	}
}

func TestBookingCreateClosedSlot(t *testing.T) {
	db, bookings, _, _, _ := newServices(t)
	ctx := context.Background()

	client := createClient(t, db, "Вера", 3)
	slot := createSlot(t, db, day(2026, time.September, 3), 5, 5, model.SlotStatusClosed)

	if _, err := bookings.Create(ctx, client.ID, slot.ID); !errors.Is(err, ErrStateConflict) {
		t.Fatalf("err = %v, want ErrStateConflict", err)
	}
}

func TestBookingCreateEmptyBalance(t *testing.T) {
	db, bookings, _, _, _ := newServices(t)
	ctx := context.Background()

	client := createClient(t, db, "Глеб", 0)
	slot := createSlot(t, db, day(2026, time.September, 4), 5, 5, model.SlotStatusOpen)

	if _, err := bookings.Create(ctx, client.ID, slot.ID); !errors.Is(err, ErrStateConflict) {
		t.Fatalf("err = %v, want ErrStateConflict", err)
	}
	// Откат транзакции возвращает место.
	if got := reloadSlot(t, db, slot.ID).AvailableSlots; got != 5 {
		t.Errorf("available slots = %d, want 5", got)
	}
}

func TestBookingConfirmAndCompleteVisit(t *testing.T) {
	db, bookings, _, _, _ := newServices(t)
	ctx := context.Background()

	role := createRole(t, db, "Сотрудник", false, false, true)
	staff := createStaff(t, db, "coach", "secret", role)
	client := createClient(t, db, "Дина", 5)
	slot := createSlot(t, db, day(2026, time.September, 5), 10, 10, model.SlotStatusOpen)

	booking, err := bookings.Create(ctx, client.ID, slot.ID)
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}

	if err := bookings.Confirm(ctx, staff, booking.ID.String()); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if got := reloadBooking(t, db, booking.ID); got.Status != model.BookingStatusConfirmed {
		t.Fatalf("status = %s, want confirmed", got.Status)
	}

	// Повторное подтверждение — конфликт состояния.
	if err := bookings.Confirm(ctx, staff, booking.ID.String()); !errors.Is(err, ErrStateConflict) {
		t.Fatalf("second confirm err = %v, want ErrStateConflict", err)
	}

	visit, err := bookings.CompleteVisit(ctx, staff, booking.ID.String())
	if err != nil {
		t.Fatalf("complete visit: %v", err)
	}
	if visit.ClientID != client.ID {
		t.Errorf("visit client = %s, want %s", visit.ClientID, client.ID)
	}
	if got := reloadBooking(t, db, booking.ID); got.Status != model.BookingStatusVisited {
		t.Fatalf("status = %s, want visited", got.Status)
	}
	// Посещение уже было списано при бронировании, баланс не меняется.
	if got := reloadClient(t, db, client.ID).SubscriptionBalance; got != 4 {
		t.Errorf("balance = %d, want 4", got)
	}

	// Засчитанное посещение отменяется только через CancelVisit.
	if err := bookings.CancelByStaff(ctx, staff, booking.ID.String()); !errors.Is(err, ErrStateConflict) {
		t.Fatalf("cancel visited err = %v, want ErrStateConflict", err)
	}
}

func TestBookingCompleteVisitRequiresConfirmed(t *testing.T) {
	db, bookings, _, _, _ := newServices(t)
	ctx := context.Background()

	role := createRole(t, db, "Сотрудник", false, false, true)
	staff := createStaff(t, db, "coach", "secret", role)
	client := createClient(t, db, "Егор", 5)
	slot := createSlot(t, db, day(2026, time.September, 6), 10, 10, model.SlotStatusOpen)

	booking, err := bookings.Create(ctx, client.ID, slot.ID)
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}

	if _, err := bookings.CompleteVisit(ctx, staff, booking.ID.String()); !errors.Is(err, ErrStateConflict) {
		t.Fatalf("complete reserved err = %v, want ErrStateConflict", err)
	}
}

func TestBookingCancelByClientRestoresCounters(t *testing.T) {
	db, bookings, _, _, _ := newServices(t)
	ctx := context.Background()

	client := createClient(t, db, "Жанна", 2)
	slot := createSlot(t, db, day(2026, time.September, 7), 4, 4, model.SlotStatusOpen)

	booking, err := bookings.Create(ctx, client.ID, slot.ID)
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}

	if err := bookings.CancelByClient(ctx, client.ID, booking.ID.String()); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if got := reloadBooking(t, db, booking.ID); got.Status != model.BookingStatusCancelled {
		t.Fatalf("status = %s, want cancelled", got.Status)
	}
	if got := reloadSlot(t, db, slot.ID).AvailableSlots; got != 4 {
		t.Errorf("available slots = %d, want 4", got)
	}
	if got := reloadClient(t, db, client.ID).SubscriptionBalance; got != 2 {
		t.Errorf("balance = %d, want 2", got)
	}

	// Отменённое бронирование повторно не отменяется.
	if err := bookings.CancelByClient(ctx, client.ID, booking.ID.String()); !errors.Is(err, ErrStateConflict) {
		t.Fatalf("second cancel err = %v, want ErrStateConflict", err)
	}
}

func TestBookingCancelByClientOwnershipCheck(t *testing.T) {
	db, bookings, _, _, _ := newServices(t)
	ctx := context.Background()

	owner := createClient(t, db, "Зоя", 2)
	other := createClient(t, db, "Иван", 2)
	slot := createSlot(t, db, day(2026, time.September, 8), 4, 4, model.SlotStatusOpen)

	booking, err := bookings.Create(ctx, owner.ID, slot.ID)
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}

	if err := bookings.CancelByClient(ctx, other.ID, booking.ID.String()); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("err = %v, want ErrPermissionDenied", err)
	}
	if got := reloadBooking(t, db, booking.ID); got.Status != model.BookingStatusReserved {
		t.Fatalf("status = %s, booking must stay reserved", got.Status)
	}
}

func TestBookingStaffCapabilityGate(t *testing.T) {
	db, bookings, _, _, _ := newServices(t)
	ctx := context.Background()

	role := createRole(t, db, "Менеджер", true, true, false)
	staff := createStaff(t, db, "manager", "secret", role)
	client := createClient(t, db, "Кира", 2)
	slot := createSlot(t, db, day(2026, time.September, 9), 4, 4, model.SlotStatusOpen)

	booking, err := bookings.Create(ctx, client.ID, slot.ID)
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}

	if err := bookings.Confirm(ctx, staff, booking.ID.String()); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("confirm err = %v, want ErrPermissionDenied", err)
	}
	if _, err := bookings.CompleteVisit(ctx, staff, booking.ID.String()); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("complete err = %v, want ErrPermissionDenied", err)
	}
	// Отказ в праве не меняет состояние.
	if got := reloadBooking(t, db, booking.ID); got.Status != model.BookingStatusReserved {
		t.Fatalf("status = %s, booking must stay reserved", got.Status)
	}
}

func TestBookingCancelVisitReversesEverything(t *testing.T) {
	db, bookings, _, _, _ := newServices(t)
	ctx := context.Background()

	role := createRole(t, db, "Администратор", true, true, true)
	staff := createStaff(t, db, "admin", "secret", role)
	client := createClient(t, db, "Лев", 5)
	slot := createSlot(t, db, day(2026, time.September, 10), 10, 10, model.SlotStatusOpen)

	booking, err := bookings.Create(ctx, client.ID, slot.ID)
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	if err := bookings.Confirm(ctx, staff, booking.ID.String()); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if _, err := bookings.CompleteVisit(ctx, staff, booking.ID.String()); err != nil {
		t.Fatalf("complete visit: %v", err)
	}

	if err := bookings.CancelVisit(ctx, staff, booking.ID.String()); err != nil {
		t.Fatalf("cancel visit: %v", err)
	}

	if got := reloadBooking(t, db, booking.ID); got.Status != model.BookingStatusCancelled {
		t.Fatalf("status = %s, want cancelled", got.Status)
	}
	if got := reloadSlot(t, db, slot.ID).AvailableSlots; got != 10 {
		t.Errorf("available slots = %d, want 10", got)
	}
	if got := reloadClient(t, db, client.ID).SubscriptionBalance; got != 5 {
		t.Errorf("balance = %d, want 5", got)
	}

	var visits []model.Visit
	if err := db.Find(&visits, "booking_id = ?", booking.ID).Error; err != nil {
		t.Fatalf("load visits: %v", err)
	}
	if len(visits) != 0 {
		t.Errorf("visit rows = %d, want 0", len(visits))
	}

	var refunds []model.SubscriptionLog
	if err := db.Find(&refunds, "client_id = ? AND action = ?",
		client.ID, model.SubscriptionActionVisitRefund).Error; err != nil {
		t.Fatalf("load logs: %v", err)
	}
	if len(refunds) != 1 || refunds[0].Amount != 1 {
		t.Errorf("unexpected visit_refund entries: %+v", refunds)
	}
}

func TestBookingCancelVisitRequiresVisited(t *testing.T) {
	db, bookings, _, _, _ := newServices(t)
	ctx := context.Background()

	role := createRole(t, db, "Администратор", true, true, true)
	staff := createStaff(t, db, "admin", "secret", role)
	client := createClient(t, db, "Мара", 3)
	slot := createSlot(t, db, day(2026, time.September, 11), 4, 4, model.SlotStatusOpen)

	booking, err := bookings.Create(ctx, client.ID, slot.ID)
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}

	if err := bookings.CancelVisit(ctx, staff, booking.ID.String()); !errors.Is(err, ErrStateConflict) {
		t.Fatalf("err = %v, want ErrStateConflict", err)
	}
}

func TestBookingNotFound(t *testing.T) {
	_, bookings, _, _, _ := newServices(t)
	ctx := context.Background()

	if _, err := bookings.Get(ctx, "00000000-0000-0000-0000-000000000000"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
