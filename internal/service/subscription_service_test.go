package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/aquastaff/pool-reservation/internal/model"
)

func TestSubscriptionAddAndHistory(t *testing.T) {
	db, _, _, subscriptions, _ := newServices(t)
	ctx := context.Background()

	role := createRole(t, db, "Администратор", true, true, true)
	staff := createStaff(t, db, "admin", "secret", role)
	client := createClient(t, db, "Олег", 0)

	if err := subscriptions.Add(ctx, staff, client.ID, 10); err != nil {
		t.Fatalf("add: %v", err)
	}
	if got := reloadClient(t, db, client.ID).SubscriptionBalance; got != 10 {
		t.Fatalf("balance = %d, want 10", got)
	}

	history, err := subscriptions.History(ctx, staff, client.ID, 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("history entries = %d, want 1", len(history))
	}
	entry := history[0]
	if entry.Action != model.SubscriptionActionPurchase || entry.Amount != 10 {
		t.Errorf("unexpected entry: %+v", entry)
	}
	if entry.StaffID == nil || *entry.StaffID != staff.ID {
		t.Errorf("entry staff = %v, want %s", entry.StaffID, staff.ID)
	}
}

func TestSubscriptionSubtractInsufficientBalance(t *testing.T) {
	db, _, _, subscriptions, _ := newServices(t)
	ctx := context.Background()

	role := createRole(t, db, "Администратор", true, true, true)
	staff := createStaff(t, db, "admin", "secret", role)
	client := createClient(t, db, "Пётр", 3)

	if err := subscriptions.Subtract(ctx, staff, client.ID, 5); !errors.Is(err, ErrStateConflict) {
		t.Fatalf("err = %v, want ErrStateConflict", err)
	}
	// Баланс не изменился, строки журнала нет.
	if got := reloadClient(t, db, client.ID).SubscriptionBalance; got != 3 {
		t.Fatalf("balance = %d, want 3", got)
	}
	history, err := subscriptions.History(ctx, staff, client.ID, 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("history entries = %d, want 0", len(history))
	}

	if err := subscriptions.Subtract(ctx, staff, client.ID, 2); err != nil {
		t.Fatalf("subtract: %v", err)
	}
	if got := reloadClient(t, db, client.ID).SubscriptionBalance; got != 1 {
		t.Fatalf("balance = %d, want 1", got)
	}
}

func TestSubscriptionValidation(t *testing.T) {
	db, _, _, subscriptions, _ := newServices(t)
	ctx := context.Background()

	role := createRole(t, db, "Администратор", true, true, true)
	staff := createStaff(t, db, "admin", "secret", role)
	client := createClient(t, db, "Рита", 0)

	if err := subscriptions.Add(ctx, staff, client.ID, 0); !errors.Is(err, ErrValidation) {
		t.Fatalf("zero amount err = %v, want ErrValidation", err)
	}
	if err := subscriptions.Add(ctx, staff, client.ID, -1); !errors.Is(err, ErrValidation) {
		t.Fatalf("negative amount err = %v, want ErrValidation", err)
	}
	if err := subscriptions.Add(ctx, staff, uuid.New(), 5); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown client err = %v, want ErrNotFound", err)
	}
}

func TestSubscriptionRequiresManageUsers(t *testing.T) {
	db, _, _, subscriptions, _ := newServices(t)
	ctx := context.Background()

	role := createRole(t, db, "Сотрудник", false, false, true)
	staff := createStaff(t, db, "coach", "secret", role)
	client := createClient(t, db, "Света", 5)

	if err := subscriptions.Add(ctx, staff, client.ID, 5); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("add err = %v, want ErrPermissionDenied", err)
	}
	if err := subscriptions.Subtract(ctx, staff, client.ID, 1); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("subtract err = %v, want ErrPermissionDenied", err)
	}
	if _, err := subscriptions.History(ctx, staff, client.ID, 0); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("history err = %v, want ErrPermissionDenied", err)
	}
	if got := reloadClient(t, db, client.ID).SubscriptionBalance; got != 5 {
		t.Fatalf("balance = %d, want 5", got)
	}
}
