package service

import (
	"context"
	"errors"
	"testing"

	"github.com/aquastaff/pool-reservation/internal/model"
)

func TestAuthenticate(t *testing.T) {
	db, _, _, _, identity := newServices(t)
	ctx := context.Background()

	role := createRole(t, db, "Администратор", true, true, true)
	createStaff(t, db, "admin", "correct-horse", role)

	staff, err := identity.Authenticate(ctx, "admin", "correct-horse")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if staff.Role == nil || !staff.Role.CanManageUsers {
		t.Fatalf("role not preloaded: %+v", staff.Role)
	}

	if _, err := identity.Authenticate(ctx, "admin", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := identity.Authenticate(ctx, "nobody", "secret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user err = %v, want ErrInvalidCredentials", err)
	}
}

func TestAuthenticateInactiveAccount(t *testing.T) {
	db, _, _, _, identity := newServices(t)
	ctx := context.Background()

	role := createRole(t, db, "Сотрудник", false, false, true)
	staff := createStaff(t, db, "former", "secret", role)
	if err := db.Model(&model.StaffUser{}).Where("id = ?", staff.ID).
		Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	if _, err := identity.Authenticate(ctx, "former", "secret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestCreateStaff(t *testing.T) {
	db, _, _, _, identity := newServices(t)
	ctx := context.Background()

	adminRole := createRole(t, db, "Администратор", true, true, true)
	coachRole := createRole(t, db, "Сотрудник", false, false, true)
	admin := createStaff(t, db, "admin", "secret", adminRole)

	created, err := identity.CreateStaff(ctx, admin, CreateStaffInput{
		Username: "coach",
		Email:    "coach@pool.local",
		Password: "swim123",
		FullName: "Тренер",
		RoleID:   coachRole.ID,
	})
	if err != nil {
		t.Fatalf("create staff: %v", err)
	}
	if created.Role == nil || created.Role.ID != coachRole.ID {
		t.Fatalf("unexpected role: %+v", created.Role)
	}

	// Пароль хранится только хэшем, и по нему можно войти.
	if created.PasswordHash == "swim123" {
		t.Fatal("password stored in plain text")
	}
	if _, err := identity.Authenticate(ctx, "coach", "swim123"); err != nil {
		t.Fatalf("authenticate created staff: %v", err)
	}

	// Занятый username отклоняется.
	if _, err := identity.CreateStaff(ctx, admin, CreateStaffInput{
		Username: "coach", Password: "x", RoleID: coachRole.ID,
	}); !errors.Is(err, ErrValidation) {
		t.Fatalf("duplicate username err = %v, want ErrValidation", err)
	}

	// Без права управления пользователями создание запрещено.
	coach, err := identity.GetStaff(ctx, created.ID.String())
	if err != nil {
		t.Fatalf("get staff: %v", err)
	}
	if _, err := identity.CreateStaff(ctx, coach, CreateStaffInput{
		Username: "another", Password: "x", RoleID: coachRole.ID,
	}); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("err = %v, want ErrPermissionDenied", err)
	}
}

func TestDeactivateStaff(t *testing.T) {
	db, _, _, _, identity := newServices(t)
	ctx := context.Background()

	adminRole := createRole(t, db, "Администратор", true, true, true)
	admin := createStaff(t, db, "admin", "secret", adminRole)
	other := createStaff(t, db, "other", "secret", adminRole)

	// Собственную учётку деактивировать нельзя.
	if err := identity.DeactivateStaff(ctx, admin, admin.ID.String()); !errors.Is(err, ErrValidation) {
		t.Fatalf("self-deactivate err = %v, want ErrValidation", err)
	}

	if err := identity.DeactivateStaff(ctx, admin, other.ID.String()); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	got, err := identity.GetStaff(ctx, other.ID.String())
	if err != nil {
		t.Fatalf("get staff: %v", err)
	}
	if got.IsActive {
		t.Fatal("staff still active")
	}
}

func TestRegisterClient(t *testing.T) {
	db, _, _, _, identity := newServices(t)
	ctx := context.Background()

	tgID := int64(123456789)
	client, err := identity.RegisterClient(ctx, RegisterClientInput{
		Name:           "Мария",
		Phone:          "+79990001122",
		TelegramID:     &tgID,
		InitialBalance: 10,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if client.SubscriptionBalance != 10 {
		t.Fatalf("balance = %d, want 10", client.SubscriptionBalance)
	}

	var logs []model.SubscriptionLog
	if err := db.Find(&logs, "client_id = ?", client.ID).Error; err != nil {
		t.Fatalf("load logs: %v", err)
	}
	if len(logs) != 1 || logs[0].Action != model.SubscriptionActionSignupBonus || logs[0].Amount != 10 {
		t.Fatalf("unexpected log entries: %+v", logs)
	}

	// Повторная привязка того же Telegram-аккаунта отклоняется.
	if _, err := identity.RegisterClient(ctx, RegisterClientInput{
		Name: "Другая", TelegramID: &tgID,
	}); !errors.Is(err, ErrValidation) {
		t.Fatalf("duplicate telegram err = %v, want ErrValidation", err)
	}

	found, err := identity.FindClientByTelegramID(ctx, tgID)
	if err != nil {
		t.Fatalf("find by telegram: %v", err)
	}
	if found.ID != client.ID {
		t.Fatalf("found %s, want %s", found.ID, client.ID)
	}
}

func TestRegisterClientValidation(t *testing.T) {
	_, _, _, _, identity := newServices(t)
	ctx := context.Background()

	if _, err := identity.RegisterClient(ctx, RegisterClientInput{Name: "  "}); !errors.Is(err, ErrValidation) {
		t.Fatalf("blank name err = %v, want ErrValidation", err)
	}
	if _, err := identity.RegisterClient(ctx, RegisterClientInput{
		Name: "Ник", InitialBalance: -1,
	}); !errors.Is(err, ErrValidation) {
		t.Fatalf("negative balance err = %v, want ErrValidation", err)
	}
}
