package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/aquastaff/pool-reservation/internal/model"
	"github.com/aquastaff/pool-reservation/internal/repository"
)

// newTestDB поднимает in-memory sqlite со схемой, совместимой с моделями
// (TEXT вместо uuid, без DB-side default'ов).
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	schema := []string{
		`CREATE TABLE roles (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			description TEXT,
			can_manage_users BOOLEAN NOT NULL DEFAULT 0,
			can_manage_slots BOOLEAN NOT NULL DEFAULT 0,
			can_confirm_visits BOOLEAN NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE staff_users (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			email TEXT,
			password_hash TEXT NOT NULL,
			full_name TEXT,
			role_id INTEGER NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT 1,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE clients (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			phone TEXT,
			telegram_id INTEGER,
			subscription_balance INTEGER NOT NULL DEFAULT 0,
			registered_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE daily_slots (
			id TEXT PRIMARY KEY,
			date DATETIME NOT NULL UNIQUE,
			total_slots INTEGER NOT NULL,
			available_slots INTEGER NOT NULL,
			status TEXT NOT NULL,
			reason TEXT,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE bookings (
			id TEXT PRIMARY KEY,
			client_id TEXT NOT NULL,
			slot_id TEXT NOT NULL,
			status TEXT NOT NULL,
			confirmed_by_id TEXT,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE visits (
			id TEXT PRIMARY KEY,
			client_id TEXT NOT NULL,
			booking_id TEXT,
			confirmed_by_id TEXT,
			visited_at DATETIME NOT NULL
		);`,
		`CREATE TABLE subscription_logs (
			id TEXT PRIMARY KEY,
			client_id TEXT NOT NULL,
			action TEXT NOT NULL,
			amount INTEGER NOT NULL,
			staff_id TEXT,
			created_at DATETIME
		);`,
	}
	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}

	return db
}

func newServices(t *testing.T) (*gorm.DB, *BookingService, *SlotService, *SubscriptionService, *IdentityService) {
	t.Helper()
	db := newTestDB(t)

	slotRepo := repository.NewGormSlotRepository(db)
	bookingRepo := repository.NewGormBookingRepository(db)
	clientRepo := repository.NewGormClientRepository(db)
	staffRepo := repository.NewGormStaffRepository(db)
	roleRepo := repository.NewGormRoleRepository(db)
	visitRepo := repository.NewGormVisitRepository(db)
	logRepo := repository.NewGormSubscriptionLogRepository(db)

	bookings := NewBookingService(db, bookingRepo, slotRepo, clientRepo, visitRepo)
	slots := NewSlotService(db, slotRepo, bookingRepo)
	subscriptions := NewSubscriptionService(db, clientRepo, logRepo)
	identity := NewIdentityService(db, staffRepo, roleRepo, clientRepo)

	return db, bookings, slots, subscriptions, identity
}

func createRole(t *testing.T, db *gorm.DB, name string, manageUsers, manageSlots, confirmVisits bool) *model.Role {
	t.Helper()
	role := model.Role{
		Name:             name,
		CanManageUsers:   manageUsers,
		CanManageSlots:   manageSlots,
		CanConfirmVisits: confirmVisits,
	}
	if err := db.Create(&role).Error; err != nil {
		t.Fatalf("create role: %v", err)
	}
	return &role
}

func createStaff(t *testing.T, db *gorm.DB, username, password string, role *model.Role) *model.StaffUser {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	staff := model.StaffUser{
		ID:           uuid.New(),
		Username:     username,
		Email:        username + "@pool.local",
		PasswordHash: string(hash),
		RoleID:       role.ID,
		IsActive:     true,
	}
	if err := db.Create(&staff).Error; err != nil {
		t.Fatalf("create staff: %v", err)
	}
	staff.Role = role
	return &staff
}

func createClient(t *testing.T, db *gorm.DB, name string, balance int) *model.Client {
	t.Helper()
	client := model.Client{
		ID:                  uuid.New(),
		Name:                name,
		Phone:               "+7" + uuid.NewString()[:10],
		SubscriptionBalance: balance,
		RegisteredAt:        time.Now().UTC(),
	}
	if err := db.Create(&client).Error; err != nil {
		t.Fatalf("create client: %v", err)
	}
	return &client
}

func createSlot(t *testing.T, db *gorm.DB, date time.Time, total, available int, status model.SlotStatus) *model.DailySlot {
	t.Helper()
	slot := model.DailySlot{
		ID:             uuid.New(),
		Date:           datatypes.Date(date),
		TotalSlots:     total,
		AvailableSlots: available,
		Status:         status,
	}
	if err := db.Create(&slot).Error; err != nil {
		t.Fatalf("create slot: %v", err)
	}
	return &slot
}

func reloadSlot(t *testing.T, db *gorm.DB, id uuid.UUID) *model.DailySlot {
	t.Helper()
	var slot model.DailySlot
	if err := db.First(&slot, "id = ?", id).Error; err != nil {
		t.Fatalf("reload slot: %v", err)
	}
	return &slot
}

func reloadClient(t *testing.T, db *gorm.DB, id uuid.UUID) *model.Client {
	t.Helper()
	var client model.Client
	if err := db.First(&client, "id = ?", id).Error; err != nil {
		t.Fatalf("reload client: %v", err)
	}
	return &client
}

func reloadBooking(t *testing.T, db *gorm.DB, id uuid.UUID) *model.Booking {
	t.Helper()
	var b model.Booking
	if err := db.First(&b, "id = ?", id).Error; err != nil {
		t.Fatalf("reload booking: %v", err)
	}
	return &b
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
