package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/aquastaff/pool-reservation/internal/model"
	"github.com/aquastaff/pool-reservation/internal/repository"
)

// IdentityService отвечает за учётки персонала и регистрацию клиентов.
type IdentityService struct {
	db         *gorm.DB
	staffRepo  repository.StaffRepository
	roleRepo   repository.RoleRepository
	clientRepo repository.ClientRepository
}

func NewIdentityService(
	db *gorm.DB,
	staffRepo repository.StaffRepository,
	roleRepo repository.RoleRepository,
	clientRepo repository.ClientRepository,
) *IdentityService {
	return &IdentityService{
		db:         db,
		staffRepo:  staffRepo,
		roleRepo:   roleRepo,
		clientRepo: clientRepo,
	}
}

// Authenticate проверяет пару логин/пароль и активность учётки.
// Причина отказа наружу не уточняется.
func (s *IdentityService) Authenticate(ctx context.Context, username, password string) (*model.StaffUser, error) {
	staff, err := s.staffRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !staff.IsActive {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(staff.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return staff, nil
}

// GetStaff возвращает сотрудника с ролью по ID.
func (s *IdentityService) GetStaff(ctx context.Context, id string) (*model.StaffUser, error) {
	staff, err := s.staffRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: staff %s", ErrNotFound, id)
		}
		return nil, err
	}
	return staff, nil
}

// CreateStaffInput — данные новой учётки сотрудника.
type CreateStaffInput struct {
	Username string
	Email    string
	Password string
	FullName string
	RoleID   int64
}

// CreateStaff создаёт сотрудника. Требует права управления пользователями.
func (s *IdentityService) CreateStaff(ctx context.Context, actor *model.StaffUser, in CreateStaffInput) (*model.StaffUser, error) {
	if err := requireCapability(actor, CapManageUsers); err != nil {
		return nil, err
	}

	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	if _, err := s.staffRepo.GetByUsername(ctx, in.Username); err == nil {
		return nil, fmt.Errorf("%w: username %q is already taken", ErrValidation, in.Username)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	role, err := s.roleRepo.GetByID(ctx, in.RoleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: role %d", ErrNotFound, in.RoleID)
		}
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	staff := model.StaffUser{
		ID:           uuid.New(),
		Username:     in.Username,
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: string(hash),
		FullName:     in.FullName,
		RoleID:       role.ID,
		IsActive:     true,
	}
	if err := s.staffRepo.Create(ctx, &staff); err != nil {
		return nil, err
	}
	staff.Role = role
	return &staff, nil
}

// ListStaff возвращает всех сотрудников.
func (s *IdentityService) ListStaff(ctx context.Context, actor *model.StaffUser) ([]model.StaffUser, error) {
	if err := requireCapability(actor, CapManageUsers); err != nil {
		return nil, err
	}
	return s.staffRepo.List(ctx)
}

// DeactivateStaff выключает учётку. Учётки не удаляются.
func (s *IdentityService) DeactivateStaff(ctx context.Context, actor *model.StaffUser, id string) error {
	if err := requireCapability(actor, CapManageUsers); err != nil {
		return err
	}
	if actor.ID.String() == id {
		return fmt.Errorf("%w: cannot deactivate own account", ErrValidation)
	}
	if _, err := s.GetStaff(ctx, id); err != nil {
		return err
	}
	return s.staffRepo.SetActive(ctx, id, false)
}

// ListRoles возвращает справочник ролей.
func (s *IdentityService) ListRoles(ctx context.Context, actor *model.StaffUser) ([]model.Role, error) {
	if err := requireCapability(actor, CapManageUsers); err != nil {
		return nil, err
	}
	return s.roleRepo.List(ctx)
}

// RegisterClientInput — данные регистрации клиента.
type RegisterClientInput struct {
	Name       string
	Phone      string
	TelegramID *int64
	// Стартовый баланс посещений; при положительном значении пишется
	// строка журнала signup_bonus.
	InitialBalance int
}

// RegisterClient регистрирует клиента (саморегистрация через бота или
// ручной ввод в админке).
func (s *IdentityService) RegisterClient(ctx context.Context, in RegisterClientInput) (*model.Client, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if in.InitialBalance < 0 {
		return nil, fmt.Errorf("%w: initial balance cannot be negative", ErrValidation)
	}

	if in.TelegramID != nil {
		if _, err := s.clientRepo.GetByTelegramID(ctx, *in.TelegramID); err == nil {
			return nil, fmt.Errorf("%w: client with this telegram account already exists", ErrValidation)
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}
	if phone := strings.TrimSpace(in.Phone); phone != "" {
		if _, err := s.clientRepo.GetByPhone(ctx, phone); err == nil {
			return nil, fmt.Errorf("%w: client with phone %s already exists", ErrValidation, phone)
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}

	client := model.Client{
		ID:                  uuid.New(),
		Name:                in.Name,
		Phone:               strings.TrimSpace(in.Phone),
		TelegramID:          in.TelegramID,
		SubscriptionBalance: in.InitialBalance,
		RegisteredAt:        time.Now().UTC(),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&client).Error; err != nil {
			return err
		}
		if in.InitialBalance == 0 {
			return nil
		}
		entry := model.SubscriptionLog{
			ID:       uuid.New(),
			ClientID: client.ID,
			Action:   model.SubscriptionActionSignupBonus,
			Amount:   in.InitialBalance,
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// FindClientByTelegramID ищет клиента по привязанному Telegram-аккаунту.
func (s *IdentityService) FindClientByTelegramID(ctx context.Context, telegramID int64) (*model.Client, error) {
	c, err := s.clientRepo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: client with telegram id %d", ErrNotFound, telegramID)
		}
		return nil, err
	}
	return c, nil
}

// GetClient возвращает клиента по ID.
func (s *IdentityService) GetClient(ctx context.Context, id string) (*model.Client, error) {
	c, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: client %s", ErrNotFound, id)
		}
		return nil, err
	}
	return c, nil
}

// ListClients возвращает всех клиентов.
func (s *IdentityService) ListClients(ctx context.Context, actor *model.StaffUser) ([]model.Client, error) {
	if err := requireCapability(actor, CapManageUsers); err != nil {
		return nil, err
	}
	return s.clientRepo.List(ctx)
}
