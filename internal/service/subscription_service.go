package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aquastaff/pool-reservation/internal/model"
	"github.com/aquastaff/pool-reservation/internal/repository"
)

// SubscriptionService ведёт баланс абонементов и журнал его изменений.
// Каждая успешная операция пишет ровно одну строку журнала в той же
// транзакции, что и изменение баланса.
type SubscriptionService struct {
	db         *gorm.DB
	clientRepo repository.ClientRepository
	logRepo    repository.SubscriptionLogRepository
}

func NewSubscriptionService(
	db *gorm.DB,
	clientRepo repository.ClientRepository,
	logRepo repository.SubscriptionLogRepository,
) *SubscriptionService {
	return &SubscriptionService{db: db, clientRepo: clientRepo, logRepo: logRepo}
}

// Add начисляет amount посещений клиенту.
func (s *SubscriptionService) Add(ctx context.Context, staff *model.StaffUser, clientID uuid.UUID, amount int) error {
	if err := requireCapability(staff, CapManageUsers); err != nil {
		return err
	}
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	if _, err := s.getClient(ctx, clientID); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Client{}).
			Where("id = ?", clientID).
			UpdateColumn("subscription_balance", gorm.Expr("subscription_balance + ?", amount))
		if res.Error != nil {
			return res.Error
		}

		entry := model.SubscriptionLog{
			ID:       uuid.New(),
			ClientID: clientID,
			Action:   model.SubscriptionActionPurchase,
			Amount:   amount,
			StaffID:  &staff.ID,
		}
		return tx.Create(&entry).Error
	})
}

// Subtract списывает amount посещений. Списание больше остатка отклоняется
// без изменения баланса.
func (s *SubscriptionService) Subtract(ctx context.Context, staff *model.StaffUser, clientID uuid.UUID, amount int) error {
	if err := requireCapability(staff, CapManageUsers); err != nil {
		return err
	}
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	if _, err := s.getClient(ctx, clientID); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Client{}).
			Where("id = ? AND subscription_balance >= ?", clientID, amount).
			UpdateColumn("subscription_balance", gorm.Expr("subscription_balance - ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: insufficient subscription balance", ErrStateConflict)
		}

		entry := model.SubscriptionLog{
			ID:       uuid.New(),
			ClientID: clientID,
			Action:   model.SubscriptionActionDeduction,
			Amount:   -amount,
			StaffID:  &staff.ID,
		}
		return tx.Create(&entry).Error
	})
}

// History возвращает журнал изменений баланса клиента, новые сверху.
func (s *SubscriptionService) History(ctx context.Context, staff *model.StaffUser, clientID uuid.UUID, limit int) ([]model.SubscriptionLog, error) {
	if err := requireCapability(staff, CapManageUsers); err != nil {
		return nil, err
	}
	if _, err := s.getClient(ctx, clientID); err != nil {
		return nil, err
	}
	return s.logRepo.ListByClient(ctx, clientID, limit)
}

func (s *SubscriptionService) getClient(ctx context.Context, clientID uuid.UUID) (*model.Client, error) {
	c, err := s.clientRepo.GetByID(ctx, clientID.String())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: client %s", ErrNotFound, clientID)
		}
		return nil, err
	}
	return c, nil
}
