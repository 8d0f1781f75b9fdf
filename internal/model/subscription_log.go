package model

import (
	"time"

	"github.com/google/uuid"
)

// Тип операции с балансом абонемента.
type SubscriptionAction string

const (
	SubscriptionActionPurchase    SubscriptionAction = "purchase"
	SubscriptionActionDeduction   SubscriptionAction = "deduction"
	SubscriptionActionBooking     SubscriptionAction = "booking"
	SubscriptionActionRefund      SubscriptionAction = "refund"
	SubscriptionActionVisitRefund SubscriptionAction = "visit_refund"
	SubscriptionActionSignupBonus SubscriptionAction = "signup_bonus"
)

// subscription_logs — журнал изменений баланса, только добавление.
// Amount хранится со знаком: пополнения положительные, списания отрицательные.
type SubscriptionLog struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	ClientID uuid.UUID          `gorm:"type:uuid;not null;index"`
	Action   SubscriptionAction `gorm:"type:varchar(50);not null;index"`
	Amount   int                `gorm:"not null"`

	// Сотрудник, выполнивший операцию; пусто для действий самого клиента.
	StaffID *uuid.UUID `gorm:"type:uuid"`

	CreatedAt time.Time `gorm:"not null;default:now();index"`

	Client *Client    `gorm:"foreignKey:ClientID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Staff  *StaffUser `gorm:"foreignKey:StaffID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}
