package model

import (
	"time"

	"github.com/google/uuid"
)

// clients — посетители с абонементом.
// TelegramID заполняется при саморегистрации через бота и может отсутствовать
// у клиентов, заведённых вручную через админку.
type Client struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	Name  string `gorm:"type:varchar(100);not null"`
	Phone string `gorm:"type:varchar(20);uniqueIndex"`

	TelegramID *int64 `gorm:"uniqueIndex"`

	// Остаток оплаченных посещений.
	SubscriptionBalance int `gorm:"not null;default:0"`

	RegisteredAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt    time.Time `gorm:"not null;default:now()"`
}
