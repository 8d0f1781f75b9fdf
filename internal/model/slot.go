package model

import (
	"time"

	"gorm.io/datatypes"

	"github.com/google/uuid"
)

// Статус дня посещений.
type SlotStatus string

const (
	SlotStatusOpen   SlotStatus = "open"
	SlotStatusClosed SlotStatus = "closed"
)

// daily_slots — квота мест на календарный день.
// Дата уникальна: на один день существует ровно одна запись.
type DailySlot struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	Date datatypes.Date `gorm:"type:date;not null;uniqueIndex"`

	TotalSlots     int `gorm:"not null"`
	AvailableSlots int `gorm:"not null"`

	Status SlotStatus `gorm:"type:varchar(32);not null;default:'open';index"`

	// Причина закрытия (санитарный день и т.п.).
	Reason string `gorm:"type:varchar(255)"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}
