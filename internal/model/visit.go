package model

import (
	"time"

	"github.com/google/uuid"
)

// visits — неизменяемая отметка о фактическом посещении.
// Создаётся ровно один раз при переводе бронирования в статус visited.
type Visit struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	ClientID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	BookingID *uuid.UUID `gorm:"type:uuid;index"`

	ConfirmedByID *uuid.UUID `gorm:"type:uuid"`

	VisitedAt time.Time `gorm:"not null;default:now();index"`

	Client      *Client    `gorm:"foreignKey:ClientID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Booking     *Booking   `gorm:"foreignKey:BookingID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	ConfirmedBy *StaffUser `gorm:"foreignKey:ConfirmedByID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}
