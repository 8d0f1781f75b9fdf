package model

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusReserved  BookingStatus = "reserved"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusVisited   BookingStatus = "visited"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// IsTerminal сообщает, допускает ли статус дальнейшие переходы.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusVisited || s == BookingStatusCancelled
}

// bookings
type Booking struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ClientID uuid.UUID `gorm:"type:uuid;not null;index"`
	SlotID   uuid.UUID `gorm:"type:uuid;not null;index"`

	Status BookingStatus `gorm:"type:varchar(32);not null;index"`

	// Сотрудник, подтвердивший бронирование/посещение.
	ConfirmedByID *uuid.UUID `gorm:"type:uuid"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	Client      *Client    `gorm:"foreignKey:ClientID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Slot        *DailySlot `gorm:"foreignKey:SlotID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	ConfirmedBy *StaffUser `gorm:"foreignKey:ConfirmedByID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}
