package model

import (
	"time"

	"github.com/google/uuid"
)

// staff_users — сотрудники бассейна (админка).
// Учётки не удаляются, только деактивируются.
type StaffUser struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	Username     string `gorm:"type:varchar(50);not null;uniqueIndex"`
	Email        string `gorm:"type:varchar(120);not null;uniqueIndex"`
	PasswordHash string `gorm:"type:varchar(255);not null"`
	FullName     string `gorm:"type:varchar(100)"`

	RoleID   int64 `gorm:"not null;index"`
	IsActive bool  `gorm:"not null;default:true"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	// Навигационное поле для Preload.
	Role *Role `gorm:"foreignKey:RoleID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}
