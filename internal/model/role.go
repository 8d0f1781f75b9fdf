package model

// roles — справочник ролей персонала.
// Права заданы типизированными флагами, никаких сравнений по имени роли.
type Role struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	Name        string `gorm:"type:varchar(50);not null;uniqueIndex"`
	Description string `gorm:"type:varchar(255)"`

	CanManageUsers   bool `gorm:"not null;default:false"`
	CanManageSlots   bool `gorm:"not null;default:false"`
	CanConfirmVisits bool `gorm:"not null;default:false"`
}
