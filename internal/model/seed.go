package model

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Коды стандартных ролей.
const (
	RoleNameAdmin    = "Администратор"
	RoleNameManager  = "Менеджер"
	RoleNameEmployee = "Сотрудник"
)

// Seed создаёт стандартные роли и учётку администратора, если их ещё нет.
// Повторный запуск безопасен.
func Seed(db *gorm.DB, adminPassword string) error {
	roles := []Role{
		{
			Name:             RoleNameAdmin,
			Description:      "Полный доступ ко всем функциям",
			CanManageUsers:   true,
			CanManageSlots:   true,
			CanConfirmVisits: true,
		},
		{
			Name:             RoleNameManager,
			Description:      "Управление бронированиями и посещениями",
			CanConfirmVisits: true,
		},
		{
			Name:        RoleNameEmployee,
			Description: "Ограниченный доступ",
		},
	}

	for i := range roles {
		var existing Role
		err := db.Where("name = ?", roles[i].Name).First(&existing).Error
		if err == nil {
			roles[i].ID = existing.ID
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return fmt.Errorf("seed role %q: %w", roles[i].Name, err)
		}
		if err := db.Create(&roles[i]).Error; err != nil {
			return fmt.Errorf("seed role %q: %w", roles[i].Name, err)
		}
	}

	var count int64
	if err := db.Model(&StaffUser{}).Where("username = ?", "admin").Count(&count).Error; err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := StaffUser{
		Username:     "admin",
		Email:        "admin@pool.local",
		PasswordHash: string(hash),
		FullName:     "Главный Администратор",
		RoleID:       roles[0].ID,
		IsActive:     true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	return nil
}
