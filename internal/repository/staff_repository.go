package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/aquastaff/pool-reservation/internal/model"
)

type StaffRepository interface {
	// Создать сотрудника.
	Create(ctx context.Context, staff *model.StaffUser) error
	// Найти сотрудника по ID вместе с ролью.
	GetByID(ctx context.Context, id string) (*model.StaffUser, error)
	// Найти сотрудника по имени пользователя вместе с ролью.
	GetByUsername(ctx context.Context, username string) (*model.StaffUser, error)
	// Все сотрудники вместе с ролями.
	List(ctx context.Context) ([]model.StaffUser, error)
	// Включить/выключить учётку.
	SetActive(ctx context.Context, id string, active bool) error
}

type GormStaffRepository struct {
	db *gorm.DB
}

func NewGormStaffRepository(db *gorm.DB) *GormStaffRepository {
	return &GormStaffRepository{db: db}
}

func (r *GormStaffRepository) Create(ctx context.Context, staff *model.StaffUser) error {
	return r.db.WithContext(ctx).Create(staff).Error
}

func (r *GormStaffRepository) GetByID(ctx context.Context, id string) (*model.StaffUser, error) {
	var u model.StaffUser
	if err := r.db.WithContext(ctx).Preload("Role").First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *GormStaffRepository) GetByUsername(ctx context.Context, username string) (*model.StaffUser, error) {
	var u model.StaffUser
	if err := r.db.WithContext(ctx).Preload("Role").First(&u, "username = ?", username).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *GormStaffRepository) List(ctx context.Context) ([]model.StaffUser, error) {
	var users []model.StaffUser
	if err := r.db.WithContext(ctx).Preload("Role").Order("username ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *GormStaffRepository) SetActive(ctx context.Context, id string, active bool) error {
	return r.db.WithContext(ctx).
		Model(&model.StaffUser{}).
		Where("id = ?", id).
		Update("is_active", active).
		Error
}
