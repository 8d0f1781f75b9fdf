package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/aquastaff/pool-reservation/internal/model"
)

type RoleRepository interface {
	// Все роли, отсортированные по ID.
	List(ctx context.Context) ([]model.Role, error)
	// Найти роль по ID.
	GetByID(ctx context.Context, id int64) (*model.Role, error)
	// Найти роль по имени.
	GetByName(ctx context.Context, name string) (*model.Role, error)
}

type GormRoleRepository struct {
	db *gorm.DB
}

func NewGormRoleRepository(db *gorm.DB) *GormRoleRepository {
	return &GormRoleRepository{db: db}
}

func (r *GormRoleRepository) List(ctx context.Context) ([]model.Role, error) {
	var roles []model.Role
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *GormRoleRepository) GetByID(ctx context.Context, id int64) (*model.Role, error) {
	var role model.Role
	if err := r.db.WithContext(ctx).First(&role, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &role, nil
}

func (r *GormRoleRepository) GetByName(ctx context.Context, name string) (*model.Role, error) {
	var role model.Role
	if err := r.db.WithContext(ctx).First(&role, "name = ?", name).Error; err != nil {
		return nil, translate(err)
	}
	return &role, nil
}
