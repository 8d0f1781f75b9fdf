package service

import (
	"errors"
	"fmt"

	"github.com/aquastaff/pool-reservation/internal/model"
)

// Классы ошибок бизнес-логики. Транспорт (админка, бот) решает по ним,
// как ответить пользователю; частичных изменений состояния за ними нет.
var (
	// Невалидный ввод: дубликат даты, занятый username и т.п.
	ErrValidation = errors.New("validation failed")
	// У роли нет нужного права либо чужой ресурс.
	ErrPermissionDenied = errors.New("permission denied")
	// Переход недопустим из текущего состояния: нет мест, нет баланса,
	// терминальный статус бронирования.
	ErrStateConflict = errors.New("state conflict")
	// Сущность не найдена.
	ErrNotFound = errors.New("not found")

	ErrInvalidCredentials = fmt.Errorf("%w: invalid username or password", ErrValidation)
)

// Capability — проверяемое право роли.
type Capability int

const (
	CapManageUsers Capability = iota
	CapManageSlots
	CapConfirmVisits
)

func (c Capability) String() string {
	switch c {
	case CapManageUsers:
		return "manage users"
	case CapManageSlots:
		return "manage slots"
	case CapConfirmVisits:
		return "confirm visits"
	default:
		return "unknown"
	}
}

// requireCapability проверяет право действующего сотрудника до любых мутаций.
// Роль должна быть предзагружена вместе с сотрудником.
func requireCapability(staff *model.StaffUser, cap Capability) error {
	if staff == nil || !staff.IsActive || staff.Role == nil {
		return fmt.Errorf("%w: staff account is missing or inactive", ErrPermissionDenied)
	}

	allowed := false
	switch cap {
	case CapManageUsers:
		allowed = staff.Role.CanManageUsers
	case CapManageSlots:
		allowed = staff.Role.CanManageSlots
	case CapConfirmVisits:
		allowed = staff.Role.CanConfirmVisits
	}

	if !allowed {
		return fmt.Errorf("%w: role %q cannot %s", ErrPermissionDenied, staff.Role.Name, cap)
	}
	return nil
}
