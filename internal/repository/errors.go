package repository

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound возвращается вместо gorm.ErrRecordNotFound, чтобы вызывающий
// код не зависел от ORM.
var ErrNotFound = errors.New("record not found")

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
