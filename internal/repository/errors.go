package repository

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned by every repository when a lookup misses,
// whatever the backing store.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when a unique key is already taken.
var ErrDuplicate = errors.New("duplicate key")

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}
