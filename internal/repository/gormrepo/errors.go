// Package gormrepo implements the repository interfaces on postgres through
// the database adapter.
package gormrepo

import (
	"errors"

	"gallery-api/internal/domain/patch"
	"gallery-api/internal/repository"

	"gorm.io/gorm"
)

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repository.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return repository.ErrDuplicate
	default:
		return err
	}
}

// nullable returns nil for a Null field so gorm writes SQL NULL.
func nullable[T any](f patch.Field[T]) any {
	if f.Null {
		return nil
	}
	return f.Value
}
