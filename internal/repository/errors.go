package repository

import (
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate entry")
)

// translate maps driver errors onto the package sentinels, keeping the cause text.
func translate(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case isDuplicate(err):
		return errors.Wrap(ErrDuplicate, err.Error())
	default:
		return errors.Wrap(err, op)
	}
}

// isDuplicate covers drivers that do not implement gorm's error translator
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}
