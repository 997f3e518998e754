package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/VictorLi621/5620-Marker/internal/apperr"
)

// notFoundOr maps a missing-row lookup error to NOT_FOUND and passes any
// other database error through unchanged.
func notFoundOr(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFoundf(format, args...)
	}
	return err
}
