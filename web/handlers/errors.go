package handlers

import (
	"errors"

	"gorm.io/gorm"

	"bawabt.com/labour/core"
)

// translateSaveError maps a unique index violation to a DuplicateError with
// the given message; anything else is wrapped as an UpstreamError.
func translateSaveError(err error, op, duplicateMessage string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &core.DuplicateError{Message: duplicateMessage}
	}
	return &core.UpstreamError{Op: op, Err: err}
}
