package errors

import (
	"context"
	"errors"
	"net/http"

	"gorm.io/gorm"
)

// Map converts repo/infra errors into typed service errors.
// Already-typed errors pass through unchanged.
func Map(err error) error {
	if err == nil {
		return nil
	}

	var typed *Error
	if errors.As(err, &typed) {
		return err
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return Wrap(KindNotFound, "record not found", err)

	case errors.Is(err, gorm.ErrDuplicatedKey):
		return Wrap(KindConflict, "record already exists", err)

	case errors.Is(err, context.DeadlineExceeded):
		return Wrap(KindInternal, "request timed out", err)

	case errors.Is(err, context.Canceled):
		return Wrap(KindInternal, "request was canceled", err)

	default:
		return Wrap(KindInternal, "internal error", err)
	}
}

// HTTPStatus maps an error kind onto an HTTP status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
