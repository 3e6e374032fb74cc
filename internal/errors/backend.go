package errors

import (
	"context"
	"errors"
)

// MapBackendError maps transport-level failures of an identity backend call to AppError instances.
// AppErrors pass through unchanged. Context timeouts and cancellations map to
// Timeout/Canceled; anything else becomes a Backend error wrapping the cause.
func MapBackendError(err error, op string) error {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &AppError{
			Code:    ErrCodeTimeout,
			Message: op + " timed out",
			Cause:   err,
		}
	}
	if errors.Is(err, context.Canceled) {
		return &AppError{
			Code:    ErrCodeCanceled,
			Message: op + " was canceled",
			Cause:   err,
		}
	}

	return &AppError{
		Code:    ErrCodeBackend,
		Message: op + " failed",
		Cause:   err,
	}
}
