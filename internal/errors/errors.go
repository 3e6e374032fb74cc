package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a category of application error.
type ErrorCode string

const (
	// ErrCodeConfiguration indicates no identity backend could be initialized.
	ErrCodeConfiguration ErrorCode = "configuration"
	// ErrCodeInvalidToken indicates an identity token failed verification.
	ErrCodeInvalidToken ErrorCode = "invalid_token"
	// ErrCodeMalformedArtifact indicates a session artifact could not be parsed or its signature is bad.
	ErrCodeMalformedArtifact ErrorCode = "malformed_artifact"
	// ErrCodeExpired indicates a token or session artifact is past its expiry.
	ErrCodeExpired ErrorCode = "expired"
	// ErrCodeRevoked indicates a session artifact was revoked or its user disabled.
	ErrCodeRevoked ErrorCode = "revoked"
	// ErrCodeNotFound indicates the target identity does not exist.
	ErrCodeNotFound ErrorCode = "not_found"
	// ErrCodeUnauthenticated indicates no valid session was presented.
	ErrCodeUnauthenticated ErrorCode = "unauthenticated"
	// ErrCodeForbidden indicates the caller is authenticated but lacks the role.
	ErrCodeForbidden ErrorCode = "forbidden"
	// ErrCodeValidation indicates invalid input data.
	ErrCodeValidation ErrorCode = "validation"
	// ErrCodeEmailExists indicates an identity with the email already exists.
	ErrCodeEmailExists ErrorCode = "email_exists"
	// ErrCodeInvalidEmail indicates the email is not a valid address.
	ErrCodeInvalidEmail ErrorCode = "invalid_email"
	// ErrCodeWeakPassword indicates the password does not meet backend rules.
	ErrCodeWeakPassword ErrorCode = "weak_password"
	// ErrCodeBackend indicates an opaque failure from the identity backend.
	ErrCodeBackend ErrorCode = "backend"
	// ErrCodeTimeout indicates a timeout occurred.
	ErrCodeTimeout ErrorCode = "timeout"
	// ErrCodeCanceled indicates the operation was canceled.
	ErrCodeCanceled ErrorCode = "canceled"
)

// AppError represents a structured application error with a code, message, and optional cause.
// It supports error wrapping and unwrapping for use with errors.Is and errors.As.
type AppError struct {
	// Code categorizes the error type
	Code ErrorCode
	// Message is a human-readable error message
	Message string
	// Cause is the underlying error that caused this error (optional)
	Cause error
	// Field is the specific field that caused the error (optional, for validation errors)
	Field string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates an AppError with the given code and message.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Newf creates an AppError with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Configuration creates a new Configuration error.
func Configuration(message string) *AppError { return New(ErrCodeConfiguration, message) }

// NotFound creates a new NotFound error.
func NotFound(message string) *AppError { return New(ErrCodeNotFound, message) }

// NotFoundf creates a new NotFound error with formatted message.
func NotFoundf(format string, args ...any) *AppError {
	return Newf(ErrCodeNotFound, format, args...)
}

// Validation creates a new Validation error.
func Validation(message string) *AppError { return New(ErrCodeValidation, message) }

// Validationf creates a new Validation error with formatted message.
func Validationf(format string, args ...any) *AppError {
	return Newf(ErrCodeValidation, format, args...)
}

// ValidationField creates a new Validation error for a specific field.
func ValidationField(field, message string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: message,
		Field:   field,
	}
}

// Unauthenticated creates a new Unauthenticated error.
func Unauthenticated(message string) *AppError { return New(ErrCodeUnauthenticated, message) }

// Forbidden creates a new Forbidden error.
func Forbidden(message string) *AppError { return New(ErrCodeForbidden, message) }

// Wrap wraps an existing error with an AppError, preserving the cause.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an existing error with an AppError and formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...any) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// isCode checks if an error has a specific error code.
func isCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// IsConfiguration checks if an error is a Configuration error.
func IsConfiguration(err error) bool { return isCode(err, ErrCodeConfiguration) }

// IsInvalidToken checks if an error is an InvalidToken error.
func IsInvalidToken(err error) bool { return isCode(err, ErrCodeInvalidToken) }

// IsExpired checks if an error is an Expired error.
func IsExpired(err error) bool { return isCode(err, ErrCodeExpired) }

// IsRevoked checks if an error is a Revoked error.
func IsRevoked(err error) bool { return isCode(err, ErrCodeRevoked) }

// IsMalformedArtifact checks if an error is a MalformedArtifact error.
func IsMalformedArtifact(err error) bool { return isCode(err, ErrCodeMalformedArtifact) }

// IsNotFound checks if an error is a NotFound error.
func IsNotFound(err error) bool { return isCode(err, ErrCodeNotFound) }

// IsValidation checks if an error is a Validation error.
func IsValidation(err error) bool { return isCode(err, ErrCodeValidation) }

// IsForbidden checks if an error is a Forbidden error.
func IsForbidden(err error) bool { return isCode(err, ErrCodeForbidden) }

// IsUnauthenticated checks if an error is an Unauthenticated error.
func IsUnauthenticated(err error) bool { return isCode(err, ErrCodeUnauthenticated) }

// IsBackend checks if an error is a Backend error.
func IsBackend(err error) bool { return isCode(err, ErrCodeBackend) }

// IsCredentialFailure reports whether err means the caller must re-authenticate.
func IsCredentialFailure(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidToken, ErrCodeMalformedArtifact, ErrCodeExpired, ErrCodeRevoked, ErrCodeUnauthenticated:
		return true
	default:
		return false
	}
}

// IsUserInputRejected reports whether the backend rejected user-supplied account fields.
func IsUserInputRejected(err error) bool {
	switch GetCode(err) {
	case ErrCodeEmailExists, ErrCodeInvalidEmail, ErrCodeWeakPassword, ErrCodeValidation:
		return true
	default:
		return false
	}
}

// GetCode returns the ErrorCode from an error, or empty string if not an AppError.
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// GetField returns the Field from an error, or empty string if not an AppError or no field set.
func GetField(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Field
	}
	return ""
}

// Message returns the AppError message without its cause, or err.Error() otherwise.
func Message(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
