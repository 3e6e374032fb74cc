package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "error without cause",
			err: &AppError{
				Code:    ErrCodeNotFound,
				Message: "user not found",
			},
			want: "user not found",
		},
		{
			name: "error with cause",
			err: &AppError{
				Code:    ErrCodeBackend,
				Message: "list users failed",
				Cause:   errors.New("connection reset"),
			},
			want: "list users failed: connection reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("AppError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(cause, ErrCodeRevoked, "session revoked")

	if !errors.Is(err, cause) {
		t.Errorf("errors.Is through AppError failed")
	}
}

func TestWrap_Nil(t *testing.T) {
	if Wrap(nil, ErrCodeBackend, "x") != nil {
		t.Fatal("Wrap(nil) should return nil")
	}
}

func TestIsHelpers_ThroughWrapping(t *testing.T) {
	base := New(ErrCodeExpired, "session expired")
	wrapped := fmt.Errorf("decode: %w", base)

	if !IsExpired(wrapped) {
		t.Error("IsExpired should see through fmt.Errorf")
	}
	if !IsCredentialFailure(wrapped) {
		t.Error("expired is a credential failure")
	}
	if IsRevoked(wrapped) {
		t.Error("expired is not revoked")
	}
	if GetCode(errors.New("plain")) != "" {
		t.Error("plain error has no code")
	}
}

func TestIsUserInputRejected(t *testing.T) {
	for _, code := range []ErrorCode{ErrCodeEmailExists, ErrCodeInvalidEmail, ErrCodeWeakPassword, ErrCodeValidation} {
		if !IsUserInputRejected(New(code, "x")) {
			t.Errorf("%s should be user input rejection", code)
		}
	}
	if IsUserInputRejected(New(ErrCodeBackend, "x")) {
		t.Error("backend is not user input rejection")
	}
}

func TestValidationField(t *testing.T) {
	err := ValidationField("email", "email is required")
	if GetField(err) != "email" || !IsValidation(err) {
		t.Fatalf("unexpected: %+v", err)
	}
	if Message(fmt.Errorf("wrap: %w", err)) != "email is required" {
		t.Fatalf("Message should drop wrapping prefix")
	}
}

func TestMapBackendError(t *testing.T) {
	if MapBackendError(nil, "op") != nil {
		t.Fatal("nil in, nil out")
	}

	if got := GetCode(MapBackendError(context.DeadlineExceeded, "get user")); got != ErrCodeTimeout {
		t.Errorf("deadline mapped to %q", got)
	}
	if got := GetCode(MapBackendError(context.Canceled, "get user")); got != ErrCodeCanceled {
		t.Errorf("cancel mapped to %q", got)
	}

	known := NotFound("user not found")
	if got := MapBackendError(known, "get user"); !errors.Is(got, known) || !IsNotFound(got) {
		t.Errorf("AppError should pass through, got %v", got)
	}

	mapped := MapBackendError(errors.New("boom"), "get user")
	if !IsBackend(mapped) || mapped.Error() != "get user failed: boom" {
		t.Errorf("unexpected mapping: %v", mapped)
	}
}
