package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/target/portal-auth/internal/errors"
)

var errInternal = errors.New("internal error")

// statusForError maps an error code to its HTTP status.
func statusForError(err error) int {
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeValidation,
		apperrors.ErrCodeEmailExists,
		apperrors.ErrCodeInvalidEmail,
		apperrors.ErrCodeWeakPassword:
		return http.StatusBadRequest
	case apperrors.ErrCodeInvalidToken,
		apperrors.ErrCodeMalformedArtifact,
		apperrors.ErrCodeExpired,
		apperrors.ErrCodeRevoked,
		apperrors.ErrCodeUnauthenticated:
		return http.StatusUnauthorized
	case apperrors.ErrCodeForbidden:
		return http.StatusForbidden
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError renders err as a JSON error. Server-side failures are
// logged and their details withheld from the client.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status := statusForError(err)
	code := string(apperrors.GetCode(err))
	if code == "" {
		code = string(apperrors.ErrCodeBackend)
	}

	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed",
			"path", r.URL.Path,
			"code", code,
			"error", err,
		)
		WriteError(w, ErrorParams{Code: status, ErrCode: code, Err: errInternal})
		return
	}

	WriteError(w, ErrorParams{Code: status, ErrCode: code, Err: errors.New(apperrors.Message(err))})
}
