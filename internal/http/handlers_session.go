package httpx

import (
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	domainauth "github.com/target/portal-auth/internal/domain/auth"
	apperrors "github.com/target/portal-auth/internal/errors"
)

// SessionHandlers provides HTTP handlers for the session lifecycle.
type SessionHandlers struct {
	Svc     AuthServiceInterface
	Cookies CookieConfig
	// LoginPath receives browsers after a form-posted logout. Defaults to /login.
	LoginPath string
	Logger    *slog.Logger
}

func (h *SessionHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

type createSessionRequest struct {
	IDToken string `json:"idToken"`
}

// Create exchanges an ID token for a session cookie.
// POST /session/create.
func (h *SessionHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.IDToken) == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: string(apperrors.ErrCodeValidation),
			Err:     errors.New("idToken is required"),
		})
		return
	}

	res, err := h.Svc.CreateSession(r.Context(), req.IDToken)
	if err != nil {
		writeServiceError(w, r, h.logger(), err)
		return
	}

	h.Cookies.set(w, res.Artifact)
	WriteJSON(w, http.StatusOK, map[string]string{
		"status": "success",
		"uid":    res.Claims.UID,
	})
}

// Destroy logs out. It always succeeds and always clears the cookie;
// revocation is attempted when the cookie still decodes. HTML form posts are
// answered with 303 to the login page, everything else with JSON.
// POST /session/destroy.
func (h *SessionHandlers) Destroy(w http.ResponseWriter, r *http.Request) {
	res := h.Svc.DestroySession(r.Context(), h.Cookies.read(r))
	if res.UID != "" && !res.Revoked {
		h.logger().WarnContext(r.Context(), "logout completed without revocation", "uid", res.UID)
	}

	h.Cookies.clear(w)
	if isFormPost(r) {
		loginPath := h.LoginPath
		if loginPath == "" {
			loginPath = "/login"
		}
		http.Redirect(w, r, loginPath, http.StatusSeeOther)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func isFormPost(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mediaType == "application/x-www-form-urlencoded" || mediaType == "multipart/form-data"
}

// Status reports the identity behind the current cookie.
// GET /session.
func (h *SessionHandlers) Status(w http.ResponseWriter, r *http.Request) {
	outcome := h.Svc.ResolveSession(r.Context(), h.Cookies.read(r))
	identity := identityFromOutcome(outcome)
	if identity == nil {
		if outcome.State == domainauth.SessionInvalid {
			h.Cookies.clear(w)
		}
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user": map[string]any{
			"uid":           identity.UID,
			"email":         identity.Email,
			"emailVerified": identity.EmailVerified,
			"role":          identity.Role,
		},
	})
}
