package httpx

import (
	"context"
	"log/slog"
	"net/http"

	domainauth "github.com/target/portal-auth/internal/domain/auth"
)

// LocalIdentityProvider stands in for the client-side identity SDK in local mode.
type LocalIdentityProvider interface {
	SignIn(ctx context.Context, email, password string) (string, domainauth.Identity, error)
	SignUp(ctx context.Context, email, password string) (string, domainauth.Identity, error)
}

// LocalIDPHandlers trade email and password for an ID token. The client then
// posts the token to /session/create as it would with the hosted provider.
type LocalIDPHandlers struct {
	IDP    LocalIdentityProvider
	Logger *slog.Logger
}

func (h *LocalIDPHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type idTokenResponse struct {
	IDToken string `json:"idToken"`
	UID     string `json:"uid"`
	Email   string `json:"email"`
}

// SignIn handles POST /local-idp/sign-in.
func (h *LocalIDPHandlers) SignIn(w http.ResponseWriter, r *http.Request) {
	h.exchange(w, r, h.IDP.SignIn)
}

// SignUp handles POST /local-idp/sign-up.
func (h *LocalIDPHandlers) SignUp(w http.ResponseWriter, r *http.Request) {
	h.exchange(w, r, h.IDP.SignUp)
}

func (h *LocalIDPHandlers) exchange(
	w http.ResponseWriter,
	r *http.Request,
	fn func(ctx context.Context, email, password string) (string, domainauth.Identity, error),
) {
	var req credentialsRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	token, id, err := fn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, h.logger(), err)
		return
	}
	WriteJSON(w, http.StatusOK, idTokenResponse{IDToken: token, UID: id.UID, Email: id.Email})
}
