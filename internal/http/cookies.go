package httpx

import (
	"net/http"
	"time"

	domainauth "github.com/target/portal-auth/internal/domain/auth"
)

// DefaultSessionCookieName is the cookie that carries the session artifact.
const DefaultSessionCookieName = "session"

// CookieConfig controls how the session cookie is written.
type CookieConfig struct {
	Name   string
	Domain string
	// Secure should only be disabled for plain-HTTP local development.
	Secure bool
}

func (c CookieConfig) name() string {
	if c.Name == "" {
		return DefaultSessionCookieName
	}
	return c.Name
}

// read returns the session cookie value, or "" when absent.
func (c CookieConfig) read(r *http.Request) string {
	ck, err := r.Cookie(c.name())
	if err != nil {
		return ""
	}
	return ck.Value
}

// set writes the session artifact with Max-Age equal to its TTL.
func (c CookieConfig) set(w http.ResponseWriter, a domainauth.SessionArtifact) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name(),
		Value:    a.Value,
		Path:     "/",
		Domain:   c.Domain,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   a.MaxAgeSeconds(),
	})
}

// clear expires the session cookie. It mirrors the attributes used by set so
// browsers match and delete the same cookie.
func (c CookieConfig) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name(),
		Value:    "",
		Path:     "/",
		Domain:   c.Domain,
		HttpOnly: true,
		Secure:   c.Secure,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}
