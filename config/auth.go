package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode selects the identity backend.
type AuthMode string

const (
	// AuthModeFirebase verifies tokens and sessions against Firebase Authentication.
	AuthModeFirebase AuthMode = "firebase"
	// AuthModeLocal uses the self-contained local identity backend (development and tests).
	AuthModeLocal AuthMode = "local"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "firebase", "local":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: firebase, local)", v)
	}
}

// FirebaseConfig contains Firebase Admin SDK credentials.
// Inline JSON takes precedence over the file path.
type FirebaseConfig struct {
	CredentialsJSON string `env:"FIREBASE_ADMIN_SDK_CONFIG"`
	CredentialsFile string `env:"GOOGLE_APPLICATION_CREDENTIALS"`
	ProjectID       string `env:"FIREBASE_PROJECT_ID"`
}

// LocalIDPConfig controls the local identity backend.
// Used when AUTH_MODE=local.
type LocalIDPConfig struct {
	SigningKey string        `env:"SIGNING_KEY"`
	Issuer     string        `env:"ISSUER"       envDefault:"portal-auth-local"`
	IDTokenTTL time.Duration `env:"ID_TOKEN_TTL" envDefault:"1h"`

	// Optional admin created on start when missing.
	SeedAdminEmail    string `env:"SEED_ADMIN_EMAIL"`
	SeedAdminPassword string `env:"SEED_ADMIN_PASSWORD"`
}

// HasSeedAdmin reports whether both seed admin fields are set.
func (c *LocalIDPConfig) HasSeedAdmin() bool {
	return c.SeedAdminEmail != "" && c.SeedAdminPassword != ""
}

// AuthConfig groups identity backend configuration.
type AuthConfig struct {
	// Mode determines which identity backend to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"firebase"`

	// Firebase configuration (used when Mode=firebase).
	Firebase FirebaseConfig

	// LocalIDP configuration (used when Mode=local).
	LocalIDP LocalIDPConfig `envPrefix:"LOCAL_IDP_"`
}

// Sanitize trims credential inputs.
func (c *AuthConfig) Sanitize() {
	c.Firebase.CredentialsJSON = strings.TrimSpace(c.Firebase.CredentialsJSON)
	c.Firebase.CredentialsFile = strings.TrimSpace(c.Firebase.CredentialsFile)
	c.Firebase.ProjectID = strings.TrimSpace(c.Firebase.ProjectID)
	c.LocalIDP.SeedAdminEmail = strings.TrimSpace(c.LocalIDP.SeedAdminEmail)
	if c.LocalIDP.IDTokenTTL <= 0 {
		c.LocalIDP.IDTokenTTL = time.Hour
	}
}

const (
	defaultSessionTTL        = 5 * 24 * time.Hour
	defaultSessionCookieName = "session"
)

// SessionConfig controls session artifact lifetime and the cookie carrying it.
type SessionConfig struct {
	TTL          time.Duration `env:"SESSION_TTL"           envDefault:"120h"`
	CookieName   string        `env:"SESSION_COOKIE_NAME"   envDefault:"session"`
	CookieSecure bool          `env:"SESSION_COOKIE_SECURE" envDefault:"true"`

	// CookieDomain is the domain for session cookies.
	// Leave empty to use the request domain.
	CookieDomain string `env:"APP_COOKIE_DOMAIN" envDefault:""`
}

// Sanitize restores defaults for empty or non-positive values.
func (c *SessionConfig) Sanitize() {
	if c.TTL <= 0 {
		c.TTL = defaultSessionTTL
	}
	if c.CookieName = strings.TrimSpace(c.CookieName); c.CookieName == "" {
		c.CookieName = defaultSessionCookieName
	}
	c.CookieDomain = strings.TrimSpace(c.CookieDomain)
}

const maxAdminListPageSize = 1000

// RoutesConfig defines which page paths are public and which require the admin role.
type RoutesConfig struct {
	PublicPaths       []string `env:"PUBLIC_PATHS"         envDefault:"/login;/signup" envSeparator:";"`
	AdminPrefix       string   `env:"ADMIN_PREFIX"         envDefault:"/admin"`
	AdminListPageSize int      `env:"ADMIN_LIST_PAGE_SIZE" envDefault:"1000"`
}

// Sanitize drops empty public paths, normalizes the admin prefix, and clamps the page size.
func (c *RoutesConfig) Sanitize() {
	paths := make([]string, 0, len(c.PublicPaths))
	for _, p := range c.PublicPaths {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	c.PublicPaths = paths

	c.AdminPrefix = strings.TrimRight(strings.TrimSpace(c.AdminPrefix), "/")
	if c.AdminPrefix == "" {
		c.AdminPrefix = "/admin"
	}

	if c.AdminListPageSize < 1 || c.AdminListPageSize > maxAdminListPageSize {
		c.AdminListPageSize = maxAdminListPageSize
	}
}
