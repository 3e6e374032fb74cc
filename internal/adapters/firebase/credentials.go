package firebase

import (
	"encoding/json"
	"log/slog"
	"strings"

	"google.golang.org/api/option"

	apperrors "github.com/target/portal-auth/internal/errors"
)

// CredentialSource names where service-account credentials came from.
type CredentialSource string

const (
	SourceInline CredentialSource = "inline"
	SourceFile   CredentialSource = "file"
)

// Config holds the service-account credential inputs. They are read once at backend init.
type Config struct {
	// CredentialsJSON is the inline service-account document.
	CredentialsJSON string
	// CredentialsFile is a filesystem path to the service-account document.
	CredentialsFile string
	// ProjectID overrides the project inferred from the credentials.
	ProjectID string
	Logger    *slog.Logger
}

// credentialOption selects the client option for the configured credentials.
// Inline JSON wins over a file path; neither is a configuration error.
//
//nolint:ireturn // option.ClientOption is the SDK's own interface.
func credentialOption(cfg Config) (option.ClientOption, CredentialSource, error) {
	inline := strings.TrimSpace(cfg.CredentialsJSON)
	path := strings.TrimSpace(cfg.CredentialsFile)

	switch {
	case inline != "":
		if path != "" && cfg.Logger != nil {
			cfg.Logger.Warn("both inline and file credentials configured, using inline")
		}
		if !json.Valid([]byte(inline)) {
			return nil, "", apperrors.Configuration("inline service-account credentials are not valid JSON")
		}
		return option.WithCredentialsJSON([]byte(inline)), SourceInline, nil
	case path != "":
		return option.WithCredentialsFile(path), SourceFile, nil
	default:
		return nil, "", apperrors.Configuration(
			"no identity backend credentials: set FIREBASE_ADMIN_SDK_CONFIG or GOOGLE_APPLICATION_CREDENTIALS")
	}
}
