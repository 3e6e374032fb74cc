package firebase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/target/portal-auth/internal/errors"
)

const sampleServiceAccount = `{"type":"service_account","project_id":"demo-project"}`

func TestCredentialOption(t *testing.T) {
	tests := []struct {
		name       string
		cfg        Config
		wantSource CredentialSource
		wantConfig bool
	}{
		{name: "inline", cfg: Config{CredentialsJSON: sampleServiceAccount}, wantSource: SourceInline},
		{name: "file", cfg: Config{CredentialsFile: "/etc/creds.json"}, wantSource: SourceFile},
		{
			name:       "inline preferred over file",
			cfg:        Config{CredentialsJSON: sampleServiceAccount, CredentialsFile: "/etc/creds.json"},
			wantSource: SourceInline,
		},
		{name: "neither", cfg: Config{}, wantConfig: true},
		{name: "whitespace only", cfg: Config{CredentialsJSON: "  ", CredentialsFile: "\t"}, wantConfig: true},
		{name: "broken inline json", cfg: Config{CredentialsJSON: `{"type":`}, wantConfig: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opt, source, err := credentialOption(tt.cfg)
			if tt.wantConfig {
				require.Error(t, err)
				assert.True(t, apperrors.IsConfiguration(err))
				assert.Nil(t, opt)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, opt)
			assert.Equal(t, tt.wantSource, source)
		})
	}
}

func TestNewBackend_NoCredentials(t *testing.T) {
	b, err := NewBackend(context.Background(), Config{})
	assert.Nil(t, b)
	assert.True(t, apperrors.IsConfiguration(err))
}
