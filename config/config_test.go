// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadConfig covers the main precedence and validation paths of LoadConfig.
//
// t.Setenv forbids t.Parallel, so these cases run sequentially.
func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
		check   func(t *testing.T, cfg *ServerConfig)
	}{
		{
			name: "Defaults with overrides from environment",
			env: map[string]string{
				"PINMARK_HOST":            "0.0.0.0",
				"PINMARK_PORT":            "9000",
				"PINMARK_IMAGES_PER_PAGE": "12",
				"PINMARK_SESSION_MAX_AGE": "2h",
				"PINMARK_LOG_OUTPUTS":     "/dev/stderr, /dev/stdout",
			},
			check: func(t *testing.T, cfg *ServerConfig) {
				t.Helper()

				assert.Equal(t, "0.0.0.0", cfg.Basic.Host)
				assert.Equal(t, "9000", cfg.Basic.Port)
				assert.Equal(t, 12, cfg.Images.PerPage)
				assert.Equal(t, 2*time.Hour, cfg.Session.MaxAge)
				assert.Equal(t, []string{"/dev/stderr", "/dev/stdout"}, cfg.Log.Outputs)
				assert.Equal(t, "/media/", cfg.Media.URLPrefix)
				assert.Empty(t, cfg.Basic.Secret, "secret is cleared once loaded")
			},
		},
		{
			name:    "Invalid secret",
			env:     map[string]string{"PINMARK_SECRET": "not-hex"},
			wantErr: true,
		},
		{
			name:    "Zero page size",
			env:     map[string]string{"PINMARK_IMAGES_PER_PAGE": "0"},
			wantErr: true,
		},
		{
			name:    "Repo URL without scheme",
			env:     map[string]string{"PINMARK_REPO_URL": "codeberg.org/pinmark/pinmark"},
			wantErr: true,
		},
		{
			name: "Repo URL trailing slash is trimmed",
			env:  map[string]string{"PINMARK_REPO_URL": "https://codeberg.org/pinmark/pinmark/"},
			check: func(t *testing.T, cfg *ServerConfig) {
				t.Helper()

				assert.Equal(t, "https://codeberg.org/pinmark/pinmark", cfg.Instance.RepoURL)
			},
		},
		{
			name:    "Negative feed size",
			env:     map[string]string{"PINMARK_FEED_SIZE": "-1"},
			wantErr: true,
		},
		{
			name:    "Malformed duration",
			env:     map[string]string{"PINMARK_LIMITER_WINDOW": "soon"},
			wantErr: true,
		},
		{
			name:    "Media prefix without trailing slash",
			env:     map[string]string{"PINMARK_MEDIA_URL_PREFIX": "/media"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg := &ServerConfig{}

			err := cfg.LoadConfig()
			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			require.NoError(t, err)

			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestLoadConfigFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	err := os.WriteFile(path, []byte(`
basic:
  port: "8123"
database:
  path: /tmp/pinmark-test.db
images:
  perPage: 4
  rankingSize: 5
cache:
  cacheTTL: 90s
`), 0o600)
	require.NoError(t, err)

	t.Setenv("PINMARK_CONFIGFILE", path)
	// environment wins over the file
	t.Setenv("PINMARK_RANKING_SIZE", "3")

	cfg := &ServerConfig{}
	require.NoError(t, cfg.LoadConfig())

	assert.Equal(t, "8123", cfg.Basic.Port)
	assert.Equal(t, "/tmp/pinmark-test.db", cfg.Database.Path)
	assert.Equal(t, 4, cfg.Images.PerPage)
	assert.Equal(t, 3, cfg.Images.RankingSize)
	assert.Equal(t, 90*time.Second, cfg.Cache.TTL)
}

func TestReadEnvWithoutOverwrite(t *testing.T) {
	t.Setenv("PINMARK_SECRET", "from-env")

	cfg := &ServerConfig{}
	cfg.Basic.Secret = "from-file"

	require.NoError(t, readEnv(cfg))
	assert.Equal(t, "from-file", cfg.Basic.Secret, "fields without overwrite keep earlier values")

	cfg.Basic.Secret = ""

	require.NoError(t, readEnv(cfg))
	assert.Equal(t, "from-env", cfg.Basic.Secret)
}

func TestMediaURL(t *testing.T) {
	t.Parallel()

	cfg := &ServerConfig{}
	cfg.Media.URLPrefix = "/media/"

	assert.Equal(t, "/media/images/2025/01/02/cat.png", cfg.MediaURL("images/2025/01/02/cat.png"))
	assert.Empty(t, cfg.MediaURL(""))
}
