// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"codeberg.org/pinmark/pinmark/core/authenticated"
	"codeberg.org/pinmark/pinmark/core/idgen"
)

// Global exposes the server configuration.
var Global ServerConfig

// SessionSigner holds the key used to sign session and flash tokens.
//
// It is populated by validateAndSet from Basic.Secret.
var SessionSigner authenticated.Validator

// ServerConfig holds the application configuration.
type ServerConfig struct {
	Build buildInfo `yaml:"-"`

	Basic struct {
		Host string `env:"PINMARK_HOST,overwrite" yaml:"host"`
		Port string `env:"PINMARK_PORT,overwrite" yaml:"port"`
		// hex encoded v4.public secret key
		Secret string `env:"PINMARK_SECRET" yaml:"secret"`
	} `yaml:"basic"`

	Database struct {
		Path string `env:"PINMARK_DATABASE_PATH,overwrite" yaml:"path"`
	} `yaml:"database"`

	Redis struct {
		Addr     string `env:"PINMARK_REDIS_ADDR,overwrite" yaml:"addr"`
		Password string `env:"PINMARK_REDIS_PASSWORD" yaml:"password"`
		DB       int    `env:"PINMARK_REDIS_DB,overwrite" yaml:"db"`
	} `yaml:"redis"`

	Media struct {
		Root         string `env:"PINMARK_MEDIA_ROOT,overwrite" yaml:"root"`
		URLPrefix    string `env:"PINMARK_MEDIA_URL_PREFIX,overwrite" yaml:"urlPrefix"`
		MaxImageSize int    `env:"PINMARK_MEDIA_MAX_IMAGE_SIZE,overwrite" yaml:"maxImageSize"`
	} `yaml:"media"`

	Images struct {
		PerPage     int `env:"PINMARK_IMAGES_PER_PAGE,overwrite" yaml:"perPage"`
		RankingSize int `env:"PINMARK_RANKING_SIZE,overwrite" yaml:"rankingSize"`
		FeedSize    int `env:"PINMARK_FEED_SIZE,overwrite" yaml:"feedSize"`
	} `yaml:"images"`

	Fetch struct {
		Timeout   time.Duration `env:"PINMARK_FETCH_TIMEOUT,overwrite" yaml:"timeout"`
		UserAgent string        `env:"PINMARK_FETCH_USER_AGENT,overwrite" yaml:"userAgent"`
		// permits fetching from loopback and private addresses
		AllowPrivateNetworks bool `env:"PINMARK_FETCH_ALLOW_PRIVATE" yaml:"allowPrivateNetworks"`
	} `yaml:"fetch"`

	Cache struct {
		Enabled bool          `env:"PINMARK_CACHE,overwrite" yaml:"enabled"`
		Size    int           `env:"PINMARK_CACHE_SIZE,overwrite" yaml:"cacheSize"`
		TTL     time.Duration `env:"PINMARK_CACHE_TTL,overwrite" yaml:"cacheTTL"`
	} `yaml:"cache"`

	Session struct {
		MaxAge time.Duration `env:"PINMARK_SESSION_MAX_AGE,overwrite" yaml:"maxAge"`
	} `yaml:"session"`

	Instance struct {
		StartingTime      string `yaml:"-"`
		FileServerCacheID string `yaml:"-"`
		RepoURL           string `env:"PINMARK_REPO_URL,overwrite" yaml:"repoUrl"`
	} `yaml:"instance"`

	Development struct {
		InDevelopment bool `env:"PINMARK_DEV" yaml:"inDevelopment"`
	} `yaml:"development"`

	Internationalization struct {
		StrictMissingKeys bool `env:"PINMARK_I18N_STRICT" yaml:"strictMissingKeys"`
	} `yaml:"internationalization"`

	Log struct {
		Level   string   `env:"PINMARK_LOG_LEVEL,overwrite" yaml:"logLevel"`
		Outputs []string `env:"PINMARK_LOG_OUTPUTS,overwrite" yaml:"logOutputs"`
		Format  string   `env:"PINMARK_LOG_FORMAT,overwrite" yaml:"logFormat"`
	} `yaml:"log"`

	Limiter struct {
		Enabled  bool          `env:"PINMARK_LIMITER,overwrite" yaml:"enabled"`
		Attempts int           `env:"PINMARK_LIMITER_ATTEMPTS,overwrite" yaml:"attempts"`
		Window   time.Duration `env:"PINMARK_LIMITER_WINDOW,overwrite" yaml:"window"`
	} `yaml:"limiter"`
}

// LoadConfig loads the configuration from various sources.
func (cfg *ServerConfig) LoadConfig() error {
	parsedConfigFlagValue := parseCommandLineArgs()

	// Check if the -config flag was explicitly set by the user.
	configFlagUserSet := false

	flag.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			configFlagUserSet = true
		}
	})

	var configFilePath string

	// Determine the config file path with the correct precedence:
	// 1. Command-line flag (-config)
	// 2. Environment variable (PINMARK_CONFIGFILE)
	// 3. Default path with fallback check
	if configFlagUserSet {
		configFilePath = parsedConfigFlagValue
	} else if envVar := os.Getenv("PINMARK_CONFIGFILE"); envVar != "" {
		configFilePath = envVar
	} else {
		configFilePath = parsedConfigFlagValue
		if _, err := os.Stat(configFilePath); os.IsNotExist(err) {
			ymlPath := "./config.yml"
			if _, statErr := os.Stat(ymlPath); statErr == nil {
				configFilePath = ymlPath
			}
		}
	}

	cfg.SetDefaults()

	cfg.Build.load()

	cfg.Instance.FileServerCacheID = idgen.Make()
	cfg.Instance.StartingTime = time.Now().UTC().Format("2006-01-02 15:04")

	if err := cfg.readYAML(configFilePath); err != nil {
		return fmt.Errorf("error loading YAML config: %w", err)
	}

	if err := useDotEnv(); err != nil {
		return fmt.Errorf("error using .env file: %w", err)
	}

	if err := readEnv(cfg); err != nil {
		return fmt.Errorf("error loading environment variables: %w", err)
	}

	if err := cfg.validateAndSet(); err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	cfg.setupAudit()

	cfg.print()

	return nil
}

var staticSkippedPathPrefixes = []string{"/css/", "/js/", "/media/"}

// ShouldSkipServerLogging determines if a request should bypass the logging middleware.
func (cfg *ServerConfig) ShouldSkipServerLogging(path string) bool {
	for _, prefix := range staticSkippedPathPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}

	return false
}

// MediaURL returns the public URL of a file stored under Media.Root.
func (cfg *ServerConfig) MediaURL(file string) string {
	if file == "" {
		return ""
	}

	return strings.TrimSuffix(cfg.Media.URLPrefix, "/") + "/" + strings.TrimPrefix(file, "/")
}

// GetDurationEncoderOption returns a YAML encoder option that marshals
// time.Duration into a human-readable string format (e.g., "30m", "1h").
func GetDurationEncoderOption() yaml.EncodeOption {
	return yaml.CustomMarshaler[time.Duration](
		func(d time.Duration) ([]byte, error) {
			return yaml.Marshal(d.String())
		},
	)
}
