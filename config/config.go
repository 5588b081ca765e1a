// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog/log"

	"codeberg.org/antigravity/frontend/core/contentkeys"
	"codeberg.org/antigravity/frontend/core/idgen"
)

// Global exposes the server configuration.
var Global ServerConfig

// ServerConfig holds the application configuration.
type ServerConfig struct {
	Build buildInfo `yaml:"-"`

	Basic struct {
		Host                     string      `env:"ANTIGRAVITY_HOST,overwrite" yaml:"host"`
		Port                     string      `env:"ANTIGRAVITY_PORT,overwrite" yaml:"port"`
		UnixSocket               string      `env:"ANTIGRAVITY_UNIXSOCKET" yaml:"unixSocket"`
		RawUnixSocketPermissions string      `env:"ANTIGRAVITY_UNIXSOCKET_PERMISSIONS" yaml:"unixSocketPermissions"`
		UnixSocketPermissions    os.FileMode `yaml:"-"`
		UnixSocketUser           string      `env:"ANTIGRAVITY_UNIXSOCKET_USER" yaml:"unixSocketUser"`
		UnixSocketGroup          string      `env:"ANTIGRAVITY_UNIXSOCKET_GROUP" yaml:"unixSocketGroup"`
	} `yaml:"basic"`

	Site struct {
		RawURL string  `env:"ANTIGRAVITY_SITE_URL,overwrite" yaml:"siteUrl"`
		URL    url.URL `yaml:"-"`
		Name   string  `env:"ANTIGRAVITY_SITE_NAME,overwrite" yaml:"siteName"`

		// DefaultLocale is served for "/" when nothing better is negotiated and
		// is the authored language of content that has no translation.
		DefaultLocale string   `env:"ANTIGRAVITY_DEFAULT_LOCALE,overwrite" yaml:"defaultLocale"`
		Locales       []string `env:"ANTIGRAVITY_LOCALES,overwrite" yaml:"locales"`
	} `yaml:"site"`

	WordPress struct {
		RawGraphQLURL string        `env:"ANTIGRAVITY_WORDPRESS_GRAPHQL_URL,overwrite" yaml:"graphqlUrl"`
		GraphQLURL    url.URL       `yaml:"-"`
		RawRESTURL    string        `env:"ANTIGRAVITY_WORDPRESS_REST_URL,overwrite" yaml:"restUrl"`
		RESTURL       url.URL       `yaml:"-"`
		Timeout       time.Duration `env:"ANTIGRAVITY_WORDPRESS_TIMEOUT,overwrite" yaml:"timeout"`

		// MockFallback serves placeholder posts when WordPress is unreachable
		// and no stored snapshot exists.
		MockFallback bool `env:"ANTIGRAVITY_WORDPRESS_MOCK_FALLBACK,overwrite" yaml:"mockFallback"`
	} `yaml:"wordpress"`

	Revalidation struct {
		Secret string `env:"ANTIGRAVITY_REVALIDATION_SECRET" yaml:"secret"`

		// FrontendURL is where the contentkeys CLI sends revalidation requests.
		FrontendURL string `env:"ANTIGRAVITY_REVALIDATION_FRONTEND_URL,overwrite" yaml:"frontendUrl"`
	} `yaml:"revalidation"`

	Content struct {
		RawCollisionPolicy string                      `env:"ANTIGRAVITY_COLLISION_POLICY,overwrite" yaml:"collisionPolicy"`
		CollisionPolicy    contentkeys.CollisionPolicy `yaml:"-"`

		// ExtractFallback derives key maps from the delivered HTML when
		// WordPress sent none for the rendered language.
		ExtractFallback bool `env:"ANTIGRAVITY_EXTRACT_FALLBACK,overwrite" yaml:"extractFallback"`

		Localize bool `env:"ANTIGRAVITY_LOCALIZE,overwrite" yaml:"localize"`
	} `yaml:"content"`

	Cache struct {
		Enabled  bool          `env:"ANTIGRAVITY_CACHE,overwrite" yaml:"enabled"`
		Size     int           `env:"ANTIGRAVITY_CACHE_SIZE,overwrite" yaml:"cacheSize"`
		TTL      time.Duration `env:"ANTIGRAVITY_CACHE_TTL,overwrite" yaml:"cacheTTL"`
		Compress bool          `env:"ANTIGRAVITY_CACHE_COMPRESS,overwrite" yaml:"compress"`
	} `yaml:"cache"`

	PageCache struct {
		Enabled bool          `env:"ANTIGRAVITY_PAGE_CACHE,overwrite" yaml:"enabled"`
		Size    int           `env:"ANTIGRAVITY_PAGE_CACHE_SIZE,overwrite" yaml:"cacheSize"`
		TTL     time.Duration `env:"ANTIGRAVITY_PAGE_CACHE_TTL,overwrite" yaml:"cacheTTL"`
	} `yaml:"pageCache"`

	Store struct {
		Enabled bool   `env:"ANTIGRAVITY_STORE,overwrite" yaml:"enabled"`
		Path    string `env:"ANTIGRAVITY_STORE_PATH,overwrite" yaml:"path"`
	} `yaml:"store"`

	HTTPCache struct {
		MaxAge               time.Duration `env:"ANTIGRAVITY_CACHE_CONTROL_MAX_AGE,overwrite" yaml:"cacheControlMaxAge"`
		StaleWhileRevalidate time.Duration `env:"ANTIGRAVITY_CACHE_CONTROL_STALE_WHILE_REVALIDATE,overwrite" yaml:"cacheControlStaleWhileRevalidate"`
	} `yaml:"httpCache"`

	Instance struct {
		StartingTime      string `yaml:"-"`
		FileServerCacheID string `yaml:"-"`
	} `yaml:"-"`

	Development struct {
		InDevelopment        bool   `env:"ANTIGRAVITY_DEV" yaml:"inDevelopment"`
		SaveResponses        bool   `env:"ANTIGRAVITY_SAVE_RESPONSES,overwrite" yaml:"saveResponses"`
		ResponseSaveLocation string `env:"ANTIGRAVITY_RESPONSE_SAVE_LOCATION,overwrite" yaml:"responseSaveLocation"`
	} `yaml:"development"`

	Log struct {
		Level   string   `env:"ANTIGRAVITY_LOG_LEVEL,overwrite" yaml:"logLevel"`
		Outputs []string `env:"ANTIGRAVITY_LOG_OUTPUTS,overwrite" yaml:"logOutputs"`
		Format  string   `env:"ANTIGRAVITY_LOG_FORMAT,overwrite" yaml:"logFormat"`
	} `yaml:"log"`

	Limiter struct {
		Enabled    bool     `env:"ANTIGRAVITY_LIMITER,overwrite" yaml:"enabled"`
		PassIPs    []string `env:"ANTIGRAVITY_LIMITER_PASS_IPS,overwrite" yaml:"passList"`
		IPv4Prefix int      `env:"ANTIGRAVITY_LIMITER_IPV4_PREFIX,overwrite" yaml:"ipv4Prefix"`
		IPv6Prefix int      `env:"ANTIGRAVITY_LIMITER_IPV6_PREFIX,overwrite" yaml:"ipv6Prefix"`

		// Rate is the sustained number of API requests per second per network.
		Rate  float64 `env:"ANTIGRAVITY_LIMITER_RATE,overwrite" yaml:"rate"`
		Burst int     `env:"ANTIGRAVITY_LIMITER_BURST,overwrite" yaml:"burst"`
	} `yaml:"limiter"`

	Internationalization struct {
		// Strict mode for missing keys.
		//
		// When enabled, missing interface strings are logged (deduplicated per
		// locale+key) and visibly wrapped using markers. Content keys are
		// never wrapped.
		StrictMissingKeys bool `env:"ANTIGRAVITY_STRICT_MISSING_KEYS" yaml:"strictMissingKeys"`
	} `yaml:"internationalization"`
}

// LoadConfig loads the configuration of the server: the file named by
// -config, ANTIGRAVITY_CONFIGFILE or ./config.yaml, then the environment.
// It also sets up the global logger and prints the result.
func (cfg *ServerConfig) LoadConfig() error {
	configFilePath := resolveConfigPath()

	if err := cfg.Load(configFilePath); err != nil {
		return err
	}

	cfg.setupAudit()
	cfg.print()

	if isContainerized() && cfg.Basic.UnixSocket == "" && cfg.Basic.Host != "0.0.0.0" && cfg.Basic.Host != "::" {
		log.Warn().
			Str("host", cfg.Basic.Host).
			Msg("Running in a containerized environment but host is not a wildcard address (e.g., '0.0.0.0' or '::'). This may prevent the service from being accessible outside the container.")
	}

	return nil
}

// Load populates cfg from defaults, the YAML file at configFilePath (if any),
// a .env file and the environment, then validates the result.
//
// Unlike LoadConfig it does not touch the global logger.
func (cfg *ServerConfig) Load(configFilePath string) error {
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

	return nil
}

var skippedPathPrefixes = []string{"/assets/", "/favicon.ico", "/healthz"}

// ShouldSkipServerLogging determines if a request should bypass the logging middleware.
func (cfg *ServerConfig) ShouldSkipServerLogging(path string) bool {
	for _, prefix := range skippedPathPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}

	return false
}

// isContainerized checks for common indicators of a containerized environment.
//
// This is a heuristic and may not be 100% accurate.
func isContainerized() bool {
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true
	}

	for _, marker := range []string{"/.dockerenv", "/.containerenv"} {
		if _, err := os.Stat(marker); err == nil {
			return true
		}
	}

	// #nosec G304 -- well-known system file, read for heuristics only.
	cgroup, err := os.ReadFile("/proc/self/cgroup")
	if err != nil {
		return false
	}

	content := string(cgroup)

	for _, keyword := range []string{"docker", "kubepods", "containerd", "lxc", "crio", ".machine"} {
		if strings.Contains(content, keyword) {
			return true
		}
	}

	return false
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
