// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"regexp"
	"slices"
	"strconv"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"

	"codeberg.org/antigravity/frontend/core/contentkeys"
	"codeberg.org/antigravity/frontend/server/utils"
)

// validation errors.
var (
	errUnixSocketWithHostPort       = errors.New("unix socket configured - cannot specify Host and Port simultaneously")
	errUnixSocketInvalidPermissions = errors.New("invalid Basic.UnixSocketPermissions value")
	errUnixSocketUserDoesNotExist   = errors.New("user does not exist")
	errUnixSocketGroupDoesNotExist  = errors.New("group does not exist")
	errNoLocales                    = errors.New("site.locales must list at least one locale")
	errInvalidLocale                = errors.New("invalid locale")
	errDefaultLocaleNotListed       = errors.New("site.defaultLocale must be one of site.locales")
	errInvalidCollisionPolicy       = errors.New("invalid content.collisionPolicy")
	errInvalidCacheSize             = errors.New("cache size must be positive when the cache is enabled")
	errEmptyStorePath               = errors.New("store.path cannot be empty when the store is enabled")
	errInvalidIPv4Prefix            = errors.New("IPv4 prefix must be between 0 and 32")
	errInvalidIPv6Prefix            = errors.New("IPv6 prefix must be between 0 and 128")
	errInvalidLimiterRate           = errors.New("limiter rate and burst must be positive")
)

var (
	fileModeOctalRegexp  = regexp.MustCompile(`^0?[0-7]{3}$`)
	fileModeStringRegexp = regexp.MustCompile(`^(?:[r-][w-][x-]){3}$`)
	digitsRegexp         = regexp.MustCompile(`^[0-9]+$`)
)

// validateAndSet validates the server configuration and populates some fields.
func (cfg *ServerConfig) validateAndSet() error {
	if err := cfg.validateListener(); err != nil {
		return err
	}

	if err := cfg.validateSite(); err != nil {
		return err
	}

	graphqlURL, err := utils.ParseURL(cfg.WordPress.RawGraphQLURL, "WordPress GraphQL")
	if err != nil {
		return fmt.Errorf("invalid wordpress.graphqlUrl: %w", err)
	}

	cfg.WordPress.GraphQLURL = *graphqlURL

	restURL, err := utils.ParseURL(cfg.WordPress.RawRESTURL, "WordPress REST")
	if err != nil {
		return fmt.Errorf("invalid wordpress.restUrl: %w", err)
	}

	cfg.WordPress.RESTURL = *restURL

	if cfg.Revalidation.FrontendURL == "" {
		cfg.Revalidation.FrontendURL = cfg.Site.URL.String()
	} else {
		frontendURL, err := utils.ParseURL(cfg.Revalidation.FrontendURL, "revalidation frontend")
		if err != nil {
			return fmt.Errorf("invalid revalidation.frontendUrl: %w", err)
		}

		cfg.Revalidation.FrontendURL = frontendURL.String()
	}

	if cfg.Revalidation.Secret == "" {
		log.Warn().Msg("revalidation.secret is not set; /api/revalidate will refuse every request")
	}

	policy, err := contentkeys.ParseCollisionPolicy(cfg.Content.RawCollisionPolicy)
	if err != nil {
		return fmt.Errorf("%w: %w", errInvalidCollisionPolicy, err)
	}

	cfg.Content.CollisionPolicy = policy

	if cfg.Cache.Enabled && cfg.Cache.Size <= 0 {
		return fmt.Errorf("%w: cache.cacheSize=%d", errInvalidCacheSize, cfg.Cache.Size)
	}

	if cfg.PageCache.Enabled && cfg.PageCache.Size <= 0 {
		return fmt.Errorf("%w: pageCache.cacheSize=%d", errInvalidCacheSize, cfg.PageCache.Size)
	}

	if cfg.Store.Enabled && cfg.Store.Path == "" {
		return errEmptyStorePath
	}

	// Skip validating Limiter configuration if it's not enabled
	if !cfg.Limiter.Enabled {
		return nil
	}

	if cfg.Limiter.IPv4Prefix < 0 || cfg.Limiter.IPv4Prefix > 32 {
		return errInvalidIPv4Prefix
	}

	if cfg.Limiter.IPv6Prefix < 0 || cfg.Limiter.IPv6Prefix > 128 {
		return errInvalidIPv6Prefix
	}

	if cfg.Limiter.Rate <= 0 || cfg.Limiter.Burst <= 0 {
		return errInvalidLimiterRate
	}

	return nil
}

func (cfg *ServerConfig) validateListener() error {
	if cfg.Basic.UnixSocket == "" {
		if cfg.Basic.Host == "" {
			cfg.Basic.Host = "localhost"
			log.Info().
				Str("host", cfg.Basic.Host).
				Msg("Binding to default host")
		}

		if cfg.Basic.Port == "" {
			cfg.Basic.Port = "8282"
			log.Info().
				Str("port", cfg.Basic.Port).
				Msg("Using default port")
		}

		return nil
	}

	if cfg.Basic.Host != "" || cfg.Basic.Port != "" {
		return errUnixSocketWithHostPort
	}

	mode, err := parseFileMode(cfg.Basic.RawUnixSocketPermissions)
	if err != nil {
		return err
	}

	cfg.Basic.UnixSocketPermissions = mode

	if name := cfg.Basic.UnixSocketUser; name != "" {
		lookup := user.Lookup
		if digitsRegexp.MatchString(name) {
			lookup = user.LookupId
		}

		if _, err := lookup(name); err != nil {
			return errUnixSocketUserDoesNotExist
		}
	}

	if name := cfg.Basic.UnixSocketGroup; name != "" {
		lookup := user.LookupGroup
		if digitsRegexp.MatchString(name) {
			lookup = user.LookupGroupId
		}

		if _, err := lookup(name); err != nil {
			return errUnixSocketGroupDoesNotExist
		}
	}

	return nil
}

// parseFileMode accepts an octal mode ("660", "0660") or a symbolic one
// ("rw-rw----"). The empty string means 0666.
func parseFileMode(raw string) (os.FileMode, error) {
	switch {
	case raw == "":
		return 0o666, nil
	case fileModeOctalRegexp.MatchString(raw):
		mode, _ := strconv.ParseUint(raw, 8, 32)

		return os.FileMode(mode), nil
	case fileModeStringRegexp.MatchString(raw):
		const highestBit = 8

		mode := os.FileMode(0)

		for i, c := range raw {
			if c != '-' {
				mode |= 1 << (highestBit - i)
			}
		}

		return mode, nil
	default:
		return 0, errUnixSocketInvalidPermissions
	}
}

func (cfg *ServerConfig) validateSite() error {
	siteURL, err := utils.ParseURL(cfg.Site.RawURL, "site")
	if err != nil {
		return fmt.Errorf("invalid site.siteUrl: %w", err)
	}

	cfg.Site.URL = *siteURL

	if len(cfg.Site.Locales) == 0 {
		return errNoLocales
	}

	for i, raw := range cfg.Site.Locales {
		tag, err := language.Parse(raw)
		if err != nil {
			return fmt.Errorf("%w %q: %w", errInvalidLocale, raw, err)
		}

		// Locales are used as URL path segments, so keep only the base language.
		base, _ := tag.Base()
		cfg.Site.Locales[i] = base.String()
	}

	cfg.Site.Locales = slices.Compact(cfg.Site.Locales)

	if !slices.Contains(cfg.Site.Locales, cfg.Site.DefaultLocale) {
		return fmt.Errorf("%w: %q not in %v", errDefaultLocaleNotListed, cfg.Site.DefaultLocale, cfg.Site.Locales)
	}

	return nil
}
