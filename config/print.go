// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog/log"
)

const redactedValue = "[redacted]"

// print announces the instance and dumps the effective configuration to
// stderr, secrets excluded.
func (cfg *ServerConfig) print() {
	log.Info().
		Str("version", BuildVersion).
		Str("revision", cfg.Build.Revision()).
		Str("cacheid", cfg.Instance.FileServerCacheID).
		Str("site", cfg.Site.URL.String()).
		Str("wordpress", cfg.WordPress.GraphQLURL.String()).
		Strs("locales", cfg.Site.Locales).
		Msg("Starting antigravity frontend")

	dump, err := cfg.redactedYAML()
	if err != nil {
		log.Error().Err(err).Msg("Failed to print configuration")

		return
	}

	fmt.Fprintf(os.Stderr, "Effective configuration:\n%s\n", dump)
}

// redactedYAML encodes a copy of cfg with the revalidation secret masked.
func (cfg *ServerConfig) redactedYAML() ([]byte, error) {
	masked := *cfg

	if masked.Revalidation.Secret != "" {
		masked.Revalidation.Secret = redactedValue
	}

	return yaml.MarshalWithOptions(masked, GetDurationEncoderOption())
}
