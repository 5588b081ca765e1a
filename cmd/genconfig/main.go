// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Command genconfig writes the example .env and config.yaml shipped in
// deploy/, generated from the configuration defaults.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"codeberg.org/antigravity/frontend/config"
	"codeberg.org/antigravity/frontend/core/audit"
)

const (
	envExample  = ".env.example"
	yamlExample = "config.yaml.example"

	placeholderSecret = "change-me-to-a-long-random-string"

	generatedNote = "# This file was generated by go run ./cmd/genconfig.\n"
)

// requiredEnv are written uncommented, with their defaults as values.
var requiredEnv = map[string]bool{
	"ANTIGRAVITY_HOST":                  true,
	"ANTIGRAVITY_PORT":                  true,
	"ANTIGRAVITY_SITE_URL":              true,
	"ANTIGRAVITY_WORDPRESS_GRAPHQL_URL": true,
	"ANTIGRAVITY_WORDPRESS_REST_URL":    true,
}

func main() {
	audit.SetDefaultLogger()

	if err := newCommand().Execute(); err != nil {
		log.Fatal().Err(err).Msg("Failed to generate configuration examples")
	}
}

func newCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:          "genconfig",
		Short:        "Write example configuration files for the frontend",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(*cobra.Command, []string) error {
			return generate(dir)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "deploy", "output directory")

	return cmd
}

func generate(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	yamlText, err := renderYAML(defaults())
	if err != nil {
		return err
	}

	files := map[string]string{
		envExample:  renderEnv(defaults()),
		yamlExample: yamlText,
	}

	for name, content := range files {
		path := filepath.Join(dir, name)

		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}

		log.Info().Str("path", path).Msg("Generated configuration example")
	}

	return nil
}

func defaults() *config.ServerConfig {
	cfg := &config.ServerConfig{}
	cfg.SetDefaults()

	return cfg
}

// renderEnv lists every variable read from the environment, grouped by
// configuration section. Only the required ones are left uncommented.
func renderEnv(cfg *config.ServerConfig) string {
	var sb strings.Builder

	sb.WriteString("# Antigravity frontend configuration through environment variables.\n")
	sb.WriteString("# Copy this file to .env and adjust it.\n")
	sb.WriteString(generatedNote + "\n")

	sections := reflect.ValueOf(*cfg)

	for i := range sections.NumField() {
		section := sections.Field(i)
		if section.Kind() != reflect.Struct {
			continue
		}

		var lines []string

		for j := range section.NumField() {
			tag, ok := section.Type().Field(j).Tag.Lookup("env")
			if !ok {
				continue
			}

			name, _, _ := strings.Cut(tag, ",")
			lines = append(lines, envLine(name, section.Field(j)))
		}

		if len(lines) == 0 {
			continue
		}

		fmt.Fprintf(&sb, "## %s\n%s\n\n", sections.Type().Field(i).Name, strings.Join(lines, "\n"))
	}

	sb.WriteString("## Outbound proxy, see https://pkg.go.dev/net/http#ProxyFromEnvironment\n")
	sb.WriteString("# HTTPS_PROXY=\n# HTTP_PROXY=\n")

	return sb.String()
}

func envLine(name string, value reflect.Value) string {
	switch {
	case name == "ANTIGRAVITY_REVALIDATION_SECRET":
		return fmt.Sprintf("# %s=%q", name, placeholderSecret)
	case requiredEnv[name]:
		return fmt.Sprintf("%s=%q", name, fmt.Sprint(value.Interface()))
	}

	var text string

	switch value.Kind() {
	case reflect.Slice:
		parts := make([]string, value.Len())
		for i := range parts {
			parts[i] = fmt.Sprint(value.Index(i).Interface())
		}

		text = strings.Join(parts, ",")
	default:
		text = fmt.Sprint(value.Interface())
	}

	return fmt.Sprintf("# %s=%s", name, text)
}

// renderYAML writes the defaults as YAML with every setting commented out,
// except the revalidation secret, which must be set.
func renderYAML(cfg *config.ServerConfig) (string, error) {
	cfg.Revalidation.Secret = placeholderSecret

	var encoded strings.Builder

	enc := yaml.NewEncoder(&encoded, config.GetDurationEncoderOption(), yaml.Indent(2))
	if err := enc.Encode(cfg); err != nil {
		return "", fmt.Errorf("encoding defaults: %w", err)
	}

	var sb strings.Builder

	sb.WriteString("# Antigravity frontend configuration file.\n")
	sb.WriteString("# Copy this file to config.yaml and adjust it.\n")
	sb.WriteString(generatedNote)

	for line := range strings.SplitSeq(encoded.String(), "\n") {
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
		case !strings.HasPrefix(line, " "):
			fmt.Fprintf(&sb, "\n%s\n", line)
		case strings.HasPrefix(trimmed, "secret:"):
			sb.WriteString("  # Shared with the WordPress plugin. Required by POST /api/revalidate.\n")
			sb.WriteString(line + "\n")
		default:
			indent := line[:len(line)-len(strings.TrimLeft(line, " "))]
			fmt.Fprintf(&sb, "%s# %s\n", indent, trimmed)
		}
	}

	return sb.String(), nil
}
