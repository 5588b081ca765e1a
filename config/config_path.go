// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"errors"
	"flag"
	"io/fs"
	"os"
)

const (
	defaultConfigPath  = "./config.yaml"
	fallbackConfigPath = "./config.yml"
)

// resolveConfigPath returns the configuration file of the server. An
// explicit -config flag wins over ANTIGRAVITY_CONFIGFILE, which wins over
// ./config.yaml. When neither is set and ./config.yaml is missing,
// ./config.yml is used if present.
func resolveConfigPath() string {
	path, explicit := configFlag()
	if explicit {
		return path
	}

	if env := os.Getenv("ANTIGRAVITY_CONFIGFILE"); env != "" {
		return env
	}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if _, err := os.Stat(fallbackConfigPath); err == nil {
			return fallbackConfigPath
		}
	}

	return path
}

// configFlag registers and parses -config on the process command line.
// explicit reports whether the flag was given.
func configFlag() (path string, explicit bool) {
	f := flag.Lookup("config")
	if f == nil {
		flag.String("config", defaultConfigPath, "Path to a configuration file in YAML format.")
		f = flag.Lookup("config")
	}

	if !flag.Parsed() {
		flag.Parse()
	}

	flag.Visit(func(set *flag.Flag) {
		if set.Name == "config" {
			explicit = true
		}
	})

	return f.Value.String(), explicit
}
