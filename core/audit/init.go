// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package audit records HTTP exchanges as timed spans and owns the startup
// logger.
package audit

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SetDefaultLogger sends human-readable logs to stderr until the
// configuration chooses a format.
func SetDefaultLogger() {
	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime}

	log.Logger = zerolog.New(console).With().Timestamp().Logger()
}
