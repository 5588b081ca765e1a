// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"codeberg.org/antigravity/frontend/core/audit"
)

// setupAudit installs the configured logger and response saving.
func (cfg *ServerConfig) setupAudit() {
	zerolog.SetGlobalLevel(cfg.logLevel())

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(cfg.logWriters()...)).With().Timestamp().Logger()

	audit.SaveResponses = cfg.Development.SaveResponses
	audit.ResponseDirectory = cfg.Development.ResponseSaveLocation

	if !audit.SaveResponses {
		return
	}

	if err := os.MkdirAll(audit.ResponseDirectory, 0o700); err != nil {
		log.Error().Err(err).Str("path", audit.ResponseDirectory).
			Msg("Failed to create response directory, response saving disabled")

		audit.SaveResponses = false
	}
}

// logLevel is debug in development and the configured level otherwise.
// An unknown level keeps the default.
func (cfg *ServerConfig) logLevel() zerolog.Level {
	if cfg.Development.InDevelopment {
		return zerolog.DebugLevel
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}

	return level
}

// logWriters opens every configured output. "/dev/stdout" and "/dev/stderr"
// name the process streams; anything else is a file opened for appending.
// An output that cannot be opened is reported and skipped.
func (cfg *ServerConfig) logWriters() []io.Writer {
	outputs := cfg.Log.Outputs
	if len(outputs) == 0 {
		outputs = []string{"/dev/stderr"}
	}

	writers := make([]io.Writer, 0, len(outputs))

	for _, output := range outputs {
		var f *os.File

		switch output {
		case "/dev/stdout":
			f = os.Stdout
		case "/dev/stderr":
			f = os.Stderr
		default:
			opened, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666) // #nosec:G302,G304
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to open log file %s: %v\n", output, err)

				continue
			}

			f = opened
		}

		if cfg.Log.Format == "json" {
			writers = append(writers, f)
		} else {
			writers = append(writers, consoleWriter(f))
		}
	}

	return writers
}

// consoleWriter formats logs for people. On a terminal, request spans are
// condensed to one coloured line.
func consoleWriter(f *os.File) io.Writer {
	w := zerolog.ConsoleWriter{Out: f, TimeFormat: time.DateTime, NoColor: true}

	if isatty.IsTerminal(f.Fd()) {
		w.NoColor = false
		w.FormatPrepare = condenseSpan
	}

	return w
}

// condenseSpan rewrites the fields of an audit span into its message.
func condenseSpan(fields map[string]any) error {
	if fields["sys"] != "http" {
		return nil
	}

	fields[zerolog.MessageFieldName] = fmt.Sprintf("[%s] %v %-5s %s",
		fields["destination"], fields["status_code"], fields["method"], fields["url"])

	for _, name := range []string{"sys", "destination", "status_code", "method", "url", "request_id"} {
		delete(fields, name)
	}

	return nil
}
