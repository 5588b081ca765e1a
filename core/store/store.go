// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package store persists the last fetched copy of WordPress content in
// SQLite, so that pages can be rendered while WordPress is unreachable.
//
// Translation key maps are stored as opaque JSON and returned unchanged.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	// Registers the sqlite3 database/sql driver.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"codeberg.org/antigravity/frontend/config"
)

// ErrNotFound is returned when no snapshot matches.
var ErrNotFound = errors.New("snapshot not found")

// Store is a SQLite-backed snapshot store.
type Store struct {
	db     *bun.DB
	logger zerolog.Logger

	// now is used for fetched_at timestamps.
	now func() time.Time
}

// Setup opens the store configured in config.Global. It returns nil when the
// store is disabled.
func Setup(ctx context.Context) (*Store, error) {
	if !config.Global.Store.Enabled {
		log.Info().Msg("Content store is disabled, skipping store initialization")

		return nil, nil //nolint:nilnil // a disabled store is not an error
	}

	return Open(ctx, config.Global.Store.Path)
}

// Open opens or creates the database at path and creates the snapshot tables.
//
// path is either a file path or a complete "file:" DSN, such as
// "file:test?mode=memory&cache=shared".
func Open(ctx context.Context, path string) (*Store, error) {
	dsn := path

	if !strings.HasPrefix(path, "file:") {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create store directory: %w", err)
			}
		}

		dsn = "file:" + path + "?_busy_timeout=5000&_journal_mode=WAL"
	}

	sqldb, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	// SQLite allows a single writer.
	sqldb.SetMaxOpenConns(1)

	s := &Store{
		db:     bun.NewDB(sqldb, sqlitedialect.New()),
		logger: log.With().Str("sys", "store").Logger(),
		now:    time.Now,
	}

	if err := s.migrate(ctx); err != nil {
		_ = s.db.Close()

		return nil, err
	}

	s.logger.Info().Str("path", path).Msg("Opened content store")

	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	models := []any{(*contentSnapshot)(nil), (*postSnapshot)(nil)}

	for _, model := range models {
		if _, err := s.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	if _, err := s.db.NewCreateIndex().
		Model((*contentSnapshot)(nil)).
		Index("content_snapshots_item_idx").
		Unique().
		Column("type", "slug", "locale").
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	return nil
}
