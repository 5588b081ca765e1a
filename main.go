// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
The frontend renders tools, pages and blog posts managed in a headless
WordPress in every configured language, and serves the revalidation and
translation-key APIs used by the authoring side.
*/
package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"codeberg.org/antigravity/frontend/config"
	"codeberg.org/antigravity/frontend/core/audit"
	"codeberg.org/antigravity/frontend/core/requests"
	"codeberg.org/antigravity/frontend/core/store"
	"codeberg.org/antigravity/frontend/core/wordpress"
	"codeberg.org/antigravity/frontend/i18n"
	"codeberg.org/antigravity/frontend/server/assets"
	"codeberg.org/antigravity/frontend/server/pagecache"
	"codeberg.org/antigravity/frontend/server/router"
	"codeberg.org/antigravity/frontend/server/routes"
)

// http.Server timeouts. Rendering a page may wait on WordPress, hence the
// longer write timeout.
const (
	readHeaderTimeout = 15 * time.Second
	readTimeout       = 15 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 30 * time.Second

	shutdownDeadline = 5 * time.Second
)

// The catalogues and static files ship inside the binary.
//
//go:embed assets/static
//go:embed all:po
var embedded embed.FS

//nolint:gochecknoinits
func init() {
	assets.FS = embedded
}

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Application failed")
	}
}

// run serves until SIGINT or SIGTERM.
func run() error {
	audit.SetDefaultLogger()

	if err := config.Global.LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	closeStore, err := setup()
	if err != nil {
		return err
	}
	defer closeStore()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handler := router.NewRouter()
	handler.RegisterMiddleware()
	handler.DefineRoutes()

	return serve(ctx, &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	})
}

// setup initializes the packages that hold process-wide state, in
// dependency order. The returned func closes the snapshot store.
func setup() (func(), error) {
	cfg := &config.Global

	if err := i18n.Setup(assets.FS, cfg.Site.DefaultLocale, cfg.Site.Locales); err != nil {
		return nil, fmt.Errorf("failed to initialize i18n engine: %w", err)
	}

	log.Info().Strs("locales", i18n.Locales()).Msg("Initialized i18n engine")

	requests.Setup()
	pagecache.Setup()

	snapshots, err := store.Setup(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to open content store: %w", err)
	}

	// store.Setup returns a nil *Store when disabled, which must not be
	// stored in the interface-typed fields below.
	if snapshots == nil {
		wordpress.Setup(nil)

		return func() {}, nil
	}

	wordpress.Setup(snapshots)
	routes.Snapshots = snapshots

	return func() {
		if err := snapshots.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close content store")
		}
	}, nil
}

// serve runs server until ctx is done, then shuts it down gracefully.
func serve(ctx context.Context, server *http.Server) error {
	listener, err := listen(ctx)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := server.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		log.Info().Msg("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownDeadline)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	log.Info().Msg("Server exited gracefully")

	return nil
}
