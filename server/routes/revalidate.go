// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog/log"

	"codeberg.org/antigravity/frontend/config"
	"codeberg.org/antigravity/frontend/core/requests"
	"codeberg.org/antigravity/frontend/core/revalidate"
	"codeberg.org/antigravity/frontend/core/wordpress"
	"codeberg.org/antigravity/frontend/i18n"
	"codeberg.org/antigravity/frontend/server/pagecache"
	"codeberg.org/antigravity/frontend/server/utils"
)

// SnapshotRemover drops the stored snapshots of revalidated items.
type SnapshotRemover interface {
	Delete(ctx context.Context, typ wordpress.ContentType, slug string) (int64, error)
	DeletePost(ctx context.Context, slug string) (int64, error)
}

// Snapshots is set by package main when the snapshot store is enabled.
var Snapshots SnapshotRemover

// revalidateStatus is the answer to a GET without parameters.
type revalidateStatus struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// Revalidate drops every cached copy of a path: the rendered pages, the
// WordPress responses they were built from and the stored snapshots.
//
// POST takes a JSON revalidate.Request; GET takes ?secret=&path=.
func Revalidate(w http.ResponseWriter, r *http.Request) error {
	var req revalidate.Request

	switch r.Method {
	case http.MethodPost:
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
			return writeJSON(w, http.StatusBadRequest, revalidate.Response{Message: "Invalid JSON body"})
		}
	default:
		req.Secret = utils.GetQueryParam(r, "secret")
		req.Path = utils.GetQueryParam(r, "path")

		if req.Secret == "" && req.Path == "" {
			return writeJSON(w, http.StatusOK, revalidateStatus{
				Message: "Revalidation API is active. Use POST with {secret, path} or GET with ?secret=...&path=...",
				Status:  "ok",
			})
		}
	}

	secret := config.Global.Revalidation.Secret
	if secret == "" {
		log.Error().Msg("Revalidation requested but no secret is configured")

		return writeJSON(w, http.StatusInternalServerError, revalidate.Response{Message: "Revalidation secret not configured"})
	}

	if subtle.ConstantTimeCompare([]byte(req.Secret), []byte(secret)) != 1 {
		log.Warn().Str("path", req.Path).Msg("Revalidation rejected, invalid secret")

		return writeJSON(w, http.StatusUnauthorized, revalidate.Response{Message: "Invalid secret"})
	}

	if err := validation.Validate(req.Path,
		validation.Required.Error("Path is required"),
		validation.By(func(value any) error {
			if !strings.HasPrefix(value.(string), "/") {
				return validation.NewError("validation_path_absolute", "Path must start with /")
			}

			return nil
		}),
	); err != nil {
		return writeJSON(w, http.StatusBadRequest, revalidate.Response{Message: err.Error()})
	}

	invalidate(r.Context(), req.Path)

	return writeJSON(w, http.StatusOK, revalidate.Response{
		Revalidated: true,
		Path:        req.Path,
		Timestamp:   time.Now().UnixMilli(),
	})
}

func invalidate(ctx context.Context, path string) {
	pages := pagecache.Invalidate(path)

	kind, slug := resourceFor(path)

	event := log.Info().
		Str("path", path).
		Int("pages", len(pages)).
		Str("kind", kind).
		Str("slug", slug)

	if kind == "" {
		event.Msg("Revalidated path")

		return
	}

	if wordpress.Default != nil {
		n, _ := requests.InvalidateURLs(wordpress.Default.CacheURLPrefixes(kind, slug))
		event = event.Int("responses", n)
	}

	if Snapshots != nil && slug != "" {
		var (
			n   int64
			err error
		)

		if kind == "post" {
			n, err = Snapshots.DeletePost(ctx, slug)
		} else {
			n, err = Snapshots.Delete(ctx, wordpress.ContentType(kind), slug)
		}

		if err != nil {
			log.Warn().Err(err).Str("slug", slug).Msg("Failed to drop snapshots")
		}

		event = event.Int64("snapshots", n)
	}

	event.Msg("Revalidated path")
}

// resourceFor maps a frontend path to the WordPress item it renders: a kind
// accepted by wordpress.Client.CacheURLPrefixes and a slug.
//
// Locale roots and the blog index list posts, so they map to "post" without
// a slug. Unknown paths map to "".
func resourceFor(path string) (kind, slug string) {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if !i18n.Supported(segments[0]) {
		return "", ""
	}

	rest := segments[1:]
	last := segments[len(segments)-1]

	switch {
	case len(rest) == 0:
		return "post", ""
	case rest[0] == "blog" && len(rest) == 1:
		return "post", ""
	case rest[0] == "blog":
		return "post", last
	case rest[0] == "tools" && len(rest) == 1:
		return "", ""
	case rest[0] == "tools":
		return string(wordpress.Tool), last
	default:
		return string(wordpress.Page), last
	}
}
