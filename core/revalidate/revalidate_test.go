// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package revalidate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/antigravity/frontend/core/requests"
)

func TestPathsFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		typ       PostType
		locales   []string
		frontPage bool
		want      []string
	}{
		{
			name:    "post",
			typ:     Post,
			locales: []string{"en"},
			want:    []string{"/en/blog/hello", "/en/blog"},
		},
		{
			name:    "page in two locales",
			typ:     Page,
			locales: []string{"en", "es"},
			want:    []string{"/en/hello", "/es/hello"},
		},
		{
			name:      "front page",
			typ:       Page,
			locales:   []string{"fr"},
			frontPage: true,
			want:      []string{"/fr/hello", "/fr"},
		},
		{
			name:    "tool",
			typ:     Tool,
			locales: []string{"de"},
			want:    []string{"/de/tools/hello"},
		},
		{
			name:    "unknown type",
			typ:     "attachment",
			locales: []string{"en"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, PathsFor(tt.typ, "hello", tt.locales, tt.frontPage))
		})
	}
}

func TestTrigger(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, Endpoint, r.URL.Path)

		var req Request
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			return
		}

		w.Header().Set("Content-Type", "application/json")

		if req.Secret != "s3cret" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(Response{Message: "Invalid secret"})

			return
		}

		_ = json.NewEncoder(w).Encode(Response{Revalidated: true, Path: req.Path, Timestamp: 1})
	}))
	t.Cleanup(srv.Close)

	resp, err := (&Client{BaseURL: srv.URL + "/", Secret: "s3cret"}).Trigger(context.Background(), "/en/blog")
	require.NoError(t, err)
	assert.Equal(t, "/en/blog", resp.Path)

	_, err = (&Client{BaseURL: srv.URL, Secret: "wrong"}).Trigger(context.Background(), "/en/blog")
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, requests.StatusCode(err))
	assert.Contains(t, err.Error(), "Invalid secret")

	_, err = (&Client{Secret: "s3cret"}).Trigger(context.Background(), "/en")
	require.ErrorIs(t, err, errNoEndpoint)

	_, err = (&Client{BaseURL: srv.URL}).Trigger(context.Background(), "/en")
	require.ErrorIs(t, err, errNoSecret)
}
