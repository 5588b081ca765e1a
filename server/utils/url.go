// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package utils holds small request and URL helpers shared by the server
// and the configuration.
package utils

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

var errNotAbsolute = errors.New("must be an absolute URL with a scheme and host, e.g. https://example.com")

// ParseURL parses an absolute URL taken from the configuration. name
// identifies the setting in errors. A trailing slash is dropped from the
// path, so that paths can be appended with a leading slash.
func ParseURL(raw, name string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s URL %q: %w", name, raw, err)
	}

	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%s URL %q %w", name, raw, errNotAbsolute)
	}

	u.Path = strings.TrimSuffix(u.Path, "/")

	return u, nil
}

// GetQueryParam returns the query parameter name of r, or the first default
// when it is empty.
func GetQueryParam(r *http.Request, name string, defaultValue ...string) string {
	return orDefault(r.URL.Query().Get(name), defaultValue)
}

// GetPathVar returns the wildcard name matched by the route of r, or the
// first default when it is empty.
func GetPathVar(r *http.Request, name string, defaultValue ...string) string {
	return orDefault(r.PathValue(name), defaultValue)
}

// GetOriginFromRequest returns the scheme and host the client used to reach
// the server. X-Forwarded-Proto set by a reverse proxy takes precedence
// over the connection state.
func GetOriginFromRequest(r *http.Request) string {
	scheme := "http"

	switch proto := r.Header.Get("X-Forwarded-Proto"); {
	case proto != "":
		scheme = proto
	case r.TLS != nil:
		scheme = "https"
	}

	return scheme + "://" + r.Host
}

func orDefault(v string, defaults []string) string {
	if v == "" && len(defaults) > 0 {
		return defaults[0]
	}

	return v
}
