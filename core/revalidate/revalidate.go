// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package revalidate defines the revalidation contract between WordPress and
// the frontend: which paths a content change affects, and the request that
// asks the frontend to drop its cached copies of them.
package revalidate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"codeberg.org/antigravity/frontend/config"
	"codeberg.org/antigravity/frontend/core/audit"
	"codeberg.org/antigravity/frontend/core/requests"
)

// Endpoint is the path of the revalidation API on the frontend.
const Endpoint = "/api/revalidate"

var (
	errNoEndpoint  = errors.New("revalidation frontend URL is not configured")
	errNoSecret    = errors.New("revalidation secret is not configured")
	errNotAccepted = errors.New("frontend did not revalidate the path")
)

// PostType is the WordPress post type of a changed item.
type PostType string

const (
	Post PostType = "post"
	Page PostType = "page"
	Tool PostType = "tool"
)

// Request asks the frontend to revalidate Path.
type Request struct {
	Secret string `json:"secret"`
	Path   string `json:"path"`
}

// Response is the frontend's answer to a Request.
type Response struct {
	Revalidated bool   `json:"revalidated"`
	Path        string `json:"path,omitempty"`
	Message     string `json:"message,omitempty"`

	// Timestamp is in Unix milliseconds.
	Timestamp int64 `json:"timestamp,omitempty"`
}

// PathsFor returns the frontend paths that render an item, in every locale.
//
// A post affects its own page and the blog index. A page affects its own
// path, and the locale root when it is the front page. A tool affects its
// tool page.
func PathsFor(typ PostType, slug string, locales []string, isFrontPage bool) []string {
	var paths []string

	for _, lang := range locales {
		switch typ {
		case Post:
			paths = append(paths, "/"+lang+"/blog/"+slug, "/"+lang+"/blog")
		case Page:
			paths = append(paths, "/"+lang+"/"+slug)
		case Tool:
			paths = append(paths, "/"+lang+"/tools/"+slug)
		}

		if isFrontPage {
			paths = append(paths, "/"+lang)
		}
	}

	return paths
}

// Client sends revalidation requests to a frontend.
type Client struct {
	// BaseURL is the frontend origin.
	BaseURL string
	Secret  string
}

// FromConfig returns a Client for the frontend in config.Global.
func FromConfig() *Client {
	return &Client{
		BaseURL: config.Global.Revalidation.FrontendURL,
		Secret:  config.Global.Revalidation.Secret,
	}
}

// Trigger asks the frontend to revalidate path.
func (c *Client) Trigger(ctx context.Context, path string) (*Response, error) {
	if c.BaseURL == "" {
		return nil, errNoEndpoint
	}

	if c.Secret == "" {
		return nil, errNoSecret
	}

	url := strings.TrimRight(c.BaseURL, "/") + Endpoint

	body, err := requests.PostJSON(ctx, audit.ToFrontend, url, Request{Secret: c.Secret, Path: path})
	if err != nil {
		return nil, fmt.Errorf("failed to revalidate %s: %w", path, err)
	}

	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode revalidation response: %w", err)
	}

	if !resp.Revalidated {
		return &resp, fmt.Errorf("%w: %s", errNotAccepted, resp.Message)
	}

	return &resp, nil
}
