// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package wordpress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"

	"codeberg.org/antigravity/frontend/config"
	"codeberg.org/antigravity/frontend/core/requests"
)

const restNamespace = "/antigravity/v1"

var (
	errMalformedResponse = errors.New("malformed WordPress response")
	errGraphQL           = errors.New("GraphQL query failed")
)

// Snapshots persists the last good copy of fetched items, so that pages can
// still be rendered while WordPress is unreachable.
type Snapshots interface {
	SaveContent(ctx context.Context, content *Content) error
	LoadContent(ctx context.Context, typ ContentType, slug, locale string) (*Content, error)
	SavePosts(ctx context.Context, posts []Post) error
	LoadPost(ctx context.Context, slug string) (*Post, error)
	LoadPosts(ctx context.Context, limit int) ([]Post, error)
}

// Client fetches content from one WordPress installation.
type Client struct {
	// GraphQLURL is the WPGraphQL endpoint.
	GraphQLURL string

	// RESTURL is the REST API root, usually ending in /wp-json.
	RESTURL string

	// Timeout bounds every upstream request. Zero means no timeout.
	Timeout time.Duration

	// MockFallback serves placeholder posts when WordPress fails and no
	// snapshot is available.
	MockFallback bool

	// Snapshots, if set, stores fetched items and serves them when WordPress fails.
	Snapshots Snapshots

	Logger zerolog.Logger
}

// Default is the client configured by Setup.
var Default *Client

// Setup initializes Default from config.Global.
func Setup(snapshots Snapshots) {
	Default = &Client{
		GraphQLURL:   config.Global.WordPress.GraphQLURL.String(),
		RESTURL:      config.Global.WordPress.RESTURL.String(),
		Timeout:      config.Global.WordPress.Timeout,
		MockFallback: config.Global.WordPress.MockFallback,
		Snapshots:    snapshots,
		Logger:       log.With().Str("sys", "wordpress").Logger(),
	}

	Default.Logger.Info().
		Str("graphql", Default.GraphQLURL).
		Str("rest", Default.RESTURL).
		Bool("snapshots", snapshots != nil).
		Msg("Configured WordPress client")
}

// getJSON fetches url under the client timeout.
func (c *Client) getJSON(ctx context.Context, url string) ([]byte, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	body, err := requests.GetJSON(ctx, url, incomingHeaders(ctx))
	if requests.StatusCode(err) == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	return body, err
}

// query runs a GraphQL query as a GET request, so that the response can be
// cached, and returns its data object.
func (c *Client) query(ctx context.Context, query string, variables map[string]any) (gjson.Result, error) {
	params := url.Values{"query": {compactQuery(query)}}

	if len(variables) > 0 {
		encoded, err := json.Marshal(variables)
		if err != nil {
			return gjson.Result{}, fmt.Errorf("failed to encode GraphQL variables: %w", err)
		}

		params.Set("variables", string(encoded))
	}

	body, err := c.getJSON(ctx, c.GraphQLURL+"?"+params.Encode())
	if err != nil {
		return gjson.Result{}, err
	}

	root := gjson.ParseBytes(body)

	data := root.Get("data")
	if errs := root.Get("errors"); errs.IsArray() && len(errs.Array()) > 0 && (!data.Exists() || data.Type == gjson.Null) {
		return gjson.Result{}, fmt.Errorf("%w: %s", errGraphQL, errs.Get("0.message").String())
	}

	if !data.IsObject() {
		return gjson.Result{}, fmt.Errorf("%w: missing data object", errMalformedResponse)
	}

	return data, nil
}

// restURL joins path segments onto the REST namespace URL, escaping each.
func (c *Client) restURL(segments ...string) string {
	var b strings.Builder

	b.WriteString(c.RESTURL)
	b.WriteString(restNamespace)

	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}

	return b.String()
}

// CacheURLPrefixes returns the upstream URL prefixes whose cached responses
// describe the item of the given type and slug. Posts are all served by one
// GraphQL endpoint, so every cached query is included for them.
func (c *Client) CacheURLPrefixes(kind string, slug string) []string {
	switch kind {
	case string(Tool), string(Page):
		return []string{
			c.restURL("content", kind, slug) + "?",
			c.restURL("translations", slug),
			c.restURL("sitemap"),
		}
	case "post":
		return []string{
			c.GraphQLURL + "?",
			c.restURL("posts") + "/",
			c.restURL("sitemap"),
		}
	default:
		return nil
	}
}

// compactQuery collapses the whitespace of a GraphQL document, keeping
// request URLs short.
func compactQuery(q string) string {
	return strings.Join(strings.Fields(q), " ")
}

// str returns the string value of v, or "" when v is not a string.
//
// WordPress sends false for missing images and null for unset fields.
func str(v gjson.Result) string {
	if v.Type != gjson.String {
		return ""
	}

	return v.Str
}

// strs returns the string elements of the array v.
func strs(v gjson.Result) []string {
	var out []string

	for _, item := range v.Array() {
		if s := str(item); s != "" {
			out = append(out, s)
		}
	}

	return out
}

type incomingHeadersKey struct{}

// WithIncomingHeaders attaches the headers of the visitor request to ctx, so
// that its Cache-Control directives apply to the upstream requests made for it.
func WithIncomingHeaders(ctx context.Context, h http.Header) context.Context {
	return context.WithValue(ctx, incomingHeadersKey{}, h)
}

func incomingHeaders(ctx context.Context) http.Header {
	h, _ := ctx.Value(incomingHeadersKey{}).(http.Header)

	return h
}
