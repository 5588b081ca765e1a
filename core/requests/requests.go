// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package requests sends the outbound HTTP requests of the frontend. GET
// responses are cached, every exchange is audited, and error statuses become
// *APIError values.
package requests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/tidwall/gjson"

	"codeberg.org/antigravity/frontend/config"
	"codeberg.org/antigravity/frontend/core/audit"
	"codeberg.org/antigravity/frontend/core/idgen"
	"codeberg.org/antigravity/frontend/server/request_context"
)

// GetJSON fetches url and returns its body, which is valid JSON.
//
// incoming are the headers of the visitor request being served, if any. A
// Cache-Control of no-cache there bypasses the response cache and no-store
// keeps the response out of it.
func GetJSON(ctx context.Context, url string, incoming http.Header) ([]byte, error) {
	x := exchange{
		method:      http.MethodGet,
		url:         url,
		incoming:    incoming,
		destination: audit.ToWordPress,
	}

	return x.json(ctx)
}

// PostJSON posts payload encoded as JSON to url and returns the JSON response
// body.
func PostJSON(ctx context.Context, destination audit.TrafficDestination, url string, payload any) ([]byte, error) {
	x := exchange{
		method:      http.MethodPost,
		url:         url,
		payload:     payload,
		destination: destination,
	}

	return x.json(ctx)
}

// exchange is one outbound request.
type exchange struct {
	method      string
	url         string
	payload     any
	incoming    http.Header
	destination audit.TrafficDestination
}

func (x exchange) json(ctx context.Context) ([]byte, error) {
	status, body, err := x.perform(ctx)
	if err != nil {
		return nil, err
	}

	if status >= http.StatusBadRequest {
		return nil, newAPIError(status, body)
	}

	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w from %s", errInvalidJSON, x.url)
	}

	return body, nil
}

// perform answers a GET from the cache when it can, and otherwise sends x.
func (x exchange) perform(ctx context.Context) (int, []byte, error) {
	var policy cachePolicy

	if x.method == http.MethodGet {
		policy = policyFor(x.url, x.incoming)

		if hit := policy.hit; hit != nil {
			return hit.StatusCode, hit.Body, nil
		}
	}

	req, err := x.request(ctx)
	if err != nil {
		return 0, nil, err
	}

	resp, body, err := send(ctx, req, x.destination)
	if err != nil {
		return 0, nil, err
	}

	if policy.store && resp.StatusCode == http.StatusOK {
		storeResponse(ctx, x.url, cachedResponse{StatusCode: resp.StatusCode, Header: resp.Header, Body: body})
	}

	return resp.StatusCode, body, nil
}

func (x exchange) request(ctx context.Context) (*http.Request, error) {
	var body io.Reader

	if x.payload != nil {
		encoded, err := json.Marshal(x.payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request payload: %w", err)
		}

		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, x.method, x.url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", "antigravity-frontend/"+config.BuildVersion)
	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

// send performs req under an audit span and reads the whole body. The
// returned response's Body is already closed.
func send(ctx context.Context, req *http.Request, destination audit.TrafficDestination) (_ *http.Response, _ []byte, err error) {
	span := audit.Span{
		Destination: destination,
		RequestID:   request_context.FromContext(ctx).RequestID + "-" + idgen.Make(),
		Method:      req.Method,
		URL:         req.URL.String(),
	}

	span.Begin(ctx)

	defer func() {
		span.End()
		span.Error = err
		span.Log()
	}()

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to make HTTP request: %w", err)
	}
	defer resp.Body.Close()

	span.StatusCode = resp.StatusCode

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	span.Body = body

	return resp, body, nil
}
