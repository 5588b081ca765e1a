// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package requests

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

var (
	errInvalidJSON = errors.New("response contained invalid JSON")
	errUpstream    = errors.New("upstream responded with an error")
)

// APIError is an upstream response with a status of 400 or above.
type APIError struct {
	StatusCode int

	// Message is the "message" member of a WordPress REST error, or the
	// status text.
	Message string

	Err error
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%v (status code: %d)", e.Err, e.StatusCode)
	}

	return fmt.Sprintf("%v: %s (status code: %d)", e.Err, e.Message, e.StatusCode)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// newAPIError reads the error message of a WordPress REST response, which
// looks like {"code": "...", "message": "..."}.
func newAPIError(status int, body []byte) *APIError {
	message := gjson.GetBytes(body, "message").String()
	if message == "" {
		message = http.StatusText(status)
	}

	return &APIError{StatusCode: status, Message: message, Err: errUpstream}
}

// StatusCode returns the upstream status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}

	return 0
}

// IsContextCanceled reports whether err comes from a canceled or expired
// context.
func IsContextCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
