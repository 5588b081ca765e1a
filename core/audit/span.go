// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package audit

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"runtime/trace"
	"strconv"
	"time"

	servertiming "github.com/mitchellh/go-server-timing"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// TrafficDestination names the party on the other end of an exchange.
type TrafficDestination string

const (
	// ToUser is a page or API response served by the frontend.
	ToUser TrafficDestination = "user"
	// ToWordPress is a GraphQL or REST call to the content backend.
	ToWordPress TrafficDestination = "wordpress"
	// ToFrontend is a revalidation call to a running frontend.
	ToFrontend TrafficDestination = "frontend"
)

var (
	// SaveResponses enables writing WordPress response bodies to
	// ResponseDirectory, one file per request ID.
	SaveResponses bool

	ResponseDirectory string
)

// Span times one HTTP exchange. The exported fields are filled in by the
// caller before Log.
type Span struct {
	Destination TrafficDestination
	RequestID   string
	Method      string
	URL         string
	StatusCode  int
	Error       error

	// Body is only kept for response saving; its size is logged.
	Body []byte

	start    time.Time
	duration time.Duration
	task     *trace.Task
	metric   *servertiming.Metric
	savedAs  string
}

// ServerTimingName joins the destination, the method and the unpadded
// base64url form of the URL with "$", which keeps it a valid header token.
func (span Span) ServerTimingName() string {
	encoded := base64.RawURLEncoding.EncodeToString([]byte(span.URL))

	return string(span.Destination) + "$" + span.Method + "$" + encoded
}

// Begin starts the clock and a runtime/trace task. If ctx carries a
// Server-Timing header, the span is added to it as a metric.
func (span *Span) Begin(ctx context.Context) context.Context {
	span.start = time.Now()
	ctx, span.task = trace.NewTask(ctx, "http."+string(span.Destination))

	if timing := servertiming.FromContext(ctx); timing != nil {
		startMillis := float64(span.start.UnixNano()) / float64(time.Millisecond)

		span.metric = timing.NewMetric(span.ServerTimingName())
		span.metric.Extra = map[string]string{"start": strconv.FormatFloat(startMillis, 'f', -1, 64)}
	}

	return ctx
}

// End stops the clock. Calls after the first are ignored.
func (span *Span) End() {
	if span.task == nil {
		return
	}

	span.duration = time.Since(span.start)
	span.task.End()
	span.task = nil

	if span.metric != nil {
		span.metric.Duration = span.duration
	}
}

func (span Span) Duration() time.Duration {
	return span.duration
}

// Log writes the span at debug level.
func (span Span) Log() {
	if span.Destination == ToWordPress && SaveResponses && len(span.Body) > 0 {
		span.save()
	}

	event := log.Debug().Str("sys", "http")
	span.describe(event).Send()
}

// save writes Body under ResponseDirectory. A failure is logged and
// otherwise ignored.
func (span *Span) save() {
	name := filepath.Join(ResponseDirectory, span.RequestID)

	if err := os.WriteFile(name, span.Body, 0o600); err != nil {
		log.Err(err).Str("request_id", span.RequestID).Msg("Failed to save response")

		return
	}

	span.savedAs = name
}

func (span Span) describe(event *zerolog.Event) *zerolog.Event {
	event = event.
		Str("destination", string(span.Destination)).
		Str("request_id", span.RequestID).
		Str("method", span.Method).
		Str("url", span.URL).
		Int("status_code", span.StatusCode).
		Str("len", humanizeSize(len(span.Body))).
		Dur("dur", span.duration)

	if span.savedAs != "" {
		event = event.Str("response_filename", span.savedAs)
	}

	if span.Error != nil {
		event = event.Err(span.Error)
	}

	return event
}

const (
	bytesInKB = 1 << 10
	bytesInMB = 1 << 20
	bytesInGB = 1 << 30
)

// humanizeSize formats a byte count with a binary unit suffix.
func humanizeSize(n int) string {
	switch {
	case n >= bytesInGB:
		return fmt.Sprintf("%.2fG", float64(n)/bytesInGB)
	case n >= bytesInMB:
		return fmt.Sprintf("%.2fM", float64(n)/bytesInMB)
	case n >= bytesInKB:
		return fmt.Sprintf("%.2fK", float64(n)/bytesInKB)
	default:
		return strconv.Itoa(n)
	}
}
