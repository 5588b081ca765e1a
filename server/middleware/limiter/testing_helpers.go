// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package limiter

import (
	"sync"
	"testing"
	"time"

	"codeberg.org/antigravity/frontend/config"
)

// limiterState guards config.Global.Limiter, timeNow and buckets while a
// test owns them.
var limiterState sync.Mutex

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

// setupLimiterTest gives the test an empty registry, a fake clock and a
// limit of 1 request per second with a burst of 3 per /24 or /64, with
// 127.0.0.1 pass-listed. Everything is restored when the test ends.
//
// It holds limiterState for the whole test, so subtests must not call it
// again.
func setupLimiterTest(t *testing.T) *fakeClock {
	t.Helper()

	limiterState.Lock()

	savedLimiter, savedNow := config.Global.Limiter, timeNow

	t.Cleanup(func() {
		config.Global.Limiter, timeNow = savedLimiter, savedNow
		buckets = newRegistry()

		limiterState.Unlock()
	})

	l := &config.Global.Limiter
	l.Enabled = true
	l.IPv4Prefix, l.IPv6Prefix = 24, 64
	l.PassIPs = []string{"127.0.0.1"}
	l.Rate, l.Burst = 1, 3

	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	timeNow = clock.Now
	buckets = newRegistry()

	return clock
}
