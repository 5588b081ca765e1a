// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package limiter

import (
	"math"
	"net/netip"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	// BucketExpiry is how long an idle network keeps its bucket.
	BucketExpiry = time.Hour

	// SweepInterval is the minimum time between two sweeps of idle buckets.
	SweepInterval = 5 * time.Minute
)

var (
	buckets = newRegistry()
	timeNow = time.Now
)

// bucket is the token bucket of one network.
type bucket struct {
	mu       sync.Mutex
	limiter  *rate.Limiter
	lastSeen time.Time
}

// quota describes the state of a bucket after a request.
type quota struct {
	Allowed   bool
	Limit     int
	Remaining int

	// Reset is the time until the bucket is full again.
	Reset time.Duration

	// RetryAfter is the time until the next token, when none is left.
	RetryAfter time.Duration
}

// take consumes a token at now.
func (b *bucket) take(now time.Time) quota {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lastSeen = now

	q := quota{
		Allowed: b.limiter.AllowN(now, 1),
		Limit:   b.limiter.Burst(),
	}

	tokens := b.limiter.TokensAt(now)
	perSecond := float64(b.limiter.Limit())

	q.Remaining = int(math.Max(0, math.Min(float64(q.Limit), tokens)))

	if perSecond > 0 {
		if missing := float64(q.Limit) - tokens; missing > 0 {
			q.Reset = seconds(math.Ceil(missing / perSecond))
		}

		if q.Remaining == 0 {
			q.RetryAfter = seconds(math.Max(1, math.Ceil((1-tokens)/perSecond)))
		}
	}

	return q
}

func seconds(n float64) time.Duration {
	return time.Duration(n) * time.Second
}

// registry holds the buckets of all active networks.
type registry struct {
	mu        sync.Mutex
	byNetwork map[netip.Prefix]*bucket
	lastSweep time.Time
}

func newRegistry() *registry {
	return &registry{byNetwork: make(map[netip.Prefix]*bucket)}
}

// get returns the bucket of network, creating it with the given rate.
func (reg *registry) get(network netip.Prefix, perSecond float64, burst int, now time.Time) *bucket {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	b, ok := reg.byNetwork[network]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rate.Limit(perSecond), burst), lastSeen: now}
		reg.byNetwork[network] = b
	}

	return b
}

// has reports whether network has a bucket.
func (reg *registry) has(network netip.Prefix) bool {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	_, ok := reg.byNetwork[network]

	return ok
}

// sweep drops the buckets idle for longer than BucketExpiry. It does nothing
// when the previous sweep ran less than SweepInterval ago, unless force is
// set.
func (reg *registry) sweep(now time.Time, force bool) int {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if !force && now.Sub(reg.lastSweep) < SweepInterval {
		return 0
	}

	reg.lastSweep = now

	removed := 0

	for network, b := range reg.byNetwork {
		b.mu.Lock()
		idle := now.Sub(b.lastSeen)
		b.mu.Unlock()

		if idle > BucketExpiry {
			delete(reg.byNetwork, network)

			removed++
		}
	}

	if removed > 0 {
		log.Info().Int("count", removed).Msg("Dropped idle rate limit buckets")
	}

	return removed
}
