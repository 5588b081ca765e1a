// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package contentkeys

import (
	"errors"
	"fmt"
	"strings"
)

// CollisionPolicy decides which entry keeps a key when two different
// fragments normalize to it.
type CollisionPolicy int

const (
	// LastWriteWins lets the later fragment replace the earlier one. This is
	// the behaviour content has always been extracted with.
	LastWriteWins CollisionPolicy = iota

	// FirstWriteWins keeps the earliest fragment.
	FirstWriteWins

	// Strict refuses to produce a map that contains a collision.
	Strict
)

// ErrKeyCollision is matched by every *CollisionError.
var ErrKeyCollision = errors.New("translation key collision")

var errUnknownCollisionPolicy = errors.New("unknown collision policy")

// ParseCollisionPolicy parses the configuration spelling of a policy.
// "merge" is accepted as an alias of "last-write-wins"; the empty string
// selects the default.
func ParseCollisionPolicy(s string) (CollisionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "merge", "last-write-wins":
		return LastWriteWins, nil
	case "first-write-wins":
		return FirstWriteWins, nil
	case "strict":
		return Strict, nil
	default:
		return LastWriteWins, fmt.Errorf("%w: %q", errUnknownCollisionPolicy, s)
	}
}

func (p CollisionPolicy) String() string {
	switch p {
	case LastWriteWins:
		return "last-write-wins"
	case FirstWriteWins:
		return "first-write-wins"
	case Strict:
		return "strict"
	default:
		return fmt.Sprintf("CollisionPolicy(%d)", int(p))
	}
}

// Collision describes two fragments that share a key.
type Collision struct {
	Key      string `json:"key"`
	Existing Entry  `json:"existing"`
	Incoming Entry  `json:"incoming"`
}

// CollisionError is returned under the [Strict] policy.
type CollisionError struct {
	Collisions []Collision
}

func (e *CollisionError) Error() string {
	keys := make([]string, 0, len(e.Collisions))
	for _, c := range e.Collisions {
		keys = append(keys, c.Key)
	}

	return fmt.Sprintf("%s: %d colliding key(s): %s", ErrKeyCollision, len(e.Collisions), strings.Join(keys, ", "))
}

func (e *CollisionError) Unwrap() error {
	return ErrKeyCollision
}

// Merge copies src into dst under policy and reports the collisions it met.
//
// Fragments with the same text are never collisions, whatever their tags;
// the tag of the winning entry follows policy. Under [Strict], dst is left
// untouched when any collision is found and a *CollisionError is returned.
func Merge(dst, src KeyMap, policy CollisionPolicy) ([]Collision, error) {
	var collisions []Collision

	if policy == Strict {
		for _, key := range src.Keys() {
			if existing, ok := dst[key]; ok && existing.Content != src[key].Content {
				collisions = append(collisions, Collision{Key: key, Existing: existing, Incoming: src[key]})
			}
		}

		if len(collisions) > 0 {
			return collisions, &CollisionError{Collisions: collisions}
		}
	}

	for _, key := range src.Keys() {
		if c, collided := put(dst, key, src[key], policy); collided {
			collisions = append(collisions, c)
		}
	}

	return collisions, nil
}

// put stores entry under key following policy and reports a collision when
// key already holds a different fragment.
func put(m KeyMap, key string, entry Entry, policy CollisionPolicy) (Collision, bool) {
	existing, ok := m[key]
	if !ok {
		m[key] = entry

		return Collision{}, false
	}

	if policy != FirstWriteWins {
		m[key] = entry
	}

	if existing.Content == entry.Content {
		return Collision{}, false
	}

	return Collision{Key: key, Existing: existing, Incoming: entry}, true
}
