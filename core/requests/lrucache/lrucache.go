// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package lrucache provides a thread-safe, fixed-capacity least-recently-used (LRU) cache
of byte slices.

Every entry carries a tag (typically the URL or path it was produced for) and an
optional expiry. Entries can be removed in bulk by tag prefix, which is how
content revalidation drops everything derived from one resource. When created
with compression enabled via [NewLRUCache], values are stored zstd-compressed
whenever that saves space and are transparently decompressed by [LRUCache.Get].
*/
package lrucache

import (
	"container/list"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

var ErrInvalidSize = errors.New("must provide a positive size")

// LRUCache is a fixed-capacity, least-recently-used cache that is safe for concurrent use.
// Instances must be constructed with [NewLRUCache]; the zero value is not ready for use.
type LRUCache struct {
	size      int
	evictList *list.List
	items     map[string]*list.Element
	lock      sync.Mutex

	// Reusable block encoder and decoder; nil when compression is off.
	zstdEnc *zstd.Encoder
	zstdDec *zstd.Decoder

	now func() time.Time
}

type cacheEntry struct {
	key        string
	tag        string
	value      []byte
	compressed bool
	expiresAt  time.Time // zero means no expiry
}

// NewLRUCache creates a new cache holding at most size entries.
//
// It returns an error if size is not a positive integer.
func NewLRUCache(size int, compress bool) (*LRUCache, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}

	c := &LRUCache{
		size:      size,
		evictList: list.New(),
		items:     make(map[string]*list.Element),
		now:       time.Now,
	}

	if compress {
		// A nil writer/reader lets us use EncodeAll/DecodeAll without streams.
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, err
		}

		dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
		if err != nil {
			return nil, err
		}

		c.zstdEnc = enc
		c.zstdDec = dec
	}

	return c, nil
}

// Add stores value under key, replacing any previous entry, and makes it the
// most recently used. A ttl of zero or less means the entry never expires.
//
// Add reports whether an older entry was evicted to make room.
func (c *LRUCache) Add(key, tag string, value []byte, ttl time.Duration) bool {
	stored, compressed := c.encode(value)

	entry := &cacheEntry{
		key:        key,
		tag:        tag,
		value:      stored,
		compressed: compressed,
	}

	if ttl > 0 {
		entry.expiresAt = c.now().Add(ttl)
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	if ent, ok := c.items[key]; ok {
		ent.Value = entry
		c.evictList.MoveToFront(ent)

		return false
	}

	c.items[key] = c.evictList.PushFront(entry)

	if c.evictList.Len() <= c.size {
		return false
	}

	c.removeElement(c.evictList.Back())

	return true
}

// Get returns a copy of the value stored under key and marks it as most
// recently used. Expired entries are removed and reported as missing.
func (c *LRUCache) Get(key string) ([]byte, bool) {
	c.lock.Lock()

	ent, ok := c.items[key]
	if !ok {
		c.lock.Unlock()

		return nil, false
	}

	entry, _ := ent.Value.(*cacheEntry)
	if c.expired(entry) {
		c.removeElement(ent)
		c.lock.Unlock()

		return nil, false
	}

	c.evictList.MoveToFront(ent)
	c.lock.Unlock()

	return c.decode(entry)
}

// Remove deletes the entry associated with key and reports whether it was present.
func (c *LRUCache) Remove(key string) bool {
	c.lock.Lock()
	defer c.lock.Unlock()

	ent, ok := c.items[key]
	if ok {
		c.removeElement(ent)
	}

	return ok
}

// RemoveTagPrefixes deletes every entry whose tag starts with one of
// prefixes and returns the removed tags, oldest first.
func (c *LRUCache) RemoveTagPrefixes(prefixes ...string) []string {
	if len(prefixes) == 0 {
		return nil
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	var removed []string

	for ent := c.evictList.Back(); ent != nil; {
		prev := ent.Prev()

		entry, _ := ent.Value.(*cacheEntry)
		for _, prefix := range prefixes {
			if strings.HasPrefix(entry.tag, prefix) {
				removed = append(removed, entry.tag)
				c.removeElement(ent)

				break
			}
		}

		ent = prev
	}

	return removed
}

// Keys returns the keys in the cache, from the oldest to the newest.
func (c *LRUCache) Keys() []string {
	c.lock.Lock()
	defer c.lock.Unlock()

	keys := make([]string, 0, len(c.items))
	for ent := c.evictList.Back(); ent != nil; ent = ent.Prev() {
		keys = append(keys, ent.Value.(*cacheEntry).key) //nolint:forcetypeassert
	}

	return keys
}

// Len returns the current number of items in the cache, expired ones included.
func (c *LRUCache) Len() int {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.evictList.Len()
}

func (c *LRUCache) expired(entry *cacheEntry) bool {
	return !entry.expiresAt.IsZero() && !c.now().Before(entry.expiresAt)
}

func (c *LRUCache) removeElement(e *list.Element) {
	c.evictList.Remove(e)

	if entry, ok := e.Value.(*cacheEntry); ok {
		delete(c.items, entry.key)
	}
}

// encode copies value, compressing it when enabled and worthwhile. It does not
// need the lock: zstd encoders support concurrent EncodeAll calls.
func (c *LRUCache) encode(value []byte) ([]byte, bool) {
	if c.zstdEnc != nil && len(value) > 0 {
		if compressed := c.zstdEnc.EncodeAll(value, nil); len(compressed) < len(value) {
			return compressed, true
		}
	}

	return append([]byte(nil), value...), false
}

// decode returns a caller-owned copy of the entry's value. A value that fails
// to decompress is reported as missing.
func (c *LRUCache) decode(entry *cacheEntry) ([]byte, bool) {
	if !entry.compressed {
		return append([]byte(nil), entry.value...), true
	}

	decoded, err := c.zstdDec.DecodeAll(entry.value, nil)
	if err != nil {
		return nil, false
	}

	return decoded, true
}
