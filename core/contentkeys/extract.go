// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package contentkeys

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/net/html"
)

// MinFragmentLength is the minimum length in bytes of a trimmed fragment
// for it to become a key.
const MinFragmentLength = 3

// fragmentCutset matches the characters PHP's trim() removes, which is what
// the authoring side has always used. Non-breaking spaces are kept.
const fragmentCutset = " \t\n\r\x00\x0b"

type tagPattern struct {
	tag string
	re  *regexp.Regexp
}

// tagPatterns lists the scanned elements in priority order. Later entries
// win key collisions under [LastWriteWins].
var tagPatterns = []tagPattern{
	{"h1", regexp.MustCompile(`(?is)<h1[^>]*>(.*?)</h1>`)},
	{"h2", regexp.MustCompile(`(?is)<h2[^>]*>(.*?)</h2>`)},
	{"h3", regexp.MustCompile(`(?is)<h3[^>]*>(.*?)</h3>`)},
	{"h4", regexp.MustCompile(`(?is)<h4[^>]*>(.*?)</h4>`)},
	{"h5", regexp.MustCompile(`(?is)<h5[^>]*>(.*?)</h5>`)},
	{"h6", regexp.MustCompile(`(?is)<h6[^>]*>(.*?)</h6>`)},
	{"p", regexp.MustCompile(`(?is)<p[^>]*>(.*?)</p>`)},
	{"li", regexp.MustCompile(`(?is)<li[^>]*>(.*?)</li>`)},
	{"span", regexp.MustCompile(`(?is)<span[^>]*data-key[^>]*>(.*?)</span>`)},
}

// Extractor derives a KeyMap from raw HTML.
//
// The zero value uses [LastWriteWins] and does not log.
type Extractor struct {
	// Policy decides what happens when two fragments normalize to the same key.
	Policy CollisionPolicy

	// OnCollision, if set, is called for every collision regardless of Policy.
	OnCollision func(Collision)

	Logger zerolog.Logger
}

// Extract scans html with the default extractor.
func Extract(html string) KeyMap {
	// LastWriteWins never fails.
	m, _ := (&Extractor{}).Extract(html)

	return m
}

// Extract scans html for h1-h6, p, li and span[data-key] elements and returns
// one entry per distinct key.
//
// Malformed markup never fails extraction; it only yields fewer fragments.
// The only error is a *CollisionError under the [Strict] policy, in which case
// the returned map is nil.
func (e *Extractor) Extract(html string) (KeyMap, error) {
	keys := make(KeyMap)

	var collisions []Collision

	for _, p := range tagPatterns {
		for _, match := range p.re.FindAllStringSubmatch(html, -1) {
			text := strings.Trim(StripTags(match[1]), fragmentCutset)
			if len(text) < MinFragmentLength {
				continue
			}

			key := Normalize(text)
			if key == "" {
				// Nothing alphanumeric survived, e.g. "???".
				continue
			}

			c, collided := put(keys, key, Entry{Tag: p.tag, Content: text}, e.Policy)
			if !collided {
				continue
			}

			e.Logger.Debug().
				Str("key", key).
				Str("existing_tag", c.Existing.Tag).
				Str("incoming_tag", c.Incoming.Tag).
				Stringer("policy", e.Policy).
				Msg("Translation key collision")

			if e.OnCollision != nil {
				e.OnCollision(c)
			}

			collisions = append(collisions, c)
		}
	}

	if e.Policy == Strict && len(collisions) > 0 {
		return nil, &CollisionError{Collisions: collisions}
	}

	return keys, nil
}

// StripTags returns the text of an HTML fragment with all markup and comments
// removed. Character references are left as written, so the result can be
// found again verbatim in the source HTML.
func StripTags(fragment string) string {
	if !strings.ContainsRune(fragment, '<') {
		return fragment
	}

	var b strings.Builder

	z := html.NewTokenizer(strings.NewReader(fragment))

	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or a tokenizer error; either way we are done.
			return b.String()
		case html.TextToken:
			b.Write(z.Raw())
		default:
		}
	}
}
