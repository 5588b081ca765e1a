// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package seo

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const headingSelector = "h1, h2, h3, h4, h5, h6"

func parseFragment(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return doc, nil
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// PlainText returns the text of an HTML fragment with entities decoded and
// whitespace collapsed.
func PlainText(html string) string {
	doc, err := parseFragment(html)
	if err != nil {
		return stripTags(html)
	}

	doc.Find("script, style").Remove()

	return collapseSpace(doc.Text())
}

// ExtractFAQs finds questions in an HTML body. A question is an h2, h3 or
// h4 whose text ends with "?"; its answer is the text of the elements that
// follow it up to the next heading.
func ExtractFAQs(html string) []FAQ {
	doc, err := parseFragment(html)
	if err != nil {
		return nil
	}

	var faqs []FAQ

	doc.Find("h2, h3, h4").Each(func(_ int, heading *goquery.Selection) {
		q := collapseSpace(heading.Text())
		if !strings.HasSuffix(q, "?") {
			return
		}

		var parts []string

		for _, text := range heading.NextUntil(headingSelector).Map(func(_ int, s *goquery.Selection) string {
			return collapseSpace(s.Text())
		}) {
			if text != "" {
				parts = append(parts, text)
			}
		}

		if len(parts) == 0 {
			return
		}

		faqs = append(faqs, FAQ{Question: q, Answer: strings.Join(parts, " ")})
	})

	return faqs
}

// FirstImage returns the src of the first image in an HTML body, or "".
func FirstImage(html string) string {
	doc, err := parseFragment(html)
	if err != nil {
		return ""
	}

	src, _ := doc.Find("img[src]").First().Attr("src")

	return src
}
