// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package seo

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const schemaContext = "https://schema.org"

// Schema types understood by ForType.
const (
	TypeWebPage             = "WebPage"
	TypeArticle             = "Article"
	TypeBlogPosting         = "BlogPosting"
	TypeNewsArticle         = "NewsArticle"
	TypeSoftwareApplication = "SoftwareApplication"
	TypeOrganization        = "Organization"
	TypeFAQPage             = "FAQPage"
)

// DefaultApplicationCategory is the category of tools without one.
const DefaultApplicationCategory = "WebApplication"

// PageData is the input of the JSON-LD generators.
type PageData struct {
	Title       string
	Description string
	URL         string
	Image       string

	DatePublished string
	DateModified  string
	Author        string

	// Category is the applicationCategory of a SoftwareApplication.
	Category string

	FAQs []FAQ
}

// FAQ is one question of a FAQPage.
type FAQ struct {
	Question string
	Answer   string
}

// Crumb is one item of a breadcrumb trail.
type Crumb struct {
	Name string
	URL  string
}

type thing struct {
	Context string `json:"@context,omitempty"`
	Type    string `json:"@type"`
}

type namedThing struct {
	thing

	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

type imageObject struct {
	thing

	URL string `json:"url"`
}

type organization struct {
	namedThing

	Logo   any      `json:"logo,omitempty"`
	SameAs []string `json:"sameAs,omitempty"`
}

type searchAction struct {
	thing

	Target     string `json:"target"`
	QueryInput string `json:"query-input"`
}

type webSite struct {
	namedThing

	PotentialAction searchAction `json:"potentialAction"`
}

type webPage struct {
	namedThing

	Description   string     `json:"description"`
	IsPartOf      namedThing `json:"isPartOf"`
	DatePublished string     `json:"datePublished,omitempty"`
	DateModified  string     `json:"dateModified,omitempty"`
}

type entityRef struct {
	thing

	ID string `json:"@id"`
}

type article struct {
	thing

	Headline         string       `json:"headline"`
	Description      string       `json:"description"`
	URL              string       `json:"url"`
	Image            string       `json:"image,omitempty"`
	DatePublished    string       `json:"datePublished"`
	DateModified     string       `json:"dateModified"`
	Author           namedThing   `json:"author"`
	Publisher        organization `json:"publisher"`
	MainEntityOfPage entityRef    `json:"mainEntityOfPage"`
}

type offer struct {
	thing

	Price         string `json:"price"`
	PriceCurrency string `json:"priceCurrency"`
}

type softwareApplication struct {
	namedThing

	Description         string `json:"description"`
	Image               string `json:"image,omitempty"`
	ApplicationCategory string `json:"applicationCategory"`
	OperatingSystem     string `json:"operatingSystem"`
	Offers              offer  `json:"offers"`
}

type question struct {
	thing

	Name           string `json:"name"`
	AcceptedAnswer struct {
		thing

		Text string `json:"text"`
	} `json:"acceptedAnswer"`
}

type faqPage struct {
	thing

	MainEntity []question `json:"mainEntity"`
}

type listItem struct {
	thing

	Position int    `json:"position"`
	Name     string `json:"name"`
	Item     string `json:"item"`
}

type breadcrumbList struct {
	thing

	ItemListElement []listItem `json:"itemListElement"`
}

func root(typ string) thing {
	return thing{Context: schemaContext, Type: typ}
}

func (s Site) logoURL() string {
	return s.URL + "/logo.png"
}

func (s Site) isPartOf() namedThing {
	return namedThing{thing: thing{Type: "WebSite"}, Name: s.Name, URL: s.URL}
}

// Organization describes the site owner.
func (s Site) Organization() any {
	return organization{
		namedThing: namedThing{thing: root(TypeOrganization), Name: s.Name, URL: s.URL},
		Logo:       s.logoURL(),
	}
}

// WebSite describes the site and its search action.
func (s Site) WebSite() any {
	return webSite{
		namedThing: namedThing{thing: root("WebSite"), Name: s.Name, URL: s.URL},
		PotentialAction: searchAction{
			thing:      thing{Type: "SearchAction"},
			Target:     s.URL + "/search?q={search_term_string}",
			QueryInput: "required name=search_term_string",
		},
	}
}

// WebPage describes a generic page.
func (s Site) WebPage(d PageData) any {
	return webPage{
		namedThing:    namedThing{thing: root(TypeWebPage), Name: d.Title, URL: d.URL},
		Description:   d.Description,
		IsPartOf:      s.isPartOf(),
		DatePublished: d.DatePublished,
		DateModified:  d.DateModified,
	}
}

// Article describes an article. typ is Article, BlogPosting or NewsArticle;
// anything else yields Article.
func (s Site) Article(typ string, d PageData) any {
	switch typ {
	case TypeBlogPosting, TypeNewsArticle:
	default:
		typ = TypeArticle
	}

	modified := d.DateModified
	if modified == "" {
		modified = d.DatePublished
	}

	return article{
		thing:         root(typ),
		Headline:      d.Title,
		Description:   d.Description,
		URL:           d.URL,
		Image:         d.Image,
		DatePublished: d.DatePublished,
		DateModified:  modified,
		Author:        namedThing{thing: thing{Type: "Person"}, Name: d.Author},
		Publisher: organization{
			namedThing: namedThing{thing: thing{Type: TypeOrganization}, Name: s.Name},
			Logo:       imageObject{thing: thing{Type: "ImageObject"}, URL: s.logoURL()},
		},
		MainEntityOfPage: entityRef{thing: thing{Type: TypeWebPage}, ID: d.URL},
	}
}

// Tool describes a free web application.
func (s Site) Tool(d PageData) any {
	category := d.Category
	if category == "" {
		category = DefaultApplicationCategory
	}

	return softwareApplication{
		namedThing:          namedThing{thing: root(TypeSoftwareApplication), Name: d.Title, URL: d.URL},
		Description:         d.Description,
		Image:               d.Image,
		ApplicationCategory: category,
		OperatingSystem:     "Any",
		Offers: offer{
			thing:         thing{Type: "Offer"},
			Price:         "0",
			PriceCurrency: "USD",
		},
	}
}

// FAQPage lists questions and their answers.
func FAQPage(faqs []FAQ) any {
	page := faqPage{thing: root(TypeFAQPage), MainEntity: make([]question, 0, len(faqs))}

	for _, faq := range faqs {
		q := question{thing: thing{Type: "Question"}, Name: faq.Question}
		q.AcceptedAnswer.Type = "Answer"
		q.AcceptedAnswer.Text = faq.Answer

		page.MainEntity = append(page.MainEntity, q)
	}

	return page
}

// Breadcrumbs describes a breadcrumb trail. Positions start at 1.
func Breadcrumbs(items []Crumb) any {
	list := breadcrumbList{thing: root("BreadcrumbList"), ItemListElement: make([]listItem, 0, len(items))}

	for i, item := range items {
		list.ItemListElement = append(list.ItemListElement, listItem{
			thing:    thing{Type: "ListItem"},
			Position: i + 1,
			Name:     item.Name,
			Item:     item.URL,
		})
	}

	return list
}

// ForType returns the JSON-LD document for a schema type set in WordPress.
// Unknown types yield a WebPage without dates.
func (s Site) ForType(typ string, d PageData) any {
	switch typ {
	case TypeArticle, TypeBlogPosting, TypeNewsArticle:
		return s.Article(typ, d)
	case TypeSoftwareApplication:
		return s.Tool(d)
	case TypeWebPage:
		return s.WebPage(d)
	case TypeOrganization:
		return s.Organization()
	case TypeFAQPage:
		return FAQPage(d.FAQs)
	default:
		return s.WebPage(PageData{Title: d.Title, Description: d.Description, URL: d.URL})
	}
}

// MarshalJSONLD encodes a JSON-LD document for a <script> element.
//
// HTML characters are escaped, so the output cannot close the element.
func MarshalJSONLD(doc any) (string, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(true)

	if err := enc.Encode(doc); err != nil {
		return "", fmt.Errorf("failed to encode JSON-LD: %w", err)
	}

	return string(bytes.TrimSpace(buf.Bytes())), nil
}
