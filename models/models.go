package models

import (
	"strings"
	"time"
)

// Availability describes whether a listing's price could actually be read.
type Availability string

const (
	AvailabilityInStock        Availability = "In Stock"
	AvailabilityTechnicalIssue Availability = "Technical Issue"
)

// PriceUnknown is the internal sentinel for "extraction attempted but failed".
// It is never serialized directly; formatted output carries 0 plus the
// Technical Issue availability flag instead.
const PriceUnknown = -1

// MaxTitleLength caps listing titles, in characters, before they leave the
// scraper.
const MaxTitleLength = 100

// TruncateTitle caps a title at MaxTitleLength characters. Cutting happens
// on rune boundaries so a multi-byte character straddling the limit is
// dropped whole rather than split into invalid UTF-8.
func TruncateTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= MaxTitleLength {
		return title
	}
	return string(runes[:MaxTitleLength])
}

// Listing is one normalized product record extracted from a source.
// Platform, Title, Price, URL, Image, Currency and Availability are
// extraction-sourced; presentation values live in Presentation and are
// attached separately by the aggregator.
type Listing struct {
	Platform     string       `json:"platform"`
	Title        string       `json:"title"`
	Price        int          `json:"price"`
	URL          string       `json:"url"`
	Image        string       `json:"image"`
	Currency     string       `json:"currency"`
	Availability Availability `json:"availability"`
}

// HasPrice returns true if the listing carries a genuinely extracted price.
func (l *Listing) HasPrice() bool {
	return l.Price > 0
}

// DedupKey returns the normalized title prefix used to merge equivalent
// listings across sources.
func (l *Listing) DedupKey() string {
	key := []rune(l.Title)
	if len(key) > 50 {
		key = key[:50]
	}
	return strings.ToLower(string(key))
}

// Presentation holds the synthetic deal annotations attached for display.
// These are placeholders, not scraped data, and must stay distinguishable
// from the extraction-sourced Listing fields.
type Presentation struct {
	DealScore int     `json:"dealScore"`
	Shipping  string  `json:"shipping"`
	Rating    float64 `json:"rating"`
	Reviews   int     `json:"reviews"`
}

// Product is the annotated output record sent to clients.
type Product struct {
	ID           int          `json:"id"`
	Title        string       `json:"title"`
	Price        int          `json:"price"`
	Platform     string       `json:"platform"`
	URL          *string      `json:"url"`
	Image        *string      `json:"image"`
	Currency     string       `json:"currency"`
	Availability Availability `json:"availability"`
	Presentation
}

// SearchResponse is the envelope returned by the search endpoints.
type SearchResponse struct {
	Success      bool      `json:"success"`
	Query        string    `json:"query"`
	ResultsCount int       `json:"resultsCount"`
	Products     []Product `json:"products"`
	Timestamp    time.Time `json:"timestamp"`
}

// SearchRequest is the POST body accepted by /api/v1/search.
type SearchRequest struct {
	Query   string        `json:"query"`
	Filters SearchFilters `json:"filters"`
}

// SearchFilters narrows search output after aggregation.
type SearchFilters struct {
	Budget int  `json:"budget"`
	Render bool `json:"render"`
}
