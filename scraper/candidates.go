package scraper

import (
	"log"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Candidate is an unvalidated reference to one possible product listing
// inside a parsed search-results document. Candidates are created during one
// scan and consumed immediately by field extraction.
type Candidate interface {
	// Root returns the selection field extraction is scoped to.
	Root() *goquery.Selection
	// Title runs the candidate's title fallback chain.
	Title(cfg *SourceConfig) string
	// Href returns the candidate's product link, if any.
	Href(cfg *SourceConfig) (string, bool)
}

// ContainerCandidate wraps a listing-container element matched by one of the
// source's structural selectors.
type ContainerCandidate struct {
	sel *goquery.Selection
}

// LinkCandidate wraps a product anchor found by the link-pattern fallback.
type LinkCandidate struct {
	sel *goquery.Selection
}

// LocateCandidates scans a search-results document for listing candidates.
// Structural selectors are tried in order and the first that matches wins;
// otherwise every anchor is checked against the source's product-link
// patterns. Zero candidates is a normal outcome, not an error.
func LocateCandidates(doc *goquery.Document, cfg *SourceConfig) []Candidate {
	for _, selector := range cfg.ContainerSelectors {
		found := doc.Find(selector)
		if found.Length() == 0 {
			continue
		}
		var candidates []Candidate
		found.EachWithBreak(func(i int, s *goquery.Selection) bool {
			if i >= cfg.MaxCandidates {
				return false
			}
			candidates = append(candidates, &ContainerCandidate{sel: s})
			return true
		})
		log.Printf("🎯 [%s] Found %d product containers with selector %q", strings.ToUpper(cfg.Name), len(candidates), selector)
		return candidates
	}

	var candidates []Candidate
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		if !matchesLinkPattern(href, cfg.LinkPatterns) {
			return true
		}
		// Meaningful product links carry either visible text or an image;
		// bare navigation and ad anchors carry neither.
		text := strings.TrimSpace(s.Text())
		if len(text) <= 10 && s.Find("img").Length() == 0 {
			return true
		}
		candidates = append(candidates, &LinkCandidate{sel: s})
		return len(candidates) < cfg.MaxLinkCandidates
	})
	if len(candidates) > 0 {
		log.Printf("🔗 [%s] Found %d product links via href patterns", strings.ToUpper(cfg.Name), len(candidates))
	}
	return candidates
}

func matchesLinkPattern(href string, patterns []string) bool {
	for _, pattern := range patterns {
		if strings.Contains(href, pattern) {
			return true
		}
	}
	return false
}

func (c *ContainerCandidate) Root() *goquery.Selection {
	return c.sel
}

// Title tries the source's structural title selectors in order, accepting the
// first match with a meaningful length. Sponsored placeholders are skipped.
func (c *ContainerCandidate) Title(cfg *SourceConfig) string {
	for _, selector := range cfg.TitleSelectors {
		elem := c.sel.Find(selector).First()
		if elem.Length() == 0 {
			continue
		}
		title := strings.TrimSpace(elem.Text())
		if title == "" {
			title = strings.TrimSpace(elem.AttrOr("title", ""))
		}
		if len(title) <= 3 || isAdPlaceholder(title) {
			continue
		}
		return title
	}
	return ""
}

func (c *ContainerCandidate) Href(cfg *SourceConfig) (string, bool) {
	link := c.sel.Find(cfg.LinkSelector).First()
	if link.Length() == 0 {
		return "", false
	}
	href, ok := link.Attr("href")
	return href, ok && href != ""
}

func (c *LinkCandidate) Root() *goquery.Selection {
	return c.sel
}

// Title falls back through the anchor text, the embedded image's alt/title
// attributes, a readable name reconstructed from the URL slug, and finally
// the anchor's nested text nodes.
func (c *LinkCandidate) Title(cfg *SourceConfig) string {
	title := strings.TrimSpace(c.sel.Text())
	if len(title) >= 10 {
		return title
	}

	if img := c.sel.Find("img").First(); img.Length() > 0 {
		alt := strings.TrimSpace(img.AttrOr("alt", ""))
		if alt == "" {
			alt = strings.TrimSpace(img.AttrOr("title", ""))
		}
		if len(alt) >= 10 {
			return alt
		}
	}

	if href, ok := c.sel.Attr("href"); ok {
		if slug := titleFromSlug(href); slug != "" {
			return slug
		}
	}

	if nested := nestedText(c.sel); len(nested) > len(title) {
		return nested
	}
	return title
}

func (c *LinkCandidate) Href(cfg *SourceConfig) (string, bool) {
	href, ok := c.sel.Attr("href")
	return href, ok && href != ""
}

// titleFromSlug reconstructs a readable product name from a URL path segment
// like /apple-iphone-14-blue-128-gb/p/itm..., replacing separators with
// spaces and title-casing each word.
func titleFromSlug(href string) string {
	for _, part := range strings.Split(href, "/") {
		if len(part) <= 15 || !strings.Contains(part, "-") {
			continue
		}
		if part == "p" || strings.Contains(part, "pid") || strings.Contains(part, "lid") || strings.HasPrefix(part, "itm") {
			continue
		}
		return titleCase(strings.ReplaceAll(part, "-", " "))
	}
	return ""
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		if word[0] >= 'a' && word[0] <= 'z' {
			words[i] = string(word[0]-'a'+'A') + word[1:]
		}
	}
	return strings.Join(words, " ")
}

// nestedText joins the first few meaningful text nodes under a selection,
// skipping bare digits (prices, counts).
func nestedText(s *goquery.Selection) string {
	var parts []string
	collectText(s, &parts)
	if len(parts) > 3 {
		parts = parts[:3]
	}
	return strings.Join(parts, " ")
}

func collectText(s *goquery.Selection, parts *[]string) {
	s.Contents().Each(func(_ int, child *goquery.Selection) {
		if len(*parts) >= 3 {
			return
		}
		if goquery.NodeName(child) == "#text" {
			text := strings.TrimSpace(child.Text())
			if len(text) > 3 && !isAllDigits(text) {
				*parts = append(*parts, text)
			}
			return
		}
		collectText(child, parts)
	})
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

func isAdPlaceholder(title string) bool {
	switch strings.ToLower(title) {
	case "sponsored", "advertisement", "ad":
		return true
	}
	return false
}
