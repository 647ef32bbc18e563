package scraper

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// extractorFunc is one link in a fallback chain: it returns a value or ""
// when its strategy does not apply.
type extractorFunc func() string

// firstOf evaluates extractors in order and returns the first non-empty
// result.
func firstOf(extractors ...extractorFunc) string {
	for _, extract := range extractors {
		if value := extract(); value != "" {
			return value
		}
	}
	return ""
}

// resolveURL turns a possibly-relative href into an absolute URL against the
// source's base.
func resolveURL(base, href string) string {
	if href == "" {
		return ""
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return baseURL.ResolveReference(ref).String()
}

// lazyImageAttrs are the attributes lazy-loading storefronts stash the real
// image URL in while src holds a placeholder.
var lazyImageAttrs = []string{"src", "data-src", "data-image-src", "data-lazy", "data-original", "data-old-hires"}

// extractImage runs the image fallback chain over a candidate: primary and
// lazy-load attributes, the highest-resolution srcset entry, and finally a
// scan of the raw markup for the source's CDN URL pattern.
func extractImage(root *goquery.Selection, cfg *SourceConfig) string {
	img := root.Find(cfg.ImageSelector).First()

	image := firstOf(
		func() string {
			if img.Length() == 0 {
				return ""
			}
			for _, attr := range lazyImageAttrs {
				if value, ok := img.Attr(attr); ok && !isPlaceholderImage(value) {
					return value
				}
			}
			return ""
		},
		func() string {
			if img.Length() == 0 {
				return ""
			}
			return bestSrcsetEntry(img.AttrOr("srcset", img.AttrOr("data-srcset", "")))
		},
		func() string {
			if cfg.ImageCDN == nil {
				return ""
			}
			html, err := root.Html()
			if err != nil {
				return ""
			}
			return cfg.ImageCDN.FindString(html)
		},
	)

	if image == "" || isPlaceholderImage(image) {
		return ""
	}
	return resolveURL(cfg.BaseURL, image)
}

// bestSrcsetEntry parses a srcset attribute and returns the entry with the
// largest width or density descriptor.
func bestSrcsetEntry(srcset string) string {
	best := ""
	bestScore := -1.0
	for _, entry := range strings.Split(srcset, ",") {
		fields := strings.Fields(strings.TrimSpace(entry))
		if len(fields) == 0 {
			continue
		}
		candidate := fields[0]
		if isPlaceholderImage(candidate) {
			continue
		}
		score := 1.0
		if len(fields) > 1 {
			descriptor := fields[1]
			numeric := strings.TrimRight(descriptor, "wx")
			if value, err := strconv.ParseFloat(numeric, 64); err == nil {
				score = value
				// Width descriptors dwarf density descriptors; that is
				// fine, wider is what we want anyway.
			}
		}
		if score > bestScore {
			bestScore = score
			best = candidate
		}
	}
	return best
}

var placeholderMarkers = []string{"placeholder", "sprite", "transparent", "grey-pixel", "blank.gif", "data:image"}

func isPlaceholderImage(src string) bool {
	if src == "" {
		return true
	}
	lower := strings.ToLower(src)
	for _, marker := range placeholderMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
