package scraper

import (
	"fmt"
	"net/url"
	"regexp"
	"time"
)

// PricePolicy constrains which numeric runs on a detail page count as a
// plausible price, and how ties between several plausible prices resolve.
// Values outside [Min, Max] are rejected (partial/EMI amounts below,
// unrelated page content above). When several survive, the lowest price at
// or above PreferredFloor wins; if none reaches the floor, the lowest wins.
type PricePolicy struct {
	Min            int
	Max            int
	PreferredFloor int
}

// DefaultPricePolicy mirrors the ranges observed to work for electronics
// search results on Indian storefronts.
var DefaultPricePolicy = PricePolicy{Min: 1000, Max: 50000, PreferredFloor: 5000}

// SourceConfig is the static per-site configuration. Defined once at startup
// and shared read-only across queries.
type SourceConfig struct {
	Name      string
	SearchURL string // format string taking the escaped query
	BaseURL   string
	Headers   map[string]string

	// Candidate location: structural selectors tried in order, then the
	// link-pattern fallback over every anchor on the page.
	ContainerSelectors []string
	LinkPatterns       []string
	MaxCandidates      int
	MaxLinkCandidates  int

	// Field extraction chains, scoped to one candidate.
	TitleSelectors []string
	PriceSelectors []string
	LinkSelector   string
	ImageSelector  string
	ImageCDN       *regexp.Regexp

	// Detail-page price fallback, for sources that defer pricing to
	// client-side rendering on the search page.
	DetailPageFallback  bool
	DetailPriceSelector string
	PricePolicy         PricePolicy

	// RenderCapable marks sources worth routing through the headless
	// browser when the caller opts in.
	RenderCapable bool

	Timeout       time.Duration
	DetailTimeout time.Duration
}

// SearchPageURL builds the search-results URL for a query.
func (c *SourceConfig) SearchPageURL(query string) string {
	return fmt.Sprintf(c.SearchURL, url.QueryEscape(query))
}

var mobileHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (iPhone; CPU iPhone OS 15_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/15.0 Mobile/15E148 Safari/604.1",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.5",
	"DNT":             "1",
	"Connection":      "keep-alive",
}

var desktopHeaders = map[string]string{
	"User-Agent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
}

// DefaultSources returns the supported storefronts in priority order:
// larger, more reliable sources first. The order also decides dedup
// precedence in the aggregator.
func DefaultSources() []*SourceConfig {
	return []*SourceConfig{
		{
			Name:      "Amazon",
			SearchURL: "https://www.amazon.in/s?k=%s&ref=sr_pg_1",
			BaseURL:   "https://www.amazon.in",
			Headers:   mobileHeaders,
			ContainerSelectors: []string{
				`[data-component-type="s-search-result"]`,
				".s-result-item",
				"[data-asin]",
			},
			LinkPatterns:      []string{"/dp/"},
			MaxCandidates:     5,
			MaxLinkCandidates: 8,
			TitleSelectors: []string{
				"h2 a span",
				".a-size-medium span",
				`[data-cy="title-recipe-title"]`,
				"h2 span",
				".a-text-normal",
			},
			PriceSelectors: []string{
				".a-price-whole",
				".a-price .a-offscreen",
			},
			LinkSelector:  "h2 a, .a-link-normal",
			ImageSelector: "img.s-image, img.a-dynamic-image, img",
			ImageCDN:      regexp.MustCompile(`https://m\.media-amazon\.com/images/[^\s"']+`),
			PricePolicy:   DefaultPricePolicy,
			Timeout:       10 * time.Second,
			DetailTimeout: 8 * time.Second,
		},
		{
			Name:      "Flipkart",
			SearchURL: "https://www.flipkart.com/search?q=%s",
			BaseURL:   "https://www.flipkart.com",
			Headers:   mobileHeaders,
			ContainerSelectors: []string{
				"[data-id]",
				"._1AtVbE",
				"._2kHMtA",
				"._13oc-S",
				"[data-tkid]",
				"._1fQZEK",
				".cPHDOP",
			},
			LinkPatterns:      []string{"/p/", "pid=", "/dp/"},
			MaxCandidates:     5,
			MaxLinkCandidates: 8,
			TitleSelectors: []string{
				"._4rR01T",
				".s1Q9rs",
				"._2WkVRV",
				".IRpwTa",
				"a[title]",
				".KzDlHZ",
				".wjcEIp",
			},
			PriceSelectors: []string{
				`[class*="Nx9bqj"]`,
				"._30jeq3",
			},
			LinkSelector:        "a[href]",
			ImageSelector:       "img",
			ImageCDN:            regexp.MustCompile(`https://rukminim\d?\.flixcart\.com/[^\s"']+`),
			DetailPageFallback:  true,
			DetailPriceSelector: `[class*="Nx9bqj"]`,
			PricePolicy:         DefaultPricePolicy,
			RenderCapable:       true,
			Timeout:             10 * time.Second,
			DetailTimeout:       8 * time.Second,
		},
		{
			Name:      "Naaptol",
			SearchURL: "https://www.naaptol.com/search.html?q=%s",
			BaseURL:   "https://www.naaptol.com",
			Headers:   desktopHeaders,
			ContainerSelectors: []string{
				"div.item",
				"div.productItem",
			},
			LinkPatterns:      []string{"/product/"},
			MaxCandidates:     3,
			MaxLinkCandidates: 5,
			TitleSelectors: []string{
				"h2",
				"a.prod_name",
				"span.catProductTitle",
			},
			PriceSelectors: []string{
				"span.offer-price",
				"span.price",
				"div.price",
			},
			LinkSelector:  "a[href]",
			ImageSelector: "img",
			PricePolicy:   DefaultPricePolicy,
			Timeout:       15 * time.Second,
			DetailTimeout: 8 * time.Second,
		},
		{
			Name:      "Shopsy",
			SearchURL: "https://shopsy.in/search?q=%s",
			BaseURL:   "https://shopsy.in",
			Headers:   desktopHeaders,
			ContainerSelectors: []string{
				"div._2kHMta",
				"div._13oc-S",
				"div._1AtVbE",
			},
			LinkPatterns:      []string{"/p/", "pid="},
			MaxCandidates:     3,
			MaxLinkCandidates: 5,
			TitleSelectors: []string{
				"a.IRpwTa",
				"div._4rR01T",
				"a.s1Q9rs",
			},
			PriceSelectors: []string{
				"div._30jeq3",
				"div._1_WHN1",
				"div._25b18c",
			},
			LinkSelector:  "a[href]",
			ImageSelector: "img",
			ImageCDN:      regexp.MustCompile(`https://rukminim\d?\.flixcart\.com/[^\s"']+`),
			PricePolicy:   DefaultPricePolicy,
			RenderCapable: true,
			Timeout:       15 * time.Second,
			DetailTimeout: 8 * time.Second,
		},
		{
			Name:      "Snapdeal",
			SearchURL: "https://www.snapdeal.com/search?keyword=%s",
			BaseURL:   "https://www.snapdeal.com",
			Headers:   desktopHeaders,
			ContainerSelectors: []string{
				"div.product-tuple-listing",
			},
			LinkPatterns:      []string{"/product/"},
			MaxCandidates:     3,
			MaxLinkCandidates: 5,
			TitleSelectors: []string{
				"p.product-title",
			},
			PriceSelectors: []string{
				"span.product-price",
			},
			LinkSelector:  "a[href]",
			ImageSelector: "img.product-image, img",
			PricePolicy:   DefaultPricePolicy,
			Timeout:       15 * time.Second,
			DetailTimeout: 8 * time.Second,
		},
	}
}
