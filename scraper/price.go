package scraper

import (
	"context"
	"log"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"costcurve/models"

	"github.com/PuerkitoBio/goquery"
)

var (
	// First digit run, thousands separators included. Fractional paise are
	// truncated by construction: the match stops at the decimal point,
	// matching the whole-rupee display convention of the source sites.
	digitRun = regexp.MustCompile(`[0-9][0-9,]*`)

	// Currency-prefixed amounts for free-text scanning.
	rupeePrefixed = regexp.MustCompile(`₹\s*([0-9][0-9,]*)`)

	// Script-embedded state blobs on client-rendered detail pages.
	embeddedPrice = regexp.MustCompile(`"price"\s*:\s*"?([0-9]+)`)
)

// ParseRupees extracts the first currency-prefixed numeric run from a price
// fragment and parses it as whole rupees.
func ParseRupees(text string) (int, bool) {
	cleaned := strings.NewReplacer("Rs.", "", "₹", "").Replace(text)
	run := digitRun.FindString(cleaned)
	if run == "" {
		return 0, false
	}
	value, err := strconv.Atoi(strings.ReplaceAll(run, ",", ""))
	if err != nil || value <= 0 {
		return 0, false
	}
	return value, true
}

// PriceStrategy is one attempt at pricing a candidate. Strategies are
// evaluated in order; the I/O-performing detail-page strategy always sits
// last in the chain.
type PriceStrategy func(ctx context.Context) (int, bool)

// evalPriceStrategies runs the chain and returns the fail sentinel when every
// strategy misses. A listing with a known title but unknown price is still
// reported, flagged, rather than dropped.
func evalPriceStrategies(ctx context.Context, strategies []PriceStrategy) int {
	for _, strategy := range strategies {
		if price, ok := strategy(ctx); ok {
			return price
		}
	}
	return models.PriceUnknown
}

// selectorChainPrice prices a candidate from its own markup: the first
// price-bearing element in the source's selector chain wins.
func selectorChainPrice(root *goquery.Selection, cfg *SourceConfig) PriceStrategy {
	return func(ctx context.Context) (int, bool) {
		for _, selector := range cfg.PriceSelectors {
			found := false
			price := 0
			root.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
				if value, ok := ParseRupees(strings.TrimSpace(s.Text())); ok {
					price = value
					found = true
					return false
				}
				return true
			})
			if found {
				return price, true
			}
		}
		return 0, false
	}
}

// detailPagePrice fetches the listing's own detail page and re-runs price
// extraction there: the source's detail selector first, then the embedded
// state blob, then a plain currency scan constrained to the plausible range.
func detailPagePrice(fetcher *Fetcher, cfg *SourceConfig, detailURL string) PriceStrategy {
	return func(ctx context.Context) (int, bool) {
		if detailURL == "" {
			return 0, false
		}
		log.Printf("🔗 [%s] Visiting product page for price: %.80s", strings.ToUpper(cfg.Name), detailURL)

		doc, err := fetcher.Document(ctx, detailURL, cfg.Headers, cfg.DetailTimeout)
		if err != nil {
			log.Printf("⚠️ [%s] Could not fetch product page: %v", strings.ToUpper(cfg.Name), err)
			return 0, false
		}

		var found []int
		if cfg.DetailPriceSelector != "" {
			doc.Find(cfg.DetailPriceSelector).Each(func(_ int, s *goquery.Selection) {
				if value, ok := ParseRupees(strings.TrimSpace(s.Text())); ok && cfg.PricePolicy.plausible(value) {
					found = append(found, value)
				}
			})
		}

		if len(found) == 0 {
			if html, err := doc.Html(); err == nil {
				for _, match := range embeddedPrice.FindAllStringSubmatch(html, -1) {
					if value, err := strconv.Atoi(match[1]); err == nil && cfg.PricePolicy.plausible(value) {
						found = append(found, value)
					}
				}
			}
		}

		if len(found) == 0 {
			for _, match := range rupeePrefixed.FindAllStringSubmatch(doc.Text(), -1) {
				if value, ok := ParseRupees(match[1]); ok && cfg.PricePolicy.plausible(value) {
					found = append(found, value)
				}
			}
		}

		if len(found) == 0 {
			return 0, false
		}
		price := cfg.PricePolicy.choose(found)
		log.Printf("💵 [%s] Detail-page price: ₹%d (from %d candidates)", strings.ToUpper(cfg.Name), price, len(found))
		return price, true
	}
}

func (p PricePolicy) plausible(value int) bool {
	return value >= p.Min && value <= p.Max
}

// choose resolves ties between several plausible prices: the lowest price at
// or above the preferred floor, else the lowest.
func (p PricePolicy) choose(prices []int) int {
	unique := make([]int, 0, len(prices))
	seen := make(map[int]struct{}, len(prices))
	for _, value := range prices {
		if _, ok := seen[value]; !ok {
			seen[value] = struct{}{}
			unique = append(unique, value)
		}
	}
	sort.Ints(unique)
	for _, value := range unique {
		if value >= p.PreferredFloor {
			return value
		}
	}
	return unique[0]
}
