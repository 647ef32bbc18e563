package scraper

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"costcurve/models"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

// Options selects per-query behavior shared by all adapters.
type Options struct {
	// UseBrowser routes render-capable sources through the headless
	// browser, trading latency for coverage of script-rendered pages.
	UseBrowser bool
}

// adapterState tracks one adapter invocation:
// start → fetching → {parsed | fetch failed} → extracting → done.
type adapterState int

const (
	stateStart adapterState = iota
	stateFetching
	stateParsed
	stateFetchFailed
	stateExtracting
	stateDone
)

func (s adapterState) String() string {
	switch s {
	case stateStart:
		return "start"
	case stateFetching:
		return "fetching"
	case stateParsed:
		return "parsed"
	case stateFetchFailed:
		return "fetch failed"
	case stateExtracting:
		return "extracting"
	case stateDone:
		return "done"
	}
	return "unknown"
}

// Adapter orchestrates one source end-to-end: request building, candidate
// location, field extraction and accessory filtering. Adapters are
// independent; a failure here surfaces as zero listings, never as a fatal
// error for the whole aggregation.
type Adapter struct {
	cfg      *SourceConfig
	fetcher  *Fetcher
	renderer Renderer
	limiter  *rate.Limiter
}

// NewAdapter wires a source config to the shared fetcher and optional
// renderer. Each adapter gets its own rate limiter so sources are throttled
// independently.
func NewAdapter(cfg *SourceConfig, fetcher *Fetcher, renderer Renderer, interval time.Duration) *Adapter {
	return &Adapter{
		cfg:      cfg,
		fetcher:  fetcher,
		renderer: renderer,
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Name returns the source's platform name.
func (a *Adapter) Name() string {
	return a.cfg.Name
}

// Search runs the full pipeline for one query against this source.
func (a *Adapter) Search(ctx context.Context, query string, opts Options) ([]models.Listing, error) {
	tag := strings.ToUpper(a.cfg.Name)
	state := stateStart

	if err := a.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait aborted: %w", err)
	}

	searchURL := a.cfg.SearchPageURL(query)
	log.Printf("🔍 [%s] Starting scrape for: %s", tag, query)
	log.Printf("🌐 [%s] Search URL: %s", tag, searchURL)

	state = stateFetching
	var doc *goquery.Document
	var err error
	if opts.UseBrowser && a.cfg.RenderCapable {
		if a.renderer == nil {
			log.Printf("⚠️ [%s] Headless browser requested but unavailable, skipping source", tag)
			return nil, nil
		}
		doc, err = a.renderer.Render(searchURL, a.cfg.Timeout)
	} else {
		doc, err = a.fetcher.Document(ctx, searchURL, a.cfg.Headers, a.cfg.Timeout)
	}
	if err != nil {
		state = stateFetchFailed
		log.Printf("⚠️ [%s] Ended in state %q: %v", tag, state, err)
		return nil, fmt.Errorf("fetch failed: %w", err)
	}
	state = stateParsed

	candidates := LocateCandidates(doc, a.cfg)
	if len(candidates) == 0 {
		log.Printf("⚠️ [%s] No product candidates found", tag)
		return nil, nil
	}

	state = stateExtracting
	var listings []models.Listing
	for idx, candidate := range candidates {
		listing, ok := a.extract(ctx, candidate)
		if !ok {
			log.Printf("❌ [%s] Skipped candidate #%d: no usable title", tag, idx+1)
			continue
		}
		if listing.HasPrice() && IsAccessory(listing.Title) {
			log.Printf("🚫 [%s] Filtered out accessory: %.50s", tag, listing.Title)
			continue
		}
		if listing.HasPrice() {
			log.Printf("✅ [%s] Added product: %.50s at ₹%d", tag, listing.Title, listing.Price)
		} else {
			log.Printf("✅ [%s] Added product with unknown price: %.50s", tag, listing.Title)
		}
		listings = append(listings, listing)
	}

	state = stateDone
	log.Printf("🎉 [%s] State %q with %d products", tag, state, len(listings))
	return listings, nil
}

// extract produces one Listing from a candidate, or false when the candidate
// has no usable title. A missed price keeps the listing with the fail
// sentinel and a Technical Issue flag.
func (a *Adapter) extract(ctx context.Context, candidate Candidate) (models.Listing, bool) {
	title := strings.TrimSpace(candidate.Title(a.cfg))
	if title == "" {
		return models.Listing{}, false
	}
	title = models.TruncateTitle(title)

	href, _ := candidate.Href(a.cfg)
	productURL := resolveURL(a.cfg.BaseURL, href)

	strategies := []PriceStrategy{selectorChainPrice(candidate.Root(), a.cfg)}
	if a.cfg.DetailPageFallback {
		// Network I/O stays last in the chain, bounded by its own timeout.
		strategies = append(strategies, detailPagePrice(a.fetcher, a.cfg, productURL))
	}
	price := evalPriceStrategies(ctx, strategies)

	availability := models.AvailabilityInStock
	if price == models.PriceUnknown {
		availability = models.AvailabilityTechnicalIssue
	}

	return models.Listing{
		Platform:     a.cfg.Name,
		Title:        title,
		Price:        price,
		URL:          productURL,
		Image:        extractImage(candidate.Root(), a.cfg),
		Currency:     "INR",
		Availability: availability,
	}, true
}
