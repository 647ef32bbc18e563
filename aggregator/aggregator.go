package aggregator

import (
	"context"
	"log"
	"math"
	"math/rand"
	"time"

	"costcurve/models"
	"costcurve/scraper"

	"golang.org/x/sync/errgroup"
)

// MaxResults caps the merged output across all sources.
const MaxResults = 6

// freeShippingThreshold is the price above which shipping shows as free.
const freeShippingThreshold = 500

// Query carries one aggregation request.
type Query struct {
	Text   string
	Budget int // rupees, 0 disables the cap
	Render bool
}

// Aggregator fans a query out to every source adapter and merges the
// results in source priority order.
type Aggregator struct {
	adapters     []*scraper.Adapter
	maxParallel  int
	queryTimeout time.Duration
}

// New builds an aggregator. Adapter order is significant: earlier sources
// win deduplication ties and fill the result cap first.
func New(adapters []*scraper.Adapter, maxParallel int, queryTimeout time.Duration) *Aggregator {
	return &Aggregator{
		adapters:     adapters,
		maxParallel:  maxParallel,
		queryTimeout: queryTimeout,
	}
}

// Search runs all adapters concurrently under the query deadline and returns
// the annotated, deduplicated product list. Individual source failures are
// logged and tolerated; the merge order stays deterministic regardless of
// which source finished first.
func (a *Aggregator) Search(ctx context.Context, q Query) []models.Product {
	ctx, cancel := context.WithTimeout(ctx, a.queryTimeout)
	defer cancel()

	log.Printf("🚀 [AGGREGATOR] Searching %d sources for: %s", len(a.adapters), q.Text)
	start := time.Now()

	perSource := make([][]models.Listing, len(a.adapters))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.maxParallel)
	for i, adapter := range a.adapters {
		i, adapter := i, adapter
		g.Go(func() error {
			listings, err := adapter.Search(gctx, q.Text, scraper.Options{UseBrowser: q.Render})
			if err != nil {
				// One broken source must not sink the others.
				log.Printf("⚠️ [AGGREGATOR] %s failed: %v", adapter.Name(), err)
				return nil
			}
			perSource[i] = listings
			return nil
		})
	}
	_ = g.Wait()

	state := NewAggregationState(MaxResults)
	for _, listings := range perSource {
		for i := range listings {
			listing := listings[i]
			if q.Budget > 0 && listing.HasPrice() && listing.Price > q.Budget {
				log.Printf("🚫 [AGGREGATOR] Over budget ₹%d: %.50s", q.Budget, listing.Title)
				continue
			}
			state.Add(listing)
		}
		if state.Full() {
			break
		}
	}

	products := Annotate(state.Listings())
	log.Printf("🎉 [AGGREGATOR] %d products in %v", len(products), time.Since(start).Round(time.Millisecond))
	return products
}

// AggregationState accumulates merged listings with cross-source
// deduplication and the global result cap.
type AggregationState struct {
	limit int
	seen  map[string]struct{}
	kept  []models.Listing
}

// NewAggregationState returns an empty state holding at most limit listings.
func NewAggregationState(limit int) *AggregationState {
	return &AggregationState{
		limit: limit,
		seen:  make(map[string]struct{}),
	}
}

// Add keeps the listing unless it duplicates an earlier one or the state is
// full. Returns true when the listing was kept.
func (s *AggregationState) Add(listing models.Listing) bool {
	if s.Full() {
		return false
	}
	key := listing.DedupKey()
	if _, dup := s.seen[key]; dup {
		return false
	}
	s.seen[key] = struct{}{}
	s.kept = append(s.kept, listing)
	return true
}

// Full reports whether the result cap has been reached.
func (s *AggregationState) Full() bool {
	return len(s.kept) >= s.limit
}

// Listings returns the kept listings in insertion order.
func (s *AggregationState) Listings() []models.Listing {
	return s.kept
}

// Annotate converts merged listings into client-facing products, attaching
// the synthetic presentation metadata and mapping the internal price
// sentinel to 0.
func Annotate(listings []models.Listing) []models.Product {
	products := make([]models.Product, 0, len(listings))
	for i := range listings {
		listing := listings[i]
		price := listing.Price
		if !listing.HasPrice() {
			price = 0
		}
		products = append(products, models.Product{
			ID:           i + 1,
			Title:        listing.Title,
			Price:        price,
			Platform:     listing.Platform,
			URL:          optional(listing.URL),
			Image:        optional(listing.Image),
			Currency:     listing.Currency,
			Availability: listing.Availability,
			Presentation: models.Presentation{
				DealScore: 70 + rand.Intn(26),
				Shipping:  shippingFor(price),
				Rating:    syntheticRating(),
				Reviews:   100 + rand.Intn(4901),
			},
		})
	}
	return products
}

func shippingFor(price int) string {
	if price > freeShippingThreshold {
		return "Free"
	}
	return "₹50"
}

// syntheticRating returns a placeholder rating in [3.5, 4.8] with one
// decimal place.
func syntheticRating() float64 {
	return math.Round((3.5+rand.Float64()*1.3)*10) / 10
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
