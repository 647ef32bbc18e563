package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"costcurve/aggregator"
	"costcurve/config"
	"costcurve/handlers"
	"costcurve/middleware"
	"costcurve/models"
	"costcurve/scraper"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	query := flag.String("query", "", "run a single search, print JSON to stdout and exit")
	flag.Parse()

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	fetcher := scraper.NewFetcher()

	// The browser is optional; when it fails to launch, adapters skip
	// their source on render-requested queries and report zero listings.
	var renderer scraper.Renderer
	if cfg.BrowserEnabled {
		br, err := scraper.NewBrowserRenderer()
		if err != nil {
			log.Printf("⚠️ Headless browser unavailable, continuing without it: %v", err)
		} else {
			renderer = br
			defer br.Close()
		}
	}

	sources := scraper.DefaultSources()
	adapters := make([]*scraper.Adapter, 0, len(sources))
	sourceNames := make([]string, 0, len(sources))
	for _, src := range sources {
		adapters = append(adapters, scraper.NewAdapter(src, fetcher, renderer, cfg.SourceInterval))
		sourceNames = append(sourceNames, src.Name)
	}

	agg := aggregator.New(adapters, cfg.MaxParallel, cfg.QueryTimeout)

	if *query != "" {
		runOnce(agg, *query)
		return
	}

	// Initialize handlers
	h := handlers.NewHandlers(agg, sourceNames, cfg.MaxWorkers)
	defer h.Close()

	// Setup router
	r := mux.NewRouter()

	// Apply global middleware
	r.Use(middleware.LoggingMiddleware)
	r.Use(middleware.RateLimitMiddleware(cfg.RequestsPerMinute))

	r.HandleFunc("/health", h.HealthCheck).Methods("GET")

	apiV1 := r.PathPrefix("/api/v1").Subrouter()
	apiV1.HandleFunc("/search", h.SearchProducts).Methods("GET")
	apiV1.HandleFunc("/search", h.SearchProductsPost).Methods("POST")
	apiV1.HandleFunc("/search/suggestions", h.Suggestions).Methods("GET")
	apiV1.HandleFunc("/search/async", h.SubmitSearchTask).Methods("POST")
	// stats must register before the {taskId} wildcard
	apiV1.HandleFunc("/search/tasks/stats", h.GetTaskStats).Methods("GET")
	apiV1.HandleFunc("/search/tasks/{taskId}", h.GetTaskStatus).Methods("GET")
	apiV1.HandleFunc("/sources", h.Sources).Methods("GET")

	// CORS configuration
	c := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.AllowedOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	log.Printf("🌐 Server starting on port %s", cfg.Port)
	log.Printf("📋 API Documentation:")
	log.Printf("   GET  /health - Health check")
	log.Printf("   GET  /api/v1/search?q=... - Search products across sources")
	log.Printf("   POST /api/v1/search - Search products (JSON body)")
	log.Printf("   GET  /api/v1/search/suggestions - Search suggestions")
	log.Printf("   POST /api/v1/search/async - Submit async search task")
	log.Printf("   GET  /api/v1/search/tasks/{taskId} - Async task status")
	log.Printf("   GET  /api/v1/sources - Supported sources")

	// Start server
	log.Fatal(http.ListenAndServe(cfg.Host+":"+cfg.Port, c.Handler(r)))
}

// runOnce handles the -query flag: one aggregation, JSON on stdout.
func runOnce(agg *aggregator.Aggregator, query string) {
	products := agg.Search(context.Background(), aggregator.Query{Text: query})
	if products == nil {
		products = []models.Product{}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(models.SearchResponse{
		Success:      true,
		Query:        query,
		ResultsCount: len(products),
		Products:     products,
		Timestamp:    time.Now(),
	}); err != nil {
		log.Fatalf("Failed to encode results: %v", err)
	}
}
