package scraper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Fetcher retrieves and parses search and detail pages. The underlying HTTP
// client is shared read-only across adapters; per-request deadlines come from
// the caller.
type Fetcher struct {
	client   *http.Client
	detector *BotDetector
}

// NewFetcher creates a fetcher with bot-wall detection enabled.
func NewFetcher() *Fetcher {
	return &Fetcher{
		client:   &http.Client{},
		detector: NewBotDetector(),
	}
}

// Document fetches a URL with the given headers and parses the body. A non-200
// status or a detected bot wall is an error; the caller treats it as zero
// listings from that source.
func (f *Fetcher) Document(ctx context.Context, rawURL string, headers map[string]string, timeout time.Duration) (*goquery.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("non-200 response from %s: %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if blocked, reason := f.detector.Check(body); blocked {
		return nil, fmt.Errorf("bot wall detected on %s: %s", rawURL, reason)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}
