package scraper

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// Renderer loads a page in an environment that executes its scripts, for
// sources whose listings only exist after client-side rendering. Adapters
// that want it degrade to zero results when none is available.
type Renderer interface {
	Render(url string, timeout time.Duration) (*goquery.Document, error)
}

// BrowserRenderer backs Renderer with a shared headless Chromium instance.
type BrowserRenderer struct {
	browser *rod.Browser
}

// NewBrowserRenderer launches headless Chromium. Uses system Chromium in
// Docker, auto-detects locally.
func NewBrowserRenderer() (*BrowserRenderer, error) {
	l := launcher.New().
		Headless(true).
		NoSandbox(true).
		Leakless(false)

	if _, err := os.Stat("/usr/bin/chromium-browser"); err == nil {
		l = l.Bin("/usr/bin/chromium-browser")
		log.Printf("Using system Chromium in Docker environment")
	} else {
		log.Printf("Using auto-detected Chromium (local environment)")
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	log.Printf("✅ Headless browser connected at: %s", controlURL)
	return &BrowserRenderer{browser: browser}, nil
}

// Render opens the URL, waits for the page to settle, and hands the rendered
// markup to the same parser the plain fetch path uses.
func (br *BrowserRenderer) Render(url string, timeout time.Duration) (*goquery.Document, error) {
	var html string
	err := rod.Try(func() {
		page := br.browser.MustPage(url).Timeout(timeout)
		defer page.MustClose()
		page.MustWaitLoad()
		page.MustWaitStable()
		html = page.MustHTML()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", url, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse rendered HTML: %w", err)
	}
	return doc, nil
}

// Close shuts the shared browser down.
func (br *BrowserRenderer) Close() {
	if br.browser != nil {
		if err := br.browser.Close(); err != nil {
			log.Printf("⚠️ Failed to close browser: %v", err)
		}
	}
}
