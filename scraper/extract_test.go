package scraper

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveURL(t *testing.T) {
	base := "https://www.example.in"

	assert.Equal(t, "https://www.example.in/dp/B0ABC123", resolveURL(base, "/dp/B0ABC123"))
	assert.Equal(t, "https://cdn.example.in/i/x.jpg", resolveURL(base, "https://cdn.example.in/i/x.jpg"))
	assert.Equal(t, "", resolveURL(base, ""))
}

func TestExtractImageLazyAttr(t *testing.T) {
	doc := parseDoc(t, `<div class="result">
		<img src="https://cdn.example.in/placeholder.gif" data-src="/images/iphone-14.jpg">
	</div>`)

	cfg := &SourceConfig{BaseURL: "https://www.example.in", ImageSelector: "img"}
	got := extractImage(doc.Find("div.result"), cfg)
	assert.Equal(t, "https://www.example.in/images/iphone-14.jpg", got)
}

func TestExtractImagePrefersDirectSrc(t *testing.T) {
	doc := parseDoc(t, `<div class="result"><img src="https://cdn.example.in/i/s23.jpg"></div>`)

	cfg := &SourceConfig{BaseURL: "https://www.example.in", ImageSelector: "img"}
	assert.Equal(t, "https://cdn.example.in/i/s23.jpg", extractImage(doc.Find("div.result"), cfg))
}

func TestExtractImageSrcsetPicksLargest(t *testing.T) {
	doc := parseDoc(t, `<div class="result">
		<img src="data:image/gif;base64,R0lGOD" srcset="/i/small.jpg 320w, /i/large.jpg 1280w, /i/medium.jpg 640w">
	</div>`)

	cfg := &SourceConfig{BaseURL: "https://www.example.in", ImageSelector: "img"}
	assert.Equal(t, "https://www.example.in/i/large.jpg", extractImage(doc.Find("div.result"), cfg))
}

func TestExtractImageCDNFallback(t *testing.T) {
	doc := parseDoc(t, `<div class="result">
		<div data-bg="https://m.media-amazon.com/images/I/71abc._AC_UY218_.jpg"></div>
	</div>`)

	cfg := &SourceConfig{
		BaseURL:       "https://www.example.in",
		ImageSelector: "img",
		ImageCDN:      regexp.MustCompile(`https://m\.media-amazon\.com/images/[^\s"']+`),
	}
	assert.Equal(t, "https://m.media-amazon.com/images/I/71abc._AC_UY218_.jpg", extractImage(doc.Find("div.result"), cfg))
}

func TestExtractImageNone(t *testing.T) {
	doc := parseDoc(t, `<div class="result"><img src="https://cdn.example.in/sprite-icons.png"></div>`)

	cfg := &SourceConfig{BaseURL: "https://www.example.in", ImageSelector: "img"}
	assert.Equal(t, "", extractImage(doc.Find("div.result"), cfg))
}

func TestBestSrcsetEntry(t *testing.T) {
	assert.Equal(t, "/i/b.jpg", bestSrcsetEntry("/i/a.jpg 1x, /i/b.jpg 2x"))
	assert.Equal(t, "/i/only.jpg", bestSrcsetEntry("/i/only.jpg"))
	assert.Equal(t, "", bestSrcsetEntry(""))
}

func TestIsPlaceholderImage(t *testing.T) {
	assert.True(t, isPlaceholderImage("data:image/gif;base64,R0lGOD"))
	assert.True(t, isPlaceholderImage("https://cdn.example.in/grey-pixel.gif"))
	assert.True(t, isPlaceholderImage(""))
	assert.False(t, isPlaceholderImage("https://cdn.example.in/i/product.jpg"))
}
