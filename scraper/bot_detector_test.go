package scraper

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBotDetectorCheck(t *testing.T) {
	bd := NewBotDetector()

	blocked := []string{
		"<html><body>Enter the characters you see below</body></html>",
		"<html><title>Access Denied</title></html>",
		"Please complete the CAPTCHA to continue",
		"We have detected unusual traffic from your network",
	}
	for _, body := range blocked {
		hit, reason := bd.Check([]byte(body))
		assert.True(t, hit, "expected block: %q", body)
		assert.NotEmpty(t, reason)
	}

	hit, _ := bd.Check([]byte("<html><body><div class='result'>Apple iPhone 14</div></body></html>"))
	assert.False(t, hit)
}

func TestBotDetectorIgnoresPageTail(t *testing.T) {
	bd := NewBotDetector()

	// Challenge keywords deep in a long page (footer links etc.) are not
	// treated as an interstitial.
	body := strings.Repeat("<div>Apple iPhone 14 listing</div>", 400) + "captcha"
	hit, _ := bd.Check([]byte(body))
	assert.False(t, hit)
}
