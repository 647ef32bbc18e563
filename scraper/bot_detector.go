package scraper

import (
	"regexp"
)

// BotDetector recognizes anti-scraping interstitials so a blocked page is
// reported as a fetch failure instead of being mined for phantom listings.
type BotDetector struct {
	patterns []*regexp.Regexp
}

// NewBotDetector creates a detector with patterns seen on Indian storefront
// block pages.
func NewBotDetector() *BotDetector {
	return &BotDetector{
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)enter the characters you see below`),
			regexp.MustCompile(`(?i)access denied`),
			regexp.MustCompile(`(?i)verify you are human`),
			regexp.MustCompile(`(?i)are you a robot`),
			regexp.MustCompile(`(?i)captcha`),
			regexp.MustCompile(`(?i)too many requests`),
			regexp.MustCompile(`(?i)checking your browser`),
			regexp.MustCompile(`(?i)ddos protection`),
			regexp.MustCompile(`(?i)unusual traffic`),
		},
	}
}

// Check scans page content for bot-wall markers. Only the head of the page is
// inspected; interstitials are short and real result pages mention products
// long before any challenge keywords.
func (bd *BotDetector) Check(body []byte) (bool, string) {
	head := body
	if len(head) > 8192 {
		head = head[:8192]
	}
	for _, pattern := range bd.patterns {
		if pattern.Match(head) {
			return true, pattern.String()
		}
	}
	return false, ""
}
