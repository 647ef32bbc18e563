package scraper

import (
	"strings"
)

// accessoryKeywords flag listings that are add-ons to the queried product
// category rather than the product itself.
var accessoryKeywords = []string{
	"cover", "case", "protector", "screen guard", "charger",
	"cable", "headphone", "earphone", "stand", "holder",
	"selfie stick", "tripod", "mount", "adapter", "battery",
	"power bank", "tempered glass", "lens", "clip", "ring",
}

// IsAccessory reports whether a listing title looks like an accessory.
// Matching is case-insensitive substring; a hit excludes the listing from
// aggregation.
func IsAccessory(title string) bool {
	lower := strings.ToLower(title)
	for _, keyword := range accessoryKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
