// Package device turns raw User-Agent strings into the short display names
// shown in the activity log ("Chrome on Mac OS X").
package device

import (
	"strings"

	"github.com/mssola/useragent"
)

// ParseUserAgent returns a human-readable device summary for a User-Agent
// header. Unparseable input degrades to "Unknown Device".
func ParseUserAgent(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "Unknown Device"
	}

	ua := useragent.New(raw)
	browser, _ := ua.Browser()
	os := ua.OS()

	if browser == "" {
		browser = "Unknown Browser"
	}
	if os == "" {
		os = "Unknown OS"
	}
	if ua.Mobile() && ua.Platform() != "" {
		os = ua.Platform()
	}
	return browser + " on " + os
}
