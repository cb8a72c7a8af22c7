package tracker

import "strings"

// Classify derives browser, operating system and device class from a raw
// User-Agent header. Matching is substring based; anything unrecognized is
// reported as Unknown (or Desktop for the device class).
func Classify(userAgent string) (browser, os, device string) {
	ua := strings.ToLower(userAgent)

	browser = "Unknown"
	switch {
	case strings.Contains(ua, "chrome") && !strings.Contains(ua, "edge"):
		browser = "Chrome"
	case strings.Contains(ua, "firefox"):
		browser = "Firefox"
	case strings.Contains(ua, "safari") && !strings.Contains(ua, "chrome"):
		browser = "Safari"
	case strings.Contains(ua, "edge"):
		browser = "Edge"
	case strings.Contains(ua, "opera") || strings.Contains(ua, "opr"):
		browser = "Opera"
	}

	os = "Unknown"
	switch {
	case strings.Contains(ua, "windows"):
		os = "Windows"
	case strings.Contains(ua, "mac"):
		os = "macOS"
	case strings.Contains(ua, "linux"):
		os = "Linux"
	case strings.Contains(ua, "android"):
		os = "Android"
	case strings.Contains(ua, "ios"), strings.Contains(ua, "iphone"), strings.Contains(ua, "ipad"):
		os = "iOS"
	}

	device = "Desktop"
	switch {
	case strings.Contains(ua, "mobile"):
		device = "Mobile"
	case strings.Contains(ua, "tablet"):
		device = "Tablet"
	}

	return browser, os, device
}
