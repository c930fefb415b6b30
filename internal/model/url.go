package model

import (
	"net/url"
	"strings"
)

const faviconService = "https://www.google.com/s2/favicons?sz=64&domain="

// NormalizeURL returns a fully qualified URL for opening in a browser.
// Strings without a scheme get an https:// prefix.
// The stored link is never rewritten.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.Contains(raw, "://") {
		return raw
	}
	return "https://" + raw
}

// Domain returns the host of the link without a leading "www.",
// or an empty string if the URL cannot be parsed.
func Domain(raw string) string {
	parsed, err := url.Parse(NormalizeURL(raw))
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(parsed.Hostname(), "www.")
}

// FaviconURL returns the favicon lookup URL for a link.
func FaviconURL(raw string) string {
	return faviconService + url.QueryEscape(Domain(raw))
}
