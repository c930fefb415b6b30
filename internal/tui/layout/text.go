package layout

import (
	"regexp"
	"unicode/utf8"
)

var ansiSequence = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// StripANSI removes SGR escape sequences from s.
func StripANSI(s string) string {
	return ansiSequence.ReplaceAllString(s, "")
}

// Truncate shortens text to at most width runes, ending in ellipsis
// when anything was cut.
func Truncate(text string, width int, ellipsis string) string {
	if width <= 0 {
		return ""
	}
	if utf8.RuneCountInString(text) <= width {
		return text
	}

	el := []rune(ellipsis)
	if width <= len(el) {
		return string(el[:width])
	}
	runes := []rune(text)
	return string(runes[:width-len(el)]) + ellipsis
}

// TruncateLeft shortens text to at most width runes by cutting from the
// start, so the end of a path stays visible.
func TruncateLeft(text string, width int, ellipsis string) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= width {
		return text
	}

	el := []rune(ellipsis)
	if width <= len(el) {
		return string(el[:width])
	}
	return ellipsis + string(runes[len(runes)-(width-len(el)):])
}
