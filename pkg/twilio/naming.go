package twilio

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	acronymBoundary = regexp.MustCompile(`([A-Z\d]+)([A-Z][a-z])`)
	wordBoundary    = regexp.MustCompile(`([a-z\d])([A-Z])`)
)

// Camelize converts a local underscore name into the API's capitalized form,
// e.g. "voice_fallback_url" becomes "VoiceFallbackUrl". Names already in API
// form are returned unchanged.
func Camelize(name string) string {
	if name == "" {
		return name
	}
	var b strings.Builder
	b.Grow(len(name))
	for _, part := range strings.Split(name, "_") {
		if part == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(part)
		b.WriteRune(unicode.ToUpper(r))
		b.WriteString(part[size:])
	}
	return b.String()
}

// Underscore converts an API field name into the local underscore form,
// e.g. "VoiceFallbackUrl" becomes "voice_fallback_url" and "APIVersion"
// becomes "api_version".
func Underscore(name string) string {
	s := acronymBoundary.ReplaceAllString(name, "${1}_${2}")
	s = wordBoundary.ReplaceAllString(s, "${1}_${2}")
	s = strings.ReplaceAll(s, "-", "_")
	return strings.ToLower(s)
}
