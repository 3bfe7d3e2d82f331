package format

import (
	"regexp"
	"unicode"
	"unicode/utf8"
)

// Fallback names for empty identifiers
const (
	FallbackSymbolName    = "Component"
	FallbackFootprintName = "Footprint"
)

var invalidNameChars = regexp.MustCompile(`[^\p{L}\p{N}_\-.]`)

// SanitizeName makes name safe as a KiCad symbol or footprint identifier.
// Characters outside letters, digits, '_', '-' and '.' become '_', a
// leading digit gets a '_' prefix and an empty result becomes fallback.
func SanitizeName(name, fallback string) string {
	name = invalidNameChars.ReplaceAllString(name, "_")
	if r, _ := utf8.DecodeRuneInString(name); unicode.IsDigit(r) {
		name = "_" + name
	}
	if name == "" {
		return fallback
	}
	return name
}
