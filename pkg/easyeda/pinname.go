package easyeda

import "strings"

// Pin name search window within a P command
const (
	pinNameFirstField = 10
	pinNameLastField  = 19
	pinNameMaxLen     = 30
)

var pinLayoutKeywords = map[string]bool{
	"start":  true,
	"end":    true,
	"middle": true,
	"show":   true,
	"hide":   true,
	"0":      true,
	"1":      true,
}

// ExtractPinName finds the pin name in a P command. The name has no fixed
// position, so fields 10 through 19 are scanned for the first token that is
// not numeric, not a layout keyword, not a comment or marker and shorter
// than 30 characters.
func ExtractPinName(fields []string) (string, bool) {
	last := pinNameLastField
	if last >= len(fields) {
		last = len(fields) - 1
	}
	for i := pinNameFirstField; i <= last; i++ {
		f := fields[i]
		if f == "" || strings.HasPrefix(f, "#") || strings.HasPrefix(f, "^^") {
			continue
		}
		if isNumeric(f) || pinLayoutKeywords[f] {
			continue
		}
		if len(f) >= pinNameMaxLen {
			continue
		}
		return f, true
	}
	return "", false
}

// isNumeric reports whether s is all digits once dots and minus signs are
// removed.
func isNumeric(s string) bool {
	stripped := strings.NewReplacer(".", "", "-", "").Replace(s)
	if stripped == "" {
		return false
	}
	for _, r := range stripped {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
