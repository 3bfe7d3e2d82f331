package model

import "strings"

type prefixRule struct {
	keyword string
	prefix  string
}

// prefixRules are checked in order; the first keyword found wins.
var prefixRules = []prefixRule{
	{"resistor", "R"},
	{"capacitor", "C"},
	{"inductor", "L"},
	{"diode", "D"},
	{"led", "D"},
	{"transistor", "Q"},
	{"mosfet", "Q"},
	{"ic", "U"},
	{"mcu", "U"},
	{"microcontroller", "U"},
	{"connector", "J"},
	{"switch", "SW"},
	{"relay", "K"},
	{"crystal", "Y"},
	{"oscillator", "Y"},
	{"transformer", "T"},
	{"fuse", "F"},
	{"sensor", "U"},
}

// GuessReferencePrefix picks a reference designator prefix from free-text
// description and category. Matching is a case-insensitive substring search.
func GuessReferencePrefix(description, category string) string {
	text := strings.ToLower(description + " " + category)
	for _, r := range prefixRules {
		if strings.Contains(text, r.keyword) {
			return r.prefix
		}
	}
	return "U"
}
