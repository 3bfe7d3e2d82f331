package symbol

import (
	"errors"
	"strings"

	"github.com/OpenTraceLab/eda2kicad/pkg/kicad/sexp"
)

// ErrNoLibrary is returned when text has no closing parenthesis to splice before
var ErrNoLibrary = errors.New("symbol: not a symbol library")

// Splice inserts a rendered symbol block before the closing parenthesis of lib
func Splice(lib, block string) (string, error) {
	pos := strings.LastIndex(lib, ")")
	if pos < 0 {
		return "", ErrNoLibrary
	}
	return lib[:pos] + block + "\n" + lib[pos:], nil
}

// Contains reports whether lib defines a top-level symbol called name
func Contains(lib, name string) bool {
	_, _, ok := locate(lib, name)
	return ok
}

// Extract returns the (symbol "name" ...) block of lib
func Extract(lib, name string) (string, bool) {
	start, end, ok := locate(lib, name)
	if !ok {
		return "", false
	}
	return lib[start:end], true
}

// Remove deletes the (symbol "name" ...) block and the line breaks that
// follow it. lib is returned unchanged when the symbol is absent.
func Remove(lib, name string) string {
	start, end, ok := locate(lib, name)
	if !ok {
		return lib
	}
	for end < len(lib) && (lib[end] == '\n' || lib[end] == '\r') {
		end++
	}
	// drop the indentation left on the line the block started on
	lineStart := start
	for lineStart > 0 && (lib[lineStart-1] == ' ' || lib[lineStart-1] == '\t') {
		lineStart--
	}
	if lineStart == 0 || lib[lineStart-1] == '\n' {
		start = lineStart
	}
	return lib[:start] + lib[end:]
}

// Replace removes any existing block called name and splices block in
func Replace(lib, name, block string) (string, error) {
	return Splice(Remove(lib, name), block)
}

// locate finds the byte range of the (symbol "name" ...) block. Parentheses
// inside quoted strings do not count toward nesting.
func locate(lib, name string) (start, end int, ok bool) {
	needle := "(symbol " + sexp.Quote(name)
	start = strings.Index(lib, needle)
	if start < 0 {
		return 0, 0, false
	}

	depth := 0
	inString := false
	for i := start; i < len(lib); i++ {
		c := lib[i]
		if inString {
			switch c {
			case '\\':
				i++
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return start, i + 1, true
			}
		}
	}
	return 0, 0, false
}
