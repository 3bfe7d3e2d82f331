package kicadsexp

import (
	"errors"
	"fmt"
	"io"
)

// ErrSyntax is returned for unbalanced parentheses and unterminated strings.
var ErrSyntax = errors.New("kicadsexp: syntax error")

// Parse reads every top-level expression from r.
func Parse(r io.Reader) ([]Sexp, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("kicadsexp: %w", err)
	}
	return parse(src)
}

// reader walks the input one byte at a time. KiCad files are ASCII apart
// from string contents, which are copied through untouched.
type reader struct {
	src  []byte
	pos  int
	line int
}

func (r *reader) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrSyntax, r.line, fmt.Sprintf(format, args...))
}

func (r *reader) skipSpace() {
	for r.pos < len(r.src) {
		switch r.src[r.pos] {
		case '\n':
			r.line++
		case ' ', '\t', '\r', '\f', '\v':
		default:
			return
		}
		r.pos++
	}
}

// parse builds the tree with an explicit stack of open lists so deeply
// nested footprints cannot exhaust the goroutine stack.
func parse(src []byte) ([]Sexp, error) {
	r := &reader{src: src, line: 1}
	var top []Sexp
	var stack []*List
	openLines := []int{}

	emit := func(s Sexp) {
		if n := len(stack); n > 0 {
			stack[n-1].elements = append(stack[n-1].elements, s)
			return
		}
		top = append(top, s)
	}

	for {
		r.skipSpace()
		if r.pos >= len(r.src) {
			break
		}
		switch c := r.src[r.pos]; c {
		case '(':
			r.pos++
			stack = append(stack, &List{})
			openLines = append(openLines, r.line)
		case ')':
			if len(stack) == 0 {
				return nil, r.errorf("unexpected ')'")
			}
			r.pos++
			done := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			openLines = openLines[:len(openLines)-1]
			emit(done)
		case '"':
			s, err := r.quoted()
			if err != nil {
				return nil, err
			}
			emit(Symbol(s))
		default:
			emit(Symbol(r.bare()))
		}
	}

	if n := len(openLines); n > 0 {
		return nil, fmt.Errorf("%w: list opened on line %d is never closed", ErrSyntax, openLines[n-1])
	}
	return top, nil
}

// quoted reads a string starting at the opening quote. Backslash escapes
// follow the KiCad writer; a doubled quote is accepted as a literal quote.
func (r *reader) quoted() (string, error) {
	start := r.line
	r.pos++
	var buf []byte
	for r.pos < len(r.src) {
		c := r.src[r.pos]
		r.pos++
		switch c {
		case '"':
			if r.pos < len(r.src) && r.src[r.pos] == '"' {
				buf = append(buf, '"')
				r.pos++
				continue
			}
			return string(buf), nil
		case '\\':
			if r.pos >= len(r.src) {
				return "", r.errorf("dangling backslash")
			}
			e := r.src[r.pos]
			r.pos++
			switch e {
			case 'n':
				buf = append(buf, '\n')
			case 't':
				buf = append(buf, '\t')
			case 'r':
				buf = append(buf, '\r')
			default:
				buf = append(buf, e)
			}
		case '\n':
			r.line++
			buf = append(buf, c)
		default:
			buf = append(buf, c)
		}
	}
	return "", fmt.Errorf("%w: string starting on line %d is never closed", ErrSyntax, start)
}

// bare reads an unquoted atom such as a keyword or a number.
func (r *reader) bare() string {
	start := r.pos
	for r.pos < len(r.src) {
		switch r.src[r.pos] {
		case ' ', '\t', '\r', '\n', '\f', '\v', '(', ')', '"':
			return string(r.src[start:r.pos])
		}
		r.pos++
	}
	return string(r.src[start:])
}
