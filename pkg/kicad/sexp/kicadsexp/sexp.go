// Package kicadsexp reads the S-expression text of KiCad symbol libraries
// and footprint files into a tree of atoms and lists.
package kicadsexp

import "strings"

// Sexp is a node of the tree: a Symbol or a *List.
type Sexp interface {
	// IsLeaf is true for atoms
	IsLeaf() bool

	// LeafCount is the element count of a list and 1 for an atom
	LeafCount() int

	// Head is the first element of a list, or the atom itself
	Head() Sexp

	// String renders the node on one line without quoting
	String() string
}

// Symbol represents an atom: a bare word, a number or the content of a
// quoted string
type Symbol string

func (s Symbol) IsLeaf() bool   { return true }
func (s Symbol) LeafCount() int { return 1 }
func (s Symbol) Head() Sexp     { return s }
func (s Symbol) String() string { return string(s) }

// List is a parenthesised sequence of nodes
type List struct {
	elements []Sexp
}

func (l *List) IsLeaf() bool { return false }

func (l *List) LeafCount() int {
	return len(l.elements)
}

func (l *List) Head() Sexp {
	if len(l.elements) == 0 {
		return nil
	}
	return l.elements[0]
}

func (l *List) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, elem := range l.elements {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(elem.String())
	}
	b.WriteByte(')')
	return b.String()
}

// Get returns element index, or nil when out of range
func (l *List) Get(index int) Sexp {
	if index < 0 || index >= len(l.elements) {
		return nil
	}
	return l.elements[index]
}

// Len is the number of elements
func (l *List) Len() int {
	return len(l.elements)
}

// Items returns the elements of the list. The slice must not be modified.
func (l *List) Items() []Sexp {
	return l.elements
}

// ParseString parses S-expressions from a string
func ParseString(s string) ([]Sexp, error) {
	return parse([]byte(s))
}
