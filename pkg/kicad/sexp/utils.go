// Package sexp holds helpers for reading and writing KiCad S-expression files.
package sexp

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/OpenTraceLab/eda2kicad/pkg/geom"
	"github.com/OpenTraceLab/eda2kicad/pkg/kicad/sexp/kicadsexp"
)

// ErrShape is returned when a node does not have the layout a helper expects.
var ErrShape = errors.New("sexp: unexpected node shape")

// items returns the elements of a list, or nil for atoms
func items(s kicadsexp.Sexp) []kicadsexp.Sexp {
	if l, ok := s.(*kicadsexp.List); ok {
		return l.Items()
	}
	return nil
}

// atom reports the text of s when it is an atom
func atom(s kicadsexp.Sexp) (string, bool) {
	sym, ok := s.(kicadsexp.Symbol)
	return string(sym), ok
}

// GetNodeName returns the keyword heading a list, e.g. "pad" for (pad ...).
func GetNodeName(s kicadsexp.Sexp) (string, error) {
	elems := items(s)
	if len(elems) == 0 {
		return "", fmt.Errorf("%w: want a non-empty list, got %v", ErrShape, s)
	}
	name, ok := atom(elems[0])
	if !ok {
		return "", fmt.Errorf("%w: list starts with a list", ErrShape)
	}
	return name, nil
}

// FindNode returns the first child list headed by key. A bare atom equal to
// key also matches, which is how old files write flags such as hide.
func FindNode(s kicadsexp.Sexp, key string) (kicadsexp.Sexp, bool) {
	for _, child := range items(s) {
		if name, ok := atom(child); ok {
			if name == key {
				return child, true
			}
			continue
		}
		if name, err := GetNodeName(child); err == nil && name == key {
			return child, true
		}
	}
	return nil, false
}

// FindAllNodes returns every child list headed by key, in file order.
func FindAllNodes(s kicadsexp.Sexp, key string) []kicadsexp.Sexp {
	var found []kicadsexp.Sexp
	for _, child := range items(s) {
		if name, err := GetNodeName(child); err == nil && name == key {
			found = append(found, child)
		}
	}
	return found
}

// findList is FindNode restricted to child lists
func findList(s kicadsexp.Sexp, key string) (kicadsexp.Sexp, bool) {
	if nodes := FindAllNodes(s, key); len(nodes) > 0 {
		return nodes[0], true
	}
	return nil, false
}

// GetString returns the atom at position index of a list; the keyword is
// position 0.
func GetString(s kicadsexp.Sexp, index int) (string, error) {
	elems := items(s)
	if elems == nil {
		return "", fmt.Errorf("%w: want a list, got %v", ErrShape, s)
	}
	if index < 0 || index >= len(elems) {
		return "", fmt.Errorf("%w: no element %d in %v", ErrShape, index, s)
	}
	v, ok := atom(elems[index])
	if !ok {
		return "", fmt.Errorf("%w: element %d of %v is a list", ErrShape, index, s)
	}
	return v, nil
}

// GetFloat parses the atom at position index as a number.
func GetFloat(s kicadsexp.Sexp, index int) (float64, error) {
	return parseAt(s, index, func(v string) (float64, error) { return strconv.ParseFloat(v, 64) })
}

// GetInt parses the atom at position index as an integer.
func GetInt(s kicadsexp.Sexp, index int) (int, error) {
	return parseAt(s, index, strconv.Atoi)
}

func parseAt[T any](s kicadsexp.Sexp, index int, parse func(string) (T, error)) (T, error) {
	var zero T
	v, err := GetString(s, index)
	if err != nil {
		return zero, err
	}
	n, err := parse(v)
	if err != nil {
		return zero, fmt.Errorf("sexp: element %d of %v: %w", index, s, err)
	}
	return n, nil
}

// HasSymbol reports whether sym appears as a bare atom directly inside s.
func HasSymbol(s kicadsexp.Sexp, sym string) bool {
	for _, child := range items(s) {
		if v, ok := atom(child); ok && v == sym {
			return true
		}
	}
	return false
}

// GetXY reads the X Y pair following the key of nodes such as (start X Y),
// (at X Y) or (xy X Y)
func GetXY(s kicadsexp.Sexp) (geom.Point, error) {
	x, err := GetFloat(s, 1)
	if err != nil {
		return geom.Point{}, fmt.Errorf("invalid X: %w", err)
	}
	y, err := GetFloat(s, 2)
	if err != nil {
		return geom.Point{}, fmt.Errorf("invalid Y: %w", err)
	}
	return geom.Point{X: x, Y: y}, nil
}

// GetChildXY finds the child node key and reads its X Y pair
func GetChildXY(s kicadsexp.Sexp, key string) (geom.Point, error) {
	node, ok := findList(s, key)
	if !ok {
		return geom.Point{}, fmt.Errorf("missing (%s ...)", key)
	}
	return GetXY(node)
}

// GetAt extracts position and optional angle from an (at X Y [angle]) child
func GetAt(s kicadsexp.Sexp) (geom.Point, float64, error) {
	node, ok := findList(s, "at")
	if !ok {
		return geom.Point{}, 0, fmt.Errorf("missing (at ...)")
	}
	pos, err := GetXY(node)
	if err != nil {
		return geom.Point{}, 0, err
	}
	angle := 0.0
	if len(items(node)) > 3 {
		if angle, err = GetFloat(node, 3); err != nil {
			return geom.Point{}, 0, fmt.Errorf("invalid angle: %w", err)
		}
	}
	return pos, angle, nil
}

// GetChildFloat reads the first value of a child node such as (width 0.1)
func GetChildFloat(s kicadsexp.Sexp, key string) (float64, bool) {
	node, ok := findList(s, key)
	if !ok || node.IsLeaf() {
		return 0, false
	}
	v, err := GetFloat(node, 1)
	if err != nil {
		return 0, false
	}
	return v, true
}

// GetChildString reads the first value of a child node such as (layer "F.Cu")
func GetChildString(s kicadsexp.Sexp, key string) (string, bool) {
	node, ok := findList(s, key)
	if !ok || node.IsLeaf() {
		return "", false
	}
	v, err := GetString(node, 1)
	if err != nil {
		return "", false
	}
	return v, true
}

// GetStrokeWidth reads (stroke (width W) ...)
func GetStrokeWidth(s kicadsexp.Sexp) float64 {
	stroke, ok := findList(s, "stroke")
	if !ok {
		return 0
	}
	w, _ := GetChildFloat(stroke, "width")
	return w
}

// GetStrings returns all atoms after the key, e.g. the names in (layers ...)
func GetStrings(s kicadsexp.Sexp) []string {
	var out []string
	for i, child := range items(s) {
		if v, ok := atom(child); ok && i > 0 {
			out = append(out, v)
		}
	}
	return out
}

// GetPoints reads every (xy X Y) inside a (pts ...) child
func GetPoints(s kicadsexp.Sexp) ([]geom.Point, error) {
	pts, ok := findList(s, "pts")
	if !ok {
		return nil, fmt.Errorf("missing (pts ...)")
	}
	var out []geom.Point
	for _, xy := range FindAllNodes(pts, "xy") {
		p, err := GetXY(xy)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// IsHidden reports whether the effects of a node carry a hide flag, either
// bare or as (hide yes)
func IsHidden(s kicadsexp.Sexp) bool {
	effects, ok := findList(s, "effects")
	if !ok {
		return false
	}
	if HasSymbol(effects, "hide") {
		return true
	}
	v, ok := GetChildString(effects, "hide")
	return ok && v == "yes"
}

// GetProperty extracts the name and value of a (property "Name" "Value" ...) node
func GetProperty(s kicadsexp.Sexp) (name, value string, err error) {
	if name, err = GetString(s, 1); err != nil {
		return "", "", fmt.Errorf("property name: %w", err)
	}
	if value, err = GetString(s, 2); err != nil {
		return "", "", fmt.Errorf("property %q value: %w", name, err)
	}
	return name, value, nil
}
