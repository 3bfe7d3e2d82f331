// Package easyeda parses EasyEDA component records into the typed geometry
// of package model.
//
// An EasyEDA record carries its drawing as "shape commands": one string per
// primitive, the tag first, fields separated by '~'. Multiple commands may
// be joined with "#@$". Field positions are fixed per tag.
package easyeda

import (
	"errors"
	"fmt"
	"strings"

	"github.com/OpenTraceLab/eda2kicad/pkg/geom"
)

// ShapeDelimiter joins shape commands inside a single string.
const ShapeDelimiter = "#@$"

// FieldSeparator separates the fields of one shape command.
const FieldSeparator = "~"

// Scale converts EasyEDA units to millimetres.
const Scale = geom.EasyEDAUnitToMM

// ErrTooFewFields is returned when a shape command is shorter than its tag
// requires.
var ErrTooFewFields = errors.New("easyeda: too few fields")

// Shape is one tokenized shape command
type Shape struct {
	Tag    string   // upper-cased command tag
	Fields []string // Fields[0] is the tag as written
}

// ParseShape splits a shape command into fields. ok is false for blank input.
func ParseShape(raw string) (s Shape, ok bool) {
	if strings.TrimSpace(raw) == "" {
		return Shape{}, false
	}
	fields := strings.Split(raw, FieldSeparator)
	return Shape{
		Tag:    strings.ToUpper(strings.TrimSpace(fields[0])),
		Fields: fields,
	}, true
}

// SplitShapes splits a joined shape string into individual commands.
func SplitShapes(joined string) []string {
	if joined == "" {
		return nil
	}
	return strings.Split(joined, ShapeDelimiter)
}

// Len returns the number of fields including the tag.
func (s Shape) Len() int { return len(s.Fields) }

// Require checks that the command has at least n fields.
func (s Shape) Require(n int) error {
	if len(s.Fields) < n {
		return fmt.Errorf("%w: %s has %d, needs %d", ErrTooFewFields, s.Tag, len(s.Fields), n)
	}
	return nil
}

// Field returns field i or "" when out of range.
func (s Shape) Field(i int) string {
	if i < 0 || i >= len(s.Fields) {
		return ""
	}
	return s.Fields[i]
}

// Has reports whether field i exists.
func (s Shape) Has(i int) bool { return i >= 0 && i < len(s.Fields) }

// Number parses field i, falling back to def.
func (s Shape) Number(i int, def float64) float64 {
	return geom.ParseNumber(s.Field(i), def)
}

// MM parses field i as EasyEDA units and converts it to millimetres.
// Missing or malformed values count as zero.
func (s Shape) MM(i int) float64 {
	return s.Number(i, 0) * Scale
}

// Point reads fields i and i+1 as an EasyEDA coordinate and returns it in
// millimetres with the Y axis flipped.
func (s Shape) Point(i int) geom.Point {
	return geom.Point{X: s.MM(i), Y: s.MM(i + 1)}.FlipY()
}

// ParsePointList parses a whitespace or comma separated "x y x y" list into
// millimetre points with the Y axis flipped. A dangling odd value is
// dropped; malformed pairs count as zero.
func ParsePointList(list string) []geom.Point {
	values := strings.FieldsFunc(list, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	points := make([]geom.Point, 0, len(values)/2)
	for i := 0; i+1 < len(values); i += 2 {
		p := geom.Point{
			X: geom.ParseNumber(values[i], 0) * Scale,
			Y: geom.ParseNumber(values[i+1], 0) * Scale,
		}
		points = append(points, p.FlipY())
	}
	return points
}
