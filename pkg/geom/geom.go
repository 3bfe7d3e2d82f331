// Package geom provides the scalar and point math shared by the EasyEDA
// parsers, the KiCad writers and the 3D placement heuristic.
//
// All values are plain float64 millimetres unless stated otherwise. Nothing
// in this package allocates shared state or returns errors for malformed
// numeric text: callers pick a fallback instead.
package geom

import (
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Unit conversion constants
const (
	// EasyEDAUnitToMM converts EasyEDA canvas units (10 mil) to millimetres.
	EasyEDAUnitToMM = 0.254
	// MilToMM converts thousandths of an inch to millimetres.
	MilToMM = 0.0254
)

// Point is an immutable 2D coordinate.
type Point struct {
	X float64
	Y float64
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Scale multiplies both coordinates by k.
func (p Point) Scale(k float64) Point { return Point{X: p.X * k, Y: p.Y * k} }

// FlipY negates the Y coordinate (EasyEDA Y grows down, KiCad Y grows up).
func (p Point) FlipY() Point { return Point{X: p.X, Y: -p.Y} }

// Neg returns -p.
func (p Point) Neg() Point { return Point{X: -p.X, Y: -p.Y} }

// Box is an axis aligned rectangle.
type Box struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// Width returns the width of the box
func (b Box) Width() float64 { return b.MaxX - b.MinX }

// Height returns the height of the box
func (b Box) Height() float64 { return b.MaxY - b.MinY }

// Center returns the center point of the box
func (b Box) Center() Point {
	return Point{
		X: (b.MinX + b.MaxX) / 2.0,
		Y: (b.MinY + b.MaxY) / 2.0,
	}
}

// Contains checks if a point is within the box (edges included)
func (b Box) Contains(p Point) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Y >= b.MinY && p.Y <= b.MaxY
}

// Corners returns the four corners counter-clockwise starting at (MinX, MinY).
func (b Box) Corners() [4]Point {
	return [4]Point{
		{X: b.MinX, Y: b.MinY},
		{X: b.MaxX, Y: b.MinY},
		{X: b.MaxX, Y: b.MaxY},
		{X: b.MinX, Y: b.MaxY},
	}
}

// ParseNumber parses a decimal number, returning def when text is empty or
// malformed. It never panics.
func ParseNumber(text string, def float64) float64 {
	text = strings.TrimSpace(text)
	if text == "" {
		return def
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}

// ParseInt parses an integer, accepting decimal notation ("3.0") and
// truncating toward zero. Malformed input yields def.
func ParseInt(text string, def int) int {
	v := ParseNumber(text, math.NaN())
	if math.IsNaN(v) {
		return def
	}
	return int(v)
}

// NormalizeAngle maps deg into [0, 360).
func NormalizeAngle(deg float64) float64 {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return 0
	}
	a := math.Mod(deg, 360)
	if a < 0 {
		a += 360
	}
	// math.Mod(-1e-17, 360) + 360 rounds to 360
	if a >= 360 {
		a = 0
	}
	return a
}

// RotatePoint rotates p by angleDeg (counter-clockwise) around center.
func RotatePoint(p Point, angleDeg float64, center Point) Point {
	rad := angleDeg * math.Pi / 180.0
	cos, sin := math.Cos(rad), math.Sin(rad)
	dx := p.X - center.X
	dy := p.Y - center.Y
	return Point{
		X: dx*cos - dy*sin + center.X,
		Y: dx*sin + dy*cos + center.Y,
	}
}

// BoundingBox returns the smallest box enclosing points. An empty slice
// yields the degenerate zero box; callers must check emptiness themselves.
func BoundingBox(points []Point) Box {
	if len(points) == 0 {
		return Box{}
	}
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.X
		ys[i] = p.Y
	}
	return Box{
		MinX: floats.Min(xs),
		MinY: floats.Min(ys),
		MaxX: floats.Max(xs),
		MaxY: floats.Max(ys),
	}
}

// ExpandBox grows b by margin on every side.
func ExpandBox(b Box, margin float64) Box {
	return Box{
		MinX: b.MinX - margin,
		MinY: b.MinY - margin,
		MaxX: b.MaxX + margin,
		MaxY: b.MaxY + margin,
	}
}

// RoundToGrid snaps value to the nearest multiple of grid. A non-positive
// grid returns value unchanged. Ties round to even.
func RoundToGrid(value, grid float64) float64 {
	if grid <= 0 {
		return value
	}
	return math.RoundToEven(value/grid) * grid
}

// FormatNumber renders value with the given number of decimals and strips
// trailing zeros and a trailing decimal point. Negative zero prints as "0".
func FormatNumber(value float64, precision int) string {
	if precision < 0 {
		precision = 0
	}
	s := strconv.FormatFloat(value, 'f', precision, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "-0" {
		s = "0"
	}
	return s
}

// ArcPoints samples an elliptical arc into segments+1 points. Angles are in
// degrees; when end < start the sweep wraps through 360.
func ArcPoints(center Point, rx, ry, startDeg, endDeg float64, segments int) []Point {
	if segments < 1 {
		segments = 1
	}
	if endDeg < startDeg {
		endDeg += 360
	}
	sweep := endDeg - startDeg

	points := make([]Point, 0, segments+1)
	for i := 0; i <= segments; i++ {
		t := float64(i) / float64(segments)
		rad := (startDeg + t*sweep) * math.Pi / 180.0
		points = append(points, Point{
			X: center.X + rx*math.Cos(rad),
			Y: center.Y + ry*math.Sin(rad),
		})
	}
	return points
}

// PointOnCircle returns the point at angleDeg on a circle.
func PointOnCircle(center Point, radius, angleDeg float64) Point {
	rad := angleDeg * math.Pi / 180.0
	return Point{
		X: center.X + radius*math.Cos(rad),
		Y: center.Y + radius*math.Sin(rad),
	}
}

// AngleOf returns atan2(p - center) in degrees.
func AngleOf(p, center Point) float64 {
	return math.Atan2(p.Y-center.Y, p.X-center.X) * 180.0 / math.Pi
}

// ArcThrough recovers the circle through start, mid and end and returns its
// center, radius and the counter-clockwise angles from start to end that
// pass through mid. ok is false for collinear points.
func ArcThrough(start, mid, end Point) (center Point, radius, startDeg, endDeg float64, ok bool) {
	d := 2 * (start.X*(mid.Y-end.Y) + mid.X*(end.Y-start.Y) + end.X*(start.Y-mid.Y))
	if math.Abs(d) < 1e-12 {
		return Point{}, 0, 0, 0, false
	}
	s2 := start.X*start.X + start.Y*start.Y
	m2 := mid.X*mid.X + mid.Y*mid.Y
	e2 := end.X*end.X + end.Y*end.Y
	center = Point{
		X: (s2*(mid.Y-end.Y) + m2*(end.Y-start.Y) + e2*(start.Y-mid.Y)) / d,
		Y: (s2*(end.X-mid.X) + m2*(start.X-end.X) + e2*(mid.X-start.X)) / d,
	}
	radius = math.Hypot(start.X-center.X, start.Y-center.Y)

	startDeg = AngleOf(start, center)
	endDeg = AngleOf(end, center)
	midDeg := AngleOf(mid, center)
	for endDeg < startDeg {
		endDeg += 360
	}
	for midDeg < startDeg {
		midDeg += 360
	}
	if midDeg > endDeg {
		// clockwise: sweep from end round to start
		startDeg, endDeg = endDeg, startDeg+360
	}
	return center, radius, startDeg, endDeg, true
}
