package model

import (
	"math"
	"strconv"

	"github.com/OpenTraceLab/eda2kicad/pkg/geom"
)

// PadShape is the KiCad pad shape keyword
type PadShape string

// Pad shapes
const (
	PadRect      PadShape = "rect"
	PadCircle    PadShape = "circle"
	PadOval      PadShape = "oval"
	PadRoundRect PadShape = "roundrect"
	PadTrapezoid PadShape = "trapezoid"
	PadCustom    PadShape = "custom"
)

// PadType is the KiCad pad attribute keyword
type PadType string

// Pad types
const (
	PadSMD      PadType = "smd"
	PadThruHole PadType = "thru_hole"
	PadNPTH     PadType = "np_thru_hole"
	PadConnect  PadType = "connect"
)

// Layer sets assigned to pads
var (
	LayersThruHole = []string{"*.Cu", "*.Paste", "*.Mask"}
	LayersFrontSMD = []string{"F.Cu", "F.Paste", "F.Mask"}
	LayersBackSMD  = []string{"B.Cu", "B.Paste", "B.Mask"}
)

// Default footprint styling
const (
	DefaultLineStroke     = 0.12
	DefaultRoundRectRatio = 0.25
	CourtyardStroke       = 0.05
	CourtyardMargin       = 0.25
)

// Pad represents a footprint pad
type Pad struct {
	Number         string
	Position       Point
	Width          float64
	Height         float64
	Shape          PadShape
	Type           PadType
	Rotation       float64 // degrees
	DrillSize      float64
	DrillShape     string
	Layers         []string
	RoundRectRatio float64
	// Outline holds the polygon of a custom pad in absolute coordinates.
	Outline []Point
}

// IsThroughHole reports whether the pad has a drill.
func (p Pad) IsThroughHole() bool {
	return p.Type == PadThruHole || p.Type == PadNPTH
}

// Corners returns the four corners of the pad copper rectangle with
// rotation applied.
func (p Pad) Corners() [4]Point {
	hw, hh := p.Width/2, p.Height/2
	local := [4]Point{
		{X: -hw, Y: -hh},
		{X: hw, Y: -hh},
		{X: hw, Y: hh},
		{X: -hw, Y: hh},
	}
	var out [4]Point
	for i, c := range local {
		if p.Rotation != 0 {
			c = geom.RotatePoint(c, p.Rotation, Point{})
		}
		out[i] = c.Add(p.Position)
	}
	return out
}

// Line is a footprint graphic segment
type Line struct {
	Start       Point
	End         Point
	Layer       string
	StrokeWidth float64
}

// FpCircle is a footprint circle
type FpCircle struct {
	Center      Point
	Radius      float64
	Layer       string
	StrokeWidth float64
	Fill        string
}

// FpArc is a footprint arc stored by center, radius and angles in degrees
type FpArc struct {
	Center      Point
	Radius      float64
	StartAngle  float64
	EndAngle    float64
	Layer       string
	StrokeWidth float64
}

// StartPoint returns the point at StartAngle.
func (a FpArc) StartPoint() Point { return geom.PointOnCircle(a.Center, a.Radius, a.StartAngle) }

// MidPoint returns the point at the mean of StartAngle and EndAngle.
func (a FpArc) MidPoint() Point {
	return geom.PointOnCircle(a.Center, a.Radius, (a.StartAngle+a.EndAngle)/2)
}

// EndPoint returns the point at EndAngle.
func (a FpArc) EndPoint() Point { return geom.PointOnCircle(a.Center, a.Radius, a.EndAngle) }

// Polygon is a filled footprint region
type Polygon struct {
	Points      []Point
	Layer       string
	StrokeWidth float64
	Fill        string
}

// Text kinds on a footprint
const (
	TextReference = "reference"
	TextValue     = "value"
	TextUser      = "user"
)

// FpText is a footprint text item
type FpText struct {
	Text      string
	Position  Point
	Layer     string
	FontSize  float64
	Thickness float64
	Rotation  float64
	Kind      string
}

// Hole is a non-plated mounting hole
type Hole struct {
	Position Point
	Diameter float64
}

// Footprint is a parsed PCB footprint
type Footprint struct {
	Name string

	Pads     []Pad
	Lines    []Line
	Circles  []FpCircle
	Arcs     []FpArc
	Polygons []Polygon
	Texts    []FpText
	Holes    []Hole

	Model3DPath     string
	Model3DOffset   Vec3
	Model3DRotation Vec3
	Model3DScale    Vec3

	// Bounds is nil until computed and stays nil without geometry.
	Bounds *Box
}

// NewFootprint returns an empty footprint with unit model scale.
func NewFootprint(name string) *Footprint {
	return &Footprint{
		Name:         name,
		Model3DScale: Vec3{X: 1, Y: 1, Z: 1},
	}
}

// HasCourtyard reports whether any line lies on a courtyard layer.
func (f *Footprint) HasCourtyard() bool {
	for _, l := range f.Lines {
		if l.Layer == "F.CrtYd" || l.Layer == "B.CrtYd" {
			return true
		}
	}
	return false
}

// HasGeometry reports whether anything besides text was parsed.
func (f *Footprint) HasGeometry() bool {
	return len(f.Pads)+len(f.Lines)+len(f.Circles)+len(f.Arcs)+len(f.Polygons)+len(f.Holes) > 0
}

// HasThroughHole reports whether any pad is drilled.
func (f *Footprint) HasThroughHole() bool {
	for _, p := range f.Pads {
		if p.Type == PadThruHole {
			return true
		}
	}
	return false
}

// PadCenterBox returns the bounding box of all pad centers. ok is false
// when the footprint has no pads.
func (f *Footprint) PadCenterBox() (box Box, ok bool) {
	if len(f.Pads) == 0 {
		return Box{}, false
	}
	pts := make([]Point, len(f.Pads))
	for i, p := range f.Pads {
		pts[i] = p.Position
	}
	return geom.BoundingBox(pts), true
}

// Centroid returns the center of the pad-center bounding box, falling back
// to line endpoints and circle centers when there are no pads. ok is false
// when there is nothing to center on.
func (f *Footprint) Centroid() (c Point, ok bool) {
	if box, ok := f.PadCenterBox(); ok {
		return box.Center(), true
	}
	var pts []Point
	for _, l := range f.Lines {
		pts = append(pts, l.Start, l.End)
	}
	for _, c := range f.Circles {
		pts = append(pts, c.Center)
	}
	if len(pts) == 0 {
		return Point{}, false
	}
	return geom.BoundingBox(pts).Center(), true
}

// Translate moves every primitive by d.
func (f *Footprint) Translate(d Point) {
	for i := range f.Pads {
		f.Pads[i].Position = f.Pads[i].Position.Add(d)
		for j := range f.Pads[i].Outline {
			f.Pads[i].Outline[j] = f.Pads[i].Outline[j].Add(d)
		}
	}
	for i := range f.Lines {
		f.Lines[i].Start = f.Lines[i].Start.Add(d)
		f.Lines[i].End = f.Lines[i].End.Add(d)
	}
	for i := range f.Circles {
		f.Circles[i].Center = f.Circles[i].Center.Add(d)
	}
	for i := range f.Arcs {
		f.Arcs[i].Center = f.Arcs[i].Center.Add(d)
	}
	for i := range f.Polygons {
		for j := range f.Polygons[i].Points {
			f.Polygons[i].Points[j] = f.Polygons[i].Points[j].Add(d)
		}
	}
	for i := range f.Texts {
		f.Texts[i].Position = f.Texts[i].Position.Add(d)
	}
	for i := range f.Holes {
		f.Holes[i].Position = f.Holes[i].Position.Add(d)
	}
}

// arcSegments is the sampling used when arcs contribute to bounds
const arcSegments = 16

// ComputeBounds recomputes Bounds from pads, lines, circles, arcs, polygons
// and holes. Texts are not included.
func (f *Footprint) ComputeBounds() {
	var pts []Point
	for _, p := range f.Pads {
		c := p.Corners()
		pts = append(pts, c[:]...)
	}
	for _, l := range f.Lines {
		pts = append(pts, l.Start, l.End)
	}
	for _, c := range f.Circles {
		pts = append(pts,
			Point{X: c.Center.X - c.Radius, Y: c.Center.Y - c.Radius},
			Point{X: c.Center.X + c.Radius, Y: c.Center.Y + c.Radius})
	}
	for _, a := range f.Arcs {
		pts = append(pts, geom.ArcPoints(a.Center, a.Radius, a.Radius, a.StartAngle, a.EndAngle, arcSegments)...)
	}
	for _, pg := range f.Polygons {
		pts = append(pts, pg.Points...)
	}
	for _, h := range f.Holes {
		r := h.Diameter / 2
		pts = append(pts,
			Point{X: h.Position.X - r, Y: h.Position.Y - r},
			Point{X: h.Position.X + r, Y: h.Position.Y + r})
	}
	if len(pts) == 0 {
		f.Bounds = nil
		return
	}
	b := geom.BoundingBox(pts)
	f.Bounds = &b
}

// AddCourtyard appends a closed rectangle on F.CrtYd around Bounds. It
// returns false when there are no bounds to outline.
func (f *Footprint) AddCourtyard() bool {
	if f.Bounds == nil {
		return false
	}
	b := geom.ExpandBox(*f.Bounds, CourtyardMargin)
	c := b.Corners()
	for i := range c {
		f.Lines = append(f.Lines, Line{
			Start:       c[i],
			End:         c[(i+1)%4],
			Layer:       "F.CrtYd",
			StrokeWidth: CourtyardStroke,
		})
	}
	return true
}

// PinOne returns the index of the orientation pad: the first pad numbered
// 1, A1, A or P1, else the lowest purely numeric number, else the first pad.
// It returns -1 when there are no pads.
func (f *Footprint) PinOne() int {
	if len(f.Pads) == 0 {
		return -1
	}
	for i, p := range f.Pads {
		switch p.Number {
		case "1", "A1", "A", "P1":
			return i
		}
	}
	best, bestNum := -1, math.MaxInt
	for i, p := range f.Pads {
		if !isDigits(p.Number) {
			continue
		}
		n, err := strconv.Atoi(p.Number)
		if err != nil {
			continue
		}
		if n < bestNum {
			best, bestNum = i, n
		}
	}
	if best >= 0 {
		return best
	}
	return 0
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
