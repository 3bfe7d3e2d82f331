package model

import "strings"

// PinType is the electrical type of a symbol pin
type PinType string

// Pin electrical types
const (
	PinInput         PinType = "input"
	PinOutput        PinType = "output"
	PinBidirectional PinType = "bidirectional"
	PinTriState      PinType = "tri_state"
	PinPassive       PinType = "passive"
	PinFree          PinType = "free"
	PinUnspecified   PinType = "unspecified"
	PinPowerIn       PinType = "power_in"
	PinPowerOut      PinType = "power_out"
	PinOpenCollector PinType = "open_collector"
	PinOpenEmitter   PinType = "open_emitter"
	PinNoConnect     PinType = "no_connect"
)

var pinTypeCodes = map[string]PinType{
	"0":  PinUnspecified,
	"1":  PinInput,
	"2":  PinOutput,
	"3":  PinBidirectional,
	"4":  PinPowerIn,
	"5":  PinPowerOut,
	"6":  PinOpenCollector,
	"7":  PinOpenEmitter,
	"8":  PinPassive,
	"9":  PinTriState,
	"10": PinNoConnect,
}

// PinTypeFromCode maps an EasyEDA electrical code to a PinType.
// Unknown codes are unspecified.
func PinTypeFromCode(code string) PinType {
	if t, ok := pinTypeCodes[strings.TrimSpace(code)]; ok {
		return t
	}
	return PinUnspecified
}

// PinShape is the graphic style of a pin
type PinShape string

// Pin graphic shapes
const (
	PinShapeLine          PinShape = "line"
	PinShapeInverted      PinShape = "inverted"
	PinShapeClock         PinShape = "clock"
	PinShapeInvertedClock PinShape = "inverted_clock"
	PinShapeInputLow      PinShape = "input_low"
	PinShapeClockLow      PinShape = "clock_low"
	PinShapeOutputLow     PinShape = "output_low"
	PinShapeEdgeClockHigh PinShape = "edge_clock_high"
	PinShapeNonLogic      PinShape = "non_logic"
)

// DefaultPinLength is the length given to every parsed pin (mm).
const DefaultPinLength = 2.54

// Pin represents a symbol pin
type Pin struct {
	Number        string
	Name          string
	Position      Point
	Length        float64
	Rotation      float64 // degrees, [0,360)
	Type          PinType
	Shape         PinShape
	Hidden        bool
	NameVisible   bool
	NumberVisible bool
}

// Rectangle is a symbol body rectangle anchored at its lower-left corner
type Rectangle struct {
	Position    Point
	Width       float64
	Height      float64
	StrokeWidth float64
	Fill        string
}

// End returns the corner opposite to Position.
func (r Rectangle) End() Point {
	return Point{X: r.Position.X + r.Width, Y: r.Position.Y + r.Height}
}

// Polyline is an open or closed symbol outline
type Polyline struct {
	Points      []Point
	StrokeWidth float64
	Fill        string
}

// Circle is a symbol circle
type Circle struct {
	Center      Point
	Radius      float64
	StrokeWidth float64
	Fill        string
}

// Arc is a symbol arc expressed by center, radius and angles in degrees
type Arc struct {
	Center      Point
	Radius      float64
	StartAngle  float64
	EndAngle    float64
	StrokeWidth float64
}

// Text is a free text item on a symbol
type Text struct {
	Text     string
	Position Point
	FontSize float64
	Rotation float64
	HAlign   string
	VAlign   string
}

// Symbol is a parsed schematic symbol
type Symbol struct {
	Name            string
	ReferencePrefix string

	Pins       []Pin
	Rectangles []Rectangle
	Polylines  []Polyline
	Circles    []Circle
	Arcs       []Arc
	Texts      []Text

	Properties map[string]string

	// Offset is the negated centroid of the parsed geometry.
	Offset    Point
	UnitCount int
}

// NewSymbol returns an empty symbol with default prefix and one unit.
func NewSymbol(name string) *Symbol {
	return &Symbol{
		Name:            name,
		ReferencePrefix: "U",
		Properties:      make(map[string]string),
		UnitCount:       1,
	}
}

// HasGeometry reports whether the symbol holds anything drawable.
func (s *Symbol) HasGeometry() bool {
	return len(s.Pins)+len(s.Rectangles)+len(s.Polylines)+len(s.Circles)+len(s.Arcs) > 0
}

// ExtentPoints returns the points used to center the symbol: pin positions,
// rectangle corners, polyline vertices and circle extents.
func (s *Symbol) ExtentPoints() []Point {
	var pts []Point
	for _, p := range s.Pins {
		pts = append(pts, p.Position)
	}
	for _, r := range s.Rectangles {
		pts = append(pts, r.Position, r.End())
	}
	for _, pl := range s.Polylines {
		pts = append(pts, pl.Points...)
	}
	for _, c := range s.Circles {
		pts = append(pts,
			Point{X: c.Center.X - c.Radius, Y: c.Center.Y - c.Radius},
			Point{X: c.Center.X + c.Radius, Y: c.Center.Y + c.Radius})
	}
	return pts
}

// IsPower reports whether the reference prefix marks a power symbol.
func (s *Symbol) IsPower() bool {
	switch strings.ToUpper(s.ReferencePrefix) {
	case "VCC", "VDD", "GND", "VSS":
		return true
	}
	return false
}
