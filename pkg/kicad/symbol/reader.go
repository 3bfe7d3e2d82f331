package symbol

import (
	"fmt"
	"io"
	"strings"

	"github.com/OpenTraceLab/eda2kicad/pkg/geom"
	"github.com/OpenTraceLab/eda2kicad/pkg/kicad/sexp"
	"github.com/OpenTraceLab/eda2kicad/pkg/kicad/sexp/kicadsexp"
	"github.com/OpenTraceLab/eda2kicad/pkg/model"
)

// Property is a named symbol property as read from a library
type Property struct {
	Name   string
	Value  string
	Hidden bool
}

// LibSymbol is one symbol read back from a library
type LibSymbol struct {
	Name       string
	Properties []Property
	Power      bool
	InBom      bool
	OnBoard    bool

	// Symbol holds the graphics and pins of all units. Coordinates are
	// as written, so Offset is zero.
	Symbol *model.Symbol
}

// Property returns the value of the named property
func (s *LibSymbol) Property(name string) (string, bool) {
	for _, p := range s.Properties {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

// Library is a parsed kicad_symbol_lib
type Library struct {
	Version   string
	Generator string
	Symbols   []*LibSymbol
}

// Find returns the symbol called name
func (l *Library) Find(name string) (*LibSymbol, bool) {
	for _, s := range l.Symbols {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// ReadLibrary parses a KiCad symbol library
func ReadLibrary(r io.Reader) (*Library, error) {
	sexps, err := kicadsexp.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("symbol: failed to parse s-expression: %w", err)
	}
	if len(sexps) == 0 {
		return nil, fmt.Errorf("symbol: empty file or no valid s-expressions found")
	}

	root := sexps[0]
	rootName, err := sexp.GetNodeName(root)
	if err != nil {
		return nil, fmt.Errorf("symbol: failed to get root node name: %w", err)
	}
	if rootName != "kicad_symbol_lib" {
		return nil, fmt.Errorf("symbol: not a KiCad symbol library: expected 'kicad_symbol_lib', got '%s'", rootName)
	}

	lib := &Library{}
	if v, ok := sexp.GetChildString(root, "version"); ok {
		lib.Version = v
	}
	if g, ok := sexp.GetChildString(root, "generator"); ok {
		lib.Generator = g
	}

	for _, node := range sexp.FindAllNodes(root, "symbol") {
		sym, err := readSymbol(node)
		if err != nil {
			return nil, err
		}
		lib.Symbols = append(lib.Symbols, sym)
	}
	return lib, nil
}

// ReadLibraryString parses library text
func ReadLibraryString(text string) (*Library, error) {
	return ReadLibrary(strings.NewReader(text))
}

func readSymbol(node kicadsexp.Sexp) (*LibSymbol, error) {
	name, err := sexp.GetString(node, 1)
	if err != nil {
		return nil, fmt.Errorf("symbol: missing name: %w", err)
	}

	ls := &LibSymbol{
		Name:    name,
		InBom:   true,
		OnBoard: true,
		Symbol:  model.NewSymbol(name),
	}

	for _, pn := range sexp.FindAllNodes(node, "property") {
		key, value, err := sexp.GetProperty(pn)
		if err != nil {
			return nil, fmt.Errorf("symbol %q: %w", name, err)
		}
		ls.Properties = append(ls.Properties, Property{Name: key, Value: value, Hidden: sexp.IsHidden(pn)})
		switch key {
		case "Reference":
			ls.Symbol.ReferencePrefix = value
		case "Value":
			ls.Symbol.Name = value
		case "Description":
			if value != "" {
				ls.Symbol.Properties["description"] = value
			}
		}
	}

	ls.Power = len(sexp.FindAllNodes(node, "power")) > 0
	if v, ok := sexp.GetChildString(node, "in_bom"); ok {
		ls.InBom = v == "yes"
	}
	if v, ok := sexp.GetChildString(node, "on_board"); ok {
		ls.OnBoard = v == "yes"
	}

	units := sexp.FindAllNodes(node, "symbol")
	ls.Symbol.UnitCount = max(len(units), 1)
	for _, unit := range units {
		if err := readUnit(unit, ls.Symbol); err != nil {
			return nil, fmt.Errorf("symbol %q: %w", name, err)
		}
	}
	return ls, nil
}

// readUnit appends the graphics and pins of a unit block to sym
func readUnit(node kicadsexp.Sexp, sym *model.Symbol) error {
	for _, rn := range sexp.FindAllNodes(node, "rectangle") {
		start, err := sexp.GetChildXY(rn, "start")
		if err != nil {
			return fmt.Errorf("rectangle: %w", err)
		}
		end, err := sexp.GetChildXY(rn, "end")
		if err != nil {
			return fmt.Errorf("rectangle: %w", err)
		}
		box := geom.BoundingBox([]geom.Point{start, end})
		sym.Rectangles = append(sym.Rectangles, model.Rectangle{
			Position:    geom.Point{X: box.MinX, Y: box.MinY},
			Width:       box.Width(),
			Height:      box.Height(),
			StrokeWidth: sexp.GetStrokeWidth(rn),
			Fill:        readFill(rn),
		})
	}

	for _, pn := range sexp.FindAllNodes(node, "polyline") {
		pts, err := sexp.GetPoints(pn)
		if err != nil {
			return fmt.Errorf("polyline: %w", err)
		}
		sym.Polylines = append(sym.Polylines, model.Polyline{
			Points:      pts,
			StrokeWidth: sexp.GetStrokeWidth(pn),
			Fill:        readFill(pn),
		})
	}

	for _, cn := range sexp.FindAllNodes(node, "circle") {
		center, err := sexp.GetChildXY(cn, "center")
		if err != nil {
			return fmt.Errorf("circle: %w", err)
		}
		radius, _ := sexp.GetChildFloat(cn, "radius")
		sym.Circles = append(sym.Circles, model.Circle{
			Center:      center,
			Radius:      radius,
			StrokeWidth: sexp.GetStrokeWidth(cn),
			Fill:        readFill(cn),
		})
	}

	for _, an := range sexp.FindAllNodes(node, "arc") {
		arc, err := readArc(an)
		if err != nil {
			return fmt.Errorf("arc: %w", err)
		}
		sym.Arcs = append(sym.Arcs, arc)
	}

	for _, pn := range sexp.FindAllNodes(node, "pin") {
		pin, err := readPin(pn)
		if err != nil {
			return fmt.Errorf("pin: %w", err)
		}
		sym.Pins = append(sym.Pins, pin)
	}
	return nil
}

func readPin(node kicadsexp.Sexp) (model.Pin, error) {
	pin := model.Pin{Length: model.DefaultPinLength}

	pinType, _ := sexp.GetString(node, 1)
	pin.Type = model.PinType(pinType)
	shape, _ := sexp.GetString(node, 2)
	pin.Shape = model.PinShape(shape)

	pos, angle, err := sexp.GetAt(node)
	if err != nil {
		return pin, err
	}
	pin.Position = pos
	pin.Rotation = geom.NormalizeAngle(angle)

	if length, ok := sexp.GetChildFloat(node, "length"); ok {
		pin.Length = length
	}

	pin.Hidden = sexp.HasSymbol(node, "hide")
	if v, ok := sexp.GetChildString(node, "hide"); ok {
		pin.Hidden = v == "yes"
	}

	if nameNode := sexp.FindAllNodes(node, "name"); len(nameNode) > 0 {
		pin.Name, _ = sexp.GetString(nameNode[0], 1)
		pin.NameVisible = !sexp.IsHidden(nameNode[0])
	}
	if numNode := sexp.FindAllNodes(node, "number"); len(numNode) > 0 {
		pin.Number, _ = sexp.GetString(numNode[0], 1)
		pin.NumberVisible = !sexp.IsHidden(numNode[0])
	}
	return pin, nil
}

// readArc recovers center, radius and angles from the start/mid/end form
func readArc(node kicadsexp.Sexp) (model.Arc, error) {
	start, err := sexp.GetChildXY(node, "start")
	if err != nil {
		return model.Arc{}, err
	}
	mid, err := sexp.GetChildXY(node, "mid")
	if err != nil {
		return model.Arc{}, err
	}
	end, err := sexp.GetChildXY(node, "end")
	if err != nil {
		return model.Arc{}, err
	}

	center, radius, startAngle, endAngle, ok := geom.ArcThrough(start, mid, end)
	if !ok {
		return model.Arc{}, fmt.Errorf("collinear arc points")
	}
	return model.Arc{
		Center:      center,
		Radius:      radius,
		StartAngle:  startAngle,
		EndAngle:    endAngle,
		StrokeWidth: sexp.GetStrokeWidth(node),
	}, nil
}

func readFill(node kicadsexp.Sexp) string {
	for _, fill := range sexp.FindAllNodes(node, "fill") {
		if v, ok := sexp.GetChildString(fill, "type"); ok {
			return v
		}
	}
	return model.FillNone
}
