package easyeda

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/OpenTraceLab/eda2kicad/pkg/geom"
	"github.com/OpenTraceLab/eda2kicad/pkg/model"
)

// Symbol shape defaults
const (
	defaultSymbolStroke = 0.254 // mm
	defaultFontSize     = 1.27  // mm
)

// SymbolParser turns symbol shape commands into a model.Symbol
type SymbolParser struct {
	logger *slog.Logger

	// UseElectricalCodes reads the pin electrical type from field 2 of P
	// commands. Off by default: the code there is unreliable and pins are
	// left unspecified.
	UseElectricalCodes bool
}

// NewSymbolParser creates a parser logging skipped shapes to logger.
// A nil logger discards.
func NewSymbolParser(logger *slog.Logger) *SymbolParser {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &SymbolParser{logger: logger}
}

type symbolShapeFunc func(p *SymbolParser, sym *model.Symbol, s Shape) error

var symbolShapes = map[string]symbolShapeFunc{
	"P":  (*SymbolParser).parsePin,
	"R":  (*SymbolParser).parseRectangle,
	"PL": (*SymbolParser).parsePolyline,
	"L":  (*SymbolParser).parseLine,
	"C":  (*SymbolParser).parseCircle,
	"E":  (*SymbolParser).parseCircle,
	"A":  (*SymbolParser).parseArc,
	"T":  (*SymbolParser).parseText,
	"PG": (*SymbolParser).parsePolygon,
}

// Parse builds a symbol named name from shape commands. Malformed commands
// are logged and skipped. The symbol offset is set from the parsed geometry.
func (p *SymbolParser) Parse(name string, shapes []string) *model.Symbol {
	sym := model.NewSymbol(name)

	for i, raw := range shapes {
		s, ok := ParseShape(raw)
		if !ok {
			continue
		}
		fn, ok := symbolShapes[s.Tag]
		if !ok {
			p.logger.Debug("ignoring symbol shape", "tag", s.Tag, "index", i)
			continue
		}
		if err := p.apply(fn, sym, s); err != nil {
			p.logger.Warn("skipping symbol shape", "tag", s.Tag, "index", i, "err", err)
		}
	}

	p.setOffset(sym)
	return sym
}

func (p *SymbolParser) apply(fn symbolShapeFunc, sym *model.Symbol, s Shape) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("easyeda: %s: %v", s.Tag, r)
		}
	}()
	return fn(p, sym, s)
}

// parsePin handles P~show~elec~number~x~y~rotation~...
func (p *SymbolParser) parsePin(sym *model.Symbol, s Shape) error {
	if err := s.Require(7); err != nil {
		return err
	}

	name, _ := ExtractPinName(s.Fields)
	pinType := model.PinUnspecified
	if p.UseElectricalCodes {
		pinType = model.PinTypeFromCode(s.Field(2))
	}

	sym.Pins = append(sym.Pins, model.Pin{
		Number:        s.Field(3),
		Name:          name,
		Position:      s.Point(4),
		Length:        model.DefaultPinLength,
		Rotation:      geom.NormalizeAngle(s.Number(6, 0) + 180),
		Type:          pinType,
		Shape:         model.PinShapeLine,
		NameVisible:   true,
		NumberVisible: true,
	})
	return nil
}

// parseRectangle handles R~x~y~rx~ry~width~height~color~stroke~...
func (p *SymbolParser) parseRectangle(sym *model.Symbol, s Shape) error {
	if err := s.Require(7); err != nil {
		return err
	}

	x := s.MM(1)
	y := s.MM(2)
	width := s.MM(5)
	height := s.MM(6)

	stroke := defaultSymbolStroke
	if s.Len() > 8 {
		stroke = s.MM(8)
	}

	sym.Rectangles = append(sym.Rectangles, model.Rectangle{
		// EasyEDA anchors at the top-left corner; flip to bottom-left
		Position:    geom.Point{X: x, Y: -y - height},
		Width:       width,
		Height:      height,
		StrokeWidth: model.ClampStroke(stroke),
		Fill:        model.FillNone,
	})
	return nil
}

// parsePolyline handles PL~points~color~stroke~...
func (p *SymbolParser) parsePolyline(sym *model.Symbol, s Shape) error {
	_, err := p.addPolyline(sym, s)
	return err
}

func (p *SymbolParser) addPolyline(sym *model.Symbol, s Shape) (bool, error) {
	if err := s.Require(2); err != nil {
		return false, err
	}

	points := ParsePointList(s.Field(1))
	if len(points) == 0 {
		return false, nil
	}

	stroke := defaultSymbolStroke
	if s.Len() > 3 {
		stroke = s.MM(3)
	}

	sym.Polylines = append(sym.Polylines, model.Polyline{
		Points:      points,
		StrokeWidth: model.ClampStroke(stroke),
		Fill:        model.FillNone,
	})
	return true, nil
}

// parsePolygon handles PG, a closed polyline drawn with an outline fill
func (p *SymbolParser) parsePolygon(sym *model.Symbol, s Shape) error {
	added, err := p.addPolyline(sym, s)
	if added {
		sym.Polylines[len(sym.Polylines)-1].Fill = model.FillOutline
	}
	return err
}

// parseLine handles L~x1~y1~x2~y2~...
func (p *SymbolParser) parseLine(sym *model.Symbol, s Shape) error {
	if err := s.Require(5); err != nil {
		return err
	}

	sym.Polylines = append(sym.Polylines, model.Polyline{
		Points:      []geom.Point{s.Point(1), s.Point(3)},
		StrokeWidth: defaultSymbolStroke,
		Fill:        model.FillNone,
	})
	return nil
}

// parseCircle handles C~cx~cy~r~... and E~cx~cy~rx~ry~...
func (p *SymbolParser) parseCircle(sym *model.Symbol, s Shape) error {
	if err := s.Require(4); err != nil {
		return err
	}

	sym.Circles = append(sym.Circles, model.Circle{
		Center:      s.Point(1),
		Radius:      s.MM(3),
		StrokeWidth: defaultSymbolStroke,
		Fill:        model.FillNone,
	})
	return nil
}

// parseArc handles A~cx~cy~rx~ry~start~end~...
func (p *SymbolParser) parseArc(sym *model.Symbol, s Shape) error {
	if err := s.Require(7); err != nil {
		return err
	}

	start := s.Number(5, 0)
	end := s.Number(6, 0)

	// The Y flip mirrors the sweep, so the angles swap and negate together
	sym.Arcs = append(sym.Arcs, model.Arc{
		Center:      s.Point(1),
		Radius:      (s.MM(3) + s.MM(4)) / 2,
		StartAngle:  -end,
		EndAngle:    -start,
		StrokeWidth: defaultSymbolStroke,
	})
	return nil
}

// parseText handles T~mark~x~y~rotation~color~font~size~content~...
func (p *SymbolParser) parseText(sym *model.Symbol, s Shape) error {
	if err := s.Require(7); err != nil {
		return err
	}

	content := s.Field(8)
	if content == "" || content[0] == '#' {
		return nil
	}

	size := defaultFontSize
	if s.Has(6) {
		size = s.MM(6)
	}

	sym.Texts = append(sym.Texts, model.Text{
		Text:     content,
		Position: s.Point(2),
		FontSize: model.ClampFont(size),
		Rotation: s.Number(4, 0),
		HAlign:   "center",
		VAlign:   "center",
	})
	return nil
}

// setOffset centers the symbol on the bounding box of its extent points
func (p *SymbolParser) setOffset(sym *model.Symbol) {
	pts := sym.ExtentPoints()
	if len(pts) == 0 {
		return
	}
	sym.Offset = geom.BoundingBox(pts).Center().Neg()
}
