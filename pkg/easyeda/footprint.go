package easyeda

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/OpenTraceLab/eda2kicad/pkg/easyeda/svgpath"
	"github.com/OpenTraceLab/eda2kicad/pkg/geom"
	"github.com/OpenTraceLab/eda2kicad/pkg/model"
)

// minViaDrill drops vias with smaller drills (mm)
const minViaDrill = 0.1

var padShapes = map[string]model.PadShape{
	"ELLIPSE": model.PadCircle,
	"ROUND":   model.PadCircle,
	"OVAL":    model.PadOval,
	"RECT":    model.PadRect,
	"POLYGON": model.PadCustom,
}

// FootprintParser turns footprint shape commands into a model.Footprint
type FootprintParser struct {
	logger *slog.Logger
}

// NewFootprintParser creates a parser logging skipped shapes to logger.
// A nil logger discards.
func NewFootprintParser(logger *slog.Logger) *FootprintParser {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &FootprintParser{logger: logger}
}

type footprintShapeFunc func(p *FootprintParser, fp *model.Footprint, s Shape) error

var footprintShapes = map[string]footprintShapeFunc{
	"PAD":         (*FootprintParser).parsePad,
	"TRACK":       (*FootprintParser).parseTrack,
	"CIRCLE":      (*FootprintParser).parseCircle,
	"ARC":         (*FootprintParser).parseArc,
	"RECT":        (*FootprintParser).parseRect,
	"SOLIDREGION": (*FootprintParser).parseSolidRegion,
	"TEXT":        (*FootprintParser).parseText,
	"HOLE":        (*FootprintParser).parseHole,
	"VIA":         (*FootprintParser).parseVia,
}

// Parse builds a footprint named name from shape commands. Malformed
// commands are logged and skipped. The result is centered on its pads,
// has Bounds computed and gets a courtyard when it has none.
func (p *FootprintParser) Parse(name string, shapes []string) *model.Footprint {
	fp := model.NewFootprint(name)

	for i, raw := range shapes {
		s, ok := ParseShape(raw)
		if !ok {
			continue
		}
		if s.Tag == "SVGNODE" {
			continue
		}
		fn, ok := footprintShapes[s.Tag]
		if !ok {
			p.logger.Debug("ignoring footprint shape", "tag", s.Tag, "index", i)
			continue
		}
		if err := p.apply(fn, fp, s); err != nil {
			p.logger.Warn("skipping footprint shape", "tag", s.Tag, "index", i, "err", err)
		}
	}

	if c, ok := fp.Centroid(); ok {
		fp.Translate(c.Neg())
	}
	fp.ComputeBounds()
	if !fp.HasCourtyard() && fp.AddCourtyard() {
		p.logger.Debug("synthesized courtyard", "footprint", name)
	}
	return fp
}

func (p *FootprintParser) apply(fn footprintShapeFunc, fp *model.Footprint, s Shape) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("easyeda: %s: %v", s.Tag, r)
		}
	}()
	return fn(p, fp, s)
}

// parsePad handles PAD~shape~x~y~w~h~layer~net~number~holeR~points~rotation~...
func (p *FootprintParser) parsePad(fp *model.Footprint, s Shape) error {
	if err := s.Require(9); err != nil {
		return err
	}

	width := s.MM(4)
	height := s.MM(5)
	if width <= 0 || height <= 0 {
		return fmt.Errorf("easyeda: PAD %q has non-positive size %gx%g", s.Field(8), width, height)
	}

	shape, ok := padShapes[strings.ToUpper(strings.TrimSpace(s.Field(1)))]
	if !ok {
		shape = model.PadRect
	}

	pad := model.Pad{
		Number:         strings.TrimSpace(s.Field(8)),
		Position:       s.Point(2),
		Width:          width,
		Height:         height,
		Shape:          shape,
		Type:           model.PadSMD,
		DrillShape:     "circle",
		RoundRectRatio: model.DefaultRoundRectRatio,
	}

	if s.Has(9) {
		if r := s.MM(9); r > 0 {
			pad.DrillSize = r * 2
			pad.Type = model.PadThruHole
		}
	}
	if s.Has(11) {
		pad.Rotation = s.Number(11, 0)
	}

	switch layer := model.LayerFromCode(s.Field(6)); {
	case pad.Type == model.PadThruHole:
		pad.Layers = append([]string(nil), model.LayersThruHole...)
	case model.IsFrontLayer(layer):
		pad.Layers = append([]string(nil), model.LayersFrontSMD...)
	default:
		pad.Layers = append([]string(nil), model.LayersBackSMD...)
	}

	if shape == model.PadCustom {
		pad.Outline = ParsePointList(s.Field(10))
		if len(pad.Outline) < 3 {
			// No usable outline; fall back to the bounding rectangle
			pad.Shape = model.PadRect
			pad.Outline = nil
		}
	}

	fp.Pads = append(fp.Pads, pad)
	return nil
}

// parseTrack handles TRACK~stroke~layer~net~points~...
func (p *FootprintParser) parseTrack(fp *model.Footprint, s Shape) error {
	if err := s.Require(5); err != nil {
		return err
	}

	stroke := model.ClampStroke(s.MM(1))
	layer := model.LayerFromCode(s.Field(2))
	points := ParsePointList(s.Field(4))

	for i := 0; i+1 < len(points); i++ {
		fp.Lines = append(fp.Lines, model.Line{
			Start:       points[i],
			End:         points[i+1],
			Layer:       layer,
			StrokeWidth: stroke,
		})
	}
	return nil
}

// parseCircle handles CIRCLE~cx~cy~r~stroke~layer~...
func (p *FootprintParser) parseCircle(fp *model.Footprint, s Shape) error {
	if err := s.Require(6); err != nil {
		return err
	}

	fp.Circles = append(fp.Circles, model.FpCircle{
		Center:      s.Point(1),
		Radius:      s.MM(3),
		Layer:       model.LayerFromCode(s.Field(5)),
		StrokeWidth: model.ClampStroke(s.MM(4)),
		Fill:        model.FillNone,
	})
	return nil
}

// parseArc handles ARC~stroke~layer~net~path~...
//
// The center is approximated by the midpoint of the arc end points and the
// radius by the mean of rx and ry.
func (p *FootprintParser) parseArc(fp *model.Footprint, s Shape) error {
	if err := s.Require(5); err != nil {
		return err
	}

	path, err := svgpath.Parse(s.Field(4))
	if err != nil {
		return err
	}
	arc, err := path.FirstArc()
	if err != nil {
		return err
	}

	start := arc.Start.Scale(Scale)
	end := arc.End.Scale(Scale)
	center := geom.Point{X: (start.X + end.X) / 2, Y: (start.Y + end.Y) / 2}
	startAngle := geom.AngleOf(start, center)
	endAngle := geom.AngleOf(end, center)

	fp.Arcs = append(fp.Arcs, model.FpArc{
		Center:      center.FlipY(),
		Radius:      stat.Mean([]float64{arc.RX, arc.RY}, nil) * Scale,
		StartAngle:  -endAngle,
		EndAngle:    -startAngle,
		Layer:       model.LayerFromCode(s.Field(2)),
		StrokeWidth: model.ClampStroke(s.MM(1)),
	})
	return nil
}

// parseRect handles RECT~x~y~w~h~layer~id~locked~stroke
func (p *FootprintParser) parseRect(fp *model.Footprint, s Shape) error {
	if err := s.Require(6); err != nil {
		return err
	}

	x := s.MM(1)
	y := -s.MM(2)
	w := s.MM(3)
	h := s.MM(4)
	layer := model.LayerFromCode(s.Field(5))

	stroke := model.DefaultLineStroke
	if v := s.MM(8); v > 0 {
		stroke = model.ClampStroke(v)
	}

	corners := []geom.Point{
		{X: x, Y: y},
		{X: x + w, Y: y},
		{X: x + w, Y: y - h},
		{X: x, Y: y - h},
	}
	for i := range corners {
		fp.Lines = append(fp.Lines, model.Line{
			Start:       corners[i],
			End:         corners[(i+1)%len(corners)],
			Layer:       layer,
			StrokeWidth: stroke,
		})
	}
	return nil
}

// parseSolidRegion handles SOLIDREGION~layer~net~path~...
func (p *FootprintParser) parseSolidRegion(fp *model.Footprint, s Shape) error {
	if err := s.Require(4); err != nil {
		return err
	}

	if model.IsMarkingLayer(s.Field(1)) {
		return nil
	}

	path, err := svgpath.Parse(s.Field(3))
	if err != nil {
		return err
	}
	raw := path.Points()
	if len(raw) == 0 {
		return nil
	}

	points := make([]geom.Point, len(raw))
	for i, pt := range raw {
		points[i] = pt.Scale(Scale).FlipY()
	}

	fp.Polygons = append(fp.Polygons, model.Polygon{
		Points:      points,
		Layer:       model.LayerFromCode(s.Field(1)),
		StrokeWidth: model.DefaultLineStroke,
		Fill:        model.FillSolid,
	})
	return nil
}

// parseText handles TEXT~type~x~y~stroke~rotation~mirror~layer~net~size~text~...
func (p *FootprintParser) parseText(fp *model.Footprint, s Shape) error {
	if err := s.Require(11); err != nil {
		return err
	}

	content := s.Field(10)
	kind := model.TextUser
	switch strings.ToLower(strings.TrimSpace(s.Field(1))) {
	case "ref", "reference", "p":
		kind = model.TextReference
		content = "REF**"
	case "val", "value", "n":
		kind = model.TextValue
	}

	fp.Texts = append(fp.Texts, model.FpText{
		Text:      content,
		Position:  s.Point(2),
		Layer:     model.LayerFromCode(s.Field(7)),
		FontSize:  model.ClampFont(s.MM(9)),
		Thickness: model.ClampStroke(s.MM(4)),
		Rotation:  s.Number(5, 0),
		Kind:      kind,
	})
	return nil
}

// parseHole handles HOLE~x~y~radius~...
func (p *FootprintParser) parseHole(fp *model.Footprint, s Shape) error {
	if err := s.Require(4); err != nil {
		return err
	}

	d := s.MM(3) * 2
	if d <= 0 {
		return fmt.Errorf("easyeda: HOLE has non-positive diameter %g", d)
	}
	fp.Holes = append(fp.Holes, model.Hole{
		Position: s.Point(1),
		Diameter: d,
	})
	return nil
}

// parseVia handles VIA~x~y~diameter~net~holeRadius~...
func (p *FootprintParser) parseVia(fp *model.Footprint, s Shape) error {
	if err := s.Require(5); err != nil {
		return err
	}

	drill := s.MM(4)
	if s.Has(5) {
		drill = s.MM(5) * 2
	}
	if drill <= minViaDrill {
		return nil
	}

	d := s.MM(3)
	fp.Pads = append(fp.Pads, model.Pad{
		Position:   s.Point(1),
		Width:      d,
		Height:     d,
		Shape:      model.PadCircle,
		Type:       model.PadThruHole,
		DrillSize:  drill,
		DrillShape: "circle",
		Layers:     []string{"*.Cu"},
	})
	return nil
}
