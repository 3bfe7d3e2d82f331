// Package footprint writes parsed footprints as KiCad .kicad_mod text and
// reads them back.
package footprint

import (
	"strings"

	"github.com/google/uuid"

	"github.com/OpenTraceLab/eda2kicad/pkg/geom"
	"github.com/OpenTraceLab/eda2kicad/pkg/kicad/format"
	"github.com/OpenTraceLab/eda2kicad/pkg/kicad/sexp"
	"github.com/OpenTraceLab/eda2kicad/pkg/model"
)

// ReferenceText is the reference designator placeholder
const ReferenceText = "REF**"

// Anchor size of custom pads relative to the smaller pad dimension
const customAnchorRatio = 0.5

// itemNamespace seeds the name based UUIDs of generated items so that the
// same footprint always gets the same identifiers
var itemNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/OpenTraceLab/eda2kicad/footprint"))

// Writer renders footprints in one KiCad format profile
type Writer struct {
	Profile   format.Profile
	Generator string
	num       sexp.Formatter
}

// NewWriter creates a writer for the given profile
func NewWriter(p format.Profile) *Writer {
	return &Writer{
		Profile:   p,
		Generator: format.Generator,
		num:       sexp.FootprintFormat,
	}
}

// Name returns the identifier a footprint is written under
func Name(fp *model.Footprint) string {
	return format.SanitizeName(fp.Name, format.FallbackFootprintName)
}

// WriteFootprint renders fp as a complete footprint file. The model block
// is written only when fp.Model3DPath is set.
func (w *Writer) WriteFootprint(fp *model.Footprint) string {
	name := Name(fp)
	out := sexp.NewWriter(0)

	out.Open("(footprint %s", sexp.Quote(name))
	out.Line("(version %s)", w.Profile.FootprintVersion)
	out.Line("(generator %s)", sexp.Quote(w.Generator))
	if w.Profile.WriteGeneratorVersion {
		out.Line("(generator_version %s)", sexp.Quote(format.GeneratorVersion))
	}
	out.Line(`(layer "F.Cu")`)

	w.placeholders(out, name, fp.Name)

	if fp.HasThroughHole() {
		out.Line("(attr through_hole)")
	} else {
		out.Line("(attr smd)")
	}

	w.lines(out, fp.Lines)
	w.circles(out, fp.Circles)
	w.arcs(out, fp.Arcs)
	w.polygons(out, fp.Polygons)
	w.texts(out, fp.Texts)
	w.pads(out, fp.Pads)
	w.holes(out, fp.Holes)
	if fp.Model3DPath != "" {
		w.model(out, fp)
	}

	out.Close()
	return out.String() + "\n"
}

func (w *Writer) placeholders(out *sexp.Writer, name, value string) {
	if value == "" {
		value = name
	}
	items := []struct {
		kind, text, layer string
		at                string
	}{
		{"Reference", ReferenceText, "F.SilkS", "0 -2 0"},
		{"Value", value, "F.Fab", "0 2 0"},
	}
	for _, it := range items {
		if w.Profile.FootprintProperties {
			out.Open("(property %s %s", sexp.Quote(it.kind), sexp.Quote(it.text))
		} else {
			out.Open("(fp_text %s %s", strings.ToLower(it.kind), sexp.Quote(it.text))
		}
		out.Line("(at %s)", it.at)
		out.Line("(layer %s)", sexp.Quote(it.layer))
		if w.Profile.FootprintProperties {
			out.Line("(uuid %s)", sexp.Quote(itemUUID(name, it.kind)))
		} else {
			out.Line("(tstamp %s)", itemUUID(name, it.kind))
		}
		out.Line("(effects (font (size 1 1) (thickness 0.15)))")
		out.Close()
	}
}

func itemUUID(footprint, item string) string {
	return uuid.NewSHA1(itemNamespace, []byte(footprint+"/"+item)).String()
}

func (w *Writer) stroke(width float64) string {
	return "(stroke (width " + w.num.Num(width) + ") (type solid))"
}

func (w *Writer) lines(out *sexp.Writer, lines []model.Line) {
	for _, l := range lines {
		out.Open("(fp_line")
		out.Line("(start %s)", w.num.XY(l.Start))
		out.Line("(end %s)", w.num.XY(l.End))
		out.Line(w.stroke(l.StrokeWidth))
		out.Line("(layer %s)", sexp.Quote(l.Layer))
		out.Close()
	}
}

func (w *Writer) circles(out *sexp.Writer, circles []model.FpCircle) {
	for _, c := range circles {
		fill := c.Fill
		if fill == "" {
			fill = model.FillNone
		}
		out.Open("(fp_circle")
		out.Line("(center %s)", w.num.XY(c.Center))
		out.Line("(end %s)", w.num.XY(geom.Point{X: c.Center.X + c.Radius, Y: c.Center.Y}))
		out.Line(w.stroke(c.StrokeWidth))
		out.Line("(fill %s)", fill)
		out.Line("(layer %s)", sexp.Quote(c.Layer))
		out.Close()
	}
}

func (w *Writer) arcs(out *sexp.Writer, arcs []model.FpArc) {
	for _, a := range arcs {
		out.Open("(fp_arc")
		out.Line("(start %s)", w.num.XY(a.StartPoint()))
		out.Line("(mid %s)", w.num.XY(a.MidPoint()))
		out.Line("(end %s)", w.num.XY(a.EndPoint()))
		out.Line(w.stroke(a.StrokeWidth))
		out.Line("(layer %s)", sexp.Quote(a.Layer))
		out.Close()
	}
}

func (w *Writer) polygons(out *sexp.Writer, polygons []model.Polygon) {
	for _, p := range polygons {
		if len(p.Points) < 3 {
			continue
		}
		fill := p.Fill
		if fill == "" {
			fill = model.FillSolid
		}
		out.Open("(fp_poly")
		w.points(out, p.Points, geom.Point{})
		out.Line(w.stroke(p.StrokeWidth))
		out.Line("(fill %s)", fill)
		out.Line("(layer %s)", sexp.Quote(p.Layer))
		out.Close()
	}
}

func (w *Writer) points(out *sexp.Writer, pts []geom.Point, origin geom.Point) {
	out.Open("(pts")
	for _, p := range pts {
		out.Line("(xy %s)", w.num.XY(p.Sub(origin)))
	}
	out.Close()
}

func (w *Writer) texts(out *sexp.Writer, texts []model.FpText) {
	for _, t := range texts {
		if t.Kind == model.TextReference || t.Kind == model.TextValue {
			continue
		}
		out.Open("(fp_text user")
		out.Line(sexp.Quote(t.Text))
		out.Line("(at %s %s)", w.num.XY(t.Position), w.num.Angle(t.Rotation))
		out.Line("(layer %s)", sexp.Quote(t.Layer))
		out.Line("(effects (font (size %s %s) (thickness %s)))",
			w.num.Num(t.FontSize), w.num.Num(t.FontSize), w.num.Num(t.Thickness))
		out.Close()
	}
}

func (w *Writer) pads(out *sexp.Writer, pads []model.Pad) {
	for _, p := range pads {
		padType := p.Type
		if padType == "" {
			padType = model.PadSMD
		}
		shape := p.Shape
		if shape == "" {
			shape = model.PadRect
		}
		custom := shape == model.PadCustom && len(p.Outline) >= 3

		out.Open("(pad %s %s %s", sexp.Quote(p.Number), padType, shape)
		if p.Rotation != 0 && !custom {
			out.Line("(at %s %s)", w.num.XY(p.Position), w.num.Num(p.Rotation))
		} else {
			out.Line("(at %s)", w.num.XY(p.Position))
		}

		if custom {
			anchor := min(p.Width, p.Height) * customAnchorRatio
			out.Line("(size %s %s)", w.num.Num(anchor), w.num.Num(anchor))
		} else {
			out.Line("(size %s %s)", w.num.Num(p.Width), w.num.Num(p.Height))
		}

		if (padType == model.PadThruHole || padType == model.PadNPTH) && p.DrillSize > 0 {
			out.Line("(drill %s)", w.num.Num(p.DrillSize))
		}
		if shape == model.PadRoundRect {
			out.Line("(roundrect_rratio %s)", w.num.Num(p.RoundRectRatio))
		}
		out.Line("(layers %s)", quoteAll(p.Layers))

		if custom {
			out.Line("(options (clearance outline) (anchor circle))")
			out.Open("(primitives")
			out.Open("(gr_poly")
			w.points(out, p.Outline, p.Position)
			out.Line("(width 0)")
			out.Line("(fill yes)")
			out.Close()
			out.Close()
		}
		out.Close()
	}
}

func (w *Writer) holes(out *sexp.Writer, holes []model.Hole) {
	for _, h := range holes {
		d := w.num.Num(h.Diameter)
		out.Open(`(pad "" np_thru_hole circle`)
		out.Line("(at %s)", w.num.XY(h.Position))
		out.Line("(size %s %s)", d, d)
		out.Line("(drill %s)", d)
		out.Line(`(layers "*.Cu" "*.Mask")`)
		out.Close()
	}
}

func (w *Writer) model(out *sexp.Writer, fp *model.Footprint) {
	out.Open("(model %s", sexp.Quote(fp.Model3DPath))
	out.Line("(offset (xyz %s))", w.xyz(fp.Model3DOffset))
	out.Line("(scale (xyz %s))", w.xyz(fp.Model3DScale))
	out.Line("(rotate (xyz %s))", w.xyz(fp.Model3DRotation))
	out.Close()
}

func (w *Writer) xyz(v model.Vec3) string {
	return w.num.Num(v.X) + " " + w.num.Num(v.Y) + " " + w.num.Num(v.Z)
}

func quoteAll(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = sexp.Quote(s)
	}
	return strings.Join(quoted, " ")
}
