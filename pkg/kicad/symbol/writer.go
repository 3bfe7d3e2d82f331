// Package symbol writes parsed symbols as KiCad symbol library text and
// reads generated libraries back.
package symbol

import (
	"github.com/OpenTraceLab/eda2kicad/pkg/kicad/format"
	"github.com/OpenTraceLab/eda2kicad/pkg/kicad/sexp"
	"github.com/OpenTraceLab/eda2kicad/pkg/model"
)

// DefaultVendorProperty is the property holding the vendor part number
const DefaultVendorProperty = "LCSC"

// Property offsets below the symbol origin
const propertyStep = 2.54

// Entry is one symbol plus the metadata written into its properties
type Entry struct {
	Symbol *model.Symbol

	// VendorID is the distributor part number, e.g. C2040
	VendorID string
	// FootprintLibrary and FootprintName form the Footprint property
	FootprintLibrary string
	FootprintName    string
	Datasheet        string
	MPN              string
	// Value replaces the symbol name in the Value property when set
	Value string
}

// Writer renders symbols in one KiCad format profile
type Writer struct {
	Profile        format.Profile
	VendorProperty string
	Generator      string
	num            sexp.Formatter
}

// NewWriter creates a writer for the given profile
func NewWriter(p format.Profile) *Writer {
	return &Writer{
		Profile:        p,
		VendorProperty: DefaultVendorProperty,
		Generator:      format.Generator,
		num:            sexp.SymbolFormat,
	}
}

// WriteLibrary renders a complete kicad_symbol_lib holding entries in order
func (w *Writer) WriteLibrary(entries []Entry) string {
	out := sexp.NewWriter(0)
	out.Open("(kicad_symbol_lib")
	w.writeHeader(out)
	for _, e := range entries {
		if e.Symbol == nil {
			continue
		}
		out.Append(w.render(e, out.Depth()).Lines()...)
	}
	out.Close()
	return out.String() + "\n"
}

// EmptyLibrary renders a library with a header and no symbols
func (w *Writer) EmptyLibrary() string {
	return w.WriteLibrary(nil)
}

// WriteSymbol renders one (symbol ...) block indented for a library body
func (w *Writer) WriteSymbol(e Entry) string {
	return w.render(e, 1).String()
}

func (w *Writer) writeHeader(out *sexp.Writer) {
	out.Line("(version %s)", w.Profile.SymbolVersion)
	out.Line("(generator %s)", sexp.Quote(w.Generator))
	if w.Profile.WriteGeneratorVersion {
		out.Line("(generator_version %s)", sexp.Quote(format.GeneratorVersion))
	}
}

func (w *Writer) render(e Entry, depth int) *sexp.Writer {
	sym := e.Symbol
	name := Name(sym, e.VendorID)
	fpName := e.FootprintName
	if fpName == "" {
		fpName = name
	}

	out := sexp.NewWriter(depth)
	out.Open("(symbol %s", sexp.Quote(name))

	w.property(out, "Reference", sym.ReferencePrefix, 1, false)
	value := e.Value
	if value == "" {
		value = sym.Name
	}
	w.property(out, "Value", value, -1, false)
	w.property(out, "Footprint", e.FootprintLibrary+":"+fpName, -2, true)
	w.property(out, "Datasheet", e.Datasheet, -3, true)
	w.property(out, "Description", sym.Properties["description"], -4, true)
	w.property(out, w.VendorProperty, e.VendorID, -5, true)
	if e.MPN != "" {
		w.property(out, "MPN", e.MPN, -6, true)
	}

	if sym.IsPower() {
		out.Line("(power)")
	}
	out.Line("(pin_names (offset 1.016))")
	if w.Profile.WriteExcludeFromSim {
		out.Line("(exclude_from_sim no)")
	}
	out.Line("(in_bom yes)")
	out.Line("(on_board yes)")

	out.Open("(symbol %s", sexp.Quote(name+"_1_1"))
	w.rectangles(out, sym)
	w.polylines(out, sym)
	w.circles(out, sym)
	w.arcs(out, sym)
	w.pins(out, sym)
	out.Close()

	out.Close()
	return out
}

// Name returns the identifier a symbol is written under
func Name(sym *model.Symbol, vendorID string) string {
	name := sym.Name
	if name == "" {
		name = vendorID
	}
	return format.SanitizeName(name, format.FallbackSymbolName)
}

func (w *Writer) property(out *sexp.Writer, key, value string, slot int, hidden bool) {
	out.Open("(property %s %s", sexp.Quote(key), sexp.Quote(value))
	out.Line("(at 0 %s 0)", w.num.Num(float64(slot)*propertyStep))
	out.Line(w.effects(hidden))
	out.Close()
}

func (w *Writer) effects(hidden bool) string {
	if hidden {
		return "(effects (font (size 1.27 1.27)) " + w.Profile.Hide() + ")"
	}
	return "(effects (font (size 1.27 1.27)))"
}

func (w *Writer) stroke(width float64) string {
	return "(stroke (width " + w.num.Num(width) + ") (type default))"
}

func (w *Writer) rectangles(out *sexp.Writer, sym *model.Symbol) {
	for _, r := range sym.Rectangles {
		start := r.Position.Add(sym.Offset)
		end := r.End().Add(sym.Offset)
		out.Open("(rectangle")
		out.Line("(start %s)", w.num.XY(start))
		out.Line("(end %s)", w.num.XY(end))
		out.Line(w.stroke(r.StrokeWidth))
		out.Line("(fill (type %s))", fillType(r.Fill))
		out.Close()
	}
}

func (w *Writer) polylines(out *sexp.Writer, sym *model.Symbol) {
	for _, pl := range sym.Polylines {
		if len(pl.Points) < 2 {
			continue
		}
		out.Open("(polyline")
		out.Open("(pts")
		for _, p := range pl.Points {
			out.Line("(xy %s)", w.num.XY(p.Add(sym.Offset)))
		}
		out.Close()
		out.Line(w.stroke(pl.StrokeWidth))
		out.Line("(fill (type %s))", fillType(pl.Fill))
		out.Close()
	}
}

func (w *Writer) circles(out *sexp.Writer, sym *model.Symbol) {
	for _, c := range sym.Circles {
		out.Open("(circle")
		out.Line("(center %s)", w.num.XY(c.Center.Add(sym.Offset)))
		out.Line("(radius %s)", w.num.Num(c.Radius))
		out.Line(w.stroke(c.StrokeWidth))
		out.Line("(fill (type %s))", fillType(c.Fill))
		out.Close()
	}
}

func (w *Writer) arcs(out *sexp.Writer, sym *model.Symbol) {
	for _, a := range sym.Arcs {
		center := a.Center.Add(sym.Offset)
		fp := model.FpArc{Center: center, Radius: a.Radius, StartAngle: a.StartAngle, EndAngle: a.EndAngle}
		out.Open("(arc")
		out.Line("(start %s)", w.num.XY(fp.StartPoint()))
		out.Line("(mid %s)", w.num.XY(fp.MidPoint()))
		out.Line("(end %s)", w.num.XY(fp.EndPoint()))
		out.Line(w.stroke(a.StrokeWidth))
		out.Line("(fill (type none))")
		out.Close()
	}
}

func (w *Writer) pins(out *sexp.Writer, sym *model.Symbol) {
	for _, p := range sym.Pins {
		pinType := p.Type
		if pinType == "" {
			pinType = model.PinUnspecified
		}
		shape := p.Shape
		if shape == "" {
			shape = model.PinShapeLine
		}
		length := p.Length
		if length == 0 {
			length = model.DefaultPinLength
		}

		out.Open("(pin %s %s", pinType, shape)
		out.Line("(at %s %s)", w.num.XY(p.Position.Add(sym.Offset)), w.num.Angle(p.Rotation))
		out.Line("(length %s)", w.num.Num(length))
		if p.Hidden {
			out.Line(w.Profile.Hide())
		}
		out.Open("(name %s", sexp.Quote(p.Name))
		out.Line(w.effects(!p.NameVisible))
		out.Close()
		out.Open("(number %s", sexp.Quote(p.Number))
		out.Line(w.effects(!p.NumberVisible))
		out.Close()
		out.Close()
	}
}

func fillType(fill string) string {
	switch fill {
	case model.FillOutline, model.FillBackground:
		return fill
	}
	return model.FillNone
}
