package sexp

import (
	"fmt"
	"strings"

	"github.com/OpenTraceLab/eda2kicad/pkg/geom"
)

// Indent is the per-level indentation of emitted files
const Indent = "  "

// Formatter renders numbers snapped to a grid with fixed precision
type Formatter struct {
	Grid      float64
	Precision int
}

// Grids used by the symbol and footprint writers
var (
	SymbolFormat    = Formatter{Grid: 0.01, Precision: 4}
	FootprintFormat = Formatter{Grid: 0.001, Precision: 6}
)

// Num formats a single value
func (f Formatter) Num(v float64) string {
	return geom.FormatNumber(geom.RoundToGrid(v, f.Grid), f.Precision)
}

// XY formats a point as "X Y"
func (f Formatter) XY(p geom.Point) string {
	return f.Num(p.X) + " " + f.Num(p.Y)
}

// Angle formats a rotation as a whole number of degrees
func (f Formatter) Angle(deg float64) string {
	return fmt.Sprintf("%d", int(deg))
}

// Quote wraps s in double quotes, escaping backslashes and quotes
func Quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

// Writer accumulates indented S-expression lines
type Writer struct {
	lines []string
	depth int
}

// NewWriter returns a writer starting at the given nesting depth
func NewWriter(depth int) *Writer {
	return &Writer{depth: depth}
}

// Line appends one formatted line at the current depth
func (w *Writer) Line(format string, args ...any) {
	text := format
	if len(args) > 0 {
		text = fmt.Sprintf(format, args...)
	}
	w.lines = append(w.lines, strings.Repeat(Indent, w.depth)+text)
}

// Open appends a line and nests further lines one level deeper
func (w *Writer) Open(format string, args ...any) {
	w.Line(format, args...)
	w.depth++
}

// Close ends the innermost open node
func (w *Writer) Close() {
	if w.depth > 0 {
		w.depth--
	}
	w.Line(")")
}

// Append adds pre-rendered lines verbatim
func (w *Writer) Append(lines ...string) {
	w.lines = append(w.lines, lines...)
}

// Depth returns the current nesting depth
func (w *Writer) Depth() int {
	return w.depth
}

// Lines returns the emitted lines
func (w *Writer) Lines() []string {
	return w.lines
}

// String joins the emitted lines with newlines
func (w *Writer) String() string {
	return strings.Join(w.lines, "\n")
}
