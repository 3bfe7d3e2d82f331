// Package svgpath parses the SVG-like path strings embedded in EasyEDA
// footprint shapes and reduces them to vertices and arc parameters.
//
// Coordinates are returned exactly as written (EasyEDA canvas units, Y down);
// scaling and the Y flip are the caller's job.
package svgpath

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"

	"github.com/OpenTraceLab/eda2kicad/pkg/geom"
)

// ErrNoArc is returned by FirstArc when a path holds no complete A command.
var ErrNoArc = errors.New("svgpath: no arc command")

// Path is a parsed path string
type Path struct {
	Segments []*Segment `parser:"@@*"`
}

// Segment is one command letter followed by its numeric arguments
type Segment struct {
	Command string   `parser:"@Command"`
	Tokens  []string `parser:"@Number*"`

	// Args holds Tokens as numbers, with packed arc flags split apart
	Args []float64
}

// Arc is an elliptical arc from Start to End
type Arc struct {
	Start    geom.Point
	End      geom.Point
	RX       float64
	RY       float64
	Rotation float64
	LargeArc bool
	Sweep    bool
}

var parser = participle.MustBuild[Path](
	participle.Lexer(PathLexer),
	participle.Elide("Comma", "Whitespace"),
)

// Parse parses a path string.
func Parse(input string) (*Path, error) {
	path, err := parser.ParseString("", strings.TrimSpace(input))
	if err != nil {
		return nil, fmt.Errorf("svgpath: parse error: %w", err)
	}
	for _, seg := range path.Segments {
		if err := seg.decode(); err != nil {
			return nil, err
		}
	}
	return path, nil
}

// arcFlags are the argument positions of the large-arc and sweep flags in
// each group of seven A arguments
var arcFlags = map[int]bool{3: true, 4: true}

// decode fills Args. Arc flags are single digits that may be written
// without a separator ("0 01 30 40" or "0130 40"), which the lexer reads as
// one number, so at a flag position only the first digit is taken and the
// rest is handed to the next argument.
func (s *Segment) decode() error {
	isArc := strings.EqualFold(s.Command, "A")
	s.Args = s.Args[:0]
	queue := append([]string(nil), s.Tokens...)
	for len(queue) > 0 {
		tok := queue[0]
		queue = queue[1:]
		if isArc && arcFlags[len(s.Args)%7] && len(tok) > 1 && (tok[0] == '0' || tok[0] == '1') {
			queue = append([]string{tok[1:]}, queue...)
			tok = tok[:1]
		}
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return fmt.Errorf("svgpath: %s argument %q: %w", s.Command, tok, err)
		}
		s.Args = append(s.Args, v)
	}
	return nil
}

// walker tracks the pen while iterating over segments
type walker struct {
	cur   geom.Point
	start geom.Point
}

func (w *walker) abs(rel bool, x, y float64) geom.Point {
	if rel {
		return geom.Point{X: w.cur.X + x, Y: w.cur.Y + y}
	}
	return geom.Point{X: x, Y: y}
}

// Points returns the vertices visited by the path. Curves contribute their
// end points only; Z closes the subpath without repeating its first vertex.
func (p *Path) Points() []geom.Point {
	var (
		w   walker
		out []geom.Point
	)
	visit := func(pt geom.Point) {
		w.cur = pt
		out = append(out, pt)
	}

	for _, seg := range p.Segments {
		cmd := strings.ToUpper(seg.Command)
		rel := seg.Command != cmd
		args := seg.Args

		switch cmd {
		case "M":
			for i := 0; i+1 < len(args); i += 2 {
				visit(w.abs(rel, args[i], args[i+1]))
				if i == 0 {
					w.start = w.cur
				}
			}
		case "L", "T":
			for i := 0; i+1 < len(args); i += 2 {
				visit(w.abs(rel, args[i], args[i+1]))
			}
		case "H":
			for _, x := range args {
				if rel {
					x += w.cur.X
				}
				visit(geom.Point{X: x, Y: w.cur.Y})
			}
		case "V":
			for _, y := range args {
				if rel {
					y += w.cur.Y
				}
				visit(geom.Point{X: w.cur.X, Y: y})
			}
		case "A":
			for i := 0; i+6 < len(args); i += 7 {
				visit(w.abs(rel, args[i+5], args[i+6]))
			}
		case "C":
			for i := 0; i+5 < len(args); i += 6 {
				visit(w.abs(rel, args[i+4], args[i+5]))
			}
		case "Q", "S":
			for i := 0; i+3 < len(args); i += 4 {
				visit(w.abs(rel, args[i+2], args[i+3]))
			}
		case "Z":
			w.cur = w.start
		}
	}
	return out
}

// FirstArc returns the first A command together with the pen position it
// starts from.
func (p *Path) FirstArc() (Arc, error) {
	var w walker
	for _, seg := range p.Segments {
		cmd := strings.ToUpper(seg.Command)
		rel := seg.Command != cmd
		args := seg.Args

		switch cmd {
		case "A":
			if len(args) < 7 {
				return Arc{}, ErrNoArc
			}
			return Arc{
				Start:    w.cur,
				End:      w.abs(rel, args[5], args[6]),
				RX:       args[0],
				RY:       args[1],
				Rotation: args[2],
				LargeArc: args[3] != 0,
				Sweep:    args[4] != 0,
			}, nil
		case "M", "L", "T":
			for i := 0; i+1 < len(args); i += 2 {
				w.cur = w.abs(rel, args[i], args[i+1])
				if cmd == "M" && i == 0 {
					w.start = w.cur
				}
			}
		case "H":
			if n := len(args); n > 0 {
				x := args[n-1]
				if rel {
					x += w.cur.X
				}
				w.cur.X = x
			}
		case "V":
			if n := len(args); n > 0 {
				y := args[n-1]
				if rel {
					y += w.cur.Y
				}
				w.cur.Y = y
			}
		case "C", "Q", "S":
			if n := len(args); n >= 2 {
				w.cur = w.abs(rel, args[n-2], args[n-1])
			}
		case "Z":
			w.cur = w.start
		}
	}
	return Arc{}, ErrNoArc
}
