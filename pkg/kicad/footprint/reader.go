package footprint

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/OpenTraceLab/eda2kicad/pkg/geom"
	"github.com/OpenTraceLab/eda2kicad/pkg/kicad/sexp"
	"github.com/OpenTraceLab/eda2kicad/pkg/kicad/sexp/kicadsexp"
	"github.com/OpenTraceLab/eda2kicad/pkg/model"
)

// Header holds the file-level attributes of a footprint file
type Header struct {
	Version   string
	Generator string
	Layer     string
	Attr      string
	Reference string
	Value     string
}

// Read parses a .kicad_mod footprint
func Read(r io.Reader) (*model.Footprint, *Header, error) {
	sexps, err := kicadsexp.Parse(r)
	if err != nil {
		return nil, nil, fmt.Errorf("footprint: failed to parse s-expression: %w", err)
	}
	if len(sexps) == 0 {
		return nil, nil, fmt.Errorf("footprint: empty file or no valid s-expressions found")
	}

	root := sexps[0]
	rootName, err := sexp.GetNodeName(root)
	if err != nil {
		return nil, nil, fmt.Errorf("footprint: failed to get root node name: %w", err)
	}
	if rootName != "footprint" && rootName != "module" {
		return nil, nil, fmt.Errorf("footprint: not a KiCad footprint: expected 'footprint', got '%s'", rootName)
	}

	name, err := sexp.GetString(root, 1)
	if err != nil {
		return nil, nil, fmt.Errorf("footprint: failed to parse footprint name: %w", err)
	}
	fp := model.NewFootprint(name)

	hdr := &Header{}
	hdr.Version, _ = sexp.GetChildString(root, "version")
	hdr.Generator, _ = sexp.GetChildString(root, "generator")
	hdr.Layer, _ = sexp.GetChildString(root, "layer")
	hdr.Attr, _ = sexp.GetChildString(root, "attr")

	for _, pn := range sexp.FindAllNodes(root, "property") {
		key, value, err := sexp.GetProperty(pn)
		if err != nil {
			return nil, nil, fmt.Errorf("footprint %q: %w", name, err)
		}
		switch key {
		case "Reference":
			hdr.Reference = value
		case "Value":
			hdr.Value = value
		}
	}

	if err := readGraphics(root, fp, hdr); err != nil {
		return nil, nil, fmt.Errorf("footprint %q: %w", name, err)
	}
	for _, pn := range sexp.FindAllNodes(root, "pad") {
		if err := readPad(pn, fp); err != nil {
			return nil, nil, fmt.Errorf("footprint %q: pad: %w", name, err)
		}
	}
	if mn := sexp.FindAllNodes(root, "model"); len(mn) > 0 {
		readModel(mn[0], fp)
	}

	fp.ComputeBounds()
	return fp, hdr, nil
}

// ReadString parses footprint text
func ReadString(text string) (*model.Footprint, *Header, error) {
	return Read(strings.NewReader(text))
}

func readGraphics(root kicadsexp.Sexp, fp *model.Footprint, hdr *Header) error {
	for _, ln := range sexp.FindAllNodes(root, "fp_line") {
		start, err := sexp.GetChildXY(ln, "start")
		if err != nil {
			return fmt.Errorf("fp_line: %w", err)
		}
		end, err := sexp.GetChildXY(ln, "end")
		if err != nil {
			return fmt.Errorf("fp_line: %w", err)
		}
		layer, _ := sexp.GetChildString(ln, "layer")
		fp.Lines = append(fp.Lines, model.Line{Start: start, End: end, Layer: layer, StrokeWidth: sexp.GetStrokeWidth(ln)})
	}

	for _, cn := range sexp.FindAllNodes(root, "fp_circle") {
		center, err := sexp.GetChildXY(cn, "center")
		if err != nil {
			return fmt.Errorf("fp_circle: %w", err)
		}
		end, err := sexp.GetChildXY(cn, "end")
		if err != nil {
			return fmt.Errorf("fp_circle: %w", err)
		}
		layer, _ := sexp.GetChildString(cn, "layer")
		fill, _ := sexp.GetChildString(cn, "fill")
		fp.Circles = append(fp.Circles, model.FpCircle{
			Center:      center,
			Radius:      math.Hypot(end.X-center.X, end.Y-center.Y),
			Layer:       layer,
			StrokeWidth: sexp.GetStrokeWidth(cn),
			Fill:        fill,
		})
	}

	for _, an := range sexp.FindAllNodes(root, "fp_arc") {
		var pts [3]geom.Point
		for i, key := range []string{"start", "mid", "end"} {
			p, err := sexp.GetChildXY(an, key)
			if err != nil {
				return fmt.Errorf("fp_arc: %w", err)
			}
			pts[i] = p
		}
		center, radius, startAngle, endAngle, ok := geom.ArcThrough(pts[0], pts[1], pts[2])
		if !ok {
			return fmt.Errorf("fp_arc: collinear points")
		}
		layer, _ := sexp.GetChildString(an, "layer")
		fp.Arcs = append(fp.Arcs, model.FpArc{
			Center:      center,
			Radius:      radius,
			StartAngle:  startAngle,
			EndAngle:    endAngle,
			Layer:       layer,
			StrokeWidth: sexp.GetStrokeWidth(an),
		})
	}

	for _, pn := range sexp.FindAllNodes(root, "fp_poly") {
		pts, err := sexp.GetPoints(pn)
		if err != nil {
			return fmt.Errorf("fp_poly: %w", err)
		}
		layer, _ := sexp.GetChildString(pn, "layer")
		fill, _ := sexp.GetChildString(pn, "fill")
		fp.Polygons = append(fp.Polygons, model.Polygon{Points: pts, Layer: layer, StrokeWidth: sexp.GetStrokeWidth(pn), Fill: fill})
	}

	for _, tn := range sexp.FindAllNodes(root, "fp_text") {
		kind, _ := sexp.GetString(tn, 1)
		text, _ := sexp.GetString(tn, 2)
		switch kind {
		case model.TextReference:
			hdr.Reference = text
			continue
		case model.TextValue:
			hdr.Value = text
			continue
		}
		pos, angle, err := sexp.GetAt(tn)
		if err != nil {
			return fmt.Errorf("fp_text: %w", err)
		}
		layer, _ := sexp.GetChildString(tn, "layer")
		t := model.FpText{Text: text, Position: pos, Rotation: angle, Layer: layer, Kind: model.TextUser}
		if effects := sexp.FindAllNodes(tn, "effects"); len(effects) > 0 {
			if fonts := sexp.FindAllNodes(effects[0], "font"); len(fonts) > 0 {
				if size, err := sexp.GetChildXY(fonts[0], "size"); err == nil {
					t.FontSize = size.X
				}
				t.Thickness, _ = sexp.GetChildFloat(fonts[0], "thickness")
			}
		}
		fp.Texts = append(fp.Texts, t)
	}
	return nil
}

// readPad reads one pad; unnumbered non-plated circles become holes
func readPad(node kicadsexp.Sexp, fp *model.Footprint) error {
	number, err := sexp.GetString(node, 1)
	if err != nil {
		return fmt.Errorf("failed to parse pad number: %w", err)
	}
	padType, err := sexp.GetString(node, 2)
	if err != nil {
		return fmt.Errorf("failed to parse pad type: %w", err)
	}
	shape, err := sexp.GetString(node, 3)
	if err != nil {
		return fmt.Errorf("failed to parse pad shape: %w", err)
	}

	pos, angle, err := sexp.GetAt(node)
	if err != nil {
		return err
	}
	size, err := sexp.GetChildXY(node, "size")
	if err != nil {
		return fmt.Errorf("missing required 'size' field: %w", err)
	}
	drill, _ := sexp.GetChildFloat(node, "drill")

	var layers []string
	if ln := sexp.FindAllNodes(node, "layers"); len(ln) > 0 {
		layers = sexp.GetStrings(ln[0])
	} else {
		return fmt.Errorf("missing required 'layers' field")
	}

	if number == "" && model.PadType(padType) == model.PadNPTH && model.PadShape(shape) == model.PadCircle {
		fp.Holes = append(fp.Holes, model.Hole{Position: pos, Diameter: size.X})
		return nil
	}

	pad := model.Pad{
		Number:   number,
		Position: pos,
		Width:    size.X,
		Height:   size.Y,
		Shape:    model.PadShape(shape),
		Type:     model.PadType(padType),
		Rotation: angle,
		Layers:   layers,
	}
	if drill > 0 {
		pad.DrillSize = drill
		pad.DrillShape = "circle"
	}
	if ratio, ok := sexp.GetChildFloat(node, "roundrect_rratio"); ok {
		pad.RoundRectRatio = ratio
	}
	if prims := sexp.FindAllNodes(node, "primitives"); len(prims) > 0 {
		for _, poly := range sexp.FindAllNodes(prims[0], "gr_poly") {
			pts, err := sexp.GetPoints(poly)
			if err != nil {
				return fmt.Errorf("custom pad %q: %w", number, err)
			}
			for _, p := range pts {
				pad.Outline = append(pad.Outline, p.Add(pos))
			}
		}
		if len(pad.Outline) > 0 {
			box := geom.BoundingBox(pad.Outline)
			pad.Width, pad.Height = box.Width(), box.Height()
		}
	}
	fp.Pads = append(fp.Pads, pad)
	return nil
}

func readModel(node kicadsexp.Sexp, fp *model.Footprint) {
	fp.Model3DPath, _ = sexp.GetString(node, 1)
	fp.Model3DOffset = readXYZ(node, "offset", model.Vec3{})
	fp.Model3DScale = readXYZ(node, "scale", model.Vec3{X: 1, Y: 1, Z: 1})
	fp.Model3DRotation = readXYZ(node, "rotate", model.Vec3{})
}

func readXYZ(node kicadsexp.Sexp, key string, def model.Vec3) model.Vec3 {
	outer := sexp.FindAllNodes(node, key)
	if len(outer) == 0 {
		return def
	}
	xyz := sexp.FindAllNodes(outer[0], "xyz")
	if len(xyz) == 0 {
		return def
	}
	x, errX := sexp.GetFloat(xyz[0], 1)
	y, errY := sexp.GetFloat(xyz[0], 2)
	z, errZ := sexp.GetFloat(xyz[0], 3)
	if errX != nil || errY != nil || errZ != nil {
		return def
	}
	return model.Vec3{X: x, Y: y, Z: z}
}
