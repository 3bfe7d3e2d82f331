package footprint

import (
	"math"
	"strings"
	"testing"

	chewsexp "github.com/chewxy/sexp"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/OpenTraceLab/eda2kicad/pkg/geom"
	"github.com/OpenTraceLab/eda2kicad/pkg/kicad/format"
	"github.com/OpenTraceLab/eda2kicad/pkg/model"
)

func sot23() *model.Footprint {
	fp := model.NewFootprint("SOT-23-3_L2.9-W1.3-P1.90-LS2.4-BR")
	fp.Pads = []model.Pad{
		{Number: "1", Position: geom.Point{X: -0.95, Y: 1.1}, Width: 0.6, Height: 0.9, Shape: model.PadRect, Type: model.PadSMD, Layers: model.LayersFrontSMD},
		{Number: "2", Position: geom.Point{X: 0.95, Y: 1.1}, Width: 0.6, Height: 0.9, Shape: model.PadRect, Type: model.PadSMD, Layers: model.LayersFrontSMD},
		{Number: "3", Position: geom.Point{X: 0, Y: -1.1}, Width: 0.6, Height: 0.9, Shape: model.PadRect, Type: model.PadSMD, Layers: model.LayersFrontSMD, Rotation: 90},
	}
	fp.Lines = []model.Line{
		{Start: geom.Point{X: -1.45, Y: -0.65}, End: geom.Point{X: 1.45, Y: -0.65}, Layer: "F.SilkS", StrokeWidth: 0.12},
	}
	return fp
}

func TestWriteFootprintHeader(t *testing.T) {
	got := NewWriter(format.Default()).WriteFootprint(sot23())

	wantPrefix := "(footprint \"SOT-23-3_L2.9-W1.3-P1.90-LS2.4-BR\"\n" +
		"  (version 20231120)\n" +
		"  (generator \"eda2kicad\")\n" +
		"  (generator_version \"1.0\")\n" +
		"  (layer \"F.Cu\")\n" +
		"  (property \"Reference\" \"REF**\"\n" +
		"    (at 0 -2 0)\n" +
		"    (layer \"F.SilkS\")\n"
	if !strings.HasPrefix(got, wantPrefix) {
		t.Errorf("unexpected header:\n%s", got)
	}
	if !strings.HasSuffix(got, "\n)\n") {
		t.Error("footprint should end with a closing line")
	}
	for _, s := range []string{
		"  (attr smd)\n",
		"  (fp_line\n    (start -1.45 -0.65)\n    (end 1.45 -0.65)\n    (stroke (width 0.12) (type solid))\n    (layer \"F.SilkS\")\n  )",
		"  (pad \"1\" smd rect\n    (at -0.95 1.1)\n    (size 0.6 0.9)\n    (layers \"F.Cu\" \"F.Paste\" \"F.Mask\")\n  )",
		"(pad \"3\" smd rect\n    (at 0 -1.1 90)\n",
		"(property \"Value\" \"SOT-23-3_L2.9-W1.3-P1.90-LS2.4-BR\"\n    (at 0 2 0)\n    (layer \"F.Fab\")\n",
	} {
		if !strings.Contains(got, s) {
			t.Errorf("output missing:\n%s\n--- got ---\n%s", s, got)
		}
	}
	if strings.Contains(got, "(model") || strings.Contains(got, "(drill") {
		t.Error("smd footprint without model must not emit drill or model blocks")
	}
}

func TestWriteFootprintDeterministic(t *testing.T) {
	w := NewWriter(format.Default())
	a := w.WriteFootprint(sot23())
	b := w.WriteFootprint(sot23())
	if a != b {
		t.Error("WriteFootprint() is not deterministic")
	}

	other := sot23()
	other.Name = "Other"
	if itemUUID("a", "Reference") == itemUUID("b", "Reference") {
		t.Error("item UUIDs should differ between footprints")
	}
	if itemUUID("a", "Reference") == itemUUID("a", "Value") {
		t.Error("item UUIDs should differ between items")
	}
	if strings.Contains(w.WriteFootprint(other), itemUUID(Name(sot23()), "Reference")) {
		t.Error("renamed footprint reused the reference UUID")
	}
}

func TestWriteFootprintParts(t *testing.T) {
	tests := []struct {
		name    string
		profile string
		mutate  func(fp *model.Footprint)
		want    []string
		notWant []string
	}{
		{
			name: "through hole pad",
			mutate: func(fp *model.Footprint) {
				fp.Pads[0].Type = model.PadThruHole
				fp.Pads[0].Shape = model.PadCircle
				fp.Pads[0].DrillSize = 0.8
				fp.Pads[0].Layers = model.LayersThruHole
			},
			want: []string{"(attr through_hole)", "(pad \"1\" thru_hole circle", "(drill 0.8)", `(layers "*.Cu" "*.Paste" "*.Mask")`},
		},
		{
			name:    "smd pad with drill size ignores it",
			mutate:  func(fp *model.Footprint) { fp.Pads[0].DrillSize = 0.8 },
			notWant: []string{"(drill"},
		},
		{
			name: "roundrect ratio",
			mutate: func(fp *model.Footprint) {
				fp.Pads[1].Shape = model.PadRoundRect
				fp.Pads[1].RoundRectRatio = 0.25
			},
			want: []string{"(pad \"2\" smd roundrect", "(roundrect_rratio 0.25)"},
		},
		{
			name: "hole",
			mutate: func(fp *model.Footprint) {
				fp.Holes = []model.Hole{{Position: geom.Point{X: 1, Y: 2}, Diameter: 1.1}}
			},
			want: []string{"  (pad \"\" np_thru_hole circle\n    (at 1 2)\n    (size 1.1 1.1)\n    (drill 1.1)\n    (layers \"*.Cu\" \"*.Mask\")\n  )"},
		},
		{
			name: "model block",
			mutate: func(fp *model.Footprint) {
				fp.Model3DPath = "${KIPRJMOD}/3d/SOT-23.step"
				fp.Model3DOffset = model.Vec3{X: 0.1, Y: -0.2}
				fp.Model3DRotation = model.Vec3{Z: 90}
			},
			want: []string{"  (model \"${KIPRJMOD}/3d/SOT-23.step\"\n    (offset (xyz 0.1 -0.2 0))\n    (scale (xyz 1 1 1))\n    (rotate (xyz 0 0 90))\n  )\n)"},
		},
		{
			name: "graphics",
			mutate: func(fp *model.Footprint) {
				fp.Circles = []model.FpCircle{{Center: geom.Point{X: 1, Y: 1}, Radius: 0.5, Layer: "F.SilkS", StrokeWidth: 0.12}}
				fp.Arcs = []model.FpArc{{Center: geom.Point{}, Radius: 1, StartAngle: 0, EndAngle: 180, Layer: "F.Fab", StrokeWidth: 0.1}}
				fp.Polygons = []model.Polygon{
					{Points: []geom.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}}, Layer: "F.Cu", StrokeWidth: 0.1, Fill: model.FillSolid},
					{Points: []geom.Point{{X: 0, Y: 0}, {X: 1, Y: 0}}, Layer: "F.Cu"},
				}
				fp.Texts = []model.FpText{
					{Text: "REF**", Kind: model.TextReference},
					{Text: "+", Position: geom.Point{X: -1, Y: 0}, Layer: "F.SilkS", FontSize: 1, Thickness: 0.15, Rotation: 90.7, Kind: model.TextUser},
				}
			},
			want: []string{
				"(fp_circle\n    (center 1 1)\n    (end 1.5 1)\n    (stroke (width 0.12) (type solid))\n    (fill none)\n    (layer \"F.SilkS\")",
				"(fp_arc\n    (start 1 0)\n    (mid 0 1)\n    (end -1 0)\n",
				"(fp_poly\n    (pts\n      (xy 0 0)\n      (xy 1 0)\n      (xy 1 1)\n    )\n    (stroke (width 0.1) (type solid))\n    (fill solid)\n    (layer \"F.Cu\")",
				"(fp_text user\n    \"+\"\n    (at -1 0 90)\n    (layer \"F.SilkS\")\n    (effects (font (size 1 1) (thickness 0.15)))",
			},
			notWant: []string{"fp_text user\n    \"REF**\""},
		},
		{
			name:    "kicad 7 placeholders",
			profile: "7.0",
			want:    []string{"(version 20221018)", "(fp_text reference \"REF**\"", "(fp_text value "},
			notWant: []string{"generator_version", "(property "},
		},
		{
			name: "custom pad",
			mutate: func(fp *model.Footprint) {
				fp.Pads = []model.Pad{{
					Number:   "1",
					Position: geom.Point{X: 1, Y: 1},
					Width:    2,
					Height:   1,
					Shape:    model.PadCustom,
					Type:     model.PadSMD,
					Rotation: 45,
					Layers:   model.LayersFrontSMD,
					Outline:  []geom.Point{{X: 0, Y: 0.5}, {X: 2, Y: 0.5}, {X: 2, Y: 1.5}, {X: 0, Y: 1.5}},
				}}
			},
			want: []string{
				"(pad \"1\" smd custom\n    (at 1 1)\n    (size 0.5 0.5)\n",
				"(options (clearance outline) (anchor circle))\n    (primitives\n      (gr_poly\n        (pts\n          (xy -1 -0.5)\n",
				"(width 0)\n        (fill yes)\n",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := format.ForVersion(tt.profile)
			if err != nil {
				t.Fatal(err)
			}
			fp := sot23()
			if tt.mutate != nil {
				tt.mutate(fp)
			}
			got := NewWriter(p).WriteFootprint(fp)
			for _, s := range tt.want {
				if !strings.Contains(got, s) {
					t.Errorf("output missing:\n%s\n--- got ---\n%s", s, got)
				}
			}
			for _, s := range tt.notWant {
				if strings.Contains(got, s) {
					t.Errorf("output unexpectedly contains %q", s)
				}
			}
			if _, err := chewsexp.ParseString(got); err != nil {
				t.Errorf("independent parser rejected output: %v", err)
			}
		})
	}
}

func TestFootprintRoundTrip(t *testing.T) {
	fp := sot23()
	fp.Pads[0].Type = model.PadThruHole
	fp.Pads[0].DrillSize = 0.4
	fp.Pads[0].DrillShape = "circle"
	fp.Pads[0].Layers = model.LayersThruHole
	fp.Holes = []model.Hole{{Position: geom.Point{X: 2, Y: 0}, Diameter: 1}}
	fp.Arcs = []model.FpArc{{Center: geom.Point{X: 0.5}, Radius: 1, StartAngle: -90, EndAngle: 90, Layer: "F.Fab", StrokeWidth: 0.1}}
	fp.Circles = []model.FpCircle{{Center: geom.Point{X: 1, Y: 1}, Radius: 0.25, Layer: "F.SilkS", StrokeWidth: 0.12, Fill: model.FillNone}}
	fp.Model3DPath = "model.step"
	fp.Model3DOffset = model.Vec3{X: 0.5, Y: 0.25, Z: 0}
	fp.Model3DRotation = model.Vec3{Z: 270}

	text := NewWriter(format.Default()).WriteFootprint(fp)
	got, hdr, err := ReadString(text)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}

	if hdr.Version != "20231120" || hdr.Attr != "through_hole" || hdr.Reference != ReferenceText || hdr.Value != fp.Name {
		t.Errorf("header = %+v", hdr)
	}

	opts := cmp.Options{cmpopts.EquateApprox(0, 1e-6), cmpopts.EquateEmpty()}
	if diff := cmp.Diff(fp.Pads, got.Pads, opts); diff != "" {
		t.Errorf("pads mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(fp.Lines, got.Lines, opts); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(fp.Holes, got.Holes, opts); diff != "" {
		t.Errorf("holes mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(fp.Circles, got.Circles, opts); diff != "" {
		t.Errorf("circles mismatch (-want +got):\n%s", diff)
	}
	if len(got.Arcs) != 1 {
		t.Fatalf("got %d arcs", len(got.Arcs))
	}
	a := got.Arcs[0]
	if math.Abs(a.Center.X-0.5) > 1e-3 || math.Abs(a.Radius-1) > 1e-3 || math.Abs(a.EndAngle-a.StartAngle-180) > 0.1 {
		t.Errorf("arc = %+v", a)
	}
	if got.Model3DPath != "model.step" || got.Model3DOffset != fp.Model3DOffset || got.Model3DRotation != fp.Model3DRotation || got.Model3DScale != fp.Model3DScale {
		t.Errorf("model = %q %+v %+v %+v", got.Model3DPath, got.Model3DOffset, got.Model3DRotation, got.Model3DScale)
	}
	if got.Bounds == nil {
		t.Error("Bounds not computed on read")
	}
}

func TestReadErrors(t *testing.T) {
	inputs := []string{
		"",
		"(kicad_symbol_lib)",
		"(footprint",
		`(footprint "x" (pad "1" smd rect (size 1 1) (layers "F.Cu")))`,
		`(footprint "x" (pad "1" smd rect (at 0 0) (layers "F.Cu")))`,
		`(footprint "x" (pad "1" smd rect (at 0 0) (size 1 1)))`,
		`(footprint "x" (fp_arc (start 0 0) (mid 1 0) (end 2 0)))`,
	}
	for _, in := range inputs {
		if _, _, err := ReadString(in); err == nil {
			t.Errorf("Read(%q) expected error", in)
		}
	}
}
