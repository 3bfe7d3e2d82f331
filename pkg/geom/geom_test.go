package geom

import (
	"math"
	"testing"
)

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name string
		text string
		def  float64
		want float64
	}{
		{"integer", "100", 0, 100},
		{"negative decimal", "-12.5", 0, -12.5},
		{"surrounding space", "  3.25 ", 0, 3.25},
		{"empty", "", 7, 7},
		{"garbage", "abc", -1, -1},
		{"trailing junk", "1.2.3", 9, 9},
		{"nan", "NaN", 4, 4},
		{"inf", "+Inf", 4, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseNumber(tt.text, tt.def); got != tt.want {
				t.Errorf("ParseNumber(%q, %v) = %v, want %v", tt.text, tt.def, got, tt.want)
			}
		})
	}
}

func TestParseInt(t *testing.T) {
	if got := ParseInt("3.9", 0); got != 3 {
		t.Errorf("ParseInt(3.9) = %d, want 3", got)
	}
	if got := ParseInt("x", 11); got != 11 {
		t.Errorf("ParseInt(x) = %d, want 11", got)
	}
}

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{360, 0},
		{450, 90},
		{-90, 270},
		{-720, 0},
		{359.5, 359.5},
		{180 + 180, 0},
	}

	for _, tt := range tests {
		got := NormalizeAngle(tt.in)
		if abs(got-tt.want) > 1e-9 {
			t.Errorf("NormalizeAngle(%v) = %v, want %v", tt.in, got, tt.want)
		}
		if got < 0 || got >= 360 {
			t.Errorf("NormalizeAngle(%v) = %v, out of range", tt.in, got)
		}
	}
}

func TestRotatePoint(t *testing.T) {
	p := RotatePoint(Point{X: 1, Y: 0}, 90, Point{})
	if abs(p.X) > 1e-9 || abs(p.Y-1) > 1e-9 {
		t.Errorf("rotate (1,0) by 90 = %+v, want (0,1)", p)
	}

	p = RotatePoint(Point{X: 2, Y: 1}, 180, Point{X: 1, Y: 1})
	if abs(p.X) > 1e-9 || abs(p.Y-1) > 1e-9 {
		t.Errorf("rotate (2,1) by 180 around (1,1) = %+v, want (0,1)", p)
	}
}

func TestBoundingBox(t *testing.T) {
	if got := BoundingBox(nil); got != (Box{}) {
		t.Errorf("BoundingBox(nil) = %+v, want zero box", got)
	}

	box := BoundingBox([]Point{{X: 1, Y: -2}, {X: -3, Y: 4}, {X: 0, Y: 0}})
	want := Box{MinX: -3, MinY: -2, MaxX: 1, MaxY: 4}
	if box != want {
		t.Errorf("BoundingBox() = %+v, want %+v", box, want)
	}
	if c := box.Center(); c != (Point{X: -1, Y: 1}) {
		t.Errorf("Center() = %+v, want (-1,1)", c)
	}

	grown := ExpandBox(box, 0.25)
	if grown.MinX != -3.25 || grown.MaxY != 4.25 {
		t.Errorf("ExpandBox() = %+v", grown)
	}
}

func TestRoundAndFormat(t *testing.T) {
	tests := []struct {
		name      string
		value     float64
		grid      float64
		precision int
		want      string
	}{
		{"grid 0.001 precision 6", 0.1234567, 0.001, 6, "0.123"},
		{"grid 0.01 precision 4", 2.54, 0.01, 4, "2.54"},
		{"integer result", 5.0000001, 0.001, 6, "5"},
		{"negative", -1.2704, 0.01, 4, "-1.27"},
		{"negative zero", -0.0001, 0.01, 4, "0"},
		{"zero", 0, 0.001, 6, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatNumber(RoundToGrid(tt.value, tt.grid), tt.precision)
			if got != tt.want {
				t.Errorf("FormatNumber(RoundToGrid(%v, %v), %d) = %q, want %q",
					tt.value, tt.grid, tt.precision, got, tt.want)
			}
		})
	}
}

func TestArcPoints(t *testing.T) {
	pts := ArcPoints(Point{}, 1, 1, 0, 90, 4)
	if len(pts) != 5 {
		t.Fatalf("ArcPoints() returned %d points, want 5", len(pts))
	}
	if abs(pts[0].X-1) > 1e-9 || abs(pts[0].Y) > 1e-9 {
		t.Errorf("first point = %+v, want (1,0)", pts[0])
	}
	if abs(pts[4].X) > 1e-9 || abs(pts[4].Y-1) > 1e-9 {
		t.Errorf("last point = %+v, want (0,1)", pts[4])
	}

	wrapped := ArcPoints(Point{}, 2, 2, 270, 90, 2)
	mid := wrapped[1]
	if abs(mid.X-2) > 1e-9 || abs(mid.Y) > 1e-9 {
		t.Errorf("wrapped midpoint = %+v, want (2,0)", mid)
	}
}

func TestAngleOf(t *testing.T) {
	if a := AngleOf(Point{X: 0, Y: 1}, Point{}); abs(a-90) > 1e-9 {
		t.Errorf("AngleOf = %v, want 90", a)
	}
	if a := AngleOf(Point{X: -1, Y: 0}, Point{}); abs(abs(a)-180) > 1e-9 {
		t.Errorf("AngleOf = %v, want ±180", a)
	}
	p := PointOnCircle(Point{X: 1, Y: 1}, 2, 180)
	if abs(p.X+1) > 1e-9 || abs(p.Y-1) > 1e-9 || math.IsNaN(p.X) {
		t.Errorf("PointOnCircle = %+v, want (-1,1)", p)
	}
}

func TestArcThrough(t *testing.T) {
	tests := []struct {
		name            string
		start, mid, end Point
		wantCenter      Point
		wantRadius      float64
		wantSweep       float64
		wantOK          bool
	}{
		{
			name:       "quarter ccw",
			start:      Point{X: 1, Y: 0},
			mid:        Point{X: math.Sqrt2 / 2, Y: math.Sqrt2 / 2},
			end:        Point{X: 0, Y: 1},
			wantRadius: 1,
			wantSweep:  90,
			wantOK:     true,
		},
		{
			name:       "quarter cw",
			start:      Point{X: 0, Y: 1},
			mid:        Point{X: math.Sqrt2 / 2, Y: math.Sqrt2 / 2},
			end:        Point{X: 1, Y: 0},
			wantRadius: 1,
			wantSweep:  90,
			wantOK:     true,
		},
		{
			name:       "offset three quarter",
			start:      Point{X: 3, Y: 1},
			mid:        Point{X: 1 - math.Sqrt2, Y: 1 - math.Sqrt2},
			end:        Point{X: 1, Y: 3},
			wantCenter: Point{X: 1, Y: 1},
			wantRadius: 2,
			wantSweep:  270,
			wantOK:     true,
		},
		{
			name:  "collinear",
			start: Point{}, mid: Point{X: 1}, end: Point{X: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, r, s, e, ok := ArcThrough(tt.start, tt.mid, tt.end)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if abs(c.X-tt.wantCenter.X) > 1e-9 || abs(c.Y-tt.wantCenter.Y) > 1e-9 {
				t.Errorf("center = %+v, want %+v", c, tt.wantCenter)
			}
			if abs(r-tt.wantRadius) > 1e-9 {
				t.Errorf("radius = %v, want %v", r, tt.wantRadius)
			}
			if abs(e-s-tt.wantSweep) > 1e-9 {
				t.Errorf("sweep = %v, want %v", e-s, tt.wantSweep)
			}
			m := PointOnCircle(c, r, (s+e)/2)
			if abs(m.X-tt.mid.X) > 1e-9 || abs(m.Y-tt.mid.Y) > 1e-9 {
				t.Errorf("mean angle point = %+v, want mid %+v", m, tt.mid)
			}
		})
	}
}
