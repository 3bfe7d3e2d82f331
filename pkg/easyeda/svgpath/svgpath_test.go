package svgpath

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/OpenTraceLab/eda2kicad/pkg/geom"
)

func TestPoints(t *testing.T) {
	tests := []struct {
		name string
		path string
		want []geom.Point
	}{
		{
			name: "move line close",
			path: "M 4000 3000 L 4010 3000 L 4010 3010 Z",
			want: []geom.Point{{X: 4000, Y: 3000}, {X: 4010, Y: 3000}, {X: 4010, Y: 3010}},
		},
		{
			name: "commas and implicit lineto",
			path: "M4000,3000L4010,3000,4010,3010,4000,3010Z",
			want: []geom.Point{{X: 4000, Y: 3000}, {X: 4010, Y: 3000}, {X: 4010, Y: 3010}, {X: 4000, Y: 3010}},
		},
		{
			name: "relative and axis commands",
			path: "m 10 10 l 5 0 v 5 h -5 z",
			want: []geom.Point{{X: 10, Y: 10}, {X: 15, Y: 10}, {X: 15, Y: 15}, {X: 10, Y: 15}},
		},
		{
			name: "arc end point",
			path: "M 0 0 A 5 5 0 0 1 10 0",
			want: []geom.Point{{X: 0, Y: 0}, {X: 10, Y: 0}},
		},
		{
			name: "empty",
			path: "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse(tt.path)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.path, err)
			}
			if diff := cmp.Diff(tt.want, p.Points()); diff != "" {
				t.Errorf("Points() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFirstArc(t *testing.T) {
	p, err := Parse("M 4000.5 3000 A 10 12 0 1 0 4020.5 3000")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	arc, err := p.FirstArc()
	if err != nil {
		t.Fatalf("FirstArc() error = %v", err)
	}
	want := Arc{
		Start:    geom.Point{X: 4000.5, Y: 3000},
		End:      geom.Point{X: 4020.5, Y: 3000},
		RX:       10,
		RY:       12,
		LargeArc: true,
	}
	if diff := cmp.Diff(want, arc); diff != "" {
		t.Errorf("FirstArc() mismatch (-want +got):\n%s", diff)
	}

	p, _ = Parse("M 0 0 L 1 1")
	if _, err := p.FirstArc(); !errors.Is(err, ErrNoArc) {
		t.Errorf("FirstArc() error = %v, want ErrNoArc", err)
	}
}

func TestFirstArcPackedFlags(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Arc
	}{
		{
			name:  "flags joined",
			input: "M0 0 A5 5 0 01 30 40",
			want:  Arc{End: geom.Point{X: 30, Y: 40}, RX: 5, RY: 5, Sweep: true},
		},
		{
			name:  "flags joined to x",
			input: "M0 0 A5 5 0 1130 40",
			want:  Arc{End: geom.Point{X: 30, Y: 40}, RX: 5, RY: 5, LargeArc: true, Sweep: true},
		},
		{
			name:  "flags with comma",
			input: "M0,0 A5,5,0,1,0,30,40",
			want:  Arc{End: geom.Point{X: 30, Y: 40}, RX: 5, RY: 5, LargeArc: true},
		},
		{
			name:  "large radius is not split",
			input: "M0 0 A10 10 0 0 1 30 40",
			want:  Arc{End: geom.Point{X: 30, Y: 40}, RX: 10, RY: 10, Sweep: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			arc, err := p.FirstArc()
			if err != nil {
				t.Fatalf("FirstArc() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, arc); diff != "" {
				t.Errorf("FirstArc() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseError(t *testing.T) {
	if _, err := Parse("M 1 2 @ 3"); err == nil {
		t.Error("Parse() expected error for invalid token")
	}
}
