package placement

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/OpenTraceLab/eda2kicad/pkg/geom"
	"github.com/OpenTraceLab/eda2kicad/pkg/model"
)

func footprintWithPads(pads ...model.Pad) *model.Footprint {
	fp := model.NewFootprint("test")
	fp.Pads = pads
	return fp
}

func pad(number string, x, y float64) model.Pad {
	return model.Pad{Number: number, Position: geom.Point{X: x, Y: y}, Width: 1, Height: 1}
}

var unit = model.Vec3{X: 1, Y: 1, Z: 1}

func TestHeuristic(t *testing.T) {
	tests := []struct {
		name string
		fp   *model.Footprint
		want Transform
	}{
		{
			name: "no pads",
			fp:   footprintWithPads(),
			want: Identity(),
		},
		{
			name: "pin 1 at low x and low y",
			fp: footprintWithPads(
				pad("1", 0, 0), pad("2", 4, 0), pad("3", 4, 4), pad("4", 0, 4),
			),
			want: Transform{Offset: model.Vec3{X: -2, Y: -2}, Scale: unit},
		},
		{
			name: "pin 1 at high x and low y",
			fp: footprintWithPads(
				pad("2", 0, 0), pad("1", 4, 0), pad("3", 4, 4), pad("4", 0, 4),
			),
			want: Transform{Offset: model.Vec3{X: -2, Y: -2}, Rotation: model.Vec3{Z: 90}, Scale: unit},
		},
		{
			name: "pin 1 at high x and high y",
			fp:   footprintWithPads(pad("2", 0, 0), pad("1", 4, 4)),
			want: Transform{Offset: model.Vec3{X: -2, Y: -2}, Rotation: model.Vec3{Z: 180}, Scale: unit},
		},
		{
			name: "pin A1 at low x and high y",
			fp:   footprintWithPads(pad("B2", 4, 0), pad("A1", 0, 4)),
			want: Transform{Offset: model.Vec3{X: -2, Y: -2}, Rotation: model.Vec3{Z: 270}, Scale: unit},
		},
		{
			name: "lowest numeric pad when no pin 1",
			fp:   footprintWithPads(pad("7", 0, 4), pad("3", 4, 0), pad("EP", 2, 2)),
			want: Transform{Offset: model.Vec3{X: -2, Y: -2}, Rotation: model.Vec3{Z: 90}, Scale: unit},
		},
		{
			name: "two pad part in a row has no rotation",
			fp:   footprintWithPads(pad("1", 5, 1), pad("2", 7, 1)),
			want: Transform{Offset: model.Vec3{X: -6, Y: -1}, Scale: unit},
		},
		{
			name: "pin 1 inside the threshold band",
			fp:   footprintWithPads(pad("2", 0, 0), pad("3", 4, 4), pad("1", 2.5, 0)),
			want: Transform{Offset: model.Vec3{X: -2, Y: -2}, Scale: unit},
		},
		{
			// band is 0.3 of the half extent: 1.5 here
			name: "pin 1 just outside the threshold band",
			fp:   footprintWithPads(pad("2", 0, 0), pad("3", 10, 10), pad("1", 6.8, 6.8)),
			want: Transform{Offset: model.Vec3{X: -5, Y: -5}, Rotation: model.Vec3{Z: 180}, Scale: unit},
		},
		{
			name: "pin 1 inside the band on one axis",
			fp:   footprintWithPads(pad("2", 0, 0), pad("3", 10, 10), pad("1", 6.4, 9)),
			want: Transform{Offset: model.Vec3{X: -5, Y: -5}, Scale: unit},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(Heuristic{Footprint: tt.fp})
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
				t.Errorf("Resolve() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOverrideDefaults(t *testing.T) {
	got := Resolve(Override{Rotation: &Triple{0, 0, 45}})
	want := Transform{Rotation: model.Vec3{Z: 45}, Scale: model.Vec3{X: 1, Y: 1, Z: 1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Resolve() mismatch (-want +got):\n%s", diff)
	}
	if Resolve(nil) != Identity() {
		t.Error("nil placement should resolve to identity")
	}
}

func TestCalculatorOverridePrecedence(t *testing.T) {
	store := NewMemoryStore()
	calc := NewCalculator(store, nil)
	fp := footprintWithPads(pad("2", 0, 4), pad("1", 4, 0), pad("3", 4, 4))

	got, err := calc.CalculateTransform("c2040", fp)
	if err != nil {
		t.Fatalf("CalculateTransform() error: %v", err)
	}
	if got.Rotation.Z != 90 {
		t.Fatalf("heuristic rotation = %v, want 90", got.Rotation.Z)
	}

	if err := store.Set("c2040", Override{Rotation: &Triple{0, 0, 45}}); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	for _, f := range []*model.Footprint{fp, footprintWithPads(), nil} {
		got, err := calc.CalculateTransform("C2040", f)
		if err != nil {
			t.Fatalf("CalculateTransform() error: %v", err)
		}
		want := Transform{Rotation: model.Vec3{Z: 45}, Scale: model.Vec3{X: 1, Y: 1, Z: 1}}
		if got != want {
			t.Errorf("CalculateTransform() = %v, want %v", got, want)
		}
	}

	p, _ := calc.Placement("C2040", fp)
	if _, ok := p.(Override); !ok {
		t.Errorf("Placement() = %T, want Override", p)
	}

	if err := store.Remove("C2040"); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}
	got, _ = calc.CalculateTransform("C2040", fp)
	if got.Rotation.Z != 90 {
		t.Errorf("rotation after remove = %v, want heuristic 90", got.Rotation.Z)
	}
}

type failingStore struct{ MemoryStore }

func (*failingStore) Get(string) (Override, error) { return Override{}, errors.New("disk on fire") }

func TestCalculatorStoreError(t *testing.T) {
	calc := NewCalculator(&failingStore{}, nil)
	if _, err := calc.CalculateTransform("C1", footprintWithPads(pad("1", 0, 0))); err == nil {
		t.Error("expected store error to propagate")
	}
}

func TestCalculatorIgnoresEmptyOverride(t *testing.T) {
	store := NewMemoryStore()
	store.entries["C9"] = Override{}
	fp := footprintWithPads(pad("2", 0, 0), pad("1", 4, 0), pad("3", 4, 4))

	p, err := NewCalculator(store, nil).Placement("C9", fp)
	if err != nil {
		t.Fatalf("Placement() error: %v", err)
	}
	if _, ok := p.(Heuristic); !ok {
		t.Fatalf("Placement() = %T, want Heuristic", p)
	}
	if got := Resolve(p).Rotation.Z; got != 90 {
		t.Errorf("rotation = %v, want heuristic 90", got)
	}
}

func TestTransformApply(t *testing.T) {
	fp := model.NewFootprint("x")
	tr := Transform{Offset: model.Vec3{X: 1}, Rotation: model.Vec3{Z: 90}, Scale: model.Vec3{X: 2, Y: 2, Z: 2}}
	tr.Apply(fp)
	if fp.Model3DOffset.X != 1 || fp.Model3DRotation.Z != 90 || fp.Model3DScale.Z != 2 {
		t.Errorf("Apply() left %+v %+v %+v", fp.Model3DOffset, fp.Model3DRotation, fp.Model3DScale)
	}
}
