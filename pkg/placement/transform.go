// Package placement computes the transform that places a footprint's 3D
// model and keeps the operator overrides that take precedence over it.
package placement

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/OpenTraceLab/eda2kicad/pkg/model"
)

// ErrNotFound is returned when no override exists for a component
var ErrNotFound = errors.New("placement: no override")

// quadrantThreshold is the fraction of the pad box half extent pin 1 must
// be away from the center before it counts as being in a corner
const quadrantThreshold = 0.3

// minExtent is the smallest pad box side for which rotation is guessed
const minExtent = 0.1

// Transform positions a 3D model relative to its footprint
type Transform struct {
	Offset   model.Vec3
	Rotation model.Vec3
	Scale    model.Vec3
}

// Identity returns the transform that leaves the model untouched
func Identity() Transform {
	return Transform{Scale: model.Vec3{X: 1, Y: 1, Z: 1}}
}

// Apply stores t on the footprint's model fields
func (t Transform) Apply(fp *model.Footprint) {
	fp.Model3DOffset = t.Offset
	fp.Model3DRotation = t.Rotation
	fp.Model3DScale = t.Scale
}

func (t Transform) String() string {
	return fmt.Sprintf("offset=%s rotation=%s scale=%s", vecString(t.Offset), vecString(t.Rotation), vecString(t.Scale))
}

func vecString(v model.Vec3) string {
	return fmt.Sprintf("(%g, %g, %g)", v.X, v.Y, v.Z)
}

// Placement is either an Override or a Heuristic. It is chosen once per
// component and turned into a Transform by Resolve.
type Placement interface {
	resolve() Transform
}

// Resolve turns a placement into the transform written to the footprint
func Resolve(p Placement) Transform {
	if p == nil {
		return Identity()
	}
	return p.resolve()
}

// Heuristic derives the transform from footprint geometry
type Heuristic struct {
	Footprint *model.Footprint
}

// resolve centers the model over the pad centers at board level and turns
// it so that pin 1 lands in the corner it occupies on the footprint.
func (h Heuristic) resolve() Transform {
	t := Identity()
	if h.Footprint == nil {
		return t
	}
	box, ok := h.Footprint.PadCenterBox()
	if !ok {
		return t
	}
	center := box.Center()
	t.Offset = model.Vec3{X: -center.X, Y: -center.Y}

	if i := h.Footprint.PinOne(); i >= 0 {
		pin := h.Footprint.Pads[i].Position
		t.Rotation.Z = quadrantRotation(pin.X-center.X, pin.Y-center.Y, box.Width(), box.Height())
	}
	return t
}

// quadrantRotation maps pin 1's offset (x, y) from the center of a w by h
// pad box, in footprint coordinates, to a Z rotation: 0 for (-, -), 90 for
// (+, -), 180 for (+, +) and 270 for (-, +). Positions inside the threshold
// band give 0.
func quadrantRotation(x, y, w, h float64) float64 {
	if w < minExtent || h < minExtent {
		return 0
	}
	wt, ht := w/2*quadrantThreshold, h/2*quadrantThreshold
	switch {
	case x < -wt && y < -ht:
		return 0
	case x > wt && y < -ht:
		return 90
	case x > wt && y > ht:
		return 180
	case x < -wt && y > ht:
		return 270
	}
	return 0
}

// Calculator picks between a stored override and the geometric heuristic
type Calculator struct {
	Store  Store
	Logger *slog.Logger
}

// NewCalculator creates a calculator backed by store. A nil logger discards.
func NewCalculator(store Store, logger *slog.Logger) *Calculator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Calculator{Store: store, Logger: logger}
}

// Placement returns the override for id when one with at least one field
// exists and the heuristic for fp otherwise.
func (c *Calculator) Placement(id string, fp *model.Footprint) (Placement, error) {
	if c.Store != nil && strings.TrimSpace(id) != "" {
		o, err := c.Store.Get(id)
		switch {
		case err == nil && o.Empty():
			c.Logger.Debug("ignoring empty model override", "id", Key(id))
		case err == nil:
			c.Logger.Debug("using model override", "id", Key(id), "override", o.String())
			return o, nil
		case !errors.Is(err, ErrNotFound):
			return nil, err
		}
	}
	return Heuristic{Footprint: fp}, nil
}

// CalculateTransform resolves the placement of id's model on fp
func (c *Calculator) CalculateTransform(id string, fp *model.Footprint) (Transform, error) {
	p, err := c.Placement(id, fp)
	if err != nil {
		return Identity(), err
	}
	t := Resolve(p)
	if _, ok := p.(Heuristic); ok {
		c.Logger.Debug("heuristic model transform", "id", Key(id), "transform", t.String())
	}
	return t, nil
}
