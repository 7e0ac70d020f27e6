package stage

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-showcase/internal/engine/model"
)

// DefaultGap is the spacing between neighbouring models along x.
const DefaultGap float32 = 10

// NoGap asks a Stage to place models edge to edge. A zero Options.Gap means
// DefaultGap.
const NoGap float32 = -1

// Placement is where layout puts one model.
type Placement struct {
	Size     mgl32.Vec3
	Center   mgl32.Vec3 // of the decoded content, before centering
	Offset   mgl32.Vec3 // self-centering translation, -Center
	Position mgl32.Vec3 // world position of the box center
}

// Layout places boxes of the given sizes edge to edge along x, separated by
// gap, each centered at y = z = 0.
func Layout(bounds []model.Bounds, gap float32) []Placement {
	placements := make([]Placement, len(bounds))
	var cursor float32
	for i, b := range bounds {
		size := b.Size()
		center := b.Center()
		placements[i] = Placement{
			Size:     size,
			Center:   center,
			Offset:   center.Mul(-1),
			Position: mgl32.Vec3{cursor + size[0]/2, 0, 0},
		}
		cursor += size[0] + gap
	}
	return placements
}

// LayoutModels computes placements from each model's local bounds and
// applies them. The models are not attached to anything.
func LayoutModels(models []*model.Model, gap float32) []Placement {
	bounds := make([]model.Bounds, len(models))
	for i, m := range models {
		bounds[i] = m.LocalBounds()
	}
	placements := Layout(bounds, gap)
	for i, m := range models {
		m.SetOffset(placements[i].Offset)
		m.SetPosition(placements[i].Position)
	}
	return placements
}
