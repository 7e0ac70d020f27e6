// Package debug provides debug visualization utilities.
package debug

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-showcase/internal/engine/model"
)

// BoxLineVertexCount is the number of vertices of a box wireframe (12 edges × 2).
const BoxLineVertexCount = 24

// DefaultBoxPadding expands selection boxes so they do not z-fight the mesh.
const DefaultBoxPadding = 0.05

// BoxLines returns GL_LINES vertices for the wireframe of b grown by padding
// on every side, three floats per vertex. Empty bounds yield nil.
func BoxLines(b model.Bounds, padding float32) []float32 {
	if b.IsEmpty() {
		return nil
	}
	pad := mgl32.Vec3{padding, padding, padding}
	lo, hi := b.Min.Sub(pad), b.Max.Add(pad)

	corner := func(i int) mgl32.Vec3 {
		c := lo
		if i&1 != 0 {
			c[0] = hi[0]
		}
		if i&2 != 0 {
			c[1] = hi[1]
		}
		if i&4 != 0 {
			c[2] = hi[2]
		}
		return c
	}

	// corners are indexed by bit: 1 = max x, 2 = max y, 4 = max z
	edges := [12][2]int{
		{0, 1}, {1, 5}, {5, 4}, {4, 0}, // bottom
		{2, 3}, {3, 7}, {7, 6}, {6, 2}, // top
		{0, 2}, {1, 3}, {5, 7}, {4, 6}, // vertical
	}

	out := make([]float32, 0, BoxLineVertexCount*3)
	for _, e := range edges {
		a, c := corner(e[0]), corner(e[1])
		out = append(out, a[0], a[1], a[2], c[0], c[1], c[2])
	}
	return out
}
