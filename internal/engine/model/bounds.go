package model

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"
)

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// EmptyBounds returns an inverted box that any point expands.
func EmptyBounds() Bounds {
	inf := float32(gomath.Inf(1))
	return Bounds{
		Min: mgl32.Vec3{inf, inf, inf},
		Max: mgl32.Vec3{-inf, -inf, -inf},
	}
}

// IsEmpty reports whether the box contains no point.
func (b Bounds) IsEmpty() bool {
	return b.Max[0] < b.Min[0] || b.Max[1] < b.Min[1] || b.Max[2] < b.Min[2]
}

// ExpandPoint grows the box to include p.
func (b *Bounds) ExpandPoint(p mgl32.Vec3) {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}

// Union returns the smallest box containing both boxes.
func (b Bounds) Union(other Bounds) Bounds {
	if other.IsEmpty() {
		return b
	}
	if b.IsEmpty() {
		return other
	}
	b.ExpandPoint(other.Min)
	b.ExpandPoint(other.Max)
	return b
}

// Size returns the box extent. An empty box has zero size.
func (b Bounds) Size() mgl32.Vec3 {
	if b.IsEmpty() {
		return mgl32.Vec3{}
	}
	return b.Max.Sub(b.Min)
}

// Center returns the box midpoint. An empty box is centered on the origin.
func (b Bounds) Center() mgl32.Vec3 {
	if b.IsEmpty() {
		return mgl32.Vec3{}
	}
	return b.Min.Add(b.Max).Mul(0.5)
}

// Translate returns the box moved by d.
func (b Bounds) Translate(d mgl32.Vec3) Bounds {
	if b.IsEmpty() {
		return b
	}
	return Bounds{Min: b.Min.Add(d), Max: b.Max.Add(d)}
}

// Transform returns the axis-aligned box enclosing the 8 transformed corners.
func (b Bounds) Transform(m mgl32.Mat4) Bounds {
	if b.IsEmpty() {
		return b
	}
	out := EmptyBounds()
	for i := 0; i < 8; i++ {
		corner := mgl32.Vec3{b.Min[0], b.Min[1], b.Min[2]}
		if i&1 != 0 {
			corner[0] = b.Max[0]
		}
		if i&2 != 0 {
			corner[1] = b.Max[1]
		}
		if i&4 != 0 {
			corner[2] = b.Max[2]
		}
		out.ExpandPoint(mgl32.TransformCoordinate(corner, m))
	}
	return out
}

// ComputeBounds returns the box of every mesh under root, expressed in the
// space of root's parent.
func ComputeBounds(root *Node) Bounds {
	box := EmptyBounds()
	if root == nil {
		return box
	}
	var walk func(n *Node, parent mgl32.Mat4)
	walk = func(n *Node, parent mgl32.Mat4) {
		m := parent.Mul4(n.LocalMatrix())
		if n.Mesh != nil {
			box = box.Union(n.Mesh.Bounds.Transform(m))
		}
		for _, c := range n.Children {
			walk(c, m)
		}
	}
	walk(root, mgl32.Ident4())
	return box
}
