// Package model provides the in-memory scene graph for decoded character
// models: nodes, meshes, bounds and animation clips.
package model

import "github.com/go-gl/mathgl/mgl32"

// Vertex represents a mesh vertex with position and normal.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
}

// Handle is a GPU-side resource attached to a mesh by the renderer.
type Handle interface {
	Release()
}

// Mesh holds triangle data in the owning node's local space.
type Mesh struct {
	Name     string
	Vertices []Vertex
	Indices  []uint32
	Bounds   Bounds

	// Handle is set by the renderer after upload and released on Dispose.
	Handle Handle
}

// NewMesh creates a mesh and computes its local bounds.
func NewMesh(name string, vertices []Vertex, indices []uint32) *Mesh {
	m := &Mesh{
		Name:     name,
		Vertices: vertices,
		Indices:  indices,
		Bounds:   EmptyBounds(),
	}
	for i := range vertices {
		m.Bounds.ExpandPoint(mgl32.Vec3(vertices[i].Position))
	}
	return m
}

// Release frees the GPU handle, if any.
func (m *Mesh) Release() {
	if m.Handle != nil {
		m.Handle.Release()
		m.Handle = nil
	}
}

// TriangleCount returns the number of indexed triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}
