package model

import (
	"sync"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
)

// ID identifies a loaded model for the lifetime of the process.
type ID uint64

var lastID atomic.Uint64

// NextID returns a fresh model ID. Safe for concurrent decoders.
func NextID() ID {
	return ID(lastID.Add(1))
}

// Model is a decoded character model.
//
// The graph is Node (placement) -> pivot (self-centering offset) -> Root
// (decoded content), so layout never touches the decoded transforms that
// animation clips drive.
type Model struct {
	ID    ID
	Path  string
	Root  *Node
	Clips []*Clip

	node  *Node
	pivot *Node

	disposeOnce sync.Once
}

// New wraps a decoded root and its clips into a model with a fresh ID.
func New(path string, root *Node, clips []*Clip) *Model {
	m := &Model{
		ID:    NextID(),
		Path:  path,
		Root:  root,
		Clips: clips,
		node:  NewNode(path),
		pivot: NewNode("pivot"),
	}
	m.node.Add(m.pivot)
	if root != nil {
		m.pivot.Add(root)
	}
	return m
}

// Node returns the placement node that gets attached to a scene group.
func (m *Model) Node() *Node {
	return m.node
}

// Position returns the placement translation.
func (m *Model) Position() mgl32.Vec3 {
	return m.node.Translation
}

// SetPosition sets the placement translation.
func (m *Model) SetPosition(p mgl32.Vec3) {
	m.node.Translation = p
}

// Offset returns the self-centering translation applied under the placement.
func (m *Model) Offset() mgl32.Vec3 {
	return m.pivot.Translation
}

// SetOffset sets the self-centering translation.
func (m *Model) SetOffset(o mgl32.Vec3) {
	m.pivot.Translation = o
}

// LocalBounds returns the box of the decoded content, ignoring offset and
// placement.
func (m *Model) LocalBounds() Bounds {
	return ComputeBounds(m.Root)
}

// Bounds returns the box of the model in its parent's space, including
// offset and placement.
func (m *Model) Bounds() Bounds {
	return ComputeBounds(m.node)
}

// Meshes returns every mesh under the model root.
func (m *Model) Meshes() []*Mesh {
	var meshes []*Mesh
	if m.Root == nil {
		return nil
	}
	m.Root.Traverse(func(n *Node) {
		if n.Mesh != nil {
			meshes = append(meshes, n.Mesh)
		}
	})
	return meshes
}

// Dispose releases GPU resources of every mesh and detaches the model from
// its parent. Calling it more than once is a no-op.
func (m *Model) Dispose() {
	m.disposeOnce.Do(func() {
		for _, mesh := range m.Meshes() {
			mesh.Release()
		}
		if m.node.Parent != nil {
			m.node.Parent.Remove(m.node)
		}
	})
}
