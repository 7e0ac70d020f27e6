package model

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// ErrNoScene is returned for documents without any node to show.
var ErrNoScene = errors.New("gltf document has no nodes")

// GLTFDecoder decodes .gltf and .glb files.
type GLTFDecoder struct {
	// GenerateNormals computes smooth normals for primitives without NORMAL.
	GenerateNormals bool
}

// NewGLTFDecoder creates a decoder with default options.
func NewGLTFDecoder() *GLTFDecoder {
	return &GLTFDecoder{GenerateNormals: true}
}

// Decode opens path and converts the default scene into a Model.
func (d *GLTFDecoder) Decode(ctx context.Context, path string) (*Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	// gltf.Open cannot be interrupted; drop the result if we were cancelled.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	root, clips, err := d.DecodeDocument(doc, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return New(path, root, clips), nil
}

// DecodeDocument converts an already parsed document into a node tree and
// its animation clips.
func (d *GLTFDecoder) DecodeDocument(doc *gltf.Document, name string) (*Node, []*Clip, error) {
	if len(doc.Nodes) == 0 {
		return nil, nil, ErrNoScene
	}

	meshes := make([]*Mesh, len(doc.Meshes))
	for i, m := range doc.Meshes {
		mesh, err := d.readMesh(doc, m)
		if err != nil {
			return nil, nil, fmt.Errorf("mesh %d: %w", i, err)
		}
		meshes[i] = mesh
	}

	nodes := make([]*Node, len(doc.Nodes))
	for i, n := range doc.Nodes {
		nodes[i] = convertNode(n, i)
		if n.Mesh != nil && *n.Mesh >= 0 && *n.Mesh < len(meshes) {
			nodes[i].Mesh = meshes[*n.Mesh]
		}
	}

	hasParent := make([]bool, len(nodes))
	for i, n := range doc.Nodes {
		for _, c := range n.Children {
			if c < 0 || c >= len(nodes) || c == i || hasParent[c] {
				continue
			}
			nodes[i].Add(nodes[c])
			hasParent[c] = true
		}
	}

	root := NewNode(name)
	for _, idx := range sceneRoots(doc, hasParent) {
		root.Add(nodes[idx])
	}
	if len(root.Children) == 0 {
		return nil, nil, ErrNoScene
	}

	clips := make([]*Clip, 0, len(doc.Animations))
	for i, a := range doc.Animations {
		clip, err := readClip(doc, a, nodes)
		if err != nil {
			return nil, nil, fmt.Errorf("animation %d: %w", i, err)
		}
		if clip.Name == "" {
			clip.Name = fmt.Sprintf("animation_%d", i)
		}
		clips = append(clips, clip)
	}

	return root, clips, nil
}

// sceneRoots returns the root node indices of the default scene. Documents
// without scenes, or whose default scene lists no usable root, use every
// node that has no parent.
func sceneRoots(doc *gltf.Document, hasParent []bool) []int {
	sceneIdx := 0
	if doc.Scene != nil {
		sceneIdx = *doc.Scene
	}
	var roots []int
	if sceneIdx >= 0 && sceneIdx < len(doc.Scenes) {
		for _, idx := range doc.Scenes[sceneIdx].Nodes {
			if idx >= 0 && idx < len(hasParent) && !hasParent[idx] {
				roots = append(roots, idx)
			}
		}
		if len(roots) > 0 {
			return roots
		}
	}

	for i, p := range hasParent {
		if !p {
			roots = append(roots, i)
		}
	}
	return roots
}

func convertNode(n *gltf.Node, idx int) *Node {
	name := n.Name
	if name == "" {
		name = fmt.Sprintf("node_%d", idx)
	}
	out := NewNode(name)

	if n.Matrix != [16]float64{} && n.Matrix != identityMatrix {
		var m mgl32.Mat4
		for i, v := range n.Matrix {
			m[i] = float32(v)
		}
		out.Translation, out.Rotation, out.Scale = decompose(m)
		return out
	}

	t := n.TranslationOrDefault()
	r := n.RotationOrDefault()
	s := n.ScaleOrDefault()
	out.Translation = mgl32.Vec3{float32(t[0]), float32(t[1]), float32(t[2])}
	out.Rotation = mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}}
	out.Scale = mgl32.Vec3{float32(s[0]), float32(s[1]), float32(s[2])}
	return out
}

var identityMatrix = [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

// decompose splits a column-major TRS matrix. Shear is discarded.
func decompose(m mgl32.Mat4) (mgl32.Vec3, mgl32.Quat, mgl32.Vec3) {
	t := mgl32.Vec3{m[12], m[13], m[14]}
	sx := mgl32.Vec3{m[0], m[1], m[2]}.Len()
	sy := mgl32.Vec3{m[4], m[5], m[6]}.Len()
	sz := mgl32.Vec3{m[8], m[9], m[10]}.Len()
	if m.Mat3().Det() < 0 {
		sx = -sx
	}

	r := mgl32.Ident4()
	if sx != 0 && sy != 0 && sz != 0 {
		for i := 0; i < 3; i++ {
			r[i] = m[i] / sx
			r[4+i] = m[4+i] / sy
			r[8+i] = m[8+i] / sz
		}
	}
	return t, mgl32.Mat4ToQuat(r).Normalize(), mgl32.Vec3{sx, sy, sz}
}

// readMesh merges every triangle primitive of a glTF mesh into one Mesh.
func (d *GLTFDecoder) readMesh(doc *gltf.Document, m *gltf.Mesh) (*Mesh, error) {
	var vertices []Vertex
	var indices []uint32

	for _, p := range m.Primitives {
		if p.Mode != gltf.PrimitiveTriangles {
			continue
		}
		posIdx, ok := p.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		posAcr, err := accessor(doc, posIdx)
		if err != nil {
			return nil, err
		}
		positions, err := modeler.ReadPosition(doc, posAcr, nil)
		if err != nil {
			return nil, fmt.Errorf("reading positions: %w", err)
		}

		var normals [][3]float32
		if normIdx, ok := p.Attributes[gltf.NORMAL]; ok {
			normAcr, err := accessor(doc, normIdx)
			if err != nil {
				return nil, err
			}
			normals, err = modeler.ReadNormal(doc, normAcr, nil)
			if err != nil {
				return nil, fmt.Errorf("reading normals: %w", err)
			}
		}

		var primIndices []uint32
		if p.Indices != nil {
			idxAcr, err := accessor(doc, *p.Indices)
			if err != nil {
				return nil, err
			}
			primIndices, err = modeler.ReadIndices(doc, idxAcr, nil)
			if err != nil {
				return nil, fmt.Errorf("reading indices: %w", err)
			}
		} else {
			primIndices = make([]uint32, len(positions))
			for i := range primIndices {
				primIndices[i] = uint32(i)
			}
		}

		base := uint32(len(vertices))
		for i, pos := range positions {
			v := Vertex{Position: pos}
			if i < len(normals) {
				v.Normal = normals[i]
			}
			vertices = append(vertices, v)
		}
		for i := 0; i+2 < len(primIndices); i += 3 {
			a, b, c := primIndices[i], primIndices[i+1], primIndices[i+2]
			if int(a) >= len(positions) || int(b) >= len(positions) || int(c) >= len(positions) {
				return nil, fmt.Errorf("index out of range in primitive of %d vertices", len(positions))
			}
			indices = append(indices, base+a, base+b, base+c)
		}

		if len(normals) == 0 && d.GenerateNormals {
			generateNormals(vertices[base:], primIndices)
		}
	}

	return NewMesh(m.Name, vertices, indices), nil
}

// generateNormals accumulates face normals on shared vertices.
func generateNormals(vertices []Vertex, indices []uint32) {
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		p0 := mgl32.Vec3(vertices[a].Position)
		p1 := mgl32.Vec3(vertices[b].Position)
		p2 := mgl32.Vec3(vertices[c].Position)
		n := p1.Sub(p0).Cross(p2.Sub(p0))
		for _, idx := range [3]uint32{a, b, c} {
			sum := mgl32.Vec3(vertices[idx].Normal).Add(n)
			vertices[idx].Normal = sum
		}
	}
	for i := range vertices {
		n := mgl32.Vec3(vertices[i].Normal)
		if n.Len() < 1e-6 {
			vertices[i].Normal = [3]float32{0, 1, 0}
			continue
		}
		vertices[i].Normal = n.Normalize()
	}
}

func readClip(doc *gltf.Document, a *gltf.Animation, nodes []*Node) (*Clip, error) {
	var channels []*Channel

	for _, c := range a.Channels {
		if c.Target.Node == nil || *c.Target.Node < 0 || *c.Target.Node >= len(nodes) {
			continue
		}
		var path Path
		switch c.Target.Path {
		case gltf.TRSTranslation:
			path = PathTranslation
		case gltf.TRSRotation:
			path = PathRotation
		case gltf.TRSScale:
			path = PathScale
		default:
			// morph target weights are not animated
			continue
		}
		if c.Sampler < 0 || c.Sampler >= len(a.Samplers) {
			return nil, fmt.Errorf("channel references missing sampler %d", c.Sampler)
		}
		s := a.Samplers[c.Sampler]

		times, err := readTimes(doc, s.Input)
		if err != nil {
			return nil, err
		}
		values, err := readValues(doc, s.Output)
		if err != nil {
			return nil, err
		}

		interp := InterpolationLinear
		switch s.Interpolation {
		case gltf.InterpolationStep:
			interp = InterpolationStep
		case gltf.InterpolationCubicSpline:
			// keep the value of each (in-tangent, value, out-tangent) triple
			keys := make([][4]float32, 0, len(values)/3)
			for i := 1; i < len(values); i += 3 {
				keys = append(keys, values[i])
			}
			values = keys
		}

		channels = append(channels, &Channel{
			Target:        nodes[*c.Target.Node],
			Path:          path,
			Interpolation: interp,
			Times:         times,
			Values:        values,
		})
	}

	return NewClip(a.Name, channels), nil
}

func accessor(doc *gltf.Document, idx int) (*gltf.Accessor, error) {
	if idx < 0 || idx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", idx)
	}
	return doc.Accessors[idx], nil
}

func readTimes(doc *gltf.Document, idx int) ([]float32, error) {
	acr, err := accessor(doc, idx)
	if err != nil {
		return nil, err
	}
	data, err := modeler.ReadAccessor(doc, acr, nil)
	if err != nil {
		return nil, fmt.Errorf("reading key times: %w", err)
	}
	times, ok := data.([]float32)
	if !ok {
		return nil, fmt.Errorf("unexpected key time type %T", data)
	}
	return times, nil
}

func readValues(doc *gltf.Document, idx int) ([][4]float32, error) {
	acr, err := accessor(doc, idx)
	if err != nil {
		return nil, err
	}
	data, err := modeler.ReadAccessor(doc, acr, nil)
	if err != nil {
		return nil, fmt.Errorf("reading key values: %w", err)
	}

	switch v := data.(type) {
	case [][3]float32:
		out := make([][4]float32, len(v))
		for i, x := range v {
			out[i] = [4]float32{x[0], x[1], x[2], 0}
		}
		return out, nil
	case [][4]float32:
		return v, nil
	case [][4]int8:
		return normalizedValues(v, 127), nil
	case [][4]uint8:
		return normalizedValues(v, 255), nil
	case [][4]int16:
		return normalizedValues(v, 32767), nil
	case [][4]uint16:
		return normalizedValues(v, 65535), nil
	default:
		return nil, fmt.Errorf("unexpected key value type %T", data)
	}
}

func normalizedValues[T int8 | uint8 | int16 | uint16](v [][4]T, scale float32) [][4]float32 {
	out := make([][4]float32, len(v))
	for i, x := range v {
		for j := 0; j < 4; j++ {
			f := float32(x[j]) / scale
			if f < -1 {
				f = -1
			}
			out[i][j] = f
		}
	}
	return out
}
