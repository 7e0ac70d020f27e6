// Package renderer provides OpenGL rendering functionality.
package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-showcase/internal/engine/lighting"
	"github.com/Faultbox/midgard-showcase/internal/engine/model"
	"github.com/Faultbox/midgard-showcase/internal/engine/shader"
	"github.com/Faultbox/midgard-showcase/internal/logger"
)

const vertexShader = `
#version 410 core

layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aNormal;

uniform mat4 uModel;
uniform mat4 uViewProj;
uniform mat3 uNormalMatrix;

out vec3 vNormal;

void main() {
	vNormal = uNormalMatrix * aNormal;
	gl_Position = uViewProj * uModel * vec4(aPos, 1.0);
}
`

const fragmentShader = `
#version 410 core

in vec3 vNormal;

uniform vec3 uAlbedo;
uniform vec3 uAmbient;
uniform vec3 uLightDir;
uniform vec3 uLightColor;

out vec4 FragColor;

void main() {
	vec3 n = normalize(vNormal);
	float diffuse = max(dot(n, uLightDir), 0.0);
	vec3 color = uAlbedo * (uAmbient + uLightColor * diffuse);
	FragColor = vec4(clamp(color, 0.0, 1.0), 1.0);
}
`

const lineVertexShader = `
#version 410 core

layout (location = 0) in vec3 aPos;

uniform mat4 uViewProj;

void main() {
	gl_Position = uViewProj * vec4(aPos, 1.0);
}
`

const lineFragmentShader = `
#version 410 core

uniform vec3 uColor;

out vec4 FragColor;

void main() {
	FragColor = vec4(uColor, 1.0);
}
`

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int
}

// Renderer draws model groups with a single lit shader.
type Renderer struct {
	config  Config
	program *shader.Program
	lines   *shader.Program
	lights  lighting.Lights

	lineVAO uint32
	lineVBO uint32
	albedo  mgl32.Vec3

	uploaded int
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config, lights lighting.Lights) (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.ClearColor(0.1, 0.1, 0.15, 1.0)

	program, err := shader.NewProgram(vertexShader, fragmentShader)
	if err != nil {
		return nil, fmt.Errorf("failed to create shader program: %w", err)
	}

	lines, err := shader.NewProgram(lineVertexShader, lineFragmentShader)
	if err != nil {
		program.Delete()
		return nil, fmt.Errorf("failed to create line program: %w", err)
	}

	r := &Renderer{
		config:  cfg,
		program: program,
		lines:   lines,
		lights:  lights,
		albedo:  mgl32.Vec3{0.8, 0.8, 0.8},
	}
	r.createLineBuffer()
	r.Resize(cfg.Width, cfg.Height)
	return r, nil
}

// Close cleans up renderer resources. Meshes keep their handles and are
// freed by Model.Dispose.
func (r *Renderer) Close() {
	logger.Info("closing renderer", zap.Int("meshes_uploaded", r.uploaded))
	if r.lineVAO != 0 {
		gl.DeleteVertexArrays(1, &r.lineVAO)
		gl.DeleteBuffers(1, &r.lineVBO)
	}
	r.lines.Delete()
	r.program.Delete()
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Aspect returns the viewport aspect ratio.
func (r *Renderer) Aspect() float32 {
	if r.config.Height == 0 {
		return 1
	}
	return float32(r.config.Width) / float32(r.config.Height)
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// Draw renders every mesh below group with its world matrix.
func (r *Renderer) Draw(group *model.Node, view, proj mgl32.Mat4) {
	r.program.Use()
	r.program.SetMat4("uViewProj", proj.Mul4(view))
	r.program.SetVec3("uAlbedo", r.albedo)
	r.program.SetVec3("uAmbient", r.lights.Ambient())
	r.program.SetVec3("uLightDir", r.lights.Sun.Direction())
	r.program.SetVec3("uLightColor", r.lights.Sun.Radiance())

	group.Traverse(func(n *model.Node) {
		if n.Mesh == nil || len(n.Mesh.Indices) == 0 || len(n.Mesh.Vertices) == 0 {
			return
		}
		buf, ok := n.Mesh.Handle.(*meshBuffer)
		if !ok {
			buf = r.upload(n.Mesh)
		}

		world := n.WorldMatrix()
		r.program.SetMat4("uModel", world)
		r.program.SetMat3("uNormalMatrix", world.Mat3().Inv().Transpose())

		gl.BindVertexArray(buf.vao)
		gl.DrawElements(gl.TRIANGLES, buf.count, gl.UNSIGNED_INT, nil)
	})
	gl.BindVertexArray(0)
}

// DrawLines draws GL_LINES vertices (three floats each) in a flat color.
func (r *Renderer) DrawLines(vertices []float32, color mgl32.Vec3, view, proj mgl32.Mat4) {
	if len(vertices) < 6 {
		return
	}
	r.lines.Use()
	r.lines.SetMat4("uViewProj", proj.Mul4(view))
	r.lines.SetVec3("uColor", color)

	gl.BindVertexArray(r.lineVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.lineVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, unsafe.Pointer(&vertices[0]), gl.DYNAMIC_DRAW)
	gl.DrawArrays(gl.LINES, 0, int32(len(vertices)/3))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
}

// ReadPixels returns the current framebuffer as bottom-up RGBA rows.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	pixels := make([]byte, w*h*4)
	if len(pixels) == 0 {
		return pixels, w, h
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&pixels[0]))
	return pixels, w, h
}

func (r *Renderer) createLineBuffer() {
	gl.GenVertexArrays(1, &r.lineVAO)
	gl.BindVertexArray(r.lineVAO)
	gl.GenBuffers(1, &r.lineVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.lineVBO)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 3*4, 0)
	gl.EnableVertexAttribArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
}

// meshBuffer holds the GPU copy of one mesh.
type meshBuffer struct {
	vao, vbo, ebo uint32
	count         int32
}

// Release deletes the GPU buffers. Must run on the GL thread.
func (b *meshBuffer) Release() {
	if b.vao == 0 {
		return
	}
	gl.DeleteVertexArrays(1, &b.vao)
	gl.DeleteBuffers(1, &b.vbo)
	gl.DeleteBuffers(1, &b.ebo)
	b.vao, b.vbo, b.ebo = 0, 0, 0
}

func (r *Renderer) upload(m *model.Mesh) *meshBuffer {
	const vertexSize = int(unsafe.Sizeof(model.Vertex{}))

	b := &meshBuffer{count: int32(len(m.Indices))}

	gl.GenVertexArrays(1, &b.vao)
	gl.BindVertexArray(b.vao)

	gl.GenBuffers(1, &b.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(m.Vertices)*vertexSize, unsafe.Pointer(&m.Vertices[0]), gl.STATIC_DRAW)

	// Position
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, int32(vertexSize), 0)
	gl.EnableVertexAttribArray(0)
	// Normal
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, int32(vertexSize), 3*4)
	gl.EnableVertexAttribArray(1)

	gl.GenBuffers(1, &b.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, b.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*4, unsafe.Pointer(&m.Indices[0]), gl.STATIC_DRAW)

	gl.BindVertexArray(0)

	m.Handle = b
	r.uploaded++
	logger.Debug("mesh uploaded",
		zap.String("mesh", m.Name),
		zap.Int("vertices", len(m.Vertices)),
		zap.Int("triangles", m.TriangleCount()),
	)
	return b
}
