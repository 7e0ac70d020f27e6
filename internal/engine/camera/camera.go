// Package camera provides the orbit camera used to inspect the model lineup.
package camera

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-showcase/internal/engine/model"
)

// OrbitCamera orbits around a target point.
type OrbitCamera struct {
	Target mgl32.Vec3

	// Spherical coordinates around Target
	Distance float32
	Pitch    float32 // radians above the horizon
	Yaw      float32 // radians around Y, 0 looks down -Z

	// Projection
	FOV  float32 // vertical, degrees
	Near float32
	Far  float32

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	// Sensitivity
	DragSensitivity float32
	PanSensitivity  float32
	ZoomSensitivity float32
}

// NewOrbitCamera creates an orbit camera placed at eye looking at target.
func NewOrbitCamera(eye, target mgl32.Vec3, fov, near, far float32) *OrbitCamera {
	c := &OrbitCamera{
		Target:          target,
		FOV:             fov,
		Near:            near,
		Far:             far,
		MinDistance:     1,
		MaxDistance:     far / 2,
		MinPitch:        -1.5,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		PanSensitivity:  0.002,
		ZoomSensitivity: 0.1,
	}
	c.SetEye(eye)
	return c
}

// SetEye moves the camera to eye while keeping the target.
func (c *OrbitCamera) SetEye(eye mgl32.Vec3) {
	d := eye.Sub(c.Target)
	c.Distance = d.Len()
	if c.Distance < 1e-6 {
		c.Distance, c.Pitch, c.Yaw = c.MinDistance, 0, 0
		return
	}
	c.Pitch = float32(gomath.Asin(float64(d[1] / c.Distance)))
	c.Yaw = float32(gomath.Atan2(float64(d[0]), float64(d[2])))
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() mgl32.Vec3 {
	cp, sp := float32(gomath.Cos(float64(c.Pitch))), float32(gomath.Sin(float64(c.Pitch)))
	cy, sy := float32(gomath.Cos(float64(c.Yaw))), float32(gomath.Sin(float64(c.Yaw)))
	return c.Target.Add(mgl32.Vec3{cp * sy, sp, cp * cy}.Mul(c.Distance))
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position(), c.Target, mgl32.Vec3{0, 1, 0})
}

// Projection returns the perspective projection for the given aspect ratio.
func (c *OrbitCamera) Projection(aspect float32) mgl32.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), aspect, c.Near, c.Far)
}

// HandleDrag rotates around the target based on mouse drag delta.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.Yaw -= deltaX * c.DragSensitivity
	c.Pitch = mgl32.Clamp(c.Pitch+deltaY*c.DragSensitivity, c.MinPitch, c.MaxPitch)
}

// HandlePan moves the target in the view plane. Speed scales with distance.
func (c *OrbitCamera) HandlePan(deltaX, deltaY float32) {
	forward := c.Target.Sub(c.Position()).Normalize()
	right := forward.Cross(mgl32.Vec3{0, 1, 0})
	if right.Len() < 1e-6 {
		right = mgl32.Vec3{1, 0, 0}
	}
	right = right.Normalize()
	up := right.Cross(forward)

	speed := c.Distance * c.PanSensitivity
	c.Target = c.Target.
		Sub(right.Mul(deltaX * speed)).
		Add(up.Mul(deltaY * speed))
}

// HandleZoom updates distance based on scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance -= delta * c.Distance * c.ZoomSensitivity
	c.Distance = mgl32.Clamp(c.Distance, c.MinDistance, c.MaxDistance)
}

// FitToBounds centers the camera on b and backs off until the whole box fits
// the vertical field of view. Empty bounds leave the camera unchanged.
func (c *OrbitCamera) FitToBounds(b model.Bounds) {
	if b.IsEmpty() {
		return
	}
	c.Target = b.Center()

	radius := b.Size().Len() / 2
	half := mgl32.DegToRad(c.FOV) / 2
	dist := radius / float32(gomath.Sin(float64(half)))
	if dist < c.MinDistance {
		dist = c.MinDistance
	}
	if c.MaxDistance < dist {
		c.MaxDistance = dist * 2
	}
	c.Distance = dist
}
