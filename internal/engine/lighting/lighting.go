// Package lighting describes the scene lights: one ambient term and one
// directional light.
package lighting

import "github.com/go-gl/mathgl/mgl32"

// Directional is a light infinitely far away in the direction of Position.
type Directional struct {
	Position  mgl32.Vec3
	Color     mgl32.Vec3
	Intensity float32
}

// Direction returns the unit vector pointing from the scene towards the
// light. A light placed at the origin shines straight down.
func (d Directional) Direction() mgl32.Vec3 {
	if d.Position.Len() < 1e-6 {
		return mgl32.Vec3{0, 1, 0}
	}
	return d.Position.Normalize()
}

// Radiance returns the light color scaled by intensity.
func (d Directional) Radiance() mgl32.Vec3 {
	return d.Color.Mul(d.Intensity)
}

// Lights is the full light setup of the scene.
type Lights struct {
	AmbientColor     mgl32.Vec3
	AmbientIntensity float32
	Sun              Directional
}

// New creates a white ambient light and a white directional light.
func New(ambient float32, sunPosition mgl32.Vec3, sunIntensity float32) Lights {
	white := mgl32.Vec3{1, 1, 1}
	return Lights{
		AmbientColor:     white,
		AmbientIntensity: ambient,
		Sun: Directional{
			Position:  sunPosition,
			Color:     white,
			Intensity: sunIntensity,
		},
	}
}

// Ambient returns the ambient color scaled by intensity.
func (l Lights) Ambient() mgl32.Vec3 {
	return l.AmbientColor.Mul(l.AmbientIntensity)
}

// Shade returns the Lambert lit color of a white surface with the given
// normal. It mirrors the fragment shader and is used to check light setups
// without a GL context.
func (l Lights) Shade(normal mgl32.Vec3) mgl32.Vec3 {
	n := normal
	if n.Len() > 1e-6 {
		n = n.Normalize()
	}
	diffuse := n.Dot(l.Sun.Direction())
	if diffuse < 0 {
		diffuse = 0
	}
	c := l.Ambient().Add(l.Sun.Radiance().Mul(diffuse))
	for i := range c {
		c[i] = mgl32.Clamp(c[i], 0, 1)
	}
	return c
}
