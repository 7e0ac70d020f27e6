package model

import "github.com/go-gl/mathgl/mgl32"

// Path is the node property an animation channel drives.
type Path int

// Channel paths.
const (
	PathTranslation Path = iota
	PathRotation
	PathScale
)

func (p Path) String() string {
	switch p {
	case PathTranslation:
		return "translation"
	case PathRotation:
		return "rotation"
	case PathScale:
		return "scale"
	default:
		return "unknown"
	}
}

// Interpolation selects how values between keyframes are computed.
type Interpolation int

// Interpolation modes.
const (
	InterpolationLinear Interpolation = iota
	InterpolationStep
)

// Channel is one keyframe track targeting a single node property.
// Rotation values are stored as [x, y, z, w]; translation and scale use the
// first three components.
type Channel struct {
	Target        *Node
	Path          Path
	Interpolation Interpolation
	Times         []float32
	Values        [][4]float32
}

// Clip is a named set of channels belonging to one model.
type Clip struct {
	Name     string
	Duration float32
	Channels []*Channel
}

// NewClip creates a clip whose duration is the last key time of any channel.
func NewClip(name string, channels []*Channel) *Clip {
	c := &Clip{Name: name, Channels: channels}
	for _, ch := range channels {
		if n := len(ch.Times); n > 0 && ch.Times[n-1] > c.Duration {
			c.Duration = ch.Times[n-1]
		}
	}
	return c
}

// Sample applies the pose at time t (seconds) to every target node.
func (c *Clip) Sample(t float32) {
	for _, ch := range c.Channels {
		ch.Apply(t)
	}
}

// Apply writes the channel value at time t into its target node.
func (ch *Channel) Apply(t float32) {
	if ch.Target == nil || len(ch.Values) == 0 {
		return
	}
	switch ch.Path {
	case PathRotation:
		ch.Target.Rotation = ch.rotationAt(t)
	case PathTranslation:
		ch.Target.Translation = ch.vec3At(t)
	case PathScale:
		ch.Target.Scale = ch.vec3At(t)
	}
}

// keyframes finds the surrounding keys for time t and the blend factor.
// Keys are assumed sorted by time; prev == next means no blending.
func (ch *Channel) keyframes(t float32) (prev, next int, f float32) {
	n := len(ch.Times)
	if len(ch.Values) < n {
		n = len(ch.Values)
	}
	if n <= 1 {
		return 0, 0, 0
	}

	for i := 0; i < n; i++ {
		if ch.Times[i] > t {
			next = i
			break
		}
		prev = i
		next = i
	}

	// Before the first key or at/after the last key.
	if prev == next || ch.Interpolation == InterpolationStep {
		return prev, prev, 0
	}

	t0, t1 := ch.Times[prev], ch.Times[next]
	if t1 != t0 {
		f = (t - t0) / (t1 - t0)
	}
	return prev, next, f
}

func (ch *Channel) rotationAt(t float32) mgl32.Quat {
	prev, next, f := ch.keyframes(t)
	q0 := quatFromXYZW(ch.Values[prev])
	if prev == next {
		return q0
	}
	return mgl32.QuatSlerp(q0, quatFromXYZW(ch.Values[next]), f)
}

func (ch *Channel) vec3At(t float32) mgl32.Vec3 {
	prev, next, f := ch.keyframes(t)
	v0 := ch.Values[prev]
	if prev == next {
		return mgl32.Vec3{v0[0], v0[1], v0[2]}
	}
	v1 := ch.Values[next]
	return mgl32.Vec3{
		v0[0] + f*(v1[0]-v0[0]),
		v0[1] + f*(v1[1]-v0[1]),
		v0[2] + f*(v1[2]-v0[2]),
	}
}

func quatFromXYZW(v [4]float32) mgl32.Quat {
	return mgl32.Quat{W: v[3], V: mgl32.Vec3{v[0], v[1], v[2]}}.Normalize()
}

// HasAnimation reports whether any clip has a channel with more than one key.
// Clips with a single key per channel are static poses.
func HasAnimation(clips []*Clip) bool {
	for _, c := range clips {
		if c.Duration <= 0 {
			continue
		}
		for _, ch := range c.Channels {
			if len(ch.Times) > 1 {
				return true
			}
		}
	}
	return false
}
