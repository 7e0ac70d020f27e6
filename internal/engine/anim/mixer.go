// Package anim plays animation clips on a model's node tree.
package anim

import (
	gomath "math"

	"github.com/Faultbox/midgard-showcase/internal/engine/model"
)

// LoopMode controls what happens when an action reaches the clip end.
type LoopMode int

// Loop modes.
const (
	// LoopRepeat wraps time back to the clip start, indefinitely.
	LoopRepeat LoopMode = iota
	// LoopOnce stops on the last frame.
	LoopOnce
)

// Action is the playback state of one clip on one mixer.
type Action struct {
	mixer   *Mixer
	clip    *model.Clip
	loop    LoopMode
	time    float32
	running bool
}

// Clip returns the clip played by the action.
func (a *Action) Clip() *model.Clip {
	return a.clip
}

// SetLoop sets the loop mode and returns the action for chaining.
func (a *Action) SetLoop(mode LoopMode) *Action {
	a.loop = mode
	return a
}

// Loop returns the loop mode.
func (a *Action) Loop() LoopMode {
	return a.loop
}

// Play starts the action from its current time. Any other running action of
// the same mixer is stopped.
func (a *Action) Play() *Action {
	if a.mixer.active != nil && a.mixer.active != a {
		a.mixer.active.Stop()
	}
	a.mixer.active = a
	a.running = true
	return a
}

// Stop halts the action and rewinds it.
func (a *Action) Stop() {
	a.running = false
	a.time = 0
	if a.mixer.active == a {
		a.mixer.active = nil
	}
}

// IsRunning reports whether the action is playing.
func (a *Action) IsRunning() bool {
	return a.running
}

// Time returns the local playback time in seconds.
func (a *Action) Time() float32 {
	return a.time
}

func (a *Action) advance(dt float32) {
	if !a.running {
		return
	}
	duration := a.clip.Duration

	if dt != 0 {
		a.time += dt
		switch {
		case duration <= 0:
			a.time = 0
		case a.loop == LoopRepeat:
			a.time = float32(gomath.Mod(float64(a.time), float64(duration)))
			if a.time < 0 {
				a.time += duration
			}
		case a.time >= duration:
			a.time = duration
			a.clip.Sample(a.time)
			a.running = false
			return
		case a.time < 0:
			a.time = 0
		}
	}

	a.clip.Sample(a.time)
}

// Mixer drives the animation of exactly one model root.
type Mixer struct {
	root    *model.Node
	actions map[*model.Clip]*Action
	active  *Action
	time    float32
}

// NewMixer creates a mixer bound to root.
func NewMixer(root *model.Node) *Mixer {
	return &Mixer{
		root:    root,
		actions: make(map[*model.Clip]*Action),
	}
}

// Root returns the node tree the mixer animates.
func (m *Mixer) Root() *model.Node {
	return m.root
}

// ClipAction returns the action for clip, creating it on first use.
func (m *Mixer) ClipAction(clip *model.Clip) *Action {
	if a, ok := m.actions[clip]; ok {
		return a
	}
	a := &Action{mixer: m, clip: clip, loop: LoopRepeat}
	m.actions[clip] = a
	return a
}

// Active returns the playing action, or nil.
func (m *Mixer) Active() *Action {
	return m.active
}

// Update advances the playing action by dt seconds and poses the nodes.
// Update(0) re-applies the current pose without moving time.
func (m *Mixer) Update(dt float32) {
	m.time += dt
	if m.active != nil {
		m.active.advance(dt)
	}
}

// Time returns the total time the mixer has been advanced.
func (m *Mixer) Time() float32 {
	return m.time
}

// StopAll stops every action.
func (m *Mixer) StopAll() {
	for _, a := range m.actions {
		a.Stop()
	}
	m.active = nil
}

// Uncache stops and forgets every action.
func (m *Mixer) Uncache() {
	m.StopAll()
	m.actions = make(map[*model.Clip]*Action)
}
