package app

import (
	"github.com/Faultbox/midgard-showcase/internal/engine/camera"
	"github.com/Faultbox/midgard-showcase/internal/engine/input"
)

// clickSlop is how far, in pixels, the mouse may travel between press and
// release for the gesture to still count as a click.
const clickSlop = 3

// Controls maps mouse input to the orbit camera: left drag rotates, right
// or middle drag pans, the wheel zooms. A left press released without
// dragging is reported as a click.
type Controls struct {
	Camera *camera.OrbitCamera

	rotating bool
	panning  bool
	travel   float32

	clicked        bool
	clickX, clickY int
}

// Apply feeds one frame of events to the camera.
func (c *Controls) Apply(events []input.Event) {
	for _, e := range events {
		switch e.Type {
		case input.EventMouseDown:
			switch e.Button {
			case input.ButtonLeft:
				c.rotating = true
				c.travel = 0
			case input.ButtonRight, input.ButtonMiddle:
				c.panning = true
			}
		case input.EventMouseUp:
			switch e.Button {
			case input.ButtonLeft:
				if c.rotating && c.travel <= clickSlop {
					c.clicked = true
					c.clickX, c.clickY = e.MouseX, e.MouseY
				}
				c.rotating = false
			case input.ButtonRight, input.ButtonMiddle:
				c.panning = false
			}
		case input.EventMouseMove:
			switch {
			case c.rotating:
				c.travel += abs(e.DeltaX) + abs(e.DeltaY)
				c.Camera.HandleDrag(e.DeltaX, e.DeltaY)
			case c.panning:
				c.Camera.HandlePan(e.DeltaX, e.DeltaY)
			}
		case input.EventMouseWheel:
			c.Camera.HandleZoom(e.DeltaY)
		}
	}
}

// TakeClick returns the last click position once.
func (c *Controls) TakeClick() (x, y int, ok bool) {
	if !c.clicked {
		return 0, 0, false
	}
	c.clicked = false
	return c.clickX, c.clickY, true
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
