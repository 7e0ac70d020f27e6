// Package app runs the showcase window: it owns the window, renderer,
// camera and the model stage, and drives them from one frame loop.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-showcase/internal/config"
	"github.com/Faultbox/midgard-showcase/internal/engine/camera"
	"github.com/Faultbox/midgard-showcase/internal/engine/debug"
	"github.com/Faultbox/midgard-showcase/internal/engine/input"
	"github.com/Faultbox/midgard-showcase/internal/engine/lighting"
	"github.com/Faultbox/midgard-showcase/internal/engine/model"
	"github.com/Faultbox/midgard-showcase/internal/engine/picking"
	"github.com/Faultbox/midgard-showcase/internal/engine/renderer"
	"github.com/Faultbox/midgard-showcase/internal/engine/window"
	"github.com/Faultbox/midgard-showcase/internal/logger"
	"github.com/Faultbox/midgard-showcase/internal/stage"
)

const title = "Midgard Showcase"

// maxFrameDelta caps dt after stalls such as window drags.
const maxFrameDelta = 0.25

// App is the showcase instance.
type App struct {
	cfg     *config.Config
	log     *zap.Logger
	running bool

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	camera   *camera.OrbitCamera
	controls *Controls

	scene    *model.Node
	stage    *stage.Stage
	fitted   bool
	selected *model.Model

	screenshots *debug.ScreenshotCapture
}

var selectionColor = mgl32.Vec3{1, 0.8, 0.2}

// New creates the window, renderer and stage. Loading starts with Run.
func New(cfg *config.Config) (*App, error) {
	a := &App{
		cfg:   cfg,
		log:   logger.Named("app"),
		scene: model.NewNode("scene"),
	}

	a.log.Info("initializing showcase",
		zap.Int("width", cfg.Graphics.Width),
		zap.Int("height", cfg.Graphics.Height),
		zap.String("models", cfg.Models.Dir),
	)

	var err error
	a.stage, err = stage.FromConfig(cfg.Models, nil, a.scene)
	if err != nil {
		return nil, fmt.Errorf("failed to set up models: %w", err)
	}

	a.window, err = window.New(window.Config{
		Title:      title,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// The renderer needs the GL context the window just created.
	width, height := a.window.DrawableSize()
	lights := lighting.New(
		cfg.Lighting.AmbientIntensity,
		mgl32.Vec3(cfg.Lighting.DirectionalPosition),
		cfg.Lighting.DirectionalIntensity,
	)
	a.renderer, err = renderer.New(renderer.Config{Width: width, Height: height}, lights)
	if err != nil {
		a.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	a.input = input.New()
	a.camera = camera.NewOrbitCamera(
		mgl32.Vec3(cfg.Camera.Eye),
		mgl32.Vec3(cfg.Camera.Target),
		cfg.Camera.FOV, cfg.Camera.Near, cfg.Camera.Far,
	)
	a.controls = &Controls{Camera: a.camera}
	a.screenshots = debug.NewScreenshotCapture("screenshots", "showcase")

	a.log.Info("showcase initialized")
	return a, nil
}

// Run mounts the stage and runs the frame loop until quit.
func (a *App) Run(ctx context.Context) error {
	if err := a.stage.Mount(ctx); err != nil {
		return fmt.Errorf("mounting stage: %w", err)
	}
	a.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	a.log.Info("starting frame loop")

	for a.running {
		now := time.Now()
		dt := float32(now.Sub(lastTime).Seconds())
		lastTime = now
		if dt > maxFrameDelta {
			dt = maxFrameDelta
		}

		if a.input.Update() {
			a.running = false
			break
		}
		a.handleEvents()
		if ctx.Err() != nil {
			a.running = false
			break
		}

		a.update(dt)
		a.render()
		a.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			a.log.Debug("fps",
				zap.Int("count", frameCount),
				zap.Stringer("state", a.stage.State()),
			)
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (a *App) handleEvents() {
	events := a.input.Events()
	for _, e := range events {
		if e.Type == input.EventWindowResize {
			a.renderer.Resize(a.window.DrawableSize())
		}
	}

	if a.input.IsKeyPressed(sdl.SCANCODE_ESCAPE) {
		a.running = false
	}
	if a.input.IsKeyPressed(sdl.SCANCODE_F) {
		a.fitCamera()
	}
	if a.input.IsKeyPressed(sdl.SCANCODE_F12) {
		a.captureScreenshot()
	}
	a.controls.Apply(events)

	if x, y, ok := a.controls.TakeClick(); ok {
		a.pick(x, y)
	}
}

// pick selects the model under the cursor, or clears the selection.
func (a *App) pick(x, y int) {
	w, h := a.window.Size()
	if w == 0 || h == 0 {
		return
	}
	viewProj := a.camera.Projection(a.renderer.Aspect()).Mul4(a.camera.ViewMatrix())
	ray := picking.ScreenToRay(float32(x), float32(y), float32(w), float32(h), viewProj.Inv())

	models := a.stage.Models()
	idx := picking.PickModel(ray, models)
	if idx < 0 {
		a.selected = nil
		return
	}
	a.selected = models[idx]

	pos := a.selected.Position()
	clip := ""
	if mixer, ok := a.stage.Mixer(a.selected.ID); ok && mixer.Active() != nil {
		clip = mixer.Active().Clip().Name
	}
	a.log.Info("model selected",
		zap.Int("index", idx),
		zap.String("path", a.selected.Path),
		zap.String("clip", clip),
		zap.Float32s("position", pos[:]),
	)
}

func (a *App) captureScreenshot() {
	pixels, w, h := a.renderer.ReadPixels()
	path, err := a.screenshots.CaptureFromPixels(pixels, w, h)
	if err != nil {
		a.log.Warn("screenshot failed", zap.Error(err))
		return
	}
	a.log.Info("screenshot saved", zap.String("path", path))
}

func (a *App) update(dt float32) {
	before := a.stage.State()
	a.stage.OnFrame(dt)

	if before == stage.StateLoading && a.stage.State() == stage.StateReady {
		a.window.SetTitle(fmt.Sprintf("%s (%d models)", title, len(a.stage.Models())))
		if a.cfg.Camera.FitOnLoad && !a.fitted {
			a.fitCamera()
		}
	}
}

func (a *App) fitCamera() {
	if a.stage.State() != stage.StateReady {
		return
	}
	a.camera.FitToBounds(a.stage.Bounds())
	a.fitted = true
	a.log.Debug("camera fitted",
		zap.Float32("distance", a.camera.Distance),
	)
}

func (a *App) render() {
	view, proj := a.camera.ViewMatrix(), a.camera.Projection(a.renderer.Aspect())

	a.renderer.Begin()
	a.renderer.Draw(a.scene, view, proj)
	if a.selected != nil {
		a.renderer.DrawLines(debug.BoxLines(a.selected.Bounds(), debug.DefaultBoxPadding), selectionColor, view, proj)
	}
}

// Close disposes every model and then the GL resources. It must run on the
// thread that owns the GL context.
func (a *App) Close() {
	a.log.Info("closing showcase")

	a.selected = nil
	if a.stage != nil {
		a.stage.Unmount()
	}
	if a.renderer != nil {
		a.renderer.Close()
	}
	if a.window != nil {
		a.window.Close()
	}
}
