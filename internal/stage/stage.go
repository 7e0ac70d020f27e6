// Package stage loads a fixed set of character models, lays them out side
// by side along x and keeps one animation mixer per model ticking.
//
// A Stage is owned by the render thread: loads run on background goroutines
// but their result is only applied from OnFrame or Await, so the group and
// the mixer registry have a single writer and need no locking.
package stage

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-showcase/internal/assets"
	"github.com/Faultbox/midgard-showcase/internal/engine/anim"
	"github.com/Faultbox/midgard-showcase/internal/engine/model"
	"github.com/Faultbox/midgard-showcase/internal/logger"
)

// State is the lifecycle state of a Stage.
type State int

// Stage states.
const (
	StateEmpty State = iota
	StateLoading
	StateReady
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

var (
	// ErrAlreadyMounted is returned when Mount is called more than once.
	ErrAlreadyMounted = errors.New("stage already mounted")
	// ErrNotLoading is returned by Await when no load is pending.
	ErrNotLoading = errors.New("stage has no pending load")
)

// Options configures a Stage.
type Options struct {
	Limit   int           // models to load, 0 means all
	Gap     float32       // spacing along x; 0 means DefaultGap, NoGap means none
	Timeout time.Duration // 0 means loads may take forever
	Random  RandomSource  // nil means unseeded
	Scene   *model.Node   // if set, the model group is attached to it
	Logger  *zap.Logger
}

type loadResult struct {
	models []*model.Model
	err    error
}

// Stage is the scene loader and layout component.
type Stage struct {
	loader *Loader
	paths  []assets.AssetPath
	opts   Options
	log    *zap.Logger

	state   State
	mounted bool
	pending chan loadResult
	cancel  context.CancelFunc

	group      *model.Node
	models     []*model.Model
	placements []Placement
	mixers     map[model.ID]*anim.Mixer
}

// New creates a stage that will load paths with loader once mounted.
func New(loader *Loader, paths []assets.AssetPath, opts Options) *Stage {
	if opts.Random == nil {
		opts.Random = NewRandomSource(0)
	}
	switch {
	case opts.Gap == 0:
		opts.Gap = DefaultGap
	case opts.Gap < 0:
		opts.Gap = 0
	}
	log := opts.Logger
	if log == nil {
		log = logger.Named("stage")
	}

	s := &Stage{
		loader: loader,
		paths:  paths,
		opts:   opts,
		log:    log,
		group:  model.NewNode("models"),
		mixers: make(map[model.ID]*anim.Mixer),
	}
	if opts.Scene != nil {
		opts.Scene.Add(s.group)
	}
	return s
}

// State returns the current lifecycle state.
func (s *Stage) State() State {
	return s.state
}

// Group returns the node holding every laid-out model.
func (s *Stage) Group() *model.Node {
	return s.group
}

// Models returns the laid-out models in request order.
func (s *Stage) Models() []*model.Model {
	return s.models
}

// Placements returns the layout result for Models.
func (s *Stage) Placements() []Placement {
	return s.placements
}

// Mixer returns the mixer registered for id.
func (s *Stage) Mixer(id model.ID) (*anim.Mixer, bool) {
	m, ok := s.mixers[id]
	return m, ok
}

// Bounds returns the union of every laid-out model in group space.
func (s *Stage) Bounds() model.Bounds {
	b := model.EmptyBounds()
	for _, m := range s.models {
		b = b.Union(m.Bounds())
	}
	return b
}

// Mount starts loading in the background and moves the stage to Loading.
// The load runs exactly once per stage.
func (s *Stage) Mount(ctx context.Context) error {
	if s.mounted {
		return ErrAlreadyMounted
	}
	s.mounted = true

	var cancel context.CancelFunc
	if s.opts.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	s.cancel = cancel
	s.pending = make(chan loadResult, 1)
	s.setState(StateLoading)

	paths, limit := s.paths, s.opts.Limit
	go func() {
		models, err := s.loader.LoadModels(ctx, paths, limit)
		s.pending <- loadResult{models: models, err: err}
	}()
	return nil
}

// Await blocks until the pending load finishes and applies it.
func (s *Stage) Await(ctx context.Context) error {
	if s.state != StateLoading {
		return ErrNotLoading
	}
	select {
	case res := <-s.pending:
		return s.apply(res)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// OnFrame applies a finished load, if any, then advances every mixer by dt
// seconds. It never blocks.
func (s *Stage) OnFrame(dt float32) {
	if s.state == StateLoading {
		select {
		case res := <-s.pending:
			_ = s.apply(res)
		default:
		}
	}
	for _, m := range s.models {
		if mixer, ok := s.mixers[m.ID]; ok {
			mixer.Update(dt)
		}
	}
}

// apply finishes the Loading state. In partial mode a load that produced at
// least one model still counts as success; its error is logged.
func (s *Stage) apply(res loadResult) error {
	s.cancel()

	if res.err != nil {
		s.log.Error("error loading models", zap.Error(res.err))
	}
	if len(res.models) == 0 {
		s.setState(StateEmpty)
		if res.err != nil {
			return res.err
		}
		return nil
	}

	s.LayoutAndActivate(res.models)
	s.setState(StateReady)
	return res.err
}

// LayoutAndActivate gives every model a mixer playing a random clip on
// repeat, centers it on its own bounds, places it after the previous model
// along x and attaches it to the group.
//
// Models from an earlier call that are not in models are disposed together
// with their mixers.
func (s *Stage) LayoutAndActivate(models []*model.Model) {
	keep := make(map[model.ID]bool, len(models))
	for _, m := range models {
		keep[m.ID] = true
	}
	for _, old := range s.models {
		if !keep[old.ID] {
			s.release(old)
		}
	}

	for i, m := range models {
		if old, ok := s.mixers[m.ID]; ok {
			old.Uncache()
		}
		mixer := anim.NewMixer(m.Root)
		s.mixers[m.ID] = mixer

		if clip := PickRandomClip(m.Clips, s.opts.Random); clip != nil {
			mixer.ClipAction(clip).SetLoop(anim.LoopRepeat).Play()
			s.log.Debug("playing clip",
				zap.Int("index", i),
				zap.String("path", m.Path),
				zap.String("clip", clip.Name),
				zap.Float32("duration", clip.Duration),
			)
			if !model.HasAnimation(m.Clips) {
				s.log.Warn("model clips are static poses",
					zap.Int("index", i),
					zap.String("path", m.Path),
					zap.Int("clips", len(m.Clips)),
				)
			}
		} else {
			s.log.Warn("no animations found for model",
				zap.Int("index", i),
				zap.String("path", m.Path),
			)
		}
	}

	s.placements = LayoutModels(models, s.opts.Gap)
	for _, m := range models {
		s.group.Add(m.Node())
	}
	s.models = models

	s.log.Info("models laid out",
		zap.Int("count", len(models)),
		zap.Float32("width", s.Bounds().Size()[0]),
	)
}

// Unmount cancels a pending load, stops every mixer and disposes every
// model. A pending load is waited for so its models can be released.
func (s *Stage) Unmount() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.state == StateLoading {
		res := <-s.pending
		disposeAll(res.models)
	}

	for _, m := range s.models {
		s.release(m)
	}
	s.models = nil
	s.placements = nil
	s.group.Clear()
	if s.group.Parent != nil {
		s.group.Parent.Remove(s.group)
	}
	s.setState(StateEmpty)
}

func (s *Stage) release(m *model.Model) {
	if mixer, ok := s.mixers[m.ID]; ok {
		mixer.Uncache()
		delete(s.mixers, m.ID)
	}
	m.Dispose()
}

func (s *Stage) setState(next State) {
	if s.state == next {
		return
	}
	s.log.Info("stage state changed",
		zap.Stringer("from", s.state),
		zap.Stringer("to", next),
	)
	s.state = next
}
