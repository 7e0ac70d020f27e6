package stage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap/zapcore"

	"github.com/Faultbox/midgard-showcase/internal/engine/anim"
	"github.com/Faultbox/midgard-showcase/internal/engine/model"
)

func awaitReady(t *testing.T, s *Stage) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Mount(ctx); err != nil {
		t.Fatalf("Mount failed: %v", err)
	}
	return s.Await(ctx)
}

func TestStageLoadsAndLaysOut(t *testing.T) {
	a, b, c := sizeX(4), sizeX(6), sizeX(2)
	b.min = mgl32.Vec3{-50, 3, 8}
	c.min = mgl32.Vec3{9, -9, 1}
	dec := newFakeDecoder(map[string]fakeAsset{"a": a, "b": b, "c": c})
	log, _ := observedLogger()

	scene := model.NewNode("scene")
	s := New(NewLoader(dec), pathsOf("a", "b", "c"), Options{
		Gap:    DefaultGap,
		Random: firstIndex,
		Scene:  scene,
		Logger: log,
	})
	if s.State() != StateEmpty {
		t.Fatalf("expected empty stage before mount, got %v", s.State())
	}

	if err := awaitReady(t, s); err != nil {
		t.Fatalf("Await failed: %v", err)
	}
	if s.State() != StateReady {
		t.Fatalf("expected ready, got %v", s.State())
	}

	if len(scene.Children) != 1 || scene.Children[0] != s.Group() {
		t.Fatal("expected model group attached to scene")
	}
	models := s.Models()
	if len(s.Group().Children) != len(models) {
		t.Fatalf("expected %d children in group, got %d", len(models), len(s.Group().Children))
	}

	want := []float32{2, 17, 31}
	for i, m := range models {
		if s.Group().Children[i] != m.Node() {
			t.Errorf("child %d is not model %s", i, m.Path)
		}
		if !m.Position().ApproxEqual(mgl32.Vec3{want[i], 0, 0}) {
			t.Errorf("model %d: expected position [%v 0 0], got %v", i, want[i], m.Position())
		}
		if !m.Bounds().Center().ApproxEqualThreshold(m.Position(), 1e-4) {
			t.Errorf("model %d: expected box centered at its position, got %v", i, m.Bounds().Center())
		}

		mixer, ok := s.Mixer(m.ID)
		if !ok {
			t.Fatalf("model %d: no mixer registered", i)
		}
		if mixer.Root() != m.Root {
			t.Errorf("model %d: mixer bound to wrong root", i)
		}
		act := mixer.Active()
		if act == nil || act.Clip() != m.Clips[0] {
			t.Errorf("model %d: expected first clip playing", i)
		} else if act.Loop() != anim.LoopRepeat {
			t.Errorf("model %d: expected repeat loop, got %v", i, act.Loop())
		}
	}

	if got := len(s.Placements()); got != 3 {
		t.Errorf("expected 3 placements, got %d", got)
	}
	b0 := s.Bounds()
	if !near(b0.Min[0], 0, 1e-4) || !near(b0.Max[0], 32, 1e-4) {
		t.Errorf("expected stage to span x 0..32, got %v..%v", b0.Min[0], b0.Max[0])
	}
}

func TestStageGapOption(t *testing.T) {
	tests := []struct {
		name  string
		gap   float32
		wantX float32
	}{
		{"zero defaults to ten", 0, 17},
		{"explicit gap", 3, 10},
		{"no gap", NoGap, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec := newFakeDecoder(map[string]fakeAsset{"a": sizeX(4), "b": sizeX(6)})
			log, _ := observedLogger()
			s := New(NewLoader(dec), pathsOf("a", "b"), Options{Gap: tt.gap, Logger: log})
			if err := awaitReady(t, s); err != nil {
				t.Fatalf("Await failed: %v", err)
			}
			if got := s.Models()[1].Position()[0]; !near(got, tt.wantX, 1e-4) {
				t.Errorf("expected second model at x=%v, got %v", tt.wantX, got)
			}
		})
	}
}

func TestStageMountTwice(t *testing.T) {
	dec := newFakeDecoder(map[string]fakeAsset{"a": sizeX(1)})
	log, _ := observedLogger()
	s := New(NewLoader(dec), pathsOf("a"), Options{Gap: DefaultGap, Logger: log})

	if err := awaitReady(t, s); err != nil {
		t.Fatalf("Await failed: %v", err)
	}
	if err := s.Mount(context.Background()); !errors.Is(err, ErrAlreadyMounted) {
		t.Errorf("expected ErrAlreadyMounted, got %v", err)
	}
	if len(dec.requests) != 1 {
		t.Errorf("expected a single load, got %v", dec.requests)
	}
}

func TestStageAwaitWithoutMount(t *testing.T) {
	log, _ := observedLogger()
	s := New(NewLoader(newFakeDecoder(nil)), nil, Options{Logger: log})
	if err := s.Await(context.Background()); !errors.Is(err, ErrNotLoading) {
		t.Errorf("expected ErrNotLoading, got %v", err)
	}
}

func TestStageFailureLeavesSceneEmpty(t *testing.T) {
	boom := errors.New("boom")
	dec := newFakeDecoder(map[string]fakeAsset{
		"a":   sizeX(4),
		"bad": {err: boom},
	})
	log, logs := observedLogger()
	s := New(NewLoader(dec), pathsOf("a", "bad"), Options{Gap: DefaultGap, Logger: log})

	err := awaitReady(t, s)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
	if s.State() != StateEmpty {
		t.Errorf("expected empty state, got %v", s.State())
	}
	if len(s.Group().Children) != 0 {
		t.Errorf("expected no models in scene, got %d", len(s.Group().Children))
	}
	if len(s.Models()) != 0 {
		t.Errorf("expected no models, got %d", len(s.Models()))
	}

	entries := logs.FilterMessage("error loading models").All()
	if len(entries) != 1 {
		t.Fatalf("expected one error log, got %d", len(entries))
	}
	if entries[0].Level != zapcore.ErrorLevel {
		t.Errorf("expected error level, got %v", entries[0].Level)
	}

	s.OnFrame(0.1)
	if s.State() != StateEmpty {
		t.Errorf("expected failure to be terminal, got %v", s.State())
	}
}

func TestStagePartialLoadStillReady(t *testing.T) {
	dec := newFakeDecoder(map[string]fakeAsset{
		"a":   sizeX(4),
		"bad": {err: errors.New("boom")},
		"c":   sizeX(2),
	})
	log, logs := observedLogger()
	l := NewLoader(dec)
	l.FailFast = false
	s := New(l, pathsOf("a", "bad", "c"), Options{Gap: DefaultGap, Random: firstIndex, Logger: log})

	if err := awaitReady(t, s); err == nil {
		t.Error("expected aggregated error from partial load")
	}
	if s.State() != StateReady {
		t.Fatalf("expected ready, got %v", s.State())
	}
	if len(s.Models()) != 2 {
		t.Fatalf("expected 2 models, got %d", len(s.Models()))
	}
	if got := s.Models()[1].Position()[0]; !near(got, 15, 1e-4) {
		t.Errorf("expected second model at x=15, got %v", got)
	}
	if logs.FilterMessage("error loading models").Len() != 1 {
		t.Error("expected failure to be logged")
	}
}

func TestStageWarnsWithoutAnimations(t *testing.T) {
	still := sizeX(3)
	still.clips = 0
	dec := newFakeDecoder(map[string]fakeAsset{"a": sizeX(1), "still": still})
	log, logs := observedLogger()
	s := New(NewLoader(dec), pathsOf("a", "still"), Options{Gap: DefaultGap, Random: firstIndex, Logger: log})

	if err := awaitReady(t, s); err != nil {
		t.Fatalf("Await failed: %v", err)
	}

	warnings := logs.FilterMessage("no animations found for model").All()
	if len(warnings) != 1 {
		t.Fatalf("expected one warning, got %d", len(warnings))
	}
	fields := warnings[0].ContextMap()
	if fields["index"] != int64(1) || fields["path"] != "still" {
		t.Errorf("unexpected warning fields %v", fields)
	}

	m := s.Models()[1]
	mixer, ok := s.Mixer(m.ID)
	if !ok {
		t.Fatal("expected a mixer even without clips")
	}
	if mixer.Active() != nil {
		t.Error("expected no action on a model without clips")
	}
	if !near(m.Position()[0], 12.5, 1e-4) {
		t.Errorf("expected still model laid out at 12.5, got %v", m.Position()[0])
	}
}

func TestStageWarnsOnStaticPoses(t *testing.T) {
	pose := sizeX(2)
	pose.pose = true
	dec := newFakeDecoder(map[string]fakeAsset{"a": sizeX(1), "pose": pose})
	log, logs := observedLogger()
	s := New(NewLoader(dec), pathsOf("a", "pose"), Options{Random: firstIndex, Logger: log})

	if err := awaitReady(t, s); err != nil {
		t.Fatalf("Await failed: %v", err)
	}

	warnings := logs.FilterMessage("model clips are static poses").All()
	if len(warnings) != 1 {
		t.Fatalf("expected one warning, got %d", len(warnings))
	}
	if path := warnings[0].ContextMap()["path"]; path != "pose" {
		t.Errorf("expected warning for pose, got %v", path)
	}
	if logs.FilterMessage("no animations found for model").Len() != 0 {
		t.Error("a model with clips must not be reported as having none")
	}

	mixer, _ := s.Mixer(s.Models()[1].ID)
	if mixer.Active() == nil {
		t.Error("expected the pose clip to be applied anyway")
	}
}

func TestStageOnFrameAdvancesMixers(t *testing.T) {
	dec := newFakeDecoder(map[string]fakeAsset{"a": sizeX(1), "b": sizeX(1)})
	log, _ := observedLogger()
	s := New(NewLoader(dec), pathsOf("a", "b"), Options{Gap: DefaultGap, Random: firstIndex, Logger: log})
	if err := awaitReady(t, s); err != nil {
		t.Fatalf("Await failed: %v", err)
	}

	s.OnFrame(0)
	for _, m := range s.Models() {
		mixer, _ := s.Mixer(m.ID)
		if mixer.Active().Time() != 0 {
			t.Errorf("expected zero delta to keep time at 0, got %v", mixer.Active().Time())
		}
	}

	s.OnFrame(0.25)
	s.OnFrame(0.5)
	for _, m := range s.Models() {
		mixer, _ := s.Mixer(m.ID)
		if !near(mixer.Time(), 0.75, 1e-6) {
			t.Errorf("expected mixer time 0.75, got %v", mixer.Time())
		}
	}

	// clips are one second long and loop
	s.OnFrame(0.5)
	for _, m := range s.Models() {
		mixer, _ := s.Mixer(m.ID)
		if got := mixer.Active().Time(); !near(got, 0.25, 1e-5) {
			t.Errorf("expected wrapped action time 0.25, got %v", got)
		}
	}
}

func TestStageOnFrameAppliesPendingLoad(t *testing.T) {
	slow := sizeX(4)
	slow.delay = 30 * time.Millisecond
	dec := newFakeDecoder(map[string]fakeAsset{"a": slow})
	log, _ := observedLogger()
	s := New(NewLoader(dec), pathsOf("a"), Options{Gap: DefaultGap, Logger: log})

	if err := s.Mount(context.Background()); err != nil {
		t.Fatalf("Mount failed: %v", err)
	}
	s.OnFrame(0.016)
	if s.State() != StateLoading {
		t.Fatalf("expected loading while decode is pending, got %v", s.State())
	}

	deadline := time.Now().Add(5 * time.Second)
	for s.State() == StateLoading && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
		s.OnFrame(0.016)
	}
	if s.State() != StateReady {
		t.Fatalf("expected ready after polling, got %v", s.State())
	}
	if got := s.Models()[0].Position(); !got.ApproxEqual(mgl32.Vec3{2, 0, 0}) {
		t.Errorf("expected position [2 0 0], got %v", got)
	}
}

func TestStageTimeout(t *testing.T) {
	slow := sizeX(1)
	slow.delay = 5 * time.Second
	dec := newFakeDecoder(map[string]fakeAsset{"slow": slow})
	log, _ := observedLogger()
	s := New(NewLoader(dec), pathsOf("slow"), Options{Gap: DefaultGap, Timeout: 20 * time.Millisecond, Logger: log})

	err := awaitReady(t, s)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	if s.State() != StateEmpty {
		t.Errorf("expected empty, got %v", s.State())
	}
}

func TestStageUnmountDisposesEverything(t *testing.T) {
	dec := newFakeDecoder(map[string]fakeAsset{"a": sizeX(1), "b": sizeX(2)})
	log, _ := observedLogger()
	scene := model.NewNode("scene")
	s := New(NewLoader(dec), pathsOf("a", "b"), Options{Gap: DefaultGap, Scene: scene, Logger: log})
	if err := awaitReady(t, s); err != nil {
		t.Fatalf("Await failed: %v", err)
	}
	models := s.Models()

	s.Unmount()

	if s.State() != StateEmpty {
		t.Errorf("expected empty after unmount, got %v", s.State())
	}
	for _, m := range models {
		if _, ok := s.Mixer(m.ID); ok {
			t.Errorf("mixer for %s still registered", m.Path)
		}
		if got := dec.released(m.Path); got != 1 {
			t.Errorf("expected %s released once, got %d", m.Path, got)
		}
	}
	if len(scene.Children) != 0 {
		t.Error("expected group detached from scene")
	}

	s.Unmount()
	for _, m := range models {
		if got := dec.released(m.Path); got != 1 {
			t.Errorf("expected second unmount to be a no-op for %s, got %d releases", m.Path, got)
		}
	}
}

func TestStageUnmountWhileLoading(t *testing.T) {
	fast, slow := sizeX(1), sizeX(1)
	slow.delay = 5 * time.Second
	dec := newFakeDecoder(map[string]fakeAsset{"fast": fast, "slow": slow})
	log, _ := observedLogger()
	s := New(NewLoader(dec), pathsOf("fast", "slow"), Options{Gap: DefaultGap, Logger: log})

	if err := s.Mount(context.Background()); err != nil {
		t.Fatalf("Mount failed: %v", err)
	}
	s.Unmount()

	if s.State() != StateEmpty {
		t.Errorf("expected empty, got %v", s.State())
	}
	if got := dec.released("fast"); got > 1 {
		t.Errorf("expected fast model released at most once, got %d", got)
	}
	if len(s.Group().Children) != 0 {
		t.Error("expected no models attached after unmount")
	}
}

func TestLayoutAndActivateReplacesModels(t *testing.T) {
	dec := newFakeDecoder(nil)
	log, _ := observedLogger()
	s := New(NewLoader(dec), nil, Options{Gap: DefaultGap, Random: firstIndex, Logger: log})

	a := dec.build("a", sizeX(4))
	b := dec.build("b", sizeX(6))
	s.LayoutAndActivate([]*model.Model{a, b})

	c := dec.build("c", sizeX(2))
	s.LayoutAndActivate([]*model.Model{b, c})

	if dec.released("a") != 1 {
		t.Error("expected dropped model disposed")
	}
	if _, ok := s.Mixer(a.ID); ok {
		t.Error("expected dropped model's mixer removed")
	}
	if dec.released("b") != 0 {
		t.Error("expected kept model alive")
	}
	if len(s.Group().Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(s.Group().Children))
	}
	if !b.Position().ApproxEqual(mgl32.Vec3{3, 0, 0}) {
		t.Errorf("expected b re-laid out at 3, got %v", b.Position())
	}
	if !c.Position().ApproxEqual(mgl32.Vec3{17, 0, 0}) {
		t.Errorf("expected c at 17, got %v", c.Position())
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateEmpty, "empty"},
		{StateLoading, "loading"},
		{StateReady, "ready"},
		{State(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, expected %q", tt.state, got, tt.want)
		}
	}
}
