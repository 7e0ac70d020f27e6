package stage

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/midgard-showcase/internal/assets"
	"github.com/Faultbox/midgard-showcase/internal/engine/model"
)

// fakeAsset describes what fakeDecoder returns for one path.
type fakeAsset struct {
	min   mgl32.Vec3
	size  mgl32.Vec3
	clips int
	pose  bool // clips hold a single key
	err   error
	delay time.Duration
}

type releaseCounter struct {
	n atomic.Int32
}

func (c *releaseCounter) Release() {
	c.n.Add(1)
}

type fakeDecoder struct {
	assets map[string]fakeAsset

	mu       sync.Mutex
	handles  map[string]*releaseCounter
	requests []string
}

func newFakeDecoder(assets map[string]fakeAsset) *fakeDecoder {
	return &fakeDecoder{
		assets:  assets,
		handles: make(map[string]*releaseCounter),
	}
}

func (d *fakeDecoder) Decode(ctx context.Context, path string) (*model.Model, error) {
	a, ok := d.assets[path]
	if !ok {
		return nil, fmt.Errorf("no such asset %s", path)
	}

	d.mu.Lock()
	d.requests = append(d.requests, path)
	d.mu.Unlock()

	if a.delay > 0 {
		select {
		case <-time.After(a.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if a.err != nil {
		return nil, a.err
	}
	return d.build(path, a), nil
}

func (d *fakeDecoder) build(path string, a fakeAsset) *model.Model {
	root := model.NewNode(path)
	hi := a.min.Add(a.size)
	root.Mesh = model.NewMesh("body", []model.Vertex{
		{Position: a.min},
		{Position: hi},
	}, nil)

	h := &releaseCounter{}
	root.Mesh.Handle = h
	d.mu.Lock()
	d.handles[path] = h
	d.mu.Unlock()

	var clips []*model.Clip
	for i := 0; i < a.clips; i++ {
		ch := &model.Channel{
			Target: root,
			Path:   model.PathRotation,
			Times:  []float32{0, 1},
			Values: [][4]float32{{0, 0, 0, 1}, {0, 0, 0, 1}},
		}
		if a.pose {
			ch.Times, ch.Values = ch.Times[:1], ch.Values[:1]
		}
		clips = append(clips, model.NewClip(fmt.Sprintf("clip_%d", i), []*model.Channel{ch}))
	}
	return model.New(path, root, clips)
}

func (d *fakeDecoder) released(path string) int32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	h, ok := d.handles[path]
	if !ok {
		return -1
	}
	return h.n.Load()
}

func sizeX(x float32) fakeAsset {
	return fakeAsset{size: mgl32.Vec3{x, 2, 2}, clips: 1}
}

func pathsOf(names ...string) []assets.AssetPath {
	out := make([]assets.AssetPath, len(names))
	for i, n := range names {
		out[i] = assets.AssetPath(n)
	}
	return out
}

func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return zap.New(core), logs
}

func firstIndex(int) int {
	return 0
}

func near(a, b, eps float32) bool {
	d := a - b
	return d < eps && -d < eps
}
