package stage

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/midgard-showcase/internal/assets"
	"github.com/Faultbox/midgard-showcase/internal/engine/model"
)

// Loader decodes a batch of model files concurrently.
type Loader struct {
	Decoder model.Decoder

	// FailFast fails the whole batch on the first error. When false the
	// models that decoded are returned along with the aggregated errors.
	FailFast bool
}

// NewLoader creates a fail-fast loader.
func NewLoader(dec model.Decoder) *Loader {
	return &Loader{Decoder: dec, FailFast: true}
}

// LoadModels decodes the first limit paths (limit <= 0 means all), one
// goroutine per path, all started at once. The result keeps request order.
//
// In fail-fast mode any error cancels the remaining loads, disposes the
// models already decoded and returns nil models. In partial mode the
// successfully decoded models are returned with a multierr of the failures.
func (l *Loader) LoadModels(ctx context.Context, paths []assets.AssetPath, limit int) ([]*model.Model, error) {
	paths = assets.Limit(paths, limit)
	results := make([]*model.Model, len(paths))

	if l.FailFast {
		g, gctx := errgroup.WithContext(ctx)
		for i, p := range paths {
			g.Go(func() error {
				m, err := l.Decoder.Decode(gctx, string(p))
				if err != nil {
					return fmt.Errorf("loading %s: %w", p, err)
				}
				results[i] = m
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			disposeAll(results)
			return nil, err
		}
		return results, nil
	}

	errs := make([]error, len(paths))
	var g errgroup.Group
	for i, p := range paths {
		g.Go(func() error {
			m, err := l.Decoder.Decode(ctx, string(p))
			if err != nil {
				errs[i] = fmt.Errorf("loading %s: %w", p, err)
				return nil
			}
			results[i] = m
			return nil
		})
	}
	_ = g.Wait()

	loaded := make([]*model.Model, 0, len(results))
	for _, m := range results {
		if m != nil {
			loaded = append(loaded, m)
		}
	}
	return loaded, multierr.Combine(errs...)
}

func disposeAll(models []*model.Model) {
	for _, m := range models {
		if m != nil {
			m.Dispose()
		}
	}
}
