package stage

import (
	"fmt"

	"github.com/Faultbox/midgard-showcase/internal/assets"
	"github.com/Faultbox/midgard-showcase/internal/config"
	"github.com/Faultbox/midgard-showcase/internal/engine/model"
)

// FromConfig catalogs the configured model files and creates a stage that
// decodes them with dec. A nil dec uses the default decoder registry.
func FromConfig(mc config.ModelsConfig, dec model.Decoder, scene *model.Node) (*Stage, error) {
	format, err := assets.ParseFormat(mc.Format)
	if err != nil {
		return nil, err
	}
	paths, err := assets.Catalog(mc.Dir, format, mc.Paths)
	if err != nil {
		return nil, fmt.Errorf("listing models: %w", err)
	}

	if dec == nil {
		dec = model.NewRegistry()
	}
	loader := NewLoader(dec)
	loader.FailFast = mc.FailFast

	gap := mc.Gap
	if gap == 0 {
		gap = NoGap
	}

	return New(loader, paths, Options{
		Limit:   mc.Limit,
		Gap:     gap,
		Timeout: mc.LoadTimeout,
		Random:  NewRandomSource(mc.Seed),
		Scene:   scene,
	}), nil
}
