package stage

import (
	"math/rand/v2"

	"github.com/Faultbox/midgard-showcase/internal/engine/model"
)

// RandomSource returns a uniform index in [0, n). n is always positive.
type RandomSource func(n int) int

// NewRandomSource returns an unseeded source for seed 0, otherwise a
// reproducible PCG source.
func NewRandomSource(seed uint64) RandomSource {
	if seed == 0 {
		return rand.IntN
	}
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return r.IntN
}

// PickRandomClip returns a uniformly chosen clip, or nil when clips is empty.
func PickRandomClip(clips []*model.Clip, intn RandomSource) *model.Clip {
	if len(clips) == 0 {
		return nil
	}
	return clips[intn(len(clips))]
}
