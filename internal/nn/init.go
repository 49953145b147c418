package nn

import (
	"math"
	"math/rand"

	"github.com/m0saan/minima/internal/autodiff"
	"github.com/m0saan/minima/internal/ndarray"
)

// KaimingUniform creates a trainable leaf with values drawn from
// U(-bound, bound), bound = sqrt(6 / fanIn), the He initialization for
// ReLU networks.
//
// Random values come from rng so that initialization is reproducible.
func KaimingUniform(ctx *autodiff.Context, rng *rand.Rand, fanIn int, shape ndarray.Shape) (*autodiff.Tensor, error) {
	bound := math.Sqrt(6.0 / float64(fanIn))
	data := make([]float32, shape.NumElements())
	for i := range data {
		data[i] = float32((rng.Float64()*2.0 - 1.0) * bound)
	}
	return ctx.FromSlice(data, shape)
}
