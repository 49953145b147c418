package autodiff_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m0saan/minima/internal/autodiff"
	"github.com/m0saan/minima/internal/ndarray"
)

type graphFunc func(in []*autodiff.Tensor) (*autodiff.Tensor, error)

// weightedLoss evaluates f on fresh leaves and returns sum(f(in) * w) in
// float64, along with the output shape.
func weightedLoss(t *testing.T, ctx *autodiff.Context, f graphFunc, data [][]float32, shapes []ndarray.Shape, w []float32) float64 {
	t.Helper()
	leaves := make([]*autodiff.Tensor, len(data))
	for i := range data {
		leaf, err := ctx.FromSlice(data[i], shapes[i], autodiff.WithRequiresGrad(false))
		require.NoError(t, err)
		leaves[i] = leaf
	}
	out, err := f(leaves)
	require.NoError(t, err)
	vals := values(t, out)
	require.Len(t, vals, len(w))
	var loss float64
	for k, v := range vals {
		loss += float64(v) * float64(w[k])
	}
	return loss
}

// checkGradient compares the analytic gradient of sum(f(in) * w), for a fixed
// random w, against central differences.
func checkGradient(t *testing.T, rng *rand.Rand, f graphFunc, data [][]float32, shapes []ndarray.Shape) {
	t.Helper()
	const eps = 1e-2
	ctx := newContext(t)

	leaves := make([]*autodiff.Tensor, len(data))
	for i := range data {
		leaves[i] = fromSlice(t, ctx, data[i], shapes[i]...)
	}
	out, err := f(leaves)
	require.NoError(t, err)
	outShape, err := out.Shape()
	require.NoError(t, err)

	w := make([]float32, outShape.NumElements())
	for k := range w {
		w[k] = rng.Float32()*2 - 1
	}
	wt, err := ctx.FromSlice(w, outShape, autodiff.WithRequiresGrad(false))
	require.NoError(t, err)
	weighted, err := out.Mul(wt)
	require.NoError(t, err)
	loss, err := weighted.Sum()
	require.NoError(t, err)
	require.NoError(t, loss.Backward(nil))

	for i := range data {
		require.NotNil(t, leaves[i].Grad(), "input %d has no gradient", i)
		gradShape, err := leaves[i].Grad().Shape()
		require.NoError(t, err)
		require.Equal(t, shapes[i], gradShape, "gradient of input %d", i)
		analytic := values(t, leaves[i].Grad())

		for j := range data[i] {
			orig := data[i][j]
			data[i][j] = orig + eps
			plus := weightedLoss(t, ctx, f, data, shapes, w)
			data[i][j] = orig - eps
			minus := weightedLoss(t, ctx, f, data, shapes, w)
			data[i][j] = orig

			numeric := (plus - minus) / (2 * eps)
			tol := 1e-2 * math.Max(1, math.Abs(numeric))
			assert.InDelta(t, numeric, float64(analytic[j]), tol, "input %d element %d", i, j)
		}
	}
}

func uniform(rng *rand.Rand, n int, low, high float32, signed bool) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = low + rng.Float32()*(high-low)
		if signed && rng.Intn(2) == 0 {
			out[i] = -out[i]
		}
	}
	return out
}

func TestOperatorGradients(t *testing.T) {
	type input struct {
		shape     ndarray.Shape
		low, high float32
		signed    bool
	}
	any23 := input{ndarray.Shape{2, 3}, 0.1, 1.5, true}
	pos23 := input{ndarray.Shape{2, 3}, 0.5, 1.5, false}

	tests := []struct {
		name   string
		inputs []input
		f      graphFunc
	}{
		{"EWiseAdd", []input{any23, any23}, func(in []*autodiff.Tensor) (*autodiff.Tensor, error) {
			return in[0].Add(in[1])
		}},
		{"Sub", []input{any23, any23}, func(in []*autodiff.Tensor) (*autodiff.Tensor, error) {
			return in[0].Sub(in[1])
		}},
		{"EWiseMul", []input{any23, any23}, func(in []*autodiff.Tensor) (*autodiff.Tensor, error) {
			return in[0].Mul(in[1])
		}},
		{"EWiseDiv", []input{any23, pos23}, func(in []*autodiff.Tensor) (*autodiff.Tensor, error) {
			return in[0].Div(in[1])
		}},
		{"AddScalar", []input{any23}, func(in []*autodiff.Tensor) (*autodiff.Tensor, error) {
			return in[0].AddScalar(2.5)
		}},
		{"MulScalar", []input{any23}, func(in []*autodiff.Tensor) (*autodiff.Tensor, error) {
			return in[0].MulScalar(-1.5)
		}},
		{"DivScalar", []input{any23}, func(in []*autodiff.Tensor) (*autodiff.Tensor, error) {
			return in[0].DivScalar(4)
		}},
		{"Negate", []input{any23}, func(in []*autodiff.Tensor) (*autodiff.Tensor, error) {
			return in[0].Neg()
		}},
		{"Exp", []input{any23}, func(in []*autodiff.Tensor) (*autodiff.Tensor, error) {
			return in[0].Exp()
		}},
		{"Log", []input{pos23}, func(in []*autodiff.Tensor) (*autodiff.Tensor, error) {
			return in[0].Log()
		}},
		{"Tanh", []input{any23}, func(in []*autodiff.Tensor) (*autodiff.Tensor, error) {
			return in[0].Tanh()
		}},
		{"ReLU", []input{any23}, func(in []*autodiff.Tensor) (*autodiff.Tensor, error) {
			return in[0].ReLU()
		}},
		{"PowerScalarCube", []input{any23}, func(in []*autodiff.Tensor) (*autodiff.Tensor, error) {
			return in[0].Pow(3)
		}},
		{"PowerScalarSqrt", []input{pos23}, func(in []*autodiff.Tensor) (*autodiff.Tensor, error) {
			return in[0].Pow(0.5)
		}},
		{"TransposeDefault", []input{any23}, func(in []*autodiff.Tensor) (*autodiff.Tensor, error) {
			return in[0].Transpose()
		}},
		{"TransposeAxes", []input{{ndarray.Shape{2, 3, 4}, 0.1, 1, true}}, func(in []*autodiff.Tensor) (*autodiff.Tensor, error) {
			return in[0].Transpose(0, 2)
		}},
		{"Reshape", []input{any23}, func(in []*autodiff.Tensor) (*autodiff.Tensor, error) {
			return in[0].Reshape(ndarray.Shape{3, 2})
		}},
		{"BroadcastLeading", []input{{ndarray.Shape{3}, 0.1, 1, true}}, func(in []*autodiff.Tensor) (*autodiff.Tensor, error) {
			return in[0].BroadcastTo(ndarray.Shape{2, 3})
		}},
		{"BroadcastInner", []input{{ndarray.Shape{3, 1}, 0.1, 1, true}}, func(in []*autodiff.Tensor) (*autodiff.Tensor, error) {
			return in[0].BroadcastTo(ndarray.Shape{2, 3, 4})
		}},
		{"SumAll", []input{any23}, func(in []*autodiff.Tensor) (*autodiff.Tensor, error) {
			return in[0].Sum()
		}},
		{"SumAxis", []input{any23}, func(in []*autodiff.Tensor) (*autodiff.Tensor, error) {
			return in[0].Sum(1)
		}},
		{"SumAxes", []input{{ndarray.Shape{2, 3, 4}, 0.1, 1, true}}, func(in []*autodiff.Tensor) (*autodiff.Tensor, error) {
			return in[0].Sum(0, -1)
		}},
		{"MatMul", []input{{ndarray.Shape{3, 4}, 0.1, 1, true}, {ndarray.Shape{4, 2}, 0.1, 1, true}},
			func(in []*autodiff.Tensor) (*autodiff.Tensor, error) {
				return in[0].MatMul(in[1])
			}},
		{"MatMulTiled", []input{{ndarray.Shape{8, 8}, 0.1, 1, true}, {ndarray.Shape{8, 16}, 0.1, 1, true}},
			func(in []*autodiff.Tensor) (*autodiff.Tensor, error) {
				return in[0].MatMul(in[1])
			}},
		{"LinearTanh", []input{{ndarray.Shape{4, 3}, 0.1, 1, true}, {ndarray.Shape{3, 2}, 0.1, 1, true}, {ndarray.Shape{2}, 0.1, 1, true}},
			func(in []*autodiff.Tensor) (*autodiff.Tensor, error) {
				xw, err := in[0].MatMul(in[1])
				if err != nil {
					return nil, err
				}
				b, err := in[2].BroadcastTo(ndarray.Shape{4, 2})
				if err != nil {
					return nil, err
				}
				z, err := xw.Add(b)
				if err != nil {
					return nil, err
				}
				return z.Tanh()
			}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := rand.New(rand.NewSource(42))
			data := make([][]float32, len(tt.inputs))
			shapes := make([]ndarray.Shape, len(tt.inputs))
			for i, in := range tt.inputs {
				data[i] = uniform(rng, in.shape.NumElements(), in.low, in.high, in.signed)
				shapes[i] = in.shape
			}
			checkGradient(t, rng, tt.f, data, shapes)
		})
	}
}

func TestOperatorForward(t *testing.T) {
	ctx := newContext(t)
	x := fromSlice(t, ctx, []float32{1, 2, 3, 4, 5, 6}, 2, 3)

	tr, err := x.Transpose()
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 4, 2, 5, 3, 6}, values(t, tr))

	s0, err := x.Sum(0)
	require.NoError(t, err)
	shape, err := s0.Shape()
	require.NoError(t, err)
	assert.Equal(t, ndarray.Shape{3}, shape)
	assert.Equal(t, []float32{5, 7, 9}, values(t, s0))

	p, err := x.Pow(2)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{1, 4, 9, 16, 25, 36}, values(t, p), 1e-4)

	d, err := x.DivScalar(2)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 1, 1.5, 2, 2.5, 3}, values(t, d))

	r, err := x.Reshape(ndarray.Shape{3, 2})
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, values(t, r))
}

func TestOperatorErrors(t *testing.T) {
	ctx := newContext(t)
	v := fromSlice(t, ctx, []float32{1, 2, 3}, 3)

	_, err := v.Transpose()
	assert.True(t, errors.Is(err, ndarray.ErrShape))

	m := fromSlice(t, ctx, []float32{1, 2, 3, 4}, 2, 2)
	_, err = m.Transpose(0)
	assert.True(t, errors.Is(err, autodiff.ErrInvalidOperatorUse))

	_, err = v.Reshape(ndarray.Shape{2})
	assert.True(t, errors.Is(err, ndarray.ErrShape))

	_, err = v.BroadcastTo(ndarray.Shape{2, 4})
	assert.True(t, errors.Is(err, ndarray.ErrBroadcast))

	_, err = m.MatMul(v)
	assert.True(t, errors.Is(err, ndarray.ErrUnsupported))
}

func TestOperatorString(t *testing.T) {
	assert.Equal(t, "AddScalar(2.5)", autodiff.AddScalar{Scalar: 2.5}.String())
	assert.Equal(t, "Reshape(3, 2)", autodiff.Reshape{Shape: ndarray.Shape{3, 2}}.String())
	assert.Equal(t, "Summation([])", autodiff.Summation{}.String())
}
