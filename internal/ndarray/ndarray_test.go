package ndarray_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m0saan/minima/internal/backend/cpu"
	"github.com/m0saan/minima/internal/ndarray"
)

var device = cpu.New()

// arange returns a compact array holding 0, 1, ..., n-1 reshaped to shape.
func arange(t *testing.T, shape ndarray.Shape) *ndarray.NDArray {
	t.Helper()
	data := make([]float32, shape.NumElements())
	for i := range data {
		data[i] = float32(i)
	}
	a, err := ndarray.FromSlice(data, shape, device)
	require.NoError(t, err)
	return a
}

func TestShape(t *testing.T) {
	assert.Equal(t, 1, ndarray.Shape{}.NumElements())
	assert.Equal(t, 24, ndarray.Shape{2, 3, 4}.NumElements())
	assert.Equal(t, []int{12, 4, 1}, ndarray.CompactStrides(ndarray.Shape{2, 3, 4}))
	assert.Equal(t, "(3,)", ndarray.Shape{3}.String())
	assert.Equal(t, "(2, 3)", ndarray.Shape{2, 3}.String())
	assert.Equal(t, ndarray.Shape{1, 1, 1}, ndarray.OnesShape(3))

	err := ndarray.Shape{2, 0}.Validate()
	assert.True(t, errors.Is(err, ndarray.ErrShape))

	axis, err := ndarray.NormalizeAxis(-1, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, axis)
	_, err = ndarray.NormalizeAxis(3, 3)
	assert.True(t, errors.Is(err, ndarray.ErrShape))
}

func TestMake(t *testing.T) {
	a, err := ndarray.Make(ndarray.Shape{2, 3}, ndarray.WithDevice(device))
	require.NoError(t, err)
	assert.True(t, a.IsCompact())
	assert.Equal(t, []int{3, 1}, a.Strides())
	assert.Equal(t, 0, a.Offset())
	assert.Equal(t, ndarray.Float32, a.DType())
	assert.Equal(t, "cpu", a.Device().Name())
	assert.Equal(t, []float32{0, 0, 0, 0, 0, 0}, a.ToSlice())

	t.Run("StridesLength", func(t *testing.T) {
		_, err := ndarray.Make(ndarray.Shape{2, 3}, ndarray.WithDevice(device), ndarray.WithStrides([]int{1}))
		assert.True(t, errors.Is(err, ndarray.ErrShape))
	})

	t.Run("ViewOutOfBounds", func(t *testing.T) {
		_, err := ndarray.Make(ndarray.Shape{2, 3}, ndarray.WithDevice(device),
			ndarray.WithBuffer(a.Buffer()), ndarray.WithOffset(1))
		assert.True(t, errors.Is(err, ndarray.ErrShape))
	})

	t.Run("ExplicitView", func(t *testing.T) {
		v, err := ndarray.Make(ndarray.Shape{3}, ndarray.WithDevice(device),
			ndarray.WithBuffer(a.Buffer()), ndarray.WithStrides([]int{2}), ndarray.WithOffset(1))
		require.NoError(t, err)
		assert.Same(t, a.Buffer(), v.Buffer())
		assert.False(t, v.IsCompact())
	})

	t.Run("FromSliceSizeMismatch", func(t *testing.T) {
		_, err := ndarray.FromSlice([]float32{1, 2, 3}, ndarray.Shape{2, 2}, device)
		assert.True(t, errors.Is(err, ndarray.ErrShape))
	})
}

func TestDefaultDevice(t *testing.T) {
	t.Setenv(ndarray.DeviceEnvVar, "no-such-device")
	d, err := ndarray.DefaultDevice()
	require.NoError(t, err)
	assert.Equal(t, "cpu", d.Name())

	_, err = ndarray.NewDevice("no-such-device")
	assert.Error(t, err)
}

func TestCompact(t *testing.T) {
	a := arange(t, ndarray.Shape{2, 3})
	same, err := a.Compact()
	require.NoError(t, err)
	assert.Same(t, a, same, "compacting a compact array must not copy")

	tr, err := a.Permute(1, 0)
	require.NoError(t, err)
	assert.False(t, tr.IsCompact())
	assert.Same(t, a.Buffer(), tr.Buffer())

	c, err := tr.Compact()
	require.NoError(t, err)
	assert.True(t, c.IsCompact())
	assert.Equal(t, ndarray.Shape{3, 2}, c.Shape())
	assert.Equal(t, []float32{0, 3, 1, 4, 2, 5}, c.ToSlice())

	again, err := c.Compact()
	require.NoError(t, err)
	assert.Equal(t, c.ToSlice(), again.ToSlice())
}

func TestReshape(t *testing.T) {
	a := arange(t, ndarray.Shape{2, 3})

	r, err := a.Reshape(ndarray.Shape{3, 2})
	require.NoError(t, err)
	assert.Same(t, a.Buffer(), r.Buffer(), "contiguous reshape is a view")
	back, err := r.Reshape(ndarray.Shape{2, 3})
	require.NoError(t, err)
	assert.Equal(t, a.ToSlice(), back.ToSlice())

	tr, err := a.Permute(1, 0)
	require.NoError(t, err)
	flat, err := tr.Reshape(ndarray.Shape{6})
	require.NoError(t, err)
	assert.NotSame(t, a.Buffer(), flat.Buffer())
	assert.Equal(t, []float32{0, 3, 1, 4, 2, 5}, flat.ToSlice())

	_, err = a.Reshape(ndarray.Shape{4})
	assert.True(t, errors.Is(err, ndarray.ErrShape))
}

func TestPermute(t *testing.T) {
	a := arange(t, ndarray.Shape{2, 3, 4})
	p, err := a.Permute(2, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, ndarray.Shape{4, 2, 3}, p.Shape())
	assert.Equal(t, []int{1, 12, 4}, p.Strides())

	s, err := a.SwapAxes(0, -1)
	require.NoError(t, err)
	assert.Equal(t, ndarray.Shape{4, 3, 2}, s.Shape())

	_, err = a.Permute(0, 0, 1)
	assert.True(t, errors.Is(err, ndarray.ErrShape))
	_, err = a.Permute(0, 1)
	assert.True(t, errors.Is(err, ndarray.ErrShape))
}

func TestBroadcastTo(t *testing.T) {
	row, err := ndarray.FromSlice([]float32{1, 2, 3}, ndarray.Shape{3}, device)
	require.NoError(t, err)

	b, err := row.BroadcastTo(ndarray.Shape{2, 3})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, b.Strides())
	assert.Equal(t, []float32{1, 2, 3, 1, 2, 3}, b.ToSlice())

	col, err := row.Reshape(ndarray.Shape{3, 1})
	require.NoError(t, err)
	b, err = col.BroadcastTo(ndarray.Shape{3, 2})
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 1, 2, 2, 3, 3}, b.ToSlice())

	_, err = row.BroadcastTo(ndarray.Shape{2, 4})
	assert.True(t, errors.Is(err, ndarray.ErrBroadcast))
	_, err = col.BroadcastTo(ndarray.Shape{3})
	assert.True(t, errors.Is(err, ndarray.ErrBroadcast))
}

func TestElementwise(t *testing.T) {
	a, err := ndarray.FromSlice([]float32{1, 2, 3, 4}, ndarray.Shape{2, 2}, device)
	require.NoError(t, err)
	b, err := ndarray.FromSlice([]float32{4, 3, 2, 1}, ndarray.Shape{2, 2}, device)
	require.NoError(t, err)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, []float32{5, 5, 5, 5}, sum.ToSlice())

	diff, err := a.Sub(b)
	require.NoError(t, err)
	assert.Equal(t, []float32{-3, -1, 1, 3}, diff.ToSlice())

	prod, err := a.Mul(b)
	require.NoError(t, err)
	assert.Equal(t, []float32{4, 6, 6, 4}, prod.ToSlice())

	maxed, err := a.Maximum(b)
	require.NoError(t, err)
	assert.Equal(t, []float32{4, 3, 3, 4}, maxed.ToSlice())

	gt, err := a.GtScalar(2)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0, 1, 1}, gt.ToSlice())

	sq, err := a.PowerScalar(2)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{1, 4, 9, 16}, sq.ToSlice(), 1e-5)

	// Non-compact operands are compacted before the kernel runs.
	tr, err := a.Permute(1, 0)
	require.NoError(t, err)
	sum, err = tr.Add(b)
	require.NoError(t, err)
	assert.Equal(t, []float32{5, 6, 4, 5}, sum.ToSlice())

	short, err := ndarray.FromSlice([]float32{1, 2}, ndarray.Shape{2}, device)
	require.NoError(t, err)
	_, err = a.Add(short)
	assert.True(t, errors.Is(err, ndarray.ErrShapeMismatch))
}

func TestFillAndCopy(t *testing.T) {
	a := arange(t, ndarray.Shape{2, 2})
	c, err := a.Copy()
	require.NoError(t, err)
	a.Fill(9)
	assert.Equal(t, []float32{9, 9, 9, 9}, a.ToSlice())
	assert.Equal(t, []float32{0, 1, 2, 3}, c.ToSlice())

	moved, err := c.To(device)
	require.NoError(t, err)
	assert.Same(t, c, moved)
}

func TestDenseInterop(t *testing.T) {
	a := arange(t, ndarray.Shape{2, 3})
	d, err := a.ToDense()
	require.NoError(t, err)
	rows, cols := d.Dims()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 3, cols)
	assert.Equal(t, 5.0, d.At(1, 2))

	back, err := ndarray.FromDense(d.T(), device)
	require.NoError(t, err)
	assert.Equal(t, ndarray.Shape{3, 2}, back.Shape())
	assert.Equal(t, []float32{0, 3, 1, 4, 2, 5}, back.ToSlice())

	_, err = arange(t, ndarray.Shape{6}).ToDense()
	assert.True(t, errors.Is(err, ndarray.ErrUnsupported))
}

func TestString(t *testing.T) {
	assert.Equal(t, "[[0 1 2] [3 4 5]]", arange(t, ndarray.Shape{2, 3}).String())
	assert.Equal(t, "[0 1]", arange(t, ndarray.Shape{2}).String())
}
