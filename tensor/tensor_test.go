// Copyright 2025 The Minima Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m0saan/minima/autodiff"
	_ "github.com/m0saan/minima/backend/cpu"
	"github.com/m0saan/minima/ndarray"
	"github.com/m0saan/minima/tensor"
)

// TestDefaultContext verifies that importing the CPU backend is enough to
// build a context.
func TestDefaultContext(t *testing.T) {
	ctx, err := tensor.NewContext()
	require.NoError(t, err)
	assert.Equal(t, "cpu", ctx.Device().Name())
	assert.Contains(t, ndarray.AllDevices(), "cpu")
}

// TestPublicGraph builds a small graph through the aliases and
// differentiates it.
func TestPublicGraph(t *testing.T) {
	ctx, err := tensor.NewContext(tensor.WithDeviceName("cpu"))
	require.NoError(t, err)

	a, err := tensor.FromValues(ctx, []int{1, 2, 3, 4}, tensor.Shape{2, 2})
	require.NoError(t, err)
	b, err := tensor.FromValues(ctx, []float64{5, 6, 7, 8}, tensor.Shape{2, 2})
	require.NoError(t, err)

	c, err := tensor.MakeFromOperator(tensor.MatMul{}, a, b)
	require.NoError(t, err)
	assert.Equal(t, tensor.MatMul{}, c.Op())

	loss, err := c.Sum()
	require.NoError(t, err)
	require.NoError(t, autodiff.Backward(loss, nil))

	grad, err := a.Grad().ToSlice()
	require.NoError(t, err)
	assert.Equal(t, []float32{11, 15, 11, 15}, grad)

	order := autodiff.TopologicalSort(loss)
	require.Len(t, order, 4)
	assert.Same(t, loss, order[0])
}

// TestPublicLazyContext verifies that a lazy context defers computation.
func TestPublicLazyContext(t *testing.T) {
	ctx, err := tensor.NewContext(tensor.WithLazy(true))
	require.NoError(t, err)

	x, err := ctx.FromSlice([]float32{1, 2}, tensor.Shape{2}, tensor.WithRequiresGrad(false))
	require.NoError(t, err)
	y, err := x.AddScalar(1)
	require.NoError(t, err)
	assert.False(t, y.IsRealized())
	assert.False(t, y.RequiresGrad())

	v, err := y.ToSlice()
	require.NoError(t, err)
	assert.Equal(t, []float32{2, 3}, v)
}

// TestPublicOperatorError verifies error identity across the aliases.
func TestPublicOperatorError(t *testing.T) {
	ctx, err := tensor.NewContext()
	require.NoError(t, err)
	x, err := ctx.Ones(tensor.Shape{2})
	require.NoError(t, err)

	_, err = tensor.MakeFromOperator(tensor.EWiseAdd{}, x)
	require.Error(t, err)
	assert.True(t, errors.Is(err, tensor.ErrInvalidOperatorUse))
}
