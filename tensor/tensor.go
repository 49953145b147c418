// Copyright 2025 The Minima Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"golang.org/x/exp/constraints"

	"github.com/m0saan/minima/internal/autodiff"
	"github.com/m0saan/minima/internal/ndarray"
)

// Tensor is a node of the computation graph: a leaf holding data, or the
// result of an Operator applied to input tensors.
type Tensor = autodiff.Tensor

// Context owns tensor ids, the device and the lazy/eager mode.
type Context = autodiff.Context

// ContextOption configures NewContext.
type ContextOption = autodiff.ContextOption

// TensorOption configures leaf construction.
type TensorOption = autodiff.TensorOption

// Shape lists the size of each dimension.
type Shape = ndarray.Shape

// ErrInvalidOperatorUse reports an operator applied with the wrong number
// of inputs, inputs from different contexts, or invalid parameters.
var ErrInvalidOperatorUse = autodiff.ErrInvalidOperatorUse

// NewContext creates a Context.
//
// Example:
//
//	ctx, err := tensor.NewContext(tensor.WithLazy(true))
func NewContext(opts ...ContextOption) (*Context, error) {
	return autodiff.NewContext(opts...)
}

// WithLazy defers realization of operator results until their data is read.
func WithLazy(lazy bool) ContextOption {
	return autodiff.WithLazy(lazy)
}

// WithDevice places every tensor of the context on device.
func WithDevice(device ndarray.Device) ContextOption {
	return autodiff.WithDevice(device)
}

// WithDeviceName selects a registered device by name.
func WithDeviceName(name string) ContextOption {
	return autodiff.WithDeviceName(name)
}

// WithRequiresGrad sets whether a leaf takes part in differentiation
// (default true).
func WithRequiresGrad(requiresGrad bool) TensorOption {
	return autodiff.WithRequiresGrad(requiresGrad)
}

// FromValues creates a leaf from any integer or float slice, converting
// the values to float32.
//
// Example:
//
//	x, err := tensor.FromValues(ctx, []int{1, 2, 3}, tensor.Shape{3})
func FromValues[T constraints.Integer | constraints.Float](ctx *Context, values []T, shape Shape, opts ...TensorOption) (*Tensor, error) {
	return autodiff.FromValues(ctx, values, shape, opts...)
}

// MakeFromOperator applies op to inputs and returns the resulting node.
func MakeFromOperator(op Operator, inputs ...*Tensor) (*Tensor, error) {
	return autodiff.MakeFromOperator(op, inputs...)
}

// Operator is a differentiable operation. The set of operators is closed.
type Operator = autodiff.Operator

// Operators.
type (
	EWiseAdd    = autodiff.EWiseAdd
	AddScalar   = autodiff.AddScalar
	EWiseMul    = autodiff.EWiseMul
	MulScalar   = autodiff.MulScalar
	EWiseDiv    = autodiff.EWiseDiv
	DivScalar   = autodiff.DivScalar
	Negate      = autodiff.Negate
	Exp         = autodiff.Exp
	Log         = autodiff.Log
	Tanh        = autodiff.Tanh
	ReLU        = autodiff.ReLU
	PowerScalar = autodiff.PowerScalar
	Transpose   = autodiff.Transpose
	Reshape     = autodiff.Reshape
	BroadcastTo = autodiff.BroadcastTo
	Summation   = autodiff.Summation
	MatMul      = autodiff.MatMul
)
