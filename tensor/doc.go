// Copyright 2025 The Minima Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides differentiable tensors built on strided arrays.
//
// # Overview
//
// A Tensor is a node in a computation graph. Leaves hold data; every other
// node records the Operator and input tensors that produce it. In an eager
// Context each node is computed as soon as it is created, in a lazy one the
// computation runs on first access to the data.
//
// # Basic Usage
//
//	import (
//	    _ "github.com/m0saan/minima/backend/cpu"
//	    "github.com/m0saan/minima/autodiff"
//	    "github.com/m0saan/minima/tensor"
//	)
//
//	func main() {
//	    ctx, _ := tensor.NewContext()
//	    a, _ := ctx.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2})
//	    b, _ := ctx.FromSlice([]float32{5, 6, 7, 8}, tensor.Shape{2, 2})
//
//	    c, _ := a.MatMul(b)
//	    loss, _ := c.Sum()
//
//	    _ = autodiff.Backward(loss, nil)
//	    fmt.Println(a.Grad(), b.Grad())
//	}
//
// # Operators
//
// Elementwise: Add, Sub, Mul, Div, Neg, Pow, Exp, Log, Tanh, ReLU and the
// scalar variants AddScalar, SubScalar, MulScalar, DivScalar.
//
// Shape: Reshape, BroadcastTo, Transpose.
//
// Reduction and linear algebra: Sum, MatMul.
//
// # Thread Safety
//
// A Context hands out ids atomically and may be shared. Individual tensors
// are not synchronized; realize and differentiate a graph from one goroutine.
package tensor
