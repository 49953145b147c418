// Copyright 2025 The Minima Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides reverse-mode automatic differentiation over
// tensor graphs.
//
// Backward walks the graph from an output in topological order, asks each
// operator for the gradients of its inputs and sums the contributions that
// reach a node through several paths.
//
// Example:
//
//	import (
//	    "github.com/m0saan/minima/autodiff"
//	    "github.com/m0saan/minima/tensor"
//	)
//
//	func main() {
//	    ctx, _ := tensor.NewContext()
//	    x, _ := ctx.FromSlice([]float32{1, 2, 3}, tensor.Shape{3})
//	    y, _ := x.Mul(x)
//	    z, _ := y.Sum()
//
//	    _ = autodiff.Backward(z, nil)
//	    // x.Grad() holds 2*x
//	}
package autodiff

import (
	"github.com/m0saan/minima/internal/autodiff"
	"github.com/m0saan/minima/tensor"
)

// Backward runs reverse-mode differentiation from root. A nil grad seeds
// the root with ones of its shape.
func Backward(root, grad *tensor.Tensor) error {
	return autodiff.Backward(root, grad)
}

// TopologicalSort returns every node reachable from root exactly once,
// root first and each node before its inputs.
func TopologicalSort(root *tensor.Tensor) []*tensor.Tensor {
	return autodiff.TopologicalSort(root)
}
