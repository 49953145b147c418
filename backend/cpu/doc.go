// Copyright 2025 The Minima Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the pure Go CPU device for minima arrays.
//
// # Overview
//
// The CPU device implements every kernel an ndarray needs:
//   - Pure Go implementation (no CGO)
//   - Strided compaction and strided writes
//   - Elementwise and scalar arithmetic, comparisons, log/exp/tanh
//   - Sum and max reductions over contiguous groups
//   - Matrix multiplication through gonum BLAS, plus an 8x8 tiled kernel
//
// # Basic Usage
//
// Importing the package registers the device under the name "cpu", which
// makes it the default for ndarray.DefaultDevice:
//
//	import (
//	    _ "github.com/m0saan/minima/backend/cpu"
//	    "github.com/m0saan/minima/tensor"
//	)
//
//	func main() {
//	    ctx, _ := tensor.NewContext()
//	    x, _ := ctx.Ones(tensor.Shape{2, 3})
//	}
//
// # Thread Safety
//
// Kernels keep no mutable state, so a Backend may be shared between
// goroutines. Arrays themselves are not synchronized.
package cpu
