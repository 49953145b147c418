// Copyright 2025 The Minima Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides optimizers that update nn parameters from the
// gradients left by a backward pass.
//
// # Training Loop
//
//	optimizer := optim.NewAdam(model.Parameters(), optim.AdamConfig{})
//	for step := range steps {
//	    out, _ := model.Forward(input)
//	    loss, _ := criterion.Forward(out, target)
//
//	    optimizer.ZeroGrad()
//	    _ = loss.Backward(nil)
//	    _ = optimizer.Step()
//	}
//
// Step writes new parameter values in place, so the graph built by one
// iteration is not reachable from the next.
package optim
