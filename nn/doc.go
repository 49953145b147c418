// Copyright 2025 The Minima Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides neural network layers built on differentiable tensors.
//
// # Overview
//
//   - Module: Forward plus Parameters, implemented by every layer
//   - Parameter: a named trainable leaf tensor
//   - Linear: fully connected layer with optional bias
//   - ReLU, Tanh: activations
//   - Sequential: chains modules
//   - MSELoss: mean squared error
//   - SaveStateDict, LoadStateDict: SafeTensors checkpoints
//
// # Basic Usage
//
//	rng := rand.New(rand.NewSource(0))
//	first, _ := nn.NewLinear(ctx, 784, 128, rng)
//	second, _ := nn.NewLinear(ctx, 128, 10, rng)
//	model := nn.NewSequential(first, nn.NewReLU(), second)
//
//	out, _ := model.Forward(input)
//	loss, _ := nn.NewMSELoss().Forward(out, target)
//	_ = loss.Backward(nil)
//
// Initialization draws from the caller's *rand.Rand, so a fixed seed gives
// a reproducible model.
package nn
