// Copyright 2025 The Minima Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"io"
	"math/rand"

	"github.com/m0saan/minima/internal/nn"
	"github.com/m0saan/minima/tensor"
)

// Module interface defines the common interface for all neural network modules.
type Module = nn.Module

// Parameter represents a trainable parameter in a neural network.
type Parameter = nn.Parameter

// NewParameter creates a new parameter with the given name and tensor.
func NewParameter(name string, t *tensor.Tensor) *Parameter {
	return nn.NewParameter(name, t)
}

// Layers

// Linear represents a fully connected (dense) layer.
type Linear = nn.Linear

// LinearOption configures NewLinear.
type LinearOption = nn.LinearOption

// NewLinear creates a new linear layer with Kaiming uniform initialization.
//
// Example:
//
//	rng := rand.New(rand.NewSource(0))
//	layer, err := nn.NewLinear(ctx, 784, 128, rng)
func NewLinear(ctx *tensor.Context, inFeatures, outFeatures int, rng *rand.Rand, opts ...LinearOption) (*Linear, error) {
	return nn.NewLinear(ctx, inFeatures, outFeatures, rng, opts...)
}

// WithBias controls whether a Linear layer has a bias term (default true).
func WithBias(bias bool) LinearOption {
	return nn.WithBias(bias)
}

// Activations

// ReLU represents the Rectified Linear Unit activation.
type ReLU = nn.ReLU

// NewReLU creates a new ReLU activation.
func NewReLU() *ReLU {
	return nn.NewReLU()
}

// Tanh represents the hyperbolic tangent activation.
type Tanh = nn.Tanh

// NewTanh creates a new Tanh activation.
func NewTanh() *Tanh {
	return nn.NewTanh()
}

// Containers

// Sequential chains modules, feeding each output to the next module.
type Sequential = nn.Sequential

// NewSequential creates a new Sequential container.
func NewSequential(modules ...Module) *Sequential {
	return nn.NewSequential(modules...)
}

// Loss functions

// MSELoss represents the Mean Squared Error loss.
type MSELoss = nn.MSELoss

// NewMSELoss creates a new MSE loss function.
func NewMSELoss() *MSELoss {
	return nn.NewMSELoss()
}

// Initialization

// KaimingUniform creates a trainable tensor drawn from
// U(-sqrt(6/fanIn), sqrt(6/fanIn)).
func KaimingUniform(ctx *tensor.Context, rng *rand.Rand, fanIn int, shape tensor.Shape) (*tensor.Tensor, error) {
	return nn.KaimingUniform(ctx, rng, fanIn, shape)
}

// Checkpoints

// ErrMissingParameter reports a parameter absent from a loaded state dict.
var ErrMissingParameter = nn.ErrMissingParameter

// NamedParameters returns m's parameters keyed by path, e.g. "0.weight".
func NamedParameters(m Module) map[string]*Parameter {
	return nn.NamedParameters(m)
}

// SaveStateDict writes m's parameter values to w in SafeTensors format.
func SaveStateDict(w io.Writer, m Module) error {
	return nn.SaveStateDict(w, m)
}

// LoadStateDict loads parameter values written by SaveStateDict into m.
func LoadStateDict(r io.Reader, m Module) error {
	return nn.LoadStateDict(r, m)
}
