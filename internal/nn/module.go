// Package nn implements neural network modules on top of the autodiff graph.
//
// This package provides building blocks for small networks:
//   - Module interface: Base interface for all NN components
//   - Parameter: Trainable leaf tensors
//   - Linear: Fully connected layer
//   - Activations: ReLU, Tanh
//   - Loss functions: MSE
//   - Sequential: Container for stacking layers
//
// Every forward pass is expressed with Tensor operators, so gradients reach
// the parameters through autodiff.Backward.
package nn

import (
	"github.com/m0saan/minima/internal/autodiff"
)

// Module is the base interface for all neural network components.
//
// Modules can be composed to build larger models:
//
//	model := nn.NewSequential(
//	    first,
//	    nn.NewReLU(),
//	    second,
//	)
type Module interface {
	// Forward computes the output of the module given an input tensor.
	Forward(input *autodiff.Tensor) (*autodiff.Tensor, error)

	// Parameters returns all trainable parameters of this module, including
	// those of nested modules. Modules without parameters return nil.
	Parameters() []*Parameter
}
