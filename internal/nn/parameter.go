package nn

import (
	"github.com/m0saan/minima/internal/autodiff"
)

// Parameter represents a trainable parameter in a neural network.
//
// A Parameter is a named leaf tensor that requires gradients. After a
// backward pass its gradient is available through Grad; optimizers replace
// its value with Tensor().SetData so the graph does not grow across steps.
//
// Example:
//
//	weight := nn.NewParameter("weight", w)
//	_ = loss.Backward(nil)
//	grad := weight.Grad()
type Parameter struct {
	name   string
	tensor *autodiff.Tensor
}

// NewParameter creates a new trainable parameter from a leaf tensor.
func NewParameter(name string, t *autodiff.Tensor) *Parameter {
	return &Parameter{
		name:   name,
		tensor: t,
	}
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter) Tensor() *autodiff.Tensor {
	return p.tensor
}

// Grad returns the gradient from the last backward pass, or nil.
func (p *Parameter) Grad() *autodiff.Tensor {
	return p.tensor.Grad()
}

// ZeroGrad clears the gradient.
func (p *Parameter) ZeroGrad() {
	p.tensor.ZeroGrad()
}
