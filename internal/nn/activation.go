package nn

import (
	"github.com/m0saan/minima/internal/autodiff"
)

// ReLU applies f(x) = max(0, x) elementwise.
type ReLU struct{}

// NewReLU creates a new ReLU activation.
func NewReLU() *ReLU {
	return &ReLU{}
}

// Forward applies ReLU.
func (r *ReLU) Forward(input *autodiff.Tensor) (*autodiff.Tensor, error) {
	return input.ReLU()
}

// Parameters returns nil (ReLU has no trainable parameters).
func (r *ReLU) Parameters() []*Parameter {
	return nil
}

// Tanh applies the hyperbolic tangent elementwise.
type Tanh struct{}

// NewTanh creates a new Tanh activation.
func NewTanh() *Tanh {
	return &Tanh{}
}

// Forward applies tanh.
func (t *Tanh) Forward(input *autodiff.Tensor) (*autodiff.Tensor, error) {
	return input.Tanh()
}

// Parameters returns nil (Tanh has no trainable parameters).
func (t *Tanh) Parameters() []*Parameter {
	return nil
}
