// Package optim implements optimization algorithms for training neural networks.
//
// This package provides:
//   - Optimizer interface: Base interface for all optimizers
//   - SGD: Stochastic Gradient Descent with momentum and weight decay
//   - Adam: Adaptive Moment Estimation
//
// Optimizers read gradients stored on the parameters by autodiff.Backward
// and write new values with SetData, so no graph is built across steps.
//
// Example usage:
//
//	optimizer := optim.NewAdam(model.Parameters(), optim.AdamConfig{
//	    LR: 0.001,
//	})
//
//	for epoch := range epochs {
//	    output, _ := model.Forward(input)
//	    loss, _ := lossFunc.Forward(output, targets)
//	    _ = loss.Backward(nil)
//
//	    _ = optimizer.Step()
//	    optimizer.ZeroGrad()
//	}
package optim

import (
	"github.com/m0saan/minima/internal/autodiff"
	"github.com/m0saan/minima/internal/nn"
)

// Optimizer is the base interface for all optimization algorithms.
type Optimizer interface {
	// Step applies one update to every parameter that has a gradient.
	//
	// Parameters without a gradient (not reached by the last backward
	// pass) are left untouched.
	Step() error

	// ZeroGrad clears all parameter gradients.
	ZeroGrad()

	// GetLR returns the current learning rate.
	GetLR() float32
}

// getGradient returns a detached copy of the parameter's gradient, or nil
// when the parameter did not take part in the last backward pass.
func getGradient(param *nn.Parameter) (*autodiff.Tensor, error) {
	if param == nil || param.Grad() == nil {
		return nil, nil
	}
	return param.Grad().Data()
}

// decay applies multiplicative weight decay: p *= (1 - lr*wd).
func decay(p *autodiff.Tensor, lr, wd float32) (*autodiff.Tensor, error) {
	if wd == 0 {
		return p, nil
	}
	return p.MulScalar(1 - lr*wd)
}

// zerosLike returns a non-grad zero tensor with p's shape.
func zerosLike(p *autodiff.Tensor) (*autodiff.Tensor, error) {
	shape, err := p.Shape()
	if err != nil {
		return nil, err
	}
	return p.Context().Zeros(shape, autodiff.WithRequiresGrad(false))
}

// ema returns beta*avg + (1-beta)*x as a detached leaf, so optimizer state
// does not chain back through earlier steps.
func ema(avg, x *autodiff.Tensor, beta float32) (*autodiff.Tensor, error) {
	scaledAvg, err := avg.MulScalar(beta)
	if err != nil {
		return nil, err
	}
	scaledX, err := x.MulScalar(1 - beta)
	if err != nil {
		return nil, err
	}
	sum, err := scaledAvg.Add(scaledX)
	if err != nil {
		return nil, err
	}
	return sum.Detach()
}
