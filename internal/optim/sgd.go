package optim

import (
	"github.com/pkg/errors"

	"github.com/m0saan/minima/internal/autodiff"
	"github.com/m0saan/minima/internal/nn"
)

// SGD implements Stochastic Gradient Descent optimizer with optional
// momentum and weight decay.
//
// Update rule:
//
//	param    = param * (1 - lr * weight_decay)
//	velocity = momentum * velocity + (1 - momentum) * gradient
//	param    = param - lr * velocity
//
// With momentum 0 the velocity is the gradient itself.
//
// Example:
//
//	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{
//	    LR:       0.01,
//	    Momentum: 0.9,
//	})
type SGD struct {
	params      []*nn.Parameter
	lr          float32
	momentum    float32
	weightDecay float32
	velocities  map[*nn.Parameter]*autodiff.Tensor
}

// SGDConfig holds configuration for SGD optimizer.
type SGDConfig struct {
	LR          float32 // Learning rate (default: 0.01)
	Momentum    float32 // Momentum factor (default: 0.0, range: [0, 1))
	WeightDecay float32 // Multiplicative weight decay (default: 0.0)
}

// NewSGD creates a new SGD optimizer.
func NewSGD(params []*nn.Parameter, config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = 0.01
	}

	return &SGD{
		params:      params,
		lr:          config.LR,
		momentum:    config.Momentum,
		weightDecay: config.WeightDecay,
		velocities:  make(map[*nn.Parameter]*autodiff.Tensor),
	}
}

// Step performs a single optimization step.
func (s *SGD) Step() error {
	for i, param := range s.params {
		if err := s.updateParameter(param); err != nil {
			return errors.WithMessagef(err, "sgd: parameter %d (%s)", i, param.Name())
		}
	}
	return nil
}

func (s *SGD) updateParameter(param *nn.Parameter) error {
	grad, err := getGradient(param)
	if err != nil || grad == nil {
		return err
	}
	p, err := param.Tensor().Data()
	if err != nil {
		return err
	}
	if p, err = decay(p, s.lr, s.weightDecay); err != nil {
		return err
	}

	velocity, exists := s.velocities[param]
	if !exists {
		if velocity, err = zerosLike(p); err != nil {
			return err
		}
	}
	if velocity, err = ema(velocity, grad, s.momentum); err != nil {
		return err
	}
	s.velocities[param] = velocity

	step, err := velocity.MulScalar(s.lr)
	if err != nil {
		return err
	}
	updated, err := p.Sub(step)
	if err != nil {
		return err
	}
	return param.Tensor().SetData(updated)
}

// ZeroGrad clears gradients for all parameters.
func (s *SGD) ZeroGrad() {
	for _, param := range s.params {
		param.ZeroGrad()
	}
}

// GetLR returns the current learning rate.
func (s *SGD) GetLR() float32 {
	return s.lr
}

// SetLR updates the learning rate.
func (s *SGD) SetLR(lr float32) {
	s.lr = lr
}
