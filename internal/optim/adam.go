package optim

import (
	"github.com/chewxy/math32"
	"github.com/pkg/errors"

	"github.com/m0saan/minima/internal/autodiff"
	"github.com/m0saan/minima/internal/nn"
)

// Adam implements the Adam (Adaptive Moment Estimation) optimizer.
//
// Update rule, with t counting calls to Step:
//
//	param = param * (1 - lr * weight_decay)
//	m_t   = beta1 * m_{t-1} + (1-beta1) * gradient
//	v_t   = beta2 * v_{t-1} + (1-beta2) * gradient²
//	m_hat = m_t / (1 - beta1^t)
//	v_hat = v_t / (1 - beta2^t)
//	param = param - lr * m_hat / (sqrt(v_hat) + eps)
//
// Reference: "Adam: A Method for Stochastic Optimization" (Kingma & Ba, 2014)
type Adam struct {
	params      []*nn.Parameter
	lr          float32
	beta1       float32
	beta2       float32
	eps         float32
	weightDecay float32
	t           int                                // Timestep for bias correction
	m           map[*nn.Parameter]*autodiff.Tensor // First moment estimates
	v           map[*nn.Parameter]*autodiff.Tensor // Second moment estimates
}

// AdamConfig holds configuration for Adam optimizer.
type AdamConfig struct {
	LR          float32    // Learning rate (default: 0.01)
	Betas       [2]float32 // Coefficients for computing running averages (default: [0.9, 0.999])
	Eps         float32    // Term for numerical stability (default: 1e-8)
	WeightDecay float32    // Multiplicative weight decay (default: 0.0)
}

// NewAdam creates a new Adam optimizer. Zero fields take their defaults.
func NewAdam(params []*nn.Parameter, config AdamConfig) *Adam {
	if config.LR == 0 {
		config.LR = 0.01
	}
	if config.Betas[0] == 0 {
		config.Betas[0] = 0.9
	}
	if config.Betas[1] == 0 {
		config.Betas[1] = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}

	return &Adam{
		params:      params,
		lr:          config.LR,
		beta1:       config.Betas[0],
		beta2:       config.Betas[1],
		eps:         config.Eps,
		weightDecay: config.WeightDecay,
		m:           make(map[*nn.Parameter]*autodiff.Tensor),
		v:           make(map[*nn.Parameter]*autodiff.Tensor),
	}
}

// Step performs a single optimization step and advances the timestep.
func (a *Adam) Step() error {
	a.t++
	for i, param := range a.params {
		if err := a.updateParameter(param); err != nil {
			return errors.WithMessagef(err, "adam: parameter %d (%s)", i, param.Name())
		}
	}
	return nil
}

func (a *Adam) updateParameter(param *nn.Parameter) error {
	grad, err := getGradient(param)
	if err != nil || grad == nil {
		return err
	}
	p, err := param.Tensor().Data()
	if err != nil {
		return err
	}
	if p, err = decay(p, a.lr, a.weightDecay); err != nil {
		return err
	}

	m, exists := a.m[param]
	if !exists {
		if m, err = zerosLike(p); err != nil {
			return err
		}
	}
	v, exists := a.v[param]
	if !exists {
		if v, err = zerosLike(p); err != nil {
			return err
		}
	}

	gradSq, err := grad.Pow(2)
	if err != nil {
		return err
	}
	if m, err = ema(m, grad, a.beta1); err != nil {
		return err
	}
	if v, err = ema(v, gradSq, a.beta2); err != nil {
		return err
	}
	a.m[param], a.v[param] = m, v

	step := float32(a.t)
	mHat, err := m.DivScalar(1 - math32.Pow(a.beta1, step))
	if err != nil {
		return err
	}
	vHat, err := v.DivScalar(1 - math32.Pow(a.beta2, step))
	if err != nil {
		return err
	}

	denom, err := vHat.Pow(0.5)
	if err != nil {
		return err
	}
	if denom, err = denom.AddScalar(a.eps); err != nil {
		return err
	}
	ratio, err := mHat.Div(denom)
	if err != nil {
		return err
	}
	update, err := ratio.MulScalar(a.lr)
	if err != nil {
		return err
	}
	updated, err := p.Sub(update)
	if err != nil {
		return err
	}
	return param.Tensor().SetData(updated)
}

// ZeroGrad clears gradients for all parameters.
func (a *Adam) ZeroGrad() {
	for _, param := range a.params {
		param.ZeroGrad()
	}
}

// GetLR returns the current learning rate.
func (a *Adam) GetLR() float32 {
	return a.lr
}

// SetLR updates the learning rate.
func (a *Adam) SetLR(lr float32) {
	a.lr = lr
}

// GetTimestep returns the number of completed steps.
func (a *Adam) GetTimestep() int {
	return a.t
}
