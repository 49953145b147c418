package nn

import (
	"math/rand"

	"github.com/pkg/errors"

	"github.com/m0saan/minima/internal/autodiff"
	"github.com/m0saan/minima/internal/ndarray"
)

// Linear implements a fully connected (dense) layer.
//
// Performs the transformation: y = x @ W + b
// where:
//   - x is the input tensor with shape [batch_size, in_features]
//   - W is the weight matrix with shape [in_features, out_features]
//   - b is the bias with shape [1, out_features], broadcast over the batch
//   - y is the output tensor with shape [batch_size, out_features]
//
// Weights and bias are initialized with KaimingUniform.
type Linear struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter
	bias        *Parameter
}

// LinearOption configures NewLinear.
type LinearOption func(*linearOptions)

type linearOptions struct {
	bias bool
}

// WithBias controls whether the layer has a bias term (default true).
func WithBias(bias bool) LinearOption {
	return func(o *linearOptions) { o.bias = bias }
}

// NewLinear creates a new Linear layer whose parameters live in ctx.
func NewLinear(ctx *autodiff.Context, inFeatures, outFeatures int, rng *rand.Rand, opts ...LinearOption) (*Linear, error) {
	options := &linearOptions{bias: true}
	for _, opt := range opts {
		opt(options)
	}

	weightTensor, err := KaimingUniform(ctx, rng, inFeatures, ndarray.Shape{inFeatures, outFeatures})
	if err != nil {
		return nil, errors.WithMessage(err, "linear: initializing weight")
	}
	l := &Linear{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      NewParameter("weight", weightTensor),
	}

	if options.bias {
		biasTensor, err := KaimingUniform(ctx, rng, outFeatures, ndarray.Shape{1, outFeatures})
		if err != nil {
			return nil, errors.WithMessage(err, "linear: initializing bias")
		}
		l.bias = NewParameter("bias", biasTensor)
	}
	return l, nil
}

// Forward computes x @ W + b for input of shape [batch_size, in_features].
func (l *Linear) Forward(input *autodiff.Tensor) (*autodiff.Tensor, error) {
	inputShape, err := input.Shape()
	if err != nil {
		return nil, err
	}
	if len(inputShape) != 2 || inputShape[1] != l.inFeatures {
		return nil, errors.Wrapf(ndarray.ErrShapeMismatch, "linear: expected input [batch, %d], got %v", l.inFeatures, inputShape)
	}

	output, err := input.MatMul(l.weight.Tensor())
	if err != nil {
		return nil, err
	}
	if l.bias == nil {
		return output, nil
	}

	b, err := l.bias.Tensor().BroadcastTo(ndarray.Shape{inputShape[0], l.outFeatures})
	if err != nil {
		return nil, err
	}
	return output.Add(b)
}

// Parameters returns [weight, bias], or [weight] without a bias.
func (l *Linear) Parameters() []*Parameter {
	if l.bias != nil {
		return []*Parameter{l.weight, l.bias}
	}
	return []*Parameter{l.weight}
}

// Weight returns the weight parameter.
func (l *Linear) Weight() *Parameter {
	return l.weight
}

// Bias returns the bias parameter, nil if the layer has none.
func (l *Linear) Bias() *Parameter {
	return l.bias
}

// InFeatures returns the number of input features.
func (l *Linear) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the number of output features.
func (l *Linear) OutFeatures() int {
	return l.outFeatures
}
