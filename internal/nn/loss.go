package nn

import (
	"github.com/pkg/errors"

	"github.com/m0saan/minima/internal/autodiff"
	"github.com/m0saan/minima/internal/ndarray"
)

// MSELoss computes Mean Squared Error loss.
//
// Loss = mean((predictions - targets)²)
//
// The result has an all-ones shape of the predictions' rank and is
// differentiable with respect to the predictions.
type MSELoss struct{}

// NewMSELoss creates a new MSE loss function.
func NewMSELoss() *MSELoss {
	return &MSELoss{}
}

// Forward computes the MSE loss. Predictions and targets must have the same shape.
func (m *MSELoss) Forward(predictions, targets *autodiff.Tensor) (*autodiff.Tensor, error) {
	predShape, err := predictions.Shape()
	if err != nil {
		return nil, err
	}
	targetShape, err := targets.Shape()
	if err != nil {
		return nil, err
	}
	if !predShape.Equal(targetShape) {
		return nil, errors.Wrapf(ndarray.ErrShapeMismatch, "mse: predictions %v and targets %v", predShape, targetShape)
	}

	diff, err := predictions.Sub(targets)
	if err != nil {
		return nil, err
	}
	squared, err := diff.Pow(2)
	if err != nil {
		return nil, err
	}
	sum, err := squared.Sum()
	if err != nil {
		return nil, err
	}
	return sum.DivScalar(float32(predShape.NumElements()))
}
