package autodiff

import "github.com/m0saan/minima/internal/ndarray"

// Add returns t + other. Shapes must be identical.
func (t *Tensor) Add(other *Tensor) (*Tensor, error) {
	return MakeFromOperator(EWiseAdd{}, t, other)
}

// Sub returns t - other, built as t + (-other).
func (t *Tensor) Sub(other *Tensor) (*Tensor, error) {
	neg, err := other.Neg()
	if err != nil {
		return nil, err
	}
	return t.Add(neg)
}

// Mul returns t * other elementwise.
func (t *Tensor) Mul(other *Tensor) (*Tensor, error) {
	return MakeFromOperator(EWiseMul{}, t, other)
}

// Div returns t / other elementwise.
func (t *Tensor) Div(other *Tensor) (*Tensor, error) {
	return MakeFromOperator(EWiseDiv{}, t, other)
}

// AddScalar returns t + s.
func (t *Tensor) AddScalar(s float32) (*Tensor, error) {
	return MakeFromOperator(AddScalar{Scalar: s}, t)
}

// SubScalar returns t - s.
func (t *Tensor) SubScalar(s float32) (*Tensor, error) {
	return MakeFromOperator(AddScalar{Scalar: -s}, t)
}

// MulScalar returns t * s.
func (t *Tensor) MulScalar(s float32) (*Tensor, error) {
	return MakeFromOperator(MulScalar{Scalar: s}, t)
}

// DivScalar returns t / s.
func (t *Tensor) DivScalar(s float32) (*Tensor, error) {
	return MakeFromOperator(DivScalar{Scalar: s}, t)
}

// Pow returns t raised to exponent elementwise.
func (t *Tensor) Pow(exponent float32) (*Tensor, error) {
	return MakeFromOperator(PowerScalar{Exponent: exponent}, t)
}

// Neg returns -t.
func (t *Tensor) Neg() (*Tensor, error) {
	return MakeFromOperator(Negate{}, t)
}

// Exp returns e^t.
func (t *Tensor) Exp() (*Tensor, error) {
	return MakeFromOperator(Exp{}, t)
}

// Log returns ln(t).
func (t *Tensor) Log() (*Tensor, error) {
	return MakeFromOperator(Log{}, t)
}

// Tanh returns tanh(t).
func (t *Tensor) Tanh() (*Tensor, error) {
	return MakeFromOperator(Tanh{}, t)
}

// ReLU returns max(0, t).
func (t *Tensor) ReLU() (*Tensor, error) {
	return MakeFromOperator(ReLU{}, t)
}

// MatMul returns the matrix product t @ other.
func (t *Tensor) MatMul(other *Tensor) (*Tensor, error) {
	return MakeFromOperator(MatMul{}, t, other)
}

// Reshape returns t with a new shape of the same size.
func (t *Tensor) Reshape(shape ndarray.Shape) (*Tensor, error) {
	return MakeFromOperator(Reshape{Shape: shape.Clone()}, t)
}

// BroadcastTo expands t to shape.
func (t *Tensor) BroadcastTo(shape ndarray.Shape) (*Tensor, error) {
	return MakeFromOperator(BroadcastTo{Shape: shape.Clone()}, t)
}

// Transpose swaps two axes, the last two when none are given.
func (t *Tensor) Transpose(axes ...int) (*Tensor, error) {
	return MakeFromOperator(Transpose{Axes: axes}, t)
}

// Sum reduces over axes. With no axes it sums every element into an
// all-ones shape of the same rank.
func (t *Tensor) Sum(axes ...int) (*Tensor, error) {
	return MakeFromOperator(Summation{Axes: axes}, t)
}
