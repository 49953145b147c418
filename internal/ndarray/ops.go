package ndarray

import "github.com/pkg/errors"

type binaryKernel func(a, b, out *Buffer)

type scalarKernel func(a *Buffer, value float32, out *Buffer)

type unaryKernel func(a, out *Buffer)

// binary applies kernel to two arrays of identical shape.
func (a *NDArray) binary(name string, b *NDArray, kernel binaryKernel) (*NDArray, error) {
	if !a.shape.Equal(b.shape) {
		return nil, errors.Wrapf(ErrShapeMismatch, "%s: operands with shapes %v and %v", name, a.shape, b.shape)
	}
	if a.device.Name() != b.device.Name() {
		return nil, errors.Wrapf(ErrUnsupported, "%s: operands on devices %q and %q", name, a.device.Name(), b.device.Name())
	}
	ac, err := a.Compact()
	if err != nil {
		return nil, err
	}
	bc, err := b.Compact()
	if err != nil {
		return nil, err
	}
	out, err := Make(a.shape, WithDevice(a.device))
	if err != nil {
		return nil, err
	}
	kernel(ac.buf, bc.buf, out.buf)
	return out, nil
}

// scalar applies kernel to an array and a scalar without materializing the
// scalar as an array.
func (a *NDArray) scalar(value float32, kernel scalarKernel) (*NDArray, error) {
	ac, err := a.Compact()
	if err != nil {
		return nil, err
	}
	out, err := Make(a.shape, WithDevice(a.device))
	if err != nil {
		return nil, err
	}
	kernel(ac.buf, value, out.buf)
	return out, nil
}

func (a *NDArray) unary(kernel unaryKernel) (*NDArray, error) {
	ac, err := a.Compact()
	if err != nil {
		return nil, err
	}
	out, err := Make(a.shape, WithDevice(a.device))
	if err != nil {
		return nil, err
	}
	kernel(ac.buf, out.buf)
	return out, nil
}

// Add returns a + b elementwise.
func (a *NDArray) Add(b *NDArray) (*NDArray, error) {
	return a.binary("add", b, a.device.EwiseAdd)
}

// Mul returns a * b elementwise.
func (a *NDArray) Mul(b *NDArray) (*NDArray, error) {
	return a.binary("mul", b, a.device.EwiseMul)
}

// Div returns a / b elementwise.
func (a *NDArray) Div(b *NDArray) (*NDArray, error) {
	return a.binary("div", b, a.device.EwiseDiv)
}

// Sub returns a - b elementwise, computed as a + (-b).
func (a *NDArray) Sub(b *NDArray) (*NDArray, error) {
	negB, err := b.Neg()
	if err != nil {
		return nil, err
	}
	return a.binary("sub", negB, a.device.EwiseAdd)
}

// Maximum returns max(a, b) elementwise.
func (a *NDArray) Maximum(b *NDArray) (*NDArray, error) {
	return a.binary("maximum", b, a.device.EwiseMaximum)
}

// Eq returns 1 where a == b and 0 elsewhere.
func (a *NDArray) Eq(b *NDArray) (*NDArray, error) {
	return a.binary("eq", b, a.device.EwiseEq)
}

// Ge returns 1 where a >= b and 0 elsewhere.
func (a *NDArray) Ge(b *NDArray) (*NDArray, error) {
	return a.binary("ge", b, a.device.EwiseGe)
}

// AddScalar returns a + value.
func (a *NDArray) AddScalar(value float32) (*NDArray, error) {
	return a.scalar(value, a.device.ScalarAdd)
}

// MulScalar returns a * value.
func (a *NDArray) MulScalar(value float32) (*NDArray, error) {
	return a.scalar(value, a.device.ScalarMul)
}

// DivScalar returns a / value.
func (a *NDArray) DivScalar(value float32) (*NDArray, error) {
	return a.scalar(value, a.device.ScalarDiv)
}

// MaximumScalar returns max(a, value).
func (a *NDArray) MaximumScalar(value float32) (*NDArray, error) {
	return a.scalar(value, a.device.ScalarMaximum)
}

// EqScalar returns 1 where a == value and 0 elsewhere.
func (a *NDArray) EqScalar(value float32) (*NDArray, error) {
	return a.scalar(value, a.device.ScalarEq)
}

// GeScalar returns 1 where a >= value and 0 elsewhere.
func (a *NDArray) GeScalar(value float32) (*NDArray, error) {
	return a.scalar(value, a.device.ScalarGe)
}

// GtScalar returns 1 where a > value, composed as (a >= value) - (a == value).
func (a *NDArray) GtScalar(value float32) (*NDArray, error) {
	ge, err := a.GeScalar(value)
	if err != nil {
		return nil, err
	}
	eq, err := a.EqScalar(value)
	if err != nil {
		return nil, err
	}
	return ge.Sub(eq)
}

// PowerScalar returns a raised to exponent elementwise.
func (a *NDArray) PowerScalar(exponent float32) (*NDArray, error) {
	return a.scalar(exponent, a.device.ScalarPower)
}

// Neg returns -a.
func (a *NDArray) Neg() (*NDArray, error) {
	return a.MulScalar(-1)
}

// Log returns the natural logarithm elementwise.
func (a *NDArray) Log() (*NDArray, error) {
	return a.unary(a.device.EwiseLog)
}

// Exp returns e^a elementwise.
func (a *NDArray) Exp() (*NDArray, error) {
	return a.unary(a.device.EwiseExp)
}

// Tanh returns the hyperbolic tangent elementwise.
func (a *NDArray) Tanh() (*NDArray, error) {
	return a.unary(a.device.EwiseTanh)
}
