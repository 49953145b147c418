package autodiff

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/m0saan/minima/internal/ndarray"
)

// Operator is a differentiable operation. The set of operators is closed:
// only the types declared in this package implement it, and compute and
// gradient dispatch over them with a type switch.
type Operator interface {
	fmt.Stringer
	isOperator()
}

// EWiseAdd computes a + b.
type EWiseAdd struct{}

// AddScalar computes a + Scalar.
type AddScalar struct{ Scalar float32 }

// EWiseMul computes a * b.
type EWiseMul struct{}

// MulScalar computes a * Scalar.
type MulScalar struct{ Scalar float32 }

// EWiseDiv computes a / b.
type EWiseDiv struct{}

// DivScalar computes a / Scalar.
type DivScalar struct{ Scalar float32 }

// Negate computes -a.
type Negate struct{}

// Exp computes e^a.
type Exp struct{}

// Log computes the natural logarithm of a.
type Log struct{}

// Tanh computes the hyperbolic tangent of a.
type Tanh struct{}

// ReLU computes max(0, a). Its derivative at 0 is 0.
type ReLU struct{}

// PowerScalar computes a ** Exponent.
type PowerScalar struct{ Exponent float32 }

// Transpose swaps two axes. With no Axes it swaps the last two.
type Transpose struct{ Axes []int }

// Reshape changes the shape, keeping the element count.
type Reshape struct{ Shape ndarray.Shape }

// BroadcastTo expands size-1 and missing leading dimensions to Shape.
type BroadcastTo struct{ Shape ndarray.Shape }

// Summation sums over Axes, removing them from the shape. With no Axes it
// sums everything into an all-ones shape of the same rank.
type Summation struct{ Axes []int }

// MatMul computes the matrix product a @ b of 2-d operands.
type MatMul struct{}

func (EWiseAdd) isOperator() {}
func (AddScalar) isOperator() {}
func (EWiseMul) isOperator() {}
func (MulScalar) isOperator() {}
func (EWiseDiv) isOperator() {}
func (DivScalar) isOperator() {}
func (Negate) isOperator() {}
func (Exp) isOperator() {}
func (Log) isOperator() {}
func (Tanh) isOperator() {}
func (ReLU) isOperator() {}
func (PowerScalar) isOperator() {}
func (Transpose) isOperator() {}
func (Reshape) isOperator() {}
func (BroadcastTo) isOperator() {}
func (Summation) isOperator() {}
func (MatMul) isOperator() {}

func (EWiseAdd) String() string { return "EWiseAdd" }
func (op AddScalar) String() string { return fmt.Sprintf("AddScalar(%g)", op.Scalar) }
func (EWiseMul) String() string { return "EWiseMul" }
func (op MulScalar) String() string { return fmt.Sprintf("MulScalar(%g)", op.Scalar) }
func (EWiseDiv) String() string { return "EWiseDiv" }
func (op DivScalar) String() string { return fmt.Sprintf("DivScalar(%g)", op.Scalar) }
func (Negate) String() string { return "Negate" }
func (Exp) String() string { return "Exp" }
func (Log) String() string { return "Log" }
func (Tanh) String() string { return "Tanh" }
func (ReLU) String() string { return "ReLU" }
func (op PowerScalar) String() string { return fmt.Sprintf("PowerScalar(%g)", op.Exponent) }
func (op Transpose) String() string { return fmt.Sprintf("Transpose(%v)", op.Axes) }
func (op Reshape) String() string { return fmt.Sprintf("Reshape%v", op.Shape) }
func (op BroadcastTo) String() string { return fmt.Sprintf("BroadcastTo%v", op.Shape) }
func (op Summation) String() string { return fmt.Sprintf("Summation(%v)", op.Axes) }
func (MatMul) String() string { return "MatMul" }

// arity returns the number of inputs op takes.
func arity(op Operator) int {
	switch op.(type) {
	case EWiseAdd, EWiseMul, EWiseDiv, MatMul:
		return 2
	default:
		return 1
	}
}

// swapAxes returns the pair of axes to exchange.
func (op Transpose) swapAxes() (int, int, error) {
	switch len(op.Axes) {
	case 0:
		return -2, -1, nil
	case 2:
		return op.Axes[0], op.Axes[1], nil
	default:
		return 0, 0, errors.Wrapf(ErrInvalidOperatorUse, "transpose takes 0 or 2 axes, got %v", op.Axes)
	}
}

// compute evaluates op on realized inputs.
func compute(op Operator, in []*ndarray.NDArray) (*ndarray.NDArray, error) {
	if len(in) != arity(op) {
		return nil, errors.Wrapf(ErrInvalidOperatorUse, "%s takes %d inputs, got %d", op, arity(op), len(in))
	}
	a := in[0]
	switch op := op.(type) {
	case EWiseAdd:
		return a.Add(in[1])
	case AddScalar:
		return a.AddScalar(op.Scalar)
	case EWiseMul:
		return a.Mul(in[1])
	case MulScalar:
		return a.MulScalar(op.Scalar)
	case EWiseDiv:
		return a.Div(in[1])
	case DivScalar:
		return a.DivScalar(op.Scalar)
	case Negate:
		return a.Neg()
	case Exp:
		return a.Exp()
	case Log:
		return a.Log()
	case Tanh:
		return a.Tanh()
	case ReLU:
		return a.MaximumScalar(0)
	case PowerScalar:
		return a.PowerScalar(op.Exponent)
	case Transpose:
		if a.NDim() < 2 {
			return nil, errors.Wrapf(ndarray.ErrShape, "transpose of a %d-d array", a.NDim())
		}
		i, j, err := op.swapAxes()
		if err != nil {
			return nil, err
		}
		return a.SwapAxes(i, j)
	case Reshape:
		return a.Reshape(op.Shape)
	case BroadcastTo:
		return a.BroadcastTo(op.Shape)
	case Summation:
		if len(op.Axes) == 0 {
			return a.ReduceAll(ndarray.ReduceSum)
		}
		return a.Sum(op.Axes...)
	case MatMul:
		return a.MatMul(in[1])
	default:
		return nil, errors.Wrapf(ErrInvalidOperatorUse, "no compute rule for %s", op)
	}
}
