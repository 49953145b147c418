package autodiff

import (
	"github.com/pkg/errors"

	"github.com/m0saan/minima/internal/ndarray"
)

// gradient returns one gradient per input of node, given the gradient g of
// node's output. Gradients are built from operators, so they are graph nodes
// themselves.
func gradient(op Operator, g, node *Tensor) ([]*Tensor, error) {
	in := node.inputs
	switch op := op.(type) {
	case EWiseAdd:
		return []*Tensor{g, g}, nil

	case AddScalar:
		return []*Tensor{g}, nil

	case EWiseMul:
		ga, err := g.Mul(in[1])
		if err != nil {
			return nil, err
		}
		gb, err := g.Mul(in[0])
		if err != nil {
			return nil, err
		}
		return []*Tensor{ga, gb}, nil

	case MulScalar:
		return single(g.MulScalar(op.Scalar))

	case EWiseDiv:
		a, b := in[0], in[1]
		ga, err := g.Div(b)
		if err != nil {
			return nil, err
		}
		num, err := g.Mul(a)
		if err != nil {
			return nil, err
		}
		den, err := b.Mul(b)
		if err != nil {
			return nil, err
		}
		q, err := num.Div(den)
		if err != nil {
			return nil, err
		}
		gb, err := q.Neg()
		if err != nil {
			return nil, err
		}
		return []*Tensor{ga, gb}, nil

	case DivScalar:
		return single(g.DivScalar(op.Scalar))

	case Negate:
		return single(g.Neg())

	case Exp:
		// d/dx e^x is the node's own output.
		return single(g.Mul(node))

	case Log:
		return single(g.Div(in[0]))

	case Tanh:
		sq, err := node.Pow(2)
		if err != nil {
			return nil, err
		}
		neg, err := sq.Neg()
		if err != nil {
			return nil, err
		}
		deriv, err := neg.AddScalar(1)
		if err != nil {
			return nil, err
		}
		return single(g.Mul(deriv))

	case ReLU:
		a, err := in[0].Realize()
		if err != nil {
			return nil, err
		}
		maskArray, err := a.GtScalar(0)
		if err != nil {
			return nil, err
		}
		mask := node.ctx.newLeaf(maskArray, []TensorOption{WithRequiresGrad(false)})
		return single(g.Mul(mask))

	case PowerScalar:
		pm1, err := in[0].Pow(op.Exponent - 1)
		if err != nil {
			return nil, err
		}
		scaled, err := pm1.MulScalar(op.Exponent)
		if err != nil {
			return nil, err
		}
		return single(scaled.Mul(g))

	case Transpose:
		return single(g.Transpose(op.Axes...))

	case Reshape:
		shape, err := in[0].Shape()
		if err != nil {
			return nil, err
		}
		return single(g.Reshape(shape))

	case BroadcastTo:
		shape, err := in[0].Shape()
		if err != nil {
			return nil, err
		}
		return single(sumToShape(g, shape))

	case Summation:
		shape, err := in[0].Shape()
		if err != nil {
			return nil, err
		}
		kept := ndarray.OnesShape(len(shape))
		if len(op.Axes) > 0 {
			axes, err := ndarray.NormalizeAxes(op.Axes, len(shape))
			if err != nil {
				return nil, err
			}
			kept = shape.Clone()
			for _, axis := range axes {
				kept[axis] = 1
			}
		}
		r, err := g.Reshape(kept)
		if err != nil {
			return nil, err
		}
		return single(r.BroadcastTo(shape))

	case MatMul:
		a, b := in[0], in[1]
		bt, err := b.Transpose()
		if err != nil {
			return nil, err
		}
		ga, err := g.MatMul(bt)
		if err != nil {
			return nil, err
		}
		at, err := a.Transpose()
		if err != nil {
			return nil, err
		}
		gb, err := at.MatMul(g)
		if err != nil {
			return nil, err
		}
		aShape, err := a.Shape()
		if err != nil {
			return nil, err
		}
		bShape, err := b.Shape()
		if err != nil {
			return nil, err
		}
		if ga, err = sumToShape(ga, aShape); err != nil {
			return nil, err
		}
		if gb, err = sumToShape(gb, bShape); err != nil {
			return nil, err
		}
		return []*Tensor{ga, gb}, nil

	default:
		return nil, errors.Wrapf(ErrInvalidOperatorUse, "no gradient rule for %s", op)
	}
}

func single(t *Tensor, err error) ([]*Tensor, error) {
	if err != nil {
		return nil, err
	}
	return []*Tensor{t}, nil
}

// sumToShape sums g over the dimensions a broadcast to g's shape would have
// expanded (missing leading dims and size-1 dims of shape), then reshapes
// the result to shape.
func sumToShape(g *Tensor, shape ndarray.Shape) (*Tensor, error) {
	gShape, err := g.Shape()
	if err != nil {
		return nil, err
	}
	if gShape.Equal(shape) {
		return g, nil
	}
	lead := len(gShape) - len(shape)
	if lead < 0 {
		return nil, errors.Wrapf(ndarray.ErrShapeMismatch, "cannot reduce gradient %v to %v", gShape, shape)
	}
	var axes []int
	for i, dim := range gShape {
		switch {
		case i < lead:
			axes = append(axes, i)
		case shape[i-lead] == dim:
		case shape[i-lead] == 1:
			axes = append(axes, i)
		default:
			return nil, errors.Wrapf(ndarray.ErrShapeMismatch, "cannot reduce gradient %v to %v", gShape, shape)
		}
	}
	summed, err := g.Sum(axes...)
	if err != nil {
		return nil, err
	}
	return summed.Reshape(shape)
}
