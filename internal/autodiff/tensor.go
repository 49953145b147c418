package autodiff

import (
	"fmt"

	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
	"gonum.org/v1/gonum/mat"
	"k8s.io/klog/v2"

	"github.com/m0saan/minima/internal/ndarray"
)

// Tensor is a node of the computation graph: either a leaf holding data
// directly, or the result of applying an Operator to input tensors.
//
// The array of an operator node is computed by Realize and cached; in a lazy
// Context that happens on first read. Shape, DType and Device read the array,
// so calling them on an unrealized node triggers its computation.
type Tensor struct {
	id           int64
	ctx          *Context
	op           Operator
	inputs       []*Tensor
	cached       *ndarray.NDArray
	requiresGrad bool
	grad         *Tensor
}

// TensorOption configures leaf construction.
type TensorOption func(*tensorOptions)

type tensorOptions struct {
	requiresGrad bool
}

// WithRequiresGrad sets whether a leaf takes part in differentiation.
// Leaves require gradients by default.
func WithRequiresGrad(requiresGrad bool) TensorOption {
	return func(o *tensorOptions) { o.requiresGrad = requiresGrad }
}

func (c *Context) newLeaf(a *ndarray.NDArray, opts []TensorOption) *Tensor {
	options := &tensorOptions{requiresGrad: true}
	for _, opt := range opts {
		opt(options)
	}
	return &Tensor{
		id:           c.newID(),
		ctx:          c,
		cached:       a,
		requiresGrad: options.requiresGrad,
	}
}

// FromArray wraps an array as a leaf, moving it to the context's device if
// needed. The leaf shares the array's buffer.
func (c *Context) FromArray(a *ndarray.NDArray, opts ...TensorOption) (*Tensor, error) {
	a, err := a.To(c.device)
	if err != nil {
		return nil, err
	}
	return c.newLeaf(a, opts), nil
}

// FromSlice copies data into a new leaf of the given shape.
func (c *Context) FromSlice(data []float32, shape ndarray.Shape, opts ...TensorOption) (*Tensor, error) {
	a, err := ndarray.FromSlice(data, shape, c.device)
	if err != nil {
		return nil, err
	}
	return c.newLeaf(a, opts), nil
}

// FromValues converts numeric host values to float32 and creates a leaf.
func FromValues[T constraints.Integer | constraints.Float](c *Context, values []T, shape ndarray.Shape, opts ...TensorOption) (*Tensor, error) {
	data := make([]float32, len(values))
	for i, v := range values {
		data[i] = float32(v)
	}
	return c.FromSlice(data, shape, opts...)
}

// Full creates a leaf filled with value.
func (c *Context) Full(shape ndarray.Shape, value float32, opts ...TensorOption) (*Tensor, error) {
	a, err := ndarray.Full(shape, value, c.device)
	if err != nil {
		return nil, err
	}
	return c.newLeaf(a, opts), nil
}

// Ones creates a leaf of ones.
func (c *Context) Ones(shape ndarray.Shape, opts ...TensorOption) (*Tensor, error) {
	return c.Full(shape, 1, opts...)
}

// Zeros creates a leaf of zeros.
func (c *Context) Zeros(shape ndarray.Shape, opts ...TensorOption) (*Tensor, error) {
	return c.Full(shape, 0, opts...)
}

// MakeFromOperator applies op to inputs and returns the resulting node.
// The node requires gradients if any input does. It is realized immediately
// unless the inputs' Context is lazy.
func MakeFromOperator(op Operator, inputs ...*Tensor) (*Tensor, error) {
	if want := arity(op); len(inputs) != want {
		return nil, errors.Wrapf(ErrInvalidOperatorUse, "%s takes %d inputs, got %d", op, want, len(inputs))
	}
	ctx := inputs[0].ctx
	requiresGrad := false
	for _, in := range inputs {
		if in.ctx != ctx {
			return nil, errors.Wrapf(ErrInvalidOperatorUse, "%s: inputs belong to different contexts", op)
		}
		requiresGrad = requiresGrad || in.requiresGrad
	}
	if err := checkSameShape(op, inputs); err != nil {
		return nil, err
	}
	t := &Tensor{
		id:           ctx.newID(),
		ctx:          ctx,
		op:           op,
		inputs:       inputs,
		requiresGrad: requiresGrad,
	}
	if !ctx.lazy {
		if _, err := t.Realize(); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// checkSameShape rejects elementwise binary ops on inputs of different
// shapes when the op is applied, so lazy contexts fail at the same point as
// eager ones. Reading the shapes realizes the inputs.
func checkSameShape(op Operator, inputs []*Tensor) error {
	switch op.(type) {
	case EWiseAdd, EWiseMul, EWiseDiv:
	default:
		return nil
	}
	a, err := inputs[0].Shape()
	if err != nil {
		return err
	}
	b, err := inputs[1].Shape()
	if err != nil {
		return err
	}
	if !a.Equal(b) {
		return errors.Wrapf(ndarray.ErrShapeMismatch, "%s: operands with shapes %v and %v", op, a, b)
	}
	return nil
}

// Realize computes and caches the node's array, realizing unrealized inputs
// first. A realized node is never recomputed.
func (t *Tensor) Realize() (*ndarray.NDArray, error) {
	if t.cached != nil {
		return t.cached, nil
	}
	computed := 0
	stack := []*Tensor{t}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		if node.cached != nil {
			stack = stack[:len(stack)-1]
			continue
		}
		pending := false
		for _, in := range node.inputs {
			if in.cached == nil {
				stack = append(stack, in)
				pending = true
			}
		}
		if pending {
			continue
		}
		stack = stack[:len(stack)-1]
		if node.op == nil {
			return nil, errors.Wrapf(ErrInvalidOperatorUse, "tensor %d has neither data nor operator", node.id)
		}
		arrays := make([]*ndarray.NDArray, len(node.inputs))
		for i, in := range node.inputs {
			arrays[i] = in.cached
		}
		out, err := compute(node.op, arrays)
		if err != nil {
			return nil, errors.WithMessagef(err, "realizing tensor %d (%s)", node.id, node.op)
		}
		node.cached = out
		computed++
	}
	if t.ctx.lazy {
		klog.V(2).Infof("autodiff: realized %d lazy nodes for tensor %d", computed, t.id)
	}
	return t.cached, nil
}

// Detach returns a new leaf sharing this node's realized array, with no
// operator and requiresGrad false.
func (t *Tensor) Detach() (*Tensor, error) {
	a, err := t.Realize()
	if err != nil {
		return nil, err
	}
	return t.ctx.newLeaf(a, []TensorOption{WithRequiresGrad(false)}), nil
}

// ID returns the node id, unique within its Context.
func (t *Tensor) ID() int64 { return t.id }

// Context returns the owning context.
func (t *Tensor) Context() *Context { return t.ctx }

// Op returns the producing operator, nil for leaves.
func (t *Tensor) Op() Operator { return t.op }

// Inputs returns the operator inputs in positional order.
func (t *Tensor) Inputs() []*Tensor { return t.inputs }

// IsLeaf reports whether the node has no producing operator.
func (t *Tensor) IsLeaf() bool { return t.op == nil }

// IsRealized reports whether the node's array has been computed.
func (t *Tensor) IsRealized() bool { return t.cached != nil }

// RequiresGrad reports whether the node takes part in differentiation.
func (t *Tensor) RequiresGrad() bool { return t.requiresGrad }

// Shape returns the shape, realizing the node if needed.
func (t *Tensor) Shape() (ndarray.Shape, error) {
	a, err := t.Realize()
	if err != nil {
		return nil, err
	}
	return a.Shape(), nil
}

// DType returns the element type, realizing the node if needed.
func (t *Tensor) DType() (ndarray.DataType, error) {
	a, err := t.Realize()
	if err != nil {
		return 0, err
	}
	return a.DType(), nil
}

// Device returns the device holding the data, realizing the node if needed.
func (t *Tensor) Device() (ndarray.Device, error) {
	a, err := t.Realize()
	if err != nil {
		return nil, err
	}
	return a.Device(), nil
}

// Array returns the realized array.
func (t *Tensor) Array() (*ndarray.NDArray, error) {
	return t.Realize()
}

// Data returns a detached view of the node's value, for updates that must
// not grow the graph.
func (t *Tensor) Data() (*Tensor, error) {
	return t.Detach()
}

// SetData replaces the node's array with other's realized array. The dtype
// and shape must match.
func (t *Tensor) SetData(other *Tensor) error {
	src, err := other.Realize()
	if err != nil {
		return err
	}
	dst, err := t.Realize()
	if err != nil {
		return err
	}
	if src.DType() != dst.DType() {
		return errors.Wrapf(ErrInvalidOperatorUse, "set data: dtype %s does not match %s", src.DType(), dst.DType())
	}
	if !src.Shape().Equal(dst.Shape()) {
		return errors.Wrapf(ndarray.ErrShapeMismatch, "set data: shape %v does not match %v", src.Shape(), dst.Shape())
	}
	t.cached = src
	return nil
}

// Grad returns the gradient accumulated by the last backward pass, or nil.
func (t *Tensor) Grad() *Tensor { return t.grad }

// SetGrad replaces the stored gradient.
func (t *Tensor) SetGrad(grad *Tensor) { t.grad = grad }

// ZeroGrad clears the stored gradient.
func (t *Tensor) ZeroGrad() { t.grad = nil }

// ToSlice returns a row-major host copy of the data.
func (t *Tensor) ToSlice() ([]float32, error) {
	a, err := t.Realize()
	if err != nil {
		return nil, err
	}
	return a.ToSlice(), nil
}

// ToDense exports a 2-d tensor as a gonum matrix.
func (t *Tensor) ToDense() (*mat.Dense, error) {
	a, err := t.Realize()
	if err != nil {
		return nil, err
	}
	return a.ToDense()
}

// Item returns the value of a one-element tensor.
func (t *Tensor) Item() (float32, error) {
	a, err := t.Realize()
	if err != nil {
		return 0, err
	}
	if a.Size() != 1 {
		return 0, errors.Wrapf(ndarray.ErrShape, "item of a tensor with shape %v", a.Shape())
	}
	return a.ToSlice()[0], nil
}

// String formats the tensor's data, realizing it if needed.
func (t *Tensor) String() string {
	a, err := t.Realize()
	if err != nil {
		return fmt.Sprintf("Tensor(%d, error: %v)", t.id, err)
	}
	return fmt.Sprintf("Tensor(%s)", a)
}
