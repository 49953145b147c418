package ndarray

import (
	"sort"

	"github.com/pkg/errors"
)

// ReduceOp selects a reduction kernel.
type ReduceOp int

// Supported reductions.
const (
	ReduceSum ReduceOp = iota
	ReduceMax
)

// String returns the reduction name.
func (op ReduceOp) String() string {
	switch op {
	case ReduceSum:
		return "sum"
	case ReduceMax:
		return "max"
	default:
		return "unknown"
	}
}

func (a *NDArray) reduceKernel(op ReduceOp) (func(x, out *Buffer, reduceSize int), error) {
	switch op {
	case ReduceSum:
		return a.device.ReduceSum, nil
	case ReduceMax:
		return a.device.ReduceMax, nil
	default:
		return nil, errors.Wrapf(ErrUnsupported, "unknown reduction %d", int(op))
	}
}

// ReduceAll reduces over every element. The result keeps the array's rank
// with all dimensions equal to 1 (never 0-d) so it stays broadcastable
// against the input.
func (a *NDArray) ReduceAll(op ReduceOp) (*NDArray, error) {
	kernel, err := a.reduceKernel(op)
	if err != nil {
		return nil, err
	}
	view, err := a.Flat()
	if err != nil {
		return nil, err
	}
	if view, err = view.Compact(); err != nil {
		return nil, err
	}
	out, err := Make(OnesShape(a.NDim()), WithDevice(a.device))
	if err != nil {
		return nil, err
	}
	kernel(view.buf, out.buf, a.Size())
	return out, nil
}

// Reduce reduces along one axis, keeping it as a size-1 dimension.
// The axis is permuted to the end and the view compacted so the kernel
// reduces contiguous runs.
func (a *NDArray) Reduce(op ReduceOp, axis int) (*NDArray, error) {
	kernel, err := a.reduceKernel(op)
	if err != nil {
		return nil, err
	}
	if axis, err = NormalizeAxis(axis, a.NDim()); err != nil {
		return nil, err
	}
	order := make([]int, 0, a.NDim())
	for i := 0; i < a.NDim(); i++ {
		if i != axis {
			order = append(order, i)
		}
	}
	order = append(order, axis)
	view, err := a.Permute(order...)
	if err != nil {
		return nil, err
	}
	if view, err = view.Compact(); err != nil {
		return nil, err
	}
	outShape := a.shape.Clone()
	outShape[axis] = 1
	out, err := Make(outShape, WithDevice(a.device))
	if err != nil {
		return nil, err
	}
	kernel(view.buf, out.buf, a.shape[axis])
	return out, nil
}

// ReduceAxes reduces over the given axes. With no axes it behaves like
// ReduceAll. Unless keepDims is set, reduced axes are removed from the result.
func (a *NDArray) ReduceAxes(op ReduceOp, axes []int, keepDims bool) (*NDArray, error) {
	if len(axes) == 0 {
		return a.ReduceAll(op)
	}
	normalized, err := NormalizeAxes(axes, a.NDim())
	if err != nil {
		return nil, err
	}
	out := a
	for _, axis := range normalized {
		if out, err = out.Reduce(op, axis); err != nil {
			return nil, err
		}
	}
	if keepDims {
		return out, nil
	}
	return out.Reshape(dropAxes(a.shape, normalized))
}

// Sum reduces by addition over axes (all axes when none are given).
func (a *NDArray) Sum(axes ...int) (*NDArray, error) {
	return a.ReduceAxes(ReduceSum, axes, false)
}

// Max reduces by maximum over axes (all axes when none are given).
func (a *NDArray) Max(axes ...int) (*NDArray, error) {
	return a.ReduceAxes(ReduceMax, axes, false)
}

// NormalizeAxes maps axes into [0, ndim), rejects duplicates and returns
// them sorted.
func NormalizeAxes(axes []int, ndim int) ([]int, error) {
	normalized := make([]int, len(axes))
	seen := make(map[int]bool, len(axes))
	for i, axis := range axes {
		ax, err := NormalizeAxis(axis, ndim)
		if err != nil {
			return nil, err
		}
		if seen[ax] {
			return nil, errors.Wrapf(ErrShape, "axis %d repeated in %v", ax, axes)
		}
		seen[ax] = true
		normalized[i] = ax
	}
	sort.Ints(normalized)
	return normalized, nil
}

// dropAxes removes the sorted axes from shape.
func dropAxes(shape Shape, axes []int) Shape {
	out := make(Shape, 0, len(shape)-len(axes))
	next := 0
	for i, dim := range shape {
		if next < len(axes) && axes[next] == i {
			next++
			continue
		}
		out = append(out, dim)
	}
	return out
}
