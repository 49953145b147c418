package ndarray

import (
	"math"

	"github.com/pkg/errors"
)

// None marks an unset Slice bound.
const None = math.MinInt

// Slice selects a range of one dimension: elements Start, Start+Step, ...
// strictly below Stop. An unset Start is 0, an unset Stop is the dimension
// size and an unset Step is 1. A negative Start or Stop counts from the end of
// the dimension; a Stop past the end is clamped.
type Slice struct {
	Start, Stop, Step int

	single bool
}

// All selects a whole dimension.
func All() Slice { return Slice{Start: None, Stop: None, Step: None} }

// Range selects [start, stop) with step 1.
func Range(start, stop int) Slice { return Slice{Start: start, Stop: stop, Step: None} }

// StepRange selects [start, stop) with the given step.
func StepRange(start, stop, step int) Slice { return Slice{Start: start, Stop: stop, Step: step} }

// At selects a single index, keeping the dimension with size 1.
func At(i int) Slice { return Slice{Start: i, Stop: None, Step: None, single: true} }

type span struct{ start, stop, step int }

// resolve turns a Slice into explicit bounds for a dimension of size dim.
func (s Slice) resolve(dim, axis int) (span, error) {
	if s.single {
		i := s.Start
		if i < 0 {
			i += dim
		}
		if i < 0 || i >= dim {
			return span{}, errors.Wrapf(ErrShape, "index %d out of range for dimension %d of size %d", s.Start, axis, dim)
		}
		return span{i, i + 1, 1}, nil
	}
	start, stop, step := s.Start, s.Stop, s.Step
	if start == None {
		start = 0
	} else if start < 0 {
		start += dim
	}
	if stop == None {
		stop = dim
	} else if stop < 0 {
		stop += dim
	}
	if stop > dim {
		stop = dim
	}
	if step == None {
		step = 1
	}
	if step <= 0 {
		return span{}, errors.Wrapf(ErrUnsupported, "dimension %d: step %d (only positive steps are supported)", axis, step)
	}
	if start < 0 || stop <= start {
		return span{}, errors.Wrapf(ErrUnsupported, "dimension %d: empty or reversed range [%d:%d] (start must be below stop)",
			axis, s.Start, s.Stop)
	}
	return span{start, stop, step}, nil
}

// GetSlice returns a view selecting one Slice per dimension. Trailing
// dimensions without a Slice are taken whole. No data is copied.
func (a *NDArray) GetSlice(idx ...Slice) (*NDArray, error) {
	if len(idx) > a.NDim() {
		return nil, errors.Wrapf(ErrShape, "%d indices for %d-d array", len(idx), a.NDim())
	}
	shape := make(Shape, a.NDim())
	strides := make([]int, a.NDim())
	offset := a.offset
	for axis := 0; axis < a.NDim(); axis++ {
		s := All()
		if axis < len(idx) {
			s = idx[axis]
		}
		sp, err := s.resolve(a.shape[axis], axis)
		if err != nil {
			return nil, err
		}
		shape[axis] = (sp.stop - sp.start + sp.step - 1) / sp.step
		strides[axis] = a.strides[axis] * sp.step
		offset += sp.start * a.strides[axis]
	}
	return a.asStrided(shape, strides, offset), nil
}

// SetSlice writes src through the selected view into the backing buffer.
// src must have as many elements as the view; its layout is taken row-major.
// The write is visible through every array aliasing the buffer.
func (a *NDArray) SetSlice(src *NDArray, idx ...Slice) error {
	view, err := a.GetSlice(idx...)
	if err != nil {
		return err
	}
	if view.Size() != src.Size() {
		return errors.Wrapf(ErrShapeMismatch, "setting a %v slice from a %v array", view.shape, src.shape)
	}
	compact, err := src.Compact()
	if err != nil {
		return err
	}
	a.device.EwiseSetItem(compact.buf, view.buf, view.shape, view.strides, view.offset)
	return nil
}

// SetSliceScalar writes value into every element of the selected view.
func (a *NDArray) SetSliceScalar(value float32, idx ...Slice) error {
	view, err := a.GetSlice(idx...)
	if err != nil {
		return err
	}
	a.device.ScalarSetItem(value, view.buf, view.shape, view.strides, view.offset)
	return nil
}
