// Package ndarray implements a dense, strided n-dimensional float32 array.
//
// An NDArray is a view (shape, strides, offset) over a shared Buffer owned by
// a Device. Reshape, Permute, BroadcastTo and GetSlice only rewrite view
// metadata; kernels that need linear memory compact their inputs first.
//
// Example:
//
//	a, _ := ndarray.FromSlice([]float32{1, 2, 3, 4, 5, 6}, ndarray.Shape{2, 3}, device)
//	t, _ := a.Permute(1, 0) // (3, 2) view, no copy
//	c, _ := t.Compact()     // materialized row-major copy
package ndarray

import (
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// NDArray is a strided view over a device buffer.
type NDArray struct {
	shape   Shape
	strides []int
	offset  int
	device  Device
	buf     *Buffer
}

// MakeOption configures Make.
type MakeOption func(*makeOptions)

type makeOptions struct {
	strides []int
	device  Device
	offset  int
	buf     *Buffer
}

// WithStrides sets explicit element strides. Defaults to compact strides.
func WithStrides(strides []int) MakeOption {
	return func(o *makeOptions) { o.strides = strides }
}

// WithDevice sets the device. Defaults to DefaultDevice().
func WithDevice(device Device) MakeOption {
	return func(o *makeOptions) { o.device = device }
}

// WithOffset sets the element offset into the buffer.
func WithOffset(offset int) MakeOption {
	return func(o *makeOptions) { o.offset = offset }
}

// WithBuffer makes the array a view over an existing buffer instead of
// allocating a new one.
func WithBuffer(buf *Buffer) MakeOption {
	return func(o *makeOptions) { o.buf = buf }
}

// Make creates an array of the given shape. Without WithBuffer a new zeroed
// buffer of shape.NumElements() elements is allocated on the device.
func Make(shape Shape, opts ...MakeOption) (*NDArray, error) {
	options := &makeOptions{}
	for _, opt := range opts {
		opt(options)
	}
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	strides := options.strides
	if strides == nil {
		strides = CompactStrides(shape)
	}
	if len(strides) != len(shape) {
		return nil, errors.Wrapf(ErrShape, "%d strides given for %d-d shape %v", len(strides), len(shape), shape)
	}
	for i, s := range strides {
		if s < 0 {
			return nil, errors.Wrapf(ErrUnsupported, "negative stride %d at dimension %d", s, i)
		}
	}
	if options.offset < 0 {
		return nil, errors.Wrapf(ErrShape, "negative offset %d", options.offset)
	}
	device := options.device
	if device == nil {
		var err error
		if device, err = DefaultDevice(); err != nil {
			return nil, err
		}
	}
	buf := options.buf
	if buf == nil {
		var err error
		if buf, err = device.Alloc(shape.NumElements()); err != nil {
			return nil, err
		}
	}
	a := &NDArray{
		shape:   shape.Clone(),
		strides: append([]int(nil), strides...),
		offset:  options.offset,
		device:  device,
		buf:     buf,
	}
	if last := a.lastIndex(); last >= buf.Size() {
		return nil, errors.Wrapf(ErrShape, "view %v with strides %v and offset %d reaches element %d of a %d-element buffer",
			shape, strides, options.offset, last, buf.Size())
	}
	return a, nil
}

// FromSlice copies data into a new compact array on device (nil = default device).
func FromSlice(data []float32, shape Shape, device Device) (*NDArray, error) {
	if shape.NumElements() != len(data) {
		return nil, errors.Wrapf(ErrShape, "shape %v requires %d elements, got %d", shape, shape.NumElements(), len(data))
	}
	a, err := Make(shape, WithDevice(device))
	if err != nil {
		return nil, err
	}
	a.device.FromSlice(data, a.buf)
	return a, nil
}

// Full returns a compact array filled with value.
func Full(shape Shape, value float32, device Device) (*NDArray, error) {
	a, err := Make(shape, WithDevice(device))
	if err != nil {
		return nil, err
	}
	a.device.Fill(a.buf, value)
	return a, nil
}

// Zeros returns a compact array of zeros.
func Zeros(shape Shape, device Device) (*NDArray, error) {
	return Full(shape, 0, device)
}

// Ones returns a compact array of ones.
func Ones(shape Shape, device Device) (*NDArray, error) {
	return Full(shape, 1, device)
}

// Shape returns the array's shape. The result must not be modified.
func (a *NDArray) Shape() Shape { return a.shape }

// Strides returns the element strides. The result must not be modified.
func (a *NDArray) Strides() []int { return a.strides }

// Offset returns the element offset into the buffer.
func (a *NDArray) Offset() int { return a.offset }

// Device returns the device holding the buffer.
func (a *NDArray) Device() Device { return a.device }

// DType returns the element type.
func (a *NDArray) DType() DataType { return Float32 }

// NDim returns the number of dimensions.
func (a *NDArray) NDim() int { return len(a.shape) }

// Size returns the number of elements.
func (a *NDArray) Size() int { return a.shape.NumElements() }

// Buffer returns the shared backing buffer.
func (a *NDArray) Buffer() *Buffer { return a.buf }

// IsCompact reports whether the array uses its whole buffer in row-major order.
func (a *NDArray) IsCompact() bool {
	return stridesEqual(a.strides, CompactStrides(a.shape)) && a.Size() == a.buf.Size()
}

// isContiguous reports whether elements are laid out row-major without gaps
// starting at offset. Strides of size-1 dimensions are ignored.
func (a *NDArray) isContiguous() bool {
	compact := CompactStrides(a.shape)
	for i, dim := range a.shape {
		if dim != 1 && a.strides[i] != compact[i] {
			return false
		}
	}
	return true
}

func (a *NDArray) lastIndex() int {
	last := a.offset
	for i, dim := range a.shape {
		last += (dim - 1) * a.strides[i]
	}
	return last
}

// asStrided returns a view over the same buffer with new metadata.
func (a *NDArray) asStrided(shape Shape, strides []int, offset int) *NDArray {
	return &NDArray{
		shape:   shape,
		strides: strides,
		offset:  offset,
		device:  a.device,
		buf:     a.buf,
	}
}

// Compact returns the array itself if already compact, otherwise a compact copy.
func (a *NDArray) Compact() (*NDArray, error) {
	if a.IsCompact() {
		return a, nil
	}
	out, err := Make(a.shape, WithDevice(a.device))
	if err != nil {
		return nil, err
	}
	klog.V(3).Infof("ndarray: compacting %v view (strides %v, offset %d)", a.shape, a.strides, a.offset)
	a.device.Compact(a.buf, out.buf, a.shape, a.strides, a.offset)
	return out, nil
}

// Reshape returns an array with the same elements and a new shape.
// Row-major contiguous arrays are reshaped as views; any other layout is
// compacted first.
func (a *NDArray) Reshape(newShape Shape) (*NDArray, error) {
	if err := newShape.Validate(); err != nil {
		return nil, err
	}
	if newShape.NumElements() != a.Size() {
		return nil, errors.Wrapf(ErrShape, "cannot reshape %v (%d elements) into %v (%d elements)",
			a.shape, a.Size(), newShape, newShape.NumElements())
	}
	src := a
	if !a.isContiguous() {
		var err error
		if src, err = a.Compact(); err != nil {
			return nil, err
		}
	}
	return src.asStrided(newShape.Clone(), CompactStrides(newShape), src.offset), nil
}

// Flat returns a 1-d view (or compact copy) of the array.
func (a *NDArray) Flat() (*NDArray, error) {
	return a.Reshape(Shape{a.Size()})
}

// Permute reorders dimensions without copying: result dim i is source dim axes[i].
// For a 2-d array, Permute(1, 0) is the transpose.
func (a *NDArray) Permute(axes ...int) (*NDArray, error) {
	if len(axes) != a.NDim() {
		return nil, errors.Wrapf(ErrShape, "permutation %v has %d axes for %d-d array", axes, len(axes), a.NDim())
	}
	seen := make([]bool, a.NDim())
	shape := make(Shape, len(axes))
	strides := make([]int, len(axes))
	for i, axis := range axes {
		ax, err := NormalizeAxis(axis, a.NDim())
		if err != nil {
			return nil, err
		}
		if seen[ax] {
			return nil, errors.Wrapf(ErrShape, "axis %d repeated in permutation %v", ax, axes)
		}
		seen[ax] = true
		shape[i] = a.shape[ax]
		strides[i] = a.strides[ax]
	}
	return a.asStrided(shape, strides, a.offset), nil
}

// SwapAxes exchanges two dimensions without copying.
func (a *NDArray) SwapAxes(axis1, axis2 int) (*NDArray, error) {
	i, err := NormalizeAxis(axis1, a.NDim())
	if err != nil {
		return nil, err
	}
	j, err := NormalizeAxis(axis2, a.NDim())
	if err != nil {
		return nil, err
	}
	order := make([]int, a.NDim())
	for k := range order {
		order[k] = k
	}
	order[i], order[j] = order[j], order[i]
	return a.Permute(order...)
}

// BroadcastTo returns a view of the array expanded to newShape. Missing leading
// dimensions are treated as size 1; every dimension must either match or be
// 1 in the source, and broadcast dimensions get stride 0.
func (a *NDArray) BroadcastTo(newShape Shape) (*NDArray, error) {
	if err := newShape.Validate(); err != nil {
		return nil, err
	}
	if len(newShape) < a.NDim() {
		return nil, errors.Wrapf(ErrBroadcast, "cannot broadcast %v to lower-rank %v", a.shape, newShape)
	}
	pad := len(newShape) - a.NDim()
	strides := make([]int, len(newShape))
	for i := range newShape {
		if i < pad {
			strides[i] = 0
			continue
		}
		oldDim := a.shape[i-pad]
		switch {
		case oldDim == newShape[i]:
			strides[i] = a.strides[i-pad]
		case oldDim == 1:
			strides[i] = 0
		default:
			return nil, errors.Wrapf(ErrBroadcast, "cannot broadcast %v to %v (dimension %d: %d vs %d)",
				a.shape, newShape, i, oldDim, newShape[i])
		}
	}
	return a.asStrided(newShape.Clone(), strides, a.offset), nil
}

// ToSlice returns a row-major copy of the array's elements.
func (a *NDArray) ToSlice() []float32 {
	return a.device.ToSlice(a.buf, a.shape, a.strides, a.offset)
}

// Fill overwrites every element visible through the view with value.
func (a *NDArray) Fill(value float32) {
	if a.IsCompact() {
		a.device.Fill(a.buf, value)
		return
	}
	a.device.ScalarSetItem(value, a.buf, a.shape, a.strides, a.offset)
}

// To returns the array on device, copying through host memory when the
// device differs.
func (a *NDArray) To(device Device) (*NDArray, error) {
	if device.Name() == a.device.Name() {
		return a, nil
	}
	return FromSlice(a.ToSlice(), a.shape, device)
}

// Copy returns a compact copy that never aliases the receiver's buffer.
func (a *NDArray) Copy() (*NDArray, error) {
	out, err := Make(a.shape, WithDevice(a.device))
	if err != nil {
		return nil, err
	}
	a.device.Compact(a.buf, out.buf, a.shape, a.strides, a.offset)
	return out, nil
}
