// Copyright 2025 The Minima Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package ndarray provides strided n-dimensional float32 arrays.
//
// An NDArray is a view (shape, strides, offset) over a shared device
// buffer. Reshape of a compact array, Permute, BroadcastTo and GetSlice
// return views without copying; Compact materializes a view into a fresh
// row-major buffer.
//
// Example:
//
//	import (
//	    "github.com/m0saan/minima/backend/cpu"
//	    "github.com/m0saan/minima/ndarray"
//	)
//
//	func main() {
//	    a, _ := ndarray.FromSlice([]float32{1, 2, 3, 4, 5, 6}, ndarray.Shape{2, 3}, cpu.New())
//	    t, _ := a.Permute(1, 0)         // view, shape (3, 2)
//	    row, _ := a.GetSlice(ndarray.At(1), ndarray.All())
//	}
package ndarray

import (
	"gonum.org/v1/gonum/mat"

	"github.com/m0saan/minima/internal/ndarray"
)

// NDArray is a strided view over a device buffer.
type NDArray = ndarray.NDArray

// Shape lists the size of each dimension.
type Shape = ndarray.Shape

// DataType identifies the element type of an array.
type DataType = ndarray.DataType

// Float32 is the only element type the engine stores.
const Float32 = ndarray.Float32

// Device is the kernel set an array's buffer lives on.
type Device = ndarray.Device

// TiledMatMuler is implemented by devices with a blocked matmul kernel.
type TiledMatMuler = ndarray.TiledMatMuler

// Buffer is a flat block of device memory shared by views.
type Buffer = ndarray.Buffer

// Slice selects a range along one axis in GetSlice and SetSlice.
type Slice = ndarray.Slice

// None marks an omitted Slice bound.
const None = ndarray.None

// ReduceOp selects the reduction performed by Reduce.
type ReduceOp = ndarray.ReduceOp

// Reductions.
const (
	ReduceSum = ndarray.ReduceSum
	ReduceMax = ndarray.ReduceMax
)

// MakeOption configures Make.
type MakeOption = ndarray.MakeOption

// DeviceEnvVar names the environment variable read by DefaultDevice.
const DeviceEnvVar = ndarray.DeviceEnvVar

// Errors returned by array operations. Test with errors.Is.
var (
	ErrShape         = ndarray.ErrShape
	ErrShapeMismatch = ndarray.ErrShapeMismatch
	ErrBroadcast     = ndarray.ErrBroadcast
	ErrUnsupported   = ndarray.ErrUnsupported
	ErrAllocation    = ndarray.ErrAllocation
)

// Make allocates an array, or builds a view when WithBuffer is given.
func Make(shape Shape, opts ...MakeOption) (*NDArray, error) {
	return ndarray.Make(shape, opts...)
}

// WithStrides sets explicit strides.
func WithStrides(strides []int) MakeOption {
	return ndarray.WithStrides(strides)
}

// WithDevice selects the device to allocate on.
func WithDevice(device Device) MakeOption {
	return ndarray.WithDevice(device)
}

// WithOffset sets the offset of the first element.
func WithOffset(offset int) MakeOption {
	return ndarray.WithOffset(offset)
}

// WithBuffer makes the array a view over an existing buffer.
func WithBuffer(buf *Buffer) MakeOption {
	return ndarray.WithBuffer(buf)
}

// FromSlice copies row-major data into a new compact array.
func FromSlice(data []float32, shape Shape, device Device) (*NDArray, error) {
	return ndarray.FromSlice(data, shape, device)
}

// FromDense copies a gonum matrix into a new 2-d array.
func FromDense(m mat.Matrix, device Device) (*NDArray, error) {
	return ndarray.FromDense(m, device)
}

// Full returns a compact array filled with value.
func Full(shape Shape, value float32, device Device) (*NDArray, error) {
	return ndarray.Full(shape, value, device)
}

// Zeros returns a compact array of zeros.
func Zeros(shape Shape, device Device) (*NDArray, error) {
	return ndarray.Zeros(shape, device)
}

// Ones returns a compact array of ones.
func Ones(shape Shape, device Device) (*NDArray, error) {
	return ndarray.Ones(shape, device)
}

// All selects a whole axis.
func All() Slice { return ndarray.All() }

// Range selects [start, stop) with step 1.
func Range(start, stop int) Slice { return ndarray.Range(start, stop) }

// StepRange selects [start, stop) with the given step.
func StepRange(start, stop, step int) Slice { return ndarray.StepRange(start, stop, step) }

// At selects a single index, keeping the axis with size 1.
func At(i int) Slice { return ndarray.At(i) }

// NewDevice constructs the registered device with the given name.
func NewDevice(name string) (Device, error) {
	return ndarray.NewDevice(name)
}

// DefaultDevice returns the device named by DeviceEnvVar if set, otherwise
// the first registered device.
func DefaultDevice() (Device, error) {
	return ndarray.DefaultDevice()
}

// AllDevices lists the registered device names.
func AllDevices() []string {
	return ndarray.AllDevices()
}
