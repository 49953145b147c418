package cpu

import "github.com/m0saan/minima/internal/ndarray"

// walk calls fn with the buffer index of every element of a strided view,
// in row-major order of shape.
func walk(shape ndarray.Shape, strides []int, offset int, fn func(i int)) {
	n := shape.NumElements()
	idx := make([]int, len(shape))
	pos := offset
	for k := 0; k < n; k++ {
		fn(pos)
		for d := len(shape) - 1; d >= 0; d-- {
			idx[d]++
			pos += strides[d]
			if idx[d] < shape[d] {
				break
			}
			pos -= idx[d] * strides[d]
			idx[d] = 0
		}
	}
}

// Compact copies the strided view of a into the compact buffer out.
func (cpu *CPUBackend) Compact(a, out *ndarray.Buffer, shape ndarray.Shape, strides []int, offset int) {
	src, dst := a.Data(), out.Data()
	cnt := 0
	walk(shape, strides, offset, func(i int) {
		dst[cnt] = src[i]
		cnt++
	})
}

// EwiseSetItem writes the compact buffer a into the strided view of out.
func (cpu *CPUBackend) EwiseSetItem(a, out *ndarray.Buffer, shape ndarray.Shape, strides []int, offset int) {
	src, dst := a.Data(), out.Data()
	cnt := 0
	walk(shape, strides, offset, func(i int) {
		dst[i] = src[cnt]
		cnt++
	})
}

// ScalarSetItem writes value into every element of the strided view of out.
func (cpu *CPUBackend) ScalarSetItem(value float32, out *ndarray.Buffer, shape ndarray.Shape, strides []int, offset int) {
	dst := out.Data()
	walk(shape, strides, offset, func(i int) {
		dst[i] = value
	})
}
