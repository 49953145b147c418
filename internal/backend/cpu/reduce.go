package cpu

import (
	"github.com/chewxy/math32"

	"github.com/m0saan/minima/internal/ndarray"
	"github.com/m0saan/minima/internal/parallel"
)

// ReduceSum sums consecutive groups of reduceSize elements of a into out.
func (cpu *CPUBackend) ReduceSum(a, out *ndarray.Buffer, reduceSize int) {
	src, dst := a.Data(), out.Data()
	parallel.For(len(dst), func(i int) {
		var sum float32
		for _, v := range src[i*reduceSize : (i+1)*reduceSize] {
			sum += v
		}
		dst[i] = sum
	}, cpu.parallel)
}

// ReduceMax takes the maximum of consecutive groups of reduceSize elements.
func (cpu *CPUBackend) ReduceMax(a, out *ndarray.Buffer, reduceSize int) {
	src, dst := a.Data(), out.Data()
	parallel.For(len(dst), func(i int) {
		group := src[i*reduceSize : (i+1)*reduceSize]
		best := group[0]
		for _, v := range group[1:] {
			best = math32.Max(best, v)
		}
		dst[i] = best
	}, cpu.parallel)
}
