package cpu

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/m0saan/minima/internal/parallel"
)

// naiveMatMul is the reference triple loop.
func naiveMatMul(a, b []float32, m, n, p int) []float32 {
	out := make([]float32, m*p)
	for i := 0; i < m; i++ {
		for j := 0; j < p; j++ {
			var sum float32
			for k := 0; k < n; k++ {
				sum += a[i*n+k] * b[k*p+j]
			}
			out[i*p+j] = sum
		}
	}
	return out
}

// tile lays out a row-major (rows, cols) matrix as (rows/T, cols/T, T, T).
func tile(x []float32, rows, cols int) []float32 {
	out := make([]float32, 0, len(x))
	for bi := 0; bi < rows/TileSize; bi++ {
		for bj := 0; bj < cols/TileSize; bj++ {
			for i := 0; i < TileSize; i++ {
				for j := 0; j < TileSize; j++ {
					out = append(out, x[(bi*TileSize+i)*cols+bj*TileSize+j])
				}
			}
		}
	}
	return out
}

func randomSlice(rng *rand.Rand, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = rng.Float32()*2 - 1
	}
	return out
}

// TestCPUBackend_MatMul tests the SGEMM path against a naive product.
func TestCPUBackend_MatMul(t *testing.T) {
	backend := New()

	out := buf(make([]float32, 4)...)
	backend.MatMul(buf(1, 2, 3, 4, 5, 6), buf(7, 8, 9, 10, 11, 12), out, 2, 3, 2)
	assert.Equal(t, []float32{58, 64, 139, 154}, out.Data())

	rng := rand.New(rand.NewSource(1))
	m, n, p := 5, 7, 3
	a, b := randomSlice(rng, m*n), randomSlice(rng, n*p)
	out = buf(make([]float32, m*p)...)
	backend.MatMul(buf(a...), buf(b...), out, m, n, p)
	assert.InDeltaSlice(t, naiveMatMul(a, b, m, n, p), out.Data(), 1e-5)
}

// TestCPUBackend_MatMulTiled tests the blocked kernel on tiled operands.
func TestCPUBackend_MatMulTiled(t *testing.T) {
	backend := New()
	rng := rand.New(rand.NewSource(2))
	m, n, p := 16, 24, 8
	a, b := randomSlice(rng, m*n), randomSlice(rng, n*p)

	out := buf(make([]float32, m*p)...)
	backend.MatMulTiled(buf(tile(a, m, n)...), buf(tile(b, n, p)...), out, m, n, p)

	assert.InDeltaSlice(t, tile(naiveMatMul(a, b, m, n, p), m, p), out.Data(), 1e-5)
}

// TestCPUBackend_ParallelKernels checks that splitting work across
// goroutines does not change results.
func TestCPUBackend_ParallelKernels(t *testing.T) {
	seq := New(WithParallel(parallel.Sequential()))
	par := New(WithParallel(parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 1}))
	rng := rand.New(rand.NewSource(3))

	m, n, p := 32, 16, 40
	a, b := tile(randomSlice(rng, m*n), m, n), tile(randomSlice(rng, n*p), n, p)
	want, got := buf(make([]float32, m*p)...), buf(make([]float32, m*p)...)
	seq.MatMulTiled(buf(a...), buf(b...), want, m, n, p)
	par.MatMulTiled(buf(a...), buf(b...), got, m, n, p)
	assert.Equal(t, want.Data(), got.Data())

	x := randomSlice(rng, 300*7)
	for _, reduce := range []func(*CPUBackend, []float32, []float32){
		func(cpu *CPUBackend, in, out []float32) { cpu.ReduceSum(buf(in...), buf(out...), 7) },
		func(cpu *CPUBackend, in, out []float32) { cpu.ReduceMax(buf(in...), buf(out...), 7) },
	} {
		want, got := make([]float32, 300), make([]float32, 300)
		reduce(seq, x, want)
		reduce(par, x, got)
		assert.Equal(t, want, got)
	}
}
