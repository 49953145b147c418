package cpu

import (
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"

	"github.com/m0saan/minima/internal/ndarray"
	"github.com/m0saan/minima/internal/parallel"
)

// MatMul computes out = a @ b for row-major a (m×n) and b (n×p) via SGEMM.
func (cpu *CPUBackend) MatMul(a, b, out *ndarray.Buffer, m, n, p int) {
	blas32.Gemm(blas.NoTrans, blas.NoTrans, 1,
		blas32.General{Rows: m, Cols: n, Stride: n, Data: a.Data()},
		blas32.General{Rows: n, Cols: p, Stride: p, Data: b.Data()},
		0,
		blas32.General{Rows: m, Cols: p, Stride: p, Data: out.Data()},
	)
}

// MatMulTiled multiplies tiled operands: a is (m/T, n/T, T, T), b is
// (n/T, p/T, T, T) and out is (m/T, p/T, T, T), all compact.
func (cpu *CPUBackend) MatMulTiled(a, b, out *ndarray.Buffer, m, n, p int) {
	const tt = TileSize * TileSize
	x, y, dst := a.Data(), b.Data(), out.Data()
	for i := range dst {
		dst[i] = 0
	}
	rowTiles, innerTiles, colTiles := m/TileSize, n/TileSize, p/TileSize
	// Each output tile is owned by exactly one iteration.
	parallel.ForGrid(rowTiles, colTiles, func(i, j int) {
		o := dst[(i*colTiles+j)*tt : (i*colTiles+j+1)*tt]
		for k := 0; k < innerTiles; k++ {
			alignedDot(
				x[(i*innerTiles+k)*tt:(i*innerTiles+k+1)*tt],
				y[(k*colTiles+j)*tt:(k*colTiles+j+1)*tt],
				o,
			)
		}
	}, cpu.parallel)
}

// alignedDot accumulates the product of two T×T tiles into out.
func alignedDot(a, b, out []float32) {
	for i := 0; i < TileSize; i++ {
		row := out[i*TileSize : (i+1)*TileSize]
		for k := 0; k < TileSize; k++ {
			aik := a[i*TileSize+k]
			bk := b[k*TileSize : (k+1)*TileSize]
			for j := range row {
				row[j] += aik * bk[j]
			}
		}
	}
}
