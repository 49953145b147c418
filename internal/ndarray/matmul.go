package ndarray

import (
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// MatMul returns the matrix product of two 2-d arrays: (m, n) @ (n, p) -> (m, p).
//
// When the device implements TiledMatMuler and m, n and p are all multiples
// of its tile size, both operands are re-laid out as grids of tiles, multiplied
// tile by tile and the result is untiled. Otherwise the plain kernel runs on
// compacted operands.
func (a *NDArray) MatMul(b *NDArray) (*NDArray, error) {
	if a.NDim() != 2 || b.NDim() != 2 {
		return nil, errors.Wrapf(ErrUnsupported, "matmul: only 2-d operands are supported, got %v @ %v", a.shape, b.shape)
	}
	if a.shape[1] != b.shape[0] {
		return nil, errors.Wrapf(ErrShapeMismatch, "matmul: inner dimensions differ in %v @ %v", a.shape, b.shape)
	}
	if a.device.Name() != b.device.Name() {
		return nil, errors.Wrapf(ErrUnsupported, "matmul: operands on devices %q and %q", a.device.Name(), b.device.Name())
	}
	m, n, p := a.shape[0], a.shape[1], b.shape[1]

	if tiled, ok := a.device.(TiledMatMuler); ok {
		tile := tiled.TileSize()
		if tile > 0 && m%tile == 0 && n%tile == 0 && p%tile == 0 {
			return a.matmulTiled(b, tiled, m, n, p)
		}
	}

	ac, err := a.Compact()
	if err != nil {
		return nil, err
	}
	bc, err := b.Compact()
	if err != nil {
		return nil, err
	}
	out, err := Make(Shape{m, p}, WithDevice(a.device))
	if err != nil {
		return nil, err
	}
	a.device.MatMul(ac.buf, bc.buf, out.buf, m, n, p)
	return out, nil
}

func (a *NDArray) matmulTiled(b *NDArray, device TiledMatMuler, m, n, p int) (*NDArray, error) {
	tile := device.TileSize()
	klog.V(3).Infof("ndarray: tiled matmul (%d, %d) @ (%d, %d) with tile %d", m, n, n, p, tile)
	ta, err := tileMatrix(a, tile)
	if err != nil {
		return nil, err
	}
	tb, err := tileMatrix(b, tile)
	if err != nil {
		return nil, err
	}
	out, err := Make(Shape{m / tile, p / tile, tile, tile}, WithDevice(a.device))
	if err != nil {
		return nil, err
	}
	device.MatMulTiled(ta.buf, tb.buf, out.buf, m, n, p)
	untiled, err := out.Permute(0, 2, 1, 3)
	if err != nil {
		return nil, err
	}
	if untiled, err = untiled.Compact(); err != nil {
		return nil, err
	}
	return untiled.Reshape(Shape{m, p})
}

// tileMatrix returns a compact (rows/T, cols/T, T, T) copy of a 2-d matrix.
func tileMatrix(x *NDArray, tile int) (*NDArray, error) {
	xc, err := x.Compact()
	if err != nil {
		return nil, err
	}
	rows, cols := xc.shape[0], xc.shape[1]
	view := xc.asStrided(
		Shape{rows / tile, cols / tile, tile, tile},
		[]int{cols * tile, tile, cols, 1},
		0,
	)
	return view.Copy()
}
