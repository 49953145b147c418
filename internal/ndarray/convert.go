package ndarray

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ToDense exports a 2-d array as a gonum dense matrix (float64 copy).
func (a *NDArray) ToDense() (*mat.Dense, error) {
	if a.NDim() != 2 {
		return nil, errors.Wrapf(ErrUnsupported, "dense export needs a 2-d array, got %v", a.shape)
	}
	values := a.ToSlice()
	data := make([]float64, len(values))
	for i, v := range values {
		data[i] = float64(v)
	}
	return mat.NewDense(a.shape[0], a.shape[1], data), nil
}

// FromDense copies any gonum matrix into a new (rows, cols) array.
func FromDense(m mat.Matrix, device Device) (*NDArray, error) {
	rows, cols := m.Dims()
	data := make([]float32, 0, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			data = append(data, float32(m.At(i, j)))
		}
	}
	return FromSlice(data, Shape{rows, cols}, device)
}

// String formats the elements as nested brackets, e.g. [[1 2] [3 4]].
func (a *NDArray) String() string {
	values := a.ToSlice()
	if a.NDim() == 0 {
		return fmt.Sprint(values[0])
	}
	var sb strings.Builder
	var pos int
	var write func(dim int)
	write = func(dim int) {
		sb.WriteByte('[')
		for i := 0; i < a.shape[dim]; i++ {
			if i > 0 {
				sb.WriteByte(' ')
			}
			if dim == a.NDim()-1 {
				fmt.Fprint(&sb, values[pos])
				pos++
			} else {
				write(dim + 1)
			}
		}
		sb.WriteByte(']')
	}
	write(0)
	return sb.String()
}
