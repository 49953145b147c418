// Package cpu implements the CPU device for the strided array engine.
//
// Importing the package registers the device as "cpu" with the ndarray
// device registry.
package cpu

import (
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"github.com/m0saan/minima/internal/ndarray"
	"github.com/m0saan/minima/internal/parallel"
)

// Name is the registry name of the CPU device.
const Name = "cpu"

// TileSize is the edge length of the square tiles used by MatMulTiled.
const TileSize = 8

// DefaultMaxElements bounds a single allocation (4 GiB of float32).
const DefaultMaxElements = 1 << 30

func init() {
	ndarray.Register(Name, func() (ndarray.Device, error) {
		return New(), nil
	})
}

// CPUBackend implements ndarray.Device on host memory.
type CPUBackend struct {
	maxElements int
	parallel    parallel.Config
}

// Option configures a CPUBackend.
type Option func(*CPUBackend)

// WithMaxElements caps the number of elements a single Alloc may request.
func WithMaxElements(n int) Option {
	return func(cpu *CPUBackend) {
		cpu.maxElements = n
	}
}

// WithParallel sets how reductions and the tiled matmul spread work over
// goroutines. The default is parallel.DefaultConfig().
func WithParallel(cfg parallel.Config) Option {
	return func(cpu *CPUBackend) {
		cpu.parallel = cfg
	}
}

// New creates a new CPU backend.
func New(opts ...Option) *CPUBackend {
	cpu := &CPUBackend{
		maxElements: DefaultMaxElements,
		parallel:    parallel.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(cpu)
	}
	return cpu
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return Name
}

// Enabled reports that the CPU is always available.
func (cpu *CPUBackend) Enabled() bool {
	return true
}

// TileSize returns the tile edge used by MatMulTiled.
func (cpu *CPUBackend) TileSize() int {
	return TileSize
}

// Alloc returns a zeroed buffer of n float32 elements.
func (cpu *CPUBackend) Alloc(n int) (*ndarray.Buffer, error) {
	if n < 0 {
		return nil, errors.Wrapf(ndarray.ErrAllocation, "cpu: negative allocation size %d", n)
	}
	if n > cpu.maxElements {
		return nil, errors.Wrapf(ndarray.ErrAllocation, "cpu: cannot allocate %d elements (%s), limit is %s",
			n, humanize.IBytes(uint64(n)*4), humanize.IBytes(uint64(cpu.maxElements)*4))
	}
	return ndarray.NewBuffer(make([]float32, n)), nil
}

// Fill sets every element of out to value.
func (cpu *CPUBackend) Fill(out *ndarray.Buffer, value float32) {
	data := out.Data()
	for i := range data {
		data[i] = value
	}
}

// FromSlice copies host data into out.
func (cpu *CPUBackend) FromSlice(data []float32, out *ndarray.Buffer) {
	copy(out.Data(), data)
}

// ToSlice copies the strided view of a into a new row-major slice.
func (cpu *CPUBackend) ToSlice(a *ndarray.Buffer, shape ndarray.Shape, strides []int, offset int) []float32 {
	out := make([]float32, 0, shape.NumElements())
	src := a.Data()
	walk(shape, strides, offset, func(i int) {
		out = append(out, src[i])
	})
	return out
}
