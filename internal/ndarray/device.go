package ndarray

import (
	"os"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// DataType identifies the element type of an array. The engine stores
// float32 only; the type exists so callers can check compatibility.
type DataType int

// Supported data types.
const (
	Float32 DataType = iota
)

// String returns a human-readable dtype name.
func (d DataType) String() string {
	switch d {
	case Float32:
		return "float32"
	default:
		return "unknown"
	}
}

// Buffer is a flat block of device memory. Buffers are shared by every view
// created from the array that allocated them; the garbage collector frees a
// buffer once the last view referencing it is gone.
type Buffer struct {
	data []float32
}

// NewBuffer wraps host memory as a Buffer. Only devices should call it.
func NewBuffer(data []float32) *Buffer {
	return &Buffer{data: data}
}

// Size returns the number of elements in the buffer.
func (b *Buffer) Size() int {
	return len(b.data)
}

// Data returns the backing slice.
// WARNING: Direct access to underlying memory shared by all views.
func (b *Buffer) Data() []float32 {
	return b.data
}

// Device is the kernel surface an array engine backend provides.
//
// Every elementwise and reduction kernel receives compact buffers; the array
// engine compacts views before dispatching. Kernels that take shape, strides
// and offset walk a strided view of their buffer argument.
type Device interface {
	// Name returns the short registry name, e.g. "cpu".
	Name() string
	// Enabled reports whether the device can run kernels in this process.
	Enabled() bool

	// Alloc returns a zeroed buffer of n elements.
	Alloc(n int) (*Buffer, error)
	Fill(out *Buffer, value float32)
	FromSlice(data []float32, out *Buffer)
	ToSlice(a *Buffer, shape Shape, strides []int, offset int) []float32

	// Compact copies the strided view of a into the compact buffer out.
	Compact(a, out *Buffer, shape Shape, strides []int, offset int)
	// EwiseSetItem writes the compact buffer a into the strided view of out.
	EwiseSetItem(a, out *Buffer, shape Shape, strides []int, offset int)
	// ScalarSetItem writes value into every element of the strided view of out.
	ScalarSetItem(value float32, out *Buffer, shape Shape, strides []int, offset int)

	EwiseAdd(a, b, out *Buffer)
	EwiseMul(a, b, out *Buffer)
	EwiseDiv(a, b, out *Buffer)
	EwiseMaximum(a, b, out *Buffer)
	EwiseEq(a, b, out *Buffer)
	EwiseGe(a, b, out *Buffer)

	ScalarAdd(a *Buffer, value float32, out *Buffer)
	ScalarMul(a *Buffer, value float32, out *Buffer)
	ScalarDiv(a *Buffer, value float32, out *Buffer)
	ScalarMaximum(a *Buffer, value float32, out *Buffer)
	ScalarEq(a *Buffer, value float32, out *Buffer)
	ScalarGe(a *Buffer, value float32, out *Buffer)
	ScalarPower(a *Buffer, exponent float32, out *Buffer)

	EwiseLog(a, out *Buffer)
	EwiseExp(a, out *Buffer)
	EwiseTanh(a, out *Buffer)

	// ReduceSum and ReduceMax reduce consecutive groups of reduceSize
	// elements of a into one element of out.
	ReduceSum(a, out *Buffer, reduceSize int)
	ReduceMax(a, out *Buffer, reduceSize int)

	// MatMul computes out = a @ b for compact row-major a (m×n) and b (n×p).
	MatMul(a, b, out *Buffer, m, n, p int)
}

// TiledMatMuler is implemented by devices with a blocked matmul kernel.
// Inputs are tiled: a has shape (m/T, n/T, T, T), b (n/T, p/T, T, T) and out
// (m/T, p/T, T, T), all compact, where T is TileSize.
type TiledMatMuler interface {
	TileSize() int
	MatMulTiled(a, b, out *Buffer, m, n, p int)
}

// Constructor creates a device instance.
type Constructor func() (Device, error)

// DeviceEnvVar names the environment variable selecting the default device.
const DeviceEnvVar = "MINIMA_DEVICE"

var (
	registryMu      sync.Mutex
	registry        = make(map[string]Constructor)
	firstRegistered string
)

// Register makes a device constructor available under name.
// Call it from the init function of the package implementing the device.
func Register(name string, constructor Constructor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if len(registry) == 0 {
		firstRegistered = name
	}
	registry[name] = constructor
	klog.V(1).Infof("ndarray: registered device %q", name)
}

// NewDevice constructs the device registered under name.
func NewDevice(name string) (Device, error) {
	registryMu.Lock()
	constructor, found := registry[name]
	registryMu.Unlock()
	if !found {
		return nil, errors.Errorf("no device registered as %q (registered: %v)", name, AllDevices())
	}
	device, err := constructor()
	if err != nil {
		return nil, errors.WithMessagef(err, "creating device %q", name)
	}
	if !device.Enabled() {
		return nil, errors.Errorf("device %q is not enabled", name)
	}
	return device, nil
}

// DefaultDevice returns the device named by MINIMA_DEVICE if set and
// registered, otherwise the first registered device.
func DefaultDevice() (Device, error) {
	if name, found := os.LookupEnv(DeviceEnvVar); found && name != "" {
		device, err := NewDevice(name)
		if err == nil {
			return device, nil
		}
		klog.Warningf("ndarray: ignoring %s=%q: %v", DeviceEnvVar, name, err)
	}
	registryMu.Lock()
	name := firstRegistered
	registryMu.Unlock()
	if name == "" {
		return nil, errors.New(`no registered devices; import the CPU backend with import _ "github.com/m0saan/minima/backend/cpu"`)
	}
	return NewDevice(name)
}

// AllDevices returns the sorted names of all registered devices.
func AllDevices() []string {
	registryMu.Lock()
	defer registryMu.Unlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
