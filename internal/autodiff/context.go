// Package autodiff implements the computation graph and reverse-mode
// automatic differentiation on top of the strided array engine.
//
// Every Tensor belongs to a Context, which carries the configuration that
// would otherwise be global: the device new leaves are placed on, whether
// operator results are realized eagerly or lazily, and the counter issuing
// node ids.
//
// Example:
//
//	ctx, _ := autodiff.NewContext()
//	x, _ := ctx.FromSlice([]float32{1, 2, 3}, ndarray.Shape{3})
//	y, _ := x.Mul(x)
//	loss, _ := y.Sum()
//	_ = loss.Backward(nil)
//	grad, _ := x.Grad().ToSlice() // [2 4 6]
package autodiff

import (
	"sync/atomic"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/m0saan/minima/internal/ndarray"
)

// ErrInvalidOperatorUse reports a malformed graph: wrong operator arity,
// a gradient returning the wrong number of results, or mixing contexts.
var ErrInvalidOperatorUse = errors.New("invalid operator use")

// Context owns the settings shared by all tensors of one graph.
type Context struct {
	lazy   bool
	device ndarray.Device
	nextID atomic.Int64
}

// ContextOption configures NewContext.
type ContextOption func(*contextOptions)

type contextOptions struct {
	lazy       bool
	device     ndarray.Device
	deviceName string
}

// WithLazy defers realization of operator results until their data is read.
func WithLazy(lazy bool) ContextOption {
	return func(o *contextOptions) { o.lazy = lazy }
}

// WithDevice places new leaves on device.
func WithDevice(device ndarray.Device) ContextOption {
	return func(o *contextOptions) { o.device = device }
}

// WithDeviceName places new leaves on the registered device called name.
// It is ignored when WithDevice is also given.
func WithDeviceName(name string) ContextOption {
	return func(o *contextOptions) { o.deviceName = name }
}

// NewContext creates a context. Without a device option the registry's
// default device is used (see ndarray.DefaultDevice).
func NewContext(opts ...ContextOption) (*Context, error) {
	options := &contextOptions{}
	for _, opt := range opts {
		opt(options)
	}
	device := options.device
	if device == nil {
		var err error
		if options.deviceName != "" {
			device, err = ndarray.NewDevice(options.deviceName)
		} else {
			device, err = ndarray.DefaultDevice()
		}
		if err != nil {
			return nil, errors.WithMessage(err, "autodiff: creating context")
		}
	}
	klog.V(1).Infof("autodiff: new context on device %q (lazy=%t)", device.Name(), options.lazy)
	return &Context{lazy: options.lazy, device: device}, nil
}

// Lazy reports whether operator results are realized on first read.
func (c *Context) Lazy() bool { return c.lazy }

// Device returns the device new leaves are placed on.
func (c *Context) Device() ndarray.Device { return c.device }

func (c *Context) newID() int64 {
	return c.nextID.Add(1)
}
