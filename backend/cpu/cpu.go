// Copyright 2025 The Minima Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/m0saan/minima/internal/backend/cpu"
	"github.com/m0saan/minima/ndarray"
)

// Backend represents the CPU device implementation.
type Backend = internalcpu.CPUBackend

// Option configures New.
type Option = internalcpu.Option

// Name is the registry name of the CPU device.
const Name = internalcpu.Name

// Compile-time checks that Backend is a device with a tiled matmul kernel.
var (
	_ ndarray.Device        = (*Backend)(nil)
	_ ndarray.TiledMatMuler = (*Backend)(nil)
)

// New creates a new CPU device.
//
// Example:
//
//	device := cpu.New(cpu.WithMaxElements(1 << 20))
//	a, _ := ndarray.Zeros(ndarray.Shape{2, 3}, device)
func New(opts ...Option) *Backend {
	return internalcpu.New(opts...)
}

// WithMaxElements caps the number of elements a single allocation may hold.
func WithMaxElements(n int) Option {
	return internalcpu.WithMaxElements(n)
}
