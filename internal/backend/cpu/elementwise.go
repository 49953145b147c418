package cpu

import (
	"github.com/chewxy/math32"

	"github.com/m0saan/minima/internal/ndarray"
)

func ewise(a, b, out *ndarray.Buffer, fn func(x, y float32) float32) {
	x, y, dst := a.Data(), b.Data(), out.Data()
	for i := range dst {
		dst[i] = fn(x[i], y[i])
	}
}

func scalar(a *ndarray.Buffer, value float32, out *ndarray.Buffer, fn func(x, v float32) float32) {
	x, dst := a.Data(), out.Data()
	for i := range dst {
		dst[i] = fn(x[i], value)
	}
}

func unary(a, out *ndarray.Buffer, fn func(x float32) float32) {
	x, dst := a.Data(), out.Data()
	for i := range dst {
		dst[i] = fn(x[i])
	}
}

func boolToFloat(b bool) float32 {
	if b {
		return 1
	}
	return 0
}

func add(x, y float32) float32 { return x + y }

func mul(x, y float32) float32 { return x * y }

func div(x, y float32) float32 { return x / y }

func maximum(x, y float32) float32 { return math32.Max(x, y) }

func eq(x, y float32) float32 { return boolToFloat(x == y) }

func ge(x, y float32) float32 { return boolToFloat(x >= y) }

// EwiseAdd computes out = a + b.
func (cpu *CPUBackend) EwiseAdd(a, b, out *ndarray.Buffer) { ewise(a, b, out, add) }

// EwiseMul computes out = a * b.
func (cpu *CPUBackend) EwiseMul(a, b, out *ndarray.Buffer) { ewise(a, b, out, mul) }

// EwiseDiv computes out = a / b.
func (cpu *CPUBackend) EwiseDiv(a, b, out *ndarray.Buffer) { ewise(a, b, out, div) }

// EwiseMaximum computes out = max(a, b).
func (cpu *CPUBackend) EwiseMaximum(a, b, out *ndarray.Buffer) { ewise(a, b, out, maximum) }

// EwiseEq computes out = (a == b) as 1/0.
func (cpu *CPUBackend) EwiseEq(a, b, out *ndarray.Buffer) { ewise(a, b, out, eq) }

// EwiseGe computes out = (a >= b) as 1/0.
func (cpu *CPUBackend) EwiseGe(a, b, out *ndarray.Buffer) { ewise(a, b, out, ge) }

// ScalarAdd computes out = a + value.
func (cpu *CPUBackend) ScalarAdd(a *ndarray.Buffer, value float32, out *ndarray.Buffer) {
	scalar(a, value, out, add)
}

// ScalarMul computes out = a * value.
func (cpu *CPUBackend) ScalarMul(a *ndarray.Buffer, value float32, out *ndarray.Buffer) {
	scalar(a, value, out, mul)
}

// ScalarDiv computes out = a / value.
func (cpu *CPUBackend) ScalarDiv(a *ndarray.Buffer, value float32, out *ndarray.Buffer) {
	scalar(a, value, out, div)
}

// ScalarMaximum computes out = max(a, value).
func (cpu *CPUBackend) ScalarMaximum(a *ndarray.Buffer, value float32, out *ndarray.Buffer) {
	scalar(a, value, out, maximum)
}

// ScalarEq computes out = (a == value) as 1/0.
func (cpu *CPUBackend) ScalarEq(a *ndarray.Buffer, value float32, out *ndarray.Buffer) {
	scalar(a, value, out, eq)
}

// ScalarGe computes out = (a >= value) as 1/0.
func (cpu *CPUBackend) ScalarGe(a *ndarray.Buffer, value float32, out *ndarray.Buffer) {
	scalar(a, value, out, ge)
}

// ScalarPower computes out = a ** exponent.
func (cpu *CPUBackend) ScalarPower(a *ndarray.Buffer, exponent float32, out *ndarray.Buffer) {
	scalar(a, exponent, out, math32.Pow)
}

// EwiseLog computes out = ln(a).
func (cpu *CPUBackend) EwiseLog(a, out *ndarray.Buffer) { unary(a, out, math32.Log) }

// EwiseExp computes out = e^a.
func (cpu *CPUBackend) EwiseExp(a, out *ndarray.Buffer) { unary(a, out, math32.Exp) }

// EwiseTanh computes out = tanh(a).
func (cpu *CPUBackend) EwiseTanh(a, out *ndarray.Buffer) { unary(a, out, math32.Tanh) }
