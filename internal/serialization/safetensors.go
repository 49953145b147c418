// Package serialization reads and writes float32 state dicts in the
// SafeTensors format.
//
// Layout:
//
//	[8 bytes: header size, uint64 little-endian]
//	[header: JSON object, name -> {dtype, shape, data_offsets}]
//	[data: raw little-endian float32 values, tensors in name order]
//
// Only the F32 dtype is supported.
package serialization

import (
	"encoding/binary"
	"encoding/json"
	"io"
	"math"
	"sort"

	"github.com/pkg/errors"
)

// MaxHeaderSize bounds the JSON header accepted by Read.
const MaxHeaderSize = 100 << 20

// MaxDataSize bounds the data section accepted by Read.
const MaxDataSize int64 = 16 << 30

const metadataKey = "__metadata__"

// Common errors.
var (
	ErrHeaderTooLarge   = errors.New("header exceeds maximum size")
	ErrUnsupportedDType = errors.New("unsupported dtype")
	ErrOutOfBounds      = errors.New("tensor extends beyond data section")
	ErrSizeMismatch     = errors.New("tensor data does not match its shape")
	ErrDataTooLarge     = errors.New("data section exceeds maximum size")
)

// Entry is one named tensor: its shape and row-major values.
type Entry struct {
	Shape []int
	Data  []float32
}

// tensorHeader describes one tensor in the header.
type tensorHeader struct {
	DType       string   `json:"dtype"`
	Shape       []int64  `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"`
}

func numElements(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

// byteSize returns the F32 data size of shape, rejecting negative
// dimensions and sizes above MaxDataSize.
func byteSize(shape []int64) (int64, error) {
	size := int64(4)
	for _, d := range shape {
		if d < 0 {
			return 0, errors.Wrapf(ErrSizeMismatch, "negative dimension in shape %v", shape)
		}
		if d == 0 {
			return 0, nil
		}
		if size > MaxDataSize/d {
			return 0, errors.Wrapf(ErrDataTooLarge, "shape %v", shape)
		}
		size *= d
	}
	return size, nil
}

// Write writes entries to w. Tensors are stored in alphabetical order by name.
func Write(w io.Writer, entries map[string]Entry, metadata map[string]string) error {
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	header := make(map[string]any, len(names)+1)
	if len(metadata) > 0 {
		header[metadataKey] = metadata
	}
	var offset int64
	for _, name := range names {
		e := entries[name]
		if numElements(e.Shape) != len(e.Data) {
			return errors.Wrapf(ErrSizeMismatch, "tensor %q: shape %v, %d values", name, e.Shape, len(e.Data))
		}
		shape := make([]int64, len(e.Shape))
		for i, d := range e.Shape {
			shape[i] = int64(d)
		}
		size := int64(len(e.Data) * 4)
		header[name] = tensorHeader{
			DType:       "F32",
			Shape:       shape,
			DataOffsets: [2]int64{offset, offset + size},
		}
		offset += size
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return errors.Wrap(err, "marshal header")
	}
	if err := binary.Write(w, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		return errors.Wrap(err, "write header size")
	}
	if _, err := w.Write(headerJSON); err != nil {
		return errors.Wrap(err, "write header")
	}

	for _, name := range names {
		data := entries[name].Data
		buf := make([]byte, 4*len(data))
		for i, v := range data {
			binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
		}
		if _, err := w.Write(buf); err != nil {
			return errors.Wrapf(err, "write tensor %q", name)
		}
	}
	return nil
}

// Read parses a state dict written by Write (or any F32-only SafeTensors
// stream) and returns its entries and metadata.
func Read(r io.Reader) (map[string]Entry, map[string]string, error) {
	var headerSize uint64
	if err := binary.Read(r, binary.LittleEndian, &headerSize); err != nil {
		return nil, nil, errors.Wrap(err, "read header size")
	}
	if headerSize > MaxHeaderSize {
		return nil, nil, errors.Wrapf(ErrHeaderTooLarge, "%d bytes", headerSize)
	}
	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerJSON); err != nil {
		return nil, nil, errors.Wrap(err, "read header")
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(headerJSON, &raw); err != nil {
		return nil, nil, errors.Wrap(err, "parse header")
	}
	var metadata map[string]string
	if m, found := raw[metadataKey]; found {
		if err := json.Unmarshal(m, &metadata); err != nil {
			return nil, nil, errors.Wrap(err, "parse metadata")
		}
		delete(raw, metadataKey)
	}

	headers := make(map[string]tensorHeader, len(raw))
	var end int64
	for name, msg := range raw {
		var h tensorHeader
		if err := json.Unmarshal(msg, &h); err != nil {
			return nil, nil, errors.Wrapf(err, "parse tensor %q", name)
		}
		if h.DType != "F32" {
			return nil, nil, errors.Wrapf(ErrUnsupportedDType, "tensor %q has dtype %s", name, h.DType)
		}
		size, err := byteSize(h.Shape)
		if err != nil {
			return nil, nil, errors.WithMessagef(err, "tensor %q", name)
		}
		start, stop := h.DataOffsets[0], h.DataOffsets[1]
		if start < 0 || stop < start || stop-start != size {
			return nil, nil, errors.Wrapf(ErrSizeMismatch, "tensor %q: shape %v, offsets %v", name, h.Shape, h.DataOffsets)
		}
		if stop > MaxDataSize {
			return nil, nil, errors.Wrapf(ErrDataTooLarge, "tensor %q ends at byte %d", name, stop)
		}
		headers[name] = h
		end = max(end, stop)
	}

	// The buffer grows with the bytes actually present, never with the
	// offsets claimed by the header.
	data, err := io.ReadAll(io.LimitReader(r, end))
	if err != nil {
		return nil, nil, errors.Wrap(err, "read data")
	}
	if int64(len(data)) < end {
		return nil, nil, errors.Wrapf(ErrOutOfBounds, "data section has %d bytes, header needs %d", len(data), end)
	}

	entries := make(map[string]Entry, len(headers))
	for name, h := range headers {
		shape := make([]int, len(h.Shape))
		for i, d := range h.Shape {
			shape[i] = int(d)
		}
		chunk := data[h.DataOffsets[0]:h.DataOffsets[1]]
		values := make([]float32, len(chunk)/4)
		for i := range values {
			values[i] = math.Float32frombits(binary.LittleEndian.Uint32(chunk[4*i:]))
		}
		entries[name] = Entry{Shape: shape, Data: values}
	}
	return entries, metadata, nil
}
