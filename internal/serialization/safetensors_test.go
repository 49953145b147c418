package serialization

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteRead(t *testing.T) {
	entries := map[string]Entry{
		"1.weight": {Shape: []int{2, 2}, Data: []float32{1, -2, 3.5, 4}},
		"0.bias":   {Shape: []int{1, 3}, Data: []float32{0.25, 0, -1}},
		"scalar":   {Shape: []int{}, Data: []float32{7}},
	}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, entries, map[string]string{"format": "minima"}))

	got, metadata, err := Read(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"format": "minima"}, metadata)
	assert.Equal(t, entries, got)
}

func TestWrite_Layout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, map[string]Entry{
		"b": {Shape: []int{1}, Data: []float32{2}},
		"a": {Shape: []int{2}, Data: []float32{0, 1}},
	}, nil))

	raw := buf.Bytes()
	size := binary.LittleEndian.Uint64(raw[:8])
	var header map[string]tensorHeader
	require.NoError(t, json.Unmarshal(raw[8:8+size], &header))

	// Alphabetical order: a occupies bytes [0, 8), b [8, 12).
	assert.Equal(t, tensorHeader{DType: "F32", Shape: []int64{2}, DataOffsets: [2]int64{0, 8}}, header["a"])
	assert.Equal(t, tensorHeader{DType: "F32", Shape: []int64{1}, DataOffsets: [2]int64{8, 12}}, header["b"])
	assert.Len(t, raw, 8+int(size)+12)
	assert.NotContains(t, header, metadataKey)
}

func TestWrite_SizeMismatch(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, map[string]Entry{"w": {Shape: []int{2, 2}, Data: []float32{1}}}, nil)
	assert.True(t, errors.Is(err, ErrSizeMismatch))
}

func headerOnly(t *testing.T, header string) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint64(len(header))))
	buf.WriteString(header)
	return buf.Bytes()
}

func TestRead_Errors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"dtype", headerOnly(t, `{"x":{"dtype":"F16","shape":[1],"data_offsets":[0,2]}}`), ErrUnsupportedDType},
		{"offsets", headerOnly(t, `{"x":{"dtype":"F32","shape":[2],"data_offsets":[0,4]}}`), ErrSizeMismatch},
		{"truncated", headerOnly(t, `{"x":{"dtype":"F32","shape":[2],"data_offsets":[0,8]}}`), ErrOutOfBounds},
		{"header size", binary.LittleEndian.AppendUint64(nil, MaxHeaderSize+1), ErrHeaderTooLarge},
		{"negative dim", headerOnly(t, `{"x":{"dtype":"F32","shape":[-1],"data_offsets":[0,0]}}`), ErrSizeMismatch},
		{"huge shape", headerOnly(t, `{"x":{"dtype":"F32","shape":[1000000000000],"data_offsets":[0,4000000000000]}}`), ErrDataTooLarge},
		{"overflowing shape", headerOnly(t, `{"x":{"dtype":"F32","shape":[4611686018427387904,4],"data_offsets":[0,0]}}`), ErrDataTooLarge},
		// 4 GB claimed, nothing present: fails on the short read instead of allocating.
		{"large truncated", headerOnly(t, `{"x":{"dtype":"F32","shape":[1000000000],"data_offsets":[0,4000000000]}}`), ErrOutOfBounds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Read(bytes.NewReader(tt.data))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), err.Error())
		})
	}

	_, _, err := Read(bytes.NewReader(headerOnly(t, `not json`)))
	assert.Error(t, err)
}
