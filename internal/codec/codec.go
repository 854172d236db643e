// Package codec converts between raw byte buffers and sequences of
// little-endian IEEE-754 double-precision values.
//
// The wire format has no header, length prefix or delimiter: a buffer is
// simply consecutive 8-byte groups. Trailing bytes that do not fill a
// whole group are ignored by Decode.
package codec

import (
	"encoding/binary"
	"math"
)

// FrameSize is the width in bytes of one encoded value.
const FrameSize = 8

// Decode interprets buf as consecutive little-endian doubles.
// An incomplete trailing group is dropped.
func Decode(buf []byte) []float64 {
	n := len(buf) / FrameSize
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		bits := binary.LittleEndian.Uint64(buf[i*FrameSize:])
		values[i] = math.Float64frombits(bits)
	}
	return values
}

// Encode serializes values as concatenated little-endian doubles.
func Encode(values []float64) []byte {
	return Append(make([]byte, 0, len(values)*FrameSize), values)
}

// Append encodes values onto the end of dst and returns the extended slice.
func Append(dst []byte, values []float64) []byte {
	for _, v := range values {
		dst = binary.LittleEndian.AppendUint64(dst, math.Float64bits(v))
	}
	return dst
}

// Truncated reports how many trailing bytes of a buffer of length n
// Decode would ignore.
func Truncated(n int) int {
	return n % FrameSize
}
