package encoding

import (
	"encoding/binary"

	"github.com/Veezogri/Columnar-Analytics-Engine/pkg/errors"
)

// EncodeDeltaInt32 encodes values as a 4-byte little-endian base followed
// by [num_deltas][zigzag delta]... against the running previous value.
// Empty input encodes to zero bytes.
func EncodeDeltaInt32(dst []byte, values []int32) []byte {
	if len(values) == 0 {
		return dst
	}

	dst = binary.LittleEndian.AppendUint32(dst, uint32(values[0]))
	dst = AppendUvarint32(dst, uint32(len(values)-1))

	prev := values[0]
	for _, v := range values[1:] {
		dst = AppendVarint32(dst, v-prev)
		prev = v
	}
	return dst
}

// EncodeDeltaInt64 encodes values with an 8-byte little-endian base.
func EncodeDeltaInt64(dst []byte, values []int64) []byte {
	if len(values) == 0 {
		return dst
	}

	dst = binary.LittleEndian.AppendUint64(dst, uint64(values[0]))
	dst = AppendUvarint32(dst, uint32(len(values)-1))

	prev := values[0]
	for _, v := range values[1:] {
		dst = AppendVarint64(dst, v-prev)
		prev = v
	}
	return dst
}

// DecodeDeltaInt32 reconstructs numValues values from a delta page.
// Additions wrap, matching the writer's two's-complement subtraction.
func DecodeDeltaInt32(data []byte, numValues int) ([]int32, error) {
	result := make([]int32, 0, numValues)
	if numValues == 0 && len(data) == 0 {
		return result, nil
	}
	if len(data) < 4 {
		return nil, errors.New(errors.ErrorTypeTruncated, "delta page too short for base value")
	}

	current := int32(binary.LittleEndian.Uint32(data))
	result = append(result, current)
	pos := 4

	numDeltas, n, err := DecodeUvarint32(data[pos:])
	if err != nil {
		return nil, err
	}
	pos += n

	for i := uint32(0); i < numDeltas; i++ {
		delta, n, err := DecodeVarint32(data[pos:])
		if err != nil {
			return nil, err
		}
		pos += n
		current += delta
		result = append(result, current)
	}

	if len(result) != numValues {
		return nil, errors.Newf(errors.ErrorTypeCorrupt,
			"decoded %d values, expected %d", len(result), numValues)
	}
	if pos != len(data) {
		return nil, errors.Newf(errors.ErrorTypeCorrupt,
			"%d trailing bytes after delta data", len(data)-pos)
	}
	return result, nil
}

// DecodeDeltaInt64 reconstructs numValues 64-bit values from a delta page.
func DecodeDeltaInt64(data []byte, numValues int) ([]int64, error) {
	result := make([]int64, 0, numValues)
	if numValues == 0 && len(data) == 0 {
		return result, nil
	}
	if len(data) < 8 {
		return nil, errors.New(errors.ErrorTypeTruncated, "delta page too short for base value")
	}

	current := int64(binary.LittleEndian.Uint64(data))
	result = append(result, current)
	pos := 8

	numDeltas, n, err := DecodeUvarint32(data[pos:])
	if err != nil {
		return nil, err
	}
	pos += n

	for i := uint32(0); i < numDeltas; i++ {
		delta, n, err := DecodeVarint64(data[pos:])
		if err != nil {
			return nil, err
		}
		pos += n
		current += delta
		result = append(result, current)
	}

	if len(result) != numValues {
		return nil, errors.Newf(errors.ErrorTypeCorrupt,
			"decoded %d values, expected %d", len(result), numValues)
	}
	if pos != len(data) {
		return nil, errors.Newf(errors.ErrorTypeCorrupt,
			"%d trailing bytes after delta data", len(data)-pos)
	}
	return result, nil
}
