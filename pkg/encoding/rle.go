package encoding

import (
	"github.com/Veezogri/Columnar-Analytics-Engine/pkg/errors"
)

// EncodeRLEInt32 run-length encodes values as
// [num_runs][run_length][value]... with maximal runs.
// Empty input encodes to zero bytes.
func EncodeRLEInt32(dst []byte, values []int32) []byte {
	if len(values) == 0 {
		return dst
	}

	numRuns := uint32(0)
	for i := 0; i < len(values); {
		j := i + 1
		for j < len(values) && values[j] == values[i] {
			j++
		}
		numRuns++
		i = j
	}

	dst = AppendUvarint32(dst, numRuns)
	for i := 0; i < len(values); {
		j := i + 1
		for j < len(values) && values[j] == values[i] {
			j++
		}
		dst = AppendUvarint32(dst, uint32(j-i))
		dst = AppendVarint32(dst, values[i])
		i = j
	}
	return dst
}

// EncodeRLEInt64 run-length encodes 64-bit values, same layout as
// EncodeRLEInt32 with zigzag-varint64 run values.
func EncodeRLEInt64(dst []byte, values []int64) []byte {
	if len(values) == 0 {
		return dst
	}

	numRuns := uint32(0)
	for i := 0; i < len(values); {
		j := i + 1
		for j < len(values) && values[j] == values[i] {
			j++
		}
		numRuns++
		i = j
	}

	dst = AppendUvarint32(dst, numRuns)
	for i := 0; i < len(values); {
		j := i + 1
		for j < len(values) && values[j] == values[i] {
			j++
		}
		dst = AppendUvarint32(dst, uint32(j-i))
		dst = AppendVarint64(dst, values[i])
		i = j
	}
	return dst
}

// RLERunCount64 returns the number of maximal runs in values. The writer
// records it as the page's distinct count estimate.
func RLERunCount64(values []int64) uint32 {
	n := uint32(0)
	for i := 0; i < len(values); {
		j := i + 1
		for j < len(values) && values[j] == values[i] {
			j++
		}
		n++
		i = j
	}
	return n
}

// RLERunCount32 is RLERunCount64 over 32-bit values.
func RLERunCount32(values []int32) uint32 {
	n := uint32(0)
	for i := 0; i < len(values); {
		j := i + 1
		for j < len(values) && values[j] == values[i] {
			j++
		}
		n++
		i = j
	}
	return n
}

// DecodeRLEInt32 reconstructs numValues values from an RLE page. Every
// byte of data must be consumed and the run lengths must total numValues.
func DecodeRLEInt32(data []byte, numValues int) ([]int32, error) {
	result := make([]int32, 0, numValues)
	if numValues == 0 && len(data) == 0 {
		return result, nil
	}

	numRuns, n, err := DecodeUvarint32(data)
	if err != nil {
		return nil, err
	}
	pos := n

	for i := uint32(0); i < numRuns; i++ {
		runLength, n, err := DecodeUvarint32(data[pos:])
		if err != nil {
			return nil, err
		}
		pos += n
		if runLength == 0 {
			return nil, errors.New(errors.ErrorTypeCorrupt, "invalid run: zero length")
		}

		value, n, err := DecodeVarint32(data[pos:])
		if err != nil {
			return nil, err
		}
		pos += n

		if len(result)+int(runLength) > numValues {
			return nil, errors.Newf(errors.ErrorTypeCorrupt,
				"run lengths exceed declared value count %d", numValues)
		}
		for j := uint32(0); j < runLength; j++ {
			result = append(result, value)
		}
	}

	if len(result) != numValues {
		return nil, errors.Newf(errors.ErrorTypeCorrupt,
			"decoded %d values, expected %d", len(result), numValues)
	}
	if pos != len(data) {
		return nil, errors.Newf(errors.ErrorTypeCorrupt,
			"%d trailing bytes after RLE data", len(data)-pos)
	}
	return result, nil
}

// DecodeRLEInt64 reconstructs numValues 64-bit values from an RLE page.
func DecodeRLEInt64(data []byte, numValues int) ([]int64, error) {
	result := make([]int64, 0, numValues)
	if numValues == 0 && len(data) == 0 {
		return result, nil
	}

	numRuns, n, err := DecodeUvarint32(data)
	if err != nil {
		return nil, err
	}
	pos := n

	for i := uint32(0); i < numRuns; i++ {
		runLength, n, err := DecodeUvarint32(data[pos:])
		if err != nil {
			return nil, err
		}
		pos += n
		if runLength == 0 {
			return nil, errors.New(errors.ErrorTypeCorrupt, "invalid run: zero length")
		}

		value, n, err := DecodeVarint64(data[pos:])
		if err != nil {
			return nil, err
		}
		pos += n

		if len(result)+int(runLength) > numValues {
			return nil, errors.Newf(errors.ErrorTypeCorrupt,
				"run lengths exceed declared value count %d", numValues)
		}
		for j := uint32(0); j < runLength; j++ {
			result = append(result, value)
		}
	}

	if len(result) != numValues {
		return nil, errors.Newf(errors.ErrorTypeCorrupt,
			"decoded %d values, expected %d", len(result), numValues)
	}
	if pos != len(data) {
		return nil, errors.Newf(errors.ErrorTypeCorrupt,
			"%d trailing bytes after RLE data", len(data)-pos)
	}
	return result, nil
}
