package encoding

import (
	"encoding/binary"

	"github.com/Veezogri/Columnar-Analytics-Engine/pkg/errors"
)

// EncodePlainInt32 appends values as fixed-width little-endian words.
func EncodePlainInt32(dst []byte, values []int32) []byte {
	for _, v := range values {
		dst = binary.LittleEndian.AppendUint32(dst, uint32(v))
	}
	return dst
}

// EncodePlainInt64 appends values as fixed-width little-endian words.
func EncodePlainInt64(dst []byte, values []int64) []byte {
	for _, v := range values {
		dst = binary.LittleEndian.AppendUint64(dst, uint64(v))
	}
	return dst
}

// EncodePlainString appends values as [len: u32][UTF-8 bytes] records.
func EncodePlainString(dst []byte, values []string) []byte {
	for _, v := range values {
		dst = binary.LittleEndian.AppendUint32(dst, uint32(len(v)))
		dst = append(dst, v...)
	}
	return dst
}

// DecodePlainInt32 decodes numValues fixed-width words.
func DecodePlainInt32(data []byte, numValues int) ([]int32, error) {
	if len(data) < numValues*4 {
		return nil, errors.New(errors.ErrorTypeTruncated, "plain page too short")
	}
	if len(data) > numValues*4 {
		return nil, errors.Newf(errors.ErrorTypeCorrupt,
			"%d trailing bytes after plain data", len(data)-numValues*4)
	}
	result := make([]int32, numValues)
	for i := range result {
		result[i] = int32(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return result, nil
}

// DecodePlainInt64 decodes numValues fixed-width words.
func DecodePlainInt64(data []byte, numValues int) ([]int64, error) {
	if len(data) < numValues*8 {
		return nil, errors.New(errors.ErrorTypeTruncated, "plain page too short")
	}
	if len(data) > numValues*8 {
		return nil, errors.Newf(errors.ErrorTypeCorrupt,
			"%d trailing bytes after plain data", len(data)-numValues*8)
	}
	result := make([]int64, numValues)
	for i := range result {
		result[i] = int64(binary.LittleEndian.Uint64(data[i*8:]))
	}
	return result, nil
}

// DecodePlainString decodes numValues length-prefixed strings.
func DecodePlainString(data []byte, numValues int) ([]string, error) {
	result := make([]string, 0, numValues)
	pos := 0
	for i := 0; i < numValues; i++ {
		if pos+4 > len(data) {
			return nil, errors.New(errors.ErrorTypeTruncated, "plain string length out of bounds")
		}
		length := int(binary.LittleEndian.Uint32(data[pos:]))
		pos += 4
		if pos+length > len(data) {
			return nil, errors.New(errors.ErrorTypeTruncated, "plain string out of bounds")
		}
		result = append(result, string(data[pos:pos+length]))
		pos += length
	}
	if pos != len(data) {
		return nil, errors.Newf(errors.ErrorTypeCorrupt,
			"%d trailing bytes after plain data", len(data)-pos)
	}
	return result, nil
}
