// Package encoding implements the page-level codecs of the columnar file
// format: varint/zigzag integers, PLAIN, RLE, DELTA and DICTIONARY.
//
// All decoders are bounded: they take the remaining buffer, report how many
// bytes they consumed, and fail instead of reading past the end. Encoders
// append to a caller-supplied slice so page assembly can reuse buffers.
package encoding

import (
	"github.com/Veezogri/Columnar-Analytics-Engine/pkg/errors"
)

const (
	// maxUvarint32Bytes is the longest legal encoding of a 32-bit value
	maxUvarint32Bytes = 5
	// maxUvarint64Bytes is the longest legal encoding of a 64-bit value
	maxUvarint64Bytes = 10
)

// AppendUvarint32 appends v in base-128 varint form, low groups first.
func AppendUvarint32(dst []byte, v uint32) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

// AppendUvarint64 appends v in base-128 varint form, low groups first.
func AppendUvarint64(dst []byte, v uint64) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

// AppendVarint32 appends v zigzag-mapped then varint-encoded.
func AppendVarint32(dst []byte, v int32) []byte {
	return AppendUvarint32(dst, uint32((v<<1)^(v>>31)))
}

// AppendVarint64 appends v zigzag-mapped then varint-encoded.
func AppendVarint64(dst []byte, v int64) []byte {
	return AppendUvarint64(dst, uint64((v<<1)^(v>>63)))
}

// DecodeUvarint32 decodes a bounded varint from buf. It returns the value
// and the number of bytes consumed.
func DecodeUvarint32(buf []byte) (uint32, int, error) {
	var result uint32
	var shift uint
	for pos := 0; pos < len(buf); pos++ {
		b := buf[pos]
		result |= uint32(b&0x7F) << shift
		if b&0x80 == 0 {
			return result, pos + 1, nil
		}
		if pos+1 >= maxUvarint32Bytes {
			return 0, 0, errors.New(errors.ErrorTypeOverflow,
				"varint overflow: more than 5 bytes for uint32")
		}
		shift += 7
	}
	return 0, 0, errors.New(errors.ErrorTypeTruncated,
		"truncated varint: unexpected end of buffer")
}

// DecodeUvarint64 decodes a bounded 64-bit varint from buf.
func DecodeUvarint64(buf []byte) (uint64, int, error) {
	var result uint64
	var shift uint
	for pos := 0; pos < len(buf); pos++ {
		b := buf[pos]
		result |= uint64(b&0x7F) << shift
		if b&0x80 == 0 {
			return result, pos + 1, nil
		}
		if pos+1 >= maxUvarint64Bytes {
			return 0, 0, errors.New(errors.ErrorTypeOverflow,
				"varint overflow: more than 10 bytes for int64")
		}
		shift += 7
	}
	return 0, 0, errors.New(errors.ErrorTypeTruncated,
		"truncated varint: unexpected end of buffer")
}

// DecodeVarint32 decodes a zigzag varint into a signed 32-bit value.
func DecodeVarint32(buf []byte) (int32, int, error) {
	u, n, err := DecodeUvarint32(buf)
	if err != nil {
		return 0, 0, err
	}
	return int32((u >> 1) ^ -(u & 1)), n, nil
}

// DecodeVarint64 decodes a zigzag varint into a signed 64-bit value.
func DecodeVarint64(buf []byte) (int64, int, error) {
	u, n, err := DecodeUvarint64(buf)
	if err != nil {
		return 0, 0, err
	}
	return int64((u >> 1) ^ -(u & 1)), n, nil
}
