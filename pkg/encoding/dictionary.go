package encoding

import (
	"encoding/binary"

	"github.com/Veezogri/Columnar-Analytics-Engine/pkg/errors"
)

// EncodeDictionary dictionary-encodes a string column. Indices are assigned
// in first-seen order, the dictionary is written as length-prefixed UTF-8
// entries, and the index stream reuses the int32 RLE layout to collapse
// runs of repeated values.
//
// Layout: [dict_size: u32][entry_len: u32][entry bytes]...[RLE(int32 indices)]
func EncodeDictionary(dst []byte, values []string) []byte {
	dict := make(map[string]int32, len(values))
	var entries []string
	indices := make([]int32, 0, len(values))

	for _, v := range values {
		idx, ok := dict[v]
		if !ok {
			idx = int32(len(entries))
			dict[v] = idx
			entries = append(entries, v)
		}
		indices = append(indices, idx)
	}

	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(entries)))
	for _, s := range entries {
		dst = binary.LittleEndian.AppendUint32(dst, uint32(len(s)))
		dst = append(dst, s...)
	}
	return EncodeRLEInt32(dst, indices)
}

// DictionarySize returns the number of distinct values, which the writer
// records as the page's distinct count estimate.
func DictionarySize(values []string) uint32 {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}
	return uint32(len(seen))
}

// DecodeDictionary reconstructs numValues strings from a dictionary page.
// Every index is validated against the dictionary bounds.
func DecodeDictionary(data []byte, numValues int) ([]string, error) {
	if numValues == 0 && len(data) == 0 {
		return []string{}, nil
	}
	if len(data) < 4 {
		return nil, errors.New(errors.ErrorTypeTruncated, "dictionary page too short for size")
	}

	dictSize := binary.LittleEndian.Uint32(data)
	pos := 4

	dictionary := make([]string, 0, dictSize)
	for i := uint32(0); i < dictSize; i++ {
		if pos+4 > len(data) {
			return nil, errors.New(errors.ErrorTypeTruncated, "dictionary entry length out of bounds")
		}
		length := int(binary.LittleEndian.Uint32(data[pos:]))
		pos += 4
		if pos+length > len(data) {
			return nil, errors.New(errors.ErrorTypeTruncated, "dictionary entry out of bounds")
		}
		dictionary = append(dictionary, string(data[pos:pos+length]))
		pos += length
	}

	indices, err := DecodeRLEInt32(data[pos:], numValues)
	if err != nil {
		return nil, err
	}

	result := make([]string, 0, numValues)
	for _, idx := range indices {
		if idx < 0 || int(idx) >= len(dictionary) {
			return nil, errors.Newf(errors.ErrorTypeDictionary,
				"invalid dictionary index %d (dictionary size %d)", idx, len(dictionary))
		}
		result = append(result, dictionary[idx])
	}
	return result, nil
}
