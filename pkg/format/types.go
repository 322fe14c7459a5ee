// Package format defines the on-disk columnar file format: column types,
// encodings, schemas, page statistics, file metadata, and the Writer and
// Reader that produce and consume .col files.
//
// All multi-byte integers are little-endian; strings are UTF-8.
package format

import (
	"github.com/Veezogri/Columnar-Analytics-Engine/pkg/errors"
)

// ColumnType identifies the element type of a column.
type ColumnType uint8

const (
	TypeInt32  ColumnType = 0
	TypeInt64  ColumnType = 1
	TypeString ColumnType = 2
)

// String returns the display name of the type.
func (t ColumnType) String() string {
	switch t {
	case TypeInt32:
		return "INT32"
	case TypeInt64:
		return "INT64"
	case TypeString:
		return "STRING"
	default:
		return "UNKNOWN"
	}
}

// IsInteger reports whether the type is one of the integer kinds.
func (t ColumnType) IsInteger() bool {
	return t == TypeInt32 || t == TypeInt64
}

// EncodingType identifies how a column's pages are encoded.
type EncodingType uint8

const (
	EncodingPlain      EncodingType = 0
	EncodingRLE        EncodingType = 1
	EncodingDelta      EncodingType = 2
	EncodingDictionary EncodingType = 3
)

// String returns the display name of the encoding.
func (e EncodingType) String() string {
	switch e {
	case EncodingPlain:
		return "PLAIN"
	case EncodingRLE:
		return "RLE"
	case EncodingDelta:
		return "DELTA"
	case EncodingDictionary:
		return "DICTIONARY"
	default:
		return "UNKNOWN"
	}
}

// ColumnSchema describes one column: unique name, type and encoding.
type ColumnSchema struct {
	Name     string
	Type     ColumnType
	Encoding EncodingType
}

// Schema is an ordered sequence of columns. Column indices are stable.
type Schema struct {
	Columns []ColumnSchema
}

// checkEncoding validates the type/encoding matrix: integer columns accept
// PLAIN, RLE and DELTA; string columns accept PLAIN and DICTIONARY.
func checkEncoding(col ColumnSchema) error {
	switch col.Type {
	case TypeInt32, TypeInt64:
		switch col.Encoding {
		case EncodingPlain, EncodingRLE, EncodingDelta:
			return nil
		}
	case TypeString:
		switch col.Encoding {
		case EncodingPlain, EncodingDictionary:
			return nil
		}
	}
	return errors.Newf(errors.ErrorTypeUnsupportedEncoding,
		"column %q: encoding %s not supported for type %s",
		col.Name, col.Encoding, col.Type)
}

// NewSchema validates the columns and returns a schema. Column names must
// be unique and non-empty, and every type/encoding pair must be allowed.
func NewSchema(columns ...ColumnSchema) (*Schema, error) {
	seen := make(map[string]struct{}, len(columns))
	for _, col := range columns {
		if col.Name == "" {
			return nil, errors.New(errors.ErrorTypeValidation, "column name must not be empty")
		}
		if _, dup := seen[col.Name]; dup {
			return nil, errors.Newf(errors.ErrorTypeValidation, "duplicate column name %q", col.Name)
		}
		seen[col.Name] = struct{}{}
		if err := checkEncoding(col); err != nil {
			return nil, err
		}
	}
	return &Schema{Columns: columns}, nil
}

// ColumnIndex resolves a column name to its position.
func (s *Schema) ColumnIndex(name string) (int, bool) {
	for i, col := range s.Columns {
		if col.Name == name {
			return i, true
		}
	}
	return 0, false
}

// HasColumn reports whether the schema contains the named column.
func (s *Schema) HasColumn(name string) bool {
	_, ok := s.ColumnIndex(name)
	return ok
}
