package core

// classify.go infers column types from raw string samples.
//
// Classification is a two-step process:
//   - ClassifyValue tags a single value by attempting a strict JSON parse
//   - InferColumnType reduces a column's tags to one ColumnType
//
// Unquoted words such as hello are not valid JSON and tag as unknown, as do
// numbers with leading zeros such as 007, so zero-padded codes never pass
// for numbers.
// Coercing values for use is a separate concern, see coerce.go.

import (
	"encoding/json"
	"strings"
)

// ClassifyValue returns the coarse type tag of a single raw value.
// It never fails: invalid JSON tags as TypeUnknown.
func ClassifyValue(value string) ColumnType {
	if value == "" || strings.EqualFold(value, "null") {
		return TypeNull
	}

	if !json.Valid([]byte(value)) {
		return TypeUnknown
	}

	// Valid JSON: the first significant byte determines the literal kind
	switch strings.TrimLeft(value, " \t\r\n")[0] {
	case '[':
		return TypeArray
	case '{':
		return TypeJSON
	case '"':
		return TypeString
	case 't', 'f':
		return TypeBoolean
	case 'n':
		return TypeNull
	default:
		return TypeNumber
	}
}

// InferColumnType reduces a column's samples to a single type.
//
// Policy, in order:
//  1. no samples: unknown
//  2. every sample null: null
//  3. nulls plus exactly one other type: that type
//  4. exactly one type: that type
//  5. anything else: mixed
func InferColumnType(samples []string) ColumnType {
	if len(samples) == 0 {
		return TypeUnknown
	}

	types := make(map[ColumnType]struct{}, 4)
	for _, s := range samples {
		types[ClassifyValue(s)] = struct{}{}
	}

	_, hasNull := types[TypeNull]

	switch {
	case len(types) == 1 && hasNull:
		return TypeNull
	case len(types) == 2 && hasNull:
		for t := range types {
			if t != TypeNull {
				return t
			}
		}
	case len(types) == 1:
		for t := range types {
			return t
		}
	}

	return TypeMixed
}
