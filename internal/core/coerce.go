package core

// coerce.go converts raw CSV cells into JSON-compatible application values.
//
// Coercion tries a JSON parse first and falls back, in order, to:
//   - nil for "" and "null" (any case)
//   - bool for "true"/"false" (any case)
//   - float64 for numeric strings
//   - the original string
//
// The fallback order intentionally differs from ClassifyValue: an unquoted
// word is unknown to the classifier but a plain string here.

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrColumnNotFound is returned when a requested column is not in the header index.
var ErrColumnNotFound = errors.New("column not found")

// ParseValue coerces a raw cell into a JSON-compatible value.
func ParseValue(value string) any {
	var parsed any
	if err := json.Unmarshal([]byte(value), &parsed); err == nil {
		return parsed
	}

	if value == "" || strings.EqualFold(value, "null") {
		return nil
	}
	if strings.EqualFold(value, "true") {
		return true
	}
	if strings.EqualFold(value, "false") {
		return false
	}
	if f, ok := parseNumber(value); ok {
		return f
	}
	return value
}

// parseNumber accepts the numeric spellings JSON rejects: leading plus signs,
// leading zeros, bare decimal points and 0x/0o/0b integer prefixes.
// Non-finite results are rejected so values stay JSON-encodable.
func parseNumber(value string) (float64, bool) {
	s := strings.TrimSpace(value)
	if s == "" {
		return 0, false
	}

	lower := strings.ToLower(s)
	if strings.Contains(lower, "inf") || strings.Contains(lower, "nan") || strings.Contains(s, "_") {
		return 0, false
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) {
		return f, true
	}

	unsigned := strings.TrimLeft(lower, "+-")
	if strings.HasPrefix(unsigned, "0x") || strings.HasPrefix(unsigned, "0o") || strings.HasPrefix(unsigned, "0b") {
		if i, err := strconv.ParseInt(s, 0, 64); err == nil {
			return float64(i), true
		}
	}

	return 0, false
}

// ParseColumns coerces the named columns of a row.
//
// Zero names yield nil, a single name yields the coerced scalar, and several
// names yield a map keyed by column name. Every name must be present in idx;
// a missing name is a caller error and is returned wrapped in ErrColumnNotFound.
func ParseColumns(columnNames []string, row []string, idx HeaderIndex) (any, error) {
	switch len(columnNames) {
	case 0:
		return nil, nil
	case 1:
		return parseColumn(columnNames[0], row, idx)
	}

	record := make(map[string]any, len(columnNames))
	for _, col := range columnNames {
		v, err := parseColumn(col, row, idx)
		if err != nil {
			return nil, err
		}
		record[col] = v
	}
	return record, nil
}

func parseColumn(col string, row []string, idx HeaderIndex) (any, error) {
	pos, ok := idx[col]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, col)
	}
	if pos < 0 || pos >= len(row) {
		return nil, fmt.Errorf("%w: %q at index %d, row has %d fields", ErrColumnNotFound, col, pos, len(row))
	}
	return ParseValue(row[pos]), nil
}

// MakeHeaderIndex creates a HeaderIndex from a header row.
// Names are trimmed; when a name repeats, the last occurrence wins.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}
