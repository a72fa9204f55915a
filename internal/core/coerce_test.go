package core

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  any
	}{
		// JSON first
		{name: "json true", input: "true", want: true},
		{name: "json false", input: "false", want: false},
		{name: "json decimal", input: "3.14", want: 3.14},
		{name: "json integer", input: "42", want: float64(42)},
		{name: "json null", input: "null", want: nil},
		{name: "json string", input: `"quoted"`, want: "quoted"},
		{name: "json array", input: "[1,2]", want: []any{float64(1), float64(2)}},
		{name: "json object", input: `{"a":"b"}`, want: map[string]any{"a": "b"}},

		// Fallbacks
		{name: "empty", input: "", want: nil},
		{name: "null uppercase", input: "NULL", want: nil},
		{name: "true uppercase", input: "TRUE", want: true},
		{name: "false mixed case", input: "False", want: false},
		{name: "leading plus", input: "+5", want: float64(5)},
		{name: "leading zeros", input: "007", want: float64(7)},
		{name: "bare decimal point", input: ".5", want: 0.5},
		{name: "hex integer", input: "0x10", want: float64(16)},
		{name: "plain word", input: "hello", want: "hello"},
		{name: "date stays string", input: "2024-01-15", want: "2024-01-15"},
		{name: "nan stays string", input: "NaN", want: "NaN"},
		{name: "infinity stays string", input: "Infinity", want: "Infinity"},
		{name: "underscore digits stay string", input: "1_000", want: "1_000"},
		{name: "raw tab in quoted string stays raw", input: "\"\t\"", want: "\"\t\""},
		{name: "trailing garbage stays string", input: "[1]]", want: "[1]]"},
		{name: "overflowing exponent stays string", input: "1e400", want: "1e400"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseValue(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseValue(%q) = %#v, want %#v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseColumns(t *testing.T) {
	header := []string{"a", "b", "c"}
	idx := MakeHeaderIndex(header)
	row := []string{"1", "hello", `{"k":true}`}

	tests := []struct {
		name    string
		columns []string
		want    any
	}{
		{
			name:    "no columns",
			columns: []string{},
			want:    nil,
		},
		{
			name:    "single column returns scalar",
			columns: []string{"a"},
			want:    float64(1),
		},
		{
			name:    "single json column",
			columns: []string{"c"},
			want:    map[string]any{"k": true},
		},
		{
			name:    "two columns return record",
			columns: []string{"a", "b"},
			want:    map[string]any{"a": float64(1), "b": "hello"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseColumns(tt.columns, row, idx)
			if err != nil {
				t.Fatalf("ParseColumns(%v) error = %v", tt.columns, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseColumns(%v) = %#v, want %#v", tt.columns, got, tt.want)
			}
		})
	}
}

func TestParseColumns_MissingColumn(t *testing.T) {
	idx := MakeHeaderIndex([]string{"a"})

	_, err := ParseColumns([]string{"a", "missing"}, []string{"1"}, idx)
	if !errors.Is(err, ErrColumnNotFound) {
		t.Fatalf("expected ErrColumnNotFound, got %v", err)
	}
}

func TestParseColumns_ShortRow(t *testing.T) {
	idx := MakeHeaderIndex([]string{"a", "b"})

	_, err := ParseColumns([]string{"b"}, []string{"1"}, idx)
	if !errors.Is(err, ErrColumnNotFound) {
		t.Fatalf("expected ErrColumnNotFound for short row, got %v", err)
	}
}

func TestMakeHeaderIndex(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		checks map[string]int
	}{
		{
			name:   "simple headers",
			header: []string{"id", "value"},
			checks: map[string]int{"id": 0, "value": 1},
		},
		{
			name:   "whitespace trimmed",
			header: []string{"  id ", " value"},
			checks: map[string]int{"id": 0, "value": 1},
		},
		{
			name:   "case preserved",
			header: []string{"Input", "input"},
			checks: map[string]int{"Input": 0, "input": 1},
		},
		{
			name:   "duplicates keep last",
			header: []string{"x", "y", "x"},
			checks: map[string]int{"x": 2, "y": 1},
		},
		{
			name:   "empty header",
			header: []string{},
			checks: map[string]int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := MakeHeaderIndex(tt.header)
			if len(idx) != len(tt.checks) {
				t.Errorf("MakeHeaderIndex(%v) has %d keys, want %d", tt.header, len(idx), len(tt.checks))
			}
			for key, wantPos := range tt.checks {
				if gotPos, ok := idx[key]; !ok || gotPos != wantPos {
					t.Errorf("MakeHeaderIndex(%v)[%q] = %d (found=%v), want %d",
						tt.header, key, gotPos, ok, wantPos)
				}
			}
		})
	}
}
