// Package store persists imported dataset items.
//
// Two core.ItemWriter implementations live here: SQLiteStore for local
// and single-node use, and PostgresStore for shared deployments. Both keep
// coerced values as JSON text so any shape ParseColumns produces round-trips.
package store

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/JonMunkholm/csvpreview/internal/core"
)

// ItemStore is an item writer that can also read back what it stored.
type ItemStore interface {
	core.ItemWriter
	CountItems(ctx context.Context, datasetID string) (int64, error)
	ListItems(ctx context.Context, datasetID string, limit int) ([]core.DatasetItem, error)
	Close() error
}

// DefaultListLimit bounds ListItems when the caller passes limit <= 0.
const DefaultListLimit = 100

// encodeValue marshals a coerced value; nil stays NULL.
func encodeValue(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}
	return b, nil
}

// decodeValue reverses encodeValue.
func decodeValue(b []byte) (any, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}
	return v, nil
}

// encodedItem holds the JSON columns of one item.
type encodedItem struct {
	input, expectedOutput, metadata []byte
}

func encodeItem(item core.DatasetItem) (encodedItem, error) {
	var (
		out encodedItem
		err error
	)
	if out.input, err = encodeValue(item.Input); err != nil {
		return out, fmt.Errorf("item %s input: %w", item.ID, err)
	}
	if out.expectedOutput, err = encodeValue(item.ExpectedOutput); err != nil {
		return out, fmt.Errorf("item %s expected output: %w", item.ID, err)
	}
	if out.metadata, err = encodeValue(item.Metadata); err != nil {
		return out, fmt.Errorf("item %s metadata: %w", item.ID, err)
	}
	return out, nil
}

func decodeItem(item *core.DatasetItem, enc encodedItem) error {
	var err error
	if item.Input, err = decodeValue(enc.input); err != nil {
		return err
	}
	if item.ExpectedOutput, err = decodeValue(enc.expectedOutput); err != nil {
		return err
	}
	if item.Metadata, err = decodeValue(enc.metadata); err != nil {
		return err
	}
	return nil
}
