package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)

	"github.com/JonMunkholm/csvpreview/internal/core"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS dataset_items (
	id              TEXT PRIMARY KEY,
	dataset_id      TEXT NOT NULL,
	input           TEXT,
	expected_output TEXT,
	metadata        TEXT,
	source_row      INTEGER NOT NULL,
	created_at      TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
);
CREATE INDEX IF NOT EXISTS dataset_items_dataset_id_idx ON dataset_items (dataset_id, source_row);
`

// SQLiteStore writes dataset items to a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and applies
// the schema. Use ":memory:" for a throwaway store.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	memory := strings.HasPrefix(path, ":memory:")

	dsn := path
	if !memory && !strings.Contains(dsn, "?") {
		dsn += "?_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	// Every connection to :memory: is a separate database
	if memory {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// WriteItems inserts items in one transaction.
func (s *SQLiteStore) WriteItems(ctx context.Context, items []core.DatasetItem) (int64, error) {
	if len(items) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO dataset_items
		(id, dataset_id, input, expected_output, metadata, source_row)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	var written int64
	for _, item := range items {
		enc, err := encodeItem(item)
		if err != nil {
			return 0, err
		}
		if _, err := stmt.ExecContext(ctx,
			item.ID.String(),
			item.DatasetID,
			nullText(enc.input),
			nullText(enc.expectedOutput),
			nullText(enc.metadata),
			item.SourceRow,
		); err != nil {
			return 0, fmt.Errorf("insert item at row %d: %w", item.SourceRow, err)
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return written, nil
}

// CountItems returns how many items a dataset holds.
func (s *SQLiteStore) CountItems(ctx context.Context, datasetID string) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM dataset_items WHERE dataset_id = ?`, datasetID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return n, nil
}

// ListItems returns up to limit items of a dataset in source row order.
func (s *SQLiteStore) ListItems(ctx context.Context, datasetID string, limit int) ([]core.DatasetItem, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, input, expected_output, metadata, source_row
		FROM dataset_items WHERE dataset_id = ?
		ORDER BY created_at, source_row LIMIT ?`, datasetID, limit)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := make([]core.DatasetItem, 0)
	for rows.Next() {
		var id string
		var input, expectedOutput, metadata sql.NullString
		item := core.DatasetItem{DatasetID: datasetID}
		if err := rows.Scan(&id, &input, &expectedOutput, &metadata, &item.SourceRow); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		if item.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("item id %q: %w", id, err)
		}
		enc := encodedItem{
			input:          []byte(input.String),
			expectedOutput: []byte(expectedOutput.String),
			metadata:       []byte(metadata.String),
		}
		if err := decodeItem(&item, enc); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// nullText stores JSON bytes as TEXT, nil as NULL.
func nullText(b []byte) sql.NullString {
	if b == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(b), Valid: true}
}
