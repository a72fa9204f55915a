package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/csvpreview/internal/core"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS dataset_items (
	id              UUID PRIMARY KEY,
	dataset_id      TEXT NOT NULL,
	input           JSONB,
	expected_output JSONB,
	metadata        JSONB,
	source_row      INTEGER NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS dataset_items_dataset_id_idx ON dataset_items (dataset_id, source_row);
`

var itemColumns = []string{"id", "dataset_id", "input", "expected_output", "metadata", "source_row"}

// PostgresConfig holds pool settings for NewPostgres.
type PostgresConfig struct {
	URL             string
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// PostgresStore writes dataset items to PostgreSQL with COPY.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres connects, verifies the connection and applies the schema.
func NewPostgres(ctx context.Context, cfg PostgresConfig) (*PostgresStore, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = int32(cfg.MinConns)
	}
	if cfg.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate postgres: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close closes the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// WriteItems copies items into dataset_items. COPY is atomic per call.
func (s *PostgresStore) WriteItems(ctx context.Context, items []core.DatasetItem) (int64, error) {
	if len(items) == 0 {
		return 0, nil
	}

	rows := make([][]any, 0, len(items))
	for _, item := range items {
		enc, err := encodeItem(item)
		if err != nil {
			return 0, err
		}
		rows = append(rows, []any{
			pgtype.UUID{Bytes: item.ID, Valid: true},
			item.DatasetID,
			enc.input,
			enc.expectedOutput,
			enc.metadata,
			int32(item.SourceRow),
		})
	}

	n, err := s.pool.CopyFrom(ctx, pgx.Identifier{"dataset_items"}, itemColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("copy items: %w", err)
	}
	return n, nil
}

// CountItems returns how many items a dataset holds.
func (s *PostgresStore) CountItems(ctx context.Context, datasetID string) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM dataset_items WHERE dataset_id = $1`, datasetID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return n, nil
}

// ListItems returns up to limit items of a dataset in source row order.
func (s *PostgresStore) ListItems(ctx context.Context, datasetID string, limit int) ([]core.DatasetItem, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.pool.Query(ctx, `SELECT id, input, expected_output, metadata, source_row
		FROM dataset_items WHERE dataset_id = $1
		ORDER BY created_at, source_row LIMIT $2`, datasetID, limit)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := make([]core.DatasetItem, 0)
	for rows.Next() {
		var id pgtype.UUID
		var enc encodedItem
		var sourceRow int32
		if err := rows.Scan(&id, &enc.input, &enc.expectedOutput, &enc.metadata, &sourceRow); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}

		item := core.DatasetItem{
			ID:        id.Bytes,
			DatasetID: datasetID,
			SourceRow: int(sourceRow),
		}
		if err := decodeItem(&item, enc); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
