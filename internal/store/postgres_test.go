package store

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Set CSVPREVIEW_TEST_DATABASE_URL to run against a real PostgreSQL.
func openTestPostgres(t *testing.T) *PostgresStore {
	t.Helper()
	url := os.Getenv("CSVPREVIEW_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("CSVPREVIEW_TEST_DATABASE_URL not set")
	}

	s, err := NewPostgres(context.Background(), PostgresConfig{URL: url, MaxConns: 2})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPostgresStore_WriteAndList(t *testing.T) {
	s := openTestPostgres(t)
	ctx := context.Background()
	datasetID := "test-" + uuid.NewString()

	items := sampleItems(datasetID)
	n, err := s.WriteItems(ctx, items)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	count, err := s.CountItems(ctx, datasetID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	got, err := s.ListItems(ctx, datasetID, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, items[0].ID, got[0].ID)
	assert.Equal(t, float64(4), got[0].ExpectedOutput)
	assert.Nil(t, got[1].Metadata)
}

func TestNewPostgres_BadURL(t *testing.T) {
	_, err := NewPostgres(context.Background(), PostgresConfig{URL: "://not a url"})
	assert.Error(t, err)
}
