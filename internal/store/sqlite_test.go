package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/csvpreview/internal/core"
)

func openTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleItems(datasetID string) []core.DatasetItem {
	return []core.DatasetItem{
		{
			ID:             uuid.New(),
			DatasetID:      datasetID,
			Input:          "What is 2+2?",
			ExpectedOutput: float64(4),
			Metadata:       map[string]any{"difficulty": "easy"},
			SourceRow:      1,
		},
		{
			ID:        uuid.New(),
			DatasetID: datasetID,
			Input:     map[string]any{"q": "ping", "tags": []any{"a", "b"}},
			SourceRow: 2,
		},
	}
}

func TestSQLiteStore_WriteAndList(t *testing.T) {
	s := openTestSQLite(t)
	ctx := context.Background()
	items := sampleItems("ds-1")

	n, err := s.WriteItems(ctx, items)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	count, err := s.CountItems(ctx, "ds-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	got, err := s.ListItems(ctx, "ds-1", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, items[0].ID, got[0].ID)
	assert.Equal(t, "What is 2+2?", got[0].Input)
	assert.Equal(t, float64(4), got[0].ExpectedOutput)
	assert.Equal(t, map[string]any{"difficulty": "easy"}, got[0].Metadata)

	assert.Equal(t, 2, got[1].SourceRow)
	assert.Nil(t, got[1].ExpectedOutput)
	assert.Nil(t, got[1].Metadata)
	assert.Equal(t, map[string]any{"q": "ping", "tags": []any{"a", "b"}}, got[1].Input)
}

func TestSQLiteStore_DatasetsAreSeparate(t *testing.T) {
	s := openTestSQLite(t)
	ctx := context.Background()

	_, err := s.WriteItems(ctx, sampleItems("a"))
	require.NoError(t, err)

	count, err := s.CountItems(ctx, "b")
	require.NoError(t, err)
	assert.Zero(t, count)

	items, err := s.ListItems(ctx, "b", 10)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSQLiteStore_EmptyBatch(t *testing.T) {
	s := openTestSQLite(t)

	n, err := s.WriteItems(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSQLiteStore_DuplicateIDRollsBack(t *testing.T) {
	s := openTestSQLite(t)
	ctx := context.Background()

	items := sampleItems("ds")
	items[1].ID = items[0].ID

	_, err := s.WriteItems(ctx, items)
	require.Error(t, err)

	count, err := s.CountItems(ctx, "ds")
	require.NoError(t, err)
	assert.Zero(t, count, "a failed batch must not leave partial rows")
}

func TestSQLiteStore_FileReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.db")
	ctx := context.Background()

	s, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	_, err = s.WriteItems(ctx, sampleItems("ds"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	count, err := reopened.CountItems(ctx, "ds")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestSQLiteStore_WithImporter(t *testing.T) {
	s := openTestSQLite(t)
	ctx := context.Background()

	csv := "question,answer\nhi,hello\nbye,\"[\"\"ciao\"\",\"\"adios\"\"]\"\n"
	result, err := core.NewImporter(s, 1).Import(ctx, core.ImportRequest{
		DatasetID: "greetings",
		Reader:    stringsReader(csv),
		Mapping: core.ImportMapping{
			Input:          []string{"question"},
			ExpectedOutput: []string{"answer"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Imported)
	assert.Equal(t, 2, result.Batches)

	items, err := s.ListItems(ctx, "greetings", 10)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, []any{"ciao", "adios"}, items[1].ExpectedOutput)
}
