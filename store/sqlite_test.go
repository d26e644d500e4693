package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteStore(t *testing.T, path string) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	t.Parallel()

	s := newTestSQLiteStore(t, filepath.Join(t.TempDir(), "gotmemo.db"))
	testStoreRoundTrip(t, s)
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "gotmemo.db")
	ctx := context.Background()

	first, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, first.Put(ctx, "k", Record{SourceText: "Hello", TargetLang: "es", TranslatedText: "Hola"}))
	require.NoError(t, first.Close())

	second := newTestSQLiteStore(t, path)
	got, ok, err := second.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Hola", got.TranslatedText)
	assert.False(t, got.UpdatedAt.IsZero(), "zero UpdatedAt should be stamped on write")
}

func TestSQLiteStore_RequiresPath(t *testing.T) {
	t.Parallel()

	_, err := NewSQLiteStore("  ")
	assert.Error(t, err)
}

func TestSQLiteStore_ClosedReturnsStoreError(t *testing.T) {
	t.Parallel()

	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "gotmemo.db"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, _, err = s.Get(context.Background(), "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store error: get k")
}
