package store

import (
	"context"
	"testing"
	"time"

	"github.com/ZaguanLabs/gotmemo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testStoreRoundTrip checks that a record written under the derived key of a
// (source text, target language) pair reads back unchanged under that key.
func testStoreRoundTrip(t *testing.T, s Lister) {
	t.Helper()
	ctx := context.Background()

	updated := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	pairs := []Record{
		{SourceText: "Hello", TargetLang: "es", TranslatedText: "Hola", UpdatedAt: updated},
		{SourceText: "Hello", TargetLang: "fr", TranslatedText: "Bonjour", UpdatedAt: updated},
		{SourceText: "Hello_fr", TargetLang: "es", TranslatedText: "Hola_fr", UpdatedAt: updated},
		{SourceText: "  spaced  ", TargetLang: "de", TranslatedText: "  abstand  ", UpdatedAt: updated},
	}

	for _, rec := range pairs {
		require.NoError(t, s.Put(ctx, gotmemo.MakeKey(rec.SourceText, rec.TargetLang), rec))
	}

	for _, rec := range pairs {
		got, ok, err := s.Get(ctx, gotmemo.MakeKey(rec.SourceText, rec.TargetLang))
		require.NoError(t, err)
		require.True(t, ok, "record %q/%q should exist", rec.SourceText, rec.TargetLang)
		assert.Equal(t, rec.SourceText, got.SourceText)
		assert.Equal(t, rec.TargetLang, got.TargetLang)
		assert.Equal(t, rec.TranslatedText, got.TranslatedText)
		assert.True(t, rec.UpdatedAt.Equal(got.UpdatedAt), "updated_at %v != %v", got.UpdatedAt, rec.UpdatedAt)
	}

	_, ok, err := s.Get(ctx, gotmemo.MakeKey("Hello", "ja"))
	require.NoError(t, err)
	assert.False(t, ok)

	// Upsert replaces the previous translation.
	replaced := pairs[0]
	replaced.TranslatedText = "¡Hola!"
	require.NoError(t, s.Put(ctx, gotmemo.MakeKey(replaced.SourceText, replaced.TargetLang), replaced))
	got, ok, err := s.Get(ctx, gotmemo.MakeKey(replaced.SourceText, replaced.TargetLang))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "¡Hola!", got.TranslatedText)

	records, err := s.Records(ctx)
	require.NoError(t, err)
	assert.Len(t, records, len(pairs))
	for i := 1; i < len(records); i++ {
		assert.Less(t, records[i-1].Key, records[i].Key)
	}
}
