package artifact

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "crimerisk/internal/errors"
)

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models", "crime_risk.model")
	store := NewStore(path, nil)
	assert.False(t, store.Exists())

	b := fittedBundle(t)
	require.NoError(t, store.Save(b))
	assert.True(t, store.Exists())
	assert.Equal(t, path, store.Path())

	loaded, err := store.Load()
	require.NoError(t, err)

	assert.Equal(t, b.Features, loaded.Features)
	assert.Equal(t, b.Metadata.ID, loaded.Metadata.ID)
	assert.Equal(t, b.Metadata.MAE, loaded.Metadata.MAE)
	assert.True(t, b.Metadata.CreatedAt.Equal(loaded.Metadata.CreatedAt))
	assert.Equal(t, b.Imputer.Statistics, loaded.Imputer.Statistics)

	rows := [][]float64{{1, 10}, {3.5, 35}, {9, 90}}
	want, err := b.PredictMatrix(rows)
	require.NoError(t, err)
	got, err := loaded.PredictMatrix(rows)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestStoreSaveReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "a.model"), nil)

	first := fittedBundle(t)
	second := fittedBundle(t)
	require.NoError(t, store.Save(first))
	require.NoError(t, store.Save(second))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, second.Metadata.ID, loaded.Metadata.ID)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestStoreSaveRejectsPartialBundle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.model")
	store := NewStore(path, nil)

	b := fittedBundle(t)
	b.Imputer = nil
	assert.ErrorIs(t, store.Save(b), apperrors.ErrArtifactCorrupt)
	assert.False(t, store.Exists())
}

func TestStoreLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := NewStore(filepath.Join(t.TempDir(), "none.model"), nil).Load()
		assert.ErrorIs(t, err, apperrors.ErrArtifactNotFound)
		assert.NotErrorIs(t, err, apperrors.ErrArtifactCorrupt)
	})

	valid, err := Encode(fittedBundle(t))
	require.NoError(t, err)

	corrupt := func(mutate func([]byte) []byte) []byte {
		data := append([]byte(nil), valid...)
		return mutate(data)
	}

	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: []byte{}},
		{name: "truncated header", data: valid[:10]},
		{name: "bad magic", data: corrupt(func(d []byte) []byte { d[0] = 'X'; return d })},
		{name: "bad version", data: corrupt(func(d []byte) []byte { d[5] = 9; return d })},
		{name: "flipped payload byte", data: corrupt(func(d []byte) []byte { d[len(d)-1] ^= 0xff; return d })},
		{name: "truncated payload", data: valid[:len(valid)-5]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "a.model")
			require.NoError(t, os.WriteFile(path, tt.data, 0644))

			_, err := NewStore(path, nil).Load()
			assert.ErrorIs(t, err, apperrors.ErrArtifactCorrupt)
		})
	}
}
