package session

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecordRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := LoadRecord(ctx, store)
	require.ErrorIs(t, err, ErrNotFound)

	err = SaveRecord(ctx, store, Record{Name: "Ana", Email: "ana@mail.com"})
	require.NoError(t, err)

	rec, err := LoadRecord(ctx, store)
	require.NoError(t, err)
	require.Equal(t, "Ana", rec.Name)
	require.Equal(t, "ana@mail.com", rec.Email)
}

func TestClearRecordRemovesSessionAndPhoto(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, SaveRecord(ctx, store, Record{Name: "Ana", Email: "ana@mail.com"}))
	require.NoError(t, store.Set(ctx, KeyPhotoURI, []byte("file:///tmp/foto.jpg")))
	// El correo pendiente de magic link sobrevive al logout (solo UX de reenvío)
	require.NoError(t, store.Set(ctx, KeyMagicLinkEmail, []byte("ana@mail.com")))

	require.NoError(t, ClearRecord(ctx, store))

	_, err := LoadRecord(ctx, store)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = store.Get(ctx, KeyPhotoURI)
	require.ErrorIs(t, err, ErrNotFound)

	pending, err := store.Get(ctx, KeyMagicLinkEmail)
	require.NoError(t, err)
	require.Equal(t, "ana@mail.com", string(pending))
}

func TestCorruptRecordCountsAsAbsent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Set(ctx, KeyRecord, []byte("{not json")))

	_, err := LoadRecord(ctx, store)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "session.json")
	store := NewFileStore(path)

	_, err := store.Get(ctx, "k")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, "k", []byte("v")))

	// Otra instancia sobre el mismo archivo ve el valor
	again := NewFileStore(path)
	v, err := again.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "v", string(v))

	require.NoError(t, again.Delete(ctx, "k"))
	_, err = store.Get(ctx, "k")
	require.ErrorIs(t, err, ErrNotFound)
}
