package db

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *CatalogStore {
	return NewCatalogStore(t.TempDir(), zap.NewNop().Sugar())
}

func TestCatalogStoreRoundtrip(t *testing.T) {
	store := newTestStore(t)

	key := ComputeKey("/games/snes/mario.sfc")
	catalog := NewCatalog()
	catalog.Games[key] = &CatalogEntry{
		Key:      key,
		Title:    "Mario",
		Path:     "/games/snes/mario.sfc",
		Size:     2097152,
		Platform: "Super Nintendo",
		Playtime: 42,
	}
	require.NoError(t, store.Save(catalog))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Len(t, loaded.Games, 1)
	require.Equal(t, catalog.Games[key], loaded.Games[key])
}

func TestCatalogStoreMissingFile(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Load()
	require.ErrorIs(t, err, ErrCatalogNotFound)
}

func TestCatalogStoreMalformedCacheInvalidated(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.WriteFile(store.path(), []byte("{not json"), 0644))

	_, err := store.Load()
	require.ErrorIs(t, err, ErrCatalogNotFound)

	_, statErr := os.Stat(store.path())
	require.True(t, os.IsNotExist(statErr))
}

func TestCatalogStoreIncompleteEntryInvalidated(t *testing.T) {
	store := newTestStore(t)

	// entry with no platform field
	payload := `{"abc": {"key": "abc", "title": "Mario", "path": "/games/mario.sfc", "size": 10}}`
	require.NoError(t, os.WriteFile(store.path(), []byte(payload), 0644))

	_, err := store.Load()
	require.ErrorIs(t, err, ErrCatalogNotFound)

	_, statErr := os.Stat(store.path())
	require.True(t, os.IsNotExist(statErr))
}

func TestCatalogStoreKeyMismatchInvalidated(t *testing.T) {
	store := newTestStore(t)

	payload := `{"abc": {"key": "xyz", "title": "Mario", "path": "/games/mario.sfc", "size": 10, "platform": "Super Nintendo"}}`
	require.NoError(t, os.WriteFile(store.path(), []byte(payload), 0644))

	_, err := store.Load()
	require.ErrorIs(t, err, ErrCatalogNotFound)
}

func TestCatalogStoreUpdatePlaytime(t *testing.T) {
	store := newTestStore(t)

	key := ComputeKey("/games/snes/mario.sfc")
	catalog := NewCatalog()
	catalog.Games[key] = &CatalogEntry{
		Key:      key,
		Title:    "Mario",
		Path:     "/games/snes/mario.sfc",
		Size:     8,
		Platform: "Super Nintendo",
	}
	require.NoError(t, store.Save(catalog))

	require.NoError(t, store.UpdatePlaytime(catalog, key, 300))
	require.Equal(t, int64(300), catalog.Games[key].Playtime)

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, int64(300), loaded.Games[key].Playtime)

	// unknown keys are a no-op
	require.NoError(t, store.UpdatePlaytime(catalog, "absent", 1))
}

func TestCatalogStoreInvalidate(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(NewCatalog()))

	store.Invalidate()
	_, err := os.Stat(filepath.Join(filepath.Dir(store.path()), CATALOG_FILENAME))
	require.True(t, os.IsNotExist(err))
}
