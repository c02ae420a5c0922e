package db

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

const CATALOG_FILENAME = "catalog.json"

// Returned by Load when no usable catalog cache exists, the caller must
// run a fresh scan
var ErrCatalogNotFound = errors.New("no usable catalog cache")

// CatalogStore persists the catalog snapshot as one flat key -> entry JSON
// map. Writes are serialized, scan completion and playtime persistence may
// race from different goroutines.
type CatalogStore struct {
	baseFolder string
	logger     *zap.SugaredLogger
	mu         sync.Mutex
}

func NewCatalogStore(baseFolder string, logger *zap.SugaredLogger) *CatalogStore {
	return &CatalogStore{baseFolder: baseFolder, logger: logger}
}

func (cs *CatalogStore) path() string {
	return filepath.Join(cs.baseFolder, CATALOG_FILENAME)
}

// Load reads the cached catalog. A malformed payload or an entry missing a
// required field invalidates the cache and reports ErrCatalogNotFound -
// consumers never see partially-typed entries.
func (cs *CatalogStore) Load() (*Catalog, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	buf, err := os.ReadFile(cs.path())
	if err != nil {
		return nil, ErrCatalogNotFound
	}

	games := map[string]*CatalogEntry{}
	if err := json.Unmarshal(buf, &games); err != nil {
		cs.logger.Warnf("discarding malformed catalog cache - %v", err)
		cs.invalidateLocked()
		return nil, ErrCatalogNotFound
	}

	for key, entry := range games {
		if entry == nil || entry.Key == "" || entry.Title == "" || entry.Path == "" || entry.Platform == "" || entry.Size < 0 || entry.Key != key {
			cs.logger.Warnf("discarding catalog cache, entry [%v] is incomplete", key)
			cs.invalidateLocked()
			return nil, ErrCatalogNotFound
		}
	}

	return &Catalog{Games: games}, nil
}

// Save writes the full snapshot
func (cs *CatalogStore) Save(catalog *Catalog) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.saveLocked(catalog)
}

// UpdatePlaytime folds a new playtime total into the live entry and writes
// the snapshot. Mutation and marshal happen under the same lock, concurrent
// trackers never modify an entry another tracker is serializing.
func (cs *CatalogStore) UpdatePlaytime(catalog *Catalog, key string, total int64) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	entry, ok := catalog.Games[key]
	if !ok {
		return nil
	}
	entry.Playtime = total
	return cs.saveLocked(catalog)
}

func (cs *CatalogStore) saveLocked(catalog *Catalog) error {
	buf, err := json.Marshal(catalog.Games)
	if err != nil {
		return err
	}
	return os.WriteFile(cs.path(), buf, 0644)
}

// Invalidate removes the cache file
func (cs *CatalogStore) Invalidate() {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.invalidateLocked()
}

func (cs *CatalogStore) invalidateLocked() {
	if err := os.Remove(cs.path()); err != nil && !os.IsNotExist(err) {
		cs.logger.Warnf("failed to remove catalog cache - %v", err)
	}
}
