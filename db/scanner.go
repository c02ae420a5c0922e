package db

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/emuhub/emulator-hub/settings"
)

const (
	SCAN_STATE_IDLE int32 = iota
	SCAN_STATE_SCANNING
)

var ErrScanInProgress = errors.New("a library scan is already running")

// LibraryScanner walks the configured roots and produces one atomic
// catalog snapshot. Only one scan may be in flight at a time, a second
// request is rejected until the first completes.
type LibraryScanner struct {
	classifier *Classifier
	cache      *PersistentDB
	settings   *settings.AppSettings
	logger     *zap.SugaredLogger
	state      atomic.Int32
}

// Constructor for the library scanner. The persistent cache may be nil,
// directory sizes are then recomputed on every scan.
func NewLibraryScanner(classifier *Classifier, cache *PersistentDB, appSettings *settings.AppSettings, logger *zap.SugaredLogger) *LibraryScanner {
	return &LibraryScanner{
		classifier: classifier,
		cache:      cache,
		settings:   appSettings,
		logger:     logger,
	}
}

// ClearScanData drops the incremental size cache
func (ls *LibraryScanner) ClearScanData() error {
	if ls.cache == nil {
		return nil
	}
	return ls.cache.ClearTable(DB_TABLE_SCAN_METADATA)
}

// Scan walks every root and returns the full catalog snapshot.
// Per-item failures are absorbed and logged; an unreadable root is skipped
// for that root only. Progress is monotonic against a pre-pass item count.
func (ls *LibraryScanner) Scan(roots []string, progress ProgressUpdater) (*Catalog, error) {
	if !ls.state.CompareAndSwap(SCAN_STATE_IDLE, SCAN_STATE_SCANNING) {
		return nil, ErrScanInProgress
	}
	defer ls.state.Store(SCAN_STATE_IDLE)

	total := countItems(roots)
	processed := 0
	catalog := NewCatalog()

	for _, root := range roots {
		ls.scanRoot(root, catalog, progress, total, &processed)
	}

	if progress != nil {
		progress.UpdateProgress(total, total, "Complete")
	}

	return catalog, nil
}

// Pre-pass, counts every file and directory under all roots so progress
// can be reported as processed/total
func countItems(roots []string) int {
	total := 0
	for _, root := range roots {
		filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if path != root {
				total++
			}
			return nil
		})
	}
	return total
}

func (ls *LibraryScanner) scanRoot(root string, catalog *Catalog, progress ProgressUpdater, total int, processed *int) {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			ls.logger.Warnf("skipping unreadable path [%v] - %v", path, err)
			return nil
		}
		if path == root {
			return nil
		}

		name := d.Name()

		// prune hidden files and folders
		if strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		*processed++
		if progress != nil {
			progress.UpdateProgress(*processed, total, name)
		}

		if d.IsDir() {
			// a folder holding the PS3 marker is one game unit, do not
			// descend into its internals
			if info, statErr := os.Stat(filepath.Join(path, PS3_MARKER_DIR)); statErr == nil && info.IsDir() {
				ls.addEntry(catalog, PLATFORM_PS3, name, path, true)
				return filepath.SkipDir
			}
			return nil
		}

		platform := ls.classifier.Classify(filepath.Dir(path), name)
		if platform == "" {
			return nil
		}
		ls.addEntry(catalog, platform, name, path, false)
		return nil
	})

	if err != nil {
		// entries under this root will be absent from the snapshot
		ls.logger.Errorf("library root [%v] is unreadable, skipping it - %v", root, err)
	}
}

func (ls *LibraryScanner) addEntry(catalog *Catalog, platform string, titleSource string, path string, isDir bool) {
	platform = NormalizePlatform(platform)

	key := ComputeKey(path)
	if _, ok := catalog.Games[key]; ok {
		return
	}

	entry := &CatalogEntry{
		Key:      key,
		Title:    CleanTitle(titleSource),
		Path:     path,
		Size:     ls.sizeOf(path, isDir),
		Platform: platform,
	}

	// carry over user state attached to this key on previous scans
	if ls.settings != nil {
		meta := ls.settings.MetadataFor(key)
		entry.Playtime = meta.Playtime
		entry.CustomEmulator = meta.CustomEmulator
		entry.Notes = meta.Notes
		entry.Tags = meta.Tags
	}

	catalog.Games[key] = entry
}

// sizeOf computes total bytes for an item. A file that vanished mid-walk
// counts as 0 rather than failing the scan. Directory sums are served from
// the bolt cache when the directory's mtime is unchanged.
func (ls *LibraryScanner) sizeOf(path string, isDir bool) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	if !isDir {
		return info.Size()
	}

	cacheKey := path + "|" + strconv.FormatInt(info.ModTime().Unix(), 10)
	if ls.cache != nil {
		cached := int64(-1)
		if err := ls.cache.GetEntry(DB_TABLE_SCAN_METADATA, cacheKey, &cached); err != nil {
			ls.logger.Warnf("%v", err)
		}
		if cached >= 0 {
			return cached
		}
	}

	size := dirSize(path)

	if ls.cache != nil {
		if err := ls.cache.AddEntry(DB_TABLE_SCAN_METADATA, cacheKey, size); err != nil {
			ls.logger.Warnf("%v", err)
		}
	}
	return size
}

func dirSize(path string) int64 {
	var size int64
	filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			size += info.Size()
		}
		return nil
	})
	return size
}
