package db

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/emuhub/emulator-hub/settings"
)

func newTestScanner(appSettings *settings.AppSettings, cache *PersistentDB) *LibraryScanner {
	return NewLibraryScanner(NewClassifier(nil), cache, appSettings, zap.NewNop().Sugar())
}

func writeGame(t *testing.T, path string, size int) {
	require.NoError(t, os.MkdirAll(filepath.Dir(path), os.ModePerm))
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte{0xAA}, size), 0644))
}

func findByPath(catalog *Catalog, path string) *CatalogEntry {
	return catalog.Games[ComputeKey(path)]
}

func TestScanSingleGame(t *testing.T) {
	root := t.TempDir()
	gamePath := filepath.Join(root, "SNES", "Mario.sfc")
	writeGame(t, gamePath, 2097152)

	catalog, err := newTestScanner(nil, nil).Scan([]string{root}, nil)
	require.NoError(t, err)
	require.Len(t, catalog.Games, 1)

	entry := findByPath(catalog, gamePath)
	require.NotNil(t, entry)
	require.Equal(t, "Mario", entry.Title)
	require.Equal(t, "Super Nintendo", entry.Platform)
	require.Equal(t, int64(2097152), entry.Size)
	require.Len(t, entry.Key, KEY_LENGTH)
}

func TestScanSkipsHiddenAndUnknown(t *testing.T) {
	root := t.TempDir()
	writeGame(t, filepath.Join(root, "snes", "Mario.sfc"), 8)
	writeGame(t, filepath.Join(root, ".stash", "Zelda.sfc"), 8)
	writeGame(t, filepath.Join(root, "snes", ".Mario.sfc.part"), 8)
	writeGame(t, filepath.Join(root, "docs", "readme.txt"), 8)

	catalog, err := newTestScanner(nil, nil).Scan([]string{root}, nil)
	require.NoError(t, err)
	require.Len(t, catalog.Games, 1)
	require.NotNil(t, findByPath(catalog, filepath.Join(root, "snes", "Mario.sfc")))
}

func TestScanNormalizesGameBoyColor(t *testing.T) {
	root := t.TempDir()
	gamePath := filepath.Join(root, "gbc", "Pokemon.gbc")
	writeGame(t, gamePath, 8)

	catalog, err := newTestScanner(nil, nil).Scan([]string{root}, nil)
	require.NoError(t, err)
	require.Equal(t, PLATFORM_GAME_BOY, findByPath(catalog, gamePath).Platform)
}

func TestScanPs3FolderIsOneGame(t *testing.T) {
	root := t.TempDir()
	gameDir := filepath.Join(root, "ps3", "My Game")
	writeGame(t, filepath.Join(gameDir, PS3_MARKER_DIR, "USRDIR", "EBOOT.BIN"), 100)
	writeGame(t, filepath.Join(gameDir, PS3_MARKER_DIR, "ICON0.PNG"), 50)

	catalog, err := newTestScanner(nil, nil).Scan([]string{root}, nil)
	require.NoError(t, err)
	require.Len(t, catalog.Games, 1)

	entry := findByPath(catalog, gameDir)
	require.NotNil(t, entry)
	require.Equal(t, PLATFORM_PS3, entry.Platform)
	require.Equal(t, "My Game", entry.Title)
	require.Equal(t, int64(150), entry.Size)
}

func TestScanDeduplicatesSymlinkedGame(t *testing.T) {
	root := t.TempDir()
	gamePath := filepath.Join(root, "ps2", "Game.iso")
	writeGame(t, gamePath, 16)

	linkDir := filepath.Join(root, "ps2", "backup")
	require.NoError(t, os.MkdirAll(linkDir, os.ModePerm))
	require.NoError(t, os.Symlink(gamePath, filepath.Join(linkDir, "Game.iso")))

	catalog, err := newTestScanner(nil, nil).Scan([]string{root}, nil)
	require.NoError(t, err)
	require.Len(t, catalog.Games, 1)
}

func TestScanCarriesMetadataOverlay(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	appSettings := settings.NewAppSettings(t.TempDir())

	root := t.TempDir()
	gamePath := filepath.Join(root, "snes", "Mario.sfc")
	writeGame(t, gamePath, 8)

	key := ComputeKey(gamePath)
	appSettings.AddPlaytime(key, 120)
	appSettings.SetCustomEmulator(key, "Snes9x")

	catalog, err := newTestScanner(appSettings, nil).Scan([]string{root}, nil)
	require.NoError(t, err)

	entry := catalog.Games[key]
	require.NotNil(t, entry)
	require.Equal(t, int64(120), entry.Playtime)
	require.Equal(t, "Snes9x", entry.CustomEmulator)
}

func TestScanSkipsUnreadableRoot(t *testing.T) {
	goodRoot := t.TempDir()
	gamePath := filepath.Join(goodRoot, "snes", "Mario.sfc")
	writeGame(t, gamePath, 8)

	missingRoot := filepath.Join(t.TempDir(), "unplugged-drive")

	catalog, err := newTestScanner(nil, nil).Scan([]string{missingRoot, goodRoot}, nil)
	require.NoError(t, err)
	require.Len(t, catalog.Games, 1)
	require.NotNil(t, findByPath(catalog, gamePath))
}

func TestScanRejectsConcurrentScan(t *testing.T) {
	scanner := newTestScanner(nil, nil)
	scanner.state.Store(SCAN_STATE_SCANNING)

	_, err := scanner.Scan([]string{t.TempDir()}, nil)
	require.ErrorIs(t, err, ErrScanInProgress)

	scanner.state.Store(SCAN_STATE_IDLE)
	_, err = scanner.Scan([]string{t.TempDir()}, nil)
	require.NoError(t, err)
}

func TestScanUsesSizeCache(t *testing.T) {
	cache, err := NewPersistentDB(t.TempDir())
	require.NoError(t, err)
	defer cache.Close()

	root := t.TempDir()
	gameDir := filepath.Join(root, "ps3", "My Game")
	writeGame(t, filepath.Join(gameDir, PS3_MARKER_DIR, "USRDIR", "EBOOT.BIN"), 100)

	scanner := newTestScanner(nil, cache)

	catalog, err := scanner.Scan([]string{root}, nil)
	require.NoError(t, err)
	require.Equal(t, int64(100), findByPath(catalog, gameDir).Size)

	// second scan with an unchanged mtime is served from the cache
	catalog, err = scanner.Scan([]string{root}, nil)
	require.NoError(t, err)
	require.Equal(t, int64(100), findByPath(catalog, gameDir).Size)

	info, err := os.Stat(gameDir)
	require.NoError(t, err)

	cached := int64(-1)
	cacheKey := gameDir + "|" + strconv.FormatInt(info.ModTime().Unix(), 10)
	require.NoError(t, cache.GetEntry(DB_TABLE_SCAN_METADATA, cacheKey, &cached))
	require.Equal(t, int64(100), cached)
}

type countingProgress struct {
	calls int
	last  int
	total int
}

func (p *countingProgress) UpdateProgress(curr int, total int, message string) {
	p.calls++
	p.last = curr
	p.total = total
}

func TestScanReportsProgress(t *testing.T) {
	root := t.TempDir()
	writeGame(t, filepath.Join(root, "snes", "Mario.sfc"), 8)
	writeGame(t, filepath.Join(root, "snes", "Zelda.sfc"), 8)

	progress := &countingProgress{}
	_, err := newTestScanner(nil, nil).Scan([]string{root}, progress)
	require.NoError(t, err)

	require.Greater(t, progress.calls, 0)
	require.Equal(t, progress.total, progress.last)
}
