package launcher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/emuhub/emulator-hub/settings"
)

func TestDetectKnownEmulator(t *testing.T) {
	detected := Detect("/emus/Dolphin-x64.exe")
	require.NotNil(t, detected)
	require.Equal(t, "[Auto] Dolphin", detected.Name)
	require.Equal(t, "/emus/Dolphin-x64.exe", detected.Profile.Path)
	require.Contains(t, detected.Profile.Systems, "GameCube")
	require.Contains(t, detected.Profile.Systems, "Wii")
}

func TestDetectCaseInsensitive(t *testing.T) {
	detected := Detect("/opt/RPCS3.AppImage")
	require.NotNil(t, detected)
	require.Equal(t, "[Auto] RPCS3", detected.Name)
}

func TestDetectUnknownExecutable(t *testing.T) {
	require.Nil(t, Detect("/usr/bin/notepad.exe"))
	require.Nil(t, Detect("/usr/bin/vlc"))
}

func TestDetectFirstMatchWins(t *testing.T) {
	detected := Detect("/emus/duckstation-qt")
	require.NotNil(t, detected)
	require.Equal(t, "[Auto] DuckStation", detected.Name)
}

func TestScanForEmulators(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	appSettings := settings.NewAppSettings(t.TempDir())

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mgba.exe"), []byte("x"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "snes9x-x64.exe"), []byte("x"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("x"), 0644))

	found := ScanForEmulators(dir, appSettings, zap.NewNop().Sugar())
	require.Equal(t, 2, found)
	require.Contains(t, appSettings.Emulators, "[Auto] mGBA")
	require.Contains(t, appSettings.Emulators, "[Auto] Snes9x")

	// already registered, nothing new
	require.Equal(t, 0, ScanForEmulators(dir, appSettings, zap.NewNop().Sugar()))
}
