package launcher

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/emuhub/emulator-hub/settings"
)

// A known emulator signature. Matching is a lower-cased substring test of
// the executable file name, so "Dolphin-x64.exe" matches "dolphin".
type EmulatorSignature struct {
	Name        string
	Executables []string
	Systems     []string
	DefaultArgs string
}

// Table order is significant, the first match wins
var knownEmulators = []EmulatorSignature{
	// Handhelds
	{Name: "mGBA", Executables: []string{"mgba"}, Systems: []string{"Game Boy", "Game Boy Color", "Game Boy Advance"}},
	{Name: "VisualBoyAdvance-M", Executables: []string{"visualboyadvance-m", "vbam"}, Systems: []string{"Game Boy", "Game Boy Color", "Game Boy Advance"}},
	{Name: "SameBoy", Executables: []string{"sameboy"}, Systems: []string{"Game Boy", "Game Boy Color"}},
	// 4th generation
	{Name: "Snes9x", Executables: []string{"snes9x"}, Systems: []string{"Super Nintendo"}},
	{Name: "Mesen", Executables: []string{"mesen"}, Systems: []string{"Super Nintendo"}},
	{Name: "Kega Fusion", Executables: []string{"fusion"}, Systems: []string{"Sega Genesis", "Sega Game Gear"}},
	{Name: "BlastEm", Executables: []string{"blastem"}, Systems: []string{"Sega Genesis"}},
	// 6th generation
	{Name: "Dolphin", Executables: []string{"dolphin"}, Systems: []string{"GameCube", "Wii"}},
	{Name: "PCSX2", Executables: []string{"pcsx2", "pcsx2-qt"}, Systems: []string{"PlayStation 2"}},
	{Name: "Xemu", Executables: []string{"xemu"}, Systems: []string{"Xbox"}},
	{Name: "Redream", Executables: []string{"redream"}, Systems: []string{"Dreamcast"}},
	{Name: "Flycast", Executables: []string{"flycast"}, Systems: []string{"Dreamcast"}},
	// 5th generation
	{Name: "DuckStation", Executables: []string{"duckstation-qt", "duckstation-nogui"}, Systems: []string{"PlayStation"}},
	{Name: "Project64", Executables: []string{"project64"}, Systems: []string{"Nintendo 64"}},
	{Name: "simple64", Executables: []string{"simple64-gui", "simple64-cli"}, Systems: []string{"Nintendo 64"}},
	{Name: "Mednafen", Executables: []string{"mednafen"}, Systems: []string{"PlayStation", "Sega Saturn", "Super Nintendo", "Sega Genesis", "TurboGrafx-16", "Atari Lynx"}},
	{Name: "YabaSanshiro", Executables: []string{"yabasanshiro"}, Systems: []string{"Sega Saturn"}},
	{Name: "Kronos", Executables: []string{"kronos"}, Systems: []string{"Sega Saturn"}},
	// Later generations
	{Name: "RPCS3", Executables: []string{"rpcs3"}, Systems: []string{"PlayStation 3"}},
	{Name: "Xenia", Executables: []string{"xenia"}, Systems: []string{"Xbox 360"}},
}

// Detect matches an executable against the known emulator table and
// returns a pre-populated profile, or nil when the executable is unknown
// and the caller must fall back to manual entry
func Detect(exePath string) *settings.NamedProfile {
	fileName := strings.ToLower(filepath.Base(exePath))

	for _, sig := range knownEmulators {
		for _, exe := range sig.Executables {
			if strings.Contains(fileName, exe) {
				return &settings.NamedProfile{
					Name: "[Auto] " + sig.Name,
					Profile: settings.EmulatorProfile{
						Path:    exePath,
						Systems: sig.Systems,
						Args:    sig.DefaultArgs,
					},
				}
			}
		}
	}
	return nil
}

// ScanForEmulators walks a folder, auto-detects every known emulator
// executable inside it and registers the ones not configured yet.
// Returns how many new profiles were added.
func ScanForEmulators(dir string, appSettings *settings.AppSettings, logger *zap.SugaredLogger) int {
	found := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		detected := Detect(path)
		if detected == nil {
			return nil
		}
		if addErr := appSettings.AddEmulator(detected.Name, detected.Profile); addErr == nil {
			logger.Infof("registered emulator [%v] -> %v", detected.Name, path)
			found++
		} else if !errors.Is(addErr, settings.ErrEmulatorExists) {
			logger.Warnf("failed to register emulator [%v] - %v", detected.Name, addErr)
		}
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		logger.Warnf("emulator scan of [%v] failed - %v", dir, err)
	}
	return found
}
