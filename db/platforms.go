package db

import (
	"path/filepath"
	"strings"
)

const (
	PLATFORM_PS3            = "PlayStation 3"
	PLATFORM_GAME_BOY       = "Game Boy"
	PLATFORM_GAME_BOY_COLOR = "Game Boy Color"
	PLATFORM_PC             = "PC"

	// A directory containing this marker is a single PlayStation 3 game unit
	PS3_MARKER_DIR = "PS3_GAME"
)

// Lower-cased folder name -> platform label. An ancestor folder match takes
// priority over the file extension, organized libraries are usually grouped
// by platform folder.
var platformFolderAliases = map[string]string{
	"gamecube":              "GameCube",
	"gc":                    "GameCube",
	"wii":                   "Wii",
	"playstation 2":         "PlayStation 2",
	"ps2":                   "PlayStation 2",
	"playstation 3":         PLATFORM_PS3,
	"ps3":                   PLATFORM_PS3,
	"nintendo switch":       "Nintendo Switch",
	"switch":                "Nintendo Switch",
	"playstation":           "PlayStation",
	"psx":                   "PlayStation",
	"ps1":                   "PlayStation",
	"psp":                   "PSP",
	"playstation portable":  "PSP",
	"xbox":                  "Xbox",
	"xbox 360":              "Xbox 360",
	"x360":                  "Xbox 360",
	"nintendo 3ds":          "Nintendo 3DS",
	"3ds":                   "Nintendo 3DS",
	"nintendo ds":           "Nintendo DS",
	"ds":                    "Nintendo DS",
	"dreamcast":             "Dreamcast",
	"dc":                    "Dreamcast",
	"super nintendo":        "Super Nintendo",
	"snes":                  "Super Nintendo",
	"sega genesis":          "Sega Genesis",
	"genesis":               "Sega Genesis",
	"mega drive":            "Sega Genesis",
	"turbografx-16":         "TurboGrafx-16",
	"pc engine":             "TurboGrafx-16",
	"game boy":              PLATFORM_GAME_BOY,
	"gb":                    PLATFORM_GAME_BOY,
	"game boy color":        PLATFORM_GAME_BOY_COLOR,
	"gbc":                   PLATFORM_GAME_BOY_COLOR,
	"game boy advance":      "Game Boy Advance",
	"gba":                   "Game Boy Advance",
	"sega game gear":        "Sega Game Gear",
	"gg":                    "Sega Game Gear",
	"atari lynx":            "Atari Lynx",
	"lynx":                  "Atari Lynx",
	"pc":                    PLATFORM_PC,
	"windows":               PLATFORM_PC,
}

// Lower-cased file extension -> platform label
var gameExtensions = map[string]string{
	".iso":     "PlayStation 2",
	".pkg":     PLATFORM_PS3,
	".gcz":     "GameCube",
	".rvz":     "GameCube",
	".wbfs":    "Wii",
	".xci":     "Nintendo Switch",
	".nsp":     "Nintendo Switch",
	".chd":     "PlayStation",
	".cue":     "PlayStation",
	".bin":     "PlayStation",
	".cso":     "PSP",
	".3ds":     "Nintendo 3DS",
	".cci":     "Nintendo 3DS",
	".nds":     "Nintendo DS",
	".gdi":     "Dreamcast",
	".cdi":     "Dreamcast",
	".z64":     "Nintendo 64",
	".sfc":     "Super Nintendo",
	".smc":     "Super Nintendo",
	".md":      "Sega Genesis",
	".smd":     "Sega Genesis",
	".gen":     "Sega Genesis",
	".pce":     "TurboGrafx-16",
	".gb":      PLATFORM_GAME_BOY,
	".gbc":     PLATFORM_GAME_BOY_COLOR,
	".gba":     "Game Boy Advance",
	".gg":      "Sega Game Gear",
	".lnx":     "Atari Lynx",
	".exe":     PLATFORM_PC,
	".lnk":     PLATFORM_PC,
	".url":     PLATFORM_PC,
	".desktop": PLATFORM_PC,
}

// Compound extension checked before the plain one, Xbox dumps carry
// an inner .xiso marker
const XBOX_COMPOUND_EXT = ".xiso.iso"

// Platforms whose entries run without an external emulator
var directExecPlatforms = map[string]struct{}{
	PLATFORM_PC: {},
}

// Classifier maps a path and file name to a platform label
type Classifier struct {
	folderAliases map[string]string
}

// NewClassifier builds a classifier from the built-in alias table plus
// optional user overrides (overrides win on collision).
func NewClassifier(extraAliases map[string]string) *Classifier {
	aliases := make(map[string]string, len(platformFolderAliases)+len(extraAliases))
	for k, v := range platformFolderAliases {
		aliases[k] = v
	}
	for k, v := range extraAliases {
		aliases[strings.ToLower(k)] = v
	}
	return &Classifier{folderAliases: aliases}
}

// Classify resolves the platform for a file living in dir. The ancestor
// folder signal is tried first and always wins; the extension signal is the
// fallback. An empty result means the file is not a game.
func (c *Classifier) Classify(dir string, fileName string) string {
	if platform := c.platformFromAncestors(dir); platform != "" {
		return platform
	}

	name := strings.ToLower(fileName)
	if strings.HasSuffix(name, XBOX_COMPOUND_EXT) {
		return "Xbox"
	}
	return gameExtensions[filepath.Ext(name)]
}

// Walk the parent chain upward looking for a platform folder alias
func (c *Classifier) platformFromAncestors(dir string) string {
	p := filepath.Clean(dir)
	for {
		if platform, ok := c.folderAliases[strings.ToLower(filepath.Base(p))]; ok {
			return platform
		}
		parent := filepath.Dir(p)
		if parent == p {
			return ""
		}
		p = parent
	}
}

// NormalizePlatform collapses labels that share a catalog bucket.
// Game Boy Color titles live under Game Boy (shared handheld lineage).
func NormalizePlatform(platform string) string {
	if platform == PLATFORM_GAME_BOY_COLOR {
		return PLATFORM_GAME_BOY
	}
	return platform
}

// IsDirectExec reports whether entries of this platform are executed
// directly rather than handed to an emulator
func IsDirectExec(platform string) bool {
	_, ok := directExecPlatforms[platform]
	return ok
}
