package settings

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
)

const (
	SETTINGS_DIR      = "emulator-hub"
	SETTINGS_FILENAME = "settings.json"
	EMUHUB_VERSION    = "1.0.0"
	EMUHUB_VERSION_URL = "https://raw.githubusercontent.com/emuhub/emulator-hub/master/emuhub.json"

	// Most-recent-first, deduplicated, hard capped.
	RECENTS_CAP = 20
)

var (
	ErrEmulatorExists = errors.New("an emulator with this name is already configured")
)

// Configuration of a single external emulator
type EmulatorProfile struct {
	Path    string   `json:"path"`
	Systems []string `json:"systems"`
	Args    string   `json:"args"`
}

// An emulator profile together with its registry name
type NamedProfile struct {
	Name    string
	Profile EmulatorProfile
}

// User-attached overlay for a catalog entry, keyed by the entry key.
// Lives in the settings file so it survives catalog invalidation.
type GameMetadata struct {
	Playtime       int64    `json:"playtime,omitempty"`
	CustomEmulator string   `json:"custom_emulator,omitempty"`
	Notes          string   `json:"notes,omitempty"`
	Tags           []string `json:"tags,omitempty"`
}

// Settings of the application
type AppSettings struct {
	// Extra internal settings
	// `json:"-"` to ignore when marshalling
	baseFolder string `json:"-"`
	Homedir    string `json:"-"`
	mu         sync.Mutex
	// Unmarshalled from the JSON file
	LibraryRoots     []string                   `json:"game_library_paths"`
	Emulators        map[string]EmulatorProfile `json:"emulators"`
	PlatformDefaults map[string]string          `json:"platform_defaults"`
	Favorites        []string                   `json:"favorites"`
	Recents          []string                   `json:"recently_played"`
	GameMetadata     map[string]GameMetadata    `json:"game_metadata"`
	Debug            bool                       `json:"debug"`
}

// Constructor for settings
func NewAppSettings(workingFolder string) *AppSettings {
	a := AppSettings{}
	a.setBase(workingFolder)
	a.switchToHomedir()
	a.read()

	return &a
}

// Set the base folder
func (a *AppSettings) setBase(base string) {
	a.baseFolder = base
}

// Switch the settings base folder inside the homedir
func (a *AppSettings) switchToHomedir() {
	var homedirErr error
	a.Homedir, homedirErr = os.UserHomeDir()

	if homedirErr == nil {
		basedir := a.GetHomedirPath()

		// Create a folder if it does not exist
		if mkDirErr := os.MkdirAll(basedir, os.ModePerm); mkDirErr == nil {
			// Change the base
			a.setBase(basedir)
		}
	}
}

// Get the homedir settings path
func (a *AppSettings) GetHomedirPath() string {
	return filepath.Join(a.Homedir, SETTINGS_DIR)
}

// Get the base folder the settings live in
func (a *AppSettings) BaseFolder() string {
	return a.baseFolder
}

// Get the settings file path
func (a *AppSettings) getPath() string {
	return filepath.Join(a.baseFolder, SETTINGS_FILENAME)
}

// Read the file
func (a *AppSettings) read() {
	// Reading the file
	buf, bufErr := os.ReadFile(a.getPath())

	// If error fill with defaults
	if bufErr != nil {
		zap.S().Warnf("Missing or corrupted settings file, creating a new one.")
		a.defaults()
		a.Save()
	} else {
		// Otherwise unmarshal it
		if jsonErr := a.Load(buf); jsonErr != nil {
			zap.S().Warnf("Missing or corrupted settings file, creating a new one.")
			a.defaults()
			a.Save()
		}
	}

	// Maps stay non-nil even when the file predates a field
	if a.Emulators == nil {
		a.Emulators = map[string]EmulatorProfile{}
	}
	if a.PlatformDefaults == nil {
		a.PlatformDefaults = map[string]string{}
	}
	if a.GameMetadata == nil {
		a.GameMetadata = map[string]GameMetadata{}
	}
}

// Fill the structure with default values
func (a *AppSettings) defaults() {
	a.LibraryRoots = []string{}
	a.Emulators = map[string]EmulatorProfile{}
	a.PlatformDefaults = map[string]string{}
	a.Favorites = []string{}
	a.Recents = []string{}
	a.GameMetadata = map[string]GameMetadata{}
	a.Debug = false
}

// Save to file (ignore errors)
func (a *AppSettings) Save() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.persistLocked()
}

func (a *AppSettings) persistLocked() {
	// Marshal the struct into JSON bytes
	jsonBytes, jsonErr := json.MarshalIndent(a, "", "  ")
	if jsonErr == nil {
		// Write the file
		os.WriteFile(a.getPath(), jsonBytes, 0644)
	}
}

// Return settings as JSON
func (a *AppSettings) ToJSON() string {
	// Marshal the struct into JSON bytes
	jsonBytes, jsonErr := json.MarshalIndent(a, "", "  ")
	if jsonErr != nil {
		return ""
	}

	return string(jsonBytes)
}

// Load a JSON payload
func (a *AppSettings) Load(payload []byte) error {
	jsonErr := json.Unmarshal(payload, a)
	if jsonErr != nil {
		return jsonErr
	}

	return nil
}

// Add a library root, ignoring duplicates
func (a *AppSettings) AddLibraryRoot(root string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, r := range a.LibraryRoots {
		if r == root {
			return
		}
	}
	a.LibraryRoots = append(a.LibraryRoots, root)
	a.persistLocked()
}

// Move a key to the front of the recently played list
func (a *AppSettings) AddToRecents(key string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	recents := make([]string, 0, len(a.Recents)+1)
	recents = append(recents, key)
	for _, k := range a.Recents {
		if k != key {
			recents = append(recents, k)
		}
	}
	if len(recents) > RECENTS_CAP {
		recents = recents[:RECENTS_CAP]
	}
	a.Recents = recents
	a.persistLocked()
}

// Toggle a key in the favorites list, returns the new state
func (a *AppSettings) ToggleFavorite(key string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i, k := range a.Favorites {
		if k == key {
			a.Favorites = append(a.Favorites[:i], a.Favorites[i+1:]...)
			a.persistLocked()
			return false
		}
	}
	a.Favorites = append(a.Favorites, key)
	a.persistLocked()
	return true
}

// Check whether a key is a favorite
func (a *AppSettings) IsFavorite(key string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, k := range a.Favorites {
		if k == key {
			return true
		}
	}
	return false
}

// Get the metadata overlay for a key (zero value when absent)
func (a *AppSettings) MetadataFor(key string) GameMetadata {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.GameMetadata[key]
}

// Add played seconds to a key's accumulated playtime, returns the new total
func (a *AppSettings) AddPlaytime(key string, seconds int64) int64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	meta := a.GameMetadata[key]
	meta.Playtime += seconds
	a.GameMetadata[key] = meta
	a.persistLocked()
	return meta.Playtime
}

// Set or clear (empty name) the custom emulator override for a key
func (a *AppSettings) SetCustomEmulator(key string, name string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	meta := a.GameMetadata[key]
	meta.CustomEmulator = name
	a.GameMetadata[key] = meta
	a.persistLocked()
}

// Register an emulator profile, names are unique
func (a *AppSettings) AddEmulator(name string, profile EmulatorProfile) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.Emulators[name]; ok {
		return ErrEmulatorExists
	}
	a.Emulators[name] = profile
	a.persistLocked()
	return nil
}

// Remove an emulator profile by name
func (a *AppSettings) RemoveEmulator(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.Emulators, name)
	a.persistLocked()
}

// All configured profiles that can run the given system
func (a *AppSettings) ProfilesForSystem(system string) []NamedProfile {
	a.mu.Lock()
	defer a.mu.Unlock()

	found := []NamedProfile{}
	for name, profile := range a.Emulators {
		for _, s := range profile.Systems {
			if strings.EqualFold(s, system) {
				found = append(found, NamedProfile{Name: name, Profile: profile})
				break
			}
		}
	}
	return found
}

// Set the default emulator for a platform
func (a *AppSettings) SetPlatformDefault(platform string, name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.PlatformDefaults[platform] = name
	a.persistLocked()
}

// Clear the default emulator for a platform
func (a *AppSettings) ClearPlatformDefault(platform string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.PlatformDefaults, platform)
	a.persistLocked()
}
