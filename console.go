package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/jedib0t/go-pretty/table"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/emuhub/emulator-hub/db"
	"github.com/emuhub/emulator-hub/launcher"
	"github.com/emuhub/emulator-hub/settings"
)

var (
	addRoot      = flag.String("add-root", "", "add a folder to the game library roots")
	rescan       = flag.Bool("rescan", false, "discard the catalog cache and scan the library again")
	launchTitle  = flag.String("launch", "", "launch the game whose title matches")
	emulatorName = flag.String("emulator", "", "emulator profile to use with -launch (overrides defaults)")
	addEmulator  = flag.String("add-emulator", "", "path to an emulator executable to auto-detect and register")
	emulatorsDir = flag.String("scan-emulators", "", "folder to scan for known emulator executables")
	progressBar  *progressbar.ProgressBar
)

type Console struct {
	baseFolder  string
	settings    *settings.AppSettings
	sugarLogger *zap.SugaredLogger
}

func CreateConsole(baseFolder string, appSettings *settings.AppSettings, sugarLogger *zap.SugaredLogger) *Console {
	return &Console{baseFolder: baseFolder, settings: appSettings, sugarLogger: sugarLogger}
}

func (c *Console) Start() {
	flag.Parse()

	newUpdate, _ := settings.CheckForUpdates()
	if newUpdate {
		fmt.Printf("\n=== New version available, download from Github ===\n")
	}

	if *addRoot != "" {
		root, err := filepath.Abs(*addRoot)
		if err != nil {
			fmt.Printf("invalid library root [%v] - %v\n", *addRoot, err)
			return
		}
		c.settings.AddLibraryRoot(root)
		fmt.Printf("Added library root [%v]\n", root)
	}

	if *addEmulator != "" {
		c.registerEmulator(*addEmulator)
	}

	if *emulatorsDir != "" {
		found := launcher.ScanForEmulators(*emulatorsDir, c.settings, c.sugarLogger)
		fmt.Printf("Found and added %d new emulator(s)\n", found)
	}

	pdb, err := db.NewPersistentDB(c.baseFolder)
	if err != nil {
		c.sugarLogger.Warnf("failed to open scan cache, sizes will be recomputed - %v", err)
		pdb = nil
	} else {
		defer pdb.Close()
	}

	store := db.NewCatalogStore(c.baseFolder, c.sugarLogger)
	if *rescan {
		store.Invalidate()
	}

	catalog, err := store.Load()
	if err != nil {
		if !errors.Is(err, db.ErrCatalogNotFound) {
			fmt.Printf("failed to load catalog - %v\n", err)
			return
		}
		catalog = c.scanLibrary(pdb, store)
		if catalog == nil {
			return
		}
	} else {
		fmt.Printf("Library loaded from cache (%d games)\n", len(catalog.Games))
	}

	c.printCatalog(catalog)

	if *launchTitle != "" {
		c.launchGame(catalog, store, *launchTitle)
	}
}

func (c *Console) scanLibrary(pdb *db.PersistentDB, store *db.CatalogStore) *db.Catalog {
	roots := c.settings.LibraryRoots
	if len(roots) == 0 {
		fmt.Printf("\nNo library roots configured, add one with -add-root\n")
		return nil
	}

	classifier := db.NewClassifier(settings.LoadFolderAliases(c.baseFolder))
	scanner := db.NewLibraryScanner(classifier, pdb, c.settings, c.sugarLogger)
	if *rescan {
		scanner.ClearScanData()
	}

	fmt.Printf("\nScanning library %v\n", roots)
	progressBar = progressbar.New(2000)
	catalog, err := scanner.Scan(roots, c)
	if err != nil {
		fmt.Printf("\nfailed to scan library - %v\n", err)
		return nil
	}
	progressBar.Finish()

	if err := store.Save(catalog); err != nil {
		c.sugarLogger.Errorf("failed to persist catalog - %v", err)
	}
	fmt.Printf("\nLibrary scan complete (%d games)\n", len(catalog.Games))
	return catalog
}

func (c *Console) registerEmulator(exePath string) {
	detected := launcher.Detect(exePath)
	if detected == nil {
		fmt.Printf("Could not identify emulator [%v], add it to settings.json manually\n", exePath)
		return
	}
	if err := c.settings.AddEmulator(detected.Name, detected.Profile); err != nil {
		fmt.Printf("%v\n", err)
		return
	}
	fmt.Printf("Auto-detected and added '%v'\n", detected.Name)
}

func (c *Console) printCatalog(catalog *db.Catalog) {
	if len(catalog.Games) == 0 {
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleColoredBright)
	t.AppendHeader(table.Row{"#", "Title", "Platform", "Size", "Time Played", "Fav"})
	i := 0
	buckets := catalog.ByPlatform()
	for _, platform := range catalog.Platforms() {
		entries := buckets[platform]
		sort.Slice(entries, func(a, b int) bool { return entries[a].Title < entries[b].Title })
		for _, entry := range entries {
			fav := ""
			if c.settings.IsFavorite(entry.Key) {
				fav = "*"
			}
			t.AppendRow([]interface{}{i, entry.Title, entry.Platform, formatSize(entry.Size), formatPlaytime(entry.Playtime), fav})
			i++
		}
	}
	t.AppendFooter(table.Row{"", "", "", "", "Total", len(catalog.Games)})
	t.Render()
}

func (c *Console) launchGame(catalog *db.Catalog, store *db.CatalogStore, title string) {
	entry := catalog.FindByTitle(title)
	if entry == nil {
		fmt.Printf("No game matching [%v] in the catalog\n", title)
		return
	}

	profile, name, err := c.chooseProfile(entry)
	if err != nil {
		fmt.Printf("%v\n", err)
		return
	}

	resolver := launcher.NewResolver(c.settings, c.sugarLogger)
	handle, err := resolver.Launch(entry, profile)
	if err != nil {
		fmt.Printf("Launch failed: %v\n", err)
		return
	}
	if name != "" {
		fmt.Printf("Launching %v via %v...\n", entry.Title, name)
	} else {
		fmt.Printf("Launching %v...\n", entry.Title)
	}

	tracker := launcher.NewPlaytimeTracker(launcher.NewProcessWatcher(), c.settings, store, c.sugarLogger)
	if tracker == nil {
		return
	}
	// keep the process alive until the game exits so playtime lands
	<-tracker.Track(catalog, handle)
	fmt.Printf("Time played: %v\n", formatPlaytime(catalog.Games[entry.Key].Playtime))
}

// Profile resolution order: explicit -emulator flag, per-game custom
// emulator, platform default, then any configured profile for the system.
// Direct-execution platforms never need one.
func (c *Console) chooseProfile(entry *db.CatalogEntry) (*settings.EmulatorProfile, string, error) {
	if db.IsDirectExec(entry.Platform) {
		return nil, "", nil
	}

	lookup := func(name string) (*settings.EmulatorProfile, string, error) {
		if profile, ok := c.settings.Emulators[name]; ok {
			return &profile, name, nil
		}
		return nil, "", fmt.Errorf("the emulator '%v' is not configured", name)
	}

	if *emulatorName != "" {
		return lookup(*emulatorName)
	}
	if entry.CustomEmulator != "" {
		return lookup(entry.CustomEmulator)
	}
	if name, ok := c.settings.PlatformDefaults[entry.Platform]; ok {
		return lookup(name)
	}

	available := c.settings.ProfilesForSystem(entry.Platform)
	if len(available) == 0 {
		return nil, "", fmt.Errorf("no emulator configured for %v", entry.Platform)
	}
	sort.Slice(available, func(a, b int) bool { return available[a].Name < available[b].Name })
	return &available[0].Profile, available[0].Name, nil
}

func (c *Console) UpdateProgress(curr int, total int, message string) {
	progressBar.ChangeMax(total)
	progressBar.Set(curr)
}

func formatSize(sizeBytes int64) string {
	if sizeBytes == 0 {
		return "0 B"
	}
	units := []string{"B", "KB", "MB", "GB", "TB"}
	size := float64(sizeBytes)
	i := 0
	for size >= 1024 && i < len(units)-1 {
		size /= 1024
		i++
	}
	return fmt.Sprintf("%.2f %s", size, units[i])
}

func formatPlaytime(seconds int64) string {
	if seconds == 0 {
		return "Never Played"
	}
	return (time.Duration(seconds) * time.Second).String()
}
