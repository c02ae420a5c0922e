package launcher

import (
	"time"

	"github.com/shirou/gopsutil/v4/process"
	"go.uber.org/zap"

	"github.com/emuhub/emulator-hub/db"
	"github.com/emuhub/emulator-hub/settings"
)

const PLAYTIME_POLL_INTERVAL = 5 * time.Second

// ProcessWatcher answers whether a launched process is still running.
// Injected so hosts without liveness support simply skip tracking.
type ProcessWatcher interface {
	IsAlive(pid int32) bool
}

type gopsutilWatcher struct{}

func (gopsutilWatcher) IsAlive(pid int32) bool {
	alive, err := process.PidExists(pid)
	return err == nil && alive
}

// NewProcessWatcher returns the default liveness capability
func NewProcessWatcher() ProcessWatcher {
	return gopsutilWatcher{}
}

// PlaytimeTracker observes launched processes and folds elapsed wall-clock
// time into the entry's accumulated playtime on exit. One tracker serves
// any number of concurrent launches, each gets its own polling goroutine.
type PlaytimeTracker struct {
	watcher  ProcessWatcher
	settings *settings.AppSettings
	store    *db.CatalogStore
	logger   *zap.SugaredLogger
	interval time.Duration
}

// Constructor for the playtime tracker. Returns nil when no watcher is
// available - the caller then skips tracking entirely.
func NewPlaytimeTracker(watcher ProcessWatcher, appSettings *settings.AppSettings, store *db.CatalogStore, logger *zap.SugaredLogger) *PlaytimeTracker {
	if watcher == nil {
		return nil
	}
	return &PlaytimeTracker{
		watcher:  watcher,
		settings: appSettings,
		store:    store,
		logger:   logger,
		interval: PLAYTIME_POLL_INTERVAL,
	}
}

// Track polls the handle's process until it exits, then accounts the
// elapsed time exactly once and persists the catalog. The returned channel
// closes when accounting is done.
func (pt *PlaytimeTracker) Track(catalog *db.Catalog, handle *LaunchHandle) <-chan struct{} {
	done := make(chan struct{})
	go pt.poll(catalog, handle, done)
	return done
}

func (pt *PlaytimeTracker) poll(catalog *db.Catalog, handle *LaunchHandle, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(pt.interval)
	defer ticker.Stop()

	for range ticker.C {
		if pt.watcher.IsAlive(handle.Pid) {
			continue
		}

		elapsed := int64(time.Since(handle.StartedAt).Seconds())
		total := pt.settings.AddPlaytime(handle.Key, elapsed)
		pt.logger.Infof("process %v exited, playtime +%vs (total %vs)", handle.Pid, elapsed, total)

		if catalog == nil {
			return
		}
		if pt.store != nil {
			// entry mutation goes through the store lock, trackers from
			// concurrent launches share the catalog
			if err := pt.store.UpdatePlaytime(catalog, handle.Key, total); err != nil {
				pt.logger.Warnf("failed to persist catalog after playtime update - %v", err)
			}
		} else if entry, ok := catalog.Games[handle.Key]; ok {
			entry.Playtime = total
		}
		return
	}
}
