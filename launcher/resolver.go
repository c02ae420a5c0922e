package launcher

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"mvdan.cc/sh/v3/shell"

	"github.com/emuhub/emulator-hub/db"
	"github.com/emuhub/emulator-hub/settings"
)

const ROM_PLACEHOLDER = "%ROM%"

// LaunchPlan is a resolved process invocation, argv plus optional working
// directory, ready to be spawned without a shell
type LaunchPlan struct {
	Argv       []string
	WorkingDir string
}

// A started game process, what the playtime tracker attaches to
type LaunchHandle struct {
	Pid       int32
	Key       string
	StartedAt time.Time
}

// Resolver turns a catalog entry plus an optional emulator profile into a
// concrete process invocation
type Resolver struct {
	settings *settings.AppSettings
	logger   *zap.SugaredLogger
}

func NewResolver(appSettings *settings.AppSettings, logger *zap.SugaredLogger) *Resolver {
	return &Resolver{settings: appSettings, logger: logger}
}

// Resolve determines the concrete launch target and builds the invocation.
// Direct-execution platforms need no profile; everything else fails with
// ErrMissingEmulator when none is supplied.
func (r *Resolver) Resolve(entry *db.CatalogEntry, profile *settings.EmulatorProfile) (*LaunchPlan, error) {
	target, err := launchablePath(entry)
	if err != nil {
		return nil, err
	}

	if db.IsDirectExec(entry.Platform) {
		return &LaunchPlan{
			Argv:       []string{filepath.Clean(target)},
			WorkingDir: filepath.Dir(target),
		}, nil
	}

	if profile == nil {
		return nil, ErrMissingEmulator
	}

	argv, err := buildCommand(profile.Path, profile.Args, target)
	if err != nil {
		return nil, err
	}
	return &LaunchPlan{Argv: argv}, nil
}

// Launch resolves the entry, spawns the process and records the entry in
// the recently played list
func (r *Resolver) Launch(entry *db.CatalogEntry, profile *settings.EmulatorProfile) (*LaunchHandle, error) {
	plan, err := r.Resolve(entry, profile)
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(plan.Argv[0], plan.Argv[1:]...)
	cmd.Dir = plan.WorkingDir
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProcessStartFailed, err)
	}

	// reap the child so liveness polling observes the real exit
	go cmd.Wait()

	r.logger.Infof("launched [%v] (pid %v)", entry.Title, cmd.Process.Pid)

	if r.settings != nil {
		r.settings.AddToRecents(entry.Key)
	}

	return &LaunchHandle{
		Pid:       int32(cmd.Process.Pid),
		Key:       entry.Key,
		StartedAt: time.Now(),
	}, nil
}

// launchablePath applies the platform-specific nested-package rules to find
// the file that is actually executed (or fed to the emulator)
func launchablePath(entry *db.CatalogEntry) (string, error) {
	switch entry.Platform {
	case db.PLATFORM_PS3:
		return ps3LaunchablePath(entry.Path)
	case db.PLATFORM_PC:
		return pcLaunchablePath(entry.Path)
	}
	return entry.Path, nil
}

// PlayStation 3 disc dumps are directories, the real executable sits a few
// levels down. If the deep executable is missing but the marker directory
// exists, the container itself is handed to the emulator (it performs its
// own descent).
func ps3LaunchablePath(path string) (string, error) {
	if strings.HasSuffix(strings.ToLower(path), ".pkg") {
		return "", ErrPackageNotLaunchable
	}

	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return path, nil
	}

	eboot := filepath.Join(path, db.PS3_MARKER_DIR, "USRDIR", "EBOOT.BIN")
	if _, err := os.Stat(eboot); err == nil {
		return eboot, nil
	}
	if _, err := os.Stat(filepath.Join(path, db.PS3_MARKER_DIR)); err == nil {
		return path, nil
	}
	return "", ErrNoLaunchTarget
}

// A PC game stored as a folder resolves to the most plausible executable
// among its immediate children
func pcLaunchablePath(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", ErrNoLaunchTarget
	}
	if !info.IsDir() {
		return path, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return "", ErrNoLaunchTarget
	}

	var first, game, launch string
	for _, e := range entries {
		if e.IsDir() || !isExecutable(e) {
			continue
		}
		name := strings.ToLower(e.Name())
		full := filepath.Join(path, e.Name())
		if first == "" {
			first = full
		}
		if game == "" && strings.Contains(name, "game") {
			game = full
		}
		if launch == "" && strings.Contains(name, "launch") {
			launch = full
		}
	}

	for _, candidate := range []string{game, launch, first} {
		if candidate != "" {
			return candidate, nil
		}
	}
	return "", ErrNoLaunchTarget
}

func isExecutable(e os.DirEntry) bool {
	switch strings.ToLower(filepath.Ext(e.Name())) {
	case ".exe", ".bat", ".cmd", ".lnk":
		return true
	}
	info, err := e.Info()
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Mode().Perm()&0111 != 0
}

// buildCommand builds the argv vector from the profile's argument template.
// A %ROM% placeholder receives the quote-wrapped target in place, otherwise
// the target is appended as a final bare argument. The template is split
// with shell word rules (quoted substrings respected), the spawn itself
// never touches a shell.
func buildCommand(emulatorPath string, argsTemplate string, gamePath string) ([]string, error) {
	normEmulator := filepath.Clean(emulatorPath)
	normGame := filepath.Clean(gamePath)

	command := []string{normEmulator}
	if argsTemplate == "" {
		return append(command, normGame), nil
	}

	if strings.Contains(argsTemplate, ROM_PLACEHOLDER) {
		full := strings.ReplaceAll(argsTemplate, ROM_PLACEHOLDER, `"`+normGame+`"`)
		fields, err := shell.Fields(full, nil)
		if err != nil {
			return nil, err
		}
		return append(command, fields...), nil
	}

	fields, err := shell.Fields(argsTemplate, nil)
	if err != nil {
		return nil, err
	}
	command = append(command, fields...)
	return append(command, normGame), nil
}
