package launcher

import "errors"

var (
	// No emulator profile was supplied for a platform that needs one
	ErrMissingEmulator = errors.New("no emulator configured for this platform")

	// The stored path yields nothing executable
	ErrNoLaunchTarget = errors.New("could not determine a launchable file for this game")

	// Installable package files are handed to the emulator's own installer,
	// they cannot be launched directly
	ErrPackageNotLaunchable = errors.New("package file must be installed through the emulator first")

	// OS-level spawn failure, wraps the underlying error
	ErrProcessStartFailed = errors.New("failed to start emulator")
)
