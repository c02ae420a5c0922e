package settings

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// GetWorkingFolder resolves the folder the running executable lives in,
// the fallback home for settings, the catalog cache and logs when no
// homedir is available. Returns the executable path and its folder.
func GetWorkingFolder() (string, string, error) {
	exePath, exeErr := os.Executable()
	if exeErr != nil {
		return "", "", exeErr
	}

	workingFolder := filepath.Dir(exePath)

	// on macOS the binary sits inside the .app bundle, state files belong
	// next to the bundle, not inside it
	if runtime.GOOS == "darwin" {
		if strings.Contains(workingFolder, ".app") {
			appIndex := strings.Index(workingFolder, ".app")
			sepIndex := strings.LastIndex(workingFolder[:appIndex], string(os.PathSeparator))
			workingFolder = workingFolder[:sepIndex]
		}
	}

	return exePath, workingFolder, nil
}
