package settings

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetWorkingFolder(t *testing.T) {
	exePath, workingFolder, err := GetWorkingFolder()
	require.NoError(t, err)
	require.NotEmpty(t, exePath)

	if !strings.Contains(filepath.Dir(exePath), ".app") {
		require.Equal(t, filepath.Dir(exePath), workingFolder)
	}
}
