package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadFolderAliases(t *testing.T) {
	dir := t.TempDir()
	payload := "MegaDrive = Sega Genesis\nfamicom=Super Nintendo\nempty=\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ALIASES_FILENAME), []byte(payload), 0644))

	aliases := LoadFolderAliases(dir)
	require.Equal(t, map[string]string{
		"megadrive": "Sega Genesis",
		"famicom":   "Super Nintendo",
	}, aliases)
}

func TestLoadFolderAliasesMissingFile(t *testing.T) {
	require.Nil(t, LoadFolderAliases(t.TempDir()))
}
