package settings

import (
	"path/filepath"
	"strings"

	"github.com/magiconair/properties"
)

const ALIASES_FILENAME = "aliases.properties"

// LoadFolderAliases reads the optional platform-folder alias overrides.
// Each line maps a lower-cased folder name to a platform label, e.g.
//
//	megadrive = Sega Genesis
//
// A missing file is not an error, the built-in alias table stands alone.
func LoadFolderAliases(baseFolder string) map[string]string {
	p, err := properties.LoadFile(filepath.Join(baseFolder, ALIASES_FILENAME), properties.UTF8)
	if err != nil {
		return nil
	}

	aliases := map[string]string{}
	for _, key := range p.Keys() {
		value, _ := p.Get(key)
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		aliases[strings.ToLower(strings.TrimSpace(key))] = value
	}

	return aliases
}
