package db

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"robpike.io/nihongo"
)

var (
	bracketedRegex  = regexp.MustCompile(`\[.*?]`)
	parenthessRegex = regexp.MustCompile(`\(.*?\)`)
	xisoSuffixRegex = regexp.MustCompile(`(?i)\.xiso$`)
)

// A single game in the catalog. The overlay fields (playtime onwards) are
// user state merged in from settings, everything else is derived from the
// filesystem walk.
type CatalogEntry struct {
	Key            string   `json:"key"`
	Title          string   `json:"title"`
	Path           string   `json:"path"`
	Size           int64    `json:"size"`
	Platform       string   `json:"platform"`
	Playtime       int64    `json:"playtime,omitempty"`
	CustomEmulator string   `json:"custom_emulator,omitempty"`
	Notes          string   `json:"notes,omitempty"`
	Tags           []string `json:"tags,omitempty"`
}

// Catalog is one atomic scan snapshot, a flat key -> entry map.
// Platform buckets are derived, not stored.
type Catalog struct {
	Games map[string]*CatalogEntry
}

func NewCatalog() *Catalog {
	return &Catalog{Games: map[string]*CatalogEntry{}}
}

// ByPlatform groups the catalog into platform buckets
func (c *Catalog) ByPlatform() map[string][]*CatalogEntry {
	buckets := map[string][]*CatalogEntry{}
	for _, entry := range c.Games {
		buckets[entry.Platform] = append(buckets[entry.Platform], entry)
	}
	return buckets
}

// Platforms returns the sorted platform labels present in the catalog
func (c *Catalog) Platforms() []string {
	seen := map[string]struct{}{}
	for _, entry := range c.Games {
		seen[entry.Platform] = struct{}{}
	}
	platforms := make([]string, 0, len(seen))
	for p := range seen {
		platforms = append(platforms, p)
	}
	sort.Strings(platforms)
	return platforms
}

// FindByTitle returns the first entry whose title contains the query
// (case-insensitive), preferring an exact match
func (c *Catalog) FindByTitle(query string) *CatalogEntry {
	query = strings.ToLower(query)
	var partial *CatalogEntry
	for _, entry := range c.Games {
		title := strings.ToLower(entry.Title)
		if title == query {
			return entry
		}
		if partial == nil && strings.Contains(title, query) {
			partial = entry
		}
	}
	return partial
}

// CleanTitle derives a display title from a file or directory name:
// extension and release annotations stripped, separators normalized,
// Japanese titles transliterated for sorting.
func CleanTitle(source string) string {
	title := strings.TrimSuffix(source, filepath.Ext(source))
	title = xisoSuffixRegex.ReplaceAllString(title, "")
	title = bracketedRegex.ReplaceAllString(title, "")
	title = parenthessRegex.ReplaceAllString(title, "")
	title = strings.ReplaceAll(title, ".", " ")
	title = strings.ReplaceAll(title, "_", " ")
	title = strings.TrimSpace(title)
	if title == "" {
		// annotation-only names clean down to nothing, keep the raw stem
		title = strings.TrimSpace(strings.TrimSuffix(source, filepath.Ext(source)))
	}
	return nihongo.RomajiString(title)
}
