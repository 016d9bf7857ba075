package processor

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"nefconv/internal/config"
)

// ListSourceFiles returns the names of regular files directly inside dir
// whose extension matches one of exts (case-insensitive), sorted.
func ListSourceFiles(dir string, exts []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	want := make(map[string]bool, len(exts))
	for _, ext := range exts {
		want[config.NormalizeExt(ext)] = true
	}

	var names []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if want[strings.ToLower(filepath.Ext(entry.Name()))] {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Items wraps file names as work items.
func Items(names []string) []WorkItem {
	items := make([]WorkItem, len(names))
	for i, name := range names {
		items[i] = WorkItem{Name: name}
	}
	return items
}
