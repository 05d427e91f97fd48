package source

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FormatOf maps a file extension to an import format.
func FormatOf(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, true
	case ".jsonl", ".ndjson":
		return FormatJSONL, true
	}
	return "", false
}

// ScanPaths expands the given files and directories into importable files.
// Directories are walked recursively and unknown extensions inside them are
// skipped; an explicitly named file with an unknown extension is an error.
func ScanPaths(paths []string) ([]DiscoveredFile, error) {
	var files []DiscoveredFile
	seen := make(map[string]struct{})

	add := func(path string, format Format) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, DiscoveredFile{Path: path, Format: format})
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			format, ok := FormatOf(p)
			if !ok {
				return nil, fmt.Errorf("%s: unsupported file type (want .csv or .jsonl)", p)
			}
			add(p, format)
			continue
		}

		var found []DiscoveredFile
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil //nolint:nilerr // unreadable entries are skipped
			}
			if d.IsDir() {
				return nil
			}
			if format, ok := FormatOf(path); ok {
				found = append(found, DiscoveredFile{Path: path, Format: format})
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		sort.Slice(found, func(i, j int) bool { return found[i].Path < found[j].Path })
		for _, f := range found {
			add(f.Path, f.Format)
		}
	}
	return files, nil
}
