// Package fsutil provides read-only file system helpers over fs.FS.
package fsutil

import (
	"io/fs"
	"path"
	"sort"
	"strings"
)

// FindFilesByExtension recursively searches root within fsys for files ending
// with any of the given extensions (case-insensitive). Paths are slash-separated
// and relative to fsys, returned in lexical order.
func FindFilesByExtension(fsys fs.FS, root string, extensions ...string) ([]string, error) {
	if len(extensions) == 0 {
		panic("at least one extension is required")
	}

	var files []string
	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := strings.ToLower(d.Name())
		for _, ext := range extensions {
			if strings.HasSuffix(name, strings.ToLower(ext)) {
				files = append(files, p)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// SubDirs lists the immediate subdirectories of dir in directory-listing order.
func SubDirs(fsys fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			dirs = append(dirs, e.Name())
		}
	}
	return dirs, nil
}

// TrimExt strips the extension from the base name of p.
func TrimExt(p string) string {
	base := path.Base(p)
	return strings.TrimSuffix(base, path.Ext(base))
}
