// Package externals turns the manifest's external dependencies into a module
// alias table and the list of files copied verbatim next to the bundles.
package externals

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/vk/bundlegen/internal/ctxlog"
	"github.com/vk/bundlegen/internal/manifest"
)

// AssetsDir is where copied externals land, relative to the output directory.
const AssetsDir = "assets"

// CopySpec copies From into the directory To.
type CopySpec struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// Result is what the resolver derives from the externals. Includes are the
// page-relative asset paths every generated page must reference, in the same
// order as Copies.
type Result struct {
	Aliases  map[string]string
	Copies   []CopySpec
	Includes []string
	Warnings []string
}

// Resolve maps every external with an alias into the alias table and every
// external with a path into a copy instruction plus a page include. fsys is
// the work directory; workDir and outputDir are the host paths the copy
// instructions are written against. An external with neither field, or a path
// glob matching nothing, only produces a warning.
func Resolve(ctx context.Context, fsys fs.FS, externals []manifest.External, workDir, outputDir string) (Result, error) {
	logger := ctxlog.FromContext(ctx)
	res := Result{
		Aliases:  make(map[string]string),
		Copies:   []CopySpec{},
		Includes: []string{},
	}
	dest := filepath.Join(outputDir, AssetsDir)

	for _, ext := range externals {
		if ext.Alias == "" && ext.Path == "" {
			res.Warnings = append(res.Warnings, fmt.Sprintf("external %q declares neither alias nor path and has no effect", ext.Name))
			continue
		}
		if ext.Alias != "" {
			res.Aliases[ext.Name] = ext.Alias
		}
		if ext.Path == "" {
			continue
		}

		files, warning, err := expand(fsys, ext)
		if err != nil {
			return Result{}, err
		}
		if warning != "" {
			res.Warnings = append(res.Warnings, warning)
		}
		for _, f := range files {
			res.Copies = append(res.Copies, CopySpec{
				From: filepath.Join(workDir, filepath.FromSlash(f)),
				To:   dest,
			})
			res.Includes = append(res.Includes, path.Join(AssetsDir, path.Base(f)))
		}
		logger.Debug("Resolved external asset.", "external", ext.Name, "files", len(files))
	}
	return res, nil
}

// expand returns the work-dir relative files an external's path names. A
// plain path is taken as is; a glob is matched against fsys.
func expand(fsys fs.FS, ext manifest.External) ([]string, string, error) {
	rel := path.Clean(strings.TrimPrefix(filepath.ToSlash(ext.Path), "./"))
	if !hasMeta(rel) {
		if _, err := fs.Stat(fsys, rel); err != nil {
			return []string{rel}, fmt.Sprintf("external %q path %q does not exist yet", ext.Name, ext.Path), nil
		}
		return []string{rel}, "", nil
	}

	if !doublestar.ValidatePattern(rel) {
		return nil, "", &manifest.ConfigError{Field: "externals." + ext.Name, Reason: fmt.Sprintf("invalid path pattern %q", ext.Path)}
	}
	found, err := doublestar.Glob(fsys, rel)
	if err != nil {
		return nil, "", fmt.Errorf("failed to expand external %q path %q: %w", ext.Name, ext.Path, err)
	}
	var matches []string
	for _, m := range found {
		if info, err := fs.Stat(fsys, m); err == nil && !info.IsDir() {
			matches = append(matches, m)
		}
	}
	sort.Strings(matches)
	if len(matches) == 0 {
		return nil, fmt.Sprintf("external %q path pattern %q matches no files", ext.Name, ext.Path), nil
	}
	return matches, "", nil
}

func hasMeta(p string) bool {
	return strings.ContainsAny(p, "*?[{")
}
