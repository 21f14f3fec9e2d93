package modgraph

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

// Extensions are probed, in order, when a relative import omits its extension.
var Extensions = []string{".js", ".jsx", ".ts", ".tsx"}

// ErrUnresolved is returned when a relative import names no existing file.
var ErrUnresolved = errors.New("modgraph: unresolved import")

// IsRelative reports whether spec refers to a project file rather than a package.
func IsRelative(spec string) bool {
	return strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../") || strings.HasPrefix(spec, "/") || spec == "." || spec == ".."
}

// Resolve turns an import specifier found in the file from into a module id.
// It is the resolver behind the esbuild plugin, which never touches the disk.
// Loader prefixes ("style!css!./x.css") and queries ("./x?inline") are dropped.
// Bare specifiers become their package name; relative ones are resolved against
// the importing file with extension and index probing. Absolute specifiers are
// taken relative to the root of fsys.
func Resolve(fsys fs.FS, from, spec string) (string, error) {
	spec = cleanSpecifier(spec)
	if spec == "" {
		return "", fmt.Errorf("%w: empty specifier in %s", ErrUnresolved, from)
	}
	if !IsRelative(spec) {
		return PackageName(spec), nil
	}

	var base string
	if strings.HasPrefix(spec, "/") {
		base = path.Clean(strings.TrimPrefix(spec, "/"))
	} else {
		base = path.Join(path.Dir(from), spec)
	}
	if base == ".." || strings.HasPrefix(base, "../") {
		return "", fmt.Errorf("%w: %q imported by %s escapes the project", ErrUnresolved, spec, from)
	}

	candidates := []string{base}
	for _, ext := range Extensions {
		candidates = append(candidates, base+ext)
	}
	for _, ext := range Extensions {
		candidates = append(candidates, path.Join(base, "index"+ext))
	}
	for _, c := range candidates {
		info, err := fs.Stat(fsys, c)
		if err == nil && !info.IsDir() {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q imported by %s", ErrUnresolved, spec, from)
}

// PackageName reduces a bare specifier to its package: "lodash/fp" becomes
// "lodash", "@scope/pkg/sub" becomes "@scope/pkg".
func PackageName(spec string) string {
	parts := strings.Split(spec, "/")
	if strings.HasPrefix(spec, "@") && len(parts) >= 2 {
		return parts[0] + "/" + parts[1]
	}
	return parts[0]
}

func cleanSpecifier(spec string) string {
	if i := strings.LastIndex(spec, "!"); i >= 0 {
		spec = spec[i+1:]
	}
	if i := strings.IndexAny(spec, "?#"); i >= 0 {
		spec = spec[:i]
	}
	return strings.TrimSpace(spec)
}
