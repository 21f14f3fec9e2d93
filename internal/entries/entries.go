// Package entries maps discovered pages to bundler entry points.
package entries

import (
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vk/bundlegen/internal/discovery"
	"github.com/vk/bundlegen/internal/manifest"
)

// Dev bootstrap modules, in the order they must run.
const (
	FrameworkHotPatchModule = "react-hot-loader/patch"
	DevServerClientModule   = "webpack-dev-server/client"
	HotUpdateRuntimeModule  = "webpack/hot/dev-server"
)

// EntryDefinition is one bundler entry: the modules loaded in order, the page's
// own script always last.
type EntryDefinition struct {
	Key     string
	Modules []string
}

// Options parameterize entry construction.
type Options struct {
	Framework             manifest.Framework
	HotReloadForFramework bool
	// DevServerAddress is appended to the dev-server client as its query, e.g.
	// "http://localhost:8080". Ignored in production.
	DevServerAddress string
	// ModulesDir, when set, is the toolchain's node_modules directory the
	// bootstrap modules are resolved from.
	ModulesDir string
	// WorkDir turns page script paths into absolute paths.
	WorkDir string
}

// Key returns the entry key of a page: "{module}/bundle.{page}".
func Key(p discovery.PageDescriptor) string {
	return p.ModuleName + "/bundle." + p.PageName
}

// Build returns one entry per page. In development, the dev bootstrap modules
// precede the page script so the live-reload client initializes first.
func Build(pages []discovery.PageDescriptor, mode manifest.Mode, opts Options) (map[string]EntryDefinition, error) {
	if !opts.Framework.Valid() {
		return nil, &manifest.ConfigError{Field: "ui_framework", Reason: fmt.Sprintf("unsupported framework %q", opts.Framework)}
	}

	prefix := Bootstrap(mode, opts)
	out := make(map[string]EntryDefinition, len(pages))
	for _, p := range pages {
		key := Key(p)
		if _, dup := out[key]; dup {
			return nil, &discovery.DiscoveryError{Module: p.ModuleName, Page: p.PageName, Reason: "entry key " + key + " is produced twice"}
		}
		modules := make([]string, 0, len(prefix)+1)
		modules = append(modules, prefix...)
		modules = append(modules, joinWorkDir(opts.WorkDir, p.ScriptPath))
		out[key] = EntryDefinition{Key: key, Modules: modules}
	}
	return out, nil
}

// Bootstrap returns the modules prepended to every page entry in mode.
func Bootstrap(mode manifest.Mode, opts Options) []string {
	if !mode.IsDev() {
		return nil
	}
	var modules []string
	if opts.HotReloadForFramework && opts.Framework == manifest.FrameworkReact {
		modules = append(modules, FrameworkHotPatchModule)
	}
	client := toolchainModule(opts.ModulesDir, DevServerClientModule)
	if opts.DevServerAddress != "" {
		client += "?" + opts.DevServerAddress
	}
	modules = append(modules, client, toolchainModule(opts.ModulesDir, HotUpdateRuntimeModule))
	return modules
}

// Keys returns the entry keys sorted.
func Keys(entries map[string]EntryDefinition) []string {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// LibraryEntries returns one entry per library, keyed by library name, with the
// library files resolved under sourceDir (a slash path relative to workDir).
func LibraryEntries(libraries []manifest.Library, workDir, sourceDir string) map[string]EntryDefinition {
	out := make(map[string]EntryDefinition, len(libraries))
	for _, lib := range libraries {
		modules := make([]string, 0, len(lib.Files))
		for _, f := range lib.Files {
			modules = append(modules, joinWorkDir(workDir, SourcePath(sourceDir, f)))
		}
		out[lib.Name] = EntryDefinition{Key: lib.Name, Modules: modules}
	}
	return out
}

// SourcePath resolves a manifest file reference against the source directory,
// producing a clean slash path.
func SourcePath(sourceDir, file string) string {
	return path.Join(sourceDir, strings.TrimPrefix(filepath.ToSlash(file), "/"))
}

func toolchainModule(modulesDir, module string) string {
	if modulesDir == "" {
		return module
	}
	return filepath.ToSlash(filepath.Join(modulesDir, module))
}

func joinWorkDir(workDir, rel string) string {
	if workDir == "" {
		return rel
	}
	return filepath.Join(workDir, filepath.FromSlash(rel))
}
