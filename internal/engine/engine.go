package engine

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/vk/bundlegen/internal/assemble"
	"github.com/vk/bundlegen/internal/chunks"
	"github.com/vk/bundlegen/internal/ctxlog"
	"github.com/vk/bundlegen/internal/discovery"
	"github.com/vk/bundlegen/internal/entries"
	"github.com/vk/bundlegen/internal/externals"
	"github.com/vk/bundlegen/internal/manifest"
	"github.com/vk/bundlegen/internal/modgraph"
	"github.com/vk/bundlegen/internal/pages"
	"github.com/vk/bundlegen/internal/registry"
	"github.com/vk/bundlegen/internal/rules"
)

// Default project layout, relative to the work directory.
const (
	DefaultSourceDir = "src"
	DefaultPageDir   = "src/pages"
)

// Request is one synthesis run.
type Request struct {
	WorkDir  string
	Mode     manifest.Mode
	Manifest manifest.Manifest
	// DevServerAddress parameterizes the dev-server client, e.g.
	// "http://localhost:8080". Development only.
	DevServerAddress string
	ModulesDir       string
	// SourceDir and PageDir are slash paths relative to WorkDir.
	SourceDir string
	PageDir   string
	Define    map[string]string
	// FS reads the work directory; os.DirFS(WorkDir) when nil.
	FS fs.FS
	// Builder scans imports; a fresh one is created when nil. Share one
	// across runs over the same tree to scan each file once.
	Builder  *modgraph.Builder
	Registry *registry.Registry
}

// Result is a synthesized configuration plus the non-fatal conditions found on
// the way.
type Result struct {
	Config   *assemble.BuildConfiguration
	Pages    []discovery.PageDescriptor
	Warnings []string
}

// Synthesize produces the configuration for req. Any error aborts the run and
// no partial result is returned.
func Synthesize(ctx context.Context, req Request) (*Result, error) {
	logger := ctxlog.FromContext(ctx).With("mode", req.Mode)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Synthesis started.", "work_dir", req.WorkDir)

	if _, err := manifest.ParseMode(string(req.Mode)); err != nil {
		return nil, err
	}
	m := req.Manifest
	if err := m.Validate(); err != nil {
		return nil, err
	}

	fsys := req.FS
	if fsys == nil {
		fsys = os.DirFS(req.WorkDir)
	}
	sourceDir := orDefault(req.SourceDir, DefaultSourceDir)
	pageDir := orDefault(req.PageDir, DefaultPageDir)

	if err := checkLibraryFiles(fsys, m.Libraries, sourceDir); err != nil {
		return nil, err
	}

	pageList, err := discovery.Discover(ctx, fsys, pageDir)
	if err != nil {
		return nil, err
	}

	pageEntries, err := entries.Build(pageList, req.Mode, entries.Options{
		Framework:             m.UIFramework,
		HotReloadForFramework: m.HotReloadForFramework,
		DevServerAddress:      req.DevServerAddress,
		ModulesDir:            req.ModulesDir,
		WorkDir:               req.WorkDir,
	})
	if err != nil {
		return nil, err
	}

	builder := req.Builder
	if builder == nil {
		if builder, err = modgraph.NewBuilder(modgraph.DefaultCacheSize); err != nil {
			return nil, err
		}
	}
	groups, err := planChunks(ctx, builder, fsys, m, sourceDir, pageList)
	if err != nil {
		return nil, err
	}

	ruleList, err := rules.Build(rules.Options{
		Mode:                 req.Mode,
		BrowserTargets:       m.BrowserTargets.For(req.Mode),
		PublicPathPrefix:     m.PublicPathPrefix,
		Base64:               m.Base64Inline,
		Framework:            m.UIFramework,
		LegacyBrowserSupport: m.LegacyBrowserSupport,
		UseBuiltIns:          m.UseBuiltIns,
		SVGAsComponent:       m.SVGAsComponent,
	})
	if err != nil {
		return nil, err
	}

	outputDir := m.OutputDir
	if !filepath.IsAbs(outputDir) {
		outputDir = filepath.Join(req.WorkDir, filepath.FromSlash(outputDir))
	}
	ext, err := externals.Resolve(ctx, fsys, m.Externals, req.WorkDir, outputDir)
	if err != nil {
		return nil, err
	}

	docs, err := pages.Plan(pageList, groups, pages.Options{
		Mode:                req.Mode,
		UseFolderAsPageName: m.UseFolderAsPageName,
		WorkDir:             req.WorkDir,
	})
	if err != nil {
		return nil, err
	}

	cfg, err := assemble.Assemble(assemble.Input{
		Mode:       req.Mode,
		OutputDir:  outputDir,
		Pages:      pageEntries,
		Libraries:  entries.LibraryEntries(m.Libraries, req.WorkDir, sourceDir),
		Groups:     groups,
		Rules:      ruleList,
		Externals:  ext,
		Documents:  docs,
		Define:     req.Define,
		ModulesDir: req.ModulesDir,
		Registry:   req.Registry,
	})
	if err != nil {
		return nil, err
	}

	for _, w := range ext.Warnings {
		logger.Warn("External asset has no effect or no files.", "detail", w)
	}
	warnings := append([]string(nil), ext.Warnings...)
	for _, w := range unhandledLibraryFiles(m.Libraries, ruleList) {
		logger.Warn("Library file matches no transform rule.", "detail", w)
		warnings = append(warnings, w)
	}

	logger.Info("Synthesis complete.", "pages", len(pageList), "chunk_groups", len(groups), "plugins", len(cfg.Plugins))
	logger.Debug("Configuration summary.", "entries", cfg.EntryKeys(), "documents", cfg.Documents(), "plugins", cfg.PluginNames())
	return &Result{Config: cfg, Pages: pageList, Warnings: warnings}, nil
}

// unhandledLibraryFiles reports library files no rule would transform; the
// bundler rejects them at build time.
func unhandledLibraryFiles(libraries []manifest.Library, ruleList []rules.TransformRule) []string {
	var out []string
	for _, lib := range libraries {
		for _, f := range lib.Files {
			if _, ok := rules.Match(ruleList, f); !ok {
				out = append(out, fmt.Sprintf("libraries.%s: %s matches no transform rule", lib.Name, f))
			}
		}
	}
	return out
}

// checkLibraryFiles fails on the first library file missing from the source
// directory.
func checkLibraryFiles(fsys fs.FS, libraries []manifest.Library, sourceDir string) error {
	for _, lib := range libraries {
		for _, f := range lib.Files {
			p := entries.SourcePath(sourceDir, f)
			info, err := fs.Stat(fsys, p)
			if err != nil {
				return &manifest.ConfigError{Field: "libraries." + lib.Name, Reason: fmt.Sprintf("file %q does not exist", f), Err: err}
			}
			if info.IsDir() {
				return &manifest.ConfigError{Field: "libraries." + lib.Name, Reason: fmt.Sprintf("%q is a directory", f)}
			}
		}
	}
	return nil
}

// planChunks builds the import graph of every page and library and hands the
// resulting module sets to the chunk planner. Aliased externals and the page
// scripts themselves are kept out of the common group.
func planChunks(ctx context.Context, b *modgraph.Builder, fsys fs.FS, m manifest.Manifest, sourceDir string, pageList []discovery.PageDescriptor) ([]chunks.ChunkGroup, error) {
	libraries := m.Libraries
	var roots []string
	for _, lib := range libraries {
		for _, f := range lib.Files {
			roots = append(roots, entries.SourcePath(sourceDir, f))
		}
	}
	for _, p := range pageList {
		roots = append(roots, p.ScriptPath)
	}

	g, err := b.Build(ctx, fsys, roots)
	if err != nil {
		return nil, fmt.Errorf("failed to build import graph: %w", err)
	}

	aliased := make(map[string]struct{})
	var exclude []string
	for _, ext := range m.Externals {
		if ext.Alias != "" {
			aliased[ext.Name] = struct{}{}
			exclude = append(exclude, ext.Name)
		}
	}

	closures := make([]chunks.LibraryClosure, 0, len(libraries))
	for _, lib := range libraries {
		var files []string
		extra := make(map[string]struct{})
		for _, f := range lib.Files {
			p := entries.SourcePath(sourceDir, f)
			files = append(files, p)
			reach, err := g.Closure(p)
			if err != nil {
				return nil, err
			}
			for id := range reach {
				if _, ok := aliased[id]; !ok {
					extra[id] = struct{}{}
				}
			}
		}
		closures = append(closures, chunks.LibraryClosure{Name: lib.Name, Modules: appendSorted(files, extra)})
	}

	keys := make([]string, 0, len(pageList))
	deps := make(map[string][]string, len(pageList))
	for _, p := range pageList {
		exclude = append(exclude, p.ScriptPath)
		key := entries.Key(p)
		reach, err := g.Reachable(p.ScriptPath)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
		deps[key] = reach
	}
	return chunks.Plan(closures, keys, deps, exclude), nil
}

// appendSorted appends the members of extra not already in files, sorted.
func appendSorted(files []string, extra map[string]struct{}) []string {
	have := make(map[string]struct{}, len(files))
	for _, f := range files {
		have[f] = struct{}{}
	}
	var rest []string
	for id := range extra {
		if _, ok := have[id]; !ok {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	return append(files, rest...)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
