package modgraph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/vk/bundlegen/internal/ctxlog"
)

// DefaultCacheSize bounds the number of source files a Builder remembers.
const DefaultCacheSize = 4096

// namespace keeps esbuild away from the real filesystem: every project file is
// resolved and loaded by the plugin below, through the caller's fs.FS.
const namespace = "bundlegen"

// ErrAnalyze is returned when esbuild rejects a script, usually a syntax error.
var ErrAnalyze = errors.New("modgraph: import analysis failed")

var loaders = map[string]api.Loader{
	".js":   api.LoaderJSX,
	".jsx":  api.LoaderJSX,
	".mjs":  api.LoaderJS,
	".cjs":  api.LoaderJS,
	".ts":   api.LoaderTS,
	".tsx":  api.LoaderTSX,
	".json": api.LoaderJSON,
}

type fileKey struct {
	path    string
	size    int64
	modUnix int64
}

// Builder runs an in-memory esbuild pass over a set of roots and assembles
// their Graph from the resulting metafile. Sources are cached by path, size and
// modification time, so a Builder can be shared by several synthesis runs over
// the same tree (one per mode) and each file is only read once. It is safe for
// concurrent use.
type Builder struct {
	sources *lru.Cache[fileKey, string]
}

// NewBuilder creates a Builder whose source cache holds up to size files.
func NewBuilder(size int) (*Builder, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[fileKey, string](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create source cache: %w", err)
	}
	return &Builder{sources: cache}, nil
}

type metafile struct {
	Inputs map[string]metafileInput `json:"inputs"`
}

type metafileInput struct {
	Imports []metafileImport `json:"imports"`
}

type metafileImport struct {
	Path     string `json:"path"`
	Kind     string `json:"kind"`
	External bool   `json:"external,omitempty"`
}

// Build follows imports from every root (slash paths relative to fsys) and
// returns the resulting graph. Relative imports that do not resolve are logged
// and skipped: reporting them is the bundler's job.
func (b *Builder) Build(ctx context.Context, fsys fs.FS, roots []string) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Import graph build started.", "roots", len(roots))

	g := New()
	// Output names are positional so that entries sharing a base name, like
	// two modules' index.js, never collide in the discarded output.
	entryPoints := make([]api.EntryPoint, 0, len(roots))
	seen := make(map[string]struct{}, len(roots))
	for _, root := range roots {
		root = path.Clean(root)
		g.AddNode(root)
		if _, ok := seen[root]; !ok {
			seen[root] = struct{}{}
			entryPoints = append(entryPoints, api.EntryPoint{
				InputPath:  root,
				OutputPath: fmt.Sprintf("entry%d", len(entryPoints)),
			})
		}
	}
	if len(entryPoints) == 0 {
		return g, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := api.Build(api.BuildOptions{
		EntryPointsAdvanced: entryPoints,
		Bundle:              true,
		Write:               false,
		Metafile:            true,
		Outdir:              "out",
		Format:              api.FormatESModule,
		Platform:            api.PlatformBrowser,
		LogLevel:            api.LogLevelSilent,
		Plugins:             []api.Plugin{b.plugin(ctx, fsys)},
	})
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrAnalyze, formatMessage(result.Errors[0]))
	}

	var meta metafile
	if err := json.Unmarshal([]byte(result.Metafile), &meta); err != nil {
		return nil, fmt.Errorf("failed to decode esbuild metafile: %w", err)
	}

	inputs := make([]string, 0, len(meta.Inputs))
	for key := range meta.Inputs {
		inputs = append(inputs, key)
	}
	sort.Strings(inputs)

	unresolved := 0
	for _, key := range inputs {
		id := moduleID(key)
		g.AddNode(id)
		for _, imp := range meta.Inputs[key].Imports {
			dep := moduleID(imp.Path)
			if imp.External {
				// Unresolved relative imports are kept external under their
				// original specifier; packages never look relative.
				if IsRelative(imp.Path) {
					unresolved++
					continue
				}
				dep = imp.Path
			}
			if dep == id {
				continue
			}
			g.AddNode(dep)
			if err := g.AddEdge(dep, id); err != nil {
				return nil, err
			}
		}
	}

	if err := g.DetectCycles(); err != nil {
		logger.Debug("Import graph contains a cycle.", "detail", err.Error())
	}
	logger.Debug("Import graph build complete.", "modules", g.Len(), "unresolved", unresolved)
	return g, nil
}

// plugin resolves every specifier itself: bare imports become external package
// ids, relative ones are probed in fsys and loaded from it.
func (b *Builder) plugin(ctx context.Context, fsys fs.FS) api.Plugin {
	logger := ctxlog.FromContext(ctx)
	return api.Plugin{
		Name: namespace,
		Setup: func(build api.PluginBuild) {
			build.OnResolve(api.OnResolveOptions{Filter: ".*"}, func(args api.OnResolveArgs) (api.OnResolveResult, error) {
				if args.Kind == api.ResolveEntryPoint {
					return api.OnResolveResult{Path: path.Clean(args.Path), Namespace: namespace}, nil
				}
				spec := cleanSpecifier(args.Path)
				if spec != "" && !IsRelative(spec) {
					return api.OnResolveResult{Path: PackageName(spec), External: true}, nil
				}
				id, err := Resolve(fsys, args.Importer, spec)
				if err != nil {
					if !errors.Is(err, ErrUnresolved) {
						return api.OnResolveResult{}, err
					}
					logger.Warn("Skipping unresolved import.", "file", args.Importer, "import", args.Path)
					return api.OnResolveResult{Path: "./" + strings.TrimLeft(spec, "./"), External: true}, nil
				}
				return api.OnResolveResult{Path: id, Namespace: namespace}, nil
			})

			build.OnLoad(api.OnLoadOptions{Filter: ".*", Namespace: namespace}, func(args api.OnLoadArgs) (api.OnLoadResult, error) {
				loader, ok := loaders[path.Ext(args.Path)]
				if !ok {
					// Styles, images and templates are graph leaves.
					empty := ""
					return api.OnLoadResult{Contents: &empty, Loader: api.LoaderEmpty}, nil
				}
				src, err := b.source(fsys, args.Path)
				if err != nil {
					return api.OnLoadResult{}, err
				}
				return api.OnLoadResult{Contents: &src, Loader: loader}, nil
			})
		},
	}
}

func (b *Builder) source(fsys fs.FS, file string) (string, error) {
	info, err := fs.Stat(fsys, file)
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", file, err)
	}
	key := fileKey{path: file, size: info.Size(), modUnix: info.ModTime().UnixNano()}
	if src, ok := b.sources.Get(key); ok {
		return src, nil
	}

	data, err := fs.ReadFile(fsys, file)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", file, err)
	}
	src := string(data)
	b.sources.Add(key, src)
	return src, nil
}

// moduleID strips the plugin namespace esbuild prefixes to its pretty paths.
func moduleID(p string) string {
	return strings.TrimPrefix(p, namespace+":")
}

func formatMessage(msg api.Message) string {
	if msg.Location == nil {
		return msg.Text
	}
	return fmt.Sprintf("%s:%d:%d: %s", moduleID(msg.Location.File), msg.Location.Line, msg.Location.Column, msg.Text)
}

// Closure returns the modules reachable from root, keyed for set operations.
func (g *Graph) Closure(root string) (map[string]struct{}, error) {
	ids, err := g.Reachable(root)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}
