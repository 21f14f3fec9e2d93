// Package assemble composes the planners' outputs into the configuration value
// handed to the bundler. It makes no decisions of its own beyond the fixed
// per-mode defaults and keeps every input's ordering as given.
package assemble

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/vk/bundlegen/internal/chunks"
	"github.com/vk/bundlegen/internal/entries"
	"github.com/vk/bundlegen/internal/externals"
	"github.com/vk/bundlegen/internal/manifest"
	"github.com/vk/bundlegen/internal/pages"
	"github.com/vk/bundlegen/internal/registry"
	"github.com/vk/bundlegen/internal/rules"
)

// Plugin is one bundler plugin invocation.
type Plugin = registry.Plugin

// Output is the bundle naming scheme.
type Output struct {
	Path     string `json:"path" yaml:"path"`
	Filename string `json:"filename" yaml:"filename"`
	PathInfo bool   `json:"pathinfo" yaml:"pathinfo"`
}

// BuildConfiguration is the complete configuration for one mode.
type BuildConfiguration struct {
	Mode               manifest.Mode         `json:"mode" yaml:"mode"`
	Entry              map[string][]string   `json:"entry" yaml:"entry"`
	Output             Output                `json:"output" yaml:"output"`
	Rules              []rules.TransformRule `json:"rules" yaml:"rules"`
	Externals          map[string]string     `json:"externals" yaml:"externals"`
	Plugins            []Plugin              `json:"plugins" yaml:"plugins"`
	Devtool            string                `json:"devtool" yaml:"devtool"`
	Target             string                `json:"target" yaml:"target"`
	ResolveLoaderRoots []string              `json:"resolveLoaderRoots,omitempty" yaml:"resolveLoaderRoots,omitempty"`
}

// Input gathers every planner's result.
type Input struct {
	Mode      manifest.Mode
	OutputDir string
	Pages     map[string]entries.EntryDefinition
	Libraries map[string]entries.EntryDefinition
	Groups    []chunks.ChunkGroup
	Rules     []rules.TransformRule
	Externals externals.Result
	Documents []pages.OutputDocument
	// Define holds compile-time constants, already encoded as expressions.
	Define map[string]string
	// ModulesDir, when set, is where the bundler looks up loaders.
	ModulesDir string
	// Registry supplies the mode plugins; NewRegistry is used when nil.
	Registry *registry.Registry
}

type modeDefaults struct {
	filename string
	devtool  string
	pathInfo bool
}

var defaults = map[manifest.Mode]modeDefaults{
	manifest.Development: {filename: "[name].js", devtool: "cheap-module-source-map", pathInfo: true},
	manifest.Production:  {filename: "[name].[chunkhash:8].js", devtool: "source-map"},
}

// Assemble builds the configuration. Plugins are ordered: mode plugins, copy,
// one html plugin per document, include-assets, one commons-chunk per group,
// define.
func Assemble(in Input) (*BuildConfiguration, error) {
	def, ok := defaults[in.Mode]
	if !ok {
		return nil, &manifest.ConfigError{Field: "mode", Reason: fmt.Sprintf("unknown mode %q", in.Mode)}
	}
	reg := in.Registry
	if reg == nil {
		var err error
		if reg, err = NewRegistry(); err != nil {
			return nil, err
		}
	}

	entry, err := mergeEntries(in.Pages, in.Libraries)
	if err != nil {
		return nil, err
	}

	plugins, err := reg.ModePlugins(registry.Input{Mode: in.Mode, StyleFilename: rules.ExtractedStyleFilename(in.Mode)})
	if err != nil {
		return nil, err
	}
	plugins = append(plugins, Plugin{Name: CopyPlugin, Options: map[string]any{"patterns": in.Externals.Copies}})
	for _, doc := range in.Documents {
		plugins = append(plugins, htmlPlugin(doc))
	}
	plugins = append(plugins, Plugin{Name: IncludeAssetsPlugin, Options: map[string]any{"assets": in.Externals.Includes, "append": false}})
	for _, g := range in.Groups {
		plugins = append(plugins, commonsChunkPlugin(g))
	}
	plugins = append(plugins, Plugin{Name: DefinePlugin, Options: map[string]any{"definitions": nonNil(in.Define)}})

	cfg := &BuildConfiguration{
		Mode:      in.Mode,
		Entry:     entry,
		Output:    Output{Path: in.OutputDir, Filename: def.filename, PathInfo: def.pathInfo},
		Rules:     in.Rules,
		Externals: nonNil(in.Externals.Aliases),
		Plugins:   plugins,
		Devtool:   def.devtool,
		Target:    "web",
	}
	if in.ModulesDir != "" {
		cfg.ResolveLoaderRoots = []string{in.ModulesDir}
	}
	return cfg, nil
}

// mergeEntries joins page and library entries; a library may not reuse a page
// entry key.
func mergeEntries(pageEntries, libraries map[string]entries.EntryDefinition) (map[string][]string, error) {
	out := make(map[string][]string, len(pageEntries)+len(libraries))
	for key, e := range pageEntries {
		out[key] = e.Modules
	}
	for _, key := range entries.Keys(libraries) {
		if _, clash := out[key]; clash {
			return nil, &manifest.ConfigError{Field: "libraries." + key, Reason: "library name collides with a page entry"}
		}
		out[key] = libraries[key].Modules
	}
	return out, nil
}

func htmlPlugin(doc pages.OutputDocument) Plugin {
	var minify any = false
	if doc.Minify != nil {
		minify = doc.Minify
	}
	return Plugin{Name: HTMLPlugin, Options: map[string]any{
		"filename":       doc.OutputFilename,
		"template":       doc.TemplatePath,
		"chunks":         doc.OrderedChunkKeys,
		"chunksSortMode": "manual",
		"minify":         minify,
	}}
}

func commonsChunkPlugin(g chunks.ChunkGroup) Plugin {
	if g.Library {
		return Plugin{Name: CommonsChunkPlugin, Options: map[string]any{
			"name":      g.Key,
			"chunks":    []string{g.Key},
			"minChunks": "Infinity",
		}}
	}
	return Plugin{Name: CommonsChunkPlugin, Options: map[string]any{
		"name":      g.Key,
		"chunks":    g.Scope.Entries,
		"minChunks": 2,
		"modules":   g.Members,
	}}
}

// DefineEnv encodes environment variables as "process.env.NAME" constants.
// Unset variables become the literal undefined.
func DefineEnv(names []string, lookup func(string) (string, bool)) map[string]string {
	out := make(map[string]string, len(names))
	for _, name := range names {
		key := "process.env." + name
		v, ok := lookup(name)
		if !ok {
			out[key] = "undefined"
			continue
		}
		encoded, _ := json.Marshal(v)
		out[key] = string(encoded)
	}
	return out
}

// PluginNames lists plugin names in order.
func (c *BuildConfiguration) PluginNames() []string {
	names := make([]string, len(c.Plugins))
	for i, p := range c.Plugins {
		names[i] = p.Name
	}
	return names
}

// Documents returns the html plugins' output filenames in order.
func (c *BuildConfiguration) Documents() []string {
	var out []string
	for _, p := range c.Plugins {
		if p.Name == HTMLPlugin {
			out = append(out, p.Options["filename"].(string))
		}
	}
	return out
}

// EntryKeys returns the entry keys sorted.
func (c *BuildConfiguration) EntryKeys() []string {
	keys := make([]string, 0, len(c.Entry))
	for k := range c.Entry {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func nonNil(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
