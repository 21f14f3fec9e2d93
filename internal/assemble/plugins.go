package assemble

import (
	"github.com/vk/bundlegen/internal/manifest"
	"github.com/vk/bundlegen/internal/registry"
)

// Mode plugin names.
const (
	OccurrenceOrderPlugin      = "occurrence-order"
	HotModuleReplacementPlugin = "hot-module-replacement"
	StableModuleIDPlugin       = "stable-module-id-and-hash"
	ChunkHashPlugin            = "chunk-hash"
	ExtractTextPlugin          = "extract-text"
)

// Plugins built by the assembler itself.
const (
	CopyPlugin          = "copy"
	HTMLPlugin          = "html"
	IncludeAssetsPlugin = "include-assets"
	CommonsChunkPlugin  = "commons-chunk"
	DefinePlugin        = "define"
)

// ModePlugins registers the mode-dependent bundler plugins.
type ModePlugins struct{}

// Register implements registry.Module.
func (ModePlugins) Register(r *registry.Registry) {
	r.RegisterPlugin(OccurrenceOrderPlugin, bare(OccurrenceOrderPlugin))
	r.RegisterPlugin(HotModuleReplacementPlugin, bare(HotModuleReplacementPlugin))
	r.RegisterPlugin(StableModuleIDPlugin, bare(StableModuleIDPlugin))
	r.RegisterPlugin(ChunkHashPlugin, bare(ChunkHashPlugin))
	r.RegisterPlugin(ExtractTextPlugin, func(in registry.Input) registry.Plugin {
		return registry.Plugin{Name: ExtractTextPlugin, Options: map[string]any{"filename": in.StyleFilename}}
	})

	r.RegisterModePlugins(manifest.Development, OccurrenceOrderPlugin, HotModuleReplacementPlugin)
	r.RegisterModePlugins(manifest.Production, OccurrenceOrderPlugin, StableModuleIDPlugin, ChunkHashPlugin, ExtractTextPlugin)
}

func bare(name string) registry.Factory {
	return func(registry.Input) registry.Plugin { return registry.Plugin{Name: name} }
}

// NewRegistry returns a validated registry holding the built-in mode plugins.
func NewRegistry() (*registry.Registry, error) {
	r := registry.New()
	ModePlugins{}.Register(r)
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}
