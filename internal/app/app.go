package app

import (
	"context"
	"io"
	"log/slog"

	"github.com/vk/bundlegen/internal/assemble"
	"github.com/vk/bundlegen/internal/manifest"
	"github.com/vk/bundlegen/internal/modgraph"
	"github.com/vk/bundlegen/internal/registry"
)

// ManifestLoader reads user manifests and knows the built-in defaults.
type ManifestLoader interface {
	manifest.Loader
	DefaultManifest(ctx context.Context) (manifest.Manifest, error)
}

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	loader   ManifestLoader
	registry *registry.Registry
	builder  *modgraph.Builder
}

// NewApp is the constructor for the main application. Output is written to
// outW and logs to logW. Extra plugin modules are registered after the
// built-in ones.
func NewApp(outW, logW io.Writer, cfg *Config, loader ManifestLoader, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	assemble.ModePlugins{}.Register(reg)
	for _, mod := range modules {
		mod.Register(reg)
	}
	if err := reg.Validate(); err != nil {
		// A broken plugin table is a programming error.
		panic(err)
	}
	logger.Debug("Plugin registry validated.", "modules", len(modules)+1)

	builder, err := modgraph.NewBuilder(modgraph.DefaultCacheSize)
	if err != nil {
		panic(err)
	}

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		loader:   loader,
		registry: reg,
		builder:  builder,
	}
}

// Registry returns the application's plugin registry. This is primarily for
// testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}
