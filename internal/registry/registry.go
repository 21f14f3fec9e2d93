package registry

import (
	"fmt"
	"log/slog"

	"github.com/vk/bundlegen/internal/manifest"
)

// Plugin is one bundler plugin invocation.
type Plugin struct {
	Name    string         `json:"name" yaml:"name"`
	Options map[string]any `json:"options,omitempty" yaml:"options,omitempty"`
}

// Input is what a mode plugin constructor may depend on.
type Input struct {
	Mode manifest.Mode
	// StyleFilename is the extracted stylesheet name pattern, empty when the
	// mode injects styles at runtime.
	StyleFilename string
}

// Factory builds a plugin for a synthesis run.
type Factory func(in Input) Plugin

// Module is implemented by plugin sets that register themselves.
type Module interface {
	Register(r *Registry)
}

// Registry holds plugin constructors and the per-mode plugin order.
type Registry struct {
	factories map[string]Factory
	modes     map[manifest.Mode][]string
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		modes:     make(map[manifest.Mode][]string),
	}
}

// RegisterPlugin registers the constructor of a named plugin.
func (r *Registry) RegisterPlugin(name string, f Factory) {
	if _, exists := r.factories[name]; exists {
		panic(fmt.Sprintf("plugin with name '%s' already registered", name))
	}
	slog.Debug("Registering plugin.", "name", name)
	r.factories[name] = f
}

// RegisterModePlugins sets the plugins a mode applies, in order.
func (r *Registry) RegisterModePlugins(mode manifest.Mode, names ...string) {
	if _, exists := r.modes[mode]; exists {
		panic(fmt.Sprintf("plugins for mode '%s' already registered", mode))
	}
	slog.Debug("Registering mode plugins.", "mode", mode, "plugins", names)
	r.modes[mode] = append([]string(nil), names...)
}

// ModePlugins builds the plugins of in.Mode in registration order.
func (r *Registry) ModePlugins(in Input) ([]Plugin, error) {
	names, ok := r.modes[in.Mode]
	if !ok {
		return nil, &manifest.ConfigError{Field: "mode", Reason: fmt.Sprintf("no plugins registered for mode %q", in.Mode)}
	}
	plugins := make([]Plugin, 0, len(names))
	for _, name := range names {
		f, ok := r.factories[name]
		if !ok {
			return nil, fmt.Errorf("mode '%s' uses unregistered plugin '%s'", in.Mode, name)
		}
		plugins = append(plugins, f(in))
	}
	return plugins, nil
}
