package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/bundlegen/internal/manifest"
)

func named(name string) Factory {
	return func(Input) Plugin { return Plugin{Name: name} }
}

func TestRegistry_ModePlugins(t *testing.T) {
	r := New()
	r.RegisterPlugin("a", named("a"))
	r.RegisterPlugin("b", func(in Input) Plugin {
		return Plugin{Name: "b", Options: map[string]any{"filename": in.StyleFilename}}
	})
	r.RegisterModePlugins(manifest.Development, "a")
	r.RegisterModePlugins(manifest.Production, "a", "b")
	require.NoError(t, r.Validate())

	got, err := r.ModePlugins(Input{Mode: manifest.Production, StyleFilename: "x.css"})
	require.NoError(t, err)
	assert.Equal(t, []Plugin{{Name: "a"}, {Name: "b", Options: map[string]any{"filename": "x.css"}}}, got)
}

func TestRegistry_DuplicateRegistrationPanics(t *testing.T) {
	r := New()
	r.RegisterPlugin("a", named("a"))
	assert.Panics(t, func() { r.RegisterPlugin("a", named("a")) })

	r.RegisterModePlugins(manifest.Development, "a")
	assert.Panics(t, func() { r.RegisterModePlugins(manifest.Development, "a") })
}

func TestRegistry_Validate(t *testing.T) {
	r := New()
	r.RegisterPlugin("a", named("a"))
	r.RegisterModePlugins(manifest.Development, "a", "missing", "a")

	err := r.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mode 'production' has no plugin list")
	assert.Contains(t, err.Error(), "plugin 'missing' is not registered")
	assert.Contains(t, err.Error(), "plugin 'a' is listed twice")
}

func TestRegistry_UnknownMode(t *testing.T) {
	_, err := New().ModePlugins(Input{Mode: manifest.Production})
	var cfgErr *manifest.ConfigError
	require.ErrorAs(t, err, &cfgErr)
}
