package manifest

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestResolve_InheritsAbsentKeys(t *testing.T) {
	defaults := Default()

	got, err := Resolve(defaults, Override{})
	require.NoError(t, err)

	if diff := cmp.Diff(defaults.Clone(), got); diff != "" {
		t.Errorf("resolved manifest mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_OverrideReplacesKeys(t *testing.T) {
	libs := []Library{{Name: "vendor", Files: []string{"a.js", "b.js"}}}
	override := Override{
		Libraries:   &libs,
		OutputDir:   ptr("./build"),
		UIFramework: ptr(FrameworkNone),
		Base64Inline: &Base64Inline{
			Enabled:        false,
			SizeLimitBytes: 0,
		},
	}

	got, err := Resolve(Default(), override)
	require.NoError(t, err)

	assert.Equal(t, libs, got.Libraries)
	assert.Equal(t, "./build", got.OutputDir)
	assert.Equal(t, FrameworkNone, got.UIFramework)
	assert.False(t, got.Base64Inline.Enabled)

	// Keys absent from the override keep their defaults.
	assert.Equal(t, "../", got.PublicPathPrefix)
	assert.True(t, got.LegacyBrowserSupport)
	assert.Equal(t, []string{"last 2 versions"}, got.BrowserTargets.Production)
}

func TestResolve_ShallowMergeReplacesWholeKey(t *testing.T) {
	defaults := Default()
	defaults.Libraries = []Library{
		{Name: "vendor", Files: []string{"v.js"}},
		{Name: "polyfills", Files: []string{"p.js"}},
	}
	libs := []Library{{Name: "ui", Files: []string{"ui.js"}}}

	got, err := Resolve(defaults, Override{Libraries: &libs})
	require.NoError(t, err)
	assert.Equal(t, []string{"ui"}, got.LibraryNames())
}

func TestResolve_Idempotent(t *testing.T) {
	libs := []Library{{Name: "vendor", Files: []string{"a.js"}}}
	exts := []External{{Name: "jquery", Alias: "jQuery"}}
	override := Override{
		Libraries:           &libs,
		Externals:           &exts,
		UseFolderAsPageName: ptr(true),
		BrowserTargets:      &BrowserTargets{Development: []string{"chrome 100"}},
	}

	once, err := Resolve(Default(), override)
	require.NoError(t, err)
	twice, err := Resolve(once, Override{})
	require.NoError(t, err)

	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("resolve is not idempotent (-once +twice):\n%s", diff)
	}
}

func TestResolve_DoesNotMutateInputs(t *testing.T) {
	defaults := Default()
	defaults.Libraries = []Library{{Name: "vendor", Files: []string{"a.js"}}}
	libs := []Library{{Name: "ui", Files: []string{"ui.js"}}}

	got, err := Resolve(defaults, Override{Libraries: &libs})
	require.NoError(t, err)

	got.Libraries[0].Files[0] = "changed.js"
	got.BrowserTargets.Development[0] = "changed"

	assert.Equal(t, "ui.js", libs[0].Files[0])
	assert.Equal(t, "a.js", defaults.Libraries[0].Files[0])
	assert.Equal(t, "last 2 versions", defaults.BrowserTargets.Development[0])
}

func TestResolve_Errors(t *testing.T) {
	testCases := []struct {
		name     string
		override Override
		field    string
	}{
		{
			name:     "empty output dir",
			override: Override{OutputDir: ptr("")},
			field:    "output_dir",
		},
		{
			name:     "unknown framework",
			override: Override{UIFramework: ptr(Framework("vue"))},
			field:    "ui_framework",
		},
		{
			name: "duplicate library",
			override: Override{Libraries: &[]Library{
				{Name: "vendor", Files: []string{"a.js"}},
				{Name: "vendor", Files: []string{"b.js"}},
			}},
			field: "libraries",
		},
		{
			name:     "library named like the common chunk",
			override: Override{Libraries: &[]Library{{Name: CommonChunkName, Files: []string{"a.js"}}}},
			field:    "libraries.commonLibs",
		},
		{
			name:     "library without files",
			override: Override{Libraries: &[]Library{{Name: "vendor"}}},
			field:    "libraries.vendor",
		},
		{
			name: "duplicate external",
			override: Override{Externals: &[]External{
				{Name: "jquery", Alias: "jQuery"},
				{Name: "jquery", Path: "vendor/jquery.js"},
			}},
			field: "externals",
		},
		{
			name:     "negative inline limit",
			override: Override{Base64Inline: &Base64Inline{Enabled: true, SizeLimitBytes: -1}},
			field:    "base64_inline.size_limit",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Resolve(Default(), tc.override)
			require.Error(t, err)

			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr), "expected ConfigError, got %T", err)
			assert.Equal(t, tc.field, cfgErr.Field)
		})
	}
}

func TestOverride_Keys(t *testing.T) {
	o := Override{OutputDir: ptr("x"), UseBuiltIns: ptr(false)}
	assert.Equal(t, []string{"output_dir", "use_builtins"}, o.Keys())
	assert.Empty(t, Override{}.Keys())
}

func TestParseModeAndFramework(t *testing.T) {
	m, err := ParseMode("PROD")
	require.NoError(t, err)
	assert.Equal(t, Production, m)

	_, err = ParseMode("staging")
	require.Error(t, err)

	f, err := ParseFramework("")
	require.NoError(t, err)
	assert.Equal(t, FrameworkNone, f)

	_, err = ParseFramework("angular")
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "ui_framework", cfgErr.Field)
}

func TestBrowserTargets_For(t *testing.T) {
	bt := BrowserTargets{Development: []string{"dev"}, Production: []string{"prod"}}
	assert.Equal(t, []string{"dev"}, bt.For(Development))
	assert.Equal(t, []string{"prod"}, bt.For(Production))
}
