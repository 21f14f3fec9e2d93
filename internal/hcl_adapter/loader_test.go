package hcl_adapter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/bundlegen/internal/ctxlog"
	"github.com/vk/bundlegen/internal/manifest"
)

func testContext() context.Context {
	return ctxlog.Discard(context.Background())
}

func TestLoadBytes_HCL(t *testing.T) {
	src := `
output_dir = "./build"
ui_framework = "none"
use_folder_as_page_name = true

libraries {
  vendor    = ["lib/a.js", "lib/b.js"]
  polyfills = ["lib/poly.js"]
  app       = ["lib/app.js"]
}

externals {
  jquery = { alias = "jQuery", path = "static/jquery.min.js" }
  lodash = "_"
  empty  = {}
}

browser_targets {
  production = ["ie >= 9"]
}
`
	o, err := NewLoader().LoadBytes(testContext(), "bundle.hcl", []byte(src))
	require.NoError(t, err)

	require.NotNil(t, o.OutputDir)
	assert.Equal(t, "./build", *o.OutputDir)
	require.NotNil(t, o.UIFramework)
	assert.Equal(t, manifest.FrameworkNone, *o.UIFramework)
	require.NotNil(t, o.UseFolderAsPageName)
	assert.True(t, *o.UseFolderAsPageName)

	// Declared order survives even though it is not alphabetical.
	require.NotNil(t, o.Libraries)
	want := []manifest.Library{
		{Name: "vendor", Files: []string{"lib/a.js", "lib/b.js"}},
		{Name: "polyfills", Files: []string{"lib/poly.js"}},
		{Name: "app", Files: []string{"lib/app.js"}},
	}
	if diff := cmp.Diff(want, *o.Libraries); diff != "" {
		t.Errorf("libraries mismatch (-want +got):\n%s", diff)
	}

	require.NotNil(t, o.Externals)
	assert.Equal(t, []manifest.External{
		{Name: "jquery", Alias: "jQuery", Path: "static/jquery.min.js"},
		{Name: "lodash", Alias: "_"},
		{Name: "empty"},
	}, *o.Externals)

	require.NotNil(t, o.BrowserTargets)
	assert.Equal(t, []string{"ie >= 9"}, o.BrowserTargets.Production)
	assert.Empty(t, o.BrowserTargets.Development)

	// Keys not in the file stay absent.
	assert.Nil(t, o.PublicPathPrefix)
	assert.Nil(t, o.LegacyBrowserSupport)
	assert.Nil(t, o.Base64Inline)
}

func TestLoadBytes_JSON(t *testing.T) {
	src := `{
  "output_dir": "./dist-json",
  "legacy_browser_support": false,
  "libraries": {
    "zeta": ["z.js"],
    "alpha": ["a.js"]
  },
  "externals": {
    "jquery": {"alias": "jQuery"}
  },
  "base64_inline": {"enabled": true, "size_limit": 2048}
}`
	o, err := NewLoader().LoadBytes(testContext(), "abc.json", []byte(src))
	require.NoError(t, err)

	assert.Equal(t, "./dist-json", *o.OutputDir)
	assert.False(t, *o.LegacyBrowserSupport)
	require.NotNil(t, o.Libraries)
	assert.Equal(t, []string{"zeta", "alpha"}, []string{(*o.Libraries)[0].Name, (*o.Libraries)[1].Name})
	assert.Equal(t, []manifest.External{{Name: "jquery", Alias: "jQuery"}}, *o.Externals)
	assert.Equal(t, &manifest.Base64Inline{Enabled: true, SizeLimitBytes: 2048}, o.Base64Inline)
}

func TestLoadBytes_Errors(t *testing.T) {
	testCases := []struct {
		name string
		file string
		src  string
	}{
		{name: "syntax error", file: "bundle.hcl", src: `output_dir = `},
		{name: "unknown key", file: "bundle.hcl", src: `outputdir = "./dist"`},
		{name: "wrong type", file: "bundle.hcl", src: `legacy_browser_support = "maybe"`},
		{name: "bad framework", file: "bundle.hcl", src: `ui_framework = "vue"`},
		{name: "library not a list", file: "bundle.hcl", src: "libraries {\n vendor = 3\n}"},
		{name: "external wrong shape", file: "bundle.hcl", src: "externals {\n jquery = 3\n}"},
		{name: "broken json", file: "abc.json", src: `{"output_dir": }`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewLoader().LoadBytes(testContext(), tc.file, []byte(tc.src))
			require.Error(t, err)
			var cfgErr *manifest.ConfigError
			assert.True(t, errors.As(err, &cfgErr), "expected ConfigError, got %T: %v", err, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bundle.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`public_path = "/static/"`), 0o644))

	o, err := NewLoader().LoadFile(testContext(), path)
	require.NoError(t, err)
	require.NotNil(t, o.PublicPathPrefix)
	assert.Equal(t, "/static/", *o.PublicPathPrefix)

	_, err = NewLoader().LoadFile(testContext(), filepath.Join(dir, "missing.hcl"))
	var cfgErr *manifest.ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestDefaultManifest_MatchesBuiltInDefaults(t *testing.T) {
	got, err := NewLoader().DefaultManifest(testContext())
	require.NoError(t, err)

	if diff := cmp.Diff(manifest.Default().Clone(), got); diff != "" {
		t.Errorf("embedded defaults drifted from manifest.Default (-want +got):\n%s", diff)
	}
}

func TestLoadedOverride_ResolvesOverDefaults(t *testing.T) {
	o, err := NewLoader().LoadBytes(testContext(), "bundle.hcl", []byte(`output_dir = "./www"`))
	require.NoError(t, err)

	m, err := manifest.Resolve(manifest.Default(), o)
	require.NoError(t, err)
	assert.Equal(t, "./www", m.OutputDir)
	assert.Equal(t, manifest.FrameworkReact, m.UIFramework)
}
