package hcl_adapter

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/bundlegen/internal/ctxlog"
	"github.com/vk/bundlegen/internal/manifest"
	"github.com/zclconf/go-cty/cty"
)

//go:embed defaults.hcl
var defaultsHCL []byte

// Loader is the HCL-specific implementation of the manifest.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL manifest loader.
func NewLoader() *Loader {
	return &Loader{}
}

var _ manifest.Loader = (*Loader)(nil)

// LoadFile reads and decodes the manifest at path. Files ending in .json are
// parsed with HCL's JSON syntax, anything else with the native syntax.
func (l *Loader) LoadFile(ctx context.Context, path string) (manifest.Override, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return manifest.Override{}, &manifest.ConfigError{Reason: fmt.Sprintf("cannot read manifest %s", path), Err: err}
	}
	return l.LoadBytes(ctx, path, src)
}

// LoadBytes decodes manifest source. The name is used for diagnostics and to
// choose the syntax.
func (l *Loader) LoadBytes(ctx context.Context, name string, src []byte) (manifest.Override, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Manifest loader started.", "file", name)

	parser := hclparse.NewParser()
	var (
		file  *hcl.File
		diags hcl.Diagnostics
	)
	if strings.EqualFold(filepath.Ext(name), ".json") {
		file, diags = parser.ParseJSON(src, name)
	} else {
		file, diags = parser.ParseHCL(src, name)
	}
	if diags.HasErrors() {
		return manifest.Override{}, &manifest.ConfigError{Reason: fmt.Sprintf("failed to parse manifest %s", name), Err: diags}
	}

	var root manifestFile
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return manifest.Override{}, &manifest.ConfigError{Reason: fmt.Sprintf("failed to decode manifest %s", name), Err: diags}
	}

	override, err := l.translate(ctx, &root)
	if err != nil {
		return manifest.Override{}, err
	}
	logger.Debug("Manifest loaded.", "file", name, "keys", override.Keys())
	return override, nil
}

// DefaultManifest decodes the built-in defaults.
func (l *Loader) DefaultManifest(ctx context.Context) (manifest.Manifest, error) {
	override, err := l.LoadBytes(ctx, "defaults.hcl", defaultsHCL)
	if err != nil {
		return manifest.Manifest{}, err
	}
	return manifest.Resolve(manifest.Manifest{}, override)
}

func (l *Loader) translate(ctx context.Context, root *manifestFile) (manifest.Override, error) {
	var (
		o   manifest.Override
		err error
	)

	wrap := func(field string, err error) error {
		return &manifest.ConfigError{Field: field, Err: err}
	}

	if o.OutputDir, err = stringAttr(ctx, root.OutputDir, "output_dir"); err != nil {
		return o, wrap("output_dir", err)
	}
	if o.PublicPathPrefix, err = stringAttr(ctx, root.PublicPath, "public_path"); err != nil {
		return o, wrap("public_path", err)
	}
	fw, err := stringAttr(ctx, root.UIFramework, "ui_framework")
	if err != nil {
		return o, wrap("ui_framework", err)
	}
	if fw != nil {
		parsed, err := manifest.ParseFramework(*fw)
		if err != nil {
			return o, err
		}
		o.UIFramework = &parsed
	}

	bools := []struct {
		expr hcl.Expression
		name string
		dst  **bool
	}{
		{root.LegacyBrowserSupport, "legacy_browser_support", &o.LegacyBrowserSupport},
		{root.UseFolderAsPageName, "use_folder_as_page_name", &o.UseFolderAsPageName},
		{root.HotReloadForFramework, "hot_reload_for_framework", &o.HotReloadForFramework},
		{root.UseBuiltIns, "use_builtins", &o.UseBuiltIns},
		{root.SVGAsComponent, "svg_as_component", &o.SVGAsComponent},
	}
	for _, b := range bools {
		if *b.dst, err = boolAttr(ctx, b.expr, b.name); err != nil {
			return o, wrap(b.name, err)
		}
	}

	if root.Libraries != nil {
		libs, err := translateLibraries(root.Libraries.Body)
		if err != nil {
			return o, wrap("libraries", err)
		}
		o.Libraries = &libs
	}
	if root.Externals != nil {
		exts, err := translateExternals(root.Externals.Body)
		if err != nil {
			return o, wrap("externals", err)
		}
		o.Externals = &exts
	}
	if root.BrowserTargets != nil {
		o.BrowserTargets = &manifest.BrowserTargets{
			Development: root.BrowserTargets.Development,
			Production:  root.BrowserTargets.Production,
		}
	}
	if root.Base64Inline != nil {
		o.Base64Inline = &manifest.Base64Inline{
			Enabled:        root.Base64Inline.Enabled,
			SizeLimitBytes: root.Base64Inline.SizeLimit,
		}
	}
	return o, nil
}

func translateLibraries(body hcl.Body) ([]manifest.Library, error) {
	attrs, err := orderedAttributes(body)
	if err != nil {
		return nil, err
	}
	libs := make([]manifest.Library, 0, len(attrs))
	for _, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("library '%s': %w", attr.Name, diags)
		}
		var files []string
		if err := decodeAs(val, cty.List(cty.String), &files); err != nil {
			return nil, fmt.Errorf("library '%s' must be a list of file paths: %w", attr.Name, err)
		}
		libs = append(libs, manifest.Library{Name: attr.Name, Files: files})
	}
	return libs, nil
}

// translateExternals accepts either an object with optional alias and path, or
// a bare string as shorthand for an alias.
func translateExternals(body hcl.Body) ([]manifest.External, error) {
	attrs, err := orderedAttributes(body)
	if err != nil {
		return nil, err
	}
	exts := make([]manifest.External, 0, len(attrs))
	for _, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("external '%s': %w", attr.Name, diags)
		}
		ext := manifest.External{Name: attr.Name}
		switch {
		case val.IsNull():
		case val.Type() == cty.String:
			ext.Alias = val.AsString()
		case val.Type().IsObjectType() || val.Type().IsMapType():
			for _, field := range []struct {
				name string
				dst  *string
			}{{"alias", &ext.Alias}, {"path", &ext.Path}} {
				fv, ok := objectField(val, field.name)
				if !ok {
					continue
				}
				if err := decodeAs(fv, cty.String, field.dst); err != nil {
					return nil, fmt.Errorf("external '%s' field '%s' must be a string: %w", attr.Name, field.name, err)
				}
			}
		default:
			return nil, fmt.Errorf("external '%s' must be an object or a string, got %s", attr.Name, val.Type().FriendlyName())
		}
		exts = append(exts, ext)
	}
	return exts, nil
}

func objectField(val cty.Value, name string) (cty.Value, bool) {
	if val.Type().IsObjectType() {
		if !val.Type().HasAttribute(name) {
			return cty.NilVal, false
		}
		fv := val.GetAttr(name)
		return fv, !fv.IsNull()
	}
	key := cty.StringVal(name)
	if !val.HasIndex(key).True() {
		return cty.NilVal, false
	}
	fv := val.Index(key)
	return fv, !fv.IsNull()
}
