// Package rules builds the ordered file transform rules handed to the bundler.
//
// Stage order inside a rule is application order: the first stage sees the
// source file, the last one produces what is bundled. A stylesheet therefore
// reads less, postcss, css, then the mode's finisher.
package rules

import (
	"fmt"

	"github.com/vk/bundlegen/internal/manifest"
)

// Stage is one transformer in a rule's pipeline.
type Stage struct {
	Loader  string         `json:"loader" yaml:"loader"`
	Options map[string]any `json:"options,omitempty" yaml:"options,omitempty"`
}

// TransformRule applies its stages, in order, to every file matching Test and
// not matching Exclude.
type TransformRule struct {
	Name    string  `json:"name" yaml:"name"`
	Test    Pattern `json:"test" yaml:"test"`
	Exclude Pattern `json:"exclude,omitzero" yaml:"exclude,omitempty"`
	Stages  []Stage `json:"stages" yaml:"stages"`
}

// Options are the manifest settings that shape the rules.
type Options struct {
	Mode                 manifest.Mode
	BrowserTargets       []string
	PublicPathPrefix     string
	Base64               manifest.Base64Inline
	Framework            manifest.Framework
	LegacyBrowserSupport bool
	UseBuiltIns          bool
	SVGAsComponent       bool
}

// Rule names, in the order Build emits them.
const (
	ScriptRule = "script"
	StyleRule  = "stylesheet"
	ImageRule  = "image"
	VectorRule = "vector"
	MarkupRule = "markup"
	DataRule   = "data"
	StaticRule = "static"
)

var (
	scriptTest  = MustPattern(`\.(jsx?|tsx?)$`)
	styleTest   = MustPattern(`\.(le|c)ss$`)
	imageTest   = MustPattern(`\.(png|jpe?g|gif)$`)
	vectorTest  = MustPattern(`\.svg$`)
	markupTest  = MustPattern(`\.html?$`)
	dataTest    = MustPattern(`\.json$`)
	staticTest  = MustPattern(`\.(swf|xlsx?|txt|docx?|pptx?|pdf|ico|cur|eot|ttf|otf|woff2?|zip|rar|7z|gz)$`)
	vendorFiles = MustPattern(`node_modules`)
)

const (
	assetsOutputPath = "assets/"
	verbatimName     = "[name].[ext]"
	hashedName       = "[name].[hash:8].[ext]"
	extractedCSSName = "[name].[contenthash:8].css"
)

// profile is everything about the rules that depends on the mode alone.
type profile struct {
	minimizeCSS bool
	// extractStyles moves stylesheets into their own files instead of
	// injecting them at runtime.
	extractStyles bool
	// optimizeImages adds the hashing, inlining and compression stages.
	optimizeImages bool
	// assetName is the file name pattern for emitted images and vectors.
	assetName string
	// publicPath applies the manifest's public path prefix to emitted assets.
	publicPath bool
	cssFilename string
}

var profiles = map[manifest.Mode]profile{
	manifest.Development: {
		assetName: verbatimName,
	},
	manifest.Production: {
		minimizeCSS:    true,
		extractStyles:  true,
		optimizeImages: true,
		assetName:      hashedName,
		publicPath:     true,
		cssFilename:    extractedCSSName,
	},
}

// Build returns the rules in their fixed order: script, stylesheet, image,
// vector, markup, data, static.
func Build(opts Options) ([]TransformRule, error) {
	if !opts.Framework.Valid() {
		return nil, &manifest.ConfigError{Field: "ui_framework", Reason: fmt.Sprintf("unsupported framework %q, expected 'none' or 'react'", opts.Framework)}
	}
	prof, ok := profiles[opts.Mode]
	if !ok {
		return nil, &manifest.ConfigError{Field: "mode", Reason: fmt.Sprintf("unknown mode %q", opts.Mode)}
	}

	return []TransformRule{
		scriptRule(opts),
		styleRule(opts, prof),
		imageRule(opts, prof),
		vectorRule(opts, prof),
		{Name: MarkupRule, Test: markupTest, Stages: []Stage{{Loader: "html-loader", Options: map[string]any{"interpolate": true, "root": "./"}}}},
		{Name: DataRule, Test: dataTest, Stages: []Stage{{Loader: "json-loader"}}},
		{Name: StaticRule, Test: staticTest, Stages: []Stage{fileStage(verbatimName, "")}},
	}, nil
}

// ExtractedStyleFilename is the name pattern of extracted stylesheets in mode,
// or "" when the mode injects styles at runtime.
func ExtractedStyleFilename(mode manifest.Mode) string {
	return profiles[mode].cssFilename
}

func scriptRule(opts Options) TransformRule {
	stages := []Stage{compileStage(opts)}
	if opts.LegacyBrowserSupport {
		stages = append(stages, Stage{Loader: "es3ify-loader"})
	}
	return TransformRule{Name: ScriptRule, Test: scriptTest, Exclude: vendorFiles, Stages: stages}
}

func compileStage(opts Options) Stage {
	envPreset := map[string]any{
		"targets":     map[string]any{"browsers": targetsOrEmpty(opts.BrowserTargets)},
		"loose":       opts.LegacyBrowserSupport,
		"useBuiltIns": opts.UseBuiltIns,
	}
	presets := []any{[]any{"env", envPreset}}
	if opts.Framework == manifest.FrameworkReact {
		presets = append(presets, "react")
	}
	presets = append(presets, "stage-1")
	return Stage{
		Loader: "babel-loader",
		Options: map[string]any{
			"presets":        presets,
			"plugins":        []any{"syntax-dynamic-import"},
			"cacheDirectory": true,
		},
	}
}

func styleRule(opts Options, prof profile) TransformRule {
	stages := []Stage{
		{Loader: "less-loader"},
		{Loader: "postcss-loader", Options: map[string]any{
			"plugins": []any{map[string]any{"autoprefixer": map[string]any{"browsers": targetsOrEmpty(opts.BrowserTargets)}}},
		}},
		{Loader: "css-loader", Options: map[string]any{"minimize": prof.minimizeCSS}},
	}
	if prof.extractStyles {
		stages = append(stages, Stage{Loader: "extract-text", Options: map[string]any{"filename": prof.cssFilename, "fallback": "style-loader"}})
	} else {
		stages = append(stages, Stage{Loader: "style-loader"})
	}
	return TransformRule{Name: StyleRule, Test: styleTest, Stages: stages}
}

func imageRule(opts Options, prof profile) TransformRule {
	if !prof.optimizeImages {
		return TransformRule{Name: ImageRule, Test: imageTest, Stages: []Stage{fileStage(prof.assetName, "")}}
	}

	emit := fileStage(prof.assetName, opts.PublicPathPrefix)
	if opts.Base64.Enabled {
		emit.Loader = "url-loader"
		emit.Options["limit"] = opts.Base64.SizeLimitBytes
	}
	return TransformRule{
		Name: ImageRule,
		Test: imageTest,
		Stages: []Stage{
			{Loader: "image-webpack-loader", Options: map[string]any{
				"progressive": true,
				"optipng":     map[string]any{"optimizationLevel": 3},
				"gifsicle":    map[string]any{"interlaced": true},
				"pngquant":    map[string]any{"quality": "65-80", "speed": 5},
			}},
			emit,
		},
	}
}

// vectorRule turns SVGs into framework components when asked to, and otherwise
// emits them like any other asset of the mode.
func vectorRule(opts Options, prof profile) TransformRule {
	if opts.Framework == manifest.FrameworkReact && opts.SVGAsComponent {
		return TransformRule{
			Name: VectorRule,
			Test: vectorTest,
			Stages: []Stage{
				{Loader: "svg-react-loader"},
				compileStage(opts),
			},
		}
	}
	publicPath := ""
	if prof.publicPath {
		publicPath = opts.PublicPathPrefix
	}
	return TransformRule{Name: VectorRule, Test: vectorTest, Stages: []Stage{fileStage(prof.assetName, publicPath)}}
}

func fileStage(name, publicPath string) Stage {
	options := map[string]any{
		"name":       name,
		"outputPath": assetsOutputPath,
	}
	if publicPath != "" {
		options["publicPath"] = publicPath
	}
	return Stage{Loader: "file-loader", Options: options}
}

func targetsOrEmpty(targets []string) []string {
	if targets == nil {
		return []string{}
	}
	return targets
}

// Match returns the first rule whose test accepts name.
func Match(rules []TransformRule, name string) (TransformRule, bool) {
	for _, r := range rules {
		if r.Test.Match(name) && !r.Exclude.Match(name) {
			return r, true
		}
	}
	return TransformRule{}, false
}
