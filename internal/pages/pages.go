// Package pages plans one output document per discovered page: its file name,
// template and the chunks it loads, in load order.
package pages

import (
	"fmt"
	"path/filepath"

	"github.com/vk/bundlegen/internal/chunks"
	"github.com/vk/bundlegen/internal/discovery"
	"github.com/vk/bundlegen/internal/entries"
	"github.com/vk/bundlegen/internal/manifest"
)

// MinifyOptions is the html minifier configuration of a document.
type MinifyOptions struct {
	RemoveComments                bool `json:"removeComments" yaml:"removeComments"`
	CollapseWhitespace            bool `json:"collapseWhitespace" yaml:"collapseWhitespace"`
	RemoveRedundantAttributes     bool `json:"removeRedundantAttributes" yaml:"removeRedundantAttributes"`
	UseShortDoctype               bool `json:"useShortDoctype" yaml:"useShortDoctype"`
	RemoveEmptyAttributes         bool `json:"removeEmptyAttributes" yaml:"removeEmptyAttributes"`
	RemoveStyleLinkTypeAttributes bool `json:"removeStyleLinkTypeAttributes" yaml:"removeStyleLinkTypeAttributes"`
	KeepClosingSlash              bool `json:"keepClosingSlash" yaml:"keepClosingSlash"`
	MinifyJS                      bool `json:"minifyJS" yaml:"minifyJS"`
	MinifyCSS                     bool `json:"minifyCSS" yaml:"minifyCSS"`
	MinifyURLs                    bool `json:"minifyURLs" yaml:"minifyURLs"`
}

// ProductionMinify is the preset applied to every production document.
// Empty attributes are kept: templates use them as boolean markers.
func ProductionMinify() *MinifyOptions {
	return &MinifyOptions{
		RemoveComments:                true,
		CollapseWhitespace:            true,
		RemoveRedundantAttributes:     true,
		UseShortDoctype:               true,
		RemoveEmptyAttributes:         false,
		RemoveStyleLinkTypeAttributes: true,
		KeepClosingSlash:              true,
		MinifyJS:                      true,
		MinifyCSS:                     true,
		MinifyURLs:                    true,
	}
}

// OutputDocument describes one generated page. Minify is nil when the document
// is written unminified.
type OutputDocument struct {
	OutputFilename   string         `json:"filename" yaml:"filename"`
	TemplatePath     string         `json:"template" yaml:"template"`
	OrderedChunkKeys []string       `json:"chunks" yaml:"chunks"`
	Minify           *MinifyOptions `json:"minify" yaml:"minify"`
	Page             string         `json:"-" yaml:"-"`
}

// PlanningError reports two pages that would be written to the same file.
type PlanningError struct {
	Filename string
	First    string
	Second   string
}

func (e *PlanningError) Error() string {
	return fmt.Sprintf("pages '%s' and '%s' both resolve to output file '%s'", e.First, e.Second, e.Filename)
}

// Options shape the output documents.
type Options struct {
	Mode                manifest.Mode
	UseFolderAsPageName bool
	// WorkDir, when set, makes template paths absolute.
	WorkDir string
}

// Plan returns one document per page, in page order. Every document loads the
// library chunks in declared order, then the common chunk, then the page's own
// bundle.
func Plan(pages []discovery.PageDescriptor, groups []chunks.ChunkGroup, opts Options) ([]OutputDocument, error) {
	shared := sharedChunkKeys(groups)

	docs := make([]OutputDocument, 0, len(pages))
	owners := make(map[string]string, len(pages))
	for _, p := range pages {
		filename := OutputFilename(p, opts.UseFolderAsPageName)
		if first, taken := owners[filename]; taken {
			return nil, &PlanningError{Filename: filename, First: first, Second: p.ID()}
		}
		owners[filename] = p.ID()

		keys := make([]string, 0, len(shared)+1)
		keys = append(keys, shared...)
		keys = append(keys, entries.Key(p))

		template := p.TemplatePath
		if opts.WorkDir != "" {
			template = filepath.Join(opts.WorkDir, filepath.FromSlash(template))
		}
		docs = append(docs, OutputDocument{
			OutputFilename:   filename,
			TemplatePath:     template,
			OrderedChunkKeys: keys,
			Minify:           minifyFor(opts.Mode),
			Page:             p.ID(),
		})
	}
	return docs, nil
}

// OutputFilename is "{module}.html" when folders name pages, otherwise
// "{module}/{page}.html".
func OutputFilename(p discovery.PageDescriptor, useFolderAsPageName bool) string {
	if useFolderAsPageName {
		return p.ModuleName + ".html"
	}
	return p.ModuleName + "/" + p.PageName + ".html"
}

func minifyFor(mode manifest.Mode) *MinifyOptions {
	if mode.IsDev() {
		return nil
	}
	return ProductionMinify()
}

// sharedChunkKeys returns the library keys in plan order followed by the common
// key, which is always present even when the planner produced no common group.
func sharedChunkKeys(groups []chunks.ChunkGroup) []string {
	keys := chunks.LibraryKeys(groups)
	return append(keys, chunks.CommonKey)
}
