// Package discovery walks a page-root directory and turns every page template it
// finds into a PageDescriptor.
//
// The expected layout is {pageRoot}/{module}/.../{page}.html with a script named
// {page}.js (or .jsx, .ts, .tsx) somewhere under the same module folder. When
// more than one script matches, the first one in lexical path order wins. This
// tie-break is long-standing behavior that existing projects rely on.
package discovery

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/vk/bundlegen/internal/ctxlog"
	"github.com/vk/bundlegen/internal/fsutil"
)

var (
	// TemplateExtensions are the suffixes recognized as page templates.
	TemplateExtensions = []string{".html", ".htm"}
	// ScriptExtensions are the suffixes probed for a page's script entry.
	ScriptExtensions = []string{".js", ".jsx", ".ts", ".tsx"}
)

// PageDescriptor identifies one page. Paths are slash-separated and relative
// to the file system Discover was given.
type PageDescriptor struct {
	ModuleName   string
	PageName     string
	TemplatePath string
	ScriptPath   string
}

// ID returns the "module/page" identifier used in diagnostics.
func (p PageDescriptor) ID() string {
	return p.ModuleName + "/" + p.PageName
}

// DiscoveryError reports a page that cannot be turned into an entry.
type DiscoveryError struct {
	Module string
	Page   string
	Reason string
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("discovery error for page '%s/%s': %s", e.Module, e.Page, e.Reason)
}

// Discover lists the modules under pageRoot and the pages within each. The
// result is sorted by module then page name, so callers never depend on the
// directory listing order of the underlying file system.
func Discover(ctx context.Context, fsys fs.FS, pageRoot string) ([]PageDescriptor, error) {
	logger := ctxlog.FromContext(ctx)
	pageRoot = path.Clean(pageRoot)
	logger.Debug("Page discovery started.", "page_root", pageRoot)

	modules, err := fsutil.SubDirs(fsys, pageRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to list page modules in %s: %w", pageRoot, err)
	}

	var pages []PageDescriptor
	seen := make(map[string]string)
	for _, module := range modules {
		moduleDir := path.Join(pageRoot, module)
		templates, err := fsutil.FindFilesByExtension(fsys, moduleDir, TemplateExtensions...)
		if err != nil {
			return nil, fmt.Errorf("failed to list templates in %s: %w", moduleDir, err)
		}
		logger.Debug("Module scanned.", "module", module, "templates", len(templates))

		for _, tmpl := range templates {
			page := fsutil.TrimExt(tmpl)
			id := module + "/" + page
			if prev, dup := seen[id]; dup {
				return nil, &DiscoveryError{
					Module: module,
					Page:   page,
					Reason: fmt.Sprintf("declared twice, by %s and %s", prev, tmpl),
				}
			}
			seen[id] = tmpl

			script, err := findScript(fsys, moduleDir, page)
			if err != nil {
				return nil, err
			}
			if script == "" {
				return nil, &DiscoveryError{
					Module: module,
					Page:   page,
					Reason: fmt.Sprintf("template %s has no matching script (%s) under %s", tmpl, strings.Join(ScriptExtensions, ", "), moduleDir),
				}
			}

			pages = append(pages, PageDescriptor{
				ModuleName:   module,
				PageName:     page,
				TemplatePath: tmpl,
				ScriptPath:   script,
			})
		}
	}

	sort.Slice(pages, func(i, j int) bool {
		if pages[i].ModuleName != pages[j].ModuleName {
			return pages[i].ModuleName < pages[j].ModuleName
		}
		return pages[i].PageName < pages[j].PageName
	})

	logger.Info("Page discovery complete.", "modules", len(modules), "pages", len(pages))
	return pages, nil
}

// findScript returns the lexically first script named page anywhere under
// moduleDir, or "" when there is none.
func findScript(fsys fs.FS, moduleDir, page string) (string, error) {
	var matches []string
	for _, ext := range ScriptExtensions {
		pattern := escapeMeta(moduleDir) + "/**/" + escapeMeta(page+ext)
		found, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return "", fmt.Errorf("failed to glob %s: %w", pattern, err)
		}
		matches = append(matches, found...)
	}
	if len(matches) == 0 {
		return "", nil
	}
	sort.Strings(matches)
	return matches[0], nil
}

func escapeMeta(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '{', '}', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
