package manifest

// CommonChunkName is the key of the implicit chunk group holding modules that
// several pages share. No library may take it.
const CommonChunkName = "commonLibs"

// Library is a named group of source files bundled into one shared chunk.
// Files are relative to the project's source directory.
type Library struct {
	Name  string
	Files []string
}

// External is a dependency kept out of the bundle. Alias maps the module id to a
// global available at runtime; Path names a file copied verbatim into the
// output tree. Either, both or neither may be set.
type External struct {
	Name  string
	Alias string
	Path  string
}

// BrowserTargets holds the browserslist queries per mode.
type BrowserTargets struct {
	Development []string
	Production  []string
}

// For returns the queries for the given mode.
func (b BrowserTargets) For(m Mode) []string {
	if m == Production {
		return b.Production
	}
	return b.Development
}

// Base64Inline controls inlining of small images as data URIs in production.
type Base64Inline struct {
	Enabled        bool
	SizeLimitBytes int
}

// Manifest is the resolved project build policy.
type Manifest struct {
	// Libraries and Externals keep their declared order; library order fixes the
	// script load order on every page.
	Libraries             []Library
	Externals             []External
	BrowserTargets        BrowserTargets
	OutputDir             string
	Base64Inline          Base64Inline
	PublicPathPrefix      string
	UIFramework           Framework
	LegacyBrowserSupport  bool
	UseFolderAsPageName   bool
	HotReloadForFramework bool
	UseBuiltIns           bool
	SVGAsComponent        bool
}

// Override carries the top-level keys a user manifest declares. A nil field is
// an absent key and is inherited from the defaults.
type Override struct {
	Libraries             *[]Library
	Externals             *[]External
	BrowserTargets        *BrowserTargets
	OutputDir             *string
	Base64Inline          *Base64Inline
	PublicPathPrefix      *string
	UIFramework           *Framework
	LegacyBrowserSupport  *bool
	UseFolderAsPageName   *bool
	HotReloadForFramework *bool
	UseBuiltIns           *bool
	SVGAsComponent        *bool
}

// Keys lists the manifest keys present in the override, in file-key spelling.
func (o Override) Keys() []string {
	var keys []string
	add := func(present bool, key string) {
		if present {
			keys = append(keys, key)
		}
	}
	add(o.Libraries != nil, "libraries")
	add(o.Externals != nil, "externals")
	add(o.BrowserTargets != nil, "browser_targets")
	add(o.OutputDir != nil, "output_dir")
	add(o.Base64Inline != nil, "base64_inline")
	add(o.PublicPathPrefix != nil, "public_path")
	add(o.UIFramework != nil, "ui_framework")
	add(o.LegacyBrowserSupport != nil, "legacy_browser_support")
	add(o.UseFolderAsPageName != nil, "use_folder_as_page_name")
	add(o.HotReloadForFramework != nil, "hot_reload_for_framework")
	add(o.UseBuiltIns != nil, "use_builtins")
	add(o.SVGAsComponent != nil, "svg_as_component")
	return keys
}

// Default returns the built-in project defaults.
func Default() Manifest {
	return Manifest{
		Libraries: []Library{},
		Externals: []External{},
		BrowserTargets: BrowserTargets{
			Development: []string{"last 2 versions"},
			Production:  []string{"last 2 versions"},
		},
		OutputDir:            "./dist",
		Base64Inline:         Base64Inline{Enabled: true, SizeLimitBytes: 10000},
		PublicPathPrefix:     "../",
		UIFramework:          FrameworkReact,
		LegacyBrowserSupport: true,
	}
}

// Clone returns a deep copy of m.
func (m Manifest) Clone() Manifest {
	out := m
	out.Libraries = cloneLibraries(m.Libraries)
	out.Externals = append([]External(nil), m.Externals...)
	out.BrowserTargets = cloneTargets(m.BrowserTargets)
	return out
}

// LibraryNames returns library names in declared order.
func (m Manifest) LibraryNames() []string {
	names := make([]string, 0, len(m.Libraries))
	for _, lib := range m.Libraries {
		names = append(names, lib.Name)
	}
	return names
}

func cloneLibraries(in []Library) []Library {
	if in == nil {
		return nil
	}
	out := make([]Library, len(in))
	for i, lib := range in {
		out[i] = Library{Name: lib.Name, Files: append([]string(nil), lib.Files...)}
	}
	return out
}

func cloneTargets(in BrowserTargets) BrowserTargets {
	return BrowserTargets{
		Development: append([]string(nil), in.Development...),
		Production:  append([]string(nil), in.Production...),
	}
}
