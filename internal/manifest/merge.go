package manifest

import "fmt"

// Resolve layers override over defaults. Every key present in override replaces
// the default wholesale (a shallow merge: a declared libraries block replaces all
// default libraries); absent keys are inherited. Neither input is modified.
//
// The merged record is validated; an empty output directory, a duplicate
// library or external name, an unknown framework or a negative inline limit
// yields a *ConfigError.
func Resolve(defaults Manifest, override Override) (Manifest, error) {
	m := defaults.Clone()

	if override.Libraries != nil {
		m.Libraries = cloneLibraries(*override.Libraries)
	}
	if override.Externals != nil {
		m.Externals = append([]External(nil), (*override.Externals)...)
	}
	if override.BrowserTargets != nil {
		m.BrowserTargets = cloneTargets(*override.BrowserTargets)
	}
	if override.OutputDir != nil {
		m.OutputDir = *override.OutputDir
	}
	if override.Base64Inline != nil {
		m.Base64Inline = *override.Base64Inline
	}
	if override.PublicPathPrefix != nil {
		m.PublicPathPrefix = *override.PublicPathPrefix
	}
	if override.UIFramework != nil {
		m.UIFramework = *override.UIFramework
	}
	if override.LegacyBrowserSupport != nil {
		m.LegacyBrowserSupport = *override.LegacyBrowserSupport
	}
	if override.UseFolderAsPageName != nil {
		m.UseFolderAsPageName = *override.UseFolderAsPageName
	}
	if override.HotReloadForFramework != nil {
		m.HotReloadForFramework = *override.HotReloadForFramework
	}
	if override.UseBuiltIns != nil {
		m.UseBuiltIns = *override.UseBuiltIns
	}
	if override.SVGAsComponent != nil {
		m.SVGAsComponent = *override.SVGAsComponent
	}

	if err := m.Validate(); err != nil {
		return Manifest{}, err
	}
	return m, nil
}

// Validate checks the invariants of a resolved manifest. It does not touch the
// filesystem; library file existence is checked by the engine.
func (m Manifest) Validate() error {
	if m.OutputDir == "" {
		return &ConfigError{Field: "output_dir", Reason: "output directory is not specified"}
	}
	if !m.UIFramework.Valid() {
		return &ConfigError{Field: "ui_framework", Reason: fmt.Sprintf("unsupported framework %q, expected 'none' or 'react'", m.UIFramework)}
	}
	if m.Base64Inline.SizeLimitBytes < 0 {
		return &ConfigError{Field: "base64_inline.size_limit", Reason: "size limit must not be negative"}
	}

	seen := make(map[string]struct{}, len(m.Libraries))
	for _, lib := range m.Libraries {
		if lib.Name == "" {
			return &ConfigError{Field: "libraries", Reason: "library name must not be empty"}
		}
		if lib.Name == CommonChunkName {
			return &ConfigError{Field: "libraries." + lib.Name, Reason: fmt.Sprintf("library name '%s' is reserved for the common chunk", lib.Name)}
		}
		if _, dup := seen[lib.Name]; dup {
			return &ConfigError{Field: "libraries", Reason: fmt.Sprintf("library '%s' is declared more than once", lib.Name)}
		}
		seen[lib.Name] = struct{}{}
		if len(lib.Files) == 0 {
			return &ConfigError{Field: "libraries." + lib.Name, Reason: "library lists no files"}
		}
	}

	seen = make(map[string]struct{}, len(m.Externals))
	for _, ext := range m.Externals {
		if ext.Name == "" {
			return &ConfigError{Field: "externals", Reason: "external name must not be empty"}
		}
		if _, dup := seen[ext.Name]; dup {
			return &ConfigError{Field: "externals", Reason: fmt.Sprintf("external '%s' is declared more than once", ext.Name)}
		}
		seen[ext.Name] = struct{}{}
	}
	return nil
}
