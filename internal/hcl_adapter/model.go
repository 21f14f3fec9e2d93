package hcl_adapter

import "github.com/hashicorp/hcl/v2"

// manifestFile is the decode target for a whole manifest file.
type manifestFile struct {
	OutputDir             hcl.Expression `hcl:"output_dir,optional"`
	PublicPath            hcl.Expression `hcl:"public_path,optional"`
	UIFramework           hcl.Expression `hcl:"ui_framework,optional"`
	LegacyBrowserSupport  hcl.Expression `hcl:"legacy_browser_support,optional"`
	UseFolderAsPageName   hcl.Expression `hcl:"use_folder_as_page_name,optional"`
	HotReloadForFramework hcl.Expression `hcl:"hot_reload_for_framework,optional"`
	UseBuiltIns           hcl.Expression `hcl:"use_builtins,optional"`
	SVGAsComponent        hcl.Expression `hcl:"svg_as_component,optional"`

	Libraries      *attributeBlock `hcl:"libraries,block"`
	Externals      *attributeBlock `hcl:"externals,block"`
	BrowserTargets *targetsBlock   `hcl:"browser_targets,block"`
	Base64Inline   *base64Block    `hcl:"base64_inline,block"`
}

// attributeBlock is a block whose attribute names are user-chosen keys.
type attributeBlock struct {
	Body hcl.Body `hcl:",remain"`
}

type targetsBlock struct {
	Development []string `hcl:"development,optional"`
	Production  []string `hcl:"production,optional"`
}

type base64Block struct {
	Enabled   bool `hcl:"enabled,optional"`
	SizeLimit int  `hcl:"size_limit,optional"`
}
