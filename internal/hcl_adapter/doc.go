// Package hcl_adapter reads project manifests written in HCL native syntax
// (.hcl) or HCL's JSON syntax (.json) and translates them into the
// format-agnostic manifest.Override.
//
// Top-level attributes map one-to-one onto manifest keys. The libraries,
// externals, browser_targets and base64_inline keys are blocks:
//
//	output_dir   = "./dist"
//	ui_framework = "react"
//
//	libraries {
//	  vendor = ["lib/jquery.js", "lib/underscore.js"]
//	}
//
//	externals {
//	  jquery = { alias = "jQuery", path = "static/jquery.min.js" }
//	}
//
// HCL hands attributes back as a map, so the declared order of libraries and
// externals is recovered from their source ranges.
package hcl_adapter
