// Package manifest defines the format-agnostic project manifest: the record that
// describes a project's build policy (shared libraries, externals, browser
// targets, output location and asset handling switches).
//
// A Manifest is always produced by Resolve, which layers an Override (the keys a
// user file actually declares) over a set of defaults. Resolve is pure: neither
// input is mutated and the result shares no slices with them, so the same
// defaults can serve any number of concurrent builds.
//
// Concrete file formats live elsewhere; see the hcl_adapter package.
package manifest
