// Package registry maps the plugin names a mode profile refers to onto the Go
// constructors that build them.
//
// Plugin sets register their constructors, mode profiles list plugin names in
// the order the bundler must apply them, and Validate checks that every name a
// profile uses has a constructor before any configuration is assembled.
package registry
