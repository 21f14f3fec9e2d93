// Package modgraph builds the module dependency graph of a project's scripts.
//
// Nodes are module ids: a slash-separated file path for project files
// ("src/lib/util.js") or a package name for bare imports ("lodash",
// "@scope/pkg"). An edge records that one module imports another. Import cycles
// are legal in JavaScript, so the graph tolerates them; Reachable simply stops
// at modules it has already visited.
//
// Imports are found by an in-memory esbuild pass: a plugin resolves and loads
// every project file through an fs.FS, bare imports stay external, and the graph
// is read back from the build's metafile. Nothing is written. The graph exists
// so that shared-chunk planning can be done as plain set arithmetic over each
// entry's reachable modules.
package modgraph
