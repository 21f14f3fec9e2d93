// Package engine runs one configuration synthesis: it reads the resolved
// manifest and the page tree, drives every planner from the leaves to the
// assembler, and returns either a complete configuration or an error.
package engine
