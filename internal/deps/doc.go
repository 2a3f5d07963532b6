// Package deps scans snapshot file contents for import and reference
// statements and assembles a directed file-to-file dependency graph.
//
// Extraction is a pure function of the snapshot: language-specific pattern
// matching locates raw references, each raw reference is resolved to a
// snapshot path using the language's module-resolution convention (relative
// paths, package-root lookup, fuzzy basename match), and anything that
// cannot be resolved is dropped silently.
package deps
