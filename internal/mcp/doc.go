// Package mcp exposes the partitioning and documentation pipeline as an
// MCP server over stdio.
//
// Three tools are registered:
//
//   - partition_repository: load a repository, partition it with the
//     requested strategy and bounds, cache the result, and return the
//     section layout
//   - document_repository: partition and then document every section,
//     optionally threading a summary of earlier sections into later
//     prompts, and return the run outcome with a rendered index
//   - get_cached_partition: return a previously computed partition when
//     the repository contents are unchanged
package mcp
