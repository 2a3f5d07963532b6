// Package types defines the shared data model that flows between the
// dependency extractor, the section partitioner and the context manager:
// file records, the file-to-file dependency graph, sections and partitions.
//
// A partition is always a strict cover of its snapshot: every file belongs
// to exactly one section, no file is dropped, no file is duplicated. Size
// bounds on sections may only be violated by single-file sections, which
// are irreducible.
package types
