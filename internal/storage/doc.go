// Package storage persists snapshots, partitions, and documentation
// analyses in SQLite so repeat runs over an unchanged repository reuse
// earlier work. Two drivers are supported via build tags: the pure Go
// modernc.org/sqlite by default, and github.com/mattn/go-sqlite3 with
// the cgo_sqlite tag.
package storage
