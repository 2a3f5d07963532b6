// Package snapshot loads a repository from disk into the in-memory file
// set the partitioning and documentation pipeline operates on.
package snapshot
