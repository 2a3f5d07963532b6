// Package contextmgr orchestrates documentation runs over a partition.
// With context threading enabled, sections are documented in order and a
// bounded summary of earlier findings rides along in every prompt; with
// it disabled, sections are documented concurrently.
package contextmgr
