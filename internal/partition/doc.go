// Package partition divides a repository snapshot into named sections
// of bounded size. Four strategies are available: directory structure,
// dependency communities, a hybrid of the two, and model-assisted
// clustering. Every strategy produces a partition that covers the
// snapshot exactly, names its sections deterministically for a given
// input, and respects the configured size bounds except where a section
// is irreducibly a single file.
package partition
