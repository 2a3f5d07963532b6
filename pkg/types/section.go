package types

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Section is a named, bounded-size group of files documented together.
// Sections are mutated only during rebalancing; once a partition is handed
// to the context manager they are read-only.
type Section struct {
	Name        string
	Files       []FileRecord // sorted by path
	TotalSize   int          // sum of member file sizes
	Description string       // optional, filled post-hoc
}

// NewSection builds a section, sorting files by path and deriving TotalSize
func NewSection(name string, files []FileRecord) Section {
	sorted := make([]FileRecord, len(files))
	copy(sorted, files)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	total := 0
	for _, f := range sorted {
		total += f.Size
	}
	return Section{Name: name, Files: sorted, TotalSize: total}
}

// FileCount returns the number of files in the section
func (s *Section) FileCount() int {
	return len(s.Files)
}

// Paths returns the sorted file paths of the section
func (s *Section) Paths() []string {
	paths := make([]string, len(s.Files))
	for i, f := range s.Files {
		paths[i] = f.Path
	}
	return paths
}

// Partition is a complete, non-overlapping assignment of snapshot files
// into sections.
type Partition struct {
	Method   string
	Sections []Section
}

// Sort orders sections by descending total size, ties broken by name, so
// downstream processing order is reproducible.
func (p *Partition) Sort() {
	sort.Slice(p.Sections, func(i, j int) bool {
		a, b := &p.Sections[i], &p.Sections[j]
		if a.TotalSize != b.TotalSize {
			return a.TotalSize > b.TotalSize
		}
		return a.Name < b.Name
	})
}

// Validate checks the strict-cover invariant against the snapshot and the
// size bounds. A single-file section may violate either bound: a lone file
// is irreducible (the escape case).
func (p *Partition) Validate(snapshot []FileRecord, minSize, maxSize int) error {
	if minSize > maxSize {
		return ErrInvalidBounds
	}

	want := make(map[string]struct{}, len(snapshot))
	for _, f := range snapshot {
		want[f.Path] = struct{}{}
	}

	seen := make(map[string]string, len(want))
	names := make(map[string]struct{}, len(p.Sections))
	for i := range p.Sections {
		sec := &p.Sections[i]
		if len(sec.Files) == 0 {
			return fmt.Errorf("%w: section %q is empty", ErrCoverViolation, sec.Name)
		}
		if _, dup := names[sec.Name]; dup {
			return fmt.Errorf("%w: duplicate section name %q", ErrCoverViolation, sec.Name)
		}
		names[sec.Name] = struct{}{}

		for _, f := range sec.Files {
			if prev, ok := seen[f.Path]; ok {
				return fmt.Errorf("%w: %s appears in %q and %q", ErrCoverViolation, f.Path, prev, sec.Name)
			}
			if _, ok := want[f.Path]; !ok {
				return fmt.Errorf("%w: %s not in snapshot", ErrCoverViolation, f.Path)
			}
			seen[f.Path] = sec.Name
		}

		if len(sec.Files) == 1 {
			continue // irreducible: bound violations permitted
		}
		if len(sec.Files) < minSize && len(p.Sections) == 1 {
			continue // whole snapshot below the lower bound, nothing to merge with
		}
		if len(sec.Files) > maxSize || len(sec.Files) < minSize {
			return fmt.Errorf("%w: section %q has %d files (bounds %d..%d)",
				ErrBoundsViolation, sec.Name, len(sec.Files), minSize, maxSize)
		}
	}

	if len(seen) != len(want) {
		for path := range want {
			if _, ok := seen[path]; !ok {
				return fmt.Errorf("%w: %s missing from partition", ErrCoverViolation, path)
			}
		}
	}
	return nil
}

// sectionJSON is the serialized hand-off form consumed by downstream tooling
type sectionJSON struct {
	Name      string   `json:"name"`
	Files     []string `json:"files"`
	TotalSize int      `json:"total_size"`
}

type partitionJSON struct {
	Method   string        `json:"method"`
	Sections []sectionJSON `json:"sections"`
}

// MarshalJSON serializes the partition as section names with ordered file
// paths and total sizes, the persisted intermediate artifact.
func (p *Partition) MarshalJSON() ([]byte, error) {
	out := partitionJSON{Method: p.Method, Sections: make([]sectionJSON, len(p.Sections))}
	for i := range p.Sections {
		sec := &p.Sections[i]
		out.Sections[i] = sectionJSON{Name: sec.Name, Files: sec.Paths(), TotalSize: sec.TotalSize}
	}
	return json.Marshal(out)
}
