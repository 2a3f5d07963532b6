package partition

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"

	"repodoc/pkg/types"
)

// Structural partitions by directory layout and file naming alone. It
// never consults the dependency graph, so it works on snapshots where
// extraction found nothing.
type Structural struct{}

func (s *Structural) Method() Method { return MethodStructural }

func (s *Structural) Partition(ctx context.Context, snapshot []types.FileRecord, graph *types.DependencyGraph, bounds Bounds) (*types.Partition, error) {
	if err := checkInputs(snapshot, bounds); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	byDir := make(map[string][]string)
	for _, f := range snapshot {
		dir := topLevelDir(f.Path)
		byDir[dir] = append(byDir[dir], f.Path)
	}

	var groups []group
	for name, paths := range byDir {
		grp := newGroup(name, paths)
		if len(grp.paths) <= bounds.Max {
			groups = append(groups, grp)
			continue
		}
		groups = append(groups, subdivide(grp, bounds.Max)...)
	}

	groups = mergeSmallByPrefix(groups, bounds.Min)

	// merging by prefix can push a group back over the limit
	var final []group
	for _, grp := range groups {
		if len(grp.paths) > bounds.Max {
			final = append(final, chunk(grp, bounds.Max)...)
		} else {
			final = append(final, grp)
		}
	}
	return buildPartition(MethodStructural, final, fileIndex(snapshot)), nil
}

// namePattern assigns files to a role by their base name
type namePattern struct {
	re   *regexp.Regexp
	role string
}

// Common roles across codebases: APIs, models, utilities, tests, etc.
// Order matters; the first match wins.
var namePatterns = []namePattern{
	{regexp.MustCompile(`(?i)api|client`), "apis"},
	{regexp.MustCompile(`(?i)model|schema|type`), "models"},
	{regexp.MustCompile(`(?i)util|helper|common`), "utilities"},
	{regexp.MustCompile(`(?i)test|spec`), "tests"},
	{regexp.MustCompile(`(?i)config|settings`), "configuration"},
	{regexp.MustCompile(`(?i)exception|error`), "errors"},
	{regexp.MustCompile(`(?i)auth|security`), "authentication"},
	{regexp.MustCompile(`(?i)logger|logging`), "logging"},
	{regexp.MustCompile(`(?i)db|database|storage`), "storage"},
	{regexp.MustCompile(`(?i)http|request`), "networking"},
	{regexp.MustCompile(`(?i)ui|view`), "ui"},
	{regexp.MustCompile(`(?i)transform|converter`), "transforms"},
	{regexp.MustCompile(`(?i)mock|fake|stub`), "mocks"},
}

// subdivide splits an oversized group by file-name role, then by
// extension for the rest, then chunks any subsection still over the
// limit into numbered parts
func subdivide(grp group, maxSize int) []group {
	sub := make(map[string][]string)
	for _, p := range grp.paths {
		base := strings.ToLower(path.Base(p))
		name := ""
		for _, np := range namePatterns {
			if np.re.MatchString(base) {
				name = grp.name + "/" + np.role
				break
			}
		}
		if name == "" {
			name = grp.name + "/" + extensionLabel(p)
		}
		sub[name] = append(sub[name], p)
	}

	names := make([]string, 0, len(sub))
	for name := range sub {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []group
	for _, name := range names {
		grp := newGroup(name, sub[name])
		if len(grp.paths) <= maxSize {
			out = append(out, grp)
			continue
		}
		out = append(out, chunk(grp, maxSize)...)
	}
	return out
}

// extensionLabel names the extension bucket for a path, e.g. "py_files"
func extensionLabel(p string) string {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(p)), ".")
	if ext == "" {
		ext = "unknown"
	}
	return ext + "_files"
}

// chunk splits a group's sorted paths into the fewest numbered parts that
// fit under maxSize, keeping part sizes even so no remainder part ends up
// tiny
func chunk(grp group, maxSize int) []group {
	n := len(grp.paths)
	pieces := (n + maxSize - 1) / maxSize
	out := make([]group, 0, pieces)
	lo := 0
	for i := 0; i < pieces; i++ {
		hi := lo + n/pieces
		if i < n%pieces {
			hi++
		}
		out = append(out, newGroup(fmt.Sprintf("%s_part%d", grp.name, i+1), grp.paths[lo:hi]))
		lo = hi
	}
	return out
}

// mergeSmallByPrefix folds groups below the lower bound into their
// parent-prefix siblings, collecting anything still undersized into a
// miscellaneous bucket. A lone undersized group covering the whole
// snapshot is returned untouched.
func mergeSmallByPrefix(groups []group, minSize int) []group {
	if minSize <= 1 || len(groups) < 2 {
		return groups
	}

	var kept []group
	byParent := make(map[string][]string)
	for _, grp := range groups {
		if len(grp.paths) >= minSize {
			kept = append(kept, grp)
			continue
		}
		parent := grp.name
		if i := strings.IndexByte(parent, '/'); i >= 0 {
			parent = parent[:i]
		}
		byParent[parent] = append(byParent[parent], grp.paths...)
	}

	parents := make([]string, 0, len(byParent))
	for parent := range byParent {
		parents = append(parents, parent)
	}
	sort.Strings(parents)

	var misc []string
	for _, parent := range parents {
		merged := newGroup(parent, byParent[parent])
		if len(merged.paths) >= minSize {
			kept = append(kept, merged)
		} else {
			misc = append(misc, merged.paths...)
		}
	}
	if len(misc) > 0 {
		if len(kept) == 0 {
			return []group{newGroup("miscellaneous", misc)}
		}
		if len(misc) >= minSize {
			kept = append(kept, newGroup("miscellaneous", misc))
		} else {
			// too small to stand alone, append to the largest kept group
			sort.Slice(kept, func(i, j int) bool {
				if len(kept[i].paths) != len(kept[j].paths) {
					return len(kept[i].paths) > len(kept[j].paths)
				}
				return kept[i].name < kept[j].name
			})
			kept[0] = newGroup(kept[0].name, append(kept[0].paths, misc...))
		}
	}
	return kept
}
