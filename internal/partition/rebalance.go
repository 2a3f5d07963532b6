package partition

import (
	"fmt"
	"sort"

	"repodoc/pkg/types"
)

// rebalance enforces the size bounds on a set of groups using the
// dependency graph: oversized groups are split along low-connectivity
// seams, undersized groups are merged into their highest-affinity
// neighbor. The graph may be edgeless but must not be nil.
func rebalance(groups []group, graph *types.DependencyGraph, bounds Bounds) []group {
	groups = splitGroups(groups, graph, bounds)
	return mergeGroups(groups, graph, bounds)
}

// splitGroups splits every group above the upper bound. Splitting never
// produces an empty child, so it terminates: each pass strictly shrinks
// the largest offending group.
func splitGroups(groups []group, graph *types.DependencyGraph, bounds Bounds) []group {
	var out []group
	for _, grp := range groups {
		if len(grp.paths) <= bounds.Max {
			out = append(out, grp)
			continue
		}
		out = append(out, splitGroup(grp, graph, bounds)...)
	}
	return out
}

// splitGroup divides an oversized group, preferring community structure in
// its induced subgraph and falling back to a balanced bisection
func splitGroup(grp group, graph *types.DependencyGraph, bounds Bounds) []group {
	sub := graph.Subgraph(grp.paths)
	parts := communityParts(grp, sub)
	if len(parts) < 2 {
		left, right := bisect(grp.paths, sub)
		parts = [][]string{left, right}
	}

	var out []group
	for i, paths := range parts {
		child := newGroup(fmt.Sprintf("%s/%d", grp.name, i+1), paths)
		if len(child.paths) > bounds.Max {
			out = append(out, splitGroup(child, graph, bounds)...)
		} else {
			out = append(out, child)
		}
	}
	return out
}

// communityParts returns the community decomposition of the group's
// induced subgraph, or nil when the subgraph yields no usable split
func communityParts(grp group, sub *types.DependencyGraph) [][]string {
	detector := &GreedyModularity{}
	parts, err := detector.Detect(sub)
	if err != nil {
		return nil
	}
	if len(parts) < 2 {
		return nil
	}
	return parts
}

// bisect splits paths into two balanced halves minimizing the weight of
// edges cut. Nodes are placed one at a time, highest degree first, onto
// the side they are more connected to, capped at an even balance.
func bisect(paths []string, sub *types.DependencyGraph) ([]string, []string) {
	ordered := make([]string, len(paths))
	copy(ordered, paths)
	sort.Slice(ordered, func(i, j int) bool {
		di, dj := sub.Degree(ordered[i]), sub.Degree(ordered[j])
		if di != dj {
			return di > dj
		}
		return ordered[i] < ordered[j]
	})

	limit := (len(paths) + 1) / 2
	var left, right []string
	side := make(map[string]int, len(paths)) // 1 = left, 2 = right
	for _, n := range ordered {
		lw, rw := 0, 0
		for _, nb := range sub.Neighbors(n) {
			switch side[nb] {
			case 1:
				lw += sub.Weight(n, nb)
			case 2:
				rw += sub.Weight(n, nb)
			}
		}
		toLeft := lw >= rw
		if toLeft && len(left) >= limit {
			toLeft = false
		}
		if !toLeft && len(right) >= limit {
			toLeft = true
		}
		if toLeft {
			left = append(left, n)
			side[n] = 1
		} else {
			right = append(right, n)
			side[n] = 2
		}
	}
	sort.Strings(left)
	sort.Strings(right)
	return left, right
}

// mergeGroups folds every group below the lower bound into the neighbor
// it shares the most edge weight with, considering only merges that stay
// within the upper bound; among equal-affinity candidates the merge
// producing the lexicographically smallest combined name wins. An
// undersized group with no merge that fits is left as-is rather than
// overflowing a section, matching the bounds escapes Validate allows.
func mergeGroups(groups []group, graph *types.DependencyGraph, bounds Bounds) []group {
	for {
		if len(groups) < 2 {
			return groups
		}
		sort.Slice(groups, func(i, j int) bool { return groups[i].name < groups[j].name })

		// smallest undersized group with a fitting merge, name ascending
		// on ties
		small, target := -1, -1
		for i, grp := range groups {
			if len(grp.paths) >= bounds.Min || len(grp.paths) == 0 {
				continue
			}
			if small >= 0 && len(grp.paths) >= len(groups[small].paths) {
				continue
			}
			if t := pickMergeTarget(groups, i, graph, bounds); t >= 0 {
				small, target = i, t
			}
		}
		if small < 0 {
			return groups
		}

		merged := mergeName(groups[small].name, groups[target].name)
		combined := newGroup(merged, append(groups[small].paths, groups[target].paths...))

		lo, hi := small, target
		if lo > hi {
			lo, hi = hi, lo
		}
		groups = append(groups[:hi], groups[hi+1:]...)
		groups[lo] = combined
	}
}

// pickMergeTarget chooses the merge partner for groups[small], or -1 when
// every merge would exceed the upper bound
func pickMergeTarget(groups []group, small int, graph *types.DependencyGraph, bounds Bounds) int {
	type candidate struct {
		idx      int
		affinity int
		name     string
	}
	src := groups[small]
	cands := make([]candidate, 0, len(groups)-1)
	for i, grp := range groups {
		if i == small || len(src.paths)+len(grp.paths) > bounds.Max {
			continue
		}
		cands = append(cands, candidate{
			idx:      i,
			affinity: groupAffinity(src.paths, grp.paths, graph),
			name:     mergeName(src.name, grp.name),
		})
	}
	if len(cands) == 0 {
		return -1
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].affinity != cands[j].affinity {
			return cands[i].affinity > cands[j].affinity
		}
		return cands[i].name < cands[j].name
	})
	return cands[0].idx
}

// groupAffinity sums the edge weight between two path sets
func groupAffinity(a, b []string, graph *types.DependencyGraph) int {
	inB := make(map[string]bool, len(b))
	for _, p := range b {
		inB[p] = true
	}
	total := 0
	for _, p := range a {
		for _, nb := range graph.Neighbors(p) {
			if inB[nb] {
				total += graph.Weight(p, nb)
			}
		}
	}
	return total
}

// mergeName picks the surviving name for a merged pair
func mergeName(a, b string) string {
	if a < b {
		return a
	}
	return b
}
