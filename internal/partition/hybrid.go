package partition

import (
	"context"
	"fmt"

	"repodoc/pkg/types"
)

// Hybrid groups by top-level directory first, then refines any oversized
// directory by community detection on its induced subgraph. Directory
// groups the right size pass through untouched.
type Hybrid struct{}

func (h *Hybrid) Method() Method { return MethodHybrid }

func (h *Hybrid) Partition(ctx context.Context, snapshot []types.FileRecord, graph *types.DependencyGraph, bounds Bounds) (*types.Partition, error) {
	if err := checkInputs(snapshot, bounds); err != nil {
		return nil, err
	}
	if graph == nil {
		return nil, ErrGraphRequired
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
		groups = append(groups, refineByDependencies(grp, graph)...)
	}

	groups = rebalance(groups, graph, bounds)
	return buildPartition(MethodHybrid, groups, fileIndex(snapshot)), nil
}

// refineByDependencies breaks a directory group along the community
// structure of its induced subgraph. When the subgraph carries no usable
// structure the group is returned whole for the rebalancer to split.
func refineByDependencies(grp group, graph *types.DependencyGraph) []group {
	sub := graph.Subgraph(grp.paths)
	comms, err := (&GreedyModularity{}).Detect(sub)
	if err != nil || len(comms) < 2 {
		return []group{grp}
	}
	out := make([]group, 0, len(comms))
	for i, members := range comms {
		out = append(out, newGroup(fmt.Sprintf("%s/%d", grp.name, i+1), members))
	}
	return out
}
