package partition

import (
	"context"
	"fmt"

	"repodoc/pkg/types"
)

// Dependency partitions by import relationships: community detection over
// the dependency graph, then size rebalancing along the same edges.
type Dependency struct{}

func (d *Dependency) Method() Method { return MethodDependency }

func (d *Dependency) Partition(ctx context.Context, snapshot []types.FileRecord, graph *types.DependencyGraph, bounds Bounds) (*types.Partition, error) {
	if err := checkInputs(snapshot, bounds); err != nil {
		return nil, err
	}
	if graph == nil {
		return nil, ErrGraphRequired
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	groups := clusterByDependencies(graph)
	groups = rebalance(groups, graph, bounds)
	return buildPartition(MethodDependency, groups, fileIndex(snapshot)), nil
}

// clusterByDependencies names each detected community after the deepest
// directory its members share
func clusterByDependencies(graph *types.DependencyGraph) []group {
	comms := communities(graph)
	groups := make([]group, 0, len(comms))
	for i, members := range comms {
		name := fmt.Sprintf("module_%d", i+1)
		if prefix := commonPrefix(members); prefix != "" {
			name = fmt.Sprintf("%s_module_%d", prefix, i+1)
		}
		groups = append(groups, newGroup(name, members))
	}
	return groups
}
