package partition

import (
	"fmt"
	"log"
	"sort"

	"repodoc/pkg/types"
)

// Detector groups graph nodes into communities. Detectors report
// types.ErrClusteringUnavailable when the graph shape defeats them, in
// which case callers fall back to connected components.
type Detector interface {
	Detect(graph *types.DependencyGraph) ([][]string, error)
}

// communities runs the primary detector and falls back to connected
// components when the detector cannot handle the graph
func communities(graph *types.DependencyGraph) [][]string {
	primary := &GreedyModularity{}
	groups, err := primary.Detect(graph)
	if err != nil {
		log.Printf("community detection unavailable, falling back to connected components: %v", err)
		groups, _ = (&ConnectedComponents{}).Detect(graph)
	}
	return groups
}

// GreedyModularity implements agglomerative modularity maximization on the
// undirected weighted view of the graph. Merging stops at the first step
// with no positive modularity gain.
type GreedyModularity struct{}

// Detect returns communities sorted internally by path, ordered by their
// smallest member path
func (d *GreedyModularity) Detect(graph *types.DependencyGraph) ([][]string, error) {
	nodes := graph.Nodes()
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: empty graph", types.ErrClusteringUnavailable)
	}
	m := graph.TotalWeight()
	if m == 0 {
		return nil, fmt.Errorf("%w: graph has no edges", types.ErrClusteringUnavailable)
	}

	// Each node starts in its own community, identified by its smallest
	// member path so ties break the same way on every run.
	member := make(map[string]string, len(nodes)) // node -> community id
	comms := make(map[string][]string, len(nodes))
	degree := make(map[string]float64, len(nodes)) // community total degree
	for _, n := range nodes {
		member[n] = n
		comms[n] = []string{n}
		degree[n] = float64(graph.Degree(n))
	}

	// weight between communities, keyed by ordered id pair
	type pair struct{ a, b string }
	link := make(map[pair]float64)
	for _, n := range nodes {
		for _, nb := range graph.Neighbors(n) {
			if n >= nb {
				continue
			}
			ca, cb := member[n], member[nb]
			if ca == cb {
				continue
			}
			if ca > cb {
				ca, cb = cb, ca
			}
			link[pair{ca, cb}] += float64(graph.Weight(n, nb))
		}
	}

	total := float64(m)
	for len(comms) > 1 {
		// Find the merge with the best modularity gain. Ties resolve to
		// the lexicographically smallest pair.
		var best pair
		bestGain := 0.0
		found := false
		keys := make([]pair, 0, len(link))
		for k := range link {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			if keys[i].a != keys[j].a {
				return keys[i].a < keys[j].a
			}
			return keys[i].b < keys[j].b
		})
		for _, k := range keys {
			gain := link[k]/total - degree[k.a]*degree[k.b]/(2*total*total)
			if gain > bestGain {
				bestGain = gain
				best = k
				found = true
			}
		}
		if !found {
			break
		}

		// Merge b into a; a is the smaller id so community ids stay the
		// smallest member path.
		a, b := best.a, best.b
		comms[a] = append(comms[a], comms[b]...)
		degree[a] += degree[b]
		delete(comms, b)
		delete(degree, b)
		for _, n := range comms[a] {
			member[n] = a
		}
		delete(link, best)
		for k, w := range link {
			var other string
			switch {
			case k.a == b:
				other = k.b
			case k.b == b:
				other = k.a
			default:
				continue
			}
			delete(link, k)
			na, nb := a, other
			if na > nb {
				na, nb = nb, na
			}
			link[pair{na, nb}] += w
		}
	}

	return collectCommunities(comms), nil
}

// ConnectedComponents groups nodes by undirected reachability
type ConnectedComponents struct{}

func (d *ConnectedComponents) Detect(graph *types.DependencyGraph) ([][]string, error) {
	nodes := graph.Nodes()
	seen := make(map[string]bool, len(nodes))
	comms := make(map[string][]string)
	for _, start := range nodes {
		if seen[start] {
			continue
		}
		var comp []string
		stack := []string{start}
		seen[start] = true
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			comp = append(comp, n)
			for _, nb := range graph.Neighbors(n) {
				if !seen[nb] {
					seen[nb] = true
					stack = append(stack, nb)
				}
			}
		}
		sort.Strings(comp)
		comms[comp[0]] = comp
	}
	return collectCommunities(comms), nil
}

// collectCommunities sorts each community's members and orders communities
// by their smallest member path
func collectCommunities(comms map[string][]string) [][]string {
	ids := make([]string, 0, len(comms))
	for id, members := range comms {
		sort.Strings(members)
		comms[id] = members
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return comms[ids[i]][0] < comms[ids[j]][0] })
	out := make([][]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, comms[id])
	}
	return out
}
