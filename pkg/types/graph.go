package types

import (
	"fmt"
	"sort"
)

// EdgeKind distinguishes import statements from looser textual references
type EdgeKind string

const (
	EdgeImport    EdgeKind = "import"
	EdgeReference EdgeKind = "reference"
)

// DependencyEdge is a directed file-to-file reference. Multiple raw
// references between the same pair collapse into one edge with a count.
type DependencyEdge struct {
	Source string
	Target string
	Kind   EdgeKind
	Count  int
}

// DependencyGraph maps snapshot paths to their outgoing and incoming edges.
// Built once per snapshot and read-only afterward; safe for concurrent reads.
type DependencyGraph struct {
	nodes map[string]struct{}
	out   map[string]map[string]*DependencyEdge
	in    map[string]map[string]*DependencyEdge
}

// NewDependencyGraph creates a graph whose node set is fixed to the given paths
func NewDependencyGraph(paths []string) *DependencyGraph {
	g := &DependencyGraph{
		nodes: make(map[string]struct{}, len(paths)),
		out:   make(map[string]map[string]*DependencyEdge),
		in:    make(map[string]map[string]*DependencyEdge),
	}
	for _, p := range paths {
		g.nodes[p] = struct{}{}
	}
	return g
}

// AddEdge records a directed reference. Self-edges are discarded, duplicate
// edges collapse into a reference count, and endpoints must be snapshot files.
func (g *DependencyGraph) AddEdge(source, target string, kind EdgeKind) error {
	if source == target {
		return nil
	}
	if _, ok := g.nodes[source]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, source)
	}
	if _, ok := g.nodes[target]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, target)
	}

	if existing, ok := g.out[source][target]; ok {
		existing.Count++
		// An import edge outranks a plain reference between the same pair
		if kind == EdgeImport {
			existing.Kind = EdgeImport
		}
		return nil
	}

	edge := &DependencyEdge{Source: source, Target: target, Kind: kind, Count: 1}
	if g.out[source] == nil {
		g.out[source] = make(map[string]*DependencyEdge)
	}
	if g.in[target] == nil {
		g.in[target] = make(map[string]*DependencyEdge)
	}
	g.out[source][target] = edge
	g.in[target][source] = edge
	return nil
}

// HasNode reports whether the path is part of this graph's snapshot
func (g *DependencyGraph) HasNode(path string) bool {
	_, ok := g.nodes[path]
	return ok
}

// Nodes returns all node paths in sorted order
func (g *DependencyGraph) Nodes() []string {
	paths := make([]string, 0, len(g.nodes))
	for p := range g.nodes {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// NodeCount returns the number of files in the graph
func (g *DependencyGraph) NodeCount() int {
	return len(g.nodes)
}

// OutEdges returns outgoing edges for a path, sorted by target
func (g *DependencyGraph) OutEdges(path string) []*DependencyEdge {
	return sortedEdges(g.out[path], func(e *DependencyEdge) string { return e.Target })
}

// InEdges returns incoming edges for a path, sorted by source
func (g *DependencyGraph) InEdges(path string) []*DependencyEdge {
	return sortedEdges(g.in[path], func(e *DependencyEdge) string { return e.Source })
}

// EdgeCount returns the number of distinct directed edges
func (g *DependencyGraph) EdgeCount() int {
	n := 0
	for _, targets := range g.out {
		n += len(targets)
	}
	return n
}

// Neighbors returns all nodes connected to path in either direction, sorted.
// Community detection treats the graph as undirected.
func (g *DependencyGraph) Neighbors(path string) []string {
	seen := make(map[string]struct{})
	for target := range g.out[path] {
		seen[target] = struct{}{}
	}
	for source := range g.in[path] {
		seen[source] = struct{}{}
	}
	neighbors := make([]string, 0, len(seen))
	for p := range seen {
		neighbors = append(neighbors, p)
	}
	sort.Strings(neighbors)
	return neighbors
}

// Weight returns the undirected connection weight between two nodes:
// the sum of reference counts in both directions.
func (g *DependencyGraph) Weight(a, b string) int {
	w := 0
	if e, ok := g.out[a][b]; ok {
		w += e.Count
	}
	if e, ok := g.out[b][a]; ok {
		w += e.Count
	}
	return w
}

// Degree returns the total undirected weight of all edges touching path
func (g *DependencyGraph) Degree(path string) int {
	d := 0
	for _, e := range g.out[path] {
		d += e.Count
	}
	for _, e := range g.in[path] {
		d += e.Count
	}
	return d
}

// TotalWeight returns the sum of reference counts over all directed edges,
// which equals the total undirected edge weight of the graph.
func (g *DependencyGraph) TotalWeight() int {
	w := 0
	for _, targets := range g.out {
		for _, e := range targets {
			w += e.Count
		}
	}
	return w
}

// Subgraph returns the induced subgraph over the given paths. Paths not in
// the graph are ignored; edges survive only when both endpoints are kept.
func (g *DependencyGraph) Subgraph(paths []string) *DependencyGraph {
	kept := make([]string, 0, len(paths))
	for _, p := range paths {
		if g.HasNode(p) {
			kept = append(kept, p)
		}
	}
	sub := NewDependencyGraph(kept)
	for _, p := range kept {
		for target, e := range g.out[p] {
			if !sub.HasNode(target) {
				continue
			}
			for i := 0; i < e.Count; i++ {
				_ = sub.AddEdge(p, target, e.Kind)
			}
		}
	}
	return sub
}

func sortedEdges(m map[string]*DependencyEdge, key func(*DependencyEdge) string) []*DependencyEdge {
	edges := make([]*DependencyEdge, 0, len(m))
	for _, e := range m {
		edges = append(edges, e)
	}
	sort.Slice(edges, func(i, j int) bool { return key(edges[i]) < key(edges[j]) })
	return edges
}
