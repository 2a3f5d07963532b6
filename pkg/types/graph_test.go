package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGraph(t *testing.T, paths ...string) *DependencyGraph {
	t.Helper()
	return NewDependencyGraph(paths)
}

func TestAddEdge_SelfEdgeDiscarded(t *testing.T) {
	g := newTestGraph(t, "a.py")

	err := g.AddEdge("a.py", "a.py", EdgeImport)

	require.NoError(t, err)
	assert.Equal(t, 0, g.EdgeCount())
}

func TestAddEdge_DuplicatesCollapse(t *testing.T) {
	g := newTestGraph(t, "a.py", "b.py")

	require.NoError(t, g.AddEdge("a.py", "b.py", EdgeReference))
	require.NoError(t, g.AddEdge("a.py", "b.py", EdgeReference))
	require.NoError(t, g.AddEdge("a.py", "b.py", EdgeImport))

	assert.Equal(t, 1, g.EdgeCount())
	edges := g.OutEdges("a.py")
	require.Len(t, edges, 1)
	assert.Equal(t, 3, edges[0].Count)
	// an import outranks plain references between the same pair
	assert.Equal(t, EdgeImport, edges[0].Kind)
}

func TestAddEdge_UnknownEndpoint(t *testing.T) {
	g := newTestGraph(t, "a.py")

	err := g.AddEdge("a.py", "ghost.py", EdgeImport)
	require.ErrorIs(t, err, ErrUnknownNode)

	err = g.AddEdge("ghost.py", "a.py", EdgeImport)
	require.ErrorIs(t, err, ErrUnknownNode)
}

func TestNeighbors_Undirected(t *testing.T) {
	g := newTestGraph(t, "a.py", "b.py", "c.py")
	require.NoError(t, g.AddEdge("a.py", "b.py", EdgeImport))
	require.NoError(t, g.AddEdge("c.py", "a.py", EdgeImport))

	assert.Equal(t, []string{"b.py", "c.py"}, g.Neighbors("a.py"))
	assert.Equal(t, []string{"a.py"}, g.Neighbors("b.py"))
}

func TestWeight_SumsBothDirections(t *testing.T) {
	g := newTestGraph(t, "a.py", "b.py")
	require.NoError(t, g.AddEdge("a.py", "b.py", EdgeImport))
	require.NoError(t, g.AddEdge("a.py", "b.py", EdgeImport))
	require.NoError(t, g.AddEdge("b.py", "a.py", EdgeImport))

	assert.Equal(t, 3, g.Weight("a.py", "b.py"))
	assert.Equal(t, 3, g.Weight("b.py", "a.py"))
	assert.Equal(t, 3, g.Degree("a.py"))
	assert.Equal(t, 3, g.TotalWeight())
}

func TestSubgraph_KeepsInternalEdgesOnly(t *testing.T) {
	g := newTestGraph(t, "a.py", "b.py", "c.py")
	require.NoError(t, g.AddEdge("a.py", "b.py", EdgeImport))
	require.NoError(t, g.AddEdge("a.py", "b.py", EdgeImport))
	require.NoError(t, g.AddEdge("b.py", "c.py", EdgeImport))

	sub := g.Subgraph([]string{"a.py", "b.py", "missing.py"})

	assert.Equal(t, 2, sub.NodeCount())
	assert.Equal(t, 1, sub.EdgeCount())
	// edge weight is preserved
	assert.Equal(t, 2, sub.Weight("a.py", "b.py"))
	assert.False(t, sub.HasNode("c.py"))
}
