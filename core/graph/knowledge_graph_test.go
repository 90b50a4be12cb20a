package graph

import (
	"fmt"
	"testing"

	"github.com/blisspixel/lazyrag/model"
	"github.com/blisspixel/lazyrag/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGraph(t *testing.T) *KnowledgeGraph {
	t.Helper()
	g, err := NewKnowledgeGraph(nil, nil)
	require.NoError(t, err)
	return g
}

func addConcept(g *KnowledgeGraph, text string) *model.Concept {
	concept := model.NewConcept(text, model.ConceptTypeNounPhrase, "doc1", "sec1")
	g.AddConcept(concept)
	return concept
}

// chainGraph builds c0 - c1 - ... - c(n-1) connected by co_occurs edges of
// weight 1.0.
func chainGraph(g *KnowledgeGraph, n int) []*model.Concept {
	concepts := make([]*model.Concept, n)
	for i := range concepts {
		concepts[i] = addConcept(g, fmt.Sprintf("chain node %c", 'a'+i))
	}
	for i := 0; i < n-1; i++ {
		g.AddEdge(model.NewEdge(concepts[i].ID, concepts[i+1].ID, model.EdgeTypeCoOccurs, 1.0, "doc1"))
	}
	return concepts
}

func TestKnowledgeGraphMutation(t *testing.T) {
	t.Run("Adding the same concept twice merges instead of duplicating", func(t *testing.T) {
		g := newTestGraph(t)
		first := model.NewConcept("Neural Network", model.ConceptTypeNounPhrase, "doc1", "sec1")
		second := model.NewConcept("neural network", model.ConceptTypeHeading, "doc2", "sec2")
		g.AddConcept(first)
		g.AddConcept(second)

		assert.Equal(t, 1, g.Stats().ConceptCount)
		merged := g.GetConcept(first.ID)
		require.NotNil(t, merged)
		assert.Equal(t, 2, merged.Frequency)
		assert.Equal(t, model.ConceptTypeHeading, merged.ConceptType)
		assert.ElementsMatch(t, []string{"doc1", "doc2"}, merged.DocumentIDs.Values())
	})

	t.Run("Adding the same edge twice keeps the maximum weight", func(t *testing.T) {
		g := newTestGraph(t)
		a := addConcept(g, "alpha")
		b := addConcept(g, "beta")
		g.AddEdge(model.NewEdge(a.ID, b.ID, model.EdgeTypeCoOccurs, 0.4, "doc1"))
		g.AddEdge(model.NewEdge(a.ID, b.ID, model.EdgeTypeCoOccurs, 0.9, "doc2"))

		assert.Equal(t, 1, g.Stats().EdgeCount)
		neighbors := g.GetNeighbors(a.ID, nil, 0)
		require.Len(t, neighbors, 1)
		assert.InDelta(t, 0.9, neighbors[0].Edge.Weight, 1e-9)
		assert.ElementsMatch(t, []string{"doc1", "doc2"}, neighbors[0].Edge.DocumentIDs.Values())
	})

	t.Run("GetConceptByText normalizes before lookup", func(t *testing.T) {
		g := newTestGraph(t)
		concept := addConcept(g, "graph traversal")

		found := g.GetConceptByText("  Graph   TRAVERSAL ")
		require.NotNil(t, found)
		assert.Equal(t, concept.ID, found.ID)
		assert.Nil(t, g.GetConceptByText("unknown phrase"))
	})

	t.Run("Clear empties the graph", func(t *testing.T) {
		g := newTestGraph(t)
		chainGraph(g, 3)
		require.NoError(t, g.Clear())

		stats := g.Stats()
		assert.Zero(t, stats.ConceptCount)
		assert.Zero(t, stats.EdgeCount)
	})
}

func TestGetNeighbors(t *testing.T) {
	t.Run("Neighbors are ordered by descending edge weight", func(t *testing.T) {
		g := newTestGraph(t)
		center := addConcept(g, "center")
		weak := addConcept(g, "weak neighbor")
		strong := addConcept(g, "strong neighbor")
		g.AddEdge(model.NewEdge(center.ID, weak.ID, model.EdgeTypeCoOccurs, 0.3, "doc1"))
		g.AddEdge(model.NewEdge(strong.ID, center.ID, model.EdgeTypeSameSection, 1.2, "doc1"))

		neighbors := g.GetNeighbors(center.ID, nil, 0)
		require.Len(t, neighbors, 2)
		assert.Equal(t, strong.ID, neighbors[0].Concept.ID)
		assert.Equal(t, weak.ID, neighbors[1].Concept.ID)
	})

	t.Run("Edge type and weight filters are applied", func(t *testing.T) {
		g := newTestGraph(t)
		center := addConcept(g, "center")
		a := addConcept(g, "alpha")
		b := addConcept(g, "beta")
		g.AddEdge(model.NewEdge(center.ID, a.ID, model.EdgeTypeSameSection, 1.0, "doc1"))
		g.AddEdge(model.NewEdge(center.ID, b.ID, model.EdgeTypeDefinedIn, 0.2, "doc1"))

		byType := g.GetNeighbors(center.ID, []model.EdgeType{model.EdgeTypeSameSection}, 0)
		require.Len(t, byType, 1)
		assert.Equal(t, a.ID, byType[0].Concept.ID)

		byWeight := g.GetNeighbors(center.ID, nil, 0.5)
		require.Len(t, byWeight, 1)
		assert.Equal(t, a.ID, byWeight[0].Concept.ID)
	})

	t.Run("Unknown concept has no neighbors", func(t *testing.T) {
		g := newTestGraph(t)
		assert.Empty(t, g.GetNeighbors("missing", nil, 0))
	})
}

func TestTraverse(t *testing.T) {
	t.Run("Chain traversal visits at most depth plus one nodes", func(t *testing.T) {
		g := newTestGraph(t)
		concepts := chainGraph(g, 6)

		visited := g.Traverse([]string{concepts[0].ID}, 2, 100, nil, 0)
		assert.Len(t, visited, 3)
		assert.True(t, visited[concepts[0].ID])
		assert.True(t, visited[concepts[1].ID])
		assert.True(t, visited[concepts[2].ID])
		assert.False(t, visited[concepts[3].ID])
	})

	t.Run("Star traversal reaches all satellites in one hop", func(t *testing.T) {
		g := newTestGraph(t)
		center := addConcept(g, "center")
		for i := 0; i < 4; i++ {
			satellite := addConcept(g, fmt.Sprintf("satellite %c", 'a'+i))
			g.AddEdge(model.NewEdge(center.ID, satellite.ID, model.EdgeTypeCoOccurs, 1.0, "doc1"))
		}

		visited := g.Traverse([]string{center.ID}, 1, 100, nil, 0)
		assert.Len(t, visited, 5)
	})

	t.Run("Node budget halts expansion", func(t *testing.T) {
		g := newTestGraph(t)
		concepts := chainGraph(g, 10)

		visited := g.Traverse([]string{concepts[0].ID}, 10, 4, nil, 0)
		assert.Len(t, visited, 4)
	})

	t.Run("All present start nodes are included even at depth zero", func(t *testing.T) {
		g := newTestGraph(t)
		a := addConcept(g, "alpha")
		b := addConcept(g, "beta")

		visited := g.Traverse([]string{a.ID, b.ID, "missing"}, 0, 100, nil, 0)
		assert.Len(t, visited, 2)
		assert.True(t, visited[a.ID])
		assert.True(t, visited[b.ID])
	})

	t.Run("Weight filter gates expansion but not start nodes", func(t *testing.T) {
		g := newTestGraph(t)
		concepts := chainGraph(g, 3)

		visited := g.Traverse([]string{concepts[0].ID}, 3, 100, nil, 2.0)
		assert.Len(t, visited, 1)
		assert.True(t, visited[concepts[0].ID])
	})
}

func TestSearch(t *testing.T) {
	t.Run("Exact matches outrank partial overlaps", func(t *testing.T) {
		g := newTestGraph(t)
		addConcept(g, "quantum computing")
		addConcept(g, "quantum entanglement")
		addConcept(g, "classical physics")

		results := g.Search("quantum computing", 10)
		require.Len(t, results, 2)
		assert.Equal(t, "quantum computing", results[0].Concept.Text)
		assert.Equal(t, "quantum entanglement", results[1].Concept.Text)
		assert.Greater(t, results[0].Score, results[1].Score)
	})

	t.Run("Importance boosts equally overlapping concepts", func(t *testing.T) {
		g := newTestGraph(t)
		plain := model.NewConcept("graph theory", model.ConceptTypeNounPhrase, "doc1", "sec1")
		heading := model.NewConcept("graph algorithms", model.ConceptTypeHeading, "doc1", "sec1")
		heading.ImportanceScore = 1.0
		g.AddConcept(plain)
		g.AddConcept(heading)

		results := g.Search("graph", 10)
		require.Len(t, results, 2)
		assert.Equal(t, heading.ID, results[0].Concept.ID)
	})

	t.Run("Concepts with no word overlap are excluded", func(t *testing.T) {
		g := newTestGraph(t)
		addConcept(g, "neural network")

		assert.Empty(t, g.Search("database index", 10))
	})

	t.Run("Result count is bounded by topK", func(t *testing.T) {
		g := newTestGraph(t)
		for i := 0; i < 5; i++ {
			addConcept(g, fmt.Sprintf("shared term %c", 'a'+i))
		}

		assert.Len(t, g.Search("shared", 3), 3)
	})
}

func TestGraphPersistence(t *testing.T) {
	t.Run("Graph survives a save and reload cycle", func(t *testing.T) {
		dir := t.TempDir()
		graphStore, err := store.NewGraphStore(dir, nil)
		require.NoError(t, err)
		g, err := NewKnowledgeGraph(graphStore, nil)
		require.NoError(t, err)
		concepts := chainGraph(g, 3)
		require.NoError(t, g.Save())

		reloadedStore, err := store.NewGraphStore(dir, nil)
		require.NoError(t, err)
		reloaded, err := NewKnowledgeGraph(reloadedStore, nil)
		require.NoError(t, err)

		stats := reloaded.Stats()
		assert.Equal(t, 3, stats.ConceptCount)
		assert.Equal(t, 2, stats.EdgeCount)

		// Adjacency must be rebuilt, not just the collections.
		visited := reloaded.Traverse([]string{concepts[0].ID}, 5, 100, nil, 0)
		assert.Len(t, visited, 3)
	})
}
