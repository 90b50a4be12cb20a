package graph

import (
	"sort"
	"strings"

	"github.com/blisspixel/lazyrag/model"
)

// Neighbor pairs a concept with the edge that reaches it.
type Neighbor struct {
	Concept *model.Concept
	Edge    *model.Edge
}

// SearchResult pairs a concept with its lexical match score.
type SearchResult struct {
	Concept *model.Concept
	Score   float64
}

// GetNeighbors returns the concepts connected to the given concept, strongest
// edge first. Empty edgeTypes means all types; edges below minWeight are
// skipped.
func (g *KnowledgeGraph) GetNeighbors(id string, edgeTypes []model.EdgeType, minWeight float64) []*Neighbor {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var neighbors []*Neighbor
	for _, edgeID := range g.adjacency[id] {
		edge := g.edges[edgeID]
		if edge == nil || !matchesFilter(edge, edgeTypes, minWeight) {
			continue
		}
		otherID := edge.TargetID
		if otherID == id {
			otherID = edge.SourceID
		}
		other := g.concepts[otherID]
		if other == nil {
			continue
		}
		neighbors = append(neighbors, &Neighbor{Concept: other, Edge: edge})
	}

	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].Edge.Weight != neighbors[j].Edge.Weight {
			return neighbors[i].Edge.Weight > neighbors[j].Edge.Weight
		}
		return neighbors[i].Concept.Text < neighbors[j].Concept.Text
	})
	return neighbors
}

// Traverse performs a breadth first expansion from the given start concepts
// and returns the set of visited concept IDs. Start IDs present in the graph
// are always included. Expansion halts once maxNodes concepts are visited or
// every frontier node sits at maxDepth. Edge type and weight filters constrain
// which edges are followed, never which start nodes are admitted.
func (g *KnowledgeGraph) Traverse(startIDs []string, maxDepth int, maxNodes int, edgeTypes []model.EdgeType, minWeight float64) map[string]bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	visited := map[string]bool{}
	type frontier struct {
		id    string
		depth int
	}
	var queue []frontier

	for _, id := range startIDs {
		if g.concepts[id] == nil || visited[id] {
			continue
		}
		visited[id] = true
		queue = append(queue, frontier{id: id, depth: 0})
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current.depth >= maxDepth || len(visited) >= maxNodes {
			continue
		}

		for _, edgeID := range g.adjacency[current.id] {
			if len(visited) >= maxNodes {
				break
			}
			edge := g.edges[edgeID]
			if edge == nil || !matchesFilter(edge, edgeTypes, minWeight) {
				continue
			}
			otherID := edge.TargetID
			if otherID == current.id {
				otherID = edge.SourceID
			}
			if visited[otherID] || g.concepts[otherID] == nil {
				continue
			}
			visited[otherID] = true
			queue = append(queue, frontier{id: otherID, depth: current.depth + 1})
		}
	}

	return visited
}

// Search ranks concepts against the query by word overlap, boosted by concept
// importance. Concepts sharing no words with the query are excluded.
func (g *KnowledgeGraph) Search(query string, topK int) []*SearchResult {
	queryWords := wordSet(query)
	if len(queryWords) == 0 || topK <= 0 {
		return nil
	}

	g.mu.RLock()
	var results []*SearchResult
	for _, concept := range g.concepts {
		overlap := jaccard(queryWords, wordSet(concept.Text))
		if overlap == 0 {
			continue
		}
		results = append(results, &SearchResult{
			Concept: concept,
			Score:   overlap * (1 + concept.ImportanceScore),
		})
	}
	g.mu.RUnlock()

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].Concept.Text != results[j].Concept.Text {
			return results[i].Concept.Text < results[j].Concept.Text
		}
		return results[i].Concept.ID < results[j].Concept.ID
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

func matchesFilter(edge *model.Edge, edgeTypes []model.EdgeType, minWeight float64) bool {
	if edge.Weight < minWeight {
		return false
	}
	if len(edgeTypes) == 0 {
		return true
	}
	for _, edgeType := range edgeTypes {
		if edge.EdgeType == edgeType {
			return true
		}
	}
	return false
}

func wordSet(text string) map[string]bool {
	words := map[string]bool{}
	for _, word := range strings.Fields(model.NormalizeText(text)) {
		words[word] = true
	}
	return words
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for word := range a {
		if b[word] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
