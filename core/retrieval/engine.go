package retrieval

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/blisspixel/lazyrag/core/graph"
	"github.com/blisspixel/lazyrag/model"
)

const (
	maxNeighborsPerChunk = 5
	maxSourcesPerChunk   = 3
	neighborMinWeight    = 0.3
)

// Engine turns graph concepts into renderable retrieval chunks.
type Engine struct {
	graph *graph.KnowledgeGraph
	log   *slog.Logger
}

// NewEngine creates an engine over the given knowledge graph.
func NewEngine(knowledgeGraph *graph.KnowledgeGraph, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		graph: knowledgeGraph,
		log:   logger,
	}
}

// Search performs a lexical concept search over the graph.
func (e *Engine) Search(query string, topK int) []*graph.SearchResult {
	return e.graph.Search(query, topK)
}

// BuildChunks renders a text block for each known concept ID, ordered by
// concept importance and truncated to limit. IDs without a stored concept are
// skipped.
func (e *Engine) BuildChunks(conceptIDs []string, limit int) []model.Chunk {
	if limit <= 0 {
		return nil
	}

	type candidate struct {
		concept *model.Concept
		chunk   model.Chunk
	}
	var candidates []candidate
	for _, id := range conceptIDs {
		concept := e.graph.GetConcept(id)
		if concept == nil {
			continue
		}
		candidates = append(candidates, candidate{
			concept: concept,
			chunk: model.Chunk{
				ID:          concept.ID,
				Content:     e.renderBlock(concept),
				Score:       concept.ImportanceScore,
				ConceptType: concept.ConceptType,
			},
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].concept.ImportanceScore != candidates[j].concept.ImportanceScore {
			return candidates[i].concept.ImportanceScore > candidates[j].concept.ImportanceScore
		}
		return candidates[i].concept.Text < candidates[j].concept.Text
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	chunks := make([]model.Chunk, len(candidates))
	for i, c := range candidates {
		chunks[i] = c.chunk
	}
	return chunks
}

// renderBlock produces the prompt text for one concept: its text, its
// strongest neighbors, and its source documents.
func (e *Engine) renderBlock(concept *model.Concept) string {
	var builder strings.Builder
	builder.WriteString("Concept: ")
	builder.WriteString(concept.Text)

	neighbors := e.graph.GetNeighbors(concept.ID, nil, neighborMinWeight)
	if len(neighbors) > maxNeighborsPerChunk {
		neighbors = neighbors[:maxNeighborsPerChunk]
	}
	if len(neighbors) > 0 {
		builder.WriteString("\nRelated: ")
		parts := make([]string, len(neighbors))
		for i, neighbor := range neighbors {
			parts[i] = fmt.Sprintf("%s (%s, %.2f)", neighbor.Concept.Text, neighbor.Edge.EdgeType, neighbor.Edge.Weight)
		}
		builder.WriteString(strings.Join(parts, "; "))
	}

	sources := concept.DocumentIDs.Values()
	if len(sources) > maxSourcesPerChunk {
		sources = sources[:maxSourcesPerChunk]
	}
	if len(sources) > 0 {
		builder.WriteString("\nSources: ")
		builder.WriteString(strings.Join(sources, ", "))
	}

	return builder.String()
}
