package graph

import (
	"log/slog"
	"sync"

	"github.com/blisspixel/lazyrag/helper"
	"github.com/blisspixel/lazyrag/model"
	"github.com/blisspixel/lazyrag/store"
)

// KnowledgeGraph holds concepts and typed weighted edges in memory, with an
// adjacency index for traversal. All operations are safe for concurrent use.
type KnowledgeGraph struct {
	mu        sync.RWMutex
	concepts  map[string]*model.Concept
	byText    map[string]string
	edges     map[string]*model.Edge
	adjacency map[string][]string
	store     *store.GraphStore
	log       *slog.Logger
}

// NewKnowledgeGraph creates a graph backed by the given store and loads any
// previously persisted concepts and edges into memory.
func NewKnowledgeGraph(graphStore *store.GraphStore, logger *slog.Logger) (*KnowledgeGraph, error) {
	if logger == nil {
		logger = slog.Default()
	}
	g := &KnowledgeGraph{
		concepts:  map[string]*model.Concept{},
		byText:    map[string]string{},
		edges:     map[string]*model.Edge{},
		adjacency: map[string][]string{},
		store:     graphStore,
		log:       logger,
	}

	if graphStore != nil {
		for _, concept := range graphStore.LoadConcepts() {
			g.AddConcept(concept)
		}
		for _, edge := range graphStore.LoadEdges() {
			g.AddEdge(edge)
		}
		g.log.Info("loaded knowledge graph", "concepts", len(g.concepts), "edges", len(g.edges))
	}

	return g, nil
}

// AddConcept inserts a concept, merging it with any existing concept that
// shares the same identity.
func (g *KnowledgeGraph) AddConcept(concept *model.Concept) {
	if concept == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	if existing, ok := g.concepts[concept.ID]; ok {
		g.concepts[concept.ID] = model.MergeConcepts(existing, concept)
	} else {
		g.concepts[concept.ID] = concept
	}
	g.byText[g.concepts[concept.ID].Text] = concept.ID
}

// AddEdge inserts an edge, merging weight and provenance with any existing
// edge between the same pair with the same type.
func (g *KnowledgeGraph) AddEdge(edge *model.Edge) {
	if edge == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	id := edge.ID()
	if existing, ok := g.edges[id]; ok {
		g.edges[id] = model.MergeEdges(existing, edge)
		return
	}
	g.edges[id] = edge
	g.adjacency[edge.SourceID] = append(g.adjacency[edge.SourceID], id)
	g.adjacency[edge.TargetID] = append(g.adjacency[edge.TargetID], id)
}

// GetConcept returns the concept with the given ID, or nil.
func (g *KnowledgeGraph) GetConcept(id string) *model.Concept {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.concepts[id]
}

// GetConceptByText returns the concept whose normalized text matches, or nil.
func (g *KnowledgeGraph) GetConceptByText(text string) *model.Concept {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if id, ok := g.byText[model.NormalizeText(text)]; ok {
		return g.concepts[id]
	}
	return nil
}

// Save persists the full graph to the backing store.
func (g *KnowledgeGraph) Save() error {
	if g.store == nil {
		return nil
	}
	g.mu.RLock()
	concepts := make([]*model.Concept, 0, len(g.concepts))
	for _, concept := range g.concepts {
		concepts = append(concepts, concept)
	}
	edges := make([]*model.Edge, 0, len(g.edges))
	for _, edge := range g.edges {
		edges = append(edges, edge)
	}
	g.mu.RUnlock()

	if err := g.store.SaveGraph(concepts, edges); err != nil {
		return helper.NewError("persist knowledge graph", err)
	}
	return nil
}

// Clear removes all concepts and edges from memory and persists the empty
// graph.
func (g *KnowledgeGraph) Clear() error {
	g.mu.Lock()
	g.concepts = map[string]*model.Concept{}
	g.byText = map[string]string{}
	g.edges = map[string]*model.Edge{}
	g.adjacency = map[string][]string{}
	g.mu.Unlock()

	return g.Save()
}

// Stats reports counts and the average degree over the current graph.
func (g *KnowledgeGraph) Stats() model.GraphStats {
	g.mu.RLock()
	defer g.mu.RUnlock()

	stats := model.GraphStats{
		ConceptCount: len(g.concepts),
		EdgeCount:    len(g.edges),
		ConceptTypes: map[model.ConceptType]int{},
		EdgeTypes:    map[model.EdgeType]int{},
	}
	for _, concept := range g.concepts {
		stats.ConceptTypes[concept.ConceptType]++
	}
	for _, edge := range g.edges {
		stats.EdgeTypes[edge.EdgeType]++
	}
	if len(g.concepts) > 0 {
		stats.AverageDegree = 2 * float64(len(g.edges)) / float64(len(g.concepts))
	}
	return stats
}
