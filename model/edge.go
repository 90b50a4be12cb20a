package model

import (
	"fmt"
	"time"
)

// EdgeType represents the kind of relationship between two concepts
type EdgeType string

const (
	EdgeTypeCoOccurs      EdgeType = "co_occurs"
	EdgeTypeDefinedIn     EdgeType = "defined_in"
	EdgeTypeDependsOn     EdgeType = "depends_on"
	EdgeTypeSameSection   EdgeType = "same_section"
	EdgeTypeSameParagraph EdgeType = "same_paragraph"
	EdgeTypeSameChunk     EdgeType = "same_chunk"
)

// Edge is a typed, weighted relationship between two concepts derived from
// co-location in the source text. Direction is nominal: the adjacency index
// holds both endpoints.
type Edge struct {
	SourceID    string    `json:"source_id"`
	TargetID    string    `json:"target_id"`
	EdgeType    EdgeType  `json:"edge_type"`
	Weight      float64   `json:"weight"`
	DocumentIDs StringSet `json:"document_ids"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewEdge creates an edge between two concept IDs
func NewEdge(sourceID, targetID string, edgeType EdgeType, weight float64, documentID string) *Edge {
	e := &Edge{
		SourceID:    sourceID,
		TargetID:    targetID,
		EdgeType:    edgeType,
		Weight:      weight,
		DocumentIDs: NewStringSet(),
		CreatedAt:   time.Now(),
	}
	if documentID != "" {
		e.DocumentIDs.Add(documentID)
	}
	return e
}

// ID returns the composite edge key "{source}:{type}:{target}"
func (e *Edge) ID() string {
	return fmt.Sprintf("%s:%s:%s", e.SourceID, e.EdgeType, e.TargetID)
}

// MergeEdges folds incoming into existing: the weight keeps the maximum and
// the document sets union. Both edges must share the same composite ID.
func MergeEdges(existing, incoming *Edge) *Edge {
	if incoming.Weight > existing.Weight {
		existing.Weight = incoming.Weight
	}
	existing.DocumentIDs.Union(incoming.DocumentIDs)
	return existing
}
