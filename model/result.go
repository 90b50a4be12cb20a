package model

import "time"

// Chunk is one rendered text block in a retrieval response
type Chunk struct {
	ID          string      `json:"id"`
	Content     string      `json:"content"`
	Score       float64     `json:"score"`
	ConceptType ConceptType `json:"concept_type"`
}

// RetrievalResponse is the full result of a retrieve call
type RetrievalResponse struct {
	Chunks      []Chunk     `json:"chunks"`
	FromCache   bool        `json:"from_cache"`
	Sufficiency Sufficiency `json:"sufficiency"`
	ConceptIDs  []string    `json:"concepts"`
}

// IndexResult reports per-document indexing counts
type IndexResult struct {
	DocumentID     string  `json:"document_id"`
	Sections       int     `json:"sections"`
	Concepts       int     `json:"concepts"`
	Edges          int     `json:"edges"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
}

// BatchIndexResult aggregates indexing counts across a batch of documents
type BatchIndexResult struct {
	Documents      int     `json:"documents"`
	Sections       int     `json:"sections"`
	Concepts       int     `json:"concepts"`
	Edges          int     `json:"edges"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
}

// GraphStats summarizes the knowledge graph contents
type GraphStats struct {
	ConceptCount  int                 `json:"concept_count"`
	EdgeCount     int                 `json:"edge_count"`
	ConceptTypes  map[ConceptType]int `json:"concept_types"`
	EdgeTypes     map[EdgeType]int    `json:"edge_types"`
	AverageDegree float64             `json:"average_degree"`
}

// CacheStats summarizes the subgraph cache contents
type CacheStats struct {
	Size            int       `json:"size"`
	MaxSize         int       `json:"max_size"`
	TotalAccesses   int       `json:"total_accesses"`
	AverageAccesses float64   `json:"average_accesses"`
	OldestEntry     time.Time `json:"oldest_entry"`
	NewestEntry     time.Time `json:"newest_entry"`
}

// EngineStats combines graph and cache statistics with indexing history
type EngineStats struct {
	Graph            GraphStats `json:"graph"`
	Cache            CacheStats `json:"cache"`
	DocumentsIndexed int        `json:"documents_indexed"`
	LastIndexTime    time.Time  `json:"last_index_time"`
}
