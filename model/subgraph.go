package model

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// CachedSubgraph is the materialized result of a past retrieval: the node set,
// optional per-node summaries and the rendered prompt blocks, keyed by the
// normalized query hash. Mutated in place on hit.
type CachedSubgraph struct {
	QueryHash     string            `json:"query_hash"`
	NodeIDs       StringSet         `json:"node_ids"`
	NodeSummaries map[string]string `json:"node_summaries"`
	PromptBlocks  []string          `json:"prompt_blocks"`
	CreatedAt     time.Time         `json:"created_at"`
	LastAccessed  time.Time         `json:"last_accessed"`
	AccessCount   int               `json:"access_count"`
}

// QueryHash derives the cache key for a query: the first 16 hex characters of
// the SHA-256 of the lowercased, whitespace-collapsed query text
func QueryHash(query string) string {
	sum := sha256.Sum256([]byte(NormalizeText(query)))
	return hex.EncodeToString(sum[:])[:16]
}

// NewCachedSubgraph creates an entry for a query
func NewCachedSubgraph(query string, nodeIDs []string, summaries map[string]string, blocks []string) *CachedSubgraph {
	if summaries == nil {
		summaries = make(map[string]string)
	}
	now := time.Now()
	return &CachedSubgraph{
		QueryHash:     QueryHash(query),
		NodeIDs:       NewStringSet(nodeIDs...),
		NodeSummaries: summaries,
		PromptBlocks:  blocks,
		CreatedAt:     now,
		LastAccessed:  now,
		AccessCount:   0,
	}
}

// Touch bumps the access bookkeeping used by LRU eviction
func (c *CachedSubgraph) Touch() {
	c.LastAccessed = time.Now()
	c.AccessCount++
}
