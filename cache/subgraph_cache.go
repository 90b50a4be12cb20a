package cache

import (
	"log/slog"
	"sync"

	"github.com/blisspixel/lazyrag/model"
	"github.com/blisspixel/lazyrag/store"
)

// SubgraphCache keeps recently retrieved subgraphs keyed by query hash, with
// least recently used eviction once maxSize entries are held. Every mutation
// is written through to the backing store.
type SubgraphCache struct {
	mu      sync.Mutex
	maxSize int
	entries map[string]*model.CachedSubgraph
	store   *store.CacheStore
	log     *slog.Logger
}

// NewSubgraphCache creates a cache of at most maxSize entries and loads any
// previously persisted entries from the store.
func NewSubgraphCache(maxSize int, cacheStore *store.CacheStore, logger *slog.Logger) (*SubgraphCache, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if maxSize < 1 {
		maxSize = 1
	}
	c := &SubgraphCache{
		maxSize: maxSize,
		entries: map[string]*model.CachedSubgraph{},
		store:   cacheStore,
		log:     logger,
	}
	if cacheStore != nil {
		c.entries = cacheStore.Load()
		for len(c.entries) > c.maxSize {
			c.evictOldestLocked()
		}
		c.log.Info("loaded subgraph cache", "entries", len(c.entries), "max_size", c.maxSize)
	}
	return c, nil
}

// Get returns the cached subgraph for the query hash, updating its access
// time and count on a hit.
func (c *SubgraphCache) Get(queryHash string) (*model.CachedSubgraph, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[queryHash]
	if !ok {
		return nil, false
	}
	entry.Touch()
	c.persistLocked()
	return entry, true
}

// Put stores the entry under its query hash, evicting the least recently used
// entry when a new hash would exceed the size limit.
func (c *SubgraphCache) Put(entry *model.CachedSubgraph) {
	if entry == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[entry.QueryHash]; !exists && len(c.entries) >= c.maxSize {
		c.evictOldestLocked()
	}
	c.entries[entry.QueryHash] = entry
	c.persistLocked()
}

// UpdateSummaries replaces the node summaries of an existing entry.
func (c *SubgraphCache) UpdateSummaries(queryHash string, summaries map[string]string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[queryHash]
	if !ok {
		return false
	}
	entry.NodeSummaries = summaries
	entry.Touch()
	c.persistLocked()
	return true
}

// UpdatePromptBlocks replaces the prompt blocks of an existing entry.
func (c *SubgraphCache) UpdatePromptBlocks(queryHash string, blocks []string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[queryHash]
	if !ok {
		return false
	}
	entry.PromptBlocks = blocks
	entry.Touch()
	c.persistLocked()
	return true
}

// Invalidate removes the entry for the query hash if present.
func (c *SubgraphCache) Invalidate(queryHash string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[queryHash]; !ok {
		return false
	}
	delete(c.entries, queryHash)
	c.persistLocked()
	return true
}

// Clear removes all entries.
func (c *SubgraphCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = map[string]*model.CachedSubgraph{}
	c.persistLocked()
}

// Stats summarizes the current cache contents.
func (c *SubgraphCache) Stats() model.CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := model.CacheStats{
		Size:    len(c.entries),
		MaxSize: c.maxSize,
	}
	for _, entry := range c.entries {
		stats.TotalAccesses += entry.AccessCount
		if stats.OldestEntry.IsZero() || entry.CreatedAt.Before(stats.OldestEntry) {
			stats.OldestEntry = entry.CreatedAt
		}
		if entry.CreatedAt.After(stats.NewestEntry) {
			stats.NewestEntry = entry.CreatedAt
		}
	}
	if len(c.entries) > 0 {
		stats.AverageAccesses = float64(stats.TotalAccesses) / float64(len(c.entries))
	}
	return stats
}

// evictOldestLocked drops the entry with the oldest access time, breaking ties
// by creation time.
func (c *SubgraphCache) evictOldestLocked() {
	var oldestHash string
	var oldest *model.CachedSubgraph
	for hash, entry := range c.entries {
		if oldest == nil ||
			entry.LastAccessed.Before(oldest.LastAccessed) ||
			(entry.LastAccessed.Equal(oldest.LastAccessed) && entry.CreatedAt.Before(oldest.CreatedAt)) {
			oldestHash = hash
			oldest = entry
		}
	}
	if oldest != nil {
		c.log.Debug("evicting cached subgraph", "query_hash", oldestHash, "last_accessed", oldest.LastAccessed)
		delete(c.entries, oldestHash)
	}
}

func (c *SubgraphCache) persistLocked() {
	if c.store == nil {
		return
	}
	if err := c.store.Save(c.maxSize, c.entries); err != nil {
		c.log.Warn("failed to persist subgraph cache", "error", err)
	}
}
