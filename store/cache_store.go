package store

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/blisspixel/lazyrag/helper"
	"github.com/blisspixel/lazyrag/model"
)

const cacheFile = "subgraph_cache.json"

// cacheSnapshot is the on-disk schema of the subgraph cache: one JSON object
// holding the configured capacity and all entries keyed by query hash
type cacheSnapshot struct {
	MaxSize int                              `json:"max_size"`
	Entries map[string]*model.CachedSubgraph `json:"entries"`
}

// CacheStore persists the subgraph cache as a single JSON file. Any parse
// failure silently resets to an empty cache rather than propagating an error.
type CacheStore struct {
	path string
	log  *slog.Logger
}

// NewCacheStore creates a cache store under dir, creating the directory if needed
func NewCacheStore(dir string, logger *slog.Logger) (*CacheStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, helper.NewError("create storage directory", err)
	}
	return &CacheStore{
		path: filepath.Join(dir, cacheFile),
		log:  logger,
	}, nil
}

// Load reads the persisted cache. Missing or corrupt files yield an empty map.
func (s *CacheStore) Load() map[string]*model.CachedSubgraph {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.Warn("Could not read persisted cache, starting empty",
				slog.String("error", err.Error()))
		}
		return map[string]*model.CachedSubgraph{}
	}

	var snapshot cacheSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil || snapshot.Entries == nil {
		if err != nil {
			s.log.Warn("Persisted cache is corrupt, resetting to empty",
				slog.String("error", err.Error()))
		}
		return map[string]*model.CachedSubgraph{}
	}
	return snapshot.Entries
}

// Save writes the whole cache map to disk
func (s *CacheStore) Save(maxSize int, entries map[string]*model.CachedSubgraph) error {
	data, err := json.MarshalIndent(cacheSnapshot{MaxSize: maxSize, Entries: entries}, "", "  ")
	if err != nil {
		return helper.NewError("encode cache", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return helper.NewError("write cache file", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return helper.NewError("replace cache file", err)
	}
	return nil
}
