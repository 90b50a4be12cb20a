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

const (
	conceptsFile = "concepts.json"
	edgesFile    = "edges.json"
)

// GraphStore persists the knowledge graph as two flat JSON collections under
// a per-corpus storage directory. Missing files mean first run; corrupt files
// reset the affected collection to empty instead of surfacing an error.
type GraphStore struct {
	dir string
	log *slog.Logger
}

// NewGraphStore creates a graph store rooted at dir, creating it if needed
func NewGraphStore(dir string, logger *slog.Logger) (*GraphStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, helper.NewError("create storage directory", err)
	}
	return &GraphStore{
		dir: dir,
		log: logger,
	}, nil
}

// Dir returns the storage directory
func (s *GraphStore) Dir() string {
	return s.dir
}

// LoadConcepts reads the persisted concept collection. A missing or corrupt
// file yields an empty collection.
func (s *GraphStore) LoadConcepts() []*model.Concept {
	data, ok := s.readFile(conceptsFile)
	if !ok {
		return nil
	}
	var concepts []*model.Concept
	if err := json.Unmarshal(data, &concepts); err != nil {
		s.log.Warn("Persisted concepts are corrupt, resetting to empty",
			slog.String("file", conceptsFile), slog.String("error", err.Error()))
		return nil
	}
	return concepts
}

// LoadEdges reads the persisted edge collection. A missing or corrupt file
// yields an empty collection.
func (s *GraphStore) LoadEdges() []*model.Edge {
	data, ok := s.readFile(edgesFile)
	if !ok {
		return nil
	}
	var edges []*model.Edge
	if err := json.Unmarshal(data, &edges); err != nil {
		s.log.Warn("Persisted edges are corrupt, resetting to empty",
			slog.String("file", edgesFile), slog.String("error", err.Error()))
		return nil
	}
	return edges
}

// SaveGraph writes both collections. The two files are written independently,
// so a crash between them can leave the graph inconsistent on disk; load
// tolerates either file being absent.
func (s *GraphStore) SaveGraph(concepts []*model.Concept, edges []*model.Edge) error {
	if err := s.writeJSON(conceptsFile, concepts); err != nil {
		return helper.NewError("save concepts", err)
	}
	if err := s.writeJSON(edgesFile, edges); err != nil {
		return helper.NewError("save edges", err)
	}
	return nil
}

func (s *GraphStore) readFile(name string) ([]byte, bool) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.Warn("Could not read persisted collection, starting empty",
				slog.String("file", name), slog.String("error", err.Error()))
		}
		return nil, false
	}
	return data, true
}

// writeJSON writes to a temp file and renames, so readers never observe a
// half-written collection
func (s *GraphStore) writeJSON(name string, value interface{}) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
