package lazyrag

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/blisspixel/lazyrag/cache"
	"github.com/blisspixel/lazyrag/core/graph"
	"github.com/blisspixel/lazyrag/core/pipeline"
	"github.com/blisspixel/lazyrag/core/retrieval"
	"github.com/blisspixel/lazyrag/helper"
	"github.com/blisspixel/lazyrag/model"
	"github.com/blisspixel/lazyrag/store"
)

const cachedChunkScore = 0.8

// Words suggesting a query benefits from graph traversal rather than plain
// keyword lookup.
var graphQueryWords = map[string]bool{
	"compare":      true,
	"comparison":   true,
	"versus":       true,
	"vs":           true,
	"difference":   true,
	"between":      true,
	"why":          true,
	"because":      true,
	"cause":        true,
	"causes":       true,
	"effect":       true,
	"affect":       true,
	"impact":       true,
	"relationship": true,
	"related":      true,
	"influence":    true,
	"leads":        true,
}

// Config carries the construction parameters of the engine.
type Config struct {
	// StorageDir is the per corpus directory holding the persisted graph and
	// cache files.
	StorageDir string
	// CacheSize bounds the number of cached subgraphs.
	CacheSize int
	// SufficiencyThreshold is the score below which retrieval expands the
	// traversal before answering.
	SufficiencyThreshold float64
	// BatchSize bounds how many documents are processed per batch during bulk
	// indexing.
	BatchSize int
	Extractor pipeline.ExtractorConfig
	Builder   pipeline.BuilderConfig
}

// DefaultConfig returns the standard engine configuration for a storage
// directory.
func DefaultConfig(storageDir string) *Config {
	return &Config{
		StorageDir:           storageDir,
		CacheSize:            100,
		SufficiencyThreshold: 0.6,
		BatchSize:            100,
		Extractor:            pipeline.DefaultExtractorConfig(),
		Builder:              pipeline.DefaultBuilderConfig(),
	}
}

// LazyGraphRAG is the retrieval engine facade. It wires the extraction
// pipeline, the knowledge graph, the subgraph cache and the sufficiency
// scorer behind the indexing and retrieval operations.
type LazyGraphRAG struct {
	Graph    *graph.KnowledgeGraph
	Cache    *cache.SubgraphCache
	Pipeline *pipeline.Pipeline
	Engine   *retrieval.Engine

	scorer    *retrieval.SufficiencyScorer
	threshold float64
	batchSize int

	mu            sync.Mutex
	docsIndexed   int
	lastIndexTime time.Time

	log *slog.Logger
}

// New creates a LazyGraphRAG engine, loading any previously persisted graph
// and cache state from the configured storage directory.
func New(config *Config) (*LazyGraphRAG, error) {
	if config == nil {
		return nil, helper.NewError("create engine", fmt.Errorf("config must not be nil"))
	}

	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	}
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, opts))

	graphStore, err := store.NewGraphStore(config.StorageDir, logger)
	if err != nil {
		return nil, helper.NewError("create graph store", err)
	}
	cacheStore, err := store.NewCacheStore(config.StorageDir, logger)
	if err != nil {
		return nil, helper.NewError("create cache store", err)
	}

	knowledgeGraph, err := graph.NewKnowledgeGraph(graphStore, logger)
	if err != nil {
		return nil, helper.NewError("create knowledge graph", err)
	}
	subgraphCache, err := cache.NewSubgraphCache(config.CacheSize, cacheStore, logger)
	if err != nil {
		return nil, helper.NewError("create subgraph cache", err)
	}

	extractor := pipeline.NewConceptExtractor(config.Extractor, model.DefaultStopwords(), logger)
	builder := pipeline.NewEdgeBuilder(config.Builder, logger)

	batchSize := config.BatchSize
	if batchSize < 1 {
		batchSize = 100
	}

	return &LazyGraphRAG{
		Graph:     knowledgeGraph,
		Cache:     subgraphCache,
		Pipeline:  pipeline.NewPipeline(extractor, builder),
		Engine:    retrieval.NewEngine(knowledgeGraph, logger),
		scorer:    retrieval.NewSufficiencyScorer(model.DefaultStopwords(), logger),
		threshold: config.SufficiencyThreshold,
		batchSize: batchSize,
		log:       logger,
	}, nil
}

// IndexDocument extracts sections, concepts and edges from the content,
// merges them into the knowledge graph and persists the result. An empty
// documentID gets a generated one.
func (l *LazyGraphRAG) IndexDocument(ctx context.Context, documentID, content string, metadata model.Metadata) (*model.IndexResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if documentID == "" {
		documentID = uuid.NewString()
	}
	start := time.Now()

	result := l.Pipeline.ProcessDocument(content, documentID)
	for _, concept := range result.Concepts {
		l.Graph.AddConcept(concept)
	}
	for _, edge := range result.Edges {
		l.Graph.AddEdge(edge)
	}
	if err := l.Graph.Save(); err != nil {
		return nil, helper.NewError("index document", err)
	}

	l.mu.Lock()
	l.docsIndexed++
	l.lastIndexTime = time.Now()
	l.mu.Unlock()

	elapsed := time.Since(start).Seconds()
	l.log.Info("indexed document",
		"document_id", documentID,
		"sections", len(result.Sections),
		"concepts", len(result.Concepts),
		"edges", len(result.Edges),
		"metadata_keys", len(metadata),
		"elapsed_seconds", elapsed,
	)

	return &model.IndexResult{
		DocumentID:     documentID,
		Sections:       len(result.Sections),
		Concepts:       len(result.Concepts),
		Edges:          len(result.Edges),
		ElapsedSeconds: elapsed,
	}, nil
}

// IndexDocuments indexes documents in batches to bound memory use. Documents
// within a batch are processed sequentially.
func (l *LazyGraphRAG) IndexDocuments(ctx context.Context, documents []*model.Document) (*model.BatchIndexResult, error) {
	start := time.Now()
	aggregate := &model.BatchIndexResult{}

	for batchStart := 0; batchStart < len(documents); batchStart += l.batchSize {
		batchEnd := batchStart + l.batchSize
		if batchEnd > len(documents) {
			batchEnd = len(documents)
		}
		for _, doc := range documents[batchStart:batchEnd] {
			if err := ctx.Err(); err != nil {
				return aggregate, err
			}
			result, err := l.IndexDocument(ctx, doc.ID, doc.Content, doc.Metadata)
			if err != nil {
				return aggregate, err
			}
			aggregate.Documents++
			aggregate.Sections += result.Sections
			aggregate.Concepts += result.Concepts
			aggregate.Edges += result.Edges
		}
	}

	aggregate.ElapsedSeconds = time.Since(start).Seconds()
	return aggregate, nil
}

// Retrieve answers a query against the indexed corpus. It checks the subgraph
// cache first, then searches the graph lexically, optionally expands via
// bounded traversal, builds and scores chunks, expands once more if the score
// falls below the threshold, and finally caches the rendered result.
func (l *LazyGraphRAG) Retrieve(ctx context.Context, query string, config *model.QueryConfig) (*model.RetrievalResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if config == nil {
		config = model.DefaultQueryConfig()
	}
	topK := config.TopK
	if topK < 1 {
		topK = 5
	}

	queryHash := model.QueryHash(query)
	if entry, ok := l.Cache.Get(queryHash); ok && len(entry.PromptBlocks) > 0 {
		l.log.Info("cache hit", "query_hash", queryHash)
		return cachedResponse(queryHash, entry), nil
	}

	matches := l.Engine.Search(query, topK*2)
	if len(matches) == 0 {
		l.log.Info("no concepts matched query", "query_hash", queryHash)
		return &model.RetrievalResponse{Chunks: []model.Chunk{}, ConceptIDs: []string{}}, nil
	}

	startIDs := make([]string, len(matches))
	for i, match := range matches {
		startIDs[i] = match.Concept.ID
	}

	conceptIDs := startIDs
	if config.UseGraph {
		conceptIDs = sortedKeys(l.Graph.Traverse(startIDs, 2, topK*3, nil, 0))
	}

	chunks := l.Engine.BuildChunks(conceptIDs, topK)
	sufficiency := l.scorer.Score(query, chunks, nil)

	if config.ExpandIfInsufficient && !sufficiency.IsSufficient(l.threshold) {
		l.log.Info("expanding traversal", "query_hash", queryHash, "score", sufficiency.OverallScore)
		conceptIDs = sortedKeys(l.Graph.Traverse(startIDs, 3, topK*5, nil, 0))
		chunks = l.Engine.BuildChunks(conceptIDs, topK*2)
		sufficiency = l.scorer.Score(query, chunks, nil)
	}

	blocks := make([]string, len(chunks))
	finalIDs := make([]string, len(chunks))
	for i, chunk := range chunks {
		blocks[i] = chunk.Content
		finalIDs[i] = chunk.ID
	}
	l.Cache.Put(model.NewCachedSubgraph(query, finalIDs, nil, blocks))

	return &model.RetrievalResponse{
		Chunks:      chunks,
		FromCache:   false,
		Sufficiency: sufficiency,
		ConceptIDs:  finalIDs,
	}, nil
}

// ShouldUseGraph reports whether a query looks like it benefits from graph
// traversal: it mentions comparison or causal language, or is long enough to
// span multiple concepts.
func (l *LazyGraphRAG) ShouldUseGraph(query string) bool {
	words := strings.Fields(model.NormalizeText(query))
	if len(words) > 10 {
		return true
	}
	for _, word := range words {
		if graphQueryWords[strings.Trim(word, ".,;:!?")] {
			return true
		}
	}
	return false
}

// InvalidateQuery drops any cached result for the query.
func (l *LazyGraphRAG) InvalidateQuery(query string) bool {
	return l.Cache.Invalidate(model.QueryHash(query))
}

// Clear removes all indexed state, both in memory and on disk.
func (l *LazyGraphRAG) Clear() error {
	if err := l.Graph.Clear(); err != nil {
		return err
	}
	l.Cache.Clear()

	l.mu.Lock()
	l.docsIndexed = 0
	l.lastIndexTime = time.Time{}
	l.mu.Unlock()
	return nil
}

// Stats combines graph and cache statistics with indexing history.
func (l *LazyGraphRAG) Stats() model.EngineStats {
	l.mu.Lock()
	docsIndexed := l.docsIndexed
	lastIndexTime := l.lastIndexTime
	l.mu.Unlock()

	return model.EngineStats{
		Graph:            l.Graph.Stats(),
		Cache:            l.Cache.Stats(),
		DocumentsIndexed: docsIndexed,
		LastIndexTime:    lastIndexTime,
	}
}

// Close persists the graph a final time.
func (l *LazyGraphRAG) Close() error {
	return l.Graph.Save()
}

func cachedResponse(queryHash string, entry *model.CachedSubgraph) *model.RetrievalResponse {
	chunks := make([]model.Chunk, len(entry.PromptBlocks))
	for i, block := range entry.PromptBlocks {
		chunks[i] = model.Chunk{
			ID:      fmt.Sprintf("%s_%d", queryHash, i),
			Content: block,
			Score:   cachedChunkScore,
		}
	}
	return &model.RetrievalResponse{
		Chunks:      chunks,
		FromCache:   true,
		Sufficiency: model.Sufficiency{OverallScore: cachedChunkScore},
		ConceptIDs:  entry.NodeIDs.Values(),
	}
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
