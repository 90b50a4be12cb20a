package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/blisspixel/lazyrag"
	"github.com/blisspixel/lazyrag/model"
)

const sampleContent1 = `# Graph Databases

Graph databases are designed to store and query data with complex relationships.
They use nodes to represent entities and edges to represent relationships between them.

## Hybrid Retrieval

Combining keyword matching and graph structure allows hybrid retrieval strategies
for more sophisticated information retrieval. Graph traversal finds concepts
related to the query terms through typed weighted edges.`

const sampleContent2 = `# Machine Learning Retrieval

Machine learning is transforming how we process and retrieve information.

## Embeddings

Vector embeddings capture semantic meaning of text, enabling similarity based search.
Neural networks can learn representations that understand context and relationships.

Modern retrieval systems combine traditional keyword indexing with machine learning
models to provide more intelligent and context aware search capabilities.`

func main() {
	storageDir, err := os.MkdirTemp("", "lazyrag-advanced")
	if err != nil {
		log.Fatalf("Failed to create storage directory: %v", err)
	}
	defer os.RemoveAll(storageDir)

	config := lazyrag.DefaultConfig(storageDir)
	config.CacheSize = 50
	config.SufficiencyThreshold = 0.7

	engine, err := lazyrag.New(config)
	if err != nil {
		log.Fatalf("Failed to create engine: %v", err)
	}
	defer engine.Close()

	ctx := context.Background()

	// Batch index multiple documents
	documents := []*model.Document{
		{
			ID:      "graph-databases",
			Title:   "Introduction to Graph Databases",
			Source:  "advanced_example",
			Content: sampleContent1,
			Metadata: model.Metadata{
				"topic": "graph databases",
			},
		},
		{
			ID:      "ml-retrieval",
			Title:   "Machine Learning for Information Retrieval",
			Source:  "advanced_example",
			Content: sampleContent2,
			Metadata: model.Metadata{
				"topic": "machine learning",
			},
		},
	}

	fmt.Println("Indexing documents...")
	batch, err := engine.IndexDocuments(ctx, documents)
	if err != nil {
		log.Fatalf("Failed to index documents: %v", err)
	}
	fmt.Printf("Indexed %d documents: %d sections, %d concepts, %d edges in %.3fs\n",
		batch.Documents, batch.Sections, batch.Concepts, batch.Edges, batch.ElapsedSeconds)

	// Let the heuristic decide whether a query needs graph traversal
	queries := []string{
		"vector embeddings",
		"compare graph databases and machine learning retrieval",
	}

	for _, queryText := range queries {
		useGraph := engine.ShouldUseGraph(queryText)
		fmt.Printf("\nQuerying: %s (graph traversal: %v)\n", queryText, useGraph)

		queryConfig := model.DefaultQueryConfig()
		queryConfig.UseGraph = useGraph

		response, err := engine.Retrieve(ctx, queryText, queryConfig)
		if err != nil {
			log.Fatalf("Failed to retrieve: %v", err)
		}
		fmt.Printf("Found %d chunks (sufficiency: %.2f)\n", len(response.Chunks), response.Sufficiency.OverallScore)
		for i, chunk := range response.Chunks {
			fmt.Printf("  %d. [%s] %.60s...\n", i+1, chunk.ConceptType, chunk.Content)
		}
	}

	// Repeating a query hits the subgraph cache
	repeat, err := engine.Retrieve(ctx, queries[0], nil)
	if err != nil {
		log.Fatalf("Failed to retrieve: %v", err)
	}
	fmt.Printf("\nRepeated query from cache: %v\n", repeat.FromCache)

	// Engine wide statistics
	stats := engine.Stats()
	fmt.Printf("\nGraph: %d concepts, %d edges, average degree %.2f\n",
		stats.Graph.ConceptCount, stats.Graph.EdgeCount, stats.Graph.AverageDegree)
	fmt.Printf("Cache: %d/%d entries, %d total accesses\n",
		stats.Cache.Size, stats.Cache.MaxSize, stats.Cache.TotalAccesses)

	fmt.Println("\nAdvanced example completed successfully!")
}
