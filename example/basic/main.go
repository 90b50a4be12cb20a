package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/blisspixel/lazyrag"
	"github.com/blisspixel/lazyrag/model"
)

const sampleContent = `# Graph Databases

Graph databases are designed to store and query data with complex relationships.
They use nodes to represent entities and edges to represent relationships between them.

## Retrieval Strategies

Combining keyword matching with graph structure allows hybrid retrieval strategies
that keep context small while staying explainable. Graph traversal surfaces
related concepts that a pure keyword search would miss.`

func main() {
	storageDir, err := os.MkdirTemp("", "lazyrag-basic")
	if err != nil {
		log.Fatalf("Failed to create storage directory: %v", err)
	}
	defer os.RemoveAll(storageDir)

	engine, err := lazyrag.New(lazyrag.DefaultConfig(storageDir))
	if err != nil {
		log.Fatalf("Failed to create engine: %v", err)
	}
	defer engine.Close()

	ctx := context.Background()

	// Index a single document
	fmt.Println("Indexing document...")
	result, err := engine.IndexDocument(ctx, "graph-databases", sampleContent, model.Metadata{
		"author": "Example Author",
		"topic":  "graph databases",
	})
	if err != nil {
		log.Fatalf("Failed to index document: %v", err)
	}
	fmt.Printf("Indexed %s: %d sections, %d concepts, %d edges in %.3fs\n",
		result.DocumentID, result.Sections, result.Concepts, result.Edges, result.ElapsedSeconds)

	// Query the indexed corpus
	queryText := "how do graph databases represent relationships?"
	fmt.Printf("\nQuerying: %s\n", queryText)

	response, err := engine.Retrieve(ctx, queryText, nil)
	if err != nil {
		log.Fatalf("Failed to retrieve: %v", err)
	}

	fmt.Printf("\nFound %d chunks (from cache: %v, sufficiency: %.2f):\n",
		len(response.Chunks), response.FromCache, response.Sufficiency.OverallScore)
	for i, chunk := range response.Chunks {
		fmt.Printf("\n--- Chunk %d (score %.2f) ---\n%s\n", i+1, chunk.Score, chunk.Content)
	}

	fmt.Println("\nBasic example completed successfully!")
}
