package pipeline

import (
	"sort"

	"github.com/blisspixel/lazyrag/model"
)

// Pipeline combines concept extraction and edge building for a single
// document pass
type Pipeline struct {
	Extractor *ConceptExtractor
	Builder   *EdgeBuilder
}

// NewPipeline creates a new processing pipeline
func NewPipeline(extractor *ConceptExtractor, builder *EdgeBuilder) *Pipeline {
	return &Pipeline{
		Extractor: extractor,
		Builder:   builder,
	}
}

// Result contains the sections, merged concepts and edges of one document
type Result struct {
	Sections []*model.DocumentSection
	Concepts []*model.Concept
	Edges    []*model.Edge
}

// ProcessDocument splits a document into sections, extracts concepts per
// section, merges them document-wide and derives edges. Concept merging
// always completes before edge building.
func (p *Pipeline) ProcessDocument(content, documentID string) *Result {
	sections := p.Extractor.ExtractSections(content, documentID)

	merged := make(map[string]*model.Concept)
	for _, section := range sections {
		for _, c := range p.Extractor.ExtractConcepts(section.Content, documentID, section.ID) {
			if existing, ok := merged[c.ID]; ok {
				model.MergeConcepts(existing, c)
			} else {
				merged[c.ID] = c
			}
		}
	}

	concepts := make([]*model.Concept, 0, len(merged))
	for _, c := range merged {
		concepts = append(concepts, c)
	}
	sort.Slice(concepts, func(i, j int) bool {
		return concepts[i].Text < concepts[j].Text
	})

	edges := p.Builder.BuildEdges(concepts, sections, documentID)

	return &Result{
		Sections: sections,
		Concepts: concepts,
		Edges:    edges,
	}
}
