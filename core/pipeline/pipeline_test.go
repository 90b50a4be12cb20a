package pipeline

import (
	"math"
	"testing"

	"github.com/blisspixel/lazyrag/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPipeline() *Pipeline {
	extractor := NewConceptExtractor(DefaultExtractorConfig(), model.DefaultStopwords(), nil)
	builder := NewEdgeBuilder(DefaultBuilderConfig(), nil)
	return NewPipeline(extractor, builder)
}

func TestProcessDocument(t *testing.T) {
	t.Run("Quantum document produces heading, phrase and section edge", func(t *testing.T) {
		p := newTestPipeline()
		text := "# Quantum\nQuantum computing uses qubits. Quantum computing is powerful."

		result := p.ProcessDocument(text, "doc1")

		require.Len(t, result.Sections, 1)

		quantum := findConcept(result.Concepts, "quantum")
		require.NotNil(t, quantum)
		assert.Equal(t, model.ConceptTypeHeading, quantum.ConceptType)

		qc := findConcept(result.Concepts, "quantum computing")
		require.NotNil(t, qc)
		assert.GreaterOrEqual(t, qc.Frequency, 2)

		// At least one same_section edge touching "quantum computing" with
		// weight 1.0 * ln(1 + min(freq1, freq2))
		qcID := qc.ID
		found := false
		for _, e := range result.Edges {
			if e.EdgeType != model.EdgeTypeSameSection {
				continue
			}
			var otherID string
			switch {
			case e.SourceID == qcID:
				otherID = e.TargetID
			case e.TargetID == qcID:
				otherID = e.SourceID
			default:
				continue
			}
			var other *model.Concept
			for _, c := range result.Concepts {
				if c.ID == otherID {
					other = c
					break
				}
			}
			require.NotNil(t, other)
			minFreq := qc.Frequency
			if other.Frequency < minFreq {
				minFreq = other.Frequency
			}
			assert.InDelta(t, math.Log(1+float64(minFreq)), e.Weight, 1e-9)
			found = true
		}
		assert.True(t, found, "Expected a same_section edge touching the bigram")
	})

	t.Run("Concepts merge across sections of one document", func(t *testing.T) {
		p := newTestPipeline()
		text := "# First\nalpha concept here\n\n# Second\nalpha concept again"

		result := p.ProcessDocument(text, "doc1")

		alpha := findConcept(result.Concepts, "alpha")
		require.NotNil(t, alpha)
		assert.Len(t, alpha.SectionIDs.Values(), 2, "Concept should carry both section IDs")
	})

	t.Run("Empty document produces empty result", func(t *testing.T) {
		p := newTestPipeline()

		result := p.ProcessDocument("", "doc1")

		assert.Empty(t, result.Sections)
		assert.Empty(t, result.Concepts)
		assert.Empty(t, result.Edges)
	})

	t.Run("Edges reference only extracted concepts", func(t *testing.T) {
		p := newTestPipeline()
		text := "# Topic\nsystems interact with other systems frequently"

		result := p.ProcessDocument(text, "doc1")

		ids := make(map[string]bool)
		for _, c := range result.Concepts {
			ids[c.ID] = true
		}
		for _, e := range result.Edges {
			assert.True(t, ids[e.SourceID], "Edge source should be an extracted concept")
			assert.True(t, ids[e.TargetID], "Edge target should be an extracted concept")
		}
	})
}
