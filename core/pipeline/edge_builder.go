package pipeline

import (
	"log/slog"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/blisspixel/lazyrag/model"
)

// Co-location scope weights. A shared named section is the strongest signal,
// a shared paragraph weaker, bare co-presence in an unnamed chunk weakest.
const (
	scopeWeightSection   = 1.0
	scopeWeightParagraph = 0.7
	scopeWeightChunk     = 0.4
)

var paragraphSplitRegex = regexp.MustCompile(`\n\s*\n`)

// BuilderConfig configures edge construction
type BuilderConfig struct {
	MinPMI float64 `json:"min_pmi"` // Weight floor below which edges are discarded
}

// DefaultBuilderConfig returns the default edge builder configuration
func DefaultBuilderConfig() BuilderConfig {
	return BuilderConfig{MinPMI: 0.1}
}

// EdgeBuilder turns co-located concepts into typed, weighted edges
type EdgeBuilder struct {
	config BuilderConfig
	log    *slog.Logger
}

// NewEdgeBuilder creates an edge builder
func NewEdgeBuilder(config BuilderConfig, logger *slog.Logger) *EdgeBuilder {
	if logger == nil {
		logger = slog.Default()
	}
	return &EdgeBuilder{
		config: config,
		log:    logger,
	}
}

// BuildEdges derives edges from concepts co-located in the given sections.
// Edge weight is scope_weight * ln(1 + min(freq1, freq2)); edges below the
// configured floor are dropped. Duplicate composite IDs within one call merge
// by max weight and document-set union.
func (b *EdgeBuilder) BuildEdges(concepts []*model.Concept, sections []*model.DocumentSection, documentID string) []*model.Edge {
	merged := make(map[string]*model.Edge)
	add := func(e *model.Edge) {
		if existing, ok := merged[e.ID()]; ok {
			model.MergeEdges(existing, e)
		} else {
			merged[e.ID()] = e
		}
	}

	bySection := make(map[string][]*model.Concept)
	for _, c := range concepts {
		for sectionID := range c.SectionIDs {
			bySection[sectionID] = append(bySection[sectionID], c)
		}
	}

	for _, section := range sections {
		colocated := bySection[section.ID]
		if len(colocated) < 2 {
			continue
		}
		sort.Slice(colocated, func(i, j int) bool {
			return colocated[i].Text < colocated[j].Text
		})

		var paragraphs []string
		if section.Heading == "" {
			for _, p := range paragraphSplitRegex.Split(section.Content, -1) {
				if p = model.NormalizeText(p); p != "" {
					paragraphs = append(paragraphs, p)
				}
			}
		}

		for i := 0; i < len(colocated); i++ {
			for j := i + 1; j < len(colocated); j++ {
				c1, c2 := colocated[i], colocated[j]

				edgeType, scope := b.scope(section, paragraphs, c1, c2)
				minFreq := c1.Frequency
				if c2.Frequency < minFreq {
					minFreq = c2.Frequency
				}
				weight := scope * math.Log(1+float64(minFreq))
				if weight < b.config.MinPMI {
					continue
				}
				add(model.NewEdge(c1.ID, c2.ID, edgeType, weight, documentID))
			}
		}

		b.addDefinitionEdges(section, colocated, concepts, documentID, add)
	}

	edges := make([]*model.Edge, 0, len(merged))
	for _, e := range merged {
		edges = append(edges, e)
	}
	sort.Slice(edges, func(i, j int) bool {
		return edges[i].ID() < edges[j].ID()
	})

	return edges
}

// scope determines the co-location strength of a concept pair within a section
func (b *EdgeBuilder) scope(section *model.DocumentSection, paragraphs []string, c1, c2 *model.Concept) (model.EdgeType, float64) {
	if section.Heading != "" {
		return model.EdgeTypeSameSection, scopeWeightSection
	}
	for _, p := range paragraphs {
		if strings.Contains(p, c1.Text) && strings.Contains(p, c2.Text) {
			return model.EdgeTypeSameParagraph, scopeWeightParagraph
		}
	}
	return model.EdgeTypeSameChunk, scopeWeightChunk
}

// addDefinitionEdges links every concept in a headed section to the heading's
// own concept when the heading resolves to one, weighted 1/heading_level
func (b *EdgeBuilder) addDefinitionEdges(section *model.DocumentSection, colocated, all []*model.Concept, documentID string, add func(*model.Edge)) {
	if section.Heading == "" {
		return
	}

	headingConcept := resolveConcept(all, section.Heading)
	if headingConcept == nil {
		return
	}

	weight := 1.0
	if section.Level > 0 {
		weight = 1.0 / float64(section.Level)
	}

	for _, c := range colocated {
		if c.ID == headingConcept.ID {
			continue
		}
		add(model.NewEdge(c.ID, headingConcept.ID, model.EdgeTypeDefinedIn, weight, documentID))
	}
}

// resolveConcept finds a concept whose normalized text or recorded original
// form exactly matches the given text
func resolveConcept(concepts []*model.Concept, text string) *model.Concept {
	normalized := model.NormalizeText(text)
	for _, c := range concepts {
		if c.Text == normalized || c.OriginalForms.Contains(text) {
			return c
		}
	}
	return nil
}

// CalculatePMI computes pointwise mutual information ln(P(x,y) / (P(x)P(y)))
// over corpus-wide counts. Returns 0 when any input is 0. Exposed for
// corpus-level weighting; the default single-document edge path does not use it.
func CalculatePMI(c1Count, c2Count, cooccurCount, totalDocs int) float64 {
	if c1Count == 0 || c2Count == 0 || cooccurCount == 0 || totalDocs == 0 {
		return 0
	}
	p1 := float64(c1Count) / float64(totalDocs)
	p2 := float64(c2Count) / float64(totalDocs)
	pxy := float64(cooccurCount) / float64(totalDocs)
	return math.Log(pxy / (p1 * p2))
}
