package retrieval

import (
	"log/slog"
	"math"
	"regexp"
	"strings"

	"github.com/blisspixel/lazyrag/model"
)

// Citation-like patterns used to estimate citation density when no explicit
// citation list is supplied.
var citationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\[(\d+)\]`),                                    // [1], [2]
	regexp.MustCompile(`\[([A-Z][a-z]+(?:\s+et\s+al\.)?),?\s+\d{4}\]`), // [Smith, 2020]
	regexp.MustCompile(`https?://\S+`),                                 // URLs
	regexp.MustCompile(`(?i)\bsource:\s*\S+`),                          // Source: ...
}

// Words that signal a negated or conflicting statement.
var negationWords = map[string]bool{
	"not":      true,
	"no":       true,
	"never":    true,
	"neither":  true,
	"nor":      true,
	"cannot":   true,
	"without":  true,
	"however":  true,
	"but":      true,
	"although": true,
	"contrary": true,
	"despite":  true,
}

// SufficiencyScorer estimates whether a chunk set adequately answers a query,
// using lexical heuristics only.
type SufficiencyScorer struct {
	stopwords model.Stopwords
	log       *slog.Logger
}

// NewSufficiencyScorer creates a scorer with the given stopword table. A nil
// table falls back to the default English stopwords.
func NewSufficiencyScorer(stopwords model.Stopwords, logger *slog.Logger) *SufficiencyScorer {
	if stopwords == nil {
		stopwords = model.DefaultStopwords()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SufficiencyScorer{
		stopwords: stopwords,
		log:       logger,
	}
}

// Score blends keyword coverage, chunk redundancy, citation density and a
// contradiction heuristic into a single sufficiency value in [0, 1]. An
// explicit citations list overrides the pattern based density estimate.
func (s *SufficiencyScorer) Score(query string, chunks []model.Chunk, citations []string) model.Sufficiency {
	coverage := s.coverage(query, chunks)
	redundancy := s.redundancy(chunks)
	citationDensity := s.citationDensity(chunks, citations)
	contradiction := s.contradictionRate(chunks)

	overall := 0.5*coverage +
		0.2*(1-redundancy) +
		0.2*math.Min(1, citationDensity/3) +
		0.1*(1-contradiction)
	overall = math.Max(0, math.Min(1, overall))

	result := model.Sufficiency{
		Coverage:          coverage,
		Redundancy:        redundancy,
		CitationDensity:   citationDensity,
		ContradictionRate: contradiction,
		OverallScore:      overall,
	}
	s.log.Debug("scored chunk set",
		"coverage", coverage,
		"redundancy", redundancy,
		"citation_density", citationDensity,
		"contradiction_rate", contradiction,
		"overall", overall,
	)
	return result
}

// Blend recombines precomputed component scores using the standard weights.
func (s *SufficiencyScorer) Blend(coverage, redundancy, citationDensity, contradictionRate float64) model.Sufficiency {
	overall := 0.5*coverage +
		0.2*(1-redundancy) +
		0.2*math.Min(1, citationDensity/3) +
		0.1*(1-contradictionRate)
	return model.Sufficiency{
		Coverage:          coverage,
		Redundancy:        redundancy,
		CitationDensity:   citationDensity,
		ContradictionRate: contradictionRate,
		OverallScore:      math.Max(0, math.Min(1, overall)),
	}
}

// coverage is the fraction of query keywords found in the combined chunk
// content. Queries with no extractable keywords count as fully covered.
func (s *SufficiencyScorer) coverage(query string, chunks []model.Chunk) float64 {
	var keywords []string
	for _, word := range strings.Fields(model.NormalizeText(query)) {
		if len(word) > 2 && !s.stopwords.Contains(word) {
			keywords = append(keywords, word)
		}
	}
	if len(keywords) == 0 {
		return 1.0
	}

	var builder strings.Builder
	for _, chunk := range chunks {
		builder.WriteString(model.NormalizeText(chunk.Content))
		builder.WriteString(" ")
	}
	combined := builder.String()

	covered := 0
	for _, keyword := range keywords {
		if strings.Contains(combined, keyword) {
			covered++
		}
	}
	return float64(covered) / float64(len(keywords))
}

// redundancy is the mean pairwise word overlap between chunk contents.
func (s *SufficiencyScorer) redundancy(chunks []model.Chunk) float64 {
	if len(chunks) < 2 {
		return 0
	}
	wordSets := make([]map[string]bool, len(chunks))
	for i, chunk := range chunks {
		wordSets[i] = wordSet(chunk.Content)
	}

	total := 0.0
	pairs := 0
	for i := 0; i < len(wordSets); i++ {
		for j := i + 1; j < len(wordSets); j++ {
			total += jaccard(wordSets[i], wordSets[j])
			pairs++
		}
	}
	return total / float64(pairs)
}

func (s *SufficiencyScorer) citationDensity(chunks []model.Chunk, citations []string) float64 {
	if len(chunks) == 0 {
		return 0
	}
	if citations != nil {
		return float64(len(citations)) / float64(len(chunks))
	}

	matches := 0
	for _, chunk := range chunks {
		for _, pattern := range citationPatterns {
			matches += len(pattern.FindAllString(chunk.Content, -1))
		}
	}
	return float64(matches) / float64(len(chunks))
}

func (s *SufficiencyScorer) contradictionRate(chunks []model.Chunk) float64 {
	totalWords := 0
	negations := 0
	for _, chunk := range chunks {
		for _, word := range strings.Fields(model.NormalizeText(chunk.Content)) {
			totalWords++
			if negationWords[strings.Trim(word, ".,;:!?")] {
				negations++
			}
		}
	}
	if totalWords == 0 {
		return 0
	}
	return math.Min(1, 20*float64(negations)/float64(totalWords))
}

func wordSet(text string) map[string]bool {
	words := map[string]bool{}
	for _, word := range strings.Fields(model.NormalizeText(text)) {
		words[strings.Trim(word, ".,;:!?")] = true
	}
	return words
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for word := range a {
		if b[word] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
