package pipeline

import (
	"log/slog"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/blisspixel/lazyrag/model"
)

// maxKeyPhrases bounds how many tokens the key-phrase pass emits per call
const maxKeyPhrases = 50

var (
	wordRegex        = regexp.MustCompile(`[a-zA-Z0-9_]+`)
	headingLineRegex = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)
)

// ExtractorConfig configures phrase extraction
type ExtractorConfig struct {
	MinPhraseLength int `json:"min_phrase_length"` // Shortest n-gram in tokens
	MaxPhraseLength int `json:"max_phrase_length"` // Longest n-gram in tokens
	MinFrequency    int `json:"min_frequency"`     // Concepts below this are dropped
}

// DefaultExtractorConfig returns the default extraction configuration
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		MinPhraseLength: 1,
		MaxPhraseLength: 3,
		MinFrequency:    1,
	}
}

// ConceptExtractor turns raw text into document sections and concepts
// (noun phrases, headings and key phrases)
type ConceptExtractor struct {
	config    ExtractorConfig
	stopwords model.Stopwords
	log       *slog.Logger
}

// NewConceptExtractor creates an extractor with the given configuration and
// stopword vocabulary
func NewConceptExtractor(config ExtractorConfig, stopwords model.Stopwords, logger *slog.Logger) *ConceptExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	if stopwords == nil {
		stopwords = model.DefaultStopwords()
	}
	return &ConceptExtractor{
		config:    config,
		stopwords: stopwords,
		log:       logger,
	}
}

// ExtractSections splits a document on markdown headings. A document without
// headings becomes one level-0 section; content preceding the first heading
// becomes a level-0 section when non-empty. Section content starts at the
// heading line and runs to the next heading or the document end.
func (e *ConceptExtractor) ExtractSections(text, documentID string) []*model.DocumentSection {
	type headingMark struct {
		offset  int
		level   int
		heading string
	}

	var headings []headingMark
	offset := 0
	for _, line := range strings.Split(text, "\n") {
		if m := headingLineRegex.FindStringSubmatch(line); m != nil {
			headings = append(headings, headingMark{
				offset:  offset,
				level:   len(m[1]),
				heading: strings.TrimSpace(m[2]),
			})
		}
		offset += len(line) + 1
	}

	if len(headings) == 0 {
		if strings.TrimSpace(text) == "" {
			return nil
		}
		return []*model.DocumentSection{
			model.NewDocumentSection(documentID, "", text, 0, 0, len(text)),
		}
	}

	var sections []*model.DocumentSection

	// Preamble before the first heading
	if headings[0].offset > 0 {
		preamble := text[:headings[0].offset]
		if strings.TrimSpace(preamble) != "" {
			sections = append(sections, model.NewDocumentSection(documentID, "", preamble, 0, 0, headings[0].offset))
		}
	}

	for i, h := range headings {
		end := len(text)
		if i+1 < len(headings) {
			end = headings[i+1].offset
		}
		content := text[h.offset:end]
		sections = append(sections, model.NewDocumentSection(documentID, h.heading, content, h.level, h.offset, end))
	}

	return sections
}

// ExtractConcepts extracts noun phrases, headings and key phrases from text
// and merges them by normalized form. The merged list is filtered to the
// configured minimum frequency and sorted by text for determinism.
func (e *ConceptExtractor) ExtractConcepts(text, documentID, sectionID string) []*model.Concept {
	merged := make(map[string]*model.Concept)
	add := func(c *model.Concept) {
		if existing, ok := merged[c.ID]; ok {
			model.MergeConcepts(existing, c)
		} else {
			merged[c.ID] = c
		}
	}

	tokens := wordRegex.FindAllString(text, -1)

	e.extractNounPhrases(tokens, documentID, sectionID, add)
	e.extractHeadings(text, documentID, sectionID, add)
	e.extractKeyPhrases(tokens, documentID, sectionID, add)

	concepts := make([]*model.Concept, 0, len(merged))
	for _, c := range merged {
		if c.Frequency >= e.config.MinFrequency {
			concepts = append(concepts, c)
		}
	}
	sort.Slice(concepts, func(i, j int) bool {
		return concepts[i].Text < concepts[j].Text
	})

	return concepts
}

// extractNounPhrases emits every surviving n-gram between the configured
// phrase lengths. Phrases starting or ending on a stopword, consisting only
// of stopwords, or shorter than 3 characters after normalization are dropped.
func (e *ConceptExtractor) extractNounPhrases(tokens []string, documentID, sectionID string, add func(*model.Concept)) {
	for n := e.config.MinPhraseLength; n <= e.config.MaxPhraseLength; n++ {
		if n <= 0 {
			continue
		}
		for i := 0; i+n <= len(tokens); i++ {
			gram := tokens[i : i+n]
			if e.stopwords.Contains(strings.ToLower(gram[0])) || e.stopwords.Contains(strings.ToLower(gram[n-1])) {
				continue
			}
			allStop := true
			for _, tok := range gram {
				if !e.stopwords.Contains(strings.ToLower(tok)) {
					allStop = false
					break
				}
			}
			if allStop {
				continue
			}
			surface := strings.Join(gram, " ")
			if len(model.NormalizeText(surface)) < 3 {
				continue
			}
			add(model.NewConcept(surface, model.ConceptTypeNounPhrase, documentID, sectionID))
		}
	}
}

// extractHeadings upgrades every markdown heading into a heading concept with
// importance 1/level, so shallower headings score higher
func (e *ConceptExtractor) extractHeadings(text, documentID, sectionID string, add func(*model.Concept)) {
	for _, line := range strings.Split(text, "\n") {
		m := headingLineRegex.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		heading := strings.TrimSpace(m[2])
		if heading == "" {
			continue
		}
		c := model.NewConcept(heading, model.ConceptTypeHeading, documentID, sectionID)
		c.ImportanceScore = 1.0 / float64(len(m[1]))
		add(c)
	}
}

// extractKeyPhrases scores single tokens by a TF-IDF-like heuristic. The IDF
// term is the single-document approximation ln(1 + 1/(count+1)); no
// corpus-wide document frequency is tracked.
func (e *ConceptExtractor) extractKeyPhrases(tokens []string, documentID, sectionID string, add func(*model.Concept)) {
	total := len(tokens)
	if total == 0 {
		return
	}

	counts := make(map[string]int)
	for _, tok := range tokens {
		lower := strings.ToLower(tok)
		if e.stopwords.Contains(lower) || len(lower) <= 2 {
			continue
		}
		counts[lower]++
	}

	type tokenCount struct {
		token string
		count int
	}
	ranked := make([]tokenCount, 0, len(counts))
	for tok, count := range counts {
		ranked = append(ranked, tokenCount{tok, count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].token < ranked[j].token
	})
	if len(ranked) > maxKeyPhrases {
		ranked = ranked[:maxKeyPhrases]
	}

	for _, tc := range ranked {
		tf := float64(tc.count) / float64(total)
		idf := math.Log(1 + 1/float64(tc.count+1))
		c := model.NewConcept(tc.token, model.ConceptTypeKeyPhrase, documentID, sectionID)
		c.Frequency = tc.count
		c.ImportanceScore = tf * idf
		add(c)
	}
}
