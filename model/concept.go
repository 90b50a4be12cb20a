package model

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// ConceptType classifies how a concept was discovered in the source text
type ConceptType string

const (
	ConceptTypeNounPhrase ConceptType = "noun_phrase"
	ConceptTypeHeading    ConceptType = "heading"
	ConceptTypeKeyPhrase  ConceptType = "key_phrase"
	ConceptTypeEntity     ConceptType = "entity"
)

// Concept is a normalized unit of meaning extracted from text (node in the graph).
// Identity is a pure function of the normalized text: two concepts created
// independently from the same lowercased text share an ID and merge on insert.
type Concept struct {
	ID              string      `json:"id"`
	Text            string      `json:"text"`
	ConceptType     ConceptType `json:"concept_type"`
	OriginalForms   StringSet   `json:"original_forms"`
	DocumentIDs     StringSet   `json:"document_ids"`
	SectionIDs      StringSet   `json:"section_ids"`
	Frequency       int         `json:"frequency"`
	ImportanceScore float64     `json:"importance_score"`
	CreatedAt       time.Time   `json:"created_at"`
}

// NormalizeText lowercases text and collapses all runs of whitespace
func NormalizeText(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// ConceptID derives the stable concept ID from text: the first 12 hex
// characters of the SHA-256 of the normalized form
func ConceptID(text string) string {
	sum := sha256.Sum256([]byte(NormalizeText(text)))
	return hex.EncodeToString(sum[:])[:12]
}

// NewConcept creates a concept with frequency 1 from a surface form
func NewConcept(text string, conceptType ConceptType, documentID string, sectionID string) *Concept {
	normalized := NormalizeText(text)
	c := &Concept{
		ID:            ConceptID(normalized),
		Text:          normalized,
		ConceptType:   conceptType,
		OriginalForms: NewStringSet(text),
		DocumentIDs:   NewStringSet(),
		SectionIDs:    NewStringSet(),
		Frequency:     1,
		CreatedAt:     time.Now(),
	}
	if documentID != "" {
		c.DocumentIDs.Add(documentID)
	}
	if sectionID != "" {
		c.SectionIDs.Add(sectionID)
	}
	return c
}

// MergeConcepts folds incoming into existing: frequencies sum, all sets union,
// importance keeps the maximum, and the type upgrades to heading if either
// side was discovered as one. Returns existing for chaining.
func MergeConcepts(existing, incoming *Concept) *Concept {
	existing.Frequency += incoming.Frequency
	existing.OriginalForms.Union(incoming.OriginalForms)
	existing.DocumentIDs.Union(incoming.DocumentIDs)
	existing.SectionIDs.Union(incoming.SectionIDs)
	if incoming.ImportanceScore > existing.ImportanceScore {
		existing.ImportanceScore = incoming.ImportanceScore
	}
	if incoming.ConceptType == ConceptTypeHeading {
		existing.ConceptType = ConceptTypeHeading
	}
	return existing
}
