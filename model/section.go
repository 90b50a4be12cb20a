package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DocumentSection is a heading-delimited span of a document. Sections are
// transient: produced during indexing, consumed by concept and edge
// extraction, never persisted.
type DocumentSection struct {
	ID         string `json:"id"`
	DocumentID string `json:"document_id"`
	Heading    string `json:"heading"`
	Content    string `json:"content"`
	Level      int    `json:"level"` // 0 = no heading, 1-6 = markdown heading depth
	StartPos   int    `json:"start_pos"`
	EndPos     int    `json:"end_pos"`
}

// SectionID derives a section ID from the document, position and a content
// prefix, so re-indexing the same document yields stable section identities
func SectionID(documentID string, startPos int, content string) string {
	prefix := content
	if len(prefix) > 100 {
		prefix = prefix[:100]
	}
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%d:%s", documentID, startPos, prefix)))
	return hex.EncodeToString(sum[:])[:12]
}

// NewDocumentSection creates a section with a derived ID
func NewDocumentSection(documentID, heading, content string, level, startPos, endPos int) *DocumentSection {
	return &DocumentSection{
		ID:         SectionID(documentID, startPos, content),
		DocumentID: documentID,
		Heading:    heading,
		Content:    content,
		Level:      level,
		StartPos:   startPos,
		EndPos:     endPos,
	}
}
