package model

// Stopwords is an immutable set of words excluded from phrase and keyword
// extraction. Built once and injected into the components that tokenize, so
// tests can substitute custom vocabularies.
type Stopwords map[string]bool

// Contains reports whether word (already lowercased) is a stopword
func (s Stopwords) Contains(word string) bool {
	return s[word]
}

// DefaultStopwords returns the standard English stopword table
func DefaultStopwords() Stopwords {
	words := []string{
		"a", "an", "and", "are", "as", "at", "be", "been", "but", "by",
		"can", "could", "did", "do", "does", "for", "from", "had", "has",
		"have", "he", "her", "his", "how", "i", "if", "in", "into", "is",
		"it", "its", "just", "may", "me", "might", "more", "most", "must",
		"my", "no", "nor", "not", "of", "on", "or", "our", "over", "she",
		"should", "so", "some", "such", "than", "that", "the", "their",
		"them", "then", "there", "these", "they", "this", "those", "to",
		"too", "under", "up", "us", "very", "was", "we", "were", "what",
		"when", "where", "which", "while", "who", "why", "will", "with",
		"would", "you", "your",
	}
	s := make(Stopwords, len(words))
	for _, w := range words {
		s[w] = true
	}
	return s
}
