package model

import "time"

// Section is a titled span of page text bounded by header lines. Title is
// empty for leading unheadered text.
type Section struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Page    int    `json:"page"`
}

// Document is one fully sectioned upload. Immutable after processing.
type Document struct {
	ID         string    `json:"doc_id"`
	Sections   []Section `json:"sections"`
	TotalPages int       `json:"total_pages"`
}

// SectionMatch is a hit from the in-memory substring search.
type SectionMatch struct {
	DocID   string `json:"doc_id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Page    int    `json:"page"`
}

// BatchEntry lives in the accumulator queue from enqueue until a successful
// flush. DocID already carries the uniqueness suffix.
type BatchEntry struct {
	DocID      string
	Sections   []Section
	EnqueuedAt time.Time
}

// IndexedRecord is one section as written to the vector store. The id is
// deterministic from doc id and section index, so a re-flush overwrites
// instead of duplicating.
type IndexedRecord struct {
	ID          string
	Content     string
	DocID       string
	Title       string
	Page        int
	ProcessedAt string
}

// RetrievedSection is a vector store query hit, in relevance order.
type RetrievedSection struct {
	Content string
	DocID   string
	Title   string
	Page    int
	Score   float64
}
