package model

// AnswerSource points back at the section an answer was grounded on.
type AnswerSource struct {
	Title string `json:"title"`
	Page  int    `json:"page"`
	DocID string `json:"doc_id"`
}

// Answer is a generated (or cached) reply. Sources keep the vector store's
// relevance ranking.
type Answer struct {
	Answer  string         `json:"answer"`
	Sources []AnswerSource `json:"sources"`
}

// ConversationEntry is one completed chat exchange.
type ConversationEntry struct {
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	Timestamp string `json:"timestamp"`
}
