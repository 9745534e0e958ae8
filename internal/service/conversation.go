package service

import (
	"strings"
	"sync"
	"time"

	"github.com/buseagkoc/construction-chatbot/internal/model"
)

const (
	// Retained exchanges. Only the last contextEntries are surfaced to the
	// prompt to bound its size.
	historyLimit   = 5
	contextEntries = 2

	contextPreamble = "Recent conversation:"
)

// ConversationWindow keeps the most recent chat exchanges for short-term
// prompt context.
type ConversationWindow struct {
	mu      sync.Mutex
	entries []model.ConversationEntry
	now     func() time.Time
}

func NewConversationWindow() *ConversationWindow {
	return &ConversationWindow{now: time.Now}
}

// Record appends a completed exchange and evicts the oldest past the cap.
func (w *ConversationWindow) Record(question, answer string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.entries = append(w.entries, model.ConversationEntry{
		Question:  question,
		Answer:    answer,
		Timestamp: w.now().Format(time.RFC3339),
	})
	if len(w.entries) > historyLimit {
		w.entries = w.entries[len(w.entries)-historyLimit:]
	}
}

// Entries returns a copy of the retained history.
func (w *ConversationWindow) Entries() []model.ConversationEntry {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]model.ConversationEntry, len(w.entries))
	copy(out, w.entries)
	return out
}

// RenderContext formats the last exchanges for the generation prompt. The
// second return is false when no history exists.
func (w *ConversationWindow) RenderContext() (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.entries) == 0 {
		return "", false
	}
	start := len(w.entries) - contextEntries
	if start < 0 {
		start = 0
	}
	parts := []string{contextPreamble}
	for _, entry := range w.entries[start:] {
		parts = append(parts, "Q: "+entry.Question)
		parts = append(parts, "A: "+entry.Answer+"\n")
	}
	return strings.Join(parts, "\n"), true
}
