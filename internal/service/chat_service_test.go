package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestChatService(store *fakeVectorStore, cache *fakeCache, gen *fakeGenerator) *ChatService {
	documents := NewDocumentService()
	batch := NewBatchService(store, 10, 60*time.Second)
	answers := NewAnswerService(store, cache, gen, 5, 300*time.Second, 0)
	return NewChatService(documents, batch, answers, NewConversationWindow(), cache)
}

func TestChatRecordsHistory(t *testing.T) {
	store := &fakeVectorStore{queryResult: retrievedSections()}
	gen := &fakeGenerator{reply: "first answer"}
	svc := newTestChatService(store, newFakeCache(), gen)

	_, err := svc.Chat(context.Background(), "first question")
	require.NoError(t, err)

	gen.reply = "second answer"
	_, err = svc.Chat(context.Background(), "second question")
	require.NoError(t, err)

	// The second turn carried the first exchange as context.
	require.Len(t, gen.prompts, 2)
	require.NotContains(t, gen.prompts[0], "Recent conversation:")
	require.Contains(t, gen.prompts[1], "Recent conversation:")
	require.Contains(t, gen.prompts[1], "Q: first question")
	require.Contains(t, gen.prompts[1], "A: first answer")
}

func TestChatFailureLeavesHistoryUntouched(t *testing.T) {
	store := &fakeVectorStore{queryResult: retrievedSections()}
	gen := &fakeGenerator{err: errors.New("model overloaded")}
	svc := newTestChatService(store, newFakeCache(), gen)

	_, err := svc.Chat(context.Background(), "doomed question")
	require.Error(t, err)
	require.Empty(t, svc.history.Entries())
}

func TestChatNoResultsStillRecorded(t *testing.T) {
	store := &fakeVectorStore{}
	svc := newTestChatService(store, newFakeCache(), &fakeGenerator{})

	answer, err := svc.Chat(context.Background(), "anything about asphalt?")
	require.NoError(t, err)
	require.Equal(t, noResultsAnswer, answer.Answer)

	entries := svc.history.Entries()
	require.Len(t, entries, 1)
	require.Equal(t, noResultsAnswer, entries[0].Answer)
}
