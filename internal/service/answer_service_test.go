package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/buseagkoc/construction-chatbot/internal/model"
	appErr "github.com/buseagkoc/construction-chatbot/internal/pkg/errors"
)

func newTestAnswerService(store *fakeVectorStore, cache *fakeCache, gen *fakeGenerator) *AnswerService {
	return NewAnswerService(store, cache, gen, 5, 300*time.Second, 0)
}

func retrievedSections() []model.RetrievedSection {
	return []model.RetrievedSection{
		{Content: "Scope text.\n", DocID: "doc_a", Title: "1.1 GENERAL", Page: 1, Score: 0.91},
		{Content: "Def text.\n", DocID: "doc_a", Title: "1.2 DEFINITIONS", Page: 2, Score: 0.84},
		{Content: "Submittal text.\n", DocID: "doc_b", Title: "1.3 SUBMITTALS", Page: 7, Score: 0.70},
	}
}

func TestAnswerServiceCacheHitBypassesPipeline(t *testing.T) {
	store := &fakeVectorStore{}
	cache := newFakeCache()
	gen := &fakeGenerator{reply: "should not be called"}
	cached := &model.Answer{Answer: "cached answer", Sources: []model.AnswerSource{}}
	cache.entries["what is the scope?"] = cached

	svc := newTestAnswerService(store, cache, gen)
	got, err := svc.Answer(context.Background(), "what is the scope?", "")
	require.NoError(t, err)
	require.Equal(t, cached, got)
	require.Empty(t, store.queries)
	require.Empty(t, gen.prompts)
}

func TestAnswerServiceGeneratesAndCaches(t *testing.T) {
	store := &fakeVectorStore{queryResult: retrievedSections()}
	cache := newFakeCache()
	gen := &fakeGenerator{reply: "The scope covers sitework."}

	svc := newTestAnswerService(store, cache, gen)
	got, err := svc.Answer(context.Background(), "what is the scope?", "")
	require.NoError(t, err)
	require.Equal(t, "The scope covers sitework.", got.Answer)

	// Sources preserve the store's relevance ranking.
	require.Equal(t, []model.AnswerSource{
		{Title: "1.1 GENERAL", Page: 1, DocID: "doc_a"},
		{Title: "1.2 DEFINITIONS", Page: 2, DocID: "doc_a"},
		{Title: "1.3 SUBMITTALS", Page: 7, DocID: "doc_b"},
	}, got.Sources)

	require.Equal(t, 1, cache.sets)
	require.Equal(t, got, cache.entries["what is the scope?"])

	require.Len(t, gen.prompts, 1)
	require.Contains(t, gen.prompts[0], "Relevant sections:")
	require.Contains(t, gen.prompts[0], "Section: 1.1 GENERAL (Page 1)")
	require.Contains(t, gen.prompts[0], "Content: Scope text.")
	require.Contains(t, gen.prompts[0], "Question: what is the scope?")
	require.Equal(t, "You are a construction document assistant.", gen.systems[0])
}

func TestAnswerServiceIncludesConversationContext(t *testing.T) {
	store := &fakeVectorStore{queryResult: retrievedSections()}
	cache := newFakeCache()
	gen := &fakeGenerator{reply: "answer"}

	svc := newTestAnswerService(store, cache, gen)
	_, err := svc.Answer(context.Background(), "and the definitions?", "Recent conversation:\nQ: scope?\nA: sitework\n")
	require.NoError(t, err)
	require.Contains(t, gen.prompts[0], "Recent conversation:")
	// Context comes before the retrieved sections.
	require.Less(t,
		strings.Index(gen.prompts[0], "Recent conversation:"),
		strings.Index(gen.prompts[0], "Relevant sections:"))
}

func TestAnswerServiceEmptyRetrievalNotCached(t *testing.T) {
	store := &fakeVectorStore{}
	cache := newFakeCache()
	gen := &fakeGenerator{reply: "should not be called"}

	svc := newTestAnswerService(store, cache, gen)
	got, err := svc.Answer(context.Background(), "anything about asphalt?", "")
	require.NoError(t, err)
	require.Equal(t, noResultsAnswer, got.Answer)
	require.Empty(t, got.Sources)
	require.NotNil(t, got.Sources)

	// Not cached, so a better-indexed retry can succeed later.
	require.Equal(t, 0, cache.sets)
	require.Empty(t, gen.prompts)
}

func TestAnswerServiceCacheLookupFailureIsMiss(t *testing.T) {
	store := &fakeVectorStore{queryResult: retrievedSections()}
	cache := newFakeCache()
	cache.getErr = errors.New("redis down")
	gen := &fakeGenerator{reply: "generated anyway"}

	svc := newTestAnswerService(store, cache, gen)
	got, err := svc.Answer(context.Background(), "what is the scope?", "")
	require.NoError(t, err)
	require.Equal(t, "generated anyway", got.Answer)
}

func TestAnswerServiceErrorsPropagate(t *testing.T) {
	t.Run("retrieval failure", func(t *testing.T) {
		store := &fakeVectorStore{queryErr: appErr.Store(errors.New("pg down"))}
		svc := newTestAnswerService(store, newFakeCache(), &fakeGenerator{})
		_, err := svc.Answer(context.Background(), "q", "")
		require.ErrorIs(t, err, appErr.ErrStore)
	})

	t.Run("generation failure", func(t *testing.T) {
		store := &fakeVectorStore{queryResult: retrievedSections()}
		svc := newTestAnswerService(store, newFakeCache(), &fakeGenerator{err: errors.New("model overloaded")})
		_, err := svc.Answer(context.Background(), "q", "")
		require.ErrorIs(t, err, appErr.ErrGeneration)
	})

	t.Run("cache write failure", func(t *testing.T) {
		store := &fakeVectorStore{queryResult: retrievedSections()}
		cache := newFakeCache()
		cache.setErr = appErr.Cache(errors.New("redis down"))
		svc := newTestAnswerService(store, cache, &fakeGenerator{reply: "answer"})
		_, err := svc.Answer(context.Background(), "q", "")
		require.ErrorIs(t, err, appErr.ErrCache)
	})
}
