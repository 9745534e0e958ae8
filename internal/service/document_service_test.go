package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/buseagkoc/construction-chatbot/internal/model"
	appErr "github.com/buseagkoc/construction-chatbot/internal/pkg/errors"
)

func TestDocumentServiceProcess(t *testing.T) {
	svc := NewDocumentService()
	src := &fakeSource{pages: []string{
		"1.1 GENERAL\nScope text.\n1.2 DEFINITIONS\nDef text.\n",
		"Continuation without headers.",
	}}

	doc, err := svc.Process(context.Background(), src, "doc_spec_20240101")
	require.NoError(t, err)
	require.Equal(t, 2, doc.TotalPages)
	require.Equal(t, []model.Section{
		{Title: "1.1 GENERAL", Content: "Scope text.\n", Page: 1},
		{Title: "1.2 DEFINITIONS", Content: "Def text.\n", Page: 1},
		{Title: "", Content: "Continuation without headers.\n", Page: 2},
	}, doc.Sections)

	stored, ok := svc.Get("doc_spec_20240101")
	require.True(t, ok)
	require.Equal(t, doc, stored)
}

func TestDocumentServiceProcessPageFailure(t *testing.T) {
	svc := NewDocumentService()
	src := &fakeSource{
		pages:   []string{"1.1 GENERAL\nScope.", "unreadable"},
		pageErr: map[int]error{2: errors.New("page number 2 out of range")},
	}

	_, err := svc.Process(context.Background(), src, "doc_bad_20240101")
	require.Error(t, err)
	require.ErrorIs(t, err, appErr.ErrSectioning)

	// Whole-document failure: nothing partial is retained.
	_, ok := svc.Get("doc_bad_20240101")
	require.False(t, ok)
}

func TestDocumentServiceSearch(t *testing.T) {
	svc := NewDocumentService()
	src := &fakeSource{pages: []string{
		"1.1 CONCRETE\nConcrete mix design. Concrete curing.\n1.2 STEEL\nStructural steel notes.\n",
	}}
	_, err := svc.Process(context.Background(), src, "doc_a")
	require.NoError(t, err)

	// Case-insensitive, ranked by occurrence count.
	results := svc.Search("CONCRETE", 5)
	require.Len(t, results, 1)
	require.Equal(t, "1.1 CONCRETE", results[0].Title)

	results = svc.Search("steel", 5)
	require.Len(t, results, 1)
	require.Equal(t, "1.2 STEEL", results[0].Title)

	require.Empty(t, svc.Search("asphalt", 5))

	// maxResults caps hits.
	results = svc.Search("notes", 0)
	require.Len(t, results, 1)
}

func TestDocumentServiceSearchRanking(t *testing.T) {
	svc := NewDocumentService()
	src := &fakeSource{pages: []string{
		"1.1 PAINT\npaint paint paint\n1.2 FINISHES\npaint once\n",
	}}
	_, err := svc.Process(context.Background(), src, "doc_b")
	require.NoError(t, err)

	results := svc.Search("paint", 5)
	require.Len(t, results, 2)
	require.Equal(t, "1.1 PAINT", results[0].Title)
	require.Equal(t, "1.2 FINISHES", results[1].Title)
}
