package pipeline

import (
	"context"
	"testing"

	"github.com/infidex/infidex/internal/coverage"
	"github.com/infidex/infidex/internal/document"
	"github.com/infidex/infidex/internal/vector"
	"github.com/infidex/infidex/internal/wordmatch"
)

func buildPipeline(t *testing.T, docs []document.Document) *Pipeline {
	t.Helper()
	vm := vector.New(vector.DefaultConfig(), nil)
	matcher := wordmatch.New(wordmatch.DefaultConfig())

	for _, d := range docs {
		stored := vm.IndexDocument(d)
		matcher.AddWords(vm.Tokenizer().SplitWords(stored.IndexedText), stored.ID)
	}
	if err := vm.BuildInvertedLists(context.Background(), nil, nil); err != nil {
		t.Fatalf("build failed: %v", err)
	}
	ce := coverage.New(matcher, vm.Tokenizer())
	return New(vm, ce, DefaultConfig())
}

func doc(key int64, text string) document.Document {
	return document.Document{
		Key: key,
		Fields: []document.Field{
			{Name: "title", Value: text, Weight: document.WeightHigh, Indexable: true},
		},
	}
}

func TestSearchReturnsResultsOrderedByFusedScore(t *testing.T) {
	p := buildPipeline(t, []document.Document{
		doc(1, "the dark knight returns"),
		doc(2, "a quiet afternoon in the park"),
		doc(3, "the dark knight rises"),
	})

	results, err := p.Search("the dark knight")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected at least one result")
	}
	for i := 1; i < len(results); i++ {
		if results[i-1].Score < results[i].Score {
			t.Fatalf("results not descending by score: %+v", results)
		}
	}
	if results[0].DocumentKey != 1 && results[0].DocumentKey != 3 {
		t.Fatalf("expected a 'dark knight' document on top, got key %d", results[0].DocumentKey)
	}
}

func TestSearchWithNoMatchesReturnsEmpty(t *testing.T) {
	p := buildPipeline(t, []document.Document{doc(1, "batman begins")})
	results, err := p.Search("zzzzzzzzzz")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results, got %v", results)
	}
}

func TestSearchRespectsMaxResults(t *testing.T) {
	docs := make([]document.Document, 0, 20)
	for i := int64(0); i < 20; i++ {
		docs = append(docs, doc(i, "the dark knight returns"))
	}
	p := buildPipeline(t, docs)
	p.cfg.MaxResults = 5

	results, err := p.Search("dark knight")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) > 5 {
		t.Fatalf("expected at most 5 results, got %d", len(results))
	}
}
