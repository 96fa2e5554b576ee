package coverage

import (
	"testing"

	"github.com/infidex/infidex/internal/tokenizer"
	"github.com/infidex/infidex/internal/wordmatch"
)

func newEngine() *Engine {
	tok := tokenizer.New(tokenizer.DefaultConfig(), nil)
	m := wordmatch.New(wordmatch.DefaultConfig())
	return New(m, tok)
}

func TestExactWordsScoreHighest(t *testing.T) {
	e := newEngine()
	score, hits := e.Score([]string{"the", "dark", "knight"}, 1, "the dark knight returns")
	if hits != 3 {
		t.Fatalf("expected 3 word hits, got %d", hits)
	}
	if score != 255 {
		t.Fatalf("expected the maximum score 255 for a full exact match, got %d", score)
	}
}

func TestEmptyQueryScoresZero(t *testing.T) {
	e := newEngine()
	score, hits := e.Score(nil, 1, "the dark knight returns")
	if score != 0 || hits != 0 {
		t.Fatalf("expected (0,0) for empty query, got (%d,%d)", score, hits)
	}
}

func TestFuzzyMatchScoresBelowExact(t *testing.T) {
	e := newEngine()
	m := wordmatch.New(wordmatch.DefaultConfig())
	tok := tokenizer.New(tokenizer.DefaultConfig(), nil)
	m.AddWords(tok.SplitWords("batman begins"), 1)
	e2 := New(m, tok)

	exactScore, exactHits := e2.Score([]string{"batman"}, 1, "batman begins")
	fuzzyScore, fuzzyHits := e2.Score([]string{"batmen"}, 1, "batman begins")

	if exactHits != 1 || fuzzyHits != 1 {
		t.Fatalf("expected one hit each, got exact=%d fuzzy=%d", exactHits, fuzzyHits)
	}
	if fuzzyScore >= exactScore {
		t.Fatalf("fuzzy match (%d) should score below exact match (%d)", fuzzyScore, exactScore)
	}
	_ = e
}

func TestNoMatchScoresZero(t *testing.T) {
	e := newEngine()
	score, hits := e.Score([]string{"zzzzzz"}, 1, "the dark knight returns")
	if score != 0 || hits != 0 {
		t.Fatalf("expected (0,0) for unrelated query, got (%d,%d)", score, hits)
	}
}

func TestJoinedWordsMatch(t *testing.T) {
	e := newEngine()
	score, hits := e.Score([]string{"base", "ball"}, 1, "a baseball game")
	if hits == 0 || score == 0 {
		t.Fatalf("expected joined-word match for 'base'+'ball' against 'baseball', got score=%d hits=%d", score, hits)
	}
}
