// Package tokenizer implements the padded, multi-size character n-gram
// shingling used to index and query INFIDEX documents. It normalizes text,
// pads segment-initial text with a reserved start sentinel, pads every
// document with a reserved stop sentinel, and emits every configured
// shingle size in a fixed, deterministic order.
package tokenizer

import (
	"sort"
	"strings"

	"github.com/infidex/infidex/internal/normalizer"
)

// Reserved Unicode Private Use Area sentinels used as padding. The contract
// (per spec) is: if either appears in real input, it is treated as an
// ordinary character during shingle generation; an all-padding shingle is
// dropped, a mixed shingle (padding + real content) is kept.
const (
	startPadSentinel rune = '\uE000'
	stopPadSentinel  rune = '\uE001'
)

// Shingle is one n-gram (or, on the search path, one verbatim word)
// produced by the tokenizer.
type Shingle struct {
	Text        string
	Occurrences uint16
	Position    int32
}

// Config controls shingle sizes, padding depth, and the word-split
// delimiter set used by the search path and by WordMatcher.
type Config struct {
	// IndexSizes lists the n-gram lengths to emit, in emission order.
	// Emission order doesn't affect correctness but is fixed (IndexSizes[0]
	// first, then [1], ...) for determinism across runs.
	IndexSizes []int
	StartPad   int
	StopPad    int
	Delimiters map[rune]struct{}
}

// DefaultDelimiters is the whitespace/punctuation delimiter set used to
// split words for the search path and for WordMatcher indexing. It also
// includes the C0 control range, so the vector model's field-joining
// sectionSeparator ('\x1f', a Unit Separator) always splits a word rather
// than fusing the last word of one field with the first word of the next.
func DefaultDelimiters() map[rune]struct{} {
	delims := map[rune]struct{}{}
	for _, r := range " \t\n\r.,;:!?()[]{}\"'`~@#$%^&*+=|\\/<>_-" {
		delims[r] = struct{}{}
	}
	for r := rune(0x00); r <= 0x1F; r++ {
		delims[r] = struct{}{}
	}
	delims[0x7F] = struct{}{}
	return delims
}

// DefaultConfig matches spec §6's configuration defaults: bigrams and
// trigrams, a 2-character start pad, no stop pad.
func DefaultConfig() Config {
	return Config{
		IndexSizes: []int{2, 3},
		StartPad:   2,
		StopPad:    0,
		Delimiters: DefaultDelimiters(),
	}
}

// Tokenizer generates shingles for indexing and for search over a shared
// Config and Normalizer.
type Tokenizer struct {
	cfg  Config
	norm *normalizer.Normalizer
}

// New creates a Tokenizer. A nil Normalizer falls back to normalizer.Default().
func New(cfg Config, norm *normalizer.Normalizer) *Tokenizer {
	if norm == nil {
		norm = normalizer.Default()
	}
	return &Tokenizer{cfg: cfg, norm: norm}
}

// TokenizeForIndexing normalizes text, pads it, and emits every configured
// n-gram size in order, dropping all-padding shingles. isSegmentContinuation
// suppresses the start pad: only segment 0 of a multi-segment logical
// document receives it. Duplicates are preserved; occurrence counts are
// derived downstream by the caller aggregating by (term, doc).
func (t *Tokenizer) TokenizeForIndexing(text string, isSegmentContinuation bool) []Shingle {
	normalized := t.norm.Normalize(text)
	runes := []rune(normalized)

	padded := make([]rune, 0, len(runes)+t.cfg.StartPad+t.cfg.StopPad)
	if !isSegmentContinuation {
		for i := 0; i < t.cfg.StartPad; i++ {
			padded = append(padded, startPadSentinel)
		}
	}
	padded = append(padded, runes...)
	for i := 0; i < t.cfg.StopPad; i++ {
		padded = append(padded, stopPadSentinel)
	}

	var shingles []Shingle
	for _, n := range t.cfg.IndexSizes {
		if n <= 0 || n > len(padded) {
			continue
		}
		for start := 0; start+n <= len(padded); start++ {
			window := padded[start : start+n]
			if allPadding(window) {
				continue
			}
			shingles = append(shingles, Shingle{
				Text:        string(window),
				Occurrences: 1,
				Position:    int32(start),
			})
		}
	}
	return shingles
}

// TokenizeForSearch generates the same n-gram shingles as TokenizeForIndexing
// with the start pad suppressed (the query is tokenized as a segment
// continuation; the configured stop pad, if any, still applies), then
// additionally splits the text into delimiter-separated words, deduplicates
// them, and adds each word of length >= the smallest configured index size
// as a verbatim Shingle at position 0. Identical shingle texts are
// consolidated by summing Occurrences. It returns the deduplicated shingle
// set plus an auxiliary text->shingle map for O(1) lookup by callers that
// need to mutate accumulated occurrence counts (e.g. the query-vector
// builder in Stage 1).
func (t *Tokenizer) TokenizeForSearch(text string) ([]Shingle, map[string]*Shingle) {
	raw := t.TokenizeForIndexing(text, true)

	byText := make(map[string]*Shingle, len(raw))
	order := make([]string, 0, len(raw))
	for _, s := range raw {
		if existing, ok := byText[s.Text]; ok {
			existing.Occurrences += s.Occurrences
			continue
		}
		copy := s
		byText[s.Text] = &copy
		order = append(order, s.Text)
	}

	normalized := t.norm.Normalize(text)
	words := t.splitWords(normalized)
	minSize := 0
	if len(t.cfg.IndexSizes) > 0 {
		minSize = t.cfg.IndexSizes[0]
	}
	seenWord := make(map[string]struct{})
	for _, w := range words {
		if _, dup := seenWord[w]; dup {
			continue
		}
		seenWord[w] = struct{}{}
		if len([]rune(w)) < minSize {
			continue
		}
		if existing, ok := byText[w]; ok {
			existing.Occurrences++
			continue
		}
		s := &Shingle{Text: w, Occurrences: 1, Position: 0}
		byText[w] = s
		order = append(order, w)
	}

	result := make([]Shingle, 0, len(order))
	for _, text := range order {
		result = append(result, *byText[text])
	}
	return result, byText
}

// SplitWords exposes the delimiter-based word split so WordMatcher can
// tokenize on exactly the same boundary rules.
func (t *Tokenizer) SplitWords(text string) []string {
	return t.splitWords(t.norm.Normalize(text))
}

func (t *Tokenizer) splitWords(normalized string) []string {
	lowered := strings.ToLower(normalized)
	return strings.FieldsFunc(lowered, func(r rune) bool {
		_, isDelim := t.cfg.Delimiters[r]
		return isDelim
	})
}

func allPadding(window []rune) bool {
	for _, r := range window {
		if r != startPadSentinel && r != stopPadSentinel {
			return false
		}
	}
	return true
}

// SortedWords returns words deduplicated and sorted, a deterministic word
// list. Nothing in the ranking pipeline calls it.
func SortedWords(words []string) []string {
	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}
