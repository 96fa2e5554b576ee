// Package wordmatch implements WordMatcher: three collocated word indexes —
// exact, symmetric-delete LD1 (FastSS), and affix (prefix/suffix) — used by
// the coverage engine's fuzzy and affix rescoring steps. All three are
// keyed by lowercased words split on the tokenizer's delimiter set.
package wordmatch

import (
	"sort"

	"github.com/infidex/infidex/internal/segment"
)

// Config bounds the word lengths each index participates at.
type Config struct {
	MinExact int
	MaxExact int
	MinLD1   int
	MaxLD1   int
}

// DefaultConfig matches spec §6's defaults: exact window [2,50], LD1/affix
// window [4,20].
func DefaultConfig() Config {
	return Config{MinExact: 2, MaxExact: 50, MinLD1: 4, MaxLD1: 20}
}

type idSet map[int32]struct{}

func (s idSet) add(id int32) {
	s[id] = struct{}{}
}

func (s idSet) has(id int32) bool {
	_, ok := s[id]
	return ok
}

// Matcher holds the exact, LD1, and affix indexes.
type Matcher struct {
	cfg Config

	exact map[string]idSet
	ld1   map[string]idSet
	// affix maps a prefix or suffix substring to the set of document ids
	// that contain a word with that prefix/suffix of that exact length.
	// There is no dedicated FST library in the reference corpus, so this
	// substring->set map stands in for the "FST or equivalent trie" the
	// spec allows; the query-time walk (longest affix length first) gives
	// the same longest-match-first semantics a trie would.
	prefix map[string]idSet
	suffix map[string]idSet
}

// New creates an empty Matcher.
func New(cfg Config) *Matcher {
	return &Matcher{
		cfg:    cfg,
		exact:  make(map[string]idSet),
		ld1:    make(map[string]idSet),
		prefix: make(map[string]idSet),
		suffix: make(map[string]idSet),
	}
}

// AddWord indexes one lowercased word as belonging to document docID.
func (m *Matcher) AddWord(word string, docID int32) {
	runes := []rune(word)
	n := len(runes)
	if n == 0 {
		return
	}

	if n >= m.cfg.MinExact && n <= m.cfg.MaxExact {
		m.setFor(m.exact, word).add(docID)
	}

	if n >= m.cfg.MinLD1 && n <= m.cfg.MaxLD1 {
		for _, variant := range deletionVariants(runes) {
			m.setFor(m.ld1, variant).add(docID)
		}
	}

	if n >= m.cfg.MinLD1 {
		maxLen := m.cfg.MaxLD1
		if n < maxLen {
			maxLen = n
		}
		for l := m.cfg.MinLD1; l <= maxLen; l++ {
			m.setFor(m.prefix, string(runes[:l])).add(docID)
			m.setFor(m.suffix, string(runes[n-l:])).add(docID)
		}
	}
}

// AddWords indexes every word in words as belonging to docID. Duplicate
// words within the same document are harmless: the backing index is a set.
func (m *Matcher) AddWords(words []string, docID int32) {
	for _, w := range words {
		m.AddWord(w, docID)
	}
}

func (m *Matcher) setFor(index map[string]idSet, key string) idSet {
	s, ok := index[key]
	if !ok {
		s = make(idSet)
		index[key] = s
	}
	return s
}

// MatchesExactOrLD1 implements the exact/LD1 lookup of spec §4.F: an exact
// hit, or — when the query word's length falls in the LD1 window — any of
// the three edit-distance-1 cases (insertion, deletion, substitution)
// verified purely through symmetric-delete set membership, no runtime edit
// distance computation required.
func (m *Matcher) MatchesExactOrLD1(word string, docID int32) bool {
	if s, ok := m.exact[word]; ok && s.has(docID) {
		return true
	}
	runes := []rune(word)
	n := len(runes)
	if n < m.cfg.MinLD1 || n > m.cfg.MaxLD1 {
		return false
	}
	// Deletion case: the candidate word has one extra character relative
	// to the query; it was indexed under ld1[word] because deleting that
	// extra character from it yields word.
	if s, ok := m.ld1[word]; ok && s.has(docID) {
		return true
	}
	for _, variant := range deletionVariants(runes) {
		// Substitution case: both the query and the candidate reduce to
		// the same deletion variant.
		if s, ok := m.ld1[variant]; ok && s.has(docID) {
			return true
		}
		// Insertion case: the candidate word equals a one-character
		// deletion of the query exactly.
		if s, ok := m.exact[variant]; ok && s.has(docID) {
			return true
		}
	}
	return false
}

// MatchAffix returns the longest prefix-or-suffix match length between word
// and any word docID was indexed with, within [MinLD1, MaxLD1], trying the
// longest affix length first. ok is false if no affix of any length in
// range matched.
func (m *Matcher) MatchAffix(word string, docID int32) (matchedLen int, ok bool) {
	runes := []rune(word)
	n := len(runes)
	maxLen := m.cfg.MaxLD1
	if n < maxLen {
		maxLen = n
	}
	for l := maxLen; l >= m.cfg.MinLD1; l-- {
		if s, exists := m.prefix[string(runes[:l])]; exists && s.has(docID) {
			return l, true
		}
		if s, exists := m.suffix[string(runes[n-l:])]; exists && s.has(docID) {
			return l, true
		}
	}
	return 0, false
}

// deletionVariants returns every distinct single-character deletion of
// runes, i.e. the FastSS symmetric-delete variant set.
func deletionVariants(runes []rune) []string {
	if len(runes) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(runes))
	variants := make([]string, 0, len(runes))
	buf := make([]rune, len(runes)-1)
	for i := range runes {
		copy(buf[:i], runes[:i])
		copy(buf[i:], runes[i+1:])
		v := string(buf)
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		variants = append(variants, v)
	}
	return variants
}

// DocIDsForExact returns the sorted set of document ids indexed under an
// exact word, for diagnostics and tests.
func (m *Matcher) DocIDsForExact(word string) []int32 {
	return sortedIDs(m.exact[word])
}

// Snapshot converts the four backing indexes into the persistence package's
// wire-friendly shape: sorted id slices instead of sets, for a
// deterministic byte layout.
func (m *Matcher) Snapshot() *segment.WordMatcherSnapshot {
	return &segment.WordMatcherSnapshot{
		Exact:  toWordIndex(m.exact),
		LD1:    toWordIndex(m.ld1),
		Prefix: toWordIndex(m.prefix),
		Suffix: toWordIndex(m.suffix),
	}
}

// Restore replaces the matcher's four indexes with the contents of snap,
// discarding whatever was indexed before. It is used by the persistence
// loader to rebuild a Matcher from a saved snapshot without re-tokenizing
// every document's text.
func (m *Matcher) Restore(snap *segment.WordMatcherSnapshot) {
	m.exact = fromWordIndex(snap.Exact)
	m.ld1 = fromWordIndex(snap.LD1)
	m.prefix = fromWordIndex(snap.Prefix)
	m.suffix = fromWordIndex(snap.Suffix)
}

func toWordIndex(index map[string]idSet) segment.WordIndex {
	out := make(segment.WordIndex, len(index))
	for key, set := range index {
		out[key] = sortedIDs(set)
	}
	return out
}

func fromWordIndex(idx segment.WordIndex) map[string]idSet {
	out := make(map[string]idSet, len(idx))
	for key, ids := range idx {
		set := make(idSet, len(ids))
		for _, id := range ids {
			set.add(id)
		}
		out[key] = set
	}
	return out
}

func sortedIDs(s idSet) []int32 {
	out := make([]int32, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
