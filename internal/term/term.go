// Package term implements the term <-> posting-list registry (TermCollection)
// used by Stage 1 indexing. A Term accumulates raw, per-occurrence field
// weights during IndexDocument calls; BuildInvertedLists (in the vector
// package) reads that raw buffer in two passes and derives from it the
// sorted, deduplicated, byte-quantized Postings the spec's Term invariants
// require. The raw buffer is kept, so a later build can recompute Postings.
package term

import "sync"

// RawPosting is one raw occurrence of a term in a document, recorded before
// the build pass. FieldWeight is the field-weight-class multiplier (e.g.
// 1.5/1.25/1.0) at the shingle's position, not yet summed across occurrences
// or normalized against the other terms in the document.
type RawPosting struct {
	DocID       int32
	FieldWeight float64
}

// Posting is the final, post-build state of one document's entry for a
// term: the L2-normalized, byte-quantized TF-IDF weight.
type Posting struct {
	DocID  int32
	Weight uint8
}

// Term is the per-text entry in a TermCollection.
type Term struct {
	Text              string
	DocumentFrequency int32
	Raw               []RawPosting
	Postings          []Posting

	mu sync.Mutex
}

// AppendRaw adds one raw occurrence entry. Safe for concurrent use across
// terms; a single term is only ever touched from one indexing goroutine at a
// time under the writer lock, but the mutex keeps this type safe to reuse if
// that assumption ever loosens.
func (t *Term) AppendRaw(docID int32, fieldWeight float64) {
	t.mu.Lock()
	t.Raw = append(t.Raw, RawPosting{DocID: docID, FieldWeight: fieldWeight})
	t.mu.Unlock()
}

// SetPostings replaces the term's final posting list, sorted by DocID, as
// computed by BuildInvertedLists' second pass.
func (t *Term) SetPostings(postings []Posting) {
	t.mu.Lock()
	t.Postings = postings
	t.mu.Unlock()
}

// IsStopTerm reports whether this term's document frequency exceeds the
// configured stop-term limit. Stop terms remain indexed but are excluded
// from query matching.
func (t *Term) IsStopTerm(stopTermLimit int32) bool {
	return t.DocumentFrequency > stopTermLimit
}

// Collection is the text->Term registry. It tracks insertion order
// separately from the map so AllTerms can offer a stable, reproducible
// enumeration across the two normalization passes (Go map iteration order
// is randomized, which would otherwise make pass 1 and pass 2 walk terms in
// different orders on different runs — harmless for correctness here since
// both passes are per-term independent, but fixed order keeps builds
// reproducible for the bit-exact round-trip law).
type Collection struct {
	mu      sync.RWMutex
	terms   map[string]*Term
	order   []string
	docSeen map[string]map[int32]struct{}
}

// New creates an empty Collection.
func New() *Collection {
	return &Collection{
		terms:   make(map[string]*Term),
		docSeen: make(map[string]map[int32]struct{}),
	}
}

// CountTermUsage looks up (or creates) the Term for text. When
// forFastInsert is false, it increments DocumentFrequency the first time a
// given docID is seen for this term (document frequency counts distinct
// documents, not occurrences), so calling it once per shingle occurrence,
// as first-pass indexing does, still counts each document once.
func (c *Collection) CountTermUsage(text string, docID int32, forFastInsert bool) *Term {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, exists := c.terms[text]
	if !exists {
		t = &Term{Text: text}
		c.terms[text] = t
		c.order = append(c.order, text)
		c.docSeen[text] = make(map[int32]struct{})
	}
	if !forFastInsert {
		seen := c.docSeen[text]
		if _, already := seen[docID]; !already {
			seen[docID] = struct{}{}
			t.DocumentFrequency++
		}
	}
	return t
}

// Restore creates (or overwrites) the Term for text with an already-built
// posting list and document frequency, bypassing the raw-occurrence
// accumulation path entirely. It is used by the persistence loader to
// rebuild a Collection from a saved snapshot, where postings are already
// final.
func (c *Collection) Restore(text string, documentFrequency int32, postings []Posting) *Term {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &Term{Text: text, DocumentFrequency: documentFrequency, Postings: postings}
	if _, exists := c.terms[text]; !exists {
		c.order = append(c.order, text)
	}
	c.terms[text] = t
	c.docSeen[text] = make(map[int32]struct{})
	for _, p := range postings {
		c.docSeen[text][p.DocID] = struct{}{}
	}
	return t
}

// GetTerm is a read-only lookup.
func (c *Collection) GetTerm(text string) (*Term, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.terms[text]
	return t, ok
}

// AllTerms returns every term in stable (first-insertion) order, suitable
// for the two build passes.
func (c *Collection) AllTerms() []*Term {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Term, 0, len(c.order))
	for _, text := range c.order {
		out = append(out, c.terms[text])
	}
	return out
}

// Count returns the number of distinct terms registered.
func (c *Collection) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.terms)
}
