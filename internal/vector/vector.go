// Package vector implements VectorModel, the Stage 1 TF-IDF vector-space
// ranker: document registration, the two-pass normalization that turns raw
// field-weighted occurrences into an L2-normalized, byte-quantized inverted
// index, and query-time cosine scoring over that index.
package vector

import (
	"context"
	"math"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/infidex/infidex/internal/cancel"
	"github.com/infidex/infidex/internal/document"
	"github.com/infidex/infidex/internal/normalizer"
	"github.com/infidex/infidex/internal/quantize"
	"github.com/infidex/infidex/internal/term"
	"github.com/infidex/infidex/internal/tokenizer"
	pkgerrors "github.com/infidex/infidex/pkg/errors"
)

// sectionSeparator joins indexable field values when building a document's
// concatenated IndexedText. It is a C0 control character (Unit Separator),
// never produced by normal text and never touched by the Normalizer's
// whitespace collapsing, so field boundary positions computed before
// concatenation stay valid afterward.
const sectionSeparator = '\x1f'

// ErrNotBuilt is returned by Search when called before BuildInvertedLists
// has completed at least once. It is pkg/errors.ErrNotBuilt, so callers can
// branch on pkgerrors.KindOf without this package needing its own parallel
// sentinel.
var ErrNotBuilt = pkgerrors.ErrNotBuilt

// ErrCancelled is returned by BuildInvertedLists when the supplied
// cancellation token is observed cancelled mid-pass; a cancelled context
// surfaces as the context's own error instead. It is
// pkg/errors.ErrCancelled.
var ErrCancelled = pkgerrors.ErrCancelled

// ProgressFunc receives a monotonically increasing completion percentage
// (0-100) during BuildInvertedLists: 0-50 for pass 1, 50-100 for pass 2.
type ProgressFunc func(percent int)

// Config controls field weighting and the stop-term cutoff. IndexSizes,
// padding, and delimiters live on the embedded Tokenizer config.
type Config struct {
	// FieldWeights is indexed by document.Weight: [High, Med, Low].
	FieldWeights [3]float64
	// StopTermLimit: a term whose document frequency exceeds this is kept
	// in the index but excluded from query matching.
	StopTermLimit int32
	Tokenizer     tokenizer.Config
}

// DefaultConfig matches spec §6's defaults.
func DefaultConfig() Config {
	return Config{
		FieldWeights:  [3]float64{1.5, 1.25, 1.0},
		StopTermLimit: 1_250_000,
		Tokenizer:     tokenizer.DefaultConfig(),
	}
}

// Model is the Stage 1 TF-IDF vector-space index. A single Model owns one
// DocumentCollection and one TermCollection; IndexDocument calls invalidate
// the built flag, and BuildInvertedLists must run again before Search will
// serve results.
type Model struct {
	mu  sync.RWMutex
	cfg Config

	docs  *document.Collection
	terms *term.Collection
	tok   *tokenizer.Tokenizer
	norm  *normalizer.Normalizer

	built bool
}

// New creates an empty Model. A nil Normalizer falls back to
// normalizer.Default().
func New(cfg Config, norm *normalizer.Normalizer) *Model {
	if norm == nil {
		norm = normalizer.Default()
	}
	return &Model{
		cfg:   cfg,
		docs:  document.New(),
		terms: term.New(),
		tok:   tokenizer.New(cfg.Tokenizer, norm),
		norm:  norm,
	}
}

// Documents exposes the underlying DocumentCollection for callers (the
// search pipeline, the engine's persistence and statistics paths) that need
// document lookups alongside Stage 1 scoring.
func (m *Model) Documents() *document.Collection { return m.docs }

// Terms exposes the underlying TermCollection, e.g. for persistence and
// statistics.
func (m *Model) Terms() *term.Collection { return m.terms }

// Tokenizer exposes the shared Tokenizer so callers tokenize query text
// identically to how Search will.
func (m *Model) Tokenizer() *tokenizer.Tokenizer { return m.tok }

// MarkBuilt sets the built flag directly, for the persistence loader: a
// loaded snapshot's postings are already the product of a prior
// BuildInvertedLists call, so Search should serve them without forcing the
// caller to rebuild.
func (m *Model) MarkBuilt() {
	m.mu.Lock()
	m.built = true
	m.mu.Unlock()
}

// IndexDocument registers doc, concatenates its indexable fields into
// IndexedText with recorded FieldBoundaries, tokenizes it, and appends one
// raw occurrence per emitted shingle (field-weighted, deduplicated within
// the document when doc.SegmentNumber > 0) to each shingle's Term. It
// invalidates the built flag: BuildInvertedLists must run again before
// Search will reflect this document.
func (m *Model) IndexDocument(doc document.Document) *document.Stored {
	m.mu.Lock()
	defer m.mu.Unlock()

	text, boundaries := m.buildIndexedText(doc)
	isContinuation := doc.SegmentNumber > 0

	stored := m.docs.Add(&document.Stored{
		Key:           doc.Key,
		SegmentNumber: doc.SegmentNumber,
		ClientInfo:    doc.ClientInfo,
		IndexedText:   text,
		Boundaries:    boundaries,
	})

	shingles := m.tok.TokenizeForIndexing(text, isContinuation)

	// IndexedText (and hence Boundaries) never include the tokenizer's
	// start padding, so a shingle's position must be translated back into
	// indexed_text coordinates before consulting WeightAt. Shingles whose
	// window starts inside the pad region land at a negative offset; they
	// are mixed pad+content windows at the very start of the text, so the
	// first field's weight class applies.
	startPad := 0
	if !isContinuation {
		startPad = m.cfg.Tokenizer.StartPad
	}

	var seen map[string]struct{}
	if isContinuation {
		seen = make(map[string]struct{}, len(shingles))
	}
	for _, sh := range shingles {
		if isContinuation {
			if _, dup := seen[sh.Text]; dup {
				continue
			}
			seen[sh.Text] = struct{}{}
		}
		textPos := int(sh.Position) - startPad
		if textPos < 0 {
			textPos = 0
		}
		weightClass := stored.WeightAt(textPos)
		fieldWeight := m.cfg.FieldWeights[weightClass]
		t := m.terms.CountTermUsage(sh.Text, stored.ID, false)
		t.AppendRaw(stored.ID, fieldWeight)
	}

	m.built = false
	return stored
}

// buildIndexedText normalizes and concatenates doc's indexable field values
// with sectionSeparator, recording a FieldBoundary at the start of each
// field. Positions are in runes of the final (pre-padding) text.
func (m *Model) buildIndexedText(doc document.Document) (string, []document.FieldBoundary) {
	var sb []rune
	var boundaries []document.FieldBoundary
	for _, f := range doc.Fields {
		if !f.Indexable {
			continue
		}
		normalized := []rune(m.norm.Normalize(f.Value))
		if len(sb) > 0 {
			sb = append(sb, sectionSeparator)
		}
		boundaries = append(boundaries, document.FieldBoundary{
			Position:    uint16(len(sb)),
			WeightClass: f.Weight,
		})
		sb = append(sb, normalized...)
	}
	return string(sb), boundaries
}

// BuildInvertedLists runs the two-pass TF-IDF normalization of spec §4.E
// over every term, in parallel term-shards bounded by GOMAXPROCS, polling
// token between terms for cooperative cancellation. progress (if non-nil)
// is called with 0-50 during pass 1 and 50-100 during pass 2.
func (m *Model) BuildInvertedLists(ctx context.Context, token *cancel.Token, progress ProgressFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := m.docs.LiveCount()
	terms := m.terms.AllTerms()
	report := func(pct int) {
		if progress != nil {
			progress(pct)
		}
	}

	vectorLengthSq := make([]float64, m.docs.Count())
	var lenMu sync.Mutex

	if err := m.runShards(ctx, token, terms, func(t *term.Term) error {
		tfByDoc := aggregateRawTF(t.Raw)
		df := t.DocumentFrequency
		if df == 0 {
			return nil
		}
		lenMu.Lock()
		for docID, tf := range tfByDoc {
			idf := 1 + math.Log10(float64(n)*tf/float64(df))
			vectorLengthSq[docID] += idf * idf
		}
		lenMu.Unlock()
		return nil
	}, func(done, total int64) {
		if total > 0 {
			report(int(done * 50 / total))
		}
	}); err != nil {
		return err
	}

	vectorLength := make([]float64, len(vectorLengthSq))
	for i, sq := range vectorLengthSq {
		vectorLength[i] = math.Sqrt(sq)
	}

	if err := m.runShards(ctx, token, terms, func(t *term.Term) error {
		tfByDoc := aggregateRawTF(t.Raw)
		df := t.DocumentFrequency
		postings := make([]term.Posting, 0, len(tfByDoc))
		for docID, tf := range tfByDoc {
			var normalized float64
			if df > 0 && int(docID) < len(vectorLength) && vectorLength[docID] > 0 {
				idf := 1 + math.Log10(float64(n)*tf/float64(df))
				normalized = idf / vectorLength[docID]
			}
			postings = append(postings, term.Posting{
				DocID:  docID,
				Weight: quantize.FloatToByte(normalized),
			})
		}
		sort.Slice(postings, func(i, j int) bool { return postings[i].DocID < postings[j].DocID })
		t.SetPostings(postings)
		return nil
	}, func(done, total int64) {
		if total > 0 {
			report(50 + int(done*50/total))
		}
	}); err != nil {
		return err
	}

	m.built = true
	report(100)
	return nil
}

// runShards fans out fn over terms across GOMAXPROCS workers, polling token
// and ctx between terms and reporting (done, total) progress after each.
// Reporting is serialized behind reportMu and only ever moves forward, so
// onDone's (done, total) sequence stays monotonically increasing even though
// workers finish out of order.
func (m *Model) runShards(ctx context.Context, token *cancel.Token, terms []*term.Term, fn func(*term.Term) error, onDone func(done, total int64)) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	var done int64
	var reportMu sync.Mutex
	var maxReported int64
	total := int64(len(terms))
	for _, t := range terms {
		t := t
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			if token != nil && token.Cancelled() {
				return ErrCancelled
			}
			if err := fn(t); err != nil {
				return err
			}
			d := atomic.AddInt64(&done, 1)
			reportMu.Lock()
			if d > maxReported {
				maxReported = d
				onDone(d, total)
			}
			reportMu.Unlock()
			return nil
		})
	}
	return g.Wait()
}

// aggregateRawTF sums field-weighted raw occurrences per document into a
// single raw term-frequency value, as spec §4.E pass 1 requires.
func aggregateRawTF(raw []term.RawPosting) map[int32]float64 {
	out := make(map[int32]float64, len(raw))
	for _, p := range raw {
		out[p.DocID] += p.FieldWeight
	}
	return out
}

// Search tokenizes queryText, builds a byte-quantized query vector over
// surviving (non-absent, non-stop-term) terms, and scores every live
// document via saturating byte accumulation, returning candidates ordered
// and truncated per quantize.BucketSort.
func (m *Model) Search(queryText string, topK int) ([]quantize.ScoredID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.built {
		return nil, ErrNotBuilt
	}

	n := m.docs.LiveCount()
	shingles, _ := m.tok.TokenizeForSearch(queryText)

	type queryTerm struct {
		t   *term.Term
		idf float64
	}
	qterms := make([]queryTerm, 0, len(shingles))
	for _, sh := range shingles {
		t, ok := m.terms.GetTerm(sh.Text)
		if !ok {
			continue
		}
		if t.IsStopTerm(m.cfg.StopTermLimit) {
			continue
		}
		df := t.DocumentFrequency
		if df == 0 {
			continue
		}
		idf := 1 + math.Log10(float64(n)*float64(sh.Occurrences)/float64(df))
		qterms = append(qterms, queryTerm{t: t, idf: idf})
	}
	if len(qterms) == 0 {
		return nil, nil
	}

	var sumSq float64
	for _, qt := range qterms {
		sumSq += qt.idf * qt.idf
	}
	length := math.Sqrt(sumSq)

	accum := make([]uint8, m.docs.Count())
	for _, qt := range qterms {
		var qByte uint8
		if length > 0 {
			qByte = quantize.FloatToByte(qt.idf / length)
		}
		if qByte == 0 {
			continue
		}
		for _, p := range qt.t.Postings {
			accum[p.DocID] = quantize.SaturatingAddByteProduct(accum[p.DocID], p.Weight, qByte)
		}
	}

	entries := make([]quantize.ScoredID, 0, len(accum))
	for id, score := range accum {
		if score == 0 {
			continue
		}
		doc, ok := m.docs.Get(int32(id))
		if !ok || doc.Deleted {
			continue
		}
		entries = append(entries, quantize.ScoredID{ID: int32(id), Score: score})
	}
	return quantize.BucketSort(entries, topK), nil
}

// Built reports whether BuildInvertedLists has completed at least once
// since the last IndexDocument call.
func (m *Model) Built() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.built
}
