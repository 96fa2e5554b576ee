// Package engine ties Stage 1 (vector), Stage 2 (coverage), WordMatcher,
// and persistence together behind the public API surface: index_document,
// index_documents, calculate_weights, search, get_document(s),
// get_statistics, save, and load, under a single-writer/many-reader
// discipline.
package engine

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/infidex/infidex/internal/cancel"
	"github.com/infidex/infidex/internal/coverage"
	"github.com/infidex/infidex/internal/document"
	"github.com/infidex/infidex/internal/normalizer"
	"github.com/infidex/infidex/internal/pipeline"
	"github.com/infidex/infidex/internal/segment"
	"github.com/infidex/infidex/internal/vector"
	"github.com/infidex/infidex/internal/wordmatch"
	pkgerrors "github.com/infidex/infidex/pkg/errors"
	"github.com/infidex/infidex/pkg/metrics"
)

// Config enumerates every knob new_engine(config) exposes.
type Config struct {
	Vector    vector.Config
	Coverage  coverage.Config
	Pipeline  pipeline.Config
	WordMatch wordmatch.Config
}

// DefaultConfig matches spec §6's configuration defaults end to end.
func DefaultConfig() Config {
	return Config{
		Vector:    vector.DefaultConfig(),
		Coverage:  coverage.DefaultConfig(),
		Pipeline:  pipeline.DefaultConfig(),
		WordMatch: wordmatch.DefaultConfig(),
	}
}

// Validate rejects the InvalidArgument cases spec §7 names: negative
// sizes or an unsupported index size.
func (c Config) Validate() error {
	if c.Vector.StopTermLimit < 0 {
		return pkgerrors.Newf(ErrInvalidArgument, pkgerrors.KindInvalidArgument, "stop_term_limit must be non-negative")
	}
	if len(c.Vector.Tokenizer.IndexSizes) == 0 {
		return pkgerrors.Newf(ErrInvalidArgument, pkgerrors.KindInvalidArgument, "index_sizes must not be empty")
	}
	for _, n := range c.Vector.Tokenizer.IndexSizes {
		if n <= 0 {
			return pkgerrors.Newf(ErrInvalidArgument, pkgerrors.KindInvalidArgument, "index size %d must be positive", n)
		}
	}
	if c.Vector.Tokenizer.StartPad < 0 || c.Vector.Tokenizer.StopPad < 0 {
		return pkgerrors.Newf(ErrInvalidArgument, pkgerrors.KindInvalidArgument, "pad sizes must be non-negative")
	}
	if c.WordMatch.MinExact <= 0 || c.WordMatch.MinLD1 <= 0 {
		return pkgerrors.Newf(ErrInvalidArgument, pkgerrors.KindInvalidArgument, "word matcher size windows must be positive")
	}
	return nil
}

// Statistics is the get_statistics() surface.
type Statistics struct {
	DocumentCount     int
	LiveDocumentCount int
	TermCount         int
	Built             bool
}

// SearchRequest is the search(query) input. Zero-value overrides (<= 0, or
// a nil EnableCoverage) fall back to the engine's configured defaults.
type SearchRequest struct {
	Text           string
	MaxResults     int
	CoverageDepth  int
	EnableCoverage *bool
}

// Engine is the embedded search engine's top-level handle: one
// VectorModel, one WordMatcher, and a Pipeline wired over both, guarded by
// a reader-writer lock that sequences IndexDocument/BuildInvertedLists/Load
// writes against concurrent Search/Statistics reads.
type Engine struct {
	mu  sync.RWMutex
	cfg Config

	vectorModel *vector.Model
	matcher     *wordmatch.Matcher
	coverage    *coverage.Engine
	pipeline    *pipeline.Pipeline

	logger  *slog.Logger
	metrics *metrics.Metrics

	cancelMu      sync.Mutex
	currentCancel *cancel.Token
}

// SetMetrics attaches a *metrics.Metrics collector; searches, indexing, and
// builds report into it from that point on. Passing nil detaches it. Safe
// to call concurrently with Search/IndexDocument(s).
func (e *Engine) SetMetrics(m *metrics.Metrics) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.metrics = m
}

// New creates an Engine from cfg. A nil logger falls back to slog.Default().
func New(cfg Config, norm *normalizer.Normalizer, logger *slog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	vm := vector.New(cfg.Vector, norm)
	matcher := wordmatch.New(cfg.WordMatch)
	cov := coverage.New(matcher, vm.Tokenizer())
	return &Engine{
		cfg:         cfg,
		vectorModel: vm,
		matcher:     matcher,
		coverage:    cov,
		pipeline:    pipeline.New(vm, cov, cfg.Pipeline),
		logger:      logger.With("component", "engine"),
	}, nil
}

// IndexDocument registers one document and feeds its words into
// WordMatcher. The caller must call CalculateWeights (directly, or via
// IndexDocuments' combined form) before Search reflects it.
func (e *Engine) IndexDocument(doc document.Document) *document.Stored {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.indexDocumentLocked(doc)
}

func (e *Engine) indexDocumentLocked(doc document.Document) *document.Stored {
	stored := e.vectorModel.IndexDocument(doc)
	e.matcher.AddWords(e.vectorModel.Tokenizer().SplitWords(stored.IndexedText), stored.ID)
	if e.metrics != nil {
		e.metrics.DocsIndexedTotal.Inc()
	}
	return stored
}

// IndexDocuments ingests docs (reporting 0-50% progress across ingest),
// then runs BuildInvertedLists (reporting 50-100%), matching spec §6's
// combined progress convention for batch indexing. It is cancellable via
// Engine.Cancel while running: the cancellation flag is polled between
// documents and, during the build, between terms of each pass.
func (e *Engine) IndexDocuments(ctx context.Context, docs []document.Document, progress vector.ProgressFunc) error {
	tok := e.beginCancellable()
	defer e.endCancellable()

	e.mu.Lock()
	defer e.mu.Unlock()

	total := len(docs)
	for i, d := range docs {
		if tok.Cancelled() {
			return vector.ErrCancelled
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		e.indexDocumentLocked(d)
		if progress != nil && total > 0 {
			progress((i + 1) * 50 / total)
		}
	}

	return e.buildLocked(ctx, tok, func(pct int) {
		if progress != nil {
			progress(50 + pct/2)
		}
	})
}

// CalculateWeights forces a BuildInvertedLists pass over whatever has been
// indexed so far.
func (e *Engine) CalculateWeights(ctx context.Context, progress vector.ProgressFunc) error {
	tok := e.beginCancellable()
	defer e.endCancellable()

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buildLocked(ctx, tok, progress)
}

func (e *Engine) buildLocked(ctx context.Context, tok *cancel.Token, progress vector.ProgressFunc) error {
	start := time.Now()
	err := e.vectorModel.BuildInvertedLists(ctx, tok, progress)
	if e.metrics != nil {
		e.metrics.BuildPassDuration.WithLabelValues("combined").Observe(time.Since(start).Seconds())
		outcome := "ok"
		if err != nil {
			outcome = "error"
			if pkgerrors.KindOf(err) == pkgerrors.KindCancelled {
				outcome = "cancelled"
			}
		}
		e.metrics.BuildsTotal.WithLabelValues(outcome).Inc()
	}
	return err
}

func (e *Engine) beginCancellable() *cancel.Token {
	tok := cancel.New()
	e.cancelMu.Lock()
	e.currentCancel = tok
	e.cancelMu.Unlock()
	return tok
}

func (e *Engine) endCancellable() {
	e.cancelMu.Lock()
	e.currentCancel = nil
	e.cancelMu.Unlock()
}

// Cancel signals the in-flight IndexDocuments or CalculateWeights call (if
// any) to abort at its next polling point. It is a no-op if no writer
// operation is in flight.
func (e *Engine) Cancel() {
	e.cancelMu.Lock()
	tok := e.currentCancel
	e.cancelMu.Unlock()
	if tok != nil {
		tok.Cancel()
	}
}

// Search runs the two-stage ranking pipeline for req.Text. An empty query
// returns an empty result, not an error.
func (e *Engine) Search(req SearchRequest) ([]pipeline.ScoreEntry, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if strings.TrimSpace(req.Text) == "" {
		return nil, nil
	}

	start := time.Now()
	results, err := e.searchLocked(req)
	if e.metrics != nil {
		e.metrics.SearchLatency.Observe(time.Since(start).Seconds())
		switch {
		case err != nil:
			e.metrics.SearchQueriesTotal.WithLabelValues("error").Inc()
		case len(results) == 0:
			e.metrics.SearchQueriesTotal.WithLabelValues("zero_result").Inc()
		default:
			e.metrics.SearchQueriesTotal.WithLabelValues("hit").Inc()
			e.metrics.SearchResultsCount.Observe(float64(len(results)))
		}
	}
	return results, err
}

func (e *Engine) searchLocked(req SearchRequest) ([]pipeline.ScoreEntry, error) {
	cfg := e.cfg.Pipeline
	if req.MaxResults > 0 {
		cfg.MaxResults = req.MaxResults
	}
	if req.CoverageDepth > 0 {
		cfg.CoverageDepth = req.CoverageDepth
	}
	if req.EnableCoverage != nil {
		cfg.EnableCoverage = *req.EnableCoverage
	}

	if cfg == e.cfg.Pipeline {
		return e.pipeline.Search(req.Text)
	}
	return pipeline.New(e.vectorModel, e.coverage, cfg).Search(req.Text)
}

// GetDocument returns the lowest-numbered segment stored under key.
func (e *Engine) GetDocument(key int64) (*document.Stored, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.vectorModel.Documents().GetByKey(key)
}

// GetDocuments returns every segment stored under key, in segment order.
func (e *Engine) GetDocuments(key int64) []*document.Stored {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.vectorModel.Documents().GetAllByKey(key)
}

// GetStatistics reports index size and build status.
func (e *Engine) GetStatistics() Statistics {
	e.mu.RLock()
	defer e.mu.RUnlock()
	stats := Statistics{
		DocumentCount:     e.vectorModel.Documents().Count(),
		LiveDocumentCount: e.vectorModel.Documents().LiveCount(),
		TermCount:         e.vectorModel.Terms().Count(),
		Built:             e.vectorModel.Built(),
	}
	if e.metrics != nil {
		e.metrics.DocumentCount.Set(float64(stats.LiveDocumentCount))
		e.metrics.TermCount.Set(float64(stats.TermCount))
	}
	return stats
}

// Save writes the current index to path in the stable, byte-exact segment
// format.
func (e *Engine) Save(path string) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return segment.Save(path, e.snapshot())
}

func (e *Engine) snapshot() segment.Snapshot {
	docs := e.vectorModel.Documents().All()
	docRecords := make([]segment.DocumentRecord, 0, len(docs))
	for _, d := range docs {
		docRecords = append(docRecords, segment.DocumentRecord{
			ID:            d.ID,
			Key:           d.Key,
			IndexedText:   d.IndexedText,
			ClientInfo:    d.ClientInfo,
			SegmentNumber: d.SegmentNumber,
			Boundaries:    d.Boundaries,
			Deleted:       d.Deleted,
		})
	}

	terms := e.vectorModel.Terms().AllTerms()
	termRecords := make([]segment.TermRecord, 0, len(terms))
	for _, t := range terms {
		termRecords = append(termRecords, segment.TermRecord{
			Text:              t.Text,
			DocumentFrequency: t.DocumentFrequency,
			Postings:          t.Postings,
		})
	}

	return segment.Snapshot{
		Documents:   docRecords,
		Terms:       termRecords,
		WordMatcher: e.matcher.Snapshot(),
	}
}

// Load reads path and returns a ready-to-query Engine: its inverted index
// is already built (postings were saved post-BuildInvertedLists), so Search
// works immediately without another CalculateWeights call. A corrupt or
// wrong-version file is refused outright; see segment.ErrInvalidFormat.
func Load(path string, cfg Config, norm *normalizer.Normalizer, logger *slog.Logger) (*Engine, error) {
	e, err := New(cfg, norm, logger)
	if err != nil {
		return nil, err
	}

	snap, err := segment.Load(path)
	if err != nil {
		return nil, err
	}

	for _, d := range snap.Documents {
		e.vectorModel.Documents().Restore(&document.Stored{
			ID:            d.ID,
			Key:           d.Key,
			IndexedText:   d.IndexedText,
			ClientInfo:    d.ClientInfo,
			SegmentNumber: d.SegmentNumber,
			Boundaries:    d.Boundaries,
			Deleted:       d.Deleted,
		})
	}
	for _, t := range snap.Terms {
		e.vectorModel.Terms().Restore(t.Text, t.DocumentFrequency, t.Postings)
	}
	e.vectorModel.MarkBuilt()

	if snap.WordMatcher != nil {
		e.matcher.Restore(snap.WordMatcher)
	} else {
		// No persisted WordMatcher dictionaries: rebuild them from the
		// restored documents' indexed text so fuzzy/affix matching still
		// works post-load.
		for _, d := range e.vectorModel.Documents().All() {
			e.matcher.AddWords(e.vectorModel.Tokenizer().SplitWords(d.IndexedText), d.ID)
		}
	}

	return e, nil
}
