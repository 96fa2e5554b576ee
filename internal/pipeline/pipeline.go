// Package pipeline implements SearchPipeline: it selects Stage 1's top
// candidates by bucket sort, rescoring each with Stage 2's CoverageEngine,
// fuses the two scores by pointwise max, and bucket-sorts once more to
// produce the final ranked results.
package pipeline

import (
	"golang.org/x/sync/singleflight"

	"github.com/infidex/infidex/internal/coverage"
	"github.com/infidex/infidex/internal/quantize"
	"github.com/infidex/infidex/internal/vector"
)

// ScoreEntry is one ranked result: a fused byte score and the caller-facing
// document key (never the internal id).
type ScoreEntry struct {
	Score       uint8
	DocumentKey int64
}

// Config controls how many Stage 1 candidates feed Stage 2 and how many
// final results are returned.
type Config struct {
	CoverageDepth  int
	MaxResults     int
	EnableCoverage bool
}

// DefaultConfig matches spec §6: coverage enabled, depth 500.
func DefaultConfig() Config {
	return Config{CoverageDepth: 500, MaxResults: 50, EnableCoverage: true}
}

// Pipeline wires a Stage 1 vector.Model and a Stage 2 coverage.Engine
// together. Concurrent calls to Search for the identical query text are
// deduplicated via singleflight, so a burst of repeated queries against an
// unchanged index snapshot pays for the work once.
type Pipeline struct {
	vectorModel    *vector.Model
	coverageEngine *coverage.Engine
	cfg            Config

	group singleflight.Group
}

// New creates a Pipeline over the given Stage 1 model and Stage 2 engine.
func New(vectorModel *vector.Model, coverageEngine *coverage.Engine, cfg Config) *Pipeline {
	return &Pipeline{vectorModel: vectorModel, coverageEngine: coverageEngine, cfg: cfg}
}

// Search runs the full two-stage pipeline for queryText and returns up to
// MaxResults fused, ranked ScoreEntry values.
func (p *Pipeline) Search(queryText string) ([]ScoreEntry, error) {
	v, err, _ := p.group.Do(queryText, func() (any, error) {
		return p.search(queryText)
	})
	if err != nil {
		return nil, err
	}
	return v.([]ScoreEntry), nil
}

func (p *Pipeline) search(queryText string) ([]ScoreEntry, error) {
	stage1, err := p.vectorModel.Search(queryText, p.cfg.CoverageDepth)
	if err != nil {
		return nil, err
	}
	if len(stage1) == 0 {
		return nil, nil
	}

	fused := stage1
	if p.cfg.EnableCoverage {
		queryWords := p.vectorModel.Tokenizer().SplitWords(queryText)
		fused = make([]quantize.ScoredID, 0, len(stage1))
		for _, candidate := range stage1 {
			doc, ok := p.vectorModel.Documents().Get(candidate.ID)
			if !ok || doc.Deleted {
				continue
			}
			stage2Score, _ := p.coverageEngine.Score(queryWords, candidate.ID, doc.IndexedText)
			final := candidate.Score
			if stage2Score > final {
				final = stage2Score
			}
			fused = append(fused, quantize.ScoredID{ID: candidate.ID, Score: final})
		}
	}

	top := quantize.BucketSort(fused, p.cfg.MaxResults)
	out := make([]ScoreEntry, 0, len(top))
	for _, s := range top {
		doc, ok := p.vectorModel.Documents().Get(s.ID)
		if !ok {
			continue
		}
		out = append(out, ScoreEntry{Score: s.Score, DocumentKey: doc.Key})
	}
	return out, nil
}
