// Package coverage implements CoverageEngine, the Stage 2 lexical
// re-matching pass: for each query word, try exact, fuzzy (LD<=1), joined
// or split, prefix/suffix, and LCS matching in that priority order, and
// fuse the per-word results into a single coverage byte score plus a
// diagnostic word-hit count.
package coverage

import (
	"math"
	"strings"

	"github.com/infidex/infidex/internal/bitparallel"
	"github.com/infidex/infidex/internal/tokenizer"
	"github.com/infidex/infidex/internal/wordmatch"
)

// orderBonusPerHit is the small additive reward for each query word whose
// matched position in the candidate's word sequence is non-decreasing
// relative to the previous query word's matched position.
const orderBonusPerHit = 3

// Config carries the coverage depth setting. Engine does not read it; the
// number of Stage 1 candidates Stage 2 is applied to is set by
// pipeline.Config.CoverageDepth.
type Config struct {
	Depth int
}

// DefaultConfig matches spec §6: coverage_depth = 500.
func DefaultConfig() Config {
	return Config{Depth: 500}
}

// Engine is the Stage 2 lexical rescorer. It shares a WordMatcher (for
// fuzzy/affix lookups) and a Tokenizer (for splitting a candidate's indexed
// text into words on the same delimiter set WordMatcher was populated with).
type Engine struct {
	matcher *wordmatch.Matcher
	tok     *tokenizer.Tokenizer
}

// New creates a coverage Engine over the given WordMatcher and Tokenizer.
func New(matcher *wordmatch.Matcher, tok *tokenizer.Tokenizer) *Engine {
	return &Engine{matcher: matcher, tok: tok}
}

// Score computes the Stage 2 byte score and word-hit count for one
// candidate document. queryWords is the query's word list in original
// order (not deduplicated: repeated query words are scored once per
// occurrence, matching spec's "per successive q_j" framing). docID
// identifies the candidate for WordMatcher lookups; indexedText is the
// candidate's concatenated field text.
func (e *Engine) Score(queryWords []string, docID int32, indexedText string) (score uint8, wordHits int) {
	totalChars := 0
	for _, w := range queryWords {
		totalChars += len([]rune(w))
	}
	if totalChars == 0 {
		return 0, 0
	}

	docWords := e.tok.SplitWords(indexedText)
	docConcat := strings.Join(docWords, "")
	positions := make(map[string][]int, len(docWords))
	for i, w := range docWords {
		positions[w] = append(positions[w], i)
	}
	docWordSet := make(map[string]struct{}, len(positions))
	distinctDocWords := make([]string, 0, len(positions))
	for w := range positions {
		docWordSet[w] = struct{}{}
		distinctDocWords = append(distinctDocWords, w)
	}

	matchedChars := 0
	orderBonus := 0
	lastPos := -1

	for j, qw := range queryWords {
		chars, pos, ok := e.matchWord(qw, j, queryWords, docID, docWordSet, positions, docConcat, distinctDocWords)
		if !ok {
			continue
		}
		wordHits++
		matchedChars += chars
		if pos >= 0 {
			if pos >= lastPos {
				orderBonus += orderBonusPerHit
			}
			lastPos = pos
		}
	}

	if matchedChars > totalChars {
		matchedChars = totalChars
	}
	base := int(math.Round(255 * float64(matchedChars) / float64(totalChars)))
	total := base + orderBonus
	if total > 255 {
		total = 255
	}
	if total < 0 {
		total = 0
	}
	return uint8(total), wordHits
}

// matchWord runs the five-algorithm priority chain for one query word at
// index j. It returns the character contribution, the matched position in
// the candidate's word sequence (-1 if the algorithm has no notion of
// position), and whether any algorithm matched.
func (e *Engine) matchWord(
	qw string,
	j int,
	queryWords []string,
	docID int32,
	docWordSet map[string]struct{},
	positions map[string][]int,
	docConcat string,
	distinctDocWords []string,
) (chars int, pos int, ok bool) {
	qlen := len([]rune(qw))

	// 1. Exact. The order bonus only needs a representative position, so
	// the word's first occurrence in the candidate stands in for it.
	if ps, found := positions[qw]; found {
		return qlen, ps[0], true
	}

	// 2. Fuzzy, edit distance <= 1.
	if e.matcher.MatchesExactOrLD1(qw, docID) {
		return qlen - 1, -1, true
	}

	// 3. Joined (this word + the next, concatenated, found in the
	// candidate's delimiter-stripped text) or split (this word split at
	// every interior position, both halves present as candidate words).
	if j+1 < len(queryWords) {
		joined := qw + queryWords[j+1]
		if joined != "" && strings.Contains(docConcat, joined) {
			return qlen, -1, true
		}
	}
	runes := []rune(qw)
	for splitAt := 1; splitAt < len(runes); splitAt++ {
		left, right := string(runes[:splitAt]), string(runes[splitAt:])
		_, leftOK := docWordSet[left]
		_, rightOK := docWordSet[right]
		if leftOK && rightOK {
			return qlen, -1, true
		}
	}

	// 4. Prefix/suffix.
	if matchedLen, found := e.matcher.MatchAffix(qw, docID); found {
		if matchedLen > qlen {
			matchedLen = qlen
		}
		return matchedLen, -1, true
	}

	// 5. LCS fallback against every distinct candidate word.
	best := 0
	for _, dw := range distinctDocWords {
		l := bitparallel.PackedLCS([]string{qw}, dw)[0]
		if l > best {
			best = l
		}
	}
	if best > 0 {
		return best, -1, true
	}

	return 0, -1, false
}
