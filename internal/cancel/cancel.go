// Package cancel implements the pollable cancellation flag the indexing and
// build loops check between iterations (queries do not poll it), as an
// alternative to
// context.Context's channel-based cancellation: a single atomic load per
// term/document is cheap enough to call on every loop iteration, where a
// select on ctx.Done() is not.
package cancel

import "sync/atomic"

// Token is a one-shot cancellation flag. The zero value is usable.
type Token struct {
	flag atomic.Bool
}

// New returns a fresh, uncancelled Token.
func New() *Token {
	return &Token{}
}

// Cancel sets the flag. Safe to call more than once or concurrently with
// Cancelled.
func (t *Token) Cancel() {
	t.flag.Store(true)
}

// Cancelled reports whether Cancel has been called.
func (t *Token) Cancelled() bool {
	return t.flag.Load()
}
