package processor

import "sync/atomic"

// Token is a one-way cancellation latch shared by the scheduler and every
// worker of a run. Once set it stays set; a new run needs a new Token.
type Token struct {
	set atomic.Bool
}

func NewToken() *Token {
	return &Token{}
}

// Set marks the run as cancelled. Calling it again has no effect.
func (t *Token) Set() {
	t.set.Store(true)
}

// IsSet reports whether Set has been called.
func (t *Token) IsSet() bool {
	return t.set.Load()
}
