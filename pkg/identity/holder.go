package identity

import "sync/atomic"

// Holder is the per-request cell carrying the currently active token. It is
// created by whichever authentication mechanism handles the request and must
// never be shared across requests.
//
// Replacement is a single pointer swap: a concurrent reader on the same
// logical session sees either the old token or the new one, never a
// half-updated state.
type Holder struct {
	active atomic.Pointer[Token]
}

// NewHolder creates a holder with the given initial token. A nil token leaves
// the holder anonymous.
func NewHolder(tok Token) *Holder {
	h := &Holder{}
	if tok != nil {
		h.active.Store(&tok)
	}
	return h
}

// Token returns the active token. Never nil; an empty holder reports
// AnonymousToken.
func (h *Holder) Token() Token {
	if p := h.active.Load(); p != nil {
		return *p
	}
	return &AnonymousToken{}
}

// Replace swaps in a new active token atomically. A nil token resets the
// holder to anonymous.
func (h *Holder) Replace(tok Token) {
	if tok == nil {
		tok = &AnonymousToken{}
	}
	h.active.Store(&tok)
}
