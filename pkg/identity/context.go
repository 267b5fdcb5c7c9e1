package identity

import (
	"context"
	"log/slog"
)

// holderCtxKey is a private type to prevent collisions with other context keys.
type holderCtxKey struct{}

// WithHolder attaches an active-identity holder to the context. The same
// holder is visible to everything downstream of the request middleware, so a
// tenant switch mid-request is observed by later database acquisitions.
func WithHolder(ctx context.Context, h *Holder) context.Context {
	return context.WithValue(ctx, holderCtxKey{}, h)
}

// HolderFromContext retrieves the active-identity holder from the context.
// Returns nil, false if no holder is present.
func HolderFromContext(ctx context.Context) (*Holder, bool) {
	h, ok := ctx.Value(holderCtxKey{}).(*Holder)
	return h, ok
}

// WithToken installs a fresh holder carrying the given token. Convenience for
// tests and for authentication mechanisms that never re-authenticate
// mid-request.
func WithToken(ctx context.Context, tok Token) context.Context {
	return WithHolder(ctx, NewHolder(tok))
}

// TokenFromContext returns the active token for the request. Never nil; a
// context without a holder reports AnonymousToken.
func TokenFromContext(ctx context.Context) Token {
	if h, ok := HolderFromContext(ctx); ok {
		return h.Token()
	}
	return &AnonymousToken{}
}

// TenantLoggerExtractor returns a logger context extractor that injects the
// current tenant id into log records when one is resolved.
func TenantLoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if tenant, ok := CurrentTenant(ctx); ok {
			return slog.String("tenant_id", tenant.ID.String()), true
		}
		return slog.Attr{}, false
	}
}

// UserLoggerExtractor returns a logger context extractor that injects the
// current user id into log records when one is resolved.
func UserLoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if user, err := CurrentUser(ctx); err == nil {
			return slog.String("user_id", user.ID.String()), true
		}
		return slog.Attr{}, false
	}
}
