package authn

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/tenantkit/tenantkit/pkg/identity"
)

// APIKeyHeader is the inbound header carrying the tenant API key.
const APIKeyHeader = "X-API-Key"

// WithIdentityHolder makes sure the request carries an active-identity holder
// so downstream authenticators and the tenant switcher have a cell to write
// to. A holder installed upstream (a host's session layer authenticating the
// user before this router runs) is reused, identity and all; a fresh anonymous
// holder is installed only when none is present. Mount it before any
// authentication middleware.
func WithIdentityHolder(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := identity.HolderFromContext(r.Context()); !ok {
			r = r.WithContext(identity.WithHolder(r.Context(), identity.NewHolder(nil)))
		}
		next.ServeHTTP(w, r)
	})
}

// APIKeyMiddleware authenticates requests that carry the X-API-Key header.
// A resolvable key installs an API key token in the holder; a missing or
// invalid key leaves the request unauthenticated and lets the authorization
// layer answer 401.
func APIKeyMiddleware(auth *APIKeyAuthenticator, log *slog.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if _, ok := identity.HolderFromContext(ctx); !ok {
				ctx = identity.WithHolder(ctx, identity.NewHolder(nil))
				r = r.WithContext(ctx)
			}

			if key := r.Header.Get(APIKeyHeader); key != "" {
				tok, err := auth.Authenticate(ctx, key)
				switch {
				case err == nil:
					holder, _ := identity.HolderFromContext(ctx)
					holder.Replace(tok)
					log.DebugContext(ctx, "authenticated api request", slog.String("tenant_id", tok.Tenant.ID.String()))
				case errors.Is(err, ErrInvalidAPIKey):
					log.DebugContext(ctx, "invalid api key", slog.String("path", r.URL.Path))
				default:
					log.ErrorContext(ctx, "api key resolution failed", slog.Any("error", err))
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuthenticated rejects requests whose active token resolves neither a
// user nor a tenant. The 401 body is structured and carries no internal
// detail.
func RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !isAuthenticated(r) {
			writeUnauthorized(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isAuthenticated(r *http.Request) bool {
	switch identity.TokenFromContext(r.Context()).(type) {
	case *identity.PasswordToken, *identity.OAuth2Token, *identity.APIKeyToken:
		return true
	default:
		return false
	}
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
}
