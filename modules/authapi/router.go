// Package authapi wires the authentication endpoints and middleware chain:
// password login, tenant switching, and API-key-protected API routes.
package authapi

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tenantkit/tenantkit/pkg/authn"
)

// Services carries the authentication services the router mounts. Log is
// optional.
type Services struct {
	Password   *authn.PasswordAuthenticator
	OAuthFlows []*authn.OAuth2Flow
	Switcher   *authn.TenantSwitcher
	APIKeys    *authn.APIKeyService
	APIKeyAuth *authn.APIKeyAuthenticator
	Log        *slog.Logger
}

// Router builds the authentication router.
//
// Every request gets a fresh active-identity holder before any other
// middleware runs, so authentication mechanisms and the tenant switcher share
// one per-request cell. API routes authenticate via the X-API-Key header and
// reject unauthenticated requests with 401 before any handler (and therefore
// any database access) runs.
func Router(svc Services) chi.Router {
	log := svc.Log
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	h := &handlers{svc: svc, log: log}

	r := chi.NewRouter()
	r.Use(authn.WithIdentityHolder)

	r.Post("/auth/login", h.login)

	for _, flow := range svc.OAuthFlows {
		r.Get("/auth/oauth/"+flow.ProviderID(), h.oauthStart(flow))
		r.Get("/auth/oauth/"+flow.ProviderID()+"/callback", h.oauthCallback(flow))
	}

	r.Group(func(api chi.Router) {
		api.Use(authn.APIKeyMiddleware(svc.APIKeyAuth, log))
		api.Use(authn.RequireAuthenticated)

		api.Post("/tenant/switch", h.switchTenant)
		api.Get("/tenant/api-key", h.getOrCreateAPIKey)
		api.Post("/tenant/api-key/reset", h.resetAPIKey)
	})

	return r
}

// Protect wraps an arbitrary handler with the API authentication chain, for
// mounting resource routers behind API key auth.
func Protect(auth *authn.APIKeyAuthenticator, log *slog.Logger, next http.Handler) http.Handler {
	return authn.WithIdentityHolder(
		authn.APIKeyMiddleware(auth, log)(
			authn.RequireAuthenticated(next)))
}
