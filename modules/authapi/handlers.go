package authapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/tenantkit/tenantkit/pkg/authn"
	"github.com/tenantkit/tenantkit/pkg/identity"
)

type handlers struct {
	svc Services
	log *slog.Logger
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type identityResponse struct {
	UserID   string   `json:"user_id,omitempty"`
	Email    string   `json:"email,omitempty"`
	TenantID string   `json:"tenant_id"`
	Roles    []string `json:"roles"`
}

// login authenticates email/password credentials and installs the resulting
// token in the request's identity holder. Failures answer 401 with a generic
// body; the reason is logged, never returned.
func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tok, err := h.svc.Password.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, authn.ErrBadCredentials),
			errors.Is(err, authn.ErrUserNotFound),
			errors.Is(err, authn.ErrEmailNotVerified),
			errors.Is(err, authn.ErrNoTenantFound),
			errors.Is(err, authn.ErrNoRolesFound):
			h.log.WarnContext(r.Context(), "login failed", slog.String("email", req.Email), slog.Any("error", err))
			writeError(w, http.StatusUnauthorized, "authentication failed")
		default:
			h.log.ErrorContext(r.Context(), "login error", slog.Any("error", err))
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	if holder, ok := identity.HolderFromContext(r.Context()); ok {
		holder.Replace(tok)
	}

	writeJSON(w, http.StatusOK, identityResponse{
		UserID:   tok.User.ID.String(),
		Email:    tok.User.Email,
		TenantID: tok.Tenant.ID.String(),
		Roles:    identity.GrantedRoles(r.Context()),
	})
}

// oauthStart redirects the user to the provider authorization page with a
// freshly issued state token.
func (h *handlers) oauthStart(flow *authn.OAuth2Flow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		url, err := flow.Start(r.Context())
		if err != nil {
			h.log.ErrorContext(r.Context(), "oauth start error",
				slog.String("provider", flow.ProviderID()), slog.Any("error", err))
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		http.Redirect(w, r, url, http.StatusFound)
	}
}

// oauthCallback completes a federated login: the state is consumed, the code
// exchanged, and the provider email matched to a local user. Failures answer
// 401 with a generic body just like password login; the reason is logged.
func (h *handlers) oauthCallback(flow *authn.OAuth2Flow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		state := r.URL.Query().Get("state")

		tok, err := flow.Callback(r.Context(), code, state)
		if err != nil {
			switch {
			case errors.Is(err, authn.ErrInvalidState),
				errors.Is(err, authn.ErrInvalidCode),
				errors.Is(err, authn.ErrOAuth2EmailNotProvided),
				errors.Is(err, authn.ErrUserNotFound),
				errors.Is(err, authn.ErrNoTenantFound),
				errors.Is(err, authn.ErrNoRolesFound):
				h.log.WarnContext(r.Context(), "oauth login failed",
					slog.String("provider", flow.ProviderID()), slog.Any("error", err))
				writeError(w, http.StatusUnauthorized, "authentication failed")
			default:
				h.log.ErrorContext(r.Context(), "oauth callback error",
					slog.String("provider", flow.ProviderID()), slog.Any("error", err))
				writeError(w, http.StatusInternalServerError, "internal error")
			}
			return
		}

		if holder, ok := identity.HolderFromContext(r.Context()); ok {
			holder.Replace(tok)
		}

		writeJSON(w, http.StatusOK, identityResponse{
			UserID:   tok.User.ID.String(),
			Email:    tok.User.Email,
			TenantID: tok.Tenant.ID.String(),
			Roles:    identity.GrantedRoles(r.Context()),
		})
	}
}

type switchRequest struct {
	TenantID string `json:"tenant_id"`
}

// switchTenant re-derives the active token for another tenant the user
// belongs to. Not being a member answers 403 and changes nothing.
func (h *handlers) switchTenant(w http.ResponseWriter, r *http.Request) {
	var req switchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	tenantID, err := uuid.Parse(req.TenantID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid tenant id")
		return
	}

	result, err := h.svc.Switcher.Switch(r.Context(), tenantID)
	if err != nil {
		if errors.Is(err, identity.ErrNoAuthenticatedUser) {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		h.log.ErrorContext(r.Context(), "tenant switch error", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if result == authn.SwitchNotAllowed {
		writeError(w, http.StatusForbidden, "not a member of the requested tenant")
		return
	}

	writeJSON(w, http.StatusOK, identityResponse{
		TenantID: tenantID.String(),
		Roles:    identity.GrantedRoles(r.Context()),
	})
}

type apiKeyResponse struct {
	Key       string `json:"key"`
	CreatedAt string `json:"created_at"`
}

func (h *handlers) getOrCreateAPIKey(w http.ResponseWriter, r *http.Request) {
	key, err := h.svc.APIKeys.GetOrCreate(r.Context())
	if err != nil {
		h.writeAPIKeyError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, apiKeyResponse{Key: key.Key, CreatedAt: key.CreatedAt.Format(timeFormat)})
}

func (h *handlers) resetAPIKey(w http.ResponseWriter, r *http.Request) {
	key, err := h.svc.APIKeys.Reset(r.Context())
	if err != nil {
		h.writeAPIKeyError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, apiKeyResponse{Key: key.Key, CreatedAt: key.CreatedAt.Format(timeFormat)})
}

func (h *handlers) writeAPIKeyError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, authn.ErrNoAuthenticatedTenant):
		writeError(w, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, authn.ErrOperationDenied):
		writeError(w, http.StatusForbidden, "operation denied")
	default:
		h.log.ErrorContext(r.Context(), "api key operation failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

const timeFormat = "2006-01-02T15:04:05Z07:00"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
