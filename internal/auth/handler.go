package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fairdesk-io/fairdesk/internal/authz"
)

// PrincipalResolver resolves an authenticated uid into a principal.
// *authz.Resolver satisfies it.
type PrincipalResolver interface {
	Resolve(ctx context.Context, uid string) (authz.Principal, error)
}

// Handler serves the dev-mode login endpoint. Real identity providers
// sit in front of this service in production; dev login exists so every
// role in the permission matrix can be exercised end to end.
type Handler struct {
	tokens   *TokenService
	resolver PrincipalResolver
}

func NewHandler(tokens *TokenService, resolver PrincipalResolver) *Handler {
	return &Handler{tokens: tokens, resolver: resolver}
}

// RegisterDevRoutes registers the dev login route. Only call this when
// dev mode is enabled in config.
func (h *Handler) RegisterDevRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /auth/dev-login", h.HandleDevLogin)
}

// HandleDevLogin exchanges a uid for a signed access token after
// resolving the profile. Role and tenant are frozen into the token: this
// is the once-per-session resolution point.
func (h *Handler) HandleDevLogin(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 4<<10)

	var req struct {
		UID   string `json:"uid"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UID == "" {
		writeAuthError(w, http.StatusBadRequest, "uid is required")
		return
	}

	principal, err := h.resolver.Resolve(r.Context(), req.UID)
	if err != nil {
		if errors.Is(err, authz.ErrResolution) {
			writeAuthError(w, http.StatusServiceUnavailable, "profile lookup unavailable")
			return
		}
		writeAuthError(w, http.StatusInternalServerError, "login failed")
		return
	}

	identity := &Identity{
		UID:      principal.UID,
		Email:    req.Email,
		Role:     string(principal.Role),
		TenantID: principal.TenantID,
	}

	token, err := h.tokens.CreateAccessToken(identity)
	if err != nil {
		writeAuthError(w, http.StatusInternalServerError, "login failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"access_token": token,
		"identity":     identity,
	})
}
