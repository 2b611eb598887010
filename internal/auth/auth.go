// Package auth issues and validates session tokens. Authentication
// proper (who the principal is) ends here; everything about what a
// principal may do lives in internal/authz.
package auth

import (
	"context"
	"errors"

	"github.com/fairdesk-io/fairdesk/internal/authz"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// Identity is the resolved principal a session token carries. Role and
// tenant are resolved once at login; a role change requires logging in
// again.
type Identity struct {
	UID       string `json:"uid"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	TenantID  string `json:"tenant_id,omitempty"`
	TokenType string `json:"token_type"` // "access"
}

// Principal converts the session identity into the immutable value the
// authorization engine consumes.
func (id *Identity) Principal() authz.Principal {
	return authz.NewPrincipal(id.UID, id.Role, id.TenantID)
}

type identityContextKey struct{}

// WithIdentity returns a context carrying the identity.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// GetIdentity retrieves the authenticated identity from the request
// context, or nil.
func GetIdentity(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityContextKey{}).(*Identity)
	return id
}
