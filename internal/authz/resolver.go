package authz

import (
	"context"
	"fmt"
)

// ProfileSource looks up the stored role and tenant for an authenticated
// identity. found=false means no profile exists, which is not an error.
type ProfileSource interface {
	Lookup(ctx context.Context, uid string) (role, tenantID string, found bool, err error)
}

// Resolver turns an authenticated uid into a Principal using the external
// profile store. Pure read, no side effects.
type Resolver struct {
	profiles ProfileSource
}

func NewResolver(profiles ProfileSource) *Resolver {
	return &Resolver{profiles: profiles}
}

// Resolve produces the Principal for uid. A missing profile yields the
// safe default, a tenantless consumer; only a transport failure to the
// profile store is an error.
func (r *Resolver) Resolve(ctx context.Context, uid string) (Principal, error) {
	role, tenantID, found, err := r.profiles.Lookup(ctx, uid)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrResolution, err)
	}
	if !found {
		return Principal{UID: uid, Role: RoleConsumer}, nil
	}
	return NewPrincipal(uid, role, tenantID), nil
}
