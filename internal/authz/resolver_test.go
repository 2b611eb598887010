package authz_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairdesk-io/fairdesk/internal/authz"
)

type mockProfiles struct {
	role     string
	tenantID string
	found    bool
	err      error
}

func (m *mockProfiles) Lookup(ctx context.Context, uid string) (string, string, bool, error) {
	return m.role, m.tenantID, m.found, m.err
}

func TestResolver_KnownProfile(t *testing.T) {
	r := authz.NewResolver(&mockProfiles{role: "tenantManager", tenantID: "T1", found: true})

	p, err := r.Resolve(context.Background(), "m2")
	require.NoError(t, err)
	assert.Equal(t, authz.Principal{UID: "m2", Role: authz.RoleTenantManager, TenantID: "T1"}, p)
}

func TestResolver_MissingProfileDefaultsToConsumer(t *testing.T) {
	r := authz.NewResolver(&mockProfiles{found: false})

	p, err := r.Resolve(context.Background(), "newcomer")
	require.NoError(t, err, "a missing profile is the default-role case, not an error")
	assert.Equal(t, authz.Principal{UID: "newcomer", Role: authz.RoleConsumer}, p)
}

func TestResolver_UnknownRoleDefaultsToConsumer(t *testing.T) {
	r := authz.NewResolver(&mockProfiles{role: "grand-vizier", tenantID: "T1", found: true})

	p, err := r.Resolve(context.Background(), "u9")
	require.NoError(t, err)
	assert.Equal(t, authz.RoleConsumer, p.Role)
	assert.Equal(t, "T1", p.TenantID)
}

func TestResolver_GlobalRoleDropsTenant(t *testing.T) {
	r := authz.NewResolver(&mockProfiles{role: "admin", tenantID: "T1", found: true})

	p, err := r.Resolve(context.Background(), "g1")
	require.NoError(t, err)
	assert.Equal(t, authz.RoleAdmin, p.Role)
	assert.Empty(t, p.TenantID, "global principals carry no tenant")
}

func TestResolver_TransportFailure(t *testing.T) {
	r := authz.NewResolver(&mockProfiles{err: errors.New("connection refused")})

	_, err := r.Resolve(context.Background(), "u1")
	require.Error(t, err)
	assert.ErrorIs(t, err, authz.ErrResolution)
}
