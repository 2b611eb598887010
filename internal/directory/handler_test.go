package directory_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairdesk-io/fairdesk/internal/auth"
	"github.com/fairdesk-io/fairdesk/internal/directory"
)

type fakeLister struct {
	gotTenant string
	employees []directory.Profile
}

func (f *fakeLister) ListEmployees(_ context.Context, tenantID string) ([]directory.Profile, error) {
	f.gotTenant = tenantID
	return f.employees, nil
}

func doList(t *testing.T, lister *fakeLister, identity *auth.Identity) *httptest.ResponseRecorder {
	t.Helper()

	mux := http.NewServeMux()
	directory.NewHandler(lister).RegisterRoutes(mux)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/directory/employees", nil)
	if identity != nil {
		req = req.WithContext(auth.WithIdentity(req.Context(), identity))
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHandleListEmployees_GlobalRoleSeesAll(t *testing.T) {
	lister := &fakeLister{employees: []directory.Profile{{UID: "e1"}, {UID: "e2"}}}

	rec := doList(t, lister, &auth.Identity{UID: "m1", Role: "manager", TokenType: "access"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, lister.gotTenant, "global roles get the unfiltered directory")

	var got []directory.Profile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got, 2)
}

func TestHandleListEmployees_TenantManagerFiltered(t *testing.T) {
	lister := &fakeLister{}

	rec := doList(t, lister, &auth.Identity{UID: "tm1", Role: "tenantManager", TenantID: "T1", TokenType: "access"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "T1", lister.gotTenant)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestHandleListEmployees_Forbidden(t *testing.T) {
	for _, identity := range []*auth.Identity{
		{UID: "u1", Role: "consumer", TenantID: "T1", TokenType: "access"},
		{UID: "e1", Role: "employee", TenantID: "T1", TokenType: "access"},
		{UID: "tm1", Role: "tenantManager", TokenType: "access"}, // no tenant, no rights
	} {
		rec := doList(t, &fakeLister{}, identity)
		assert.Equal(t, http.StatusForbidden, rec.Code, "role %s", identity.Role)
	}
}

func TestHandleListEmployees_Unauthenticated(t *testing.T) {
	rec := doList(t, &fakeLister{}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
