package server_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairdesk-io/fairdesk/internal/auth"
	"github.com/fairdesk-io/fairdesk/internal/authz"
	"github.com/fairdesk-io/fairdesk/internal/complaint"
	"github.com/fairdesk-io/fairdesk/internal/platform/server"
	"github.com/fairdesk-io/fairdesk/internal/platform/telemetry"
)

func TestServer_HealthCheck(t *testing.T) {
	srv := server.New(":0", server.Dependencies{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	err := json.Unmarshal(w.Body.Bytes(), &body)
	require.NoError(t, err)
	assert.Equal(t, "ok", body["status"])
}

func TestServer_ReadinessCheck_NoDB(t *testing.T) {
	srv := server.New(":0", server.Dependencies{})

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestServer_StartStop(t *testing.T) {
	srv := server.New("127.0.0.1:0", server.Dependencies{})

	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	// Give server time to start, then cancel
	cancel()

	err := <-errCh
	assert.NoError(t, err)
}

// emptyRepo satisfies complaint.Repository for routing tests.
type emptyRepo struct{}

func (emptyRepo) Create(_ context.Context, c *complaint.Complaint) (*complaint.Complaint, error) {
	return c, nil
}

func (emptyRepo) GetByID(context.Context, string) (*complaint.Complaint, error) {
	return nil, complaint.ErrNotFound
}

func (emptyRepo) Update(context.Context, string, complaint.Patch) (*complaint.Complaint, error) {
	return nil, complaint.ErrNotFound
}

func (emptyRepo) Delete(context.Context, string) error { return complaint.ErrNotFound }

func (emptyRepo) List(context.Context, authz.Scope) ([]complaint.Complaint, error) {
	return nil, nil
}

func (emptyRepo) CountByStatus(context.Context, authz.Scope) (complaint.Stats, error) {
	return complaint.Stats{}, nil
}

type noDirectory struct{}

func (noDirectory) Employee(context.Context, string) (string, string, string, bool, error) {
	return "", "", "", false, nil
}

func newTestDeps() (server.Dependencies, *auth.TokenService) {
	tokenSvc := auth.NewTokenService("test-signing-key-must-be-32-chars!!", "fairdesk", 24)
	handler := complaint.NewHandler(emptyRepo{}, noDirectory{}, nil, nil)
	return server.Dependencies{
		Auth:             tokenSvc,
		ComplaintHandler: handler,
	}, tokenSvc
}

func TestServer_ProtectedRoute_RequiresToken(t *testing.T) {
	deps, _ := newTestDeps()
	srv := server.New(":0", deps)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/complaints", nil)
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestServer_ProtectedRoute_WithToken(t *testing.T) {
	deps, tokenSvc := newTestDeps()
	srv := server.New(":0", deps)

	token, err := tokenSvc.CreateAccessToken(&auth.Identity{
		UID:      "u1",
		Role:     "consumer",
		TenantID: "T1",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/complaints", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestServer_WatchUpgradeThroughMiddleware(t *testing.T) {
	// The watch endpoint must upgrade through the full middleware chain,
	// logging included, exactly as the wired binary serves it.
	deps, tokenSvc := newTestDeps()
	deps.Logger = telemetry.NewLogger("info", "json", io.Discard)
	deps.WatchHandler = complaint.NewWatchHandler(complaint.NewFeed(), emptyRepo{}, tokenSvc)
	srv := server.New(":0", deps)

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	token, err := tokenSvc.CreateAccessToken(&auth.Identity{
		UID:      "u1",
		Role:     "consumer",
		TenantID: "T1",
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, ts.URL+"/api/v1/complaints/watch?access_token="+token, nil)
	require.NoError(t, err, "upgrade must succeed behind the middleware chain")
	defer conn.Close(websocket.StatusNormalClosure, "")

	var snapshot []complaint.Complaint
	require.NoError(t, wsjson.Read(ctx, conn, &snapshot))
	assert.Empty(t, snapshot)
}

func TestServer_DevLoginDisabledByDefault(t *testing.T) {
	deps, _ := newTestDeps()
	deps.AuthHandler = auth.NewHandler(deps.Auth, nil)
	srv := server.New(":0", deps)

	req := httptest.NewRequest(http.MethodPost, "/auth/dev-login", nil)
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	// Without dev mode the route does not exist, so it falls through to
	// the protected mux and fails authentication.
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
