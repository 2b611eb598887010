package audit_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/fairdesk-io/fairdesk/internal/audit"
	"github.com/fairdesk-io/fairdesk/internal/platform/database"
)

func setupTestDB(t *testing.T) (*database.Pool, func()) {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("fairdesk_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2),
		),
	)
	require.NoError(t, err)

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	err = database.RunMigrations(connStr, "file://../../migrations")
	require.NoError(t, err)

	pool, err := database.Connect(ctx, connStr, 5)
	require.NoError(t, err)

	cleanup := func() {
		pool.Close()
		_ = container.Terminate(ctx)
	}

	return pool, cleanup
}

func TestStore_InsertBatch(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := audit.NewStore(pool)
	ctx := context.Background()

	events := []audit.Event{
		{
			TenantID:     "T1",
			ActorUID:     "u1",
			Action:       audit.ActionComplaintCreated,
			ResourceType: "complaint",
			ResourceID:   "c1",
		},
		{
			ActorUID:     "m1", // global actor, no tenant
			Action:       audit.ActionComplaintDeleted,
			ResourceType: "complaint",
			ResourceID:   "c2",
			Metadata:     map[string]any{audit.MetadataStatus: "RESOLVED"},
		},
	}

	require.NoError(t, store.InsertBatch(ctx, events))

	var count int
	err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM audit_events").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	var tenantID *string
	var action, resourceType, resourceID string
	err = pool.QueryRow(ctx,
		"SELECT tenant_id, action, resource_type, resource_id FROM audit_events WHERE actor_uid = 'm1'").
		Scan(&tenantID, &action, &resourceType, &resourceID)
	require.NoError(t, err)
	assert.Nil(t, tenantID, "empty tenant is stored as NULL")
	assert.Equal(t, audit.ActionComplaintDeleted, action)
	assert.Equal(t, "complaint", resourceType)
	assert.Equal(t, "c2", resourceID)
}

func TestStore_InsertBatch_Empty(t *testing.T) {
	store := audit.NewStore(nil)
	assert.NoError(t, store.InsertBatch(context.Background(), nil))
}
