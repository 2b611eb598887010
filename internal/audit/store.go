package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists audit events.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// InsertBatch writes a batch of events in a single statement.
func (s *Store) InsertBatch(ctx context.Context, events []Event) error {
	if len(events) == 0 {
		return nil
	}

	values := make([]string, 0, len(events))
	args := make([]any, 0, len(events)*7)
	for i, e := range events {
		base := i * 7
		values = append(values, fmt.Sprintf("($%d, NULLIF($%d, ''), NULLIF($%d, ''), $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7))

		metadata, err := json.Marshal(e.Metadata)
		if err != nil {
			metadata = []byte("{}")
		}
		args = append(args, uuid.New().String(), e.TenantID, e.ActorUID, e.Action,
			e.ResourceType, e.ResourceID, metadata)
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO audit_events (id, tenant_id, actor_uid, action, resource_type, resource_id, metadata) VALUES `+
			strings.Join(values, ", "),
		args...)
	if err != nil {
		return fmt.Errorf("inserting audit events: %w", err)
	}
	return nil
}
