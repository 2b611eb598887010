package complaint

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairdesk-io/fairdesk/internal/authz"
)

const complaintColumns = `id, subject, description, status, COALESCE(tenant_id, ''),
	created_by_uid, created_by_email,
	COALESCE(assigned_to_uid, ''), COALESCE(assigned_to_email, ''), COALESCE(assigned_to_name, ''),
	COALESCE(employee_comment, ''), created_at, updated_at`

// Store handles complaint database operations.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new complaint store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func scanComplaint(row pgx.Row) (*Complaint, error) {
	var c Complaint
	err := row.Scan(&c.ID, &c.Subject, &c.Description, &c.Status, &c.TenantID,
		&c.CreatedByUID, &c.CreatedByEmail,
		&c.AssignedToUID, &c.AssignedToEmail, &c.AssignedToName,
		&c.EmployeeComment, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new complaint and returns it with id and timestamps
// filled in.
func (s *Store) Create(ctx context.Context, c *Complaint) (*Complaint, error) {
	created, err := scanComplaint(s.pool.QueryRow(ctx,
		`INSERT INTO complaints (id, subject, description, status, tenant_id, created_by_uid, created_by_email)
		 VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7)
		 RETURNING `+complaintColumns,
		uuid.New().String(), c.Subject, c.Description, c.Status, c.TenantID, c.CreatedByUID, c.CreatedByEmail,
	))
	if err != nil {
		return nil, fmt.Errorf("creating complaint: %w", err)
	}
	return created, nil
}

// GetByID retrieves a complaint by id.
func (s *Store) GetByID(ctx context.Context, id string) (*Complaint, error) {
	c, err := scanComplaint(s.pool.QueryRow(ctx,
		`SELECT `+complaintColumns+` FROM complaints WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting complaint: %w", err)
	}
	return c, nil
}

// Update applies an accepted patch and returns the stored row.
func (s *Store) Update(ctx context.Context, id string, patch Patch) (*Complaint, error) {
	sets := []string{"updated_at = $1"}
	args := []any{patch.UpdatedAt}

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Subject != nil {
		add("subject", *patch.Subject)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if patch.EmployeeComment != nil {
		add("employee_comment", *patch.EmployeeComment)
	}
	if patch.Assignment != nil {
		if patch.Assignment.UID == "" {
			sets = append(sets, "assigned_to_uid = NULL", "assigned_to_email = NULL", "assigned_to_name = NULL")
		} else {
			add("assigned_to_uid", patch.Assignment.UID)
			add("assigned_to_email", patch.Assignment.Email)
			add("assigned_to_name", patch.Assignment.Name)
		}
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE complaints SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), complaintColumns)

	c, err := scanComplaint(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("updating complaint: %w", err)
	}
	return c, nil
}

// Delete removes a complaint.
func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM complaints WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("deleting complaint: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns the complaints inside the scope, newest first.
func (s *Store) List(ctx context.Context, scope authz.Scope) ([]Complaint, error) {
	clause, args := scope.Where(0)
	rows, err := s.pool.Query(ctx,
		`SELECT `+complaintColumns+` FROM complaints WHERE `+clause+` ORDER BY `+authz.Sort,
		args...)
	if err != nil {
		return nil, fmt.Errorf("listing complaints: %w", err)
	}
	defer rows.Close()

	var complaints []Complaint
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning complaint: %w", err)
		}
		complaints = append(complaints, *c)
	}
	return complaints, rows.Err()
}

// Stats are complaint counts by status within one scope.
type Stats struct {
	Total      int64 `json:"total"`
	Open       int64 `json:"open"`
	InProgress int64 `json:"inProgress"`
	Resolved   int64 `json:"resolved"`
}

// CountByStatus computes status counts inside the scope. The scope is
// the same predicate listing uses, so the numbers never reveal records
// the principal could not list.
func (s *Store) CountByStatus(ctx context.Context, scope authz.Scope) (Stats, error) {
	clause, args := scope.Where(0)
	var stats Stats
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE status = 'OPEN'),
		        COUNT(*) FILTER (WHERE status = 'IN_PROGRESS'),
		        COUNT(*) FILTER (WHERE status = 'RESOLVED')
		 FROM complaints WHERE `+clause,
		args...).Scan(&stats.Total, &stats.Open, &stats.InProgress, &stats.Resolved)
	if err != nil {
		return Stats{}, fmt.Errorf("counting complaints: %w", err)
	}
	return stats, nil
}
