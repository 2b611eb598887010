package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const profileColumns = `uid, role, COALESCE(tenant_id, ''), email,
	COALESCE(first_name, ''), COALESCE(last_name, ''), created_at`

// Store handles profile database operations.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new profile store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func scanProfile(row pgx.Row) (*Profile, error) {
	var p Profile
	err := row.Scan(&p.UID, &p.Role, &p.TenantID, &p.Email, &p.FirstName, &p.LastName, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByUID retrieves a profile.
func (s *Store) GetByUID(ctx context.Context, uid string) (*Profile, error) {
	p, err := scanProfile(s.pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE uid = $1`, uid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("getting profile: %w", err)
	}
	return p, nil
}

// Lookup implements authz.ProfileSource: a missing profile is reported
// through found, not as an error.
func (s *Store) Lookup(ctx context.Context, uid string) (role, tenantID string, found bool, err error) {
	p, err := s.GetByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return "", "", false, nil
		}
		return "", "", false, err
	}
	return p.Role, p.TenantID, true, nil
}

// Employee returns the assignment details for uid if it names an
// employee profile. found=false covers both a missing profile and a
// profile with a different role.
func (s *Store) Employee(ctx context.Context, uid string) (email, name, tenantID string, found bool, err error) {
	p, err := s.GetByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return "", "", "", false, nil
		}
		return "", "", "", false, err
	}
	if p.Role != "employee" {
		return "", "", "", false, nil
	}
	return p.Email, p.DisplayName(), p.TenantID, true, nil
}

// ListEmployees returns employee profiles, tenant-filtered when tenantID
// is non-empty.
func (s *Store) ListEmployees(ctx context.Context, tenantID string) ([]Profile, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+profileColumns+` FROM profiles
		 WHERE role = 'employee' AND ($1 = '' OR tenant_id = $1)
		 ORDER BY last_name, first_name`,
		tenantID)
	if err != nil {
		return nil, fmt.Errorf("listing employees: %w", err)
	}
	defer rows.Close()

	var employees []Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning profile: %w", err)
		}
		employees = append(employees, *p)
	}
	return employees, rows.Err()
}
