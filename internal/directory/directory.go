// Package directory is the profile store boundary: it resolves uids to
// stored roles and tenants, and projects employees for the assignment
// picker. It is not authoritative for authorization — a complaint's own
// assignedToUid is.
package directory

import (
	"errors"
	"time"
)

var ErrProfileNotFound = errors.New("profile not found")

// Profile is a stored account profile.
type Profile struct {
	UID       string    `json:"uid"`
	Role      string    `json:"role"`
	TenantID  string    `json:"tenantId,omitempty"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	CreatedAt time.Time `json:"createdAt"`
}

// DisplayName is the name shown on assignments and listings.
func (p *Profile) DisplayName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	default:
		return p.FirstName + " " + p.LastName
	}
}
