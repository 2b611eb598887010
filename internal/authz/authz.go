// Package authz is the authorization and visibility-scoping engine.
//
// Every decision is a pure function of a Principal (who is asking), a
// Resource (the relational facts of the complaint being asked about) and
// the requested action. The engine holds no state between calls, never
// retries, and never logs; callers translate its errors into transport
// responses.
package authz

import "errors"

var (
	// ErrResolution indicates the profile store could not be reached.
	// A missing profile is not a resolution error.
	ErrResolution = errors.New("principal resolution failed")

	// ErrPermissionDenied indicates the principal lacks a capability
	// required by the requested action.
	ErrPermissionDenied = errors.New("permission denied")
)

// Resource carries the fields of a complaint that authorization decisions
// depend on. It is deliberately smaller than the full complaint record so
// the engine stays decoupled from storage concerns.
type Resource struct {
	TenantID      string
	CreatedByUID  string
	AssignedToUID string
}
