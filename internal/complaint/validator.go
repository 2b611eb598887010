package complaint

import (
	"strings"
	"time"

	"github.com/fairdesk-io/fairdesk/internal/authz"
)

// Assignment is a requested change to the assignee. An empty UID clears
// the assignment; email and name travel with the uid so listings need no
// directory join.
type Assignment struct {
	UID   string
	Email string
	Name  string
}

// UpdateRequest is a partial mutation. Nil fields were not submitted.
// Submitted fields that match the current value are treated as carried,
// not requested: idempotent resubmission of unchanged values must never
// be rejected, even when the caller could not change that field.
type UpdateRequest struct {
	Subject         *string
	Description     *string
	Status          *Status
	EmployeeComment *string
	Assignment      *Assignment
}

// Patch is the set of accepted field writes. Nil fields are untouched.
// UpdatedAt is always set by the validator, never taken from the caller.
type Patch struct {
	Subject         *string
	Description     *string
	Status          *Status
	EmployeeComment *string
	Assignment      *Assignment
	UpdatedAt       time.Time
}

// HasChanges reports whether the patch writes anything beyond the
// UpdatedAt refresh.
func (p Patch) HasChanges() bool {
	return p.Subject != nil || p.Description != nil || p.Status != nil ||
		p.EmployeeComment != nil || p.Assignment != nil
}

// ApplyUpdate validates one mutation against the permission matrix and
// the lifecycle rules and produces the patch to persist.
//
// The check is atomic over actual changes: every submitted field that
// differs from the stored value needs its capability, and one missing
// capability rejects the whole request with the full missing set. A
// principal without view gets the same denial as one missing a write
// capability; distinguishing the two is the caller's concern.
func ApplyUpdate(p authz.Principal, c *Complaint, req UpdateRequest, now time.Time) (Patch, error) {
	caps := authz.Capabilities(p, c.Resource())
	if !caps.Has(authz.CapView) {
		return Patch{}, &authz.PermissionError{Missing: authz.CapabilitySet(authz.CapView)}
	}

	var (
		patch     Patch
		want      authz.CapabilitySet
		invalid   []string
		badStatus error
	)

	if req.Subject != nil {
		subject := strings.TrimSpace(*req.Subject)
		if subject != c.Subject {
			if subject == "" {
				invalid = append(invalid, "subject")
			}
			want = want.With(authz.CapEditFields)
			patch.Subject = &subject
		}
	}
	if req.Description != nil {
		description := strings.TrimSpace(*req.Description)
		if description != c.Description {
			if description == "" {
				invalid = append(invalid, "description")
			}
			want = want.With(authz.CapEditFields)
			patch.Description = &description
		}
	}
	if req.Status != nil && *req.Status != c.Status {
		if _, err := ParseStatus(string(*req.Status)); err != nil {
			badStatus = err
		}
		want = want.With(authz.CapEditStatus)
		patch.Status = req.Status
	}
	if req.EmployeeComment != nil {
		comment := strings.TrimSpace(*req.EmployeeComment)
		if comment != c.EmployeeComment {
			want = want.With(authz.CapEditComment)
			patch.EmployeeComment = &comment
		}
	}
	if req.Assignment != nil && req.Assignment.UID != c.AssignedToUID {
		want = want.With(authz.CapAssign)
		patch.Assignment = req.Assignment
	}

	// Capability first: a denied principal learns nothing about which
	// values would have been accepted.
	if err := authz.Require(caps, want); err != nil {
		return Patch{}, err
	}
	if badStatus != nil {
		return Patch{}, badStatus
	}
	if len(invalid) > 0 {
		return Patch{}, &ValidationError{Fields: invalid}
	}

	patch.UpdatedAt = now
	return patch, nil
}
