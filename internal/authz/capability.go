package authz

import (
	"fmt"
	"strings"
)

// Capability is one discrete permitted action on a specific complaint for
// a specific principal.
type Capability uint8

const (
	CapView Capability = 1 << iota
	CapEditFields
	CapEditStatus
	CapEditComment
	CapAssign
	CapDelete
)

var capNames = []struct {
	cap  Capability
	name string
}{
	{CapView, "view"},
	{CapEditFields, "edit_fields"},
	{CapEditStatus, "edit_status"},
	{CapEditComment, "edit_comment"},
	{CapAssign, "assign"},
	{CapDelete, "delete"},
}

func (c Capability) String() string {
	for _, n := range capNames {
		if n.cap == c {
			return n.name
		}
	}
	return fmt.Sprintf("capability(%d)", uint8(c))
}

// CapabilitySet is a set of capabilities.
type CapabilitySet uint8

// ManagementCapabilities is the full set granted by management rights.
const ManagementCapabilities = CapabilitySet(CapView | CapEditFields | CapEditStatus | CapEditComment | CapAssign | CapDelete)

func (s CapabilitySet) Has(c Capability) bool { return s&CapabilitySet(c) != 0 }

// With returns s with c added.
func (s CapabilitySet) With(c Capability) CapabilitySet { return s | CapabilitySet(c) }

// Missing returns the capabilities in want that are absent from s.
func (s CapabilitySet) Missing(want CapabilitySet) CapabilitySet { return want &^ s }

// IsEmpty reports whether no capability is held.
func (s CapabilitySet) IsEmpty() bool { return s == 0 }

// Names returns the sorted capability names in the set, for error
// messages and audit metadata.
func (s CapabilitySet) Names() []string {
	var names []string
	for _, n := range capNames {
		if s.Has(n.cap) {
			names = append(names, n.name)
		}
	}
	return names
}

func (s CapabilitySet) String() string {
	return strings.Join(s.Names(), ",")
}

// Capabilities evaluates the permission matrix for one principal and one
// complaint. Deterministic, total, side-effect-free.
//
// Ownership grants content edit but never status or comment: status is a
// workflow fact owned by staff. Assignment grants the assignee status and
// comment edit but never content edit or re-assignment. Only management
// rights grant assign and delete, and a tenant manager's management
// rights require a tenant match, so a manager of tenant A holds zero
// capabilities on a tenant-B complaint.
func Capabilities(p Principal, r Resource) CapabilitySet {
	if HasManagementRights(p, r) {
		return ManagementCapabilities
	}

	var set CapabilitySet
	if IsOwner(p, r) {
		set = set.With(CapView).With(CapEditFields)
	}
	if IsAssignedEmployee(p, r) {
		set = set.With(CapView).With(CapEditStatus).With(CapEditComment)
	}
	return set
}

// PermissionError reports the exact capabilities a denied request was
// missing, so the caller can render a precise message. It unwraps to
// ErrPermissionDenied.
type PermissionError struct {
	Missing CapabilitySet
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: missing %s", e.Missing)
}

func (e *PermissionError) Unwrap() error { return ErrPermissionDenied }

// Require checks that held covers every capability in want. The check is
// atomic: if any requested capability is missing the whole request must
// be rejected, never silently downgraded to the permitted subset.
func Require(held, want CapabilitySet) error {
	if missing := held.Missing(want); !missing.IsEmpty() {
		return &PermissionError{Missing: missing}
	}
	return nil
}
