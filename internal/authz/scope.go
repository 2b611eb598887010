package authz

import "fmt"

// ScopeKind selects the shape of a listing scope.
type ScopeKind int

const (
	// ScopeAll admits every complaint (global roles).
	ScopeAll ScopeKind = iota
	// ScopeTenantOrOwned admits complaints of the principal's tenant
	// plus complaints the principal filed (tenant managers).
	ScopeTenantOrOwned
	// ScopeAssignedOrOwned admits complaints assigned to the principal
	// plus complaints the principal filed (employees).
	ScopeAssignedOrOwned
	// ScopeOwned admits only complaints the principal filed (consumers,
	// and tenant managers with no tenant on record).
	ScopeOwned
)

// Sort is the ordering every listing uses, newest first.
const Sort = "created_at DESC"

// Scope bounds which complaints a principal may enumerate. It is the
// listing-side twin of Capabilities: for every complaint c,
// Matches(c) == Capabilities(p, c).Has(CapView). Computed once per
// principal; it only changes when the principal's role or tenant does,
// which requires re-resolution anyway.
type Scope struct {
	Kind     ScopeKind
	UID      string
	TenantID string
}

// ScopeFor derives the listing scope for a principal.
//
// Each role's scope is its own viewing relation plus ownership: owners
// always see what they filed, so an employee or tenant manager who files
// a complaint finds it in their list exactly as they can open it by id.
// For global roles the ownership clause is subsumed by seeing everything.
func ScopeFor(p Principal) Scope {
	switch p.Role {
	case RoleAdmin, RoleManager:
		return Scope{Kind: ScopeAll}
	case RoleTenantManager:
		if p.TenantID == "" {
			return Scope{Kind: ScopeOwned, UID: p.UID}
		}
		return Scope{Kind: ScopeTenantOrOwned, UID: p.UID, TenantID: p.TenantID}
	case RoleEmployee:
		return Scope{Kind: ScopeAssignedOrOwned, UID: p.UID}
	default:
		return Scope{Kind: ScopeOwned, UID: p.UID}
	}
}

// Matches reports whether the complaint belongs to this scope. It is the
// in-memory form of the predicate, used by the live feed; Where is the
// store form. The two must stay equivalent.
func (s Scope) Matches(r Resource) bool {
	switch s.Kind {
	case ScopeAll:
		return true
	case ScopeTenantOrOwned:
		return r.TenantID == s.TenantID || r.CreatedByUID == s.UID
	case ScopeAssignedOrOwned:
		return (r.AssignedToUID != "" && r.AssignedToUID == s.UID) || r.CreatedByUID == s.UID
	default:
		return r.CreatedByUID == s.UID
	}
}

// Where renders the scope as a SQL predicate over the complaints table.
// argOffset is the number of placeholders already consumed by the caller;
// returned args continue from there.
func (s Scope) Where(argOffset int) (clause string, args []any) {
	switch s.Kind {
	case ScopeAll:
		return "TRUE", nil
	case ScopeTenantOrOwned:
		return fmt.Sprintf("(tenant_id = $%d OR created_by_uid = $%d)", argOffset+1, argOffset+2),
			[]any{s.TenantID, s.UID}
	case ScopeAssignedOrOwned:
		return fmt.Sprintf("(assigned_to_uid = $%d OR created_by_uid = $%d)", argOffset+1, argOffset+2),
			[]any{s.UID, s.UID}
	default:
		return fmt.Sprintf("created_by_uid = $%d", argOffset+1), []any{s.UID}
	}
}
