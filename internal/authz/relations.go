package authz

// Relationship predicates between a principal and a complaint. All are
// pure and total; the capability matrix and the list scope are both
// derived from these so the two can never disagree on what a relation
// means.

// IsOwner reports whether the principal created the complaint.
func IsOwner(p Principal, r Resource) bool {
	return p.UID != "" && r.CreatedByUID == p.UID
}

// IsAssignedEmployee reports whether the principal is the employee the
// complaint is currently assigned to.
func IsAssignedEmployee(p Principal, r Resource) bool {
	return p.Role == RoleEmployee && r.AssignedToUID != "" && r.AssignedToUID == p.UID
}

// IsSameTenant reports whether the principal carries a tenant and it
// matches the complaint's tenant.
func IsSameTenant(p Principal, r Resource) bool {
	return p.TenantID != "" && p.TenantID == r.TenantID
}

// HasGlobalRights reports whether the principal's role is global, i.e.
// its authority is not bounded by any tenant.
func HasGlobalRights(p Principal) bool {
	return p.Role == RoleManager || p.Role == RoleAdmin
}

// HasManagementRights is the single centralized predicate behind every
// elevated capability: global roles everywhere, tenant managers only on
// complaints of their own tenant. Call sites must not re-derive the
// tenant match themselves.
func HasManagementRights(p Principal, r Resource) bool {
	if HasGlobalRights(p) {
		return true
	}
	return p.Role == RoleTenantManager && IsSameTenant(p, r)
}
