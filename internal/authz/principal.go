package authz

// Role is the closed set of roles the permission matrix is defined over.
type Role string

const (
	RoleConsumer      Role = "consumer"
	RoleEmployee      Role = "employee"
	RoleTenantManager Role = "tenantManager"
	RoleManager       Role = "manager"
	RoleAdmin         Role = "admin"
)

// ParseRole maps a stored role string to a Role. Anything unrecognized
// resolves to RoleConsumer, never to an error: an unknown role must
// degrade to the least-privileged default rather than risk an elevated
// fallback somewhere up the stack.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleEmployee, RoleTenantManager, RoleManager, RoleAdmin:
		return Role(s)
	default:
		return RoleConsumer
	}
}

// Principal is an authenticated actor with a resolved role and optional
// tenant. It is resolved once per session and passed explicitly into
// every engine call; it is never stored as ambient state. A role change
// requires re-resolution.
type Principal struct {
	UID      string
	Role     Role
	TenantID string // empty for global roles and tenantless principals
}

// NewPrincipal builds a Principal from stored profile fields. Global
// roles never carry a tenant: a stray tenant on an admin profile must
// not narrow or widen a global principal's authority.
func NewPrincipal(uid, role, tenantID string) Principal {
	p := Principal{UID: uid, Role: ParseRole(role)}
	if !HasGlobalRights(p) {
		p.TenantID = tenantID
	}
	return p
}
