package authz_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fairdesk-io/fairdesk/internal/authz"
)

func TestIsAssignedEmployee_RoleRequired(t *testing.T) {
	r := authz.Resource{TenantID: "T1", AssignedToUID: "x1"}

	// Assignment only counts for the employee role; a consumer whose uid
	// somehow matches the assignee field gains nothing.
	assert.True(t, authz.IsAssignedEmployee(authz.Principal{UID: "x1", Role: authz.RoleEmployee}, r))
	assert.False(t, authz.IsAssignedEmployee(authz.Principal{UID: "x1", Role: authz.RoleConsumer}, r))
}

func TestIsAssignedEmployee_UnsetAssignee(t *testing.T) {
	p := authz.Principal{UID: "", Role: authz.RoleEmployee}
	r := authz.Resource{TenantID: "T1"}

	assert.False(t, authz.IsAssignedEmployee(p, r), "empty assignee must never match an empty uid")
}

func TestIsSameTenant_RequiresDefinedTenant(t *testing.T) {
	r := authz.Resource{TenantID: ""}

	assert.False(t, authz.IsSameTenant(authz.Principal{TenantID: ""}, r),
		"two undefined tenants are not the same tenant")
	assert.False(t, authz.IsSameTenant(authz.Principal{TenantID: "T1"}, r))
	assert.True(t, authz.IsSameTenant(authz.Principal{TenantID: "T1"}, authz.Resource{TenantID: "T1"}))
}

func TestHasManagementRights_Centralized(t *testing.T) {
	c := authz.Resource{TenantID: "T1"}

	assert.True(t, authz.HasManagementRights(authz.Principal{Role: authz.RoleAdmin}, c))
	assert.True(t, authz.HasManagementRights(authz.Principal{Role: authz.RoleManager}, c))
	assert.True(t, authz.HasManagementRights(authz.Principal{Role: authz.RoleTenantManager, TenantID: "T1"}, c))
	assert.False(t, authz.HasManagementRights(authz.Principal{Role: authz.RoleTenantManager, TenantID: "T2"}, c))
	assert.False(t, authz.HasManagementRights(authz.Principal{Role: authz.RoleEmployee, TenantID: "T1"}, c))
}
