package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRole_IsValid(t *testing.T) {
	valid := []Role{
		RoleSuperAdmin, RoleBrandAdmin, RoleBrandFinance, RoleBrandStaff,
		RoleDistributorAdmin, RoleDistributorStaff, RoleManufacturer,
	}
	for _, role := range valid {
		assert.True(t, role.IsValid(), role.String())
	}

	assert.False(t, Role("admin").IsValid())
	assert.False(t, Role("BRAND_ADMIN_X").IsValid())
	assert.False(t, Role("").IsValid())
}

func TestCapabilitiesFor(t *testing.T) {
	tests := []struct {
		role        Role
		canApprove  bool
		canOverride bool
		scope       ScopeKind
	}{
		{RoleSuperAdmin, true, true, ScopeGlobal},
		{RoleBrandAdmin, true, true, ScopeBrand},
		{RoleBrandFinance, true, false, ScopeBrand},
		{RoleBrandStaff, false, false, ScopeBrand},
		{RoleDistributorAdmin, true, false, ScopeDistributor},
		{RoleDistributorStaff, false, false, ScopeDistributor},
		{RoleManufacturer, false, false, ScopeGlobal},
	}

	for _, tt := range tests {
		t.Run(tt.role.String(), func(t *testing.T) {
			caps := CapabilitiesFor(tt.role)
			assert.Equal(t, tt.canApprove, caps.CanApprovePO)
			assert.Equal(t, tt.canOverride, caps.CanOverrideStock)
			assert.Equal(t, tt.scope, caps.Scope)
		})
	}
}

func TestCapabilitiesFor_UnknownRoleHasNoCapabilities(t *testing.T) {
	caps := CapabilitiesFor(Role("SOMETHING_ELSE"))
	assert.False(t, caps.CanApprovePO)
	assert.False(t, caps.CanOverrideStock)
}
