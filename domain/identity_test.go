package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleOrdering(t *testing.T) {
	assert.True(t, RoleAdmin.AtLeast(RoleOwner))
	assert.True(t, RoleAdmin.AtLeast(RoleAdmin))
	assert.True(t, RoleOwner.AtLeast(RoleMember))
	assert.False(t, RoleMember.AtLeast(RoleOwner))
	assert.False(t, RoleOwner.AtLeast(RoleAdmin))
}

func TestDemoRanksAsMember(t *testing.T) {
	assert.True(t, RoleDemo.AtLeast(RoleMember))
	assert.True(t, RoleMember.AtLeast(RoleDemo))
	assert.False(t, RoleDemo.AtLeast(RoleOwner))
}

func TestUnknownRoleNeverPasses(t *testing.T) {
	assert.False(t, Role("superuser").AtLeast(RoleMember))
}

func TestParseRole(t *testing.T) {
	assert.Equal(t, RoleAdmin, ParseRole("admin"))
	assert.Equal(t, RoleOwner, ParseRole("owner"))
	// legacy provider rows still carry "company"
	assert.Equal(t, RoleOwner, ParseRole("company"))
	assert.Equal(t, RoleMember, ParseRole("member"))
	assert.Equal(t, RoleMember, ParseRole("whatever"))
}

func TestValidateTenantInvariant(t *testing.T) {
	platform := &Identity{ID: "u1", Role: RoleAdmin, Active: true}
	require.NoError(t, platform.Validate())

	platform.Tenant = &Tenant{ID: "t1", Name: "Acme"}
	assert.Error(t, platform.Validate(), "platform roles never carry a tenant")

	scoped := &Identity{ID: "u2", Role: RoleOwner, Active: true}
	assert.Error(t, scoped.Validate(), "tenant roles require a tenant")

	scoped.Tenant = &Tenant{ID: "t1", Name: "Acme"}
	assert.NoError(t, scoped.Validate())
}

func TestNewDemoIdentity(t *testing.T) {
	demo := NewDemoIdentity()
	require.NoError(t, demo.Validate())
	assert.True(t, demo.Demo)
	assert.Equal(t, RoleDemo, demo.Role)
	assert.Equal(t, DemoTenantID, demo.Tenant.ID)
	assert.True(t, demo.Active)
}
