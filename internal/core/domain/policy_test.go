package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthorize(t *testing.T) {
	tests := []struct {
		role Role
		cap  Capability
		want bool
	}{
		{RoleAdmin, CapManageCredentials, true},
		{RoleTreasurer, CapManageDues, true},
		{RoleTreasurer, CapManageSync, false},
		{RoleCoach, CapViewDues, true},
		{RoleCoach, CapManageDues, false},
		{RoleMember, CapViewDues, false},
		{RoleMember, CapManageCheckout, true},
		{Role("GUEST"), CapManageCheckout, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Authorize(tt.role, tt.cap), "%s -> %s", tt.role, tt.cap)
	}
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" treasurer ")
	assert.NoError(t, err)
	assert.Equal(t, RoleTreasurer, r)

	_, err = ParseRole("owner")
	assert.Error(t, err)
}
