package domain

import (
	"fmt"
	"strings"
)

// Role is a staff or member role carried in the access token.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleTreasurer Role = "TREASURER"
	RoleCoach     Role = "COACH"
	RoleMember    Role = "MEMBER"
)

func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := roleCapabilities[r]; !ok {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Capability is an action gated by role.
type Capability string

const (
	CapManageDues        Capability = "dues:manage"
	CapViewDues          Capability = "dues:view"
	CapManagePlayers     Capability = "players:manage"
	CapManageSync        Capability = "sync:manage"
	CapManageCatalog     Capability = "catalog:manage"
	CapManageCheckout    Capability = "checkout:manage"
	CapManageCredentials Capability = "credentials:manage"
)

var roleCapabilities = map[Role]map[Capability]bool{
	RoleAdmin: {
		CapManageDues: true, CapViewDues: true, CapManagePlayers: true, CapManageSync: true,
		CapManageCatalog: true, CapManageCheckout: true, CapManageCredentials: true,
	},
	RoleTreasurer: {
		CapManageDues: true, CapViewDues: true, CapManagePlayers: true, CapManageCheckout: true,
	},
	RoleCoach: {
		CapViewDues: true, CapManagePlayers: true, CapManageSync: true, CapManageCheckout: true,
	},
	RoleMember: {
		CapManageCheckout: true,
	},
}

// Authorize reports whether role grants capability.
func Authorize(role Role, capability Capability) bool {
	return roleCapabilities[role][capability]
}
