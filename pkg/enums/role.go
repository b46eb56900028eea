package enums

import "fmt"

// Role is the fixed identity class that anchors every permission check.
type Role string

const (
	RoleSuperadmin     Role = "Superadmin"
	RoleHQAdmin        Role = "HQ Admin"
	RoleHQAccountant   Role = "HQ Accountant"
	RoleSitePM         Role = "Site PM"
	RoleSiteAccountant Role = "Site Accountant"
)

var validRoles = []Role{
	RoleSuperadmin,
	RoleHQAdmin,
	RoleHQAccountant,
	RoleSitePM,
	RoleSiteAccountant,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// IsSiteScoped reports whether the role only sees rows reachable through
// its project assignments.
func (r Role) IsSiteScoped() bool {
	return r == RoleSitePM || r == RoleSiteAccountant
}

// ParseRole converts raw input into a Role.
func ParseRole(value string) (Role, error) {
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}

// Roles returns the closed set of assignable roles.
func Roles() []Role {
	out := make([]Role, len(validRoles))
	copy(out, validRoles)
	return out
}
