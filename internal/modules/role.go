package modules

import "fmt"

// Role is a principal's role inside its organization.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleClinician Role = "clinician"
	RoleFrontDesk Role = "front_desk"
)

// Roles lists every valid role.
var Roles = []Role{RoleAdmin, RoleClinician, RoleFrontDesk}

// ParseRole validates s against the closed role enumeration.
func ParseRole(s string) (Role, error) {
	for _, r := range Roles {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", s)
}
