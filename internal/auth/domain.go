package auth

import (
	"slices"

	"github.com/timmiekettle/tk2/internal/shared"
)

// User represents a desk login. Name is the login email, as on the desk.
type User struct {
	Name            string
	FullName        string
	PasswordHash    string
	RoleProfileName string
	Roles           []string
	Enabled         bool
}

// Actor converts the user into the identity requests run as. The role
// profile counts as a role so profile-gated routes work.
func (u User) Actor() shared.Actor {
	roles := slices.Clone(u.Roles)
	if u.RoleProfileName != "" && !slices.Contains(roles, u.RoleProfileName) {
		roles = append(roles, u.RoleProfileName)
	}
	return shared.Actor{User: u.Name, FullName: u.FullName, Roles: roles}
}
