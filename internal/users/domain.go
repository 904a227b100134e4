// Package users administers the role profiles of desk users.
package users

// User is a desk user as listed for role administration.
type User struct {
	FullName        string `json:"full_name"`
	Email           string `json:"email"`
	RoleProfileName string `json:"role_profile_name"`
}

// Profiles names the role profile granted to active customer-service staff
// and the one they are parked on when deactivated.
type Profiles struct {
	Active   string
	Inactive string
}

// DefaultProfiles matches the desk's stock profile names.
var DefaultProfiles = Profiles{Active: "Customer Service", Inactive: "Test"}
