package users

import "github.com/timmiekettle/tk2/internal/platform/rpc"

// UpdateRoleRequest toggles a user's customer-service profile. active
// accepts true, 1 or "1".
type UpdateRoleRequest struct {
	User   string   `json:"user" validate:"required"`
	Active rpc.Flag `json:"active"`
}
