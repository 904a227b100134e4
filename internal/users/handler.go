package users

import (
	"log/slog"
	"net/http"

	"github.com/timmiekettle/tk2/internal/platform/httpx"
	"github.com/timmiekettle/tk2/internal/platform/rpc"
)

// Handler serves the role administration methods.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) Register(reg *rpc.Registry) {
	reg.Register("get_customer_service_users", "Users on the customer service role profile",
		nil, h.CustomerServiceUsers)
	reg.RegisterMutation("update_user_role", "Activate or deactivate a customer service user",
		UpdateRoleRequest{}, h.UpdateRole)
}

func (h *Handler) CustomerServiceUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.CustomerServiceUsers(r.Context())
	if err != nil {
		h.logger.Error("list customer service users failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Message(w, users)
}

func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	var req UpdateRoleRequest
	if err := rpc.Bind(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.UpdateRole(r.Context(), req.User, bool(req.Active)); err != nil {
		h.logger.Warn("update user role failed", slog.String("user", req.User), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Message(w, true)
}
