package customers

import (
	"log/slog"
	"net/http"

	"github.com/timmiekettle/tk2/internal/platform/httpx"
	"github.com/timmiekettle/tk2/internal/platform/rpc"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// Register exposes the customer methods.
func (h *Handler) Register(reg *rpc.Registry) {
	reg.Register("search_customer", "Find a customer by email, then by mobile", SearchCustomerRequest{}, h.Search)
	reg.RegisterMutation("create_customer", "Create an individual customer", CreateCustomerRequest{}, h.Create)
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchCustomerRequest
	if err := rpc.Bind(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	name, ok, err := h.service.Search(r.Context(), req)
	if err != nil {
		h.logger.Error("search customer failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if !ok {
		httpx.Message(w, nil)
		return
	}
	httpx.Message(w, name)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCustomerRequest
	if err := rpc.Bind(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	name, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.logger.Warn("create customer failed", slog.String("customer_name", req.CustomerName), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Message(w, name)
}
