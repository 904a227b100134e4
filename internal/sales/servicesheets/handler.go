package servicesheets

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

// Register exposes the sheet methods.
func (h *Handler) Register(reg *rpc.Registry) {
	reg.RegisterMutation("create_sales_invoice", "Create and submit a Sales Invoice from a Customer Service Sheet",
		CreateSalesInvoiceRequest{}, h.CreateSalesInvoice)
}

func (h *Handler) CreateSalesInvoice(w http.ResponseWriter, r *http.Request) {
	var req CreateSalesInvoiceRequest
	if err := rpc.Bind(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	name, err := h.service.CreateSalesInvoice(r.Context(), req.CustomerServiceSheet)
	if err != nil {
		h.logger.Warn("create sales invoice failed",
			slog.String("sheet", req.CustomerServiceSheet), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Message(w, name)
}
