package agentpayments

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

func (h *Handler) Register(reg *rpc.Registry) {
	reg.RegisterMutation("create_journal_entry2", "Book an Agent Payment against the selected Sales Invoices",
		CreateJournalEntryRequest{}, h.CreateJournalEntry)
	reg.Register("get_unpaid_invoices", "List an agent's submitted invoices with an outstanding amount",
		UnpaidInvoicesRequest{}, h.UnpaidInvoices)
}

func (h *Handler) CreateJournalEntry(w http.ResponseWriter, r *http.Request) {
	var req CreateJournalEntryRequest
	if err := rpc.Bind(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if !req.AgentPayment.Set {
		httpx.RespondError(w, httpx.Userf(httpx.ErrValidation, "agent_payment is required"))
		return
	}
	name, err := h.service.CreateJournalEntry(r.Context(), req.AgentPayment.Value, req.SelectedInvoices.Value)
	if err != nil {
		h.logger.Warn("agent payment journal failed",
			slog.String("agent_payment", req.AgentPayment.Value.Name), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Message(w, name)
}

func (h *Handler) UnpaidInvoices(w http.ResponseWriter, r *http.Request) {
	var req UnpaidInvoicesRequest
	if err := rpc.Bind(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	rows, err := h.service.UnpaidInvoices(r.Context(), req.Agent)
	if err != nil {
		h.logger.Error("list unpaid invoices failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Message(w, rows)
}
