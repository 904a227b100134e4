package adspend

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
	reg.RegisterMutation("create_journal_entry", "Book an AD Spend as a submitted Journal Entry",
		CreateJournalEntryRequest{}, h.CreateJournalEntry)
}

func (h *Handler) CreateJournalEntry(w http.ResponseWriter, r *http.Request) {
	var req CreateJournalEntryRequest
	if err := rpc.Bind(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	name, err := h.service.CreateJournalEntry(r.Context(), req.Docname)
	if err != nil {
		h.logger.Warn("ad spend journal failed", slog.String("docname", req.Docname), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Message(w, name)
}
