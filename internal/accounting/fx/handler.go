package fx

import (
	"log/slog"
	"net/http"

	"github.com/timmiekettle/tk2/internal/platform/httpx"
	"github.com/timmiekettle/tk2/internal/platform/rpc"
)

// RateRequest asks for the rate of currency as of date.
type RateRequest struct {
	Currency string   `json:"currency" validate:"required"`
	Date     rpc.Date `json:"date"`
}

type Handler struct {
	logger *slog.Logger
	lookup *Lookup
}

func NewHandler(logger *slog.Logger, lookup *Lookup) *Handler {
	return &Handler{logger: logger, lookup: lookup}
}

func (h *Handler) Register(reg *rpc.Registry) {
	reg.Register("get_exchange_rate", "Exchange rate from a currency into the base currency",
		RateRequest{}, h.Rate)
}

func (h *Handler) Rate(w http.ResponseWriter, r *http.Request) {
	var req RateRequest
	if err := rpc.Bind(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	rate, err := h.lookup.Rate(r.Context(), req.Currency, req.Date.Time)
	if err != nil {
		h.logger.Warn("exchange rate lookup failed", slog.String("currency", req.Currency), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Message(w, rate)
}
