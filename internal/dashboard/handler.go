package dashboard

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/timmiekettle/tk2/internal/dashboard/svg"
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

// Register exposes the desk card and chart methods.
func (h *Handler) Register(reg *rpc.Registry) {
	reg.Register("get_user_total_css", "Number of the caller's Customer Service Sheets", nil,
		h.serve(func(ctx context.Context) (any, error) { return h.service.TotalSheets(ctx) }))
	reg.Register("get_user_delivered_css", "Number of the caller's delivered sheets", nil,
		h.serve(h.byStatus(StatusDelivered)))
	reg.Register("get_user_processing_css", "Number of the caller's sheets in processing", nil,
		h.serve(h.byStatus(StatusProcessing)))
	reg.Register("get_user_cancelled_css", "Number of the caller's cancelled sheets", nil,
		h.serve(h.byStatus(StatusCancelled)))
	reg.Register("get_user_total_css_this_month", "Number of the caller's sheets ordered this month", nil,
		h.serve(func(ctx context.Context) (any, error) { return h.service.SheetsThisMonth(ctx) }))
	reg.Register("get_agent_delivery_rate", "Caller's delivered share of non-duplicate sheets", nil,
		h.serve(func(ctx context.Context) (any, error) { return h.service.DeliveryRate(ctx) }))
	reg.Register("get_agent_delivery_rate_mtd", "Caller's month-to-date delivery share", nil,
		h.serve(func(ctx context.Context) (any, error) { return h.service.DeliveryRateMTD(ctx) }))
	reg.Register("get_css_by_digital_marketer_chart_data", "Caller's sheets grouped by digital marketer", nil,
		h.serve(func(ctx context.Context) (any, error) { return h.service.ChartByMarketer(ctx) }))
}

// MountRoutes registers the rendered chart.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/dashboard/css-by-marketer.svg", h.MarketerChart)
}

func (h *Handler) byStatus(status string) func(context.Context) (any, error) {
	return func(ctx context.Context) (any, error) {
		return h.service.SheetsWithStatus(ctx, status)
	}
}

func (h *Handler) serve(load func(context.Context) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := load(r.Context())
		if err != nil {
			h.logger.Error("dashboard aggregate failed", slog.String("path", r.URL.Path), slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		httpx.Message(w, result)
	}
}

func (h *Handler) MarketerChart(w http.ResponseWriter, r *http.Request) {
	chart, err := h.service.ChartByMarketer(r.Context())
	if err != nil {
		h.logger.Error("dashboard chart failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	var values []float64
	if len(chart.Data.Datasets) > 0 {
		for _, v := range chart.Data.Datasets[0].Values {
			values = append(values, float64(v))
		}
	}
	out, err := svg.Bars(0, 0, values, chart.Data.Labels, svg.BarOpts{
		Title:       ChartDatasetName,
		Description: "Customer Service Sheets by digital marketer",
		SeriesLabel: ChartDatasetName,
	})
	if err != nil {
		h.logger.Error("render chart failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "private, max-age=60")
	_, _ = w.Write([]byte(out))
}
