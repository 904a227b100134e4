package inventory

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/timmiekettle/tk2/internal/platform/httpx"
	"github.com/timmiekettle/tk2/internal/platform/rpc"
)

// Renderer executes a named HTML template.
type Renderer interface {
	RenderString(name string, data any) (string, error)
}

// PDFConverter turns a standalone HTML document into a PDF.
type PDFConverter interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates Renderer
	pdf       PDFConverter
}

func NewHandler(logger *slog.Logger, service *Service, templates Renderer, pdf PDFConverter) *Handler {
	return &Handler{logger: logger, service: service, templates: templates, pdf: pdf}
}

func (h *Handler) Register(reg *rpc.Registry) {
	reg.Register("get_item_warehouse_stock", "Warehouses holding positive stock of each item",
		StockRequest{}, h.ItemWarehouseStock)
	reg.Register("get_report", "Items sold and current stock for a warehouse (html, pdf or xlsx)",
		ReportRequest{}, h.Report)
}

func (h *Handler) ItemWarehouseStock(w http.ResponseWriter, r *http.Request) {
	var req StockRequest
	if err := rpc.Bind(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	stock, err := h.service.ItemWarehouseStock(r.Context(), req.Items.Value, req.State)
	if err != nil {
		h.logger.Error("item warehouse stock failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Message(w, stock)
}

func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	var req ReportRequest
	if err := rpc.Bind(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	rep, err := h.service.BuildReport(r.Context(), req.StartDate.Time, req.EndDate.Time, req.Warehouse)
	if err != nil {
		h.logger.Warn("stock report failed", slog.String("warehouse", req.Warehouse), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	filename := fmt.Sprintf("stock-sales-%s-%s", rep.Start.Format("20060102"), rep.End.Format("20060102"))

	switch req.Format {
	case FormatXLSX:
		var buf bytes.Buffer
		if err := WriteXLSX(&buf, rep); err != nil {
			h.fail(w, "export xlsx", err)
			return
		}
		attach(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", filename+".xlsx", buf.Bytes())
	case FormatPDF:
		doc, err := h.templates.RenderString("reports/stock_sales_document.html", reportView(rep))
		if err != nil {
			h.fail(w, "render report document", err)
			return
		}
		pdf, err := h.pdf.RenderHTML(r.Context(), doc)
		if err != nil {
			h.fail(w, "convert report to pdf", err)
			return
		}
		attach(w, "application/pdf", filename+".pdf", pdf)
	default:
		html, err := h.templates.RenderString("reports/stock_sales.html", reportView(rep))
		if err != nil {
			h.fail(w, "render report", err)
			return
		}
		httpx.Message(w, html)
	}
}

func (h *Handler) fail(w http.ResponseWriter, step string, err error) {
	h.logger.Error("stock report "+step+" failed", slog.Any("error", err))
	httpx.RespondError(w, err)
}

func attach(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
