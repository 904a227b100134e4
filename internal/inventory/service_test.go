package inventory

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/language"

	"github.com/timmiekettle/tk2/internal/platform/httpx"
	"github.com/timmiekettle/tk2/internal/platform/rpc"
	"github.com/timmiekettle/tk2/internal/sales/invoices"
	"github.com/timmiekettle/tk2/internal/view"
)

type fakeRepo struct {
	rows      []stockRow
	onHand    []ItemQty
	gotItems  []string
	gotState  string
	onHandErr error
}

func (f *fakeRepo) StockByWarehouse(_ context.Context, items []string, state string) ([]stockRow, error) {
	f.gotItems, f.gotState = items, state
	return f.rows, nil
}

func (f *fakeRepo) OnHand(context.Context, string) ([]ItemQty, error) {
	return f.onHand, f.onHandErr
}

type fakeSales []invoices.SoldItem

func (f fakeSales) SoldItems(context.Context, time.Time, time.Time, string) ([]invoices.SoldItem, error) {
	return f, nil
}

type fakePDF struct{ html string }

func (f *fakePDF) RenderHTML(_ context.Context, html string) ([]byte, error) {
	f.html = html
	return []byte("%PDF-1.7"), nil
}

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func row(item, wh, state string, qty float64) stockRow {
	return stockRow{ItemCode: item, WarehouseStock: WarehouseStock{Warehouse: wh, State: state, Qty: qty}}
}

func TestItemWarehouseStockMapsEveryItem(t *testing.T) {
	repo := &fakeRepo{rows: []stockRow{
		row("kettle", "Lagos - TK", "Lagos", 4),
		row("kettle", "Abuja - TK", "FCT", 1),
	}}
	got, err := NewService(repo, nil).ItemWarehouseStock(context.Background(), []string{"kettle", "cup", "kettle"}, " Lagos ")
	require.NoError(t, err)
	assert.Equal(t, []string{"kettle", "cup"}, repo.gotItems)
	assert.Equal(t, "Lagos", repo.gotState)
	assert.Len(t, got["kettle"], 2)
	assert.NotNil(t, got["cup"])
	assert.Empty(t, got["cup"])
}

func TestItemWarehouseStockEmptyInput(t *testing.T) {
	repo := &fakeRepo{}
	got, err := NewService(repo, nil).ItemWarehouseStock(context.Background(), nil, "")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Nil(t, repo.gotItems)
}

func TestBuildReportValidates(t *testing.T) {
	svc := NewService(&fakeRepo{}, fakeSales{})
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.BuildReport(context.Background(), start, start, " ")
	require.ErrorIs(t, err, httpx.ErrValidation)
	assert.EqualError(t, err, "Please provide Start Date, End Date, and Warehouse.")

	_, err = svc.BuildReport(context.Background(), time.Time{}, start, "Stores - TK")
	assert.ErrorIs(t, err, ErrReportArgs)
}

func TestBuildReportPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	svc := NewService(&fakeRepo{onHandErr: boom}, fakeSales{})
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.BuildReport(context.Background(), start, start, "Stores - TK")
	assert.ErrorIs(t, err, boom)
}

func TestWriteXLSX(t *testing.T) {
	rep := Report{
		Start:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		End:       time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
		Warehouse: "Stores - TK",
		Sold:      []ItemQty{{ItemCode: "kettle", Qty: d("3")}},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, rep))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	sold, err := f.GetRows(soldSheet)
	require.NoError(t, err)
	assert.Equal(t, "Items Sold from 2026-01-01 to 2026-01-31 in Warehouse: Stores - TK", sold[0][0])
	assert.Equal(t, []string{"Item Code", "Sold Quantity"}, sold[1])
	assert.Equal(t, []string{"kettle", "3"}, sold[2])

	stock, err := f.GetRows(stockSheet)
	require.NoError(t, err)
	assert.Equal(t, "No items in stock.", stock[2][0])
}

func newRouter(t *testing.T, repo Repository, sales SalesSource, pdf PDFConverter) http.Handler {
	t.Helper()
	engine, err := view.NewEngine(language.BritishEnglish)
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := rpc.NewRegistry("tk2.api")
	NewHandler(logger, NewService(repo, sales), engine, pdf).Register(reg)
	r := chi.NewRouter()
	reg.MountRoutes(r)
	return r
}

func TestReportHandlerEscapesHTML(t *testing.T) {
	sales := fakeSales{{ItemCode: "<script>alert(1)</script>", Qty: d("1200")}}
	router := newRouter(t, &fakeRepo{}, sales, &fakePDF{})

	q := url.Values{"start_date": {"2026-01-01"}, "end_date": {"2026-01-31"}, "warehouse": {"Stores - TK"}}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/method/tk2.api.get_report?"+q.Encode(), nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "1,200")
	assert.Contains(t, body, "No items in stock.")
}

func TestReportHandlerFormats(t *testing.T) {
	pdf := &fakePDF{}
	router := newRouter(t, &fakeRepo{onHand: []ItemQty{{ItemCode: "cup", Qty: d("2")}}}, fakeSales{}, pdf)
	base := "/api/method/tk2.api.get_report?start_date=2026-01-01&end_date=2026-01-31&warehouse=Stores+-+TK"

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, base+"&format=pdf", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "stock-sales-20260101-20260131.pdf")
	assert.True(t, strings.HasPrefix(pdf.html, "<!DOCTYPE html>"))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, base+"&format=xlsx", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, base+"&format=doc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStockHandlerAcceptsEncodedList(t *testing.T) {
	repo := &fakeRepo{rows: []stockRow{row("kettle", "Lagos - TK", "Lagos", 4)}}
	router := newRouter(t, repo, fakeSales{}, &fakePDF{})

	q := url.Values{"items": {`["kettle","cup"]`}}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/method/tk2.api.get_item_warehouse_stock?"+q.Encode(), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":{"kettle":[{"warehouse":"Lagos - TK","state":"Lagos","qty":4}],"cup":[]}}`, rec.Body.String())
}
