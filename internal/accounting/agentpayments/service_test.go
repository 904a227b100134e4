package agentpayments

import (
	"context"
	"fmt"
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

	"github.com/timmiekettle/tk2/internal/accounting/accounts"
	"github.com/timmiekettle/tk2/internal/accounting/journals"
	"github.com/timmiekettle/tk2/internal/accounting/shared"
	"github.com/timmiekettle/tk2/internal/platform/httpx"
	"github.com/timmiekettle/tk2/internal/platform/rpc"
	"github.com/timmiekettle/tk2/internal/sales/invoices"
)

type fakeLedger struct{}

func (fakeLedger) AccountCompany(_ context.Context, account string) (string, error) {
	if account == "Zenith - TK" {
		return "Timmie Kettle", nil
	}
	return "", fmt.Errorf("%w: %s", shared.ErrAccountNotFound, account)
}

func (fakeLedger) Company(_ context.Context, name string) (accounts.Company, error) {
	return accounts.Company{Name: name, DefaultReceivableAccount: "Debtors - TK"}, nil
}

func (fakeLedger) SystemDefault(_ context.Context, key string) (string, error) {
	if key == accounts.DefaultCostCenterKey {
		return "Main - TK", nil
	}
	return "", nil
}

type recordingJournals struct{ got []journals.Entry }

func (r *recordingJournals) Submit(_ context.Context, e journals.Entry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	r.got = append(r.got, e)
	return "ACC-JV-2026-00042", nil
}

type fakeUnpaid []invoices.UnpaidInvoice

func (f fakeUnpaid) ListUnpaid(_ context.Context, agent string) ([]invoices.UnpaidInvoice, error) {
	return f, nil
}

func newService(j JournalSubmitter) *Service {
	svc := NewService(fakeLedger{}, j, fakeUnpaid{{Name: "ACC-SINV-2026-00001", Customer: "Ada", GrandTotal: 60, OutstandingAmount: 60}}, nil, Config{
		CommissionAccount:      "Commission on Sales - TK",
		DeliveryChargesAccount: "Delivery Charges - TK",
	})
	return svc.WithNow(func() time.Time { return time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC) })
}

func n(v float64) rpc.Number { return rpc.NewNumber(v) }

func selected() []SelectedInvoice {
	return []SelectedInvoice{
		{Name: "ACC-SINV-2026-00001", Customer: "Ada", OutstandingAmount: n(60)},
		{Name: "ACC-SINV-2026-00002", Customer: "Bola", OutstandingAmount: n(40.25)},
	}
}

func TestCreateJournalEntryBalanced(t *testing.T) {
	j := &recordingJournals{}
	payment := AgentPayment{
		Name:                "AP-0001",
		Bank:                "Zenith - TK",
		CommissionsDeducted: n(10),
		ChargesDeducted:     n(5.25),
		SelectedTotal:       n(85),
	}
	name, err := newService(j).CreateJournalEntry(context.Background(), payment, selected())
	require.NoError(t, err)
	assert.Equal(t, "ACC-JV-2026-00042", name)

	require.Len(t, j.got, 1)
	e := j.got[0]
	assert.Equal(t, "Timmie Kettle", e.Company)
	assert.Equal(t, "AP-0001", e.ReferenceNo)
	assert.Equal(t, "2026-07-01", e.PostingDate.Format(time.DateOnly))
	require.NotNil(t, e.ReferenceDate)
	assert.Equal(t, e.PostingDate, *e.ReferenceDate)

	require.Len(t, e.Lines, 5)
	assert.Equal(t, "Zenith - TK", e.Lines[0].Account)
	assert.True(t, e.Lines[0].Debit.Equal(decimal.RequireFromString("85")))
	assert.Equal(t, "Debtors - TK", e.Lines[1].Account)
	assert.Equal(t, "Customer", e.Lines[1].PartyType)
	assert.Equal(t, "Ada", e.Lines[1].Party)
	assert.Equal(t, journals.InvoiceDoctype, e.Lines[1].ReferenceType)
	assert.Equal(t, "ACC-SINV-2026-00002", e.Lines[2].ReferenceName)
	assert.Equal(t, "Commission on Sales - TK", e.Lines[3].Account)
	assert.Equal(t, "Delivery Charges - TK", e.Lines[4].Account)
	for _, line := range e.Lines {
		assert.Equal(t, "Main - TK", line.CostCenter)
	}
	assert.True(t, e.TotalDebit.Equal(e.TotalCredit))
}

func TestCreateJournalEntrySkipsZeroDeductions(t *testing.T) {
	j := &recordingJournals{}
	payment := AgentPayment{Bank: "Zenith - TK", SelectedTotal: n(100.25)}
	payment.Date = rpc.Date{Time: time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)}
	_, err := newService(j).CreateJournalEntry(context.Background(), payment, selected())
	require.NoError(t, err)
	assert.Len(t, j.got[0].Lines, 3)
	assert.Equal(t, "2026-06-30", j.got[0].PostingDate.Format(time.DateOnly))
}

func TestCreateJournalEntryMismatch(t *testing.T) {
	j := &recordingJournals{}
	payment := AgentPayment{Bank: "Zenith - TK", CommissionsDeducted: n(10), SelectedTotal: n(95)}
	_, err := newService(j).CreateJournalEntry(context.Background(), payment, selected())
	require.ErrorIs(t, err, ErrTotalMismatch)
	assert.ErrorIs(t, err, httpx.ErrBusinessRule)
	assert.EqualError(t, err, "The computed net payment (90.25) does not equal the Selected Total (95.0).")
	assert.Empty(t, j.got)
}

func TestCheckTotalsUsesFloatEquality(t *testing.T) {
	invs := []SelectedInvoice{{OutstandingAmount: n(0.1)}, {OutstandingAmount: n(0.2)}}
	_, err := CheckTotals(AgentPayment{SelectedTotal: n(0.3)}, invs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "0.30000000000000004")

	totals, err := CheckTotals(AgentPayment{SelectedTotal: n(0.1 + 0.2)}, invs)
	require.NoError(t, err)
	assert.True(t, totals.Net.Equal(decimal.RequireFromString("0.3")))
}

func TestCreateJournalEntryUnknownBank(t *testing.T) {
	payment := AgentPayment{Bank: "Nowhere", SelectedTotal: n(100.25)}
	_, err := newService(&recordingJournals{}).CreateJournalEntry(context.Background(), payment, selected())
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}

func newRouter(j JournalSubmitter) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := rpc.NewRegistry("tk2.api")
	NewHandler(logger, newService(j)).Register(reg)
	r := chi.NewRouter()
	reg.MountRoutes(r)
	return r
}

func TestCreateJournalEntryHandlerAcceptsEncodedStrings(t *testing.T) {
	j := &recordingJournals{}
	form := "agent_payment=" + urlEncode(`{"name":"AP-0002","bank":"Zenith - TK","commissions_deducted":"","charges_deducted":null,"selected_total":"1,000"}`) +
		"&selected_invoices=" + urlEncode(`[{"name":"ACC-SINV-2026-00003","customer":"Ada","outstanding_amount":"1000"}]`)
	req := httptest.NewRequest(http.MethodPost, "/api/method/tk2.api.create_journal_entry2", strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	newRouter(j).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"message":"ACC-JV-2026-00042"}`, rec.Body.String())
	require.Len(t, j.got, 1)
	assert.Len(t, j.got[0].Lines, 2)
}

func TestCreateJournalEntryHandlerRequiresPayment(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/method/tk2.api.create_journal_entry2",
		strings.NewReader(`{"selected_invoices":[]}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	newRouter(&recordingJournals{}).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnpaidInvoicesHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(&recordingJournals{}).ServeHTTP(rec,
		httptest.NewRequest(http.MethodGet, "/api/method/tk2.api.get_unpaid_invoices?agent=Agent+K", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":[{"posting_date":"","name":"ACC-SINV-2026-00001","customer":"Ada","grand_total":60,"outstanding_amount":60}]}`,
		rec.Body.String())

	rec = httptest.NewRecorder()
	newRouter(&recordingJournals{}).ServeHTTP(rec,
		httptest.NewRequest(http.MethodGet, "/api/method/tk2.api.get_unpaid_invoices", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func urlEncode(s string) string { return url.QueryEscape(s) }
