package servicesheets

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timmiekettle/tk2/internal/platform/httpx"
)

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func sheetWith(price string, items ...SheetItem) Sheet {
	return Sheet{Name: "CSS-0001", ERPCustomer: "Ada Obi", Price: d(price), Items: items}
}

func line(code, qty, rate string) SheetItem {
	return SheetItem{ItemCode: code, Qty: d(qty), Rate: d(rate)}
}

func TestReconcileDecisionTable(t *testing.T) {
	cases := []struct {
		name     string
		sheet    Sheet
		err      error
		discount string
	}{
		{"exact", sheetWith("150", line("kettle", "1", "100"), line("cup", "2", "25")), nil, "0"},
		{"below price without combo", sheetWith("150", line("kettle", "1", "100")), ErrInvoiceBelowPrice, "0"},
		{"below price with combo", sheetWith("150", line("comboex", "1", "100")), nil, "0"},
		{"above price without combo", sheetWith("150", line("kettle", "1", "200")), ErrInvoiceAbovePrice, "0"},
		{"above price with combo", sheetWith("150", line("comboex", "1", "200")), nil, "50"},
		{"combo code is case-insensitive", sheetWith("150", line("ComboEx", "1", "120"), line("cup", "2", "20")), nil, "10"},
		{"padded combo code is not a combo", sheetWith("150", line(" comboex", "1", "200")), ErrInvoiceAbovePrice, "0"},
		{"combo must be first row", sheetWith("150", line("kettle", "1", "200"), line("comboex", "1", "0")), ErrInvoiceAbovePrice, "0"},
		{"no lines, price set", sheetWith("10"), ErrInvoiceBelowPrice, "0"},
		{"no lines, zero price", sheetWith("0"), nil, "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, err := Reconcile(tc.sheet, "comboex")
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
				assert.ErrorIs(t, err, httpx.ErrBusinessRule)
				return
			}
			require.NoError(t, err)
			assert.True(t, rec.Discount.Equal(d(tc.discount)), "discount %s", rec.Discount)
		})
	}
}

func TestReconcileDiscountBringsTotalToPrice(t *testing.T) {
	sheet := sheetWith("150", line("comboex", "1", "200"))
	rec, err := Reconcile(sheet, "comboex")
	require.NoError(t, err)
	assert.True(t, rec.LineSum.Sub(rec.Discount).Equal(sheet.Price))
}

func TestReconcileDecimalSums(t *testing.T) {
	sheet := sheetWith("0.3", line("a", "1", "0.1"), line("b", "1", "0.2"))
	rec, err := Reconcile(sheet, "comboex")
	require.NoError(t, err)
	assert.True(t, rec.Difference.IsZero())
}

func TestReconcileRequiresCustomer(t *testing.T) {
	sheet := sheetWith("100", line("kettle", "1", "100"))
	sheet.ERPCustomer = ""
	_, err := Reconcile(sheet, "comboex")
	assert.ErrorIs(t, err, ErrNoLinkedCustomer)
	assert.ErrorIs(t, err, httpx.ErrValidation)
}
