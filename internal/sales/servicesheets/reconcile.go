package servicesheets

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/timmiekettle/tk2/internal/platform/httpx"
)

var (
	ErrNoLinkedCustomer = httpx.Userf(httpx.ErrValidation,
		"No linked Customer found in erp_customer field")
	ErrInvoiceBelowPrice = httpx.Userf(httpx.ErrBusinessRule,
		"Order Price is not equal to the invoice price. Please add comboex on the first row if this is a combo.")
	ErrInvoiceAbovePrice = httpx.Userf(httpx.ErrBusinessRule,
		"Order Price is not equal to the invoice price, and the first row is not Comboex. Please add a comboex on the first row or fix your items.")
)

// Reconciliation is the outcome of comparing sheet lines with the order price.
type Reconciliation struct {
	LineSum    decimal.Decimal
	Difference decimal.Decimal
	FirstCode  string
	Combo      bool
	// Discount is the Grand Total discount to apply; zero when none.
	Discount decimal.Decimal
}

// Reconcile checks that the sheet lines add up to the order price.
//
// A combo (first row is the combo item) may be priced below its lines, in
// which case the surplus becomes a Grand Total discount, and may also come in
// under the order price without adjustment. Any other mismatch is rejected.
func Reconcile(sheet Sheet, comboCode string) (Reconciliation, error) {
	if strings.TrimSpace(sheet.ERPCustomer) == "" {
		return Reconciliation{}, ErrNoLinkedCustomer
	}

	var rec Reconciliation
	for _, it := range sheet.Items {
		rec.LineSum = rec.LineSum.Add(it.Qty.Mul(it.Rate))
	}
	rec.Difference = rec.LineSum.Sub(sheet.Price)
	if len(sheet.Items) > 0 {
		rec.FirstCode = strings.ToLower(sheet.Items[0].ItemCode)
	}
	rec.Combo = rec.FirstCode != "" && rec.FirstCode == strings.ToLower(comboCode)

	switch rec.Difference.Sign() {
	case -1:
		if !rec.Combo {
			return rec, ErrInvoiceBelowPrice
		}
	case 1:
		if !rec.Combo {
			return rec, ErrInvoiceAbovePrice
		}
		rec.Discount = rec.Difference
	}
	return rec, nil
}
