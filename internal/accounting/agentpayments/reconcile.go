package agentpayments

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/timmiekettle/tk2/internal/platform/httpx"
)

// ErrTotalMismatch is wrapped by the net payment check failure.
var ErrTotalMismatch = fmt.Errorf("agent payment: net payment mismatch: %w", httpx.ErrBusinessRule)

// Totals are the amounts a payment settles.
type Totals struct {
	// Computed is the float net payment compared with the selected total.
	Computed float64
	// Net, Commission and Charges are the exact amounts booked.
	Net        decimal.Decimal
	Commission decimal.Decimal
	Charges    decimal.Decimal
}

// CheckTotals verifies that the invoices' outstanding amounts less the
// deductions equal the selected total. The comparison is exact float
// equality, as desk clients compute it.
func CheckTotals(payment AgentPayment, invoices []SelectedInvoice) (Totals, error) {
	var invoiceTotal float64
	sum := decimal.Zero
	for _, inv := range invoices {
		invoiceTotal += inv.OutstandingAmount.Float64()
		sum = sum.Add(inv.OutstandingAmount.Decimal)
	}
	commission := payment.CommissionsDeducted.Float64()
	charges := payment.ChargesDeducted.Float64()
	selected := payment.SelectedTotal.Float64()

	t := Totals{
		Computed:   invoiceTotal - commission - charges,
		Commission: payment.CommissionsDeducted.Decimal,
		Charges:    payment.ChargesDeducted.Decimal,
	}
	t.Net = sum.Sub(t.Commission).Sub(t.Charges)
	if t.Computed != selected {
		return t, httpx.Userf(ErrTotalMismatch,
			"The computed net payment (%s) does not equal the Selected Total (%s).",
			formatFloat(t.Computed), formatFloat(selected))
	}
	return t, nil
}

// formatFloat prints floats the way the desk shows them: shortest
// round-trip digits, always with a fractional part.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
