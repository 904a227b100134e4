package invoices

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/timmiekettle/tk2/internal/platform/httpx"
)

// ErrDiscountExceedsTotal is raised when a Grand Total discount would make
// the invoice negative.
var ErrDiscountExceedsTotal = fmt.Errorf("%w: discount amount exceeds invoice total", httpx.ErrBusinessRule)

// Validate checks the fields an invoice needs before submit.
func (inv Invoice) Validate() error {
	var missing []string
	if strings.TrimSpace(inv.Company) == "" {
		missing = append(missing, "company")
	}
	if strings.TrimSpace(inv.Customer) == "" {
		missing = append(missing, "customer")
	}
	if inv.PostingDate.IsZero() {
		missing = append(missing, "posting_date")
	}
	if len(missing) > 0 {
		return httpx.Userf(httpx.ErrValidation, "sales invoice is missing %s", strings.Join(missing, ", "))
	}
	if len(inv.Items) == 0 {
		return httpx.Userf(httpx.ErrValidation, "sales invoice needs at least one item")
	}
	for i, it := range inv.Items {
		if strings.TrimSpace(it.ItemCode) == "" {
			return httpx.Userf(httpx.ErrValidation, "row %d: item code is required", i+1)
		}
		if !it.Qty.IsPositive() {
			return httpx.Userf(httpx.ErrValidation, "row %d: quantity must be greater than zero", i+1)
		}
		if it.Rate.IsNegative() {
			return httpx.Userf(httpx.ErrValidation, "row %d: rate cannot be negative", i+1)
		}
	}
	if inv.DiscountAmount.IsNegative() {
		return httpx.Userf(httpx.ErrValidation, "discount amount cannot be negative")
	}
	return nil
}

// ComputeTotals fills line amounts, total, grand total and outstanding.
// Line rates are kept as given; a Grand Total discount only lowers the
// grand total.
func (inv *Invoice) ComputeTotals() error {
	total := decimal.Zero
	for i := range inv.Items {
		inv.Items[i].Amount = inv.Items[i].Qty.Mul(inv.Items[i].Rate)
		total = total.Add(inv.Items[i].Amount)
	}
	inv.Total = total

	discount := decimal.Zero
	if inv.ApplyDiscountOn == DiscountOnGrandTotal {
		discount = inv.DiscountAmount
		if inv.AdditionalDiscountPercentage.IsPositive() && discount.IsZero() {
			discount = total.Mul(inv.AdditionalDiscountPercentage).Div(decimal.NewFromInt(100)).Round(2)
		}
	}
	if discount.GreaterThan(total) {
		return ErrDiscountExceedsTotal
	}
	inv.DiscountAmount = discount
	inv.GrandTotal = total.Sub(discount).Sub(inv.WriteOffAmount)
	inv.OutstandingAmount = inv.GrandTotal
	return nil
}
