package journals

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/timmiekettle/tk2/internal/accounting/shared"
)

// Validate checks the entry can be posted and fills its totals.
func (e *Entry) Validate() error {
	if strings.TrimSpace(e.Company) == "" {
		return fmt.Errorf("%w: company required", shared.ErrInvalidLine)
	}
	if e.PostingDate.IsZero() {
		return fmt.Errorf("%w: posting date required", shared.ErrInvalidLine)
	}
	if len(e.Lines) < 2 {
		return shared.ErrTooFewLines
	}
	debit, credit := decimal.Zero, decimal.Zero
	for idx, line := range e.Lines {
		if strings.TrimSpace(line.Account) == "" {
			return fmt.Errorf("%w: line %d missing account", shared.ErrInvalidLine, idx+1)
		}
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			return fmt.Errorf("%w: line %d negative amount", shared.ErrInvalidLine, idx+1)
		}
		if line.Debit.IsPositive() && line.Credit.IsPositive() {
			return fmt.Errorf("%w: line %d cannot be both debit and credit", shared.ErrInvalidLine, idx+1)
		}
		if line.Debit.IsZero() && line.Credit.IsZero() {
			return fmt.Errorf("%w: line %d has no amount", shared.ErrInvalidLine, idx+1)
		}
		debit = debit.Add(line.Debit)
		credit = credit.Add(line.Credit)
	}
	if !debit.Equal(credit) {
		return fmt.Errorf("%w: debit %s, credit %s", shared.ErrUnbalanced, debit, credit)
	}
	e.TotalDebit = debit
	e.TotalCredit = credit
	if e.VoucherType == "" {
		e.VoucherType = VoucherJournalEntry
	}
	return nil
}

// invoiceAllocations sums credits per referenced sales invoice, in first
// appearance order.
func (e *Entry) invoiceAllocations(invoiceDoctype string) ([]string, map[string]decimal.Decimal) {
	order := make([]string, 0)
	sums := make(map[string]decimal.Decimal)
	for _, line := range e.Lines {
		if line.ReferenceType != invoiceDoctype || line.ReferenceName == "" {
			continue
		}
		if _, seen := sums[line.ReferenceName]; !seen {
			order = append(order, line.ReferenceName)
		}
		sums[line.ReferenceName] = sums[line.ReferenceName].Add(line.Credit).Sub(line.Debit)
	}
	return order, sums
}
