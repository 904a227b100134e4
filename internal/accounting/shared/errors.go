// Package shared holds ledger errors common to the accounting packages.
package shared

import (
	"fmt"

	"github.com/timmiekettle/tk2/internal/platform/httpx"
)

var (
	// ErrUnbalanced indicates debit != credit.
	ErrUnbalanced = fmt.Errorf("accounting: journal lines must balance: %w", httpx.ErrBusinessRule)
	// ErrTooFewLines indicates less than two lines.
	ErrTooFewLines = fmt.Errorf("accounting: journal requires at least two lines: %w", httpx.ErrValidation)
	// ErrInvalidLine indicates a line without account, with a negative
	// amount, or with both sides set.
	ErrInvalidLine = fmt.Errorf("accounting: invalid journal line: %w", httpx.ErrValidation)
	// ErrAccountNotFound indicates an unknown ledger account.
	ErrAccountNotFound = fmt.Errorf("accounting: account not found: %w", httpx.ErrNotFound)
	// ErrCompanyNotFound indicates an unknown company.
	ErrCompanyNotFound = fmt.Errorf("accounting: company not found: %w", httpx.ErrNotFound)
	// ErrInvoiceNotFound indicates a line references a missing or unsubmitted invoice.
	ErrInvoiceNotFound = fmt.Errorf("accounting: referenced sales invoice not found: %w", httpx.ErrValidation)
	// ErrOverAllocated indicates a credit larger than the invoice outstanding.
	ErrOverAllocated = fmt.Errorf("accounting: allocation exceeds outstanding amount: %w", httpx.ErrBusinessRule)
)
