// Package journals posts balanced journal entries.
package journals

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// Doctype is the document type name used in locks, audit and references.
	Doctype = "Journal Entry"

	VoucherJournalEntry = "Journal Entry"
	VoucherBankEntry    = "Bank Entry"

	DocStatusSubmitted = 1
)

// Entry is a journal entry header with its lines.
type Entry struct {
	Name          string
	VoucherType   string
	Company       string
	PostingDate   time.Time
	Remark        string
	ReferenceNo   string
	ReferenceDate *time.Time
	TotalDebit    decimal.Decimal
	TotalCredit   decimal.Decimal
	DocStatus     int
	Owner         string
	Lines         []Line
	CreatedAt     time.Time
}

// Line debits or credits one account, optionally against a party and a
// referenced document.
type Line struct {
	Account       string
	Debit         decimal.Decimal
	Credit        decimal.Decimal
	PartyType     string
	Party         string
	CostCenter    string
	ReferenceType string
	ReferenceName string
}
