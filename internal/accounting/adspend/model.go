// Package adspend books advert spend as journal entries.
package adspend

import (
	"time"

	"github.com/shopspring/decimal"
)

// Doctype is the document type name used in locks and audit.
const Doctype = "AD Spend"

// AdSpend is one recorded advert spend.
type AdSpend struct {
	Name            string
	Date            time.Time
	DigitalMarketer string
	AmountInNGN     decimal.Decimal
	SourceOfFunds   string
}

// CreateJournalEntryRequest names the spend to book.
type CreateJournalEntryRequest struct {
	Docname string `json:"docname" validate:"required"`
}
