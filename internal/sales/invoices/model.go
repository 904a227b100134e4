package invoices

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// Doctype is the document type name used in locks, audit and references.
	Doctype = "Sales Invoice"
	// DiscountOnGrandTotal applies additional discount after taxes.
	DiscountOnGrandTotal = "Grand Total"

	DocStatusDraft     = 0
	DocStatusSubmitted = 1
	DocStatusCancelled = 2
)

// Invoice is a sales invoice header with its lines.
type Invoice struct {
	Name                         string
	Company                      string
	Customer                     string
	PostingDate                  time.Time
	SetPostingTime               bool
	CustomAgent                  string
	WriteOffAmount               decimal.Decimal
	BaseWriteOffAmount           decimal.Decimal
	ApplyDiscountOn              string
	DiscountAmount               decimal.Decimal
	AdditionalDiscountPercentage decimal.Decimal
	Total                        decimal.Decimal
	GrandTotal                   decimal.Decimal
	OutstandingAmount            decimal.Decimal
	DocStatus                    int
	Owner                        string
	Source                       string
	Items                        []Item
	CreatedAt                    time.Time
}

// Item is one invoice line.
type Item struct {
	ItemCode  string
	Qty       decimal.Decimal
	Rate      decimal.Decimal
	Amount    decimal.Decimal
	Warehouse string
}

// UnpaidInvoice is a row of get_unpaid_invoices.
type UnpaidInvoice struct {
	PostingDate       string  `json:"posting_date"`
	Name              string  `json:"name"`
	Customer          string  `json:"customer"`
	GrandTotal        float64 `json:"grand_total"`
	OutstandingAmount float64 `json:"outstanding_amount"`
}

// SoldItem aggregates quantities sold per item.
type SoldItem struct {
	ItemCode string
	Qty      decimal.Decimal
}
