// Package accounts resolves the company-level ledger defaults journal
// builders need: account owners, receivable accounts and cost centers.
package accounts

// Company carries the defaults stored on a company record.
type Company struct {
	Name                     string
	Abbr                     string
	DefaultCurrency          string
	DefaultReceivableAccount string
}

// DefaultCostCenterKey is the system default holding the cost center.
const DefaultCostCenterKey = "cost_center"
