// Package inventory answers stock questions and renders the warehouse
// stock and sales report.
package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

// WarehouseStock is the positive stock of one item in one warehouse.
type WarehouseStock struct {
	Warehouse string  `json:"warehouse"`
	State     string  `json:"state"`
	Qty       float64 `json:"qty"`
}

// ItemQty is a quantity per item code.
type ItemQty struct {
	ItemCode string
	Qty      decimal.Decimal
}

// Report is the stock and sales report for one warehouse.
type Report struct {
	Start     time.Time
	End       time.Time
	Warehouse string
	Sold      []ItemQty
	OnHand    []ItemQty
}

// Report output formats.
const (
	FormatHTML = "html"
	FormatPDF  = "pdf"
	FormatXLSX = "xlsx"
)
