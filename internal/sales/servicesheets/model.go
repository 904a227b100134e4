// Package servicesheets turns Customer Service Sheets into sales invoices.
package servicesheets

import (
	"time"

	"github.com/shopspring/decimal"
)

// Doctype is the document type name used in locks and audit.
const Doctype = "Customer Service Sheet"

// Sheet statuses counted by the dashboard.
const (
	StatusDelivered  = "Delivered"
	StatusProcessing = "Processing"
	StatusCancelled  = "Cancelled"
	StatusDuplicate  = "Duplicate"
)

// Sheet is a Customer Service Sheet with its item rows.
type Sheet struct {
	Name            string
	CS              string
	Status          string
	OrderDate       time.Time
	Price           decimal.Decimal
	ERPCustomer     string
	CustomAgent     string
	DigitalMarketer string
	DocStatus       int
	Items           []SheetItem
}

// SheetItem is one ordered line.
type SheetItem struct {
	ItemCode  string
	Qty       decimal.Decimal
	Rate      decimal.Decimal
	Warehouse string
}
