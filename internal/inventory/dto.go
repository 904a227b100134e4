package inventory

import "github.com/timmiekettle/tk2/internal/platform/rpc"

// StockRequest lists item codes, as a JSON array or a JSON-encoded string.
type StockRequest struct {
	Items rpc.Embedded[[]string] `json:"items"`
	State string                 `json:"state"`
}

// ReportRequest selects the report window and warehouse.
type ReportRequest struct {
	StartDate rpc.Date `json:"start_date"`
	EndDate   rpc.Date `json:"end_date"`
	Warehouse string   `json:"warehouse"`
	Format    string   `json:"format" validate:"omitempty,oneof=html pdf xlsx"`
}
