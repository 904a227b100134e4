package servicesheets

// CreateSalesInvoiceRequest names the sheet to invoice.
type CreateSalesInvoiceRequest struct {
	CustomerServiceSheet string `json:"customer_service_sheet" validate:"required"`
}
