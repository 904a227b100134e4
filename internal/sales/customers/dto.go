package customers

// SearchCustomerRequest holds search_customer arguments.
type SearchCustomerRequest struct {
	Email  string `json:"email,omitempty" jsonschema_description:"Exact email to match; takes priority over mobile"`
	Mobile string `json:"mobile,omitempty" jsonschema_description:"Mobile number, local or international format"`
}

// CreateCustomerRequest holds create_customer arguments.
type CreateCustomerRequest struct {
	CustomerName    string `json:"customer_name" validate:"required,max=140" jsonschema:"required"`
	Country         string `json:"country,omitempty" validate:"omitempty,max=100"`
	DefaultAccount  string `json:"default_account,omitempty" validate:"omitempty,max=140"`
	BillingCurrency string `json:"billing_currency,omitempty" validate:"omitempty,max=3"`
	Email           string `json:"email,omitempty" validate:"omitempty,max=140"`
	Mobile          string `json:"mobile,omitempty" validate:"omitempty,max=40"`
	Company         string `json:"company,omitempty" jsonschema_description:"Required when country is Ghana and default_account is set"`
}
