package customers

import "time"

const (
	// DefaultGroup is assigned to every customer created from the desk.
	DefaultGroup = "Individual"
	// DefaultTerritory applies unless the country maps to its own territory.
	DefaultTerritory = "Nigeria"
	// Ghana is the one country with its own territory and receivable account.
	Ghana = "Ghana"
)

// Customer mirrors a row in customers plus its party accounts.
type Customer struct {
	Name            string         `json:"name"`
	CustomerName    string         `json:"customer_name"`
	CustomerGroup   string         `json:"customer_group"`
	Territory       string         `json:"territory"`
	Country         string         `json:"country,omitempty"`
	DefaultCurrency string         `json:"default_currency,omitempty"`
	EmailID         string         `json:"email_id,omitempty"`
	MobileNo        string         `json:"mobile_no,omitempty"`
	Owner           string         `json:"owner,omitempty"`
	Accounts        []PartyAccount `json:"accounts,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

// PartyAccount links a customer to a receivable account in one company.
type PartyAccount struct {
	Company string `json:"company"`
	Account string `json:"account"`
}
