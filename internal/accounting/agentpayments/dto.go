// Package agentpayments settles delivery-agent remittances against the
// sales invoices they collected.
package agentpayments

import "github.com/timmiekettle/tk2/internal/platform/rpc"

// Doctype is the document type name used in locks and audit.
const Doctype = "Agent Payment"

// AgentPayment is the remittance form as sent by the desk.
type AgentPayment struct {
	Name                string     `json:"name"`
	Date                rpc.Date   `json:"date"`
	Bank                string     `json:"bank"`
	CommissionsDeducted rpc.Number `json:"commissions_deducted"`
	ChargesDeducted     rpc.Number `json:"charges_deducted"`
	SelectedTotal       rpc.Number `json:"selected_total"`
}

// SelectedInvoice is one invoice the agent is paying for.
type SelectedInvoice struct {
	Name              string     `json:"name"`
	Customer          string     `json:"customer"`
	OutstandingAmount rpc.Number `json:"outstanding_amount"`
}

// CreateJournalEntryRequest carries both documents; either may arrive as a
// JSON string.
type CreateJournalEntryRequest struct {
	AgentPayment     rpc.Embedded[AgentPayment]      `json:"agent_payment"`
	SelectedInvoices rpc.Embedded[[]SelectedInvoice] `json:"selected_invoices"`
}

// UnpaidInvoicesRequest filters by delivery agent.
type UnpaidInvoicesRequest struct {
	Agent string `json:"agent" validate:"required"`
}
