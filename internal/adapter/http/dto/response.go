package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bizledger/internal/domain"
	"github.com/iho/bizledger/internal/usecase"
)

// ClientResponse represents a client in API responses. Decimal fields are
// encoded as JSON strings.
type ClientResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	Balance   decimal.Decimal `json:"balance"`
	Active    bool            `json:"active"`
	Version   int64           `json:"version"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ClientFromDomain converts domain client to response.
func ClientFromDomain(c *domain.Client) *ClientResponse {
	return &ClientResponse{
		ID:        c.ID,
		Name:      c.Name,
		Type:      string(c.Type),
		Balance:   c.Balance,
		Active:    c.Active,
		Version:   c.Version,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// ClientsFromDomain converts domain clients to responses.
func ClientsFromDomain(clients []*domain.Client) []*ClientResponse {
	result := make([]*ClientResponse, len(clients))
	for i, c := range clients {
		result[i] = ClientFromDomain(c)
	}
	return result
}

// BalanceResponse is the stored balance of a client.
type BalanceResponse struct {
	ClientID string          `json:"client_id"`
	Balance  decimal.Decimal `json:"balance"`
}

// InvoiceResponse represents an invoice in API responses.
type InvoiceResponse struct {
	ID          string          `json:"id"`
	ClientID    string          `json:"client_id"`
	Type        string          `json:"type"`
	Number      string          `json:"number,omitempty"`
	Description string          `json:"description,omitempty"`
	Total       decimal.Decimal `json:"total"`
	Paid        decimal.Decimal `json:"paid"`
	Due         decimal.Decimal `json:"due"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   *time.Time      `json:"deleted_at,omitempty"`
}

// InvoiceFromDomain converts domain invoice to response.
func InvoiceFromDomain(i *domain.Invoice) *InvoiceResponse {
	return &InvoiceResponse{
		ID:          i.ID,
		ClientID:    i.ClientID,
		Type:        string(i.Type),
		Number:      i.Number,
		Description: i.Description,
		Total:       i.Total,
		Paid:        i.Paid,
		Due:         i.Due(),
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
		DeletedAt:   i.DeletedAt,
	}
}

// InvoicesFromDomain converts domain invoices to responses.
func InvoicesFromDomain(invoices []*domain.Invoice) []*InvoiceResponse {
	result := make([]*InvoiceResponse, len(invoices))
	for i, inv := range invoices {
		result[i] = InvoiceFromDomain(inv)
	}
	return result
}

// TransactionResponse represents a transaction in API responses.
type TransactionResponse struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	ClientID    *string         `json:"client_id,omitempty"`
	InvoiceID   *string         `json:"invoice_id,omitempty"`
	Description string          `json:"description,omitempty"`
	Date        time.Time       `json:"date"`
	CreatedAt   time.Time       `json:"created_at"`
	DeletedAt   *time.Time      `json:"deleted_at,omitempty"`
}

// TransactionFromDomain converts domain transaction to response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:          t.ID,
		Type:        string(t.Type),
		Amount:      t.Amount,
		ClientID:    t.ClientID,
		InvoiceID:   t.InvoiceID,
		Description: t.Description,
		Date:        t.Date,
		CreatedAt:   t.CreatedAt,
		DeletedAt:   t.DeletedAt,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(txns []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(txns))
	for i, t := range txns {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// HistoryEntryResponse is one balance history row.
type HistoryEntryResponse struct {
	ID              string          `json:"id"`
	ClientID        string          `json:"client_id"`
	InvoiceID       *string         `json:"invoice_id,omitempty"`
	TransactionID   *string         `json:"transaction_id,omitempty"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	Amount          decimal.Decimal `json:"amount"`
	NewBalance      decimal.Decimal `json:"new_balance"`
	Type            string          `json:"type"`
	Description     string          `json:"description"`
	Date            time.Time       `json:"date"`
}

// HistoryFromDomain converts history rows to responses.
func HistoryFromDomain(rows []*domain.BalanceHistory) []*HistoryEntryResponse {
	result := make([]*HistoryEntryResponse, len(rows))
	for i, h := range rows {
		result[i] = &HistoryEntryResponse{
			ID:              h.ID,
			ClientID:        h.ClientID,
			InvoiceID:       h.InvoiceID,
			TransactionID:   h.TransactionID,
			PreviousBalance: h.PreviousBalance,
			Amount:          h.Amount,
			NewBalance:      h.NewBalance,
			Type:            string(h.Type),
			Description:     h.Description,
			Date:            h.Date,
		}
	}
	return result
}

// ReconciliationResponse is the outcome of reconciling one client.
type ReconciliationResponse struct {
	ClientID          string          `json:"client_id"`
	StoredBalance     decimal.Decimal `json:"stored_balance"`
	CalculatedBalance decimal.Decimal `json:"calculated_balance"`
	HistoryBalance    decimal.Decimal `json:"history_balance"`
	Difference        decimal.Decimal `json:"difference"`
	IsReconciled      bool            `json:"is_reconciled"`
	CheckedAt         time.Time       `json:"checked_at"`
}

// ReconciliationFromUseCase converts a reconciliation result to response.
func ReconciliationFromUseCase(r *usecase.ReconciliationResult) *ReconciliationResponse {
	return &ReconciliationResponse{
		ClientID:          r.ClientID,
		StoredBalance:     r.StoredBalance,
		CalculatedBalance: r.CalculatedBalance,
		HistoryBalance:    r.HistoryBalance,
		Difference:        r.Difference,
		IsReconciled:      r.IsReconciled,
		CheckedAt:         r.CheckedAt,
	}
}

// ReconciliationReportResponse summarizes a ledger-wide reconciliation run.
type ReconciliationReportResponse struct {
	TotalClients      int                       `json:"total_clients"`
	ReconciledClients int                       `json:"reconciled_clients"`
	Discrepancies     []*ReconciliationResponse `json:"discrepancies"`
	LedgerConsistent  bool                      `json:"ledger_consistent"`
	CheckedAt         time.Time                 `json:"checked_at"`
}

// ReportFromUseCase converts a reconciliation report to response.
func ReportFromUseCase(r *usecase.ReconciliationReport) *ReconciliationReportResponse {
	discrepancies := make([]*ReconciliationResponse, len(r.Discrepancies))
	for i, d := range r.Discrepancies {
		discrepancies[i] = ReconciliationFromUseCase(d)
	}

	return &ReconciliationReportResponse{
		TotalClients:      r.TotalClients,
		ReconciledClients: r.ReconciledClients,
		Discrepancies:     discrepancies,
		LedgerConsistent:  r.LedgerConsistent,
		CheckedAt:         r.CheckedAt,
	}
}

// AuditLogResponse represents an audit log entry.
type AuditLogResponse struct {
	ID           string      `json:"id"`
	Action       string      `json:"action"`
	ResourceType string      `json:"resource_type"`
	ResourceID   string      `json:"resource_id"`
	RequestID    string      `json:"request_id,omitempty"`
	BeforeState  domain.JSON `json:"before_state,omitempty"`
	AfterState   domain.JSON `json:"after_state,omitempty"`
	Status       string      `json:"status"`
	ErrorMessage string      `json:"error_message,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

// AuditLogsFromDomain converts audit logs to responses.
func AuditLogsFromDomain(logs []*domain.AuditLog) []*AuditLogResponse {
	result := make([]*AuditLogResponse, len(logs))
	for i, l := range logs {
		result[i] = &AuditLogResponse{
			ID:           l.ID,
			Action:       l.Action,
			ResourceType: l.ResourceType,
			ResourceID:   l.ResourceID,
			RequestID:    l.RequestID,
			BeforeState:  l.BeforeState,
			AfterState:   l.AfterState,
			Status:       l.Status,
			ErrorMessage: l.ErrorMessage,
			CreatedAt:    l.CreatedAt,
		}
	}
	return result
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
