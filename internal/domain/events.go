package domain

import "time"

// Event types
const (
	EventTypeClientCreated  = "client.created"
	EventTypeBalanceChanged = "client.balance_changed"
)

// Aggregate types
const (
	AggregateTypeClient = "client"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// BalanceChangedEvent payload
type BalanceChangedEvent struct {
	ClientID        string `json:"client_id"`
	HistoryID       string `json:"history_id"`
	PreviousBalance string `json:"previous_balance"`
	Amount          string `json:"amount"`
	NewBalance      string `json:"new_balance"`
	Type            string `json:"type"`
	SourceType      string `json:"source_type"`
	SourceID        string `json:"source_id"`
}

// Payload flattens the event for the outbox table.
func (e BalanceChangedEvent) Payload() map[string]any {
	return map[string]any{
		"client_id":        e.ClientID,
		"history_id":       e.HistoryID,
		"previous_balance": e.PreviousBalance,
		"amount":           e.Amount,
		"new_balance":      e.NewBalance,
		"type":             e.Type,
		"source_type":      e.SourceType,
		"source_id":        e.SourceID,
	}
}
