package domain

import (
	"encoding/json"
	"time"
)

// AuditLog is an operator-facing audit trail entry.
type AuditLog struct {
	ID           string
	Action       string // balance.reconcile, client.delete, ...
	ResourceType string
	ResourceID   string
	RequestID    string
	BeforeState  JSON
	AfterState   JSON
	Status       string
	ErrorMessage string
	CreatedAt    time.Time
}

// JSON is a type alias for JSON data
type JSON map[string]any

// AuditAction represents different types of auditable actions
type AuditAction string

const (
	AuditActionBalanceReconcile AuditAction = "balance.reconcile"
	AuditActionClientDelete     AuditAction = "client.delete"
	AuditActionClientDeactivate AuditAction = "client.deactivate"
)

// AuditStatus represents the status of an audited action
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailure AuditStatus = "failure"
)

// Audit resource types
const (
	AuditResourceClient = "client"
)

// MarshalState converts a domain object to JSON for audit logging
func MarshalState(v any) JSON {
	if v == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return JSON{"error": "failed to marshal state"}
	}

	var result JSON
	if err := json.Unmarshal(data, &result); err != nil {
		return JSON{"error": "failed to unmarshal state"}
	}

	return result
}

// AuditFilter defines filters for querying audit logs
type AuditFilter struct {
	Action       string
	ResourceType string
	ResourceID   string
	Status       string
	StartDate    *time.Time
	EndDate      *time.Time
	Limit        int
	Offset       int
}
