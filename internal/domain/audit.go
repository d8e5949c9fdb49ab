package domain

import (
	"encoding/json"
	"time"
)

// AuditLog records who changed what, with the state before and after.
type AuditLog struct {
	ID           string
	UserID       string // Who performed the action
	Action       AuditAction
	ResourceType string // account or transaction
	ResourceID   string
	BeforeState  JSON
	AfterState   JSON
	CreatedAt    time.Time
}

// JSON is a type alias for JSON data
type JSON map[string]any

// AuditAction represents different types of auditable actions
type AuditAction string

const (
	AuditActionAccountCreate     AuditAction = "account.create"
	AuditActionAccountUpdate     AuditAction = "account.update"
	AuditActionAccountDelete     AuditAction = "account.delete"
	AuditActionAccountReconcile  AuditAction = "account.reconcile"
	AuditActionTransactionCreate AuditAction = "transaction.create"
	AuditActionTransactionUpdate AuditAction = "transaction.update"
	AuditActionTransactionDelete AuditAction = "transaction.delete"
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

