package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeAccountCreated     = "account.created"
	EventTypeAccountUpdated     = "account.updated"
	EventTypeAccountDeleted     = "account.deleted"
	EventTypeAccountChanged     = "account.changed"
	EventTypeTransactionCreated = "transaction.created"
	EventTypeTransactionUpdated = "transaction.updated"
	EventTypeTransactionDeleted = "transaction.deleted"
)

// Aggregate types
const (
	AggregateTypeAccount     = "account"
	AggregateTypeTransaction = "transaction"
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

// AccountChangedPayload is emitted every time reconciliation rewrites an
// account's cached balance. Subscribers drop whatever they derived from it.
func AccountChangedPayload(a *Account, previous decimal.Decimal) map[string]any {
	var lastActivity any
	if a.LastActivity != nil {
		lastActivity = a.LastActivity.UTC().Format(time.RFC3339)
	}
	return map[string]any{
		"account_id":       a.ID,
		"user_id":          a.UserID,
		"balance":          a.Balance.String(),
		"previous_balance": previous.String(),
		"last_activity":    lastActivity,
	}
}

// TransactionPayload describes a transaction mutation.
func TransactionPayload(t *Transaction) map[string]any {
	return map[string]any{
		"transaction_id": t.ID,
		"account_id":     t.AccountID,
		"user_id":        t.UserID,
		"amount":         t.Amount.String(),
		"type":           string(t.Type),
		"date":           t.Date.UTC().Format(time.RFC3339),
	}
}

// AccountPayload describes an account mutation.
func AccountPayload(a *Account) map[string]any {
	return map[string]any{
		"account_id": a.ID,
		"user_id":    a.UserID,
		"name":       a.Name,
		"currency":   a.Currency,
		"type":       string(a.Type),
	}
}
