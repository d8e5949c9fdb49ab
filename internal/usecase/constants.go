package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// RecentTransactionsLimit is the size of the summary's recent list.
	RecentTransactionsLimit = 3

	// DefaultHistoryLimit and MaxHistoryLimit bound account history pages.
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 100
)
