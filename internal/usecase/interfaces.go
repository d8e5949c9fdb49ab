package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fintrack/internal/domain"
)

// AccountRepository defines data access for accounts.
// Every method is scoped by the owning user. A nil tx reads from the pool.
type AccountRepository interface {
	Create(ctx context.Context, tx Transaction, account *domain.Account) error
	GetByID(ctx context.Context, tx Transaction, id, userID string) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id, userID string) (*domain.Account, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Account, error)
	Update(ctx context.Context, tx Transaction, account *domain.Account) error
	UpdateBalance(ctx context.Context, tx Transaction, id, userID string, balance decimal.Decimal, lastActivity *time.Time, updatedAt time.Time) error
	Delete(ctx context.Context, tx Transaction, id, userID string) error
}

// TransactionRepository defines data access for transactions.
type TransactionRepository interface {
	Create(ctx context.Context, tx Transaction, t *domain.Transaction) error
	GetByID(ctx context.Context, tx Transaction, id, userID string) (*domain.Transaction, error)
	Update(ctx context.Context, tx Transaction, t *domain.Transaction) error
	Delete(ctx context.Context, tx Transaction, id, userID string) error
	List(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, int64, error)
	ListBetween(ctx context.Context, accountID, userID string, from, to time.Time) ([]*domain.Transaction, error)
	SumByType(ctx context.Context, tx Transaction, filter domain.AggregateFilter) (domain.TypeTotals, error)
	LatestDate(ctx context.Context, tx Transaction, accountID, userID string) (*time.Time, error)
	CurrencyUsage(ctx context.Context, userID string, from, to time.Time) ([]domain.CurrencyUsage, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	CreateTx(ctx context.Context, tx Transaction, log *domain.AuditLog) error
	ListByResource(ctx context.Context, userID, resourceType, resourceID string, limit int) ([]*domain.AuditLog, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// IdempotencyPending is the value held by a key while its first request
// is still running.
const IdempotencyPending = "processing"

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops an in-flight key so the request can be retried.
	Release(ctx context.Context, key string) error
}

// EventPublisher delivers outbox events to subscribers.
type EventPublisher interface {
	Publish(ctx context.Context, event *domain.OutboxEvent) error
}
