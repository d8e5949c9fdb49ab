package usecase_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fintrack/internal/domain"
	"github.com/iho/fintrack/internal/usecase"
	"github.com/iho/fintrack/internal/usecase/mocks"
)

const testUser = "user-1"

type sequentialIDs struct {
	mu sync.Mutex
	n  int
}

func (g *sequentialIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("id-%04d", g.n)
}

type fixture struct {
	store        *mocks.Store
	transactions *usecase.TransactionUseCase
	accounts     *usecase.AccountUseCase
	reconciler   *usecase.ReconciliationUseCase
	statistics   *usecase.StatisticsUseCase
}

func newFixture(t *testing.T, policy domain.Policy) *fixture {
	t.Helper()

	store := mocks.NewStore()
	ids := &sequentialIDs{}

	reconciler := usecase.NewReconciliationUseCase(
		store, store.Accounts(), store.Transactions(), store.Outbox(), store.AuditLog(), ids, policy, nil,
	)

	return &fixture{
		store: store,
		transactions: usecase.NewTransactionUseCase(
			store, store.Accounts(), store.Transactions(), reconciler, store.Outbox(), store.AuditLog(), ids, policy, nil,
		),
		accounts: usecase.NewAccountUseCase(
			store, store.Accounts(), store.Outbox(), store.AuditLog(), ids, nil,
		),
		reconciler: reconciler,
		statistics: usecase.NewStatisticsUseCase(store.Accounts(), store.Transactions(), time.UTC, nil),
	}
}

func (f *fixture) seedAccount(t *testing.T, id string, typ domain.AccountType, balance int64) *domain.Account {
	t.Helper()
	now := time.Now().UTC()
	a := &domain.Account{
		ID:        id,
		UserID:    testUser,
		Name:      "Account " + id,
		Balance:   decimal.NewFromInt(balance),
		Currency:  "EUR",
		Type:      typ,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.store.PutAccount(a)
	return a
}

// expectedBalance sums the store's transactions for the account directly.
func (f *fixture) expectedBalance(t *testing.T, accountID string) decimal.Decimal {
	t.Helper()
	totals, err := f.store.Transactions().SumByType(context.Background(), nil, domain.AggregateFilter{
		UserID:    testUser,
		AccountID: accountID,
	})
	if err != nil {
		t.Fatalf("sum: %v", err)
	}
	return totals.Net()
}

func amount(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}
