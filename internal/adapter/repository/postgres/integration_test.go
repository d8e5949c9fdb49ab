package postgres_test

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/fintrack/internal/adapter/repository/postgres"
	redisrepo "github.com/iho/fintrack/internal/adapter/repository/redis"
	"github.com/iho/fintrack/internal/domain"
	"github.com/iho/fintrack/internal/infrastructure/eventpublisher"
	infrapg "github.com/iho/fintrack/internal/infrastructure/postgres"
	"github.com/iho/fintrack/internal/usecase"
)

const migrationsPath = "../../../../migrations"

type integrationEnv struct {
	pool         *pgxpool.Pool
	accounts     *postgres.AccountRepository
	outbox       *postgres.OutboxRepository
	transactions *usecase.TransactionUseCase
	accountUC    *usecase.AccountUseCase
	statistics   *usecase.StatisticsUseCase
}

// newIntegrationEnv connects to TEST_DATABASE_URL, migrates and truncates it.
func newIntegrationEnv(t *testing.T) *integrationEnv {
	t.Helper()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	require.NoError(t, infrapg.RunMigrations(dbURL, migrationsPath, zerolog.Nop()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := infrapg.NewPoolWithConfig(ctx, infrapg.PoolConfig{DatabaseURL: dbURL, MaxConns: 20})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `TRUNCATE TABLE audit_logs, outbox_events, transactions, accounts CASCADE`)
	require.NoError(t, err)

	accountRepo := postgres.NewAccountRepository(pool)
	txRepo := postgres.NewTransactionRepository(pool)
	outboxRepo := postgres.NewOutboxRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)
	txManager := postgres.NewTxManager(pool)
	idGen := postgres.NewULIDGenerator()
	policy := domain.DefaultPolicy()

	reconciler := usecase.NewReconciliationUseCase(txManager, accountRepo, txRepo, outboxRepo, auditRepo, idGen, policy, nil)

	return &integrationEnv{
		pool:         pool,
		accounts:     accountRepo,
		outbox:       outboxRepo,
		transactions: usecase.NewTransactionUseCase(txManager, accountRepo, txRepo, reconciler, outboxRepo, auditRepo, idGen, policy, nil),
		accountUC:    usecase.NewAccountUseCase(txManager, accountRepo, outboxRepo, auditRepo, idGen, nil),
		statistics:   usecase.NewStatisticsUseCase(accountRepo, txRepo, time.UTC, nil),
	}
}

func TestIntegrationConcurrentCreatesKeepBalance(t *testing.T) {
	env := newIntegrationEnv(t)
	ctx := context.Background()

	account, err := env.accountUC.CreateAccount(ctx, usecase.CreateAccountInput{
		UserID: "user-1", Name: "Shared", Type: domain.AccountTypeBankAccount,
	})
	require.NoError(t, err)

	const workers = 50
	var (
		wg       sync.WaitGroup
		failures atomic.Int32
	)
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		i := i
		go func() {
			defer wg.Done()
			typ := domain.TransactionTypeIncome
			if i%2 == 1 {
				typ = domain.TransactionTypeExpense
			}
			_, err := env.transactions.CreateTransaction(ctx, usecase.CreateTransactionInput{
				UserID:    "user-1",
				AccountID: account.ID,
				Amount:    decimal.NewFromInt(int64(i + 1)),
				Type:      typ,
				Date:      time.Now().UTC().Add(-time.Duration(i) * time.Minute),
			})
			if err != nil {
				failures.Add(1)
			}
		}()
	}
	wg.Wait()
	require.Zero(t, failures.Load())

	// odd amounts are income, even amounts expenses: 25 pairs of (+k, -(k+1))
	stored, err := env.accounts.GetByID(ctx, nil, account.ID, "user-1")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(-25).Equal(stored.Balance), "balance %s", stored.Balance)
	require.NotNil(t, stored.LastActivity)
}

func TestIntegrationDeleteCascadesAndChecksBalance(t *testing.T) {
	env := newIntegrationEnv(t)
	ctx := context.Background()

	account, err := env.accountUC.CreateAccount(ctx, usecase.CreateAccountInput{UserID: "user-1", Name: "Wallet"})
	require.NoError(t, err)

	created, err := env.transactions.CreateTransaction(ctx, usecase.CreateTransactionInput{
		UserID: "user-1", AccountID: account.ID, Amount: decimal.NewFromInt(30), Type: domain.TransactionTypeIncome,
		Date: time.Now().UTC().Add(-time.Hour),
	})
	require.NoError(t, err)

	err = env.accountUC.DeleteAccount(ctx, account.ID, "user-1")
	require.ErrorIs(t, err, domain.ErrNonZeroBalance)

	_, err = env.transactions.CreateTransaction(ctx, usecase.CreateTransactionInput{
		UserID: "user-1", AccountID: account.ID, Amount: decimal.NewFromInt(30), Type: domain.TransactionTypeExpense,
		Date: time.Now().UTC().Add(-time.Minute),
	})
	require.NoError(t, err)

	require.NoError(t, env.accountUC.DeleteAccount(ctx, account.ID, "user-1"))

	_, err = env.transactions.GetTransaction(ctx, created.ID, "user-1")
	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)

	var events int
	require.NoError(t, env.pool.QueryRow(ctx, `SELECT COUNT(*) FROM outbox_events`).Scan(&events))
	assert.Positive(t, events)
}

func TestIntegrationDuplicateAccountName(t *testing.T) {
	env := newIntegrationEnv(t)
	ctx := context.Background()

	_, err := env.accountUC.CreateAccount(ctx, usecase.CreateAccountInput{UserID: "user-1", Name: "Wallet"})
	require.NoError(t, err)

	_, err = env.accountUC.CreateAccount(ctx, usecase.CreateAccountInput{UserID: "user-1", Name: "Wallet"})
	assert.ErrorIs(t, err, domain.ErrDuplicateAccountName)

	_, err = env.accountUC.CreateAccount(ctx, usecase.CreateAccountInput{UserID: "user-2", Name: "Wallet"})
	assert.NoError(t, err)
}

func TestIntegrationStatistics(t *testing.T) {
	env := newIntegrationEnv(t)
	ctx := context.Background()
	now := time.Now().UTC()

	account, err := env.accountUC.CreateAccount(ctx, usecase.CreateAccountInput{UserID: "user-1", Name: "Wallet"})
	require.NoError(t, err)

	for _, in := range []struct {
		amount int64
		typ    domain.TransactionType
		ago    time.Duration
	}{
		{100, domain.TransactionTypeIncome, 3 * 24 * time.Hour},
		{40, domain.TransactionTypeExpense, 2 * 24 * time.Hour},
		{10, domain.TransactionTypeExpense, time.Minute},
	} {
		_, err := env.transactions.CreateTransaction(ctx, usecase.CreateTransactionInput{
			UserID: "user-1", AccountID: account.ID, Amount: decimal.NewFromInt(in.amount), Type: in.typ,
			Date: now.Add(-in.ago),
		})
		require.NoError(t, err)
	}

	stats, err := env.statistics.StatisticsFor(ctx, account.ID, "user-1", now)
	require.NoError(t, err)
	require.Len(t, stats.BalanceHistory, domain.HistoryDays)
	assert.True(t, decimal.NewFromInt(50).Equal(stats.BalanceHistory[domain.HistoryDays-1].Balance))
	assert.Equal(t, domain.ActivityActive, stats.ActivityStatus)

	page, err := env.transactions.ListTransactions(ctx, domain.TransactionFilter{UserID: "user-1", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 2, page.Pages())
	require.Len(t, page.Data, 2)
	assert.Equal(t, "Wallet", page.Data[0].Account.Name)
}

func TestIntegrationOutboxDeliveredToRedis(t *testing.T) {
	env := newIntegrationEnv(t)
	ctx := context.Background()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	sub := client.Subscribe(ctx, "fintrack.events")
	t.Cleanup(func() { sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	account, err := env.accountUC.CreateAccount(ctx, usecase.CreateAccountInput{
		UserID: "user-1", Name: "Events", Type: domain.AccountTypeCash,
	})
	require.NoError(t, err)
	_, err = env.transactions.CreateTransaction(ctx, usecase.CreateTransactionInput{
		UserID: "user-1", AccountID: account.ID, Amount: decimal.NewFromInt(5),
		Type: domain.TransactionTypeIncome, Date: time.Now().UTC().Add(-time.Minute),
	})
	require.NoError(t, err)

	pending, err := env.outbox.GetUnpublished(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 3)

	worker := eventpublisher.NewWorker(eventpublisher.Config{
		OutboxRepo: env.outbox,
		Publisher:  redisrepo.NewEventPublisher(client, "fintrack.events"),
		Logger:     zerolog.Nop(),
		BatchSize:  10,
	})
	published, err := worker.ProcessBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, published)

	var types []string
	for n := 0; n < 3; n++ {
		select {
		case msg := <-sub.Channel():
			var event redisrepo.EventMessage
			require.NoError(t, json.Unmarshal([]byte(msg.Payload), &event))
			types = append(types, event.EventType)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for event")
		}
	}
	assert.ElementsMatch(t, []string{
		domain.EventTypeAccountCreated,
		domain.EventTypeTransactionCreated,
		domain.EventTypeAccountChanged,
	}, types)

	pending, err = env.outbox.GetUnpublished(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
