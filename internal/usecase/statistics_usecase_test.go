package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/fintrack/internal/domain"
)

var statsNow = time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

func at(month time.Month, day, hour int) time.Time {
	return time.Date(2024, month, day, hour, 0, 0, 0, time.UTC)
}

func (f *fixture) putTx(id, accountID string, typ domain.TransactionType, value string, date time.Time) {
	f.store.PutTransaction(&domain.Transaction{
		ID:        id,
		UserID:    testUser,
		AccountID: accountID,
		Amount:    amount(value),
		Type:      typ,
		Date:      date,
	})
}

func seedStatistics(t *testing.T) *fixture {
	t.Helper()
	f := newFixture(t, domain.DefaultPolicy())

	primary := f.seedAccount(t, "acc-1", domain.AccountTypeBankAccount, 1350)
	last := at(time.March, 15, 9)
	primary.LastActivity = &last
	f.store.PutAccount(primary)

	usd := f.seedAccount(t, "acc-2", domain.AccountTypeCash, -20)
	usd.Currency = "USD"
	f.store.PutAccount(usd)

	f.putTx("tx-1", "acc-1", domain.TransactionTypeIncome, "1000", at(time.February, 10, 8))
	f.putTx("tx-2", "acc-1", domain.TransactionTypeExpense, "200", at(time.February, 20, 8))
	f.putTx("tx-3", "acc-1", domain.TransactionTypeIncome, "500", at(time.March, 2, 8))
	f.putTx("tx-4", "acc-1", domain.TransactionTypeExpense, "50", at(time.March, 12, 10))
	f.putTx("tx-5", "acc-1", domain.TransactionTypeIncome, "100", at(time.March, 15, 9))
	f.putTx("tx-6", "acc-2", domain.TransactionTypeExpense, "20", at(time.March, 5, 8))

	return f
}

func TestStatisticsUseCase_StatisticsFor(t *testing.T) {
	f := seedStatistics(t)

	stats, err := f.statistics.StatisticsFor(context.Background(), "acc-1", testUser, statsNow)
	require.NoError(t, err)

	assert.Equal(t, "EUR", stats.Currency)
	assert.True(t, amount("600").Equal(stats.MonthlyIncome), "income %s", stats.MonthlyIncome)
	assert.True(t, amount("50").Equal(stats.MonthlyExpenses), "expenses %s", stats.MonthlyExpenses)
	assert.True(t, amount("550").Equal(stats.NetChange))
	assert.Equal(t, int64(3), stats.TransactionsCount)
	assert.True(t, amount("216.67").Equal(stats.AverageTransaction), "average %s", stats.AverageTransaction)

	// previous month netted 800
	assert.Equal(t, domain.TrendDown, stats.Trend)
	assert.True(t, amount("-31.25").Equal(stats.TrendPercentage), "pct %s", stats.TrendPercentage)

	assert.Equal(t, domain.ActivityActive, stats.ActivityStatus)

	want := []domain.BalancePoint{
		{Date: "2024-03-09", Balance: amount("1300")},
		{Date: "2024-03-10", Balance: amount("1300")},
		{Date: "2024-03-11", Balance: amount("1300")},
		{Date: "2024-03-12", Balance: amount("1250")},
		{Date: "2024-03-13", Balance: amount("1250")},
		{Date: "2024-03-14", Balance: amount("1250")},
		{Date: "2024-03-15", Balance: amount("1350")},
	}
	require.Len(t, stats.BalanceHistory, len(want))
	for i, p := range want {
		assert.Equal(t, p.Date, stats.BalanceHistory[i].Date)
		assert.True(t, p.Balance.Equal(stats.BalanceHistory[i].Balance), "%s: %s", p.Date, stats.BalanceHistory[i].Balance)
	}
}

func TestStatisticsUseCase_NoPreviousMonth(t *testing.T) {
	f := newFixture(t, domain.DefaultPolicy())
	f.seedAccount(t, "acc-1", domain.AccountTypeCash, 0)
	f.putTx("tx-1", "acc-1", domain.TransactionTypeIncome, "10", at(time.March, 3, 8))

	stats, err := f.statistics.StatisticsFor(context.Background(), "acc-1", testUser, statsNow)
	require.NoError(t, err)
	assert.Equal(t, domain.TrendUp, stats.Trend)
	assert.True(t, amount("100").Equal(stats.TrendPercentage))
	assert.Equal(t, domain.ActivityInactive, stats.ActivityStatus, "last activity comes from the stored account")
}

func TestStatisticsUseCase_EmptyAccount(t *testing.T) {
	f := newFixture(t, domain.DefaultPolicy())
	f.seedAccount(t, "acc-1", domain.AccountTypeCash, 0)

	stats, err := f.statistics.StatisticsFor(context.Background(), "acc-1", testUser, statsNow)
	require.NoError(t, err)
	assert.Equal(t, domain.TrendStable, stats.Trend)
	assert.True(t, stats.AverageTransaction.IsZero())
	assert.Zero(t, stats.TransactionsCount)
	require.Len(t, stats.BalanceHistory, domain.HistoryDays)
	for _, p := range stats.BalanceHistory {
		assert.True(t, p.Balance.IsZero())
	}
}

func TestStatisticsUseCase_Errors(t *testing.T) {
	f := seedStatistics(t)
	ctx := context.Background()

	_, err := f.statistics.StatisticsFor(ctx, "acc-1", "intruder", statsNow)
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)

	_, err = f.statistics.StatisticsFor(ctx, "acc-1", "", statsNow)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	boom := errors.New("boom")
	f.store.Fail("transactions.ListBetween", boom)
	_, err = f.statistics.StatisticsFor(ctx, "acc-1", testUser, statsNow)
	assert.ErrorIs(t, err, boom)
}

func TestStatisticsUseCase_MonthlySummary(t *testing.T) {
	f := seedStatistics(t)

	summary, err := f.statistics.MonthlySummary(context.Background(), testUser, statsNow)
	require.NoError(t, err)

	assert.True(t, amount("600").Equal(summary.MonthlyIncome))
	assert.True(t, amount("70").Equal(summary.MonthlyExpenses))
	assert.True(t, amount("530").Equal(summary.NetChange))
	assert.Equal(t, "EUR", summary.PrimaryCurrency)

	require.Len(t, summary.RecentTransactions, 3)
	assert.Equal(t, "tx-5", summary.RecentTransactions[0].ID)
	assert.Equal(t, "tx-4", summary.RecentTransactions[1].ID)
	assert.Equal(t, "tx-6", summary.RecentTransactions[2].ID)
	require.NotNil(t, summary.RecentTransactions[2].Account)
	assert.Equal(t, "USD", summary.RecentTransactions[2].Account.Currency)
}

func TestStatisticsUseCase_MonthlySummaryWithoutTransactions(t *testing.T) {
	f := newFixture(t, domain.DefaultPolicy())

	summary, err := f.statistics.MonthlySummary(context.Background(), testUser, statsNow)
	require.NoError(t, err)
	assert.True(t, summary.NetChange.IsZero())
	assert.Equal(t, domain.DefaultCurrency, summary.PrimaryCurrency)
	assert.Empty(t, summary.RecentTransactions)
}
