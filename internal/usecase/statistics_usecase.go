package usecase

import (
	"context"
	"time"

	"github.com/iho/fintrack/internal/domain"
	"github.com/iho/fintrack/internal/infrastructure/metrics"
)

// StatisticsUseCase computes read-only reports from transactions. It never
// writes; reads run outside any transaction at the store's default isolation.
type StatisticsUseCase struct {
	accountRepo AccountRepository
	txRepo      TransactionRepository
	location    *time.Location
	metrics     *metrics.Metrics
}

// NewStatisticsUseCase creates a StatisticsUseCase. Calendar boundaries
// (days and months) are taken in loc.
func NewStatisticsUseCase(
	accountRepo AccountRepository,
	txRepo TransactionRepository,
	loc *time.Location,
	metrics *metrics.Metrics,
) *StatisticsUseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &StatisticsUseCase{
		accountRepo: accountRepo,
		txRepo:      txRepo,
		location:    loc,
		metrics:     metrics,
	}
}

// StatisticsFor computes the monthly figures, trend, balance history and
// activity status of one account as of now.
func (uc *StatisticsUseCase) StatisticsFor(ctx context.Context, accountID, userID string, now time.Time) (*domain.AccountStatistics, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	defer uc.observe("account", time.Now())

	now = now.In(uc.location)

	account, err := uc.accountRepo.GetByID(ctx, nil, accountID, userID)
	if err != nil {
		return nil, err
	}

	monthStart := domain.MonthStart(now)
	prevMonthStart := domain.PreviousMonthStart(now)
	historyStart := domain.HistoryStart(now)
	historyEnd := historyStart.AddDate(0, 0, domain.HistoryDays)

	current, err := uc.txRepo.SumByType(ctx, nil, domain.AggregateFilter{
		UserID: userID, AccountID: accountID, From: &monthStart, To: &now,
	})
	if err != nil {
		return nil, err
	}

	previous, err := uc.txRepo.SumByType(ctx, nil, domain.AggregateFilter{
		UserID: userID, AccountID: accountID, From: &prevMonthStart, To: &monthStart,
	})
	if err != nil {
		return nil, err
	}

	opening, err := uc.txRepo.SumByType(ctx, nil, domain.AggregateFilter{
		UserID: userID, AccountID: accountID, To: &historyStart,
	})
	if err != nil {
		return nil, err
	}

	window, err := uc.txRepo.ListBetween(ctx, accountID, userID, historyStart, historyEnd)
	if err != nil {
		return nil, err
	}

	net := current.Net()
	trend, pct := domain.ComputeTrend(net, previous.Net())

	return &domain.AccountStatistics{
		AccountID:          account.ID,
		Currency:           account.Currency,
		MonthlyIncome:      current.Income,
		MonthlyExpenses:    current.Expense,
		NetChange:          net,
		Trend:              trend,
		TrendPercentage:    pct,
		TransactionsCount:  current.Count(),
		AverageTransaction: domain.AverageTransaction(current),
		BalanceHistory:     domain.BuildBalanceHistory(opening.Net(), window, historyStart),
		LastActivity:       account.LastActivity,
		ActivityStatus:     domain.ClassifyActivity(account.LastActivity, now),
	}, nil
}

// MonthlySummary totals the current month across all of the user's accounts.
func (uc *StatisticsUseCase) MonthlySummary(ctx context.Context, userID string, now time.Time) (*domain.MonthlySummary, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	defer uc.observe("summary", time.Now())

	now = now.In(uc.location)
	monthStart := domain.MonthStart(now)

	totals, err := uc.txRepo.SumByType(ctx, nil, domain.AggregateFilter{
		UserID: userID, From: &monthStart, To: &now,
	})
	if err != nil {
		return nil, err
	}

	usage, err := uc.txRepo.CurrencyUsage(ctx, userID, monthStart, now)
	if err != nil {
		return nil, err
	}

	recent, _, err := uc.txRepo.List(ctx, domain.TransactionFilter{
		UserID: userID,
		Page:   1,
		Limit:  RecentTransactionsLimit,
	})
	if err != nil {
		return nil, err
	}

	return &domain.MonthlySummary{
		MonthlyIncome:      totals.Income,
		MonthlyExpenses:    totals.Expense,
		NetChange:          totals.Net(),
		PrimaryCurrency:    domain.PrimaryCurrency(usage),
		RecentTransactions: recent,
	}, nil
}

func (uc *StatisticsUseCase) observe(report string, start time.Time) {
	if uc.metrics != nil {
		uc.metrics.StatisticsDuration.WithLabelValues(report).Observe(time.Since(start).Seconds())
	}
}
