package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trend is the month-over-month direction of net cash flow.
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// ActivityStatus is the recency class of an account's last transaction.
type ActivityStatus string

const (
	ActivityActive   ActivityStatus = "active"
	ActivityLow      ActivityStatus = "low"
	ActivityInactive ActivityStatus = "inactive"
)

const (
	// HistoryDays is the length of the balance history series.
	HistoryDays = 7

	activeWithinDays = 7
	lowWithinDays    = 30
)

var (
	hundred         = decimal.NewFromInt(100)
	trendThreshold  = decimal.NewFromInt(1)
	percentDecimals = int32(2)
)

// BalancePoint is the running balance at the end of a calendar day.
type BalancePoint struct {
	Date    string
	Balance decimal.Decimal
}

// AccountStatistics is the read model served for a single account.
type AccountStatistics struct {
	AccountID          string
	Currency           string
	MonthlyIncome      decimal.Decimal
	MonthlyExpenses    decimal.Decimal
	NetChange          decimal.Decimal
	Trend              Trend
	TrendPercentage    decimal.Decimal
	TransactionsCount  int64
	AverageTransaction decimal.Decimal
	BalanceHistory     []BalancePoint
	LastActivity       *time.Time
	ActivityStatus     ActivityStatus
}

// MonthlySummary aggregates the current month across all of a user's accounts.
type MonthlySummary struct {
	MonthlyIncome      decimal.Decimal
	MonthlyExpenses    decimal.Decimal
	NetChange          decimal.Decimal
	PrimaryCurrency    string
	RecentTransactions []*Transaction
}

// CurrencyUsage counts transactions made in a currency.
type CurrencyUsage struct {
	Currency string
	Count    int64
}

// StartOfDay truncates t to midnight in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// MonthStart returns midnight on the first day of t's month.
func MonthStart(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// PreviousMonthStart returns midnight on the first day of the month before t's.
func PreviousMonthStart(t time.Time) time.Time {
	return MonthStart(t).AddDate(0, -1, 0)
}

// HistoryStart returns the first instant covered by the balance history.
func HistoryStart(now time.Time) time.Time {
	return StartOfDay(now).AddDate(0, 0, -(HistoryDays - 1))
}

// ComputeTrend compares the current month's net with the previous one.
// The percentage is rounded to two places; the class uses the exact value.
func ComputeTrend(net, prevNet decimal.Decimal) (Trend, decimal.Decimal) {
	if prevNet.IsZero() {
		if net.IsZero() {
			return TrendStable, decimal.Zero
		}
		return TrendUp, hundred
	}

	pct := net.Sub(prevNet).Div(prevNet.Abs()).Mul(hundred)

	trend := TrendStable
	switch {
	case pct.GreaterThan(trendThreshold):
		trend = TrendUp
	case pct.LessThan(trendThreshold.Neg()):
		trend = TrendDown
	}
	return trend, pct.Round(percentDecimals)
}

// ClassifyActivity maps the age of the last transaction to a status.
func ClassifyActivity(last *time.Time, now time.Time) ActivityStatus {
	if last == nil {
		return ActivityInactive
	}
	days := int(now.Sub(*last).Hours() / 24)
	if now.Before(*last) {
		days = 0
	}
	switch {
	case days <= activeWithinDays:
		return ActivityActive
	case days <= lowWithinDays:
		return ActivityLow
	default:
		return ActivityInactive
	}
}

// AverageTransaction is (income + expense) / count, or zero with no transactions.
func AverageTransaction(totals TypeTotals) decimal.Decimal {
	count := totals.Count()
	if count == 0 {
		return decimal.Zero
	}
	return totals.Income.Add(totals.Expense).Div(decimal.NewFromInt(count)).Round(percentDecimals)
}

// BuildBalanceHistory produces one point per day starting at start, seeded
// with opening (the net of everything before start). Transactions outside
// the window are ignored.
func BuildBalanceHistory(opening decimal.Decimal, txs []*Transaction, start time.Time) []BalancePoint {
	points := make([]BalancePoint, 0, HistoryDays)
	running := opening

	for i := 0; i < HistoryDays; i++ {
		dayStart := start.AddDate(0, 0, i)
		dayEnd := dayStart.AddDate(0, 0, 1)

		for _, t := range txs {
			if !t.Date.Before(dayStart) && t.Date.Before(dayEnd) {
				running = running.Add(t.SignedAmount())
			}
		}

		points = append(points, BalancePoint{
			Date:    dayStart.Format("2006-01-02"),
			Balance: running,
		})
	}
	return points
}

// PrimaryCurrency picks the most used currency, ties broken alphabetically.
func PrimaryCurrency(usage []CurrencyUsage) string {
	best := CurrencyUsage{Currency: DefaultCurrency}
	for _, u := range usage {
		if u.Count > best.Count || (u.Count == best.Count && best.Count > 0 && u.Currency < best.Currency) {
			best = u
		}
	}
	return best.Currency
}
