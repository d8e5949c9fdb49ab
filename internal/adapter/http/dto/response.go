package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fintrack/internal/domain"
	"github.com/iho/fintrack/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Balance      decimal.Decimal `json:"balance"`
	Currency     string          `json:"currency"`
	Type         string          `json:"type"`
	LastActivity *time.Time      `json:"last_activity"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:           a.ID,
		Name:         a.Name,
		Balance:      a.Balance,
		Currency:     a.Currency,
		Type:         string(a.Type),
		LastActivity: a.LastActivity,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// AccountRefResponse is the account summary embedded in transactions.
type AccountRefResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Currency string `json:"currency"`
	Type     string `json:"type"`
}

// TransactionResponse represents a transaction in API responses.
type TransactionResponse struct {
	ID          string              `json:"id"`
	AccountID   string              `json:"account_id"`
	Amount      decimal.Decimal     `json:"amount"`
	Type        string              `json:"type"`
	Category    *string             `json:"category"`
	Description *string             `json:"description"`
	Date        time.Time           `json:"date"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	Account     *AccountRefResponse `json:"account,omitempty"`
}

// TransactionFromDomain converts domain transaction to response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	resp := &TransactionResponse{
		ID:          t.ID,
		AccountID:   t.AccountID,
		Amount:      t.Amount,
		Type:        string(t.Type),
		Category:    t.Category,
		Description: t.Description,
		Date:        t.Date,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.Account != nil {
		resp.Account = &AccountRefResponse{
			ID:       t.Account.ID,
			Name:     t.Account.Name,
			Currency: t.Account.Currency,
			Type:     string(t.Account.Type),
		}
	}
	return resp
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(txs []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(txs))
	for i, t := range txs {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// TransactionPageResponse is a page of transactions.
type TransactionPageResponse struct {
	Data  []*TransactionResponse `json:"data"`
	Total int64                  `json:"total"`
	Page  int                    `json:"page"`
	Limit int                    `json:"limit"`
	Pages int                    `json:"pages"`
}

// TransactionPageFromDomain converts a listing page to response.
func TransactionPageFromDomain(p *domain.TransactionPage) *TransactionPageResponse {
	return &TransactionPageResponse{
		Data:  TransactionsFromDomain(p.Data),
		Total: p.Total,
		Page:  p.Page,
		Limit: p.Limit,
		Pages: p.Pages(),
	}
}

// BalancePointResponse is one day of balance history.
type BalancePointResponse struct {
	Date    string          `json:"date"`
	Balance decimal.Decimal `json:"balance"`
}

// StatisticsResponse represents account statistics.
type StatisticsResponse struct {
	AccountID          string                 `json:"account_id"`
	Currency           string                 `json:"currency"`
	MonthlyIncome      decimal.Decimal        `json:"monthly_income"`
	MonthlyExpenses    decimal.Decimal        `json:"monthly_expenses"`
	NetChange          decimal.Decimal        `json:"net_change"`
	Trend              string                 `json:"trend"`
	TrendPercentage    decimal.Decimal        `json:"trend_percentage"`
	TransactionsCount  int64                  `json:"transactions_count"`
	AverageTransaction decimal.Decimal        `json:"average_transaction"`
	BalanceHistory     []BalancePointResponse `json:"balance_history"`
	LastActivity       *time.Time             `json:"last_activity"`
	ActivityStatus     string                 `json:"activity_status"`
}

// StatisticsFromDomain converts account statistics to response.
func StatisticsFromDomain(s *domain.AccountStatistics) *StatisticsResponse {
	history := make([]BalancePointResponse, len(s.BalanceHistory))
	for i, p := range s.BalanceHistory {
		history[i] = BalancePointResponse{Date: p.Date, Balance: p.Balance}
	}
	return &StatisticsResponse{
		AccountID:          s.AccountID,
		Currency:           s.Currency,
		MonthlyIncome:      s.MonthlyIncome,
		MonthlyExpenses:    s.MonthlyExpenses,
		NetChange:          s.NetChange,
		Trend:              string(s.Trend),
		TrendPercentage:    s.TrendPercentage,
		TransactionsCount:  s.TransactionsCount,
		AverageTransaction: s.AverageTransaction,
		BalanceHistory:     history,
		LastActivity:       s.LastActivity,
		ActivityStatus:     string(s.ActivityStatus),
	}
}

// SummaryResponse is the monthly summary across all accounts.
type SummaryResponse struct {
	MonthlyIncome      decimal.Decimal        `json:"monthly_income"`
	MonthlyExpenses    decimal.Decimal        `json:"monthly_expenses"`
	NetChange          decimal.Decimal        `json:"net_change"`
	PrimaryCurrency    string                 `json:"primary_currency"`
	RecentTransactions []*TransactionResponse `json:"recent_transactions"`
}

// SummaryFromDomain converts a monthly summary to response.
func SummaryFromDomain(s *domain.MonthlySummary) *SummaryResponse {
	return &SummaryResponse{
		MonthlyIncome:      s.MonthlyIncome,
		MonthlyExpenses:    s.MonthlyExpenses,
		NetChange:          s.NetChange,
		PrimaryCurrency:    s.PrimaryCurrency,
		RecentTransactions: TransactionsFromDomain(s.RecentTransactions),
	}
}

// ReconciliationResponse reports a single account reconciliation.
type ReconciliationResponse struct {
	AccountID         string          `json:"account_id"`
	RecordedBalance   decimal.Decimal `json:"recorded_balance"`
	CalculatedBalance decimal.Decimal `json:"calculated_balance"`
	Difference        decimal.Decimal `json:"difference"`
	Reconciled        bool            `json:"reconciled"`
	LastActivity      *time.Time      `json:"last_activity"`
	ReconciledAt      time.Time       `json:"reconciled_at"`
}

// ReconciliationFromUseCase converts a reconciliation result to response.
func ReconciliationFromUseCase(r *usecase.ReconciliationResult) *ReconciliationResponse {
	return &ReconciliationResponse{
		AccountID:         r.AccountID,
		RecordedBalance:   r.RecordedBalance,
		CalculatedBalance: r.CalculatedBalance,
		Difference:        r.Difference,
		Reconciled:        r.IsReconciled(),
		LastActivity:      r.LastActivity,
		ReconciledAt:      r.ReconciledAt,
	}
}

// ReconciliationReportResponse summarizes a run over all of a user's accounts.
type ReconciliationReportResponse struct {
	TotalAccounts      int                       `json:"total_accounts"`
	ReconciledAccounts int                       `json:"reconciled_accounts"`
	Discrepancies      []*ReconciliationResponse `json:"discrepancies"`
	CheckedAt          time.Time                 `json:"checked_at"`
}

// ReconciliationReportFromUseCase converts a report to response.
func ReconciliationReportFromUseCase(r *usecase.ReconciliationReport) *ReconciliationReportResponse {
	resp := &ReconciliationReportResponse{
		TotalAccounts:      r.TotalAccounts,
		ReconciledAccounts: r.ReconciledAccounts,
		Discrepancies:      make([]*ReconciliationResponse, len(r.Discrepancies)),
		CheckedAt:          r.CheckedAt,
	}
	for i, d := range r.Discrepancies {
		resp.Discrepancies[i] = ReconciliationFromUseCase(d)
	}
	return resp
}

// AuditLogResponse is one entry of an account's history.
type AuditLogResponse struct {
	ID           string         `json:"id"`
	Action       string         `json:"action"`
	ResourceType string         `json:"resource_type"`
	ResourceID   string         `json:"resource_id"`
	BeforeState  map[string]any `json:"before_state"`
	AfterState   map[string]any `json:"after_state"`
	CreatedAt    time.Time      `json:"created_at"`
}

// AuditLogsFromDomain converts audit entries to responses.
func AuditLogsFromDomain(logs []*domain.AuditLog) []*AuditLogResponse {
	result := make([]*AuditLogResponse, len(logs))
	for i, l := range logs {
		result[i] = &AuditLogResponse{
			ID:           l.ID,
			Action:       string(l.Action),
			ResourceType: l.ResourceType,
			ResourceID:   l.ResourceID,
			BeforeState:  l.BeforeState,
			AfterState:   l.AfterState,
			CreatedAt:    l.CreatedAt,
		}
	}
	return result
}

// CategoriesResponse lists the suggested categories per transaction type.
type CategoriesResponse map[string][]string

// CategoriesFromDomain converts the default categories to response.
func CategoriesFromDomain(categories map[domain.TransactionType][]string) CategoriesResponse {
	resp := make(CategoriesResponse, len(categories))
	for typ, names := range categories {
		resp[string(typ)] = append([]string(nil), names...)
	}
	return resp
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
