package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fintrack/internal/domain"
	"github.com/iho/fintrack/internal/infrastructure/metrics"
)

// ReconciliationUseCase recomputes cached account balances from transactions.
type ReconciliationUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	txRepo      TransactionRepository
	recorder    changeRecorder
	policy      domain.Policy
	metrics     *metrics.Metrics
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	txRepo TransactionRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	policy domain.Policy,
	metrics *metrics.Metrics,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		txRepo:      txRepo,
		recorder:    changeRecorder{outboxRepo: outboxRepo, auditRepo: auditRepo, idGen: idGen},
		policy:      policy,
		metrics:     metrics,
	}
}

// Reconcile rewrites the account's balance and last activity from its
// transactions. It must run inside the transaction of the mutation that
// triggered it; the returned account carries the new values.
func (uc *ReconciliationUseCase) Reconcile(ctx context.Context, tx Transaction, accountID, userID string) (*domain.Account, error) {
	start := time.Now()

	account, err := uc.accountRepo.GetByID(ctx, tx, accountID, userID)
	if err != nil {
		return nil, err
	}

	totals, err := uc.txRepo.SumByType(ctx, tx, domain.AggregateFilter{
		UserID:    userID,
		AccountID: accountID,
	})
	if err != nil {
		return nil, fmt.Errorf("sum transactions: %w", err)
	}

	lastActivity, err := uc.txRepo.LatestDate(ctx, tx, accountID, userID)
	if err != nil {
		return nil, fmt.Errorf("latest transaction date: %w", err)
	}

	balance := totals.Net()
	if err := uc.policy.CheckReconciledBalance(account, balance); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := uc.accountRepo.UpdateBalance(ctx, tx, accountID, userID, balance, lastActivity, now); err != nil {
		return nil, fmt.Errorf("update balance: %w", err)
	}

	previous := account.Balance
	account.Balance = balance
	account.LastActivity = lastActivity
	account.UpdatedAt = now

	if err := uc.recorder.emit(ctx, tx, domain.AggregateTypeAccount, account.ID,
		domain.EventTypeAccountChanged, domain.AccountChangedPayload(account, previous), now); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.Reconciliations.Inc()
		uc.metrics.ReconciliationDuration.Observe(time.Since(start).Seconds())
	}

	return account, nil
}

// ReconciliationResult compares the stored balance with the recomputed one.
type ReconciliationResult struct {
	AccountID         string
	RecordedBalance   decimal.Decimal
	CalculatedBalance decimal.Decimal
	Difference        decimal.Decimal
	LastActivity      *time.Time
	ReconciledAt      time.Time
}

// IsReconciled reports whether the stored balance was already correct.
func (r *ReconciliationResult) IsReconciled() bool {
	return r.Difference.IsZero()
}

// ReconcileAccount repairs a single account in its own transaction and
// reports any drift that was corrected.
func (uc *ReconciliationUseCase) ReconcileAccount(ctx context.Context, accountID, userID string) (*ReconciliationResult, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	locked, err := uc.accountRepo.GetByIDForUpdate(txCtx, tx, accountID, userID)
	if err != nil {
		return nil, err
	}
	recorded := locked.Balance

	account, err := uc.Reconcile(txCtx, tx, accountID, userID)
	if err != nil {
		return nil, err
	}

	result := &ReconciliationResult{
		AccountID:         accountID,
		RecordedBalance:   recorded,
		CalculatedBalance: account.Balance,
		Difference:        account.Balance.Sub(recorded),
		LastActivity:      account.LastActivity,
		ReconciledAt:      account.UpdatedAt,
	}

	if !result.IsReconciled() {
		err = uc.recorder.audit(txCtx, tx, userID, domain.AuditActionAccountReconcile,
			domain.AggregateTypeAccount, accountID,
			map[string]any{"balance": recorded.String()},
			map[string]any{"balance": account.Balance.String()},
			result.ReconciledAt)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil && !result.IsReconciled() {
		uc.metrics.ReconciliationDrift.Inc()
	}

	return result, nil
}

// ReconciliationReport summarizes a reconciliation run over all of a user's accounts.
type ReconciliationReport struct {
	TotalAccounts      int
	ReconciledAccounts int
	Discrepancies      []*ReconciliationResult
	CheckedAt          time.Time
}

// ReconcileAll repairs every account the user owns.
func (uc *ReconciliationUseCase) ReconcileAll(ctx context.Context, userID string) (*ReconciliationReport, error) {
	accounts, err := uc.accountRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	report := &ReconciliationReport{
		TotalAccounts: len(accounts),
		Discrepancies: make([]*ReconciliationResult, 0),
		CheckedAt:     time.Now().UTC(),
	}

	for _, account := range accounts {
		result, err := uc.ReconcileAccount(ctx, account.ID, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to reconcile account %s: %w", account.ID, err)
		}

		if result.IsReconciled() {
			report.ReconciledAccounts++
		} else {
			report.Discrepancies = append(report.Discrepancies, result)
		}
	}

	return report, nil
}
