package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fintrack/internal/domain"
	"github.com/iho/fintrack/internal/infrastructure/metrics"
)

// AccountUseCase handles account business logic.
type AccountUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	recorder    changeRecorder
	metrics     *metrics.Metrics
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	metrics *metrics.Metrics,
) *AccountUseCase {
	return &AccountUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		recorder:    changeRecorder{outboxRepo: outboxRepo, auditRepo: auditRepo, idGen: idGen},
		metrics:     metrics,
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	UserID   string
	Name     string
	Currency string
	Type     domain.AccountType
	Balance  decimal.Decimal
}

// CreateAccount creates a new account with its opening balance.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	if input.UserID == "" {
		return nil, domain.ErrUnauthorized
	}

	now := time.Now().UTC()
	account := &domain.Account{
		ID:        uc.recorder.idGen.Generate(),
		UserID:    input.UserID,
		Name:      strings.TrimSpace(input.Name),
		Balance:   input.Balance,
		Currency:  domain.NormalizeCurrency(input.Currency),
		Type:      input.Type,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if account.Type == "" {
		account.Type = domain.DefaultAccountType
	}

	if err := validateAccount(account); err != nil {
		return nil, err
	}
	if err := account.ValidateManualBalance(account.Balance); err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if err := uc.accountRepo.Create(txCtx, tx, account); err != nil {
		return nil, err
	}

	if err := uc.record(txCtx, tx, domain.EventTypeAccountCreated, domain.AuditActionAccountCreate, nil, account, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	uc.count("create")

	return account, nil
}

// GetAccount retrieves an account owned by the user.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id, userID string) (*domain.Account, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	return uc.accountRepo.GetByID(ctx, nil, id, userID)
}

// ListAccounts lists the user's accounts, newest first.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, userID string) ([]*domain.Account, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	return uc.accountRepo.ListByUser(ctx, userID)
}

// UpdateAccountInput is a partial update. Nil fields are left unchanged.
type UpdateAccountInput struct {
	ID       string
	UserID   string
	Name     *string
	Currency *string
	Type     *domain.AccountType
	Balance  *decimal.Decimal
}

// UpdateAccount applies a partial update. A manual balance is checked
// against the account's effective type and is overwritten by the next
// reconciliation.
func (uc *AccountUseCase) UpdateAccount(ctx context.Context, input UpdateAccountInput) (*domain.Account, error) {
	if input.UserID == "" {
		return nil, domain.ErrUnauthorized
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	account, err := uc.accountRepo.GetByIDForUpdate(txCtx, tx, input.ID, input.UserID)
	if err != nil {
		return nil, err
	}
	before := *account

	if input.Name != nil {
		account.Name = strings.TrimSpace(*input.Name)
	}
	if input.Currency != nil {
		account.Currency = domain.NormalizeCurrency(*input.Currency)
	}
	if input.Type != nil {
		account.Type = *input.Type
	}
	if err := validateAccount(account); err != nil {
		return nil, err
	}
	if input.Balance != nil {
		if err := account.ValidateManualBalance(*input.Balance); err != nil {
			return nil, err
		}
		account.Balance = *input.Balance
	}

	now := time.Now().UTC()
	account.UpdatedAt = now

	if err := uc.accountRepo.Update(txCtx, tx, account); err != nil {
		return nil, err
	}

	if err := uc.record(txCtx, tx, domain.EventTypeAccountUpdated, domain.AuditActionAccountUpdate, &before, account, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	uc.count("update")

	return account, nil
}

// DeleteAccount removes an account and its transactions. The cached
// balance must be exactly zero.
func (uc *AccountUseCase) DeleteAccount(ctx context.Context, id, userID string) error {
	if userID == "" {
		return domain.ErrUnauthorized
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	account, err := uc.accountRepo.GetByIDForUpdate(txCtx, tx, id, userID)
	if err != nil {
		return err
	}

	if err := account.CanDelete(); err != nil {
		return err
	}

	if err := uc.accountRepo.Delete(txCtx, tx, id, userID); err != nil {
		return err
	}

	if err := uc.record(txCtx, tx, domain.EventTypeAccountDeleted, domain.AuditActionAccountDelete, account, nil, time.Now().UTC()); err != nil {
		return err
	}

	if err := tx.Commit(txCtx); err != nil {
		return err
	}

	uc.count("delete")

	return nil
}

// History returns the most recent audit entries for an account, newest
// first. Entries outlive the account so deleted accounts still resolve
// when the caller owned them.
func (uc *AccountUseCase) History(ctx context.Context, id, userID string, limit int) ([]*domain.AuditLog, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		return nil, domain.NewValidationError("limit", "limit must not exceed 100")
	}
	if uc.recorder.auditRepo == nil {
		return []*domain.AuditLog{}, nil
	}

	logs, err := uc.recorder.auditRepo.ListByResource(ctx, userID, domain.AggregateTypeAccount, id, limit)
	if err != nil {
		return nil, err
	}
	if len(logs) == 0 {
		// Distinguish "no history" from "not yours".
		if _, err := uc.accountRepo.GetByID(ctx, nil, id, userID); err != nil {
			return nil, err
		}
		return []*domain.AuditLog{}, nil
	}
	return logs, nil
}

func validateAccount(a *domain.Account) error {
	if err := domain.ValidateAccountName(a.Name); err != nil {
		return err
	}
	if err := domain.ValidateCurrency(a.Currency); err != nil {
		return err
	}
	return domain.ValidateAccountType(a.Type)
}

func (uc *AccountUseCase) record(
	ctx context.Context,
	tx Transaction,
	eventType string,
	action domain.AuditAction,
	before, after *domain.Account,
	at time.Time,
) error {
	subject := after
	if subject == nil {
		subject = before
	}

	if err := uc.recorder.emit(ctx, tx, domain.AggregateTypeAccount, subject.ID,
		eventType, domain.AccountPayload(subject), at); err != nil {
		return err
	}

	var beforeState, afterState any
	if before != nil {
		beforeState = before
	}
	if after != nil {
		afterState = after
	}
	return uc.recorder.audit(ctx, tx, subject.UserID, action,
		domain.AggregateTypeAccount, subject.ID, beforeState, afterState, at)
}

func (uc *AccountUseCase) count(op string) {
	if uc.metrics != nil {
		uc.metrics.AccountOperations.WithLabelValues(op).Inc()
	}
}
