package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fintrack/internal/domain"
	"github.com/iho/fintrack/internal/infrastructure/metrics"
)

// Reconciler recomputes an account's cached balance inside a transaction.
type Reconciler interface {
	Reconcile(ctx context.Context, tx Transaction, accountID, userID string) (*domain.Account, error)
}

// TransactionUseCase creates, edits and deletes transactions. Every
// mutation and the reconciliation it triggers commit or roll back together.
type TransactionUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	txRepo      TransactionRepository
	reconciler  Reconciler
	recorder    changeRecorder
	policy      domain.Policy
	metrics     *metrics.Metrics
}

// NewTransactionUseCase creates a new TransactionUseCase.
func NewTransactionUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	txRepo TransactionRepository,
	reconciler Reconciler,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	policy domain.Policy,
	metrics *metrics.Metrics,
) *TransactionUseCase {
	return &TransactionUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		txRepo:      txRepo,
		reconciler:  reconciler,
		recorder:    changeRecorder{outboxRepo: outboxRepo, auditRepo: auditRepo, idGen: idGen},
		policy:      policy,
		metrics:     metrics,
	}
}

// CreateTransactionInput represents input for creating a transaction.
type CreateTransactionInput struct {
	UserID      string
	AccountID   string
	Amount      decimal.Decimal
	Type        domain.TransactionType
	Category    *string
	Description *string
	Date        time.Time
}

// CreateTransaction records a transaction and reconciles its account.
func (uc *TransactionUseCase) CreateTransaction(ctx context.Context, input CreateTransactionInput) (*domain.Transaction, error) {
	const op = "create"

	if input.UserID == "" {
		return nil, domain.ErrUnauthorized
	}

	now := time.Now().UTC()
	t := &domain.Transaction{
		ID:          uc.recorder.idGen.Generate(),
		UserID:      input.UserID,
		AccountID:   input.AccountID,
		Amount:      input.Amount,
		Type:        input.Type,
		Category:    nonEmpty(input.Category),
		Description: nonEmpty(input.Description),
		Date:        input.Date,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := domain.ValidateTransaction(t, uc.policy.MaxTransactionAmount); err != nil {
		return nil, uc.fail(op, err)
	}
	if err := uc.policy.CheckCreateDate(t.Date, now); err != nil {
		return nil, uc.fail(op, err)
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, uc.fail(op, err)
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if _, err := uc.accountRepo.GetByIDForUpdate(txCtx, tx, t.AccountID, t.UserID); err != nil {
		return nil, uc.fail(op, err)
	}

	if err := uc.txRepo.Create(txCtx, tx, t); err != nil {
		return nil, uc.fail(op, err)
	}

	if _, err := uc.reconciler.Reconcile(txCtx, tx, t.AccountID, t.UserID); err != nil {
		return nil, uc.fail(op, err)
	}

	if err := uc.record(txCtx, tx, domain.EventTypeTransactionCreated, domain.AuditActionTransactionCreate, nil, t, now); err != nil {
		return nil, uc.fail(op, err)
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, uc.fail(op, err)
	}

	if uc.metrics != nil {
		uc.metrics.TransactionOperations.WithLabelValues(op).Inc()
		uc.metrics.TransactionAmount.WithLabelValues(string(t.Type)).Observe(t.Amount.InexactFloat64())
	}

	return t, nil
}

// UpdateTransactionInput represents a partial update of a transaction.
type UpdateTransactionInput struct {
	ID     string
	UserID string
	Patch  domain.TransactionPatch
}

// UpdateTransaction merges the patch over the stored transaction and
// reconciles its account. The owning account cannot change.
func (uc *TransactionUseCase) UpdateTransaction(ctx context.Context, input UpdateTransactionInput) (*domain.Transaction, error) {
	const op = "update"

	if input.UserID == "" {
		return nil, domain.ErrUnauthorized
	}

	now := time.Now().UTC()
	if err := uc.validatePatch(input.Patch, now); err != nil {
		return nil, uc.fail(op, err)
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, uc.fail(op, err)
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	t, err := uc.lockTransaction(txCtx, tx, input.ID, input.UserID)
	if err != nil {
		return nil, uc.fail(op, err)
	}

	before := *t
	input.Patch.Apply(t)
	t.UpdatedAt = now

	if err := domain.ValidateTransaction(t, uc.policy.MaxTransactionAmount); err != nil {
		return nil, uc.fail(op, err)
	}

	if err := uc.txRepo.Update(txCtx, tx, t); err != nil {
		return nil, uc.fail(op, err)
	}

	if _, err := uc.reconciler.Reconcile(txCtx, tx, t.AccountID, t.UserID); err != nil {
		return nil, uc.fail(op, err)
	}

	if err := uc.record(txCtx, tx, domain.EventTypeTransactionUpdated, domain.AuditActionTransactionUpdate, &before, t, now); err != nil {
		return nil, uc.fail(op, err)
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, uc.fail(op, err)
	}

	if uc.metrics != nil {
		uc.metrics.TransactionOperations.WithLabelValues(op).Inc()
	}

	return t, nil
}

// DeleteTransaction removes a transaction and reconciles its former account.
func (uc *TransactionUseCase) DeleteTransaction(ctx context.Context, id, userID string) error {
	const op = "delete"

	if userID == "" {
		return domain.ErrUnauthorized
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return uc.fail(op, err)
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	t, err := uc.lockTransaction(txCtx, tx, id, userID)
	if err != nil {
		return uc.fail(op, err)
	}

	if err := uc.txRepo.Delete(txCtx, tx, t.ID, userID); err != nil {
		return uc.fail(op, err)
	}

	if _, err := uc.reconciler.Reconcile(txCtx, tx, t.AccountID, userID); err != nil {
		return uc.fail(op, err)
	}

	now := time.Now().UTC()
	if err := uc.record(txCtx, tx, domain.EventTypeTransactionDeleted, domain.AuditActionTransactionDelete, t, nil, now); err != nil {
		return uc.fail(op, err)
	}

	if err := tx.Commit(txCtx); err != nil {
		return uc.fail(op, err)
	}

	if uc.metrics != nil {
		uc.metrics.TransactionOperations.WithLabelValues(op).Inc()
	}

	return nil
}

// GetTransaction retrieves a transaction owned by the user.
func (uc *TransactionUseCase) GetTransaction(ctx context.Context, id, userID string) (*domain.Transaction, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	return uc.txRepo.GetByID(ctx, nil, id, userID)
}

// ListTransactions returns one page of the user's transactions, newest first.
// When AccountID is set the account must belong to the user.
func (uc *TransactionUseCase) ListTransactions(ctx context.Context, filter domain.TransactionFilter) (*domain.TransactionPage, error) {
	if filter.UserID == "" {
		return nil, domain.ErrUnauthorized
	}

	page, limit, err := domain.ValidatePagination(filter.Page, filter.Limit)
	if err != nil {
		return nil, err
	}
	filter.Page, filter.Limit = page, limit

	if filter.Type != "" {
		if err := domain.ValidateTransactionType(filter.Type); err != nil {
			return nil, err
		}
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, domain.NewValidationError("to", "to must not be before from")
	}

	if filter.AccountID != "" {
		if _, err := uc.accountRepo.GetByID(ctx, nil, filter.AccountID, filter.UserID); err != nil {
			return nil, err
		}
	}

	items, total, err := uc.txRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &domain.TransactionPage{Data: items, Total: total, Page: page, Limit: limit}, nil
}

// lockTransaction loads the transaction, locks its account, then reads the
// transaction again so the returned row cannot change before commit.
// Accounts are always locked before their transactions.
func (uc *TransactionUseCase) lockTransaction(ctx context.Context, tx Transaction, id, userID string) (*domain.Transaction, error) {
	t, err := uc.txRepo.GetByID(ctx, tx, id, userID)
	if err != nil {
		return nil, err
	}

	if _, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, t.AccountID, userID); err != nil {
		return nil, err
	}

	return uc.txRepo.GetByID(ctx, tx, id, userID)
}

func (uc *TransactionUseCase) validatePatch(p domain.TransactionPatch, now time.Time) error {
	if p.Amount != nil {
		if err := domain.ValidateAmount(*p.Amount, uc.policy.MaxTransactionAmount); err != nil {
			return err
		}
	}
	if p.Type != nil {
		if err := domain.ValidateTransactionType(*p.Type); err != nil {
			return err
		}
	}
	if p.Date != nil {
		if p.Date.IsZero() {
			return domain.NewValidationError("date", "date is required")
		}
		if err := uc.policy.CheckUpdateDate(*p.Date, now); err != nil {
			return err
		}
	}
	return nil
}

func (uc *TransactionUseCase) record(
	ctx context.Context,
	tx Transaction,
	eventType string,
	action domain.AuditAction,
	before, after *domain.Transaction,
	at time.Time,
) error {
	subject := after
	if subject == nil {
		subject = before
	}

	if err := uc.recorder.emit(ctx, tx, domain.AggregateTypeTransaction, subject.ID,
		eventType, domain.TransactionPayload(subject), at); err != nil {
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
		domain.AggregateTypeTransaction, subject.ID, beforeState, afterState, at)
}

func (uc *TransactionUseCase) fail(op string, err error) error {
	if uc.metrics != nil {
		uc.metrics.TransactionErrors.WithLabelValues(op, string(domain.KindOf(err))).Inc()
	}
	return err
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}
