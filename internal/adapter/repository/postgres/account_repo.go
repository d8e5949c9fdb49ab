package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/fintrack/internal/domain"
	"github.com/iho/fintrack/internal/infrastructure/postgres/generated"
	"github.com/iho/fintrack/internal/usecase"
)

const accountsUserNameKey = "accounts_user_name_key"

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	queries *generated.Queries
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db generated.DBTX) *AccountRepository {
	return &AccountRepository{queries: generated.New(db)}
}

// Create inserts a new account.
func (r *AccountRepository) Create(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	err := queriesFor(r.queries, tx).CreateAccount(ctx, generated.CreateAccountParams{
		ID:           account.ID,
		UserID:       account.UserID,
		Name:         account.Name,
		Balance:      decimalToNumeric(account.Balance),
		Currency:     account.Currency,
		Type:         string(account.Type),
		LastActivity: optionalTimestamptz(account.LastActivity),
		CreatedAt:    timeToPgTimestamptz(account.CreatedAt),
		UpdatedAt:    timeToPgTimestamptz(account.UpdatedAt),
	})
	return mapAccountWriteError(err)
}

// GetByID retrieves an account owned by userID.
func (r *AccountRepository) GetByID(ctx context.Context, tx usecase.Transaction, id, userID string) (*domain.Account, error) {
	row, err := queriesFor(r.queries, tx).GetAccountByID(ctx, generated.GetAccountByIDParams{
		ID:     id,
		UserID: userID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}

	return rowToAccount(row), nil
}

// GetByIDForUpdate retrieves an account owned by userID with a FOR UPDATE lock.
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id, userID string) (*domain.Account, error) {
	row, err := queriesFor(r.queries, tx).GetAccountByIDForUpdate(ctx, generated.GetAccountByIDForUpdateParams{
		ID:     id,
		UserID: userID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}

	return rowToAccount(row), nil
}

// ListByUser lists the user's accounts, newest first.
func (r *AccountRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Account, error) {
	rows, err := r.queries.ListAccountsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	accounts := make([]*domain.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, rowToAccount(row))
	}

	return accounts, nil
}

// Update writes the editable account fields.
func (r *AccountRepository) Update(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	n, err := queriesFor(r.queries, tx).UpdateAccount(ctx, generated.UpdateAccountParams{
		ID:        account.ID,
		UserID:    account.UserID,
		Name:      account.Name,
		Currency:  account.Currency,
		Type:      string(account.Type),
		Balance:   decimalToNumeric(account.Balance),
		UpdatedAt: timeToPgTimestamptz(account.UpdatedAt),
	})
	if err != nil {
		return mapAccountWriteError(err)
	}
	if n == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// UpdateBalance stores a reconciled balance and last activity.
func (r *AccountRepository) UpdateBalance(
	ctx context.Context,
	tx usecase.Transaction,
	id, userID string,
	balance decimal.Decimal,
	lastActivity *time.Time,
	updatedAt time.Time,
) error {
	n, err := queriesFor(r.queries, tx).UpdateAccountBalance(ctx, generated.UpdateAccountBalanceParams{
		ID:           id,
		UserID:       userID,
		Balance:      decimalToNumeric(balance),
		LastActivity: optionalTimestamptz(lastActivity),
		UpdatedAt:    timeToPgTimestamptz(updatedAt),
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// Delete removes the account. Its transactions go with it (ON DELETE CASCADE).
func (r *AccountRepository) Delete(ctx context.Context, tx usecase.Transaction, id, userID string) error {
	n, err := queriesFor(r.queries, tx).DeleteAccount(ctx, generated.DeleteAccountParams{
		ID:     id,
		UserID: userID,
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func mapAccountWriteError(err error) error {
	if err == nil {
		return nil
	}
	if code, constraint := pgErrorCode(err); code == pgErrUniqueViolation && constraint == accountsUserNameKey {
		return domain.ErrDuplicateAccountName
	}
	return err
}

func rowToAccount(row generated.Account) *domain.Account {
	return &domain.Account{
		ID:           row.ID,
		UserID:       row.UserID,
		Name:         row.Name,
		Balance:      numericToDecimal(row.Balance),
		Currency:     row.Currency,
		Type:         domain.AccountType(row.Type),
		LastActivity: timestamptzToPtr(row.LastActivity),
		CreatedAt:    row.CreatedAt.Time,
		UpdatedAt:    row.UpdatedAt.Time,
	}
}

var _ usecase.AccountRepository = (*AccountRepository)(nil)
