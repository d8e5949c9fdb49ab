package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/iho/fintrack/internal/domain"
	"github.com/iho/fintrack/internal/infrastructure/postgres/generated"
	"github.com/iho/fintrack/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	queries *generated.Queries
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db generated.DBTX) *TransactionRepository {
	return &TransactionRepository{queries: generated.New(db)}
}

// Create inserts a transaction.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) error {
	err := queriesFor(r.queries, tx).CreateTransaction(ctx, generated.CreateTransactionParams{
		ID:          t.ID,
		UserID:      t.UserID,
		AccountID:   t.AccountID,
		Amount:      decimalToNumeric(t.Amount),
		Type:        string(t.Type),
		Category:    optionalText(t.Category),
		Description: optionalText(t.Description),
		Date:        timeToPgTimestamptz(t.Date),
		CreatedAt:   timeToPgTimestamptz(t.CreatedAt),
		UpdatedAt:   timeToPgTimestamptz(t.UpdatedAt),
	})
	if code, _ := pgErrorCode(err); code == pgErrForeignKeyViolation {
		return domain.ErrAccountNotFound
	}
	return err
}

// GetByID retrieves a transaction owned by userID.
func (r *TransactionRepository) GetByID(ctx context.Context, tx usecase.Transaction, id, userID string) (*domain.Transaction, error) {
	row, err := queriesFor(r.queries, tx).GetTransactionByID(ctx, generated.GetTransactionByIDParams{
		ID:     id,
		UserID: userID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}

	return rowToTransaction(row), nil
}

// Update writes every mutable field of t.
func (r *TransactionRepository) Update(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) error {
	n, err := queriesFor(r.queries, tx).UpdateTransaction(ctx, generated.UpdateTransactionParams{
		ID:          t.ID,
		UserID:      t.UserID,
		Amount:      decimalToNumeric(t.Amount),
		Type:        string(t.Type),
		Category:    optionalText(t.Category),
		Description: optionalText(t.Description),
		Date:        timeToPgTimestamptz(t.Date),
		UpdatedAt:   timeToPgTimestamptz(t.UpdatedAt),
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

// Delete removes a transaction.
func (r *TransactionRepository) Delete(ctx context.Context, tx usecase.Transaction, id, userID string) error {
	n, err := queriesFor(r.queries, tx).DeleteTransaction(ctx, generated.DeleteTransactionParams{
		ID:     id,
		UserID: userID,
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

// List returns one page of matching transactions with their account
// summary, and the total number of matches.
func (r *TransactionRepository) List(ctx context.Context, f domain.TransactionFilter) ([]*domain.Transaction, int64, error) {
	from := optionalTimestamptz(f.From)
	to := optionalTimestamptz(f.To)

	total, err := r.queries.CountTransactions(ctx, generated.CountTransactionsParams{
		UserID:    f.UserID,
		AccountID: textFilter(f.AccountID),
		Type:      textFilter(string(f.Type)),
		Category:  textFilter(f.Category),
		Search:    searchFilter(f.Search),
		DateFrom:  from,
		DateTo:    to,
	})
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []*domain.Transaction{}, 0, nil
	}

	rows, err := r.queries.ListTransactions(ctx, generated.ListTransactionsParams{
		UserID:    f.UserID,
		AccountID: textFilter(f.AccountID),
		Type:      textFilter(string(f.Type)),
		Category:  textFilter(f.Category),
		Search:    searchFilter(f.Search),
		DateFrom:  from,
		DateTo:    to,
		RowLimit:  int32(f.Limit),
		RowOffset: int32(f.Offset()),
	})
	if err != nil {
		return nil, 0, err
	}

	items := make([]*domain.Transaction, 0, len(rows))
	for _, row := range rows {
		t := rowToTransaction(generated.Transaction{
			ID:          row.ID,
			UserID:      row.UserID,
			AccountID:   row.AccountID,
			Amount:      row.Amount,
			Type:        row.Type,
			Category:    row.Category,
			Description: row.Description,
			Date:        row.Date,
			CreatedAt:   row.CreatedAt,
			UpdatedAt:   row.UpdatedAt,
		})
		t.Account = &domain.AccountRef{
			ID:       row.AccountID,
			Name:     row.AccountName,
			Currency: row.AccountCurrency,
			Type:     domain.AccountType(row.AccountType),
		}
		items = append(items, t)
	}

	return items, total, nil
}

// ListBetween returns the account's transactions dated in [from, to), oldest first.
func (r *TransactionRepository) ListBetween(ctx context.Context, accountID, userID string, from, to time.Time) ([]*domain.Transaction, error) {
	rows, err := r.queries.ListTransactionsBetween(ctx, generated.ListTransactionsBetweenParams{
		AccountID: accountID,
		UserID:    userID,
		Date:      timeToPgTimestamptz(from),
		Date_2:    timeToPgTimestamptz(to),
	})
	if err != nil {
		return nil, err
	}

	items := make([]*domain.Transaction, 0, len(rows))
	for _, row := range rows {
		items = append(items, rowToTransaction(row))
	}
	return items, nil
}

// SumByType totals amounts and counts per type over the filter.
func (r *TransactionRepository) SumByType(ctx context.Context, tx usecase.Transaction, f domain.AggregateFilter) (domain.TypeTotals, error) {
	var totals domain.TypeTotals

	rows, err := queriesFor(r.queries, tx).SumTransactionsByType(ctx, generated.SumTransactionsByTypeParams{
		UserID:    f.UserID,
		AccountID: textFilter(f.AccountID),
		DateFrom:  optionalTimestamptz(f.From),
		DateTo:    optionalTimestamptz(f.To),
	})
	if err != nil {
		return totals, err
	}

	for _, row := range rows {
		totals.Add(domain.TransactionType(row.Type), numericToDecimal(row.Total), row.Count)
	}
	return totals, nil
}

// LatestDate returns the date of the account's most recent transaction, or nil.
func (r *TransactionRepository) LatestDate(ctx context.Context, tx usecase.Transaction, accountID, userID string) (*time.Time, error) {
	latest, err := queriesFor(r.queries, tx).LatestTransactionDate(ctx, generated.LatestTransactionDateParams{
		AccountID: accountID,
		UserID:    userID,
	})
	if err != nil {
		return nil, err
	}
	return timestamptzToPtr(latest), nil
}

// CurrencyUsage counts the user's transactions in [from, to) by account currency.
func (r *TransactionRepository) CurrencyUsage(ctx context.Context, userID string, from, to time.Time) ([]domain.CurrencyUsage, error) {
	rows, err := r.queries.CurrencyUsage(ctx, generated.CurrencyUsageParams{
		UserID: userID,
		Date:   timeToPgTimestamptz(from),
		Date_2: timeToPgTimestamptz(to),
	})
	if err != nil {
		return nil, err
	}

	usage := make([]domain.CurrencyUsage, 0, len(rows))
	for _, row := range rows {
		usage = append(usage, domain.CurrencyUsage{Currency: row.Currency, Count: row.Count})
	}
	return usage, nil
}

func rowToTransaction(row generated.Transaction) *domain.Transaction {
	return &domain.Transaction{
		ID:          row.ID,
		UserID:      row.UserID,
		AccountID:   row.AccountID,
		Amount:      numericToDecimal(row.Amount),
		Type:        domain.TransactionType(row.Type),
		Category:    textToPtr(row.Category),
		Description: textToPtr(row.Description),
		Date:        row.Date.Time,
		CreatedAt:   row.CreatedAt.Time,
		UpdatedAt:   row.UpdatedAt.Time,
	}
}

var _ usecase.TransactionRepository = (*TransactionRepository)(nil)
