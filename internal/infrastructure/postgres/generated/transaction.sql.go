
package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const countTransactions = `-- name: CountTransactions :one
SELECT COUNT(*)
FROM transactions t
WHERE t.user_id = $1
  AND ($2::text IS NULL OR t.account_id = $2)
  AND ($3::text IS NULL OR t.type = $3)
  AND ($4::text IS NULL OR t.category = $4)
  AND ($5::text IS NULL OR t.description ILIKE '%' || $5 || '%' ESCAPE '\')
  AND ($6::timestamptz IS NULL OR t.date >= $6)
  AND ($7::timestamptz IS NULL OR t.date <= $7)
`

type CountTransactionsParams struct {
	UserID    string             `json:"user_id"`
	AccountID pgtype.Text        `json:"account_id"`
	Type      pgtype.Text        `json:"type"`
	Category  pgtype.Text        `json:"category"`
	Search    pgtype.Text        `json:"search"`
	DateFrom  pgtype.Timestamptz `json:"date_from"`
	DateTo    pgtype.Timestamptz `json:"date_to"`
}

func (q *Queries) CountTransactions(ctx context.Context, arg CountTransactionsParams) (int64, error) {
	row := q.db.QueryRow(ctx, countTransactions,
		arg.UserID,
		arg.AccountID,
		arg.Type,
		arg.Category,
		arg.Search,
		arg.DateFrom,
		arg.DateTo,
	)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const createTransaction = `-- name: CreateTransaction :exec
INSERT INTO transactions (id, user_id, account_id, amount, type, category, description, date, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`

type CreateTransactionParams struct {
	ID          string             `json:"id"`
	UserID      string             `json:"user_id"`
	AccountID   string             `json:"account_id"`
	Amount      pgtype.Numeric     `json:"amount"`
	Type        string             `json:"type"`
	Category    pgtype.Text        `json:"category"`
	Description pgtype.Text        `json:"description"`
	Date        pgtype.Timestamptz `json:"date"`
	CreatedAt   pgtype.Timestamptz `json:"created_at"`
	UpdatedAt   pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) error {
	_, err := q.db.Exec(ctx, createTransaction,
		arg.ID,
		arg.UserID,
		arg.AccountID,
		arg.Amount,
		arg.Type,
		arg.Category,
		arg.Description,
		arg.Date,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const currencyUsage = `-- name: CurrencyUsage :many
SELECT a.currency, COUNT(*) AS count
FROM transactions t
JOIN accounts a ON a.id = t.account_id
WHERE t.user_id = $1 AND t.date >= $2 AND t.date < $3
GROUP BY a.currency
ORDER BY a.currency
`

type CurrencyUsageParams struct {
	UserID string             `json:"user_id"`
	Date   pgtype.Timestamptz `json:"date"`
	Date_2 pgtype.Timestamptz `json:"date_2"`
}

type CurrencyUsageRow struct {
	Currency string `json:"currency"`
	Count    int64  `json:"count"`
}

func (q *Queries) CurrencyUsage(ctx context.Context, arg CurrencyUsageParams) ([]CurrencyUsageRow, error) {
	rows, err := q.db.Query(ctx, currencyUsage, arg.UserID, arg.Date, arg.Date_2)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []CurrencyUsageRow{}
	for rows.Next() {
		var i CurrencyUsageRow
		if err := rows.Scan(&i.Currency, &i.Count); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteTransaction = `-- name: DeleteTransaction :execrows
DELETE FROM transactions WHERE id = $1 AND user_id = $2
`

type DeleteTransactionParams struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
}

func (q *Queries) DeleteTransaction(ctx context.Context, arg DeleteTransactionParams) (int64, error) {
	result, err := q.db.Exec(ctx, deleteTransaction, arg.ID, arg.UserID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const getTransactionByID = `-- name: GetTransactionByID :one
SELECT id, user_id, account_id, amount, type, category, description, date, created_at, updated_at FROM transactions WHERE id = $1 AND user_id = $2
`

type GetTransactionByIDParams struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
}

func (q *Queries) GetTransactionByID(ctx context.Context, arg GetTransactionByIDParams) (Transaction, error) {
	row := q.db.QueryRow(ctx, getTransactionByID, arg.ID, arg.UserID)
	var i Transaction
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.AccountID,
		&i.Amount,
		&i.Type,
		&i.Category,
		&i.Description,
		&i.Date,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const latestTransactionDate = `-- name: LatestTransactionDate :one
SELECT MAX(date)::timestamptz AS latest FROM transactions WHERE account_id = $1 AND user_id = $2
`

type LatestTransactionDateParams struct {
	AccountID string `json:"account_id"`
	UserID    string `json:"user_id"`
}

func (q *Queries) LatestTransactionDate(ctx context.Context, arg LatestTransactionDateParams) (pgtype.Timestamptz, error) {
	row := q.db.QueryRow(ctx, latestTransactionDate, arg.AccountID, arg.UserID)
	var latest pgtype.Timestamptz
	err := row.Scan(&latest)
	return latest, err
}

const listTransactions = `-- name: ListTransactions :many
SELECT t.id, t.user_id, t.account_id, t.amount, t.type, t.category, t.description, t.date, t.created_at, t.updated_at,
       a.name AS account_name, a.currency AS account_currency, a.type AS account_type
FROM transactions t
JOIN accounts a ON a.id = t.account_id
WHERE t.user_id = $1
  AND ($2::text IS NULL OR t.account_id = $2)
  AND ($3::text IS NULL OR t.type = $3)
  AND ($4::text IS NULL OR t.category = $4)
  AND ($5::text IS NULL OR t.description ILIKE '%' || $5 || '%' ESCAPE '\')
  AND ($6::timestamptz IS NULL OR t.date >= $6)
  AND ($7::timestamptz IS NULL OR t.date <= $7)
ORDER BY t.date DESC, t.id DESC
LIMIT $8 OFFSET $9
`

type ListTransactionsParams struct {
	UserID    string             `json:"user_id"`
	AccountID pgtype.Text        `json:"account_id"`
	Type      pgtype.Text        `json:"type"`
	Category  pgtype.Text        `json:"category"`
	Search    pgtype.Text        `json:"search"`
	DateFrom  pgtype.Timestamptz `json:"date_from"`
	DateTo    pgtype.Timestamptz `json:"date_to"`
	RowLimit  int32              `json:"row_limit"`
	RowOffset int32              `json:"row_offset"`
}

type ListTransactionsRow struct {
	ID              string             `json:"id"`
	UserID          string             `json:"user_id"`
	AccountID       string             `json:"account_id"`
	Amount          pgtype.Numeric     `json:"amount"`
	Type            string             `json:"type"`
	Category        pgtype.Text        `json:"category"`
	Description     pgtype.Text        `json:"description"`
	Date            pgtype.Timestamptz `json:"date"`
	CreatedAt       pgtype.Timestamptz `json:"created_at"`
	UpdatedAt       pgtype.Timestamptz `json:"updated_at"`
	AccountName     string             `json:"account_name"`
	AccountCurrency string             `json:"account_currency"`
	AccountType     string             `json:"account_type"`
}

func (q *Queries) ListTransactions(ctx context.Context, arg ListTransactionsParams) ([]ListTransactionsRow, error) {
	rows, err := q.db.Query(ctx, listTransactions,
		arg.UserID,
		arg.AccountID,
		arg.Type,
		arg.Category,
		arg.Search,
		arg.DateFrom,
		arg.DateTo,
		arg.RowLimit,
		arg.RowOffset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ListTransactionsRow{}
	for rows.Next() {
		var i ListTransactionsRow
		if err := rows.Scan(
			&i.ID,
			&i.UserID,
			&i.AccountID,
			&i.Amount,
			&i.Type,
			&i.Category,
			&i.Description,
			&i.Date,
			&i.CreatedAt,
			&i.UpdatedAt,
			&i.AccountName,
			&i.AccountCurrency,
			&i.AccountType,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listTransactionsBetween = `-- name: ListTransactionsBetween :many
SELECT id, user_id, account_id, amount, type, category, description, date, created_at, updated_at FROM transactions
WHERE account_id = $1 AND user_id = $2 AND date >= $3 AND date < $4
ORDER BY date ASC, id ASC
`

type ListTransactionsBetweenParams struct {
	AccountID string             `json:"account_id"`
	UserID    string             `json:"user_id"`
	Date      pgtype.Timestamptz `json:"date"`
	Date_2    pgtype.Timestamptz `json:"date_2"`
}

func (q *Queries) ListTransactionsBetween(ctx context.Context, arg ListTransactionsBetweenParams) ([]Transaction, error) {
	rows, err := q.db.Query(ctx, listTransactionsBetween,
		arg.AccountID,
		arg.UserID,
		arg.Date,
		arg.Date_2,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Transaction{}
	for rows.Next() {
		var i Transaction
		if err := rows.Scan(
			&i.ID,
			&i.UserID,
			&i.AccountID,
			&i.Amount,
			&i.Type,
			&i.Category,
			&i.Description,
			&i.Date,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const sumTransactionsByType = `-- name: SumTransactionsByType :many
SELECT type, COALESCE(SUM(amount), 0)::numeric AS total, COUNT(*) AS count
FROM transactions
WHERE user_id = $1
  AND ($2::text IS NULL OR account_id = $2)
  AND ($3::timestamptz IS NULL OR date >= $3)
  AND ($4::timestamptz IS NULL OR date < $4)
GROUP BY type
`

type SumTransactionsByTypeParams struct {
	UserID    string             `json:"user_id"`
	AccountID pgtype.Text        `json:"account_id"`
	DateFrom  pgtype.Timestamptz `json:"date_from"`
	DateTo    pgtype.Timestamptz `json:"date_to"`
}

type SumTransactionsByTypeRow struct {
	Type  string         `json:"type"`
	Total pgtype.Numeric `json:"total"`
	Count int64          `json:"count"`
}

func (q *Queries) SumTransactionsByType(ctx context.Context, arg SumTransactionsByTypeParams) ([]SumTransactionsByTypeRow, error) {
	rows, err := q.db.Query(ctx, sumTransactionsByType,
		arg.UserID,
		arg.AccountID,
		arg.DateFrom,
		arg.DateTo,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []SumTransactionsByTypeRow{}
	for rows.Next() {
		var i SumTransactionsByTypeRow
		if err := rows.Scan(&i.Type, &i.Total, &i.Count); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateTransaction = `-- name: UpdateTransaction :execrows
UPDATE transactions
SET amount = $3, type = $4, category = $5, description = $6, date = $7, updated_at = $8
WHERE id = $1 AND user_id = $2
`

type UpdateTransactionParams struct {
	ID          string             `json:"id"`
	UserID      string             `json:"user_id"`
	Amount      pgtype.Numeric     `json:"amount"`
	Type        string             `json:"type"`
	Category    pgtype.Text        `json:"category"`
	Description pgtype.Text        `json:"description"`
	Date        pgtype.Timestamptz `json:"date"`
	UpdatedAt   pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) UpdateTransaction(ctx context.Context, arg UpdateTransactionParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateTransaction,
		arg.ID,
		arg.UserID,
		arg.Amount,
		arg.Type,
		arg.Category,
		arg.Description,
		arg.Date,
		arg.UpdatedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
