
package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createAccount = `-- name: CreateAccount :exec
INSERT INTO accounts (id, user_id, name, balance, currency, type, last_activity, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

type CreateAccountParams struct {
	ID           string             `json:"id"`
	UserID       string             `json:"user_id"`
	Name         string             `json:"name"`
	Balance      pgtype.Numeric     `json:"balance"`
	Currency     string             `json:"currency"`
	Type         string             `json:"type"`
	LastActivity pgtype.Timestamptz `json:"last_activity"`
	CreatedAt    pgtype.Timestamptz `json:"created_at"`
	UpdatedAt    pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) CreateAccount(ctx context.Context, arg CreateAccountParams) error {
	_, err := q.db.Exec(ctx, createAccount,
		arg.ID,
		arg.UserID,
		arg.Name,
		arg.Balance,
		arg.Currency,
		arg.Type,
		arg.LastActivity,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const deleteAccount = `-- name: DeleteAccount :execrows
DELETE FROM accounts WHERE id = $1 AND user_id = $2
`

type DeleteAccountParams struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
}

func (q *Queries) DeleteAccount(ctx context.Context, arg DeleteAccountParams) (int64, error) {
	result, err := q.db.Exec(ctx, deleteAccount, arg.ID, arg.UserID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const getAccountByID = `-- name: GetAccountByID :one
SELECT id, user_id, name, balance, currency, type, last_activity, created_at, updated_at FROM accounts WHERE id = $1 AND user_id = $2
`

type GetAccountByIDParams struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
}

func (q *Queries) GetAccountByID(ctx context.Context, arg GetAccountByIDParams) (Account, error) {
	row := q.db.QueryRow(ctx, getAccountByID, arg.ID, arg.UserID)
	var i Account
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Name,
		&i.Balance,
		&i.Currency,
		&i.Type,
		&i.LastActivity,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getAccountByIDForUpdate = `-- name: GetAccountByIDForUpdate :one
SELECT id, user_id, name, balance, currency, type, last_activity, created_at, updated_at FROM accounts WHERE id = $1 AND user_id = $2 FOR UPDATE
`

type GetAccountByIDForUpdateParams struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
}

func (q *Queries) GetAccountByIDForUpdate(ctx context.Context, arg GetAccountByIDForUpdateParams) (Account, error) {
	row := q.db.QueryRow(ctx, getAccountByIDForUpdate, arg.ID, arg.UserID)
	var i Account
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Name,
		&i.Balance,
		&i.Currency,
		&i.Type,
		&i.LastActivity,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listAccountsByUser = `-- name: ListAccountsByUser :many
SELECT id, user_id, name, balance, currency, type, last_activity, created_at, updated_at FROM accounts WHERE user_id = $1 ORDER BY created_at DESC, id DESC
`

func (q *Queries) ListAccountsByUser(ctx context.Context, userID string) ([]Account, error) {
	rows, err := q.db.Query(ctx, listAccountsByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Account{}
	for rows.Next() {
		var i Account
		if err := rows.Scan(
			&i.ID,
			&i.UserID,
			&i.Name,
			&i.Balance,
			&i.Currency,
			&i.Type,
			&i.LastActivity,
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

const updateAccount = `-- name: UpdateAccount :execrows
UPDATE accounts
SET name = $3, currency = $4, type = $5, balance = $6, updated_at = $7
WHERE id = $1 AND user_id = $2
`

type UpdateAccountParams struct {
	ID        string             `json:"id"`
	UserID    string             `json:"user_id"`
	Name      string             `json:"name"`
	Currency  string             `json:"currency"`
	Type      string             `json:"type"`
	Balance   pgtype.Numeric     `json:"balance"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) UpdateAccount(ctx context.Context, arg UpdateAccountParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateAccount,
		arg.ID,
		arg.UserID,
		arg.Name,
		arg.Currency,
		arg.Type,
		arg.Balance,
		arg.UpdatedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const updateAccountBalance = `-- name: UpdateAccountBalance :execrows
UPDATE accounts
SET balance = $3, last_activity = $4, updated_at = $5
WHERE id = $1 AND user_id = $2
`

type UpdateAccountBalanceParams struct {
	ID           string             `json:"id"`
	UserID       string             `json:"user_id"`
	Balance      pgtype.Numeric     `json:"balance"`
	LastActivity pgtype.Timestamptz `json:"last_activity"`
	UpdatedAt    pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) UpdateAccountBalance(ctx context.Context, arg UpdateAccountBalanceParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateAccountBalance,
		arg.ID,
		arg.UserID,
		arg.Balance,
		arg.LastActivity,
		arg.UpdatedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
