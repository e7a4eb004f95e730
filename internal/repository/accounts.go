package repository

import (
	"context"

	"github.com/google/uuid"
)

const createAccount = `INSERT INTO accounts (id, subject, tier_name)
VALUES ($1, $2, $3)
RETURNING id, subject, tier_name, created_at, updated_at
`

type CreateAccountParams struct {
	ID       uuid.UUID
	Subject  string
	TierName string
}

func (q *Queries) CreateAccount(ctx context.Context, arg CreateAccountParams) (Account, error) {
	row := q.db.QueryRowContext(ctx, createAccount, arg.ID, arg.Subject, arg.TierName)
	var i Account
	err := row.Scan(&i.ID, &i.Subject, &i.TierName, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const getAccountByID = `SELECT id, subject, tier_name, created_at, updated_at
FROM accounts
WHERE id = $1
`

func (q *Queries) GetAccountByID(ctx context.Context, id uuid.UUID) (Account, error) {
	row := q.db.QueryRowContext(ctx, getAccountByID, id)
	var i Account
	err := row.Scan(&i.ID, &i.Subject, &i.TierName, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const getAccountByIDForUpdate = `SELECT id, subject, tier_name, created_at, updated_at
FROM accounts
WHERE id = $1
FOR UPDATE
`

func (q *Queries) GetAccountByIDForUpdate(ctx context.Context, id uuid.UUID) (Account, error) {
	row := q.db.QueryRowContext(ctx, getAccountByIDForUpdate, id)
	var i Account
	err := row.Scan(&i.ID, &i.Subject, &i.TierName, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const getAccountBySubject = `SELECT id, subject, tier_name, created_at, updated_at
FROM accounts
WHERE subject = $1
`

func (q *Queries) GetAccountBySubject(ctx context.Context, subject string) (Account, error) {
	row := q.db.QueryRowContext(ctx, getAccountBySubject, subject)
	var i Account
	err := row.Scan(&i.ID, &i.Subject, &i.TierName, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const updateAccountTier = `UPDATE accounts
SET tier_name = $2, updated_at = NOW()
WHERE id = $1
`

type UpdateAccountTierParams struct {
	ID       uuid.UUID
	TierName string
}

func (q *Queries) UpdateAccountTier(ctx context.Context, arg UpdateAccountTierParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateAccountTier, arg.ID, arg.TierName)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
