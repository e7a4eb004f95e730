package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const shopColumns = `id, owner_id, slug, name, description, status, shelf_ids::text[], created_at, updated_at`

func scanShop(row interface{ Scan(...interface{}) error }) (Shop, error) {
	var i Shop
	err := row.Scan(
		&i.ID,
		&i.OwnerID,
		&i.Slug,
		&i.Name,
		&i.Description,
		&i.Status,
		pq.Array(&i.ShelfIds),
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createShop = `INSERT INTO shops (id, owner_id, slug, name, description, status)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + shopColumns

type CreateShopParams struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Slug        string
	Name        string
	Description string
	Status      string
}

func (q *Queries) CreateShop(ctx context.Context, arg CreateShopParams) (Shop, error) {
	row := q.db.QueryRowContext(ctx, createShop,
		arg.ID,
		arg.OwnerID,
		arg.Slug,
		arg.Name,
		arg.Description,
		arg.Status,
	)
	return scanShop(row)
}

const getShopByID = `SELECT ` + shopColumns + `
FROM shops
WHERE id = $1
`

func (q *Queries) GetShopByID(ctx context.Context, id uuid.UUID) (Shop, error) {
	return scanShop(q.db.QueryRowContext(ctx, getShopByID, id))
}

const getShopByIDForUpdate = `SELECT ` + shopColumns + `
FROM shops
WHERE id = $1
FOR UPDATE
`

func (q *Queries) GetShopByIDForUpdate(ctx context.Context, id uuid.UUID) (Shop, error) {
	return scanShop(q.db.QueryRowContext(ctx, getShopByIDForUpdate, id))
}

const listShopsByOwnerID = `SELECT ` + shopColumns + `
FROM shops
WHERE owner_id = $1
ORDER BY created_at, id
`

func (q *Queries) ListShopsByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]Shop, error) {
	rows, err := q.db.QueryContext(ctx, listShopsByOwnerID, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Shop
	for rows.Next() {
		i, err := scanShop(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countShopsByOwnerID = `SELECT COUNT(*) FROM shops WHERE owner_id = $1
`

func (q *Queries) CountShopsByOwnerID(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	row := q.db.QueryRowContext(ctx, countShopsByOwnerID, ownerID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const updateShopStatus = `UPDATE shops SET status = $2, updated_at = NOW() WHERE id = $1
`

type UpdateShopStatusParams struct {
	ID     uuid.UUID
	Status string
}

func (q *Queries) UpdateShopStatus(ctx context.Context, arg UpdateShopStatusParams) error {
	_, err := q.db.ExecContext(ctx, updateShopStatus, arg.ID, arg.Status)
	return err
}

const appendShopShelfID = `UPDATE shops
SET shelf_ids = array_append(shelf_ids, $2::uuid), updated_at = NOW()
WHERE id = $1
`

type AppendShopShelfIDParams struct {
	ID      uuid.UUID
	ShelfID uuid.UUID
}

func (q *Queries) AppendShopShelfID(ctx context.Context, arg AppendShopShelfIDParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, appendShopShelfID, arg.ID, arg.ShelfID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const removeShopShelfID = `UPDATE shops
SET shelf_ids = array_remove(shelf_ids, $2::uuid), updated_at = NOW()
WHERE id = $1
`

type RemoveShopShelfIDParams struct {
	ID      uuid.UUID
	ShelfID uuid.UUID
}

func (q *Queries) RemoveShopShelfID(ctx context.Context, arg RemoveShopShelfIDParams) error {
	_, err := q.db.ExecContext(ctx, removeShopShelfID, arg.ID, arg.ShelfID)
	return err
}

const setShopShelfIDs = `UPDATE shops
SET shelf_ids = $2::uuid[], updated_at = NOW()
WHERE id = $1
`

type SetShopShelfIDsParams struct {
	ID       uuid.UUID
	ShelfIds []string
}

func (q *Queries) SetShopShelfIDs(ctx context.Context, arg SetShopShelfIDsParams) error {
	_, err := q.db.ExecContext(ctx, setShopShelfIDs, arg.ID, pq.Array(arg.ShelfIds))
	return err
}
