package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const shelfColumns = `id, shop_id, name, description, shelf_order, product_ids::text[], service_ids::text[], created_at, updated_at`

func scanShelf(row interface{ Scan(...interface{}) error }) (Shelf, error) {
	var i Shelf
	err := row.Scan(
		&i.ID,
		&i.ShopID,
		&i.Name,
		&i.Description,
		&i.ShelfOrder,
		pq.Array(&i.ProductIds),
		pq.Array(&i.ServiceIds),
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createShelf = `INSERT INTO shelves (id, shop_id, name, description, shelf_order)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + shelfColumns

type CreateShelfParams struct {
	ID          uuid.UUID
	ShopID      uuid.UUID
	Name        string
	Description string
	ShelfOrder  int32
}

func (q *Queries) CreateShelf(ctx context.Context, arg CreateShelfParams) (Shelf, error) {
	row := q.db.QueryRowContext(ctx, createShelf,
		arg.ID,
		arg.ShopID,
		arg.Name,
		arg.Description,
		arg.ShelfOrder,
	)
	return scanShelf(row)
}

const getShelfByID = `SELECT ` + shelfColumns + `
FROM shelves
WHERE id = $1
`

func (q *Queries) GetShelfByID(ctx context.Context, id uuid.UUID) (Shelf, error) {
	return scanShelf(q.db.QueryRowContext(ctx, getShelfByID, id))
}

const getShelfByIDForUpdate = `SELECT ` + shelfColumns + `
FROM shelves
WHERE id = $1
FOR UPDATE
`

func (q *Queries) GetShelfByIDForUpdate(ctx context.Context, id uuid.UUID) (Shelf, error) {
	return scanShelf(q.db.QueryRowContext(ctx, getShelfByIDForUpdate, id))
}

const listShelvesByShopID = `SELECT ` + shelfColumns + `
FROM shelves
WHERE shop_id = $1
ORDER BY shelf_order, created_at, id
`

func (q *Queries) ListShelvesByShopID(ctx context.Context, shopID uuid.UUID) ([]Shelf, error) {
	rows, err := q.db.QueryContext(ctx, listShelvesByShopID, shopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Shelf
	for rows.Next() {
		i, err := scanShelf(rows)
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

const countShelvesByShopID = `SELECT COUNT(*) FROM shelves WHERE shop_id = $1
`

func (q *Queries) CountShelvesByShopID(ctx context.Context, shopID uuid.UUID) (int64, error) {
	row := q.db.QueryRowContext(ctx, countShelvesByShopID, shopID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const updateShelfDetails = `UPDATE shelves
SET name = $2, description = $3, updated_at = NOW()
WHERE id = $1
`

type UpdateShelfDetailsParams struct {
	ID          uuid.UUID
	Name        string
	Description string
}

func (q *Queries) UpdateShelfDetails(ctx context.Context, arg UpdateShelfDetailsParams) error {
	_, err := q.db.ExecContext(ctx, updateShelfDetails, arg.ID, arg.Name, arg.Description)
	return err
}

const updateShelfOrder = `UPDATE shelves SET shelf_order = $2, updated_at = NOW() WHERE id = $1
`

type UpdateShelfOrderParams struct {
	ID         uuid.UUID
	ShelfOrder int32
}

func (q *Queries) UpdateShelfOrder(ctx context.Context, arg UpdateShelfOrderParams) error {
	_, err := q.db.ExecContext(ctx, updateShelfOrder, arg.ID, arg.ShelfOrder)
	return err
}

const deleteShelf = `DELETE FROM shelves WHERE id = $1
`

func (q *Queries) DeleteShelf(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.ExecContext(ctx, deleteShelf, id)
	return err
}

const appendShelfProductID = `UPDATE shelves
SET product_ids = array_append(product_ids, $2::uuid), updated_at = NOW()
WHERE id = $1
`

const appendShelfServiceID = `UPDATE shelves
SET service_ids = array_append(service_ids, $2::uuid), updated_at = NOW()
WHERE id = $1
`

type ShelfItemParams struct {
	ID     uuid.UUID
	ItemID uuid.UUID
}

func (q *Queries) AppendShelfProductID(ctx context.Context, arg ShelfItemParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, appendShelfProductID, arg.ID, arg.ItemID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (q *Queries) AppendShelfServiceID(ctx context.Context, arg ShelfItemParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, appendShelfServiceID, arg.ID, arg.ItemID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const removeShelfProductID = `UPDATE shelves
SET product_ids = array_remove(product_ids, $2::uuid), updated_at = NOW()
WHERE id = $1
`

const removeShelfServiceID = `UPDATE shelves
SET service_ids = array_remove(service_ids, $2::uuid), updated_at = NOW()
WHERE id = $1
`

func (q *Queries) RemoveShelfProductID(ctx context.Context, arg ShelfItemParams) error {
	_, err := q.db.ExecContext(ctx, removeShelfProductID, arg.ID, arg.ItemID)
	return err
}

func (q *Queries) RemoveShelfServiceID(ctx context.Context, arg ShelfItemParams) error {
	_, err := q.db.ExecContext(ctx, removeShelfServiceID, arg.ID, arg.ItemID)
	return err
}

const setShelfItemIDs = `UPDATE shelves
SET product_ids = $2::uuid[], service_ids = $3::uuid[], updated_at = NOW()
WHERE id = $1
`

type SetShelfItemIDsParams struct {
	ID         uuid.UUID
	ProductIds []string
	ServiceIds []string
}

func (q *Queries) SetShelfItemIDs(ctx context.Context, arg SetShelfItemIDsParams) error {
	_, err := q.db.ExecContext(ctx, setShelfItemIDs, arg.ID, pq.Array(arg.ProductIds), pq.Array(arg.ServiceIds))
	return err
}
