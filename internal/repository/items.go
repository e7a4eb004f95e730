package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sqlc-dev/pqtype"
)

const itemColumns = `id, kind, shop_id, shelf_id, shelf_order, name, description, price_cents, currency, media_refs, tags, attributes, created_at, updated_at`

func scanItem(row interface{ Scan(...interface{}) error }) (Item, error) {
	var i Item
	err := row.Scan(
		&i.ID,
		&i.Kind,
		&i.ShopID,
		&i.ShelfID,
		&i.ShelfOrder,
		&i.Name,
		&i.Description,
		&i.PriceCents,
		&i.Currency,
		pq.Array(&i.MediaRefs),
		pq.Array(&i.Tags),
		&i.Attributes,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func scanItems(rows *sql.Rows) ([]Item, error) {
	defer rows.Close()
	var items []Item
	for rows.Next() {
		i, err := scanItem(rows)
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

const createItem = `INSERT INTO items (id, kind, shop_id, shelf_id, shelf_order, name, description, price_cents, currency, media_refs, tags, attributes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING ` + itemColumns

type CreateItemParams struct {
	ID          uuid.UUID
	Kind        string
	ShopID      uuid.UUID
	ShelfID     uuid.NullUUID
	ShelfOrder  sql.NullInt32
	Name        string
	Description string
	PriceCents  int64
	Currency    string
	MediaRefs   []string
	Tags        []string
	Attributes  pqtype.NullRawMessage
}

func (q *Queries) CreateItem(ctx context.Context, arg CreateItemParams) (Item, error) {
	row := q.db.QueryRowContext(ctx, createItem,
		arg.ID,
		arg.Kind,
		arg.ShopID,
		arg.ShelfID,
		arg.ShelfOrder,
		arg.Name,
		arg.Description,
		arg.PriceCents,
		arg.Currency,
		pq.Array(arg.MediaRefs),
		pq.Array(arg.Tags),
		arg.Attributes,
	)
	return scanItem(row)
}

const getItemByID = `SELECT ` + itemColumns + `
FROM items
WHERE id = $1
`

func (q *Queries) GetItemByID(ctx context.Context, id uuid.UUID) (Item, error) {
	return scanItem(q.db.QueryRowContext(ctx, getItemByID, id))
}

const listItemsByShelfID = `SELECT ` + itemColumns + `
FROM items
WHERE shelf_id = $1
ORDER BY shelf_order NULLS LAST, created_at, id
`

func (q *Queries) ListItemsByShelfID(ctx context.Context, shelfID uuid.UUID) ([]Item, error) {
	rows, err := q.db.QueryContext(ctx, listItemsByShelfID, shelfID)
	if err != nil {
		return nil, err
	}
	return scanItems(rows)
}

const listItemsByShopID = `SELECT ` + itemColumns + `
FROM items
WHERE shop_id = $1
ORDER BY created_at, id
`

func (q *Queries) ListItemsByShopID(ctx context.Context, shopID uuid.UUID) ([]Item, error) {
	rows, err := q.db.QueryContext(ctx, listItemsByShopID, shopID)
	if err != nil {
		return nil, err
	}
	return scanItems(rows)
}

const listUnplacedItemsByShopID = `SELECT ` + itemColumns + `
FROM items
WHERE shop_id = $1 AND shelf_id IS NULL
ORDER BY created_at, id
`

func (q *Queries) ListUnplacedItemsByShopID(ctx context.Context, shopID uuid.UUID) ([]Item, error) {
	rows, err := q.db.QueryContext(ctx, listUnplacedItemsByShopID, shopID)
	if err != nil {
		return nil, err
	}
	return scanItems(rows)
}

const updateItemDetails = `UPDATE items
SET name = $2,
    description = $3,
    price_cents = $4,
    currency = $5,
    media_refs = $6,
    tags = $7,
    attributes = $8,
    updated_at = NOW()
WHERE id = $1
`

type UpdateItemDetailsParams struct {
	ID          uuid.UUID
	Name        string
	Description string
	PriceCents  int64
	Currency    string
	MediaRefs   []string
	Tags        []string
	Attributes  pqtype.NullRawMessage
}

func (q *Queries) UpdateItemDetails(ctx context.Context, arg UpdateItemDetailsParams) error {
	_, err := q.db.ExecContext(ctx, updateItemDetails,
		arg.ID,
		arg.Name,
		arg.Description,
		arg.PriceCents,
		arg.Currency,
		pq.Array(arg.MediaRefs),
		pq.Array(arg.Tags),
		arg.Attributes,
	)
	return err
}

const deleteItem = `DELETE FROM items WHERE id = $1
`

func (q *Queries) DeleteItem(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.ExecContext(ctx, deleteItem, id)
	return err
}
