package repository

import (
	"context"
)

const getSubscriptionTier = `SELECT name, display_name, max_shops, max_shelves_per_shop, max_items_per_shelf, is_active, updated_at
FROM subscription_tiers
WHERE name = $1
`

func (q *Queries) GetSubscriptionTier(ctx context.Context, name string) (SubscriptionTier, error) {
	row := q.db.QueryRowContext(ctx, getSubscriptionTier, name)
	var i SubscriptionTier
	err := row.Scan(
		&i.Name,
		&i.DisplayName,
		&i.MaxShops,
		&i.MaxShelvesPerShop,
		&i.MaxItemsPerShelf,
		&i.IsActive,
		&i.UpdatedAt,
	)
	return i, err
}

const listSubscriptionTiers = `SELECT name, display_name, max_shops, max_shelves_per_shop, max_items_per_shelf, is_active, updated_at
FROM subscription_tiers
ORDER BY max_shops, max_shelves_per_shop, max_items_per_shelf, name
`

func (q *Queries) ListSubscriptionTiers(ctx context.Context) ([]SubscriptionTier, error) {
	rows, err := q.db.QueryContext(ctx, listSubscriptionTiers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []SubscriptionTier
	for rows.Next() {
		var i SubscriptionTier
		if err := rows.Scan(
			&i.Name,
			&i.DisplayName,
			&i.MaxShops,
			&i.MaxShelvesPerShop,
			&i.MaxItemsPerShelf,
			&i.IsActive,
			&i.UpdatedAt,
		); err != nil {
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

const upsertSubscriptionTier = `INSERT INTO subscription_tiers (name, display_name, max_shops, max_shelves_per_shop, max_items_per_shelf, is_active, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, NOW())
ON CONFLICT (name) DO UPDATE SET
    display_name = EXCLUDED.display_name,
    max_shops = EXCLUDED.max_shops,
    max_shelves_per_shop = EXCLUDED.max_shelves_per_shop,
    max_items_per_shelf = EXCLUDED.max_items_per_shelf,
    is_active = EXCLUDED.is_active,
    updated_at = NOW()
`

type UpsertSubscriptionTierParams struct {
	Name              string
	DisplayName       string
	MaxShops          int32
	MaxShelvesPerShop int32
	MaxItemsPerShelf  int32
	IsActive          bool
}

func (q *Queries) UpsertSubscriptionTier(ctx context.Context, arg UpsertSubscriptionTierParams) error {
	_, err := q.db.ExecContext(ctx, upsertSubscriptionTier,
		arg.Name,
		arg.DisplayName,
		arg.MaxShops,
		arg.MaxShelvesPerShop,
		arg.MaxItemsPerShelf,
		arg.IsActive,
	)
	return err
}
