package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nordmark/vidar/internal/domain"
)

// CartStore implements domain.CartStore using PostgreSQL. A cart is the set
// of cart_items rows sharing an owner id; there is no separate carts table.
type CartStore struct {
	db *pgxpool.Pool
}

var _ domain.CartStore = (*CartStore)(nil)

func NewCartStore(db *pgxpool.Pool) *CartStore {
	return &CartStore{db: db}
}

const getCartQuery = `
SELECT variant_id, product_id, quantity, unit_price_cents, updated_at
FROM cart_items
WHERE cart_owner_id = $1
ORDER BY created_at`

func (s *CartStore) Get(ctx context.Context, ownerID pgtype.UUID) (*domain.Cart, error) {
	rows, err := s.db.Query(ctx, getCartQuery, ownerID)
	if err != nil {
		return nil, domain.Internal(err, "cart.get", "failed to load cart")
	}
	defer rows.Close()

	cart := &domain.Cart{OwnerID: ownerID}
	for rows.Next() {
		var item domain.CartItem
		var updatedAt pgtype.Timestamptz
		if err := rows.Scan(&item.VariantID, &item.ProductID, &item.Quantity, &item.UnitPriceCents, &updatedAt); err != nil {
			return nil, domain.Internal(err, "cart.get", "failed to scan cart item")
		}
		cart.Items = append(cart.Items, item)
		if updatedAt.Valid && (!cart.UpdatedAt.Valid || updatedAt.Time.After(cart.UpdatedAt.Time)) {
			cart.UpdatedAt = updatedAt
		}
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, "cart.get", "failed to read cart items")
	}

	cart.Recalculate()
	return cart, nil
}

const addItemQuery = `
INSERT INTO cart_items (cart_owner_id, variant_id, product_id, quantity, unit_price_cents)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (cart_owner_id, variant_id)
DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = now()`

// AddItem merges with an existing line for the same variant. The stored unit
// price keeps its original snapshot on merge.
func (s *CartStore) AddItem(ctx context.Context, ownerID pgtype.UUID, item domain.CartItem) error {
	_, err := s.db.Exec(ctx, addItemQuery, ownerID, item.VariantID, item.ProductID, item.Quantity, item.UnitPriceCents)
	if err != nil {
		return domain.Internal(err, "cart.add_item", "failed to add cart item")
	}
	return nil
}

const setItemQuantityQuery = `
UPDATE cart_items
SET quantity = $3, updated_at = now()
WHERE cart_owner_id = $1 AND variant_id = $2`

func (s *CartStore) SetItemQuantity(ctx context.Context, ownerID, variantID pgtype.UUID, qty int32) error {
	tag, err := s.db.Exec(ctx, setItemQuantityQuery, ownerID, variantID, qty)
	if err != nil {
		return domain.Internal(err, "cart.set_quantity", "failed to update cart item")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCartItemNotFound
	}
	return nil
}

const removeItemQuery = `
DELETE FROM cart_items
WHERE cart_owner_id = $1 AND variant_id = $2`

func (s *CartStore) RemoveItem(ctx context.Context, ownerID, variantID pgtype.UUID) error {
	tag, err := s.db.Exec(ctx, removeItemQuery, ownerID, variantID)
	if err != nil {
		return domain.Internal(err, "cart.remove_item", "failed to remove cart item")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCartItemNotFound
	}
	return nil
}

const clearCartQuery = `
DELETE FROM cart_items
WHERE cart_owner_id = $1`

func (s *CartStore) Clear(ctx context.Context, ownerID pgtype.UUID) error {
	if _, err := s.db.Exec(ctx, clearCartQuery, ownerID); err != nil {
		return domain.Internal(err, "cart.clear", "failed to clear cart")
	}
	return nil
}
