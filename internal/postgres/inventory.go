package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nordmark/vidar/internal/domain"
)

// InventoryStore implements domain.InventoryLedger using PostgreSQL.
//
// Reserve and Release are single conditional UPDATE statements, so the
// check-and-decrement is atomic at the row level and stock can never be
// driven below zero regardless of how many sessions race for the last unit.
type InventoryStore struct {
	db *pgxpool.Pool
}

var _ domain.InventoryLedger = (*InventoryStore)(nil)

func NewInventoryStore(db *pgxpool.Pool) *InventoryStore {
	return &InventoryStore{db: db}
}

// ErrInsufficientStock is returned by Reserve when the variant does not hold
// the requested quantity. The caller rolls back any prior reservations in
// the same batch.
var ErrInsufficientStock = domain.Errorf(domain.ECONFLICT, "inventory.reserve", "Insufficient stock")

const getVariantQuery = `
SELECT id, product_id, size, color, sku, price_cents, discount_price_cents, stock_count
FROM product_variants
WHERE id = $1`

func (s *InventoryStore) GetVariant(ctx context.Context, variantID pgtype.UUID) (*domain.Variant, error) {
	var v domain.Variant
	err := s.db.QueryRow(ctx, getVariantQuery, variantID).Scan(
		&v.ID, &v.ProductID, &v.Size, &v.Color, &v.SKU,
		&v.PriceCents, &v.DiscountPriceCents, &v.StockCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrVariantNotFound
		}
		return nil, domain.Internal(err, "inventory.get_variant", "failed to get variant")
	}
	return &v, nil
}

const findVariantQuery = `
SELECT id, product_id, size, color, sku, price_cents, discount_price_cents, stock_count
FROM product_variants
WHERE product_id = $1 AND size = $2 AND color = $3`

func (s *InventoryStore) FindVariant(ctx context.Context, productID pgtype.UUID, size, color string) (*domain.Variant, error) {
	var v domain.Variant
	err := s.db.QueryRow(ctx, findVariantQuery, productID, size, color).Scan(
		&v.ID, &v.ProductID, &v.Size, &v.Color, &v.SKU,
		&v.PriceCents, &v.DiscountPriceCents, &v.StockCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrVariantNotFound
		}
		return nil, domain.Internal(err, "inventory.find_variant", "failed to find variant")
	}
	return &v, nil
}

const reserveQuery = `
UPDATE product_variants
SET stock_count = stock_count - $2, updated_at = now()
WHERE id = $1 AND stock_count >= $2`

// Reserve decrements stock only when enough remains. Zero rows affected
// means either the variant is missing or the stock check failed; the two are
// disambiguated with a follow-up read so callers get a precise error.
func (s *InventoryStore) Reserve(ctx context.Context, variantID pgtype.UUID, qty int32) error {
	if qty <= 0 {
		return domain.Invalid("inventory.reserve", "quantity must be positive")
	}

	tag, err := s.db.Exec(ctx, reserveQuery, variantID, qty)
	if err != nil {
		return domain.Internal(err, "inventory.reserve", "failed to reserve stock")
	}
	if tag.RowsAffected() == 0 {
		if _, err := s.GetVariant(ctx, variantID); err != nil {
			return err
		}
		return ErrInsufficientStock
	}
	return nil
}

const releaseQuery = `
UPDATE product_variants
SET stock_count = stock_count + $2, updated_at = now()
WHERE id = $1`

func (s *InventoryStore) Release(ctx context.Context, variantID pgtype.UUID, qty int32) error {
	if qty <= 0 {
		return domain.Invalid("inventory.release", "quantity must be positive")
	}

	tag, err := s.db.Exec(ctx, releaseQuery, variantID, qty)
	if err != nil {
		return domain.Internal(err, "inventory.release", "failed to release stock")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrVariantNotFound
	}
	return nil
}
