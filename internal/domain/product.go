package domain

import (
	"github.com/jackc/pgx/v5/pgtype"
)

// Product is the minimal catalog record that owns variants. Catalog CRUD and
// search live outside this service; the order engine only reads products to
// resolve variants and snapshot prices.
type Product struct {
	ID          pgtype.UUID
	Name        string
	Description string
	Category    string
	Brand       string
	Gender      string
	IsPublished bool
	CreatedAt   pgtype.Timestamptz
	UpdatedAt   pgtype.Timestamptz
}

// Variant is a purchasable size/color combination of a product. It carries its
// own stock count and SKU and is the unit of inventory accounting: every
// reserve/release operates on a single variant row.
type Variant struct {
	ID                 pgtype.UUID
	ProductID          pgtype.UUID
	Size               string
	Color              string
	SKU                string
	PriceCents         int32
	DiscountPriceCents pgtype.Int4
	StockCount         int32
}

// EffectivePriceCents returns the price a new cart line snapshots: the
// discount price when one is set, the base price otherwise.
func (v Variant) EffectivePriceCents() int32 {
	if v.DiscountPriceCents.Valid && v.DiscountPriceCents.Int32 > 0 {
		return v.DiscountPriceCents.Int32
	}
	return v.PriceCents
}
