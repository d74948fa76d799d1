package domain

import (
	"github.com/jackc/pgx/v5/pgtype"
)

// CartItem is a mutable cart line. UnitPriceCents is snapshotted from the
// variant at add time; later catalog price changes do not rewrite it.
type CartItem struct {
	VariantID      pgtype.UUID
	ProductID      pgtype.UUID
	Quantity       int32
	UnitPriceCents int32
}

// LineTotalCents returns quantity times the snapshotted unit price.
func (i CartItem) LineTotalCents() int32 {
	return i.Quantity * i.UnitPriceCents
}

// Cart is a shopper's mutable line-item list. TotalCents is always recomputed
// server-side from the items (see CartTotalCents), never trusted from input.
// Adding to a cart has no inventory side effects; stock moves only at
// checkout-session creation.
type Cart struct {
	OwnerID    pgtype.UUID
	Items      []CartItem
	TotalCents int32
	UpdatedAt  pgtype.Timestamptz
}

// CartTotalCents computes the cart total from its line items. It is the
// explicit replacement for the persistence-hook recalculation pattern: every
// mutating operation calls it and persists the result, compute-then-persist.
func CartTotalCents(items []CartItem) int32 {
	var total int32
	for _, item := range items {
		total += item.LineTotalCents()
	}
	return total
}

// Recalculate refreshes TotalCents from the current items.
func (c *Cart) Recalculate() {
	c.TotalCents = CartTotalCents(c.Items)
}

// IsEmpty reports whether the cart has no line items.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// FindItem returns the line for a variant, or nil when absent. Carts hold at
// most one line per variant; duplicate adds merge by incrementing quantity.
func (c *Cart) FindItem(variantID pgtype.UUID) *CartItem {
	for i := range c.Items {
		if c.Items[i].VariantID == variantID {
			return &c.Items[i]
		}
	}
	return nil
}
