package domain

import (
	"github.com/jackc/pgx/v5/pgtype"
)

// DeliveryStatus is the fulfillment state of an order. Orders move
// Processing -> Shipped -> Delivered, or to Cancelled before delivery.
type DeliveryStatus string

const (
	DeliveryStatusProcessing DeliveryStatus = "Processing"
	DeliveryStatusShipped    DeliveryStatus = "Shipped"
	DeliveryStatusDelivered  DeliveryStatus = "Delivered"
	DeliveryStatusCancelled  DeliveryStatus = "Cancelled"
)

// ValidDeliveryStatus reports whether s is a known fulfillment state.
func ValidDeliveryStatus(s DeliveryStatus) bool {
	switch s {
	case DeliveryStatusProcessing, DeliveryStatusShipped, DeliveryStatusDelivered, DeliveryStatusCancelled:
		return true
	}
	return false
}

// OrderItem is a committed sale line, copied verbatim from the checkout
// snapshot at finalization. Never edited afterwards.
type OrderItem struct {
	VariantID      pgtype.UUID
	ProductID      pgtype.UUID
	Quantity       int32
	UnitPriceCents int32
}

// Order is the immutable record a paid checkout session is promoted into,
// exactly once per session. Item-level edits never happen; the only mutation
// after creation is the admin-driven delivery-status transition. Once
// delivered, the order can no longer be cancelled or deleted.
type Order struct {
	ID              pgtype.UUID
	SessionID       pgtype.UUID
	OwnerID         pgtype.UUID
	Items           []OrderItem
	ShippingAddress ShippingAddress
	PaymentMethod   string
	TotalCents      int32

	IsPaid bool
	PaidAt pgtype.Timestamptz

	DeliveryStatus DeliveryStatus
	IsDelivered    bool
	DeliveredAt    pgtype.Timestamptz

	CreatedAt pgtype.Timestamptz
}
