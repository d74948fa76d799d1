package domain

import (
	"encoding/json"

	"github.com/jackc/pgx/v5/pgtype"
)

// PaymentStatus tracks where a checkout session sits in the payment flow.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// ShippingAddress is the destination captured at checkout creation. Address
// validation and shipping-rate calculation are external collaborators; this
// record is stored verbatim on the session and copied onto the order.
type ShippingAddress struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// CheckoutItem is an immutable snapshot of a cart line taken at session
// creation. The unit price is frozen here; the session total is the sum of
// these lines and is never recomputed from the live catalog.
type CheckoutItem struct {
	VariantID      pgtype.UUID
	ProductID      pgtype.UUID
	Quantity       int32
	UnitPriceCents int32
}

// CheckoutSession is the immutable-snapshot intermediate state between a
// mutable cart and a finalized order.
//
// Invariants:
//   - TotalCents is computed once at creation and frozen.
//   - Stock for every item is reserved exactly once, at creation.
//   - IsFinalized is a one-way latch; a finalized session is immutable
//     history attached to its order.
type CheckoutSession struct {
	ID              pgtype.UUID
	OwnerID         pgtype.UUID
	Items           []CheckoutItem
	ShippingAddress ShippingAddress
	PaymentMethod   string
	TotalCents      int32

	// GatewayIntentID is the payable reference created with the external
	// gateway. Callback verification recomputes the signature over this
	// stored value, never over a client-supplied order reference.
	GatewayIntentID pgtype.Text

	PaymentStatus  PaymentStatus
	IsPaid         bool
	PaidAt         pgtype.Timestamptz
	PaymentDetails json.RawMessage

	IsFinalized bool
	FinalizedAt pgtype.Timestamptz

	CreatedAt pgtype.Timestamptz
}

// CheckoutTotalCents computes the frozen session total from its snapshot
// items. Called once, at creation.
func CheckoutTotalCents(items []CheckoutItem) int32 {
	var total int32
	for _, item := range items {
		total += item.Quantity * item.UnitPriceCents
	}
	return total
}
