package domain

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// Common sentinel errors shared by store implementations and services.
var (
	ErrProductNotFound  = Errorf(ENOTFOUND, "", "Product not found")
	ErrVariantNotFound  = Errorf(ENOTFOUND, "", "Variant not found")
	ErrCartItemNotFound = Errorf(ENOTFOUND, "", "Cart item not found")
	ErrSessionNotFound  = Errorf(ENOTFOUND, "", "Checkout session not found")
	ErrOrderNotFound    = Errorf(ENOTFOUND, "", "Order not found")
)

// InventoryLedger owns per-variant stock counts. It is the only writer of
// stock; no component reads-then-writes a count directly. Reserve and Release
// are atomic per variant but carry no batch guarantee across variants: a
// caller reserving several items must roll back its own partial progress.
type InventoryLedger interface {
	// GetVariant returns a variant by id, or ErrVariantNotFound.
	GetVariant(ctx context.Context, variantID pgtype.UUID) (*Variant, error)

	// FindVariant resolves a product's size/color combination, or
	// ErrVariantNotFound when the combination does not exist.
	FindVariant(ctx context.Context, productID pgtype.UUID, size, color string) (*Variant, error)

	// Reserve atomically checks stock >= qty and decrements in one step.
	// Returns ErrInsufficientStock without any partial decrement when the
	// check fails. Stock never goes negative.
	Reserve(ctx context.Context, variantID pgtype.UUID, qty int32) error

	// Release atomically increments stock. Each compensating release must
	// correspond to exactly one prior reserve; idempotency is the
	// caller's responsibility.
	Release(ctx context.Context, variantID pgtype.UUID, qty int32) error
}

// CartStore persists a shopper's mutable cart. It has no inventory side
// effects.
type CartStore interface {
	// Get returns the shopper's cart, or an empty cart when none exists.
	Get(ctx context.Context, ownerID pgtype.UUID) (*Cart, error)

	// AddItem upserts a line: an existing line for the variant has its
	// quantity incremented, otherwise the line is appended with the given
	// price snapshot.
	AddItem(ctx context.Context, ownerID pgtype.UUID, item CartItem) error

	// SetItemQuantity sets a line's quantity. ErrCartItemNotFound when
	// the line does not exist.
	SetItemQuantity(ctx context.Context, ownerID, variantID pgtype.UUID, qty int32) error

	// RemoveItem deletes a line. ErrCartItemNotFound when absent.
	RemoveItem(ctx context.Context, ownerID, variantID pgtype.UUID) error

	// Clear empties the cart. A no-op on an already-empty cart.
	Clear(ctx context.Context, ownerID pgtype.UUID) error
}

// CheckoutStore persists checkout sessions. The conditional mutations return
// whether this caller won the transition, so state-machine latches stay
// atomic under concurrent invocation.
type CheckoutStore interface {
	Create(ctx context.Context, session *CheckoutSession) error
	Get(ctx context.Context, id pgtype.UUID) (*CheckoutSession, error)
	ListByOwner(ctx context.Context, ownerID pgtype.UUID) ([]CheckoutSession, error)

	// SetIntent records the gateway intent reference on a pending session.
	SetIntent(ctx context.Context, id pgtype.UUID, intentID string) error

	// MarkPaid transitions pending -> paid. Returns false when the
	// session was already paid; the caller re-reads and returns the
	// existing state (gateway callbacks are delivered more than once).
	MarkPaid(ctx context.Context, id pgtype.UUID, paidAt time.Time, details json.RawMessage) (bool, error)

	// SetFinalized flips the one-way finalization latch. Returns false
	// when another caller already finalized the session.
	SetFinalized(ctx context.Context, id pgtype.UUID, finalizedAt time.Time) (bool, error)

	// Delete removes a non-finalized session. Returns false when the
	// session was already gone, already finalized, or already has a
	// committed order (finalization commits the order row before it
	// flips the latch); exactly one concurrent deleter observes true and
	// runs the compensating releases.
	Delete(ctx context.Context, id pgtype.UUID) (bool, error)

	// DeleteExpired removes a session only while it is still unpaid and
	// unfinalized. The sweeper lists candidates first; a payment landing
	// between the listing and this call must keep the session.
	DeleteExpired(ctx context.Context, id pgtype.UUID) (bool, error)

	// ListStalePending returns pending, unpaid sessions created before
	// the cutoff, for the abandonment sweeper.
	ListStalePending(ctx context.Context, before time.Time) ([]CheckoutSession, error)
}

// OrderStore persists finalized orders. A UNIQUE constraint on session_id
// backs the one-order-per-session guarantee; Create surfaces a violation as
// ErrOrderExists so the finalizer can return the already-created order.
type OrderStore interface {
	Create(ctx context.Context, order *Order) error
	Get(ctx context.Context, id pgtype.UUID) (*Order, error)
	GetBySession(ctx context.Context, sessionID pgtype.UUID) (*Order, error)
	ListByOwner(ctx context.Context, ownerID pgtype.UUID) ([]Order, error)
	ListAll(ctx context.Context) ([]Order, error)

	// UpdateDeliveryStatus sets the fulfillment state; Delivered also
	// stamps is_delivered/delivered_at.
	UpdateDeliveryStatus(ctx context.Context, id pgtype.UUID, status DeliveryStatus, deliveredAt time.Time) error

	// Delete removes a non-delivered order. Returns false when the order
	// was already gone; the winner restores stock exactly once.
	Delete(ctx context.Context, id pgtype.UUID) (bool, error)
}

// ErrOrderExists signals that finalization lost a race: an order for the
// session already exists. The finalizer treats it as success and returns the
// existing order.
var ErrOrderExists = Errorf(ECONFLICT, "", "Order already exists for this checkout session")
