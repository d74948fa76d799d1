package service

import (
	"context"
	"log/slog"

	"github.com/nordmark/vidar/internal/domain"
)

// Restocker returns reserved stock to the ledger when a checkout session or
// an undeliverable order is torn down. Callers invoke it at most once per
// teardown; the conditional delete that precedes it guarantees a single
// winner under concurrent invocation.
type Restocker struct {
	inventory domain.InventoryLedger
	logger    *slog.Logger
}

func NewRestocker(inventory domain.InventoryLedger, logger *slog.Logger) *Restocker {
	return &Restocker{inventory: inventory, logger: logger}
}

// RestoreCheckoutItems releases each snapshot line's exact quantity back to
// its variant. Failures on individual variants are logged and skipped so one
// deleted variant does not strand the rest of the compensation.
func (r *Restocker) RestoreCheckoutItems(ctx context.Context, items []domain.CheckoutItem) {
	for _, item := range items {
		if err := r.inventory.Release(ctx, item.VariantID, item.Quantity); err != nil {
			r.logger.ErrorContext(ctx, "failed to restore stock",
				slog.String("variant_id", uuidToString(item.VariantID)),
				slog.Int("quantity", int(item.Quantity)),
				slog.String("error", err.Error()),
			)
		}
	}
}

// RestoreOrderItems releases stock for a deleted order's lines.
func (r *Restocker) RestoreOrderItems(ctx context.Context, items []domain.OrderItem) {
	for _, item := range items {
		if err := r.inventory.Release(ctx, item.VariantID, item.Quantity); err != nil {
			r.logger.ErrorContext(ctx, "failed to restore stock",
				slog.String("variant_id", uuidToString(item.VariantID)),
				slog.Int("quantity", int(item.Quantity)),
				slog.String("error", err.Error()),
			)
		}
	}
}
