package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/nordmark/vidar/internal/domain"
)

// paidSession drives a cart through checkout and payment so finalization can
// be exercised in isolation.
func paidSession(t *testing.T, kit *testKit, ownerID pgtype.UUID, variant *domain.Variant, qty int32) *domain.CheckoutSession {
	t.Helper()
	kit.fillCart(ownerID, variant, qty)
	session := createSession(t, kit, ownerID)
	return paySession(t, kit, ownerID, session)
}

func TestOrderService_Finalize(t *testing.T) {
	kit := newTestKit()
	ownerID := newUUID()
	variant := kit.makeVariant(2500, 10)
	session := paidSession(t, kit, ownerID, variant, 2)
	ctx := context.Background()

	order, err := kit.orderSvc.Finalize(ctx, ownerID, uuidToString(session.ID))
	if err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if order.SessionID != session.ID {
		t.Error("order not linked to its session")
	}
	if order.TotalCents != session.TotalCents {
		t.Errorf("TotalCents = %d, want session total %d", order.TotalCents, session.TotalCents)
	}
	if order.DeliveryStatus != domain.DeliveryStatusProcessing {
		t.Errorf("DeliveryStatus = %s, want Processing", order.DeliveryStatus)
	}
	if !order.IsPaid || !order.PaidAt.Valid {
		t.Error("payment evidence not copied onto the order")
	}

	// Finalization leaves reserved stock where it is.
	if got := kit.inventory.stock(variant.ID); got != 8 {
		t.Errorf("stock = %d, want 8", got)
	}

	// The session latched and the cart was cleared.
	latched, _ := kit.checkouts.Get(ctx, session.ID)
	if !latched.IsFinalized {
		t.Error("session not latched finalized")
	}
	cart, _ := kit.carts.Get(ctx, ownerID)
	if !cart.IsEmpty() {
		t.Error("cart not cleared after finalize")
	}
}

func TestOrderService_Finalize_NotPaid(t *testing.T) {
	kit := newTestKit()
	ownerID := newUUID()
	kit.fillCart(ownerID, kit.makeVariant(2500, 10), 1)
	session := createSession(t, kit, ownerID)

	_, err := kit.orderSvc.Finalize(context.Background(), ownerID, uuidToString(session.ID))
	if !errors.Is(err, ErrNotPaid) {
		t.Errorf("error = %v, want ErrNotPaid", err)
	}
	if orders, _ := kit.orders.ListAll(context.Background()); len(orders) != 0 {
		t.Errorf("orders created = %d, want 0", len(orders))
	}
}

func TestOrderService_Finalize_Idempotent(t *testing.T) {
	kit := newTestKit()
	ownerID := newUUID()
	session := paidSession(t, kit, ownerID, kit.makeVariant(2500, 10), 1)
	ctx := context.Background()

	first, err := kit.orderSvc.Finalize(ctx, ownerID, uuidToString(session.ID))
	if err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	second, err := kit.orderSvc.Finalize(ctx, ownerID, uuidToString(session.ID))
	if err != nil {
		t.Fatalf("repeat Finalize() error = %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("repeat finalize produced a different order: %s vs %s",
			uuidToString(second.ID), uuidToString(first.ID))
	}
	if orders, _ := kit.orders.ListAll(ctx); len(orders) != 1 {
		t.Errorf("orders = %d, want exactly 1", len(orders))
	}
}

func TestOrderService_Finalize_LosesInsertRace(t *testing.T) {
	kit := newTestKit()
	ownerID := newUUID()
	session := paidSession(t, kit, ownerID, kit.makeVariant(2500, 10), 1)
	ctx := context.Background()

	// Simulate a concurrent winner: an order for the session already exists
	// but the finalized latch has not flipped yet.
	winner := &domain.Order{
		ID:             newUUID(),
		SessionID:      session.ID,
		OwnerID:        ownerID,
		TotalCents:     session.TotalCents,
		IsPaid:         true,
		DeliveryStatus: domain.DeliveryStatusProcessing,
	}
	if err := kit.orders.Create(ctx, winner); err != nil {
		t.Fatalf("seeding winner order: %v", err)
	}

	order, err := kit.orderSvc.Finalize(ctx, ownerID, uuidToString(session.ID))
	if err != nil {
		t.Fatalf("losing Finalize() error = %v", err)
	}
	if order.ID != winner.ID {
		t.Errorf("loser got order %s, want winner's %s",
			uuidToString(order.ID), uuidToString(winner.ID))
	}
}

func TestOrderService_Finalize_Ownership(t *testing.T) {
	kit := newTestKit()
	ownerID := newUUID()
	session := paidSession(t, kit, ownerID, kit.makeVariant(2500, 10), 1)

	_, err := kit.orderSvc.Finalize(context.Background(), newUUID(), uuidToString(session.ID))
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("error = %v, want ErrSessionNotFound for foreign owner", err)
	}
}

func TestOrderService_Get_Ownership(t *testing.T) {
	kit := newTestKit()
	ownerID := newUUID()
	session := paidSession(t, kit, ownerID, kit.makeVariant(2500, 10), 1)
	ctx := context.Background()

	order, err := kit.orderSvc.Finalize(ctx, ownerID, uuidToString(session.ID))
	if err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if _, err := kit.orderSvc.Get(ctx, newUUID(), uuidToString(order.ID)); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("foreign owner error = %v, want ErrOrderNotFound", err)
	}
	if _, err := kit.orderSvc.Get(ctx, pgtype.UUID{}, uuidToString(order.ID)); err != nil {
		t.Errorf("admin Get() error = %v", err)
	}
}

func TestOrderService_UpdateDeliveryStatus(t *testing.T) {
	kit := newTestKit()
	ownerID := newUUID()
	session := paidSession(t, kit, ownerID, kit.makeVariant(2500, 10), 1)
	ctx := context.Background()

	order, err := kit.orderSvc.Finalize(ctx, ownerID, uuidToString(session.ID))
	if err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	orderID := uuidToString(order.ID)

	shipped, err := kit.orderSvc.UpdateDeliveryStatus(ctx, orderID, domain.DeliveryStatusShipped)
	if err != nil {
		t.Fatalf("UpdateDeliveryStatus(Shipped) error = %v", err)
	}
	if shipped.DeliveryStatus != domain.DeliveryStatusShipped || shipped.IsDelivered {
		t.Errorf("after ship: status = %s, delivered = %v", shipped.DeliveryStatus, shipped.IsDelivered)
	}

	delivered, err := kit.orderSvc.UpdateDeliveryStatus(ctx, orderID, domain.DeliveryStatusDelivered)
	if err != nil {
		t.Fatalf("UpdateDeliveryStatus(Delivered) error = %v", err)
	}
	if !delivered.IsDelivered || !delivered.DeliveredAt.Valid {
		t.Error("delivery not stamped")
	}

	// A delivered order cannot be walked back to Cancelled.
	_, err = kit.orderSvc.UpdateDeliveryStatus(ctx, orderID, domain.DeliveryStatusCancelled)
	if !errors.Is(err, ErrDeliveredOrderImmutable) {
		t.Errorf("cancel after delivery error = %v, want ErrDeliveredOrderImmutable", err)
	}
}

func TestOrderService_UpdateDeliveryStatus_InvalidStatus(t *testing.T) {
	kit := newTestKit()

	_, err := kit.orderSvc.UpdateDeliveryStatus(context.Background(), uuidToString(newUUID()), "Lost")
	if !errors.Is(err, ErrInvalidDeliveryStatus) {
		t.Errorf("error = %v, want ErrInvalidDeliveryStatus", err)
	}
}

func TestOrderService_Delete_RestoresStockOnce(t *testing.T) {
	kit := newTestKit()
	ownerID := newUUID()
	variant := kit.makeVariant(2500, 10)
	session := paidSession(t, kit, ownerID, variant, 3)
	ctx := context.Background()

	order, err := kit.orderSvc.Finalize(ctx, ownerID, uuidToString(session.ID))
	if err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if got := kit.inventory.stock(variant.ID); got != 7 {
		t.Fatalf("stock = %d, want 7", got)
	}

	if err := kit.orderSvc.Delete(ctx, uuidToString(order.ID)); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if got := kit.inventory.stock(variant.ID); got != 10 {
		t.Errorf("stock after delete = %d, want 10", got)
	}

	err = kit.orderSvc.Delete(ctx, uuidToString(order.ID))
	if !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("second Delete() error = %v, want ErrOrderNotFound", err)
	}
	if got := kit.inventory.stock(variant.ID); got != 10 {
		t.Errorf("stock after second delete = %d, want 10", got)
	}
}

func TestOrderService_Delete_DeliveredOrder(t *testing.T) {
	kit := newTestKit()
	ownerID := newUUID()
	variant := kit.makeVariant(2500, 10)
	session := paidSession(t, kit, ownerID, variant, 1)
	ctx := context.Background()

	order, err := kit.orderSvc.Finalize(ctx, ownerID, uuidToString(session.ID))
	if err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if _, err := kit.orderSvc.UpdateDeliveryStatus(ctx, uuidToString(order.ID), domain.DeliveryStatusDelivered); err != nil {
		t.Fatalf("UpdateDeliveryStatus() error = %v", err)
	}

	err = kit.orderSvc.Delete(ctx, uuidToString(order.ID))
	if !errors.Is(err, ErrDeliveredOrderImmutable) {
		t.Errorf("error = %v, want ErrDeliveredOrderImmutable", err)
	}
	if got := kit.inventory.stock(variant.ID); got != 9 {
		t.Errorf("stock = %d, want 9 (no restock for delivered order)", got)
	}
}
