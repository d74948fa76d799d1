package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/nordmark/vidar/internal/domain"
)

// OrderService promotes paid checkout sessions into orders and handles
// post-sale order management.
type OrderService struct {
	orders    domain.OrderStore
	checkouts domain.CheckoutStore
	carts     domain.CartStore
	restocker *Restocker
	logger    *slog.Logger
}

func NewOrderService(
	orders domain.OrderStore,
	checkouts domain.CheckoutStore,
	carts domain.CartStore,
	restocker *Restocker,
	logger *slog.Logger,
) *OrderService {
	return &OrderService{
		orders:    orders,
		checkouts: checkouts,
		carts:     carts,
		restocker: restocker,
		logger:    logger,
	}
}

// Finalize promotes a paid session into an order, exactly once per session.
// Repeat calls and concurrent races both resolve to the same order: the
// unique session constraint on the order table makes the insert the deciding
// step, and losers fetch the winner's row. No inventory is touched here;
// stock was already reserved at session creation. The winning caller also
// clears the owner's cart.
func (s *OrderService) Finalize(ctx context.Context, ownerID pgtype.UUID, sessionID string) (*domain.Order, error) {
	id, err := parseUUID("order.finalize", sessionID)
	if err != nil {
		return nil, err
	}

	session, err := s.checkouts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if ownerID.Valid && session.OwnerID != ownerID {
		return nil, ErrSessionNotFound
	}

	if session.IsFinalized {
		return s.orders.GetBySession(ctx, session.ID)
	}
	if !session.IsPaid {
		return nil, ErrNotPaid
	}

	items := make([]domain.OrderItem, len(session.Items))
	for i, line := range session.Items {
		items[i] = domain.OrderItem{
			VariantID:      line.VariantID,
			ProductID:      line.ProductID,
			Quantity:       line.Quantity,
			UnitPriceCents: line.UnitPriceCents,
		}
	}

	now := time.Now()
	order := &domain.Order{
		ID:              newUUID(),
		SessionID:       session.ID,
		OwnerID:         session.OwnerID,
		Items:           items,
		ShippingAddress: session.ShippingAddress,
		PaymentMethod:   session.PaymentMethod,
		TotalCents:      session.TotalCents,
		IsPaid:          true,
		PaidAt:          session.PaidAt,
		DeliveryStatus:  domain.DeliveryStatusProcessing,
		CreatedAt:       pgtype.Timestamptz{Time: now, Valid: true},
	}

	if err := s.orders.Create(ctx, order); err != nil {
		if errors.Is(err, domain.ErrOrderExists) {
			return s.orders.GetBySession(ctx, session.ID)
		}
		return nil, err
	}

	if _, err := s.checkouts.SetFinalized(ctx, session.ID, now); err != nil {
		// The order exists; the latch will converge on the next call.
		s.logger.ErrorContext(ctx, "failed to latch finalized session",
			slog.String("session_id", uuidToString(session.ID)),
			slog.String("error", err.Error()),
		)
	}

	if err := s.carts.Clear(ctx, session.OwnerID); err != nil {
		s.logger.ErrorContext(ctx, "failed to clear cart after finalize",
			slog.String("owner_id", uuidToString(session.OwnerID)),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order finalized",
		slog.String("order_id", uuidToString(order.ID)),
		slog.String("session_id", uuidToString(session.ID)),
		slog.Int("total_cents", int(order.TotalCents)),
	)
	return order, nil
}

// Get returns an order the owner holds. Admins pass an invalid ownerID to
// skip the ownership check.
func (s *OrderService) Get(ctx context.Context, ownerID pgtype.UUID, orderID string) (*domain.Order, error) {
	id, err := parseUUID("order.get", orderID)
	if err != nil {
		return nil, err
	}
	order, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if ownerID.Valid && order.OwnerID != ownerID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// List returns the owner's orders, newest first.
func (s *OrderService) List(ctx context.Context, ownerID pgtype.UUID) ([]domain.Order, error) {
	return s.orders.ListByOwner(ctx, ownerID)
}

// ListAll returns every order. Admin only.
func (s *OrderService) ListAll(ctx context.Context) ([]domain.Order, error) {
	return s.orders.ListAll(ctx)
}

// UpdateDeliveryStatus moves an order through fulfillment. Marking Delivered
// stamps the delivery time; a delivered order can no longer be cancelled.
func (s *OrderService) UpdateDeliveryStatus(ctx context.Context, orderID string, status domain.DeliveryStatus) (*domain.Order, error) {
	if !domain.ValidDeliveryStatus(status) {
		return nil, ErrInvalidDeliveryStatus
	}

	id, err := parseUUID("order.update_status", orderID)
	if err != nil {
		return nil, err
	}
	order, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if order.IsDelivered && status == domain.DeliveryStatusCancelled {
		return nil, ErrDeliveredOrderImmutable
	}

	if err := s.orders.UpdateDeliveryStatus(ctx, id, status, time.Now()); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "order delivery status updated",
		slog.String("order_id", orderID),
		slog.String("status", string(status)),
	)
	return s.orders.Get(ctx, id)
}

// Delete removes a non-delivered order and returns its stock to the ledger.
// The conditional delete admits one winner so restocking runs exactly once.
func (s *OrderService) Delete(ctx context.Context, orderID string) error {
	id, err := parseUUID("order.delete", orderID)
	if err != nil {
		return err
	}
	order, err := s.orders.Get(ctx, id)
	if err != nil {
		return err
	}
	if order.IsDelivered {
		return ErrDeliveredOrderImmutable
	}

	won, err := s.orders.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !won {
		current, err := s.orders.Get(ctx, id)
		if err == nil && current.IsDelivered {
			return ErrDeliveredOrderImmutable
		}
		return ErrOrderNotFound
	}

	s.restocker.RestoreOrderItems(ctx, order.Items)
	s.logger.InfoContext(ctx, "order deleted",
		slog.String("order_id", orderID),
	)
	return nil
}
