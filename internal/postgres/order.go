package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nordmark/vidar/internal/domain"
)

// OrderStore implements domain.OrderStore using PostgreSQL. The UNIQUE
// constraint on session_id enforces one order per checkout session; Create
// maps a violation to domain.ErrOrderExists.
type OrderStore struct {
	db *pgxpool.Pool
}

var _ domain.OrderStore = (*OrderStore)(nil)

func NewOrderStore(db *pgxpool.Pool) *OrderStore {
	return &OrderStore{db: db}
}

const createOrderQuery = `
INSERT INTO orders (id, session_id, owner_id, shipping_address, payment_method, total_cents,
                    is_paid, paid_at, delivery_status, is_delivered, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

const createOrderItemQuery = `
INSERT INTO order_items (order_id, variant_id, product_id, quantity, unit_price_cents)
VALUES ($1, $2, $3, $4, $5)`

func (s *OrderStore) Create(ctx context.Context, order *domain.Order) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return domain.Internal(err, "order.create", "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	addr, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return domain.Internal(err, "order.create", "failed to encode shipping address")
	}

	_, err = tx.Exec(ctx, createOrderQuery,
		order.ID, order.SessionID, order.OwnerID, addr, order.PaymentMethod, order.TotalCents,
		order.IsPaid, order.PaidAt, order.DeliveryStatus, order.IsDelivered, order.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrOrderExists
		}
		return domain.Internal(err, "order.create", "failed to insert order")
	}

	for _, item := range order.Items {
		_, err = tx.Exec(ctx, createOrderItemQuery,
			order.ID, item.VariantID, item.ProductID, item.Quantity, item.UnitPriceCents,
		)
		if err != nil {
			return domain.Internal(err, "order.create", "failed to insert order item")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Internal(err, "order.create", "failed to commit order")
	}
	return nil
}

const getOrderQuery = `
SELECT id, session_id, owner_id, shipping_address, payment_method, total_cents,
       is_paid, paid_at, delivery_status, is_delivered, delivered_at, created_at
FROM orders
WHERE id = $1`

const getOrderBySessionQuery = `
SELECT id, session_id, owner_id, shipping_address, payment_method, total_cents,
       is_paid, paid_at, delivery_status, is_delivered, delivered_at, created_at
FROM orders
WHERE session_id = $1`

const getOrderItemsQuery = `
SELECT variant_id, product_id, quantity, unit_price_cents
FROM order_items
WHERE order_id = $1
ORDER BY id`

func (s *OrderStore) Get(ctx context.Context, id pgtype.UUID) (*domain.Order, error) {
	return s.getOne(ctx, getOrderQuery, id)
}

func (s *OrderStore) GetBySession(ctx context.Context, sessionID pgtype.UUID) (*domain.Order, error) {
	return s.getOne(ctx, getOrderBySessionQuery, sessionID)
}

func (s *OrderStore) getOne(ctx context.Context, query string, arg any) (*domain.Order, error) {
	var order domain.Order
	var addr []byte
	err := s.db.QueryRow(ctx, query, arg).Scan(
		&order.ID, &order.SessionID, &order.OwnerID, &addr, &order.PaymentMethod, &order.TotalCents,
		&order.IsPaid, &order.PaidAt, &order.DeliveryStatus, &order.IsDelivered, &order.DeliveredAt, &order.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, domain.Internal(err, "order.get", "failed to get order")
	}
	if err := json.Unmarshal(addr, &order.ShippingAddress); err != nil {
		return nil, domain.Internal(err, "order.get", "failed to decode shipping address")
	}

	items, err := s.loadItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return &order, nil
}

func (s *OrderStore) loadItems(ctx context.Context, orderID pgtype.UUID) ([]domain.OrderItem, error) {
	rows, err := s.db.Query(ctx, getOrderItemsQuery, orderID)
	if err != nil {
		return nil, domain.Internal(err, "order.get", "failed to load order items")
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.VariantID, &item.ProductID, &item.Quantity, &item.UnitPriceCents); err != nil {
			return nil, domain.Internal(err, "order.get", "failed to scan order item")
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, "order.get", "failed to read order items")
	}
	return items, nil
}

const listOrdersByOwnerQuery = `
SELECT id FROM orders WHERE owner_id = $1 ORDER BY created_at DESC`

const listAllOrdersQuery = `
SELECT id FROM orders ORDER BY created_at DESC`

func (s *OrderStore) ListByOwner(ctx context.Context, ownerID pgtype.UUID) ([]domain.Order, error) {
	rows, err := s.db.Query(ctx, listOrdersByOwnerQuery, ownerID)
	if err != nil {
		return nil, domain.Internal(err, "order.list", "failed to list orders")
	}
	return s.collect(ctx, rows)
}

func (s *OrderStore) ListAll(ctx context.Context) ([]domain.Order, error) {
	rows, err := s.db.Query(ctx, listAllOrdersQuery)
	if err != nil {
		return nil, domain.Internal(err, "order.list_all", "failed to list orders")
	}
	return s.collect(ctx, rows)
}

func (s *OrderStore) collect(ctx context.Context, rows pgx.Rows) ([]domain.Order, error) {
	defer rows.Close()

	var ids []pgtype.UUID
	for rows.Next() {
		var id pgtype.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, domain.Internal(err, "order.list", "failed to scan order id")
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, "order.list", "failed to read order ids")
	}

	orders := make([]domain.Order, 0, len(ids))
	for _, id := range ids {
		order, err := s.Get(ctx, id)
		if err != nil {
			if domain.ErrorCode(err) == domain.ENOTFOUND {
				continue
			}
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, nil
}

const updateDeliveryStatusQuery = `
UPDATE orders
SET delivery_status = $2,
    is_delivered = is_delivered OR $3,
    delivered_at = CASE WHEN $3 AND NOT is_delivered THEN $4 ELSE delivered_at END
WHERE id = $1`

func (s *OrderStore) UpdateDeliveryStatus(ctx context.Context, id pgtype.UUID, status domain.DeliveryStatus, deliveredAt time.Time) error {
	delivered := status == domain.DeliveryStatusDelivered
	tag, err := s.db.Exec(ctx, updateDeliveryStatusQuery, id, status, delivered, deliveredAt)
	if err != nil {
		return domain.Internal(err, "order.update_status", "failed to update delivery status")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

const deleteOrderQuery = `
DELETE FROM orders
WHERE id = $1 AND NOT is_delivered`

func (s *OrderStore) Delete(ctx context.Context, id pgtype.UUID) (bool, error) {
	tag, err := s.db.Exec(ctx, deleteOrderQuery, id)
	if err != nil {
		return false, domain.Internal(err, "order.delete", "failed to delete order")
	}
	return tag.RowsAffected() > 0, nil
}
