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

// CheckoutStore implements domain.CheckoutStore using PostgreSQL. The
// pending -> paid and pending -> finalized transitions are conditional
// UPDATEs whose rows-affected count tells the caller whether it won the
// transition.
type CheckoutStore struct {
	db *pgxpool.Pool
}

var _ domain.CheckoutStore = (*CheckoutStore)(nil)

func NewCheckoutStore(db *pgxpool.Pool) *CheckoutStore {
	return &CheckoutStore{db: db}
}

const createSessionQuery = `
INSERT INTO checkout_sessions (id, owner_id, shipping_address, payment_method, total_cents, payment_status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

const createSessionItemQuery = `
INSERT INTO checkout_items (session_id, variant_id, product_id, quantity, unit_price_cents)
VALUES ($1, $2, $3, $4, $5)`

// Create persists the session and its item snapshot in one transaction.
func (s *CheckoutStore) Create(ctx context.Context, session *domain.CheckoutSession) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return domain.Internal(err, "checkout.create", "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	addr, err := json.Marshal(session.ShippingAddress)
	if err != nil {
		return domain.Internal(err, "checkout.create", "failed to encode shipping address")
	}

	_, err = tx.Exec(ctx, createSessionQuery,
		session.ID, session.OwnerID, addr, session.PaymentMethod,
		session.TotalCents, session.PaymentStatus, session.CreatedAt,
	)
	if err != nil {
		return domain.Internal(err, "checkout.create", "failed to insert session")
	}

	for _, item := range session.Items {
		_, err = tx.Exec(ctx, createSessionItemQuery,
			session.ID, item.VariantID, item.ProductID, item.Quantity, item.UnitPriceCents,
		)
		if err != nil {
			return domain.Internal(err, "checkout.create", "failed to insert session item")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Internal(err, "checkout.create", "failed to commit session")
	}
	return nil
}

const getSessionQuery = `
SELECT id, owner_id, shipping_address, payment_method, total_cents,
       gateway_intent_id, payment_status, is_paid, paid_at, payment_details,
       is_finalized, finalized_at, created_at
FROM checkout_sessions
WHERE id = $1`

const getSessionItemsQuery = `
SELECT variant_id, product_id, quantity, unit_price_cents
FROM checkout_items
WHERE session_id = $1
ORDER BY id`

func (s *CheckoutStore) Get(ctx context.Context, id pgtype.UUID) (*domain.CheckoutSession, error) {
	var session domain.CheckoutSession
	var addr []byte
	err := s.db.QueryRow(ctx, getSessionQuery, id).Scan(
		&session.ID, &session.OwnerID, &addr, &session.PaymentMethod, &session.TotalCents,
		&session.GatewayIntentID, &session.PaymentStatus, &session.IsPaid, &session.PaidAt,
		&session.PaymentDetails, &session.IsFinalized, &session.FinalizedAt, &session.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, domain.Internal(err, "checkout.get", "failed to get session")
	}
	if err := json.Unmarshal(addr, &session.ShippingAddress); err != nil {
		return nil, domain.Internal(err, "checkout.get", "failed to decode shipping address")
	}

	items, err := s.loadItems(ctx, id)
	if err != nil {
		return nil, err
	}
	session.Items = items
	return &session, nil
}

func (s *CheckoutStore) loadItems(ctx context.Context, sessionID pgtype.UUID) ([]domain.CheckoutItem, error) {
	rows, err := s.db.Query(ctx, getSessionItemsQuery, sessionID)
	if err != nil {
		return nil, domain.Internal(err, "checkout.get", "failed to load session items")
	}
	defer rows.Close()

	var items []domain.CheckoutItem
	for rows.Next() {
		var item domain.CheckoutItem
		if err := rows.Scan(&item.VariantID, &item.ProductID, &item.Quantity, &item.UnitPriceCents); err != nil {
			return nil, domain.Internal(err, "checkout.get", "failed to scan session item")
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, "checkout.get", "failed to read session items")
	}
	return items, nil
}

const listByOwnerQuery = `
SELECT id
FROM checkout_sessions
WHERE owner_id = $1
ORDER BY created_at DESC`

func (s *CheckoutStore) ListByOwner(ctx context.Context, ownerID pgtype.UUID) ([]domain.CheckoutSession, error) {
	ids, err := s.listIDs(ctx, listByOwnerQuery, ownerID)
	if err != nil {
		return nil, domain.Internal(err, "checkout.list", "failed to list sessions")
	}
	return s.getAll(ctx, ids)
}

const listStaleQuery = `
SELECT id
FROM checkout_sessions
WHERE NOT is_paid AND NOT is_finalized AND created_at < $1
ORDER BY created_at`

func (s *CheckoutStore) ListStalePending(ctx context.Context, before time.Time) ([]domain.CheckoutSession, error) {
	ids, err := s.listIDs(ctx, listStaleQuery, before)
	if err != nil {
		return nil, domain.Internal(err, "checkout.list_stale", "failed to list stale sessions")
	}
	return s.getAll(ctx, ids)
}

func (s *CheckoutStore) listIDs(ctx context.Context, query string, arg any) ([]pgtype.UUID, error) {
	rows, err := s.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []pgtype.UUID
	for rows.Next() {
		var id pgtype.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *CheckoutStore) getAll(ctx context.Context, ids []pgtype.UUID) ([]domain.CheckoutSession, error) {
	sessions := make([]domain.CheckoutSession, 0, len(ids))
	for _, id := range ids {
		session, err := s.Get(ctx, id)
		if err != nil {
			// A session deleted between the list and the fetch is not an
			// error for the caller.
			if domain.ErrorCode(err) == domain.ENOTFOUND {
				continue
			}
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	return sessions, nil
}

const setIntentQuery = `
UPDATE checkout_sessions
SET gateway_intent_id = $2
WHERE id = $1 AND NOT is_finalized`

func (s *CheckoutStore) SetIntent(ctx context.Context, id pgtype.UUID, intentID string) error {
	tag, err := s.db.Exec(ctx, setIntentQuery, id, intentID)
	if err != nil {
		return domain.Internal(err, "checkout.set_intent", "failed to store intent reference")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

const markPaidQuery = `
UPDATE checkout_sessions
SET is_paid = TRUE, payment_status = 'paid', paid_at = $2, payment_details = $3
WHERE id = $1 AND NOT is_paid`

// MarkPaid is conditional on NOT is_paid so a duplicate gateway callback
// cannot overwrite the original payment timestamp or details.
func (s *CheckoutStore) MarkPaid(ctx context.Context, id pgtype.UUID, paidAt time.Time, details json.RawMessage) (bool, error) {
	tag, err := s.db.Exec(ctx, markPaidQuery, id, paidAt, details)
	if err != nil {
		return false, domain.Internal(err, "checkout.mark_paid", "failed to mark session paid")
	}
	return tag.RowsAffected() > 0, nil
}

const setFinalizedQuery = `
UPDATE checkout_sessions
SET is_finalized = TRUE, finalized_at = $2
WHERE id = $1 AND NOT is_finalized`

func (s *CheckoutStore) SetFinalized(ctx context.Context, id pgtype.UUID, finalizedAt time.Time) (bool, error) {
	tag, err := s.db.Exec(ctx, setFinalizedQuery, id, finalizedAt)
	if err != nil {
		return false, domain.Internal(err, "checkout.finalize", "failed to finalize session")
	}
	return tag.RowsAffected() > 0, nil
}

const deleteSessionQuery = `
DELETE FROM checkout_sessions
WHERE id = $1
  AND NOT is_finalized
  AND NOT EXISTS (SELECT 1 FROM orders WHERE orders.session_id = checkout_sessions.id)`

// Delete removes a non-finalized session; checkout_items cascade. At most
// one concurrent deleter sees true, so the compensating stock release runs
// exactly once. The NOT EXISTS guard closes the window where finalization
// has committed its order row but not yet flipped is_finalized.
func (s *CheckoutStore) Delete(ctx context.Context, id pgtype.UUID) (bool, error) {
	tag, err := s.db.Exec(ctx, deleteSessionQuery, id)
	if err != nil {
		return false, domain.Internal(err, "checkout.delete", "failed to delete session")
	}
	return tag.RowsAffected() > 0, nil
}

const deleteExpiredSessionQuery = `
DELETE FROM checkout_sessions
WHERE id = $1 AND NOT is_paid AND NOT is_finalized`

// DeleteExpired removes a session only while it is still unpaid and
// unfinalized. Re-checking is_paid here keeps a session whose payment landed
// after the sweeper listed it as stale.
func (s *CheckoutStore) DeleteExpired(ctx context.Context, id pgtype.UUID) (bool, error) {
	tag, err := s.db.Exec(ctx, deleteExpiredSessionQuery, id)
	if err != nil {
		return false, domain.Internal(err, "checkout.expire", "failed to expire session")
	}
	return tag.RowsAffected() > 0, nil
}
