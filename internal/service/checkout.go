package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/nordmark/vidar/internal/domain"
	"github.com/nordmark/vidar/internal/gateway"
)

// CreateSessionParams carries the checkout form input. The total is never
// part of it; it is computed from the snapshotted lines.
type CreateSessionParams struct {
	ShippingAddress domain.ShippingAddress
	PaymentMethod   string
}

// PayParams carries a gateway payment callback.
type PayParams struct {
	PaymentRef string
	Signature  string
}

// IntentDetails is what a client needs to open the payment widget. KeyID is
// the public half of the gateway credentials; the secret stays server-side.
type IntentDetails struct {
	IntentID         string
	AmountMinorUnits int64
	Currency         string
	KeyID            string
}

// CheckoutService drives the checkout session lifecycle: creation with stock
// reservation, gateway intent creation, payment verification and
// compensating teardown.
type CheckoutService struct {
	checkouts domain.CheckoutStore
	carts     domain.CartStore
	inventory domain.InventoryLedger
	provider  gateway.Provider
	restocker *Restocker
	logger    *slog.Logger

	currency string
	keyID    string
}

func NewCheckoutService(
	checkouts domain.CheckoutStore,
	carts domain.CartStore,
	inventory domain.InventoryLedger,
	provider gateway.Provider,
	restocker *Restocker,
	logger *slog.Logger,
	currency string,
	keyID string,
) *CheckoutService {
	return &CheckoutService{
		checkouts: checkouts,
		carts:     carts,
		inventory: inventory,
		provider:  provider,
		restocker: restocker,
		logger:    logger,
		currency:  currency,
		keyID:     keyID,
	}
}

// CreateSession snapshots the owner's cart into an immutable pending session
// and reserves stock for every line. Reservation is all or nothing: when any
// line fails, every reservation already taken in this call is released
// before the error is returned, so a failed checkout leaves stock exactly
// where it started.
func (s *CheckoutService) CreateSession(ctx context.Context, ownerID pgtype.UUID, params CreateSessionParams) (*domain.CheckoutSession, error) {
	if params.ShippingAddress.Address == "" || params.ShippingAddress.City == "" {
		return nil, ErrMissingShippingAddress
	}

	cart, err := s.carts.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	items := make([]domain.CheckoutItem, len(cart.Items))
	for i, line := range cart.Items {
		items[i] = domain.CheckoutItem{
			VariantID:      line.VariantID,
			ProductID:      line.ProductID,
			Quantity:       line.Quantity,
			UnitPriceCents: line.UnitPriceCents,
		}
	}

	// Reserve sequentially, remembering how far we got so a failure can
	// unwind exactly the lines already taken.
	reserved := 0
	for _, item := range items {
		if err := s.inventory.Reserve(ctx, item.VariantID, item.Quantity); err != nil {
			s.restocker.RestoreCheckoutItems(ctx, items[:reserved])
			if domain.ErrorCode(err) == domain.ECONFLICT {
				return nil, domain.Errorf(domain.ECONFLICT, "checkout.create",
					"Insufficient stock for variant %s", uuidToString(item.VariantID))
			}
			return nil, err
		}
		reserved++
	}

	now := pgtype.Timestamptz{Time: time.Now(), Valid: true}
	session := &domain.CheckoutSession{
		ID:              newUUID(),
		OwnerID:         ownerID,
		Items:           items,
		ShippingAddress: params.ShippingAddress,
		PaymentMethod:   params.PaymentMethod,
		TotalCents:      domain.CheckoutTotalCents(items),
		PaymentStatus:   domain.PaymentStatusPending,
		CreatedAt:       now,
	}

	if err := s.checkouts.Create(ctx, session); err != nil {
		s.restocker.RestoreCheckoutItems(ctx, items)
		return nil, err
	}

	s.logger.InfoContext(ctx, "checkout session created",
		slog.String("session_id", uuidToString(session.ID)),
		slog.String("owner_id", uuidToString(ownerID)),
		slog.Int("total_cents", int(session.TotalCents)),
	)
	return session, nil
}

// Get returns a session the owner holds. Admins pass an invalid ownerID to
// skip the ownership check.
func (s *CheckoutService) Get(ctx context.Context, ownerID pgtype.UUID, sessionID string) (*domain.CheckoutSession, error) {
	id, err := parseUUID("checkout.get", sessionID)
	if err != nil {
		return nil, err
	}
	session, err := s.checkouts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if ownerID.Valid && session.OwnerID != ownerID {
		// Hidden rather than forbidden, so session ids cannot be probed.
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// List returns the owner's sessions, newest first.
func (s *CheckoutService) List(ctx context.Context, ownerID pgtype.UUID) ([]domain.CheckoutSession, error) {
	return s.checkouts.ListByOwner(ctx, ownerID)
}

// CreateIntent registers the session's frozen total with the gateway and
// stores the returned reference on the session. Calling it again for a
// session that already has an intent returns the stored one.
func (s *CheckoutService) CreateIntent(ctx context.Context, ownerID pgtype.UUID, sessionID string) (*IntentDetails, error) {
	session, err := s.Get(ctx, ownerID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsFinalized {
		return nil, ErrAlreadyFinalized
	}

	amount := int64(session.TotalCents)
	if session.GatewayIntentID.Valid && session.GatewayIntentID.String != "" {
		return &IntentDetails{
			IntentID:         session.GatewayIntentID.String,
			AmountMinorUnits: amount,
			Currency:         s.currency,
			KeyID:            s.keyID,
		}, nil
	}

	intent, err := s.provider.CreateIntent(ctx, gateway.CreateIntentParams{
		AmountMinorUnits: amount,
		Currency:         s.currency,
		Receipt:          uuidToString(session.ID),
	})
	if err != nil {
		return nil, mapGatewayError(err)
	}

	if err := s.checkouts.SetIntent(ctx, session.ID, intent.ID); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "payment intent created",
		slog.String("session_id", uuidToString(session.ID)),
		slog.String("intent_id", intent.ID),
	)

	return &IntentDetails{
		IntentID:         intent.ID,
		AmountMinorUnits: intent.AmountMinorUnits,
		Currency:         intent.Currency,
		KeyID:            s.keyID,
	}, nil
}

// paymentDetails is the verified callback evidence stored with the session.
type paymentDetails struct {
	IntentID   string `json:"intentId"`
	PaymentRef string `json:"paymentRef"`
	Signature  string `json:"signature"`
}

// Pay verifies the gateway callback signature and marks the session paid.
// The signature is recomputed over the intent reference stored on the
// session; a client-supplied order reference is never trusted. Verification
// runs before the idempotency check, so a bad signature is rejected even on
// replay of an already-paid session.
func (s *CheckoutService) Pay(ctx context.Context, ownerID pgtype.UUID, sessionID string, params PayParams) (*domain.CheckoutSession, error) {
	session, err := s.Get(ctx, ownerID, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.GatewayIntentID.Valid || session.GatewayIntentID.String == "" {
		return nil, ErrNoIntent
	}

	intentID := session.GatewayIntentID.String
	if err := s.provider.VerifySignature(intentID, params.PaymentRef, params.Signature); err != nil {
		s.logger.WarnContext(ctx, "payment signature rejected",
			slog.String("session_id", uuidToString(session.ID)),
			slog.String("payment_ref", params.PaymentRef),
		)
		return nil, ErrSignatureMismatch
	}

	if session.IsPaid {
		return session, nil
	}

	details, err := json.Marshal(paymentDetails{
		IntentID:   intentID,
		PaymentRef: params.PaymentRef,
		Signature:  params.Signature,
	})
	if err != nil {
		return nil, domain.Internal(err, "checkout.pay", "failed to encode payment details")
	}

	won, err := s.checkouts.MarkPaid(ctx, session.ID, time.Now(), details)
	if err != nil {
		return nil, err
	}
	if won {
		s.logger.InfoContext(ctx, "checkout session paid",
			slog.String("session_id", uuidToString(session.ID)),
			slog.String("payment_ref", params.PaymentRef),
		)
	}

	return s.checkouts.Get(ctx, session.ID)
}

// Delete abandons a pending session and restores its reserved stock. The
// conditional delete admits one winner, so compensation runs exactly once no
// matter how many concurrent deletes race. Finalized sessions are immutable
// history and cannot be deleted.
func (s *CheckoutService) Delete(ctx context.Context, ownerID pgtype.UUID, sessionID string) error {
	session, err := s.Get(ctx, ownerID, sessionID)
	if err != nil {
		return err
	}
	if session.IsFinalized {
		return ErrAlreadyFinalized
	}

	won, err := s.checkouts.Delete(ctx, session.ID)
	if err != nil {
		return err
	}
	if !won {
		// Lost the race to another deleter or to finalization. If the
		// session row still exists the delete was refused because it is
		// finalized or its order already committed; either way it is
		// immutable history now.
		if _, err := s.checkouts.Get(ctx, session.ID); err == nil {
			return ErrAlreadyFinalized
		}
		return ErrSessionNotFound
	}

	s.restocker.RestoreCheckoutItems(ctx, session.Items)
	s.logger.InfoContext(ctx, "checkout session deleted",
		slog.String("session_id", uuidToString(session.ID)),
	)
	return nil
}

// ExpireStale tears down pending, unpaid sessions older than the TTL,
// releasing their reservations. Returns how many sessions were expired.
func (s *CheckoutService) ExpireStale(ctx context.Context, ttl time.Duration) (int, error) {
	stale, err := s.checkouts.ListStalePending(ctx, time.Now().Add(-ttl))
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range stale {
		session := &stale[i]
		won, err := s.checkouts.DeleteExpired(ctx, session.ID)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to expire stale session",
				slog.String("session_id", uuidToString(session.ID)),
				slog.String("error", err.Error()),
			)
			continue
		}
		if !won {
			continue
		}
		s.restocker.RestoreCheckoutItems(ctx, session.Items)
		expired++
	}
	return expired, nil
}

func mapGatewayError(err error) error {
	switch {
	case errors.Is(err, gateway.ErrMissingCredentials):
		return domain.Internal(err, "checkout.intent", "payment gateway is not configured")
	case errors.Is(err, gateway.ErrAmountTooSmall):
		return ErrAmountTooSmall
	case errors.Is(err, gateway.ErrUnavailable):
		return domain.Unavailable(err, "checkout.intent", "Payment gateway is unavailable")
	default:
		return &domain.Error{
			Code:    domain.EPAYMENT,
			Op:      "checkout.intent",
			Message: "Payment gateway rejected the request",
			Err:     err,
		}
	}
}
