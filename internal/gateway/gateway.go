// Package gateway integrates the external payment gateway. The engine only
// needs two capabilities from it: creating a payable intent for a frozen
// amount, and verifying the signature the gateway attaches to payment
// callbacks.
package gateway

import (
	"context"
	"time"
)

// Provider defines the interface for payment gateway integration.
type Provider interface {
	// CreateIntent registers a payable intent with the gateway for the
	// given amount and returns the gateway's reference for it. The amount
	// is the session's frozen total; it is never recomputed here.
	CreateIntent(ctx context.Context, params CreateIntentParams) (*Intent, error)

	// VerifySignature checks that signature is a valid gateway signature
	// over orderRef and paymentRef. Returns ErrSignatureMismatch on any
	// failure; the comparison is constant-time.
	VerifySignature(orderRef, paymentRef, signature string) error
}

// CreateIntentParams contains parameters for creating a payment intent.
type CreateIntentParams struct {
	// AmountMinorUnits is the charge amount in the currency's smallest
	// unit (cents, paise).
	AmountMinorUnits int64

	// Currency code (ISO 4217), e.g. "INR".
	Currency string

	// Receipt is an internal reference echoed back by the gateway,
	// typically the checkout session id.
	Receipt string

	// Notes are free-form key/values stored with the intent.
	Notes map[string]string
}

// Intent is a payable reference created with the gateway. ID is what clients
// hand to the payment widget and what callbacks are signed over.
type Intent struct {
	ID               string
	AmountMinorUnits int64
	Currency         string
	Receipt          string
	Status           string
	CreatedAt        time.Time
}
