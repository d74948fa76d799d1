package service

import (
	"github.com/nordmark/vidar/internal/domain"
)

// Lookup errors - use domain.ENOTFOUND
var (
	ErrProductNotFound  = domain.ErrProductNotFound
	ErrVariantNotFound  = domain.ErrVariantNotFound
	ErrCartItemNotFound = domain.ErrCartItemNotFound
	ErrSessionNotFound  = domain.ErrSessionNotFound
	ErrOrderNotFound    = domain.ErrOrderNotFound
)

// Validation errors - use domain.EINVALID
var (
	ErrInvalidQuantity         = domain.Errorf(domain.EINVALID, "", "Quantity must be greater than 0")
	ErrInvalidVariantSelection = domain.Errorf(domain.EINVALID, "", "No variant matches the requested size and color")
	ErrEmptyCart               = domain.Errorf(domain.EINVALID, "", "Cart is empty")
	ErrMissingShippingAddress  = domain.Errorf(domain.EINVALID, "", "Shipping address is required")
	ErrInvalidDeliveryStatus   = domain.Errorf(domain.EINVALID, "", "Invalid delivery status")
)

// Checkout and payment errors
var (
	ErrInsufficientStock  = domain.Errorf(domain.ECONFLICT, "", "Insufficient stock for one or more items")
	ErrAlreadyFinalized   = domain.Errorf(domain.ECONFLICT, "", "Checkout session already finalized")
	ErrNotPaid            = domain.Errorf(domain.EPAYMENT, "", "Checkout session has not been paid")
	ErrNoIntent           = domain.Errorf(domain.EINVALID, "", "No payment intent exists for this session")
	ErrSignatureMismatch  = domain.Errorf(domain.EUNAUTHORIZED, "", "Payment signature verification failed")
	ErrGatewayUnavailable = domain.Errorf(domain.EUNAVAILABLE, "", "Payment gateway is unavailable")
	ErrAmountTooSmall     = domain.Errorf(domain.EINVALID, "", "Order total is below the gateway minimum")
)

// Order errors
var (
	ErrDeliveredOrderImmutable = domain.Errorf(domain.ECONFLICT, "", "Delivered orders cannot be cancelled or deleted")
)
