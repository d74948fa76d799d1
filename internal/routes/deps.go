// Package routes wires handlers onto the router.
package routes

import (
	"github.com/nordmark/vidar/internal/handler/admin"
	"github.com/nordmark/vidar/internal/handler/storefront"
	"github.com/nordmark/vidar/internal/middleware"
)

// StorefrontDeps contains dependencies for shopper-facing routes
type StorefrontDeps struct {
	// Cart
	CartHandler *storefront.CartHandler

	// Checkout sessions and payment
	CheckoutHandler *storefront.CheckoutHandler

	// Orders (finalization and history)
	OrderHandler *storefront.OrderHandler
}

// AdminDeps contains dependencies for back-office routes
type AdminDeps struct {
	// Orders
	OrderHandler *admin.OrderHandler
}

// OpsDeps contains dependencies for operational endpoints
type OpsDeps struct {
	Metrics *middleware.Metrics
}
