package routes

import (
	"github.com/nordmark/vidar/internal/middleware"
	"github.com/nordmark/vidar/internal/router"
)

// RegisterStorefrontRoutes registers all shopper-facing routes. Every route
// requires an authenticated shopper; ownership of sessions and orders is
// enforced in the services.
func RegisterStorefrontRoutes(r *router.Router, deps StorefrontDeps) {
	shopper := r.Group(middleware.RequireShopper)

	// Shopping cart
	shopper.Get("/cart", deps.CartHandler.View)
	shopper.Post("/cart", deps.CartHandler.Add)
	shopper.Put("/cart", deps.CartHandler.Update)
	shopper.Delete("/cart", deps.CartHandler.Remove)

	// Checkout flow
	shopper.Post("/checkout", deps.CheckoutHandler.Create)
	shopper.Get("/checkout", deps.CheckoutHandler.List)
	shopper.Get("/checkout/{id}", deps.CheckoutHandler.Get)
	shopper.Post("/checkout/{id}/intent", deps.CheckoutHandler.CreateIntent)
	shopper.Put("/checkout/{id}/pay", deps.CheckoutHandler.Pay)
	shopper.Post("/checkout/{id}/finalize", deps.OrderHandler.Finalize)
	shopper.Delete("/checkout/{id}", deps.CheckoutHandler.Delete)

	// Order history
	shopper.Get("/orders", deps.OrderHandler.List)
	shopper.Get("/orders/{id}", deps.OrderHandler.Get)
}
