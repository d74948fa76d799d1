// Package admin holds the back-office JSON handlers. Every route here sits
// behind middleware.RequireAdmin.
package admin

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/nordmark/vidar/internal/domain"
	"github.com/nordmark/vidar/internal/handler"
	"github.com/nordmark/vidar/internal/handler/storefront"
	"github.com/nordmark/vidar/internal/service"
)

// OrderHandler handles admin order management routes
type OrderHandler struct {
	orderService *service.OrderService
}

// NewOrderHandler creates a new admin order handler
func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// List handles GET /admin/orders
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderService.ListAll(r.Context())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	resp := make([]storefront.OrderResponse, len(orders))
	for i := range orders {
		resp[i] = storefront.ToOrderResponse(&orders[i])
	}
	handler.RespondJSON(w, http.StatusOK, resp)
}

// Get handles GET /admin/orders/{id}
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	// Admins see every order; an invalid owner id skips the ownership check.
	order, err := h.orderService.Get(r.Context(), pgtype.UUID{}, r.PathValue("id"))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, storefront.ToOrderResponse(order))
}

type updateStatusRequest struct {
	DeliveryStatus string `json:"deliveryStatus"`
}

// UpdateStatus handles PUT /admin/orders/{id}
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := handler.DecodeJSON(r, "order.update_status", &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	order, err := h.orderService.UpdateDeliveryStatus(r.Context(), r.PathValue("id"), domain.DeliveryStatus(req.DeliveryStatus))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, storefront.ToOrderResponse(order))
}

// Delete handles DELETE /admin/orders/{id}
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.orderService.Delete(r.Context(), r.PathValue("id")); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
