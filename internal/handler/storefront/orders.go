package storefront

import (
	"net/http"
	"time"

	"github.com/nordmark/vidar/internal/domain"
	"github.com/nordmark/vidar/internal/handler"
	"github.com/nordmark/vidar/internal/service"
)

// OrderHandler handles shopper order routes
type OrderHandler struct {
	orderService *service.OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

type OrderItemResponse struct {
	VariantID      string `json:"variantId"`
	ProductID      string `json:"productId"`
	Quantity       int32  `json:"quantity"`
	UnitPriceCents int32  `json:"unitPriceCents"`
}

type OrderResponse struct {
	ID              string                 `json:"id"`
	SessionID       string                 `json:"sessionId"`
	OwnerID         string                 `json:"ownerId"`
	Items           []OrderItemResponse    `json:"items"`
	ShippingAddress domain.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod"`
	TotalCents      int32                  `json:"totalCents"`
	IsPaid          bool                   `json:"isPaid"`
	PaidAt          *time.Time             `json:"paidAt,omitempty"`
	DeliveryStatus  string                 `json:"deliveryStatus"`
	IsDelivered     bool                   `json:"isDelivered"`
	DeliveredAt     *time.Time             `json:"deliveredAt,omitempty"`
	CreatedAt       *time.Time             `json:"createdAt,omitempty"`
}

// ToOrderResponse converts an order record into its JSON shape. Shared with
// the admin handlers.
func ToOrderResponse(order *domain.Order) OrderResponse {
	items := make([]OrderItemResponse, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItemResponse{
			VariantID:      handler.UUIDString(item.VariantID),
			ProductID:      handler.UUIDString(item.ProductID),
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
		}
	}
	return OrderResponse{
		ID:              handler.UUIDString(order.ID),
		SessionID:       handler.UUIDString(order.SessionID),
		OwnerID:         handler.UUIDString(order.OwnerID),
		Items:           items,
		ShippingAddress: order.ShippingAddress,
		PaymentMethod:   order.PaymentMethod,
		TotalCents:      order.TotalCents,
		IsPaid:          order.IsPaid,
		PaidAt:          handler.TimePtr(order.PaidAt),
		DeliveryStatus:  string(order.DeliveryStatus),
		IsDelivered:     order.IsDelivered,
		DeliveredAt:     handler.TimePtr(order.DeliveredAt),
		CreatedAt:       handler.TimePtr(order.CreatedAt),
	}
}

// Finalize handles POST /checkout/{id}/finalize
func (h *OrderHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	ownerID, err := handler.OwnerID(r)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	order, err := h.orderService.Finalize(r.Context(), ownerID, r.PathValue("id"))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.RespondJSON(w, http.StatusCreated, ToOrderResponse(order))
}

// List handles GET /orders
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, err := handler.OwnerID(r)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	orders, err := h.orderService.List(r.Context(), ownerID)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	resp := make([]OrderResponse, len(orders))
	for i := range orders {
		resp[i] = ToOrderResponse(&orders[i])
	}
	handler.RespondJSON(w, http.StatusOK, resp)
}

// Get handles GET /orders/{id}
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID, err := handler.OwnerID(r)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	order, err := h.orderService.Get(r.Context(), ownerID, r.PathValue("id"))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, ToOrderResponse(order))
}
