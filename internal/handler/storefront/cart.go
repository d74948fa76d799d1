// Package storefront holds the shopper-facing JSON handlers.
package storefront

import (
	"net/http"

	"github.com/nordmark/vidar/internal/domain"
	"github.com/nordmark/vidar/internal/handler"
	"github.com/nordmark/vidar/internal/service"
)

// CartHandler handles all cart routes
type CartHandler struct {
	cartService *service.CartService
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *service.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

type cartItemResponse struct {
	VariantID      string `json:"variantId"`
	ProductID      string `json:"productId"`
	Quantity       int32  `json:"quantity"`
	UnitPriceCents int32  `json:"unitPriceCents"`
	LineTotalCents int32  `json:"lineTotalCents"`
}

type cartResponse struct {
	OwnerID    string             `json:"ownerId"`
	Items      []cartItemResponse `json:"items"`
	TotalCents int32              `json:"totalCents"`
}

func toCartResponse(cart *domain.Cart) cartResponse {
	items := make([]cartItemResponse, len(cart.Items))
	for i, item := range cart.Items {
		items[i] = cartItemResponse{
			VariantID:      handler.UUIDString(item.VariantID),
			ProductID:      handler.UUIDString(item.ProductID),
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
			LineTotalCents: item.LineTotalCents(),
		}
	}
	return cartResponse{
		OwnerID:    handler.UUIDString(cart.OwnerID),
		Items:      items,
		TotalCents: cart.TotalCents,
	}
}

// View handles GET /cart
func (h *CartHandler) View(w http.ResponseWriter, r *http.Request) {
	ownerID, err := handler.OwnerID(r)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	cart, err := h.cartService.Get(r.Context(), ownerID)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, toCartResponse(cart))
}

type addCartItemRequest struct {
	VariantID string `json:"variantId"`
	ProductID string `json:"productId"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Quantity  int32  `json:"quantity"`
}

// Add handles POST /cart
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	ownerID, err := handler.OwnerID(r)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	var req addCartItemRequest
	if err := handler.DecodeJSON(r, "cart.add_item", &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	if req.VariantID == "" && req.ProductID == "" {
		handler.ErrorResponse(w, r, domain.Invalid("cart.add_item", "variantId or productId is required"))
		return
	}

	cart, err := h.cartService.AddItem(r.Context(), ownerID, service.AddCartItemParams{
		VariantID: req.VariantID,
		ProductID: req.ProductID,
		Size:      req.Size,
		Color:     req.Color,
		Quantity:  req.Quantity,
	})
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, toCartResponse(cart))
}

type updateCartItemRequest struct {
	VariantID string `json:"variantId"`
	Quantity  int32  `json:"quantity"`
}

// Update handles PUT /cart
func (h *CartHandler) Update(w http.ResponseWriter, r *http.Request) {
	ownerID, err := handler.OwnerID(r)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	var req updateCartItemRequest
	if err := handler.DecodeJSON(r, "cart.set_quantity", &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	cart, err := h.cartService.SetItemQuantity(r.Context(), ownerID, req.VariantID, req.Quantity)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, toCartResponse(cart))
}

type removeCartItemRequest struct {
	VariantID string `json:"variantId"`
}

// Remove handles DELETE /cart
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	ownerID, err := handler.OwnerID(r)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	var req removeCartItemRequest
	if err := handler.DecodeJSON(r, "cart.remove_item", &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	cart, err := h.cartService.RemoveItem(r.Context(), ownerID, req.VariantID)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, toCartResponse(cart))
}
