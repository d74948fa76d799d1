package storefront

import (
	"net/http"
	"time"

	"github.com/nordmark/vidar/internal/domain"
	"github.com/nordmark/vidar/internal/handler"
	"github.com/nordmark/vidar/internal/service"
)

// CheckoutHandler handles checkout session routes
type CheckoutHandler struct {
	checkoutService *service.CheckoutService
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkoutService *service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

type checkoutItemResponse struct {
	VariantID      string `json:"variantId"`
	ProductID      string `json:"productId"`
	Quantity       int32  `json:"quantity"`
	UnitPriceCents int32  `json:"unitPriceCents"`
}

type checkoutSessionResponse struct {
	ID              string                 `json:"id"`
	Items           []checkoutItemResponse `json:"items"`
	ShippingAddress domain.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod"`
	TotalCents      int32                  `json:"totalCents"`
	PaymentStatus   string                 `json:"paymentStatus"`
	IsPaid          bool                   `json:"isPaid"`
	PaidAt          *time.Time             `json:"paidAt,omitempty"`
	IsFinalized     bool                   `json:"isFinalized"`
	FinalizedAt     *time.Time             `json:"finalizedAt,omitempty"`
	CreatedAt       *time.Time             `json:"createdAt,omitempty"`
}

func toSessionResponse(session *domain.CheckoutSession) checkoutSessionResponse {
	items := make([]checkoutItemResponse, len(session.Items))
	for i, item := range session.Items {
		items[i] = checkoutItemResponse{
			VariantID:      handler.UUIDString(item.VariantID),
			ProductID:      handler.UUIDString(item.ProductID),
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
		}
	}
	return checkoutSessionResponse{
		ID:              handler.UUIDString(session.ID),
		Items:           items,
		ShippingAddress: session.ShippingAddress,
		PaymentMethod:   session.PaymentMethod,
		TotalCents:      session.TotalCents,
		PaymentStatus:   string(session.PaymentStatus),
		IsPaid:          session.IsPaid,
		PaidAt:          handler.TimePtr(session.PaidAt),
		IsFinalized:     session.IsFinalized,
		FinalizedAt:     handler.TimePtr(session.FinalizedAt),
		CreatedAt:       handler.TimePtr(session.CreatedAt),
	}
}

type createSessionRequest struct {
	ShippingAddress domain.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod"`
}

// Create handles POST /checkout
func (h *CheckoutHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, err := handler.OwnerID(r)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	var req createSessionRequest
	if err := handler.DecodeJSON(r, "checkout.create", &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	session, err := h.checkoutService.CreateSession(r.Context(), ownerID, service.CreateSessionParams{
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
	})
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.RespondJSON(w, http.StatusCreated, toSessionResponse(session))
}

// List handles GET /checkout
func (h *CheckoutHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, err := handler.OwnerID(r)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	sessions, err := h.checkoutService.List(r.Context(), ownerID)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	resp := make([]checkoutSessionResponse, len(sessions))
	for i := range sessions {
		resp[i] = toSessionResponse(&sessions[i])
	}
	handler.RespondJSON(w, http.StatusOK, resp)
}

// Get handles GET /checkout/{id}
func (h *CheckoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID, err := handler.OwnerID(r)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	session, err := h.checkoutService.Get(r.Context(), ownerID, r.PathValue("id"))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, toSessionResponse(session))
}

type intentResponse struct {
	IntentID         string `json:"intentId"`
	AmountMinorUnits int64  `json:"amount"`
	Currency         string `json:"currency"`
	KeyID            string `json:"keyId"`
}

// CreateIntent handles POST /checkout/{id}/intent
func (h *CheckoutHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	ownerID, err := handler.OwnerID(r)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	details, err := h.checkoutService.CreateIntent(r.Context(), ownerID, r.PathValue("id"))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, intentResponse{
		IntentID:         details.IntentID,
		AmountMinorUnits: details.AmountMinorUnits,
		Currency:         details.Currency,
		KeyID:            details.KeyID,
	})
}

type payRequest struct {
	PaymentRef string `json:"paymentRef"`
	Signature  string `json:"signature"`
}

// Pay handles PUT /checkout/{id}/pay
func (h *CheckoutHandler) Pay(w http.ResponseWriter, r *http.Request) {
	ownerID, err := handler.OwnerID(r)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	var req payRequest
	if err := handler.DecodeJSON(r, "checkout.pay", &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	session, err := h.checkoutService.Pay(r.Context(), ownerID, r.PathValue("id"), service.PayParams{
		PaymentRef: req.PaymentRef,
		Signature:  req.Signature,
	})
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, toSessionResponse(session))
}

// Delete handles DELETE /checkout/{id}
func (h *CheckoutHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, err := handler.OwnerID(r)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if err := h.checkoutService.Delete(r.Context(), ownerID, r.PathValue("id")); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
