package service

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/nordmark/vidar/internal/domain"
	"github.com/nordmark/vidar/internal/gateway"
)

// ============================================================================
// In-memory store fakes
// ============================================================================

type memInventory struct {
	variants map[pgtype.UUID]*domain.Variant

	reserveCalls []reserveCall
	releaseCalls []reserveCall
}

type reserveCall struct {
	variantID pgtype.UUID
	qty       int32
}

func newMemInventory() *memInventory {
	return &memInventory{variants: make(map[pgtype.UUID]*domain.Variant)}
}

func (m *memInventory) addVariant(v *domain.Variant) {
	m.variants[v.ID] = v
}

func (m *memInventory) GetVariant(_ context.Context, variantID pgtype.UUID) (*domain.Variant, error) {
	v, ok := m.variants[variantID]
	if !ok {
		return nil, domain.ErrVariantNotFound
	}
	copied := *v
	return &copied, nil
}

func (m *memInventory) FindVariant(_ context.Context, productID pgtype.UUID, size, color string) (*domain.Variant, error) {
	for _, v := range m.variants {
		if v.ProductID == productID && v.Size == size && v.Color == color {
			copied := *v
			return &copied, nil
		}
	}
	return nil, domain.ErrVariantNotFound
}

func (m *memInventory) Reserve(_ context.Context, variantID pgtype.UUID, qty int32) error {
	v, ok := m.variants[variantID]
	if !ok {
		return domain.ErrVariantNotFound
	}
	m.reserveCalls = append(m.reserveCalls, reserveCall{variantID, qty})
	if v.StockCount < qty {
		return ErrInsufficientStock
	}
	v.StockCount -= qty
	return nil
}

func (m *memInventory) Release(_ context.Context, variantID pgtype.UUID, qty int32) error {
	v, ok := m.variants[variantID]
	if !ok {
		return domain.ErrVariantNotFound
	}
	m.releaseCalls = append(m.releaseCalls, reserveCall{variantID, qty})
	v.StockCount += qty
	return nil
}

func (m *memInventory) stock(variantID pgtype.UUID) int32 {
	return m.variants[variantID].StockCount
}

type memCarts struct {
	items map[pgtype.UUID][]domain.CartItem
}

func newMemCarts() *memCarts {
	return &memCarts{items: make(map[pgtype.UUID][]domain.CartItem)}
}

func (m *memCarts) Get(_ context.Context, ownerID pgtype.UUID) (*domain.Cart, error) {
	cart := &domain.Cart{OwnerID: ownerID}
	cart.Items = append(cart.Items, m.items[ownerID]...)
	cart.Recalculate()
	return cart, nil
}

func (m *memCarts) AddItem(_ context.Context, ownerID pgtype.UUID, item domain.CartItem) error {
	lines := m.items[ownerID]
	for i := range lines {
		if lines[i].VariantID == item.VariantID {
			lines[i].Quantity += item.Quantity
			return nil
		}
	}
	m.items[ownerID] = append(lines, item)
	return nil
}

func (m *memCarts) SetItemQuantity(_ context.Context, ownerID, variantID pgtype.UUID, qty int32) error {
	lines := m.items[ownerID]
	for i := range lines {
		if lines[i].VariantID == variantID {
			lines[i].Quantity = qty
			return nil
		}
	}
	return domain.ErrCartItemNotFound
}

func (m *memCarts) RemoveItem(_ context.Context, ownerID, variantID pgtype.UUID) error {
	lines := m.items[ownerID]
	for i := range lines {
		if lines[i].VariantID == variantID {
			m.items[ownerID] = append(lines[:i], lines[i+1:]...)
			return nil
		}
	}
	return domain.ErrCartItemNotFound
}

func (m *memCarts) Clear(_ context.Context, ownerID pgtype.UUID) error {
	delete(m.items, ownerID)
	return nil
}

type memCheckouts struct {
	sessions map[pgtype.UUID]*domain.CheckoutSession

	// mirrors the orders FK consulted by the session delete guard
	orders *memOrders
}

func newMemCheckouts() *memCheckouts {
	return &memCheckouts{sessions: make(map[pgtype.UUID]*domain.CheckoutSession)}
}

func (m *memCheckouts) Create(_ context.Context, session *domain.CheckoutSession) error {
	copied := *session
	m.sessions[session.ID] = &copied
	return nil
}

func (m *memCheckouts) Get(_ context.Context, id pgtype.UUID) (*domain.CheckoutSession, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	copied := *s
	return &copied, nil
}

func (m *memCheckouts) ListByOwner(_ context.Context, ownerID pgtype.UUID) ([]domain.CheckoutSession, error) {
	var out []domain.CheckoutSession
	for _, s := range m.sessions {
		if s.OwnerID == ownerID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *memCheckouts) SetIntent(_ context.Context, id pgtype.UUID, intentID string) error {
	s, ok := m.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	s.GatewayIntentID = pgtype.Text{String: intentID, Valid: true}
	return nil
}

func (m *memCheckouts) MarkPaid(_ context.Context, id pgtype.UUID, paidAt time.Time, details json.RawMessage) (bool, error) {
	s, ok := m.sessions[id]
	if !ok {
		return false, domain.ErrSessionNotFound
	}
	if s.IsPaid {
		return false, nil
	}
	s.IsPaid = true
	s.PaymentStatus = domain.PaymentStatusPaid
	s.PaidAt = pgtype.Timestamptz{Time: paidAt, Valid: true}
	s.PaymentDetails = details
	return true, nil
}

func (m *memCheckouts) SetFinalized(_ context.Context, id pgtype.UUID, finalizedAt time.Time) (bool, error) {
	s, ok := m.sessions[id]
	if !ok {
		return false, domain.ErrSessionNotFound
	}
	if s.IsFinalized {
		return false, nil
	}
	s.IsFinalized = true
	s.FinalizedAt = pgtype.Timestamptz{Time: finalizedAt, Valid: true}
	return true, nil
}

func (m *memCheckouts) Delete(_ context.Context, id pgtype.UUID) (bool, error) {
	s, ok := m.sessions[id]
	if !ok || s.IsFinalized {
		return false, nil
	}
	if m.orders != nil {
		if _, ok := m.orders.bySession[id]; ok {
			return false, nil
		}
	}
	delete(m.sessions, id)
	return true, nil
}

func (m *memCheckouts) DeleteExpired(_ context.Context, id pgtype.UUID) (bool, error) {
	s, ok := m.sessions[id]
	if !ok || s.IsPaid || s.IsFinalized {
		return false, nil
	}
	delete(m.sessions, id)
	return true, nil
}

func (m *memCheckouts) ListStalePending(_ context.Context, before time.Time) ([]domain.CheckoutSession, error) {
	var out []domain.CheckoutSession
	for _, s := range m.sessions {
		if !s.IsPaid && !s.IsFinalized && s.CreatedAt.Time.Before(before) {
			out = append(out, *s)
		}
	}
	return out, nil
}

type memOrders struct {
	orders    map[pgtype.UUID]*domain.Order
	bySession map[pgtype.UUID]pgtype.UUID
}

func newMemOrders() *memOrders {
	return &memOrders{
		orders:    make(map[pgtype.UUID]*domain.Order),
		bySession: make(map[pgtype.UUID]pgtype.UUID),
	}
}

func (m *memOrders) Create(_ context.Context, order *domain.Order) error {
	if _, exists := m.bySession[order.SessionID]; exists {
		return domain.ErrOrderExists
	}
	copied := *order
	m.orders[order.ID] = &copied
	m.bySession[order.SessionID] = order.ID
	return nil
}

func (m *memOrders) Get(_ context.Context, id pgtype.UUID) (*domain.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	copied := *o
	return &copied, nil
}

func (m *memOrders) GetBySession(_ context.Context, sessionID pgtype.UUID) (*domain.Order, error) {
	id, ok := m.bySession[sessionID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return m.Get(context.Background(), id)
}

func (m *memOrders) ListByOwner(_ context.Context, ownerID pgtype.UUID) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range m.orders {
		if o.OwnerID == ownerID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *memOrders) ListAll(_ context.Context) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range m.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (m *memOrders) UpdateDeliveryStatus(_ context.Context, id pgtype.UUID, status domain.DeliveryStatus, deliveredAt time.Time) error {
	o, ok := m.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	o.DeliveryStatus = status
	if status == domain.DeliveryStatusDelivered {
		o.IsDelivered = true
		o.DeliveredAt = pgtype.Timestamptz{Time: deliveredAt, Valid: true}
	}
	return nil
}

func (m *memOrders) Delete(_ context.Context, id pgtype.UUID) (bool, error) {
	o, ok := m.orders[id]
	if !ok || o.IsDelivered {
		return false, nil
	}
	delete(m.orders, id)
	delete(m.bySession, o.SessionID)
	return true, nil
}

// ============================================================================
// Fixtures
// ============================================================================

const testCurrency = "INR"

type testKit struct {
	inventory *memInventory
	carts     *memCarts
	checkouts *memCheckouts
	orders    *memOrders
	provider  *gateway.MockProvider

	cartSvc     *CartService
	checkoutSvc *CheckoutService
	orderSvc    *OrderService
}

func newTestKit() *testKit {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	kit := &testKit{
		inventory: newMemInventory(),
		carts:     newMemCarts(),
		checkouts: newMemCheckouts(),
		orders:    newMemOrders(),
		provider:  gateway.NewMockProvider(),
	}
	kit.checkouts.orders = kit.orders

	restocker := NewRestocker(kit.inventory, logger)
	kit.cartSvc = NewCartService(kit.carts, kit.inventory, logger)
	kit.checkoutSvc = NewCheckoutService(
		kit.checkouts, kit.carts, kit.inventory, kit.provider, restocker,
		logger, testCurrency, "key_test",
	)
	kit.orderSvc = NewOrderService(kit.orders, kit.checkouts, kit.carts, restocker, logger)
	return kit
}

func (k *testKit) makeVariant(priceCents, stock int32) *domain.Variant {
	v := &domain.Variant{
		ID:         newUUID(),
		ProductID:  newUUID(),
		Size:       "M",
		Color:      "black",
		SKU:        "SKU-" + uuidToString(newUUID())[:8],
		PriceCents: priceCents,
		StockCount: stock,
	}
	k.inventory.addVariant(v)
	return v
}

func (k *testKit) fillCart(ownerID pgtype.UUID, variant *domain.Variant, qty int32) {
	_ = k.carts.AddItem(context.Background(), ownerID, domain.CartItem{
		VariantID:      variant.ID,
		ProductID:      variant.ProductID,
		Quantity:       qty,
		UnitPriceCents: variant.EffectivePriceCents(),
	})
}

func testAddress() domain.ShippingAddress {
	return domain.ShippingAddress{
		Address:    "1 Harbour Way",
		City:       "Bergen",
		PostalCode: "5003",
		Country:    "NO",
	}
}
