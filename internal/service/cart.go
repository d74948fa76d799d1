package service

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/nordmark/vidar/internal/domain"
)

// AddCartItemParams identifies what to add to a cart. Either VariantID is
// set directly, or ProductID plus Size and Color are resolved to a variant.
type AddCartItemParams struct {
	VariantID string
	ProductID string
	Size      string
	Color     string
	Quantity  int32
}

// CartService provides business logic for shopping cart operations. Cart
// mutations touch only the cart; inventory moves exclusively at checkout
// session creation.
type CartService struct {
	carts     domain.CartStore
	inventory domain.InventoryLedger
	logger    *slog.Logger
}

func NewCartService(carts domain.CartStore, inventory domain.InventoryLedger, logger *slog.Logger) *CartService {
	return &CartService{carts: carts, inventory: inventory, logger: logger}
}

// Get returns the owner's cart with a freshly computed total. An owner with
// no cart rows gets an empty cart, not an error.
func (s *CartService) Get(ctx context.Context, ownerID pgtype.UUID) (*domain.Cart, error) {
	return s.carts.Get(ctx, ownerID)
}

// AddItem resolves the variant, snapshots its effective price and merges the
// line into the cart. Stock is not checked here; availability is enforced at
// checkout.
func (s *CartService) AddItem(ctx context.Context, ownerID pgtype.UUID, params AddCartItemParams) (*domain.Cart, error) {
	if params.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	variant, err := s.resolveVariant(ctx, params)
	if err != nil {
		return nil, err
	}

	item := domain.CartItem{
		VariantID:      variant.ID,
		ProductID:      variant.ProductID,
		Quantity:       params.Quantity,
		UnitPriceCents: variant.EffectivePriceCents(),
	}
	if err := s.carts.AddItem(ctx, ownerID, item); err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "cart item added",
		slog.String("owner_id", uuidToString(ownerID)),
		slog.String("variant_id", uuidToString(variant.ID)),
		slog.Int("quantity", int(params.Quantity)),
	)

	return s.carts.Get(ctx, ownerID)
}

func (s *CartService) resolveVariant(ctx context.Context, params AddCartItemParams) (*domain.Variant, error) {
	if params.VariantID != "" {
		variantID, err := parseUUID("cart.add_item", params.VariantID)
		if err != nil {
			return nil, err
		}
		return s.inventory.GetVariant(ctx, variantID)
	}

	productID, err := parseUUID("cart.add_item", params.ProductID)
	if err != nil {
		return nil, err
	}
	variant, err := s.inventory.FindVariant(ctx, productID, params.Size, params.Color)
	if err != nil {
		if domain.ErrorCode(err) == domain.ENOTFOUND {
			return nil, ErrInvalidVariantSelection
		}
		return nil, err
	}
	return variant, nil
}

// SetItemQuantity sets a line's quantity; any non-positive quantity removes
// the line.
func (s *CartService) SetItemQuantity(ctx context.Context, ownerID pgtype.UUID, variantID string, quantity int32) (*domain.Cart, error) {
	id, err := parseUUID("cart.set_quantity", variantID)
	if err != nil {
		return nil, err
	}

	if quantity <= 0 {
		err = s.carts.RemoveItem(ctx, ownerID, id)
	} else {
		err = s.carts.SetItemQuantity(ctx, ownerID, id, quantity)
	}
	if err != nil {
		return nil, err
	}

	return s.carts.Get(ctx, ownerID)
}

// RemoveItem deletes a line from the cart.
func (s *CartService) RemoveItem(ctx context.Context, ownerID pgtype.UUID, variantID string) (*domain.Cart, error) {
	id, err := parseUUID("cart.remove_item", variantID)
	if err != nil {
		return nil, err
	}
	if err := s.carts.RemoveItem(ctx, ownerID, id); err != nil {
		return nil, err
	}
	return s.carts.Get(ctx, ownerID)
}

// Clear empties the cart.
func (s *CartService) Clear(ctx context.Context, ownerID pgtype.UUID) error {
	return s.carts.Clear(ctx, ownerID)
}
