package domain

import (
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
)

func uuidFromByte(b byte) pgtype.UUID {
	var id pgtype.UUID
	id.Bytes[15] = b
	id.Valid = true
	return id
}

func TestCartTotalCents(t *testing.T) {
	items := []CartItem{
		{VariantID: uuidFromByte(1), Quantity: 2, UnitPriceCents: 2500},
		{VariantID: uuidFromByte(2), Quantity: 1, UnitPriceCents: 999},
	}

	if got := CartTotalCents(items); got != 5999 {
		t.Errorf("CartTotalCents() = %d, want 5999", got)
	}
	if got := CartTotalCents(nil); got != 0 {
		t.Errorf("CartTotalCents(nil) = %d, want 0", got)
	}
}

func TestCart_Recalculate(t *testing.T) {
	cart := Cart{
		Items:      []CartItem{{VariantID: uuidFromByte(1), Quantity: 3, UnitPriceCents: 1000}},
		TotalCents: 42, // stale
	}

	cart.Recalculate()
	if cart.TotalCents != 3000 {
		t.Errorf("TotalCents = %d, want 3000", cart.TotalCents)
	}
}

func TestCart_FindItem(t *testing.T) {
	cart := Cart{Items: []CartItem{
		{VariantID: uuidFromByte(1), Quantity: 1},
		{VariantID: uuidFromByte(2), Quantity: 2},
	}}

	if item := cart.FindItem(uuidFromByte(2)); item == nil || item.Quantity != 2 {
		t.Errorf("FindItem() = %+v, want quantity 2", item)
	}
	if item := cart.FindItem(uuidFromByte(9)); item != nil {
		t.Errorf("FindItem(absent) = %+v, want nil", item)
	}
}

func TestVariant_EffectivePriceCents(t *testing.T) {
	tests := []struct {
		name     string
		variant  Variant
		expected int32
	}{
		{
			name:     "base price",
			variant:  Variant{PriceCents: 2500},
			expected: 2500,
		},
		{
			name: "valid discount wins",
			variant: Variant{
				PriceCents:         2500,
				DiscountPriceCents: pgtype.Int4{Int32: 1900, Valid: true},
			},
			expected: 1900,
		},
		{
			name: "zero discount is ignored",
			variant: Variant{
				PriceCents:         2500,
				DiscountPriceCents: pgtype.Int4{Int32: 0, Valid: true},
			},
			expected: 2500,
		},
		{
			name: "unset discount is ignored",
			variant: Variant{
				PriceCents:         2500,
				DiscountPriceCents: pgtype.Int4{Int32: 1900, Valid: false},
			},
			expected: 2500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.variant.EffectivePriceCents(); got != tt.expected {
				t.Errorf("EffectivePriceCents() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestCheckoutTotalCents(t *testing.T) {
	items := []CheckoutItem{
		{Quantity: 2, UnitPriceCents: 2500},
		{Quantity: 3, UnitPriceCents: 100},
	}
	if got := CheckoutTotalCents(items); got != 5300 {
		t.Errorf("CheckoutTotalCents() = %d, want 5300", got)
	}
}

func TestValidDeliveryStatus(t *testing.T) {
	for _, s := range []DeliveryStatus{
		DeliveryStatusProcessing, DeliveryStatusShipped, DeliveryStatusDelivered, DeliveryStatusCancelled,
	} {
		if !ValidDeliveryStatus(s) {
			t.Errorf("ValidDeliveryStatus(%s) = false", s)
		}
	}
	if ValidDeliveryStatus("Lost") {
		t.Error(`ValidDeliveryStatus("Lost") = true`)
	}
}
