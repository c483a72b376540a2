package pricing_test

import (
	"errors"
	"testing"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/service/pricing"
)

func TestEffectiveUnitPriceMinor(t *testing.T) {
	price, err := pricing.EffectiveUnitPriceMinor(domain.Product{PriceMinor: 100, DiscountMinor: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if price != 90 {
		t.Fatalf("expected 90, got %d", price)
	}
}

func TestEffectiveUnitPriceMinor_NegativeIsError(t *testing.T) {
	_, err := pricing.EffectiveUnitPriceMinor(domain.Product{PriceMinor: 50, DiscountMinor: 60})
	if !errors.Is(err, domain.ErrNegativeEffectivePrice) {
		t.Fatalf("expected ErrNegativeEffectivePrice, got %v", err)
	}
}

func TestLineTotalMinor(t *testing.T) {
	if got := pricing.LineTotalMinor(90, 2); got != 180 {
		t.Fatalf("expected 180, got %d", got)
	}
}

func TestCartTotalMinor(t *testing.T) {
	lines := []domain.PricedLine{
		{Line: domain.CartLine{Qty: 2}, UnitPriceMinor: 90, Resolved: true},
		{Line: domain.CartLine{Qty: 1}, UnitPriceMinor: 60, Resolved: true},
	}
	if got := pricing.CartTotalMinor(lines); got != 240 {
		t.Fatalf("expected 240, got %d", got)
	}
}

func TestCartTotalMinor_SkipsUnresolvedLines(t *testing.T) {
	lines := []domain.PricedLine{
		{Line: domain.CartLine{Qty: 2}, UnitPriceMinor: 90, Resolved: true},
		// Товар не найден: строка не участвует в сумме.
		{Line: domain.CartLine{Qty: 10}, UnitPriceMinor: 0, Resolved: false},
	}
	if got := pricing.CartTotalMinor(lines); got != 180 {
		t.Fatalf("expected 180, got %d", got)
	}
}
