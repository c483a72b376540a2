package checkout_test

import (
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/service/checkout"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
)

func pricedCart() domain.PricedCart {
	return domain.PricedCart{
		OwnerID: "customer-1",
		Lines: []domain.PricedLine{
			{
				Line:           domain.CartLine{ProductID: "product-1", Qty: 2, UnitPriceMinor: 90},
				ProductName:    "widget",
				UnitPriceMinor: 90,
				Resolved:       true,
			},
			{
				Line: domain.CartLine{ProductID: "ghost", Qty: 5},
			},
		},
		TotalMinor: 180,
	}
}

func TestFromPricedCart_SkipsUnresolvedLines(t *testing.T) {
	b := checkout.NewBuilder(memory.NewProductRepository(), "https://shop.test/success", "https://shop.test/cancel")

	req, err := b.FromPricedCart(pricedCart(), "order-1")
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if len(req.LineItems) != 1 {
		t.Fatalf("expected 1 line item, got %d", len(req.LineItems))
	}
	item := req.LineItems[0]
	if item.ProductName != "widget" || item.UnitAmountMinor != 90 || item.Qty != 2 {
		t.Fatalf("unexpected line item: %+v", item)
	}
	if item.Currency != domain.CheckoutCurrency {
		t.Fatalf("expected currency %q, got %q", domain.CheckoutCurrency, item.Currency)
	}
	if req.Mode != domain.CheckoutModePayment {
		t.Fatalf("expected mode %q, got %q", domain.CheckoutModePayment, req.Mode)
	}
}

func TestFromPricedCart_ExpandsOrderIDPlaceholder(t *testing.T) {
	b := checkout.NewBuilder(memory.NewProductRepository(),
		"https://shop.test/orders/{order_id}/success",
		"https://shop.test/orders/{order_id}/cancel")

	req, err := b.FromPricedCart(pricedCart(), "order-42")
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if req.SuccessURL != "https://shop.test/orders/order-42/success" {
		t.Fatalf("unexpected success url: %s", req.SuccessURL)
	}
	if req.CancelURL != "https://shop.test/orders/order-42/cancel" {
		t.Fatalf("unexpected cancel url: %s", req.CancelURL)
	}
}

func TestFromPricedCart_EmptyCartFails(t *testing.T) {
	b := checkout.NewBuilder(memory.NewProductRepository(), "https://shop.test/success", "https://shop.test/cancel")

	if _, err := b.FromPricedCart(domain.PricedCart{OwnerID: "customer-1"}, "order-1"); !errors.Is(err, domain.ErrItemsRequired) {
		t.Fatalf("expected ErrItemsRequired, got %v", err)
	}

	// Корзина без единой разрешённой строки эквивалентна пустой.
	cart := domain.PricedCart{Lines: []domain.PricedLine{{Line: domain.CartLine{ProductID: "ghost", Qty: 1}}}}
	if _, err := b.FromPricedCart(cart, "order-1"); !errors.Is(err, domain.ErrItemsRequired) {
		t.Fatalf("expected ErrItemsRequired, got %v", err)
	}
}

func TestFromOrder_ResolvesProductNames(t *testing.T) {
	products := memory.NewProductRepository()
	now := time.Now().UTC()
	if err := products.Create(domain.Product{
		ID: "product-1", Name: "widget", PriceMinor: 90, StockQty: 10,
		CreatedAt: now, UpdatedAt: now,
	}); err != nil {
		t.Fatalf("seed product: %v", err)
	}

	b := checkout.NewBuilder(products, "https://shop.test/success", "https://shop.test/cancel")
	order := domain.Order{
		ID: "order-1",
		Items: []domain.OrderItem{
			{ID: "item-1", OrderID: "order-1", ProductID: "product-1", Qty: 2, PriceMinor: 90},
			{ID: "item-2", OrderID: "order-1", ProductID: "ghost", Qty: 1, PriceMinor: 50},
		},
	}

	req, err := b.FromOrder(order)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if len(req.LineItems) != 1 {
		t.Fatalf("expected vanished product to be skipped, got %d items", len(req.LineItems))
	}
	if req.LineItems[0].ProductName != "widget" {
		t.Fatalf("expected product name resolved from catalog, got %q", req.LineItems[0].ProductName)
	}
}
