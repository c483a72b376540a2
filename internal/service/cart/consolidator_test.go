package cart_test

import (
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/service/cart"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
)

func seedCartLine(t *testing.T, repo domain.CartRepository, owner, product string, qty int32) {
	t.Helper()

	now := time.Now().UTC()
	if err := repo.Create(domain.CartLine{
		ID:        owner + "-" + product,
		OwnerID:   owner,
		ProductID: product,
		Qty:       qty,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		t.Fatalf("seed cart line: %v", err)
	}
}

func qtyByProduct(t *testing.T, repo domain.CartRepository, owner string) map[string]int32 {
	t.Helper()

	lines, err := repo.List(owner)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	out := make(map[string]int32, len(lines))
	for _, line := range lines {
		out[line.ProductID] = line.Qty
	}
	return out
}

func TestConsolidate_MergesAndMoves(t *testing.T) {
	ephemeral := memory.NewCartRepository()
	persistent := memory.NewCartRepository()

	seedCartLine(t, persistent, "customer-1", "product-1", 2)
	seedCartLine(t, ephemeral, "session-1", "product-1", 3)
	seedCartLine(t, ephemeral, "session-1", "product-2", 1)

	c := cart.NewConsolidator(ephemeral, persistent, nil)
	if err := c.Consolidate("session-1", "customer-1"); err != nil {
		t.Fatalf("consolidate failed: %v", err)
	}

	got := qtyByProduct(t, persistent, "customer-1")
	if got["product-1"] != 5 {
		t.Fatalf("expected merged qty 5 for product-1, got %d", got["product-1"])
	}
	if got["product-2"] != 1 {
		t.Fatalf("expected moved qty 1 for product-2, got %d", got["product-2"])
	}

	leftovers, err := ephemeral.List("session-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(leftovers) != 0 {
		t.Fatalf("ephemeral cart must be empty after consolidation, got %d lines", len(leftovers))
	}
}

func TestConsolidate_MovedLinesGetOwner(t *testing.T) {
	ephemeral := memory.NewCartRepository()
	persistent := memory.NewCartRepository()

	seedCartLine(t, ephemeral, "session-1", "product-2", 4)

	c := cart.NewConsolidator(ephemeral, persistent, nil)
	if err := c.Consolidate("session-1", "customer-1"); err != nil {
		t.Fatalf("consolidate failed: %v", err)
	}

	lines, err := persistent.List("customer-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if lines[0].OwnerID != "customer-1" {
		t.Fatalf("moved line must belong to the customer, got owner %s", lines[0].OwnerID)
	}
	if lines[0].Qty != 4 {
		t.Fatalf("expected qty 4, got %d", lines[0].Qty)
	}
}

func TestConsolidate_SecondRunWithEmptyEphemeralIsNoop(t *testing.T) {
	ephemeral := memory.NewCartRepository()
	persistent := memory.NewCartRepository()

	seedCartLine(t, persistent, "customer-1", "product-1", 2)
	seedCartLine(t, ephemeral, "session-1", "product-1", 3)

	c := cart.NewConsolidator(ephemeral, persistent, nil)
	if err := c.Consolidate("session-1", "customer-1"); err != nil {
		t.Fatalf("consolidate failed: %v", err)
	}
	if err := c.Consolidate("session-1", "customer-1"); err != nil {
		t.Fatalf("repeat consolidate failed: %v", err)
	}

	got := qtyByProduct(t, persistent, "customer-1")
	if got["product-1"] != 5 {
		t.Fatalf("repeat run with empty ephemeral cart must not change qty, got %d", got["product-1"])
	}
}

func TestConsolidate_RefilledEphemeralAddsAgain(t *testing.T) {
	ephemeral := memory.NewCartRepository()
	persistent := memory.NewCartRepository()

	seedCartLine(t, ephemeral, "session-1", "product-1", 3)

	c := cart.NewConsolidator(ephemeral, persistent, nil)
	if err := c.Consolidate("session-1", "customer-1"); err != nil {
		t.Fatalf("consolidate failed: %v", err)
	}

	// Анонимная корзина наполнена заново между вызовами.
	seedCartLine(t, ephemeral, "session-1", "product-1", 2)
	if err := c.Consolidate("session-1", "customer-1"); err != nil {
		t.Fatalf("consolidate failed: %v", err)
	}

	got := qtyByProduct(t, persistent, "customer-1")
	if got["product-1"] != 5 {
		t.Fatalf("expected 3+2=5 after refilled merge, got %d", got["product-1"])
	}
}

func TestConsolidate_Guards(t *testing.T) {
	c := cart.NewConsolidator(memory.NewCartRepository(), memory.NewCartRepository(), nil)

	if err := c.Consolidate("", "customer-1"); !errors.Is(err, domain.ErrOwnerRequired) {
		t.Fatalf("expected ErrOwnerRequired, got %v", err)
	}
	if err := c.Consolidate("session-1", ""); !errors.Is(err, domain.ErrOwnerRequired) {
		t.Fatalf("expected ErrOwnerRequired, got %v", err)
	}
}
