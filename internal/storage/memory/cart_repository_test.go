package memory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
)

func seedLine(t *testing.T, repo domain.CartRepository, owner, product string, qty int32) domain.CartLine {
	t.Helper()

	now := time.Now().UTC()
	line := domain.CartLine{
		ID:        owner + "-" + product,
		OwnerID:   owner,
		ProductID: product,
		Qty:       qty,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.Create(line); err != nil {
		t.Fatalf("create line: %v", err)
	}
	return line
}

func TestCartRepository_ListIsScopedByOwner(t *testing.T) {
	repo := memory.NewCartRepository()
	seedLine(t, repo, "session-1", "product-1", 1)
	seedLine(t, repo, "session-2", "product-1", 2)

	lines, err := repo.List("session-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if lines[0].OwnerID != "session-1" {
		t.Fatalf("expected owner session-1, got %s", lines[0].OwnerID)
	}
}

func TestCartRepository_FindByProduct(t *testing.T) {
	repo := memory.NewCartRepository()
	line := seedLine(t, repo, "customer-1", "product-1", 3)

	found, err := repo.FindByProduct("customer-1", "product-1")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if found.ID != line.ID {
		t.Fatalf("expected line %s, got %s", line.ID, found.ID)
	}

	if _, err := repo.FindByProduct("customer-1", "missing"); !errors.Is(err, domain.ErrCartLineNotFound) {
		t.Fatalf("expected ErrCartLineNotFound, got %v", err)
	}
}

func TestCartRepository_RemoveMissingIsNoop(t *testing.T) {
	repo := memory.NewCartRepository()
	if err := repo.Remove("missing"); err != nil {
		t.Fatalf("remove of missing line must be a no-op, got %v", err)
	}
}

func TestCartRepository_Clear(t *testing.T) {
	repo := memory.NewCartRepository()
	line := seedLine(t, repo, "session-1", "product-1", 1)
	seedLine(t, repo, "session-1", "product-2", 2)

	if err := repo.Clear("session-1"); err != nil {
		t.Fatalf("clear failed: %v", err)
	}

	lines, err := repo.List("session-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(lines))
	}
	if _, err := repo.Get(line.ID); !errors.Is(err, domain.ErrCartLineNotFound) {
		t.Fatalf("expected ErrCartLineNotFound after clear, got %v", err)
	}
}

func TestCartRepository_UpdateQty(t *testing.T) {
	repo := memory.NewCartRepository()
	line := seedLine(t, repo, "customer-1", "product-1", 1)

	line.Qty = 4
	if err := repo.Update(line); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	stored, err := repo.Get(line.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.Qty != 4 {
		t.Fatalf("expected qty 4, got %d", stored.Qty)
	}
}
