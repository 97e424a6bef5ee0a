package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"tableside/internal/logger"
	"tableside/internal/models"
	"tableside/internal/storage"
)

func burger() models.MenuItem {
	return models.MenuItem{
		ID:          "burger",
		Name:        "Burger",
		Price:       decimal.NewFromInt(10),
		Category:    "mains",
		IsAvailable: true,
	}
}

func fries() models.MenuItem {
	return models.MenuItem{
		ID:          "fries",
		Name:        "Fries",
		Price:       decimal.NewFromFloat(3.5),
		Category:    "sides",
		IsAvailable: true,
	}
}

func newTestStore(t *testing.T) (*Store, *storage.Memory) {
	t.Helper()
	adapter := storage.NewMemory()
	return NewStore("r1", adapter, logger.New("cart-test")), adapter
}

func TestAddItem_MergesLines(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	if err := store.AddItem(ctx, burger()); err != nil {
		t.Fatalf("AddItem returned error: %v", err)
	}
	if err := store.AddItem(ctx, burger()); err != nil {
		t.Fatalf("AddItem returned error: %v", err)
	}

	lines := store.Lines()
	if len(lines) != 1 {
		t.Fatalf("expected 1 line after adding the same item twice, got %d", len(lines))
	}
	if lines[0].Quantity != 2 {
		t.Errorf("expected quantity 2, got %d", lines[0].Quantity)
	}
}

func TestAddItem_RejectsUnavailable(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	item := burger()
	item.IsAvailable = false

	if err := store.AddItem(ctx, item); !errors.Is(err, ErrItemUnavailable) {
		t.Fatalf("expected ErrItemUnavailable, got %v", err)
	}
	if !store.IsEmpty() {
		t.Errorf("cart should stay empty after rejected add")
	}
}

func TestRemoveOne_RemovesLineAtZero(t *testing.T) {
	ctx := context.Background()
	store, adapter := newTestStore(t)

	if err := store.AddItem(ctx, burger()); err != nil {
		t.Fatalf("AddItem returned error: %v", err)
	}
	if err := store.AddItem(ctx, burger()); err != nil {
		t.Fatalf("AddItem returned error: %v", err)
	}

	if err := store.RemoveOne(ctx, "burger"); err != nil {
		t.Fatalf("RemoveOne returned error: %v", err)
	}
	if got := store.Lines()[0].Quantity; got != 1 {
		t.Fatalf("expected quantity 1, got %d", got)
	}

	if err := store.RemoveOne(ctx, "burger"); err != nil {
		t.Fatalf("RemoveOne returned error: %v", err)
	}
	if !store.IsEmpty() {
		t.Fatalf("expected empty cart")
	}

	// Empty cart must delete its durable entry.
	if _, err := adapter.Get(ctx, "cart-r1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected stored cart to be deleted, got %v", err)
	}
}

func TestSetQuantity(t *testing.T) {
	ctx := context.Background()
	store, adapter := newTestStore(t)

	if err := store.AddItem(ctx, burger()); err != nil {
		t.Fatalf("AddItem returned error: %v", err)
	}

	if err := store.SetQuantity(ctx, "burger", 5); err != nil {
		t.Fatalf("SetQuantity returned error: %v", err)
	}
	if got := store.Lines()[0].Quantity; got != 5 {
		t.Errorf("expected quantity 5, got %d", got)
	}

	// Setting is absolute, not relative.
	if err := store.SetQuantity(ctx, "burger", 2); err != nil {
		t.Fatalf("SetQuantity returned error: %v", err)
	}
	if got := store.Lines()[0].Quantity; got != 2 {
		t.Errorf("expected quantity 2, got %d", got)
	}

	// Zero removes the line and clears storage.
	if err := store.SetQuantity(ctx, "burger", 0); err != nil {
		t.Fatalf("SetQuantity returned error: %v", err)
	}
	if !store.IsEmpty() {
		t.Errorf("expected empty cart after SetQuantity 0")
	}
	if _, err := adapter.Get(ctx, "cart-r1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected stored cart to be deleted, got %v", err)
	}
}

func TestPersistAndReload(t *testing.T) {
	ctx := context.Background()
	adapter := storage.NewMemory()
	log := logger.New("cart-test")

	store := NewStore("r1", adapter, log)
	if err := store.AddItem(ctx, burger()); err != nil {
		t.Fatalf("AddItem returned error: %v", err)
	}
	if err := store.AddItem(ctx, fries()); err != nil {
		t.Fatalf("AddItem returned error: %v", err)
	}

	// A new store for the same restaurant sees the persisted cart.
	reloaded := NewStore("r1", adapter, log)
	if err := reloaded.Load(ctx); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got := len(reloaded.Lines()); got != 2 {
		t.Fatalf("expected 2 lines after reload, got %d", got)
	}

	// A store for another restaurant starts empty; carts do not leak.
	other := NewStore("r2", adapter, log)
	if err := other.Load(ctx); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !other.IsEmpty() {
		t.Errorf("cart for another restaurant should be empty")
	}
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	calls := 0
	store.Subscribe(func() { calls++ })

	if err := store.AddItem(ctx, burger()); err != nil {
		t.Fatalf("AddItem returned error: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear returned error: %v", err)
	}

	if calls != 2 {
		t.Errorf("expected 2 notifications, got %d", calls)
	}
}
