// Package cart holds the in-progress order for one restaurant. The
// store is the single owner of durable cart state; views subscribe to
// it instead of keeping their own copies.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"tableside/internal/logger"
	"tableside/internal/models"
	"tableside/internal/storage"
)

// ErrItemUnavailable is returned when adding a menu item the restaurant
// has marked unavailable. The cart is left unchanged.
var ErrItemUnavailable = errors.New("menu item is unavailable")

// Store holds the cart lines for exactly one restaurant and persists
// them through a storage adapter after every mutation.
type Store struct {
	restaurantID string
	storage      storage.Adapter
	logger       *logger.Logger

	mu    sync.Mutex
	lines []models.CartLine
	subs  []func()
}

// NewStore creates an empty cart store scoped to restaurantID. Call
// Load to rehydrate a previously persisted cart.
func NewStore(restaurantID string, adapter storage.Adapter, log *logger.Logger) *Store {
	return &Store{
		restaurantID: restaurantID,
		storage:      adapter,
		logger:       log,
	}
}

// RestaurantID returns the restaurant this cart is scoped to.
func (s *Store) RestaurantID() string {
	return s.restaurantID
}

func (s *Store) storageKey() string {
	return "cart-" + s.restaurantID
}

// Load rehydrates the cart from durable storage. Only the current
// restaurant's entry is read; carts for other restaurants stay inert.
// A missing entry means an empty cart, not an error.
func (s *Store) Load(ctx context.Context) error {
	data, err := s.storage.Get(ctx, s.storageKey())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load cart: %w", err)
	}

	var lines []models.CartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		return fmt.Errorf("failed to decode stored cart: %w", err)
	}
	for _, line := range lines {
		if err := line.Validate(); err != nil {
			return fmt.Errorf("stored cart is corrupt: %w", err)
		}
	}

	s.mu.Lock()
	s.lines = lines
	s.mu.Unlock()
	s.notify()
	return nil
}

// AddItem adds one unit of the menu item, merging into an existing line
// when the item is already in the cart. Unavailable items are rejected.
func (s *Store) AddItem(ctx context.Context, item models.MenuItem) error {
	if !item.IsAvailable {
		return fmt.Errorf("%w: %s", ErrItemUnavailable, item.Name)
	}

	s.mu.Lock()
	found := false
	for i := range s.lines {
		if s.lines[i].MenuItemID == item.ID {
			s.lines[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		s.lines = append(s.lines, models.CartLine{
			MenuItemID: item.ID,
			Name:       item.Name,
			UnitPrice:  item.Price,
			Quantity:   1,
		})
	}
	err := s.persistLocked(ctx)
	s.mu.Unlock()

	if err != nil {
		return err
	}
	s.notify()
	return nil
}

// RemoveOne decrements the quantity of the line for itemID, removing
// the line entirely when it reaches zero. Unknown ids are a no-op.
func (s *Store) RemoveOne(ctx context.Context, itemID string) error {
	s.mu.Lock()
	for i := range s.lines {
		if s.lines[i].MenuItemID != itemID {
			continue
		}
		s.lines[i].Quantity--
		if s.lines[i].Quantity < 1 {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
		}
		break
	}
	err := s.persistLocked(ctx)
	s.mu.Unlock()

	if err != nil {
		return err
	}
	s.notify()
	return nil
}

// SetQuantity sets the line quantity for itemID to n. Values of zero or
// less remove the line.
func (s *Store) SetQuantity(ctx context.Context, itemID string, n int) error {
	s.mu.Lock()
	for i := range s.lines {
		if s.lines[i].MenuItemID != itemID {
			continue
		}
		if n <= 0 {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
		} else {
			s.lines[i].Quantity = n
		}
		break
	}
	err := s.persistLocked(ctx)
	s.mu.Unlock()

	if err != nil {
		return err
	}
	s.notify()
	return nil
}

// Clear empties the cart and deletes its stored entry.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.lines = nil
	err := s.persistLocked(ctx)
	s.mu.Unlock()

	if err != nil {
		return err
	}
	s.notify()
	return nil
}

// Lines returns a copy of the current cart lines in insertion order.
func (s *Store) Lines() []models.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

// IsEmpty reports whether the cart has no lines.
func (s *Store) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines) == 0
}

// Subscribe registers fn to run after every cart change. Subscribers
// must not mutate the store from the callback.
func (s *Store) Subscribe(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

func (s *Store) notify() {
	s.mu.Lock()
	subs := make([]func(), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}

// persistLocked writes the cart to durable storage. A non-empty cart is
// stored under the restaurant's key; an empty cart deletes the entry.
// Callers must hold s.mu.
func (s *Store) persistLocked(ctx context.Context) error {
	if len(s.lines) == 0 {
		if err := s.storage.Delete(ctx, s.storageKey()); err != nil {
			return fmt.Errorf("failed to clear stored cart: %w", err)
		}
		return nil
	}

	data, err := json.Marshal(s.lines)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := s.storage.Set(ctx, s.storageKey(), data); err != nil {
		return fmt.Errorf("failed to persist cart: %w", err)
	}
	return nil
}
