package cart

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"
	"time"
)

// ErrRestaurantConflict is returned by AddItem when the cart already holds
// lines from a different restaurant. The store never mixes restaurants; the
// caller resolves the conflict explicitly, either by keeping the existing
// cart or by calling Replace.
var ErrRestaurantConflict = errors.New("cart holds items from another restaurant")

// Store is the authoritative in-memory cart for one user session. All
// mutations are synchronous; totals are derived on read. An optional
// Persister mirrors every mutation to a key-value snapshot so the cart
// survives an app restart.
type Store struct {
	mu           sync.Mutex
	lines        map[string]*Line
	restaurantID string
	updatedAt    time.Time

	persister Persister
	logger    *log.Logger
}

func New() *Store {
	return &Store{lines: make(map[string]*Line)}
}

// NewPersisted builds a store backed by p and restores the previously saved
// snapshot, if any. A load failure is an error; the caller decides whether to
// fall back to an empty in-memory cart.
func NewPersisted(ctx context.Context, p Persister, logger *log.Logger) (*Store, error) {
	s := New()
	s.persister = p
	s.logger = logger

	snap, err := p.Load(ctx)
	if err != nil {
		return nil, err
	}
	if snap != nil {
		for _, l := range snap.Lines {
			if l.Quantity < 1 {
				continue
			}
			line := l
			s.lines[l.ItemID] = &line
			s.restaurantID = l.RestaurantID
		}
		s.updatedAt = snap.UpdatedAt
	}
	return s, nil
}

// AddItem inserts d with quantity 1 or increments the existing line. Adding
// an item from a different restaurant than the current cart contents fails
// with ErrRestaurantConflict and leaves the cart untouched.
func (s *Store) AddItem(d Dish, restaurantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.lines) > 0 && s.restaurantID != restaurantID {
		return ErrRestaurantConflict
	}

	if l, ok := s.lines[d.ID]; ok {
		l.Quantity++
	} else {
		s.lines[d.ID] = &Line{
			ItemID:       d.ID,
			Name:         d.Name,
			UnitPrice:    d.Price,
			RestaurantID: restaurantID,
			Quantity:     1,
		}
	}
	s.restaurantID = restaurantID
	s.touch()
	return nil
}

// Replace clears the cart and adds d, the explicit "replace cart" choice the
// user makes when resolving a restaurant conflict.
func (s *Store) Replace(d Dish, restaurantID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = make(map[string]*Line)
	s.lines[d.ID] = &Line{
		ItemID:       d.ID,
		Name:         d.Name,
		UnitPrice:    d.Price,
		RestaurantID: restaurantID,
		Quantity:     1,
	}
	s.restaurantID = restaurantID
	s.touch()
}

// RemoveItem decrements the line's quantity, deleting it at quantity 1.
// Removing an absent item is a no-op, not an error.
func (s *Store) RemoveItem(itemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.lines[itemID]
	if !ok {
		return
	}
	if l.Quantity > 1 {
		l.Quantity--
	} else {
		delete(s.lines, itemID)
	}
	if len(s.lines) == 0 {
		s.restaurantID = ""
	}
	s.touch()
}

// Clear empties the cart.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = make(map[string]*Line)
	s.restaurantID = ""
	s.touch()
}

// Quantity returns the current quantity for itemID, 0 when absent.
func (s *Store) Quantity(itemID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l, ok := s.lines[itemID]; ok {
		return l.Quantity
	}
	return 0
}

func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalItemsLocked()
}

func (s *Store) TotalPrice() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalPriceLocked()
}

// RestaurantID returns the restaurant the cart currently belongs to, empty
// for an empty cart.
func (s *Store) RestaurantID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restaurantID
}

// Snapshot returns a consistent copy of the cart with recomputed totals.
// Lines are sorted by item id for stable output.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{
		RestaurantID: s.restaurantID,
		Lines:        make([]Line, 0, len(s.lines)),
		TotalItems:   s.totalItemsLocked(),
		TotalPrice:   s.totalPriceLocked(),
		UpdatedAt:    s.updatedAt,
	}
	for _, l := range s.lines {
		snap.Lines = append(snap.Lines, *l)
	}
	sort.Slice(snap.Lines, func(i, j int) bool {
		return snap.Lines[i].ItemID < snap.Lines[j].ItemID
	})
	return snap
}

func (s *Store) totalItemsLocked() int {
	n := 0
	for _, l := range s.lines {
		n += l.Quantity
	}
	return n
}

func (s *Store) totalPriceLocked() float64 {
	total := 0.0
	for _, l := range s.lines {
		total += l.UnitPrice * float64(l.Quantity)
	}
	return total
}

// touch stamps the mutation and mirrors the new snapshot to the persister.
// Persist failures are logged and swallowed: cart mutations are total
// functions and never fail on storage.
func (s *Store) touch() {
	s.updatedAt = time.Now().UTC()
	if s.persister == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.persister.Save(ctx, s.snapshotLocked()); err != nil && s.logger != nil {
		s.logger.Printf("persist cart snapshot: %v", err)
	}
}
