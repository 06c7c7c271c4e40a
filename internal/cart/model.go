package cart

import "time"

// Dish is the menu descriptor the UI hands to the store when adding an item.
type Dish struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Line is one distinct item plus its quantity in the active cart.
// A line with quantity 0 is never stored; it is removed instead.
type Line struct {
	ItemID       string  `json:"itemId"`
	Name         string  `json:"name"`
	UnitPrice    float64 `json:"unitPrice"`
	RestaurantID string  `json:"restaurantId"`
	Quantity     int     `json:"quantity"`
}

// Snapshot is a read-consistent copy of the cart with its derived totals.
// Totals are recomputed from the lines on every snapshot, never stored.
type Snapshot struct {
	RestaurantID string    `json:"restaurantId,omitempty"`
	Lines        []Line    `json:"lines"`
	TotalItems   int       `json:"totalItems"`
	TotalPrice   float64   `json:"totalPrice"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
