// Package tracker keeps the latest known delivery status per order, fed by
// the status update consumer and queried by the HTTP facade.
package tracker

import (
	"sync"
	"time"

	"github.com/kamu-delivery/client-go/internal/order"
)

type Entry struct {
	OrderID   string       `json:"orderId"`
	Status    order.Status `json:"status"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

type Tracker struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func New() *Tracker {
	return &Tracker{entries: make(map[string]Entry)}
}

// Apply records the status for orderID and reports whether it was accepted.
// Invalid statuses and regressions against the stored progression are
// ignored: out-of-order updates must not roll an order's status back.
func (t *Tracker) Apply(orderID string, s order.Status, at time.Time) bool {
	if orderID == "" || !s.Valid() {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if cur, ok := t.entries[orderID]; ok && !cur.Status.CanTransition(s) {
		return false
	}
	t.entries[orderID] = Entry{OrderID: orderID, Status: s, UpdatedAt: at}
	return true
}

// Status returns the latest entry for orderID.
func (t *Tracker) Status(orderID string) (Entry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	e, ok := t.entries[orderID]
	return e, ok
}
