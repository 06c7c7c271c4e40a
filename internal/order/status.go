package order

// Status is the delivery progression reported by the order service.
type Status string

const (
	StatusPending        Status = "PENDING"
	StatusConfirmed      Status = "CONFIRMED"
	StatusPreparing      Status = "PREPARING"
	StatusReadyForPickup Status = "READY_FOR_PICKUP"
	StatusOutForDelivery Status = "OUT_FOR_DELIVERY"
	StatusDelivered      Status = "DELIVERED"
	StatusCancelled      Status = "CANCELLED"
	StatusFailed         Status = "FAILED"
)

// rank orders the forward progression. Terminal side-branches are not ranked.
var rank = map[Status]int{
	StatusPending:        0,
	StatusConfirmed:      1,
	StatusPreparing:      2,
	StatusReadyForPickup: 3,
	StatusOutForDelivery: 4,
	StatusDelivered:      5,
}

func (s Status) Valid() bool {
	if _, ok := rank[s]; ok {
		return true
	}
	return s == StatusCancelled || s == StatusFailed
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled || s == StatusFailed
}

// CanTransition reports whether next is reachable from s. Forward jumps are
// allowed (status updates may arrive with gaps), regressions are not.
// CANCELLED and FAILED are reachable from any non-terminal status.
func (s Status) CanTransition(next Status) bool {
	if !s.Valid() || !next.Valid() || s.Terminal() {
		return false
	}
	if next == StatusCancelled || next == StatusFailed {
		return true
	}
	return rank[next] > rank[s]
}
