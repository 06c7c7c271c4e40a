package events

import (
	"time"

	"github.com/kamu-delivery/client-go/internal/order"
)

// StatusUpdate is published by the order service whenever an order's
// delivery status changes.
type StatusUpdate struct {
	EventType  string       `json:"eventType"`
	OrderID    string       `json:"orderId"`
	CustomerID string       `json:"customerId"`
	Status     order.Status `json:"status"`
	Timestamp  time.Time    `json:"timestamp"`
}
