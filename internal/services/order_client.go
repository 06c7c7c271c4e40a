package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/kamu-delivery/client-go/internal/order"
)

// OrderClient talks to the remote order service.
type OrderClient struct {
	baseURL string
	http    *http.Client
}

func NewOrderClient(baseURL string) *OrderClient {
	return &OrderClient{baseURL: baseURL, http: newHTTPClient()}
}

// CreateOrder submits the order draft and returns the persisted order with
// its server-assigned id and status.
func (c *OrderClient) CreateOrder(ctx context.Context, o order.Order) (*order.Order, error) {
	var created order.Order
	if err := doJSON(ctx, c.http, http.MethodPost, c.baseURL+"/api/orders", o, &created); err != nil {
		return nil, err
	}
	if created.ID == "" {
		return nil, fmt.Errorf("order service returned no order id")
	}
	return &created, nil
}

// GetOrder fetches a single order, nil when it does not exist.
func (c *OrderClient) GetOrder(ctx context.Context, orderID string) (*order.Order, error) {
	var o order.Order
	err := doJSON(ctx, c.http, http.MethodGet, c.baseURL+"/api/orders/"+orderID, nil, &o)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// ListOrders returns the customer's order history, newest first.
func (c *OrderClient) ListOrders(ctx context.Context, customerID string) ([]order.Order, error) {
	var orders []order.Order
	err := doJSON(ctx, c.http, http.MethodGet, c.baseURL+"/api/customers/"+customerID+"/orders", nil, &orders)
	if err != nil {
		return nil, err
	}
	return orders, nil
}
