package order

import "time"

type Item struct {
	ItemID    string  `json:"itemId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

type Order struct {
	ID           string    `json:"orderId"`
	CustomerID   string    `json:"customerId"`
	RestaurantID string    `json:"restaurantId"`
	Items        []Item    `json:"items"`
	TotalBill    float64   `json:"totalBill"`
	DeliveryFee  float64   `json:"deliveryFee"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}
