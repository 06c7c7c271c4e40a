package services

import (
	"context"
	"net/http"

	"github.com/kamu-delivery/client-go/internal/payment"
)

// PaymentClient talks to the remote payment service. Declined payments come
// back as a 2xx body with success=false; only transport-level problems are
// returned as errors.
type PaymentClient struct {
	baseURL string
	http    *http.Client
}

func NewPaymentClient(baseURL string) *PaymentClient {
	return &PaymentClient{baseURL: baseURL, http: newHTTPClient()}
}

type processPaymentRequest struct {
	Amount          float64 `json:"amount"`
	PaymentMethodID string  `json:"paymentMethodId"`
	OrderID         string  `json:"orderId"`
}

func (c *PaymentClient) ProcessPayment(ctx context.Context, amount float64, paymentMethodID, orderID string) (*payment.Result, error) {
	req := processPaymentRequest{
		Amount:          amount,
		PaymentMethodID: paymentMethodID,
		OrderID:         orderID,
	}
	var res payment.Result
	if err := doJSON(ctx, c.http, http.MethodPost, c.baseURL+"/api/payments", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
