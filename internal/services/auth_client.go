package services

import (
	"context"
	"fmt"
	"net/http"
)

// AuthClient resolves the signed-in customer from the session endpoint.
type AuthClient struct {
	baseURL string
	http    *http.Client
}

func NewAuthClient(baseURL string) *AuthClient {
	return &AuthClient{baseURL: baseURL, http: newHTTPClient()}
}

type sessionResponse struct {
	CustomerID string `json:"customerId"`
}

// CustomerID returns the current customer id. An absent or expired session
// surfaces as an error; the checkout orchestrator treats it as a validation
// failure, never retried internally.
func (c *AuthClient) CustomerID(ctx context.Context) (string, error) {
	var res sessionResponse
	if err := doJSON(ctx, c.http, http.MethodGet, c.baseURL+"/api/session", nil, &res); err != nil {
		return "", err
	}
	if res.CustomerID == "" {
		return "", fmt.Errorf("session has no customer id")
	}
	return res.CustomerID, nil
}
