package services

import (
	"context"
	"net/http"

	"github.com/kamu-delivery/client-go/internal/payment"
)

// CardsClient manages the user's saved payment cards.
type CardsClient struct {
	baseURL string
	http    *http.Client
}

func NewCardsClient(baseURL string) *CardsClient {
	return &CardsClient{baseURL: baseURL, http: newHTTPClient()}
}

func (c *CardsClient) ListSavedCards(ctx context.Context) ([]payment.Card, error) {
	var cards []payment.Card
	if err := doJSON(ctx, c.http, http.MethodGet, c.baseURL+"/api/cards", nil, &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

func (c *CardsClient) AddCard(ctx context.Context, card payment.Card) (*payment.Card, error) {
	var saved payment.Card
	if err := doJSON(ctx, c.http, http.MethodPost, c.baseURL+"/api/cards", card, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (c *CardsClient) DeleteCard(ctx context.Context, cardID string) error {
	return doJSON(ctx, c.http, http.MethodDelete, c.baseURL+"/api/cards/"+cardID, nil, nil)
}
