package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kamu-delivery/client-go/internal/cart"
	"github.com/kamu-delivery/client-go/internal/checkout"
	"github.com/kamu-delivery/client-go/internal/payment"
	"github.com/kamu-delivery/client-go/internal/tracker"
)

// CheckoutRunner is what the facade needs from the checkout orchestrator.
type CheckoutRunner interface {
	Run(ctx context.Context, req checkout.Request) (*checkout.Result, error)
}

// CardDirectory is what the facade needs from the saved-card provider.
type CardDirectory interface {
	ListSavedCards(ctx context.Context) ([]payment.Card, error)
	AddCard(ctx context.Context, card payment.Card) (*payment.Card, error)
	DeleteCard(ctx context.Context, cardID string) error
}

// Handler adapts the cart store and checkout orchestrator to the UI-facing
// REST surface. Every mutation is visible to the next read: the store is
// in-process state, not an eventually consistent view.
type Handler struct {
	store    *cart.Store
	checkout CheckoutRunner
	cards    CardDirectory
	tracker  *tracker.Tracker
}

func NewHandler(store *cart.Store, runner CheckoutRunner, cards CardDirectory, tr *tracker.Tracker) *Handler {
	return &Handler{store: store, checkout: runner, cards: cards, tracker: tr}
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Snapshot())
}

type addItemRequest struct {
	cart.Dish
	RestaurantID string `json:"restaurantId"`
}

// AddItem adds one unit of the dish. A restaurant conflict answers 409 with
// the current snapshot so the UI can prompt "keep or replace"; repeating the
// request with ?replace=true performs the explicit clear-and-replace.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var body addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if body.ID == "" || body.RestaurantID == "" {
		writeError(w, http.StatusBadRequest, "missing dish id or restaurant id")
		return
	}
	if body.Price <= 0 {
		writeError(w, http.StatusBadRequest, "dish price must be positive")
		return
	}

	if r.URL.Query().Get("replace") == "true" {
		h.store.Replace(body.Dish, body.RestaurantID)
		writeJSON(w, http.StatusOK, h.store.Snapshot())
		return
	}

	if err := h.store.AddItem(body.Dish, body.RestaurantID); err != nil {
		if errors.Is(err, cart.ErrRestaurantConflict) {
			writeJSON(w, http.StatusConflict, map[string]any{
				"error": "cart holds items from another restaurant",
				"cart":  h.store.Snapshot(),
			})
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to add item")
		return
	}

	writeJSON(w, http.StatusOK, h.store.Snapshot())
}

// RemoveItem decrements the line, deleting it at quantity 1. Removing an
// absent item is a no-op and still answers the current snapshot.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemId")
	if itemID == "" {
		writeError(w, http.StatusBadRequest, "missing itemId")
		return
	}

	h.store.RemoveItem(itemID)
	writeJSON(w, http.StatusOK, h.store.Snapshot())
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.store.Clear()
	w.WriteHeader(http.StatusNoContent)
}

// Checkout runs one attempt to a terminal state. Failures map onto the error
// taxonomy: validation 400, double submission 409, service failures 502 with
// the underlying message; the cart stays intact on every failure path.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkout.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	res, err := h.checkout.Run(r.Context(), req)
	if err != nil {
		var verr *checkout.ValidationError
		switch {
		case errors.As(err, &verr):
			writeError(w, http.StatusBadRequest, verr.Reason)
		case errors.Is(err, checkout.ErrCheckoutInFlight):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusBadGateway, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) OrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")
	if orderID == "" {
		writeError(w, http.StatusBadRequest, "missing orderId")
		return
	}

	entry, ok := h.tracker.Status(orderID)
	if !ok {
		writeError(w, http.StatusNotFound, "no status known for order")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *Handler) ListCards(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	cards, err := h.cards.ListSavedCards(ctx)
	if err != nil {
		writeError(w, http.StatusBadGateway, "failed to load saved cards")
		return
	}
	if cards == nil {
		cards = []payment.Card{}
	}
	writeJSON(w, http.StatusOK, cards)
}

func (h *Handler) AddCard(w http.ResponseWriter, r *http.Request) {
	var card payment.Card
	if err := json.NewDecoder(r.Body).Decode(&card); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if card.Last4 == "" {
		writeError(w, http.StatusBadRequest, "missing card details")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	saved, err := h.cards.AddCard(ctx, card)
	if err != nil {
		writeError(w, http.StatusBadGateway, "failed to save card")
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (h *Handler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	cardID := chi.URLParam(r, "cardId")
	if cardID == "" {
		writeError(w, http.StatusBadRequest, "missing cardId")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.cards.DeleteCard(ctx, cardID); err != nil {
		writeError(w, http.StatusBadGateway, "failed to delete card")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
