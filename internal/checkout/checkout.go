package checkout

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/kamu-delivery/client-go/internal/cart"
	"github.com/kamu-delivery/client-go/internal/order"
	"github.com/kamu-delivery/client-go/internal/payment"
)

// State of a checkout attempt. An attempt moves strictly forward:
// Validating -> CreatingOrder -> ProcessingPayment -> ClearingCart ->
// Succeeded, with ProcessingPayment skipped for deferred-settlement methods
// and Failed reachable from any non-terminal state.
type State string

const (
	StateValidating        State = "validating"
	StateCreatingOrder     State = "creating_order"
	StateProcessingPayment State = "processing_payment"
	StateClearingCart      State = "clearing_cart"
	StateSucceeded         State = "succeeded"
	StateFailed            State = "failed"
)

// OrderService creates orders on the backend.
type OrderService interface {
	CreateOrder(ctx context.Context, o order.Order) (*order.Order, error)
}

// PaymentService captures a payment for an already created order. A declined
// payment is a Result with Success=false, not an error.
type PaymentService interface {
	ProcessPayment(ctx context.Context, amount float64, paymentMethodID, orderID string) (*payment.Result, error)
}

// CardProvider lists the user's saved cards for auto-selection.
type CardProvider interface {
	ListSavedCards(ctx context.Context) ([]payment.Card, error)
}

// SessionProvider resolves the signed-in customer.
type SessionProvider interface {
	CustomerID(ctx context.Context) (string, error)
}

// Request is the user's confirmation input for one attempt.
type Request struct {
	Method payment.Method `json:"paymentMethod"`
	CardID string         `json:"cardId,omitempty"`
}

// Result carries the outcome of a successful attempt.
type Result struct {
	AttemptID     string  `json:"attemptId"`
	OrderID       string  `json:"orderId"`
	TotalBill     float64 `json:"totalBill"`
	TransactionID string  `json:"transactionId,omitempty"`
}

// Orchestrator turns a confirmed cart into a created order and a captured
// payment, clearing the cart only after the order durably exists. It performs
// no automatic retries; a failed attempt is re-entered from Validating by
// calling Run again.
type Orchestrator struct {
	cart        *cart.Store
	orders      OrderService
	payments    PaymentService
	cards       CardProvider
	session     SessionProvider
	deliveryFee float64
	logger      *log.Logger

	inFlight atomic.Bool
}

func NewOrchestrator(
	cartStore *cart.Store,
	orders OrderService,
	payments PaymentService,
	cards CardProvider,
	session SessionProvider,
	deliveryFee float64,
	logger *log.Logger,
) *Orchestrator {
	return &Orchestrator{
		cart:        cartStore,
		orders:      orders,
		payments:    payments,
		cards:       cards,
		session:     session,
		deliveryFee: deliveryFee,
		logger:      logger,
	}
}

// Run executes one checkout attempt to a terminal state. The external calls
// are strictly sequential: order creation precedes payment capture, which
// precedes cart clearing, so any failure leaves the cart intact and
// retryable. Once the order service has been called, cancelling ctx does not
// roll the order back; a placed order is a fact.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Result, error) {
	if !o.inFlight.CompareAndSwap(false, true) {
		return nil, ErrCheckoutInFlight
	}
	defer o.inFlight.Store(false)

	attemptID := uuid.NewString()
	state := StateValidating

	snap := o.cart.Snapshot()
	customerID, cardID, err := o.validate(ctx, snap, req)
	if err != nil {
		o.fail(attemptID, state, err)
		return nil, err
	}

	state = StateCreatingOrder
	created, err := o.createOrder(ctx, customerID, snap)
	if err != nil {
		o.fail(attemptID, state, err)
		return nil, &OrderCreationError{Err: err}
	}
	o.logger.Printf("attempt %s: order %s created (%.2f)", attemptID, created.ID, created.TotalBill)

	result := &Result{AttemptID: attemptID, OrderID: created.ID, TotalBill: created.TotalBill}

	if req.Method.RequiresCapture() {
		state = StateProcessingPayment
		res, err := o.payments.ProcessPayment(ctx, created.TotalBill, cardID, created.ID)
		if err != nil {
			perr := &PaymentError{OrderID: created.ID, Err: err}
			o.fail(attemptID, state, perr)
			return nil, perr
		}
		if !res.Success {
			perr := &PaymentError{OrderID: created.ID, Declined: true, Reason: res.Error}
			o.fail(attemptID, state, perr)
			return nil, perr
		}
		result.TransactionID = res.TransactionID
	}

	// ClearingCart is the last step of the success path; a failure at any
	// earlier state has already returned with the cart intact.
	o.cart.Clear()

	state = StateSucceeded
	o.logger.Printf("attempt %s: %s, order %s", attemptID, state, created.ID)
	return result, nil
}

// validate checks the attempt's preconditions without touching the network,
// except for card auto-selection which needs the saved-card list.
func (o *Orchestrator) validate(ctx context.Context, snap cart.Snapshot, req Request) (customerID, cardID string, err error) {
	if len(snap.Lines) == 0 {
		return "", "", &ValidationError{Reason: "cart is empty"}
	}
	if !req.Method.Valid() {
		return "", "", &ValidationError{Reason: "no payment method chosen"}
	}

	customerID, err = o.session.CustomerID(ctx)
	if err != nil || customerID == "" {
		return "", "", &ValidationError{Reason: "no active session"}
	}

	if req.Method.RequiresCapture() {
		cardID, err = o.resolveCard(ctx, req.CardID)
		if err != nil {
			return "", "", err
		}
	}
	return customerID, cardID, nil
}

// resolveCard picks the card to charge: an explicit selection wins, otherwise
// the sole saved card is auto-selected. Anything else is a validation
// failure, not a guess.
func (o *Orchestrator) resolveCard(ctx context.Context, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	cards, err := o.cards.ListSavedCards(ctx)
	if err != nil {
		return "", &ValidationError{Reason: "could not load saved cards"}
	}
	if len(cards) == 1 {
		return cards[0].ID, nil
	}
	if len(cards) == 0 {
		return "", &ValidationError{Reason: "card payment chosen but no saved card"}
	}
	return "", &ValidationError{Reason: "several saved cards, none selected"}
}

func (o *Orchestrator) createOrder(ctx context.Context, customerID string, snap cart.Snapshot) (*order.Order, error) {
	draft := order.Order{
		CustomerID:   customerID,
		RestaurantID: snap.RestaurantID,
		Items:        make([]order.Item, 0, len(snap.Lines)),
		TotalBill:    snap.TotalPrice + o.deliveryFee,
		DeliveryFee:  o.deliveryFee,
		Status:       order.StatusPending,
		CreatedAt:    time.Now().UTC(),
	}
	for _, l := range snap.Lines {
		draft.Items = append(draft.Items, order.Item{
			ItemID:    l.ItemID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}
	return o.orders.CreateOrder(ctx, draft)
}

func (o *Orchestrator) fail(attemptID string, state State, err error) {
	o.logger.Printf("attempt %s: %s in %s: %v", attemptID, StateFailed, state, err)
}
