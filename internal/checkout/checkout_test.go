package checkout

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kamu-delivery/client-go/internal/cart"
	"github.com/kamu-delivery/client-go/internal/order"
	"github.com/kamu-delivery/client-go/internal/payment"
)

type orderServiceMock struct {
	CreateOrderFunc func(ctx context.Context, o order.Order) (*order.Order, error)
	calls           int
}

func (m *orderServiceMock) CreateOrder(ctx context.Context, o order.Order) (*order.Order, error) {
	m.calls++
	return m.CreateOrderFunc(ctx, o)
}

type paymentServiceMock struct {
	ProcessPaymentFunc func(ctx context.Context, amount float64, paymentMethodID, orderID string) (*payment.Result, error)
	calls              int
}

func (m *paymentServiceMock) ProcessPayment(ctx context.Context, amount float64, paymentMethodID, orderID string) (*payment.Result, error) {
	m.calls++
	return m.ProcessPaymentFunc(ctx, amount, paymentMethodID, orderID)
}

type cardProviderMock struct {
	ListSavedCardsFunc func(ctx context.Context) ([]payment.Card, error)
}

func (m *cardProviderMock) ListSavedCards(ctx context.Context) ([]payment.Card, error) {
	if m.ListSavedCardsFunc == nil {
		return nil, nil
	}
	return m.ListSavedCardsFunc(ctx)
}

type sessionMock struct {
	CustomerIDFunc func(ctx context.Context) (string, error)
}

func (m *sessionMock) CustomerID(ctx context.Context) (string, error) {
	if m.CustomerIDFunc == nil {
		return "cust-1", nil
	}
	return m.CustomerIDFunc(ctx)
}

func acceptingOrderService() *orderServiceMock {
	return &orderServiceMock{CreateOrderFunc: func(ctx context.Context, o order.Order) (*order.Order, error) {
		created := o
		created.ID = "ord-1"
		return &created, nil
	}}
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func cartWith(t *testing.T, dishes ...cart.Dish) *cart.Store {
	t.Helper()
	s := cart.New()
	for _, d := range dishes {
		require.NoError(t, s.AddItem(d, "r1"))
	}
	return s
}

func TestRunCashHappyPath(t *testing.T) {
	store := cartWith(t, cart.Dish{ID: "d1", Name: "Margherita", Price: 5.99})
	require.NoError(t, store.AddItem(cart.Dish{ID: "d1", Name: "Margherita", Price: 5.99}, "r1"))

	var captured order.Order
	orders := &orderServiceMock{CreateOrderFunc: func(ctx context.Context, o order.Order) (*order.Order, error) {
		captured = o
		created := o
		created.ID = "ord-42"
		return &created, nil
	}}
	payments := &paymentServiceMock{ProcessPaymentFunc: func(ctx context.Context, amount float64, paymentMethodID, orderID string) (*payment.Result, error) {
		t.Fatal("payment service must not be called for cash")
		return nil, nil
	}}

	orc := NewOrchestrator(store, orders, payments, &cardProviderMock{}, &sessionMock{}, 1.50, testLogger())
	res, err := orc.Run(context.Background(), Request{Method: payment.MethodCash})
	require.NoError(t, err)

	require.Equal(t, "ord-42", res.OrderID)
	require.InDelta(t, 13.48, res.TotalBill, 1e-9) // 2 x 5.99 + 1.50 fee
	require.Empty(t, res.TransactionID)

	require.Equal(t, "cust-1", captured.CustomerID)
	require.Equal(t, "r1", captured.RestaurantID)
	require.Equal(t, order.StatusPending, captured.Status)
	require.InDelta(t, 1.50, captured.DeliveryFee, 1e-9)
	require.Len(t, captured.Items, 1)
	require.Equal(t, 2, captured.Items[0].Quantity)

	require.Equal(t, 0, store.TotalItems(), "cart cleared after success")
	require.Equal(t, 0, payments.calls)
}

func TestRunCardHappyPath(t *testing.T) {
	store := cartWith(t, cart.Dish{ID: "d1", Name: "Ramen", Price: 9.50})

	var gotAmount float64
	var gotCard, gotOrder string
	payments := &paymentServiceMock{ProcessPaymentFunc: func(ctx context.Context, amount float64, paymentMethodID, orderID string) (*payment.Result, error) {
		gotAmount, gotCard, gotOrder = amount, paymentMethodID, orderID
		return &payment.Result{Success: true, TransactionID: "tx-7"}, nil
	}}

	orc := NewOrchestrator(store, acceptingOrderService(), payments, &cardProviderMock{}, &sessionMock{}, 2.00, testLogger())
	res, err := orc.Run(context.Background(), Request{Method: payment.MethodCard, CardID: "card-9"})
	require.NoError(t, err)

	require.Equal(t, "tx-7", res.TransactionID)
	require.InDelta(t, 11.50, gotAmount, 1e-9)
	require.Equal(t, "card-9", gotCard)
	require.Equal(t, "ord-1", gotOrder)
	require.Equal(t, 0, store.TotalItems())
}

func TestRunCardAutoSelectsSoleSavedCard(t *testing.T) {
	store := cartWith(t, cart.Dish{ID: "d1", Name: "Ramen", Price: 9.50})
	cards := &cardProviderMock{ListSavedCardsFunc: func(ctx context.Context) ([]payment.Card, error) {
		return []payment.Card{{ID: "card-only", Brand: "visa", Last4: "4242"}}, nil
	}}

	var gotCard string
	payments := &paymentServiceMock{ProcessPaymentFunc: func(ctx context.Context, amount float64, paymentMethodID, orderID string) (*payment.Result, error) {
		gotCard = paymentMethodID
		return &payment.Result{Success: true}, nil
	}}

	orc := NewOrchestrator(store, acceptingOrderService(), payments, cards, &sessionMock{}, 0, testLogger())
	_, err := orc.Run(context.Background(), Request{Method: payment.MethodCard})
	require.NoError(t, err)
	require.Equal(t, "card-only", gotCard)
}

func TestRunValidationFailures(t *testing.T) {
	cases := []struct {
		name   string
		store  func(t *testing.T) *cart.Store
		req    Request
		cards  *cardProviderMock
		sess   *sessionMock
		reason string
	}{
		{
			name:   "empty cart",
			store:  func(t *testing.T) *cart.Store { return cart.New() },
			req:    Request{Method: payment.MethodCash},
			reason: "cart is empty",
		},
		{
			name:   "no method",
			store:  func(t *testing.T) *cart.Store { return cartWith(t, cart.Dish{ID: "d1", Name: "Taco", Price: 3}) },
			req:    Request{},
			reason: "no payment method chosen",
		},
		{
			name:  "card with no saved cards",
			store: func(t *testing.T) *cart.Store { return cartWith(t, cart.Dish{ID: "d1", Name: "Taco", Price: 3}) },
			req:   Request{Method: payment.MethodCard},
			cards: &cardProviderMock{ListSavedCardsFunc: func(ctx context.Context) ([]payment.Card, error) {
				return nil, nil
			}},
			reason: "no saved card",
		},
		{
			name:  "card ambiguous",
			store: func(t *testing.T) *cart.Store { return cartWith(t, cart.Dish{ID: "d1", Name: "Taco", Price: 3}) },
			req:   Request{Method: payment.MethodCard},
			cards: &cardProviderMock{ListSavedCardsFunc: func(ctx context.Context) ([]payment.Card, error) {
				return []payment.Card{{ID: "a"}, {ID: "b"}}, nil
			}},
			reason: "none selected",
		},
		{
			name:  "no session",
			store: func(t *testing.T) *cart.Store { return cartWith(t, cart.Dish{ID: "d1", Name: "Taco", Price: 3}) },
			req:   Request{Method: payment.MethodCash},
			sess: &sessionMock{CustomerIDFunc: func(ctx context.Context) (string, error) {
				return "", errors.New("401")
			}},
			reason: "no active session",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			orders := &orderServiceMock{CreateOrderFunc: func(ctx context.Context, o order.Order) (*order.Order, error) {
				t.Fatal("order service must not be called on validation failure")
				return nil, nil
			}}
			cards := tc.cards
			if cards == nil {
				cards = &cardProviderMock{}
			}
			sess := tc.sess
			if sess == nil {
				sess = &sessionMock{}
			}
			store := tc.store(t)
			before := store.TotalItems()

			orc := NewOrchestrator(store, orders, &paymentServiceMock{}, cards, sess, 0, testLogger())
			_, err := orc.Run(context.Background(), tc.req)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			require.Contains(t, verr.Reason, tc.reason)
			require.Equal(t, 0, orders.calls)
			require.Equal(t, before, store.TotalItems(), "cart untouched")
		})
	}
}

func TestRunOrderCreationFailureKeepsCartAndSkipsPayment(t *testing.T) {
	store := cartWith(t, cart.Dish{ID: "d1", Name: "Margherita", Price: 5.99})
	orders := &orderServiceMock{CreateOrderFunc: func(ctx context.Context, o order.Order) (*order.Order, error) {
		return nil, errors.New("503 service unavailable")
	}}
	payments := &paymentServiceMock{ProcessPaymentFunc: func(ctx context.Context, amount float64, paymentMethodID, orderID string) (*payment.Result, error) {
		t.Fatal("payment must never run when order creation failed")
		return nil, nil
	}}

	orc := NewOrchestrator(store, orders, payments, &cardProviderMock{}, &sessionMock{}, 0, testLogger())
	_, err := orc.Run(context.Background(), Request{Method: payment.MethodCard, CardID: "card-1"})

	var oerr *OrderCreationError
	require.ErrorAs(t, err, &oerr)
	require.Equal(t, 1, store.TotalItems(), "cart intact for retry")
	require.Equal(t, 0, payments.calls)
}

func TestRunCardDeclineKeepsCart(t *testing.T) {
	store := cartWith(t, cart.Dish{ID: "d1", Name: "Margherita", Price: 5.99})
	require.NoError(t, store.AddItem(cart.Dish{ID: "d1", Name: "Margherita", Price: 5.99}, "r1"))

	payments := &paymentServiceMock{ProcessPaymentFunc: func(ctx context.Context, amount float64, paymentMethodID, orderID string) (*payment.Result, error) {
		return &payment.Result{Success: false, Error: "insufficient funds"}, nil
	}}

	orc := NewOrchestrator(store, acceptingOrderService(), payments, &cardProviderMock{}, &sessionMock{}, 0, testLogger())
	_, err := orc.Run(context.Background(), Request{Method: payment.MethodCard, CardID: "card-1"})

	var perr *PaymentError
	require.ErrorAs(t, err, &perr)
	require.True(t, perr.Declined)
	require.Equal(t, "insufficient funds", perr.Reason)
	require.Equal(t, "ord-1", perr.OrderID)
	require.Equal(t, 2, store.TotalItems(), "two-item line still in cart")
}

func TestRunPaymentTransportFailure(t *testing.T) {
	store := cartWith(t, cart.Dish{ID: "d1", Name: "Margherita", Price: 5.99})
	payments := &paymentServiceMock{ProcessPaymentFunc: func(ctx context.Context, amount float64, paymentMethodID, orderID string) (*payment.Result, error) {
		return nil, errors.New("connection refused")
	}}

	orc := NewOrchestrator(store, acceptingOrderService(), payments, &cardProviderMock{}, &sessionMock{}, 0, testLogger())
	_, err := orc.Run(context.Background(), Request{Method: payment.MethodCard, CardID: "card-1"})

	var perr *PaymentError
	require.ErrorAs(t, err, &perr)
	require.False(t, perr.Declined)
	require.Equal(t, 1, store.TotalItems())
}

func TestRunRejectsConcurrentAttempt(t *testing.T) {
	store := cartWith(t, cart.Dish{ID: "d1", Name: "Margherita", Price: 5.99})

	entered := make(chan struct{})
	release := make(chan struct{})
	var enteredOnce sync.Once
	orders := &orderServiceMock{CreateOrderFunc: func(ctx context.Context, o order.Order) (*order.Order, error) {
		enteredOnce.Do(func() { close(entered) })
		<-release
		created := o
		created.ID = "ord-1"
		return &created, nil
	}}

	orc := NewOrchestrator(store, orders, &paymentServiceMock{}, &cardProviderMock{}, &sessionMock{}, 0, testLogger())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := orc.Run(context.Background(), Request{Method: payment.MethodCash})
		require.NoError(t, err)
	}()

	<-entered
	_, err := orc.Run(context.Background(), Request{Method: payment.MethodCash})
	require.ErrorIs(t, err, ErrCheckoutInFlight)

	close(release)
	wg.Wait()

	// the guard resets once the attempt reaches a terminal state
	require.NoError(t, store.AddItem(cart.Dish{ID: "d2", Name: "Cola", Price: 1.5}, "r1"))
	_, err = orc.Run(context.Background(), Request{Method: payment.MethodCash})
	require.NoError(t, err)
}

func TestRetryAfterFailureStartsFresh(t *testing.T) {
	store := cartWith(t, cart.Dish{ID: "d1", Name: "Margherita", Price: 5.99})

	attempts := 0
	orders := &orderServiceMock{CreateOrderFunc: func(ctx context.Context, o order.Order) (*order.Order, error) {
		attempts++
		if attempts == 1 {
			return nil, errors.New("timeout")
		}
		created := o
		created.ID = "ord-2"
		return &created, nil
	}}

	orc := NewOrchestrator(store, orders, &paymentServiceMock{}, &cardProviderMock{}, &sessionMock{}, 0, testLogger())

	_, err := orc.Run(context.Background(), Request{Method: payment.MethodCash})
	require.Error(t, err)
	require.Equal(t, 1, store.TotalItems())

	res, err := orc.Run(context.Background(), Request{Method: payment.MethodCash})
	require.NoError(t, err)
	require.Equal(t, "ord-2", res.OrderID)
	require.Equal(t, 0, store.TotalItems())
}
