package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kamu-delivery/client-go/internal/cart"
	"github.com/kamu-delivery/client-go/internal/checkout"
	"github.com/kamu-delivery/client-go/internal/config"
	"github.com/kamu-delivery/client-go/internal/events"
	httpapi "github.com/kamu-delivery/client-go/internal/http"
	"github.com/kamu-delivery/client-go/internal/services"
	"github.com/kamu-delivery/client-go/internal/tracker"
)

func main() {
	logger := log.New(os.Stdout, "[client-api] ", log.LstdFlags|log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	orders := services.NewOrderClient(cfg.OrderServiceURL)
	payments := services.NewPaymentClient(cfg.PaymentServiceURL)
	cards := services.NewCardsClient(cfg.CardsServiceURL)
	auth := services.NewAuthClient(cfg.AuthServiceURL)

	store := newCartStore(ctx, cfg, auth, logger)

	orchestrator := checkout.NewOrchestrator(store, orders, payments, cards, auth, cfg.DeliveryFee, logger)

	tr := tracker.New()
	if cfg.RabbitURL != "" {
		conn := events.MustDialRabbit(cfg.RabbitURL)
		defer conn.Close()
		if err := events.StartStatusConsumer(ctx, conn, tr, logger); err != nil {
			logger.Fatalf("start status consumer: %v", err)
		}
		logger.Printf("order status consumer started")
	} else {
		logger.Printf("RABBITMQ_URL not set, order status tracking disabled")
	}

	handler := httpapi.NewHandler(store, orchestrator, cards, tr)
	router := httpapi.NewRouter(handler)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("client-api listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Printf("shutdown signal received")
	case err := <-errCh:
		logger.Fatalf("server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown error: %v", err)
	}
}

// newCartStore builds the session cart: Redis-backed when REDIS_ADDR is set,
// falling back to a fresh in-memory cart when the snapshot cannot be loaded.
func newCartStore(ctx context.Context, cfg config.Config, auth *services.AuthClient, logger *log.Logger) *cart.Store {
	if cfg.RedisAddr == "" {
		logger.Printf("REDIS_ADDR not set, cart persistence disabled")
		return cart.New()
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Printf("redis unreachable, cart persistence disabled: %v", err)
		return cart.New()
	}

	// scope the snapshot key to the signed-in customer when a session exists
	customerID := ""
	authCtx, cancelAuth := context.WithTimeout(ctx, 3*time.Second)
	defer cancelAuth()
	if id, err := auth.CustomerID(authCtx); err == nil {
		customerID = id
	} else {
		logger.Printf("no active session at startup: %v", err)
	}

	persister := cart.NewRedisPersister(client, customerID)
	loadCtx, cancelLoad := context.WithTimeout(ctx, 3*time.Second)
	defer cancelLoad()

	store, err := cart.NewPersisted(loadCtx, persister, logger)
	if err != nil {
		logger.Printf("restore cart snapshot: %v", err)
		return cart.New()
	}

	snap := store.Snapshot()
	if snap.TotalItems > 0 {
		logger.Printf("restored cart: %d items from %s", snap.TotalItems, snap.RestaurantID)
	}
	return store
}
