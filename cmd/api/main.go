// Storefront API - order creation and payment reconciliation for the
// My Primitive Dolls WooCommerce shop.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dolls-storefront/internal/checkout"
	"dolls-storefront/internal/config"
	"dolls-storefront/internal/customer"
	"dolls-storefront/internal/handler"
	"dolls-storefront/internal/middleware"
	"dolls-storefront/internal/orders"
	"dolls-storefront/internal/payment"
	"dolls-storefront/internal/store"
	"dolls-storefront/internal/webhook"
	"dolls-storefront/internal/woocommerce"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Initialize structured logger
	logger := initLogger()

	// Load configuration
	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger.Info("configuration loaded",
		slog.String("environment", cfg.Environment),
		slog.String("store_url", cfg.Secrets.StoreURL),
		slog.String("currency", cfg.Currency),
	)

	// Connect to the local account/ledger database
	db, err := store.Connect(ctx, cfg.Secrets.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	// WooCommerce REST client
	commerce, err := woocommerce.New(woocommerce.Config{
		StoreURL:       cfg.Secrets.StoreURL,
		ConsumerKey:    cfg.Secrets.ConsumerKey,
		ConsumerSecret: cfg.Secrets.ConsumerSecret,
	})
	if err != nil {
		return fmt.Errorf("creating commerce client: %w", err)
	}

	// Payment gateway
	gateway, err := payment.NewStripe(payment.StripeConfig{
		SecretKey:     cfg.Secrets.StripeSecretKey,
		WebhookSecret: cfg.Secrets.StripeWebhookKey,
	})
	if err != nil {
		return fmt.Errorf("creating payment gateway: %w", err)
	}

	// Domain services
	resolver := customer.New(commerce, db, logger)
	orchestrator := checkout.New(commerce, gateway, resolver, logger, cfg.BaseURL, cfg.Currency)
	history := orders.NewHistory(commerce, logger)
	webhooks := webhook.NewHandler(gateway, commerce, resolver, db, db, logger)

	// HTTP surface
	h := handler.New(orchestrator, gateway, history, db, webhooks, db, logger)
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	// Apply middleware chain: recovery → request id → logging → handler
	// Recovery must be outermost to catch panics from logging middleware
	httpHandler := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logging(logger),
	)(mux)

	// Create HTTP server with timeouts
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      httpHandler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Channel for shutdown signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Channel for server errors
	serverErr := make(chan error, 1)

	// Start server in goroutine
	go func() {
		logger.Info("server starting",
			slog.String("port", cfg.Port),
			slog.String("addr", server.Addr),
		)
		serverErr <- server.ListenAndServe()
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-serverErr:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-shutdown:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		// Give outstanding requests time to complete
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			// Force close if graceful shutdown fails
			server.Close()
			return fmt.Errorf("shutdown error: %w", err)
		}
	}

	logger.Info("server stopped")
	return nil
}

// initLogger creates a structured logger configured for the environment.
// Production uses JSON format for GCP Cloud Logging compatibility.
// Development uses text format for readability.
func initLogger() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
		// Add source location in debug mode
		AddSource: level == slog.LevelDebug,
	}

	// JSON for production (Cloud Logging compatible), text for development
	if os.Getenv("ENVIRONMENT") == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
