package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dukerupert/portfolio/internal/broker"
	"github.com/dukerupert/portfolio/internal/config"
	"github.com/dukerupert/portfolio/internal/email"
	"github.com/dukerupert/portfolio/internal/handler"
	"github.com/dukerupert/portfolio/internal/logging"
	"github.com/dukerupert/portfolio/internal/metrics"
	"github.com/dukerupert/portfolio/internal/payment"
	"github.com/dukerupert/portfolio/internal/server"
	"github.com/dukerupert/portfolio/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

// notifierCloser is a MessageNotifier that holds a connection.
type notifierCloser interface {
	handler.MessageNotifier
	io.Closer
}

type nopCloser struct{ handler.MessageNotifier }

func (nopCloser) Close() error { return nil }

func newNotifier(cfg *config.Config, logger *slog.Logger) (notifierCloser, error) {
	switch cfg.Notifier {
	case config.NotifierAMQP:
		n, err := broker.Dial(cfg.AMQPURL, cfg.AMQPExchange, logger.With("component", "broker"))
		if err != nil {
			return nil, fmt.Errorf("connect notifier: %w", err)
		}
		return n, nil
	default:
		client := email.NewClient(cfg.PostmarkToken, cfg.EmailFrom, cfg.EmailRecipient)
		if !client.Configured() {
			logger.Warn("email not configured, contact form will fail", "notifier", cfg.Notifier)
		}
		return nopCloser{client}, nil
	}
}

func runServer() error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := logging.Setup(cfg.LogLevel)

	st, err := store.Open(cfg.StoreDriver, cfg.SQLitePath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	if err := store.Seed(context.Background(), st); err != nil {
		return fmt.Errorf("seed store: %w", err)
	}

	payments := payment.NewStripeProvider(payment.Config{
		SecretKey: cfg.StripeSecretKey,
		Currency:  cfg.PaymentCurrency,
	})
	if !payments.Configured() {
		logger.Warn("STRIPE_SECRET_KEY not set, payments will not work")
	}

	notifier, err := newNotifier(cfg, logger)
	if err != nil {
		return err
	}
	defer notifier.Close()

	srv := server.New(server.Config{
		Store:          st,
		Payments:       payments,
		Notifier:       notifier,
		Metrics:        metrics.New(),
		VerifyPayment:  cfg.PaymentVerifyConfirm,
		AllowedOrigins: cfg.AllowedOrigins(),
	}, logger)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("portfolio server starting", "addr", httpServer.Addr, "store", cfg.StoreDriver, "notifier", cfg.Notifier, "version", Version)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-quit:
	}

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
