package server

import (
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dukerupert/portfolio/internal/handler"
	"github.com/dukerupert/portfolio/internal/metrics"
	"github.com/dukerupert/portfolio/internal/middleware"
	"github.com/dukerupert/portfolio/internal/store"
)

type Config struct {
	Store    store.Store
	Payments handler.ChargeIntentProvider
	Notifier handler.MessageNotifier
	Metrics  *metrics.Metrics

	// VerifyPayment makes subscription confirm check the payment intent.
	VerifyPayment  bool
	AllowedOrigins []string
}

type Server struct {
	contentH      *handler.ContentHandler
	accountH      *handler.AccountHandler
	subscriptionH *handler.SubscriptionHandler
	paymentH      *handler.PaymentHandler
	contactH      *handler.ContactHandler
	metrics       *metrics.Metrics
	corsOrigins   []string
	logger        *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Server {
	m := cfg.Metrics
	if m == nil {
		m = metrics.New()
	}
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	return &Server{
		contentH:      handler.NewContentHandler(cfg.Store, logger.With("component", "content")),
		accountH:      handler.NewAccountHandler(cfg.Store, m, logger.With("component", "account")),
		subscriptionH: handler.NewSubscriptionHandler(cfg.Store, cfg.Payments, cfg.VerifyPayment, m, logger.With("component", "subscription")),
		paymentH:      handler.NewPaymentHandler(cfg.Payments, m, logger.With("component", "payment")),
		contactH:      handler.NewContactHandler(cfg.Notifier, m, logger.With("component", "contact")),
		metrics:       m,
		corsOrigins:   origins,
		logger:        logger,
	}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handler.Health)
	mux.Handle("GET /metrics", s.metrics.Handler())

	// Content
	mux.HandleFunc("GET /content", s.contentH.List)
	mux.HandleFunc("GET /content/{id}", s.contentH.Get)
	mux.HandleFunc("GET /content/tier/{level}", s.contentH.ListByTier)
	mux.HandleFunc("GET /content/category/{category}", s.contentH.ListByCategory)

	// Accounts and subscriptions
	mux.HandleFunc("POST /register", s.accountH.Register)
	mux.HandleFunc("GET /accounts/{id}/subscription", s.accountH.Subscription)
	mux.HandleFunc("POST /subscribe", s.subscriptionH.Subscribe)
	mux.HandleFunc("POST /subscription/confirm", s.subscriptionH.Confirm)

	// Collaborators
	mux.HandleFunc("POST /payment-intent", s.paymentH.CreateIntent)
	mux.HandleFunc("POST /contact", s.contactH.Submit)

	// Recoverer turns a panic into a 500 that metrics and the request log
	// still see; metrics reads the pattern the mux matched.
	var h http.Handler = chimw.Recoverer(mux)
	h = s.metrics.Middleware(h)
	h = middleware.RequestLogger(s.logger.With("component", "http"))(h)
	h = middleware.RequestID(h)
	h = cors.Handler(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	})(h)
	return h
}
