package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddlewareRecordsPattern(t *testing.T) {
	m := New()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /content/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	h := m.Middleware(mux)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/content/42", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/content/43", nil))

	if got := testutil.ToFloat64(m.requestTotal.WithLabelValues("GET", "/content/{id}", "404")); got != 2 {
		t.Errorf("requests_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.requestErrors.WithLabelValues("GET", "/content/{id}", "client_error")); got != 2 {
		t.Errorf("request_errors_total = %v, want 2", got)
	}
}

func TestDomainCounters(t *testing.T) {
	m := New()

	m.AccountRegistered()
	m.SubscriptionCreated("basic")
	m.SubscriptionCreated("basic")
	m.SubscriptionConfirmed("enterprise")
	m.PaymentIntent("professional", nil)
	m.PaymentIntent("professional", errors.New("declined"))
	m.ContactMessage(nil)

	if got := testutil.ToFloat64(m.accountsRegistered); got != 1 {
		t.Errorf("accounts_registered_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.subscriptionsCreated.WithLabelValues("basic")); got != 2 {
		t.Errorf("subscriptions_created_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.subscriptionsConfirmed.WithLabelValues("enterprise")); got != 1 {
		t.Errorf("subscriptions_confirmed_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.paymentIntents.WithLabelValues("professional", "error")); got != 1 {
		t.Errorf("payment_intents_total{error} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.contactMessages.WithLabelValues("ok")); got != 1 {
		t.Errorf("contact_messages_total{ok} = %v, want 1", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.AccountRegistered()
	m.SubscriptionCreated("basic")
	m.PaymentIntent("basic", nil)
	m.ContactMessage(nil)

	called := false
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	if !called {
		t.Error("expected wrapped handler to run")
	}
}

func TestHandlerExposition(t *testing.T) {
	m := New()
	m.SubscriptionCreated("professional")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `portfolio_subscriptions_created_total{plan="professional"} 1`) {
		t.Errorf("exposition missing subscription counter:\n%s", rec.Body.String())
	}
}

func TestNormalizeRoute(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "/"},
		{"/", "/"},
		{"/accounts/12/subscription", "/accounts/:id/subscription"},
		{"/a/b/c/d/e/f/g", "/a/b/c/d/e"},
		{"/x/" + strings.Repeat("t", 40), "/x/:token"},
	}
	for _, tt := range tests {
		if got := normalizeRoute(tt.in); got != tt.want {
			t.Errorf("normalizeRoute(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
