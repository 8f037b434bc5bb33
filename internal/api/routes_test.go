package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/agentsform/studymate-api/internal/billing"
	"github.com/agentsform/studymate-api/internal/store"
	stripe "github.com/stripe/stripe-go/v82"
)

type stubLister struct{}

func (stubLister) ListCharges(limit int64) ([]*stripe.Charge, error) { return nil, nil }

func (stubLister) ListSubscriptions(limit int64) ([]*stripe.Subscription, error) { return nil, nil }

func (stubLister) ListCustomers(limit int64) ([]*stripe.Customer, error) { return nil, nil }

func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()

	st, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	cfg := &Config{
		DataDir:             t.TempDir(),
		BindAddress:         "127.0.0.1",
		Port:                8080,
		AdminKey:            "test-admin-key",
		FrontendURL:         "https://tutor.example.com",
		StripeWebhookSecret: "whsec_test",
		PriceScholar:        "price_scholar",
		PriceAchiever:       "price_achiever",
	}

	billingCfg := cfg.BillingConfig()
	mux := http.NewServeMux()
	RegisterRoutes(mux, &Deps{
		Config:     cfg,
		Store:      st,
		Reconciler: billing.NewReconciler(st, billingCfg.Prices, cfg.FrontendURL, nil, ""),
		Stripe:     stubLister{},
		Version:    "test",
	})
	return mux
}

func TestRegisterRoutes_AdminEndpointsRequireKey(t *testing.T) {
	mux := newTestMux(t)

	paths := []string{"/admin/stats", "/admin/users", "/admin/children", "/admin/payments", "/status", "/metrics"}
	for _, path := range paths {
		t.Run(strings.TrimPrefix(path, "/"), func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			if rec.Code != http.StatusForbidden {
				t.Fatalf("unauthenticated status = %d, want %d", rec.Code, http.StatusForbidden)
			}

			req = httptest.NewRequest(http.MethodGet, path, nil)
			req.Header.Set("X-Admin-Key", "test-admin-key")
			rec = httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			if rec.Code != http.StatusOK {
				t.Fatalf("authenticated status = %d, want %d", rec.Code, http.StatusOK)
			}
		})
	}
}

func TestRegisterRoutes_PaymentsRequireUserIdentity(t *testing.T) {
	mux := newTestMux(t)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/payments/create-checkout"},
		{http.MethodGet, "/payments/portal"},
		{http.MethodGet, "/payments/status"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(`{"plan":"scholar"}`))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("%s without identity status = %d, want %d", tt.path, rec.Code, http.StatusForbidden)
		}
	}
}

func TestRegisterRoutes_StatusEndpoint(t *testing.T) {
	mux := newTestMux(t)

	req := httptest.NewRequest(http.MethodGet, "/payments/status", nil)
	req.Header.Set("X-User-Id", "u1")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body=%q", rec.Code, http.StatusOK, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"tier":"free"`) {
		t.Fatalf("body = %q, want free tier", rec.Body.String())
	}
}

func TestRegisterRoutes_WebhookRejectsUnsignedPayload(t *testing.T) {
	mux := newTestMux(t)

	req := httptest.NewRequest(http.MethodPost, "/payments/webhook", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestRegisterRoutes_HealthProbes(t *testing.T) {
	mux := newTestMux(t)

	for path, wantBody := range map[string]string{"/healthz": "ok", "/readyz": "ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s status = %d, want %d", path, rec.Code, http.StatusOK)
		}
		if rec.Body.String() != wantBody {
			t.Fatalf("%s body = %q, want %q", path, rec.Body.String(), wantBody)
		}
	}
}
