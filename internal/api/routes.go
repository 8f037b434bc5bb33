package api

import (
	"net/http"
	"time"

	"github.com/agentsform/studymate-api/internal/admin"
	"github.com/agentsform/studymate-api/internal/billing"
	"github.com/agentsform/studymate-api/internal/store"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps holds shared dependencies injected into HTTP handlers.
type Deps struct {
	Config     *Config
	Store      *store.Store
	Reconciler *billing.Reconciler
	Stripe     admin.StripeLister
	Version    string
}

// RegisterRoutes wires all HTTP handlers onto the given ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps *Deps) {
	adminAuth := func(next http.Handler) http.Handler {
		return admin.KeyMiddleware(deps.Config.AdminKey, next)
	}

	// Health / readiness are unauthenticated liveness/readiness probes.
	mux.HandleFunc("/healthz", admin.HandleHealthz)
	mux.HandleFunc("/readyz", admin.HandleReadyz(deps.Store))

	// Status and metrics are private.
	mux.Handle("/status", adminAuth(http.HandlerFunc(admin.HandleStatus(deps.Store, deps.Version))))
	mux.Handle("/metrics", adminAuth(promhttp.Handler()))

	// Stripe webhook (signature-authenticated)
	billingCfg := deps.Config.BillingConfig()
	webhookHandler := billing.NewWebhookHandler(billingCfg.WebhookSecret, deps.Reconciler)
	webhookLimiter := NewRateLimiter(120, time.Minute)
	mux.Handle("/payments/webhook", webhookLimiter.Middleware(webhookHandler))

	// Payments API (gateway-resolved user identity)
	mux.Handle("/payments/create-checkout", billing.NewCheckoutHandler(billingCfg, deps.Store))
	mux.Handle("/payments/portal", billing.NewPortalHandler(billingCfg, deps.Store))
	mux.Handle("/payments/status", billing.NewStatusHandler(deps.Store))

	// Admin API (key-authenticated)
	mux.Handle("/admin/stats", adminAuth(admin.HandleStats(deps.Store)))
	mux.Handle("/admin/users", adminAuth(admin.HandleListUsers(deps.Store)))
	mux.Handle("/admin/children", adminAuth(admin.HandleListChildren(deps.Store)))

	stripeLister := deps.Stripe
	if stripeLister == nil {
		stripeLister = admin.NewAPILister(deps.Config.StripeAPIKey)
	}
	mux.Handle("/admin/payments", adminAuth(admin.HandlePayments(stripeLister)))
}
