package apimetrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UsersByTier tracks the number of users on each subscription tier.
	UsersByTier = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "studymate",
		Subsystem: "api",
		Name:      "users_by_tier",
		Help:      "Number of users by subscription tier.",
	}, []string{"tier"})

	// WebhookRequestsTotal counts Stripe webhook requests by event type and status.
	WebhookRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "studymate",
		Subsystem: "api",
		Name:      "webhook_requests_total",
		Help:      "Total Stripe webhook requests by event type and HTTP status.",
	}, []string{"event_type", "status"})

	// WebhookDuration tracks Stripe webhook processing latency.
	WebhookDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "studymate",
		Subsystem: "api",
		Name:      "webhook_duration_seconds",
		Help:      "Stripe webhook processing duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"event_type"})

	// ReconcileTotal counts tier reconciliations by target tier and outcome.
	ReconcileTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "studymate",
		Subsystem: "api",
		Name:      "reconcile_total",
		Help:      "Total tier reconciliations by target tier and outcome.",
	}, []string{"tier", "outcome"})

	// RateLimitedTotal counts requests rejected by the rate limiter, by path.
	RateLimitedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "studymate",
		Subsystem: "api",
		Name:      "rate_limited_total",
		Help:      "Total requests rejected by the rate limiter, by request path.",
	}, []string{"path"})

	// CheckoutSessionsTotal counts checkout session creations by plan and outcome.
	CheckoutSessionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "studymate",
		Subsystem: "api",
		Name:      "checkout_sessions_total",
		Help:      "Total Stripe checkout session creations by plan and outcome.",
	}, []string{"plan", "outcome"})
)
