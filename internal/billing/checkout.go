package billing

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/agentsform/studymate-api/internal/apimetrics"
	"github.com/agentsform/studymate-api/internal/auth"
	"github.com/agentsform/studymate-api/internal/store"
	"github.com/rs/zerolog/log"
	stripe "github.com/stripe/stripe-go/v82"
	stripesession "github.com/stripe/stripe-go/v82/checkout/session"
)

const checkoutRequestBodyLimit = 16 * 1024

// CheckoutHandler creates Stripe checkout sessions for plan purchases.
type CheckoutHandler struct {
	cfg                   *Config
	store                 *store.Store
	createCheckoutSession func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

type checkoutRequest struct {
	Plan string `json:"plan"`
}

type checkoutResponse struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// NewCheckoutHandler creates the POST /payments/create-checkout handler.
func NewCheckoutHandler(cfg *Config, st *store.Store) *CheckoutHandler {
	return &CheckoutHandler{
		cfg:                   cfg,
		store:                 st,
		createCheckoutSession: stripesession.New,
	}
}

// ServeHTTP validates the requested plan and requests a subscription-mode
// checkout session from Stripe. Invalid plans are rejected before any
// provider call is made.
func (h *CheckoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, webhookErrorResponse{Error: "method not allowed"})
		return
	}

	userID, ok := auth.UserID(r)
	if !ok {
		writeJSON(w, http.StatusForbidden, webhookErrorResponse{Error: "Authentication required"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, checkoutRequestBodyLimit)
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, webhookErrorResponse{Error: "invalid request body"})
		return
	}

	tier, err := ParsePlan(req.Plan)
	if err != nil {
		apimetrics.CheckoutSessionsTotal.WithLabelValues(req.Plan, "invalid_plan").Inc()
		writeJSON(w, http.StatusBadRequest, webhookErrorResponse{Error: `Invalid plan. Must be "scholar" or "achiever"`})
		return
	}

	session, err := h.createSession(userID, tier)
	if err != nil {
		apimetrics.CheckoutSessionsTotal.WithLabelValues(string(tier), "error").Inc()
		log.Error().Err(err).
			Str("user_id", userID).
			Str("plan", string(tier)).
			Msg("Checkout session creation failed")
		writeJSON(w, http.StatusInternalServerError, webhookErrorResponse{Error: "internal error"})
		return
	}

	apimetrics.CheckoutSessionsTotal.WithLabelValues(string(tier), "success").Inc()
	writeJSON(w, http.StatusOK, checkoutResponse{SessionID: session.ID, URL: session.URL})
}

func (h *CheckoutHandler) createSession(userID string, tier store.Tier) (*stripe.CheckoutSession, error) {
	if strings.TrimSpace(h.cfg.APIKey) == "" {
		return nil, fmt.Errorf("stripe api key not configured")
	}
	priceID := h.cfg.Prices.PriceFor(tier)
	if priceID == "" {
		return nil, fmt.Errorf("no price configured for plan %s", tier)
	}

	// Email prefill is best-effort; a user without a profile record can
	// still check out.
	customerEmail := ""
	if user, err := h.store.GetUser(userID); err == nil && user != nil {
		customerEmail = strings.TrimSpace(user.Email)
	}

	stripe.Key = strings.TrimSpace(h.cfg.APIKey)
	frontend := strings.TrimRight(strings.TrimSpace(h.cfg.FrontendURL), "/")
	metadata := map[string]string{
		"userId": userID,
		"plan":   string(tier),
	}
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		SuccessURL:         stripe.String(frontend + "/dashboard?payment=success"),
		CancelURL:          stripe.String(frontend + "/pricing?payment=cancelled"),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		Metadata: metadata,
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: metadata,
		},
	}
	if customerEmail != "" {
		params.CustomerEmail = stripe.String(customerEmail)
	}

	session, err := h.createCheckoutSession(params)
	if err != nil {
		return nil, err
	}
	if session == nil || strings.TrimSpace(session.URL) == "" {
		return nil, errors.New("stripe returned empty checkout URL")
	}
	return session, nil
}
