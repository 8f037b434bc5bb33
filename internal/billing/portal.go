package billing

import (
	"net/http"
	"strings"

	"github.com/agentsform/studymate-api/internal/auth"
	"github.com/agentsform/studymate-api/internal/store"
	"github.com/rs/zerolog/log"
	stripe "github.com/stripe/stripe-go/v82"
	portalsession "github.com/stripe/stripe-go/v82/billingportal/session"
)

// PortalHandler creates Stripe billing-portal sessions for subscribed users.
type PortalHandler struct {
	cfg                 *Config
	store               *store.Store
	createPortalSession func(params *stripe.BillingPortalSessionParams) (*stripe.BillingPortalSession, error)
}

type portalResponse struct {
	URL string `json:"url"`
}

// NewPortalHandler creates the GET /payments/portal handler.
func NewPortalHandler(cfg *Config, st *store.Store) *PortalHandler {
	return &PortalHandler{
		cfg:                 cfg,
		store:               st,
		createPortalSession: portalsession.New,
	}
}

func (h *PortalHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, webhookErrorResponse{Error: "method not allowed"})
		return
	}

	userID, ok := auth.UserID(r)
	if !ok {
		writeJSON(w, http.StatusForbidden, webhookErrorResponse{Error: "Authentication required"})
		return
	}

	user, err := h.store.GetUser(userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Portal: user lookup failed")
		writeJSON(w, http.StatusInternalServerError, webhookErrorResponse{Error: "internal error"})
		return
	}

	customerID := ""
	if user != nil {
		customerID = strings.TrimSpace(user.StripeCustomerID)
	}
	if customerID == "" {
		writeJSON(w, http.StatusBadRequest, webhookErrorResponse{Error: "No subscription found. Please subscribe first."})
		return
	}

	stripe.Key = strings.TrimSpace(h.cfg.APIKey)
	frontend := strings.TrimRight(strings.TrimSpace(h.cfg.FrontendURL), "/")
	session, err := h.createPortalSession(&stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(frontend + "/dashboard"),
	})
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Portal session creation failed")
		writeJSON(w, http.StatusInternalServerError, webhookErrorResponse{Error: "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, portalResponse{URL: session.URL})
}
