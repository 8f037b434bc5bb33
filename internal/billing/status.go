package billing

import (
	"net/http"
	"strings"

	"github.com/agentsform/studymate-api/internal/auth"
	"github.com/agentsform/studymate-api/internal/store"
	"github.com/rs/zerolog/log"
)

type statusResponse struct {
	Tier           store.Tier `json:"tier"`
	SubscriptionID *string    `json:"subscriptionId"`
	Limits         Limits     `json:"limits"`
}

// NewStatusHandler creates the GET /payments/status handler. A user without
// a profile record, or with an unset tier, reports the free tier.
func NewStatusHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeJSON(w, http.StatusMethodNotAllowed, webhookErrorResponse{Error: "method not allowed"})
			return
		}

		userID, ok := auth.UserID(r)
		if !ok {
			writeJSON(w, http.StatusForbidden, webhookErrorResponse{Error: "Authentication required"})
			return
		}

		user, err := st.GetUser(userID)
		if err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("Status: user lookup failed")
			writeJSON(w, http.StatusInternalServerError, webhookErrorResponse{Error: "internal error"})
			return
		}

		tier := store.TierFree
		var subscriptionID *string
		if user != nil {
			tier = store.NormalizeTier(user.Tier)
			if subID := strings.TrimSpace(user.StripeSubscriptionID); subID != "" {
				subscriptionID = &subID
			}
		}

		writeJSON(w, http.StatusOK, statusResponse{
			Tier:           tier,
			SubscriptionID: subscriptionID,
			Limits:         LimitsForTier(tier),
		})
	}
}
