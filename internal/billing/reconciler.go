package billing

import (
	"context"
	"fmt"
	"strings"

	"github.com/agentsform/studymate-api/internal/apimetrics"
	"github.com/agentsform/studymate-api/internal/email"
	"github.com/agentsform/studymate-api/internal/store"
	"github.com/rs/zerolog/log"
)

// Reconciler applies webhook-driven tier state transitions to user records.
type Reconciler struct {
	store       *store.Store
	prices      PriceConfig
	frontendURL string
	emailSender email.Sender // nil disables confirmation emails
	emailFrom   string
}

// NewReconciler creates a Reconciler.
func NewReconciler(st *store.Store, prices PriceConfig, frontendURL string, emailSender email.Sender, emailFrom string) *Reconciler {
	return &Reconciler{
		store:       st,
		prices:      prices,
		frontendURL: strings.TrimRight(strings.TrimSpace(frontendURL), "/"),
		emailSender: emailSender,
		emailFrom:   strings.TrimSpace(emailFrom),
	}
}

// Reconcile writes the new tier state for a user: one unconditional write
// setting tier, subscription ID, and the updated timestamp. Last write wins;
// there is no ordering guarantee across concurrent webhook deliveries for the
// same user, and a repeated delivery of the same event is naturally
// idempotent because it repeats the same write.
func (rc *Reconciler) Reconcile(ctx context.Context, userID string, tier store.Tier, subscriptionID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("reconcile: missing user id")
	}
	if !tier.Valid() {
		return fmt.Errorf("reconcile: unknown tier %q", tier)
	}

	if err := rc.store.UpdateUserTier(userID, tier, subscriptionID); err != nil {
		apimetrics.ReconcileTotal.WithLabelValues(string(tier), "error").Inc()
		return fmt.Errorf("reconcile user %s to tier %s: %w", userID, tier, err)
	}
	apimetrics.ReconcileTotal.WithLabelValues(string(tier), "success").Inc()

	log.Info().
		Str("user_id", userID).
		Str("tier", string(tier)).
		Str("subscription_id", subscriptionID).
		Msg("User tier reconciled")

	if tier != store.TierFree {
		rc.sendUpgradeEmail(ctx, userID, tier)
	}
	return nil
}

// sendUpgradeEmail sends a best-effort plan confirmation email. Failures are
// logged and never fail the reconciliation.
func (rc *Reconciler) sendUpgradeEmail(ctx context.Context, userID string, tier store.Tier) {
	if rc.emailSender == nil || rc.emailFrom == "" {
		return
	}
	user, err := rc.store.GetUser(userID)
	if err != nil || user == nil || strings.TrimSpace(user.Email) == "" {
		return
	}

	htmlBody, textBody, err := email.RenderTierUpgradeEmail(email.TierUpgradeData{
		PlanName:     strings.ToUpper(string(tier)[:1]) + string(tier)[1:],
		DashboardURL: rc.frontendURL + "/dashboard",
	})
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to render plan confirmation email")
		return
	}
	if err := rc.emailSender.Send(ctx, email.Message{
		From:    rc.emailFrom,
		To:      user.Email,
		Subject: "Your StudyMate plan is active",
		HTML:    htmlBody,
		Text:    textBody,
	}); err != nil {
		log.Error().Err(err).
			Str("user_id", userID).
			Str("email", user.Email).
			Msg("Failed to send plan confirmation email")
	}
}

// HandleCheckoutCompleted reconciles a user to the plan embedded in the
// checkout session metadata. Sessions without the expected metadata are
// acknowledged without a write, matching the provider's contract that a 2xx
// stops redelivery.
func (rc *Reconciler) HandleCheckoutCompleted(ctx context.Context, session CheckoutSession) error {
	userID := strings.TrimSpace(session.Metadata["userId"])
	plan := strings.TrimSpace(session.Metadata["plan"])
	if userID == "" || plan == "" {
		log.Warn().
			Str("session_id", session.ID).
			Msg("checkout.session.completed missing userId/plan metadata, ignoring")
		return nil
	}

	tier, err := ParsePlan(plan)
	if err != nil {
		log.Warn().
			Str("session_id", session.ID).
			Str("plan", plan).
			Msg("checkout.session.completed carries unknown plan, ignoring")
		return nil
	}

	if customerID := strings.TrimSpace(session.Customer); customerID != "" {
		if err := rc.store.SetUserBillingCustomer(userID, customerID); err != nil {
			return fmt.Errorf("record billing customer for user %s: %w", userID, err)
		}
	}

	return rc.Reconcile(ctx, userID, tier, strings.TrimSpace(session.Subscription))
}

// HandleSubscriptionUpdated maps a subscription status change onto a tier
// transition. Active subscriptions resolve their tier from the first line
// item's price; canceled and unpaid subscriptions drop the user to free.
// Other statuses are acknowledged without a write.
func (rc *Reconciler) HandleSubscriptionUpdated(ctx context.Context, sub Subscription) error {
	userID := strings.TrimSpace(sub.Metadata["userId"])
	if userID == "" {
		log.Warn().
			Str("subscription_id", sub.ID).
			Msg("subscription.updated missing userId metadata, ignoring")
		return nil
	}

	switch sub.Status {
	case "active":
		tier := rc.prices.TierForPrice(sub.FirstPriceID())
		return rc.Reconcile(ctx, userID, tier, strings.TrimSpace(sub.ID))
	case "canceled", "unpaid":
		return rc.Reconcile(ctx, userID, store.TierFree, "")
	default:
		log.Info().
			Str("subscription_id", sub.ID).
			Str("status", sub.Status).
			Msg("subscription.updated with unhandled status, ignoring")
		return nil
	}
}

// HandleSubscriptionDeleted drops the user to the free tier.
func (rc *Reconciler) HandleSubscriptionDeleted(ctx context.Context, sub Subscription) error {
	userID := strings.TrimSpace(sub.Metadata["userId"])
	if userID == "" {
		log.Warn().
			Str("subscription_id", sub.ID).
			Msg("subscription.deleted missing userId metadata, ignoring")
		return nil
	}
	return rc.Reconcile(ctx, userID, store.TierFree, "")
}
