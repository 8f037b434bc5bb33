package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/agentsform/studymate-api/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func testPrices() PriceConfig {
	return PriceConfig{Scholar: "price_scholar", Achiever: "price_achiever"}
}

func newTestReconciler(t *testing.T, st *store.Store) *Reconciler {
	t.Helper()
	return NewReconciler(st, testPrices(), "https://tutor.example.com", nil, "")
}

func TestReconcileRoundTrip(t *testing.T) {
	st := newTestStore(t)
	rc := newTestReconciler(t, st)
	ctx := context.Background()

	if err := st.CreateUser(&store.User{ID: "u1", Email: "u1@example.com"}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	for _, tier := range []store.Tier{store.TierFree, store.TierScholar, store.TierAchiever} {
		for _, subID := range []string{"", "sub_123"} {
			if err := rc.Reconcile(ctx, "u1", tier, subID); err != nil {
				t.Fatalf("Reconcile(%s, %q): %v", tier, subID, err)
			}

			user, err := st.GetUser("u1")
			if err != nil {
				t.Fatalf("GetUser: %v", err)
			}
			if user.Tier != tier {
				t.Errorf("tier = %q, want %q", user.Tier, tier)
			}
			if user.StripeSubscriptionID != subID {
				t.Errorf("subscription id = %q, want %q", user.StripeSubscriptionID, subID)
			}
		}
	}
}

func TestReconcileRejectsUnknownTier(t *testing.T) {
	st := newTestStore(t)
	rc := newTestReconciler(t, st)

	if err := rc.Reconcile(context.Background(), "u1", store.Tier("premium"), ""); err == nil {
		t.Fatal("expected error for unknown tier")
	}
	if err := rc.Reconcile(context.Background(), "", store.TierFree, ""); err == nil {
		t.Fatal("expected error for missing user id")
	}
}

func TestHandleCheckoutCompleted(t *testing.T) {
	st := newTestStore(t)
	rc := newTestReconciler(t, st)

	session := CheckoutSession{
		ID:           "cs_test_1",
		Customer:     "cus_abc",
		Subscription: "sub_abc",
		Metadata:     map[string]string{"userId": "u1", "plan": "scholar"},
	}
	if err := rc.HandleCheckoutCompleted(context.Background(), session); err != nil {
		t.Fatalf("HandleCheckoutCompleted: %v", err)
	}

	user, err := st.GetUser("u1")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if user == nil {
		t.Fatal("user record should exist after checkout")
	}
	if user.Tier != store.TierScholar {
		t.Errorf("tier = %q, want scholar", user.Tier)
	}
	if user.StripeSubscriptionID != "sub_abc" {
		t.Errorf("subscription id = %q, want sub_abc", user.StripeSubscriptionID)
	}
	if user.StripeCustomerID != "cus_abc" {
		t.Errorf("customer id = %q, want cus_abc", user.StripeCustomerID)
	}
}

func TestHandleCheckoutCompletedMissingMetadataIsNoop(t *testing.T) {
	st := newTestStore(t)
	rc := newTestReconciler(t, st)

	for _, session := range []CheckoutSession{
		{ID: "cs_1", Metadata: map[string]string{"plan": "scholar"}},
		{ID: "cs_2", Metadata: map[string]string{"userId": "u1"}},
		{ID: "cs_3", Metadata: map[string]string{"userId": "u1", "plan": "premium"}},
		{ID: "cs_4"},
	} {
		if err := rc.HandleCheckoutCompleted(context.Background(), session); err != nil {
			t.Fatalf("session %s: %v", session.ID, err)
		}
	}

	user, err := st.GetUser("u1")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if user != nil {
		t.Fatalf("no user record should be written, got %+v", user)
	}
}

func subscriptionEvent(t *testing.T, userID, status, priceID string) Subscription {
	t.Helper()
	items := "[]"
	if priceID != "" {
		items = fmt.Sprintf(`[{"price": {"id": %q}}]`, priceID)
	}
	raw := fmt.Sprintf(`{
		"id": "sub_123",
		"customer": "cus_abc",
		"status": %q,
		"items": {"data": %s},
		"metadata": {"userId": %q}
	}`, status, items, userID)

	var sub Subscription
	if err := json.Unmarshal([]byte(raw), &sub); err != nil {
		t.Fatalf("unmarshal subscription fixture: %v", err)
	}
	return sub
}

func TestHandleSubscriptionUpdatedActive(t *testing.T) {
	tests := []struct {
		name    string
		priceID string
		want    store.Tier
	}{
		{"achiever price", "price_achiever", store.TierAchiever},
		{"scholar price", "price_scholar", store.TierScholar},
		{"unknown price defaults to scholar", "price_other", store.TierScholar},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newTestStore(t)
			rc := newTestReconciler(t, st)

			if err := rc.HandleSubscriptionUpdated(context.Background(), subscriptionEvent(t, "u1", "active", tt.priceID)); err != nil {
				t.Fatalf("HandleSubscriptionUpdated: %v", err)
			}

			user, err := st.GetUser("u1")
			if err != nil {
				t.Fatalf("GetUser: %v", err)
			}
			if user.Tier != tt.want {
				t.Errorf("tier = %q, want %q", user.Tier, tt.want)
			}
			if user.StripeSubscriptionID != "sub_123" {
				t.Errorf("subscription id = %q, want sub_123", user.StripeSubscriptionID)
			}
		})
	}
}

func TestHandleSubscriptionUpdatedNoLineItems(t *testing.T) {
	// An active event with no line items must resolve to scholar even when
	// the achiever price is unconfigured; the empty price ID must not match
	// the empty achiever price and grant the higher tier.
	st := newTestStore(t)
	rc := NewReconciler(st, PriceConfig{Scholar: "price_scholar"}, "https://tutor.example.com", nil, "")

	if err := rc.HandleSubscriptionUpdated(context.Background(), subscriptionEvent(t, "u1", "active", "")); err != nil {
		t.Fatalf("HandleSubscriptionUpdated: %v", err)
	}

	user, err := st.GetUser("u1")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if user.Tier != store.TierScholar {
		t.Errorf("tier = %q, want %q", user.Tier, store.TierScholar)
	}
}

func TestHandleSubscriptionUpdatedLapsed(t *testing.T) {
	// Canceled and unpaid always drop to free with no subscription,
	// regardless of the price on the event.
	for _, status := range []string{"canceled", "unpaid"} {
		t.Run(status, func(t *testing.T) {
			st := newTestStore(t)
			rc := newTestReconciler(t, st)

			if err := rc.Reconcile(context.Background(), "u1", store.TierAchiever, "sub_123"); err != nil {
				t.Fatalf("seed reconcile: %v", err)
			}
			if err := rc.HandleSubscriptionUpdated(context.Background(), subscriptionEvent(t, "u1", status, "price_achiever")); err != nil {
				t.Fatalf("HandleSubscriptionUpdated: %v", err)
			}

			user, err := st.GetUser("u1")
			if err != nil {
				t.Fatalf("GetUser: %v", err)
			}
			if user.Tier != store.TierFree {
				t.Errorf("tier = %q, want free", user.Tier)
			}
			if user.StripeSubscriptionID != "" {
				t.Errorf("subscription id = %q, want empty", user.StripeSubscriptionID)
			}
		})
	}
}

func TestHandleSubscriptionUpdatedOtherStatusIsNoop(t *testing.T) {
	st := newTestStore(t)
	rc := newTestReconciler(t, st)

	if err := rc.Reconcile(context.Background(), "u1", store.TierScholar, "sub_123"); err != nil {
		t.Fatalf("seed reconcile: %v", err)
	}
	for _, status := range []string{"past_due", "trialing", "incomplete", ""} {
		if err := rc.HandleSubscriptionUpdated(context.Background(), subscriptionEvent(t, "u1", status, "price_scholar")); err != nil {
			t.Fatalf("status %q: %v", status, err)
		}
	}

	user, err := st.GetUser("u1")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if user.Tier != store.TierScholar || user.StripeSubscriptionID != "sub_123" {
		t.Errorf("tier state changed on unhandled status: %+v", user)
	}
}

func TestHandleSubscriptionDeleted(t *testing.T) {
	st := newTestStore(t)
	rc := newTestReconciler(t, st)

	if err := rc.Reconcile(context.Background(), "u1", store.TierAchiever, "sub_123"); err != nil {
		t.Fatalf("seed reconcile: %v", err)
	}
	if err := rc.HandleSubscriptionDeleted(context.Background(), subscriptionEvent(t, "u1", "canceled", "")); err != nil {
		t.Fatalf("HandleSubscriptionDeleted: %v", err)
	}

	user, err := st.GetUser("u1")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if user.Tier != store.TierFree || user.StripeSubscriptionID != "" {
		t.Errorf("expected free tier with no subscription, got %+v", user)
	}
}

func TestHandleSubscriptionDeletedMissingUserIsNoop(t *testing.T) {
	st := newTestStore(t)
	rc := newTestReconciler(t, st)

	sub := Subscription{ID: "sub_123", Status: "canceled"}
	if err := rc.HandleSubscriptionDeleted(context.Background(), sub); err != nil {
		t.Fatalf("HandleSubscriptionDeleted: %v", err)
	}
}
