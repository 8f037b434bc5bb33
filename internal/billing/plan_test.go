package billing

import (
	"errors"
	"testing"

	"github.com/agentsform/studymate-api/internal/store"
)

func TestParsePlan(t *testing.T) {
	tests := []struct {
		input   string
		want    store.Tier
		wantErr bool
	}{
		{"scholar", store.TierScholar, false},
		{"achiever", store.TierAchiever, false},
		{" scholar ", store.TierScholar, false},
		{"free", "", true},
		{"premium", "", true},
		{"", "", true},
		{"SCHOLAR", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePlan(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidPlan) {
					t.Fatalf("ParsePlan(%q) err = %v, want ErrInvalidPlan", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePlan(%q): %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParsePlan(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTierForPrice(t *testing.T) {
	prices := PriceConfig{Scholar: "price_scholar", Achiever: "price_achiever"}

	tests := []struct {
		priceID string
		want    store.Tier
	}{
		{"price_achiever", store.TierAchiever},
		{"price_scholar", store.TierScholar},
		{"price_unknown", store.TierScholar},
		{"", store.TierScholar},
	}

	for _, tt := range tests {
		if got := prices.TierForPrice(tt.priceID); got != tt.want {
			t.Errorf("TierForPrice(%q) = %q, want %q", tt.priceID, got, tt.want)
		}
	}
}

func TestTierForPriceUnconfiguredAchiever(t *testing.T) {
	// An empty price ID must not match an empty achiever price.
	prices := PriceConfig{Scholar: "price_scholar"}

	if got := prices.TierForPrice(""); got != store.TierScholar {
		t.Errorf("TierForPrice(\"\") = %q, want %q", got, store.TierScholar)
	}
	if got := prices.TierForPrice("  "); got != store.TierScholar {
		t.Errorf("TierForPrice(whitespace) = %q, want %q", got, store.TierScholar)
	}
}

func TestPriceFor(t *testing.T) {
	prices := PriceConfig{Scholar: "price_s", Achiever: "price_a"}
	if got := prices.PriceFor(store.TierScholar); got != "price_s" {
		t.Errorf("PriceFor(scholar) = %q", got)
	}
	if got := prices.PriceFor(store.TierAchiever); got != "price_a" {
		t.Errorf("PriceFor(achiever) = %q", got)
	}
	if got := prices.PriceFor(store.TierFree); got != "" {
		t.Errorf("PriceFor(free) = %q, want empty", got)
	}
}

func TestLimitsForTier(t *testing.T) {
	tests := []struct {
		tier store.Tier
		want Limits
	}{
		{store.TierFree, Limits{MaxChildren: 2, DailyQuestions: 20, DailyAICalls: 10}},
		{store.TierScholar, Limits{MaxChildren: 5, DailyQuestions: -1, DailyAICalls: -1}},
		{store.TierAchiever, Limits{MaxChildren: 10, DailyQuestions: -1, DailyAICalls: -1}},
		{store.Tier("bogus"), Limits{MaxChildren: 2, DailyQuestions: 20, DailyAICalls: 10}},
	}

	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			if got := LimitsForTier(tt.tier); got != tt.want {
				t.Errorf("LimitsForTier(%q) = %+v, want %+v", tt.tier, got, tt.want)
			}
		})
	}
}
