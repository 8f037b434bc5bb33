package billing

import (
	"errors"
	"strings"

	"github.com/agentsform/studymate-api/internal/store"
)

// ErrInvalidPlan is returned when a checkout is requested for a plan that is
// not purchasable (anything other than scholar or achiever).
var ErrInvalidPlan = errors.New(`invalid plan. Must be "scholar" or "achiever"`)

// PriceConfig maps the two purchasable plans to their Stripe price IDs.
type PriceConfig struct {
	Scholar  string
	Achiever string
}

// PriceFor returns the Stripe price ID for a purchasable tier, or "" for free
// or unknown tiers.
func (p PriceConfig) PriceFor(tier store.Tier) string {
	switch tier {
	case store.TierScholar:
		return p.Scholar
	case store.TierAchiever:
		return p.Achiever
	}
	return ""
}

// TierForPrice resolves a subscription line-item price ID to a paid tier.
// This is a closed two-tier mapping: the achiever price yields achiever,
// anything else yields scholar. An empty price ID never matches, even when
// the achiever price is itself unconfigured.
func (p PriceConfig) TierForPrice(priceID string) store.Tier {
	id := strings.TrimSpace(priceID)
	if id != "" && id == p.Achiever {
		return store.TierAchiever
	}
	return store.TierScholar
}

// ParsePlan validates a requested checkout plan. Only the two paid tiers are
// purchasable; anything else fails with ErrInvalidPlan.
func ParsePlan(plan string) (store.Tier, error) {
	switch store.Tier(strings.TrimSpace(plan)) {
	case store.TierScholar:
		return store.TierScholar, nil
	case store.TierAchiever:
		return store.TierAchiever, nil
	}
	return "", ErrInvalidPlan
}

// Limits describes the feature allowances for a tier. -1 denotes unlimited.
type Limits struct {
	MaxChildren    int `json:"maxChildren"`
	DailyQuestions int `json:"dailyQuestions"`
	DailyAICalls   int `json:"dailyAiCalls"`
}

var tierLimits = map[store.Tier]Limits{
	store.TierFree:     {MaxChildren: 2, DailyQuestions: 20, DailyAICalls: 10},
	store.TierScholar:  {MaxChildren: 5, DailyQuestions: -1, DailyAICalls: -1},
	store.TierAchiever: {MaxChildren: 10, DailyQuestions: -1, DailyAICalls: -1},
}

// LimitsForTier returns the static limits for a tier. Unknown tiers get the
// free limits.
func LimitsForTier(tier store.Tier) Limits {
	if l, ok := tierLimits[tier]; ok {
		return l
	}
	return tierLimits[store.TierFree]
}
