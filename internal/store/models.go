package store

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Tier represents a subscription plan level gating feature limits.
type Tier string

const (
	TierFree     Tier = "free"
	TierScholar  Tier = "scholar"
	TierAchiever Tier = "achiever"
)

// Valid reports whether t is one of the three known tiers.
func (t Tier) Valid() bool {
	switch t {
	case TierFree, TierScholar, TierAchiever:
		return true
	}
	return false
}

// NormalizeTier maps unknown or empty tier values to free.
func NormalizeTier(t Tier) Tier {
	if t.Valid() {
		return t
	}
	return TierFree
}

// User represents a parent account profile record.
type User struct {
	ID                   string    `json:"id"`
	Email                string    `json:"email"`
	Tier                 Tier      `json:"tier"`
	StripeSubscriptionID string    `json:"stripe_subscription_id"`
	StripeCustomerID     string    `json:"stripe_customer_id"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// Child represents a child profile record belonging to a parent user.
type Child struct {
	ID        string    `json:"id"`
	ParentID  string    `json:"parent_id"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	YearLevel int       `json:"year_level"`
	CreatedAt time.Time `json:"created_at"`
}

// QuizResult records a completed quiz for a child.
type QuizResult struct {
	ID             string    `json:"id"`
	ChildID        string    `json:"child_id"`
	SectionID      string    `json:"section_id"`
	TotalQuestions int       `json:"total_questions"`
	CorrectAnswers int       `json:"correct_answers"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewChildID returns a new child record ID of the form "ch_" + ULID.
func NewChildID() string {
	return "ch_" + ulid.Make().String()
}

// NewQuizResultID returns a new quiz result record ID of the form "qz_" + ULID.
func NewQuizResultID() string {
	return "qz_" + ulid.Make().String()
}
