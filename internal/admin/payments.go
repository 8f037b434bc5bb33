package admin

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/charge"
	"github.com/stripe/stripe-go/v82/customer"
	"github.com/stripe/stripe-go/v82/subscription"
)

const stripeListLimit = 100

// StripeLister fetches billing data from Stripe for the admin dashboard.
type StripeLister interface {
	ListCharges(limit int64) ([]*stripe.Charge, error)
	ListSubscriptions(limit int64) ([]*stripe.Subscription, error)
	ListCustomers(limit int64) ([]*stripe.Customer, error)
}

// APILister is the production StripeLister backed by the Stripe API.
type APILister struct {
	apiKey string
}

// NewAPILister creates a StripeLister using the given secret key.
func NewAPILister(apiKey string) *APILister {
	return &APILister{apiKey: strings.TrimSpace(apiKey)}
}

func (l *APILister) ListCharges(limit int64) ([]*stripe.Charge, error) {
	stripe.Key = l.apiKey
	params := &stripe.ChargeListParams{}
	params.Limit = stripe.Int64(limit)
	iter := charge.List(params)

	var charges []*stripe.Charge
	for iter.Next() {
		charges = append(charges, iter.Charge())
	}
	return charges, iter.Err()
}

func (l *APILister) ListSubscriptions(limit int64) ([]*stripe.Subscription, error) {
	stripe.Key = l.apiKey
	params := &stripe.SubscriptionListParams{Status: stripe.String("all")}
	params.Limit = stripe.Int64(limit)
	iter := subscription.List(params)

	var subs []*stripe.Subscription
	for iter.Next() {
		subs = append(subs, iter.Subscription())
	}
	return subs, iter.Err()
}

func (l *APILister) ListCustomers(limit int64) ([]*stripe.Customer, error) {
	stripe.Key = l.apiKey
	params := &stripe.CustomerListParams{}
	params.Limit = stripe.Int64(limit)
	iter := customer.List(params)

	var customers []*stripe.Customer
	for iter.Next() {
		customers = append(customers, iter.Customer())
	}
	return customers, iter.Err()
}

type paymentSummary struct {
	ID            string  `json:"id"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	Status        string  `json:"status"`
	CustomerID    string  `json:"customerId"`
	CustomerEmail *string `json:"customerEmail"`
	Description   string  `json:"description"`
	Created       string  `json:"created"`
	ReceiptURL    string  `json:"receiptUrl"`
}

type subscriptionSummary struct {
	ID                 string  `json:"id"`
	Status             string  `json:"status"`
	CustomerID         string  `json:"customerId"`
	CustomerEmail      *string `json:"customerEmail"`
	Plan               string  `json:"plan"`
	Amount             float64 `json:"amount"`
	Currency           string  `json:"currency"`
	Interval           string  `json:"interval"`
	CurrentPeriodStart string  `json:"currentPeriodStart"`
	CurrentPeriodEnd   string  `json:"currentPeriodEnd"`
	CancelAtPeriodEnd  bool    `json:"cancelAtPeriodEnd"`
	Created            string  `json:"created"`
}

type paymentsTotals struct {
	TotalRevenue          float64 `json:"totalRevenue"`
	TotalPayments         int     `json:"totalPayments"`
	SuccessfulPayments    int     `json:"successfulPayments"`
	ActiveSubscriptions   int     `json:"activeSubscriptions"`
	CanceledSubscriptions int     `json:"canceledSubscriptions"`
	TotalCustomers        int     `json:"totalCustomers"`
}

type paymentsResponse struct {
	Payments      []paymentSummary      `json:"payments"`
	Subscriptions []subscriptionSummary `json:"subscriptions"`
	Summary       paymentsTotals        `json:"summary"`
	Error         string                `json:"error,omitempty"`
}

// HandlePayments returns an authenticated handler reporting Stripe charges,
// subscriptions, and customers. A Stripe failure degrades to an empty payload
// with an error field rather than failing the dashboard.
func HandlePayments(lister StripeLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		resp, err := buildPaymentsResponse(lister)
		if err != nil {
			log.Error().Err(err).Msg("Admin payments: Stripe fetch failed")
			resp = paymentsResponse{
				Payments:      []paymentSummary{},
				Subscriptions: []subscriptionSummary{},
				Error:         "Failed to fetch payment data from Stripe",
			}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func buildPaymentsResponse(lister StripeLister) (paymentsResponse, error) {
	charges, err := lister.ListCharges(stripeListLimit)
	if err != nil {
		return paymentsResponse{}, err
	}
	subs, err := lister.ListSubscriptions(stripeListLimit)
	if err != nil {
		return paymentsResponse{}, err
	}
	customers, err := lister.ListCustomers(stripeListLimit)
	if err != nil {
		return paymentsResponse{}, err
	}

	emailByCustomer := make(map[string]string, len(customers))
	for _, c := range customers {
		if c != nil && c.Email != "" {
			emailByCustomer[c.ID] = c.Email
		}
	}
	lookupEmail := func(c *stripe.Customer) *string {
		if c == nil {
			return nil
		}
		if email, ok := emailByCustomer[c.ID]; ok {
			return &email
		}
		return nil
	}

	resp := paymentsResponse{
		Payments:      make([]paymentSummary, 0, len(charges)),
		Subscriptions: make([]subscriptionSummary, 0, len(subs)),
	}

	for _, ch := range charges {
		if ch == nil {
			continue
		}
		p := paymentSummary{
			ID:            ch.ID,
			Amount:        float64(ch.Amount) / 100,
			Currency:      strings.ToUpper(string(ch.Currency)),
			Status:        string(ch.Status),
			CustomerEmail: lookupEmail(ch.Customer),
			Description:   ch.Description,
			Created:       time.Unix(ch.Created, 0).UTC().Format(time.RFC3339),
			ReceiptURL:    ch.ReceiptURL,
		}
		if ch.Customer != nil {
			p.CustomerID = ch.Customer.ID
		}
		resp.Payments = append(resp.Payments, p)
		if ch.Status == stripe.ChargeStatusSucceeded {
			resp.Summary.TotalRevenue += p.Amount
			resp.Summary.SuccessfulPayments++
		}
	}

	for _, sub := range subs {
		if sub == nil {
			continue
		}
		s := subscriptionSummary{
			ID:                sub.ID,
			Status:            string(sub.Status),
			CustomerEmail:     lookupEmail(sub.Customer),
			CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
			Created:           time.Unix(sub.Created, 0).UTC().Format(time.RFC3339),
			Interval:          "month",
			Currency:          "AUD",
		}
		if sub.Customer != nil {
			s.CustomerID = sub.Customer.ID
		}
		if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0] != nil {
			item := sub.Items.Data[0]
			if price := item.Price; price != nil {
				s.Plan = price.Nickname
				if s.Plan == "" {
					s.Plan = price.ID
				}
				s.Amount = float64(price.UnitAmount) / 100
				if price.Currency != "" {
					s.Currency = strings.ToUpper(string(price.Currency))
				}
				if price.Recurring != nil && price.Recurring.Interval != "" {
					s.Interval = string(price.Recurring.Interval)
				}
			}
			s.CurrentPeriodStart = time.Unix(item.CurrentPeriodStart, 0).UTC().Format(time.RFC3339)
			s.CurrentPeriodEnd = time.Unix(item.CurrentPeriodEnd, 0).UTC().Format(time.RFC3339)
		}
		resp.Subscriptions = append(resp.Subscriptions, s)
		switch sub.Status {
		case stripe.SubscriptionStatusActive:
			resp.Summary.ActiveSubscriptions++
		case stripe.SubscriptionStatusCanceled:
			resp.Summary.CanceledSubscriptions++
		}
	}

	resp.Summary.TotalPayments = len(resp.Payments)
	resp.Summary.TotalCustomers = len(customers)
	return resp, nil
}
