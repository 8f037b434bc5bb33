package billing

// Config holds the billing configuration constructed once at process start
// and passed by reference into each handler. Business logic never reads the
// environment directly.
type Config struct {
	APIKey        string
	WebhookSecret string
	FrontendURL   string
	Prices        PriceConfig
}
