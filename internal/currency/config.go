package currency

import "strings"

// Settings holds the per-currency configuration the transfer calculator
// consults: accepted amount range in that currency, the flat payout fee
// charged on delivery, and the estimated arrival windows. Payout fees are a
// lookup table rather than a formula because real payout costs vary by
// corridor, not by amount.
type Settings struct {
	MinAmount       float64
	MaxAmount       float64
	PayoutFee       float64 // Flat fee, in units of this currency
	ArrivalEstimate string  // Cross-currency corridor into this currency
	DomesticArrival string  // Same-currency transfers within this currency
}

// Config is the currency configuration table, read-only after construction
type Config struct {
	currencies map[string]Settings
}

// NewDefault returns the deployed currency table
func NewDefault() *Config {
	return &Config{
		currencies: map[string]Settings{
			"USD": {
				MinAmount:       1,
				MaxAmount:       50000,
				PayoutFee:       3.00,
				ArrivalEstimate: "1-2 hours",
				DomesticArrival: "30-60 minutes",
			},
			"EUR": {
				MinAmount:       1,
				MaxAmount:       50000,
				PayoutFee:       2.50,
				ArrivalEstimate: "5-30 minutes", // SEPA Instant
				DomesticArrival: "5-15 minutes",
			},
			"GBP": {
				MinAmount:       1,
				MaxAmount:       40000,
				PayoutFee:       2.00,
				ArrivalEstimate: "30-90 minutes", // Faster Payments
				DomesticArrival: "15-30 minutes",
			},
			"CLP": {
				MinAmount:       500,
				MaxAmount:       45000000,
				PayoutFee:       500,
				ArrivalEstimate: "1-2 business days",
				DomesticArrival: "2-4 hours",
			},
			"MXN": {
				MinAmount:       20,
				MaxAmount:       1000000,
				PayoutFee:       35,
				ArrivalEstimate: "1-3 business days",
				DomesticArrival: "1-2 hours",
			},
			"BRL": {
				MinAmount:       5,
				MaxAmount:       250000,
				PayoutFee:       8,
				ArrivalEstimate: "1-2 business days",
				DomesticArrival: "1-2 hours",
			},
		},
	}
}

// Get returns the settings for a currency code
func (c *Config) Get(code string) (Settings, bool) {
	s, ok := c.currencies[strings.ToUpper(code)]
	return s, ok
}

// IsSupported checks whether a currency is configured
func (c *Config) IsSupported(code string) bool {
	_, ok := c.currencies[strings.ToUpper(code)]
	return ok
}

// Supported returns the configured currency codes
func (c *Config) Supported() []string {
	codes := make([]string, 0, len(c.currencies))
	for code := range c.currencies {
		codes = append(codes, code)
	}
	return codes
}
