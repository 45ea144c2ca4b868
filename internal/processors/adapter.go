package processors

import (
	"context"

	"github.com/felipearosr/stealth-money-sub003/internal/models"
)

// ProcessingTime categorizes how long a rail takes to settle a payment
type ProcessingTime string

const (
	TimeInstant         ProcessingTime = "instant"
	TimeMinutes         ProcessingTime = "minutes"
	TimeOneToTwoDays    ProcessingTime = "1-2 business days"
	TimeOneToThreeDays  ProcessingTime = "1-3 business days"
	TimeThreeToFiveDays ProcessingTime = "3-5 business days"
	TimeOverFiveDays    ProcessingTime = "5+ business days"
)

// Descriptor is the static, read-only description of one payment rail.
// Liveness is deliberately not part of it: it depends on runtime
// configuration and is evaluated fresh on every selection.
type Descriptor struct {
	ID                  string         `json:"id"`
	Name                string         `json:"name"`
	SupportedCountries  []string       `json:"supported_countries"`
	SupportedCurrencies []string       `json:"supported_currencies"`
	FixedFee            float64        `json:"fixed_fee"`
	PercentageFee       float64        `json:"percentage_fee"` // Percent units, e.g. 2.9
	ProcessingTime      ProcessingTime `json:"processing_time"`
	UserExperienceScore float64        `json:"user_experience_score"` // 0-10
	ReliabilityScore    float64        `json:"reliability_score"`     // 0-100
}

// SupportsCountry checks whether the rail covers a country
func (d Descriptor) SupportsCountry(country string) bool {
	for _, c := range d.SupportedCountries {
		if c == country {
			return true
		}
	}
	return false
}

// SupportsCurrency checks whether the rail covers a currency
func (d Descriptor) SupportsCurrency(code string) bool {
	for _, c := range d.SupportedCurrencies {
		if c == code {
			return true
		}
	}
	return false
}

// ProcessorAdapter is implemented once per payment rail
type ProcessorAdapter interface {
	// Capabilities returns the rail's static descriptor. Pure, no I/O.
	Capabilities() Descriptor
	// IsAvailable is the liveness check: cheap, typically a local
	// configuration check rather than a network call.
	IsAvailable(ctx context.Context) bool
	// ProcessPayment executes one payment on this rail
	ProcessPayment(ctx context.Context, payment models.PaymentData) (*models.PaymentOutcome, error)
}

// SelectionCriteria is the caller's intent for one selection call
type SelectionCriteria struct {
	PrioritizeCost        bool     `json:"prioritize_cost"`
	PrioritizeSpeed       bool     `json:"prioritize_speed"`
	PrioritizeReliability bool     `json:"prioritize_reliability"`
	MaxFeePercentage      *float64 `json:"max_fee_percentage,omitempty"`
	PreferredProcessorIDs []string `json:"preferred_processor_ids,omitempty"`
}

// SelectionResult is the outcome of one selection call, never persisted.
// Alternatives are ranked by descending score and exclude the selection.
type SelectionResult struct {
	SelectedProcessor Descriptor   `json:"selected_processor"`
	Alternatives      []Descriptor `json:"alternatives"`
	Justification     string       `json:"justification"`
	EstimatedFees     float64      `json:"estimated_fees"`
}
