package rates

import (
	"time"

	"github.com/felipearosr/stealth-money-sub003/internal/fees"
)

// QuoteSource identifies where a quote's rate came from. Callers should treat
// fallback quotes with stricter tolerances downstream.
type QuoteSource string

const (
	SourcePrimary  QuoteSource = "primary"
	SourceFallback QuoteSource = "fallback"
)

// Quote is an immutable snapshot of a conversion rate for one currency pair.
// A new fetch always produces a new Quote with a new ID; cached reads share
// the same ID until the quote expires.
type Quote struct {
	ID              string         `json:"quote_id"`
	FromCurrency    string         `json:"from_currency"`
	ToCurrency      string         `json:"to_currency"`
	Rate            float64        `json:"rate"`
	InverseRate     float64        `json:"inverse_rate"`
	Fees            fees.Breakdown `json:"fees"`
	Amount          float64        `json:"amount,omitempty"`
	ConvertedAmount float64        `json:"converted_amount,omitempty"`
	Source          QuoteSource    `json:"source"`
	CreatedAt       time.Time      `json:"created_at"`
	ValidUntil      time.Time      `json:"valid_until"`
}

// LockedQuote pins a Quote to a specific amount for a bounded duration so a
// client can commit to it. Once ExpiresAt passes it is logically gone even if
// still physically present in the store.
type LockedQuote struct {
	LockID          string    `json:"lock_id"`
	Quote           Quote     `json:"quote"`
	Amount          float64   `json:"amount"`
	ConvertedAmount float64   `json:"converted_amount"`
	LockedAt        time.Time `json:"locked_at"`
	ExpiresAt       time.Time `json:"expires_at"`
}

// TransferCalculation is the full cost breakdown for one transfer, derived
// per call from a quote and a send amount. Never persisted.
type TransferCalculation struct {
	SendAmount         float64   `json:"send_amount"`
	SendCurrency       string    `json:"send_currency"`
	ReceiveCurrency    string    `json:"receive_currency"`
	ExchangeRate       float64   `json:"exchange_rate"`
	CardProcessingFee  float64   `json:"card_processing_fee"`
	TransferFee        float64   `json:"transfer_fee"`
	PayoutFee          float64   `json:"payout_fee"`
	TotalFees          float64   `json:"total_fees"`
	NetAmount          float64   `json:"net_amount"`
	GrossAmount        float64   `json:"gross_amount"`
	FinalReceiveAmount float64   `json:"final_receive_amount"`
	EstimatedArrival   string    `json:"estimated_arrival"`
	QuoteID            string    `json:"quote_id,omitempty"`
	RateSource         string    `json:"rate_source"`
	RateValidUntil     time.Time `json:"rate_valid_until,omitempty"`
}
