package processors

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/felipearosr/stealth-money-sub003/internal/errors"
	"github.com/felipearosr/stealth-money-sub003/internal/logger"
	"github.com/felipearosr/stealth-money-sub003/internal/models"
)

// Concrete rail adapters. Each holds the credentials for one external payment
// provider; a rail with no API key configured reports itself unavailable and
// is skipped during selection. Payment execution is simulated here the same
// way the provider sandboxes behave: synchronous confirmation with a
// provider-assigned transaction id.

// CardnetAdapter is the card rail: instant, expensive, near-universal
type CardnetAdapter struct {
	apiKey string
}

// NewCardnetAdapter creates the Cardnet rail adapter
func NewCardnetAdapter(apiKey string) *CardnetAdapter {
	return &CardnetAdapter{apiKey: apiKey}
}

func (a *CardnetAdapter) Capabilities() Descriptor {
	return Descriptor{
		ID:                  "cardnet",
		Name:                "Cardnet",
		SupportedCountries:  []string{"US", "GB", "DE", "FR", "ES", "CL", "MX", "BR"},
		SupportedCurrencies: []string{"USD", "EUR", "GBP"},
		FixedFee:            0.30,
		PercentageFee:       2.9,
		ProcessingTime:      TimeInstant,
		UserExperienceScore: 9,
		ReliabilityScore:    99,
	}
}

func (a *CardnetAdapter) IsAvailable(ctx context.Context) bool {
	return a.apiKey != ""
}

func (a *CardnetAdapter) ProcessPayment(ctx context.Context, payment models.PaymentData) (*models.PaymentOutcome, error) {
	return simulateProviderCall(ctx, a.Capabilities(), "cn", payment)
}

// SwiftwireAdapter is the bank-transfer rail: slower, cheap, very reliable
type SwiftwireAdapter struct {
	apiKey string
}

// NewSwiftwireAdapter creates the Swiftwire rail adapter
func NewSwiftwireAdapter(apiKey string) *SwiftwireAdapter {
	return &SwiftwireAdapter{apiKey: apiKey}
}

func (a *SwiftwireAdapter) Capabilities() Descriptor {
	return Descriptor{
		ID:                  "swiftwire",
		Name:                "Swiftwire",
		SupportedCountries:  []string{"US", "GB", "DE", "FR", "ES"},
		SupportedCurrencies: []string{"USD", "EUR", "GBP"},
		FixedFee:            1.00,
		PercentageFee:       0.7,
		ProcessingTime:      TimeOneToTwoDays,
		UserExperienceScore: 7,
		ReliabilityScore:    97,
	}
}

func (a *SwiftwireAdapter) IsAvailable(ctx context.Context) bool {
	return a.apiKey != ""
}

func (a *SwiftwireAdapter) ProcessPayment(ctx context.Context, payment models.PaymentData) (*models.PaymentOutcome, error) {
	return simulateProviderCall(ctx, a.Capabilities(), "sw", payment)
}

// PayvaultAdapter is the wallet rail: fast, mid-priced
type PayvaultAdapter struct {
	apiKey string
}

// NewPayvaultAdapter creates the Payvault rail adapter
func NewPayvaultAdapter(apiKey string) *PayvaultAdapter {
	return &PayvaultAdapter{apiKey: apiKey}
}

func (a *PayvaultAdapter) Capabilities() Descriptor {
	return Descriptor{
		ID:                  "payvault",
		Name:                "Payvault",
		SupportedCountries:  []string{"US", "GB", "DE", "FR"},
		SupportedCurrencies: []string{"USD", "EUR", "GBP"},
		FixedFee:            0.30,
		PercentageFee:       2.4,
		ProcessingTime:      TimeMinutes,
		UserExperienceScore: 8,
		ReliabilityScore:    95,
	}
}

func (a *PayvaultAdapter) IsAvailable(ctx context.Context) bool {
	return a.apiKey != ""
}

func (a *PayvaultAdapter) ProcessPayment(ctx context.Context, payment models.PaymentData) (*models.PaymentOutcome, error) {
	return simulateProviderCall(ctx, a.Capabilities(), "pv", payment)
}

// AndespayAdapter is the regional Latin America rail
type AndespayAdapter struct {
	apiKey string
}

// NewAndespayAdapter creates the Andespay rail adapter
func NewAndespayAdapter(apiKey string) *AndespayAdapter {
	return &AndespayAdapter{apiKey: apiKey}
}

func (a *AndespayAdapter) Capabilities() Descriptor {
	return Descriptor{
		ID:                  "andespay",
		Name:                "Andespay",
		SupportedCountries:  []string{"CL", "MX", "BR"},
		SupportedCurrencies: []string{"CLP", "MXN", "BRL", "USD"},
		FixedFee:            2.00,
		PercentageFee:       1.0,
		ProcessingTime:      TimeOneToThreeDays,
		UserExperienceScore: 6.5,
		ReliabilityScore:    92,
	}
}

func (a *AndespayAdapter) IsAvailable(ctx context.Context) bool {
	return a.apiKey != ""
}

func (a *AndespayAdapter) ProcessPayment(ctx context.Context, payment models.PaymentData) (*models.PaymentOutcome, error) {
	return simulateProviderCall(ctx, a.Capabilities(), "ap", payment)
}

// simulateProviderCall stands in for the real provider API call. It validates
// the payment against the rail's coverage, honors cancellation, and issues a
// provider-style transaction id.
func simulateProviderCall(ctx context.Context, desc Descriptor, txPrefix string, payment models.PaymentData) (*models.PaymentOutcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if payment.Amount <= 0 {
		return nil, errors.ErrValidation("amount", "must be greater than 0")
	}
	if !desc.SupportsCurrency(payment.Currency) {
		return nil, errors.ErrValidation("currency",
			fmt.Sprintf("'%s' is not supported by %s", payment.Currency, desc.Name))
	}

	txID := fmt.Sprintf("%s_%s", txPrefix, uuid.New().String())

	logger.Info("Provider payment processed", logger.Fields{
		"processor_id":   desc.ID,
		"transaction_id": txID,
		"amount":         payment.Amount,
		"currency":       payment.Currency,
	})

	return &models.PaymentOutcome{
		Success:          true,
		TransactionID:    txID,
		ProviderResponse: fmt.Sprintf("%s: payment accepted", desc.Name),
	}, nil
}

// NewDefaultRegistry registers the deployed rails with their configured credentials
func NewDefaultRegistry(cardnetKey, swiftwireKey, payvaultKey, andespayKey string) *Registry {
	registry := NewRegistry()
	registry.Register(NewCardnetAdapter(cardnetKey))
	registry.Register(NewSwiftwireAdapter(swiftwireKey))
	registry.Register(NewPayvaultAdapter(payvaultKey))
	registry.Register(NewAndespayAdapter(andespayKey))
	return registry
}
