package validator

import (
	"fmt"

	"github.com/felipearosr/stealth-money-sub003/internal/errors"
	"github.com/felipearosr/stealth-money-sub003/internal/models"
)

// Validators for the shapes of inbound requests. Range checks that depend on
// currency configuration (min/max amounts) live in the rate engine; these
// cover structure only and report per-field validation errors.

// ValidateCurrencyCode checks that a value looks like an ISO 4217 code
func ValidateCurrencyCode(field, code string) error {
	if code == "" {
		return errors.ErrValidation(field, "is required")
	}
	if len(code) != 3 {
		return errors.ErrValidation(field, "must be a 3-letter currency code")
	}
	for _, c := range code {
		if !((c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')) {
			return errors.ErrValidation(field, "must contain only letters")
		}
	}
	return nil
}

// ValidateAmount checks that an amount is positive and within the global cap
func ValidateAmount(field string, amount float64) error {
	if amount <= 0 {
		return errors.ErrValidation(field, "must be greater than 0")
	}
	if amount > 1000000000 {
		return errors.ErrValidation(field, "exceeds maximum allowed amount")
	}
	return nil
}

// ValidateLocation checks a country/currency location
func ValidateLocation(loc models.Location) error {
	if loc.Country == "" {
		return errors.ErrValidation("country", "is required")
	}
	if len(loc.Country) != 2 {
		return errors.ErrValidation("country", "must be a 2-letter country code")
	}
	return ValidateCurrencyCode("currency", loc.Currency)
}

// ValidatePaymentData checks the payload handed to a processor adapter
func ValidatePaymentData(payment models.PaymentData) error {
	if err := ValidateAmount("amount", payment.Amount); err != nil {
		return err
	}
	if err := ValidateCurrencyCode("currency", payment.Currency); err != nil {
		return err
	}
	if len(payment.Description) > 200 {
		return errors.ErrValidation("description", "must not exceed 200 characters")
	}
	return nil
}

// ValidateLockDuration checks a caller-chosen lock duration in minutes.
// Zero means "use the default"; negative or over-long values are rejected.
func ValidateLockDuration(minutes int) error {
	if minutes < 0 {
		return errors.ErrValidation("duration_minutes", "must not be negative")
	}
	if minutes > 60 {
		return errors.ErrValidation("duration_minutes", fmt.Sprintf("must not exceed %d minutes", 60))
	}
	return nil
}
