package rates

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zoobzio/clockz"

	"github.com/felipearosr/stealth-money-sub003/internal/errors"
)

func TestCalculateTransferCrossCurrency(t *testing.T) {
	source := &stubSource{rate: 0.85}
	engine := newTestEngine(source, clockz.NewFakeClock())

	calc, err := engine.CalculateTransfer(context.Background(), 100, "USD", "EUR")
	require.NoError(t, err)

	assert.Equal(t, 0.85, calc.ExchangeRate)
	assert.Equal(t, 3.20, calc.CardProcessingFee)
	assert.Equal(t, 0.50, calc.TransferFee)
	assert.Equal(t, 2.50, calc.PayoutFee)
	assert.Equal(t, 6.20, calc.TotalFees)
	assert.Equal(t, 96.80, calc.NetAmount)
	assert.Equal(t, 82.28, calc.GrossAmount)
	assert.InDelta(t, 79.36, calc.FinalReceiveAmount, 0.011)
	assert.Contains(t, calc.EstimatedArrival, "minutes")
	assert.NotEmpty(t, calc.QuoteID)
	assert.Equal(t, string(SourcePrimary), calc.RateSource)
	assert.False(t, calc.RateValidUntil.IsZero())
}

func TestCalculateTransferDomestic(t *testing.T) {
	source := &stubSource{rate: 0.85}
	engine := newTestEngine(source, clockz.NewFakeClock())

	calc, err := engine.CalculateTransfer(context.Background(), 10000, "CLP", "CLP")
	require.NoError(t, err)

	assert.Equal(t, 1.0, calc.ExchangeRate)
	assert.Equal(t, 0.0, calc.CardProcessingFee)
	assert.Equal(t, 30.0, calc.TransferFee)
	assert.Equal(t, 500.0, calc.PayoutFee)
	assert.Equal(t, 9470.0, calc.FinalReceiveAmount)
	assert.Contains(t, calc.EstimatedArrival, "hours")
	assert.NotContains(t, calc.EstimatedArrival, "minutes")
	assert.Equal(t, "domestic", calc.RateSource)
	assert.Empty(t, calc.QuoteID)
	assert.Equal(t, 0, source.callCount(), "domestic transfers must not hit the rate source")
}

func TestCalculateTransferDeterministicOnCachedQuote(t *testing.T) {
	source := &stubSource{rate: 0.85}
	engine := newTestEngine(source, clockz.NewFakeClock())

	first, err := engine.CalculateTransfer(context.Background(), 100, "USD", "EUR")
	require.NoError(t, err)

	second, err := engine.CalculateTransfer(context.Background(), 100, "USD", "EUR")
	require.NoError(t, err)

	assert.Equal(t, first, second, "the same cached quote must price identically")
	assert.Equal(t, 1, source.callCount())
}

func TestCalculateTransferFeeMonotonicity(t *testing.T) {
	source := &stubSource{rate: 0.85}
	engine := newTestEngine(source, clockz.NewFakeClock())

	amounts := []float64{100, 250, 1000, 5000}
	var lastCard, lastTransfer float64

	for _, amount := range amounts {
		calc, err := engine.CalculateTransfer(context.Background(), amount, "USD", "EUR")
		require.NoError(t, err)
		assert.Greater(t, calc.CardProcessingFee, lastCard)
		assert.Greater(t, calc.TransferFee, lastTransfer)
		lastCard = calc.CardProcessingFee
		lastTransfer = calc.TransferFee
	}
}

func TestCalculateTransferValidation(t *testing.T) {
	source := &stubSource{rate: 0.85}
	engine := newTestEngine(source, clockz.NewFakeClock())

	tests := []struct {
		name            string
		amount          float64
		sendCurrency    string
		receiveCurrency string
	}{
		{name: "unsupported send currency", amount: 100, sendCurrency: "XYZ", receiveCurrency: "EUR"},
		{name: "unsupported receive currency", amount: 100, sendCurrency: "USD", receiveCurrency: "XYZ"},
		{name: "below minimum", amount: 0.50, sendCurrency: "USD", receiveCurrency: "EUR"},
		{name: "above maximum", amount: 60000, sendCurrency: "USD", receiveCurrency: "EUR"},
		{name: "too small to cover fees", amount: 1, sendCurrency: "USD", receiveCurrency: "EUR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.CalculateTransfer(context.Background(), tt.amount, tt.sendCurrency, tt.receiveCurrency)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.CodeValidation))
		})
	}
}

func TestCalculateTransferFallbackRateIsVisible(t *testing.T) {
	source := &stubSource{err: assert.AnError}
	engine := newTestEngine(source, clockz.NewFakeClock())

	calc, err := engine.CalculateTransfer(context.Background(), 100, "USD", "EUR")
	require.NoError(t, err)
	assert.Equal(t, string(SourceFallback), calc.RateSource,
		"callers must be able to detect fallback pricing")
}
