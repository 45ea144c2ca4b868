package rates

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zoobzio/clockz"

	"github.com/felipearosr/stealth-money-sub003/internal/currency"
	"github.com/felipearosr/stealth-money-sub003/internal/errors"
	"github.com/felipearosr/stealth-money-sub003/internal/fees"
)

// stubSource is an in-memory rate source with a controllable outcome
type stubSource struct {
	mu    sync.Mutex
	rate  float64
	err   error
	calls int
}

func (s *stubSource) FetchRate(ctx context.Context, from, to string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return 0, s.err
	}
	return s.rate, nil
}

func (s *stubSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func newTestEngine(source Source, clock clockz.Clock) *Engine {
	return NewEngine(source, NewFallbackTable(), fees.NewCalculator(), currency.NewDefault(), Options{
		Clock: clock,
	})
}

func TestGetQuoteCachesWithinValidity(t *testing.T) {
	source := &stubSource{rate: 0.92}
	clock := clockz.NewFakeClock()
	engine := newTestEngine(source, clock)

	first, err := engine.GetQuote(context.Background(), "USD", "EUR", 100)
	require.NoError(t, err)
	assert.Equal(t, SourcePrimary, first.Source)
	assert.Equal(t, 0.92, first.Rate)
	assert.Equal(t, 92.0, first.ConvertedAmount)

	second, err := engine.GetQuote(context.Background(), "USD", "EUR", 100)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "cached quote must keep its id")
	assert.Equal(t, 1, source.callCount(), "second call must be served from cache")
}

func TestGetQuoteRefreshesConvertedAmountOnly(t *testing.T) {
	source := &stubSource{rate: 0.92}
	clock := clockz.NewFakeClock()
	engine := newTestEngine(source, clock)

	first, err := engine.GetQuote(context.Background(), "USD", "EUR", 100)
	require.NoError(t, err)

	second, err := engine.GetQuote(context.Background(), "USD", "EUR", 250)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "a new amount must not mint a new quote")
	assert.Equal(t, 230.0, second.ConvertedAmount)
	assert.Equal(t, first.Rate, second.Rate)
}

func TestGetQuoteNewIDAfterExpiry(t *testing.T) {
	source := &stubSource{rate: 0.92}
	clock := clockz.NewFakeClock()
	engine := newTestEngine(source, clock)

	first, err := engine.GetQuote(context.Background(), "USD", "EUR", 0)
	require.NoError(t, err)

	clock.Advance(10*time.Minute + time.Second)

	second, err := engine.GetQuote(context.Background(), "USD", "EUR", 0)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 2, source.callCount())
}

func TestGetQuoteReverseDirectionIsDistinct(t *testing.T) {
	source := &stubSource{rate: 0.92}
	clock := clockz.NewFakeClock()
	engine := newTestEngine(source, clock)

	usdEur, err := engine.GetQuote(context.Background(), "USD", "EUR", 0)
	require.NoError(t, err)

	eurUsd, err := engine.GetQuote(context.Background(), "EUR", "USD", 0)
	require.NoError(t, err)

	assert.NotEqual(t, usdEur.ID, eurUsd.ID)
	assert.Equal(t, 2, source.callCount())
}

func TestGetQuoteFallbackOnSourceError(t *testing.T) {
	source := &stubSource{err: fmt.Errorf("provider timeout")}
	clock := clockz.NewFakeClock()
	engine := newTestEngine(source, clock)

	quote, err := engine.GetQuote(context.Background(), "USD", "EUR", 100)
	require.NoError(t, err, "source failure must be absorbed, not surfaced")
	assert.Equal(t, SourceFallback, quote.Source)
	assert.Equal(t, 0.85, quote.Rate)
	assert.True(t, quote.ValidUntil.Equal(clock.Now().Add(5*time.Minute)),
		"fallback quotes must carry the shorter validity window")
}

func TestGetQuoteFallbackOnMalformedRate(t *testing.T) {
	source := &stubSource{rate: -1}
	clock := clockz.NewFakeClock()
	engine := newTestEngine(source, clock)

	quote, err := engine.GetQuote(context.Background(), "USD", "EUR", 0)
	require.NoError(t, err)
	assert.Equal(t, SourceFallback, quote.Source)
}

func TestGetQuoteUnsupportedCurrency(t *testing.T) {
	engine := newTestEngine(&stubSource{rate: 1}, clockz.NewFakeClock())

	_, err := engine.GetQuote(context.Background(), "XXX", "EUR", 0)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeValidation))
}

func TestLockQuoteDefaultsToTenMinutes(t *testing.T) {
	source := &stubSource{rate: 0.92}
	clock := clockz.NewFakeClock()
	engine := newTestEngine(source, clock)

	locked, err := engine.LockQuote(context.Background(), "USD", "EUR", 100, 0)
	require.NoError(t, err)
	assert.True(t, locked.ExpiresAt.Equal(clock.Now().Add(10*time.Minute)))
	assert.Equal(t, 100.0, locked.Amount)
	assert.Equal(t, 92.0, locked.ConvertedAmount)
}

func TestLockQuoteLazyEviction(t *testing.T) {
	source := &stubSource{rate: 0.92}
	clock := clockz.NewFakeClock()
	engine := newTestEngine(source, clock)

	locked, err := engine.LockQuote(context.Background(), "USD", "EUR", 100, 5*time.Minute)
	require.NoError(t, err)

	found, err := engine.GetLockedQuote(locked.LockID)
	require.NoError(t, err)
	assert.Equal(t, locked.LockID, found.LockID)

	clock.Advance(5*time.Minute + time.Second)

	_, err = engine.GetLockedQuote(locked.LockID)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeLockNotFound))

	// The expired entry must be physically gone after the read
	engine.locksMu.Lock()
	_, stillThere := engine.locks[locked.LockID]
	engine.locksMu.Unlock()
	assert.False(t, stillThere)
}

func TestLockQuoteOpportunisticSweep(t *testing.T) {
	source := &stubSource{rate: 0.92}
	clock := clockz.NewFakeClock()
	engine := newTestEngine(source, clock)

	stale, err := engine.LockQuote(context.Background(), "USD", "EUR", 100, 5*time.Minute)
	require.NoError(t, err)

	clock.Advance(6 * time.Minute)

	fresh, err := engine.LockQuote(context.Background(), "USD", "EUR", 200, 5*time.Minute)
	require.NoError(t, err)

	engine.locksMu.Lock()
	defer engine.locksMu.Unlock()
	assert.Len(t, engine.locks, 1, "the sweep on lock must remove expired entries")
	_, staleThere := engine.locks[stale.LockID]
	assert.False(t, staleThere)
	_, freshThere := engine.locks[fresh.LockID]
	assert.True(t, freshThere)
}

func TestLockQuoteRejectsNonPositiveAmount(t *testing.T) {
	engine := newTestEngine(&stubSource{rate: 0.92}, clockz.NewFakeClock())

	_, err := engine.LockQuote(context.Background(), "USD", "EUR", 0, 0)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeValidation))
}

func TestValidateRateAgainstLock(t *testing.T) {
	source := &stubSource{rate: 0.85}
	clock := clockz.NewFakeClock()
	engine := newTestEngine(source, clock)

	locked, err := engine.LockQuote(context.Background(), "USD", "EUR", 100, 10*time.Minute)
	require.NoError(t, err)

	valid, err := engine.ValidateRate(context.Background(), locked.LockID, "USD", "EUR", 0.85, 0)
	require.NoError(t, err)
	assert.True(t, valid)

	valid, err = engine.ValidateRate(context.Background(), locked.LockID, "USD", "EUR", 0.90, 0.01)
	require.NoError(t, err)
	assert.False(t, valid, "a drift beyond tolerance must fail")

	valid, err = engine.ValidateRate(context.Background(), locked.LockID, "USD", "EUR", 0.90, 0.10)
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestValidateRateFallsBackToFreshQuote(t *testing.T) {
	source := &stubSource{rate: 0.85}
	clock := clockz.NewFakeClock()
	engine := newTestEngine(source, clock)

	// Unknown lock id: the engine must price the pair fresh
	valid, err := engine.ValidateRate(context.Background(), "lock_missing", "USD", "EUR", 0.85, 0.001)
	require.NoError(t, err)
	assert.True(t, valid)
	assert.Equal(t, 1, source.callCount())
}

func TestValidateRateRejectsBadInputs(t *testing.T) {
	engine := newTestEngine(&stubSource{rate: 0.85}, clockz.NewFakeClock())

	_, err := engine.ValidateRate(context.Background(), "", "USD", "EUR", 0, 0.01)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeValidation))

	_, err = engine.ValidateRate(context.Background(), "", "USD", "EUR", 0.85, -0.1)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeValidation))
}

func TestGetQuoteConcurrentAccess(t *testing.T) {
	source := &stubSource{rate: 0.92}
	engine := newTestEngine(source, clockz.NewFakeClock())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			quote, err := engine.GetQuote(context.Background(), "USD", "EUR", 100)
			assert.NoError(t, err)
			assert.Equal(t, 0.92, quote.Rate)
		}()
	}
	wg.Wait()
}
