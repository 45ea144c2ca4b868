package rates

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zoobzio/clockz"

	"github.com/felipearosr/stealth-money-sub003/internal/currency"
	"github.com/felipearosr/stealth-money-sub003/internal/errors"
	"github.com/felipearosr/stealth-money-sub003/internal/fees"
	"github.com/felipearosr/stealth-money-sub003/internal/logger"
)

// Engine wraps a rate Source with caching, fee computation, rate locking and
// transfer pricing. The only state it owns are the rate cache (keyed by
// currency pair) and the locked-quote store (keyed by lock id); both are
// mutex-guarded and every external call happens outside any held lock.
type Engine struct {
	source     Source
	fallback   *FallbackTable
	feeCalc    *fees.Calculator
	currencies *currency.Config
	clock      clockz.Clock

	fetchTimeout time.Duration
	primaryTTL   time.Duration
	fallbackTTL  time.Duration
	defaultLock  time.Duration

	cacheMu sync.RWMutex
	cache   map[string]*Quote

	locksMu sync.Mutex
	locks   map[string]*LockedQuote
}

// Options tunes engine timeouts and validity windows. Zero values fall back
// to the deployed defaults.
type Options struct {
	FetchTimeout        time.Duration
	PrimaryTTL          time.Duration
	FallbackTTL         time.Duration
	DefaultLockDuration time.Duration
	Clock               clockz.Clock
}

// NewEngine creates a rate quote engine
func NewEngine(source Source, fallback *FallbackTable, feeCalc *fees.Calculator, currencies *currency.Config, opts Options) *Engine {
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 800 * time.Millisecond
	}
	if opts.PrimaryTTL <= 0 {
		opts.PrimaryTTL = 10 * time.Minute
	}
	if opts.FallbackTTL <= 0 {
		opts.FallbackTTL = 5 * time.Minute
	}
	if opts.DefaultLockDuration <= 0 {
		opts.DefaultLockDuration = 10 * time.Minute
	}
	if opts.Clock == nil {
		opts.Clock = clockz.RealClock
	}

	return &Engine{
		source:       source,
		fallback:     fallback,
		feeCalc:      feeCalc,
		currencies:   currencies,
		clock:        opts.Clock,
		fetchTimeout: opts.FetchTimeout,
		primaryTTL:   opts.PrimaryTTL,
		fallbackTTL:  opts.FallbackTTL,
		defaultLock:  opts.DefaultLockDuration,
		cache:        make(map[string]*Quote),
		locks:        make(map[string]*LockedQuote),
	}
}

// GetQuote returns a priced quote for a currency pair. Cached quotes are
// shared until they expire; a supplied amount only refreshes the converted
// amount on the cached rate, it never mints a new quote id. Primary-source
// failures are absorbed by the static fallback table and are visible to the
// caller only through Quote.Source.
func (e *Engine) GetQuote(ctx context.Context, from, to string, amount float64) (*Quote, error) {
	from = strings.ToUpper(from)
	to = strings.ToUpper(to)

	if !e.currencies.IsSupported(from) {
		return nil, errors.ErrValidation("from_currency", fmt.Sprintf("'%s' is not supported", from))
	}
	if !e.currencies.IsSupported(to) {
		return nil, errors.ErrValidation("to_currency", fmt.Sprintf("'%s' is not supported", to))
	}

	key := pairKey(from, to)
	now := e.clock.Now()

	e.cacheMu.RLock()
	cached, ok := e.cache[key]
	e.cacheMu.RUnlock()

	if ok && now.Before(cached.ValidUntil) {
		q := *cached
		if amount > 0 {
			q.Amount = amount
			q.ConvertedAmount = fees.Round2(amount * q.Rate)
		}
		return &q, nil
	}

	// Cache miss or expired. The provider call happens outside any lock; two
	// concurrent misses may both fetch and the last writer wins, which is
	// acceptable for short-lived self-describing quotes.
	quote, err := e.fetchQuote(ctx, from, to, amount)
	if err != nil {
		return nil, err
	}

	e.cacheMu.Lock()
	e.cache[key] = quote
	e.cacheMu.Unlock()

	q := *quote
	return &q, nil
}

// fetchQuote obtains a rate from the primary source, falling back to the
// static table when the source times out, errors, or returns garbage
func (e *Engine) fetchQuote(ctx context.Context, from, to string, amount float64) (*Quote, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, e.fetchTimeout)
	defer cancel()

	rate, err := e.source.FetchRate(fetchCtx, from, to)
	source := SourcePrimary
	ttl := e.primaryTTL

	if err != nil || rate <= 0 {
		logger.Warn("Primary rate source failed, using fallback table", logger.Fields{
			"from_currency": from,
			"to_currency":   to,
			"error":         fmt.Sprintf("%v", err),
		})

		fallbackRate, ok := e.fallback.Lookup(from, to)
		if !ok {
			return nil, errors.ErrInternalServer(fmt.Sprintf("no rate available for %s/%s", from, to), err)
		}
		rate = fallbackRate
		source = SourceFallback
		ttl = e.fallbackTTL
	}

	now := e.clock.Now()
	quote := &Quote{
		ID:           "quote_" + uuid.New().String(),
		FromCurrency: from,
		ToCurrency:   to,
		Rate:         rate,
		InverseRate:  round6(1 / rate),
		Fees:         e.feeCalc.QuoteFee(amount),
		Source:       source,
		CreatedAt:    now,
		ValidUntil:   now.Add(ttl),
	}
	if amount > 0 {
		quote.Amount = amount
		quote.ConvertedAmount = fees.Round2(amount * rate)
	}

	logger.Info("Quote created", logger.Fields{
		"quote_id":      quote.ID,
		"from_currency": from,
		"to_currency":   to,
		"rate":          rate,
		"source":        string(source),
		"valid_until":   quote.ValidUntil.Format(time.RFC3339),
	})

	return quote, nil
}

// LockQuote pins a quote to an amount for the requested duration. A zero or
// negative duration gets the default. Expired locks are opportunistically
// swept from the store on every call.
func (e *Engine) LockQuote(ctx context.Context, from, to string, amount float64, duration time.Duration) (*LockedQuote, error) {
	if amount <= 0 {
		return nil, errors.ErrValidation("amount", "must be greater than 0")
	}
	if duration <= 0 {
		duration = e.defaultLock
	}

	quote, err := e.GetQuote(ctx, from, to, amount)
	if err != nil {
		return nil, err
	}

	now := e.clock.Now()
	locked := &LockedQuote{
		LockID:          "lock_" + uuid.New().String(),
		Quote:           *quote,
		Amount:          amount,
		ConvertedAmount: fees.Round2(amount * quote.Rate),
		LockedAt:        now,
		ExpiresAt:       now.Add(duration),
	}

	e.locksMu.Lock()
	e.sweepExpiredLocked(now)
	e.locks[locked.LockID] = locked
	e.locksMu.Unlock()

	logger.Info("Rate locked", logger.Fields{
		"lock_id":    locked.LockID,
		"quote_id":   quote.ID,
		"amount":     amount,
		"rate":       quote.Rate,
		"expires_at": locked.ExpiresAt.Format(time.RFC3339),
	})

	lq := *locked
	return &lq, nil
}

// GetLockedQuote looks up a lock by id. A lock past its expiry is deleted on
// read and reported as not found rather than returned stale.
func (e *Engine) GetLockedQuote(lockID string) (*LockedQuote, error) {
	e.locksMu.Lock()
	defer e.locksMu.Unlock()

	locked, ok := e.locks[lockID]
	if !ok {
		return nil, errors.ErrLockNotFound(lockID)
	}

	if e.clock.Now().After(locked.ExpiresAt) {
		delete(e.locks, lockID)
		logger.Info("Expired rate lock evicted on read", logger.Fields{"lock_id": lockID})
		return nil, errors.ErrLockNotFound(lockID)
	}

	lq := *locked
	return &lq, nil
}

// ValidateRate checks whether expectedRate is still within tolerance of the
// live rate: the locked rate when lockID resolves to a live lock, otherwise a
// fresh quote for the pair. Tolerance is a fraction of the expected rate.
func (e *Engine) ValidateRate(ctx context.Context, lockID, from, to string, expectedRate, tolerance float64) (bool, error) {
	if expectedRate <= 0 {
		return false, errors.ErrValidation("expected_rate", "must be greater than 0")
	}
	if tolerance < 0 {
		return false, errors.ErrValidation("tolerance", "must not be negative")
	}

	var rate float64
	if lockID != "" {
		if locked, err := e.GetLockedQuote(lockID); err == nil {
			rate = locked.Quote.Rate
		}
	}

	if rate == 0 {
		quote, err := e.GetQuote(ctx, from, to, 0)
		if err != nil {
			return false, err
		}
		rate = quote.Rate
	}

	drift := math.Abs(rate-expectedRate) / expectedRate
	return drift <= tolerance, nil
}

// sweepExpiredLocked removes all expired locks. Caller must hold locksMu.
func (e *Engine) sweepExpiredLocked(now time.Time) {
	swept := 0
	for id, locked := range e.locks {
		if now.After(locked.ExpiresAt) {
			delete(e.locks, id)
			swept++
		}
	}
	if swept > 0 {
		logger.Debug("Swept expired rate locks", logger.Fields{"count": swept})
	}
}

// round6 rounds a rate to 6 decimals; inverse rates keep more precision than money
func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
