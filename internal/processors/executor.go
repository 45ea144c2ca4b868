package processors

import (
	"context"
	"fmt"

	"github.com/felipearosr/stealth-money-sub003/internal/errors"
	"github.com/felipearosr/stealth-money-sub003/internal/logger"
	"github.com/felipearosr/stealth-money-sub003/internal/models"
)

// Executor runs payments against the registry, walking the ranked fallback
// chain when the first choice fails. No state is retained between calls.
type Executor struct {
	registry *Registry
}

// NewExecutor creates a payment executor over a registry
func NewExecutor(registry *Registry) *Executor {
	return &Executor{registry: registry}
}

// Execute runs one payment on the named processor. The processor must be
// registered and pass its liveness check; its outcome is returned verbatim.
func (e *Executor) Execute(ctx context.Context, processorID string, payment models.PaymentData) (*models.PaymentOutcome, error) {
	adapter, ok := e.registry.Get(processorID)
	if !ok {
		return nil, errors.ErrProcessorNotFound(processorID)
	}

	if !adapter.IsAvailable(ctx) {
		return nil, errors.ErrProcessorUnavailable(processorID)
	}

	logger.Info("Executing payment", logger.Fields{
		"processor_id": processorID,
		"amount":       payment.Amount,
		"currency":     payment.Currency,
	})

	return adapter.ProcessPayment(ctx, payment)
}

// ExecuteWithFallback selects the optimal processor for the location and
// criteria, attempts it, and on failure walks the ranked alternatives in
// order, stopping at the first success. A success via an alternative is
// annotated with the originally selected processor. When every candidate
// fails the terminal error carries the attempted ids and the last failure.
func (e *Executor) ExecuteWithFallback(ctx context.Context, location models.Location, payment models.PaymentData, criteria SelectionCriteria) (*models.PaymentOutcome, error) {
	candidates := e.registry.ListAvailable(ctx, location)
	if len(candidates) == 0 {
		return nil, errors.ErrNoProcessorsAvailable(location.Country, location.Currency)
	}

	selection, err := SelectOptimal(candidates, criteria)
	if err != nil {
		return nil, err
	}

	ordered := append([]Descriptor{selection.SelectedProcessor}, selection.Alternatives...)
	attempted := make([]string, 0, len(ordered))
	var lastErr error

	for i, desc := range ordered {
		attempted = append(attempted, desc.ID)

		outcome, err := e.Execute(ctx, desc.ID, payment)
		if err != nil {
			lastErr = err
			logger.Warn("Payment attempt failed", logger.Fields{
				"processor_id": desc.ID,
				"attempt":      i + 1,
				"error":        err.Error(),
			})
			continue
		}
		if !outcome.Success {
			lastErr = fmt.Errorf("processor %s declined: %s", desc.ID, outcome.Error)
			logger.Warn("Payment attempt declined", logger.Fields{
				"processor_id": desc.ID,
				"attempt":      i + 1,
				"error":        outcome.Error,
			})
			continue
		}

		outcome.ActualProcessor = desc.ID
		if i > 0 {
			outcome.FallbackUsed = true
			outcome.OriginalProcessor = selection.SelectedProcessor.ID
			logger.Info("Payment succeeded via fallback", logger.Fields{
				"original_processor": selection.SelectedProcessor.ID,
				"actual_processor":   desc.ID,
				"attempt":            i + 1,
			})
		}

		return outcome, nil
	}

	return nil, errors.ErrAllProcessorsFailed(attempted, lastErr)
}
