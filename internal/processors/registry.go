package processors

import (
	"context"

	"github.com/felipearosr/stealth-money-sub003/internal/logger"
	"github.com/felipearosr/stealth-money-sub003/internal/models"
)

// Registry holds the set of registered processor adapters, keyed by id.
// Adapters are registered at startup and the set is read-only afterwards, so
// lookups need no locking.
type Registry struct {
	adapters map[string]ProcessorAdapter
}

// NewRegistry creates an empty processor registry
func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[string]ProcessorAdapter),
	}
}

// Register adds an adapter under its descriptor id. Registering the same id
// twice replaces the earlier adapter.
func (r *Registry) Register(adapter ProcessorAdapter) {
	id := adapter.Capabilities().ID
	r.adapters[id] = adapter
	logger.Info("Payment processor registered", logger.Fields{"processor_id": id})
}

// Get returns the adapter for a processor id
func (r *Registry) Get(processorID string) (ProcessorAdapter, bool) {
	adapter, ok := r.adapters[processorID]
	return adapter, ok
}

// ListAvailable returns the descriptors of every registered rail that covers
// the location's country and currency and passes its liveness check. Order is
// not significant; scoring happens in SelectOptimal.
func (r *Registry) ListAvailable(ctx context.Context, location models.Location) []Descriptor {
	available := make([]Descriptor, 0, len(r.adapters))

	for id, adapter := range r.adapters {
		desc := adapter.Capabilities()

		if !desc.SupportsCountry(location.Country) || !desc.SupportsCurrency(location.Currency) {
			continue
		}

		if !adapter.IsAvailable(ctx) {
			logger.Debug("Processor skipped: not available", logger.Fields{"processor_id": id})
			continue
		}

		available = append(available, desc)
	}

	logger.Info("Processors listed for location", logger.Fields{
		"country":   location.Country,
		"currency":  location.Currency,
		"available": len(available),
	})

	return available
}
