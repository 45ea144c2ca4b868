package queue

import (
	"context"

	"github.com/felipearosr/stealth-money-sub003/internal/models"
)

// Adapter wraps the SQS client with a known queue URL
type Adapter struct {
	client   *Client
	queueURL string
}

// NewAdapter creates a new queue adapter
func NewAdapter(client *Client, queueURL string) *Adapter {
	return &Adapter{
		client:   client,
		queueURL: queueURL,
	}
}

// PublishPaymentEvent sends a payment event to the configured queue
func (a *Adapter) PublishPaymentEvent(ctx context.Context, event *models.PaymentEvent) error {
	return a.client.SendPaymentEvent(ctx, a.queueURL, event)
}
