package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/felipearosr/stealth-money-sub003/internal/config"
	"github.com/felipearosr/stealth-money-sub003/internal/database"
	"github.com/felipearosr/stealth-money-sub003/internal/logger"
	"github.com/felipearosr/stealth-money-sub003/internal/models"
)

// Handler manages the webhook Lambda dependencies
type Handler struct {
	httpClient *http.Client
	db         *database.Client
	cfg        *config.Config
}

// NewHandler creates a new webhook handler
func NewHandler(cfg *config.Config) (*Handler, error) {
	db, err := database.NewClient(cfg.AWS.Region, cfg.Database.TransferTableName, cfg.Database.Endpoint)
	if err != nil {
		return nil, err
	}

	return &Handler{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		db:  db,
		cfg: cfg,
	}, nil
}

// HandleRequest processes SQS messages containing payment events
func (h *Handler) HandleRequest(ctx context.Context, sqsEvent events.SQSEvent) error {
	logger.Info("Received payment events", logger.Fields{
		"record_count": len(sqsEvent.Records),
	})

	for _, record := range sqsEvent.Records {
		if err := h.processRecord(ctx, record); err != nil {
			logger.Error("Failed to process payment event", logger.Fields{
				"error":      err.Error(),
				"message_id": record.MessageId,
			})
			// Continue processing other records even if one fails
			continue
		}
	}

	return nil
}

// processRecord delivers one payment event as a webhook
func (h *Handler) processRecord(ctx context.Context, record events.SQSMessage) error {
	var event models.PaymentEvent
	if err := json.Unmarshal([]byte(record.Body), &event); err != nil {
		logger.Error("Failed to unmarshal payment event", logger.Fields{
			"error": err.Error(),
		})
		return err
	}

	logger.Info("Processing payment event", logger.Fields{
		"transfer_id": event.TransferID,
		"status":      string(event.Status),
		"fallback":    event.FallbackUsed,
	})

	if h.cfg.Webhook.DeliveryURL == "" {
		logger.Info("No webhook delivery URL configured, event logged only", logger.Fields{
			"transfer_id": event.TransferID,
		})
		return nil
	}

	if err := h.sendWebhook(ctx, event); err != nil {
		// Keep the payment status; the delivery failure is recorded on the
		// transfer so operators can replay it.
		if updateErr := h.db.UpdateTransferStatus(ctx, event.TransferID, event.Status,
			fmt.Sprintf("webhook delivery failed: %v", err)); updateErr != nil {
			logger.Error("Failed to record webhook delivery failure", logger.Fields{
				"error":       updateErr.Error(),
				"transfer_id": event.TransferID,
			})
		}
		return err
	}

	logger.Info("Webhook delivered", logger.Fields{
		"transfer_id": event.TransferID,
		"status":      string(event.Status),
	})
	return nil
}

// sendWebhook posts the event to the configured delivery endpoint
func (h *Handler) sendWebhook(ctx context.Context, event models.PaymentEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.cfg.Webhook.DeliveryURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Event-Type", event.EventType)

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook delivery failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook endpoint returned status %d", resp.StatusCode)
	}

	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", logger.Fields{"error": err.Error()})
		panic(err)
	}

	logger.SetDefault(logger.NewFromString(cfg.Logging.Level))

	handler, err := NewHandler(cfg)
	if err != nil {
		logger.Error("Failed to initialize handler", logger.Fields{"error": err.Error()})
		panic(err)
	}

	lambda.Start(handler.HandleRequest)
}
