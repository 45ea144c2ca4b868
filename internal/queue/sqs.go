package queue

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sqs"

	"github.com/felipearosr/stealth-money-sub003/internal/errors"
	"github.com/felipearosr/stealth-money-sub003/internal/logger"
	"github.com/felipearosr/stealth-money-sub003/internal/models"
)

// Client represents an SQS client
type Client struct {
	svc *sqs.SQS
}

// NewClient creates a new SQS client
func NewClient(region, endpoint string) (*Client, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, err
	}

	svc := sqs.New(sess)

	// Override endpoint for local testing
	if endpoint != "" {
		svc.Endpoint = endpoint
	}

	return &Client{
		svc: svc,
	}, nil
}

// SendPaymentEvent publishes a payment event for the webhook handler
func (c *Client) SendPaymentEvent(ctx context.Context, queueURL string, event *models.PaymentEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to marshal payment event", logger.Fields{"error": err.Error()})
		return errors.ErrQueueOperation("marshal", err)
	}

	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]*sqs.MessageAttributeValue{
			"TransferID": {
				DataType:    aws.String("String"),
				StringValue: aws.String(event.TransferID),
			},
			"Status": {
				DataType:    aws.String("String"),
				StringValue: aws.String(string(event.Status)),
			},
		},
	}

	result, err := c.svc.SendMessageWithContext(ctx, input)
	if err != nil {
		logger.Error("Failed to send payment event", logger.Fields{
			"error":       err.Error(),
			"transfer_id": event.TransferID,
		})
		return errors.ErrQueueOperation("send", err)
	}

	logger.Info("Payment event sent to queue", logger.Fields{
		"transfer_id": event.TransferID,
		"message_id":  *result.MessageId,
	})
	return nil
}
