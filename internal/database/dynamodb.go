package database

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/expression"

	"github.com/felipearosr/stealth-money-sub003/internal/errors"
	"github.com/felipearosr/stealth-money-sub003/internal/logger"
	"github.com/felipearosr/stealth-money-sub003/internal/models"
)

// Client stores transfer records in DynamoDB. The engines own no persisted
// state; this client is used by the orchestration layer to durably record
// which quote and which processor/outcome served each transfer.
type Client struct {
	svc       *dynamodb.DynamoDB
	tableName string
}

// NewClient creates a new DynamoDB client
func NewClient(region, tableName, endpoint string) (*Client, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, err
	}

	svc := dynamodb.New(sess)

	// Override endpoint for local testing
	if endpoint != "" {
		svc.Endpoint = endpoint
	}

	return &Client{
		svc:       svc,
		tableName: tableName,
	}, nil
}

// CreateTransfer writes a new transfer record
func (c *Client) CreateTransfer(ctx context.Context, record *models.TransferRecord) error {
	av, err := dynamodbattribute.MarshalMap(record)
	if err != nil {
		logger.Error("Failed to marshal transfer record", logger.Fields{"error": err.Error()})
		return errors.ErrDatabaseOperation("marshal", err)
	}

	input := &dynamodb.PutItemInput{
		TableName:           aws.String(c.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(transfer_id)"),
	}

	_, err = c.svc.PutItemWithContext(ctx, input)
	if err != nil {
		logger.Error("Failed to create transfer record", logger.Fields{"error": err.Error()})
		return errors.ErrDatabaseOperation("create", err)
	}

	logger.Info("Transfer record created", logger.Fields{
		"transfer_id": record.TransferID,
		"quote_id":    record.QuoteID,
		"status":      string(record.Status),
	})
	return nil
}

// GetTransfer retrieves a transfer record by id
func (c *Client) GetTransfer(ctx context.Context, transferID string) (*models.TransferRecord, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(c.tableName),
		Key: map[string]*dynamodb.AttributeValue{
			"transfer_id": {
				S: aws.String(transferID),
			},
		},
	}

	result, err := c.svc.GetItemWithContext(ctx, input)
	if err != nil {
		logger.Error("Failed to get transfer record", logger.Fields{"error": err.Error(), "transfer_id": transferID})
		return nil, errors.ErrDatabaseOperation("get", err)
	}

	if result.Item == nil {
		return nil, errors.ErrTransferNotFound(transferID)
	}

	var record models.TransferRecord
	err = dynamodbattribute.UnmarshalMap(result.Item, &record)
	if err != nil {
		logger.Error("Failed to unmarshal transfer record", logger.Fields{"error": err.Error()})
		return nil, errors.ErrDatabaseOperation("unmarshal", err)
	}

	return &record, nil
}

// UpdateTransferStatus updates the status and error message of a transfer record
func (c *Client) UpdateTransferStatus(ctx context.Context, transferID string, status models.TransferStatus, errorMessage string) error {
	update := expression.Set(expression.Name("status"), expression.Value(string(status))).
		Set(expression.Name("updated_at"), expression.Value(time.Now().UTC()))
	if errorMessage != "" {
		update = update.Set(expression.Name("error_message"), expression.Value(errorMessage))
	}

	expr, err := expression.NewBuilder().WithUpdate(update).Build()
	if err != nil {
		logger.Error("Failed to build update expression", logger.Fields{"error": err.Error()})
		return errors.ErrDatabaseOperation("build_expression", err)
	}

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(c.tableName),
		Key: map[string]*dynamodb.AttributeValue{
			"transfer_id": {
				S: aws.String(transferID),
			},
		},
		UpdateExpression:          expr.Update(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	_, err = c.svc.UpdateItemWithContext(ctx, input)
	if err != nil {
		logger.Error("Failed to update transfer status", logger.Fields{
			"error":       err.Error(),
			"transfer_id": transferID,
		})
		return errors.ErrDatabaseOperation("update", err)
	}

	logger.Info("Transfer status updated", logger.Fields{
		"transfer_id": transferID,
		"status":      string(status),
	})
	return nil
}
