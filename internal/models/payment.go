package models

import "time"

// TransferStatus represents the current state of a transfer record
type TransferStatus string

const (
	StatusPending   TransferStatus = "PENDING"
	StatusCompleted TransferStatus = "COMPLETED"
	StatusFailed    TransferStatus = "FAILED"
)

// Location identifies where a payment originates: the payer's country and the
// currency they intend to pay in. Processor filtering keys off both.
type Location struct {
	Country  string `json:"country"`
	Currency string `json:"currency"`
}

// PaymentData carries everything a processor adapter needs to execute one payment
type PaymentData struct {
	Amount      float64           `json:"amount"`
	Currency    string            `json:"currency"`
	Description string            `json:"description,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// PaymentOutcome is the result of one payment execution. When the fallback
// chain was engaged, OriginalProcessor records which rail was ranked first
// and ActualProcessor which one ended up carrying the payment.
type PaymentOutcome struct {
	Success           bool   `json:"success"`
	TransactionID     string `json:"transaction_id,omitempty"`
	ProviderResponse  string `json:"provider_response,omitempty"`
	FallbackUsed      bool   `json:"fallback_used"`
	OriginalProcessor string `json:"original_processor,omitempty"`
	ActualProcessor   string `json:"actual_processor,omitempty"`
	Error             string `json:"error,omitempty"`
}

// TransferRecord is the durable trace the orchestration layer writes after a
// payment attempt: which quote priced it, which processor was asked, which
// one executed, and how it ended.
type TransferRecord struct {
	TransferID         string         `json:"transfer_id" dynamodbav:"transfer_id"`
	QuoteID            string         `json:"quote_id,omitempty" dynamodbav:"quote_id,omitempty"`
	Amount             float64        `json:"amount" dynamodbav:"amount"`
	Currency           string         `json:"currency" dynamodbav:"currency"`
	Country            string         `json:"country,omitempty" dynamodbav:"country,omitempty"`
	ProcessorRequested string         `json:"processor_requested,omitempty" dynamodbav:"processor_requested,omitempty"`
	ProcessorUsed      string         `json:"processor_used,omitempty" dynamodbav:"processor_used,omitempty"`
	FallbackUsed       bool           `json:"fallback_used" dynamodbav:"fallback_used"`
	TransactionID      string         `json:"transaction_id,omitempty" dynamodbav:"transaction_id,omitempty"`
	Status             TransferStatus `json:"status" dynamodbav:"status"`
	ErrorMessage       string         `json:"error_message,omitempty" dynamodbav:"error_message,omitempty"`
	CreatedAt          time.Time      `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at" dynamodbav:"updated_at"`
}

// PaymentEvent is the message placed on the payment-events queue after an
// execution attempt, consumed by the webhook handler.
type PaymentEvent struct {
	EventType     string         `json:"event_type"`
	TransferID    string         `json:"transfer_id"`
	ProcessorID   string         `json:"processor_id,omitempty"`
	TransactionID string         `json:"transaction_id,omitempty"`
	Status        TransferStatus `json:"status"`
	Amount        float64        `json:"amount"`
	Currency      string         `json:"currency"`
	FallbackUsed  bool           `json:"fallback_used"`
	Error         string         `json:"error,omitempty"`
	Timestamp     time.Time      `json:"timestamp"`
}
