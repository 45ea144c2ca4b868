package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/google/uuid"

	"github.com/felipearosr/stealth-money-sub003/internal/config"
	"github.com/felipearosr/stealth-money-sub003/internal/currency"
	"github.com/felipearosr/stealth-money-sub003/internal/database"
	"github.com/felipearosr/stealth-money-sub003/internal/errors"
	"github.com/felipearosr/stealth-money-sub003/internal/fees"
	"github.com/felipearosr/stealth-money-sub003/internal/logger"
	"github.com/felipearosr/stealth-money-sub003/internal/models"
	"github.com/felipearosr/stealth-money-sub003/internal/processors"
	"github.com/felipearosr/stealth-money-sub003/internal/queue"
	"github.com/felipearosr/stealth-money-sub003/internal/rates"
	"github.com/felipearosr/stealth-money-sub003/internal/validator"
)

// Handler manages the API Lambda dependencies
type Handler struct {
	engine     *rates.Engine
	registry   *processors.Registry
	executor   *processors.Executor
	db         *database.Client
	events     *queue.Adapter
	currencies *currency.Config
	cfg        *config.Config
}

// NewHandler creates a new API handler
func NewHandler(cfg *config.Config) (*Handler, error) {
	db, err := database.NewClient(cfg.AWS.Region, cfg.Database.TransferTableName, cfg.Database.Endpoint)
	if err != nil {
		return nil, err
	}

	var eventQueue *queue.Adapter
	if cfg.Queue.PaymentEventsQueueURL != "" {
		q, err := queue.NewClient(cfg.AWS.Region, cfg.Queue.Endpoint)
		if err != nil {
			return nil, err
		}
		eventQueue = queue.NewAdapter(q, cfg.Queue.PaymentEventsQueueURL)
	}

	currencies := currency.NewDefault()
	source := rates.NewHTTPSource(cfg.Rates.SourceURL, cfg.Rates.FetchTimeout)
	engine := rates.NewEngine(source, rates.NewFallbackTable(), fees.NewCalculator(), currencies, rates.Options{
		FetchTimeout:        cfg.Rates.FetchTimeout,
		PrimaryTTL:          cfg.Rates.PrimaryTTL,
		FallbackTTL:         cfg.Rates.FallbackTTL,
		DefaultLockDuration: cfg.Rates.DefaultLockTime,
	})

	registry := processors.NewDefaultRegistry(
		resolveRailKey(cfg, "cardnet", cfg.Processors.CardnetAPIKey),
		resolveRailKey(cfg, "swiftwire", cfg.Processors.SwiftwireAPIKey),
		resolveRailKey(cfg, "payvault", cfg.Processors.PayvaultAPIKey),
		resolveRailKey(cfg, "andespay", cfg.Processors.AndespayAPIKey),
	)

	return &Handler{
		engine:     engine,
		registry:   registry,
		executor:   processors.NewExecutor(registry),
		db:         db,
		events:     eventQueue,
		currencies: currencies,
		cfg:        cfg,
	}, nil
}

// resolveRailKey returns the configured API key for a rail, falling back to
// Secrets Manager when no environment value is set. A rail whose key cannot
// be resolved stays registered but fails its liveness check.
func resolveRailKey(cfg *config.Config, rail, envValue string) string {
	if envValue != "" {
		return envValue
	}

	key, err := config.GetProcessorAPIKey(context.Background(), rail, cfg.AWS.Region)
	if err != nil {
		logger.Warn("Processor API key not resolved, rail disabled", logger.Fields{
			"rail":  rail,
			"error": err.Error(),
		})
		return ""
	}
	return key
}

// Request bodies

type calculateTransferRequest struct {
	SendAmount      float64 `json:"send_amount"`
	SendCurrency    string  `json:"send_currency"`
	ReceiveCurrency string  `json:"receive_currency"`
}

type lockRateRequest struct {
	FromCurrency    string  `json:"from_currency"`
	ToCurrency      string  `json:"to_currency"`
	Amount          float64 `json:"amount"`
	DurationMinutes int     `json:"duration_minutes"`
}

type validateRateRequest struct {
	LockID       string  `json:"lock_id,omitempty"`
	FromCurrency string  `json:"from_currency"`
	ToCurrency   string  `json:"to_currency"`
	ExpectedRate float64 `json:"expected_rate"`
	Tolerance    float64 `json:"tolerance"`
}

type validateRateResponse struct {
	Valid bool `json:"valid"`
}

type selectProcessorRequest struct {
	Location models.Location              `json:"location"`
	Criteria processors.SelectionCriteria `json:"criteria"`
}

type executePaymentRequest struct {
	ProcessorID string             `json:"processor_id"`
	Payment     models.PaymentData `json:"payment"`
}

type fallbackPaymentRequest struct {
	Location models.Location              `json:"location"`
	Payment  models.PaymentData           `json:"payment"`
	Criteria processors.SelectionCriteria `json:"criteria"`
}

// HandleRequest routes the API Gateway request
func (h *Handler) HandleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	logger.Info("Received API request", logger.Fields{
		"path":   request.Path,
		"method": request.HTTPMethod,
	})

	switch {
	case request.HTTPMethod == http.MethodPost && request.Path == "/transfers/calculate":
		return h.handleCalculateTransfer(ctx, request)

	case request.HTTPMethod == http.MethodPost && request.Path == "/rates/lock":
		return h.handleLockRate(ctx, request)

	case request.HTTPMethod == http.MethodGet && request.PathParameters["lock_id"] != "":
		return h.handleGetLockedRate(request.PathParameters["lock_id"])

	case request.HTTPMethod == http.MethodGet && request.PathParameters["transfer_id"] != "":
		return h.handleGetTransfer(ctx, request.PathParameters["transfer_id"])

	case request.HTTPMethod == http.MethodGet && request.Path == "/currencies":
		return jsonResponse(http.StatusOK, map[string][]string{"currencies": h.currencies.Supported()})

	case request.HTTPMethod == http.MethodPost && request.Path == "/rates/validate":
		return h.handleValidateRate(ctx, request)

	case request.HTTPMethod == http.MethodGet && request.Path == "/processors":
		return h.handleListProcessors(ctx, request)

	case request.HTTPMethod == http.MethodPost && request.Path == "/processors/select":
		return h.handleSelectProcessor(ctx, request)

	case request.HTTPMethod == http.MethodPost && request.Path == "/payments/execute":
		return h.handleExecutePayment(ctx, request)

	case request.HTTPMethod == http.MethodPost && request.Path == "/payments/execute-with-fallback":
		return h.handleExecuteWithFallback(ctx, request)
	}

	return errorResponse(http.StatusNotFound, "NOT_FOUND", "Endpoint not found")
}

// handleCalculateTransfer handles POST /transfers/calculate
func (h *Handler) handleCalculateTransfer(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var req calculateTransferRequest
	if err := json.Unmarshal([]byte(request.Body), &req); err != nil {
		return errorResponse(http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
	}

	if err := validator.ValidateAmount("send_amount", req.SendAmount); err != nil {
		return appErrorResponse(err)
	}
	if err := validator.ValidateCurrencyCode("send_currency", req.SendCurrency); err != nil {
		return appErrorResponse(err)
	}
	if err := validator.ValidateCurrencyCode("receive_currency", req.ReceiveCurrency); err != nil {
		return appErrorResponse(err)
	}

	calc, err := h.engine.CalculateTransfer(ctx, req.SendAmount, req.SendCurrency, req.ReceiveCurrency)
	if err != nil {
		return appErrorResponse(err)
	}

	return jsonResponse(http.StatusOK, calc)
}

// handleLockRate handles POST /rates/lock
func (h *Handler) handleLockRate(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var req lockRateRequest
	if err := json.Unmarshal([]byte(request.Body), &req); err != nil {
		return errorResponse(http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
	}

	if err := validator.ValidateAmount("amount", req.Amount); err != nil {
		return appErrorResponse(err)
	}
	if err := validator.ValidateCurrencyCode("from_currency", req.FromCurrency); err != nil {
		return appErrorResponse(err)
	}
	if err := validator.ValidateCurrencyCode("to_currency", req.ToCurrency); err != nil {
		return appErrorResponse(err)
	}
	if err := validator.ValidateLockDuration(req.DurationMinutes); err != nil {
		return appErrorResponse(err)
	}

	locked, err := h.engine.LockQuote(ctx, req.FromCurrency, req.ToCurrency, req.Amount,
		time.Duration(req.DurationMinutes)*time.Minute)
	if err != nil {
		return appErrorResponse(err)
	}

	return jsonResponse(http.StatusCreated, locked)
}

// handleGetLockedRate handles GET /rates/locks/{lock_id}
func (h *Handler) handleGetLockedRate(lockID string) (events.APIGatewayProxyResponse, error) {
	locked, err := h.engine.GetLockedQuote(lockID)
	if err != nil {
		return appErrorResponse(err)
	}

	return jsonResponse(http.StatusOK, locked)
}

// handleGetTransfer handles GET /transfers/{transfer_id}
func (h *Handler) handleGetTransfer(ctx context.Context, transferID string) (events.APIGatewayProxyResponse, error) {
	record, err := h.db.GetTransfer(ctx, transferID)
	if err != nil {
		return appErrorResponse(err)
	}

	return jsonResponse(http.StatusOK, record)
}

// handleValidateRate handles POST /rates/validate
func (h *Handler) handleValidateRate(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var req validateRateRequest
	if err := json.Unmarshal([]byte(request.Body), &req); err != nil {
		return errorResponse(http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
	}

	if err := validator.ValidateCurrencyCode("from_currency", req.FromCurrency); err != nil {
		return appErrorResponse(err)
	}
	if err := validator.ValidateCurrencyCode("to_currency", req.ToCurrency); err != nil {
		return appErrorResponse(err)
	}

	valid, err := h.engine.ValidateRate(ctx, req.LockID, req.FromCurrency, req.ToCurrency, req.ExpectedRate, req.Tolerance)
	if err != nil {
		return appErrorResponse(err)
	}

	return jsonResponse(http.StatusOK, validateRateResponse{Valid: valid})
}

// handleListProcessors handles GET /processors?country=&currency=
func (h *Handler) handleListProcessors(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	location := models.Location{
		Country:  request.QueryStringParameters["country"],
		Currency: request.QueryStringParameters["currency"],
	}
	if err := validator.ValidateLocation(location); err != nil {
		return appErrorResponse(err)
	}

	available := h.registry.ListAvailable(ctx, location)
	return jsonResponse(http.StatusOK, available)
}

// handleSelectProcessor handles POST /processors/select
func (h *Handler) handleSelectProcessor(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var req selectProcessorRequest
	if err := json.Unmarshal([]byte(request.Body), &req); err != nil {
		return errorResponse(http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
	}

	if err := validator.ValidateLocation(req.Location); err != nil {
		return appErrorResponse(err)
	}

	candidates := h.registry.ListAvailable(ctx, req.Location)
	result, err := processors.SelectOptimal(candidates, req.Criteria)
	if err != nil {
		return appErrorResponse(err)
	}

	return jsonResponse(http.StatusOK, result)
}

// handleExecutePayment handles POST /payments/execute
func (h *Handler) handleExecutePayment(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var req executePaymentRequest
	if err := json.Unmarshal([]byte(request.Body), &req); err != nil {
		return errorResponse(http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
	}

	if req.ProcessorID == "" {
		return appErrorResponse(errors.ErrValidation("processor_id", "is required"))
	}
	if err := validator.ValidatePaymentData(req.Payment); err != nil {
		return appErrorResponse(err)
	}

	outcome, err := h.executor.Execute(ctx, req.ProcessorID, req.Payment)
	h.recordOutcome(ctx, req.ProcessorID, "", req.Payment, outcome, err)
	if err != nil {
		return appErrorResponse(err)
	}

	return jsonResponse(http.StatusOK, outcome)
}

// handleExecuteWithFallback handles POST /payments/execute-with-fallback
func (h *Handler) handleExecuteWithFallback(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var req fallbackPaymentRequest
	if err := json.Unmarshal([]byte(request.Body), &req); err != nil {
		return errorResponse(http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
	}

	if err := validator.ValidateLocation(req.Location); err != nil {
		return appErrorResponse(err)
	}
	if err := validator.ValidatePaymentData(req.Payment); err != nil {
		return appErrorResponse(err)
	}

	outcome, err := h.executor.ExecuteWithFallback(ctx, req.Location, req.Payment, req.Criteria)
	requested := ""
	if outcome != nil {
		requested = outcome.OriginalProcessor
		if requested == "" {
			requested = outcome.ActualProcessor
		}
	}
	h.recordOutcome(ctx, requested, req.Location.Country, req.Payment, outcome, err)
	if err != nil {
		return appErrorResponse(err)
	}

	return jsonResponse(http.StatusOK, outcome)
}

// recordOutcome persists the transfer record and publishes the payment event.
// The payment has already happened (or terminally failed); persistence
// problems are logged, never surfaced to the client.
func (h *Handler) recordOutcome(ctx context.Context, requestedProcessor, country string, payment models.PaymentData, outcome *models.PaymentOutcome, execErr error) {
	now := time.Now().UTC()
	record := &models.TransferRecord{
		TransferID:         "transfer_" + uuid.New().String(),
		Amount:             payment.Amount,
		Currency:           payment.Currency,
		Country:            country,
		ProcessorRequested: requestedProcessor,
		Status:             models.StatusFailed,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if quoteID, ok := payment.Metadata["quote_id"]; ok {
		record.QuoteID = quoteID
	}

	if execErr != nil {
		record.ErrorMessage = execErr.Error()
	} else if outcome != nil && outcome.Success {
		record.Status = models.StatusCompleted
		record.ProcessorUsed = outcome.ActualProcessor
		record.FallbackUsed = outcome.FallbackUsed
		record.TransactionID = outcome.TransactionID
	}

	if err := h.db.CreateTransfer(ctx, record); err != nil {
		logger.Error("Failed to persist transfer record", logger.Fields{
			"error":       err.Error(),
			"transfer_id": record.TransferID,
		})
	}

	if h.events == nil {
		return
	}

	event := &models.PaymentEvent{
		EventType:     "payment.executed",
		TransferID:    record.TransferID,
		ProcessorID:   record.ProcessorUsed,
		TransactionID: record.TransactionID,
		Status:        record.Status,
		Amount:        payment.Amount,
		Currency:      payment.Currency,
		FallbackUsed:  record.FallbackUsed,
		Error:         record.ErrorMessage,
		Timestamp:     now,
	}
	if err := h.events.PublishPaymentEvent(ctx, event); err != nil {
		logger.Error("Failed to publish payment event", logger.Fields{
			"error":       err.Error(),
			"transfer_id": record.TransferID,
		})
	}
}

// jsonResponse builds a JSON API Gateway response
func jsonResponse(statusCode int, body interface{}) (events.APIGatewayProxyResponse, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return errorResponse(http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to encode response")
	}

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(data),
	}, nil
}

// errorResponse builds an error response with the given code and message
func errorResponse(statusCode int, code, message string) (events.APIGatewayProxyResponse, error) {
	return jsonResponse(statusCode, errors.ToErrorResponse(errors.New(code, message, statusCode, nil)))
}

// appErrorResponse maps a typed application error onto an HTTP response.
// Unknown errors become a generic 500.
func appErrorResponse(err error) (events.APIGatewayProxyResponse, error) {
	if appErr, ok := errors.AsAppError(err); ok {
		return jsonResponse(appErr.StatusCode, errors.ToErrorResponse(appErr))
	}
	return errorResponse(http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred")
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
