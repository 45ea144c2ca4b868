package rates

import (
	"context"
	"fmt"
	"strings"

	"github.com/felipearosr/stealth-money-sub003/internal/currency"
	"github.com/felipearosr/stealth-money-sub003/internal/errors"
	"github.com/felipearosr/stealth-money-sub003/internal/fees"
	"github.com/felipearosr/stealth-money-sub003/internal/logger"
)

// CalculateTransfer prices a transfer end to end: validation, rate, card
// processing fee, transfer fee, corridor payout fee and arrival estimate.
// Same-currency transfers take the domestic path (rate 1.0, no card fee,
// reduced transfer fee); cross-currency transfers price against a quote.
// Every monetary step is rounded to 2 decimals.
func (e *Engine) CalculateTransfer(ctx context.Context, sendAmount float64, sendCurrency, receiveCurrency string) (*TransferCalculation, error) {
	sendCurrency = strings.ToUpper(sendCurrency)
	receiveCurrency = strings.ToUpper(receiveCurrency)

	sendSettings, ok := e.currencies.Get(sendCurrency)
	if !ok {
		return nil, errors.ErrValidation("send_currency", fmt.Sprintf("'%s' is not supported", sendCurrency))
	}
	recvSettings, ok := e.currencies.Get(receiveCurrency)
	if !ok {
		return nil, errors.ErrValidation("receive_currency", fmt.Sprintf("'%s' is not supported", receiveCurrency))
	}

	if sendAmount < sendSettings.MinAmount {
		return nil, errors.ErrValidation("send_amount",
			fmt.Sprintf("must be at least %.2f %s", sendSettings.MinAmount, sendCurrency))
	}
	if sendAmount > sendSettings.MaxAmount {
		return nil, errors.ErrValidation("send_amount",
			fmt.Sprintf("must not exceed %.2f %s", sendSettings.MaxAmount, sendCurrency))
	}

	if sendCurrency == receiveCurrency {
		return e.calculateDomestic(sendAmount, sendCurrency, sendSettings)
	}

	return e.calculateCrossCurrency(ctx, sendAmount, sendCurrency, receiveCurrency, recvSettings)
}

// calculateDomestic prices a same-currency transfer: rate fixed at 1.0, no
// card processing fee, the reduced 0.3% transfer fee and the flat payout fee
// for that currency.
func (e *Engine) calculateDomestic(sendAmount float64, currencyCode string, settings currency.Settings) (*TransferCalculation, error) {
	transferFee := e.feeCalc.DomesticTransferFee(sendAmount)
	payoutFee := settings.PayoutFee

	gross := sendAmount
	final := fees.Round2(gross - transferFee - payoutFee)
	if final < 0 {
		return nil, errors.ErrValidation("send_amount", "too small to cover transfer fees")
	}

	calc := &TransferCalculation{
		SendAmount:         sendAmount,
		SendCurrency:       currencyCode,
		ReceiveCurrency:    currencyCode,
		ExchangeRate:       1.0,
		CardProcessingFee:  0,
		TransferFee:        transferFee,
		PayoutFee:          payoutFee,
		TotalFees:          fees.Round2(transferFee + payoutFee),
		NetAmount:          sendAmount,
		GrossAmount:        gross,
		FinalReceiveAmount: final,
		EstimatedArrival:   settings.DomesticArrival,
		RateSource:         "domestic",
	}

	logger.Info("Domestic transfer calculated", logger.Fields{
		"currency":       currencyCode,
		"send_amount":    sendAmount,
		"final_amount":   final,
		"total_fees":     calc.TotalFees,
	})

	return calc, nil
}

// calculateCrossCurrency prices a cross-currency transfer against a quote:
//
//	netAmount   = sendAmount - cardProcessingFee
//	grossAmount = netAmount x rate
//	finalAmount = grossAmount - transferFee x rate - payoutFee
func (e *Engine) calculateCrossCurrency(ctx context.Context, sendAmount float64, sendCurrency, receiveCurrency string, recvSettings currency.Settings) (*TransferCalculation, error) {
	quote, err := e.GetQuote(ctx, sendCurrency, receiveCurrency, sendAmount)
	if err != nil {
		return nil, err
	}

	cardFee := e.feeCalc.CardProcessingFee(sendAmount)
	transferFee := e.feeCalc.TransferFee(sendAmount)
	payoutFee := recvSettings.PayoutFee

	net := fees.Round2(sendAmount - cardFee)
	gross := fees.Round2(net * quote.Rate)
	final := fees.Round2(gross - transferFee*quote.Rate - payoutFee)
	if final < 0 {
		return nil, errors.ErrValidation("send_amount", "too small to cover transfer fees")
	}

	calc := &TransferCalculation{
		SendAmount:         sendAmount,
		SendCurrency:       sendCurrency,
		ReceiveCurrency:    receiveCurrency,
		ExchangeRate:       quote.Rate,
		CardProcessingFee:  cardFee,
		TransferFee:        transferFee,
		PayoutFee:          payoutFee,
		TotalFees:          fees.Round2(cardFee + transferFee + payoutFee),
		NetAmount:          net,
		GrossAmount:        gross,
		FinalReceiveAmount: final,
		EstimatedArrival:   recvSettings.ArrivalEstimate,
		QuoteID:            quote.ID,
		RateSource:         string(quote.Source),
		RateValidUntil:     quote.ValidUntil,
	}

	logger.Info("Cross-currency transfer calculated", logger.Fields{
		"send_currency":    sendCurrency,
		"receive_currency": receiveCurrency,
		"send_amount":      sendAmount,
		"rate":             quote.Rate,
		"rate_source":      string(quote.Source),
		"final_amount":     final,
		"total_fees":       calc.TotalFees,
	})

	return calc, nil
}
