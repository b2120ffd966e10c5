// Package fps implements the flow processing service: the orchestrator that
// drives a payment through its configured flow, round by round, talking to
// flow and payment services over the channel protocol.
package fps

import (
	"context"
	"errors"
	"fmt"
	"os"

	"golang.org/x/exp/slog"

	"github.com/ilhambagus/pos-android-sdk/discovery"
	"github.com/ilhambagus/pos-android-sdk/flow/appmessage"
	"github.com/ilhambagus/pos-android-sdk/flow/client"
	"github.com/ilhambagus/pos-android-sdk/flow/models"
)

var (
	ErrNoFlow           = errors.New("no flow configured for request")
	ErrNoPaymentService = errors.New("no payment service available")
)

// Service orchestrates payment flows. Each call to InitiatePayment runs one
// payment to completion: for split flows that means repeated rounds of the
// split stage followed by a payment stage until the operation settles, is
// cancelled, or runs out of retry budget.
type Service struct {
	logger   *slog.Logger
	client   *client.Client
	registry *discovery.Registry
	flows    *FlowConfigs
	config   *Config
}

func NewService(logger *slog.Logger, registry *discovery.Registry, flows *FlowConfigs, config *Config) *Service {
	return &Service{
		logger:   logger.With(slog.String("component", "fps")),
		client:   client.New(logger),
		registry: registry,
		flows:    flows,
		config:   config,
	}
}

// InitiatePayment runs the given payment through its flow and reports the
// consolidated outcome together with every partial transaction that ran.
func (s *Service) InitiatePayment(ctx context.Context, payment *models.Payment) (*models.PaymentResponse, error) {
	flow, err := s.flowFor(payment)
	if err != nil {
		return nil, err
	}

	logger := s.logger.With(
		slog.String("paymentId", payment.ID),
		slog.String("flow", flow.Name),
	)
	logger.Info("initiating payment",
		slog.Int64("amount", payment.Amounts.TotalAmountValue()),
		slog.String("currency", payment.Amounts.Currency()),
	)

	var (
		history   []*models.TransactionResponse
		cancelled bool
		declined  int
	)

	for round := 0; round < s.config.MaxSplitRounds; round++ {
		splitRequest, err := models.NewSplitRequest(payment.Amounts, history)
		if err != nil {
			return nil, fmt.Errorf("building round %d: %w", round, err)
		}
		remaining := splitRequest.RemainingAmounts()
		if remaining.IsZero() {
			break
		}

		roundAmounts := remaining
		if flow.HasStage(models.StageSplit) {
			flowResponse, err := s.runSplitStage(ctx, logger, splitRequest)
			if err != nil {
				return nil, err
			}
			if flowResponse.CancelTransaction {
				logger.Info("flow cancelled by split stage")
				cancelled = true
				break
			}
			if flowResponse.AmountsPaid != nil {
				txn, err := settledOutsidePayment(flowResponse)
				if err != nil {
					return nil, err
				}
				history = append(history, txn)
				logger.Info("amounts settled outside payment app",
					slog.String("method", txn.PaymentMethod()),
					slog.Int64("amount", txn.ProcessedValue()),
				)
				continue
			}
			if flowResponse.UpdatedRequestAmounts != nil {
				roundAmounts = *flowResponse.UpdatedRequestAmounts
			}
		}

		txn, err := s.runPaymentStage(ctx, logger, payment, roundAmounts)
		if err != nil {
			return nil, err
		}
		history = append(history, txn)

		if txn.Outcome() == models.OutcomeDeclined {
			declined++
			logger.Info("transaction declined",
				slog.String("responseCode", txn.ResponseCode()),
				slog.Int("declinedRounds", declined),
			)
			if declined >= s.config.MaxDeclinedRounds {
				logger.Info("abandoning flow after repeated declines")
				break
			}
		}

		if !flow.Split {
			break
		}
	}

	return buildPaymentResponse(payment, history, cancelled)
}

func (s *Service) flowFor(payment *models.Payment) (FlowConfig, error) {
	if payment.FlowName != "" {
		flow, ok := s.flows.Lookup(payment.FlowName)
		if !ok {
			return FlowConfig{}, fmt.Errorf("flow %s: %w", payment.FlowName, ErrNoFlow)
		}
		return flow, nil
	}
	flow, ok := s.flows.FlowFor(models.RequestTypePayment, payment.SplitEnabled)
	if !ok {
		return FlowConfig{}, fmt.Errorf("request type %s: %w", models.RequestTypePayment, ErrNoFlow)
	}
	return flow, nil
}

// runSplitStage sends the split request to the first flow service handling the
// split stage. A missing flow service is not an error: the round falls through
// to the payment stage with the remaining amounts untouched.
func (s *Service) runSplitStage(ctx context.Context, logger *slog.Logger, splitRequest *models.SplitRequest) (*models.FlowResponse, error) {
	services := s.registry.FlowServices().SupportingStage(models.StageSplit)
	if len(services) == 0 {
		logger.Debug("no flow service for split stage, skipping")
		return models.NewFlowResponse(), nil
	}
	target := services[0]

	payload, err := splitRequest.ToJSON()
	if err != nil {
		return nil, err
	}

	terminal, err := s.client.Exchange(ctx, target.Addr, models.StageSplit, payload)
	if err != nil {
		var flowErr *appmessage.FlowError
		if errors.As(err, &flowErr) {
			logger.Warn("split stage failed, continuing without augmentation",
				slog.String("code", flowErr.Code),
				slog.String("message", flowErr.Message),
			)
			return models.NewFlowResponse(), nil
		}
		return nil, fmt.Errorf("split stage with %s: %w", target.ID, err)
	}

	return models.FlowResponseFromJSON(terminal.Data())
}

// runPaymentStage settles one round with a payment service. A FAILURE from the
// service is folded into a declined transaction so the flow can decide whether
// to retry; only transport level errors propagate.
func (s *Service) runPaymentStage(ctx context.Context, logger *slog.Logger, payment *models.Payment, roundAmounts models.Amounts) (*models.TransactionResponse, error) {
	services := s.registry.PaymentServices().All()
	if len(services) == 0 {
		return nil, ErrNoPaymentService
	}
	target := services[0]

	txnRequest := models.NewTransactionRequest(payment.ID, roundAmounts)
	if payment.AdditionalData != nil {
		txnRequest.AdditionalData.Merge(payment.AdditionalData, false)
	}

	payload, err := txnRequest.ToJSON()
	if err != nil {
		return nil, err
	}

	terminal, err := s.client.Exchange(ctx, target.Addr, models.StagePayment, payload)
	if err != nil {
		var flowErr *appmessage.FlowError
		if errors.As(err, &flowErr) {
			logger.Warn("payment stage failed",
				slog.String("code", flowErr.Code),
				slog.String("message", flowErr.Message),
			)
			return models.NewTransactionResponse(models.OutcomeDeclined, nil, "", "", flowErr.Message, nil)
		}
		return nil, fmt.Errorf("payment stage with %s: %w", target.ID, err)
	}

	return models.TransactionResponseFromJSON(terminal.Data())
}

// settledOutsidePayment converts a flow service's amounts-paid declaration
// into an approved transaction carrying the method and references reported.
func settledOutsidePayment(flowResponse *models.FlowResponse) (*models.TransactionResponse, error) {
	method := flowResponse.AmountsPaidMethod
	return models.NewTransactionResponse(
		models.OutcomeApproved,
		flowResponse.AmountsPaid,
		method,
		"",
		"settled by "+method,
		flowResponse.PaymentReferences,
	)
}

func buildPaymentResponse(payment *models.Payment, history []*models.TransactionResponse, cancelled bool) (*models.PaymentResponse, error) {
	var processed int64
	for _, txn := range history {
		processed += txn.ProcessedValue()
	}
	totalProcessed, err := models.NewAmounts(processed, payment.Amounts.Currency())
	if err != nil {
		return nil, err
	}

	outcome := models.PaymentFailed
	switch {
	case cancelled:
		outcome = models.PaymentCancelled
	case processed >= payment.Amounts.TotalAmountValue():
		outcome = models.PaymentFulfilled
	case processed > 0:
		outcome = models.PaymentPartiallyFulfilled
	}

	return &models.PaymentResponse{
		PaymentID:             payment.ID,
		Outcome:               outcome,
		TotalAmounts:          payment.Amounts,
		TotalAmountsProcessed: totalProcessed,
		Transactions:          history,
	}, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
