// Package paymentservice is a sample payment service settling card rounds. It
// validates the card locally, then authorizes against an acquirer card host
// over ISO 8583 when one is configured, falling back to local approval
// otherwise. Generic requests arriving outside a flow are answered directly.
package paymentservice

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"github.com/ilhambagus/pos-android-sdk/discovery"
	"github.com/ilhambagus/pos-android-sdk/flow/appmessage"
	"github.com/ilhambagus/pos-android-sdk/flow/models"
	"github.com/ilhambagus/pos-android-sdk/flow/service"
	flowstage "github.com/ilhambagus/pos-android-sdk/flow/stage"
	"github.com/ilhambagus/pos-android-sdk/internal/card"
	"github.com/ilhambagus/pos-android-sdk/internal/expiry"
	iso8583client "github.com/ilhambagus/pos-android-sdk/internal/iso8583"
)

// Config is a configuration for the card payment service.
type Config struct {
	Addr string
	// CardHostAddr is the ISO 8583 acquirer host. Empty means rounds are
	// approved locally.
	CardHostAddr string
	MerchantID   string
	TerminalID   string
	Currency     string
}

func DefaultConfig() *Config {
	return &Config{
		Addr:       "localhost:0",
		MerchantID: "sample-merchant",
		TerminalID: "term-01",
		Currency:   "EUR",
	}
}

// App hosts the card payment service.
type App struct {
	Addr string

	logger *slog.Logger
	config *Config
	svc    *service.Service
	host   *iso8583client.Client
}

func NewApp(logger *slog.Logger, config *Config) *App {
	logger = logger.With(slog.String("app", "card-payment-service"))

	if config == nil {
		config = DefaultConfig()
	}

	return &App{
		logger: logger,
		config: config,
	}
}

func (a *App) Start() error {
	a.logger.Info("starting app...")

	if a.config.CardHostAddr != "" {
		host, err := iso8583client.Connect(a.config.CardHostAddr)
		if err != nil {
			return fmt.Errorf("connecting card host: %w", err)
		}
		a.host = host
		a.logger.Info("connected to card host", slog.String("addr", a.config.CardHostAddr))
	}

	a.svc = service.New(a.logger, "card-payment", a.config.Addr, a.handleRequest)
	if err := a.svc.Start(); err != nil {
		return err
	}
	a.Addr = a.svc.Addr

	a.logger.Info("payment service started", slog.String("addr", a.Addr))
	return nil
}

func (a *App) Shutdown() {
	a.logger.Info("shutting down app...")
	if err := a.svc.Close(); err != nil {
		a.logger.Error("closing service", "err", err)
	}
	if a.host != nil {
		if err := a.host.Close(); err != nil {
			a.logger.Error("closing card host connection", "err", err)
		}
	}
	a.logger.Info("app stopped")
}

// ServiceInfo describes this service for registration with an orchestrator.
func (a *App) ServiceInfo() discovery.ServiceInfo {
	return discovery.ServiceInfo{
		ID:          "card-payment-service",
		Type:        discovery.TypePaymentService,
		DisplayName: "Card Payments",
		Vendor:      "AppFlow Samples",
		Addr:        a.Addr,
		SupportedRequestTypes: []string{
			models.RequestTypePayment,
			models.RequestTypeReversal,
		},
		SupportedCurrencies: []string{a.config.Currency},
		PaymentMethods:      []string{models.PaymentMethodCard},
		SupportedDataKeys: []string{
			models.DataKeyCardNumber,
			models.DataKeyCardExpiry,
		},
		SupportedFlowStages: []string{models.StagePayment},
	}
}

func (a *App) handleRequest(ctx context.Context, comm *service.ClientCommunicator, payload, stageName string) error {
	switch stageName {
	case models.StagePayment:
		return a.handleTransaction(comm, payload)
	case models.StageGeneric, models.StageStatusCheck:
		return a.handleGenericRequest(comm, payload)
	default:
		return comm.SendFailureAndEnd(appmessage.ErrorCodeUnsupportedType,
			fmt.Sprintf("stage %s is not supported", stageName))
	}
}

// handleGenericRequest answers a standalone request outside a flow, such as a
// status check initiated directly through the client API.
func (a *App) handleGenericRequest(comm *service.ClientCommunicator, payload string) error {
	request, err := models.RequestFromJSON(payload)
	if err != nil {
		return err
	}

	switch request.RequestType() {
	case models.RequestTypePayment, models.RequestTypeReversal:
		response := models.NewResponse(request, true, "accepted")
		body, err := response.ToJSON()
		if err != nil {
			return err
		}
		return comm.SendResponseAndEnd(body)
	case models.RequestTypePrintReceipt:
		// Receipt printing runs after the exchange is answered.
		return comm.NotifyBackgroundProcessing()
	default:
		return comm.SendFailureAndEnd(appmessage.ErrorCodeUnsupportedType,
			fmt.Sprintf("request type %s is not supported", request.RequestType()))
	}
}

func (a *App) handleTransaction(comm *service.ClientCommunicator, payload string) error {
	txnRequest, err := models.TransactionRequestFromJSON(payload)
	if err != nil {
		return err
	}

	model := flowstage.NewTransactionModel(comm, txnRequest)

	pan := ""
	faceExpiry := ""
	if txnRequest.AdditionalData != nil {
		pan = card.Normalize(txnRequest.AdditionalData.FirstString(models.DataKeyCardNumber))
		faceExpiry = txnRequest.AdditionalData.FirstString(models.DataKeyCardExpiry)
	}

	if pan != "" {
		if err := card.Validate(pan); err != nil {
			a.logger.Info("declining invalid card", slog.String("card", card.Mask(pan)))
			return model.Decline(iso8583client.ResponseCodeInvalidCard, err.Error())
		}
		if faceExpiry != "" {
			expired, err := expiry.IsExpired(faceExpiry, time.Now())
			if err != nil {
				return model.Decline(iso8583client.ResponseCodeExpiredCard, err.Error())
			}
			if expired {
				a.logger.Info("declining expired card", slog.String("card", card.Mask(pan)))
				return model.Decline(iso8583client.ResponseCodeExpiredCard, "card expired")
			}
		}
	}

	if a.host != nil && pan != "" {
		return a.authorizeWithHost(model, txnRequest, pan, faceExpiry)
	}
	return a.approveLocally(model, txnRequest, pan)
}

func (a *App) authorizeWithHost(model *flowstage.TransactionModel, txnRequest *models.TransactionRequest, pan, faceExpiry string) error {
	auth, err := a.host.Authorize(iso8583client.AuthorizationRequest{
		CardNumber: pan,
		CardExpiry: hostExpiry(faceExpiry),
		Amount:     txnRequest.Amounts.TotalAmountValue(),
		Currency:   txnRequest.Amounts.Currency(),
		TerminalID: a.config.TerminalID,
		MerchantID: a.config.MerchantID,
	})
	if err != nil {
		return fmt.Errorf("authorizing with card host: %w", err)
	}

	if !auth.Approved {
		a.logger.Info("host declined transaction",
			slog.String("card", card.Mask(pan)),
			slog.String("responseCode", auth.ResponseCode),
		)
		return model.Decline(auth.ResponseCode, "declined by card host")
	}

	references, err := transactionReferences(auth.AuthorizationCode, pan)
	if err != nil {
		return err
	}
	return model.Approve(txnRequest.Amounts, models.PaymentMethodCard, auth.ResponseCode, references)
}

// approveLocally settles the round without a host, the standalone demo mode.
func (a *App) approveLocally(model *flowstage.TransactionModel, txnRequest *models.TransactionRequest, pan string) error {
	authCode := uuid.New().String()[:6]
	references, err := transactionReferences(authCode, pan)
	if err != nil {
		return err
	}
	return model.Approve(txnRequest.Amounts, models.PaymentMethodCard, iso8583client.ResponseCodeApproved, references)
}

func transactionReferences(authCode, pan string) (*models.AdditionalData, error) {
	references := models.NewAdditionalData()
	if err := references.AddString(models.DataKeyAuthCode, authCode); err != nil {
		return nil, err
	}
	if pan != "" {
		if err := references.AddString(models.DataKeyCardNumber, card.Mask(pan)); err != nil {
			return nil, err
		}
	}
	return references, nil
}

// hostExpiry converts a card face MM/YY expiry into the YYMM form field 14
// carries.
func hostExpiry(face string) string {
	t, err := expiry.Parse(face)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%02d%02d", t.Year()%100, int(t.Month()))
}
