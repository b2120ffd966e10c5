// Package flowservice is a sample flow service: a loyalty program that handles
// the split stage of a payment flow. On the first round it spends available
// loyalty points against the remaining amounts; afterwards it hands the
// remainder to the payment app, retrying the remaining amounts whenever the
// previous round was declined.
package flowservice

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/exp/slog"

	"github.com/ilhambagus/pos-android-sdk/discovery"
	"github.com/ilhambagus/pos-android-sdk/flow/appmessage"
	"github.com/ilhambagus/pos-android-sdk/flow/models"
	"github.com/ilhambagus/pos-android-sdk/flow/service"
	flowstage "github.com/ilhambagus/pos-android-sdk/flow/stage"
)

// Config is a configuration for the loyalty flow service.
type Config struct {
	Addr string
	// LoyaltyBalance is the loyalty credit available, in minor units of
	// Currency.
	LoyaltyBalance int64
	Currency       string
}

func DefaultConfig() *Config {
	return &Config{
		Addr:           "localhost:0",
		LoyaltyBalance: 0,
		Currency:       "EUR",
	}
}

// App hosts the loyalty flow service.
type App struct {
	Addr string

	logger *slog.Logger
	config *Config
	svc    *service.Service

	mu      sync.Mutex
	balance int64
}

func NewApp(logger *slog.Logger, config *Config) *App {
	logger = logger.With(slog.String("app", "loyalty-flow-service"))

	if config == nil {
		config = DefaultConfig()
	}

	return &App{
		logger:  logger,
		config:  config,
		balance: config.LoyaltyBalance,
	}
}

func (a *App) Start() error {
	a.logger.Info("starting app...")

	a.svc = service.New(a.logger, "loyalty", a.config.Addr, a.handleRequest)
	if err := a.svc.Start(); err != nil {
		return err
	}
	a.Addr = a.svc.Addr

	a.logger.Info("flow service started", slog.String("addr", a.Addr))
	return nil
}

func (a *App) Shutdown() {
	a.logger.Info("shutting down app...")
	if err := a.svc.Close(); err != nil {
		a.logger.Error("closing service", "err", err)
	}
	a.logger.Info("app stopped")
}

// ServiceInfo describes this service for registration with an orchestrator.
func (a *App) ServiceInfo() discovery.ServiceInfo {
	return discovery.ServiceInfo{
		ID:                    "loyalty-flow-service",
		Type:                  discovery.TypeFlowService,
		DisplayName:           "Loyalty Points",
		Vendor:                "AppFlow Samples",
		Addr:                  a.Addr,
		SupportedRequestTypes: []string{models.RequestTypePayment},
		SupportedCurrencies:   []string{a.config.Currency},
		PaymentMethods:        []string{models.PaymentMethodLoyalty},
		SupportedDataKeys:     []string{models.DataKeyLoyaltyQuota},
		SupportedFlowStages:   []string{models.StageSplit},
	}
}

// Balance reports the loyalty credit still available.
func (a *App) Balance() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balance
}

func (a *App) handleRequest(ctx context.Context, comm *service.ClientCommunicator, payload, stageName string) error {
	if stageName != models.StageSplit {
		return comm.SendFailureAndEnd(appmessage.ErrorCodeUnsupportedType,
			fmt.Sprintf("stage %s is not supported", stageName))
	}

	splitRequest, err := models.SplitRequestFromJSON(payload)
	if err != nil {
		return err
	}

	model := flowstage.NewSplitModel(comm, splitRequest)
	if err := a.decideRound(model); err != nil {
		return err
	}
	return model.SendResponse()
}

// decideRound records this service's contribution to the round. Loyalty
// credit is spent once, on the first round; a failed previous round is
// re-requested with the remaining amounts so the merchant gets a retry.
func (a *App) decideRound(model *flowstage.SplitModel) error {
	remaining := model.RemainingAmounts()

	if model.LastTransactionFailed() {
		a.logger.Info("previous round failed, retrying remaining amounts",
			slog.Int64("remaining", remaining.TotalAmountValue()))
		return model.SetBaseAmountForNextTransaction(remaining.TotalAmountValue())
	}

	if !model.SplitRequest().HasPreviousTransactions() {
		if paid, err := a.spendLoyalty(model, remaining); err != nil {
			return err
		} else if paid {
			return nil
		}
	}

	return model.SetBaseAmountForNextTransaction(remaining.TotalAmountValue())
}

func (a *App) spendLoyalty(model *flowstage.SplitModel, remaining models.Amounts) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.balance <= 0 || remaining.Currency() != a.config.Currency {
		return false, nil
	}

	spend := a.balance
	if spend > remaining.TotalAmountValue() {
		spend = remaining.TotalAmountValue()
	}

	amountsPaid, err := models.NewAmounts(spend, remaining.Currency())
	if err != nil {
		return false, err
	}

	references := models.NewAdditionalData()
	if err := references.AddInt(models.DataKeyLoyaltyQuota, a.balance-spend); err != nil {
		return false, err
	}

	if err := model.SetAmountsPaid(amountsPaid, models.PaymentMethodLoyalty, references); err != nil {
		return false, err
	}

	a.balance -= spend
	a.logger.Info("loyalty points spent",
		slog.Int64("spent", spend),
		slog.Int64("balance", a.balance),
	)
	return true, nil
}
