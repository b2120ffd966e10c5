package fps_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"github.com/ilhambagus/pos-android-sdk/discovery"
	"github.com/ilhambagus/pos-android-sdk/flow/models"
	"github.com/ilhambagus/pos-android-sdk/flow/service"
	flowstage "github.com/ilhambagus/pos-android-sdk/flow/stage"
	"github.com/ilhambagus/pos-android-sdk/fps"
	"github.com/ilhambagus/pos-android-sdk/services/flowservice"
	"github.com/ilhambagus/pos-android-sdk/services/paymentservice"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// testBed wires a registry with a local-approval payment service and,
// optionally, the loyalty flow service.
func testBed(t *testing.T, loyaltyBalance int64) (*fps.Service, *discovery.Registry) {
	t.Helper()
	logger := testLogger()
	registry := discovery.NewRegistry(logger)

	payments := paymentservice.NewApp(logger, nil)
	require.NoError(t, payments.Start())
	t.Cleanup(payments.Shutdown)
	require.NoError(t, registry.Register(payments.ServiceInfo()))

	if loyaltyBalance > 0 {
		cfg := flowservice.DefaultConfig()
		cfg.LoyaltyBalance = loyaltyBalance
		loyalty := flowservice.NewApp(logger, cfg)
		require.NoError(t, loyalty.Start())
		t.Cleanup(loyalty.Shutdown)
		require.NoError(t, registry.Register(loyalty.ServiceInfo()))
	}

	flows, err := fps.DefaultFlowConfigs()
	require.NoError(t, err)

	return fps.NewService(logger, registry, flows, fps.DefaultConfig()), registry
}

func newPayment(t *testing.T, amount int64, split bool) *models.Payment {
	t.Helper()
	amounts, err := models.NewAmounts(amount, "EUR")
	require.NoError(t, err)
	payment, err := models.NewPayment(amounts, nil, split)
	require.NoError(t, err)
	require.NoError(t, payment.AdditionalData.AddString(models.DataKeyCardNumber, "4242424242424242"))
	require.NoError(t, payment.AdditionalData.AddString(models.DataKeyCardExpiry, "12/30"))
	return payment
}

func TestInitiatePayment_SingleRound(t *testing.T) {
	orchestrator, _ := testBed(t, 0)

	response, err := orchestrator.InitiatePayment(testContext(t), newPayment(t, 500, false))
	require.NoError(t, err)

	require.Equal(t, models.PaymentFulfilled, response.Outcome)
	require.Equal(t, int64(500), response.TotalAmountsProcessed.TotalAmountValue())
	require.Len(t, response.Transactions, 1)

	txn := response.Transactions[0]
	require.Equal(t, models.OutcomeApproved, txn.Outcome())
	require.Equal(t, models.PaymentMethodCard, txn.PaymentMethod())
	require.NotEmpty(t, txn.References().FirstString(models.DataKeyAuthCode))
}

func TestInitiatePayment_SplitWithLoyalty(t *testing.T) {
	orchestrator, _ := testBed(t, 400)

	response, err := orchestrator.InitiatePayment(testContext(t), newPayment(t, 1000, true))
	require.NoError(t, err)

	require.Equal(t, models.PaymentFulfilled, response.Outcome)
	require.Equal(t, int64(1000), response.TotalAmountsProcessed.TotalAmountValue())
	require.Len(t, response.Transactions, 2)

	loyaltyTxn := response.Transactions[0]
	require.Equal(t, models.PaymentMethodLoyalty, loyaltyTxn.PaymentMethod())
	require.Equal(t, int64(400), loyaltyTxn.ProcessedValue())

	cardTxn := response.Transactions[1]
	require.Equal(t, models.PaymentMethodCard, cardTxn.PaymentMethod())
	require.Equal(t, int64(600), cardTxn.ProcessedValue())
}

func TestInitiatePayment_InvalidCardDeclines(t *testing.T) {
	orchestrator, _ := testBed(t, 0)

	amounts, err := models.NewAmounts(500, "EUR")
	require.NoError(t, err)
	payment, err := models.NewPayment(amounts, nil, false)
	require.NoError(t, err)
	require.NoError(t, payment.AdditionalData.AddString(models.DataKeyCardNumber, "4242424242424241"))

	response, err := orchestrator.InitiatePayment(testContext(t), payment)
	require.NoError(t, err)

	require.Equal(t, models.PaymentFailed, response.Outcome)
	require.Len(t, response.Transactions, 1)
	require.Equal(t, models.OutcomeDeclined, response.Transactions[0].Outcome())
}

func TestInitiatePayment_CancelledBySplitService(t *testing.T) {
	logger := testLogger()
	registry := discovery.NewRegistry(logger)

	payments := paymentservice.NewApp(logger, nil)
	require.NoError(t, payments.Start())
	t.Cleanup(payments.Shutdown)
	require.NoError(t, registry.Register(payments.ServiceInfo()))

	cancelling := service.New(logger, "cancelling-flow", "localhost:0",
		func(ctx context.Context, comm *service.ClientCommunicator, payload, stageName string) error {
			splitRequest, err := models.SplitRequestFromJSON(payload)
			if err != nil {
				return err
			}
			model := flowstage.NewSplitModel(comm, splitRequest)
			model.CancelFlow()
			return model.SendResponse()
		})
	require.NoError(t, cancelling.Start())
	t.Cleanup(func() { cancelling.Close() })
	require.NoError(t, registry.Register(discovery.ServiceInfo{
		ID:                  "cancelling-flow",
		Type:                discovery.TypeFlowService,
		DisplayName:         "Cancelling Flow",
		Addr:                cancelling.Addr,
		SupportedFlowStages: []string{models.StageSplit},
	}))

	flows, err := fps.DefaultFlowConfigs()
	require.NoError(t, err)
	orchestrator := fps.NewService(logger, registry, flows, fps.DefaultConfig())

	response, err := orchestrator.InitiatePayment(testContext(t), newPayment(t, 1000, true))
	require.NoError(t, err)

	require.Equal(t, models.PaymentCancelled, response.Outcome)
	require.Empty(t, response.Transactions)
	require.True(t, response.TotalAmountsProcessed.IsZero())
}

func TestInitiatePayment_NoPaymentService(t *testing.T) {
	logger := testLogger()
	registry := discovery.NewRegistry(logger)

	flows, err := fps.DefaultFlowConfigs()
	require.NoError(t, err)
	orchestrator := fps.NewService(logger, registry, flows, fps.DefaultConfig())

	_, err = orchestrator.InitiatePayment(testContext(t), newPayment(t, 500, false))
	require.ErrorIs(t, err, fps.ErrNoPaymentService)
}

func TestInitiatePayment_UnknownFlow(t *testing.T) {
	orchestrator, _ := testBed(t, 0)

	payment := newPayment(t, 500, false)
	payment.FlowName = "no-such-flow"

	_, err := orchestrator.InitiatePayment(testContext(t), payment)
	require.ErrorIs(t, err, fps.ErrNoFlow)
}
