package flowservice_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"github.com/ilhambagus/pos-android-sdk/flow/client"
	"github.com/ilhambagus/pos-android-sdk/flow/models"
	"github.com/ilhambagus/pos-android-sdk/services/flowservice"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func startApp(t *testing.T, balance int64) *flowservice.App {
	t.Helper()
	cfg := flowservice.DefaultConfig()
	cfg.LoyaltyBalance = balance
	app := flowservice.NewApp(testLogger(), cfg)
	require.NoError(t, app.Start())
	t.Cleanup(app.Shutdown)
	return app
}

func exchangeSplit(t *testing.T, app *flowservice.App, total int64, history ...*models.TransactionResponse) *models.FlowResponse {
	t.Helper()
	amounts, err := models.NewAmounts(total, "EUR")
	require.NoError(t, err)
	splitRequest, err := models.NewSplitRequest(amounts, history)
	require.NoError(t, err)
	payload, err := splitRequest.ToJSON()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c := client.New(testLogger())
	terminal, err := c.Exchange(ctx, app.Addr, models.StageSplit, payload)
	require.NoError(t, err)

	flowResponse, err := models.FlowResponseFromJSON(terminal.Data())
	require.NoError(t, err)
	return flowResponse
}

func approvedTxn(t *testing.T, amount int64, method string) *models.TransactionResponse {
	t.Helper()
	processed, err := models.NewAmounts(amount, "EUR")
	require.NoError(t, err)
	txn, err := models.NewTransactionResponse(models.OutcomeApproved, &processed, method, "00", "", nil)
	require.NoError(t, err)
	return txn
}

func TestLoyalty_SpendsPointsOnFirstRound(t *testing.T) {
	app := startApp(t, 400)

	flowResponse := exchangeSplit(t, app, 1000)

	require.NotNil(t, flowResponse.AmountsPaid)
	require.Equal(t, int64(400), flowResponse.AmountsPaid.TotalAmountValue())
	require.Equal(t, models.PaymentMethodLoyalty, flowResponse.AmountsPaidMethod)
	require.Equal(t, int64(0), flowResponse.PaymentReferences.FirstInt(models.DataKeyLoyaltyQuota))
	require.Equal(t, int64(0), app.Balance())
}

func TestLoyalty_NeverPaysMoreThanRemaining(t *testing.T) {
	app := startApp(t, 5000)

	flowResponse := exchangeSplit(t, app, 1000)

	require.Equal(t, int64(1000), flowResponse.AmountsPaid.TotalAmountValue())
	require.Equal(t, int64(4000), app.Balance())
	require.Equal(t, int64(4000), flowResponse.PaymentReferences.FirstInt(models.DataKeyLoyaltyQuota))
}

func TestLoyalty_LaterRoundsGoToPaymentApp(t *testing.T) {
	app := startApp(t, 400)

	flowResponse := exchangeSplit(t, app, 1000, approvedTxn(t, 400, models.PaymentMethodLoyalty))

	require.Nil(t, flowResponse.AmountsPaid)
	require.True(t, flowResponse.RequestData.FirstBool(models.DataKeySplitTxn))
	require.Equal(t, models.SplitTypeAmounts, flowResponse.RequestData.FirstString(models.DataKeySplitType))
}

func TestLoyalty_NoBalanceFallsThrough(t *testing.T) {
	app := startApp(t, 0)

	flowResponse := exchangeSplit(t, app, 1000)

	require.Nil(t, flowResponse.AmountsPaid)
	require.True(t, flowResponse.RequestData.FirstBool(models.DataKeySplitTxn))
}
