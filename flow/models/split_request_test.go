package models_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ilhambagus/pos-android-sdk/flow/models"
)

func approvedTxn(t *testing.T, amount int64, method string) *models.TransactionResponse {
	t.Helper()
	processed, err := models.NewAmounts(amount, "EUR")
	require.NoError(t, err)
	txn, err := models.NewTransactionResponse(models.OutcomeApproved, &processed, method, "00", "", nil)
	require.NoError(t, err)
	return txn
}

func declinedTxn(t *testing.T) *models.TransactionResponse {
	t.Helper()
	txn, err := models.NewTransactionResponse(models.OutcomeDeclined, nil, "", "51", "insufficient funds", nil)
	require.NoError(t, err)
	return txn
}

func TestSplitRequest_RemainingAmounts(t *testing.T) {
	total, err := models.NewAmounts(1000, "EUR")
	require.NoError(t, err)

	t.Run("fresh split", func(t *testing.T) {
		s, err := models.NewSplitRequest(total, nil)
		require.NoError(t, err)
		require.Equal(t, int64(1000), s.RemainingAmounts().TotalAmountValue())
		require.False(t, s.HasPreviousTransactions())
		require.Nil(t, s.LastTransaction())
	})

	t.Run("declined transactions process nothing", func(t *testing.T) {
		s, err := models.NewSplitRequest(total, []*models.TransactionResponse{declinedTxn(t)})
		require.NoError(t, err)
		require.Equal(t, int64(1000), s.RemainingAmounts().TotalAmountValue())
	})

	t.Run("approved transactions reduce the remainder", func(t *testing.T) {
		s, err := models.NewSplitRequest(total, []*models.TransactionResponse{
			approvedTxn(t, 400, models.PaymentMethodLoyalty),
		})
		require.NoError(t, err)
		require.Equal(t, int64(600), s.RemainingAmounts().TotalAmountValue())
	})

	t.Run("fully settled", func(t *testing.T) {
		s, err := models.NewSplitRequest(total, []*models.TransactionResponse{
			approvedTxn(t, 400, models.PaymentMethodLoyalty),
			approvedTxn(t, 600, models.PaymentMethodCard),
		})
		require.NoError(t, err)
		require.True(t, s.RemainingAmounts().IsZero())
	})

	t.Run("approved with nil processed counts as nothing", func(t *testing.T) {
		txn, err := models.NewTransactionResponse(models.OutcomeApproved, nil, "", "00", "", nil)
		require.NoError(t, err)

		s, err := models.NewSplitRequest(total, []*models.TransactionResponse{txn})
		require.NoError(t, err)
		require.Equal(t, int64(1000), s.RemainingAmounts().TotalAmountValue())
	})
}

func TestSplitRequest_RejectsInconsistentHistory(t *testing.T) {
	total, err := models.NewAmounts(1000, "EUR")
	require.NoError(t, err)

	_, err = models.NewSplitRequest(total, []*models.TransactionResponse{
		approvedTxn(t, 1200, models.PaymentMethodCard),
	})
	require.Error(t, err)
}

func TestSplitRequest_LastTransactionFailed(t *testing.T) {
	total, err := models.NewAmounts(1000, "EUR")
	require.NoError(t, err)

	t.Run("no history", func(t *testing.T) {
		s, err := models.NewSplitRequest(total, nil)
		require.NoError(t, err)
		require.False(t, s.LastTransactionFailed())
	})

	t.Run("last declined", func(t *testing.T) {
		s, err := models.NewSplitRequest(total, []*models.TransactionResponse{declinedTxn(t)})
		require.NoError(t, err)
		require.True(t, s.LastTransactionFailed())
	})

	t.Run("decline followed by approval", func(t *testing.T) {
		s, err := models.NewSplitRequest(total, []*models.TransactionResponse{
			declinedTxn(t),
			approvedTxn(t, 400, models.PaymentMethodCard),
		})
		require.NoError(t, err)
		require.False(t, s.LastTransactionFailed())
	})
}

func TestSplitRequest_JSONRoundTrip(t *testing.T) {
	total, err := models.NewAmountsWithAdditional(1000, "EUR", map[string]int64{models.AmountTip: 100})
	require.NoError(t, err)

	s, err := models.NewSplitRequest(total, []*models.TransactionResponse{
		declinedTxn(t),
		approvedTxn(t, 400, models.PaymentMethodLoyalty),
	})
	require.NoError(t, err)

	wire, err := s.ToJSON()
	require.NoError(t, err)

	back, err := models.SplitRequestFromJSON(wire)
	require.NoError(t, err)

	require.True(t, s.TotalRequestedAmounts().Equal(back.TotalRequestedAmounts()))
	require.Len(t, back.PreviousTransactions(), 2)
	require.Equal(t, int64(700), back.RemainingAmounts().TotalAmountValue())
	require.Equal(t, models.PaymentMethodLoyalty, back.LastTransaction().PaymentMethod())
}
