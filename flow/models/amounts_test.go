package models_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ilhambagus/pos-android-sdk/flow/models"
)

func TestNewAmounts(t *testing.T) {
	a, err := models.NewAmounts(1000, "EUR")
	require.NoError(t, err)
	require.Equal(t, int64(1000), a.BaseAmountValue())
	require.Equal(t, "EUR", a.Currency())
	require.Equal(t, int64(1000), a.TotalAmountValue())

	_, err = models.NewAmounts(-1, "EUR")
	require.ErrorIs(t, err, models.ErrNegativeAmount)

	_, err = models.NewAmounts(1000, "EURO")
	require.Error(t, err)
}

func TestNewAmountsWithAdditional(t *testing.T) {
	a, err := models.NewAmountsWithAdditional(1000, "EUR", map[string]int64{
		models.AmountTip: 150,
		models.AmountTax: 0,
	})
	require.NoError(t, err)

	require.Equal(t, int64(1150), a.TotalAmountValue())
	require.True(t, a.HasAdditionalAmount(models.AmountTip))

	// zero entries are never stored: absent means zero
	require.False(t, a.HasAdditionalAmount(models.AmountTax))
	require.Equal(t, int64(0), a.AdditionalAmountValue(models.AmountTax))

	_, err = models.NewAmountsWithAdditional(1000, "EUR", map[string]int64{models.AmountTip: -5})
	require.ErrorIs(t, err, models.ErrNegativeAmount)
}

func TestSubtractAmounts(t *testing.T) {
	total, err := models.NewAmountsWithAdditional(1000, "EUR", map[string]int64{models.AmountTip: 100})
	require.NoError(t, err)

	t.Run("partial", func(t *testing.T) {
		paid, err := models.NewAmountsWithAdditional(400, "EUR", map[string]int64{models.AmountTip: 100})
		require.NoError(t, err)

		rest, err := models.SubtractAmounts(total, paid)
		require.NoError(t, err)
		require.Equal(t, int64(600), rest.BaseAmountValue())
		require.False(t, rest.HasAdditionalAmount(models.AmountTip))
	})

	t.Run("exact", func(t *testing.T) {
		rest, err := models.SubtractAmounts(total, total)
		require.NoError(t, err)
		require.True(t, rest.IsZero())
	})

	t.Run("overdraw is rejected", func(t *testing.T) {
		paid, err := models.NewAmounts(1200, "EUR")
		require.NoError(t, err)

		_, err = models.SubtractAmounts(total, paid)
		require.Error(t, err)
	})

	t.Run("unknown additional amount is rejected", func(t *testing.T) {
		paid, err := models.NewAmountsWithAdditional(100, "EUR", map[string]int64{models.AmountCashback: 50})
		require.NoError(t, err)

		_, err = models.SubtractAmounts(total, paid)
		require.Error(t, err)
	})

	t.Run("currency mismatch", func(t *testing.T) {
		paid, err := models.NewAmounts(100, "USD")
		require.NoError(t, err)

		_, err = models.SubtractAmounts(total, paid)
		require.ErrorIs(t, err, models.ErrCurrencyMismatch)
	})
}

func TestAmountsJSONRoundTrip(t *testing.T) {
	a, err := models.NewAmountsWithAdditional(2500, "GBP", map[string]int64{
		models.AmountTip:       300,
		models.AmountSurcharge: 45,
	})
	require.NoError(t, err)

	b, err := json.Marshal(a)
	require.NoError(t, err)

	var back models.Amounts
	require.NoError(t, json.Unmarshal(b, &back))
	require.True(t, a.Equal(back))
}
