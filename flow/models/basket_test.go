package models_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ilhambagus/pos-android-sdk/flow/models"
)

func TestBasketTotalIsDerived(t *testing.T) {
	basket, err := models.NewBasket(
		models.BasketItem{Label: "coffee", Quantity: 2, UnitPrice: 350},
		models.BasketItem{Label: "cake", Quantity: 1, UnitPrice: 420},
	)
	require.NoError(t, err)
	require.Equal(t, int64(1120), basket.TotalBasketValue())

	require.NoError(t, basket.AddItem(models.BasketItem{Label: "water", Quantity: 3, UnitPrice: 100}))
	require.Equal(t, int64(1420), basket.TotalBasketValue())
}

func TestBasketRejectsInvalidItems(t *testing.T) {
	_, err := models.NewBasket(models.BasketItem{Label: "ghost", Quantity: 0, UnitPrice: 100})
	require.Error(t, err)

	_, err = models.NewBasket(models.BasketItem{Label: "refund", Quantity: 1, UnitPrice: -100})
	require.ErrorIs(t, err, models.ErrNegativeAmount)
}
