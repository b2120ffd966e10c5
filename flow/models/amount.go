package models

import (
	"errors"
	"fmt"
)

var (
	ErrCurrencyMismatch = errors.New("currency mismatch")
	ErrNegativeAmount   = errors.New("amount value must not be negative")
)

// Amount is a single monetary amount in minor currency units (cents, pence)
// with an ISO 4217 currency code.
type Amount struct {
	Value    int64  `json:"value"`
	Currency string `json:"currency"`
}

// NewAmount returns a validated Amount. Externally visible amounts are never
// negative; negative deltas exist only inside AmountsModifier computations.
func NewAmount(value int64, currency string) (Amount, error) {
	if value < 0 {
		return Amount{}, ErrNegativeAmount
	}
	if len(currency) != 3 {
		return Amount{}, fmt.Errorf("currency must be an ISO 4217 code: %q", currency)
	}
	return Amount{Value: value, Currency: currency}, nil
}

func (a Amount) String() string {
	return fmt.Sprintf("%d %s", a.Value, a.Currency)
}
