package models

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Payment initiates a payment flow. Its id correlates every round of the
// operation, split rounds included.
type Payment struct {
	ID             string          `json:"id"`
	FlowName       string          `json:"flowName,omitempty"`
	Amounts        Amounts         `json:"amounts"`
	Basket         *Basket         `json:"basket,omitempty"`
	SplitEnabled   bool            `json:"splitEnabled,omitempty"`
	AdditionalData *AdditionalData `json:"additionalData,omitempty"`
}

// NewPayment returns a payment for the given amounts. When a basket is
// supplied its derived total must equal the base amount.
func NewPayment(amounts Amounts, basket *Basket, splitEnabled bool) (*Payment, error) {
	if basket != nil && basket.TotalBasketValue() != amounts.BaseAmountValue() {
		return nil, fmt.Errorf("basket total %d does not match base amount %d",
			basket.TotalBasketValue(), amounts.BaseAmountValue())
	}
	return &Payment{
		ID:             uuid.New().String(),
		Amounts:        amounts,
		Basket:         basket,
		SplitEnabled:   splitEnabled,
		AdditionalData: NewAdditionalData(),
	}, nil
}

// PaymentOutcome summarises how the whole payment operation ended.
type PaymentOutcome string

const (
	PaymentFulfilled          PaymentOutcome = "FULFILLED"
	PaymentPartiallyFulfilled PaymentOutcome = "PARTIALLY_FULFILLED"
	PaymentFailed             PaymentOutcome = "FAILED"
	PaymentCancelled          PaymentOutcome = "CANCELLED"
)

// PaymentResponse reports the outcome of a payment operation together with
// the full partial transaction history that settled it.
type PaymentResponse struct {
	PaymentID             string                 `json:"paymentId"`
	Outcome               PaymentOutcome         `json:"outcome"`
	TotalAmounts          Amounts                `json:"totalAmounts"`
	TotalAmountsProcessed Amounts                `json:"totalAmountsProcessed"`
	Transactions          []*TransactionResponse `json:"transactions,omitempty"`
}

// ToJSON serializes the payment response.
func (p *PaymentResponse) ToJSON() (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("serializing payment response: %w", err)
	}
	return string(b), nil
}
