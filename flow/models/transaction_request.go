package models

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// TransactionRequest asks a payment service to settle one round of a
// transaction. For split flows the amounts are the round's target, not the
// overall total.
type TransactionRequest struct {
	ID             string          `json:"id"`
	PaymentID      string          `json:"paymentId"`
	Amounts        Amounts         `json:"amounts"`
	Basket         *Basket         `json:"basket,omitempty"`
	AdditionalData *AdditionalData `json:"additionalData,omitempty"`
}

// NewTransactionRequest returns a transaction request for the given payment
// operation and round amounts.
func NewTransactionRequest(paymentID string, amounts Amounts) *TransactionRequest {
	return &TransactionRequest{
		ID:             uuid.New().String(),
		PaymentID:      paymentID,
		Amounts:        amounts,
		AdditionalData: NewAdditionalData(),
	}
}

// ToJSON serializes the transaction request for transmission as a message
// payload.
func (t *TransactionRequest) ToJSON() (string, error) {
	b, err := json.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("serializing transaction request: %w", err)
	}
	return string(b), nil
}

// TransactionRequestFromJSON parses a transaction request from its wire form.
func TransactionRequestFromJSON(data string) (*TransactionRequest, error) {
	t := &TransactionRequest{}
	if err := json.Unmarshal([]byte(data), t); err != nil {
		return nil, fmt.Errorf("parsing transaction request: %w", err)
	}
	if t.ID == "" {
		return nil, fmt.Errorf("transaction request id is required")
	}
	return t, nil
}
