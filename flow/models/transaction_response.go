package models

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Outcome is the business result of one partial transaction attempt. A
// declined outcome is a valid, expected result - it is not an error.
type Outcome string

const (
	OutcomeApproved Outcome = "APPROVED"
	OutcomeDeclined Outcome = "DECLINED"
)

// TransactionResponse is the settled (or failed) result of exactly one
// partial transaction attempt. It is immutable once constructed.
type TransactionResponse struct {
	id               string
	outcome          Outcome
	outcomeMessage   string
	amountsProcessed *Amounts
	responseCode     string
	paymentMethod    string
	references       *AdditionalData
}

// NewTransactionResponse returns a validated, immutable transaction response.
// An empty payment method defaults to "card". amountsProcessed may be nil,
// which consumers must treat as "nothing was processed".
func NewTransactionResponse(outcome Outcome, amountsProcessed *Amounts, paymentMethod, responseCode, outcomeMessage string, references *AdditionalData) (*TransactionResponse, error) {
	if outcome != OutcomeApproved && outcome != OutcomeDeclined {
		return nil, fmt.Errorf("unknown outcome %q", outcome)
	}
	if paymentMethod == "" {
		paymentMethod = DefaultPaymentMethod
	}
	if references == nil {
		references = NewAdditionalData()
	}
	var processed *Amounts
	if amountsProcessed != nil {
		copied := *amountsProcessed
		processed = &copied
	}
	return &TransactionResponse{
		id:               uuid.New().String(),
		outcome:          outcome,
		outcomeMessage:   outcomeMessage,
		amountsProcessed: processed,
		responseCode:     responseCode,
		paymentMethod:    paymentMethod,
		references:       references.Clone(),
	}, nil
}

func (t *TransactionResponse) ID() string             { return t.id }
func (t *TransactionResponse) Outcome() Outcome       { return t.outcome }
func (t *TransactionResponse) OutcomeMessage() string { return t.outcomeMessage }
func (t *TransactionResponse) ResponseCode() string   { return t.responseCode }
func (t *TransactionResponse) PaymentMethod() string  { return t.paymentMethod }
func (t *TransactionResponse) References() *AdditionalData {
	return t.references.Clone()
}

// AmountsProcessed returns the amounts settled by this transaction, or nil
// when nothing was processed.
func (t *TransactionResponse) AmountsProcessed() *Amounts {
	if t.amountsProcessed == nil {
		return nil
	}
	copied := *t.amountsProcessed
	return &copied
}

// ProcessedValue returns the total settled value, treating nil amounts as
// zero.
func (t *TransactionResponse) ProcessedValue() int64 {
	if t.amountsProcessed == nil {
		return 0
	}
	return t.amountsProcessed.TotalAmountValue()
}

type transactionResponseJSON struct {
	ID               string          `json:"id"`
	Outcome          Outcome         `json:"outcome"`
	OutcomeMessage   string          `json:"outcomeMessage,omitempty"`
	AmountsProcessed *Amounts        `json:"amountsProcessed,omitempty"`
	ResponseCode     string          `json:"responseCode,omitempty"`
	PaymentMethod    string          `json:"paymentMethod"`
	References       *AdditionalData `json:"references,omitempty"`
}

func (t *TransactionResponse) MarshalJSON() ([]byte, error) {
	return json.Marshal(transactionResponseJSON{
		ID:               t.id,
		Outcome:          t.outcome,
		OutcomeMessage:   t.outcomeMessage,
		AmountsProcessed: t.amountsProcessed,
		ResponseCode:     t.responseCode,
		PaymentMethod:    t.paymentMethod,
		References:       t.references,
	})
}

func (t *TransactionResponse) UnmarshalJSON(data []byte) error {
	var aux transactionResponseJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	parsed, err := NewTransactionResponse(aux.Outcome, aux.AmountsProcessed, aux.PaymentMethod, aux.ResponseCode, aux.OutcomeMessage, aux.References)
	if err != nil {
		return err
	}
	if aux.ID != "" {
		parsed.id = aux.ID
	}
	*t = *parsed
	return nil
}

// ToJSON serializes the transaction response for transmission as a message
// payload.
func (t *TransactionResponse) ToJSON() (string, error) {
	b, err := json.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("serializing transaction response: %w", err)
	}
	return string(b), nil
}

// TransactionResponseFromJSON parses a transaction response from its wire
// form.
func TransactionResponseFromJSON(data string) (*TransactionResponse, error) {
	t := &TransactionResponse{}
	if err := json.Unmarshal([]byte(data), t); err != nil {
		return nil, fmt.Errorf("parsing transaction response: %w", err)
	}
	return t, nil
}
