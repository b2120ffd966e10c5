package models

import (
	"encoding/json"
	"fmt"
)

// FlowResponse is the accumulating outcome object a participant builds during
// one stage of processing. It is owned exclusively by that participant for the
// duration of one request, handed to the channel for transmission, then
// discarded.
type FlowResponse struct {
	UpdatedRequestAmounts *Amounts        `json:"updatedRequestAmounts,omitempty"`
	AmountsPaid           *Amounts        `json:"amountsPaid,omitempty"`
	AmountsPaidMethod     string          `json:"amountsPaidPaymentMethod,omitempty"`
	PaymentReferences     *AdditionalData `json:"paymentReferences,omitempty"`
	RequestData           *AdditionalData `json:"additionalRequestData,omitempty"`
	ResponseData          *AdditionalData `json:"additionalResponseData,omitempty"`
	CancelTransaction     bool            `json:"cancelTransaction,omitempty"`
}

func NewFlowResponse() *FlowResponse {
	return &FlowResponse{
		RequestData:  NewAdditionalData(),
		ResponseData: NewAdditionalData(),
	}
}

// UpdateRequestAmounts replaces the request amounts for the ongoing
// transaction.
func (f *FlowResponse) UpdateRequestAmounts(amounts Amounts) {
	copied := amounts
	f.UpdatedRequestAmounts = &copied
}

// SetAmountsPaid records amounts settled outside the payment-app path, such
// as loyalty points or cash, along with the method used. Only one paid amounts
// value is tracked: calling this again overwrites the previous call, so
// callers must pre-consolidate multiple non-card payments into one Amounts.
func (f *FlowResponse) SetAmountsPaid(amountsPaid Amounts, paymentMethod string) error {
	if paymentMethod == "" {
		return fmt.Errorf("payment method is required for amounts paid")
	}
	copied := amountsPaid
	f.AmountsPaid = &copied
	f.AmountsPaidMethod = paymentMethod
	return nil
}

// SetPaymentReferences attaches references associated with the paid amounts.
func (f *FlowResponse) SetPaymentReferences(references *AdditionalData) {
	if references == nil {
		f.PaymentReferences = nil
		return
	}
	f.PaymentReferences = references.Clone()
}

// AddRequestData adds key/value data that augments the ongoing request.
func (f *FlowResponse) AddRequestData(key string, values ...Value) error {
	if f.RequestData == nil {
		f.RequestData = NewAdditionalData()
	}
	return f.RequestData.Add(key, values...)
}

// AddResponseData adds key/value data destined for the final response.
func (f *FlowResponse) AddResponseData(key string, values ...Value) error {
	if f.ResponseData == nil {
		f.ResponseData = NewAdditionalData()
	}
	return f.ResponseData.Add(key, values...)
}

// SetCancelTransaction flags the ongoing flow for cancellation.
func (f *FlowResponse) SetCancelTransaction(cancel bool) {
	f.CancelTransaction = cancel
}

// HasChanges reports whether the response carries any augmentation at all.
func (f *FlowResponse) HasChanges() bool {
	return f.UpdatedRequestAmounts != nil ||
		f.AmountsPaid != nil ||
		!f.RequestData.IsEmpty() ||
		!f.ResponseData.IsEmpty() ||
		f.CancelTransaction
}

// ToJSON serializes the flow response for transmission as a message payload.
func (f *FlowResponse) ToJSON() (string, error) {
	b, err := json.Marshal(f)
	if err != nil {
		return "", fmt.Errorf("serializing flow response: %w", err)
	}
	return string(b), nil
}

// FlowResponseFromJSON parses a flow response from its wire form.
func FlowResponseFromJSON(data string) (*FlowResponse, error) {
	f := &FlowResponse{}
	if err := json.Unmarshal([]byte(data), f); err != nil {
		return nil, fmt.Errorf("parsing flow response: %w", err)
	}
	return f, nil
}
